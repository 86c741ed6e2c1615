package epoch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule checks for a closable period at the start of every hour.
const DefaultSchedule = "0 0 * * * *"

// Scheduler runs Tick on a cron schedule with a seconds field. A tick still running when the
// next one fires makes the next one skip.
type Scheduler struct {
	cron         *cron.Cron
	closer       *Closer
	commitment   *commitment.StateMachine
	spec         string
	autoActivate bool
}

// NewScheduler validates spec. With autoActivate each tick also activates an expired pending root as the owner.
func NewScheduler(closer *Closer, sm *commitment.StateMachine, spec string, autoActivate bool) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(spec); err != nil {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid schedule %q: %v", spec, err)
	}
	log := cronLogger{}
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds(), cron.WithLogger(log), cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log))),
		closer:       closer,
		commitment:   sm,
		spec:         spec,
		autoActivate: autoActivate,
	}, nil
}

// Start schedules ticks until Stop. Ticks run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Tick(ctx) }); err != nil {
		return errors.Wrap(err, "failed to schedule epoch close")
	}
	s.cron.Start()
	logger.InfoContext(ctx, "epoch scheduler started", slogx.String("schedule", s.spec), slogx.Bool("auto_activate", s.autoActivate))
	return nil
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Tick activates an expired pending root when enabled, then closes the next period if it has ended.
// An unfinished period or a root still in its timelock is logged at debug level.
func (s *Scheduler) Tick(ctx context.Context) {
	ctx = logger.WithContext(ctx, slogx.String("module", "epoch_scheduler"))

	state, err := s.commitment.Status(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get root state", err)
		return
	}
	if state.IsPending() {
		if !s.autoActivate || s.closer.clock.Now().Before(state.ActivatesAt) {
			logger.DebugContext(ctx, "epoch close skipped, root pending", slogx.Hash("root", state.Root), slogx.Time("activates_at", state.ActivatesAt))
			return
		}
		if _, err := s.commitment.Activate(ctx, s.commitment.Owner()); err != nil {
			logger.ErrorContext(ctx, "failed to activate pending root", err)
			return
		}
	}

	report, err := s.closer.Close(ctx)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "epoch closed", slogx.Time("period_start", report.Period.Start), slogx.Int("wallets", report.Distribution.Wallets))
	case errors.Is(err, errs.NotYetEligible):
		logger.DebugContext(ctx, "epoch close skipped", slogx.String("reason", err.Error()))
	case errors.Is(err, errs.StateConflict):
		logger.WarnContext(ctx, "epoch close refused", slogx.Error(err))
	default:
		logger.ErrorContext(ctx, "failed to close epoch", err)
	}
}

// cronLogger forwards cron's key/value logging to the slog logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.LogAttrs(context.Background(), slog.LevelError, "cron: "+msg, slogx.Error(err), slog.String("details", fmt.Sprint(keysAndValues...)))
}

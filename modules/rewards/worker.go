package rewards

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/core/worker"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/epoch"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/metrics"
)

const shutdownTimeout = 180 * time.Second

var _ worker.Worker = (*Worker)(nil)

// Worker runs the epoch scheduler until shutdown and then releases the module's resources.
type Worker struct {
	components *Components
	scheduler  *epoch.Scheduler // nil when scheduling is disabled

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewWorker(components *Components, scheduler *epoch.Scheduler) *Worker {
	return &Worker{
		components: components,
		scheduler:  scheduler,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (w *Worker) Shutdown() error {
	return w.ShutdownWithContext(context.Background())
}

func (w *Worker) ShutdownWithContext(ctx context.Context) (err error) {
	w.quitOnce.Do(func() {
		close(w.quit)
		select {
		case <-w.done:
		case <-time.After(shutdownTimeout):
			err = errors.Wrap(errs.Timeout, "rewards worker shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "rewards worker shutdown context canceled")
		}
	})
	return
}

func (w *Worker) Run(ctx context.Context) (err error) {
	defer close(w.done)

	ctx = logger.WithContext(ctx, slog.String("package", "rewards"))
	metrics.BuildInfo.WithLabelValues(Version).Set(1)

	// Publish the gauges before the first claim or close updates them.
	if state, err := w.components.Commitment.Status(ctx); err == nil {
		metrics.CurrentEpoch.Set(float64(state.Epoch))
	}
	w.components.Ledger.RefreshGauges(ctx)

	if w.scheduler != nil {
		if err := w.scheduler.Start(ctx); err != nil {
			return errors.Wrap(err, "failed to start epoch scheduler")
		}
	}

	select {
	case <-w.quit:
		logger.InfoContext(ctx, "Got quit signal, stopping rewards worker")
	case <-ctx.Done():
	}

	if w.scheduler != nil {
		w.scheduler.Stop()
	}
	if err := w.components.Close(context.Background()); err != nil {
		return errors.Wrap(err, "failed to close rewards components")
	}
	return nil
}

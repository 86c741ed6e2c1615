package rewards

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/core/worker"
	"github.com/gaze-network/epoch-rewards/internal/config"
	"github.com/gaze-network/epoch-rewards/internal/postgres"
	rewardsapi "github.com/gaze-network/epoch-rewards/modules/rewards/api"
	rewardsconfig "github.com/gaze-network/epoch-rewards/modules/rewards/config"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/epoch"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/export"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/ledger"
	rewardsmemory "github.com/gaze-network/epoch-rewards/modules/rewards/repository/memory"
	rewardspostgres "github.com/gaze-network/epoch-rewards/modules/rewards/repository/postgres"
	rewardsusecase "github.com/gaze-network/epoch-rewards/modules/rewards/usecase"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

// Components are the wired rewards services shared by the run command and the one-shot CLI commands.
type Components struct {
	RewardsDg       datagateway.RewardsDataGateway
	CollaboratorsDg datagateway.CollaboratorsDataGateway
	Commitment      *commitment.StateMachine
	Ledger          *ledger.Ledger
	Closer          *epoch.Closer
	Usecase         *rewardsusecase.Usecase
	Clock           clockwork.Clock

	cleanupFuncs []func(context.Context) error
}

// NewComponents opens the configured database and wires the rewards services on top of it.
func NewComponents(ctx context.Context, conf rewardsconfig.Config, clock clockwork.Clock) (_ *Components, err error) {
	owner, err := conf.OwnerAddress()
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner")
	}
	treasury, err := conf.TreasuryAddress()
	if err != nil {
		return nil, errors.Wrap(err, "invalid treasury")
	}
	epochConfig, err := conf.EpochConfig()
	if err != nil {
		return nil, errors.Wrap(err, "invalid epoch configuration")
	}

	c := &Components{Clock: clock}
	defer func() {
		if err != nil {
			_ = c.Close(ctx)
		}
	}()

	switch strings.ToLower(conf.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for rewards")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		c.cleanupFuncs = append(c.cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		repo := rewardspostgres.NewRepository(pg, treasury)
		c.RewardsDg = repo
		c.CollaboratorsDg = repo
	case "memory":
		logger.WarnContext(ctx, "Using in-memory rewards store, data is lost on exit")
		repo := rewardsmemory.NewRepository(treasury)
		c.RewardsDg = repo
		c.CollaboratorsDg = repo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for rewards is not supported", conf.Database)
	}

	var exporter epoch.Exporter
	if conf.Export.Enabled {
		s3Exporter, err := export.NewS3(ctx, conf.Export)
		if err != nil {
			return nil, errors.Wrap(err, "can't create distribution exporter")
		}
		exporter = s3Exporter
	}

	c.Commitment = commitment.New(c.RewardsDg, clock, owner, conf.GetTimelock())
	c.Ledger = ledger.New(c.RewardsDg, nil, clock, epochConfig.TokenDecimals)
	c.Closer = epoch.NewCloser(c.RewardsDg, c.CollaboratorsDg, c.Commitment, exporter, clock, epochConfig)
	c.Usecase = rewardsusecase.New(c.RewardsDg, c.Ledger, c.Commitment, c.Closer)
	return c, nil
}

// Close releases the database connections.
func (c *Components) Close(ctx context.Context) error {
	var errList []error
	for _, cleanup := range c.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	c.cleanupFuncs = nil
	return errors.WithStack(errors.Join(errList...))
}

func New(injector do.Injector) (worker.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	rewardsConf := conf.Modules.Rewards

	components, err := NewComponents(ctx, rewardsConf, clockwork.NewRealClock())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Mount API
	apiHandlers := lo.Uniq(rewardsConf.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			rewardsHTTPHandler := rewardsapi.NewHTTPHandler(components.Usecase, components.Clock)
			if err := rewardsHTTPHandler.Mount(httpServer); err != nil {
				_ = components.Close(ctx)
				return nil, errors.Wrap(err, "can't mount Rewards API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			_ = components.Close(ctx)
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	var scheduler *epoch.Scheduler
	if !rewardsConf.DisableScheduler {
		scheduler, err = epoch.NewScheduler(components.Closer, components.Commitment, rewardsConf.Schedule, rewardsConf.AutoActivate)
		if err != nil {
			_ = components.Close(ctx)
			return nil, errors.Wrap(err, "can't create epoch scheduler")
		}
	} else {
		logger.InfoContext(ctx, "Epoch scheduler is disabled", slogx.Bool("auto_activate", rewardsConf.AutoActivate))
	}

	return NewWorker(components, scheduler), nil
}

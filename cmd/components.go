package cmd

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/internal/config"
	"github.com/gaze-network/epoch-rewards/modules/rewards"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// withComponents wires the rewards services for a one-shot command and releases them afterwards.
func withComponents(ctx context.Context, fn func(ctx context.Context, c *rewards.Components) error) error {
	conf := config.Load()
	ctx = logger.WithContext(ctx, "module", "rewards")

	components, err := rewards.NewComponents(ctx, conf.Modules.Rewards, clockwork.NewRealClock())
	if err != nil {
		return errors.Wrap(err, "can't init rewards components")
	}
	defer func() {
		if err := components.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close rewards components", err)
		}
	}()

	return errors.WithStack(fn(ctx, components))
}

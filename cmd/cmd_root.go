package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	rewardscommon "github.com/gaze-network/epoch-rewards/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards"
	"github.com/spf13/cobra"
)

// Root commands run with direct database access and act as the configured owner.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Manage the committed merkle root",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stage <root>",
			Short: "Stage a merkle root behind the timelock",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				root, err := rewardscommon.ParseHash(args[0])
				if err != nil {
					return errors.WithStack(err)
				}
				return withComponents(cmd.Context(), func(ctx context.Context, c *rewards.Components) error {
					state, err := c.Commitment.Stage(ctx, c.Commitment.Owner(), root)
					if err != nil {
						return errors.Wrap(err, "failed to stage root")
					}
					printRootState(state.Epoch, string(state.Status), state.Root, state.ActivatesAt)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "activate",
			Short: "Activate the pending root once its timelock elapsed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withComponents(cmd.Context(), func(ctx context.Context, c *rewards.Components) error {
					state, err := c.Commitment.Activate(ctx, c.Commitment.Owner())
					if err != nil {
						return errors.Wrap(err, "failed to activate root")
					}
					printRootState(state.Epoch, string(state.Status), state.Root, state.ActivatesAt)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "cancel",
			Short: "Cancel the pending root",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withComponents(cmd.Context(), func(ctx context.Context, c *rewards.Components) error {
					state, err := c.Commitment.Cancel(ctx, c.Commitment.Owner())
					if err != nil {
						return errors.Wrap(err, "failed to cancel root")
					}
					printRootState(state.Epoch, string(state.Status), state.Root, state.ActivatesAt)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the root commitment state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withComponents(cmd.Context(), func(ctx context.Context, c *rewards.Components) error {
					state, err := c.Commitment.Status(ctx)
					if err != nil {
						return errors.Wrap(err, "failed to get root state")
					}
					printRootState(state.Epoch, string(state.Status), state.Root, state.ActivatesAt)
					return nil
				})
			},
		},
	)
	return cmd
}

func printRootState(epoch uint64, status string, root common.Hash, activatesAt time.Time) {
	fmt.Printf("epoch:        %d\n", epoch)
	fmt.Printf("status:       %s\n", status)
	if status == "none" {
		return
	}
	fmt.Printf("root:         %s\n", root.Hex())
	if status == "pending" {
		fmt.Printf("activates at: %s\n", activatesAt.UTC().Format(time.RFC3339))
	}
}

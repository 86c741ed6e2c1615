package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/modules/rewards"
	"github.com/spf13/cobra"
)

func NewEpochCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epoch",
		Short: "Close activity periods into distributions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "close",
			Short: "Close the next ended period and stage its merkle root",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withComponents(cmd.Context(), epochCloseHandler)
			},
		},
		&cobra.Command{
			Use:   "next",
			Short: "Show the next period to close",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withComponents(cmd.Context(), epochNextHandler)
			},
		},
	)
	return cmd
}

func epochCloseHandler(ctx context.Context, c *rewards.Components) error {
	report, err := c.Closer.Close(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to close epoch")
	}
	printPeriod(report.Period.Start, report.Period.End)
	fmt.Printf("distribution: %d\n", report.Distribution.ID)
	fmt.Printf("wallets:      %d\n", report.Distribution.Wallets)
	fmt.Printf("total:        %s\n", report.Distribution.TotalAmount)
	fmt.Printf("root:         %s\n", report.Distribution.Root.Hex())
	if len(report.Dropped) > 0 {
		fmt.Printf("dropped:      %d unregistered devices\n", len(report.Dropped))
	}
	printRootState(report.RootState.Epoch, string(report.RootState.Status), report.RootState.Root, report.RootState.ActivatesAt)
	return nil
}

func epochNextHandler(ctx context.Context, c *rewards.Components) error {
	period, err := c.Closer.NextPeriod(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get next period")
	}
	printPeriod(period.Start, period.End)
	fmt.Printf("ended:        %t\n", period.Ended(c.Clock.Now()))
	return nil
}

func printPeriod(start, end time.Time) {
	fmt.Printf("period:       %s - %s\n", start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

package cmd

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type ledgerFundCmdOptions struct {
	From string
}

func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and fund the reward token ledger",
	}

	fundOpts := &ledgerFundCmdOptions{}
	fundCmd := &cobra.Command{
		Use:     "fund <amount>",
		Short:   "Deposit reward tokens into the treasury",
		Args:    cobra.ExactArgs(1),
		Example: `rewards ledger fund 1000000.5 --from 0x2b5AD5c4795c026514f8317c7a215E218DcCD6cF`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ledgerFundHandler(cmd.Context(), fundOpts, args[0])
		},
	}
	fundCmd.Flags().StringVar(&fundOpts.From, "from", "", "Depositor address. Default is the configured owner")

	cmd.AddCommand(
		fundCmd,
		&cobra.Command{
			Use:   "pool",
			Short: "Show the distributed, vesting and remaining reward totals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withComponents(cmd.Context(), ledgerPoolHandler)
			},
		},
	)
	return cmd
}

func ledgerFundHandler(ctx context.Context, opts *ledgerFundCmdOptions, rawAmount string) error {
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return errors.Wrapf(errs.InvalidArgument, "invalid amount %q", rawAmount)
	}
	if !amount.IsPositive() {
		return errors.Wrap(errs.InvalidArgument, "amount must be positive")
	}
	if opts.From != "" && !common.IsHexAddress(opts.From) {
		return errors.Wrapf(errs.InvalidArgument, "invalid depositor %q", opts.From)
	}

	return withComponents(ctx, func(ctx context.Context, c *rewards.Components) error {
		from := c.Commitment.Owner()
		if opts.From != "" {
			from = common.HexToAddress(opts.From)
		}
		if err := c.RewardsDg.Deposit(ctx, from, amount); err != nil {
			return errors.Wrap(err, "failed to deposit reward tokens")
		}
		logger.InfoContext(ctx, "Funded rewards treasury", slogx.Address("from", from), slogx.Stringer("amount", amount))
		return errors.WithStack(ledgerPoolHandler(ctx, c))
	})
}

func ledgerPoolHandler(ctx context.Context, c *rewards.Components) error {
	pool, err := c.Ledger.PoolState(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get pool state")
	}
	fmt.Printf("distributed:  %s\n", pool.TotalDistributed)
	fmt.Printf("vesting:      %s\n", pool.TotalVesting)
	fmt.Printf("remaining:    %s\n", pool.RewardsRemaining)
	fmt.Printf("available:    %s\n", pool.RewardsAvailable)
	return nil
}

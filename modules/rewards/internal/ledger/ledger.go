// Package ledger verifies claims against activated roots and pays immediate and vested rewards.
package ledger

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gaze-network/epoch-rewards/pkg/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// Ledger applies every claim or release, single or batched, in one transaction.
// The token transfer is the last step before commit, so a failed transfer leaves no state behind.
type Ledger struct {
	dg            datagateway.RewardsDataGateway
	token         datagateway.TokenLedger
	clock         clockwork.Clock
	tokenDecimals uint8
}

// New returns a Ledger paying through token. A nil token pays through the store's own
// ledger inside the claim transaction.
func New(dg datagateway.RewardsDataGateway, token datagateway.TokenLedger, clock clockwork.Clock, tokenDecimals uint8) *Ledger {
	return &Ledger{
		dg:            dg,
		token:         token,
		clock:         clock,
		tokenDecimals: tokenDecimals,
	}
}

func (l *Ledger) tokenFor(dg datagateway.RewardsDataGateway) datagateway.TokenLedger {
	if l.token != nil {
		return l.token
	}
	return dg
}

// run executes fn in a transaction, transfers the returned amount to payout and commits.
func (l *Ledger) run(ctx context.Context, operation string, caller common.Address, fn func(tx datagateway.RewardsDataGatewayWithTx, payout common.Address, now time.Time) (decimal.Decimal, error)) (err error) {
	ctx = logger.WithContext(ctx, slogx.String("module", "ledger"), slogx.String("operation", operation), slogx.Address("wallet", caller))
	defer func() {
		metrics.LedgerOperationTotal.WithLabelValues(operation, metrics.Status(err)).Inc()
	}()

	tx, err := l.dg.BeginRewardsTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	payout, err := payoutAddress(ctx, tx, caller)
	if err != nil {
		return errors.WithStack(err)
	}

	now := l.clock.Now()
	amount, err := fn(tx, payout, now)
	if err != nil {
		return errors.WithStack(err)
	}
	if amount.IsPositive() {
		if err := l.tokenFor(tx).Transfer(ctx, payout, amount); err != nil {
			return errors.Wrapf(err, "failed to transfer %s to %s", amount, payout.Hex())
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "ledger operation completed", slogx.Stringer("amount", amount), slogx.Address("payout", payout))
	l.RefreshGauges(ctx)
	return nil
}

// SetPayoutAddress sets where caller's rewards are paid. The zero address resets it to caller.
// deadline is the deadline of the signed request and must be later than the one of the previous change.
func (l *Ledger) SetPayoutAddress(ctx context.Context, caller, payout common.Address, deadline time.Time) error {
	tx, err := l.dg.BeginRewardsTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	advanced, err := tx.AdvancePayoutDeadline(ctx, caller, deadline)
	if err != nil {
		return errors.Wrap(err, "failed to record payout change deadline")
	}
	if !advanced {
		return errors.Wrapf(errs.StateConflict, "payout change with deadline %s is not newer than the last change", deadline.UTC().Format(time.RFC3339))
	}

	if payout == (common.Address{}) || payout == caller {
		if err := tx.DeletePayoutAddress(ctx, caller); err != nil {
			return errors.Wrap(err, "failed to reset payout address")
		}
	} else if err := tx.SetPayoutAddress(ctx, caller, payout); err != nil {
		return errors.Wrap(err, "failed to set payout address")
	}
	return errors.Wrap(tx.Commit(ctx), "failed to commit transaction")
}

// PayoutAddress returns where wallet's rewards are paid.
func (l *Ledger) PayoutAddress(ctx context.Context, wallet common.Address) (common.Address, error) {
	return payoutAddress(ctx, l.dg, wallet)
}

func payoutAddress(ctx context.Context, dg datagateway.RewardsReaderDataGateway, wallet common.Address) (common.Address, error) {
	payout, err := dg.GetPayoutAddress(ctx, wallet)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return wallet, nil
		}
		return common.Address{}, errors.Wrap(err, "failed to get payout address")
	}
	return payout, nil
}

// PoolState returns the pool accumulators and the ledger balance views.
func (l *Ledger) PoolState(ctx context.Context) (entity.PoolState, error) {
	totals, err := l.dg.GetPoolTotals(ctx)
	if err != nil {
		return entity.PoolState{}, errors.Wrap(err, "failed to get pool totals")
	}
	remaining, err := l.tokenFor(l.dg).Balance(ctx)
	if err != nil {
		return entity.PoolState{}, errors.Wrap(err, "failed to get ledger balance")
	}
	return entity.PoolState{
		PoolTotals:       totals,
		RewardsRemaining: remaining,
		RewardsAvailable: remaining.Sub(totals.TotalVesting),
	}, nil
}

// RewardsRemaining is the balance held by the ledger, locked vesting included.
func (l *Ledger) RewardsRemaining(ctx context.Context) (decimal.Decimal, error) {
	state, err := l.PoolState(ctx)
	if err != nil {
		return decimal.Zero, errors.WithStack(err)
	}
	return state.RewardsRemaining, nil
}

// RewardsAvailable is RewardsRemaining minus unreleased vesting.
func (l *Ledger) RewardsAvailable(ctx context.Context) (decimal.Decimal, error) {
	state, err := l.PoolState(ctx)
	if err != nil {
		return decimal.Zero, errors.WithStack(err)
	}
	return state.RewardsAvailable, nil
}

// RefreshGauges publishes the pool state to the metrics gauges.
func (l *Ledger) RefreshGauges(ctx context.Context) {
	state, err := l.PoolState(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to refresh pool gauges", slogx.Error(err))
		return
	}
	metrics.TotalDistributed.Set(metrics.Float(state.TotalDistributed))
	metrics.TotalVesting.Set(metrics.Float(state.TotalVesting))
	metrics.RewardsRemaining.Set(metrics.Float(state.RewardsRemaining))
	metrics.RewardsAvailable.Set(metrics.Float(state.RewardsAvailable))
	if state.RewardsAvailable.IsNegative() {
		logger.CriticalContext(ctx, "vesting exceeds ledger balance",
			slogx.Stringer("rewards_remaining", state.RewardsRemaining),
			slogx.Stringer("total_vesting", state.TotalVesting),
		)
	}
}

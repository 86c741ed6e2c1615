package ledger

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/shopspring/decimal"
)

// ReleaseVested pays caller's vesting entry of epoch once it has unlocked.
func (l *Ledger) ReleaseVested(ctx context.Context, caller common.Address, epoch uint64) error {
	return errors.WithStack(l.release(ctx, "release", caller, []uint64{epoch}))
}

// ReleaseVestedBatch releases every epoch. Any failing entry fails the whole batch.
func (l *Ledger) ReleaseVestedBatch(ctx context.Context, caller common.Address, epochs []uint64) error {
	return errors.WithStack(l.release(ctx, "release_batch", caller, epochs))
}

func (l *Ledger) release(ctx context.Context, operation string, caller common.Address, epochs []uint64) error {
	if len(epochs) == 0 {
		return errors.Wrap(errs.InputError, "empty batch")
	}
	return l.run(ctx, operation, caller, func(tx datagateway.RewardsDataGatewayWithTx, _ common.Address, now time.Time) (decimal.Decimal, error) {
		total := decimal.Zero
		for i, epoch := range epochs {
			amount, err := releaseOne(ctx, tx, caller, epoch, now)
			if err != nil {
				if len(epochs) > 1 {
					return decimal.Zero, errors.Wrapf(err, "batch item %d", i)
				}
				return decimal.Zero, errors.WithStack(err)
			}
			total = total.Add(amount)
		}
		return total, nil
	})
}

func releaseOne(ctx context.Context, tx datagateway.RewardsDataGatewayWithTx, caller common.Address, epoch uint64, now time.Time) (decimal.Decimal, error) {
	entry, err := tx.GetVestingEntry(ctx, caller, epoch)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return decimal.Zero, errors.Wrapf(errs.NotFound, "no vesting in epoch %d", epoch)
		}
		return decimal.Zero, errors.Wrap(err, "failed to get vesting entry")
	}
	if entry.Released {
		return decimal.Zero, errors.Wrapf(errs.StateConflict, "already released epoch %d", epoch)
	}
	if now.Before(entry.UnlockAt) {
		return decimal.Zero, errors.Wrapf(errs.NotYetEligible, "still vesting until %s", entry.UnlockAt.UTC().Format(time.RFC3339))
	}

	released, err := tx.ReleaseVestingEntry(ctx, caller, epoch, now)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to release vesting entry")
	}
	if !released {
		return decimal.Zero, errors.Wrapf(errs.StateConflict, "already released epoch %d", epoch)
	}
	return entry.Amount, nil
}

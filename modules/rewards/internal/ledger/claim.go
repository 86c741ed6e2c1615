package ledger

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/merkle"
	"github.com/shopspring/decimal"
)

type ClaimRequest struct {
	Epoch                  uint64
	ClaimableNow           decimal.Decimal
	VestingAmount          decimal.Decimal
	VestingDurationSeconds uint64
	Proof                  []common.Hash
}

// Claim pays req.ClaimableNow to caller's payout address and opens a vesting entry for req.VestingAmount.
func (l *Ledger) Claim(ctx context.Context, caller common.Address, req ClaimRequest) error {
	return errors.WithStack(l.claim(ctx, "claim", caller, []ClaimRequest{req}))
}

// ClaimBatch claims every index of the parallel slices. Any failing item fails the whole batch.
func (l *Ledger) ClaimBatch(ctx context.Context, caller common.Address, epochs []uint64, claimableNows, vestingAmounts []decimal.Decimal, durations []uint64, proofs [][]common.Hash) error {
	n := len(epochs)
	if len(claimableNows) != n || len(vestingAmounts) != n || len(durations) != n || len(proofs) != n {
		return errors.Wrap(errs.InputError, "length mismatch")
	}
	reqs := make([]ClaimRequest, 0, n)
	for i := range epochs {
		reqs = append(reqs, ClaimRequest{
			Epoch:                  epochs[i],
			ClaimableNow:           claimableNows[i],
			VestingAmount:          vestingAmounts[i],
			VestingDurationSeconds: durations[i],
			Proof:                  proofs[i],
		})
	}
	return errors.WithStack(l.claim(ctx, "claim_batch", caller, reqs))
}

func (l *Ledger) claim(ctx context.Context, operation string, caller common.Address, reqs []ClaimRequest) error {
	if len(reqs) == 0 {
		return errors.Wrap(errs.InputError, "empty batch")
	}
	return l.run(ctx, operation, caller, func(tx datagateway.RewardsDataGatewayWithTx, payout common.Address, now time.Time) (decimal.Decimal, error) {
		state, err := tx.GetRootState(ctx)
		if err != nil {
			return decimal.Zero, errors.Wrap(err, "failed to get root state")
		}
		total := decimal.Zero
		for i, req := range reqs {
			if err := l.claimOne(ctx, tx, state.Epoch, caller, payout, req, now); err != nil {
				if len(reqs) > 1 {
					return decimal.Zero, errors.Wrapf(err, "batch item %d", i)
				}
				return decimal.Zero, errors.WithStack(err)
			}
			total = total.Add(req.ClaimableNow)
		}
		return total, nil
	})
}

func (l *Ledger) claimOne(ctx context.Context, tx datagateway.RewardsDataGatewayWithTx, currentEpoch uint64, caller, payout common.Address, req ClaimRequest, now time.Time) error {
	if req.Epoch == 0 || req.Epoch > currentEpoch {
		return errors.Wrapf(errs.InputError, "invalid epoch %d", req.Epoch)
	}
	if _, err := tx.GetClaimRecord(ctx, req.Epoch, caller); err == nil {
		return errors.Wrapf(errs.StateConflict, "already claimed epoch %d", req.Epoch)
	} else if !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get claim record")
	}
	if req.ClaimableNow.IsNegative() || req.VestingAmount.IsNegative() {
		return errors.Wrap(errs.InputError, "negative amount")
	}
	if req.ClaimableNow.Add(req.VestingAmount).IsZero() {
		return errors.Wrap(errs.InputError, "zero amount")
	}

	root, err := tx.GetEpochRoot(ctx, req.Epoch)
	if err != nil {
		return errors.Wrapf(err, "failed to get root of epoch %d", req.Epoch)
	}
	leaf := merkle.Leaf{
		Wallet:                 caller,
		ClaimableNow:           req.ClaimableNow,
		VestingAmount:          req.VestingAmount,
		VestingDurationSeconds: req.VestingDurationSeconds,
	}
	if !merkle.Verify(root.Root, leaf, req.Proof, l.tokenDecimals) {
		return errors.Wrap(errs.ProofError, "invalid proof")
	}

	created, err := tx.CreateClaimRecord(ctx, entity.ClaimRecord{
		Epoch:         req.Epoch,
		Wallet:        caller,
		PayoutAddress: payout,
		ClaimableNow:  req.ClaimableNow,
		VestingAmount: req.VestingAmount,
		ClaimedAt:     now,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create claim record")
	}
	if !created {
		return errors.Wrapf(errs.StateConflict, "already claimed epoch %d", req.Epoch)
	}

	if req.VestingAmount.IsPositive() {
		err := tx.CreateVestingEntry(ctx, entity.VestingEntry{
			Wallet:    caller,
			Epoch:     req.Epoch,
			Amount:    req.VestingAmount,
			UnlockAt:  now.Add(time.Duration(req.VestingDurationSeconds) * time.Second),
			CreatedAt: now,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create vesting entry")
		}
	}
	return nil
}

package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/ledger"
	"github.com/shopspring/decimal"
)

func (u *Usecase) Claim(ctx context.Context, caller common.Address, req ledger.ClaimRequest) error {
	return errors.WithStack(u.ledger.Claim(ctx, caller, req))
}

// ClaimBatch claims every index of the parallel slices or none of them.
func (u *Usecase) ClaimBatch(ctx context.Context, caller common.Address, epochs []uint64, claimableNows, vestingAmounts []decimal.Decimal, durations []uint64, proofs [][]common.Hash) error {
	return errors.WithStack(u.ledger.ClaimBatch(ctx, caller, epochs, claimableNows, vestingAmounts, durations, proofs))
}

func (u *Usecase) ReleaseVested(ctx context.Context, caller common.Address, epoch uint64) error {
	return errors.WithStack(u.ledger.ReleaseVested(ctx, caller, epoch))
}

func (u *Usecase) ReleaseVestedBatch(ctx context.Context, caller common.Address, epochs []uint64) error {
	return errors.WithStack(u.ledger.ReleaseVestedBatch(ctx, caller, epochs))
}

// SetPayoutAddress applies a payout change signed with deadline. Replays of older changes are rejected.
func (u *Usecase) SetPayoutAddress(ctx context.Context, caller, payout common.Address, deadline time.Time) error {
	return errors.WithStack(u.ledger.SetPayoutAddress(ctx, caller, payout, deadline))
}

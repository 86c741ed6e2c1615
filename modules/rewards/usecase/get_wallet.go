package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
)

// WalletClaim is a wallet's award in one activated epoch and whether it was claimed.
type WalletClaim struct {
	Epoch uint64
	Award entity.WalletEpochAward
	Claim *entity.ClaimRecord // nil until claimed
}

// GetWalletClaims returns the awards of wallet in every activated epoch, oldest first.
func (u *Usecase) GetWalletClaims(ctx context.Context, wallet common.Address) ([]WalletClaim, error) {
	roots, err := u.rewardsDg.GetEpochRoots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch roots")
	}

	claims := make([]WalletClaim, 0)
	for _, root := range roots {
		award, err := u.rewardsDg.GetWalletAward(ctx, root.Epoch, wallet)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to get award of epoch %d", root.Epoch)
		}
		record, err := u.rewardsDg.GetClaimRecord(ctx, root.Epoch, wallet)
		if err != nil && !errors.Is(err, errs.NotFound) {
			return nil, errors.Wrapf(err, "failed to get claim record of epoch %d", root.Epoch)
		}
		claims = append(claims, WalletClaim{
			Epoch: root.Epoch,
			Award: *award,
			Claim: record,
		})
	}
	return claims, nil
}

func (u *Usecase) GetVestingEntries(ctx context.Context, wallet common.Address) ([]entity.VestingEntry, error) {
	entries, err := u.rewardsDg.GetVestingEntriesByWallet(ctx, wallet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vesting entries")
	}
	return entries, nil
}

func (u *Usecase) GetPayoutAddress(ctx context.Context, wallet common.Address) (common.Address, error) {
	payout, err := u.ledger.PayoutAddress(ctx, wallet)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "error during PayoutAddress")
	}
	return payout, nil
}

func (u *Usecase) GetPoolState(ctx context.Context) (entity.PoolState, error) {
	state, err := u.ledger.PoolState(ctx)
	if err != nil {
		return entity.PoolState{}, errors.Wrap(err, "error during PoolState")
	}
	return state, nil
}

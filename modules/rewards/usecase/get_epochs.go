package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
)

// EpochInfo is an activated epoch with the distribution committed to its root.
type EpochInfo struct {
	EpochRoot    entity.EpochRoot
	Distribution *entity.Distribution // nil when the root was staged without a distribution
}

func (u *Usecase) GetRootState(ctx context.Context) (entity.RootState, error) {
	state, err := u.commitment.Status(ctx)
	if err != nil {
		return entity.RootState{}, errors.Wrap(err, "error during Status")
	}
	return state, nil
}

func (u *Usecase) GetEpoch(ctx context.Context, epoch uint64) (*EpochInfo, error) {
	epochRoot, err := u.rewardsDg.GetEpochRoot(ctx, epoch)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get root of epoch %d", epoch)
	}
	dist, err := u.getDistribution(ctx, epoch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &EpochInfo{
		EpochRoot:    *epochRoot,
		Distribution: dist,
	}, nil
}

func (u *Usecase) GetEpochs(ctx context.Context) ([]entity.EpochRoot, error) {
	roots, err := u.rewardsDg.GetEpochRoots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch roots")
	}
	return roots, nil
}

// GetLatestDistribution returns the latest distribution that was not cancelled, staged ones included.
func (u *Usecase) GetLatestDistribution(ctx context.Context) (*entity.Distribution, error) {
	dist, err := u.rewardsDg.GetLatestDistribution(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest distribution")
	}
	return dist, nil
}

func (u *Usecase) getDistribution(ctx context.Context, epoch uint64) (*entity.Distribution, error) {
	dist, err := u.rewardsDg.GetDistributionByEpoch(ctx, epoch)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get distribution of epoch %d", epoch)
	}
	return dist, nil
}

package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/epoch"
)

func (u *Usecase) StageRoot(ctx context.Context, caller common.Address, root common.Hash) (entity.RootState, error) {
	state, err := u.commitment.Stage(ctx, caller, root)
	if err != nil {
		return entity.RootState{}, errors.WithStack(err)
	}
	return state, nil
}

func (u *Usecase) ActivateRoot(ctx context.Context, caller common.Address) (entity.RootState, error) {
	state, err := u.commitment.Activate(ctx, caller)
	if err != nil {
		return entity.RootState{}, errors.WithStack(err)
	}
	return state, nil
}

func (u *Usecase) CancelRoot(ctx context.Context, caller common.Address) (entity.RootState, error) {
	state, err := u.commitment.Cancel(ctx, caller)
	if err != nil {
		return entity.RootState{}, errors.WithStack(err)
	}
	return state, nil
}

// CloseEpoch closes the next activity period if it has ended. Only the owner may trigger it.
func (u *Usecase) CloseEpoch(ctx context.Context, caller common.Address) (*epoch.Report, error) {
	if caller != u.commitment.Owner() {
		return nil, errors.Wrapf(errs.Unauthorized, "%s is not the owner", caller.Hex())
	}
	report, err := u.closer.Close(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return report, nil
}

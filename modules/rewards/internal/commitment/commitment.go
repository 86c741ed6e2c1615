// Package commitment stages, activates and cancels distribution roots behind a timelock.
package commitment

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
)

const DefaultTimelock = 48 * time.Hour

// StateMachine owns the root lifecycle none -> pending -> active|cancelled -> pending ...
// Every transition runs in one transaction over the locked root state, so at most one root is pending.
type StateMachine struct {
	dg       datagateway.RewardsDataGateway
	clock    clockwork.Clock
	owner    common.Address
	timelock time.Duration
}

func New(dg datagateway.RewardsDataGateway, clock clockwork.Clock, owner common.Address, timelock time.Duration) *StateMachine {
	return &StateMachine{
		dg:       dg,
		clock:    clock,
		owner:    owner,
		timelock: timelock,
	}
}

func (m *StateMachine) Owner() common.Address {
	return m.owner
}

func (m *StateMachine) Timelock() time.Duration {
	return m.timelock
}

func (m *StateMachine) authorize(caller common.Address) error {
	if caller != m.owner {
		return errors.Wrapf(errs.Unauthorized, "%s is not the owner", caller.Hex())
	}
	return nil
}

// Stage records root as pending until now + timelock.
func (m *StateMachine) Stage(ctx context.Context, caller common.Address, root common.Hash) (entity.RootState, error) {
	return m.StageWith(ctx, caller, root, nil)
}

// PersistFunc stores the distribution committed to a staged root and returns its id.
type PersistFunc func(tx datagateway.RewardsDataGatewayWithTx) (distributionID int64, err error)

// StageWith stages root like Stage and runs persist in the same transaction once the root is accepted.
// A persist error aborts the stage. A root activated in an earlier epoch may be staged again.
func (m *StateMachine) StageWith(ctx context.Context, caller common.Address, root common.Hash, persist PersistFunc) (entity.RootState, error) {
	if err := m.authorize(caller); err != nil {
		return entity.RootState{}, errors.WithStack(err)
	}
	if root == (common.Hash{}) {
		return entity.RootState{}, errors.Wrap(errs.InputError, "zero root")
	}

	return m.transition(ctx, "stage", func(tx datagateway.RewardsDataGatewayWithTx, state entity.RootState, now time.Time) (entity.RootState, error) {
		if state.IsPending() {
			return state, errors.Wrapf(errs.StateConflict, "root already pending: %s", state.Root.Hex())
		}
		var distributionID int64
		if persist != nil {
			id, err := persist(tx)
			if err != nil {
				return state, errors.WithStack(err)
			}
			distributionID = id
		}

		state.Status = entity.RootStatusPending
		state.Root = root
		state.DistributionID = distributionID
		state.StagedAt = now
		state.ActivatesAt = now.Add(m.timelock)
		return state, nil
	})
}

// Activate turns the pending root into the next epoch once its timelock has expired.
func (m *StateMachine) Activate(ctx context.Context, caller common.Address) (entity.RootState, error) {
	if err := m.authorize(caller); err != nil {
		return entity.RootState{}, errors.WithStack(err)
	}

	return m.transition(ctx, "activate", func(tx datagateway.RewardsDataGatewayWithTx, state entity.RootState, now time.Time) (entity.RootState, error) {
		if !state.IsPending() {
			return state, errors.Wrap(errs.StateConflict, "no pending root")
		}
		if now.Before(state.ActivatesAt) {
			return state, errors.Wrapf(errs.NotYetEligible, "timelock not expired, activates at %s", state.ActivatesAt.UTC().Format(time.RFC3339))
		}

		state.Epoch++
		state.Status = entity.RootStatusActive
		if err := tx.CreateEpochRoot(ctx, entity.EpochRoot{Epoch: state.Epoch, Root: state.Root, ActivatedAt: now}); err != nil {
			return state, errors.Wrap(err, "failed to record epoch root")
		}
		if state.DistributionID != 0 {
			if err := tx.UpdateDistributionStatus(ctx, state.DistributionID, entity.DistributionStatusActive, state.Epoch); err != nil {
				return state, errors.Wrapf(err, "failed to activate distribution %d", state.DistributionID)
			}
		}
		return state, nil
	})
}

// Cancel drops the pending root. The epoch counter is unchanged.
func (m *StateMachine) Cancel(ctx context.Context, caller common.Address) (entity.RootState, error) {
	if err := m.authorize(caller); err != nil {
		return entity.RootState{}, errors.WithStack(err)
	}

	return m.transition(ctx, "cancel", func(tx datagateway.RewardsDataGatewayWithTx, state entity.RootState, now time.Time) (entity.RootState, error) {
		if !state.IsPending() {
			return state, errors.Wrap(errs.StateConflict, "no pending root")
		}
		if state.DistributionID != 0 {
			if err := tx.UpdateDistributionStatus(ctx, state.DistributionID, entity.DistributionStatusCancelled, 0); err != nil {
				return state, errors.Wrapf(err, "failed to cancel distribution %d", state.DistributionID)
			}
		}
		state.Status = entity.RootStatusCancelled
		return state, nil
	})
}

// Status returns the current root state.
func (m *StateMachine) Status(ctx context.Context) (entity.RootState, error) {
	state, err := m.dg.GetRootState(ctx)
	if err != nil {
		return entity.RootState{}, errors.Wrap(err, "failed to get root state")
	}
	return state, nil
}

// CurrentEpoch returns the number of activated epochs.
func (m *StateMachine) CurrentEpoch(ctx context.Context) (uint64, error) {
	state, err := m.Status(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return state.Epoch, nil
}

// RootOf returns the root activated for epoch.
func (m *StateMachine) RootOf(ctx context.Context, epoch uint64) (common.Hash, error) {
	root, err := m.dg.GetEpochRoot(ctx, epoch)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "failed to get root of epoch %d", epoch)
	}
	return root.Root, nil
}

type transitionFunc func(tx datagateway.RewardsDataGatewayWithTx, state entity.RootState, now time.Time) (entity.RootState, error)

func (m *StateMachine) transition(ctx context.Context, action string, fn transitionFunc) (entity.RootState, error) {
	ctx = logger.WithContext(ctx, slogx.String("module", "commitment"), slogx.String("action", action))

	tx, err := m.dg.BeginRewardsTx(ctx)
	if err != nil {
		return entity.RootState{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	state, err := tx.LockRootState(ctx)
	if err != nil {
		return entity.RootState{}, errors.Wrap(err, "failed to lock root state")
	}

	now := m.clock.Now()
	next, err := fn(tx, state, now)
	if err != nil {
		return state, errors.WithStack(err)
	}
	next.UpdatedAt = now
	if err := tx.SaveRootState(ctx, next); err != nil {
		return state, errors.Wrap(err, "failed to save root state")
	}
	if err := tx.Commit(ctx); err != nil {
		return state, errors.Wrap(err, "failed to commit root state")
	}

	metrics.CurrentEpoch.Set(float64(next.Epoch))
	if next.IsPending() {
		metrics.PendingRoot.Set(1)
	} else {
		metrics.PendingRoot.Set(0)
	}
	logger.InfoContext(ctx, "root state changed",
		slogx.Epoch(next.Epoch),
		slogx.String("status", string(next.Status)),
		slogx.Hash("root", next.Root),
		slogx.Time("activates_at", next.ActivatesAt),
	)
	return next, nil
}

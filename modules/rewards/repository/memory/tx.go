package memory

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
)

var ErrTxAlreadyExists = errors.New("Transaction already exists. Call Commit() or Rollback() first.")

// BeginRewardsTx blocks until no other transaction is open.
func (r *Repository) BeginRewardsTx(ctx context.Context) (datagateway.RewardsDataGatewayWithTx, error) {
	if r.tx != nil {
		return nil, errors.WithStack(ErrTxAlreadyExists)
	}
	r.store.mu.Lock()
	return &Repository{
		store: r.store,
		tx:    r.store.data.clone(),
	}, nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	r.store.data = r.tx
	r.tx = nil
	r.store.mu.Unlock()
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	r.tx = nil
	r.store.mu.Unlock()
	return nil
}

package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concurrentCallers = 20

// runConcurrently calls fn from n goroutines released at once and counts successes.
// Every failure must be errs.StateConflict.
func runConcurrently(t *testing.T, n int, fn func() error) int64 {
	t.Helper()
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		failures  = make(chan error, n)
		ready     = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			if err := fn(); err != nil {
				failures <- err
				return
			}
			succeeded.Add(1)
		}()
	}
	close(ready)
	wg.Wait()
	close(failures)
	for err := range failures {
		assert.True(t, errors.Is(err, errs.StateConflict), "unexpected error: %+v", err)
	}
	return succeeded.Load()
}

func TestConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0))
	req := f.request(t, epoch, walletA)

	succeeded := runConcurrently(t, concurrentCallers, func() error {
		return f.ledger.Claim(ctx, walletA, req)
	})
	assert.EqualValues(t, 1, succeeded)
	assert.Equal(t, "100", f.balance(t, walletA))
	assert.Equal(t, "900", f.balance(t, treasury))

	state, err := f.ledger.PoolState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", state.TotalDistributed.String())
}

func TestConcurrentReleases(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "25", "75", day))
	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA)))
	f.clock.Advance(day)

	succeeded := runConcurrently(t, concurrentCallers, func() error {
		return f.ledger.ReleaseVested(ctx, walletA, epoch)
	})
	assert.EqualValues(t, 1, succeeded)
	assert.Equal(t, "100", f.balance(t, walletA))
	assert.Equal(t, "900", f.balance(t, treasury))
}

// staleRepository hands out transactions whose conditional writes affect no row, as when another
// transaction inserted the claim or released the entry between our read and our write.
type staleRepository struct {
	*memory.Repository
}

func (r staleRepository) BeginRewardsTx(ctx context.Context) (datagateway.RewardsDataGatewayWithTx, error) {
	tx, err := r.Repository.BeginRewardsTx(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return staleTx{tx}, nil
}

type staleTx struct {
	datagateway.RewardsDataGatewayWithTx
}

func (staleTx) CreateClaimRecord(context.Context, entity.ClaimRecord) (bool, error) {
	return false, nil
}

func (staleTx) ReleaseVestingEntry(context.Context, common.Address, uint64, time.Time) (bool, error) {
	return false, nil
}

func TestClaimLosingInsertRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0))
	stale := New(staleRepository{f.repo}, nil, f.clock, tokenDecimals)

	err := stale.Claim(ctx, walletA, f.request(t, epoch, walletA))
	assert.True(t, errors.Is(err, errs.StateConflict))
	assert.Equal(t, "0", f.balance(t, walletA))
	assert.Equal(t, "1000", f.balance(t, treasury))
}

func TestReleaseLosingUpdateRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "25", "75", day))
	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA)))
	f.clock.Advance(day)
	stale := New(staleRepository{f.repo}, nil, f.clock, tokenDecimals)

	err := stale.ReleaseVested(ctx, walletA, epoch)
	assert.True(t, errors.Is(err, errs.StateConflict))
	assert.Equal(t, "25", f.balance(t, walletA))

	entry, err := f.repo.GetVestingEntry(ctx, walletA, epoch)
	require.NoError(t, err)
	assert.False(t, entry.Released)
}

package commitment

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/memory"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = common.HexToAddress("0x000000000000000000000000000000000000000f")
	stranger = common.HexToAddress("0x0000000000000000000000000000000000000bad")
	rootR1   = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	rootR2   = common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
	genesis  = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*StateMachine, *memory.Repository, *clockwork.FakeClock) {
	t.Helper()
	repo := memory.NewRepository(common.HexToAddress("0x7e"))
	clock := clockwork.NewFakeClockAt(genesis)
	return New(repo, clock, owner, DefaultTimelock), repo, clock
}

func TestStageTwice(t *testing.T) {
	ctx := context.Background()
	m, _, _ := setup(t)

	state, err := m.Stage(ctx, owner, rootR1)
	require.NoError(t, err)
	assert.Equal(t, entity.RootStatusPending, state.Status)
	assert.Equal(t, genesis, state.StagedAt)
	assert.Equal(t, genesis.Add(DefaultTimelock), state.ActivatesAt)

	_, err = m.Stage(ctx, owner, rootR2)
	assert.True(t, errors.Is(err, errs.StateConflict))

	state, err = m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, rootR1, state.Root, "rejected stage must not change state")

	_, err = m.Cancel(ctx, owner)
	require.NoError(t, err)

	state, err = m.Stage(ctx, owner, rootR2)
	require.NoError(t, err)
	assert.Equal(t, rootR2, state.Root)
	assert.Zero(t, state.Epoch, "cancel does not use up an epoch")
}

func TestTimelockBoundary(t *testing.T) {
	ctx := context.Background()
	m, _, clock := setup(t)

	_, err := m.Stage(ctx, owner, rootR1)
	require.NoError(t, err)

	clock.Advance(DefaultTimelock - time.Second)
	_, err = m.Activate(ctx, owner)
	assert.True(t, errors.Is(err, errs.NotYetEligible))

	epoch, err := m.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Zero(t, epoch)

	clock.Advance(time.Second)
	state, err := m.Activate(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.RootStatusActive, state.Status)
	assert.EqualValues(t, 1, state.Epoch)

	root, err := m.RootOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, rootR1, root)
}

func TestEpochOnlyIncrementsOnActivation(t *testing.T) {
	ctx := context.Background()
	m, _, clock := setup(t)

	for i, root := range []common.Hash{rootR1, rootR2} {
		_, err := m.Stage(ctx, owner, root)
		require.NoError(t, err)
		_, err = m.Cancel(ctx, owner)
		require.NoError(t, err)

		_, err = m.Stage(ctx, owner, root)
		require.NoError(t, err)
		clock.Advance(DefaultTimelock)
		state, err := m.Activate(ctx, owner)
		require.NoError(t, err)
		assert.EqualValues(t, i+1, state.Epoch)
	}

	_, err := m.RootOf(ctx, 3)
	assert.True(t, errors.Is(err, errs.NotFound))
}

func TestNoPendingRoot(t *testing.T) {
	ctx := context.Background()
	m, _, _ := setup(t)

	_, err := m.Activate(ctx, owner)
	assert.True(t, errors.Is(err, errs.StateConflict))
	_, err = m.Cancel(ctx, owner)
	assert.True(t, errors.Is(err, errs.StateConflict))
}

func TestStageRejectsZeroRoot(t *testing.T) {
	ctx := context.Background()
	m, _, _ := setup(t)

	_, err := m.Stage(ctx, owner, common.Hash{})
	assert.True(t, errors.Is(err, errs.InputError))
}

func TestRestageActivatedRoot(t *testing.T) {
	ctx := context.Background()
	m, _, clock := setup(t)

	_, err := m.Stage(ctx, owner, rootR1)
	require.NoError(t, err)
	clock.Advance(DefaultTimelock)
	_, err = m.Activate(ctx, owner)
	require.NoError(t, err)

	// identical payouts in a later period hash to the same root
	state, err := m.Stage(ctx, owner, rootR1)
	require.NoError(t, err)
	assert.Equal(t, entity.RootStatusPending, state.Status)

	clock.Advance(DefaultTimelock)
	state, err = m.Activate(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, state.Epoch)

	for _, epoch := range []uint64{1, 2} {
		root, err := m.RootOf(ctx, epoch)
		require.NoError(t, err)
		assert.Equal(t, rootR1, root, "epoch %d", epoch)
	}
}

func TestOwnerOnly(t *testing.T) {
	ctx := context.Background()
	m, _, clock := setup(t)

	_, err := m.Stage(ctx, stranger, rootR1)
	assert.True(t, errors.Is(err, errs.Unauthorized))

	_, err = m.Stage(ctx, owner, rootR1)
	require.NoError(t, err)
	clock.Advance(DefaultTimelock)

	_, err = m.Activate(ctx, stranger)
	assert.True(t, errors.Is(err, errs.Unauthorized))
	_, err = m.Cancel(ctx, stranger)
	assert.True(t, errors.Is(err, errs.Unauthorized))

	state, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.RootStatusPending, state.Status)
}

func stageDistribution(ctx context.Context, t *testing.T, m *StateMachine, periodStart time.Time, root common.Hash) int64 {
	t.Helper()
	state, err := m.StageWith(ctx, owner, root, func(tx datagateway.RewardsDataGatewayWithTx) (int64, error) {
		return tx.CreateDistribution(ctx, entity.Distribution{
			PeriodStart: periodStart,
			PeriodEnd:   periodStart.Add(7 * 24 * time.Hour),
			Root:        root,
			Status:      entity.DistributionStatusStaged,
		}, nil)
	})
	require.NoError(t, err)
	require.NotZero(t, state.DistributionID)
	return state.DistributionID
}

func TestActivationUpdatesDistribution(t *testing.T) {
	ctx := context.Background()
	m, repo, clock := setup(t)

	first := stageDistribution(ctx, t, m, genesis.Add(-7*24*time.Hour), rootR1)
	clock.Advance(DefaultTimelock)
	_, err := m.Activate(ctx, owner)
	require.NoError(t, err)

	// a second period with the same root
	second := stageDistribution(ctx, t, m, genesis, rootR1)
	clock.Advance(DefaultTimelock)
	_, err = m.Activate(ctx, owner)
	require.NoError(t, err)

	for epoch, id := range map[uint64]int64{1: first, 2: second} {
		dist, err := repo.GetDistributionByEpoch(ctx, epoch)
		require.NoError(t, err)
		assert.Equal(t, id, dist.ID)
		assert.Equal(t, entity.DistributionStatusActive, dist.Status)
		assert.Equal(t, epoch, dist.Epoch)
	}
}

func TestCancelUpdatesDistribution(t *testing.T) {
	ctx := context.Background()
	m, repo, _ := setup(t)

	id := stageDistribution(ctx, t, m, genesis.Add(-7*24*time.Hour), rootR1)
	_, err := m.Cancel(ctx, owner)
	require.NoError(t, err)

	dist, err := repo.GetDistribution(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.DistributionStatusCancelled, dist.Status)
	assert.Zero(t, dist.Epoch)
}

func TestStageWithRollsBackOnPersistError(t *testing.T) {
	ctx := context.Background()
	m, _, _ := setup(t)

	_, err := m.StageWith(ctx, owner, rootR1, func(tx datagateway.RewardsDataGatewayWithTx) (int64, error) {
		return 0, errors.New("disk full")
	})
	require.Error(t, err)

	state, err := m.Status(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsPending())
}

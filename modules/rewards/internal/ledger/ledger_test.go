package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/merkle"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/memory"
	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tokenDecimals = 18

var (
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	walletA  = common.HexToAddress("0x000000000000000000000000000000000000000a")
	walletB  = common.HexToAddress("0x000000000000000000000000000000000000000b")
	cold     = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	start    = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	day = 24 * time.Hour
)

type fixture struct {
	repo   *memory.Repository
	clock  *clockwork.FakeClock
	ledger *Ledger
	trees  map[uint64]*merkle.Tree
	leaves map[uint64]map[common.Address]merkle.Leaf
}

func newFixture(t *testing.T, funded string) *fixture {
	t.Helper()
	repo := memory.NewRepository(treasury)
	if amount := decimals.MustFromString(funded); amount.IsPositive() {
		require.NoError(t, repo.Deposit(context.Background(), treasury, amount))
	}
	clock := clockwork.NewFakeClockAt(start)
	return &fixture{
		repo:   repo,
		clock:  clock,
		ledger: New(repo, nil, clock, tokenDecimals),
		trees:  map[uint64]*merkle.Tree{},
		leaves: map[uint64]map[common.Address]merkle.Leaf{},
	}
}

// activate commits a tree of leaves as the next epoch.
func (f *fixture) activate(t *testing.T, leaves ...merkle.Leaf) uint64 {
	t.Helper()
	ctx := context.Background()
	tree, err := merkle.Build(leaves, tokenDecimals)
	require.NoError(t, err)

	tx, err := f.repo.BeginRewardsTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()
	state, err := tx.LockRootState(ctx)
	require.NoError(t, err)
	epoch := state.Epoch + 1
	require.NoError(t, tx.SaveRootState(ctx, entity.RootState{
		Epoch:     epoch,
		Status:    entity.RootStatusActive,
		Root:      tree.Root,
		UpdatedAt: f.clock.Now(),
	}))
	require.NoError(t, tx.CreateEpochRoot(ctx, entity.EpochRoot{Epoch: epoch, Root: tree.Root, ActivatedAt: f.clock.Now()}))
	require.NoError(t, tx.Commit(ctx))

	f.trees[epoch] = tree
	f.leaves[epoch] = map[common.Address]merkle.Leaf{}
	for _, leaf := range leaves {
		f.leaves[epoch][leaf.Wallet] = leaf
	}
	return epoch
}

func (f *fixture) request(t *testing.T, epoch uint64, wallet common.Address) ClaimRequest {
	t.Helper()
	leaf := f.leaves[epoch][wallet]
	proof, ok := f.trees[epoch].Proof(wallet)
	require.True(t, ok)
	return ClaimRequest{
		Epoch:                  epoch,
		ClaimableNow:           leaf.ClaimableNow,
		VestingAmount:          leaf.VestingAmount,
		VestingDurationSeconds: leaf.VestingDurationSeconds,
		Proof:                  proof,
	}
}

func (f *fixture) balance(t *testing.T, holder common.Address) string {
	t.Helper()
	balance, err := f.repo.BalanceOf(context.Background(), holder)
	require.NoError(t, err)
	return balance.String()
}

func leaf(wallet common.Address, claimable, vesting string, duration time.Duration) merkle.Leaf {
	return merkle.Leaf{
		Wallet:                 wallet,
		ClaimableNow:           decimals.MustFromString(claimable),
		VestingAmount:          decimals.MustFromString(vesting),
		VestingDurationSeconds: uint64(duration / time.Second),
	}
}

func TestClaimTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0), leaf(walletB, "50", "0", 0))

	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA)))
	assert.Equal(t, "100", f.balance(t, walletA))

	err := f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA))
	assert.True(t, errors.Is(err, errs.StateConflict))
	assert.Equal(t, "100", f.balance(t, walletA))

	require.NoError(t, f.ledger.Claim(ctx, walletB, f.request(t, epoch, walletB)))
	assert.Equal(t, "50", f.balance(t, walletB))

	state, err := f.ledger.PoolState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "150", state.TotalDistributed.String())
	assert.Equal(t, "850", state.RewardsRemaining.String())
}

func TestClaimRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0), leaf(walletB, "50", "0", 0))

	testCases := []struct {
		name   string
		caller common.Address
		mutate func(req *ClaimRequest)
		kind   error
	}{
		{
			name:   "epoch zero",
			caller: walletA,
			mutate: func(req *ClaimRequest) { req.Epoch = 0 },
			kind:   errs.InputError,
		},
		{
			name:   "future epoch",
			caller: walletA,
			mutate: func(req *ClaimRequest) { req.Epoch = epoch + 1 },
			kind:   errs.InputError,
		},
		{
			name:   "zero amount",
			caller: walletA,
			mutate: func(req *ClaimRequest) { req.ClaimableNow = decimal.Zero },
			kind:   errs.InputError,
		},
		{
			name:   "inflated amount",
			caller: walletA,
			mutate: func(req *ClaimRequest) { req.ClaimableNow = decimals.MustFromString("101") },
			kind:   errs.ProofError,
		},
		{
			name:   "changed duration",
			caller: walletA,
			mutate: func(req *ClaimRequest) { req.VestingDurationSeconds = 1 },
			kind:   errs.ProofError,
		},
		{
			name:   "someone else's leaf",
			caller: walletB,
			mutate: func(req *ClaimRequest) {},
			kind:   errs.ProofError,
		},
		{
			name:   "empty proof",
			caller: walletA,
			mutate: func(req *ClaimRequest) { req.Proof = nil },
			kind:   errs.ProofError,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request(t, epoch, walletA)
			tc.mutate(&req)
			err := f.ledger.Claim(ctx, tc.caller, req)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
		})
	}

	assert.Equal(t, "1000", f.balance(t, treasury))
}

func TestClaimWithVesting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "10000")
	epoch := f.activate(t, leaf(walletA, "2500", "7500", 180*day))

	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA)))
	assert.Equal(t, "2500", f.balance(t, walletA))

	state, err := f.ledger.PoolState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2500", state.TotalDistributed.String())
	assert.Equal(t, "7500", state.TotalVesting.String())
	assert.Equal(t, "7500", state.RewardsRemaining.String())
	assert.Equal(t, "0", state.RewardsAvailable.String())

	f.clock.Advance(179 * day)
	err = f.ledger.ReleaseVested(ctx, walletA, epoch)
	assert.True(t, errors.Is(err, errs.NotYetEligible))

	f.clock.Advance(day - time.Second)
	err = f.ledger.ReleaseVested(ctx, walletA, epoch)
	assert.True(t, errors.Is(err, errs.NotYetEligible))

	f.clock.Advance(time.Second)
	require.NoError(t, f.ledger.ReleaseVested(ctx, walletA, epoch))
	assert.Equal(t, "10000", f.balance(t, walletA))

	err = f.ledger.ReleaseVested(ctx, walletA, epoch)
	assert.True(t, errors.Is(err, errs.StateConflict))

	state, err = f.ledger.PoolState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10000", state.TotalDistributed.String())
	assert.True(t, state.TotalVesting.IsZero())
}

func TestReleaseWithoutVesting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0))

	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA)))
	err := f.ledger.ReleaseVested(ctx, walletA, epoch)
	assert.True(t, errors.Is(err, errs.NotFound))
}

func TestClaimBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	e1 := f.activate(t, leaf(walletA, "100", "0", 0))
	e2 := f.activate(t, leaf(walletA, "20", "80", 30*day), leaf(walletB, "1", "0", 0))

	r1, r2 := f.request(t, e1, walletA), f.request(t, e2, walletA)
	epochs := []uint64{e1, e2}
	claimables := []decimal.Decimal{r1.ClaimableNow, r2.ClaimableNow}
	vestings := []decimal.Decimal{r1.VestingAmount, r2.VestingAmount}
	durations := []uint64{r1.VestingDurationSeconds, r2.VestingDurationSeconds}

	t.Run("length mismatch", func(t *testing.T) {
		err := f.ledger.ClaimBatch(ctx, walletA, epochs, claimables, vestings, durations, [][]common.Hash{r1.Proof})
		assert.True(t, errors.Is(err, errs.InputError))
	})

	t.Run("one bad item fails the batch", func(t *testing.T) {
		bad := []decimal.Decimal{r1.ClaimableNow, r2.ClaimableNow.Add(decimal.NewFromInt(1))}
		err := f.ledger.ClaimBatch(ctx, walletA, epochs, bad, vestings, durations, [][]common.Hash{r1.Proof, r2.Proof})
		assert.True(t, errors.Is(err, errs.ProofError))
		assert.Equal(t, "0", f.balance(t, walletA))

		_, err = f.repo.GetClaimRecord(ctx, e1, walletA)
		assert.True(t, errors.Is(err, errs.NotFound), "first item must be rolled back")
	})

	t.Run("duplicate epoch", func(t *testing.T) {
		err := f.ledger.ClaimBatch(ctx, walletA,
			[]uint64{e1, e1},
			[]decimal.Decimal{r1.ClaimableNow, r1.ClaimableNow},
			[]decimal.Decimal{r1.VestingAmount, r1.VestingAmount},
			[]uint64{0, 0},
			[][]common.Hash{r1.Proof, r1.Proof},
		)
		assert.True(t, errors.Is(err, errs.StateConflict))
		assert.Equal(t, "0", f.balance(t, walletA))
	})

	t.Run("success", func(t *testing.T) {
		err := f.ledger.ClaimBatch(ctx, walletA, epochs, claimables, vestings, durations, [][]common.Hash{r1.Proof, r2.Proof})
		require.NoError(t, err)
		assert.Equal(t, "120", f.balance(t, walletA))

		entries, err := f.repo.GetVestingEntriesByWallet(ctx, walletA)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, e2, entries[0].Epoch)
		assert.Equal(t, start.Add(30*day), entries[0].UnlockAt)
	})
}

func TestReleaseVestedBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	e1 := f.activate(t, leaf(walletA, "10", "90", 10*day))
	e2 := f.activate(t, leaf(walletA, "10", "40", 20*day))
	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, e1, walletA)))
	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, e2, walletA)))

	f.clock.Advance(15 * day)
	err := f.ledger.ReleaseVestedBatch(ctx, walletA, []uint64{e1, e2})
	assert.True(t, errors.Is(err, errs.NotYetEligible))
	assert.Equal(t, "20", f.balance(t, walletA), "unlocked entry must not be paid alone")

	f.clock.Advance(5 * day)
	require.NoError(t, f.ledger.ReleaseVestedBatch(ctx, walletA, []uint64{e1, e2}))
	assert.Equal(t, "150", f.balance(t, walletA))

	err = f.ledger.ReleaseVestedBatch(ctx, walletA, nil)
	assert.True(t, errors.Is(err, errs.InputError))
}

func TestPayoutAddress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0))

	require.NoError(t, f.ledger.SetPayoutAddress(ctx, walletA, cold, start.Add(time.Minute)))
	payout, err := f.ledger.PayoutAddress(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, cold, payout)

	require.NoError(t, f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA)))
	assert.Equal(t, "100", f.balance(t, cold))
	assert.Equal(t, "0", f.balance(t, walletA))

	record, err := f.repo.GetClaimRecord(ctx, epoch, walletA)
	require.NoError(t, err)
	assert.Equal(t, cold, record.PayoutAddress)

	require.NoError(t, f.ledger.SetPayoutAddress(ctx, walletA, common.Address{}, start.Add(2*time.Minute)))
	payout, err = f.ledger.PayoutAddress(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, walletA, payout)
}

func TestPayoutChangeReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "0")

	first := start.Add(5 * time.Minute)
	require.NoError(t, f.ledger.SetPayoutAddress(ctx, walletA, cold, first))
	require.NoError(t, f.ledger.SetPayoutAddress(ctx, walletA, common.Address{}, first.Add(time.Minute)))

	for _, deadline := range []time.Time{first, first.Add(time.Minute)} {
		err := f.ledger.SetPayoutAddress(ctx, walletA, cold, deadline)
		assert.True(t, errors.Is(err, errs.StateConflict), "deadline %s", deadline)
	}
	payout, err := f.ledger.PayoutAddress(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, walletA, payout, "replayed change must not undo the reset")

	// deadlines are tracked per wallet
	require.NoError(t, f.ledger.SetPayoutAddress(ctx, walletB, cold, first))
}

func TestUnderfundedClaimRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "50")
	epoch := f.activate(t, leaf(walletA, "100", "0", 0))

	err := f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA))
	require.Error(t, err)

	_, err = f.repo.GetClaimRecord(ctx, epoch, walletA)
	assert.True(t, errors.Is(err, errs.NotFound))
	assert.Equal(t, "50", f.balance(t, treasury))
}

type mockTokenLedger struct {
	mock.Mock
}

func (m *mockTokenLedger) Balance(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockTokenLedger) BalanceOf(ctx context.Context, holder common.Address) (decimal.Decimal, error) {
	args := m.Called(ctx, holder)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockTokenLedger) Transfer(ctx context.Context, to common.Address, amount decimal.Decimal) error {
	return m.Called(ctx, to, amount).Error(0)
}

func (m *mockTokenLedger) Deposit(ctx context.Context, from common.Address, amount decimal.Decimal) error {
	return m.Called(ctx, from, amount).Error(0)
}

func TestExternalTransferFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "0")
	token := &mockTokenLedger{}
	f.ledger = New(f.repo, token, f.clock, tokenDecimals)
	epoch := f.activate(t, leaf(walletA, "25", "75", day))

	token.On("Transfer", mock.Anything, walletA, mock.MatchedBy(func(amount decimal.Decimal) bool {
		return amount.Equal(decimal.NewFromInt(25))
	})).Return(errors.New("rpc unavailable")).Once()

	err := f.ledger.Claim(ctx, walletA, f.request(t, epoch, walletA))
	require.Error(t, err)
	token.AssertExpectations(t)

	_, err = f.repo.GetClaimRecord(ctx, epoch, walletA)
	assert.True(t, errors.Is(err, errs.NotFound))
	_, err = f.repo.GetVestingEntry(ctx, walletA, epoch)
	assert.True(t, errors.Is(err, errs.NotFound))
}

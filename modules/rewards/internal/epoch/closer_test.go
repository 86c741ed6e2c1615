package epoch

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/allocation"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/merkle"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/vesting"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/memory"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tokenDecimals = 18

var (
	owner   = common.HexToAddress("0x000000000000000000000000000000000000000f")
	walletA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	walletB = common.HexToAddress("0x000000000000000000000000000000000000000b")
	genesis = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	week    = DefaultPeriodLength
)

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) Export(ctx context.Context, dist entity.Distribution, awards []entity.WalletEpochAward) error {
	return m.Called(ctx, dist, awards).Error(0)
}

type fixture struct {
	repo     *memory.Repository
	clock    *clockwork.FakeClock
	sm       *commitment.StateMachine
	closer   *Closer
	exporter *mockExporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewRepository(common.HexToAddress("0x7e"))
	clock := clockwork.NewFakeClockAt(genesis)
	sm := commitment.New(repo, clock, owner, commitment.DefaultTimelock)
	exporter := &mockExporter{}
	config := Config{
		Calendar: Calendar{Genesis: genesis, Length: week},
		Pools: map[entity.Tier]decimal.Decimal{
			entity.TierDataNode:  decimal.NewFromInt(1000),
			entity.TierValidator: decimal.NewFromInt(500),
		},
		Params:        allocation.DefaultParams(),
		Policy:        vesting.DefaultPolicy(),
		TokenDecimals: tokenDecimals,
	}
	require.NoError(t, config.Validate())
	return &fixture{
		repo:     repo,
		clock:    clock,
		sm:       sm,
		closer:   NewCloser(repo, repo, sm, exporter, clock, config),
		exporter: exporter,
	}
}

func (f *fixture) seed(periodStart time.Time) {
	f.repo.RegisterDevice(entity.DeviceInfo{DeviceID: "dev-a", Wallet: walletA, Tier: entity.TierDataNode, RegisteredAt: genesis.AddDate(0, -6, 0), TrustWeek: 4, GeoCell: "cell-1"})
	f.repo.RegisterDevice(entity.DeviceInfo{DeviceID: "dev-b", Wallet: walletB, Tier: entity.TierDataNode, RegisteredAt: genesis.AddDate(0, 0, -1), TrustWeek: 1, GeoCell: "cell-2"})
	f.repo.AddActivity(
		entity.ActivityRow{DeviceID: "dev-a", Points: decimal.NewFromInt(300), TasksCompleted: 10, QualityVerified: 10, StreakDays: 7, RecordedAt: periodStart.Add(time.Hour)},
		entity.ActivityRow{DeviceID: "dev-b", Points: decimal.NewFromInt(100), TasksCompleted: 5, QualityVerified: 2, StreakDays: 2, RecordedAt: periodStart.Add(2 * time.Hour)},
		entity.ActivityRow{DeviceID: "ghost", Points: decimal.NewFromInt(999), RecordedAt: periodStart.Add(3 * time.Hour)},
	)
}

func TestCloseBeforePeriodEnds(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(week - time.Second)

	_, err := f.closer.Close(context.Background())
	assert.True(t, errors.Is(err, errs.NotYetEligible))
}

func TestCloseStagesDistribution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(genesis)
	f.clock.Advance(week)
	f.exporter.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	report, err := f.closer.Close(ctx)
	require.NoError(t, err)
	f.exporter.AssertExpectations(t)

	assert.Equal(t, Period{Start: genesis, End: genesis.Add(week)}, report.Period)
	assert.Equal(t, []string{"ghost"}, report.Dropped)
	assert.Equal(t, entity.RootStatusPending, report.RootState.Status)
	assert.Equal(t, report.Distribution.Root, report.RootState.Root)
	require.Len(t, report.Awards, 2)

	pool := decimal.NewFromInt(1000)
	assert.True(t, report.Distribution.TotalAmount.LessThanOrEqual(pool))
	for _, award := range report.Awards {
		assert.True(t, award.ClaimableNow.Add(award.VestingAmount).Equal(award.PohAmount))
		leaf := merkle.Leaf{
			Wallet:                 award.Wallet,
			ClaimableNow:           award.ClaimableNow,
			VestingAmount:          award.VestingAmount,
			VestingDurationSeconds: award.VestingDurationSeconds,
		}
		assert.True(t, merkle.Verify(report.Distribution.Root, leaf, award.Proof, tokenDecimals))
	}
	assert.True(t, report.Awards[0].Veteran, "wallet A registered six months before the period end")
	assert.False(t, report.Awards[1].Veteran)

	assert.Equal(t, report.Distribution.ID, report.RootState.DistributionID)
	stored, err := f.repo.GetWalletAwards(ctx, report.Distribution.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, walletB, stored[1].Wallet)
	assert.Equal(t, report.Awards[1].PohAmount.String(), stored[1].PohAmount.String())

	_, err = f.closer.Close(ctx)
	assert.True(t, errors.Is(err, errs.StateConflict), "pending root blocks the next close")
}

func TestCloseAfterCancelRecomputesPeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(genesis)
	f.clock.Advance(week)
	f.exporter.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket missing"))

	first, err := f.closer.Close(ctx)
	require.NoError(t, err, "export failures do not fail the close")

	_, err = f.sm.Cancel(ctx, owner)
	require.NoError(t, err)

	second, err := f.closer.Close(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Period, second.Period)
	assert.Equal(t, first.Distribution.Root, second.Distribution.Root, "same inputs give the same root")
	assert.NotEqual(t, first.Distribution.ID, second.Distribution.ID)
}

func TestCloseAdvancesPeriods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(genesis)
	f.clock.Advance(week)
	f.exporter.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.closer.Close(ctx)
	require.NoError(t, err)

	f.clock.Advance(commitment.DefaultTimelock)
	state, err := f.sm.Activate(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, state.Epoch)

	dist, err := f.repo.GetLatestDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DistributionStatusActive, dist.Status)
	assert.EqualValues(t, 1, dist.Epoch)

	_, err = f.closer.Close(ctx)
	assert.True(t, errors.Is(err, errs.NotYetEligible))

	// no activity in the second period
	f.clock.Advance(week)
	report, err := f.closer.Close(ctx)
	require.NoError(t, err)
	assert.Equal(t, genesis.Add(week), report.Period.Start)
	assert.Equal(t, entity.DistributionStatusEmpty, report.Distribution.Status)
	assert.Equal(t, common.Hash{}, report.Distribution.Root)
	assert.Empty(t, report.Awards)

	status, err := f.sm.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsPending(), "empty periods stage nothing")

	next, err := f.closer.NextPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, genesis.Add(2*week), next.Start)
}

func TestCloseIdenticalPeriods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.exporter.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repo.RegisterDevice(entity.DeviceInfo{DeviceID: "dev-a", Wallet: walletA, Tier: entity.TierDataNode, RegisteredAt: genesis.AddDate(-1, 0, 0), TrustWeek: 4, GeoCell: "cell-1"})
	for i := 0; i < 2; i++ {
		f.repo.AddActivity(entity.ActivityRow{DeviceID: "dev-a", Points: decimal.NewFromInt(10), TasksCompleted: 1, QualityVerified: 1, RecordedAt: genesis.Add(time.Duration(i)*week + time.Hour)})
	}

	roots := make([]common.Hash, 0, 2)
	for epoch := uint64(1); epoch <= 2; epoch++ {
		f.clock.Advance(week)
		report, err := f.closer.Close(ctx)
		require.NoError(t, err, "close of epoch %d", epoch)
		require.Len(t, report.Awards, 1)
		roots = append(roots, report.Distribution.Root)

		f.clock.Advance(commitment.DefaultTimelock)
		state, err := f.sm.Activate(ctx, owner)
		require.NoError(t, err, "activation of epoch %d", epoch)
		assert.Equal(t, epoch, state.Epoch)

		award, err := f.repo.GetWalletAward(ctx, epoch, walletA)
		require.NoError(t, err)
		assert.Equal(t, report.Awards[0].PohAmount.String(), award.PohAmount.String())
	}
	assert.Equal(t, roots[0], roots[1], "same payouts give the same root")

	first, err := f.repo.GetDistributionByEpoch(ctx, 1)
	require.NoError(t, err)
	second, err := f.repo.GetDistributionByEpoch(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, genesis.Add(week), second.PeriodStart)
}

func TestSchedulerTickActivatesAndCloses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(genesis)
	f.exporter.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	scheduler, err := NewScheduler(f.closer, f.sm, "", true)
	require.NoError(t, err)

	f.clock.Advance(week)
	scheduler.Tick(ctx)
	state, err := f.sm.Status(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsPending())

	f.clock.Advance(commitment.DefaultTimelock)
	scheduler.Tick(ctx)
	state, err = f.sm.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, state.Epoch)
	assert.Equal(t, entity.RootStatusActive, state.Status)

	_, err = NewScheduler(f.closer, f.sm, "every tuesday", false)
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestCalendar(t *testing.T) {
	calendar := Calendar{Genesis: genesis, Length: week}
	require.NoError(t, calendar.Validate())

	first := calendar.After(time.Time{})
	assert.Equal(t, genesis, first.Start)
	assert.Equal(t, genesis.Add(week), first.End)
	assert.False(t, first.Ended(first.End.Add(-time.Nanosecond)))
	assert.True(t, first.Ended(first.End))

	assert.Error(t, Calendar{Genesis: genesis}.Validate())
	assert.Error(t, Calendar{Length: week}.Validate())
}

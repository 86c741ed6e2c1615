// Package epoch closes activity periods into distributions and stages their roots.
package epoch

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/aggregator"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/allocation"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/merkle"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/vesting"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gaze-network/epoch-rewards/pkg/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Exporter receives every staged distribution with its awards.
type Exporter interface {
	Export(ctx context.Context, dist entity.Distribution, awards []entity.WalletEpochAward) error
}

type Config struct {
	Calendar      Calendar
	Pools         map[entity.Tier]decimal.Decimal
	Params        allocation.Params
	Policy        vesting.Policy
	TokenDecimals uint8
}

func (c Config) Validate() error {
	if err := c.Calendar.Validate(); err != nil {
		return errors.Wrap(err, "invalid calendar")
	}
	for tier, pool := range c.Pools {
		if pool.IsNegative() {
			return errors.Wrapf(errs.InvalidArgument, "pool of tier %s must not be negative", tier)
		}
	}
	if err := c.Params.Validate(); err != nil {
		return errors.Wrap(err, "invalid bonus parameters")
	}
	if err := c.Policy.Validate(); err != nil {
		return errors.Wrap(err, "invalid vesting policy")
	}
	return nil
}

// Report describes one epoch close.
type Report struct {
	Period       Period
	Distribution entity.Distribution
	Awards       []entity.WalletEpochAward
	RootState    entity.RootState
	Dropped      []string // activity of unregistered devices
}

// Closer runs the epoch close batch job. Runs never overlap within a process, and the
// store's epoch close lock keeps them from overlapping across processes.
type Closer struct {
	mu            sync.Mutex
	dg            datagateway.RewardsDataGateway
	collaborators datagateway.CollaboratorsDataGateway
	commitment    *commitment.StateMachine
	exporter      Exporter
	clock         clockwork.Clock
	config        Config
}

// NewCloser returns a Closer staging roots as the commitment owner. exporter may be nil.
func NewCloser(dg datagateway.RewardsDataGateway, collaborators datagateway.CollaboratorsDataGateway, sm *commitment.StateMachine, exporter Exporter, clock clockwork.Clock, config Config) *Closer {
	return &Closer{
		dg:            dg,
		collaborators: collaborators,
		commitment:    sm,
		exporter:      exporter,
		clock:         clock,
		config:        config,
	}
}

// NextPeriod returns the earliest period without a live distribution.
func (c *Closer) NextPeriod(ctx context.Context) (Period, error) {
	latest, err := c.dg.GetLatestDistribution(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return c.config.Calendar.After(time.Time{}), nil
		}
		return Period{}, errors.Wrap(err, "failed to get latest distribution")
	}
	return c.config.Calendar.After(latest.PeriodEnd), nil
}

// Close computes the distribution of the next ended period, persists it and stages its root.
// A period without awards is recorded as an empty distribution and stages nothing.
func (c *Closer) Close(ctx context.Context) (report *Report, err error) {
	if !c.mu.TryLock() {
		return nil, errors.Wrap(errs.StateConflict, "epoch close already running")
	}
	defer c.mu.Unlock()

	ctx = logger.WithContext(ctx, slogx.String("module", "epoch"))
	started := c.clock.Now()
	defer func() {
		metrics.EpochCloseTotal.WithLabelValues(metrics.Status(err)).Inc()
		metrics.EpochCloseDuration.Observe(c.clock.Since(started).Seconds())
	}()

	state, err := c.dg.GetRootState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get root state")
	}
	if state.IsPending() {
		return nil, errors.Wrapf(errs.StateConflict, "root already pending: %s", state.Root.Hex())
	}

	period, err := c.NextPeriod(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !period.Ended(started) {
		return nil, errors.Wrapf(errs.NotYetEligible, "period ends at %s", period.End.UTC().Format(time.RFC3339))
	}
	ctx = logger.WithContext(ctx, slogx.Time("period_start", period.Start), slogx.Time("period_end", period.End))

	report, err = c.compute(ctx, period)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	report.Distribution.CreatedAt = started

	if len(report.Awards) == 0 {
		if err := c.persistEmpty(ctx, report); err != nil {
			return nil, errors.WithStack(err)
		}
		report.RootState = state
		logger.InfoContext(ctx, "closed period without awards")
		return report, nil
	}

	report.RootState, err = c.commitment.StageWith(ctx, c.commitment.Owner(), report.Distribution.Root, func(tx datagateway.RewardsDataGatewayWithTx) (int64, error) {
		if err := c.persist(ctx, tx, report); err != nil {
			return 0, errors.WithStack(err)
		}
		return report.Distribution.ID, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to stage root")
	}
	logger.InfoContext(ctx, "staged distribution",
		slogx.Int("wallets", report.Distribution.Wallets),
		slogx.Stringer("total_amount", report.Distribution.TotalAmount),
		slogx.Hash("root", report.Distribution.Root),
		slogx.Time("activates_at", report.RootState.ActivatesAt),
	)

	if c.exporter != nil {
		if err := c.exporter.Export(ctx, report.Distribution, report.Awards); err != nil {
			// the root is staged either way, the export can be rerun from the stored awards
			logger.ErrorContext(ctx, "failed to export distribution", err)
		}
	}
	return report, nil
}

func (c *Closer) persist(ctx context.Context, tx datagateway.RewardsDataGatewayWithTx, report *Report) error {
	acquired, err := tx.AcquireEpochCloseLock(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to acquire epoch close lock")
	}
	if !acquired {
		return errors.Wrap(errs.StateConflict, "epoch close already running")
	}
	id, err := tx.CreateDistribution(ctx, report.Distribution, report.Awards)
	if err != nil {
		return errors.Wrap(err, "failed to create distribution")
	}
	report.Distribution.ID = id
	return nil
}

func (c *Closer) persistEmpty(ctx context.Context, report *Report) error {
	tx, err := c.dg.BeginRewardsTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()
	if err := c.persist(ctx, tx, report); err != nil {
		return errors.WithStack(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

type inputs struct {
	rows          []entity.ActivityRow
	devices       map[string]entity.DeviceInfo
	staked        map[common.Address]bool
	referrals     entity.ReferralSet
	contributions map[common.Address]decimal.Decimal
}

func (c *Closer) fetch(ctx context.Context, period Period) (*inputs, error) {
	in := &inputs{}
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows, err := c.collaborators.GetActivityRows(gctx, period.Start, period.End)
		if err != nil {
			return errors.Wrap(err, "failed to get activity rows")
		}
		devices, err := c.collaborators.GetDevicesByIds(gctx, aggregator.DeviceIDs(rows))
		if err != nil {
			return errors.Wrap(err, "failed to get devices")
		}
		wallets := lo.Uniq(lo.MapToSlice(devices, func(_ string, device entity.DeviceInfo) common.Address {
			return device.Wallet
		}))
		staked, err := c.collaborators.GetStakedWallets(gctx, wallets)
		if err != nil {
			return errors.Wrap(err, "failed to get staked wallets")
		}
		in.rows, in.devices, in.staked = rows, devices, staked
		return nil
	})
	group.Go(func() error {
		referrals, err := c.collaborators.GetReferrals(gctx)
		if err != nil {
			return errors.Wrap(err, "failed to get referrals")
		}
		in.referrals = referrals
		return nil
	})
	group.Go(func() error {
		contributions, err := c.collaborators.GetContributions(gctx, period.Start, period.End)
		if err != nil {
			return errors.Wrap(err, "failed to get contributions")
		}
		in.contributions = contributions
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}
	return in, nil
}

// compute runs aggregation, allocation, vesting classification and the tree build for period.
// Tenure and referral expiry are evaluated at the period end so a rerun yields the same root.
func (c *Closer) compute(ctx context.Context, period Period) (*Report, error) {
	in, err := c.fetch(ctx, period)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats, dropped := aggregator.Aggregate(in.rows, in.devices, in.staked)
	if len(dropped) > 0 {
		logger.WarnContext(ctx, "dropped activity of unregistered devices", slogx.Int("devices", len(dropped)))
	}

	allocated := allocation.Allocate(c.config.Params, allocation.Input{
		Stats:         stats,
		Pools:         c.config.Pools,
		Referrals:     in.referrals,
		Contributions: in.contributions,
		At:            period.End,
	}, c.config.TokenDecimals)

	leaves := make([]merkle.Leaf, 0, len(allocated.Wallets))
	awards := make([]entity.WalletEpochAward, 0, len(allocated.Wallets))
	total := decimal.Zero
	for _, wallet := range allocated.Wallets {
		split := c.config.Policy.Classify(wallet.PohAmount, wallet.EarliestRegisteredAt, period.End, c.config.TokenDecimals)
		leaves = append(leaves, merkle.Leaf{
			Wallet:                 wallet.Wallet,
			ClaimableNow:           split.ClaimableNow,
			VestingAmount:          split.VestingAmount,
			VestingDurationSeconds: split.VestingDurationSeconds,
		})
		awards = append(awards, entity.WalletEpochAward{
			Wallet:                 wallet.Wallet,
			TotalPoints:            wallet.TotalPoints,
			PohAmount:              wallet.PohAmount,
			ClaimableNow:           split.ClaimableNow,
			VestingAmount:          split.VestingAmount,
			VestingDurationSeconds: split.VestingDurationSeconds,
			Veteran:                split.Veteran,
		})
		total = total.Add(wallet.PohAmount)
	}

	tree, err := merkle.Build(leaves, c.config.TokenDecimals)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build merkle tree")
	}
	for i := range awards {
		awards[i].Root = tree.Root
		proof, _ := tree.Proof(awards[i].Wallet)
		awards[i].Proof = proof
	}

	status := entity.DistributionStatusStaged
	if len(awards) == 0 {
		status = entity.DistributionStatusEmpty
	}
	return &Report{
		Period: period,
		Distribution: entity.Distribution{
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
			Root:        tree.Root,
			Status:      status,
			LeafVersion: merkle.LeafVersion,
			Wallets:     len(awards),
			TotalAmount: total,
			TierPoints:  allocated.TierPoints,
		},
		Awards:  awards,
		Dropped: dropped,
	}, nil
}

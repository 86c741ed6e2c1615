package datagateway

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

type RewardsDataGateway interface {
	RewardsReaderDataGateway
	RewardsWriterDataGateway
	TokenLedger

	// BeginRewardsTx returns a new RewardsDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginRewardsTx(ctx context.Context) (RewardsDataGatewayWithTx, error)
}

type RewardsDataGatewayWithTx interface {
	RewardsDataGateway
	Tx
}

// Absent records are reported as errs.NotFound unless stated otherwise.
type RewardsReaderDataGateway interface {
	// GetRootState returns the commitment state. An empty store yields a zero state with status none.
	GetRootState(ctx context.Context) (entity.RootState, error)
	GetEpochRoot(ctx context.Context, epoch uint64) (*entity.EpochRoot, error)
	GetEpochRoots(ctx context.Context) ([]entity.EpochRoot, error)

	// GetLatestDistribution returns the most recent distribution that was not cancelled.
	GetLatestDistribution(ctx context.Context) (*entity.Distribution, error)
	GetDistribution(ctx context.Context, id int64) (*entity.Distribution, error)
	// GetDistributionByEpoch returns the distribution activated as epoch.
	// Roots may repeat across epochs, so distributions are never looked up by root.
	GetDistributionByEpoch(ctx context.Context, epoch uint64) (*entity.Distribution, error)
	// GetWalletAward returns the award of wallet in the distribution activated as epoch.
	GetWalletAward(ctx context.Context, epoch uint64, wallet common.Address) (*entity.WalletEpochAward, error)
	GetWalletAwards(ctx context.Context, distributionID int64) ([]entity.WalletEpochAward, error)

	GetClaimRecord(ctx context.Context, epoch uint64, wallet common.Address) (*entity.ClaimRecord, error)
	GetVestingEntry(ctx context.Context, wallet common.Address, epoch uint64) (*entity.VestingEntry, error)
	GetVestingEntriesByWallet(ctx context.Context, wallet common.Address) ([]entity.VestingEntry, error)
	// GetPoolTotals sums claim records and vesting entries.
	GetPoolTotals(ctx context.Context) (entity.PoolTotals, error)
	GetPayoutAddress(ctx context.Context, wallet common.Address) (common.Address, error)
}

type RewardsWriterDataGateway interface {
	// LockRootState reads the commitment state and holds it until the transaction ends.
	// Concurrent transitions serialize on this lock.
	LockRootState(ctx context.Context) (entity.RootState, error)
	SaveRootState(ctx context.Context, state entity.RootState) error
	CreateEpochRoot(ctx context.Context, root entity.EpochRoot) error

	// CreateDistribution stores a distribution and its awards. It returns the distribution id.
	CreateDistribution(ctx context.Context, dist entity.Distribution, awards []entity.WalletEpochAward) (int64, error)
	// UpdateDistributionStatus updates a staged or active distribution. Returns errs.NotFound when there is none with id.
	UpdateDistributionStatus(ctx context.Context, id int64, status entity.DistributionStatus, epoch uint64) error

	// CreateClaimRecord inserts record unless (epoch, wallet) already exists. It returns false in that case.
	CreateClaimRecord(ctx context.Context, record entity.ClaimRecord) (bool, error)
	CreateVestingEntry(ctx context.Context, entry entity.VestingEntry) error
	// ReleaseVestingEntry flips released from false to true. It returns false when the entry was already released.
	ReleaseVestingEntry(ctx context.Context, wallet common.Address, epoch uint64, at time.Time) (bool, error)
	SetPayoutAddress(ctx context.Context, wallet, payout common.Address) error
	DeletePayoutAddress(ctx context.Context, wallet common.Address) error
	// AdvancePayoutDeadline records deadline as the signature deadline of wallet's latest payout change.
	// It returns false, recording nothing, when deadline is not later than the recorded one.
	AdvancePayoutDeadline(ctx context.Context, wallet common.Address, deadline time.Time) (bool, error)

	// AcquireEpochCloseLock takes a transaction scoped lock guarding epoch close. It returns false if another close holds it.
	AcquireEpochCloseLock(ctx context.Context) (bool, error)
}

// TokenLedger is the balance store rewards are paid from.
// The store's own implementation joins the caller's transaction; an external one does not.
type TokenLedger interface {
	// Balance returns the balance held by the distribution treasury.
	Balance(ctx context.Context) (decimal.Decimal, error)
	BalanceOf(ctx context.Context, holder common.Address) (decimal.Decimal, error)
	// Transfer moves amount from the treasury to to. An insufficient balance fails without side effects.
	Transfer(ctx context.Context, to common.Address, amount decimal.Decimal) error
	// Deposit credits the treasury with amount sent by from.
	Deposit(ctx context.Context, from common.Address, amount decimal.Decimal) error
}

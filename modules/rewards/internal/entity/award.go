package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// WalletEpochAward is a wallet's payout for one distribution. ClaimableNow + VestingAmount == PohAmount.
type WalletEpochAward struct {
	Root                   common.Hash
	Wallet                 common.Address
	TotalPoints            decimal.Decimal
	PohAmount              decimal.Decimal
	ClaimableNow           decimal.Decimal
	VestingAmount          decimal.Decimal
	VestingDurationSeconds uint64
	Veteran                bool
	Proof                  []common.Hash
}

type DistributionStatus string

const (
	DistributionStatusStaged    DistributionStatus = "staged"
	DistributionStatusActive    DistributionStatus = "active"
	DistributionStatusCancelled DistributionStatus = "cancelled"
	DistributionStatusEmpty     DistributionStatus = "empty" // nothing to distribute, no root staged
)

// Distribution is the result of closing one activity period [PeriodStart, PeriodEnd).
type Distribution struct {
	ID          int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	Root        common.Hash // zero for empty distributions
	Epoch       uint64      // set once the root is activated
	Status      DistributionStatus
	LeafVersion uint8
	Wallets     int
	TotalAmount decimal.Decimal
	TierPoints  map[Tier]decimal.Decimal
	CreatedAt   time.Time
}

package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ClaimRecord exists once (Epoch, Wallet) has been claimed. Absence means not claimed.
type ClaimRecord struct {
	Epoch         uint64
	Wallet        common.Address
	PayoutAddress common.Address
	ClaimableNow  decimal.Decimal
	VestingAmount decimal.Decimal
	ClaimedAt     time.Time
}

// VestingEntry is the locked part of a claim. Released entries are kept for audit.
type VestingEntry struct {
	Wallet     common.Address
	Epoch      uint64
	Amount     decimal.Decimal
	UnlockAt   time.Time
	Released   bool
	ReleasedAt time.Time
	CreatedAt  time.Time
}

// PoolTotals is computed from claim records and vesting entries, never stored independently.
type PoolTotals struct {
	TotalDistributed decimal.Decimal
	TotalVesting     decimal.Decimal
}

// PoolState adds the ledger balance views on top of PoolTotals.
type PoolState struct {
	PoolTotals
	RewardsRemaining decimal.Decimal
	RewardsAvailable decimal.Decimal
}

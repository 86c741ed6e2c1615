package httphandler

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

type rootState struct {
	Epoch       uint64      `json:"epoch"`
	Status      string      `json:"status"`
	Root        common.Hash `json:"root"`
	StagedAt    *time.Time  `json:"stagedAt,omitempty"`
	ActivatesAt *time.Time  `json:"activatesAt,omitempty"`
}

type distribution struct {
	PeriodStart time.Time                  `json:"periodStart"`
	PeriodEnd   time.Time                  `json:"periodEnd"`
	Root        common.Hash                `json:"root"`
	Epoch       uint64                     `json:"epoch"`
	Status      string                     `json:"status"`
	LeafVersion uint8                      `json:"leafVersion"`
	Wallets     int                        `json:"wallets"`
	TotalAmount decimal.Decimal            `json:"totalAmount"`
	TierPoints  map[string]decimal.Decimal `json:"tierPoints"`
}

type award struct {
	Epoch                  uint64          `json:"epoch"`
	Root                   common.Hash     `json:"root"`
	TotalPoints            decimal.Decimal `json:"totalPoints"`
	PohAmount              decimal.Decimal `json:"pohAmount"`
	ClaimableNow           decimal.Decimal `json:"claimableNow"`
	VestingAmount          decimal.Decimal `json:"vestingAmount"`
	VestingDurationSeconds uint64          `json:"vestingDurationSeconds"`
	Veteran                bool            `json:"veteran"`
	Proof                  []common.Hash   `json:"proof"`
	Claimed                bool            `json:"claimed"`
	ClaimedAt              *time.Time      `json:"claimedAt,omitempty"`
	PayoutAddress          *common.Address `json:"payoutAddress,omitempty"`
}

type vestingEntry struct {
	Epoch      uint64          `json:"epoch"`
	Amount     decimal.Decimal `json:"amount"`
	UnlockAt   time.Time       `json:"unlockAt"`
	Released   bool            `json:"released"`
	ReleasedAt *time.Time      `json:"releasedAt,omitempty"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func mapRootState(state entity.RootState) rootState {
	return rootState{
		Epoch:       state.Epoch,
		Status:      string(state.Status),
		Root:        state.Root,
		StagedAt:    optionalTime(state.StagedAt),
		ActivatesAt: optionalTime(state.ActivatesAt),
	}
}

func mapDistribution(dist entity.Distribution) distribution {
	tierPoints := make(map[string]decimal.Decimal, len(dist.TierPoints))
	for tier, points := range dist.TierPoints {
		tierPoints[tier.String()] = points
	}
	return distribution{
		PeriodStart: dist.PeriodStart,
		PeriodEnd:   dist.PeriodEnd,
		Root:        dist.Root,
		Epoch:       dist.Epoch,
		Status:      string(dist.Status),
		LeafVersion: dist.LeafVersion,
		Wallets:     dist.Wallets,
		TotalAmount: dist.TotalAmount,
		TierPoints:  tierPoints,
	}
}

func mapVestingEntry(entry entity.VestingEntry) vestingEntry {
	return vestingEntry{
		Epoch:      entry.Epoch,
		Amount:     entry.Amount,
		UnlockAt:   entry.UnlockAt,
		Released:   entry.Released,
		ReleasedAt: optionalTime(entry.ReleasedAt),
	}
}

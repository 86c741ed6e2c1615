// Package vesting splits a wallet award into an immediate and a vesting part by tenure.
package vesting

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/shopspring/decimal"
)

// Tier holds only the immediate fraction; the vesting fraction is 1 - ImmediateFraction.
type Tier struct {
	ImmediateFraction decimal.Decimal
	Duration          time.Duration
}

func (t Tier) VestingFraction() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(t.ImmediateFraction)
}

type Policy struct {
	VeteranThreshold time.Duration
	Veteran          Tier
	NewMiner         Tier
}

func DefaultPolicy() Policy {
	const day = 24 * time.Hour
	return Policy{
		VeteranThreshold: 90 * day,
		Veteran: Tier{
			ImmediateFraction: decimals.MustFromString("0.5"),
			Duration:          90 * day,
		},
		NewMiner: Tier{
			ImmediateFraction: decimals.MustFromString("0.25"),
			Duration:          180 * day,
		},
	}
}

func (p Policy) Validate() error {
	for name, tier := range map[string]Tier{"veteran": p.Veteran, "new miner": p.NewMiner} {
		if tier.ImmediateFraction.IsNegative() || tier.ImmediateFraction.GreaterThan(decimal.NewFromInt(1)) {
			return errors.Wrapf(errs.InvalidArgument, "%s immediate fraction %s must be within [0, 1]", name, tier.ImmediateFraction)
		}
		if tier.Duration < 0 || tier.Duration%time.Second != 0 {
			return errors.Wrapf(errs.InvalidArgument, "%s vesting duration %s must be whole seconds", name, tier.Duration)
		}
	}
	if p.VeteranThreshold < 0 {
		return errors.Wrap(errs.InvalidArgument, "veteran threshold must not be negative")
	}
	return nil
}

type Split struct {
	ClaimableNow           decimal.Decimal
	VestingAmount          decimal.Decimal
	VestingDurationSeconds uint64
	Veteran                bool
}

// Classify splits pohAmount for a wallet whose earliest device registered at earliestRegisteredAt.
// The immediate part is truncated to tokenDecimals and the vesting part takes the remainder,
// so ClaimableNow + VestingAmount == pohAmount exactly. A zero vesting part carries a zero duration.
func (p Policy) Classify(pohAmount decimal.Decimal, earliestRegisteredAt, now time.Time, tokenDecimals uint8) Split {
	tier := p.NewMiner
	veteran := now.Sub(earliestRegisteredAt) >= p.VeteranThreshold
	if veteran {
		tier = p.Veteran
	}

	claimable := decimals.Floor(pohAmount.Mul(tier.ImmediateFraction), tokenDecimals)
	vesting := pohAmount.Sub(claimable)
	split := Split{
		ClaimableNow:  claimable,
		VestingAmount: vesting,
		Veteran:       veteran,
	}
	if vesting.IsPositive() {
		split.VestingDurationSeconds = uint64(tier.Duration / time.Second)
	}
	return split
}

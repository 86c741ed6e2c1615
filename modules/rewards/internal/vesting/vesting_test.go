package vesting

import (
	"testing"
	"time"

	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const day = 24 * time.Hour

func TestClassify(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	testcases := []struct {
		name      string
		amount    string
		tenure    time.Duration
		veteran   bool
		claimable string
		vesting   string
		duration  uint64
	}{
		{"new_miner", "10000", 10 * day, false, "2500", "7500", uint64((180 * day).Seconds())},
		{"just_below_threshold", "10000", 90*day - time.Second, false, "2500", "7500", uint64((180 * day).Seconds())},
		{"at_threshold", "10000", 90 * day, true, "5000", "5000", uint64((90 * day).Seconds())},
		{"veteran_rounding", "0.000000000000000003", 400 * day, true, "0.000000000000000001", "0.000000000000000002", uint64((90 * day).Seconds())},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			amount := decimals.MustFromString(tc.amount)
			split := policy.Classify(amount, now.Add(-tc.tenure), now, 18)
			assert.Equal(t, tc.veteran, split.Veteran)
			assert.True(t, decimals.MustFromString(tc.claimable).Equal(split.ClaimableNow), "claimable %s", split.ClaimableNow)
			assert.True(t, decimals.MustFromString(tc.vesting).Equal(split.VestingAmount), "vesting %s", split.VestingAmount)
			assert.Equal(t, tc.duration, split.VestingDurationSeconds)
			assert.True(t, split.ClaimableNow.Add(split.VestingAmount).Equal(amount))
		})
	}
}

func TestClassifySplitInvariant(t *testing.T) {
	policy := DefaultPolicy()
	policy.NewMiner.ImmediateFraction = decimals.MustFromString("0.333")
	now := time.Now()
	amount := decimal.NewFromInt(1).Div(decimal.NewFromInt(7))
	amount = decimals.Floor(amount, 18)

	split := policy.Classify(amount, now, now, 18)
	assert.True(t, split.ClaimableNow.Add(split.VestingAmount).Equal(amount))
	assert.False(t, split.ClaimableNow.IsNegative())
	assert.False(t, split.VestingAmount.IsNegative())
}

func TestClassifyImmediateOnly(t *testing.T) {
	policy := DefaultPolicy()
	policy.Veteran.ImmediateFraction = decimal.NewFromInt(1)
	now := time.Now()

	split := policy.Classify(decimal.NewFromInt(42), now.Add(-365*day), now, 18)
	assert.True(t, split.VestingAmount.IsZero())
	assert.Zero(t, split.VestingDurationSeconds)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	policy := DefaultPolicy()
	policy.Veteran.ImmediateFraction = decimals.MustFromString("1.1")
	assert.Error(t, policy.Validate())

	policy = DefaultPolicy()
	policy.NewMiner.Duration = 1500 * time.Millisecond
	assert.Error(t, policy.Validate())

	assert.True(t, DefaultPolicy().Veteran.VestingFraction().Equal(decimals.MustFromString("0.5")))
}

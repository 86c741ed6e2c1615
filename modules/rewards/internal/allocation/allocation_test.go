package allocation

import (
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenDecimals = 18

var (
	walletA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	walletB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	walletC = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func stat(id string, wallet common.Address, tier entity.Tier, points int64) entity.DeviceEpochStat {
	return entity.DeviceEpochStat{
		DeviceID:  id,
		Wallet:    wallet,
		Tier:      tier,
		RawPoints: decimal.NewFromInt(points),
		TrustWeek: 4,
	}
}

func pools(dataNode, validator int64) map[entity.Tier]decimal.Decimal {
	return map[entity.Tier]decimal.Decimal{
		entity.TierDataNode:  decimal.NewFromInt(dataNode),
		entity.TierValidator: decimal.NewFromInt(validator),
	}
}

func TestAllocateDeviceFarming(t *testing.T) {
	stats := make([]entity.DeviceEpochStat, 0, 4)
	for i := 0; i < 4; i++ {
		s := stat(fmt.Sprintf("dev-%d", i), walletA, entity.TierDataNode, 100)
		s.GeoCell = "8928308280fffff"
		stats = append(stats, s)
	}

	result := Allocate(DefaultParams(), Input{Stats: stats, Pools: pools(1_000_000, 0)}, tokenDecimals)
	require.Len(t, result.Devices, 4)

	// geo decay and wallet decay compound: 1*1, 0.5/2, 0.25/3, 0.1/4
	expected := []decimal.Decimal{
		decimal.NewFromInt(100),
		decimal.NewFromInt(25),
		decimal.NewFromInt(25).Div(decimal.NewFromInt(3)),
		decimals.MustFromString("2.5"),
	}
	for i, device := range result.Devices {
		assert.Equal(t, i, device.GeoRank)
		assert.Equal(t, i, device.WalletRank)
		assert.True(t, expected[i].Equal(device.AdjustedPoints), "device %d: expected %s, got %s", i, expected[i], device.AdjustedPoints)
	}

	require.Len(t, result.Wallets, 1)
	assert.Equal(t, 4, result.Wallets[0].Devices)
	assert.True(t, result.Wallets[0].PohAmount.LessThanOrEqual(decimal.NewFromInt(1_000_000)))
}

func TestAllocateGeoRankIsPerWalletAndCell(t *testing.T) {
	a1 := stat("a1", walletA, entity.TierDataNode, 100)
	a1.GeoCell = "x"
	b1 := stat("b1", walletB, entity.TierDataNode, 100)
	b1.GeoCell = "x"
	a2 := stat("a2", walletA, entity.TierDataNode, 100)
	a2.GeoCell = "y"

	result := Allocate(DefaultParams(), Input{Stats: []entity.DeviceEpochStat{a1, b1, a2}, Pools: pools(1000, 0)}, tokenDecimals)
	assert.Equal(t, 0, result.Devices[0].GeoRank)
	assert.Equal(t, 0, result.Devices[1].GeoRank, "other wallet in the same cell does not decay")
	assert.Equal(t, 0, result.Devices[2].GeoRank, "different cell starts a new rank")
	assert.Equal(t, 1, result.Devices[2].WalletRank)
}

func TestAllocateZeroValidatorTier(t *testing.T) {
	stats := []entity.DeviceEpochStat{
		stat("d1", walletA, entity.TierDataNode, 10),
		stat("d2", walletB, entity.TierDataNode, 30),
	}
	result := Allocate(DefaultParams(), Input{Stats: stats, Pools: pools(1000, 5000)}, tokenDecimals)

	assert.True(t, result.TierPoints[entity.TierValidator].IsZero())
	assert.True(t, result.Distributed[entity.TierValidator].IsZero())
	assert.True(t, result.Distributed[entity.TierDataNode].Equal(decimal.NewFromInt(1000)))
	require.Len(t, result.Wallets, 2)
	assert.True(t, result.Wallets[0].PohAmount.Equal(decimal.NewFromInt(250)))
	assert.True(t, result.Wallets[1].PohAmount.Equal(decimal.NewFromInt(750)))
}

func TestAllocateNoActivity(t *testing.T) {
	result := Allocate(DefaultParams(), Input{Pools: pools(1000, 1000)}, tokenDecimals)
	assert.Empty(t, result.Wallets)
	assert.Empty(t, result.Devices)
}

func TestAllocateNeverOvershootsPool(t *testing.T) {
	stats := []entity.DeviceEpochStat{
		stat("d1", walletA, entity.TierDataNode, 1),
		stat("d2", walletB, entity.TierDataNode, 1),
		stat("d3", walletC, entity.TierDataNode, 1),
		stat("v1", walletA, entity.TierValidator, 7),
		stat("v2", walletC, entity.TierValidator, 11),
	}
	stats[4].IsStaked = true
	in := Input{
		Stats:         stats,
		Pools:         pools(100, 333),
		Contributions: map[common.Address]decimal.Decimal{walletB: decimals.MustFromString("0.3")},
	}
	result := Allocate(DefaultParams(), in, tokenDecimals)

	for _, tier := range entity.Tiers {
		assert.True(t, result.Distributed[tier].LessThanOrEqual(in.Pools[tier]), "tier %s overshoots: %s", tier, result.Distributed[tier])
	}
	total := decimal.Zero
	for _, wallet := range result.Wallets {
		total = total.Add(wallet.PohAmount)
		assert.Equal(t, wallet.PohAmount.String(), decimals.Floor(wallet.PohAmount, tokenDecimals).String())
	}
	assert.True(t, total.Equal(result.Distributed[entity.TierDataNode].Add(result.Distributed[entity.TierValidator])))
	assert.True(t, total.LessThanOrEqual(decimal.NewFromInt(433)))
}

func TestAllocateCapBeforeReferralAndStake(t *testing.T) {
	v := stat("v1", walletA, entity.TierValidator, 1_000_000)
	v.IsStaked = true
	at := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	in := Input{
		Stats:     []entity.DeviceEpochStat{v},
		Pools:     pools(0, 1000),
		Referrals: entity.ReferralSet{walletA: at.Add(time.Hour)},
		At:        at,
	}
	result := Allocate(DefaultParams(), in, tokenDecimals)

	// cap = 1000 * 0.01 * 7 = 70, then referral 1.05 and stake 1.5 on top
	assert.True(t, decimals.MustFromString("110.25").Equal(result.Devices[0].AdjustedPoints), "got %s", result.Devices[0].AdjustedPoints)
}

func TestAllocateExpiredReferral(t *testing.T) {
	at := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	in := Input{
		Stats:     []entity.DeviceEpochStat{stat("d1", walletA, entity.TierDataNode, 10)},
		Pools:     pools(1000, 0),
		Referrals: entity.ReferralSet{walletA: at},
		At:        at,
	}
	result := Allocate(DefaultParams(), in, tokenDecimals)
	assert.False(t, result.Devices[0].Referral)
	assert.True(t, decimal.NewFromInt(10).Equal(result.Devices[0].AdjustedPoints))
}

func TestAllocateExternalBonusOncePerWallet(t *testing.T) {
	in := Input{
		Stats: []entity.DeviceEpochStat{
			stat("d1", walletA, entity.TierDataNode, 10),
			stat("d2", walletA, entity.TierDataNode, 10),
		},
		Pools:         pools(1000, 0),
		Contributions: map[common.Address]decimal.Decimal{walletA: decimal.NewFromInt(4)},
	}
	result := Allocate(DefaultParams(), in, tokenDecimals)
	assert.True(t, decimal.NewFromInt(14).Equal(result.Devices[0].AdjustedPoints))
	assert.True(t, decimal.NewFromInt(5).Equal(result.Devices[1].AdjustedPoints))
	assert.True(t, decimal.NewFromInt(19).Equal(result.Wallets[0].TotalPoints))
}

func TestAllocateEarliestRegistration(t *testing.T) {
	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := stat("d1", walletA, entity.TierDataNode, 10)
	d1.RegisteredAt = early.Add(48 * time.Hour)
	d2 := stat("d2", walletA, entity.TierDataNode, 10)
	d2.RegisteredAt = early

	result := Allocate(DefaultParams(), Input{Stats: []entity.DeviceEpochStat{d1, d2}, Pools: pools(1000, 0)}, tokenDecimals)
	require.Len(t, result.Wallets, 1)
	assert.Equal(t, early, result.Wallets[0].EarliestRegisteredAt)
}

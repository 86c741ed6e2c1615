// Package allocation turns per-device totals into per-wallet shares of the tier pools.
package allocation

import (
	"bytes"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

// CapDays turns DailyCapFraction into a per-period ceiling.
const CapDays = 7

type Input struct {
	Stats         []entity.DeviceEpochStat // aggregation order
	Pools         map[entity.Tier]decimal.Decimal
	Referrals     entity.ReferralSet
	Contributions map[common.Address]decimal.Decimal
	At            time.Time // referral expiries are evaluated at this time
}

type DeviceResult struct {
	Device
	AdjustedPoints decimal.Decimal
	Share          decimal.Decimal
}

type WalletResult struct {
	Wallet               common.Address
	TotalPoints          decimal.Decimal
	PohAmount            decimal.Decimal
	EarliestRegisteredAt time.Time
	Devices              int
}

type Result struct {
	Devices     []DeviceResult
	Wallets     []WalletResult // wallets with a positive award, ordered by address
	TierPoints  map[entity.Tier]decimal.Decimal
	Distributed map[entity.Tier]decimal.Decimal
}

// Allocate adjusts every device through the Pipeline and splits each tier pool pro rata over adjusted points.
// Shares are truncated to tokenDecimals so the sum per tier never exceeds the tier pool.
// A tier with zero total points distributes nothing.
func Allocate(params Params, in Input, tokenDecimals uint8) Result {
	devices := prepare(params, in)

	result := Result{
		Devices:     make([]DeviceResult, 0, len(devices)),
		TierPoints:  make(map[entity.Tier]decimal.Decimal, len(entity.Tiers)),
		Distributed: make(map[entity.Tier]decimal.Decimal, len(entity.Tiers)),
	}
	for _, tier := range entity.Tiers {
		result.TierPoints[tier] = decimal.Zero
		result.Distributed[tier] = decimal.Zero
	}

	for _, device := range devices {
		adjusted := Adjust(params, device)
		result.Devices = append(result.Devices, DeviceResult{Device: device, AdjustedPoints: adjusted, Share: decimal.Zero})
		result.TierPoints[device.Stat.Tier] = result.TierPoints[device.Stat.Tier].Add(adjusted)
	}

	wallets := make(map[common.Address]*WalletResult)
	for i := range result.Devices {
		device := &result.Devices[i]
		tier := device.Stat.Tier
		wallet, ok := wallets[device.Stat.Wallet]
		if !ok {
			wallet = &WalletResult{
				Wallet:               device.Stat.Wallet,
				TotalPoints:          decimal.Zero,
				PohAmount:            decimal.Zero,
				EarliestRegisteredAt: device.Stat.RegisteredAt,
			}
			wallets[device.Stat.Wallet] = wallet
		}
		wallet.Devices++
		wallet.TotalPoints = wallet.TotalPoints.Add(device.AdjustedPoints)
		if device.Stat.RegisteredAt.Before(wallet.EarliestRegisteredAt) {
			wallet.EarliestRegisteredAt = device.Stat.RegisteredAt
		}

		total := result.TierPoints[tier]
		pool := in.Pools[tier]
		if !total.IsPositive() || !pool.IsPositive() || !device.AdjustedPoints.IsPositive() {
			continue
		}
		share, _ := pool.Mul(device.AdjustedPoints).QuoRem(total, int32(tokenDecimals))
		device.Share = share
		wallet.PohAmount = wallet.PohAmount.Add(share)
		result.Distributed[tier] = result.Distributed[tier].Add(share)
	}

	result.Wallets = make([]WalletResult, 0, len(wallets))
	for _, wallet := range wallets {
		if wallet.PohAmount.IsPositive() {
			result.Wallets = append(result.Wallets, *wallet)
		}
	}
	sort.Slice(result.Wallets, func(i, j int) bool {
		return bytes.Compare(result.Wallets[i].Wallet.Bytes(), result.Wallets[j].Wallet.Bytes()) < 0
	})
	return result
}

// prepare computes ranks, caps and per-wallet lookups for every device, keeping input order.
func prepare(params Params, in Input) []Device {
	type cellKey struct {
		wallet common.Address
		cell   string
	}
	walletCount := make(map[common.Address]int)
	cellCount := make(map[cellKey]int)

	devices := make([]Device, 0, len(in.Stats))
	for _, stat := range in.Stats {
		device := Device{
			Stat:          stat,
			WalletRank:    walletCount[stat.Wallet],
			GeoRank:       -1,
			DailyCap:      in.Pools[stat.Tier].Mul(params.DailyCapFraction).Mul(decimal.NewFromInt(CapDays)),
			Referral:      in.Referrals.Active(stat.Wallet, in.At),
			ExternalBonus: decimal.Zero,
		}
		walletCount[stat.Wallet]++
		if stat.GeoCell != "" {
			key := cellKey{wallet: stat.Wallet, cell: stat.GeoCell}
			device.GeoRank = cellCount[key]
			cellCount[key]++
		}
		if device.WalletRank == 0 {
			if bonus, ok := in.Contributions[stat.Wallet]; ok {
				device.ExternalBonus = bonus
			}
		}
		devices = append(devices, device)
	}
	return devices
}

package allocation

import (
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Device is what a step may read about the device being adjusted.
type Device struct {
	Stat          entity.DeviceEpochStat
	GeoRank       int // rank among the wallet's devices sharing Stat.GeoCell
	WalletRank    int // rank among all of the wallet's devices
	DailyCap      decimal.Decimal
	Referral      bool
	ExternalBonus decimal.Decimal // non-zero on the wallet's first device only
}

// Step is one pure adjustment of a device's points.
type Step struct {
	Name  string
	Apply func(params Params, device Device, points decimal.Decimal) decimal.Decimal
}

// Pipeline is the fixed adjustment order. Later steps compound on earlier results
// and the cap is applied before referral, stake and the additive bonus.
var Pipeline = []Step{
	{Name: "quality", Apply: QualityBonus},
	{Name: "streak", Apply: StreakBonus},
	{Name: "trust_ramp", Apply: TrustRamp},
	{Name: "geo_decay", Apply: GeoDecay},
	{Name: "wallet_decay", Apply: WalletDecay},
	{Name: "daily_cap", Apply: DailyCap},
	{Name: "referral", Apply: ReferralBonus},
	{Name: "validator_stake", Apply: ValidatorStake},
	{Name: "external_bonus", Apply: ExternalBonus},
}

// Adjust runs the pipeline over the device's raw points.
func Adjust(params Params, device Device) decimal.Decimal {
	points := device.Stat.RawPoints
	for _, step := range Pipeline {
		points = step.Apply(params, device, points)
	}
	return points
}

func QualityBonus(params Params, device Device, points decimal.Decimal) decimal.Decimal {
	if device.Stat.TasksCompleted <= 0 {
		return points
	}
	ratio := decimal.NewFromInt(device.Stat.QualityVerifiedCount).Div(decimal.NewFromInt(device.Stat.TasksCompleted))
	return points.Mul(one.Add(params.QualityBonusRate.Mul(ratio)))
}

func StreakBonus(params Params, device Device, points decimal.Decimal) decimal.Decimal {
	switch {
	case device.Stat.MaxStreakDays >= 30:
		return points.Mul(one.Add(params.Streak30dRate))
	case device.Stat.MaxStreakDays >= 7:
		return points.Mul(one.Add(params.Streak7dRate))
	default:
		return points
	}
}

func TrustRamp(params Params, device Device, points decimal.Decimal) decimal.Decimal {
	if len(params.TrustRamp) == 0 {
		return points
	}
	idx := max(min(device.Stat.TrustWeek-1, len(params.TrustRamp)-1), 0)
	return points.Mul(params.TrustRamp[idx])
}

func GeoDecay(params Params, device Device, points decimal.Decimal) decimal.Decimal {
	if device.Stat.GeoCell == "" || len(params.GeoDecay) == 0 {
		return points
	}
	idx := max(min(device.GeoRank, len(params.GeoDecay)-1), 0)
	return points.Mul(params.GeoDecay[idx])
}

// WalletDecay weights the wallet's n-th device by 1/n.
func WalletDecay(_ Params, device Device, points decimal.Decimal) decimal.Decimal {
	return points.Div(decimal.NewFromInt(int64(device.WalletRank) + 1))
}

func DailyCap(_ Params, device Device, points decimal.Decimal) decimal.Decimal {
	return decimal.Min(points, device.DailyCap)
}

func ReferralBonus(params Params, device Device, points decimal.Decimal) decimal.Decimal {
	if !device.Referral {
		return points
	}
	return points.Mul(one.Add(params.ReferralBonusRate))
}

func ValidatorStake(params Params, device Device, points decimal.Decimal) decimal.Decimal {
	if device.Stat.Tier != entity.TierValidator || !device.Stat.IsStaked {
		return points
	}
	return points.Mul(params.ValidatorStakedMultiplier)
}

func ExternalBonus(_ Params, device Device, points decimal.Decimal) decimal.Decimal {
	if !device.ExternalBonus.IsPositive() {
		return points
	}
	return points.Add(device.ExternalBonus)
}

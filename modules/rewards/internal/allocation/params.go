package allocation

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/shopspring/decimal"
)

// Params are the bonus model constants. Changing any of them changes historical payouts.
type Params struct {
	QualityBonusRate          decimal.Decimal
	Streak7dRate              decimal.Decimal
	Streak30dRate             decimal.Decimal
	TrustRamp                 []decimal.Decimal // indexed by trust week - 1
	GeoDecay                  []decimal.Decimal // indexed by rank inside a wallet's geo cell
	DailyCapFraction          decimal.Decimal
	ReferralBonusRate         decimal.Decimal
	ValidatorStakedMultiplier decimal.Decimal
}

func DefaultParams() Params {
	return Params{
		QualityBonusRate: decimals.MustFromString("0.25"),
		Streak7dRate:     decimals.MustFromString("0.05"),
		Streak30dRate:    decimals.MustFromString("0.15"),
		TrustRamp: []decimal.Decimal{
			decimals.MustFromString("0.25"),
			decimals.MustFromString("0.5"),
			decimals.MustFromString("0.75"),
			decimal.NewFromInt(1),
		},
		GeoDecay: []decimal.Decimal{
			decimal.NewFromInt(1),
			decimals.MustFromString("0.5"),
			decimals.MustFromString("0.25"),
			decimals.MustFromString("0.1"),
		},
		DailyCapFraction:          decimals.MustFromString("0.01"),
		ReferralBonusRate:         decimals.MustFromString("0.05"),
		ValidatorStakedMultiplier: decimals.MustFromString("1.5"),
	}
}

func (p Params) Validate() error {
	var errList []error
	for name, v := range map[string]decimal.Decimal{
		"quality bonus rate":          p.QualityBonusRate,
		"streak 7d rate":              p.Streak7dRate,
		"streak 30d rate":             p.Streak30dRate,
		"daily cap fraction":          p.DailyCapFraction,
		"referral bonus rate":         p.ReferralBonusRate,
		"validator staked multiplier": p.ValidatorStakedMultiplier,
	} {
		if v.IsNegative() {
			errList = append(errList, errors.Errorf("%s must not be negative", name))
		}
	}
	if len(p.TrustRamp) == 0 {
		errList = append(errList, errors.New("trust ramp must not be empty"))
	}
	if len(p.GeoDecay) == 0 {
		errList = append(errList, errors.New("geo decay must not be empty"))
	}
	for _, v := range append(append([]decimal.Decimal{}, p.TrustRamp...), p.GeoDecay...) {
		if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
			errList = append(errList, errors.Errorf("table weight %s must be within [0, 1]", v))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return errors.Wrap(errors.Mark(err, errs.InvalidArgument), "invalid allocation params")
	}
	return nil
}

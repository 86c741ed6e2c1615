package config

import (
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	rewardscommon "github.com/gaze-network/epoch-rewards/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/allocation"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/epoch"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/vesting"
	"github.com/shopspring/decimal"
)

const DefaultTokenDecimals = 18

func parseAddress(name, value string) (common.Address, error) {
	addr, err := rewardscommon.ParseAddress(value)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "invalid %s", name)
	}
	if addr == rewardscommon.ZeroAddress {
		return common.Address{}, errors.Wrapf(errs.InvalidArgument, "%s must not be the zero address", name)
	}
	return addr, nil
}

func (c Config) OwnerAddress() (common.Address, error) {
	return parseAddress("owner", c.Owner)
}

func (c Config) TreasuryAddress() (common.Address, error) {
	return parseAddress("treasury", c.Treasury)
}

func (c Config) GetTokenDecimals() uint8 {
	return utils.Default(c.TokenDecimals, DefaultTokenDecimals)
}

func (c Config) GetTimelock() time.Duration {
	return utils.Default(c.Timelock, commitment.DefaultTimelock)
}

// EpochConfig builds the epoch close configuration with defaults applied.
func (c Config) EpochConfig() (epoch.Config, error) {
	genesis, err := time.Parse(time.RFC3339, c.Genesis)
	if err != nil {
		return epoch.Config{}, errors.Wrapf(errs.InvalidArgument, "genesis %q must be RFC3339", c.Genesis)
	}

	pools := make(map[entity.Tier]decimal.Decimal, len(c.Pools))
	for name, value := range c.Pools {
		tier, err := entity.ParseTier(name)
		if err != nil {
			return epoch.Config{}, errors.WithStack(err)
		}
		pool, err := decimal.NewFromString(value)
		if err != nil {
			return epoch.Config{}, errors.Wrapf(errs.InvalidArgument, "pool of tier %s %q is not a number", name, value)
		}
		pools[tier] = pool
	}

	params, err := c.Bonus.params()
	if err != nil {
		return epoch.Config{}, errors.Wrap(err, "invalid bonus configuration")
	}
	policy, err := c.Vesting.policy()
	if err != nil {
		return epoch.Config{}, errors.Wrap(err, "invalid vesting configuration")
	}

	conf := epoch.Config{
		Calendar: epoch.Calendar{
			Genesis: genesis.UTC(),
			Length:  utils.Default(c.PeriodLength, epoch.DefaultPeriodLength),
		},
		Pools:         pools,
		Params:        params,
		Policy:        policy,
		TokenDecimals: c.GetTokenDecimals(),
	}
	if err := conf.Validate(); err != nil {
		return epoch.Config{}, errors.WithStack(err)
	}
	return conf, nil
}

// overrideDecimal replaces *dst with value unless value is empty.
func overrideDecimal(dst *decimal.Decimal, name, value string) error {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return errors.Wrapf(errs.InvalidArgument, "%s %q is not a number", name, value)
	}
	*dst = d
	return nil
}

func overrideDecimals(dst *[]decimal.Decimal, name string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	result := make([]decimal.Decimal, len(values))
	for i, value := range values {
		if err := overrideDecimal(&result[i], name, value); err != nil {
			return errors.WithStack(err)
		}
	}
	*dst = result
	return nil
}

func (b BonusConfig) params() (allocation.Params, error) {
	params := allocation.DefaultParams()
	for _, override := range []struct {
		dst   *decimal.Decimal
		name  string
		value string
	}{
		{&params.QualityBonusRate, "quality_bonus_rate", b.QualityBonusRate},
		{&params.Streak7dRate, "streak_7d_rate", b.Streak7dRate},
		{&params.Streak30dRate, "streak_30d_rate", b.Streak30dRate},
		{&params.DailyCapFraction, "daily_cap_fraction", b.DailyCapFraction},
		{&params.ReferralBonusRate, "referral_bonus_rate", b.ReferralBonusRate},
		{&params.ValidatorStakedMultiplier, "validator_staked_multiplier", b.ValidatorStakedMultiplier},
	} {
		if err := overrideDecimal(override.dst, override.name, override.value); err != nil {
			return allocation.Params{}, errors.WithStack(err)
		}
	}
	if err := overrideDecimals(&params.TrustRamp, "trust_ramp", b.TrustRamp); err != nil {
		return allocation.Params{}, errors.WithStack(err)
	}
	if err := overrideDecimals(&params.GeoDecay, "geo_decay", b.GeoDecay); err != nil {
		return allocation.Params{}, errors.WithStack(err)
	}
	return params, nil
}

func (v VestingConfig) policy() (vesting.Policy, error) {
	policy := vesting.DefaultPolicy()
	policy.VeteranThreshold = utils.Default(v.VeteranThreshold, policy.VeteranThreshold)
	for _, tier := range []struct {
		dst  *vesting.Tier
		name string
		conf VestingTierConfig
	}{
		{&policy.Veteran, "veteran", v.Veteran},
		{&policy.NewMiner, "new_miner", v.NewMiner},
	} {
		if err := overrideDecimal(&tier.dst.ImmediateFraction, tier.name+".immediate_fraction", tier.conf.ImmediateFraction); err != nil {
			return vesting.Policy{}, errors.WithStack(err)
		}
		tier.dst.Duration = utils.Default(tier.conf.Duration, tier.dst.Duration)
	}
	return policy, nil
}

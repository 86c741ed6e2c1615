package config

import (
	"time"

	"github.com/gaze-network/epoch-rewards/internal/postgres"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/export"
)

type Config struct {
	Database    string          `mapstructure:"database"` // Database to store rewards data. `postgres` | `memory`
	Postgres    postgres.Config `mapstructure:"postgres"`
	APIHandlers []string        `mapstructure:"api_handlers"` // API handlers to mount. e.g. `http`

	Owner         string        `mapstructure:"owner"`    // address allowed to stage, activate and cancel roots
	Treasury      string        `mapstructure:"treasury"` // address of the account rewards are paid from
	TokenDecimals uint8         `mapstructure:"token_decimals"`
	Timelock      time.Duration `mapstructure:"timelock"` // Default is 48h

	Genesis      string            `mapstructure:"genesis"`       // RFC3339 start of the first activity period
	PeriodLength time.Duration     `mapstructure:"period_length"` // Default is 168h
	Pools        map[string]string `mapstructure:"pools"`         // tier name -> pool size in tokens
	Bonus        BonusConfig       `mapstructure:"bonus"`
	Vesting      VestingConfig     `mapstructure:"vesting"`

	Schedule         string        `mapstructure:"schedule"`          // cron spec with seconds. Default is hourly.
	DisableScheduler bool          `mapstructure:"disable_scheduler"` // close epochs only through the CLI or API
	AutoActivate     bool          `mapstructure:"auto_activate"`     // activate the pending root once its timelock expires
	Export           export.Config `mapstructure:"export"`
}

// BonusConfig overrides the bonus model constants. Empty values keep the defaults.
type BonusConfig struct {
	QualityBonusRate          string   `mapstructure:"quality_bonus_rate"`
	Streak7dRate              string   `mapstructure:"streak_7d_rate"`
	Streak30dRate             string   `mapstructure:"streak_30d_rate"`
	TrustRamp                 []string `mapstructure:"trust_ramp"`
	GeoDecay                  []string `mapstructure:"geo_decay"`
	DailyCapFraction          string   `mapstructure:"daily_cap_fraction"`
	ReferralBonusRate         string   `mapstructure:"referral_bonus_rate"`
	ValidatorStakedMultiplier string   `mapstructure:"validator_staked_multiplier"`
}

// VestingConfig overrides the vesting tiers. Zero values keep the defaults.
type VestingConfig struct {
	VeteranThreshold time.Duration     `mapstructure:"veteran_threshold"`
	Veteran          VestingTierConfig `mapstructure:"veteran"`
	NewMiner         VestingTierConfig `mapstructure:"new_miner"`
}

type VestingTierConfig struct {
	ImmediateFraction string        `mapstructure:"immediate_fraction"`
	Duration          time.Duration `mapstructure:"duration"`
}

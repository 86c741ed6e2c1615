package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	rewardsconfig "github.com/gaze-network/epoch-rewards/modules/rewards/config"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gaze-network/epoch-rewards/pkg/middleware/requestcontext"
	"github.com/gaze-network/epoch-rewards/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
		Modules: Modules{
			Rewards: rewardsconfig.Config{
				Database:    "postgres",
				APIHandlers: []string{"http"},
			},
		},
	}
)

type Config struct {
	Logger     logger.Config    `mapstructure:"logger"`
	HTTPServer HTTPServerConfig `mapstructure:"http_server"`
	Modules    Modules          `mapstructure:"modules"`
	APIOnly    bool             `mapstructure:"api_only"` // serve the API without running the epoch scheduler
}

type Modules struct {
	Rewards rewardsconfig.Config `mapstructure:"rewards"`
}

type HTTPServerConfig struct {
	Port        int                               `mapstructure:"port"`
	MetricsPort int                               `mapstructure:"metrics_port"` // 0 disables the Prometheus endpoint
	Logger      requestlogger.Config              `mapstructure:"logger"`
	RequestIP   requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

// BindPFlag binds a viper key to a command line flag.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slogx.Error(err))
	}
}

// Parse reads configFile, or ./config.yaml when it is empty, then environment variables.
// Environment variables use "_" for nesting, e.g. MODULES_REWARDS_DATABASE.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "Config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "Failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "Config loaded", slogx.String("file", viper.ConfigFileUsed()))
	})

	return *config
}

// Load returns the parsed configuration. Parse must have been called.
func Load() Config {
	return *config
}

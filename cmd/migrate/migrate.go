package migrate

import (
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/pflag"
)

const (
	rewardsMigrationSource = "modules/rewards/database/postgresql/migrations"
	rewardsMigrationTable  = "rewards_schema_migrations"
)

type migrateOptions struct {
	DatabaseURL string
	Source      string
	Verbose     bool
}

func (o *migrateOptions) bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.Source, "source", rewardsMigrationSource, "Path to rewards migrations directory")
	flags.StringVar(&o.DatabaseURL, "database-url", "", "Database url to run migration on. Default is modules.rewards.postgres.url from the config file")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "Print every applied migration")
}

// newMigrate opens a migrate instance against the rewards schema. The database
// url falls back to the configured postgres url when the flag is empty.
func (o *migrateOptions) newMigrate() (*migrate.Migrate, error) {
	rawURL := o.DatabaseURL
	if rawURL == "" {
		rawURL = config.Load().Modules.Rewards.Postgres.URL
	}
	if rawURL == "" {
		return nil, errors.New("--database-url is required")
	}
	databaseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}

	newDatabaseURL := cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {rewardsMigrationTable}})
	m, err := migrate.New("file://"+o.Source, newDatabaseURL.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Migrate instance")
	}
	m.Log = &consoleLogger{
		prefix:  "[rewards] ",
		verbose: o.Verbose,
	}
	return m, nil
}

var _ migrate.Logger = (*consoleLogger)(nil)

// consoleLogger prints migration progress to stdout.
type consoleLogger struct {
	prefix  string
	verbose bool
}

func (l *consoleLogger) Printf(format string, v ...interface{}) {
	fmt.Printf(l.prefix+format, v...)
}

func (l *consoleLogger) Verbose() bool {
	return l.verbose
}

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

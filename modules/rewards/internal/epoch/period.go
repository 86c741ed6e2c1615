package epoch

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
)

const DefaultPeriodLength = 7 * 24 * time.Hour

// Period is the half-open activity window [Start, End) covered by one distribution.
type Period struct {
	Start time.Time
	End   time.Time
}

// Ended reports whether activity can no longer be recorded in p at now.
func (p Period) Ended(now time.Time) bool {
	return !now.Before(p.End)
}

// Calendar lays periods of Length back to back from Genesis.
type Calendar struct {
	Genesis time.Time
	Length  time.Duration
}

func (c Calendar) Validate() error {
	if c.Genesis.IsZero() {
		return errors.Wrap(errs.InvalidArgument, "genesis is required")
	}
	if c.Length <= 0 {
		return errors.Wrap(errs.InvalidArgument, "period length must be positive")
	}
	return nil
}

// After returns the period starting at end, the end of the previous period. A zero end is the genesis.
func (c Calendar) After(end time.Time) Period {
	start := end
	if start.IsZero() {
		start = c.Genesis
	}
	return Period{Start: start, End: start.Add(c.Length)}
}

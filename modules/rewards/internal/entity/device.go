package entity

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/shopspring/decimal"
)

type Tier uint8

const (
	TierDataNode Tier = iota
	TierValidator
)

var Tiers = []Tier{TierDataNode, TierValidator}

func (t Tier) String() string {
	switch t {
	case TierDataNode:
		return "data_node"
	case TierValidator:
		return "validator"
	}
	return "unknown"
}

func ParseTier(s string) (Tier, error) {
	switch s {
	case "data_node", "datanode", "DataNode":
		return TierDataNode, nil
	case "validator", "Validator":
		return TierValidator, nil
	}
	return 0, errors.Wrapf(errs.InvalidArgument, "unknown tier %q", s)
}

// ActivityRow is one raw activity record reported by a device inside an activity period.
type ActivityRow struct {
	DeviceID        string
	Points          decimal.Decimal
	TasksCompleted  int64
	QualityVerified int64 // tasks of this row that passed quality verification
	StreakDays      int64
	RecordedAt      time.Time
}

// DeviceInfo is the registry view of a device.
type DeviceInfo struct {
	DeviceID     string
	Wallet       common.Address
	Tier         Tier
	RegisteredAt time.Time
	TrustWeek    int
	GeoCell      string // empty when unknown
	Reputation   decimal.Decimal
}

// DeviceEpochStat is the per-device total of one activity period.
type DeviceEpochStat struct {
	DeviceID             string
	Wallet               common.Address
	Tier                 Tier
	RawPoints            decimal.Decimal
	TasksCompleted       int64
	QualityVerifiedCount int64
	MaxStreakDays        int64
	GeoCell              string
	RegisteredAt         time.Time
	TrustWeek            int
	IsStaked             bool
}

// ReferralSet maps a referrer or invitee wallet to the time its referral bonus expires.
type ReferralSet map[common.Address]time.Time

// Active reports whether wallet earns the referral bonus at the given time.
func (r ReferralSet) Active(wallet common.Address, at time.Time) bool {
	expiry, ok := r[wallet]
	return ok && at.Before(expiry)
}

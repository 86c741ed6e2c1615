package datagateway

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

// CollaboratorsDataGateway reads the systems feeding an epoch close.
type CollaboratorsDataGateway interface {
	ActivitySource
	DeviceRegistry
	StakingLedger
	ReferralRegistry
	ContributionTracker
}

type ActivitySource interface {
	// GetActivityRows returns activity recorded in [start, end).
	GetActivityRows(ctx context.Context, start, end time.Time) ([]entity.ActivityRow, error)
}

type DeviceRegistry interface {
	// GetDevicesByIds returns the registered devices among ids. Unknown ids are absent from the result.
	GetDevicesByIds(ctx context.Context, ids []string) (map[string]entity.DeviceInfo, error)
}

type StakingLedger interface {
	GetStakedWallets(ctx context.Context, wallets []common.Address) (map[common.Address]bool, error)
}

type ReferralRegistry interface {
	// GetReferrals returns every referrer and invitee with its bonus expiry.
	GetReferrals(ctx context.Context) (entity.ReferralSet, error)
}

type ContributionTracker interface {
	// GetContributions returns the additive bonus per wallet earned in [start, end).
	GetContributions(ctx context.Context, start, end time.Time) (map[common.Address]decimal.Decimal, error)
}

package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type RootStatus string

const (
	RootStatusNone      RootStatus = "none"
	RootStatusPending   RootStatus = "pending"
	RootStatusActive    RootStatus = "active"
	RootStatusCancelled RootStatus = "cancelled"
)

// RootState is the process-wide commitment aggregate.
// Epoch counts activated roots. Root, StagedAt and ActivatesAt describe the latest staged root.
// DistributionID is the distribution staged with Root, 0 when the root was staged on its own.
type RootState struct {
	Epoch          uint64
	Status         RootStatus
	Root           common.Hash
	DistributionID int64
	StagedAt       time.Time
	ActivatesAt    time.Time
	UpdatedAt      time.Time
}

func (s RootState) IsPending() bool {
	return s.Status == RootStatusPending
}

// EpochRoot is an activated root.
type EpochRoot struct {
	Epoch       uint64
	Root        common.Hash
	ActivatedAt time.Time
}

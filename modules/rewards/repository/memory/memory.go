// Package memory is a single-process rewards store. Transactions hold a store-wide lock
// and work on a copy of the state that replaces the committed state on Commit.
package memory

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

var (
	_ datagateway.RewardsDataGateway       = (*Repository)(nil)
	_ datagateway.CollaboratorsDataGateway = (*Repository)(nil)
)

type claimKey struct {
	epoch  uint64
	wallet common.Address
}

type vestingKey struct {
	wallet common.Address
	epoch  uint64
}

type contribution struct {
	wallet common.Address
	amount decimal.Decimal
	at     time.Time
}

type state struct {
	rootState     entity.RootState
	epochRoots    map[uint64]entity.EpochRoot
	distributions []entity.Distribution // id = index + 1
	awards        map[int64][]entity.WalletEpochAward
	claims        map[claimKey]entity.ClaimRecord
	vesting       map[vestingKey]entity.VestingEntry
	payouts       map[common.Address]common.Address
	deadlines     map[common.Address]time.Time
	balances      map[common.Address]decimal.Decimal

	activity      []entity.ActivityRow
	devices       map[string]entity.DeviceInfo
	staked        map[common.Address]bool
	referrals     entity.ReferralSet
	contributions []contribution
}

func newState() *state {
	return &state{
		rootState:  entity.RootState{Status: entity.RootStatusNone},
		epochRoots: make(map[uint64]entity.EpochRoot),
		awards:     make(map[int64][]entity.WalletEpochAward),
		claims:     make(map[claimKey]entity.ClaimRecord),
		vesting:    make(map[vestingKey]entity.VestingEntry),
		payouts:    make(map[common.Address]common.Address),
		deadlines:  make(map[common.Address]time.Time),
		balances:   make(map[common.Address]decimal.Decimal),
		devices:    make(map[string]entity.DeviceInfo),
		staked:     make(map[common.Address]bool),
		referrals:  make(entity.ReferralSet),
	}
}

// clone copies every container. Stored entities are never mutated in place, so values are shared.
func (s *state) clone() *state {
	return &state{
		rootState:     s.rootState,
		epochRoots:    cloneMap(s.epochRoots),
		distributions: append([]entity.Distribution{}, s.distributions...),
		awards:        cloneMap(s.awards),
		claims:        cloneMap(s.claims),
		vesting:       cloneMap(s.vesting),
		payouts:       cloneMap(s.payouts),
		deadlines:     cloneMap(s.deadlines),
		balances:      cloneMap(s.balances),
		activity:      append([]entity.ActivityRow{}, s.activity...),
		devices:       cloneMap(s.devices),
		staked:        cloneMap(s.staked),
		referrals:     cloneMap(s.referrals),
		contributions: append([]contribution{}, s.contributions...),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

type store struct {
	mu       sync.Mutex
	data     *state
	treasury common.Address
}

type Repository struct {
	store *store
	tx    *state // non-nil inside a transaction
}

// NewRepository returns an empty store whose treasury account is treasury.
func NewRepository(treasury common.Address) *Repository {
	return &Repository{
		store: &store{data: newState(), treasury: treasury},
	}
}

// view runs fn against the transaction state, or the committed state under the store lock.
func (r *Repository) view(fn func(s *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.data)
}

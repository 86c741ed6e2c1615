package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

func (r *Repository) GetActivityRows(ctx context.Context, start, end time.Time) ([]entity.ActivityRow, error) {
	var result []entity.ActivityRow
	err := r.view(func(s *state) error {
		result = make([]entity.ActivityRow, 0)
		for _, row := range s.activity {
			if !row.RecordedAt.Before(start) && row.RecordedAt.Before(end) {
				result = append(result, row)
			}
		}
		return nil
	})
	return result, err
}

func (r *Repository) GetDevicesByIds(ctx context.Context, ids []string) (map[string]entity.DeviceInfo, error) {
	result := make(map[string]entity.DeviceInfo, len(ids))
	err := r.view(func(s *state) error {
		for _, id := range ids {
			if device, ok := s.devices[id]; ok {
				result[id] = device
			}
		}
		return nil
	})
	return result, err
}

func (r *Repository) GetStakedWallets(ctx context.Context, wallets []common.Address) (map[common.Address]bool, error) {
	result := make(map[common.Address]bool, len(wallets))
	err := r.view(func(s *state) error {
		for _, wallet := range wallets {
			if s.staked[wallet] {
				result[wallet] = true
			}
		}
		return nil
	})
	return result, err
}

func (r *Repository) GetReferrals(ctx context.Context) (entity.ReferralSet, error) {
	var result entity.ReferralSet
	err := r.view(func(s *state) error {
		result = cloneMap(s.referrals)
		return nil
	})
	return result, err
}

func (r *Repository) GetContributions(ctx context.Context, start, end time.Time) (map[common.Address]decimal.Decimal, error) {
	result := make(map[common.Address]decimal.Decimal)
	err := r.view(func(s *state) error {
		for _, c := range s.contributions {
			if !c.at.Before(start) && c.at.Before(end) {
				result[c.wallet] = result[c.wallet].Add(c.amount)
			}
		}
		return nil
	})
	return result, err
}

// AddActivity records raw activity rows.
func (r *Repository) AddActivity(rows ...entity.ActivityRow) {
	_ = r.view(func(s *state) error {
		s.activity = append(s.activity, rows...)
		sort.SliceStable(s.activity, func(i, j int) bool { return s.activity[i].RecordedAt.Before(s.activity[j].RecordedAt) })
		return nil
	})
}

func (r *Repository) RegisterDevice(device entity.DeviceInfo) {
	_ = r.view(func(s *state) error {
		s.devices[device.DeviceID] = device
		return nil
	})
}

func (r *Repository) SetStaked(wallet common.Address, staked bool) {
	_ = r.view(func(s *state) error {
		s.staked[wallet] = staked
		return nil
	})
}

func (r *Repository) AddReferral(wallet common.Address, expiresAt time.Time) {
	_ = r.view(func(s *state) error {
		s.referrals[wallet] = expiresAt
		return nil
	})
}

func (r *Repository) AddContribution(wallet common.Address, amount decimal.Decimal, at time.Time) {
	_ = r.view(func(s *state) error {
		s.contributions = append(s.contributions, contribution{wallet: wallet, amount: amount, at: at})
		return nil
	})
}

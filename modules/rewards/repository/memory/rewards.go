package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
)

func (r *Repository) GetRootState(ctx context.Context) (result entity.RootState, err error) {
	err = r.view(func(s *state) error {
		result = s.rootState
		return nil
	})
	return result, err
}

func (r *Repository) LockRootState(ctx context.Context) (entity.RootState, error) {
	if r.tx == nil {
		return entity.RootState{}, errors.New("LockRootState requires a transaction")
	}
	return r.tx.rootState, nil
}

func (r *Repository) SaveRootState(ctx context.Context, rootState entity.RootState) error {
	return r.view(func(s *state) error {
		s.rootState = rootState
		return nil
	})
}

func (r *Repository) GetEpochRoot(ctx context.Context, epoch uint64) (*entity.EpochRoot, error) {
	var result *entity.EpochRoot
	err := r.view(func(s *state) error {
		root, ok := s.epochRoots[epoch]
		if !ok {
			return errors.Wrapf(errs.NotFound, "root of epoch %d not found", epoch)
		}
		result = &root
		return nil
	})
	return result, err
}

func (r *Repository) GetEpochRoots(ctx context.Context) ([]entity.EpochRoot, error) {
	var result []entity.EpochRoot
	err := r.view(func(s *state) error {
		result = make([]entity.EpochRoot, 0, len(s.epochRoots))
		for _, root := range s.epochRoots {
			result = append(result, root)
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Epoch < result[j].Epoch })
		return nil
	})
	return result, err
}

func (r *Repository) CreateEpochRoot(ctx context.Context, root entity.EpochRoot) error {
	return r.view(func(s *state) error {
		if _, ok := s.epochRoots[root.Epoch]; ok {
			return errors.Errorf("root of epoch %d already exists", root.Epoch)
		}
		s.epochRoots[root.Epoch] = root
		return nil
	})
}

func (r *Repository) GetLatestDistribution(ctx context.Context) (*entity.Distribution, error) {
	var result *entity.Distribution
	err := r.view(func(s *state) error {
		for i := len(s.distributions) - 1; i >= 0; i-- {
			if s.distributions[i].Status != entity.DistributionStatusCancelled {
				dist := s.distributions[i]
				result = &dist
				return nil
			}
		}
		return errors.Wrap(errs.NotFound, "no distribution")
	})
	return result, err
}

// distributionIndex returns the index of the staged or active distribution with id, or -1.
func (s *state) distributionIndex(id int64) int {
	i := int(id - 1)
	if i < 0 || i >= len(s.distributions) {
		return -1
	}
	if status := s.distributions[i].Status; status == entity.DistributionStatusCancelled || status == entity.DistributionStatusEmpty {
		return -1
	}
	return i
}

// epochDistributionIndex returns the index of the distribution activated as epoch, or -1.
func (s *state) epochDistributionIndex(epoch uint64) int {
	for i := len(s.distributions) - 1; i >= 0; i-- {
		dist := s.distributions[i]
		if dist.Status == entity.DistributionStatusActive && dist.Epoch == epoch {
			return i
		}
	}
	return -1
}

func (r *Repository) GetDistribution(ctx context.Context, id int64) (*entity.Distribution, error) {
	var result *entity.Distribution
	err := r.view(func(s *state) error {
		if id < 1 || int(id) > len(s.distributions) {
			return errors.Wrapf(errs.NotFound, "distribution %d not found", id)
		}
		dist := s.distributions[id-1]
		result = &dist
		return nil
	})
	return result, err
}

func (r *Repository) GetDistributionByEpoch(ctx context.Context, epoch uint64) (*entity.Distribution, error) {
	var result *entity.Distribution
	err := r.view(func(s *state) error {
		i := s.epochDistributionIndex(epoch)
		if i < 0 {
			return errors.Wrapf(errs.NotFound, "distribution of epoch %d not found", epoch)
		}
		dist := s.distributions[i]
		result = &dist
		return nil
	})
	return result, err
}

func (r *Repository) CreateDistribution(ctx context.Context, dist entity.Distribution, awards []entity.WalletEpochAward) (int64, error) {
	var id int64
	err := r.view(func(s *state) error {
		for _, existing := range s.distributions {
			if existing.Status != entity.DistributionStatusCancelled && existing.PeriodStart.Equal(dist.PeriodStart) {
				return errors.Wrapf(errs.StateConflict, "period starting %s already closed", dist.PeriodStart)
			}
		}
		id = int64(len(s.distributions) + 1)
		dist.ID = id
		s.distributions = append(s.distributions, dist)
		s.awards[id] = append([]entity.WalletEpochAward{}, awards...)
		return nil
	})
	return id, err
}

func (r *Repository) UpdateDistributionStatus(ctx context.Context, id int64, status entity.DistributionStatus, epoch uint64) error {
	return r.view(func(s *state) error {
		i := s.distributionIndex(id)
		if i < 0 {
			return errors.Wrapf(errs.NotFound, "distribution %d not found", id)
		}
		dist := s.distributions[i]
		dist.Status = status
		dist.Epoch = epoch
		s.distributions[i] = dist
		return nil
	})
}

func (r *Repository) GetWalletAward(ctx context.Context, epoch uint64, wallet common.Address) (*entity.WalletEpochAward, error) {
	var result *entity.WalletEpochAward
	err := r.view(func(s *state) error {
		i := s.epochDistributionIndex(epoch)
		if i >= 0 {
			for _, award := range s.awards[s.distributions[i].ID] {
				if award.Wallet == wallet {
					award := award
					result = &award
					return nil
				}
			}
		}
		return errors.Wrapf(errs.NotFound, "no award for %s in epoch %d", wallet.Hex(), epoch)
	})
	return result, err
}

func (r *Repository) GetWalletAwards(ctx context.Context, distributionID int64) ([]entity.WalletEpochAward, error) {
	var result []entity.WalletEpochAward
	err := r.view(func(s *state) error {
		if s.distributionIndex(distributionID) < 0 {
			return errors.Wrapf(errs.NotFound, "distribution %d not found", distributionID)
		}
		result = append([]entity.WalletEpochAward{}, s.awards[distributionID]...)
		sort.Slice(result, func(a, b int) bool {
			return bytes.Compare(result[a].Wallet.Bytes(), result[b].Wallet.Bytes()) < 0
		})
		return nil
	})
	return result, err
}

func (r *Repository) GetClaimRecord(ctx context.Context, epoch uint64, wallet common.Address) (*entity.ClaimRecord, error) {
	var result *entity.ClaimRecord
	err := r.view(func(s *state) error {
		record, ok := s.claims[claimKey{epoch: epoch, wallet: wallet}]
		if !ok {
			return errors.Wrapf(errs.NotFound, "epoch %d not claimed by %s", epoch, wallet.Hex())
		}
		result = &record
		return nil
	})
	return result, err
}

func (r *Repository) CreateClaimRecord(ctx context.Context, record entity.ClaimRecord) (bool, error) {
	created := false
	err := r.view(func(s *state) error {
		key := claimKey{epoch: record.Epoch, wallet: record.Wallet}
		if _, ok := s.claims[key]; ok {
			return nil
		}
		s.claims[key] = record
		created = true
		return nil
	})
	return created, err
}

func (r *Repository) GetVestingEntry(ctx context.Context, wallet common.Address, epoch uint64) (*entity.VestingEntry, error) {
	var result *entity.VestingEntry
	err := r.view(func(s *state) error {
		entry, ok := s.vesting[vestingKey{wallet: wallet, epoch: epoch}]
		if !ok {
			return errors.Wrapf(errs.NotFound, "no vesting of %s in epoch %d", wallet.Hex(), epoch)
		}
		result = &entry
		return nil
	})
	return result, err
}

func (r *Repository) GetVestingEntriesByWallet(ctx context.Context, wallet common.Address) ([]entity.VestingEntry, error) {
	var result []entity.VestingEntry
	err := r.view(func(s *state) error {
		result = make([]entity.VestingEntry, 0)
		for key, entry := range s.vesting {
			if key.wallet == wallet {
				result = append(result, entry)
			}
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Epoch < result[j].Epoch })
		return nil
	})
	return result, err
}

func (r *Repository) CreateVestingEntry(ctx context.Context, entry entity.VestingEntry) error {
	return r.view(func(s *state) error {
		key := vestingKey{wallet: entry.Wallet, epoch: entry.Epoch}
		if _, ok := s.vesting[key]; ok {
			return errors.Wrapf(errs.StateConflict, "vesting of %s in epoch %d already exists", entry.Wallet.Hex(), entry.Epoch)
		}
		s.vesting[key] = entry
		return nil
	})
}

func (r *Repository) ReleaseVestingEntry(ctx context.Context, wallet common.Address, epoch uint64, at time.Time) (bool, error) {
	released := false
	err := r.view(func(s *state) error {
		key := vestingKey{wallet: wallet, epoch: epoch}
		entry, ok := s.vesting[key]
		if !ok {
			return errors.Wrapf(errs.NotFound, "no vesting of %s in epoch %d", wallet.Hex(), epoch)
		}
		if entry.Released {
			return nil
		}
		entry.Released = true
		entry.ReleasedAt = at
		s.vesting[key] = entry
		released = true
		return nil
	})
	return released, err
}

func (r *Repository) GetPoolTotals(ctx context.Context) (result entity.PoolTotals, err error) {
	err = r.view(func(s *state) error {
		result = poolTotals(s)
		return nil
	})
	return result, err
}

func (r *Repository) GetPayoutAddress(ctx context.Context, wallet common.Address) (common.Address, error) {
	var result common.Address
	err := r.view(func(s *state) error {
		payout, ok := s.payouts[wallet]
		if !ok {
			return errors.Wrapf(errs.NotFound, "no payout address for %s", wallet.Hex())
		}
		result = payout
		return nil
	})
	return result, err
}

func (r *Repository) SetPayoutAddress(ctx context.Context, wallet, payout common.Address) error {
	return r.view(func(s *state) error {
		s.payouts[wallet] = payout
		return nil
	})
}

func (r *Repository) DeletePayoutAddress(ctx context.Context, wallet common.Address) error {
	return r.view(func(s *state) error {
		delete(s.payouts, wallet)
		return nil
	})
}

func (r *Repository) AdvancePayoutDeadline(ctx context.Context, wallet common.Address, deadline time.Time) (bool, error) {
	advanced := false
	err := r.view(func(s *state) error {
		if last, ok := s.deadlines[wallet]; ok && !deadline.After(last) {
			return nil
		}
		s.deadlines[wallet] = deadline
		advanced = true
		return nil
	})
	return advanced, err
}

// AcquireEpochCloseLock always succeeds: an open transaction already excludes every other writer.
func (r *Repository) AcquireEpochCloseLock(ctx context.Context) (bool, error) {
	if r.tx == nil {
		return false, errors.New("AcquireEpochCloseLock requires a transaction")
	}
	return true, nil
}

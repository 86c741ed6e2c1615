package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *Repository) GetRootState(ctx context.Context) (entity.RootState, error) {
	state, err := r.queries.GetRootState(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.RootState{Status: entity.RootStatusNone}, nil
		}
		return entity.RootState{}, errors.Wrap(err, "error during query")
	}
	return mapRootStateModelToType(state), nil
}

func (r *Repository) LockRootState(ctx context.Context) (entity.RootState, error) {
	if r.tx == nil {
		return entity.RootState{}, errors.New("LockRootState requires a transaction")
	}
	state, err := r.queries.LockRootState(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.RootState{}, errors.Wrap(errs.NotFound, "root state row is missing, run the migrations")
		}
		return entity.RootState{}, errors.Wrap(err, "error during query")
	}
	return mapRootStateModelToType(state), nil
}

func (r *Repository) SaveRootState(ctx context.Context, state entity.RootState) error {
	if err := r.queries.UpdateRootState(ctx, mapRootStateTypeToParams(state)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetEpochRoot(ctx context.Context, epoch uint64) (*entity.EpochRoot, error) {
	root, err := r.queries.GetEpochRoot(ctx, int64(epoch))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "epoch %d has no root", epoch)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result := mapEpochRootModelToType(root)
	return &result, nil
}

func (r *Repository) GetEpochRoots(ctx context.Context) ([]entity.EpochRoot, error) {
	roots, err := r.queries.GetEpochRoots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make([]entity.EpochRoot, 0, len(roots))
	for _, root := range roots {
		result = append(result, mapEpochRootModelToType(root))
	}
	return result, nil
}

func (r *Repository) CreateEpochRoot(ctx context.Context, root entity.EpochRoot) error {
	err := r.queries.CreateEpochRoot(ctx, gen.CreateEpochRootParams{
		Epoch:       int64(root.Epoch),
		Root:        root.Root.Hex(),
		ActivatedAt: timestamptz(root.ActivatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(errs.StateConflict, "root of epoch %d already recorded", root.Epoch)
		}
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetLatestDistribution(ctx context.Context) (*entity.Distribution, error) {
	dist, err := r.queries.GetLatestDistribution(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrap(errs.NotFound, "no distribution")
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result, err := mapDistributionModelToType(dist)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func (r *Repository) GetDistribution(ctx context.Context, id int64) (*entity.Distribution, error) {
	dist, err := r.queries.GetDistribution(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "distribution %d not found", id)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result, err := mapDistributionModelToType(dist)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func (r *Repository) GetDistributionByEpoch(ctx context.Context, epoch uint64) (*entity.Distribution, error) {
	dist, err := r.queries.GetDistributionByEpoch(ctx, int64(epoch))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "distribution of epoch %d not found", epoch)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result, err := mapDistributionModelToType(dist)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func (r *Repository) CreateDistribution(ctx context.Context, dist entity.Distribution, awards []entity.WalletEpochAward) (int64, error) {
	params, err := mapDistributionTypeToParams(dist)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	var id int64
	err = r.atomic(ctx, func(repo *Repository) error {
		created, err := repo.queries.CreateDistribution(ctx, params)
		if err != nil {
			if isUniqueViolation(err) {
				return errors.Wrapf(errs.StateConflict, "period starting %s already closed", dist.PeriodStart)
			}
			return errors.Wrap(err, "failed to create distribution")
		}
		id = created
		if len(awards) == 0 {
			return nil
		}
		awardParams, err := mapWalletAwardTypesToParams(id, awards)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := repo.queries.BatchCreateWalletAwards(ctx, awardParams); err != nil {
			return errors.Wrap(err, "failed to create wallet awards")
		}
		return nil
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return id, nil
}

func (r *Repository) UpdateDistributionStatus(ctx context.Context, id int64, status entity.DistributionStatus, epoch uint64) error {
	affected, err := r.queries.UpdateDistributionStatus(ctx, gen.UpdateDistributionStatusParams{
		Status: string(status),
		Epoch:  int64(epoch),
		ID:     id,
	})
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	if affected == 0 {
		return errors.Wrapf(errs.NotFound, "distribution %d not found", id)
	}
	return nil
}

func (r *Repository) GetWalletAward(ctx context.Context, epoch uint64, wallet common.Address) (*entity.WalletEpochAward, error) {
	dist, err := r.GetDistributionByEpoch(ctx, epoch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	award, err := r.queries.GetWalletAward(ctx, gen.GetWalletAwardParams{
		DistributionID: dist.ID,
		Wallet:         addressKey(wallet),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no award for %s in epoch %d", wallet.Hex(), epoch)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result, err := mapWalletAwardModelToType(dist.Root, award)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func (r *Repository) GetWalletAwards(ctx context.Context, distributionID int64) ([]entity.WalletEpochAward, error) {
	dist, err := r.GetDistribution(ctx, distributionID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if dist.Status == entity.DistributionStatusCancelled || dist.Status == entity.DistributionStatusEmpty {
		return nil, errors.Wrapf(errs.NotFound, "distribution %d is %s", distributionID, dist.Status)
	}
	awards, err := r.queries.GetWalletAwards(ctx, distributionID)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make([]entity.WalletEpochAward, 0, len(awards))
	for _, award := range awards {
		mapped, err := mapWalletAwardModelToType(dist.Root, award)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result = append(result, mapped)
	}
	return result, nil
}

func (r *Repository) GetClaimRecord(ctx context.Context, epoch uint64, wallet common.Address) (*entity.ClaimRecord, error) {
	claim, err := r.queries.GetClaimRecord(ctx, gen.GetClaimRecordParams{
		Epoch:  int64(epoch),
		Wallet: addressKey(wallet),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "epoch %d not claimed by %s", epoch, wallet.Hex())
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result, err := mapClaimModelToType(claim)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func (r *Repository) CreateClaimRecord(ctx context.Context, record entity.ClaimRecord) (bool, error) {
	affected, err := r.queries.CreateClaimRecord(ctx, gen.CreateClaimRecordParams{
		Epoch:         int64(record.Epoch),
		Wallet:        addressKey(record.Wallet),
		PayoutAddress: addressKey(record.PayoutAddress),
		ClaimableNow:  numericFromDecimal(record.ClaimableNow),
		VestingAmount: numericFromDecimal(record.VestingAmount),
		ClaimedAt:     timestamptz(record.ClaimedAt),
	})
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return affected == 1, nil
}

func (r *Repository) GetVestingEntry(ctx context.Context, wallet common.Address, epoch uint64) (*entity.VestingEntry, error) {
	entry, err := r.queries.GetVestingEntry(ctx, gen.GetVestingEntryParams{
		Wallet: addressKey(wallet),
		Epoch:  int64(epoch),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no vesting entry of %s in epoch %d", wallet.Hex(), epoch)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	result, err := mapVestingEntryModelToType(entry)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func (r *Repository) GetVestingEntriesByWallet(ctx context.Context, wallet common.Address) ([]entity.VestingEntry, error) {
	entries, err := r.queries.GetVestingEntriesByWallet(ctx, addressKey(wallet))
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make([]entity.VestingEntry, 0, len(entries))
	for _, entry := range entries {
		mapped, err := mapVestingEntryModelToType(entry)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result = append(result, mapped)
	}
	return result, nil
}

func (r *Repository) CreateVestingEntry(ctx context.Context, entry entity.VestingEntry) error {
	err := r.queries.CreateVestingEntry(ctx, gen.CreateVestingEntryParams{
		Wallet:    addressKey(entry.Wallet),
		Epoch:     int64(entry.Epoch),
		Amount:    numericFromDecimal(entry.Amount),
		UnlockAt:  timestamptz(entry.UnlockAt),
		CreatedAt: timestamptz(entry.CreatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(errs.StateConflict, "vesting entry of %s in epoch %d already exists", entry.Wallet.Hex(), entry.Epoch)
		}
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) ReleaseVestingEntry(ctx context.Context, wallet common.Address, epoch uint64, at time.Time) (bool, error) {
	affected, err := r.queries.ReleaseVestingEntry(ctx, gen.ReleaseVestingEntryParams{
		ReleasedAt: timestamptz(at),
		Wallet:     addressKey(wallet),
		Epoch:      int64(epoch),
	})
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return affected == 1, nil
}

func (r *Repository) GetPoolTotals(ctx context.Context) (entity.PoolTotals, error) {
	totals, err := r.queries.GetPoolTotals(ctx)
	if err != nil {
		return entity.PoolTotals{}, errors.Wrap(err, "error during query")
	}
	distributed, err := decimalFromNumeric(totals.TotalDistributed)
	if err != nil {
		return entity.PoolTotals{}, errors.Wrap(err, "failed to parse total distributed")
	}
	vesting, err := decimalFromNumeric(totals.TotalVesting)
	if err != nil {
		return entity.PoolTotals{}, errors.Wrap(err, "failed to parse total vesting")
	}
	return entity.PoolTotals{TotalDistributed: distributed, TotalVesting: vesting}, nil
}

func (r *Repository) GetPayoutAddress(ctx context.Context, wallet common.Address) (common.Address, error) {
	payout, err := r.queries.GetPayoutAddress(ctx, addressKey(wallet))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Address{}, errors.Wrapf(errs.NotFound, "no payout address for %s", wallet.Hex())
		}
		return common.Address{}, errors.Wrap(err, "error during query")
	}
	return common.HexToAddress(payout), nil
}

func (r *Repository) SetPayoutAddress(ctx context.Context, wallet, payout common.Address) error {
	err := r.queries.SetPayoutAddress(ctx, gen.SetPayoutAddressParams{
		Wallet:        addressKey(wallet),
		PayoutAddress: addressKey(payout),
	})
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) DeletePayoutAddress(ctx context.Context, wallet common.Address) error {
	if err := r.queries.DeletePayoutAddress(ctx, addressKey(wallet)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) AdvancePayoutDeadline(ctx context.Context, wallet common.Address, deadline time.Time) (bool, error) {
	affected, err := r.queries.AdvancePayoutDeadline(ctx, gen.AdvancePayoutDeadlineParams{
		Wallet:   addressKey(wallet),
		Deadline: deadline.Unix(),
	})
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return affected == 1, nil
}

// AcquireEpochCloseLock takes a transaction scoped advisory lock, released on commit or rollback.
func (r *Repository) AcquireEpochCloseLock(ctx context.Context) (bool, error) {
	if r.tx == nil {
		return false, errors.New("AcquireEpochCloseLock requires a transaction")
	}
	acquired, err := r.queries.TryAdvisoryXactLock(ctx, epochCloseLockKey)
	if err != nil {
		return false, errors.Wrap(err, "error during query")
	}
	return acquired, nil
}

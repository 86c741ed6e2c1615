package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/postgres/gen"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func (r *Repository) GetActivityRows(ctx context.Context, start, end time.Time) ([]entity.ActivityRow, error) {
	rows, err := r.queries.GetActivityRows(ctx, gen.GetActivityRowsParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make([]entity.ActivityRow, 0, len(rows))
	for _, row := range rows {
		mapped, err := mapActivityModelToType(row)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result = append(result, mapped)
	}
	return result, nil
}

func (r *Repository) GetDevicesByIds(ctx context.Context, ids []string) (map[string]entity.DeviceInfo, error) {
	devices, err := r.queries.GetDevicesByIds(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make(map[string]entity.DeviceInfo, len(devices))
	for _, device := range devices {
		mapped, err := mapDeviceModelToType(device)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result[mapped.DeviceID] = mapped
	}
	return result, nil
}

func (r *Repository) GetStakedWallets(ctx context.Context, wallets []common.Address) (map[common.Address]bool, error) {
	staked, err := r.queries.GetStakedWallets(ctx, lo.Map(wallets, func(wallet common.Address, _ int) string {
		return addressKey(wallet)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make(map[common.Address]bool, len(staked))
	for _, wallet := range staked {
		result[common.HexToAddress(wallet)] = true
	}
	return result, nil
}

func (r *Repository) GetReferrals(ctx context.Context) (entity.ReferralSet, error) {
	referrals, err := r.queries.GetReferrals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make(entity.ReferralSet, len(referrals))
	for _, referral := range referrals {
		result[common.HexToAddress(referral.Wallet)] = timeFromTimestamptz(referral.ExpiresAt)
	}
	return result, nil
}

func (r *Repository) GetContributions(ctx context.Context, start, end time.Time) (map[common.Address]decimal.Decimal, error) {
	contributions, err := r.queries.GetContributions(ctx, gen.GetContributionsParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	result := make(map[common.Address]decimal.Decimal, len(contributions))
	for _, contribution := range contributions {
		amount, err := decimalFromNumeric(contribution.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse contribution of %s", contribution.Wallet)
		}
		result[common.HexToAddress(contribution.Wallet)] = amount
	}
	return result, nil
}

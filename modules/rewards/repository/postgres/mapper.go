package postgres

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/postgres/gen"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// addressKey is the stored form of an address: lowercase hex with 0x prefix.
func addressKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}

func numericFromDecimal(src decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: src.Coefficient(), Exp: src.Exponent(), Valid: true}
}

func decimalFromNumeric(src pgtype.Numeric) (decimal.Decimal, error) {
	if !src.Valid || src.Int == nil {
		return decimal.Zero, nil
	}
	if src.NaN || src.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("numeric is not a finite number")
	}
	return decimal.NewFromBigInt(src.Int, src.Exp), nil
}

func timestamptz(src time.Time) pgtype.Timestamptz {
	if src.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: src.UTC(), Valid: true}
}

func timeFromTimestamptz(src pgtype.Timestamptz) time.Time {
	if !src.Valid {
		return time.Time{}
	}
	return src.Time.UTC()
}

func mapRootStateModelToType(src gen.RewardsRootState) entity.RootState {
	return entity.RootState{
		Epoch:          uint64(src.Epoch),
		Status:         entity.RootStatus(src.Status),
		Root:           common.HexToHash(src.Root),
		DistributionID: src.DistributionID,
		StagedAt:       timeFromTimestamptz(src.StagedAt),
		ActivatesAt:    timeFromTimestamptz(src.ActivatesAt),
		UpdatedAt:      timeFromTimestamptz(src.UpdatedAt),
	}
}

func mapRootStateTypeToParams(src entity.RootState) gen.UpdateRootStateParams {
	root := ""
	if src.Root != (common.Hash{}) {
		root = src.Root.Hex()
	}
	return gen.UpdateRootStateParams{
		Epoch:          int64(src.Epoch),
		Status:         string(src.Status),
		Root:           root,
		DistributionID: src.DistributionID,
		StagedAt:       timestamptz(src.StagedAt),
		ActivatesAt:    timestamptz(src.ActivatesAt),
		UpdatedAt:      timestamptz(src.UpdatedAt),
	}
}

func mapEpochRootModelToType(src gen.RewardsEpochRoot) entity.EpochRoot {
	return entity.EpochRoot{
		Epoch:       uint64(src.Epoch),
		Root:        common.HexToHash(src.Root),
		ActivatedAt: timeFromTimestamptz(src.ActivatedAt),
	}
}

func mapDistributionModelToType(src gen.RewardsDistribution) (entity.Distribution, error) {
	totalAmount, err := decimalFromNumeric(src.TotalAmount)
	if err != nil {
		return entity.Distribution{}, errors.Wrap(err, "failed to parse total amount")
	}
	var rawTierPoints map[string]string
	if err := json.Unmarshal(src.TierPoints, &rawTierPoints); err != nil {
		return entity.Distribution{}, errors.Wrap(err, "failed to unmarshal tier points")
	}
	tierPoints := make(map[entity.Tier]decimal.Decimal, len(rawTierPoints))
	for name, raw := range rawTierPoints {
		tier, err := entity.ParseTier(name)
		if err != nil {
			return entity.Distribution{}, errors.WithStack(err)
		}
		points, err := decimal.NewFromString(raw)
		if err != nil {
			return entity.Distribution{}, errors.Wrapf(err, "failed to parse points of tier %s", name)
		}
		tierPoints[tier] = points
	}
	return entity.Distribution{
		ID:          src.ID,
		PeriodStart: timeFromTimestamptz(src.PeriodStart),
		PeriodEnd:   timeFromTimestamptz(src.PeriodEnd),
		Root:        common.HexToHash(src.Root),
		Epoch:       uint64(src.Epoch),
		Status:      entity.DistributionStatus(src.Status),
		LeafVersion: uint8(src.LeafVersion),
		Wallets:     int(src.Wallets),
		TotalAmount: totalAmount,
		TierPoints:  tierPoints,
		CreatedAt:   timeFromTimestamptz(src.CreatedAt),
	}, nil
}

func mapDistributionTypeToParams(src entity.Distribution) (gen.CreateDistributionParams, error) {
	tierPoints, err := json.Marshal(lo.MapEntries(src.TierPoints, func(tier entity.Tier, points decimal.Decimal) (string, string) {
		return tier.String(), points.String()
	}))
	if err != nil {
		return gen.CreateDistributionParams{}, errors.Wrap(err, "failed to marshal tier points")
	}
	return gen.CreateDistributionParams{
		PeriodStart: timestamptz(src.PeriodStart),
		PeriodEnd:   timestamptz(src.PeriodEnd),
		Root:        src.Root.Hex(),
		Epoch:       int64(src.Epoch),
		Status:      string(src.Status),
		LeafVersion: int16(src.LeafVersion),
		Wallets:     int32(src.Wallets),
		TotalAmount: numericFromDecimal(src.TotalAmount),
		TierPoints:  tierPoints,
		CreatedAt:   timestamptz(src.CreatedAt),
	}, nil
}

func mapWalletAwardModelToType(root common.Hash, src gen.RewardsWalletAward) (entity.WalletEpochAward, error) {
	amounts := make([]decimal.Decimal, 0, 4)
	for _, numeric := range []pgtype.Numeric{src.TotalPoints, src.PohAmount, src.ClaimableNow, src.VestingAmount} {
		amount, err := decimalFromNumeric(numeric)
		if err != nil {
			return entity.WalletEpochAward{}, errors.Wrapf(err, "failed to parse award of %s", src.Wallet)
		}
		amounts = append(amounts, amount)
	}
	var rawProof []string
	if err := json.Unmarshal(src.Proof, &rawProof); err != nil {
		return entity.WalletEpochAward{}, errors.Wrap(err, "failed to unmarshal proof")
	}
	return entity.WalletEpochAward{
		Root:                   root,
		Wallet:                 common.HexToAddress(src.Wallet),
		TotalPoints:            amounts[0],
		PohAmount:              amounts[1],
		ClaimableNow:           amounts[2],
		VestingAmount:          amounts[3],
		VestingDurationSeconds: uint64(src.VestingDurationSeconds),
		Veteran:                src.Veteran,
		Proof:                  lo.Map(rawProof, func(h string, _ int) common.Hash { return common.HexToHash(h) }),
	}, nil
}

func mapWalletAwardTypesToParams(distributionID int64, srcs []entity.WalletEpochAward) (gen.BatchCreateWalletAwardsParams, error) {
	params := gen.BatchCreateWalletAwardsParams{
		DistributionID:            distributionID,
		WalletArr:                 make([]string, 0, len(srcs)),
		TotalPointsArr:            make([]pgtype.Numeric, 0, len(srcs)),
		PohAmountArr:              make([]pgtype.Numeric, 0, len(srcs)),
		ClaimableNowArr:           make([]pgtype.Numeric, 0, len(srcs)),
		VestingAmountArr:          make([]pgtype.Numeric, 0, len(srcs)),
		VestingDurationSecondsArr: make([]int64, 0, len(srcs)),
		VeteranArr:                make([]bool, 0, len(srcs)),
		ProofArr:                  make([][]byte, 0, len(srcs)),
	}
	for _, src := range srcs {
		proof, err := json.Marshal(lo.Map(src.Proof, func(h common.Hash, _ int) string { return h.Hex() }))
		if err != nil {
			return gen.BatchCreateWalletAwardsParams{}, errors.Wrap(err, "failed to marshal proof")
		}
		params.WalletArr = append(params.WalletArr, addressKey(src.Wallet))
		params.TotalPointsArr = append(params.TotalPointsArr, numericFromDecimal(src.TotalPoints))
		params.PohAmountArr = append(params.PohAmountArr, numericFromDecimal(src.PohAmount))
		params.ClaimableNowArr = append(params.ClaimableNowArr, numericFromDecimal(src.ClaimableNow))
		params.VestingAmountArr = append(params.VestingAmountArr, numericFromDecimal(src.VestingAmount))
		params.VestingDurationSecondsArr = append(params.VestingDurationSecondsArr, int64(src.VestingDurationSeconds))
		params.VeteranArr = append(params.VeteranArr, src.Veteran)
		params.ProofArr = append(params.ProofArr, proof)
	}
	return params, nil
}

func mapClaimModelToType(src gen.RewardsClaim) (entity.ClaimRecord, error) {
	claimable, err := decimalFromNumeric(src.ClaimableNow)
	if err != nil {
		return entity.ClaimRecord{}, errors.Wrap(err, "failed to parse claimable amount")
	}
	vesting, err := decimalFromNumeric(src.VestingAmount)
	if err != nil {
		return entity.ClaimRecord{}, errors.Wrap(err, "failed to parse vesting amount")
	}
	return entity.ClaimRecord{
		Epoch:         uint64(src.Epoch),
		Wallet:        common.HexToAddress(src.Wallet),
		PayoutAddress: common.HexToAddress(src.PayoutAddress),
		ClaimableNow:  claimable,
		VestingAmount: vesting,
		ClaimedAt:     timeFromTimestamptz(src.ClaimedAt),
	}, nil
}

func mapVestingEntryModelToType(src gen.RewardsVestingEntry) (entity.VestingEntry, error) {
	amount, err := decimalFromNumeric(src.Amount)
	if err != nil {
		return entity.VestingEntry{}, errors.Wrap(err, "failed to parse vesting amount")
	}
	return entity.VestingEntry{
		Wallet:     common.HexToAddress(src.Wallet),
		Epoch:      uint64(src.Epoch),
		Amount:     amount,
		UnlockAt:   timeFromTimestamptz(src.UnlockAt),
		Released:   src.Released,
		ReleasedAt: timeFromTimestamptz(src.ReleasedAt),
		CreatedAt:  timeFromTimestamptz(src.CreatedAt),
	}, nil
}

func mapActivityModelToType(src gen.RewardsDeviceActivity) (entity.ActivityRow, error) {
	points, err := decimalFromNumeric(src.Points)
	if err != nil {
		return entity.ActivityRow{}, errors.Wrapf(err, "failed to parse points of activity %d", src.ID)
	}
	return entity.ActivityRow{
		DeviceID:        src.DeviceID,
		Points:          points,
		TasksCompleted:  src.TasksCompleted,
		QualityVerified: src.QualityVerified,
		StreakDays:      src.StreakDays,
		RecordedAt:      timeFromTimestamptz(src.RecordedAt),
	}, nil
}

func mapDeviceModelToType(src gen.RewardsDevice) (entity.DeviceInfo, error) {
	reputation, err := decimalFromNumeric(src.Reputation)
	if err != nil {
		return entity.DeviceInfo{}, errors.Wrapf(err, "failed to parse reputation of device %s", src.DeviceID)
	}
	return entity.DeviceInfo{
		DeviceID:     src.DeviceID,
		Wallet:       common.HexToAddress(src.Wallet),
		Tier:         entity.Tier(src.Tier),
		RegisteredAt: timeFromTimestamptz(src.RegisteredAt),
		TrustWeek:    int(src.TrustWeek),
		GeoCell:      src.GeoCell,
		Reputation:   reputation,
	}, nil
}

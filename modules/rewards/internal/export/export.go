// Package export writes a Parquet snapshot of every staged distribution to S3.
package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gaze-network/epoch-rewards/pkg/parquetutils"
	"github.com/samber/lo"
)

const contentType = "application/vnd.apache.parquet"

type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // S3 compatible endpoint, empty for AWS
}

// Uploader is the subset of the S3 upload manager used by Exporter.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// AwardRow is one wallet award in the snapshot. Amounts are decimal strings in whole tokens.
type AwardRow struct {
	PeriodStart            int64  `parquet:"name=period_start, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	PeriodEnd              int64  `parquet:"name=period_end, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Root                   string `parquet:"name=root, type=BYTE_ARRAY, convertedtype=UTF8"`
	LeafVersion            int32  `parquet:"name=leaf_version, type=INT32"`
	Wallet                 string `parquet:"name=wallet, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalPoints            string `parquet:"name=total_points, type=BYTE_ARRAY, convertedtype=UTF8"`
	PohAmount              string `parquet:"name=poh_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	ClaimableNow           string `parquet:"name=claimable_now, type=BYTE_ARRAY, convertedtype=UTF8"`
	VestingAmount          string `parquet:"name=vesting_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	VestingDurationSeconds int64  `parquet:"name=vesting_duration_seconds, type=INT64"`
	Veteran                bool   `parquet:"name=veteran, type=BOOLEAN"`
	Proof                  string `parquet:"name=proof, type=BYTE_ARRAY, convertedtype=UTF8"` // comma separated hex hashes
}

type Exporter struct {
	uploader Uploader
	bucket   string
	prefix   string
}

func New(uploader Uploader, bucket, prefix string) *Exporter {
	return &Exporter{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
	}
}

// NewS3 builds an Exporter on the default AWS credential chain.
func NewS3(ctx context.Context, config Config) (*Exporter, error) {
	if config.Bucket == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "export bucket is required")
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws user config")
	}
	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if config.Region != "" {
			o.Region = config.Region
		}
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(manager.NewUploader(client), config.Bucket, config.Prefix), nil
}

// Key returns the object key of dist's snapshot.
func (e *Exporter) Key(dist entity.Distribution) string {
	name := fmt.Sprintf("%s_%s.parquet", dist.PeriodStart.UTC().Format("20060102T150405Z"), dist.Root.Hex())
	return path.Join(e.prefix, name)
}

func (e *Exporter) Export(ctx context.Context, dist entity.Distribution, awards []entity.WalletEpochAward) error {
	rows := Rows(dist, awards)
	data, err := parquetutils.WriteAll(rows)
	if err != nil {
		return errors.Wrap(err, "failed to encode awards")
	}

	key := e.Key(dist)
	_, err = e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload s3://%s/%s", e.bucket, key)
	}

	logger.InfoContext(ctx, "exported distribution",
		slogx.String("package", "export"),
		slogx.String("bucket", e.bucket),
		slogx.String("key", key),
		slogx.Int("rows", len(rows)),
	)
	return nil
}

func Rows(dist entity.Distribution, awards []entity.WalletEpochAward) []AwardRow {
	return lo.Map(awards, func(award entity.WalletEpochAward, _ int) AwardRow {
		return AwardRow{
			PeriodStart:            dist.PeriodStart.UnixMilli(),
			PeriodEnd:              dist.PeriodEnd.UnixMilli(),
			Root:                   dist.Root.Hex(),
			LeafVersion:            int32(dist.LeafVersion),
			Wallet:                 award.Wallet.Hex(),
			TotalPoints:            award.TotalPoints.String(),
			PohAmount:              award.PohAmount.String(),
			ClaimableNow:           award.ClaimableNow.String(),
			VestingAmount:          award.VestingAmount.String(),
			VestingDurationSeconds: int64(award.VestingDurationSeconds),
			Veteran:                award.Veteran,
			Proof: strings.Join(lo.Map(award.Proof, func(h common.Hash, _ int) string {
				return h.Hex()
			}), ","),
		}
	})
}

package decimals

import (
	"math/big"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	DefaultDivPrecision = 36

	// MaxTokenDecimals is the largest token precision a base-unit conversion accepts.
	MaxTokenDecimals = 36
)

func init() {
	decimal.DivisionPrecision = DefaultDivPrecision
}

// MustFromString convert string to decimal.Decimal. Panic if error
// string must be a valid number, not NaN, Inf or empty string.
func MustFromString(s string) decimal.Decimal {
	return utils.Must(decimal.NewFromString(s))
}

// PowerOfTen returns 10^n.
func PowerOfTen(n int32) decimal.Decimal {
	return decimal.New(1, n)
}

// Floor truncates amount toward zero to the given token precision.
func Floor(amount decimal.Decimal, tokenDecimals uint8) decimal.Decimal {
	return amount.Truncate(int32(tokenDecimals))
}

// ToBaseUnits converts a token amount to its integer base-unit representation.
// The amount must be non-negative, carry no more than tokenDecimals fractional digits and fit in 256 bits.
func ToBaseUnits(amount decimal.Decimal, tokenDecimals uint8) (*uint256.Int, error) {
	if tokenDecimals > MaxTokenDecimals {
		return nil, errors.Wrapf(errs.InvalidArgument, "token decimals %d exceeds %d", tokenDecimals, MaxTokenDecimals)
	}
	if amount.IsNegative() {
		return nil, errors.Wrapf(errs.InvalidArgument, "negative amount %s", amount)
	}
	scaled := amount.Shift(int32(tokenDecimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errors.Wrapf(errs.InvalidArgument, "amount %s has more than %d fractional digits", amount, tokenDecimals)
	}
	result, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, errors.Wrapf(errs.Overflow, "amount %s overflows uint256", amount)
	}
	return result, nil
}

// FromBaseUnits converts integer base units back to a token amount.
func FromBaseUnits(units *uint256.Int, tokenDecimals uint8) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units.ToBig(), -int32(tokenDecimals))
}

// FromBigInt converts integer base units held in a big.Int to a token amount.
func FromBigInt(units *big.Int, tokenDecimals uint8) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -int32(tokenDecimals))
}

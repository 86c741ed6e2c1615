package decimals

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	testcases := []struct {
		amount   string
		decimals uint8
		expected string
	}{
		{"0", 18, "0"},
		{"1", 0, "1"},
		{"1", 18, "1000000000000000000"},
		{"2500", 18, "2500000000000000000000"},
		{"0.000000000000000001", 18, "1"},
		{"123.456", 6, "123456000"},
	}
	for _, tc := range testcases {
		t.Run(fmt.Sprintf("%s_%d", tc.amount, tc.decimals), func(t *testing.T) {
			actual, err := ToBaseUnits(MustFromString(tc.amount), tc.decimals)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual.Dec())

			back := FromBaseUnits(actual, tc.decimals)
			assert.True(t, back.Equal(MustFromString(tc.amount)), "round trip %s != %s", back, tc.amount)
		})
	}

	t.Run("negative", func(t *testing.T) {
		_, err := ToBaseUnits(MustFromString("-1"), 18)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
	t.Run("too_precise", func(t *testing.T) {
		_, err := ToBaseUnits(MustFromString("0.0000001"), 6)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
	t.Run("overflow", func(t *testing.T) {
		max := FromBaseUnits(new(uint256.Int).SetAllOne(), 0)
		_, err := ToBaseUnits(max.Add(MustFromString("1")), 0)
		assert.True(t, errors.Is(err, errs.Overflow))
	})
}

func TestFloor(t *testing.T) {
	assert.Equal(t, "0.333333", Floor(MustFromString("1").Div(MustFromString("3")), 6).String())
	assert.Equal(t, "2", Floor(MustFromString("2.9"), 0).String())
}

func TestFromBigInt(t *testing.T) {
	assert.Equal(t, "1.5", FromBigInt(big.NewInt(15), 1).String())
	assert.True(t, FromBigInt(nil, 18).IsZero())
}

func TestPowerOfTen(t *testing.T) {
	for n := int32(-36); n <= 36; n++ {
		p := PowerOfTen(n)
		assert.True(t, p.Shift(-n).Equal(MustFromString("1")), "10^%d", n)
	}
}

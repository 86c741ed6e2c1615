package parquetutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Wallet string `parquet:"name=wallet, type=BYTE_ARRAY, convertedtype=UTF8"`
	Amount string `parquet:"name=amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	Epoch  int64  `parquet:"name=epoch, type=INT64"`
}

func TestWriteThenRead(t *testing.T) {
	rows := []row{
		{Wallet: "0x0000000000000000000000000000000000000001", Amount: "2500", Epoch: 1},
		{Wallet: "0x0000000000000000000000000000000000000002", Amount: "0.5", Epoch: 1},
	}
	data, err := WriteAll(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	actual, err := ReadAll[row](data)
	require.NoError(t, err)
	assert.Equal(t, rows, actual)
}

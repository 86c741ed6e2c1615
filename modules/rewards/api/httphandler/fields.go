package httphandler

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func field(key, value string) string {
	return key + ":" + value
}

func uintsField(key string, values []uint64) string {
	return field(key, strings.Join(lo.Map(values, func(v uint64, _ int) string { return strconv.FormatUint(v, 10) }), ","))
}

func decimalsField(key string, values []decimal.Decimal) string {
	return field(key, strings.Join(lo.Map(values, func(v decimal.Decimal, _ int) string { return v.String() }), ","))
}

func hashesValue(hashes []common.Hash) string {
	return strings.Join(lo.Map(hashes, func(h common.Hash, _ int) string { return h.Hex() }), ",")
}

// proofsField separates proofs with ";" and the hashes of one proof with ",".
func proofsField(key string, proofs [][]common.Hash) string {
	return field(key, strings.Join(lo.Map(proofs, func(p []common.Hash, _ int) string { return hashesValue(p) }), ";"))
}

type mutationResult struct {
	Caller common.Address `json:"caller"`
}

type mutationResponse = HttpResponse[mutationResult]

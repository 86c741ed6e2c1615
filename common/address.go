package common

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/epoch-rewards/common/errs"
)

// ZeroAddress is the empty wallet address.
var ZeroAddress = common.Address{}

// ZeroHash is the empty 32-byte digest. It is never a valid merkle root.
var ZeroHash = common.Hash{}

// ParseAddress parses a hex wallet address in any letter case.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(errs.InvalidArgument, "invalid wallet address %q", s)
	}
	return common.HexToAddress(s), nil
}

// WalletKey returns the case-normalized key of a wallet, used for proof maps and storage keys.
func WalletKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// ParseHash parses a 0x-prefixed 32-byte hex digest.
func ParseHash(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	raw, err := hexutil.Decode(s)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, errors.Wrapf(errs.InvalidArgument, "invalid 32-byte hash %q", s)
	}
	return common.BytesToHash(raw), nil
}

// Package merkle builds and verifies the payout tree committed for a distribution.
//
// Leaf encoding, version 1 (identical to Solidity abi.encode(address, uint256, uint256, uint256)):
//
//	bytes   0..31   wallet address, left padded with zeros
//	bytes  32..63   claimableNow in token base units, big endian
//	bytes  64..95   vestingAmount in token base units, big endian
//	bytes  96..127  vestingDurationSeconds, big endian
//
// The leaf hash is keccak256(keccak256(encoding)). An inner node is keccak256 of its two
// children ordered ascending, so a proof is a plain list of sibling hashes. A node without a
// sibling is promoted to the next level unchanged.
package merkle

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	LeafVersion = 1

	wordSize   = 32
	LeafLength = 4 * wordSize
)

type Leaf struct {
	Wallet                 common.Address
	ClaimableNow           decimal.Decimal
	VestingAmount          decimal.Decimal
	VestingDurationSeconds uint64
}

// EncodeLeaf returns the canonical 128 byte encoding of leaf.
// Amounts must be non-negative and representable in tokenDecimals base units.
func EncodeLeaf(leaf Leaf, tokenDecimals uint8) ([]byte, error) {
	claimable, err := decimals.ToBaseUnits(leaf.ClaimableNow, tokenDecimals)
	if err != nil {
		return nil, errors.Wrap(err, "invalid claimable amount")
	}
	vesting, err := decimals.ToBaseUnits(leaf.VestingAmount, tokenDecimals)
	if err != nil {
		return nil, errors.Wrap(err, "invalid vesting amount")
	}
	duration := uint256.NewInt(leaf.VestingDurationSeconds)

	out := make([]byte, LeafLength)
	copy(out[wordSize-common.AddressLength:wordSize], leaf.Wallet.Bytes())
	putWord(out[wordSize:], claimable)
	putWord(out[2*wordSize:], vesting)
	putWord(out[3*wordSize:], duration)
	return out, nil
}

// HashLeaf returns the tree leaf for leaf.
func HashLeaf(leaf Leaf, tokenDecimals uint8) (common.Hash, error) {
	encoded, err := EncodeLeaf(leaf, tokenDecimals)
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}
	return crypto.Keccak256Hash(crypto.Keccak256(encoded)), nil
}

func putWord(dst []byte, v *uint256.Int) {
	word := v.Bytes32()
	copy(dst[:wordSize], word[:])
}

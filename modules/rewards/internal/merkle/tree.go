package merkle

import (
	"bytes"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	rewardscommon "github.com/gaze-network/epoch-rewards/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
)

type Tree struct {
	Root   common.Hash
	Leaves map[string]common.Hash   // wallet key -> leaf hash
	Proofs map[string][]common.Hash // wallet key -> sibling path, leaf to root
}

// Proof returns the proof of wallet, matching the wallet case-insensitively.
func (t *Tree) Proof(wallet common.Address) ([]common.Hash, bool) {
	proof, ok := t.Proofs[rewardscommon.WalletKey(wallet)]
	return proof, ok
}

// Build builds the tree over leaves. The result depends only on the set of leaves, not their order.
// Each wallet may appear once. An empty input yields a zero root.
func Build(leaves []Leaf, tokenDecimals uint8) (*Tree, error) {
	tree := &Tree{
		Leaves: make(map[string]common.Hash, len(leaves)),
		Proofs: make(map[string][]common.Hash, len(leaves)),
	}
	if len(leaves) == 0 {
		return tree, nil
	}

	type node struct {
		hash   common.Hash
		owners []string // wallet keys under this node
	}
	level := make([]node, 0, len(leaves))
	for _, leaf := range leaves {
		key := rewardscommon.WalletKey(leaf.Wallet)
		if _, ok := tree.Leaves[key]; ok {
			return nil, errors.Wrapf(errs.InvalidArgument, "duplicate leaf for wallet %s", key)
		}
		hash, err := HashLeaf(leaf, tokenDecimals)
		if err != nil {
			return nil, errors.Wrapf(err, "can't hash leaf of wallet %s", key)
		}
		tree.Leaves[key] = hash
		tree.Proofs[key] = []common.Hash{}
		level = append(level, node{hash: hash, owners: []string{key}})
	}
	sort.Slice(level, func(i, j int) bool {
		return bytes.Compare(level[i].hash[:], level[j].hash[:]) < 0
	})

	for len(level) > 1 {
		next := make([]node, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			left, right := level[i], level[i+1]
			for _, key := range left.owners {
				tree.Proofs[key] = append(tree.Proofs[key], right.hash)
			}
			for _, key := range right.owners {
				tree.Proofs[key] = append(tree.Proofs[key], left.hash)
			}
			owners := make([]string, 0, len(left.owners)+len(right.owners))
			owners = append(owners, left.owners...)
			next = append(next, node{
				hash:   hashPair(left.hash, right.hash),
				owners: append(owners, right.owners...),
			})
		}
		level = next
	}
	tree.Root = level[0].hash
	return tree, nil
}

// Verify reports whether leaf with proof reconstructs root.
// A leaf that can't be encoded never verifies. The result does not reveal which field mismatched.
func Verify(root common.Hash, leaf Leaf, proof []common.Hash, tokenDecimals uint8) bool {
	if root == rewardscommon.ZeroHash {
		return false
	}
	current, err := HashLeaf(leaf, tokenDecimals)
	if err != nil {
		return false
	}
	for _, sibling := range proof {
		current = hashPair(current, sibling)
	}
	return current == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

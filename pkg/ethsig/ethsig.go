// Package ethsig signs and verifies EIP-191 personal messages.
package ethsig

import (
	"crypto/ecdsa"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/epoch-rewards/common/errs"
)

// SignatureLength is the length of an [R || S || V] signature.
const SignatureLength = crypto.SignatureLength

// Sign signs message with the "\x19Ethereum Signed Message:\n" prefix. V is 27 or 28.
func Sign(message []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// Recover returns the address that signed message. V may be 0/1 or 27/28.
func Recover(message, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, errors.Wrapf(errs.InvalidArgument, "invalid signature length %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, errors.Wrap(errs.InvalidArgument, "invalid signature recovery id")
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(errs.InvalidArgument, "can't recover public key from signature")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that signer produced signature over message.
func Verify(signer common.Address, message, signature []byte) error {
	recovered, err := Recover(message, signature)
	if err != nil {
		return errors.WithStack(err)
	}
	if recovered != signer {
		return errors.Wrapf(errs.Unauthorized, "signature is not from %s", signer.Hex())
	}
	return nil
}

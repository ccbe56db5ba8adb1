// Package signature provides helper functions for signing and verifying
// payment vouchers and other ledger payloads.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// orphiID is an arbitrary number added to the recovery id when signing so a
// signature produced for this ledger can never be replayed on another chain
// that uses the conventional value of 27.
const orphiID = 31

// =============================================================================

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Sign uses the specified private key to sign the value.
func Sign(value any, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	data, err := stamp(value)
	if err != nil {
		return nil, nil, nil, err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, nil, nil, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, nil, nil, errors.New("invalid signature")
	}

	v, r, s = toSignatureValues(sig)
	return v, r, s, nil
}

// VerifySignature verifies the signature conforms to the ledger's standards.
func VerifySignature(v, r, s *big.Int) error {
	uintV := v.Uint64() - orphiID
	if uintV != 0 && uintV != 1 {
		return errors.New("invalid recovery id")
	}

	if !crypto.ValidateSignatureValues(byte(uintV), r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress extracts the address of the account that signed the value.
// The exact same value must be presented or a different address is
// recovered; there is no public key on file to compare against.
func FromAddress(value any, v, r, s *big.Int) (string, error) {
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	sig := ToSignatureBytes(v, r, s)

	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// SignatureString returns the signature as a string.
func SignatureString(v, r, s *big.Int) string {
	return hexutil.Encode(toSignatureBytesWithOrphiID(v, r, s))
}

// ToVRSFromHexSignature converts a hex representation of the signature into
// its R, S and V parts.
func ToVRSFromHexSignature(sigStr string) (v, r, s *big.Int, err error) {
	sig, err := hex.DecodeString(sigStr[2:])
	if err != nil {
		return nil, nil, nil, err
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64]})

	return v, r, s, nil
}

// =============================================================================

// stamp returns a 32 byte hash of the value with the ledger stamp embedded
// so signatures are always unique to this ledger.
func stamp(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	txHash := crypto.Keccak256(data)

	stamp := []byte("\x19Orphi Signed Message:\n32")

	return crypto.Keccak256(stamp, txHash), nil
}

// toSignatureValues converts the signature into the r, s, v values.
func toSignatureValues(sig []byte) (v, r, s *big.Int) {
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64] + orphiID})

	return v, r, s
}

// ToSignatureBytes converts the r, s, v values into a slice of bytes with
// the removal of the orphiID.
func ToSignatureBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)

	rBytes := r.Bytes()
	copy(sig[32-len(rBytes):32], rBytes)

	sBytes := s.Bytes()
	copy(sig[64-len(sBytes):64], sBytes)

	sig[64] = byte(v.Uint64() - orphiID)

	return sig
}

// toSignatureBytesWithOrphiID converts the r, s, v values into a slice of
// bytes keeping the orphiID.
func toSignatureBytesWithOrphiID(v, r, s *big.Int) []byte {
	sig := ToSignatureBytes(v, r, s)
	sig[64] = byte(v.Uint64())

	return sig
}

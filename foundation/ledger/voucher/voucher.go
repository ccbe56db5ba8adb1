// Package voucher defines the signed payment authorization that accompanies
// every paid ledger operation. The ledger never holds external funds; a
// voucher proves the paying wallet authorized the stated amount.
package voucher

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/signature"
)

// Voucher is the payload the paying wallet signs.
type Voucher struct {
	Account database.AccountID `json:"account"` // Account the payment is for.
	Amount  uint64             `json:"amount"`  // Payment in cents.
	Nonce   uint64             `json:"nonce"`   // Caller-chosen uniqueness value.
}

// SignedVoucher is a voucher with the wallet's signature attached.
type SignedVoucher struct {
	Voucher
	V *big.Int `json:"v"`
	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
}

// Sign signs the voucher with the specified private key.
func (v Voucher) Sign(privateKey *ecdsa.PrivateKey) (SignedVoucher, error) {
	sigV, sigR, sigS, err := signature.Sign(v, privateKey)
	if err != nil {
		return SignedVoucher{}, err
	}

	return SignedVoucher{
		Voucher: v,
		V:       sigV,
		R:       sigR,
		S:       sigS,
	}, nil
}

// FromAccount extracts the account that signed the voucher.
func (sv SignedVoucher) FromAccount() (database.AccountID, error) {
	address, err := signature.FromAddress(sv.Voucher, sv.V, sv.R, sv.S)
	if err != nil {
		return "", err
	}
	return database.ToAccountID(address)
}

// Validate checks the signature is well formed and was produced by the
// account the voucher names.
func (sv SignedVoucher) Validate() error {
	if sv.Amount == 0 {
		return errors.New("voucher amount is zero")
	}

	if err := signature.VerifySignature(sv.V, sv.R, sv.S); err != nil {
		return err
	}

	from, err := sv.FromAccount()
	if err != nil {
		return err
	}
	if from != sv.Account {
		return fmt.Errorf("voucher signed by %s, names %s", from, sv.Account)
	}

	return nil
}

// Ref returns the stable reference recorded in the journal for this
// payment.
func (sv SignedVoucher) Ref() string {
	return signature.SignatureString(sv.V, sv.R, sv.S)
}

package database

import (
	"crypto/ecdsa"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Status values for an account's earning state.
const (
	StatusActive = "ACTIVE"
	StatusCapped = "CAPPED"
)

// Side values for a matrix child slot.
const (
	SideLeft  = "L"
	SideRight = "R"
)

// ReactivationRecord tracks one reactivation strategy's history for an
// account.
type ReactivationRecord struct {
	Uses           int
	CooldownExpiry time.Time
}

// Account represents the full ledger state for one participant. Sponsor and
// matrix parent are two distinct relations: the sponsor chain pays the level
// and upline bonuses, the matrix tree drives placement and team size.
type Account struct {
	AccountID AccountID
	Sponsor   AccountID // Immutable after registration. Empty for the root.

	PackageTier   uint8
	TotalInvested uint64
	TotalEarnings uint64
	Withdrawable  uint64
	PaidOut       uint64 // Cumulative cash paid out by withdrawals.

	DirectReferralCount int
	TeamSize            int

	MatrixParent AccountID
	MatrixSide   string
	LeftChild    AccountID
	RightChild   AccountID
	UplineChain  []AccountID // Sponsor-chain ancestors, closest first, immutable.

	CapMultiplier uint64
	Status        string
	CappedAt      time.Time

	ReactivationCount int
	TimeBased         ReactivationRecord
	Tiered            ReactivationRecord
	UpgradeBased      ReactivationRecord

	LastActivity      time.Time
	LastMutationEpoch uint64
}

// Room returns how much the account may still earn before hitting the
// lifetime cap.
func (a Account) Room() uint64 {
	limit, err := mul64(a.TotalInvested, a.CapMultiplier)
	if err != nil {
		// The cap limit can only overflow if investments already exceed
		// any representable earnings, so there is unlimited room.
		return ^uint64(0) - a.TotalEarnings
	}
	if a.TotalEarnings >= limit {
		return 0
	}
	return limit - a.TotalEarnings
}

// =============================================================================

// AccountID represents an account identity derived from the public key of
// the participant's wallet.
type AccountID string

// ToAccountID converts a hex-encoded string to an account id and validates
// the hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account id value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	const addressLength = 20

	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) == 2*addressLength && isHex(a)
}

// IsZero reports whether the account id is unset.
func (a AccountID) IsZero() bool {
	return a == ""
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a AccountID) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a AccountID) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

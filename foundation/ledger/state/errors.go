package state

import "errors"

// Set of errors surfaced by the public operations. Errors raised deeper in
// the engines (guard, reactivation, governance) pass through unwrapped so
// callers can match on them.
var (
	ErrAlreadyRegistered   = errors.New("account already registered")
	ErrNotRegistered       = errors.New("account not registered")
	ErrInvalidSponsor      = errors.New("invalid sponsor")
	ErrInvalidTier         = errors.New("invalid package tier")
	ErrTierNotHigher       = errors.New("new tier not higher than current")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrTooEarly            = errors.New("distribution interval not elapsed")
	ErrNoFunds             = errors.New("pool has no funds")
	ErrConservation        = errors.New("conservation violation")
	ErrJournalFault        = errors.New("journal fault, ledger halted")
)

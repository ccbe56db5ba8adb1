package public

import (
	"math/big"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/voucher"
)

// payment is the signed voucher that accompanies every paid request.
type payment struct {
	Account string   `json:"account" validate:"required"`
	Amount  uint64   `json:"amount" validate:"required"`
	Nonce   uint64   `json:"nonce" validate:"required"`
	V       *big.Int `json:"v" validate:"required"`
	R       *big.Int `json:"r" validate:"required"`
	S       *big.Int `json:"s" validate:"required"`
}

// signedVoucher converts the request payment into the core voucher type.
func (p payment) signedVoucher() voucher.SignedVoucher {
	return voucher.SignedVoucher{
		Voucher: voucher.Voucher{
			Account: database.AccountID(p.Account),
			Amount:  p.Amount,
			Nonce:   p.Nonce,
		},
		V: p.V,
		R: p.R,
		S: p.S,
	}
}

type registerRequest struct {
	Sponsor string  `json:"sponsor" validate:"required"`
	Tier    uint8   `json:"tier" validate:"required,min=1"`
	Payment payment `json:"payment" validate:"required"`
}

type upgradeRequest struct {
	Tier    uint8   `json:"tier" validate:"required,min=1"`
	Payment payment `json:"payment" validate:"required"`
}

type withdrawRequest struct {
	Account string   `json:"account" validate:"required"`
	Amount  uint64   `json:"amount" validate:"required"`
	Nonce   uint64   `json:"nonce" validate:"required"`
	V       *big.Int `json:"v" validate:"required"`
	R       *big.Int `json:"r" validate:"required"`
	S       *big.Int `json:"s" validate:"required"`
}

type reactivateRequest struct {
	Strategy string  `json:"strategy" validate:"required,oneof=time-based tiered upgrade-based"`
	Payment  payment `json:"payment" validate:"required"`
}

// =============================================================================

// line is one entry of a receipt's money movement.
type line struct {
	Kind    string             `json:"kind"`
	Account database.AccountID `json:"account,omitempty"`
	Name    string             `json:"name,omitempty"`
	Level   int                `json:"level,omitempty"`
	Amount  uint64             `json:"amount"`
}

// receipt is the web representation of an operation receipt.
type receipt struct {
	ID      string    `json:"id"`
	Seq     uint64    `json:"seq"`
	Op      string    `json:"op"`
	Account string    `json:"account"`
	Time    time.Time `json:"time"`
	Lines   []line    `json:"lines"`
}

// info is the web representation of one account.
type info struct {
	Account           database.AccountID `json:"account"`
	Name              string             `json:"name"`
	Sponsor           database.AccountID `json:"sponsor,omitempty"`
	Tier              uint8              `json:"tier"`
	Status            string             `json:"status"`
	TotalInvested     uint64             `json:"total_invested"`
	TotalEarnings     uint64             `json:"total_earnings"`
	Withdrawable      uint64             `json:"withdrawable"`
	PaidOut           uint64             `json:"paid_out"`
	DirectReferrals   int                `json:"direct_referrals"`
	TeamSize          int                `json:"team_size"`
	CapRoom           uint64             `json:"cap_room"`
	ReactivationCount int                `json:"reactivation_count"`
}

// pools is the web representation of the shared balances.
type pools struct {
	Treasury               uint64    `json:"treasury"`
	Reserve                uint64    `json:"reserve"`
	Leader                 uint64    `json:"leader"`
	Help                   uint64    `json:"help"`
	LastLeaderDistribution time.Time `json:"last_leader_distribution"`
	LastHelpDistribution   time.Time `json:"last_help_distribution"`
}

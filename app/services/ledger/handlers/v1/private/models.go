package private

import (
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

type governRequest struct {
	ImplRef string `json:"impl_ref" validate:"required"`
	Actor   string `json:"actor" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

type distributeRequest struct {
	Caller string `json:"caller" validate:"required"`
}

// status reports the ledger node's view of the world.
type status struct {
	LatestSeq      uint64 `json:"latest_seq"`
	Accounts       int    `json:"accounts"`
	Implementation string `json:"implementation,omitempty"`
	Treasury       uint64 `json:"treasury"`
	Reserve        uint64 `json:"reserve"`
	LeaderPool     uint64 `json:"leader_pool"`
	HelpPool       uint64 `json:"help_pool"`
}

// proposal is the web representation of one upgrade proposal.
type proposal struct {
	ImplRef    string               `json:"impl_ref"`
	ProposedBy database.AccountID   `json:"proposed_by"`
	ProposedAt time.Time            `json:"proposed_at"`
	Approvals  []database.AccountID `json:"approvals,omitempty"`
	Executed   bool                 `json:"executed"`
	ExecutedAt time.Time            `json:"executed_at,omitempty"`
}

// emergency is the web representation of one emergency upgrade record.
type emergency struct {
	ImplRef string             `json:"impl_ref"`
	Reason  string             `json:"reason"`
	Actor   database.AccountID `json:"actor"`
	At      time.Time          `json:"at"`
}

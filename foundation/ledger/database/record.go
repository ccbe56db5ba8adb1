package database

import (
	"time"

	"github.com/google/uuid"
)

// Op values name every mutating ledger operation. They appear in journal
// records and receipts and key the role table.
const (
	OpRegister         = "register"
	OpUpgradePackage   = "upgrade-package"
	OpWithdraw         = "withdraw"
	OpDistributePool   = "distribute-pool"
	OpReactivate       = "reactivate"
	OpProposeUpgrade   = "propose-upgrade"
	OpApproveUpgrade   = "approve-upgrade"
	OpCancelUpgrade    = "cancel-upgrade"
	OpExecuteUpgrade   = "execute-upgrade"
	OpEmergencyUpgrade = "emergency-upgrade"
)

// Pool identifiers accepted by the distribute-pool operation.
const (
	PoolLeader = "leader"
	PoolHelp   = "help"
)

// Reactivation strategy identifiers.
const (
	StrategyTimeBased    = "time-based"
	StrategyTiered       = "tiered"
	StrategyUpgradeBased = "upgrade-based"
)

// Record is the durable form of one mutating operation. The journal stores
// records in sequence order; replaying them through the same apply path
// rebuilds the full ledger state deterministically.
type Record struct {
	Seq        uint64    `json:"seq"`
	Epoch      uint64    `json:"epoch"`
	Time       time.Time `json:"time"`
	Op         string    `json:"op"`
	Account    AccountID `json:"account"`
	Sponsor    AccountID `json:"sponsor,omitempty"`
	Tier       uint8     `json:"tier,omitempty"`
	Amount     uint64    `json:"amount,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	Pool       string    `json:"pool,omitempty"`
	ImplRef    string    `json:"impl_ref,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	PaymentRef string    `json:"payment_ref,omitempty"`
}

// =============================================================================

// Line kinds describing where money moved during an operation.
const (
	LineAdminFee   = "admin-fee"
	LineSponsor    = "sponsor"
	LineLevel      = "level"
	LineUpline     = "upline"
	LineLeaderPool = "leader-pool"
	LineHelpPool   = "help-pool"
	LineRemainder  = "remainder"
	LineCapExcess  = "cap-excess"
	LinePayout     = "payout"
	LineReinvest   = "reinvest"
	LineFee        = "fee"
	LinePoolShare  = "pool-share"
)

// Line is one money movement inside a receipt. Account is empty for lines
// that credit a pool or sink instead of a participant.
type Line struct {
	Kind    string    `json:"kind"`
	Account AccountID `json:"account,omitempty"`
	Level   int       `json:"level,omitempty"`
	Amount  uint64    `json:"amount"`
}

// Receipt is returned from every successful mutating operation. The lines
// itemize the movement of every cent of the payment so callers can audit
// conservation.
type Receipt struct {
	ID string `json:"id"`
	Record
	Lines []Line `json:"lines,omitempty"`
}

// NewReceipt constructs a receipt for the specified record and lines.
func NewReceipt(record Record, lines []Line) Receipt {
	return Receipt{
		ID:     uuid.NewString(),
		Record: record,
		Lines:  lines,
	}
}

// CreditTotal sums every line that credits a participant or pool. A receipt
// for a payment of N must satisfy CreditTotal == N.
func (r Receipt) CreditTotal() uint64 {
	var total uint64
	for _, line := range r.Lines {
		switch line.Kind {
		case LinePayout, LineReinvest:
			// Withdrawal outputs, not payment credits.
			continue
		}
		total += line.Amount
	}
	return total
}

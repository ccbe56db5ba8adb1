// Package governor manages upgrade proposals under a timelock with optional
// multi-signature approval, plus the emergency path that bypasses the
// timelock but leaves a permanent audit trail.
package governor

import (
	"errors"
	"sync"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// Set of errors surfaced by governance operations.
var (
	ErrNoSuchProposal        = errors.New("no such proposal")
	ErrProposalExists        = errors.New("proposal already exists")
	ErrInvalidImplRef        = errors.New("invalid implementation reference")
	ErrTimelockNotExpired    = errors.New("timelock not expired")
	ErrInsufficientApprovals = errors.New("insufficient approvals")
	ErrAlreadyApproved       = errors.New("already approved")
	ErrAlreadyExecuted       = errors.New("proposal already executed")
	ErrEmptyReason           = errors.New("emergency upgrade requires a reason")
)

// Proposal represents one pending upgrade.
type Proposal struct {
	ImplRef    string
	ProposedBy database.AccountID
	ProposedAt time.Time
	Approvals  []database.AccountID
	Executed   bool
	ExecutedAt time.Time
}

// EmergencyRecord is one entry in the append-only emergency upgrade history.
type EmergencyRecord struct {
	ImplRef string
	Reason  string
	Actor   database.AccountID
	At      time.Time
}

// Governor holds the proposal table and the emergency history.
type Governor struct {
	mu sync.RWMutex

	timelock          time.Duration
	requiredApprovals int

	proposals map[string]Proposal
	emergency []EmergencyRecord
	current   string // Implementation reference currently live.
}

// New constructs a governor with the specified timelock and multi-sig
// threshold. A threshold of zero disables multi-sig.
func New(timelock time.Duration, requiredApprovals int) *Governor {
	return &Governor{
		timelock:          timelock,
		requiredApprovals: requiredApprovals,
		proposals:         make(map[string]Proposal),
	}
}

// Propose registers a new upgrade proposal for the implementation reference.
// The reference must be a deployable account-shaped address.
func (g *Governor) Propose(implRef string, proposer database.AccountID, now time.Time) error {
	if !database.AccountID(implRef).IsAccountID() {
		return ErrInvalidImplRef
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.proposals[implRef]; exists {
		return ErrProposalExists
	}

	g.proposals[implRef] = Proposal{
		ImplRef:    implRef,
		ProposedBy: proposer,
		ProposedAt: now,
	}
	return nil
}

// Approve adds the signer's approval to the pending proposal. Each signer
// approves at most once.
func (g *Governor) Approve(implRef string, signer database.AccountID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	proposal, exists := g.proposals[implRef]
	if !exists {
		return ErrNoSuchProposal
	}
	if proposal.Executed {
		return ErrAlreadyExecuted
	}

	for _, approved := range proposal.Approvals {
		if approved == signer {
			return ErrAlreadyApproved
		}
	}

	proposal.Approvals = append(proposal.Approvals, signer)
	g.proposals[implRef] = proposal
	return nil
}

// Cancel removes the pending proposal. Cancellation is terminal: a
// cancelled reference reads as no such proposal.
func (g *Governor) Cancel(implRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	proposal, exists := g.proposals[implRef]
	if !exists {
		return ErrNoSuchProposal
	}
	if proposal.Executed {
		return ErrAlreadyExecuted
	}

	delete(g.proposals, implRef)
	return nil
}

// Execute finalizes the proposal once the timelock has expired and, when
// multi-sig is configured, the approval threshold is met. Execution is
// terminal: the proposal stays queryable but accepts no further calls.
func (g *Governor) Execute(implRef string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	proposal, exists := g.proposals[implRef]
	if !exists {
		return ErrNoSuchProposal
	}
	if proposal.Executed {
		return ErrAlreadyExecuted
	}

	if now.Before(proposal.ProposedAt.Add(g.timelock)) {
		return ErrTimelockNotExpired
	}
	if g.requiredApprovals > 0 && len(proposal.Approvals) < g.requiredApprovals {
		return ErrInsufficientApprovals
	}

	proposal.Executed = true
	proposal.ExecutedAt = now
	g.proposals[implRef] = proposal
	g.current = implRef
	return nil
}

// Emergency applies the upgrade immediately, bypassing the timelock and any
// pending proposal state. The reason is mandatory and the record is kept
// forever.
func (g *Governor) Emergency(implRef, reason string, actor database.AccountID, now time.Time) error {
	if !database.AccountID(implRef).IsAccountID() {
		return ErrInvalidImplRef
	}
	if reason == "" {
		return ErrEmptyReason
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.emergency = append(g.emergency, EmergencyRecord{
		ImplRef: implRef,
		Reason:  reason,
		Actor:   actor,
		At:      now,
	})
	g.current = implRef
	return nil
}

// Proposal returns a copy of the proposal for the implementation reference.
func (g *Governor) Proposal(implRef string) (Proposal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	proposal, exists := g.proposals[implRef]
	if !exists {
		return Proposal{}, ErrNoSuchProposal
	}

	proposal.Approvals = append([]database.AccountID(nil), proposal.Approvals...)
	return proposal, nil
}

// Proposals returns a copy of every live proposal.
func (g *Governor) Proposals() []Proposal {
	g.mu.RLock()
	defer g.mu.RUnlock()

	proposals := make([]Proposal, 0, len(g.proposals))
	for _, proposal := range g.proposals {
		proposal.Approvals = append([]database.AccountID(nil), proposal.Approvals...)
		proposals = append(proposals, proposal)
	}
	return proposals
}

// EmergencyHistory returns a copy of the append-only emergency record.
func (g *Governor) EmergencyHistory() []EmergencyRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return append([]EmergencyRecord(nil), g.emergency...)
}

// Current returns the implementation reference currently live.
func (g *Governor) Current() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.current
}

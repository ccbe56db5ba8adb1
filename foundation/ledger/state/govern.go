package state

import (
	"fmt"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// ProposeUpgrade registers a new upgrade proposal. The proposer must hold
// the proposer role; execution waits out the configured timelock.
func (s *State) ProposeUpgrade(implRef string, proposer database.AccountID) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpProposeUpgrade, proposer)
	record.ImplRef = implRef

	return s.commit(record)
}

// ApproveUpgrade adds a signer's approval to a pending proposal.
func (s *State) ApproveUpgrade(implRef string, signer database.AccountID) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpApproveUpgrade, signer)
	record.ImplRef = implRef

	return s.commit(record)
}

// CancelUpgrade withdraws a pending proposal. Cancellation is immediate
// and terminal.
func (s *State) CancelUpgrade(implRef string, signer database.AccountID) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpCancelUpgrade, signer)
	record.ImplRef = implRef

	return s.commit(record)
}

// ExecuteUpgrade finalizes a proposal once the timelock has expired and
// the approval threshold, when configured, is met.
func (s *State) ExecuteUpgrade(implRef string, executor database.AccountID) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpExecuteUpgrade, executor)
	record.ImplRef = implRef

	return s.commit(record)
}

// EmergencyUpgrade bypasses the timelock. It requires the emergency role
// and a non-empty reason and is permanently recorded for audit.
func (s *State) EmergencyUpgrade(implRef, reason string, actor database.AccountID) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpEmergencyUpgrade, actor)
	record.ImplRef = implRef
	record.Reason = reason

	return s.commit(record)
}

// applyGovernance dispatches governance records to the governor. Rejections
// are logged: an unauthorized or premature governance call is an audit
// event, never a silent drop.
func (s *State) applyGovernance(record database.Record) error {
	var err error

	switch record.Op {
	case database.OpProposeUpgrade:
		err = s.governor.Propose(record.ImplRef, record.Account, record.Time)
	case database.OpApproveUpgrade:
		err = s.governor.Approve(record.ImplRef, record.Account)
	case database.OpCancelUpgrade:
		err = s.governor.Cancel(record.ImplRef)
	case database.OpExecuteUpgrade:
		err = s.governor.Execute(record.ImplRef, record.Time)
	case database.OpEmergencyUpgrade:
		err = s.governor.Emergency(record.ImplRef, record.Reason, record.Account, record.Time)
	default:
		err = fmt.Errorf("unknown governance operation %q", record.Op)
	}

	if err != nil {
		s.evHandler("state: governance %s for %s by %s rejected: %s", record.Op, record.ImplRef, record.Account, err)
		return err
	}

	s.evHandler("state: governance %s for %s by %s", record.Op, record.ImplRef, record.Account)
	return nil
}

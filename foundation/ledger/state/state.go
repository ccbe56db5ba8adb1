// Package state is the core API for the compensation ledger and implements
// all the business rules and processing. Every mutating operation flows
// through a single apply path: validated, guarded, executed, and appended
// to the journal. Rebuilding a node replays the journal through the same
// path, so the in-memory state is always the deterministic product of the
// record sequence.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/distribute"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
	"github.com/orphinet/ledger/foundation/ledger/governor"
	"github.com/orphinet/ledger/foundation/ledger/guard"
	"github.com/orphinet/ledger/foundation/ledger/roles"
)

// EventHandler defines a function that is called when events occur in the
// processing of ledger operations.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis    genesis.Genesis
	Serializer database.Serializer
	Clock      clockwork.Clock
	EvHandler  EventHandler
}

// State manages the compensation ledger.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	evHandler EventHandler
	clock     clockwork.Clock

	db         *database.Database
	planner    distribute.Planner
	guard      *guard.Guard
	governor   *governor.Governor
	roles      *roles.Table
	serializer database.Serializer

	lastSeq      uint64
	replaying    bool
	journalFault bool
}

// New constructs the ledger state, replaying any existing journal records
// to rebuild the account, pool, and proposal state.
func New(cfg Config) (*State, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Genesis, ev)
	if err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	timelock := time.Duration(cfg.Genesis.TimelockSeconds) * time.Second

	s := State{
		genesis:    cfg.Genesis,
		evHandler:  ev,
		clock:      clock,
		db:         db,
		planner:    distribute.NewPlanner(cfg.Genesis),
		guard:      guard.New(),
		governor:   governor.New(timelock, cfg.Genesis.RequiredApprovals),
		roles:      roles.New(cfg.Genesis),
		serializer: cfg.Serializer,
	}

	if err := s.replay(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.serializer.Close()
}

// replay walks the journal from the beginning and re-applies every record
// through the live apply path with its recorded time and epoch.
func (s *State) replay() error {
	s.replaying = true
	defer func() { s.replaying = false }()

	iter := s.serializer.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return fmt.Errorf("replay read: %w", err)
		}

		if record.Seq != s.lastSeq+1 {
			return fmt.Errorf("replay gap: got seq %d, want %d", record.Seq, s.lastSeq+1)
		}

		if _, err := s.apply(record); err != nil {
			return fmt.Errorf("replay seq %d (%s): %w", record.Seq, record.Op, err)
		}
		s.lastSeq = record.Seq

		s.evHandler("state: replayed %s for %s at seq %d", record.Op, record.Account, record.Seq)
	}

	return nil
}

// epoch quantizes a time into a mutation guard epoch.
func (s *State) epoch(now time.Time) uint64 {
	return uint64(now.Unix()) / s.genesis.EpochSeconds
}

// commit runs the record through the apply path and, on success, appends it
// to the journal. Either the full operation commits and is journaled, or
// nothing is.
func (s *State) commit(record database.Record) (database.Receipt, error) {
	if s.journalFault {
		return database.Receipt{}, ErrJournalFault
	}

	record.Seq = s.lastSeq + 1

	receipt, err := s.apply(record)
	if err != nil {
		return database.Receipt{}, err
	}

	if err := s.serializer.Write(record); err != nil {
		// The apply already mutated in-memory state. Halt all further
		// mutations so live state cannot drift from what a replay would
		// rebuild; the operator restarts the node to recover.
		s.journalFault = true
		s.evHandler("state: journal write failed at seq %d, halting mutations: %s", record.Seq, err)
		return database.Receipt{}, fmt.Errorf("journal write: %w", ErrJournalFault)
	}
	s.lastSeq = record.Seq

	return receipt, nil
}

// apply validates and executes one record. It is the single path used by
// both live calls and journal replay.
func (s *State) apply(record database.Record) (database.Receipt, error) {
	if err := s.roles.Check(record.Op, record.Account); err != nil {
		return database.Receipt{}, err
	}

	if err := s.guard.Check(record.Account, record.Epoch); err != nil {
		return database.Receipt{}, err
	}

	var lines []database.Line
	var err error

	switch record.Op {
	case database.OpRegister:
		lines, err = s.applyRegister(record)
	case database.OpUpgradePackage:
		lines, err = s.applyUpgradePackage(record)
	case database.OpWithdraw:
		lines, err = s.applyWithdraw(record)
	case database.OpDistributePool:
		lines, err = s.applyDistributePool(record)
	case database.OpReactivate:
		lines, err = s.applyReactivate(record)
	case database.OpProposeUpgrade, database.OpApproveUpgrade, database.OpCancelUpgrade,
		database.OpExecuteUpgrade, database.OpEmergencyUpgrade:
		err = s.applyGovernance(record)
	default:
		err = fmt.Errorf("unknown operation %q", record.Op)
	}

	if err != nil {
		return database.Receipt{}, err
	}

	s.db.MarkMutation(record.Account, record.Epoch, record.Time)

	return database.NewReceipt(record, lines), nil
}

// newRecord stamps a record with the current time and epoch.
func (s *State) newRecord(op string, account database.AccountID) database.Record {
	now := s.clock.Now()
	return database.Record{
		Epoch:   s.epoch(now),
		Time:    now,
		Op:      op,
		Account: account,
	}
}

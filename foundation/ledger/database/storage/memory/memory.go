// Package memory implements the journal serializer in memory. Used for
// tests and simulations where nothing should touch the disk.
package memory

import (
	"errors"
	"sync"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// Memory represents the serialization implementation for keeping journal
// records in memory. This implements the database.Serializer interface.
type Memory struct {
	mu      sync.RWMutex
	records []database.Record
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do.
func (m *Memory) Close() error {
	return nil
}

// Write appends the record to the in-memory journal.
func (m *Memory) Write(record database.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	return nil
}

// GetRecord returns the specified record by sequence number.
func (m *Memory) GetRecord(seq uint64) (database.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if seq == 0 || seq > uint64(len(m.records)) {
		return database.Record{}, errors.New("record does not exist")
	}

	return m.records[seq-1], nil
}

// ForEach returns an iterator to walk through all the records starting with
// sequence number 1.
func (m *Memory) ForEach() database.Iterator {
	return &iterator{memory: m}
}

// Reset clears the in-memory journal.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// =============================================================================

// iterator represents the iteration implementation for walking through the
// records in memory. This implements the database.Iterator interface.
type iterator struct {
	memory  *Memory
	current uint64
	eoj     bool
}

// Next retrieves the next record from memory.
func (it *iterator) Next() (database.Record, error) {
	if it.eoj {
		return database.Record{}, errors.New("end of journal")
	}

	it.current++
	record, err := it.memory.GetRecord(it.current)
	if err != nil {
		it.eoj = true
	}

	return record, err
}

// Done returns the end of journal value.
func (it *iterator) Done() bool {
	return it.eoj
}

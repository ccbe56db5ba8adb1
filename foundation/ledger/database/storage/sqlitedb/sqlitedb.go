// Package sqlitedb implements the journal serializer on a single sqlite
// file. Unlike the disk backend, the journal survives as one artifact that
// ops tooling can query directly.
package sqlitedb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orphinet/ledger/foundation/ledger/database"

	_ "modernc.org/sqlite"
)

const createTable = `
CREATE TABLE IF NOT EXISTS journal (
	seq    INTEGER PRIMARY KEY,
	epoch  INTEGER NOT NULL,
	op     TEXT    NOT NULL,
	record BLOB    NOT NULL
);`

// SQLite represents the serialization implementation for storing journal
// records in a sqlite database. This implements the database.Serializer
// interface.
type SQLite struct {
	db *sql.DB
}

// New opens or creates the sqlite journal at the specified path.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Write stores the record in the journal table keyed by sequence number.
func (s *SQLite) Write(record database.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	const insert = `INSERT INTO journal (seq, epoch, op, record) VALUES (?, ?, ?, ?)`
	if _, err := s.db.Exec(insert, record.Seq, record.Epoch, record.Op, data); err != nil {
		return fmt.Errorf("insert record %d: %w", record.Seq, err)
	}

	return nil
}

// GetRecord returns the specified record by sequence number.
func (s *SQLite) GetRecord(seq uint64) (database.Record, error) {
	const query = `SELECT record FROM journal WHERE seq = ?`

	var data []byte
	if err := s.db.QueryRow(query, seq).Scan(&data); err != nil {
		return database.Record{}, err
	}

	var record database.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return database.Record{}, err
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records starting with
// sequence number 1.
func (s *SQLite) ForEach() database.Iterator {
	return &iterator{sqlite: s}
}

// Reset clears the journal table.
func (s *SQLite) Reset() error {
	_, err := s.db.Exec(`DELETE FROM journal`)
	return err
}

// =============================================================================

// iterator represents the iteration implementation for walking through the
// records in the sqlite journal. This implements the database.Iterator
// interface.
type iterator struct {
	sqlite  *SQLite
	current uint64
	eoj     bool
}

// Next retrieves the next record from the journal.
func (it *iterator) Next() (database.Record, error) {
	if it.eoj {
		return database.Record{}, errors.New("end of journal")
	}

	it.current++
	record, err := it.sqlite.GetRecord(it.current)
	if errors.Is(err, sql.ErrNoRows) {
		it.eoj = true
	}

	return record, err
}

// Done returns the end of journal value.
func (it *iterator) Done() bool {
	return it.eoj
}

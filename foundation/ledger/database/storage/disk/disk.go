// Package disk implements the journal serializer with one JSON file per
// record on disk.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// Disk represents the serialization implementation for reading and storing
// journal records in their own separate files on disk. This implements the
// database.Serializer interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write stores the record on disk in a file labeled with the sequence
// number.
func (d *Disk) Write(record database.Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.getPath(record.Seq), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// GetRecord locates and returns the contents of the specified record by
// sequence number.
func (d *Disk) GetRecord(seq uint64) (database.Record, error) {
	f, err := os.OpenFile(d.getPath(seq), os.O_RDONLY, 0600)
	if err != nil {
		return database.Record{}, err
	}
	defer f.Close()

	var record database.Record
	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return database.Record{}, err
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records starting with
// sequence number 1.
func (d *Disk) ForEach() database.Iterator {
	return &iterator{disk: d}
}

// Reset clears the journal on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}
	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(seq uint64) string {
	name := strconv.FormatUint(seq, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// iterator represents the iteration implementation for walking through and
// reading records on disk. This implements the database.Iterator interface.
type iterator struct {
	disk    *Disk
	current uint64
	eoj     bool // Represents the iterator is at the end of the journal.
}

// Next retrieves the next record from disk.
func (it *iterator) Next() (database.Record, error) {
	if it.eoj {
		return database.Record{}, errors.New("end of journal")
	}

	it.current++
	record, err := it.disk.GetRecord(it.current)
	if errors.Is(err, fs.ErrNotExist) {
		it.eoj = true
	}

	return record, err
}

// Done returns the end of journal value.
func (it *iterator) Done() bool {
	return it.eoj
}

package database

// Serializer interface represents the behavior required to be implemented by
// any package providing support for storing and reading the ledger journal.
type Serializer interface {
	Write(record Record) error
	GetRecord(seq uint64) (Record, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over journal records.
type Iterator interface {
	Next() (Record, error)
	Done() bool
}

package kv

// DB is a key value database
type DB interface {
	// Tx runs fn inside a transaction. The transaction is committed if fn returns nil.
	Tx(isUpdate bool, fn func(Tx) error) error
	// NewTx opens a transaction that the caller must Commit or Discard
	NewTx(isUpdate bool) Tx
	Batch() Batch
	Close() error
}

// IterOpts configure an Iterator
type IterOpts struct {
	// Prefix limits the iterator to keys with the prefix
	Prefix []byte `json:"prefix"`
}

// Tx is a database transaction
type Tx interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	NewIterator(opts IterOpts) Iterator
	Commit() error
	Discard()
}

// Iterator walks the keys of a transaction in ascending byte order
type Iterator interface {
	Close()
	Valid() bool
	Item() Item
	Next()
}

// Item is a single key value pair
type Item interface {
	Key() []byte
	Value() ([]byte, error)
}

// Batch buffers writes until Flush
type Batch interface {
	Flush() error
	Set(key, value []byte) error
}

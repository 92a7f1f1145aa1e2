package badger

import (
	"github.com/dgraph-io/badger/v3"
)

type writeBatch struct {
	wb *badger.WriteBatch
}

func (w *writeBatch) Set(key, value []byte) error {
	return w.wb.Set(key, value)
}

// Flush commits the buffered writes. The batch cannot be reused afterwards.
func (w *writeBatch) Flush() error {
	return w.wb.Flush()
}

package badger

import (
	"github.com/autom8ter/orderkit/kv"
	"github.com/dgraph-io/badger/v3"
)

// badgerTx adapts a badger transaction. Transactions opened by DB.Tx are owned by badger,
// which commits or discards them when the callback returns.
type badgerTx struct {
	txn   *badger.Txn
	owned bool
}

func (t *badgerTx) NewIterator(opts kv.IterOpts) kv.Iterator {
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.PrefetchSize = 10
	iterOpts.Prefix = opts.Prefix
	it := t.txn.NewIterator(iterOpts)
	it.Rewind()
	return &prefixIterator{it: it, prefix: opts.Prefix}
}

func (t *badgerTx) Get(key []byte) ([]byte, error) {
	entry, err := t.txn.Get(key)
	switch {
	case err == badger.ErrKeyNotFound:
		return nil, nil
	case err != nil:
		return nil, err
	}
	return entry.ValueCopy(nil)
}

func (t *badgerTx) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *badgerTx) Commit() error {
	if t.owned {
		return nil
	}
	return t.txn.Commit()
}

func (t *badgerTx) Discard() {
	if !t.owned {
		t.txn.Discard()
	}
}

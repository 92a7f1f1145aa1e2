package badger

import (
	"github.com/autom8ter/orderkit/kv"
	"github.com/autom8ter/orderkit/kv/registry"
	"github.com/dgraph-io/badger/v3"
	"github.com/spf13/cast"
)

func init() {
	registry.Register("badger", func(params map[string]interface{}) (kv.DB, error) {
		return New(cast.ToString(params["storage_path"]))
	})
}

type badgerKV struct {
	db *badger.DB
}

// New opens a badger database at storagePath. An empty path opens an in-memory database.
func New(storagePath string) (kv.DB, error) {
	opts := badger.DefaultOptions(storagePath)
	if storagePath == "" {
		opts.InMemory = true
		opts.Dir = ""
		opts.ValueDir = ""
	}
	opts = opts.WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerKV{
		db: db,
	}, nil
}

func (b *badgerKV) Tx(isUpdate bool, fn func(kv.Tx) error) error {
	if isUpdate {
		return b.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTx{txn: txn, owned: true})
		})
	}
	return b.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, owned: true})
	})
}

func (b *badgerKV) NewTx(isUpdate bool) kv.Tx {
	return &badgerTx{txn: b.db.NewTransaction(isUpdate)}
}

func (b *badgerKV) Batch() kv.Batch {
	return &writeBatch{wb: b.db.NewWriteBatch()}
}

func (b *badgerKV) Close() error {
	return b.db.Close()
}

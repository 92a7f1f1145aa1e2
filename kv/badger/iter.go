package badger

import (
	"github.com/autom8ter/orderkit/kv"
	"github.com/dgraph-io/badger/v3"
)

type prefixIterator struct {
	it     *badger.Iterator
	prefix []byte
}

func (p *prefixIterator) Valid() bool {
	if len(p.prefix) == 0 {
		return p.it.Valid()
	}
	return p.it.ValidForPrefix(p.prefix)
}

func (p *prefixIterator) Next() {
	p.it.Next()
}

func (p *prefixIterator) Item() kv.Item {
	return entry{item: p.it.Item()}
}

func (p *prefixIterator) Close() {
	p.it.Close()
}

// entry copies keys and values out of badger's buffers, which are reused as the iterator advances
type entry struct {
	item *badger.Item
}

func (e entry) Key() []byte {
	return e.item.KeyCopy(nil)
}

func (e entry) Value() ([]byte, error) {
	return e.item.ValueCopy(nil)
}

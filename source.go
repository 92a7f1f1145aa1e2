package orderkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/autom8ter/orderkit/errors"
	"github.com/autom8ter/orderkit/kv"
	"github.com/segmentio/ksuid"
)

// RecordSource is anything that can be consumed as a lazy sequence of documents.
// Each call to Iterator starts an independent traversal; args parametrize it (ex: bind
// variables of a parametrized subquery). Ordering is a property of the concrete source.
type RecordSource interface {
	Iterator(ctx context.Context, args map[string]any) (Iterator, error)
}

// Iterator is a single pass, pull based cursor over documents. Documents are produced on
// demand by Next. Close releases the iterator's resources and may be called early.
type Iterator interface {
	// Next advances to the next document and returns false when there are none left or an error occurred
	Next() bool
	// Document returns the current document
	Document() *Document
	// Err returns the error that stopped the iteration, if any
	Err() error
	// Close releases the iterator
	Close()
}

// RecordWriter persists an updated document. Sources that own their storage implement it.
type RecordWriter interface {
	Write(ctx context.Context, doc *Document) error
}

// ForEachFunc is called for each document. Returning false stops the iteration.
type ForEachFunc func(doc *Document) (bool, error)

// ForEach iterates the source with the given args until fn returns false or the source is exhausted
func ForEach(ctx context.Context, source RecordSource, args map[string]any, fn ForEachFunc) error {
	iter, err := source.Iterator(ctx, args)
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.Next() {
		next, err := fn(iter.Document())
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
	}
	return iter.Err()
}

// SliceSource is a RecordSource over in-memory documents. Iterators yield the live documents
// (not copies) in slice order; args are equality bindings on document fields.
type SliceSource struct {
	documents Documents
}

// NewSliceSource creates a source over the documents
func NewSliceSource(documents ...*Document) *SliceSource {
	return &SliceSource{documents: documents}
}

// Iterator returns a lazy iterator over the documents matching args
func (s *SliceSource) Iterator(ctx context.Context, args map[string]any) (Iterator, error) {
	return &sliceIterator{ctx: ctx, documents: s.documents, args: args, pos: -1}, nil
}

type sliceIterator struct {
	ctx       context.Context
	documents Documents
	args      map[string]any
	pos       int
	err       error
}

func (s *sliceIterator) Next() bool {
	if s.err != nil {
		return false
	}
	for s.pos+1 < len(s.documents) {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
		s.pos++
		doc := s.documents[s.pos]
		if doc != nil && doc.Matches(s.args) {
			return true
		}
	}
	s.pos = len(s.documents)
	return false
}

func (s *sliceIterator) Document() *Document {
	if s.pos < 0 || s.pos >= len(s.documents) {
		return nil
	}
	return s.documents[s.pos]
}

func (s *sliceIterator) Err() error {
	return s.err
}

func (s *sliceIterator) Close() {
	s.pos = len(s.documents)
}

// KVSource is a RecordSource over the documents of a collection stored in a key value database.
// Documents are keyed by their primary key and iterated in ascending key order; values are decoded
// only as the iterator advances.
type KVSource struct {
	db         kv.DB
	collection string
	primaryKey string
}

// NewKVSource creates a source over the collection's documents. The primary key field defaults to _id.
func NewKVSource(db kv.DB, collection string, primaryKey string) *KVSource {
	if primaryKey == "" {
		primaryKey = "_id"
	}
	return &KVSource{db: db, collection: collection, primaryKey: primaryKey}
}

// Collection returns the source's collection
func (s *KVSource) Collection() string {
	return s.collection
}

func (s *KVSource) prefix() []byte {
	return []byte(fmt.Sprintf("%s/", s.collection))
}

func (s *KVSource) key(docID string) []byte {
	return []byte(fmt.Sprintf("%s/%s", s.collection, docID))
}

// ids generates strictly increasing ksuids. ksuid.New alone only orders ids to the second.
var ids = &idGenerator{}

type idGenerator struct {
	mu   sync.Mutex
	last ksuid.KSUID
}

func (g *idGenerator) next() ksuid.KSUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := ksuid.New()
	if ksuid.Compare(id, g.last) <= 0 {
		id = g.last.Next()
	}
	g.last = id
	return id
}

// Put stores the documents, assigning a ksuid primary key to documents that have none.
// Assigned keys increase with every call, so documents stored without a key iterate in insertion order.
func (s *KVSource) Put(ctx context.Context, docs ...*Document) error {
	batch := s.db.Batch()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if doc.GetString(s.primaryKey) == "" {
			if err := doc.Set(s.primaryKey, ids.next().String()); err != nil {
				return errors.Wrap(err, errors.Internal, "failed to set primary key")
			}
		}
		if err := batch.Set(s.key(doc.GetString(s.primaryKey)), doc.Bytes()); err != nil {
			return errors.Wrap(err, errors.Internal, "failed to batch set document")
		}
	}
	return errors.Wrap(batch.Flush(), errors.Internal, "failed to flush documents")
}

// Get returns the document with the given primary key or a NotFound error
func (s *KVSource) Get(ctx context.Context, docID string) (*Document, error) {
	var doc *Document
	err := s.db.Tx(false, func(tx kv.Tx) error {
		bits, err := tx.Get(s.key(docID))
		if err != nil {
			return err
		}
		if bits == nil {
			return errors.New(errors.NotFound, "%s/%s does not exist", s.collection, docID)
		}
		doc, err = NewDocumentFromBytes(bits)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Write persists the document under its primary key
func (s *KVSource) Write(ctx context.Context, doc *Document) error {
	docID := doc.GetString(s.primaryKey)
	if docID == "" {
		return errors.New(errors.Validation, "%s: document is missing primary key %s", s.collection, s.primaryKey)
	}
	return errors.Wrap(s.db.Tx(true, func(tx kv.Tx) error {
		return tx.Set(s.key(docID), doc.Bytes())
	}), errors.Internal, "failed to write %s/%s", s.collection, docID)
}

// Iterator opens a read transaction and returns a lazy iterator over the documents matching args.
// The transaction is released by Close.
func (s *KVSource) Iterator(ctx context.Context, args map[string]any) (Iterator, error) {
	tx := s.db.NewTx(false)
	iter := tx.NewIterator(kv.IterOpts{Prefix: s.prefix()})
	return &kvIterator{ctx: ctx, tx: tx, iter: iter, args: args}, nil
}

type kvIterator struct {
	ctx     context.Context
	tx      kv.Tx
	iter    kv.Iterator
	args    map[string]any
	current *Document
	started bool
	closed  bool
	err     error
}

func (k *kvIterator) Next() bool {
	if k.closed || k.err != nil {
		return false
	}
	if k.started {
		k.iter.Next()
	}
	k.started = true
	for ; k.iter.Valid(); k.iter.Next() {
		if err := k.ctx.Err(); err != nil {
			k.err = err
			break
		}
		bits, err := k.iter.Item().Value()
		if err != nil {
			k.err = errors.Wrap(err, errors.Internal, "failed to read document")
			break
		}
		doc, err := NewDocumentFromBytes(bits)
		if err != nil {
			k.err = errors.Wrap(err, errors.Internal, "failed to decode document")
			break
		}
		if doc.Matches(k.args) {
			k.current = doc
			return true
		}
	}
	k.current = nil
	return false
}

func (k *kvIterator) Document() *Document {
	return k.current
}

func (k *kvIterator) Err() error {
	return k.err
}

func (k *kvIterator) Close() {
	if k.closed {
		return
	}
	k.closed = true
	k.current = nil
	k.iter.Close()
	k.tx.Discard()
}

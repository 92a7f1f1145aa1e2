package orderkit

import (
	"strings"

	"github.com/autom8ter/orderkit/errors"
	"github.com/autom8ter/orderkit/util"
	"github.com/samber/lo"
)

// IndexDescriptor is the read-only view of an index used when planning an order by
type IndexDescriptor interface {
	// IndexName is the name reported in execution metrics
	IndexName() string
	// IndexFields are the indexed fields in key order
	IndexFields() []string
	// SupportsOrderedIteration reports whether the index can be walked in key order
	SupportsOrderedIteration() bool
}

// CompositeIndex is implemented by virtual indexes that are backed by other indexes.
// Metrics always report the constituent names instead of the virtual index's own name.
type CompositeIndex interface {
	ConstituentNames() []string
}

// Index is a database index used to optimize queries against a collection
type Index struct {
	// Name is the indexes unique name in the collection
	Name string `json:"name" validate:"required,min=1"`
	// Fields to index - order matters
	Fields []string `json:"fields" validate:"required,min=1"`
	// Unique indicates that it's a unique index which will enforce uniqueness
	Unique bool `json:"unique"`
	// Primary indicates that it's a primary index
	Primary bool `json:"primary"`
	// Ordered indicates that the index can be iterated in key order (ex: a btree or lsm index, not a hash index)
	Ordered bool `json:"ordered"`
}

// Validate validates the index
func (i Index) Validate() error {
	return errors.Wrap(util.ValidateStruct(&i), errors.Validation, "invalid index: %s", i.Name)
}

func (i Index) IndexName() string {
	return i.Name
}

func (i Index) IndexFields() []string {
	return i.Fields
}

func (i Index) SupportsOrderedIteration() bool {
	return i.Ordered
}

// ChainedIndex is a virtual index that traverses a chain of physical indexes, ex: following
// a relation through one index and then looking up the target field through another.
type ChainedIndex struct {
	// Chain is the ordered list of physical indexes; the last one indexes the target field
	Chain []Index `json:"chain" validate:"required,min=1,dive"`
}

// NewChainedIndex creates a chained index from the given physical indexes
func NewChainedIndex(chain ...Index) (*ChainedIndex, error) {
	c := &ChainedIndex{Chain: chain}
	if err := util.ValidateStruct(c); err != nil {
		return nil, errors.Wrap(err, errors.Validation, "invalid chained index")
	}
	return c, nil
}

// IndexName joins the constituent names. Metrics never report it.
func (c *ChainedIndex) IndexName() string {
	return strings.Join(c.ConstituentNames(), "->")
}

// IndexFields returns the fields of the target index
func (c *ChainedIndex) IndexFields() []string {
	if len(c.Chain) == 0 {
		return nil
	}
	return c.Chain[len(c.Chain)-1].Fields
}

// SupportsOrderedIteration is always false: traversal order follows the first index in the chain,
// not the target fields.
func (c *ChainedIndex) SupportsOrderedIteration() bool {
	return false
}

// ConstituentNames returns the names of the physical indexes in chain order
func (c *ChainedIndex) ConstituentNames() []string {
	return lo.Map(c.Chain, func(i Index, _ int) string {
		return i.Name
	})
}

package orderkit

import (
	"strings"
)

// CanSatisfyOrder reports whether iterating the index in key order already yields documents
// sorted by the given order by clause.
//
// Only the first min(len(fields), len(order)) positions are compared: each requested field must
// equal the index field at the same position (case-insensitive), and each requested direction must
// equal the direction of the first clause. Note that directions are compared against order[0], not
// against a per-field index direction; mixed direction clauses are never satisfied. An ordered
// index without fields compares zero positions and is reported as compatible.
func CanSatisfyOrder(index IndexDescriptor, order []OrderBy) bool {
	if index == nil || len(order) == 0 || !index.SupportsOrderedIteration() {
		return false
	}
	fields := index.IndexFields()
	n := len(order)
	if len(fields) < n {
		n = len(fields)
	}
	direction := order[0].Direction
	for i := 0; i < n; i++ {
		if order[i].Direction != direction {
			return false
		}
		if !strings.EqualFold(order[i].Field, fields[i]) {
			return false
		}
	}
	return true
}

// OrderPlan is the result of choosing an index for an order by clause
type OrderPlan struct {
	// Index is the chosen index, nil if the documents must be sorted after retrieval
	Index IndexDescriptor `json:"-"`
	// IndexName is the chosen index's name
	IndexName string `json:"indexName,omitempty"`
	// UsedIndex is true if an index was selected to avoid a sort pass
	UsedIndex bool `json:"usedIndex"`
	// FullySorted is true if the index covers every order by field (no residual sort needed)
	FullySorted bool `json:"fullySorted"`
	// MatchedFields are the order by fields covered by the index
	MatchedFields []string `json:"matchedFields"`
	// Reverse is true if the index must be walked in reverse key order
	Reverse bool `json:"reverse"`
}

// Optimizer selects the best index from a set of indexes for an order by clause
type Optimizer interface {
	// OptimizeOrder selects the index to use for the given order by clause
	OptimizeOrder(indexes []IndexDescriptor, order []OrderBy) OrderPlan
}

type defaultOptimizer struct{}

// OptimizeOrder picks the compatible index covering the most order by fields. Ties keep the
// first declared index.
func (o defaultOptimizer) OptimizeOrder(indexes []IndexDescriptor, order []OrderBy) OrderPlan {
	plan := OrderPlan{
		MatchedFields: []string{},
	}
	for _, index := range indexes {
		if index == nil || len(index.IndexFields()) == 0 {
			continue
		}
		if !CanSatisfyOrder(index, order) {
			continue
		}
		matched := len(order)
		if fields := len(index.IndexFields()); fields < matched {
			matched = fields
		}
		if plan.UsedIndex && matched <= len(plan.MatchedFields) {
			continue
		}
		plan.Index = index
		plan.IndexName = index.IndexName()
		plan.UsedIndex = true
		plan.FullySorted = matched == len(order)
		plan.Reverse = order[0].Direction == DESC
		plan.MatchedFields = make([]string, 0, matched)
		for _, o := range order[:matched] {
			plan.MatchedFields = append(plan.MatchedFields, o.Field)
		}
	}
	return plan
}

package orderkit

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/autom8ter/orderkit/errors"
	"github.com/samber/lo"
)

// Reserved execution metric keys. Explain tooling reads them verbatim.
const (
	// MetricIndexIsUsedInOrderBy (bool) an index was selected to avoid a sort pass
	MetricIndexIsUsedInOrderBy = "indexIsUsedInOrderBy"
	// MetricFullySortedByIndex (bool) the index fully satisfies the requested order
	MetricFullySortedByIndex = "fullySortedByIndex"
	// MetricInvolvedIndexes (StringSet) physical index names consulted
	MetricInvolvedIndexes = "involvedIndexes"
	// MetricOrderByElapsed (time.Duration) time attributed to order by handling
	MetricOrderByElapsed = "orderByElapsed"
)

// StringSet is a set of strings
type StringSet map[string]struct{}

// Add adds the values to the set
func (s StringSet) Add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Contains returns true if the value is in the set
func (s StringSet) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// Sorted returns the set's values in ascending order
func (s StringSet) Sorted() []string {
	values := lo.Keys(map[string]struct{}(s))
	sort.Strings(values)
	return values
}

// MarshalJSON encodes the set as a sorted json array
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// ExecutionMetrics holds the diagnostic values recorded while executing a single statement.
// It is not safe for concurrent use.
type ExecutionMetrics struct {
	values map[string]any
}

// NewExecutionMetrics creates an empty metrics map
func NewExecutionMetrics() *ExecutionMetrics {
	return &ExecutionMetrics{values: map[string]any{}}
}

// Set sets a metric, overwriting any previous value
func (m *ExecutionMetrics) Set(key string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}
	m.values[key] = value
}

// Get gets a metric if it exists
func (m *ExecutionMetrics) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Exists returns true if the metric has been recorded
func (m *ExecutionMetrics) Exists(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Del deletes a metric
func (m *ExecutionMetrics) Del(key string) {
	delete(m.values, key)
}

// Map returns a copy of the metrics
func (m *ExecutionMetrics) Map() map[string]any {
	return lo.Assign(map[string]any{}, m.values)
}

// GetBool returns a boolean metric. A value of another type is an internal error.
func (m *ExecutionMetrics) GetBool(key string) (bool, bool, error) {
	v, ok := m.values[key]
	if !ok {
		return false, false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, true, typeMismatch(key, "bool", v)
	}
	return b, true, nil
}

// GetDuration returns a duration metric. A value of another type is an internal error.
func (m *ExecutionMetrics) GetDuration(key string) (time.Duration, bool, error) {
	v, ok := m.values[key]
	if !ok {
		return 0, false, nil
	}
	d, isDuration := v.(time.Duration)
	if !isDuration {
		return 0, true, typeMismatch(key, "duration", v)
	}
	return d, true, nil
}

// GetStringSet returns a set metric. A value of another type is an internal error.
func (m *ExecutionMetrics) GetStringSet(key string) (StringSet, bool, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	s, isSet := v.(StringSet)
	if !isSet {
		return nil, true, typeMismatch(key, "set", v)
	}
	return s, true, nil
}

// MarshalJSON encodes the metrics as a json object. Durations are written in milliseconds.
func (m *ExecutionMetrics) MarshalJSON() ([]byte, error) {
	values := make(map[string]any, len(m.values))
	for k, v := range m.values {
		if d, ok := v.(time.Duration); ok {
			v = d.Milliseconds()
		}
		values[k] = v
	}
	return json.Marshal(values)
}

func typeMismatch(key string, expected string, got any) error {
	return errors.New(errors.Internal, "metric %s: expected %s, got %T", key, expected, got)
}

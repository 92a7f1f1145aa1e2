package orderkit

import (
	"strings"

	"github.com/autom8ter/orderkit/errors"
)

// OrderByDirection indicates whether results should be sorted in ascending or descending order
type OrderByDirection string

const (
	// ASC indicates ascending order
	ASC OrderByDirection = "ASC"
	// DESC indicates descending order
	DESC OrderByDirection = "DESC"
)

// ParseOrderByDirection parses asc/desc in any case
func ParseOrderByDirection(direction string) (OrderByDirection, error) {
	switch OrderByDirection(strings.ToUpper(direction)) {
	case ASC:
		return ASC, nil
	case DESC:
		return DESC, nil
	default:
		return "", errors.New(errors.Validation, "invalid order by direction: '%s'", direction)
	}
}

// UnmarshalJSON accepts asc/desc in any case
func (o *OrderByDirection) UnmarshalJSON(bytes []byte) error {
	direction, err := ParseOrderByDirection(strings.Trim(string(bytes), `"`))
	if err != nil {
		return err
	}
	*o = direction
	return nil
}

// OrderBy orders the result set by a given field in a given direction.
// The position of an OrderBy within a clause is its sort priority.
type OrderBy struct {
	// Field is the field to sort on
	Field string `json:"field" validate:"required"`
	// Direction is the sort direction
	Direction OrderByDirection `json:"direction" validate:"required,oneof=ASC DESC"`
}

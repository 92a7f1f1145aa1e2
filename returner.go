package orderkit

import (
	"strings"

	"github.com/autom8ter/orderkit/errors"
)

// ReturnMode selects what a mutating statement returns
type ReturnMode string

const (
	// ReturnCount returns the number of updated documents
	ReturnCount ReturnMode = "COUNT"
	// ReturnBefore returns the documents as they were before the update
	ReturnBefore ReturnMode = "BEFORE"
	// ReturnAfter returns the documents as they are after the update
	ReturnAfter ReturnMode = "AFTER"
)

// ParseReturnMode parses a return mode in any case. An empty string is COUNT.
func ParseReturnMode(mode string) (ReturnMode, error) {
	switch m := ReturnMode(strings.ToUpper(strings.TrimSpace(mode))); m {
	case "":
		return ReturnCount, nil
	case ReturnCount, ReturnBefore, ReturnAfter:
		return m, nil
	default:
		return "", errors.New(errors.Validation, "invalid return mode: '%s'", mode)
	}
}

// Projector evaluates a return expression against a captured document
type Projector interface {
	Project(doc *Document) (*Document, error)
}

// ProjectorFunc adapts a function to a Projector
type ProjectorFunc func(doc *Document) (*Document, error)

// Project calls fn(doc)
func (fn ProjectorFunc) Project(doc *Document) (*Document, error) {
	return fn(doc)
}

// SelectFields returns a projector that keeps only the given fields
func SelectFields(fields ...string) Projector {
	return ProjectorFunc(func(doc *Document) (*Document, error) {
		return doc.Select(fields...)
	})
}

// Result is the value returned by a mutating statement
type Result struct {
	// Mode is the return mode that produced the result
	Mode ReturnMode `json:"mode"`
	// Count is the number of updated documents, or captured documents for BEFORE and AFTER
	Count int `json:"count"`
	// Documents are the captured documents in visitation order (BEFORE and AFTER only)
	Documents Documents `json:"documents,omitempty"`
}

// Returner accumulates the return value of a mutating statement. The executor calls BeforeUpdate
// with each document's pre-image and AfterUpdate with its post-image; what is kept depends on the mode:
//
//	COUNT  counts AfterUpdate calls
//	BEFORE appends a deep copy of each BeforeUpdate document
//	AFTER  appends each AfterUpdate document as is
//
// A Returner belongs to one statement execution and is not safe for concurrent use.
type Returner struct {
	mode      ReturnMode
	projector Projector
	count     int
	documents Documents
}

// ReturnerOpt configures a Returner
type ReturnerOpt func(r *Returner)

// WithProjection applies the projector to every captured document
func WithProjection(projector Projector) ReturnerOpt {
	return func(r *Returner) {
		r.projector = projector
	}
}

// NewReturner creates a returner for the given mode
func NewReturner(mode ReturnMode, opts ...ReturnerOpt) (*Returner, error) {
	switch mode {
	case ReturnCount, ReturnBefore, ReturnAfter:
	default:
		return nil, errors.New(errors.Validation, "invalid return mode: '%s'", mode)
	}
	r := &Returner{mode: mode}
	for _, o := range opts {
		o(r)
	}
	r.Reset()
	return r, nil
}

// Mode returns the returner's mode
func (r *Returner) Mode() ReturnMode {
	return r.mode
}

// Reset clears the accumulated result
func (r *Returner) Reset() {
	r.count = 0
	r.documents = Documents{}
}

// BeforeUpdate is called with a document's state before it is updated
func (r *Returner) BeforeUpdate(doc *Document) error {
	switch r.mode {
	case ReturnBefore:
		if doc == nil {
			return errors.New(errors.Internal, "returner: nil document")
		}
		return r.capture(doc.Clone())
	case ReturnCount, ReturnAfter:
		return nil
	default:
		return errors.New(errors.Internal, "unsupported return mode: '%s'", r.mode)
	}
}

// AfterUpdate is called with a document's state after it is updated
func (r *Returner) AfterUpdate(doc *Document) error {
	switch r.mode {
	case ReturnCount:
		r.count++
		return nil
	case ReturnAfter:
		return r.capture(doc)
	case ReturnBefore:
		return nil
	default:
		return errors.New(errors.Internal, "unsupported return mode: '%s'", r.mode)
	}
}

// Result returns the accumulated result
func (r *Returner) Result() Result {
	switch r.mode {
	case ReturnCount:
		return Result{Mode: r.mode, Count: r.count}
	default:
		return Result{Mode: r.mode, Count: len(r.documents), Documents: r.documents}
	}
}

func (r *Returner) capture(doc *Document) error {
	if doc == nil {
		return errors.New(errors.Internal, "returner: nil document")
	}
	if r.projector != nil {
		projected, err := r.projector.Project(doc)
		if err != nil {
			return errors.Wrap(err, errors.Internal, "failed to project returned document")
		}
		doc = projected
	}
	r.documents = append(r.documents, doc)
	return nil
}

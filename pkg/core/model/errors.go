package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies planning failures so callers can decide how to present them
type ErrorKind string

const (
	// KindMissingInput: machine list or plan list empty; the run is aborted
	KindMissingInput ErrorKind = "MissingInput"

	// KindInvalidCapacity: machine throughput <= 0; the affected plan line is skipped
	KindInvalidCapacity ErrorKind = "InvalidCapacity"

	// KindInvalidBulkFormat: malformed tabular import; nothing is imported
	KindInvalidBulkFormat ErrorKind = "InvalidBulkFormat"

	// KindUnknownMachine: a plan line references a machine that does not exist
	KindUnknownMachine ErrorKind = "UnknownMachine"

	// KindInvalidInput: a record failed validation at construction
	KindInvalidInput ErrorKind = "InvalidInput"

	// KindInternal: unanticipated failure caught at the run boundary
	KindInternal ErrorKind = "Internal"
)

// PlanError is the structured error returned by the planning core
type PlanError struct {
	Kind    ErrorKind
	Machine string
	Product string
	Detail  string
	Err     error

	// Stack is set for KindInternal failures recovered from a panic
	Stack string
}

func (e *PlanError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Machine != "" {
		fmt.Fprintf(&b, " (machine %q", e.Machine)
		if e.Product != "" {
			fmt.Fprintf(&b, ", product %q", e.Product)
		}
		b.WriteString(")")
	} else if e.Product != "" {
		fmt.Fprintf(&b, " (product %q)", e.Product)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first PlanError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var planErr *PlanError
	if errors.As(err, &planErr) {
		return planErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a PlanError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

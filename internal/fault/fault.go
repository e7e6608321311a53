// Package fault classifies conversion errors so that a job failure can be
// reported as structured detail instead of raw text.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the error category of a failed operation.
type Kind string

const (
	// KindInput covers missing or corrupt source files and unparsable timestamps.
	KindInput Kind = "input"
	// KindIO covers directory creation, write and delete failures.
	KindIO Kind = "io"
	// KindFormat covers frame or video payload size mismatches.
	KindFormat Kind = "format"
	// KindConfig covers batch-level refusals (empty batch, no output dir, busy).
	KindConfig Kind = "config"
)

// Error is an error tagged with its Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Input(op string, err error) error  { return newError(KindInput, op, err) }
func IO(op string, err error) error     { return newError(KindIO, op, err) }
func Format(op string, err error) error { return newError(KindFormat, op, err) }
func Config(op string, err error) error { return newError(KindConfig, op, err) }

// KindOf returns the Kind of the first *Error in err's chain.
// Untagged errors are treated as IO failures.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindIO
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

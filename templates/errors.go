package templates

import (
	"errors"
	"fmt"
)

// ErrArityMismatch marks a template invoked with the wrong operand count.
// It signals a defect in the caller, never bad input data.
var ErrArityMismatch = errors.New("template arity mismatch")

// ArityMismatchError reports which template was called with how many operands.
type ArityMismatchError struct {
	Kind Kind
	Want int
	Got  int
}

func (e *ArityMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s takes %d operand(s), got %d", ErrArityMismatch.Error(), e.Kind, e.Want, e.Got)
}

func (e *ArityMismatchError) Unwrap() error { return ErrArityMismatch }

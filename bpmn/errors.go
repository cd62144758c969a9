package bpmn

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrMalformedInput indicates a document that cannot be decoded into
	// well-formed elements and flows.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDanglingReference indicates a flow whose source or target does not exist.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrNoEntryPoint indicates a process without a start event.
	ErrNoEntryPoint = errors.New("no entry point")
)

// ParseError is returned for any diagram that cannot become a Graph.
// It unwraps to the sentinel given by Kind.
type ParseError struct {
	Kind error  // one of the sentinel errors above
	ID   string // offending element or flow id, if any
	Msg  string
	Err  error // optional underlying decoder error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	kind := e.Kind
	if kind == nil {
		kind = ErrMalformedInput
	}
	msg := kind.Error()
	if e.ID != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.ID)
	}
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	kind := e.Kind
	if kind == nil {
		kind = ErrMalformedInput
	}
	if e.Err != nil {
		return []error{kind, e.Err}
	}
	return []error{kind}
}

func malformed(id, msg string, err error) *ParseError {
	return &ParseError{Kind: ErrMalformedInput, ID: id, Msg: msg, Err: err}
}

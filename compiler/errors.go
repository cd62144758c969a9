package compiler

import "errors"

// ErrInternal marks a compiler defect, such as a relation built with the
// wrong number of operands for its template. It never arises from a valid
// graph and is distinct from the bpmn parse errors.
var ErrInternal = errors.New("internal compiler error")

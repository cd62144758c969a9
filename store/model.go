package store

import (
	"time"

	"github.com/liamcoop/bpmnconstraints/compiler"
)

// Options records the flags a model was compiled with.
type Options struct {
	Transitivity      bool   `json:"transitivity"`
	SkipNamedGateways bool   `json:"skip_named_gateways"`
	Filter            string `json:"filter,omitempty"`
}

// Model is the compiled constraint set of one diagram.
type Model struct {
	ID          string                        `json:"id"`
	Name        string                        `json:"name"`
	Digest      string                        `json:"digest"` // hex SHA-256 of the diagram bytes
	Options     Options                       `json:"options"`
	Constraints []compiler.CompiledConstraint `json:"constraints"`
	CreatedAt   time.Time                     `json:"created_at"`
}

// Strings returns the constraints of m in format f, in output order.
func (m *Model) Strings(f compiler.Format) []string {
	return compiler.Texts(m.Constraints, f)
}

// clone copies m deeply enough that callers cannot alter stored state.
func (m *Model) clone() *Model {
	c := *m
	c.Constraints = make([]compiler.CompiledConstraint, len(m.Constraints))
	for i, k := range m.Constraints {
		k.Activities = append([]string(nil), k.Activities...)
		c.Constraints[i] = k
	}
	return &c
}

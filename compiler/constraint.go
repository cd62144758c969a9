package compiler

import (
	"fmt"
	"strings"

	"github.com/liamcoop/bpmnconstraints/ltlf"
	"github.com/liamcoop/bpmnconstraints/templates"
)

// Relation is a behavioral fact between one or two activities. Both output
// forms of a constraint are derived from it.
type Relation struct {
	Kind       templates.Kind
	Activities []string
}

// Descriptor is the DECLARE form of r with default empty conditions.
func (r Relation) Descriptor() templates.Descriptor {
	return templates.NewDescriptor(r.Kind, r.Activities...)
}

// Formula is the LTLf form of r.
func (r Relation) Formula() (ltlf.Formula, error) {
	return templates.Render(r.Kind, r.Activities...)
}

func (r Relation) key() string {
	return r.Kind.String() + "\x00" + strings.Join(r.Activities, "\x00")
}

// CompiledConstraint is one output record.
type CompiledConstraint struct {
	Kind       templates.Kind `json:"template"`
	Activities []string       `json:"activities"`
	Declare    string         `json:"DECLARE"`
	LTLf       string         `json:"LTLf"`
}

// NewConstraint renders a relation in both forms. An arity mismatch is
// reported as ErrInternal.
func NewConstraint(kind templates.Kind, activities ...string) (CompiledConstraint, error) {
	r := Relation{Kind: kind, Activities: activities}
	f, err := r.Formula()
	if err != nil {
		return CompiledConstraint{}, fmt.Errorf("%w: rendering %s%v: %w", ErrInternal, kind, activities, err)
	}
	return CompiledConstraint{
		Kind:       kind,
		Activities: append([]string(nil), activities...),
		Declare:    r.Descriptor().String(),
		LTLf:       ltlf.Render(f),
	}, nil
}

// Format selects one of the two textual forms of a constraint.
type Format string

const (
	FormatDeclare Format = "DECLARE"
	FormatLTLf    Format = "LTLf"
)

// ParseFormat accepts either format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DECLARE":
		return FormatDeclare, nil
	case "LTLF":
		return FormatLTLf, nil
	}
	return "", fmt.Errorf("unknown constraint format %q (want DECLARE or LTLf)", s)
}

// Text returns c in format f.
func (c CompiledConstraint) Text(f Format) string {
	if f == FormatLTLf {
		return c.LTLf
	}
	return c.Declare
}

// Texts returns every constraint of cs in format f.
func Texts(cs []CompiledConstraint, f Format) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text(f)
	}
	return out
}

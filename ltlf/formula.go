package ltlf

import "strings"

// Formula is an LTLf formula node.
type Formula interface {
	// String returns the canonical serialization of the formula.
	String() string

	write(b *strings.Builder)
}

// Atom is an atomic proposition. Name must already be a normalized
// identifier; see Normalize.
type Atom struct {
	Name string
}

// True is the propositional constant true.
type True struct{}

// Not: ¬φ
type Not struct {
	F Formula
}

// And: (φ ∧ ψ)
type And struct {
	Left, Right Formula
}

// Or: (φ ∨ ψ)
type Or struct {
	Left, Right Formula
}

// Implies: (φ → ψ)
type Implies struct {
	Left, Right Formula
}

// Next: X φ, φ holds at the next position (a next position must exist).
type Next struct {
	F Formula
}

// Eventually: F φ, φ holds now or at some later position.
type Eventually struct {
	F Formula
}

// Always: G φ, φ holds now and at every later position.
type Always struct {
	F Formula
}

// NewAtom returns the atomic proposition for an activity label.
func NewAtom(label string) Atom {
	return Atom{Name: Normalize(label)}
}

// Render serializes f in canonical form. A nil formula renders as "".
func Render(f Formula) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	f.write(&b)
	return b.String()
}

func (a Atom) String() string       { return a.Name }
func (t True) String() string       { return "true" }
func (n Not) String() string        { return Render(n) }
func (a And) String() string        { return Render(a) }
func (o Or) String() string         { return Render(o) }
func (i Implies) String() string    { return Render(i) }
func (n Next) String() string       { return Render(n) }
func (e Eventually) String() string { return Render(e) }
func (a Always) String() string     { return Render(a) }

func (a Atom) write(b *strings.Builder) { b.WriteString(a.Name) }
func (t True) write(b *strings.Builder) { b.WriteString("true") }

func (n Not) write(b *strings.Builder)        { unary(b, "~", n.F) }
func (n Next) write(b *strings.Builder)       { unary(b, "X", n.F) }
func (e Eventually) write(b *strings.Builder) { unary(b, "F", e.F) }
func (a Always) write(b *strings.Builder)     { unary(b, "G", a.F) }

func (a And) write(b *strings.Builder)     { binary(b, a.Left, " & ", a.Right) }
func (o Or) write(b *strings.Builder)      { binary(b, o.Left, " | ", o.Right) }
func (i Implies) write(b *strings.Builder) { binary(b, i.Left, " -> ", i.Right) }

func unary(b *strings.Builder, op string, f Formula) {
	b.WriteString(op)
	b.WriteByte('(')
	f.write(b)
	b.WriteByte(')')
}

func binary(b *strings.Builder, l Formula, op string, r Formula) {
	b.WriteByte('(')
	l.write(b)
	b.WriteString(op)
	r.write(b)
	b.WriteByte(')')
}

// Atoms returns the distinct atom names of f in first-occurrence order.
func Atoms(f Formula) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(Formula)
	walk = func(f Formula) {
		switch n := f.(type) {
		case Atom:
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		case Not:
			walk(n.F)
		case Next:
			walk(n.F)
		case Eventually:
			walk(n.F)
		case Always:
			walk(n.F)
		case And:
			walk(n.Left)
			walk(n.Right)
		case Or:
			walk(n.Left)
			walk(n.Right)
		case Implies:
			walk(n.Left)
			walk(n.Right)
		}
	}
	if f != nil {
		walk(f)
	}
	return out
}

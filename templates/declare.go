package templates

import (
	"fmt"
	"strconv"
	"strings"
)

// Descriptor is a DECLARE constraint: template, optional cardinality,
// activity operands and side-conditions.
type Descriptor struct {
	Kind        Kind
	Cardinality int
	Activities  []string
	Conditions  []string
}

// NewDescriptor returns a descriptor with the default empty conditions:
// activation and time for unary templates, plus correlation for binary ones.
func NewDescriptor(kind Kind, activities ...string) Descriptor {
	return Descriptor{
		Kind:       kind,
		Activities: activities,
		Conditions: make([]string, kind.Arity()+1),
	}
}

// String formats the descriptor as
//
//	Name[Cardinality][a1, a2] |c1 |c2 ...
//
// Cardinality is written only for templates that support it.
func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.Kind.DeclareName())
	if d.Kind.SupportsCardinality() {
		b.WriteString(strconv.Itoa(d.Cardinality))
	}
	b.WriteByte('[')
	b.WriteString(strings.Join(d.Activities, ", "))
	b.WriteString("] |")
	b.WriteString(strings.Join(d.Conditions, " |"))
	return b.String()
}

// ParseDescriptor reads a descriptor produced by Descriptor.String.
// Cardinality digits directly after the name are accepted for any kind.
func ParseDescriptor(s string) (Descriptor, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return Descriptor{}, fmt.Errorf("malformed descriptor %q: missing activity list", s)
	}
	closing := strings.IndexByte(s[open:], ']') + open
	if closing < open {
		return Descriptor{}, fmt.Errorf("malformed descriptor %q: missing activity list", s)
	}

	name := strings.TrimSpace(s[:open])
	card := 0
	if i := strings.IndexFunc(name, func(r rune) bool { return r >= '0' && r <= '9' }); i > 0 {
		n, err := strconv.Atoi(name[i:])
		if err != nil {
			return Descriptor{}, fmt.Errorf("malformed descriptor %q: bad cardinality: %w", s, err)
		}
		name, card = name[:i], n
	}

	kind, err := ParseKind(name)
	if err != nil {
		return Descriptor{}, fmt.Errorf("malformed descriptor %q: %w", s, err)
	}

	var activities []string
	if inner := strings.TrimSpace(s[open+1 : closing]); inner != "" {
		for _, a := range strings.Split(inner, ",") {
			activities = append(activities, strings.TrimSpace(a))
		}
	}
	if len(activities) != kind.Arity() {
		return Descriptor{}, &ArityMismatchError{Kind: kind, Want: kind.Arity(), Got: len(activities)}
	}

	var conditions []string
	rest := strings.TrimSpace(s[closing+1:])
	if strings.HasPrefix(rest, "|") && len(rest) > 1 {
		for _, c := range strings.Split(rest[1:], "|") {
			conditions = append(conditions, strings.TrimSpace(c))
		}
	}

	return Descriptor{Kind: kind, Cardinality: card, Activities: activities, Conditions: conditions}, nil
}

package templates

import "fmt"

// Kind identifies one constraint template of the fixed catalog.
type Kind int

const (
	Init Kind = iota
	End
	Precedence
	AlternatePrecedence
	Response
	AlternateResponse
	ChainResponse
	Succession
	AlternateSuccession
	ChainSuccession
	Choice
	ExclusiveChoice
	CoExistence

	numKinds
)

var kindNames = [numKinds]string{
	Init:                "init",
	End:                 "end",
	Precedence:          "precedence",
	AlternatePrecedence: "alternate_precedence",
	Response:            "response",
	AlternateResponse:   "alternate_response",
	ChainResponse:       "chain_response",
	Succession:          "succession",
	AlternateSuccession: "alternate_succession",
	ChainSuccession:     "chain_succession",
	Choice:              "choice",
	ExclusiveChoice:     "exclusive_choice",
	CoExistence:         "co_existence",
}

var declareNames = [numKinds]string{
	Init:                "Init",
	End:                 "End",
	Precedence:          "Precedence",
	AlternatePrecedence: "Alternate Precedence",
	Response:            "Response",
	AlternateResponse:   "Alternate Response",
	ChainResponse:       "Chain Response",
	Succession:          "Succession",
	AlternateSuccession: "Alternate Succession",
	ChainSuccession:     "Chain Succession",
	Choice:              "Choice",
	ExclusiveChoice:     "Exclusive Choice",
	CoExistence:         "Co-Existence",
}

// Kinds returns every catalog kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k belongs to the catalog.
func (k Kind) Valid() bool { return k >= 0 && k < numKinds }

// String returns the snake_case template name, e.g. "chain_succession".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// DeclareName returns the DECLARE template name, e.g. "Chain Succession".
func (k Kind) DeclareName() string {
	if !k.Valid() {
		return k.String()
	}
	return declareNames[k]
}

// Arity is the number of activity operands the template takes.
func (k Kind) Arity() int {
	switch k {
	case Init, End:
		return 1
	default:
		return 2
	}
}

// SupportsCardinality reports whether the DECLARE name carries a count
// (as in Existence2). No template of the current catalog does.
func (k Kind) SupportsCardinality() bool {
	return false
}

// IsChain reports whether the template demands immediate succession.
func (k Kind) IsChain() bool {
	return k == ChainResponse || k == ChainSuccession
}

// ParseKind resolves either the snake_case or the DECLARE name.
func ParseKind(name string) (Kind, error) {
	for k := Kind(0); k < numKinds; k++ {
		if name == kindNames[k] || name == declareNames[k] {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown template %q", name)
}

// MarshalText encodes the kind by its snake_case name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid template kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText accepts either name form.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

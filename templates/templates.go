// Package templates is the DECLARE template catalog. Each template maps
// one or two activity labels to an LTLf formula, and every constraint can
// be rendered both as a DECLARE descriptor and as an LTLf string.
package templates

import (
	"fmt"

	"github.com/liamcoop/bpmnconstraints/ltlf"
)

// Render builds the formula of kind over operands. Labels are normalized
// into atom names.
func Render(kind Kind, operands ...string) (ltlf.Formula, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown template kind %d", int(kind))
	}
	if len(operands) != kind.Arity() {
		return nil, &ArityMismatchError{Kind: kind, Want: kind.Arity(), Got: len(operands)}
	}

	a := operands[0]
	var b string
	if len(operands) > 1 {
		b = operands[1]
	}

	switch kind {
	case Init:
		return InitFormula(a), nil
	case End:
		return EndFormula(a), nil
	case Precedence:
		return PrecedenceFormula(a, b), nil
	case AlternatePrecedence:
		return AlternatePrecedenceFormula(a, b), nil
	case Response:
		return ResponseFormula(a, b), nil
	case AlternateResponse:
		return AlternateResponseFormula(a, b), nil
	case ChainResponse:
		return ChainResponseFormula(a, b), nil
	case Succession:
		return SuccessionFormula(a, b), nil
	case AlternateSuccession:
		return AlternateSuccessionFormula(a, b), nil
	case ChainSuccession:
		return ChainSuccessionFormula(a, b), nil
	case Choice:
		return ChoiceFormula(a, b), nil
	case ExclusiveChoice:
		return ExclusiveChoiceFormula(a, b), nil
	case CoExistence:
		return CoExistenceFormula(a, b), nil
	}
	panic("templates: unhandled kind " + kind.String())
}

// LTLf renders kind over operands straight to its canonical string.
func LTLf(kind Kind, operands ...string) (string, error) {
	f, err := Render(kind, operands...)
	if err != nil {
		return "", err
	}
	return ltlf.Render(f), nil
}

// InitFormula: a is the first event.
func InitFormula(a string) ltlf.Formula {
	return ltlf.NewAtom(a)
}

// EndFormula: a is the last event.
func EndFormula(a string) ltlf.Formula {
	return ltlf.Eventually{F: ltlf.And{
		Left:  ltlf.NewAtom(a),
		Right: ltlf.Next{F: ltlf.Not{F: ltlf.True{}}},
	}}
}

// PrecedenceFormula: s only occurs if p occurred at or before it, or p never occurs.
func PrecedenceFormula(p, s string) ltlf.Formula {
	pre, suc := ltlf.NewAtom(p), ltlf.NewAtom(s)
	return ltlf.Or{
		Left: ltlf.Or{
			Left:  ltlf.Eventually{F: suc},
			Right: ltlf.And{Left: ltlf.Not{F: pre}, Right: suc},
		},
		Right: ltlf.Always{F: ltlf.Not{F: pre}},
	}
}

// AlternatePrecedenceFormula: between two occurrences of s, p occurs at least once.
func AlternatePrecedenceFormula(p, s string) ltlf.Formula {
	pre, suc := ltlf.NewAtom(p), ltlf.NewAtom(s)
	return ltlf.Always{F: ltlf.Implies{
		Left: suc,
		Right: ltlf.And{
			Left: ltlf.Next{F: ltlf.Not{F: suc}},
			Right: ltlf.Or{
				Left:  ltlf.Eventually{F: pre},
				Right: ltlf.And{Left: ltlf.Not{F: suc}, Right: pre},
			},
		},
	}}
}

// ResponseFormula: every p is eventually followed by s.
func ResponseFormula(p, s string) ltlf.Formula {
	return ltlf.Always{F: ltlf.Implies{
		Left:  ltlf.NewAtom(p),
		Right: ltlf.Eventually{F: ltlf.NewAtom(s)},
	}}
}

// AlternateResponseFormula: after p, s occurs before the next p.
func AlternateResponseFormula(p, s string) ltlf.Formula {
	pre, suc := ltlf.NewAtom(p), ltlf.NewAtom(s)
	return ltlf.Always{F: ltlf.Implies{
		Left: pre,
		Right: ltlf.Next{F: ltlf.Or{
			Left:  ltlf.Eventually{F: suc},
			Right: ltlf.And{Left: ltlf.Not{F: pre}, Right: suc},
		}},
	}}
}

// ChainResponseFormula: s immediately follows every p.
func ChainResponseFormula(p, s string) ltlf.Formula {
	return ltlf.Always{F: ltlf.Implies{
		Left:  ltlf.NewAtom(p),
		Right: ltlf.Next{F: ltlf.NewAtom(s)},
	}}
}

// SuccessionFormula = response ∧ precedence.
func SuccessionFormula(p, s string) ltlf.Formula {
	return ltlf.And{Left: ResponseFormula(p, s), Right: PrecedenceFormula(p, s)}
}

// AlternateSuccessionFormula = alternate response ∧ alternate precedence.
func AlternateSuccessionFormula(p, s string) ltlf.Formula {
	return ltlf.And{Left: AlternateResponseFormula(p, s), Right: AlternatePrecedenceFormula(p, s)}
}

// ChainSuccessionFormula = chain response ∧ precedence.
func ChainSuccessionFormula(p, s string) ltlf.Formula {
	return ltlf.And{Left: ChainResponseFormula(p, s), Right: PrecedenceFormula(p, s)}
}

// ChoiceFormula: at least one of x and y occurs.
func ChoiceFormula(x, y string) ltlf.Formula {
	return ltlf.Or{
		Left:  ltlf.Eventually{F: ltlf.NewAtom(x)},
		Right: ltlf.Eventually{F: ltlf.NewAtom(y)},
	}
}

// ExclusiveChoiceFormula: exactly one of x and y occurs.
func ExclusiveChoiceFormula(x, y string) ltlf.Formula {
	return ltlf.And{
		Left:  ChoiceFormula(x, y),
		Right: ltlf.Not{F: CoExistenceFormula(x, y)},
	}
}

// CoExistenceFormula: both x and y occur.
func CoExistenceFormula(x, y string) ltlf.Formula {
	return ltlf.And{
		Left:  ltlf.Eventually{F: ltlf.NewAtom(x)},
		Right: ltlf.Eventually{F: ltlf.NewAtom(y)},
	}
}

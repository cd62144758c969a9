// Package ltlftest evaluates formulas over small finite traces so tests can
// compare formulas semantically. A trace position holds exactly one atom,
// matching the one-event-per-position reading of DECLARE logs.
package ltlftest

import "github.com/liamcoop/bpmnconstraints/ltlf"

// Trace is a finite sequence of atom names.
type Trace []string

// Holds reports whether f holds at position 0 of a non-empty trace.
func Holds(f ltlf.Formula, t Trace) bool {
	if len(t) == 0 {
		return false
	}
	return holdsAt(f, t, 0)
}

func holdsAt(f ltlf.Formula, t Trace, i int) bool {
	switch n := f.(type) {
	case ltlf.Atom:
		return t[i] == n.Name
	case ltlf.True:
		return true
	case ltlf.Not:
		return !holdsAt(n.F, t, i)
	case ltlf.And:
		return holdsAt(n.Left, t, i) && holdsAt(n.Right, t, i)
	case ltlf.Or:
		return holdsAt(n.Left, t, i) || holdsAt(n.Right, t, i)
	case ltlf.Implies:
		return !holdsAt(n.Left, t, i) || holdsAt(n.Right, t, i)
	case ltlf.Next:
		return i+1 < len(t) && holdsAt(n.F, t, i+1)
	case ltlf.Eventually:
		for j := i; j < len(t); j++ {
			if holdsAt(n.F, t, j) {
				return true
			}
		}
		return false
	case ltlf.Always:
		for j := i; j < len(t); j++ {
			if !holdsAt(n.F, t, j) {
				return false
			}
		}
		return true
	default:
		panic("ltlftest: unknown formula node")
	}
}

// Traces enumerates every trace of length 1..maxLen over alphabet.
func Traces(alphabet []string, maxLen int) []Trace {
	var out []Trace
	var build func(prefix Trace)
	build = func(prefix Trace) {
		if len(prefix) > 0 {
			out = append(out, append(Trace(nil), prefix...))
		}
		if len(prefix) == maxLen {
			return
		}
		for _, a := range alphabet {
			build(append(prefix, a))
		}
	}
	build(nil)
	return out
}

// Equivalent checks f and g agree on every trace up to maxLen over the
// atoms of both formulas plus one fresh atom. It returns a distinguishing
// trace when they differ.
func Equivalent(f, g ltlf.Formula, maxLen int) (bool, Trace) {
	alphabet := ltlf.Atoms(ltlf.And{Left: f, Right: g})
	alphabet = append(alphabet, "__other")
	for _, t := range Traces(alphabet, maxLen) {
		if Holds(f, t) != Holds(g, t) {
			return false, t
		}
	}
	return true, nil
}

// Package ltlf is a minimal linear temporal logic over finite traces.
//
// It provides the formula tree used to express DECLARE templates and a
// deterministic serializer. Every node is an immutable value; formulas may
// share subtrees freely.
//
// Canonical form:
//
//	Atom         name
//	True         true
//	Not          ~(f)
//	And          (l & r)
//	Or           (l | r)
//	Implies      (l -> r)
//	Next         X(f)
//	Eventually   F(f)
//	Always       G(f)
package ltlf

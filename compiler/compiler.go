// Package compiler extracts behavioral relations between the activities of
// a process graph and renders each one as a DECLARE descriptor and an LTLf
// formula.
//
// Relations come from three places. Ordered pairs of adjacent activities
// (no other activity in between) are classified by the gateways on the
// paths joining them: response when the target always follows, precedence
// when the target can only run after the source, chain variants when
// nothing can come in between, and alternate variants when both activities
// lie on a loop. The branches of every split give choice, exclusive choice
// or co-existence relations depending on the gateway kind. Finally init and
// end are emitted for activities every trace starts or finishes with.
//
// With transitivity enabled, response and precedence facts are closed over
// chains of adjacent pairs and the implied relations are added. Chain and
// alternate templates are never derived that way.
//
// Output order is deterministic: elements are visited breadth-first from
// the start events in document order.
package compiler

import (
	"fmt"

	"github.com/liamcoop/bpmnconstraints/bpmn"
	"github.com/liamcoop/bpmnconstraints/templates"
)

// Compile extracts the relations of g. Each call is independent and g is
// only read, so graphs may be compiled concurrently.
func Compile(g *bpmn.Graph, opts Options) ([]CompiledConstraint, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInternal)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	an := newAnalysis(g, opts)
	rels := an.relations()

	out := make([]CompiledConstraint, 0, len(rels))
	for _, r := range rels {
		c, err := NewConstraint(r.Kind, r.Activities...)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Relations is Compile without rendering.
func Relations(g *bpmn.Graph, opts Options) ([]Relation, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInternal)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return newAnalysis(g, opts).relations(), nil
}

// facts is what the graph shows about an ordered pair of activities.
type facts struct {
	chain         bool
	response      bool
	precedence    bool
	altResponse   bool
	altPrecedence bool
}

func (f facts) holds(k templates.Kind) bool {
	switch k {
	case templates.ChainSuccession:
		return f.chain && f.precedence
	case templates.AlternateSuccession:
		return f.altResponse && f.altPrecedence
	case templates.Succession:
		return f.response && f.precedence
	case templates.ChainResponse:
		return f.chain
	case templates.AlternateResponse:
		return f.altResponse
	case templates.Response:
		return f.response
	case templates.AlternatePrecedence:
		return f.altPrecedence
	case templates.Precedence:
		return f.precedence
	}
	return false
}

type pair struct{ a, b int }

type analysis struct {
	g        *bpmn.Graph
	opts     Options
	order    PrecedenceOrder
	activity []bool

	fwd   map[int]frontier
	reach map[int][]bool
	par   []bool

	out  []Relation
	seen map[string]bool

	// direct ordering facts, for the transitive closure
	adjacent map[pair]bool
	resp     map[int][]int
	prec     map[int][]int
}

func newAnalysis(g *bpmn.Graph, opts Options) *analysis {
	an := &analysis{
		g:        g,
		opts:     opts,
		order:    opts.order(),
		activity: make([]bool, g.Len()),
		fwd:      make(map[int]frontier),
		reach:    make(map[int][]bool),
		seen:     make(map[string]bool),
		adjacent: make(map[pair]bool),
		resp:     make(map[int][]int),
		prec:     make(map[int][]int),
	}
	for i := 0; i < g.Len(); i++ {
		an.activity[i] = an.isActivity(g.Element(i))
	}
	return an
}

// isActivity reports whether el shows up in traces.
func (an *analysis) isActivity(el bpmn.Element) bool {
	if el.Label == "" {
		return false
	}
	switch el.Kind {
	case bpmn.Task, bpmn.IntermediateEvent:
		return true
	case bpmn.ExclusiveGateway, bpmn.ParallelGateway, bpmn.InclusiveGateway:
		return !an.opts.SkipNamedGateways
	}
	return false
}

func (an *analysis) label(i int) string { return an.g.Element(i).Label }

func (an *analysis) emit(kind templates.Kind, nodes ...int) {
	acts := make([]string, len(nodes))
	for i, n := range nodes {
		acts[i] = an.label(n)
	}
	r := Relation{Kind: kind, Activities: acts}
	if an.seen[r.key()] {
		return
	}
	an.seen[r.key()] = true
	an.out = append(an.out, r)
}

// visitOrder lists every element reachable from a start event,
// breadth-first with start events and flows in document order.
func (an *analysis) visitOrder() []int {
	seen := make([]bool, an.g.Len())
	var order, queue []int
	for _, s := range an.g.Starts() {
		seen[s] = true
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for _, w := range an.g.Successors(v) {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return order
}

func (an *analysis) relations() []Relation {
	order := an.visitOrder()
	first := an.initial()
	last := an.final(order)

	for _, v := range order {
		if an.activity[v] {
			if v == first {
				an.emit(templates.Init, v)
			}
			an.ordering(v)
		}
		an.branches(v)
		if an.activity[v] && v == last {
			an.emit(templates.End, v)
		}
	}

	if an.opts.Transitivity {
		an.closure(order)
	}
	return an.out
}

// ordering emits one relation per adjacent successor of activity a.
func (an *analysis) ordering(a int) {
	fr := an.forward(a)
	for _, b := range fr.nodes() {
		if b == a || an.label(b) == an.label(a) {
			continue
		}
		f := an.pairFacts(a, b, fr)
		an.adjacent[pair{a, b}] = true
		if f.response {
			an.resp[a] = append(an.resp[a], b)
		}
		if f.precedence {
			an.prec[a] = append(an.prec[a], b)
		}
		if k, ok := an.pick(f); ok {
			an.emit(k, a, b)
		}
	}
}

func (an *analysis) pairFacts(a, b int, fr frontier) facts {
	var f facts
	for _, h := range fr.hits {
		if h.node != b {
			continue
		}
		if h.via&^joinXOR == 0 {
			f.chain = true
		}
		if h.via&(splitXOR|splitOR) == 0 {
			f.response = true
		}
	}

	// another branch may interleave
	if par := an.concurrent(); par[a] || par[b] {
		f.chain = false
	}

	// b can only run once a has: b is live, but starved of tokens when a
	// never fires.
	if an.tokens(-1)[b] && !an.tokens(a)[b] {
		f.precedence = true
	}

	f.altResponse = f.response && an.reaches(a, a, -1) && !an.reaches(a, a, b)
	f.altPrecedence = f.precedence && an.reaches(b, b, -1) && !an.reaches(b, b, a)
	return f
}

func (an *analysis) pick(f facts) (templates.Kind, bool) {
	for _, k := range an.order {
		if f.holds(k) {
			return k, true
		}
	}
	return 0, false
}

// branches emits pairwise relations between the branch targets of split v.
func (an *analysis) branches(v int) {
	split := an.splitOf(v)
	if split == 0 {
		return
	}

	var targets []int
	complete := true
	for _, n := range an.g.Successors(v) {
		t, ok := an.branchTarget(n)
		if !ok {
			complete = false
			continue
		}
		dup := false
		for _, u := range targets {
			dup = dup || u == t
		}
		if !dup {
			targets = append(targets, t)
		}
	}

	var kind templates.Kind
	switch split {
	case splitXOR:
		kind = templates.ExclusiveChoice
	case splitOR:
		kind = templates.Choice
	default:
		kind = templates.CoExistence
	}
	// A branch without an activity makes every alternative optional.
	if kind != templates.CoExistence && !complete {
		return
	}

	for i := 0; i < len(targets); i++ {
		for j := i + 1; j < len(targets); j++ {
			if an.label(targets[i]) == an.label(targets[j]) {
				continue
			}
			an.emit(kind, targets[i], targets[j])
		}
	}
}

// initial returns the activity every trace starts with, or -1. It needs a
// single start event.
func (an *analysis) initial() int {
	starts := an.g.Starts()
	if len(starts) != 1 {
		return -1
	}
	fr := an.walk(starts[0], true)
	if len(fr.terminals) > 0 {
		return -1
	}
	first := -1
	for _, h := range fr.hits {
		if h.via&(splitAND|splitOR) != 0 {
			return -1
		}
		if first >= 0 && h.node != first {
			return -1
		}
		first = h.node
	}
	return first
}

// final returns the activity every trace finishes with, or -1.
func (an *analysis) final(order []int) int {
	last := -1
	ends := 0
	for _, e := range order {
		if an.g.Element(e).Kind != bpmn.EndEvent {
			continue
		}
		ends++
		fr := an.walk(e, false)
		if len(fr.terminals) > 0 {
			return -1
		}
		for _, h := range fr.hits {
			if h.via&(joinAND|joinOR) != 0 {
				return -1
			}
			if last >= 0 && h.node != last {
				return -1
			}
			last = h.node
		}
	}
	if ends == 0 {
		return -1
	}
	return last
}

// closure adds the response and precedence relations implied by chains of
// adjacent pairs. Pairs that are themselves adjacent are left as they are.
func (an *analysis) closure(order []int) {
	for _, a := range order {
		if !an.activity[a] {
			continue
		}
		resp := reachable(an.resp, a)
		prec := reachable(an.prec, a)

		targets := append([]int(nil), resp...)
		for _, c := range prec {
			if !contains(resp, c) {
				targets = append(targets, c)
			}
		}

		for _, c := range targets {
			if c == a || an.adjacent[pair{a, c}] || an.label(a) == an.label(c) {
				continue
			}
			f := facts{response: contains(resp, c), precedence: contains(prec, c)}
			if k, ok := an.pick(f); ok {
				an.emit(k, a, c)
			}
		}
	}
}

// reachable lists the nodes reachable from a over edges, breadth-first.
func reachable(edges map[int][]int, a int) []int {
	seen := map[int]bool{a: true}
	var out []int
	queue := []int{a}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range edges[v] {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
				queue = append(queue, w)
			}
		}
	}
	return out
}

func contains(xs []int, x int) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}

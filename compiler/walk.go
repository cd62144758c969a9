package compiler

import "github.com/liamcoop/bpmnconstraints/bpmn"

// crossing records the kinds of split and join a path went through.
type crossing uint8

const (
	splitXOR crossing = 1 << iota
	splitAND
	splitOR
	joinXOR
	joinAND
	joinOR
)

// splitOf is the crossing added by leaving element i. An activity or event
// with several outgoing flows forks like a parallel gateway, unless some of
// them lead to boundary events: an interrupting one replaces the normal
// completion and a non-interrupting one may or may not fire alongside it.
func (an *analysis) splitOf(i int) crossing {
	if an.g.OutDegree(i) < 2 {
		return 0
	}
	var attached bpmn.Attachment
	for _, f := range an.g.OutgoingFlows(i) {
		if f.Attached == bpmn.Interrupting {
			return splitXOR
		}
		if f.Attached != bpmn.NotAttached {
			attached = f.Attached
		}
	}
	if attached == bpmn.NonInterrupting {
		return splitOR
	}
	switch an.g.Element(i).Kind {
	case bpmn.ExclusiveGateway:
		return splitXOR
	case bpmn.InclusiveGateway:
		return splitOR
	default:
		return splitAND
	}
}

// joinOf is the crossing added by entering element i. Several incoming
// flows on anything but a parallel or inclusive gateway merge exclusively.
func (an *analysis) joinOf(i int) crossing {
	if an.g.InDegree(i) < 2 {
		return 0
	}
	switch an.g.Element(i).Kind {
	case bpmn.ParallelGateway:
		return joinAND
	case bpmn.InclusiveGateway:
		return joinOR
	default:
		return joinXOR
	}
}

type hit struct {
	node int
	via  crossing
}

// frontier holds what a walk from one element reached first.
type frontier struct {
	hits      []hit // activities, in discovery order
	terminals []hit // end events going forward, start events going backward
}

func (fr frontier) nodes() []int {
	seen := make(map[int]bool, len(fr.hits))
	var out []int
	for _, h := range fr.hits {
		if !seen[h.node] {
			seen[h.node] = true
			out = append(out, h.node)
		}
	}
	return out
}

// walk explores from element from through non-activity elements and stops
// at the first activity or terminal event on every path. A state is an
// element plus the crossings accumulated so far, so every state is expanded
// at most once and cycles terminate.
func (an *analysis) walk(from int, forward bool) frontier {
	type state struct {
		node int
		via  crossing
	}

	next, leave, enter := an.g.Successors, an.splitOf, an.joinOf
	terminal := bpmn.EndEvent
	if !forward {
		next, leave, enter = an.g.Predecessors, an.joinOf, an.splitOf
		terminal = bpmn.StartEvent
	}

	var (
		fr    frontier
		seen  = make(map[state]bool)
		queue []state
	)
	first := leave(from)
	for _, n := range next(from) {
		queue = append(queue, state{node: n, via: first})
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if seen[s] {
			continue
		}
		seen[s] = true

		via := s.via | enter(s.node)
		if an.activity[s.node] {
			fr.hits = append(fr.hits, hit{node: s.node, via: via})
			continue
		}
		if an.g.Element(s.node).Kind == terminal {
			fr.terminals = append(fr.terminals, hit{node: s.node, via: via})
			continue
		}

		via |= leave(s.node)
		for _, n := range next(s.node) {
			queue = append(queue, state{node: n, via: via})
		}
	}
	return fr
}

func (an *analysis) forward(from int) frontier {
	if fr, ok := an.fwd[from]; ok {
		return fr
	}
	fr := an.walk(from, true)
	an.fwd[from] = fr
	return fr
}

// tokens reports which elements can receive a token from some start event
// when element skip never fires (skip < 0 disables nothing). Parallel joins
// wait for all of their incoming flows.
func (an *analysis) tokens(skip int) []bool {
	if r, ok := an.reach[skip]; ok {
		return r
	}

	n := an.g.Len()
	reached := make([]bool, n)
	arrived := make([]int, n)
	var queue []int
	for _, s := range an.g.Starts() {
		if s != skip {
			reached[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range an.g.Successors(v) {
			if reached[w] || w == skip {
				continue
			}
			arrived[w]++
			if an.joinOf(w) == joinAND && arrived[w] < an.g.InDegree(w) {
				continue
			}
			reached[w] = true
			queue = append(queue, w)
		}
	}

	an.reach[skip] = reached
	return reached
}

// concurrent reports, per element, whether it can run while another branch
// of a parallel or inclusive split is still open. Open splits are counted
// along every path and closed by parallel or inclusive joins.
func (an *analysis) concurrent() []bool {
	if an.par != nil {
		return an.par
	}

	type state struct{ node, open int }
	n := an.g.Len()
	par := make([]bool, n)
	seen := make(map[state]bool)
	var queue []state
	for _, s := range an.g.Starts() {
		queue = append(queue, state{node: s})
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if seen[s] {
			continue
		}
		seen[s] = true

		open := s.open
		if j := an.joinOf(s.node); j&(joinAND|joinOR) != 0 && open > 0 {
			open--
		}
		if open > 0 {
			par[s.node] = true
		}
		// loops may reopen a split forever; the depth is capped so the walk ends
		if sp := an.splitOf(s.node); sp&(splitAND|splitOR) != 0 && open < n {
			open++
		}
		for _, w := range an.g.Successors(s.node) {
			queue = append(queue, state{node: w, open: open})
		}
	}

	an.par = par
	return par
}

// reaches reports whether to can be reached from the successors of from
// without entering avoid. Use avoid < 0 to allow every element.
func (an *analysis) reaches(from, to, avoid int) bool {
	seen := make([]bool, an.g.Len())
	queue := []int{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range an.g.Successors(v) {
			if w == to {
				return true
			}
			if w == avoid || seen[w] {
				continue
			}
			seen[w] = true
			queue = append(queue, w)
		}
	}
	return false
}

// branchTarget follows one outgoing branch of a split to its first
// activity. The branch has no target when it meets another split or join,
// or an end event, before any activity.
func (an *analysis) branchTarget(n int) (int, bool) {
	seen := make(map[int]bool)
	for !seen[n] {
		seen[n] = true
		if an.activity[n] {
			return n, true
		}
		if an.g.InDegree(n) > 1 || an.g.OutDegree(n) != 1 {
			return -1, false
		}
		n = an.g.Successors(n)[0]
	}
	return -1, false
}

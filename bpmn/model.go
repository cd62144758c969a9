package bpmn

import "fmt"

// ElementKind classifies a process element.
type ElementKind int

const (
	Task ElementKind = iota
	StartEvent
	EndEvent
	IntermediateEvent
	ExclusiveGateway
	ParallelGateway
	InclusiveGateway
)

var elementKindNames = map[ElementKind]string{
	Task:              "task",
	StartEvent:        "start_event",
	EndEvent:          "end_event",
	IntermediateEvent: "intermediate_event",
	ExclusiveGateway:  "exclusive_gateway",
	ParallelGateway:   "parallel_gateway",
	InclusiveGateway:  "inclusive_gateway",
}

func (k ElementKind) String() string {
	if name, ok := elementKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ElementKind(%d)", int(k))
}

func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ElementKind) UnmarshalText(text []byte) error {
	for kind, name := range elementKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown element kind %q", text)
}

// IsGateway reports whether k is a routing gateway.
func (k ElementKind) IsGateway() bool {
	return k == ExclusiveGateway || k == ParallelGateway || k == InclusiveGateway
}

// Element is a node of the process diagram.
type Element struct {
	ID    string
	Kind  ElementKind
	Label string // activity name; may be empty
}

// Attachment marks the implicit flow from a host activity to one of its
// boundary events.
type Attachment int

const (
	NotAttached Attachment = iota
	Interrupting
	NonInterrupting
)

// Flow is a directed sequence flow between two element ids.
type Flow struct {
	ID        string
	Source    string
	Target    string
	Condition string // condition expression or flow name, if any
	Attached  Attachment
}

// Graph is an immutable process graph. Elements live in an arena and are
// addressed by their index, which follows document order.
type Graph struct {
	elements []Element
	flows    []Flow
	index    map[string]int
	out      [][]int // element -> flow indices leaving it
	in       [][]int // element -> flow indices entering it
	starts   []int
}

// Len returns the number of elements.
func (g *Graph) Len() int { return len(g.elements) }

// Element returns the element at index i.
func (g *Graph) Element(i int) Element { return g.elements[i] }

// Elements returns a copy of all elements in document order.
func (g *Graph) Elements() []Element {
	return append([]Element(nil), g.elements...)
}

// Flows returns a copy of all flows in document order.
func (g *Graph) Flows() []Flow {
	return append([]Flow(nil), g.flows...)
}

// Index resolves an element id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Starts returns the start event indices in document order.
func (g *Graph) Starts() []int {
	return append([]int(nil), g.starts...)
}

// Successors returns the target element of every outgoing flow of i, in flow order.
func (g *Graph) Successors(i int) []int {
	out := make([]int, len(g.out[i]))
	for n, f := range g.out[i] {
		out[n] = g.index[g.flows[f].Target]
	}
	return out
}

// Predecessors returns the source element of every incoming flow of i, in flow order.
func (g *Graph) Predecessors(i int) []int {
	in := make([]int, len(g.in[i]))
	for n, f := range g.in[i] {
		in[n] = g.index[g.flows[f].Source]
	}
	return in
}

// OutgoingFlows returns the flows leaving element i.
func (g *Graph) OutgoingFlows(i int) []Flow {
	out := make([]Flow, len(g.out[i]))
	for n, f := range g.out[i] {
		out[n] = g.flows[f]
	}
	return out
}

// OutDegree is the number of flows leaving element i.
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// InDegree is the number of flows entering element i.
func (g *Graph) InDegree(i int) int { return len(g.in[i]) }

// Build validates elements and flows and assembles a Graph.
func Build(elements []Element, flows []Flow) (*Graph, error) {
	g := &Graph{
		elements: append([]Element(nil), elements...),
		flows:    append([]Flow(nil), flows...),
		index:    make(map[string]int, len(elements)),
		out:      make([][]int, len(elements)),
		in:       make([][]int, len(elements)),
	}

	for i, el := range g.elements {
		if el.ID == "" {
			return nil, malformed("", fmt.Sprintf("element #%d (%s) has no id", i, el.Kind), nil)
		}
		if _, dup := g.index[el.ID]; dup {
			return nil, malformed(el.ID, "duplicate element id", nil)
		}
		g.index[el.ID] = i
		if el.Kind == StartEvent {
			g.starts = append(g.starts, i)
		}
	}

	for f, flow := range g.flows {
		if flow.Source == "" || flow.Target == "" {
			return nil, malformed(flow.ID, "sequence flow without source or target", nil)
		}
		src, ok := g.index[flow.Source]
		if !ok {
			return nil, &ParseError{Kind: ErrDanglingReference, ID: flow.Source, Msg: fmt.Sprintf("source of flow %q", flow.ID)}
		}
		dst, ok := g.index[flow.Target]
		if !ok {
			return nil, &ParseError{Kind: ErrDanglingReference, ID: flow.Target, Msg: fmt.Sprintf("target of flow %q", flow.ID)}
		}
		g.out[src] = append(g.out[src], f)
		g.in[dst] = append(g.in[dst], f)
	}

	if len(g.starts) == 0 {
		return nil, &ParseError{Kind: ErrNoEntryPoint, Msg: "process has no start event"}
	}

	for i, el := range g.elements {
		if el.Kind != StartEvent && len(g.in[i]) == 0 {
			return nil, malformed(el.ID, fmt.Sprintf("%s has no incoming flow", el.Kind), nil)
		}
		if el.Kind != EndEvent && len(g.out[i]) == 0 {
			return nil, malformed(el.ID, fmt.Sprintf("%s has no outgoing flow", el.Kind), nil)
		}
	}

	return g, nil
}

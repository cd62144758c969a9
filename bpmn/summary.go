package bpmn

// ElementSummary is the parse-mode view of one element.
type ElementSummary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Kind         ElementKind `json:"type"`
	Successors   []string    `json:"successors"`
	Predecessors []string    `json:"predecessors"`
	IsStart      bool        `json:"is_start"`
	IsEnd        bool        `json:"is_end"`
}

// Summary lists every element with its neighbours in document order.
func (g *Graph) Summary() []ElementSummary {
	out := make([]ElementSummary, 0, len(g.elements))
	for i, el := range g.elements {
		s := ElementSummary{
			ID:           el.ID,
			Name:         el.Label,
			Kind:         el.Kind,
			Successors:   []string{},
			Predecessors: []string{},
			IsStart:      el.Kind == StartEvent,
			IsEnd:        el.Kind == EndEvent,
		}
		for _, j := range g.Successors(i) {
			s.Successors = append(s.Successors, g.elements[j].ID)
		}
		for _, j := range g.Predecessors(i) {
			s.Predecessors = append(s.Predecessors, g.elements[j].ID)
		}
		out = append(out, s)
	}
	return out
}

// KindCounts tallies elements per kind.
func (g *Graph) KindCounts() map[ElementKind]int {
	counts := make(map[ElementKind]int)
	for _, el := range g.elements {
		counts[el.Kind]++
	}
	return counts
}

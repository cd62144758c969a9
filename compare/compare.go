// Package compare scores a compiled constraint list against a reference
// list of DECLARE descriptors. Activities are matched exactly first and
// then by normalized Levenshtein similarity, so labels that differ by
// typos or casing still pair up.
package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/liamcoop/bpmnconstraints/templates"
)

// ErrInvalidThreshold is returned for a similarity threshold outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// DefaultThreshold is the similarity two activity names need to be
// considered the same.
const DefaultThreshold = 0.8

// Match pairs one compiled descriptor with one reference descriptor.
type Match struct {
	Compiled  string  `json:"compiled"`
	Reference string  `json:"reference"`
	Score     float64 `json:"score"`
	Exact     bool    `json:"exact"`
}

// Result is the outcome of Compare.
type Result struct {
	Matched   []Match  `json:"matched"`
	Missing   []string `json:"missing"` // reference descriptors with no counterpart
	Extra     []string `json:"extra"`   // compiled descriptors with no counterpart
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
}

type entry struct {
	text string
	d    templates.Descriptor
	used bool
}

func parseAll(list []string, which string) ([]*entry, error) {
	out := make([]*entry, 0, len(list))
	for i, s := range list {
		d, err := templates.ParseDescriptor(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%s constraint %d: %w", which, i, err)
		}
		out = append(out, &entry{text: s, d: d})
	}
	return out, nil
}

// Compare pairs every reference descriptor with at most one compiled
// descriptor of the same template. Exact pairs are taken first; the rest
// are matched greedily in reference order to the best-scoring compiled
// descriptor whose score reaches threshold.
func Compare(compiled, reference []string, threshold float64) (*Result, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	got, err := parseAll(compiled, "compiled")
	if err != nil {
		return nil, err
	}
	want, err := parseAll(reference, "reference")
	if err != nil {
		return nil, err
	}

	res := &Result{}
	matched := make([]bool, len(want))

	for i, w := range want {
		for _, g := range got {
			if g.used || score(g.d, w.d) < 1 {
				continue
			}
			g.used, matched[i] = true, true
			res.Matched = append(res.Matched, Match{Compiled: g.text, Reference: w.text, Score: 1, Exact: true})
			break
		}
	}

	for i, w := range want {
		if matched[i] {
			continue
		}
		var best *entry
		bestScore := -1.0
		for _, g := range got {
			if g.used {
				continue
			}
			if s := score(g.d, w.d); s >= threshold && s > bestScore {
				best, bestScore = g, s
			}
		}
		if best == nil {
			res.Missing = append(res.Missing, w.text)
			continue
		}
		best.used, matched[i] = true, true
		res.Matched = append(res.Matched, Match{Compiled: best.text, Reference: w.text, Score: bestScore})
	}

	for _, g := range got {
		if !g.used {
			res.Extra = append(res.Extra, g.text)
		}
	}

	res.Precision = ratio(len(res.Matched), len(got))
	res.Recall = ratio(len(res.Matched), len(want))
	return res, nil
}

// ratio is n/d, and 1 when there is nothing to score.
func ratio(n, d int) float64 {
	if d == 0 {
		return 1
	}
	return float64(n) / float64(d)
}

// symmetric templates do not care about operand order.
func symmetric(k templates.Kind) bool {
	return k == templates.Choice || k == templates.ExclusiveChoice || k == templates.CoExistence
}

// score is the similarity of two descriptors: 0 for different templates,
// otherwise the weakest activity similarity.
func score(a, b templates.Descriptor) float64 {
	if a.Kind != b.Kind || len(a.Activities) != len(b.Activities) {
		return 0
	}
	s := operands(a.Activities, b.Activities)
	if symmetric(a.Kind) && len(a.Activities) == 2 {
		swapped := []string{b.Activities[1], b.Activities[0]}
		if t := operands(a.Activities, swapped); t > s {
			s = t
		}
	}
	return s
}

func operands(a, b []string) float64 {
	lowest := 1.0
	for i := range a {
		if s := Similarity(a[i], b[i]); s < lowest {
			lowest = s
		}
	}
	return lowest
}

// Similarity compares two activity names case-insensitively, ignoring
// surrounding and repeated whitespace. 1 means equal.
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 1
	}
	return levenshtein.Similarity(a, b, nil)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

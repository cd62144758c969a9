package compiler

import (
	"fmt"
	"strings"

	"github.com/liamcoop/bpmnconstraints/templates"
)

// PrecedenceOrder ranks the ordering templates. When several are
// consistent with what the graph shows for a pair of activities, the one
// listed first is emitted. Kinds left out of the order are never emitted
// for ordered pairs.
type PrecedenceOrder []templates.Kind

// DefaultOrder prefers immediacy, then alternation, then the plain
// templates, and binary successions over their halves.
var DefaultOrder = PrecedenceOrder{
	templates.ChainSuccession,
	templates.AlternateSuccession,
	templates.Succession,
	templates.ChainResponse,
	templates.AlternateResponse,
	templates.Response,
	templates.AlternatePrecedence,
	templates.Precedence,
}

var orderingKinds = map[templates.Kind]bool{
	templates.ChainSuccession:     true,
	templates.AlternateSuccession: true,
	templates.Succession:          true,
	templates.ChainResponse:       true,
	templates.AlternateResponse:   true,
	templates.Response:            true,
	templates.AlternatePrecedence: true,
	templates.Precedence:          true,
}

// ParseOrder reads a comma separated list of template names, e.g.
// "succession, response, precedence".
func ParseOrder(s string) (PrecedenceOrder, error) {
	var order PrecedenceOrder
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := templates.ParseKind(part)
		if err != nil {
			return nil, err
		}
		order = append(order, k)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate rejects non-ordering templates and repeated entries.
func (o PrecedenceOrder) Validate() error {
	seen := make(map[templates.Kind]bool, len(o))
	for _, k := range o {
		if !orderingKinds[k] {
			return fmt.Errorf("template %s cannot appear in a precedence order", k)
		}
		if seen[k] {
			return fmt.Errorf("template %s listed twice in precedence order", k)
		}
		seen[k] = true
	}
	return nil
}

func (o PrecedenceOrder) String() string {
	names := make([]string, len(o))
	for i, k := range o {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}

// Options are the flags accepted by Compile.
type Options struct {
	// Transitivity adds the response and precedence relations implied by
	// chains of direct ones.
	Transitivity bool
	// SkipNamedGateways makes labelled gateways transparent routing
	// elements instead of activities.
	SkipNamedGateways bool
	// Order overrides DefaultOrder when non-nil.
	Order PrecedenceOrder
}

func (o Options) order() PrecedenceOrder {
	if o.Order == nil {
		return DefaultOrder
	}
	return o.Order
}

// Validate checks the precedence order, if one is set.
func (o Options) Validate() error {
	if o.Order == nil {
		return nil
	}
	return o.Order.Validate()
}

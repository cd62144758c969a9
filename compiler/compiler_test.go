package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/liamcoop/bpmnconstraints/bpmn"
	"github.com/liamcoop/bpmnconstraints/ltlf"
	"github.com/liamcoop/bpmnconstraints/ltlf/ltlftest"
	"github.com/liamcoop/bpmnconstraints/templates"
)

// diagram assembles small graphs for tests.
type diagram struct {
	elements []bpmn.Element
	flows    []bpmn.Flow
}

func (d *diagram) start(id string) *diagram { return d.add(id, bpmn.StartEvent, "") }
func (d *diagram) end(id string) *diagram   { return d.add(id, bpmn.EndEvent, "") }

func (d *diagram) task(id, label string) *diagram { return d.add(id, bpmn.Task, label) }

func (d *diagram) add(id string, kind bpmn.ElementKind, label string) *diagram {
	d.elements = append(d.elements, bpmn.Element{ID: id, Kind: kind, Label: label})
	return d
}

// seq adds flows along ids.
func (d *diagram) seq(ids ...string) *diagram {
	for i := 0; i+1 < len(ids); i++ {
		d.flows = append(d.flows, bpmn.Flow{
			ID:     fmt.Sprintf("f%d", len(d.flows)+1),
			Source: ids[i],
			Target: ids[i+1],
		})
	}
	return d
}

func (d *diagram) build(t *testing.T) *bpmn.Graph {
	t.Helper()
	g, err := bpmn.Build(d.elements, d.flows)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func fixture(t *testing.T, name string) *bpmn.Graph {
	t.Helper()
	g, err := bpmn.ParseFile(filepath.Join("..", "bpmn", "testdata", name))
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", name, err)
	}
	return g
}

func mustCompile(t *testing.T, g *bpmn.Graph, opts Options) []CompiledConstraint {
	t.Helper()
	out, err := Compile(g, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return out
}

// declares lists the DECLARE strings of cs.
func declares(cs []CompiledConstraint) []string {
	return Texts(cs, FormatDeclare)
}

func has(cs []CompiledConstraint, kind templates.Kind, acts ...string) bool {
	for _, c := range cs {
		if c.Kind == kind && reflect.DeepEqual(c.Activities, acts) {
			return true
		}
	}
	return false
}

// between returns every binary relation over the unordered pair {x, y}.
func between(cs []CompiledConstraint, x, y string) []CompiledConstraint {
	var out []CompiledConstraint
	for _, c := range cs {
		if len(c.Activities) != 2 {
			continue
		}
		if (c.Activities[0] == x && c.Activities[1] == y) || (c.Activities[0] == y && c.Activities[1] == x) {
			out = append(out, c)
		}
	}
	return out
}

func sequenceGraph(t *testing.T) *bpmn.Graph {
	d := new(diagram).start("s").task("a", "A").task("b", "B").end("e")
	d.seq("s", "a", "b", "e")
	return d.build(t)
}

// TestImmediateChain verifies the Start -> A -> B -> End scenario down to
// the exact formula string.
func TestImmediateChain(t *testing.T) {
	out := mustCompile(t, sequenceGraph(t), Options{})

	want := []string{
		"Init[A] | |",
		"Chain Succession[A, B] | | |",
		"End[B] | |",
	}
	if got := declares(out); !reflect.DeepEqual(got, want) {
		t.Fatalf("DECLARE output:\n got %q\nwant %q", got, want)
	}

	chain := out[1]
	if chain.Kind != templates.ChainSuccession {
		t.Fatalf("expected chain_succession, got %s", chain.Kind)
	}
	wantFormula := ltlf.And{
		Left: ltlf.Always{F: ltlf.Implies{Left: ltlf.Atom{Name: "A"}, Right: ltlf.Next{F: ltlf.Atom{Name: "B"}}}},
		Right: ltlf.Or{
			Left: ltlf.Or{
				Left:  ltlf.Eventually{F: ltlf.Atom{Name: "B"}},
				Right: ltlf.And{Left: ltlf.Not{F: ltlf.Atom{Name: "A"}}, Right: ltlf.Atom{Name: "B"}},
			},
			Right: ltlf.Always{F: ltlf.Not{F: ltlf.Atom{Name: "A"}}},
		},
	}
	if chain.LTLf != ltlf.Render(wantFormula) {
		t.Errorf("LTLf = %q, want %q", chain.LTLf, ltlf.Render(wantFormula))
	}
	if chain.LTLf != "(G((A -> X(B))) & ((F(B) | (~(A) & B)) | G(~(A))))" {
		t.Errorf("unexpected canonical form %q", chain.LTLf)
	}
	if out[0].LTLf != "A" {
		t.Errorf("init LTLf = %q", out[0].LTLf)
	}
}

// TestExclusiveGateway verifies that exclusive branches are mutually
// exclusive and never co-existent.
func TestExclusiveGateway(t *testing.T) {
	d := new(diagram).start("s").
		add("g", bpmn.ExclusiveGateway, "").
		task("x", "x").task("y", "y").
		end("e1").end("e2")
	d.seq("s", "g", "x", "e1").seq("g", "y", "e2")
	g := d.build(t)

	for _, transitivity := range []bool{false, true} {
		out := mustCompile(t, g, Options{Transitivity: transitivity})
		if !has(out, templates.ExclusiveChoice, "x", "y") {
			t.Errorf("transitivity=%v: missing exclusive_choice(x, y) in %q", transitivity, declares(out))
		}
		for _, c := range between(out, "x", "y") {
			if c.Kind == templates.CoExistence {
				t.Errorf("transitivity=%v: unexpected %s", transitivity, c.Declare)
			}
		}
		if has(out, templates.Init, "x") || has(out, templates.Init, "y") {
			t.Errorf("transitivity=%v: init emitted for an optional branch", transitivity)
		}
	}
}

// TestParallelGateway verifies that concurrent branches co-exist without
// any ordering between them.
func TestParallelGateway(t *testing.T) {
	d := new(diagram).start("s").
		add("g", bpmn.ParallelGateway, "").
		task("x", "x").task("y", "y").
		add("j", bpmn.ParallelGateway, "").
		end("e")
	d.seq("s", "g", "x", "j", "e").seq("g", "y", "j")
	g := d.build(t)

	for _, transitivity := range []bool{false, true} {
		out := mustCompile(t, g, Options{Transitivity: transitivity})
		if !has(out, templates.CoExistence, "x", "y") {
			t.Errorf("transitivity=%v: missing co_existence(x, y) in %q", transitivity, declares(out))
		}
		for _, c := range between(out, "x", "y") {
			if c.Kind != templates.CoExistence {
				t.Errorf("transitivity=%v: unexpected ordering relation %s", transitivity, c.Declare)
			}
		}
	}
}

// TestParallelFixture checks the complete output for a fork/join diagram.
func TestParallelFixture(t *testing.T) {
	out := mustCompile(t, fixture(t, "parallel.bpmn"), Options{})
	want := []string{
		"Init[Receive order] | |",
		"Succession[Receive order, Pack goods] | | |",
		"Succession[Receive order, Send invoice] | | |",
		"Co-Existence[Pack goods, Send invoice] | | |",
		"Succession[Pack goods, Close order] | | |",
		"Succession[Send invoice, Close order] | | |",
		"End[Close order] | |",
	}
	if got := declares(out); !reflect.DeepEqual(got, want) {
		t.Errorf("DECLARE output:\n got %q\nwant %q", got, want)
	}
}

// parallelBranchGraph: s -> g -> {A -> B, C} -> j -> e with g, j parallel.
func parallelBranchGraph(t *testing.T) *bpmn.Graph {
	d := new(diagram).start("s").
		add("g", bpmn.ParallelGateway, "").
		task("a", "A").task("b", "B").task("c", "C").
		add("j", bpmn.ParallelGateway, "").
		end("e")
	d.seq("s", "g", "a", "b", "j", "e").seq("g", "c", "j")
	return d.build(t)
}

// TestChainInsideParallelBranch verifies that a sequence on one branch of
// a fork keeps its order but not its immediacy, since the other branch can
// run in between.
func TestChainInsideParallelBranch(t *testing.T) {
	for _, transitivity := range []bool{false, true} {
		out := mustCompile(t, parallelBranchGraph(t), Options{Transitivity: transitivity})
		for _, c := range out {
			if c.Kind.IsChain() {
				t.Errorf("transitivity=%v: unexpected %s", transitivity, c.Declare)
			}
		}
		if !has(out, templates.Succession, "A", "B") {
			t.Errorf("transitivity=%v: missing succession(A, B) in %q", transitivity, declares(out))
		}
		if !has(out, templates.CoExistence, "A", "C") {
			t.Errorf("transitivity=%v: missing co_existence(A, C) in %q", transitivity, declares(out))
		}
	}
}

// TestBoundaryEvents checks the complete output for an interrupting and a
// non-interrupting boundary event.
func TestBoundaryEvents(t *testing.T) {
	tests := []struct {
		file string
		want []string
	}{
		{"boundary.bpmn", []string{
			"Init[Charge card] | |",
			"Precedence[Charge card, Payment timed out] | | |",
			"Chain Succession[Payment timed out, Notify customer] | | |",
		}},
		{"reminder.bpmn", []string{
			"Init[Approve invoice] | |",
			"Precedence[Approve invoice, Reminder due] | | |",
			"Precedence[Approve invoice, Pay invoice] | | |",
			"Choice[Reminder due, Pay invoice] | | |",
			"Succession[Reminder due, Send reminder] | | |",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			out := mustCompile(t, fixture(t, tt.file), Options{})
			if got := declares(out); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DECLARE output:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

// TestInitNeedsSingleStart verifies that init is only emitted for a diagram
// with exactly one start event, even when every start leads to the same
// activity.
func TestInitNeedsSingleStart(t *testing.T) {
	d := new(diagram).start("s1").start("s2").
		add("j", bpmn.ExclusiveGateway, "").
		task("a", "A").task("b", "B").end("e")
	d.seq("s1", "j", "a", "b", "e").seq("s2", "j")
	out := mustCompile(t, d.build(t), Options{})

	if has(out, templates.Init, "A") {
		t.Errorf("unexpected init(A) in %q", declares(out))
	}
	if !has(out, templates.ChainSuccession, "A", "B") || !has(out, templates.End, "B") {
		t.Errorf("unexpected output %q", declares(out))
	}
}

// TestNamedGateways verifies both settings of skip_named_gateways on a
// diagram whose split carries a label.
func TestNamedGateways(t *testing.T) {
	g := fixture(t, "exclusive.bpmn")

	t.Run("gateway is an activity", func(t *testing.T) {
		out := mustCompile(t, g, Options{})
		want := []string{
			"Init[Review request] | |",
			"Chain Succession[Review request, Approved?] | | |",
			"Precedence[Approved?, Approve] | | |",
			"Precedence[Approved?, Reject] | | |",
			"Exclusive Choice[Approve, Reject] | | |",
		}
		if got := declares(out); !reflect.DeepEqual(got, want) {
			t.Errorf("DECLARE output:\n got %q\nwant %q", got, want)
		}
	})

	t.Run("gateway is skipped", func(t *testing.T) {
		out := mustCompile(t, g, Options{SkipNamedGateways: true})
		want := []string{
			"Init[Review request] | |",
			"Precedence[Review request, Approve] | | |",
			"Precedence[Review request, Reject] | | |",
			"Exclusive Choice[Approve, Reject] | | |",
		}
		if got := declares(out); !reflect.DeepEqual(got, want) {
			t.Errorf("DECLARE output:\n got %q\nwant %q", got, want)
		}
		for _, c := range out {
			for _, a := range c.Activities {
				if a == "Approved?" {
					t.Errorf("skipped gateway appears in %s", c.Declare)
				}
			}
		}
	})
}

// TestTransitivity verifies that closure derives the relation across an
// intermediate activity and never derives chain relations.
func TestTransitivity(t *testing.T) {
	d := new(diagram).start("s").task("a", "A").task("b", "B").task("c", "C").end("e")
	d.seq("s", "a", "b", "c", "e")
	g := d.build(t)

	plain := mustCompile(t, g, Options{})
	if has(plain, templates.Succession, "A", "C") {
		t.Fatal("succession(A, C) emitted without transitivity")
	}

	closed := mustCompile(t, g, Options{Transitivity: true})
	if !has(closed, templates.Succession, "A", "C") {
		t.Errorf("missing succession(A, C) in %q", declares(closed))
	}
	for _, c := range closed[len(plain):] {
		if c.Kind.IsChain() {
			t.Errorf("chain relation derived transitively: %s", c.Declare)
		}
	}
	if !reflect.DeepEqual(closed[:len(plain)], plain) {
		t.Error("transitivity changed the direct relations")
	}
}

// TestTransitivityIsMonotone verifies that enabling closure only ever adds
// relations.
func TestTransitivityIsMonotone(t *testing.T) {
	graphs := map[string]*bpmn.Graph{
		"sequence":  fixture(t, "sequence.bpmn"),
		"exclusive": fixture(t, "exclusive.bpmn"),
		"parallel":  fixture(t, "parallel.bpmn"),
		"boundary":  fixture(t, "boundary.bpmn"),
		"reminder":  fixture(t, "reminder.bpmn"),
		"loop":      loopGraph(t),
	}

	for name, g := range graphs {
		for _, skip := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/skip=%v", name, skip), func(t *testing.T) {
				plain := mustCompile(t, g, Options{SkipNamedGateways: skip})
				closed := mustCompile(t, g, Options{SkipNamedGateways: skip, Transitivity: true})

				got := make(map[string]bool)
				for _, c := range closed {
					got[c.Declare] = true
				}
				for _, c := range plain {
					if c.Kind.IsChain() {
						continue
					}
					if !got[c.Declare] {
						t.Errorf("%s lost when transitivity is enabled", c.Declare)
					}
				}
			})
		}
	}
}

// TestDeterminism verifies that repeated compilation is byte-identical.
func TestDeterminism(t *testing.T) {
	for _, name := range []string{"sequence.bpmn", "exclusive.bpmn", "parallel.bpmn", "boundary.bpmn", "reminder.bpmn"} {
		t.Run(name, func(t *testing.T) {
			g := fixture(t, name)
			opts := Options{Transitivity: true}

			first, err := json.Marshal(mustCompile(t, g, opts))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			for i := 0; i < 5; i++ {
				again, _ := json.Marshal(mustCompile(t, fixture(t, name), opts))
				if string(again) != string(first) {
					t.Fatalf("run %d differs:\n%s\n%s", i, first, again)
				}
			}
		})
	}
}

// loopGraph: s -> j -> A -> B -> x -> {j, e}
func loopGraph(t *testing.T) *bpmn.Graph {
	d := new(diagram).start("s").
		add("j", bpmn.ExclusiveGateway, "").
		task("a", "A").task("b", "B").
		add("x", bpmn.ExclusiveGateway, "").
		end("e")
	d.seq("s", "j", "a", "b", "x", "e").seq("x", "j")
	return d.build(t)
}

// TestLoops verifies relations on cycles: immediacy wins inside a loop,
// alternation is used where a loop repeats the target only through the
// source, and the loop exit still yields end.
func TestLoops(t *testing.T) {
	t.Run("chain inside loop", func(t *testing.T) {
		out := mustCompile(t, loopGraph(t), Options{})
		want := []string{
			"Init[A] | |",
			"Chain Succession[A, B] | | |",
			"End[B] | |",
		}
		if got := declares(out); !reflect.DeepEqual(got, want) {
			t.Errorf("DECLARE output:\n got %q\nwant %q", got, want)
		}
	})

	t.Run("alternate precedence", func(t *testing.T) {
		// s -> j -> A -> x1 -> {B, C} -> j2 -> x2 -> {j, e}
		d := new(diagram).start("s").
			add("j", bpmn.ExclusiveGateway, "").
			task("a", "A").
			add("x1", bpmn.ExclusiveGateway, "").
			task("b", "B").task("c", "C").
			add("j2", bpmn.ExclusiveGateway, "").
			add("x2", bpmn.ExclusiveGateway, "").
			end("e")
		d.seq("s", "j", "a", "x1", "b", "j2", "x2", "e").
			seq("x1", "c", "j2").
			seq("x2", "j")
		out := mustCompile(t, d.build(t), Options{})

		if !has(out, templates.AlternatePrecedence, "A", "B") {
			t.Errorf("missing alternate_precedence(A, B) in %q", declares(out))
		}
		if !has(out, templates.AlternatePrecedence, "A", "C") {
			t.Errorf("missing alternate_precedence(A, C) in %q", declares(out))
		}
		if !has(out, templates.ExclusiveChoice, "B", "C") {
			t.Errorf("missing exclusive_choice(B, C) in %q", declares(out))
		}
	})

	t.Run("self loop", func(t *testing.T) {
		// s -> j -> A -> x -> {j, e}
		d := new(diagram).start("s").
			add("j", bpmn.ExclusiveGateway, "").
			task("a", "A").
			add("x", bpmn.ExclusiveGateway, "").
			end("e")
		d.seq("s", "j", "a", "x", "e").seq("x", "j")
		out := mustCompile(t, d.build(t), Options{Transitivity: true})
		for _, c := range out {
			if len(c.Activities) == 2 {
				t.Errorf("unexpected binary relation %s", c.Declare)
			}
		}
	})
}

// TestPrecedenceOrder verifies that a custom order changes which of the
// consistent templates is emitted.
func TestPrecedenceOrder(t *testing.T) {
	g := sequenceGraph(t)

	out := mustCompile(t, g, Options{Order: PrecedenceOrder{templates.Succession, templates.Response}})
	if !has(out, templates.Succession, "A", "B") || has(out, templates.ChainSuccession, "A", "B") {
		t.Errorf("unexpected output %q", declares(out))
	}

	out = mustCompile(t, g, Options{Order: PrecedenceOrder{templates.Precedence}})
	if !has(out, templates.Precedence, "A", "B") {
		t.Errorf("unexpected output %q", declares(out))
	}

	out = mustCompile(t, g, Options{Order: PrecedenceOrder{}})
	if len(between(out, "A", "B")) != 0 {
		t.Errorf("empty order still emitted %q", declares(out))
	}

	if _, err := Compile(g, Options{Order: PrecedenceOrder{templates.Init}}); err == nil {
		t.Error("expected error for non-ordering template in order")
	}
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder("succession, Chain Response ,precedence")
	if err != nil {
		t.Fatalf("ParseOrder: %v", err)
	}
	want := PrecedenceOrder{templates.Succession, templates.ChainResponse, templates.Precedence}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("got %v, want %v", order, want)
	}
	if order.String() != "succession,chain_response,precedence" {
		t.Errorf("String() = %q", order.String())
	}

	for _, bad := range []string{"response,response", "init", "nonsense"} {
		if _, err := ParseOrder(bad); err == nil {
			t.Errorf("ParseOrder(%q): expected error", bad)
		}
	}
}

// TestUnreachableElements verifies that a cycle nobody can enter yields no
// relations and no error.
func TestUnreachableElements(t *testing.T) {
	d := new(diagram).start("s").task("a", "A").end("e").
		task("u", "U").task("v", "V")
	d.seq("s", "a", "e").seq("u", "v", "u")
	out := mustCompile(t, d.build(t), Options{Transitivity: true})

	for _, c := range out {
		for _, act := range c.Activities {
			if act == "U" || act == "V" {
				t.Errorf("unreachable activity in %s", c.Declare)
			}
		}
	}
	if !has(out, templates.Init, "A") || !has(out, templates.End, "A") {
		t.Errorf("unexpected output %q", declares(out))
	}
}

// TestEmptyProcess verifies that a diagram without activities compiles to
// an empty, non-nil result.
func TestEmptyProcess(t *testing.T) {
	d := new(diagram).start("s").end("e")
	d.seq("s", "e")
	out := mustCompile(t, d.build(t), Options{})
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}

// TestDanglingReference verifies that a broken diagram never reaches the
// compiler as a silent empty result.
func TestDanglingReference(t *testing.T) {
	_, err := bpmn.ParseFile(filepath.Join("..", "bpmn", "testdata", "dangling.bpmn"))
	if !errors.Is(err, bpmn.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error %q does not name the missing id", err)
	}
}

func TestCompileNilGraph(t *testing.T) {
	if _, err := Compile(nil, Options{}); !errors.Is(err, ErrInternal) {
		t.Errorf("expected ErrInternal, got %v", err)
	}
}

// TestArityMismatchIsInternal verifies that a template misuse is reported as
// a compiler defect, not as a data error.
func TestArityMismatchIsInternal(t *testing.T) {
	_, err := NewConstraint(templates.Response, "A")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if !errors.Is(err, templates.ErrArityMismatch) {
		t.Errorf("expected ErrArityMismatch in chain, got %v", err)
	}
	if errors.Is(err, bpmn.ErrMalformedInput) {
		t.Error("arity mismatch must not look like a parse error")
	}
}

// TestFormsAgree verifies that the DECLARE and LTLf forms of every emitted
// constraint describe the same relation.
func TestFormsAgree(t *testing.T) {
	for _, name := range []string{"sequence.bpmn", "exclusive.bpmn", "parallel.bpmn", "boundary.bpmn", "reminder.bpmn"} {
		t.Run(name, func(t *testing.T) {
			for _, c := range mustCompile(t, fixture(t, name), Options{Transitivity: true}) {
				d, err := templates.ParseDescriptor(c.Declare)
				if err != nil {
					t.Fatalf("ParseDescriptor(%q): %v", c.Declare, err)
				}
				if d.Kind != c.Kind || !reflect.DeepEqual(d.Activities, c.Activities) {
					t.Errorf("descriptor %q disagrees with record %v %v", c.Declare, c.Kind, c.Activities)
				}
				want, err := templates.LTLf(c.Kind, c.Activities...)
				if err != nil {
					t.Fatalf("LTLf: %v", err)
				}
				if c.LTLf != want {
					t.Errorf("LTLf %q, want %q", c.LTLf, want)
				}
			}
		})
	}
}

// TestConstraintsHoldOnRuns verifies that every run of a diagram satisfies
// the formulas compiled from it. End is left out: it needs the weak next of
// the last position, which the trace evaluator does not model. Precedence is
// checked on the run directly, as its formula also fails a run where p
// occurs and s never does.
func TestConstraintsHoldOnRuns(t *testing.T) {
	tests := []struct {
		name string
		g    *bpmn.Graph
		runs [][]string
	}{
		{"sequence", fixture(t, "sequence.bpmn"), [][]string{{"Check order", "Ship goods"}}},
		{"parallel", fixture(t, "parallel.bpmn"), [][]string{
			{"Receive order", "Pack goods", "Send invoice", "Close order"},
			{"Receive order", "Send invoice", "Pack goods", "Close order"},
		}},
		{"loop", loopGraph(t), [][]string{{"A", "B"}, {"A", "B", "A", "B"}}},
		{"parallel branch", parallelBranchGraph(t), [][]string{
			{"A", "C", "B"},
			{"C", "A", "B"},
			{"A", "B", "C"},
		}},
		{"exclusive", fixture(t, "exclusive.bpmn"), [][]string{
			{"Review request", "Approved?", "Approve"},
			{"Review request", "Approved?", "Reject"},
		}},
		{"interrupting boundary", fixture(t, "boundary.bpmn"), [][]string{
			{"Charge card"},
			{"Charge card", "Payment timed out", "Notify customer"},
		}},
		{"non-interrupting boundary", fixture(t, "reminder.bpmn"), [][]string{
			{"Approve invoice", "Pay invoice"},
			{"Approve invoice", "Reminder due", "Pay invoice", "Send reminder"},
			{"Approve invoice", "Reminder due", "Send reminder", "Pay invoice"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rels, err := Relations(tt.g, Options{Transitivity: true})
			if err != nil {
				t.Fatalf("Relations: %v", err)
			}
			for _, run := range tt.runs {
				trace := make(ltlftest.Trace, len(run))
				for i, label := range run {
					trace[i] = ltlf.Normalize(label)
				}
				for _, r := range rels {
					if r.Kind == templates.End {
						continue
					}
					if r.Kind == templates.Precedence {
						if !precededBy(run, r.Activities[0], r.Activities[1]) {
							t.Errorf("%s %v does not hold on %v", r.Kind, r.Activities, run)
						}
						continue
					}
					f, err := r.Formula()
					if err != nil {
						t.Fatalf("Formula: %v", err)
					}
					if !ltlftest.Holds(f, trace) {
						t.Errorf("%s %v does not hold on %v", r.Kind, r.Activities, run)
					}
				}
			}
		})
	}
}

// precededBy reports whether every occurrence of s in run comes after an
// occurrence of p.
func precededBy(run []string, p, s string) bool {
	seen := false
	for _, act := range run {
		switch act {
		case p:
			seen = true
		case s:
			if !seen {
				return false
			}
		}
	}
	return true
}

func TestConstraintJSON(t *testing.T) {
	c, err := NewConstraint(templates.CoExistence, "x", "y")
	if err != nil {
		t.Fatalf("NewConstraint: %v", err)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"template":"co_existence","activities":["x","y"],"DECLARE":"Co-Existence[x, y] | | |","LTLf":"(F(x) & F(y))"}`
	if string(raw) != want {
		t.Errorf("got %s\nwant %s", raw, want)
	}

	var back CompiledConstraint
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, c) {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestFormat(t *testing.T) {
	for in, want := range map[string]Format{"DECLARE": FormatDeclare, "declare": FormatDeclare, "LTLf": FormatLTLf, "ltlf": FormatLTLf} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}

	c, _ := NewConstraint(templates.Init, "A")
	if c.Text(FormatLTLf) != "A" || c.Text(FormatDeclare) != "Init[A] | |" {
		t.Errorf("Text: %q / %q", c.Text(FormatLTLf), c.Text(FormatDeclare))
	}
}

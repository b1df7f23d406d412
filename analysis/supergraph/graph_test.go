// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package supergraph

import (
	"strings"
	"testing"
)

// buildExample returns main calling f twice, and f with an unreachable node
func buildExample(t *testing.T) *Graph {
	t.Helper()
	b := NewBuilder()
	main := b.Procedure("main")
	f := b.Procedure("f")
	c1 := b.Node(main, "c1", Call)
	r1 := b.Node(main, "r1", ReturnSite)
	c2 := b.Node(main, "c2", Call)
	r2 := b.Node(main, "r2", ReturnSite)
	b.Edge(main.Entry, c1)
	b.Call(c1, f, r1)
	b.Edge(r1, c2)
	b.Call(c2, f, r2)
	b.Edge(r2, main.Exit)

	n := b.Node(f, "n", Normal)
	dead := b.Node(f, "dead", Normal)
	b.Edge(f.Entry, n)
	b.Edge(n, f.Exit)
	b.Edge(dead, f.Exit)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	return g
}

func names(nodes []*Node) string {
	var s []string
	for _, n := range nodes {
		s = append(s, n.String())
	}
	return strings.Join(s, " ")
}

func TestGraphStructure(t *testing.T) {
	g := buildExample(t)
	if got := names(g.Nodes()); got != "main.entry main.c1 main.r1 main.c2 main.r2 main.exit f.entry f.n f.dead f.exit" {
		t.Errorf("unexpected node order %s", got)
	}
	c1 := g.Lookup("main.c1")
	fExit := g.Lookup("f.exit")
	if c1 == nil || fExit == nil {
		t.Fatalf("lookup failed")
	}
	if got := names(g.Succs(c1)); got != "f.entry" {
		t.Errorf("successors of a call should be the callee entries, got %s", got)
	}
	if got := names(g.IntraSuccs(c1)); got != "main.r1" {
		t.Errorf("intra successors of a call should be its return sites, got %s", got)
	}
	if got := names(g.Succs(fExit)); got != "main.r1 main.r2" {
		t.Errorf("successors of an exit should be the return sites of its callers, got %s", got)
	}
	if got := names(g.Preds(g.Lookup("f.entry"))); got != "main.c1 main.c2" {
		t.Errorf("unexpected predecessors of f.entry: %s", got)
	}
	if len(g.CallSites(g.Procedure("f"))) != 2 {
		t.Errorf("f should have two call sites")
	}
	if !g.IsCall(c1) || !g.IsExit(fExit) || !g.IsReturnSite(g.Lookup("main.r1")) || !g.IsEntry(g.Lookup("f.entry")) {
		t.Errorf("unexpected node kinds")
	}
	if g.FakeEntry(c1) != g.Procedure("main").Fake || g.FakeEntry(c1).Kind != FakeEntry {
		t.Errorf("unexpected fake entry")
	}
	if g.Lookup("main.nothing") != nil || g.Lookup("nothing") != nil {
		t.Errorf("lookup of missing nodes should return nil")
	}
}

func TestUnreachableAndReaches(t *testing.T) {
	g := buildExample(t)
	if got := names(g.Unreachable()); got != "f.dead" {
		t.Errorf("expected f.dead to be unreachable, got %q", got)
	}
	if !g.Reaches(g.Lookup("main.entry"), g.Lookup("f.n")) {
		t.Errorf("f.n should be reachable from main.entry")
	}
	if g.Reaches(g.Lookup("main.entry"), g.Lookup("f.dead")) {
		t.Errorf("f.dead should not be reachable from main.entry")
	}
	if g.Directed().Nodes().Len() != len(g.Nodes()) {
		t.Errorf("the flow graph should have every node")
	}
}

func TestRecursiveCallIsNotIntra(t *testing.T) {
	b := NewBuilder()
	f := b.Procedure("f")
	c := b.Node(f, "c", Call)
	r := b.Node(f, "r", ReturnSite)
	b.Edge(f.Entry, f.Exit)
	b.Call(c, f, r)
	b.Edge(r, f.Exit)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	// r is only reached by the return edge of the recursive call
	if got := names(g.Unreachable()); got != "f.c f.r" {
		t.Errorf("unexpected unreachable nodes %q", got)
	}
}

func TestBuildErrors(t *testing.T) {
	b := NewBuilder()
	p := b.Procedure("p")
	q := b.Procedure("q")
	n := b.Node(p, "n", Normal)
	c := b.Node(p, "c", Call)
	b.Node(q, "m", ReturnSite)
	if b.Node(p, "n", Normal) != nil {
		t.Errorf("duplicate node should not be created")
	}
	if b.Node(p, "x", Entry) != nil {
		t.Errorf("entry nodes cannot be added")
	}
	b.Edge(n, q.Exit)
	b.Edge(c, n)
	b.Edge(p.Exit, n)
	b.Call(n, q, p.Exit)
	_, err := b.Build()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, msg := range []string{
		"duplicate node p.n",
		"cannot add node p.x of kind entry",
		"crosses procedures",
		"starts at a call node",
		"starts at an exit node",
		"p.n is not a call node",
		"call node p.c has no return site",
	} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("expected error %q in %v", msg, err)
		}
	}
	if _, err := b.Build(); err == nil {
		t.Errorf("a builder can only build once")
	}
}

func TestParseNodeKind(t *testing.T) {
	for s, k := range map[string]NodeKind{"": Normal, "call": Call, "Return": ReturnSite, "normal": Normal} {
		got, err := ParseNodeKind(s)
		if err != nil || got != k {
			t.Errorf("ParseNodeKind(%q) = %v, %v; expected %v", s, got, err, k)
		}
	}
	if _, err := ParseNodeKind("jump"); err == nil {
		t.Errorf("expected an error for an unknown kind")
	}
}

func TestRenderDOT(t *testing.T) {
	g := buildExample(t)
	b, err := RenderDOT(g, "example", func(n *Node) string {
		if n.Name == "n" {
			return "{x}"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("failed to render: %v", err)
	}
	out := string(b)
	for _, s := range []string{
		"digraph example {",
		`"main.c1" -> "f.entry"`,
		`"main.c1" -> "main.r1"`,
		`label="f.n\n{x}"`,
		"style=dashed",
		"shape=box",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in the output:\n%s", s, out)
		}
	}
}

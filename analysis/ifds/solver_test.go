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

package ifds

import (
	"errors"
	"testing"
)

const (
	factA Fact = 1
	factB Fact = 2
	factC Fact = 3
)

func chainProblem() *testProblem {
	g := newTestGraph()
	g.proc("main", "n0", "n1", "n2", "n3")
	g.chain("n0", "n1", "n2", "n3")
	p := &testProblem{graph: g, flows: newTestFlows()}
	p.seeds = []PathEdge[string]{p.entrySeed("main", factA)}
	return p
}

func TestStraightLineChain(t *testing.T) {
	p := chainProblem()
	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !res.Complete {
		t.Fatalf("expected a complete result")
	}
	for _, n := range []string{"n0", "n1", "n2", "n3"} {
		if facts := res.FactsAt(n); !factsEqual(facts, []Fact{factA}) {
			t.Errorf("facts at %s: expected [%v], got %v", n, factA, facts)
		}
	}
	if res.IsReachable("n3", Zero) {
		t.Errorf("Zero should not reach n3 without a seed")
	}
	if len(res.ReachedNodes()) != 4 {
		t.Errorf("expected 4 reached nodes, got %v", res.ReachedNodes())
	}
	if st := res.Stats(); st.PathEdges != 4 || st.Seeds != 1 || st.Iterations != 4 {
		t.Errorf("unexpected stats %+v", st)
	}
	edges := res.PathEdgesTo("n2")
	if len(edges) != 1 || edges[0] != NewPathEdge("n0", factA, "n2", factA) {
		t.Errorf("unexpected path edges to n2: %v", edges)
	}
}

// callKillProblem is a caller calling a callee whose only instruction kills every fact
func callKillProblem() *testProblem {
	g := newTestGraph()
	g.proc("callee", "ee", "k", "ex")
	g.chain("ee", "k", "ex")
	g.proc("caller", "ce", "c", "r", "cx")
	g.edge("ce", "c")
	g.edge("r", "cx")
	g.call("c", "callee", "r")

	f := newTestFlows()
	f.normal[[2]string{"ee", "k"}] = KillAll()
	p := &testProblem{graph: g, flows: f}
	p.seeds = []PathEdge[string]{p.entrySeed("caller", factB)}
	return p
}

func TestCallReturnWithKill(t *testing.T) {
	p := callKillProblem()
	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for _, n := range []string{"ce", "c", "r", "cx"} {
		if !res.IsReachable(n, factB) {
			t.Errorf("factB should reach %s", n)
		}
	}
	for _, n := range []string{"k", "ex"} {
		if facts := res.FactsAt(n); len(facts) > 0 {
			t.Errorf("no fact should reach %s inside the callee, got %v", n, facts)
		}
	}
	if sums := res.SummariesAt("c"); len(sums) != 0 {
		t.Errorf("the callee kills everything, expected no summary at c, got %v", sums)
	}
	if res.Stats().Summaries != 0 {
		t.Errorf("expected no summary edge, got %d", res.Stats().Summaries)
	}
}

func TestCallReturnThroughSummary(t *testing.T) {
	g := newTestGraph()
	g.proc("id", "ie", "i1", "ix")
	g.chain("ie", "i1", "ix")
	g.proc("main", "me", "c1", "r1", "c2", "r2", "mx")
	g.edge("me", "c1")
	g.edge("r1", "c2")
	g.edge("r2", "mx")
	g.call("c1", "id", "r1")
	g.call("c2", "id", "r2")

	f := newTestFlows()
	// the callee turns A into B and B into C; the caller's own facts are killed across the calls
	f.normal[[2]string{"ie", "i1"}] = Mapping(map[Fact][]Fact{factA: {factB}, factB: {factC}}, false)
	f.callToRet[[2]string{"c1", "r1"}] = KillAll()
	f.callToRet[[2]string{"c2", "r2"}] = KillAll()
	// the second call only returns what the callee computed from B
	f.ret[[3]string{"c2", "ix", "r2"}] = Binary(func(callFact, exitFact Fact) []Fact {
		if callFact == factB {
			return []Fact{exitFact}
		}
		return nil
	})
	p := &testProblem{graph: g, flows: f}
	p.seeds = []PathEdge[string]{p.entrySeed("main", factA)}

	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if facts := res.FactsAt("r1"); !factsEqual(facts, []Fact{factB}) {
		t.Errorf("facts at r1: expected [%v], got %v", factB, facts)
	}
	if facts := res.FactsAt("mx"); !factsEqual(facts, []Fact{factC}) {
		t.Errorf("facts at mx: expected [%v], got %v", factC, facts)
	}
	sums := res.SummariesAt("c1")
	if len(sums) != 1 || sums[0] != (Summary[string]{CallFact: factA, ReturnSite: "r1", ReturnFact: factB}) {
		t.Errorf("unexpected summaries at c1: %v", sums)
	}
	sums = res.SummariesAt("c2")
	if len(sums) != 1 || sums[0] != (Summary[string]{CallFact: factB, ReturnSite: "r2", ReturnFact: factC}) {
		t.Errorf("unexpected summaries at c2: %v", sums)
	}
	if res.Stats().Summaries != 2 {
		t.Errorf("expected summaries for A and B at the exit of id, got %d", res.Stats().Summaries)
	}
}

func TestCallWithoutCallee(t *testing.T) {
	g := newTestGraph()
	g.proc("main", "me", "c", "r", "mx")
	g.edge("me", "c")
	g.edge("r", "mx")
	g.call("c", "", "r")
	f := newTestFlows()
	f.callToRet[[2]string{"c", "r"}] = KillAll()
	f.noneToRet[[2]string{"c", "r"}] = Gen(factC)
	p := &testProblem{graph: g, flows: f}
	p.seeds = []PathEdge[string]{p.entrySeed("main", Zero)}

	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if facts := res.FactsAt("mx"); !factsEqual(facts, []Fact{Zero, factC}) {
		t.Errorf("facts at mx: expected [0 %v], got %v", factC, facts)
	}
}

func TestExitThatIsAlsoACall(t *testing.T) {
	g := newTestGraph()
	g.proc("z", "ze", "zx")
	g.chain("ze", "zx")
	// the exit of q is a tail call of z
	g.proc("q", "qe", "qx")
	g.chain("qe", "qx")
	g.call("qx", "z", "qr")
	g.proc("main", "me", "c", "r", "mx")
	g.edge("me", "c")
	g.edge("r", "mx")
	g.call("c", "q", "r")
	f := newTestFlows()
	f.callToRet[[2]string{"c", "r"}] = KillAll()
	p := &testProblem{graph: g, flows: f}
	p.seeds = []PathEdge[string]{p.entrySeed("main", factA)}

	res := solveOrFail(t, p)
	for _, n := range []string{"ze", "zx", "qr"} {
		if facts := res.FactsAt(n); len(facts) > 0 {
			t.Errorf("exit qx must not be processed as a call, got %v at %s", facts, n)
		}
	}
	for _, n := range []string{"qx", "r", "mx"} {
		if facts := res.FactsAt(n); !factsEqual(facts, []Fact{factA}) {
			t.Errorf("facts at %s: expected [%v], got %v", n, factA, facts)
		}
	}
	sums := res.SummariesAt("c")
	if len(sums) != 1 || sums[0] != (Summary[string]{CallFact: factA, ReturnSite: "r", ReturnFact: factA}) {
		t.Errorf("unexpected summaries at c: %v", sums)
	}
}

func TestSeedingIdempotence(t *testing.T) {
	once := callKillProblem()
	twice := callKillProblem()
	twice.seeds = append(twice.seeds, twice.seeds[0])

	r1 := solveOrFail(t, once)
	s2, err := NewSolver[string, string](twice, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	if err := s2.AddSeed(twice.seeds[0]); err != nil {
		t.Fatalf("failed to add seed: %v", err)
	}
	r2, err := s2.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for _, n := range once.graph.Nodes() {
		if !factsEqual(r1.FactsAt(n), r2.FactsAt(n)) {
			t.Errorf("facts at %s differ: %v vs %v", n, r1.FactsAt(n), r2.FactsAt(n))
		}
	}
	if r1.Stats().PathEdges != r2.Stats().PathEdges {
		t.Errorf("path edge counts differ: %d vs %d", r1.Stats().PathEdges, r2.Stats().PathEdges)
	}
	if r2.Stats().Seeds != 3 {
		t.Errorf("expected 3 registered seeds, got %d", r2.Stats().Seeds)
	}
}

func TestSeedsAfterSolve(t *testing.T) {
	p := chainProblem()
	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	if _, err := s.Solve(NeverCancel); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if err := s.AddSeed(NewPathEdge("n0", factA, "n2", factB)); err != nil {
		t.Fatalf("failed to add seed: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !factsEqual(res.FactsAt("n3"), []Fact{factA, factB}) {
		t.Errorf("facts at n3: expected [%v %v], got %v", factA, factB, res.FactsAt("n3"))
	}
	if !factsEqual(res.FactsAt("n1"), []Fact{factA}) {
		t.Errorf("facts at n1: expected [%v], got %v", factA, res.FactsAt("n1"))
	}
	if res.Stats().Seeds != 2 {
		t.Errorf("initial seeds must be registered once, got %d seeds", res.Stats().Seeds)
	}
}

func TestCancelAndResume(t *testing.T) {
	p := callKillProblem()
	full := solveOrFail(t, p)

	s, err := NewSolver[string, string](callKillProblem(), Options{Worklist: LIFO, CheckEvery: 2})
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	calls := 0
	monitor := MonitorFunc(func() bool {
		calls++
		return calls > 1
	})
	res, err := s.Solve(monitor)
	if err != nil {
		t.Fatalf("cancelled solve should not fail: %v", err)
	}
	if res.Complete {
		t.Fatalf("expected an incomplete result")
	}
	if res.Stats().Iterations != 2 {
		t.Errorf("expected the solver to stop after 2 iterations, got %d", res.Stats().Iterations)
	}
	for _, n := range p.graph.Nodes() {
		for _, d := range res.FactsAt(n) {
			if !full.IsReachable(n, d) {
				t.Errorf("partial result has %v at %s, which the fixed point does not have", d, n)
			}
		}
	}
	res, err = s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("resumed solve failed: %v", err)
	}
	if !res.Complete {
		t.Fatalf("expected the resumed solve to complete")
	}
	for _, n := range p.graph.Nodes() {
		if !factsEqual(res.FactsAt(n), full.FactsAt(n)) {
			t.Errorf("facts at %s: expected %v, got %v", n, full.FactsAt(n), res.FactsAt(n))
		}
	}
}

func TestContractViolations(t *testing.T) {
	if _, err := NewSolver[string, string](nil, DefaultOptions()); !isViolation(err) {
		t.Errorf("nil problem: expected a contract violation, got %v", err)
	}
	if _, err := NewSolver[string, string](chainProblem(), Options{Worklist: "random"}); err == nil || isViolation(err) {
		t.Errorf("unknown worklist: expected an option error, got %v", err)
	}

	binaryNormal := chainProblem()
	binaryNormal.flows.normal[[2]string{"n1", "n2"}] = Binary(func(a, b Fact) []Fact { return []Fact{a} })
	s, err := NewSolver[string, string](binaryNormal, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if !isViolation(err) {
		t.Fatalf("binary normal flow function: expected a contract violation, got %v", err)
	}
	if res == nil || res.Complete {
		t.Errorf("a failed solve must return an incomplete result")
	}
	if s.Err() != err {
		t.Errorf("the violation must be kept by the solver, got %v", s.Err())
	}
	if _, err2 := s.Solve(NeverCancel); err2 != err {
		t.Errorf("a failed solver must keep returning its error, got %v", err2)
	}
	if err2 := s.AddSeed(NewPathEdge("n0", Zero, "n0", Zero)); err2 != err {
		t.Errorf("a failed solver must reject seeds, got %v", err2)
	}

	outOfBounds := chainProblem()
	outOfBounds.flows.normal[[2]string{"n2", "n3"}] = Mapping(map[Fact][]Fact{factA: {Fact(10)}}, true)
	opts := DefaultOptions()
	opts.FactBound = 4
	s, err = NewSolver[string, string](outOfBounds, opts)
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	if _, err := s.Solve(NeverCancel); !isViolation(err) {
		t.Errorf("fact outside of the universe: expected a contract violation, got %v", err)
	}
}

func TestObserverSeesEachEdgeOnce(t *testing.T) {
	p := callKillProblem()
	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	obs := newCountingObserver()
	s.SetObserver(obs)
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if len(obs.edges) != res.Stats().PathEdges {
		t.Errorf("observer saw %d edges, solver counted %d", len(obs.edges), res.Stats().PathEdges)
	}
	for e, n := range obs.edges {
		if n != 1 {
			t.Errorf("edge %s reported %d times", e, n)
		}
		if !res.HasPathEdge(e) {
			t.Errorf("reported edge %s is not in the result", e)
		}
	}
}

func solveOrFail(t *testing.T, p *testProblem) *Result[string, string] {
	t.Helper()
	s, err := NewSolver[string, string](p, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	res, err := s.Solve(NeverCancel)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	return res
}

func isViolation(err error) bool {
	var cv *ContractViolation
	return errors.As(err, &cv)
}

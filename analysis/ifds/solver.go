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
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// Stats counts the work done by a solver.
type Stats struct {
	// Iterations is the number of path edges processed
	Iterations int
	// PathEdges is the number of path edges discovered
	PathEdges int
	// Summaries is the number of distinct summary edges applied at call sites, as reported by
	// Result.SummariesAt. Exit facts of procedures that no call entered are not counted.
	Summaries int
	// Seeds is the number of seeds registered, duplicates included
	Seeds int
	// UnbalancedSeeds is the number of distinct seeds created by unbalanced returns
	UnbalancedSeeds int
}

// extension is implemented by solvers that extend the tabulation algorithm
type extension[N comparable] interface {
	// seedAdded is called before a seed is propagated
	seedAdded(seed PathEdge[N])
	// propagated is called after a new path edge has been recorded and enqueued
	propagated(e PathEdge[N])
}

// Solver is the tabulation solver. It owns its path edges, summaries and worklist; a solver must only be used
// by one goroutine at a time. Solvers for different queries can share the same problem.
type Solver[N comparable, P comparable] struct {
	problem  Problem[N, P]
	graph    Supergraph[N, P]
	flows    FlowFunctionMap[N]
	opts     Options
	worklist Worklist[N]
	observer Observer[N]
	ext      extension[N]

	// pathEdges maps <n, j> to the set of <s_p, i> such that <s_p, i> -> <n, j> has been discovered
	pathEdges map[nodeFact[N]]map[nodeFact[N]]bool

	// reached maps each node to the facts reaching it
	reached map[N]*intsets.Sparse

	// summaries maps a callee context <s_p, d1> to the <exit, d2> it reaches
	summaries map[nodeFact[N]]map[nodeFact[N]]bool

	// callFlows maps a callee context <s_p, d3> to the <call, d4> from which it was entered
	callFlows map[nodeFact[N]]map[nodeFact[N]]bool

	// callSummaries maps each call node to the summary edges applied at that call
	callSummaries map[N]map[Summary[N]]bool

	initialized bool
	stats       Stats

	// err is set once a contract violation has been detected; the solver is unusable afterwards
	err error
}

// NewSolver returns a solver for the problem. The initial seeds of the problem are registered by the first
// call to Solve.
func NewSolver[N comparable, P comparable](problem Problem[N, P], opts Options) (*Solver[N, P], error) {
	if problem == nil {
		return nil, violation("new solver", "nil problem")
	}
	s := &Solver[N, P]{
		problem:       problem,
		graph:         problem.Supergraph(),
		flows:         problem.FlowFunctions(),
		opts:          opts,
		pathEdges:     map[nodeFact[N]]map[nodeFact[N]]bool{},
		reached:       map[N]*intsets.Sparse{},
		summaries:     map[nodeFact[N]]map[nodeFact[N]]bool{},
		callFlows:     map[nodeFact[N]]map[nodeFact[N]]bool{},
		callSummaries: map[N]map[Summary[N]]bool{},
	}
	if s.graph == nil {
		return nil, violation("new solver", "problem has no supergraph")
	}
	if s.flows == nil {
		return nil, violation("new solver", "problem has no flow functions")
	}
	wl, err := NewWorklist[N](opts.Worklist)
	if err != nil {
		return nil, fmt.Errorf("invalid solver options: %w", err)
	}
	s.worklist = wl
	return s, nil
}

// SetObserver sets the observer notified of the solver's events. A nil observer disables notifications.
func (s *Solver[N, P]) SetObserver(o Observer[N]) {
	s.observer = o
}

// Supergraph returns the supergraph of the problem being solved.
func (s *Solver[N, P]) Supergraph() Supergraph[N, P] {
	return s.graph
}

// Err returns the contract violation that stopped the solver, if any.
func (s *Solver[N, P]) Err() error {
	return s.err
}

// AddSeed registers seed as a path edge that holds without justification. Seeds can be added before or
// between calls to Solve; adding the same seed twice has no effect on the result.
func (s *Solver[N, P]) AddSeed(seed PathEdge[N]) (err error) {
	if s.err != nil {
		return s.err
	}
	defer s.recoverViolation(&err)
	s.addSeed(seed)
	return nil
}

func (s *Solver[N, P]) addSeed(seed PathEdge[N]) {
	s.stats.Seeds++
	if s.ext != nil {
		s.ext.seedAdded(seed)
	}
	s.propagate(seed)
}

// Solve runs the tabulation algorithm until the worklist is empty or the monitor requests cancellation.
//
// The returned result is complete if the fixed point has been reached. A cancelled solve leaves the solver
// in a consistent state: its result is a subset of the fixed point and calling Solve again continues the
// computation. A contract violation stops the solve immediately and is returned as a *ContractViolation.
func (s *Solver[N, P]) Solve(monitor Monitor) (res *Result[N, P], err error) {
	if s.err != nil {
		return s.result(false), s.err
	}
	if monitor == nil {
		monitor = NeverCancel
	}
	defer func() {
		if err != nil {
			res = s.result(false)
		}
	}()
	defer s.recoverViolation(&err)

	if !s.initialized {
		s.initialized = true
		for _, seed := range s.problem.InitialSeeds() {
			s.addSeed(seed)
		}
	}

	every := s.opts.checkEvery()
	for n := 0; s.worklist.Len() > 0; n++ {
		if n%every == 0 && monitor.Canceled() {
			return s.result(false), nil
		}
		edge := s.worklist.Pop()
		s.stats.Iterations++
		s.process(edge)
	}
	return s.result(true), nil
}

func (s *Solver[N, P]) result(complete bool) *Result[N, P] {
	return &Result[N, P]{solver: s, Complete: complete}
}

// process dispatches on the kind of the target node of the path edge
func (s *Solver[N, P]) process(e PathEdge[N]) {
	switch {
	case s.graph.IsExit(e.Target):
		s.processExit(e)
	case s.graph.IsCall(e.Target):
		s.processCall(e)
	default:
		s.processNormal(e)
	}
}

// processNormal propagates <s_p, d1> -> <n, d2> along every intra-procedural edge n -> m
func (s *Solver[N, P]) processNormal(e PathEdge[N]) {
	for _, m := range s.graph.Succs(e.Target) {
		f := s.flows.Normal(e.Target, m)
		for _, d3 := range s.applyUnary("normal flow", f, e.D2) {
			s.propagate(NewPathEdge(e.Entry, e.D1, m, d3))
		}
	}
}

// processCall handles <s_p, d1> -> <call, d2>: the facts entering each callee are seeded at the callee's
// entry, the summaries already known for those entries are applied, and the facts bypassing the callees flow
// to the return sites.
func (s *Solver[N, P]) processCall(e PathEdge[N]) {
	call := e.Target
	callees := s.graph.Callees(call)
	returnSites := s.graph.ReturnSites(call)
	for _, calleeEntry := range callees {
		f := s.flows.Call(call, calleeEntry)
		for _, d3 := range s.applyUnary("call flow", f, e.D2) {
			ctx := nodeFact[N]{node: calleeEntry, fact: d3}
			addTo(s.callFlows, ctx, e.target())
			s.propagate(NewPathEdge(calleeEntry, d3, calleeEntry, d3))

			for exit := range s.summaries[ctx] {
				for _, retSite := range returnSites {
					for _, d5 := range s.returnTargets(call, exit.node, retSite, e.D2, exit.fact) {
						s.recordCallSummary(call, e.D2, retSite, d5)
						s.propagate(NewPathEdge(e.Entry, e.D1, retSite, d5))
					}
				}
			}
		}
	}

	for _, retSite := range returnSites {
		var f FlowFunction
		if len(callees) == 0 {
			f = s.flows.CallNoneToReturn(call, retSite)
		} else {
			f = s.flows.CallToReturn(call, retSite)
		}
		for _, d3 := range s.applyUnary("call-to-return flow", f, e.D2) {
			s.propagate(NewPathEdge(e.Entry, e.D1, retSite, d3))
		}
	}
}

// processExit handles <s_p, d1> -> <exit, d2>: it records the summary edge and returns d2 to the return sites
// of every call that entered the procedure with d1, in each context that reached that call.
func (s *Solver[N, P]) processExit(e PathEdge[N]) {
	ctx := e.source()
	if addTo(s.summaries, ctx, e.target()) {
		if s.observer != nil {
			s.observer.SummaryAdded(e.Entry, e.D1, e.Target, e.D2)
		}
	}

	for callSite := range s.callFlows[ctx] {
		call := callSite.node
		for _, retSite := range s.graph.ReturnSites(call) {
			for _, d5 := range s.returnTargets(call, e.Target, retSite, callSite.fact, e.D2) {
				s.recordCallSummary(call, callSite.fact, retSite, d5)
				for caller := range s.pathEdges[callSite] {
					s.propagate(NewPathEdge(caller.node, caller.fact, retSite, d5))
				}
			}
		}
	}
}

// returnTargets applies the return flow function of call -> exit -> retSite
func (s *Solver[N, P]) returnTargets(call N, exit N, retSite N, callFact Fact, exitFact Fact) []Fact {
	f := s.flows.Return(call, exit, retSite)
	switch f.Kind() {
	case UnaryFlow:
		return s.checkFacts("return flow", f.unary(exitFact))
	case BinaryFlow:
		return s.checkFacts("return flow", f.binary(callFact, exitFact))
	default:
		panic(violation("return flow", "no flow function from %v to %v", exit, retSite))
	}
}

func (s *Solver[N, P]) recordCallSummary(call N, callFact Fact, retSite N, retFact Fact) {
	m := s.callSummaries[call]
	if m == nil {
		m = map[Summary[N]]bool{}
		s.callSummaries[call] = m
	}
	sum := Summary[N]{CallFact: callFact, ReturnSite: retSite, ReturnFact: retFact}
	if !m[sum] {
		m[sum] = true
		s.stats.Summaries++
	}
}

// applyUnary applies f to d, checking that f is unary and that the facts it returns are in the universe
func (s *Solver[N, P]) applyUnary(op string, f FlowFunction, d Fact) []Fact {
	if f.Kind() != UnaryFlow {
		panic(violation(op, "expected a unary flow function, got %s", f.Kind()))
	}
	return s.checkFacts(op, f.unary(d))
}

func (s *Solver[N, P]) checkFacts(op string, facts []Fact) []Fact {
	for _, d := range facts {
		if d < Zero || (s.opts.FactBound > 0 && int(d) >= s.opts.FactBound) {
			panic(violation(op, "fact %d is outside of the fact universe [0, %d)", d, s.opts.FactBound))
		}
	}
	return facts
}

// propagate is the only place where path edges are recorded. A new path edge is added to the worklist and
// reported to the extension; a known path edge is ignored.
func (s *Solver[N, P]) propagate(e PathEdge[N]) {
	if !addTo(s.pathEdges, e.target(), e.source()) {
		return
	}
	facts := s.reached[e.Target]
	if facts == nil {
		facts = &intsets.Sparse{}
		s.reached[e.Target] = facts
	}
	facts.Insert(int(e.D2))
	s.stats.PathEdges++
	s.worklist.Push(e)
	if s.observer != nil {
		s.observer.PathEdgeAdded(e)
	}
	if s.ext != nil {
		s.ext.propagated(e)
	}
}

// hasPathEdge returns true if e has been discovered
func (s *Solver[N, P]) hasPathEdge(e PathEdge[N]) bool {
	return s.pathEdges[e.target()][e.source()]
}

// addTo adds y to the set m[x] and returns true if it was not already present
func addTo[N comparable](m map[nodeFact[N]]map[nodeFact[N]]bool, x nodeFact[N], y nodeFact[N]) bool {
	set := m[x]
	if set == nil {
		set = map[nodeFact[N]]bool{}
		m[x] = set
	}
	if set[y] {
		return false
	}
	set[y] = true
	return true
}

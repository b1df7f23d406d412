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

import "fmt"

// PartiallyBalancedSolver is a Solver for demand-driven problems: seeds can be registered at any node, and the
// facts reaching the exit of a seeded procedure flow to the return sites of all its callers, even though the
// calls were never analyzed. Each fact returned that way becomes a new seed, which can in turn exit its own
// procedure.
type PartiallyBalancedSolver[N comparable, P comparable] struct {
	*Solver[N, P]

	problem PartiallyBalancedProblem[N, P]
	flows   PartialFlowFunctionMap[N]
	policy  UnbalancedExitPolicy

	// seedProcedures is the set of procedures in which some seed has been registered
	seedProcedures map[P]bool

	// anchors is the set of sources <entry, d> of the seeds
	anchors map[nodeFact[N]]bool
}

// NewPartiallyBalancedSolver returns a solver for the partially balanced problem. The flow functions returned
// by problem.PartialFlowFunctions are used for every edge.
func NewPartiallyBalancedSolver[N comparable, P comparable](problem PartiallyBalancedProblem[N, P],
	opts Options) (*PartiallyBalancedSolver[N, P], error) {
	if problem == nil {
		return nil, violation("new solver", "nil problem")
	}
	flows := problem.PartialFlowFunctions()
	if flows == nil {
		return nil, violation("new solver", "problem has no partial flow functions")
	}
	switch opts.UnbalancedExits {
	case "":
		opts.UnbalancedExits = UnbalancedExitsAnchor
	case UnbalancedExitsAnchor, UnbalancedExitsProcedure:
	default:
		return nil, fmt.Errorf("invalid solver options: unknown unbalanced exit policy %q", opts.UnbalancedExits)
	}
	base, err := NewSolver[N, P](problem, opts)
	if err != nil {
		return nil, err
	}
	base.flows = flows
	s := &PartiallyBalancedSolver[N, P]{
		Solver:         base,
		problem:        problem,
		flows:          flows,
		policy:         opts.UnbalancedExits,
		seedProcedures: map[P]bool{},
		anchors:        map[nodeFact[N]]bool{},
	}
	base.ext = s
	return s, nil
}

// AddSeedAt registers the fact d at node n, anchored at the fake entry of n.
func (s *PartiallyBalancedSolver[N, P]) AddSeedAt(n N, d Fact) error {
	return s.AddSeed(NewPathEdge(s.problem.FakeEntry(n), d, n, d))
}

// IsSeedProcedure returns true if a seed has been registered in p, directly or through an unbalanced return.
func (s *PartiallyBalancedSolver[N, P]) IsSeedProcedure(p P) bool {
	return s.seedProcedures[p]
}

// seedAdded records the procedure and the anchor of the seed. Path edges that already reach an exit of the
// procedure and now qualify for unbalanced returns are handled immediately.
func (s *PartiallyBalancedSolver[N, P]) seedAdded(seed PathEdge[N]) {
	proc := s.graph.ProcOf(seed.Target)
	anchor := seed.source()
	newProc := !s.seedProcedures[proc]
	newAnchor := !s.anchors[anchor]
	s.seedProcedures[proc] = true
	s.anchors[anchor] = true

	var rescan func(src nodeFact[N]) bool
	switch {
	case s.policy == UnbalancedExitsProcedure && newProc:
		rescan = func(nodeFact[N]) bool { return true }
	case s.policy == UnbalancedExitsAnchor && newAnchor:
		rescan = func(src nodeFact[N]) bool { return src == anchor }
	default:
		return
	}
	var pending []PathEdge[N]
	for _, exit := range s.graph.ExitsOf(proc) {
		for _, d2 := range factsOf(s.reached[exit]) {
			for src := range s.pathEdges[nodeFact[N]{node: exit, fact: d2}] {
				if rescan(src) {
					pending = append(pending, NewPathEdge(src.node, src.fact, exit, d2))
				}
			}
		}
	}
	for _, e := range pending {
		s.returnUnbalanced(e)
	}
}

// propagated triggers unbalanced returns for new path edges reaching an exit
func (s *PartiallyBalancedSolver[N, P]) propagated(e PathEdge[N]) {
	if s.graph.IsExit(e.Target) && s.unbalanced(e) {
		s.returnUnbalanced(e)
	}
}

// unbalanced returns true if the path edge e, whose target is an exit, must flow to the callers of its
// procedure
func (s *PartiallyBalancedSolver[N, P]) unbalanced(e PathEdge[N]) bool {
	if !s.seedProcedures[s.graph.ProcOf(e.Target)] {
		return false
	}
	if s.policy == UnbalancedExitsProcedure {
		return true
	}
	return s.anchors[e.source()]
}

// returnUnbalanced seeds the facts returned by e at every return site following its exit
func (s *PartiallyBalancedSolver[N, P]) returnUnbalanced(e PathEdge[N]) {
	exit := e.Target
	for _, retSite := range s.graph.Succs(exit) {
		f := s.flows.UnbalancedReturn(exit, retSite)
		switch f.Kind() {
		case UnaryFlow:
		case BinaryFlow:
			panic(violation("unbalanced return",
				"flow function from %v to %v is binary; unbalanced returns must be unary", exit, retSite))
		default:
			panic(violation("unbalanced return", "no flow function from %v to %v", exit, retSite))
		}
		for _, d3 := range s.checkFacts("unbalanced return", f.unary(e.D2)) {
			seed := NewPathEdge(s.problem.FakeEntry(retSite), d3, retSite, d3)
			if s.hasPathEdge(seed) {
				continue
			}
			s.stats.UnbalancedSeeds++
			if s.observer != nil {
				s.observer.UnbalancedSeed(exit, seed)
			}
			s.addSeed(seed)
		}
	}
}

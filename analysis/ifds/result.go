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
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
)

// Result is the view of the facts computed by a solver. It reads the solver's state, so the answers it gives
// grow as the solver continues; a Result must not be read while its solver is running.
type Result[N comparable, P comparable] struct {
	solver *Solver[N, P]

	// Complete is true when the solve that produced the result reached the fixed point
	Complete bool
}

// FactsAt returns the facts reaching n, in increasing order.
func (r *Result[N, P]) FactsAt(n N) []Fact {
	return factsOf(r.solver.reached[n])
}

// FactSet returns a copy of the set of facts reaching n.
func (r *Result[N, P]) FactSet(n N) *intsets.Sparse {
	s := &intsets.Sparse{}
	if facts := r.solver.reached[n]; facts != nil {
		s.Copy(facts)
	}
	return s
}

// IsReachable returns true if the fact d reaches n.
func (r *Result[N, P]) IsReachable(n N, d Fact) bool {
	facts := r.solver.reached[n]
	return facts != nil && facts.Has(int(d))
}

// ReachedNodes returns the nodes of the supergraph reached by at least one fact, in the order of the
// supergraph's Nodes. Nodes reached only through fake entries are included as long as the supergraph lists them.
func (r *Result[N, P]) ReachedNodes() []N {
	var nodes []N
	for _, n := range r.solver.graph.Nodes() {
		if facts := r.solver.reached[n]; facts != nil && !facts.IsEmpty() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// PathEdgesTo returns the path edges whose target is n. Edges are ordered by target fact, then by source fact;
// edges with the same facts keep an unspecified order.
func (r *Result[N, P]) PathEdgesTo(n N) []PathEdge[N] {
	var edges []PathEdge[N]
	for _, d2 := range r.FactsAt(n) {
		for src := range r.solver.pathEdges[nodeFact[N]{node: n, fact: d2}] {
			edges = append(edges, NewPathEdge(src.node, src.fact, n, d2))
		}
	}
	slices.SortStableFunc(edges, func(a, b PathEdge[N]) bool {
		if a.D2 != b.D2 {
			return a.D2 < b.D2
		}
		return a.D1 < b.D1
	})
	return edges
}

// HasPathEdge returns true if the solver has discovered e.
func (r *Result[N, P]) HasPathEdge(e PathEdge[N]) bool {
	return r.solver.hasPathEdge(e)
}

// SummariesAt returns the summary edges applied at the call node, ordered by call fact then return fact.
func (r *Result[N, P]) SummariesAt(call N) []Summary[N] {
	var res []Summary[N]
	for s := range r.solver.callSummaries[call] {
		res = append(res, s)
	}
	slices.SortStableFunc(res, func(a, b Summary[N]) bool {
		if a.CallFact != b.CallFact {
			return a.CallFact < b.CallFact
		}
		return a.ReturnFact < b.ReturnFact
	})
	return res
}

// Stats returns the counters of the solver.
func (r *Result[N, P]) Stats() Stats {
	return r.solver.stats
}

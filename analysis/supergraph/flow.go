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
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// buildFlowGraph returns the gonum graph of all the control flow edges of g: intra-procedural edges, edges from
// call nodes to their return sites, call edges and return edges. Self loops are omitted.
func buildFlowGraph(g *Graph) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for _, n := range g.nodes {
		dg.AddNode(n)
	}
	setEdge := func(src, dst *Node) {
		if src != dst {
			dg.SetEdge(simple.Edge{F: src, T: dst})
		}
	}
	for _, n := range g.nodes {
		for _, m := range g.IntraSuccs(n) {
			setEdge(n, m)
		}
		if n.Kind == Call || n.Kind == Exit {
			for _, m := range g.succs[n] {
				setEdge(n, m)
			}
		}
	}
	return dg
}

// Directed returns a gonum view of the control flow of the graph. Its nodes are the *Node of the graph.
func (g *Graph) Directed() graph.Directed {
	return g.flow
}

// isIntra returns true if e does not leave the procedure of its origin
func isIntra(e graph.Edge) bool {
	src, dst := e.From().(*Node), e.To().(*Node)
	if src.Proc != dst.Proc {
		return false
	}
	// a recursive call or return stays in the procedure but is not an intra-procedural edge
	return !(src.Kind == Call && dst.Kind == Entry) && src.Kind != Exit
}

// Unreachable returns the nodes that cannot be reached from the entry of their procedure by intra-procedural
// edges. The solver never visits such nodes unless they are seeded directly.
func (g *Graph) Unreachable() []*Node {
	var unreachable []*Node
	for _, p := range g.procs {
		bf := traverse.BreadthFirst{Traverse: isIntra}
		bf.Walk(g.flow, p.Entry, nil)
		for _, n := range p.nodes {
			if !bf.Visited(n) {
				unreachable = append(unreachable, n)
			}
		}
	}
	return unreachable
}

// Reaches returns true if dst can be reached from src in the control flow of the graph, ignoring the matching
// of calls and returns.
func (g *Graph) Reaches(src, dst *Node) bool {
	if src == dst {
		return true
	}
	bf := traverse.BreadthFirst{}
	found := bf.Walk(g.flow, src, func(n graph.Node, _ int) bool { return n.ID() == dst.ID() })
	return found != nil
}

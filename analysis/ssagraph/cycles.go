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

package ssagraph

import (
	"github.com/awslabs/ar-go-ifds/internal/graphutil"
	"golang.org/x/tools/go/ssa"
)

// Components returns the strongly connected components of the call graph restricted to the functions of the
// supergraph. A component comes before the components that call it.
func (g *Graph) Components() [][]*ssa.Function { return g.sccs }

// RecursiveFunctions returns the functions that belong to a cycle of the call graph, in the order of Functions
func (g *Graph) RecursiveFunctions() []*ssa.Function {
	var res []*ssa.Function
	for _, f := range g.funcs {
		if g.recursive[f] {
			res = append(res, f)
		}
	}
	return res
}

// Cycles returns the elementary cycles of the call graph restricted to the recursive functions of the graph.
// A cycle lists each of its functions once. Direct recursion is not reported as a cycle.
//
// The number of elementary cycles can be exponential in the size of the graph.
func (g *Graph) Cycles() [][]*ssa.Function {
	var ids []int64
	for _, f := range g.RecursiveFunctions() {
		ids = append(ids, int64(g.cg.Nodes[f].ID))
	}
	var cycles [][]*ssa.Function
	for _, cycle := range graphutil.FindAllElementaryCycles(graphutil.Subgraph(g.view, ids)) {
		funcs := make([]*ssa.Function, 0, len(cycle)-1)
		for _, id := range cycle[:len(cycle)-1] {
			funcs = append(funcs, g.view.Function(id))
		}
		cycles = append(cycles, funcs)
	}
	return cycles
}

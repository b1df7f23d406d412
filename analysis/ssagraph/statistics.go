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

import "golang.org/x/tools/go/ssa"

// Statistics counts the elements of a supergraph
type Statistics struct {
	Functions          uint
	RecursiveFunctions uint
	Blocks             uint
	Instructions       uint
	Nodes              uint
	Calls              uint

	// UnresolvedCalls is the number of call nodes without callee in the supergraph
	UnresolvedCalls uint

	// Defers is the number of defer instructions. Their callees are entered at the defer site.
	Defers uint
}

// Statistics returns the statistics of the supergraph
func (g *Graph) Statistics() Statistics {
	s := Statistics{
		Functions:          uint(len(g.funcs)),
		RecursiveFunctions: uint(len(g.recursive)),
		Nodes:              uint(len(g.nodes)),
	}
	for _, f := range g.funcs {
		for _, b := range f.Blocks {
			s.Blocks++
			s.Instructions += uint(len(b.Instrs))
			for _, instr := range b.Instrs {
				if _, ok := instr.(*ssa.Defer); ok {
					s.Defers++
				}
			}
		}
	}
	for _, n := range g.nodes {
		if n.Kind != Call {
			continue
		}
		s.Calls++
		if len(g.callees[n]) == 0 {
			s.UnresolvedCalls++
		}
	}
	return s
}

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

package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// FindAllElementaryCycles finds all elementary cycles in the graph CGraph
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
// Each cycle starts and ends with its smallest node ID. Cycles are returned in increasing order of their
// smallest node ID. Self loops are not returned.
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	s := &circuits{}
	for start := 0; start < len(cg.Keys); {
		// the strongly connected components of the subgraph induced by the nodes with IDs >= Keys[start]
		fg := Subgraph(cg, cg.Keys[start:])
		least := int64(-1)
		for _, component := range graph.StrongComponents(fg) {
			if len(component) < 2 {
				continue
			}
			for _, id := range component {
				if least < 0 || int64(id) < least {
					least = int64(id)
				}
			}
		}
		if least < 0 {
			break
		}
		s.stack = nil
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(least, least, fg)
		start, _ = slices.BinarySearch(cg.Keys, least)
		start++
	}
	return s.cycles
}

type circuits struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *circuits) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *circuits) circuit(v int64, start int64, g CGraph) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range g.Edges[v] {
		if w == start {
			if len(s.stack) > 1 {
				s.cycles = append(s.cycles, append(slices.Clone(s.stack), w))
				found = true
			}
		} else if !s.blocked[w] && s.circuit(w, start, g) {
			found = true
		}
	}

	if found {
		s.unblock(v)
	} else {
		for _, w := range g.Edges[v] {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}

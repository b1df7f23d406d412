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
	"fmt"
	"math/rand"
	"testing"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type intGraph map[int][]int

func (m intGraph) nodes() []int {
	ks := maps.Keys(m)
	slices.Sort(ks)
	return ks
}

func (m intGraph) succs(k int) []int {
	return m[k]
}

// reaches returns true if y is reachable from x in one or more steps
func (m intGraph) reaches(x, y int) bool {
	visited := map[int]bool{}
	stack := slices.Clone(m[x])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == y {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, m[n]...)
	}
	return false
}

// checkComponents checks that sccs partitions the nodes of m into strongly connected sets, and that no component
// reaches a component listed after it.
func checkComponents(m intGraph, sccs [][]int) error {
	seen := map[int]bool{}
	for i, scc := range sccs {
		for _, x := range scc {
			if seen[x] {
				return fmt.Errorf("node %d in two components", x)
			}
			seen[x] = true
			for _, y := range scc {
				if x != y && !m.reaches(x, y) {
					return fmt.Errorf("%d does not reach %d in component %v", x, y, scc)
				}
			}
			for _, later := range sccs[i+1:] {
				for _, y := range later {
					if m.reaches(x, y) {
						return fmt.Errorf("%d reaches %d which comes later", x, y)
					}
				}
			}
		}
	}
	for n := range m {
		if !seen[n] {
			return fmt.Errorf("node %d in no component", n)
		}
	}
	return nil
}

func TestStronglyConnectedComponents(t *testing.T) {
	for i, m := range []intGraph{
		{0: {0}},
		{0: {}},
		{0: {0, 1}, 1: {}},
		{0: {1, 2}, 1: {3}, 2: {1}, 3: {}},
		{0: {1, 2}, 1: {3}, 2: {1, 0}, 3: {}},
		{0: {3, 1}, 1: {0}, 2: {1}, 3: {3}},
	} {
		if err := checkComponents(m, StronglyConnectedComponents(m.nodes(), m.succs)); err != nil {
			t.Errorf("graph %d %v: %v", i, m, err)
		}
	}
}

func TestStronglyConnectedComponentsOrder(t *testing.T) {
	m := intGraph{0: {1}, 1: {2}, 2: {1, 3}, 3: {}}
	sccs := StronglyConnectedComponents(m.nodes(), m.succs)
	if len(sccs) != 3 {
		t.Fatalf("expected 3 components, got %v", sccs)
	}
	if !slices.Equal(sccs[0], []int{3}) {
		t.Errorf("expected the leaf first, got %v", sccs)
	}
	mid := slices.Clone(sccs[1])
	slices.Sort(mid)
	if !slices.Equal(mid, []int{1, 2}) {
		t.Errorf("expected {1, 2} second, got %v", sccs)
	}
	if !slices.Equal(sccs[2], []int{0}) {
		t.Errorf("expected the root last, got %v", sccs)
	}
}

func TestStronglyConnectedComponentsRandom(t *testing.T) {
	for _, c := range []struct {
		size  int
		count int
		seed  int64
	}{
		{10, 100, 68348438},
		{50, 10, 184618},
		{100, 3, 4875934},
	} {
		for i := 0; i < c.count; i++ {
			m := randomGraph(c.size, c.seed+int64(i))
			if err := checkComponents(m, StronglyConnectedComponents(m.nodes(), m.succs)); err != nil {
				t.Fatalf("random graph (size %d, seed %d): %v", c.size, c.seed+int64(i), err)
			}
		}
	}
}

func randomGraph(size int, seed int64) intGraph {
	m := intGraph{}
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < size; i++ {
		m[i] = []int{}
		for j := 0; j < 3; j++ {
			if r.Float32() < 0.7 {
				m[i] = append(m[i], r.Intn(size))
			}
		}
	}
	return m
}

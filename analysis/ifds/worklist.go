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

// WorklistKind selects the order in which the solver processes path edges. The order changes the performance
// of the solver but not its result.
type WorklistKind string

const (
	// FIFO processes path edges in the order they were discovered.
	FIFO WorklistKind = "fifo"
	// LIFO processes the most recently discovered path edge first.
	LIFO WorklistKind = "lifo"
)

// Worklist holds the path edges that have not been processed yet.
type Worklist[N comparable] interface {
	Push(e PathEdge[N])
	// Pop removes and returns an edge. It must only be called when Len() > 0.
	Pop() PathEdge[N]
	Len() int
}

// NewWorklist returns an empty worklist of the given kind.
func NewWorklist[N comparable](kind WorklistKind) (Worklist[N], error) {
	switch kind {
	case FIFO, "":
		return &fifo[N]{}, nil
	case LIFO:
		return &lifo[N]{}, nil
	default:
		return nil, fmt.Errorf("unknown worklist kind %q", kind)
	}
}

type fifo[N comparable] struct {
	items []PathEdge[N]
	head  int
}

func (q *fifo[N]) Push(e PathEdge[N]) {
	q.items = append(q.items, e)
}

func (q *fifo[N]) Pop() PathEdge[N] {
	e := q.items[q.head]
	q.head++
	// reclaim the consumed prefix once it dominates the queue
	if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return e
}

func (q *fifo[N]) Len() int {
	return len(q.items) - q.head
}

type lifo[N comparable] struct {
	items []PathEdge[N]
}

func (s *lifo[N]) Push(e PathEdge[N]) {
	s.items = append(s.items, e)
}

func (s *lifo[N]) Pop() PathEdge[N] {
	e := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return e
}

func (s *lifo[N]) Len() int {
	return len(s.items)
}

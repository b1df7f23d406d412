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

// Fact is a dataflow fact, identified by its index in the problem's fact universe.
type Fact int

// Zero is the fact that always holds. It is an ordinary fact for the solver.
const Zero Fact = 0

func (d Fact) String() string {
	if d == Zero {
		return "0"
	}
	return fmt.Sprintf("d%d", int(d))
}

// factsOf returns the facts of the set in increasing order
func factsOf(s *intsets.Sparse) []Fact {
	if s == nil {
		return nil
	}
	var facts []Fact
	for _, x := range s.AppendTo(nil) {
		facts = append(facts, Fact(x))
	}
	return facts
}

// Domain maps values of type T to facts. The fact [Zero] is reserved and is never returned by Add.
// Flow functions may add values to the domain of their problem while it is solved; a Domain is not safe for
// concurrent use.
type Domain[T comparable] struct {
	index  map[T]Fact
	values []T
	zero   string
}

// NewDomain returns an empty domain. zeroName is used to print the [Zero] fact.
func NewDomain[T comparable](zeroName string) *Domain[T] {
	var z T
	return &Domain[T]{
		index:  map[T]Fact{},
		values: []T{z},
		zero:   zeroName,
	}
}

// Add returns the fact of v, creating a new fact if v was not in the domain.
func (d *Domain[T]) Add(v T) Fact {
	if f, ok := d.index[v]; ok {
		return f
	}
	f := Fact(len(d.values))
	d.values = append(d.values, v)
	d.index[v] = f
	return f
}

// Lookup returns the fact of v and true if v is in the domain, otherwise (Zero, false).
func (d *Domain[T]) Lookup(v T) (Fact, bool) {
	f, ok := d.index[v]
	return f, ok
}

// Value returns the value mapped to f. The second result is false for [Zero] and for facts outside the domain.
func (d *Domain[T]) Value(f Fact) (T, bool) {
	if f <= Zero || int(f) >= len(d.values) {
		var z T
		return z, false
	}
	return d.values[f], true
}

// Size returns the number of facts in the domain, including [Zero].
func (d *Domain[T]) Size() int {
	return len(d.values)
}

// Name returns a printable name for the fact.
func (d *Domain[T]) Name(f Fact) string {
	if f == Zero {
		return d.zero
	}
	if v, ok := d.Value(f); ok {
		return fmt.Sprintf("%v", v)
	}
	return f.String()
}

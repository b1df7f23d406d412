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

// PathEdge is the path edge <Entry, D1> -> <Target, D2>: if D1 holds at Entry, then D2 holds at Target.
// Entry is the entry of the procedure of Target, or a fake entry for edges derived from an interior seed.
type PathEdge[N comparable] struct {
	Entry  N
	D1     Fact
	Target N
	D2     Fact
}

// NewPathEdge returns the path edge <entry, d1> -> <target, d2>
func NewPathEdge[N comparable](entry N, d1 Fact, target N, d2 Fact) PathEdge[N] {
	return PathEdge[N]{Entry: entry, D1: d1, Target: target, D2: d2}
}

func (e PathEdge[N]) String() string {
	return fmt.Sprintf("<%v,%v> -> <%v,%v>", e.Entry, e.D1, e.Target, e.D2)
}

func (e PathEdge[N]) source() nodeFact[N] {
	return nodeFact[N]{node: e.Entry, fact: e.D1}
}

func (e PathEdge[N]) target() nodeFact[N] {
	return nodeFact[N]{node: e.Target, fact: e.D2}
}

// nodeFact is a node of the exploded supergraph
type nodeFact[N comparable] struct {
	node N
	fact Fact
}

// Summary is a summary edge at a call site: CallFact at the call implies ReturnFact at ReturnSite once the
// callee has been analyzed.
type Summary[N comparable] struct {
	CallFact   Fact
	ReturnSite N
	ReturnFact Fact
}

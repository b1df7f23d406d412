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

// Package supergraph implements an explicit supergraph: procedures made of named nodes, intra-procedural edges and
// calls, built once with a [Builder] and immutable afterwards. A [*Graph] satisfies the supergraph contract of the
// ifds solver, and also exposes a gonum view of its control flow for validation and rendering.
package supergraph

import (
	"fmt"
	"strings"
)

// NodeKind is the role of a node in its procedure
type NodeKind int

const (
	// Normal nodes only have intra-procedural successors
	Normal NodeKind = iota
	// Entry is the unique entry node of a procedure
	Entry
	// Exit is the unique exit node of a procedure
	Exit
	// Call nodes are call sites; their successors are the entries of their callees
	Call
	// ReturnSite nodes follow a call site
	ReturnSite
	// FakeEntry is the entry used to anchor seeds registered in the middle of a procedure. Fake entries are not
	// part of the nodes of the graph.
	FakeEntry
)

var kindNames = []string{"normal", "entry", "exit", "call", "return", "fake-entry"}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseNodeKind returns the kind named s. The empty string is a normal node.
func ParseNodeKind(s string) (NodeKind, error) {
	if s == "" {
		return Normal, nil
	}
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return NodeKind(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown node kind %q", s)
}

// Node is a node of the supergraph. Nodes are compared by pointer.
type Node struct {
	id   int64
	Name string
	Proc *Procedure
	Kind NodeKind
}

// ID returns the identifier of the node, unique in its graph
func (n *Node) ID() int64 {
	return n.id
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Proc.Name + "." + n.Name
}

// Procedure is a procedure of the supergraph, with its entry, exit and fake entry
type Procedure struct {
	Name  string
	Entry *Node
	Exit  *Node
	Fake  *Node
	nodes []*Node
	index map[string]*Node
}

// Nodes returns the nodes of the procedure in the order they were created, entry and exit included
func (p *Procedure) Nodes() []*Node {
	return p.nodes
}

// Node returns the node named name in the procedure, or nil
func (p *Procedure) Node(name string) *Node {
	return p.index[name]
}

func (p *Procedure) String() string {
	return p.Name
}

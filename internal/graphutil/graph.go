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

// Package graphutil contains graph algorithms over call graphs and generic graphs.
package graphutil

import (
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// CGraph is a view of a callgraph that works with existing graph libraries. It satisfies the graph.Iterator
// interface of github.com/yourbasic/graph and the graph.Graph interface of gonum.
// Node IDs are the IDs of the callgraph nodes.
type CGraph struct {
	// order is the order of the original callgraph
	order int

	// Graph is the original callgraph the CGraph was constructed from
	Graph *callgraph.Graph

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are the IDs of the nodes of the view, in increasing order
	Keys []int64

	// Edges maps each node ID to the sorted IDs of its callees
	Edges map[int64][]int64
}

// NewCallgraphIterator returns a view of cg. Only the functions for which include returns true are part of the
// view; a nil include keeps every function.
func NewCallgraphIterator(cg *callgraph.Graph, include func(*ssa.Function) bool) CGraph {
	c := CGraph{
		order: len(cg.Nodes),
		Graph: cg,
		IDMap: make(map[int64]CNode, len(cg.Nodes)),
		Edges: make(map[int64][]int64, len(cg.Nodes)),
	}
	keep := func(n *callgraph.Node) bool {
		return n != nil && (include == nil || n.Func == nil || include(n.Func))
	}
	for _, node := range cg.Nodes {
		if !keep(node) {
			continue
		}
		id := int64(node.ID)
		c.Keys = append(c.Keys, id)
		c.IDMap[id] = CNode{node}
		var out []int64
		for _, e := range node.Out {
			if keep(e.Callee) && !slices.Contains(out, int64(e.Callee.ID)) {
				out = append(out, int64(e.Callee.ID))
			}
		}
		slices.Sort(out)
		c.Edges[id] = out
	}
	slices.Sort(c.Keys)
	return c
}

// Subgraph returns the graph restricted to the nodes in include. The order, Graph and IDMap of the subgraph are
// those of the original, so node IDs stay consistent across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	in := make(map[int64]bool, len(include))
	for _, id := range include {
		in[id] = true
	}
	edges := make(map[int64][]int64, len(include))
	for _, id := range include {
		var out []int64
		for _, e := range original.Edges[id] {
			if in[e] {
				out = append(out, e)
			}
		}
		edges[id] = out
	}
	keys := slices.Clone(include)
	slices.Sort(keys)
	return CGraph{
		order: original.order,
		Graph: original.Graph,
		IDMap: original.IDMap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for _, w := range c.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Function returns the function of the node with the given ID, or nil
func (c CGraph) Function(id int64) *ssa.Function {
	if n, ok := c.IDMap[id]; ok && n.Node != nil {
		return n.Node.Func
	}
	return nil
}

// Node implements the gonum Graph interface
func (c CGraph) Node(id int64) graph.Node {
	if _, ok := c.Edges[id]; !ok {
		return nil
	}
	return c.IDMap[id]
}

// Nodes returns the nodes of the graph in increasing ID order
func (c CGraph) Nodes() graph.Nodes {
	return c.nodes(c.Keys)
}

// From returns the nodes called by the node id
func (c CGraph) From(id int64) graph.Nodes {
	return c.nodes(c.Edges[id])
}

func (c CGraph) nodes(ids []int64) graph.Nodes {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = c.IDMap[id]
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edge(xid, yid) != nil || c.Edge(yid, xid) != nil
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if _, found := slices.BinarySearch(c.Edges[uid], vid); found {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

// CNode is a wrapper around a *callgraph.Node that implements the graph.Node interface
type CNode struct {
	Node *callgraph.Node
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return int64(n.Node.ID)
}

func (n CNode) String() string {
	if n.Node == nil {
		return ""
	}
	return n.Node.String()
}

// CEdge implements the graph.Edge interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}

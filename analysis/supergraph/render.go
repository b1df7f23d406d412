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
	"fmt"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// dotNode is a node of the rendered graph
type dotNode struct {
	*Node
	label string
}

func (n dotNode) DOTID() string {
	return n.Node.String()
}

func (n dotNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: n.label}}
	switch n.Kind {
	case Entry, Exit:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "doubleoctagon"})
	case Call:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"})
	case ReturnSite:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "invhouse"})
	}
	return attrs
}

// dotEdge is an edge of the rendered graph. Inter-procedural edges are dashed.
type dotEdge struct {
	simple.Edge
	style string
}

func (e dotEdge) Attributes() []encoding.Attribute {
	if e.style == "" {
		return nil
	}
	return []encoding.Attribute{{Key: "style", Value: e.style}}
}

// RenderDOT returns the DOT representation of the graph. Each node is labelled with its name followed by
// label(n) when label is not nil, which lets callers render the facts computed by a solver.
func RenderDOT(g *Graph, name string, label func(n *Node) string) ([]byte, error) {
	out := simple.NewDirectedGraph()
	nodes := make(map[*Node]dotNode, len(g.nodes))
	for _, n := range g.nodes {
		l := n.String()
		if label != nil {
			if extra := label(n); extra != "" {
				l = fmt.Sprintf("%s\n%s", l, extra)
			}
		}
		nodes[n] = dotNode{Node: n, label: l}
		out.AddNode(nodes[n])
	}
	edges := g.flow.Edges()
	for edges.Next() {
		e := edges.Edge()
		src, dst := e.From().(*Node), e.To().(*Node)
		style := ""
		if !isIntra(e) {
			style = "dashed"
		}
		out.SetEdge(dotEdge{Edge: simple.Edge{F: nodes[src], T: nodes[dst]}, style: style})
	}
	b, err := dot.Marshal(out, name, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render graph %s: %w", name, err)
	}
	return b, nil
}

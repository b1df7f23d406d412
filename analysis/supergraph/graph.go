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
	"errors"
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	"gonum.org/v1/gonum/graph/simple"
)

// EntryName and ExitName are the names of the entry and exit nodes created for every procedure
const (
	EntryName = "entry"
	ExitName  = "exit"
	fakeName  = "<fake-entry>"
)

// Graph is an immutable supergraph. It implements ifds.Supergraph[*Node, *Procedure].
type Graph struct {
	nodes    []*Node
	procs    []*Procedure
	byName   map[string]*Procedure
	intra    map[*Node][]*Node
	succs    map[*Node][]*Node
	preds    map[*Node][]*Node
	callees  map[*Node][]*Node
	retSites map[*Node][]*Node
	callers  map[*Procedure][]*Node
	flow     *simple.DirectedGraph
}

var _ ifds.Supergraph[*Node, *Procedure] = (*Graph)(nil)

// Nodes returns all the nodes of the graph, except fake entries, in creation order
func (g *Graph) Nodes() []*Node { return g.nodes }

// Succs returns the successors of n: the intra-procedural successors of normal nodes, the callee entries of call
// nodes, and the return sites of the callers for exit nodes
func (g *Graph) Succs(n *Node) []*Node { return g.succs[n] }

// Preds returns the predecessors of n
func (g *Graph) Preds(n *Node) []*Node { return g.preds[n] }

func (g *Graph) ProcOf(n *Node) *Procedure { return n.Proc }

func (g *Graph) IsEntry(n *Node) bool { return n.Kind == Entry }

func (g *Graph) IsExit(n *Node) bool { return n.Kind == Exit }

func (g *Graph) IsCall(n *Node) bool { return n.Kind == Call }

func (g *Graph) IsReturnSite(n *Node) bool { return n.Kind == ReturnSite }

func (g *Graph) Callees(call *Node) []*Node { return g.callees[call] }

func (g *Graph) ReturnSites(call *Node) []*Node { return g.retSites[call] }

func (g *Graph) EntriesOf(p *Procedure) []*Node { return []*Node{p.Entry} }

func (g *Graph) ExitsOf(p *Procedure) []*Node { return []*Node{p.Exit} }

// FakeEntry returns the fake entry of the procedure of n
func (g *Graph) FakeEntry(n *Node) *Node { return n.Proc.Fake }

// IntraSuccs returns the intra-procedural successors of n. The return sites of a call node are its
// intra-procedural successors.
func (g *Graph) IntraSuccs(n *Node) []*Node {
	if n.Kind == Call {
		return g.retSites[n]
	}
	return g.intra[n]
}

// CallSites returns the call nodes calling p
func (g *Graph) CallSites(p *Procedure) []*Node { return g.callers[p] }

// Procedures returns the procedures in creation order
func (g *Graph) Procedures() []*Procedure { return g.procs }

// Procedure returns the procedure named name, or nil
func (g *Graph) Procedure(name string) *Procedure { return g.byName[name] }

// Lookup returns the node designated by "procedure.node", or nil. The procedure name may contain dots.
func (g *Graph) Lookup(qualified string) *Node {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		return nil
	}
	p := g.byName[qualified[:i]]
	if p == nil {
		return nil
	}
	return p.index[qualified[i+1:]]
}

// Builder builds a Graph. Errors are accumulated and reported by Build.
type Builder struct {
	g      *Graph
	nextID int64
	errs   []error
	built  bool
}

// NewBuilder returns a builder for an empty graph
func NewBuilder() *Builder {
	return &Builder{g: &Graph{
		byName:   map[string]*Procedure{},
		intra:    map[*Node][]*Node{},
		succs:    map[*Node][]*Node{},
		preds:    map[*Node][]*Node{},
		callees:  map[*Node][]*Node{},
		retSites: map[*Node][]*Node{},
		callers:  map[*Procedure][]*Node{},
	}}
}

func (b *Builder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

func (b *Builder) newNode(p *Procedure, name string, kind NodeKind) *Node {
	n := &Node{id: b.nextID, Name: name, Proc: p, Kind: kind}
	b.nextID++
	if kind != FakeEntry {
		p.nodes = append(p.nodes, n)
		p.index[name] = n
	}
	return n
}

// Procedure returns the procedure named name, creating it with its entry, exit and fake entry if needed
func (b *Builder) Procedure(name string) *Procedure {
	if p, ok := b.g.byName[name]; ok {
		return p
	}
	p := &Procedure{Name: name, index: map[string]*Node{}}
	p.Entry = b.newNode(p, EntryName, Entry)
	p.Exit = b.newNode(p, ExitName, Exit)
	p.Fake = b.newNode(p, fakeName, FakeEntry)
	b.g.procs = append(b.g.procs, p)
	b.g.byName[name] = p
	return p
}

// Node adds a node of kind Normal, Call or ReturnSite to p
func (b *Builder) Node(p *Procedure, name string, kind NodeKind) *Node {
	switch kind {
	case Normal, Call, ReturnSite:
	default:
		b.errorf("cannot add node %s.%s of kind %s", p.Name, name, kind)
		return nil
	}
	if _, ok := p.index[name]; ok {
		b.errorf("duplicate node %s.%s", p.Name, name)
		return nil
	}
	return b.newNode(p, name, kind)
}

// Edge adds the intra-procedural edge src -> dst
func (b *Builder) Edge(src, dst *Node) {
	switch {
	case src == nil || dst == nil:
		b.errorf("edge with a missing node")
	case src.Proc != dst.Proc:
		b.errorf("edge %s -> %s crosses procedures, use a call", src, dst)
	case src.Kind == Call:
		b.errorf("edge %s -> %s starts at a call node, use a call to set its return site", src, dst)
	case src.Kind == Exit:
		b.errorf("edge %s -> %s starts at an exit node", src, dst)
	case dst.Kind == Entry:
		b.errorf("edge %s -> %s targets an entry node", src, dst)
	default:
		b.g.intra[src] = appendNew(b.g.intra[src], dst)
	}
}

// Call makes call a call site of callee that returns to retSite. A nil callee declares a call without any
// resolved callee. A call can have several callees and several return sites.
func (b *Builder) Call(call *Node, callee *Procedure, retSite *Node) {
	switch {
	case call == nil || retSite == nil:
		b.errorf("call with a missing node")
		return
	case call.Kind != Call:
		b.errorf("%s is not a call node", call)
		return
	case retSite.Kind != ReturnSite:
		b.errorf("%s is not a return site", retSite)
		return
	case call.Proc != retSite.Proc:
		b.errorf("call %s and return site %s are in different procedures", call, retSite)
		return
	}
	b.g.retSites[call] = appendNew(b.g.retSites[call], retSite)
	if callee != nil {
		b.g.callees[call] = appendNew(b.g.callees[call], callee.Entry)
		b.g.callers[callee] = appendNew(b.g.callers[callee], call)
	}
}

// Build returns the graph, or the errors found while building it. The builder must not be used afterwards.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, errors.New("graph already built")
	}
	b.built = true
	g := b.g
	// nodes are listed procedure by procedure, entry first and exit last
	for _, p := range g.procs {
		nodes := make([]*Node, 0, len(p.nodes))
		for _, n := range p.nodes {
			if n != p.Exit {
				nodes = append(nodes, n)
			}
		}
		p.nodes = append(nodes, p.Exit)
		g.nodes = append(g.nodes, p.nodes...)
	}
	for _, n := range g.nodes {
		if n.Kind == Call && len(g.retSites[n]) == 0 {
			b.errorf("call node %s has no return site", n)
		}
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	for _, n := range g.nodes {
		switch n.Kind {
		case Call:
			g.succs[n] = g.callees[n]
		case Exit:
			for _, call := range g.callers[n.Proc] {
				for _, r := range g.retSites[call] {
					g.succs[n] = appendNew(g.succs[n], r)
				}
			}
		default:
			g.succs[n] = g.intra[n]
		}
		for _, s := range g.succs[n] {
			g.preds[s] = append(g.preds[s], n)
		}
	}
	g.flow = buildFlowGraph(g)
	return g, nil
}

func appendNew(nodes []*Node, n *Node) []*Node {
	for _, x := range nodes {
		if x == n {
			return nodes
		}
	}
	return append(nodes, n)
}

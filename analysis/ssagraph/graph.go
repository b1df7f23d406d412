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

// Package ssagraph builds the IFDS supergraph of a Go program in SSA form.
//
// Every function with a body that the call graph reaches becomes a procedure with a synthetic entry and exit.
// Each instruction is a node, except call instructions (calls, go and defer statements) which become a call
// node followed by a return site node. Return and panic instructions flow to the exit of their function. The
// callees of a call node are the functions with a body that the call graph resolves at its call site; calls
// without such a callee only flow to their return site.
package ssagraph

import (
	"fmt"

	"github.com/awslabs/ar-go-ifds/analysis"
	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	"github.com/awslabs/ar-go-ifds/internal/graphutil"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// Options select the functions of the supergraph
type Options struct {
	// Include returns true for the functions that may be analyzed. A nil Include accepts every function.
	// Excluded functions are treated as functions without a body: calls to them have no callee.
	Include func(*ssa.Function) bool

	// Roots restricts the supergraph to the functions reachable from the roots in the call graph. All the
	// functions of the call graph are kept when Roots is empty.
	Roots []*ssa.Function
}

type procedure struct {
	entry *Node
	exit  *Node
	fake  *Node
	nodes []*Node
}

// Graph is the supergraph of a program. It implements ifds.Supergraph[*Node, *ssa.Function].
type Graph struct {
	cg        *callgraph.Graph
	view      graphutil.CGraph
	funcs     []*ssa.Function
	procs     map[*ssa.Function]*procedure
	recursive map[*ssa.Function]bool
	sccs      [][]*ssa.Function
	nodes     []*Node
	succs     map[*Node][]*Node
	preds     map[*Node][]*Node
	callees   map[*Node][]*Node
	retSite   map[*Node]*Node
	callOf    map[*Node]*Node
	callers   map[*ssa.Function][]*Node
	instrs    map[ssa.Instruction]*Node
}

var _ ifds.Supergraph[*Node, *ssa.Function] = (*Graph)(nil)

// New builds the supergraph of the functions of cg selected by opts
func New(cg *callgraph.Graph, opts Options, logger *config.LogGroup) (*Graph, error) {
	if cg == nil {
		return nil, fmt.Errorf("no call graph")
	}
	include := func(f *ssa.Function) bool {
		return len(f.Blocks) > 0 && (opts.Include == nil || opts.Include(f))
	}
	g := &Graph{
		cg:        cg,
		view:      graphutil.NewCallgraphIterator(cg, include),
		procs:     map[*ssa.Function]*procedure{},
		recursive: map[*ssa.Function]bool{},
		succs:     map[*Node][]*Node{},
		preds:     map[*Node][]*Node{},
		callees:   map[*Node][]*Node{},
		retSite:   map[*Node]*Node{},
		callOf:    map[*Node]*Node{},
		callers:   map[*ssa.Function][]*Node{},
		instrs:    map[ssa.Instruction]*Node{},
	}

	selected, err := g.selectFunctions(opts.Roots)
	if err != nil {
		return nil, err
	}
	g.order(selected)
	for _, f := range g.funcs {
		g.addFunction(f)
	}
	for _, f := range g.funcs {
		g.connectCalls(f)
	}
	for _, n := range g.nodes {
		for _, s := range g.succs[n] {
			g.preds[s] = append(g.preds[s], n)
		}
	}
	logger.Debugf("supergraph: %d functions, %d recursive, %d nodes\n",
		len(g.funcs), len(g.recursive), len(g.nodes))
	return g, nil
}

// selectFunctions returns the IDs of the call graph nodes of the functions of the supergraph
func (g *Graph) selectFunctions(roots []*ssa.Function) ([]int64, error) {
	if len(roots) == 0 {
		var ids []int64
		for _, id := range g.view.Keys {
			if g.view.Function(id) != nil {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	var ids []int64
	dfs := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			if g.view.Function(n.ID()) != nil {
				ids = append(ids, n.ID())
			}
		},
	}
	found := false
	for _, root := range roots {
		node := g.cg.Nodes[root]
		if node == nil || g.view.Node(int64(node.ID)) == nil {
			continue
		}
		found = true
		dfs.Walk(g.view, g.view.Node(int64(node.ID)), nil)
	}
	if !found {
		return nil, fmt.Errorf("none of the %d roots is a function of the call graph", len(roots))
	}
	slices.Sort(ids)
	return ids, nil
}

// order sets the functions of the graph in reverse topological order of the call graph: callees come before
// their callers, except inside recursive components
func (g *Graph) order(ids []int64) {
	in := make(map[int64]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	succs := func(id int64) []int64 {
		var out []int64
		for _, s := range g.view.Edges[id] {
			if in[s] {
				out = append(out, s)
			}
		}
		return out
	}
	for _, scc := range graphutil.StronglyConnectedComponents(ids, succs) {
		component := make([]*ssa.Function, 0, len(scc))
		for _, id := range scc {
			f := g.view.Function(id)
			if len(scc) > 1 || slices.Contains(g.view.Edges[id], id) {
				g.recursive[f] = true
			}
			component = append(component, f)
		}
		g.funcs = append(g.funcs, component...)
		g.sccs = append(g.sccs, component)
	}
}

func (g *Graph) newNode(p *procedure, f *ssa.Function, instr ssa.Instruction, kind NodeKind) *Node {
	n := &Node{id: len(g.nodes), Func: f, Instr: instr, Kind: kind}
	g.nodes = append(g.nodes, n)
	p.nodes = append(p.nodes, n)
	return n
}

func (g *Graph) addEdge(src, dst *Node) {
	if !slices.Contains(g.succs[src], dst) {
		g.succs[src] = append(g.succs[src], dst)
	}
}

func (g *Graph) addFunction(f *ssa.Function) {
	p := &procedure{}
	g.procs[f] = p
	p.entry = g.newNode(p, f, nil, Entry)

	heads := make([]*Node, len(f.Blocks))
	for _, b := range f.Blocks {
		var last *Node
		for _, instr := range b.Instrs {
			var n, out *Node
			if _, isCall := instr.(ssa.CallInstruction); isCall {
				n = g.newNode(p, f, instr, Call)
				out = g.newNode(p, f, instr, ReturnSite)
				g.retSite[n] = out
				g.callOf[out] = n
			} else {
				n = g.newNode(p, f, instr, Instr)
				out = n
			}
			g.instrs[instr] = n
			if last == nil {
				heads[b.Index] = n
			} else {
				g.addEdge(last, n)
			}
			last = out
		}
	}
	p.exit = g.newNode(p, f, nil, Exit)
	// the fake entry is not a node of the graph
	p.fake = &Node{id: -1, Func: f, Kind: FakeEntry}

	for _, b := range f.Blocks {
		if len(b.Instrs) == 0 {
			continue
		}
		last := g.instrs[b.Instrs[len(b.Instrs)-1]]
		if out, ok := g.retSite[last]; ok {
			last = out
		}
		switch b.Instrs[len(b.Instrs)-1].(type) {
		case *ssa.Return, *ssa.Panic:
			g.addEdge(last, p.exit)
		default:
			for _, s := range b.Succs {
				if heads[s.Index] != nil {
					g.addEdge(last, heads[s.Index])
				}
			}
		}
	}
	if heads[0] != nil {
		g.addEdge(p.entry, heads[0])
	}
	// the recover block resumes execution after a panic recovered by a deferred call
	if f.Recover != nil && heads[f.Recover.Index] != nil {
		g.addEdge(p.entry, heads[f.Recover.Index])
	}
}

func (g *Graph) connectCalls(f *ssa.Function) {
	node := g.cg.Nodes[f]
	if node == nil {
		return
	}
	for _, n := range g.procs[f].nodes {
		if n.Kind != Call {
			continue
		}
		site := n.CallInstr()
		for _, e := range node.Out {
			if e.Site != site || e.Callee == nil {
				continue
			}
			callee, ok := g.procs[e.Callee.Func]
			if !ok || slices.Contains(g.callees[n], callee.entry) {
				continue
			}
			g.callees[n] = append(g.callees[n], callee.entry)
			g.callers[e.Callee.Func] = append(g.callers[e.Callee.Func], n)
			g.addEdge(n, callee.entry)
			g.addEdge(callee.exit, g.retSite[n])
		}
	}
}

// Nodes returns the nodes of the graph, function by function
func (g *Graph) Nodes() []*Node { return g.nodes }

// Succs returns the successors of n. Call nodes are followed by the entries of their callees, and exits by the
// return sites of their callers.
func (g *Graph) Succs(n *Node) []*Node { return g.succs[n] }

// Preds returns the predecessors of n
func (g *Graph) Preds(n *Node) []*Node { return g.preds[n] }

func (g *Graph) ProcOf(n *Node) *ssa.Function { return n.Func }

func (g *Graph) IsEntry(n *Node) bool { return n.Kind == Entry }

func (g *Graph) IsExit(n *Node) bool { return n.Kind == Exit }

func (g *Graph) IsCall(n *Node) bool { return n.Kind == Call }

func (g *Graph) IsReturnSite(n *Node) bool { return n.Kind == ReturnSite }

func (g *Graph) Callees(call *Node) []*Node { return g.callees[call] }

func (g *Graph) ReturnSites(call *Node) []*Node {
	if r, ok := g.retSite[call]; ok {
		return []*Node{r}
	}
	return nil
}

func (g *Graph) EntriesOf(f *ssa.Function) []*Node {
	if p, ok := g.procs[f]; ok {
		return []*Node{p.entry}
	}
	return nil
}

func (g *Graph) ExitsOf(f *ssa.Function) []*Node {
	if p, ok := g.procs[f]; ok {
		return []*Node{p.exit}
	}
	return nil
}

// FakeEntry returns the fake entry of the function of n
func (g *Graph) FakeEntry(n *Node) *Node {
	if p, ok := g.procs[n.Func]; ok {
		return p.fake
	}
	return nil
}

// Functions returns the functions of the graph, callees before callers
func (g *Graph) Functions() []*ssa.Function { return g.funcs }

// HasFunction returns true if f is a procedure of the graph
func (g *Graph) HasFunction(f *ssa.Function) bool {
	_, ok := g.procs[f]
	return ok
}

// EntryOf returns the entry node of f, or nil if f is not in the graph
func (g *Graph) EntryOf(f *ssa.Function) *Node {
	if p, ok := g.procs[f]; ok {
		return p.entry
	}
	return nil
}

// ExitOf returns the exit node of f, or nil if f is not in the graph
func (g *Graph) ExitOf(f *ssa.Function) *Node {
	if p, ok := g.procs[f]; ok {
		return p.exit
	}
	return nil
}

// FunctionNodes returns the nodes of f, entry first and exit last
func (g *Graph) FunctionNodes(f *ssa.Function) []*Node {
	if p, ok := g.procs[f]; ok {
		return p.nodes
	}
	return nil
}

// NodeOf returns the node of instr. The node of a call instruction is its call node.
func (g *Graph) NodeOf(instr ssa.Instruction) *Node { return g.instrs[instr] }

// ReturnSiteOf returns the return site of the call node call
func (g *Graph) ReturnSiteOf(call *Node) *Node { return g.retSite[call] }

// CallOf returns the call node of the return site retSite
func (g *Graph) CallOf(retSite *Node) *Node { return g.callOf[retSite] }

// CallSites returns the call nodes that call f
func (g *Graph) CallSites(f *ssa.Function) []*Node { return g.callers[f] }

// IsRecursive returns true if f belongs to a cycle of the call graph
func (g *Graph) IsRecursive(f *ssa.Function) bool { return g.recursive[f] }

// Callgraph returns the call graph the supergraph was built from
func (g *Graph) Callgraph() *callgraph.Graph { return g.cg }

// Build builds the supergraph of the functions of prog reachable from its main packages, using the call graph
// algorithm and the package filter of the config
func Build(prog *ssa.Program, cfg *config.Config, logger *config.LogGroup) (*Graph, error) {
	name := cfg.CallgraphAnalysis
	if name == "" {
		name = config.DefaultCallgraphAnalysis
	}
	mode, err := analysis.ParseCallgraphAnalysisMode(name)
	if err != nil {
		return nil, err
	}
	logger.Debugf("computing %s call graph\n", mode)
	cg, err := mode.ComputeCallgraph(prog)
	if err != nil {
		return nil, fmt.Errorf("failed to compute call graph: %w", err)
	}
	include := func(f *ssa.Function) bool {
		return cfg.PkgFilter == "" || (f.Pkg != nil && cfg.MatchPkgFilter(f.Pkg.Pkg.Path()))
	}
	return New(cg, Options{Include: include, Roots: analysis.Roots(prog)}, logger)
}

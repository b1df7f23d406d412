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

// testGraph is a small supergraph over string nodes used by the tests of the package
type testGraph struct {
	nodes    []string
	procOf   map[string]string
	entry    map[string]string
	exit     map[string]string
	isCall   map[string]bool
	isRet    map[string]bool
	intra    map[string][]string // intra-procedural successors, call -> return site edges excluded
	callees  map[string][]string // call -> callee entries
	retSites map[string][]string // call -> return sites
	callOf   map[string]string   // return site -> call
	succs    map[string][]string
	preds    map[string][]string
}

func newTestGraph() *testGraph {
	return &testGraph{
		procOf:   map[string]string{},
		entry:    map[string]string{},
		exit:     map[string]string{},
		isCall:   map[string]bool{},
		isRet:    map[string]bool{},
		intra:    map[string][]string{},
		callees:  map[string][]string{},
		retSites: map[string][]string{},
		callOf:   map[string]string{},
		succs:    map[string][]string{},
		preds:    map[string][]string{},
	}
}

// proc adds a procedure whose first node is the entry and last node the exit
func (g *testGraph) proc(name string, nodes ...string) {
	if len(nodes) < 2 {
		panic(fmt.Sprintf("procedure %s needs an entry and an exit", name))
	}
	for _, n := range nodes {
		g.nodes = append(g.nodes, n)
		g.procOf[n] = name
	}
	g.entry[name] = nodes[0]
	g.exit[name] = nodes[len(nodes)-1]
}

// chain adds the intra-procedural edges n0 -> n1 -> ... -> nk
func (g *testGraph) chain(nodes ...string) {
	for i := 0; i+1 < len(nodes); i++ {
		g.edge(nodes[i], nodes[i+1])
	}
}

func (g *testGraph) edge(src, dst string) {
	g.intra[src] = append(g.intra[src], dst)
	g.link(src, dst)
}

func (g *testGraph) link(src, dst string) {
	g.succs[src] = append(g.succs[src], dst)
	g.preds[dst] = append(g.preds[dst], src)
}

// call makes call a call site of callee returning to retSite
func (g *testGraph) call(call string, callee string, retSite string) {
	g.isCall[call] = true
	g.isRet[retSite] = true
	g.callOf[retSite] = call
	if !contains(g.retSites[call], retSite) {
		g.retSites[call] = append(g.retSites[call], retSite)
	}
	if callee == "" {
		return
	}
	entry, exit := g.entry[callee], g.exit[callee]
	g.callees[call] = append(g.callees[call], entry)
	g.link(call, entry)
	if !contains(g.succs[exit], retSite) {
		g.link(exit, retSite)
	}
}

func contains(s []string, x string) bool {
	for _, y := range s {
		if y == x {
			return true
		}
	}
	return false
}

func (g *testGraph) Nodes() []string                  { return g.nodes }
func (g *testGraph) Succs(n string) []string          { return g.succs[n] }
func (g *testGraph) Preds(n string) []string          { return g.preds[n] }
func (g *testGraph) ProcOf(n string) string           { return g.procOf[n] }
func (g *testGraph) IsEntry(n string) bool            { return g.entry[g.procOf[n]] == n }
func (g *testGraph) IsExit(n string) bool             { return g.exit[g.procOf[n]] == n }
func (g *testGraph) IsCall(n string) bool             { return g.isCall[n] }
func (g *testGraph) IsReturnSite(n string) bool       { return g.isRet[n] }
func (g *testGraph) Callees(call string) []string     { return g.callees[call] }
func (g *testGraph) ReturnSites(call string) []string { return g.retSites[call] }
func (g *testGraph) EntriesOf(p string) []string      { return []string{g.entry[p]} }
func (g *testGraph) ExitsOf(p string) []string        { return []string{g.exit[p]} }

// testFlows returns the identity on every edge unless a function has been set for it
type testFlows struct {
	normal     map[[2]string]FlowFunction
	call       map[[2]string]FlowFunction
	ret        map[[3]string]FlowFunction
	callToRet  map[[2]string]FlowFunction
	noneToRet  map[[2]string]FlowFunction
	unbalanced map[[2]string]FlowFunction
}

func newTestFlows() *testFlows {
	return &testFlows{
		normal:     map[[2]string]FlowFunction{},
		call:       map[[2]string]FlowFunction{},
		ret:        map[[3]string]FlowFunction{},
		callToRet:  map[[2]string]FlowFunction{},
		noneToRet:  map[[2]string]FlowFunction{},
		unbalanced: map[[2]string]FlowFunction{},
	}
}

func orIdentity(f FlowFunction, ok bool) FlowFunction {
	if !ok {
		return Identity()
	}
	return f
}

func (f *testFlows) Normal(src, dst string) FlowFunction {
	x, ok := f.normal[[2]string{src, dst}]
	return orIdentity(x, ok)
}

func (f *testFlows) Call(call, calleeEntry string) FlowFunction {
	x, ok := f.call[[2]string{call, calleeEntry}]
	return orIdentity(x, ok)
}

func (f *testFlows) Return(call, exit, retSite string) FlowFunction {
	x, ok := f.ret[[3]string{call, exit, retSite}]
	return orIdentity(x, ok)
}

func (f *testFlows) CallToReturn(call, retSite string) FlowFunction {
	x, ok := f.callToRet[[2]string{call, retSite}]
	return orIdentity(x, ok)
}

func (f *testFlows) CallNoneToReturn(call, retSite string) FlowFunction {
	x, ok := f.noneToRet[[2]string{call, retSite}]
	return orIdentity(x, ok)
}

func (f *testFlows) UnbalancedReturn(exit, retSite string) FlowFunction {
	x, ok := f.unbalanced[[2]string{exit, retSite}]
	return orIdentity(x, ok)
}

type testProblem struct {
	graph *testGraph
	flows *testFlows
	seeds []PathEdge[string]
}

func (p *testProblem) Supergraph() Supergraph[string, string]               { return p.graph }
func (p *testProblem) FlowFunctions() FlowFunctionMap[string]               { return p.flows }
func (p *testProblem) PartialFlowFunctions() PartialFlowFunctionMap[string] { return p.flows }
func (p *testProblem) InitialSeeds() []PathEdge[string]                     { return p.seeds }
func (p *testProblem) FakeEntry(n string) string                            { return "fake:" + p.graph.ProcOf(n) }

// entrySeed returns the seed <entry, d> -> <entry, d> of procedure proc
func (p *testProblem) entrySeed(proc string, d Fact) PathEdge[string] {
	e := p.graph.entry[proc]
	return NewPathEdge(e, d, e, d)
}

func factsEqual(a, b []Fact) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countingObserver counts events and checks that path edges are reported once
type countingObserver struct {
	edges      map[PathEdge[string]]int
	summaries  int
	unbalanced []PathEdge[string]
}

func newCountingObserver() *countingObserver {
	return &countingObserver{edges: map[PathEdge[string]]int{}}
}

func (o *countingObserver) PathEdgeAdded(e PathEdge[string]) { o.edges[e]++ }

func (o *countingObserver) SummaryAdded(string, Fact, string, Fact) { o.summaries++ }

func (o *countingObserver) UnbalancedSeed(_ string, seed PathEdge[string]) {
	o.unbalanced = append(o.unbalanced, seed)
}

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

package genkill

import (
	"errors"
	"fmt"

	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	sg "github.com/awslabs/ar-go-ifds/analysis/supergraph"
)

// Problem is a gen/kill problem. It implements ifds.PartiallyBalancedProblem[*supergraph.Node,
// *supergraph.Procedure].
type Problem struct {
	Name string

	// Facts is the universe of the problem
	Facts *ifds.Domain[string]

	graph *sg.Graph

	// transfer is the function of the edges leaving a node
	transfer   map[*sg.Node]ifds.FlowFunction
	calls      map[*sg.Node]callFlows
	unbalanced map[*sg.Procedure]ifds.FlowFunction

	seeds     []ifds.PathEdge[*sg.Node]
	interior  []interiorSeed
	partially bool
}

type callFlows struct {
	call ifds.FlowFunction
	ret  ifds.FlowFunction
}

type interiorSeed struct {
	node *sg.Node
	fact ifds.Fact
}

var _ ifds.PartiallyBalancedProblem[*sg.Node, *sg.Procedure] = (*Problem)(nil)

// builder accumulates the errors found while translating a spec
type builder struct {
	spec   *Spec
	closed bool
	facts  *ifds.Domain[string]
	errs   []error
}

func (b *builder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

func (b *builder) fact(name string) ifds.Fact {
	if name == ZeroName {
		return ifds.Zero
	}
	if b.closed {
		f, ok := b.facts.Lookup(name)
		if !ok {
			b.errorf("undeclared fact %q", name)
		}
		return f
	}
	return b.facts.Add(name)
}

func (b *builder) factList(names []string) []ifds.Fact {
	var facts []ifds.Fact
	for _, name := range names {
		facts = append(facts, b.fact(name))
	}
	return facts
}

func (b *builder) mapping(m map[string][]string) map[ifds.Fact][]ifds.Fact {
	res := make(map[ifds.Fact][]ifds.Fact, len(m))
	for from, to := range m {
		f := b.fact(from)
		res[f] = append(res[f], b.factList(to)...)
	}
	return res
}

// Build translates the spec into a problem. Nodes that cannot be reached from the entry of their procedure are
// reported as warnings on logger.
func Build(spec *Spec, logger *config.LogGroup) (*Problem, error) {
	b := &builder{spec: spec, facts: ifds.NewDomain[string](ZeroName)}
	for _, name := range spec.Facts {
		if name != ZeroName {
			b.facts.Add(name)
		}
	}
	b.closed = len(spec.Facts) > 0

	p := &Problem{
		Name:       spec.Name,
		Facts:      b.facts,
		transfer:   map[*sg.Node]ifds.FlowFunction{},
		calls:      map[*sg.Node]callFlows{},
		unbalanced: map[*sg.Procedure]ifds.FlowFunction{},
		partially:  spec.PartiallyBalanced,
	}
	g, err := b.buildGraph(p)
	if err != nil {
		return nil, fmt.Errorf("invalid problem %s: %w", spec.Name, err)
	}
	p.graph = g
	for _, s := range spec.Seeds {
		b.addSeed(p, s)
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid problem %s: %w", spec.Name, errors.Join(b.errs...))
	}
	if logger != nil {
		for _, n := range g.Unreachable() {
			logger.Warnf("node %s is not reachable from the entry of %s\n", n, n.Proc)
		}
		logger.Debugf("problem %s: %d procedures, %d nodes, %d facts\n",
			p.Name, len(g.Procedures()), len(g.Nodes()), p.Facts.Size())
	}
	return p, nil
}

func (b *builder) buildGraph(p *Problem) (*sg.Graph, error) {
	gb := sg.NewBuilder()
	for _, ps := range b.spec.Procedures {
		if ps.Name == "" {
			b.errorf("procedure without a name")
		}
		gb.Procedure(ps.Name)
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	for _, ps := range b.spec.Procedures {
		proc := gb.Procedure(ps.Name)
		// nodes in the order in which they are chained when the procedure has no edges
		order := []*sg.Node{proc.Entry}
		specs := map[*sg.Node]NodeSpec{}
		for _, ns := range ps.Nodes {
			var n *sg.Node
			switch ns.Name {
			case sg.EntryName:
				n = proc.Entry
			case sg.ExitName:
				if len(ns.Gen) > 0 || len(ns.Kill) > 0 || ns.KillAll || ns.isCall() {
					b.errorf("the exit of %s cannot have gen, kill or calls", ps.Name)
				}
				continue
			default:
				kind, err := sg.ParseNodeKind(ns.Kind)
				if err != nil {
					b.errorf("node %s.%s: %v", ps.Name, ns.Name, err)
					continue
				}
				if ns.isCall() {
					kind = sg.Call
				}
				n = gb.Node(proc, ns.Name, kind)
				if n == nil {
					continue
				}
				order = append(order, n)
			}
			specs[n] = ns
			p.transfer[n] = b.transfer(ns)
		}
		order = append(order, proc.Exit)

		for _, n := range order {
			if n.Kind == sg.Call {
				b.addCall(gb, p, n, specs[n])
			}
		}

		if len(ps.Edges) == 0 {
			for i := 0; i+1 < len(order); i++ {
				if order[i].Kind != sg.Call {
					gb.Edge(order[i], order[i+1])
				}
			}
		}
		for _, e := range ps.Edges {
			if len(e) != 2 {
				b.errorf("edge %v in %s is not a pair", e, ps.Name)
				continue
			}
			src, dst := proc.Node(e[0]), proc.Node(e[1])
			if src == nil || dst == nil {
				b.errorf("edge %s -> %s in %s has an unknown node", e[0], e[1], ps.Name)
				continue
			}
			gb.Edge(src, dst)
		}

		if ps.Unbalanced != nil {
			p.unbalanced[proc] = ifds.Mapping(b.mapping(ps.Unbalanced), false)
		}
	}
	g, err := gb.Build()
	if err != nil {
		b.errs = append(b.errs, err)
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return g, nil
}

// transfer returns the gen/kill function of a node
func (b *builder) transfer(ns NodeSpec) ifds.FlowFunction {
	gen := b.factList(ns.Gen)
	if !ns.KillAll {
		return ifds.GenKill(gen, b.factList(ns.Kill))
	}
	return ifds.Unary(func(d ifds.Fact) []ifds.Fact {
		if d == ifds.Zero {
			return append([]ifds.Fact{ifds.Zero}, gen...)
		}
		return nil
	})
}

func (b *builder) addCall(gb *sg.Builder, p *Problem, n *sg.Node, ns NodeSpec) {
	proc := n.Proc
	ret := proc.Node(ns.Return)
	if ret == nil || ret.Kind != sg.ReturnSite {
		b.errorf("call %s must return to a node of kind return, got %q", n, ns.Return)
		return
	}
	var callee *sg.Procedure
	if ns.Call != "" {
		if !b.declared(ns.Call) {
			b.errorf("call %s to undeclared procedure %s", n, ns.Call)
			return
		}
		callee = gb.Procedure(ns.Call)
	}
	gb.Call(n, callee, ret)

	flows := callFlows{call: ifds.Identity(), ret: ifds.Identity()}
	if ns.Params != nil {
		flows.call = ifds.Mapping(b.mapping(ns.Params), false)
	}
	switch {
	case ns.hasRequires():
		flows.ret = b.binaryReturn(ns.Returns)
	case ns.Returns != nil:
		m := map[ifds.Fact][]ifds.Fact{}
		for _, r := range ns.Returns {
			from := b.fact(r.From)
			m[from] = append(m[from], b.fact(r.To))
		}
		flows.ret = ifds.Mapping(m, false)
	}
	p.calls[n] = flows
}

func (b *builder) declared(proc string) bool {
	for _, ps := range b.spec.Procedures {
		if ps.Name == proc {
			return true
		}
	}
	return false
}

type returnMapping struct {
	from, to, requires ifds.Fact
	conditional        bool
}

// binaryReturn returns the binary function of a list of return mappings. Zero always returns to Zero.
func (b *builder) binaryReturn(returns []ReturnSpec) ifds.FlowFunction {
	var mappings []returnMapping
	for _, r := range returns {
		m := returnMapping{from: b.fact(r.From), to: b.fact(r.To)}
		if r.Requires != "" {
			m.requires = b.fact(r.Requires)
			m.conditional = true
		}
		mappings = append(mappings, m)
	}
	return ifds.Binary(func(callFact, exitFact ifds.Fact) []ifds.Fact {
		var res []ifds.Fact
		if exitFact == ifds.Zero {
			res = append(res, ifds.Zero)
		}
		for _, m := range mappings {
			if m.from == exitFact && (!m.conditional || m.requires == callFact) {
				res = append(res, m.to)
			}
		}
		return res
	})
}

func (b *builder) addSeed(p *Problem, s SeedSpec) {
	n := p.graph.Lookup(s.At)
	if n == nil {
		b.errorf("seed at unknown node %q", s.At)
		return
	}
	d := ifds.Zero
	if s.Fact != "" {
		d = b.fact(s.Fact)
	}
	if n.Kind == sg.Entry && !s.Interior {
		p.seeds = append(p.seeds, ifds.NewPathEdge(n, d, n, d))
		return
	}
	p.interior = append(p.interior, interiorSeed{node: n, fact: d})
}

// Graph returns the supergraph of the problem
func (p *Problem) Graph() *sg.Graph { return p.graph }

func (p *Problem) Supergraph() ifds.Supergraph[*sg.Node, *sg.Procedure] { return p.graph }

func (p *Problem) FlowFunctions() ifds.FlowFunctionMap[*sg.Node] { return flows{p} }

func (p *Problem) PartialFlowFunctions() ifds.PartialFlowFunctionMap[*sg.Node] { return flows{p} }

func (p *Problem) InitialSeeds() []ifds.PathEdge[*sg.Node] { return p.seeds }

func (p *Problem) FakeEntry(n *sg.Node) *sg.Node { return p.graph.FakeEntry(n) }

// PartiallyBalanced returns true if the problem must be solved with the partially balanced solver
func (p *Problem) PartiallyBalanced() bool {
	return p.partially || len(p.interior) > 0
}

// FactNames returns the names of the facts
func (p *Problem) FactNames(facts []ifds.Fact) []string {
	names := make([]string, len(facts))
	for i, f := range facts {
		names[i] = p.Facts.Name(f)
	}
	return names
}

// flows implements the flow functions of a problem
type flows struct {
	p *Problem
}

func (f flows) Normal(src *sg.Node, _ *sg.Node) ifds.FlowFunction {
	return f.node(src)
}

func (f flows) Call(call *sg.Node, _ *sg.Node) ifds.FlowFunction {
	return f.p.calls[call].call
}

func (f flows) Return(call *sg.Node, _ *sg.Node, _ *sg.Node) ifds.FlowFunction {
	return f.p.calls[call].ret
}

func (f flows) CallToReturn(call *sg.Node, _ *sg.Node) ifds.FlowFunction {
	return f.node(call)
}

func (f flows) CallNoneToReturn(call *sg.Node, _ *sg.Node) ifds.FlowFunction {
	return f.node(call)
}

func (f flows) UnbalancedReturn(exit *sg.Node, _ *sg.Node) ifds.FlowFunction {
	if fn, ok := f.p.unbalanced[exit.Proc]; ok {
		return fn
	}
	return ifds.Identity()
}

func (f flows) node(n *sg.Node) ifds.FlowFunction {
	if fn, ok := f.p.transfer[n]; ok {
		return fn
	}
	return ifds.Identity()
}

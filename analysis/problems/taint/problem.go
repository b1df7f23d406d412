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

package taint

import (
	"go/types"

	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	"github.com/awslabs/ar-go-ifds/analysis/ssagraph"
	"github.com/awslabs/ar-go-ifds/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// problem is the taint problem of one analysis run. Facts are added to its domain while it is solved, so a
// problem is used by a single solver.
type problem struct {
	*index
	facts *ifds.Domain[fact]
	seeds []ifds.PathEdge[*ssagraph.Node]
}

var _ ifds.PartiallyBalancedProblem[*ssagraph.Node, *ssa.Function] = (*problem)(nil)

func newProblem(x *index) *problem {
	return &problem{index: x, facts: ifds.NewDomain[fact]("0")}
}

func (p *problem) Supergraph() ifds.Supergraph[*ssagraph.Node, *ssa.Function] { return p.graph }

func (p *problem) FlowFunctions() ifds.FlowFunctionMap[*ssagraph.Node] { return flows{p} }

func (p *problem) PartialFlowFunctions() ifds.PartialFlowFunctionMap[*ssagraph.Node] { return flows{p} }

func (p *problem) InitialSeeds() []ifds.PathEdge[*ssagraph.Node] { return p.seeds }

func (p *problem) FakeEntry(n *ssagraph.Node) *ssagraph.Node { return p.graph.FakeEntry(n) }

// taint returns the fact of v tainted by source
func (p *problem) taint(source *ssagraph.Node, v ssa.Value) ifds.Fact {
	return p.facts.Add(fact{source: source, value: v})
}

// isGlobal returns true if the fact is a tainted global. Globals flow through calls and returns unchanged.
func (p *problem) isGlobal(d ifds.Fact) bool {
	f, ok := p.facts.Value(d)
	if !ok {
		return false
	}
	_, global := f.value.(*ssa.Global)
	return global
}

type flows struct {
	p *problem
}

// Normal applies the instruction of src to the facts that hold before it. Only instruction nodes change facts.
func (fl flows) Normal(src *ssagraph.Node, _ *ssagraph.Node) ifds.FlowFunction {
	if src.Kind != ssagraph.Instr {
		return ifds.Identity()
	}
	p := fl.p
	switch instr := src.Instr.(type) {
	case *ssa.Store:
		return p.propagateTo(func(v ssa.Value) bool { return v == instr.Val }, addressRoots(instr.Addr)...)
	case *ssa.MapUpdate:
		return p.propagateTo(func(v ssa.Value) bool { return v == instr.Key || v == instr.Value }, instr.Map)
	case *ssa.Send:
		return p.propagateTo(func(v ssa.Value) bool { return v == instr.X }, instr.Chan)
	case ssa.Value:
		var operands []ssa.Value
		for _, op := range src.Instr.Operands(nil) {
			if op != nil && *op != nil {
				operands = append(operands, *op)
			}
		}
		return p.propagateTo(func(v ssa.Value) bool { return funcutil.Contains(operands, v) }, instr)
	default:
		return ifds.Identity()
	}
}

// propagateTo keeps every fact, and taints the targets with the source of the facts whose value satisfies
// from
func (p *problem) propagateTo(from func(ssa.Value) bool, targets ...ssa.Value) ifds.FlowFunction {
	return ifds.Unary(func(d ifds.Fact) []ifds.Fact {
		res := []ifds.Fact{d}
		f, ok := p.facts.Value(d)
		if !ok || !from(f.value) {
			return res
		}
		for _, t := range targets {
			res = append(res, p.taint(f.source, t))
		}
		return res
	})
}

// addressRoots returns addr and the addresses it is computed from by field and index selection
func addressRoots(addr ssa.Value) []ssa.Value {
	roots := []ssa.Value{addr}
	for {
		switch a := addr.(type) {
		case *ssa.FieldAddr:
			addr = a.X
		case *ssa.IndexAddr:
			addr = a.X
		default:
			return roots
		}
		roots = append(roots, addr)
	}
}

// Call maps the actual arguments and the bindings of closures to the parameters and free variables of the
// callee
func (fl flows) Call(call *ssagraph.Node, calleeEntry *ssagraph.Node) ifds.FlowFunction {
	p := fl.p
	formals, args := bindings(call, calleeEntry.Func)
	return ifds.Unary(func(d ifds.Fact) []ifds.Fact {
		if d == ifds.Zero || p.isGlobal(d) {
			return []ifds.Fact{d}
		}
		f, _ := p.facts.Value(d)
		var res []ifds.Fact
		for i, a := range args {
			if a == f.value {
				res = append(res, p.taint(f.source, formals[i]))
			}
		}
		return res
	})
}

// bindings returns the parameters and free variables of callee with the values they take at call
func bindings(call *ssagraph.Node, callee *ssa.Function) ([]ssa.Value, []ssa.Value) {
	c := call.CallInstr().Common()
	var formals, args []ssa.Value
	for i, a := range actuals(c) {
		if i < len(callee.Params) {
			formals = append(formals, callee.Params[i])
			args = append(args, a)
		}
	}
	if mc, ok := c.Value.(*ssa.MakeClosure); ok && mc.Fn == callee {
		for i, b := range mc.Bindings {
			if i < len(callee.FreeVars) {
				formals = append(formals, callee.FreeVars[i])
				args = append(args, b)
			}
		}
	}
	return formals, args
}

// Return maps the returned values to the value of the call, and the parameters referencing tainted memory to
// the arguments they were bound to
func (fl flows) Return(call *ssagraph.Node, exit *ssagraph.Node, _ *ssagraph.Node) ifds.FlowFunction {
	return fl.p.returnFlow(call, exit.Func)
}

// UnbalancedReturn is the return flow of a call that was not analyzed
func (fl flows) UnbalancedReturn(exit *ssagraph.Node, retSite *ssagraph.Node) ifds.FlowFunction {
	return fl.p.returnFlow(fl.p.graph.CallOf(retSite), exit.Func)
}

func (p *problem) returnFlow(call *ssagraph.Node, callee *ssa.Function) ifds.FlowFunction {
	formals, args := bindings(call, callee)
	results := p.returns[callee]
	value := callValue(call)
	sanitized := p.isSanitizer(call)
	return ifds.Unary(func(d ifds.Fact) []ifds.Fact {
		if d == ifds.Zero || p.isGlobal(d) {
			return []ifds.Fact{d}
		}
		f, _ := p.facts.Value(d)
		if sanitized {
			return nil
		}
		var res []ifds.Fact
		if results[f.value] && value != nil {
			res = append(res, p.taint(f.source, value))
		}
		for i, formal := range formals {
			if formal == f.value && isReference(formal.Type()) {
				res = append(res, p.taint(f.source, args[i]))
			}
		}
		return res
	})
}

// CallToReturn keeps the facts of the caller, and generates the value of source calls from Zero
func (fl flows) CallToReturn(call *ssagraph.Node, _ *ssagraph.Node) ifds.FlowFunction {
	p := fl.p
	value := callValue(call)
	if !p.isSource(call) || value == nil {
		return ifds.Identity()
	}
	return ifds.Unary(func(d ifds.Fact) []ifds.Fact {
		if d == ifds.Zero {
			return []ifds.Fact{ifds.Zero, p.taint(call, value)}
		}
		return []ifds.Fact{d}
	})
}

// CallNoneToReturn is CallToReturn for calls without analyzed callee: the value of the call is tainted when an
// argument is, unless the call is a sanitizer. The builtin copy taints its destination.
func (fl flows) CallNoneToReturn(call *ssagraph.Node, retSite *ssagraph.Node) ifds.FlowFunction {
	p := fl.p
	base := fl.CallToReturn(call, retSite)
	if p.isSanitizer(call) {
		return base
	}
	c := call.CallInstr().Common()
	var targets []ssa.Value
	if v := callValue(call); v != nil {
		targets = append(targets, v)
	}
	args := actuals(c)
	if b, ok := c.Value.(*ssa.Builtin); ok && b.Name() == "copy" && len(c.Args) == 2 {
		args = c.Args[1:]
		targets = append(targets, c.Args[0])
	}
	return ifds.Compose(base, p.propagateTo(func(v ssa.Value) bool { return funcutil.Contains(args, v) }, targets...))
}

// isReference returns true if values of type t reference memory the callee can write to
func isReference(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Interface:
		return true
	default:
		return false
	}
}

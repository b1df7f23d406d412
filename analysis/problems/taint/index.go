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

// Package taint implements taint tracking on Go programs as an IFDS problem over the SSA supergraph.
//
// A fact is an SSA value carrying data returned by a source call, together with the call node of that source.
// Pointer-like values are tainted when the memory they reference is: storing a tainted value taints the
// address stored to and the values it is derived from. Calls map actual arguments to parameters and returned
// values to the value of the call. Sanitizer calls never return tainted data. An alarm is raised when a
// tainted value is passed to a sink.
//
// The analysis runs either exhaustively, seeding the zero fact at the entry of the roots of the program
// ([Analyze]), or on demand, with one partially balanced query seeded at the return site of each source call
// ([AnalyzeDemand]).
package taint

import (
	"fmt"

	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ssagraph"
	"github.com/awslabs/ar-go-ifds/internal/analysisutil"
	"golang.org/x/tools/go/ssa"
)

type callRole int

const (
	roleNone callRole = iota
	roleSource
	roleSink
	roleSanitizer
)

// index classifies the call nodes of a supergraph according to a taint specification. It is read-only once
// built, and shared by the problems of the demand-driven queries.
type index struct {
	graph   *ssagraph.Graph
	spec    config.TaintSpec
	roles   map[*ssagraph.Node]callRole
	sources []*ssagraph.Node
	sinks   []*ssagraph.Node
	returns map[*ssa.Function]map[ssa.Value]bool
}

func newIndex(g *ssagraph.Graph, spec config.TaintSpec) *index {
	x := &index{
		graph:   g,
		spec:    spec,
		roles:   map[*ssagraph.Node]callRole{},
		returns: map[*ssa.Function]map[ssa.Value]bool{},
	}
	for _, n := range g.Nodes() {
		if n.Kind != ssagraph.Call {
			continue
		}
		cid := analysisutil.CalleeIdentifier(n.CallInstr().Common())
		if cid.IsNone() {
			continue
		}
		// a function that is both a sanitizer and a source is a source
		switch {
		case spec.IsSource(cid.Value()):
			x.roles[n] = roleSource
			x.sources = append(x.sources, n)
		case spec.IsSink(cid.Value()):
			x.roles[n] = roleSink
			x.sinks = append(x.sinks, n)
		case spec.IsSanitizer(cid.Value()):
			x.roles[n] = roleSanitizer
		}
	}
	for _, f := range g.Functions() {
		results := map[ssa.Value]bool{}
		for _, b := range f.Blocks {
			if len(b.Instrs) == 0 {
				continue
			}
			if ret, ok := b.Instrs[len(b.Instrs)-1].(*ssa.Return); ok {
				for _, r := range ret.Results {
					results[r] = true
				}
			}
		}
		x.returns[f] = results
	}
	return x
}

func (x *index) isSource(call *ssagraph.Node) bool { return x.roles[call] == roleSource }

func (x *index) isSanitizer(call *ssagraph.Node) bool { return x.roles[call] == roleSanitizer }

// Sources returns the call nodes of the sources of spec in g
func Sources(g *ssagraph.Graph, spec config.TaintSpec) []*ssagraph.Node {
	return newIndex(g, spec).sources
}

// Sinks returns the call nodes of the sinks of spec in g
func Sinks(g *ssagraph.Graph, spec config.TaintSpec) []*ssagraph.Node {
	return newIndex(g, spec).sinks
}

// actuals returns the actual arguments of a call, including the receiver of method invocations
func actuals(c *ssa.CallCommon) []ssa.Value {
	if c.IsInvoke() {
		return append([]ssa.Value{c.Value}, c.Args...)
	}
	return c.Args
}

// callValue returns the value defined by the call instruction of call, or nil for go and defer instructions
func callValue(call *ssagraph.Node) ssa.Value {
	if v := call.CallInstr().Value(); v != nil {
		return v
	}
	return nil
}

// fact is a tainted value and the source call it was tainted by
type fact struct {
	source *ssagraph.Node
	value  ssa.Value
}

func (f fact) String() string {
	name := f.value.Name()
	if fn := f.value.Parent(); fn != nil {
		name = fn.Name() + "." + name
	}
	if f.source == nil {
		return name
	}
	return fmt.Sprintf("%s (from %s)", name, f.source.Position())
}

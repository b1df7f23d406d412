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

// FlowKind is the shape of a flow function.
type FlowKind int

const (
	// NoFlow is the kind of the zero FlowFunction. The solver rejects it.
	NoFlow FlowKind = iota
	// UnaryFlow functions map one source fact to a set of target facts.
	UnaryFlow
	// BinaryFlow functions map a fact at a call site and a fact at the exit of the callee to a set of facts at
	// the return site.
	BinaryFlow
)

func (k FlowKind) String() string {
	switch k {
	case UnaryFlow:
		return "unary"
	case BinaryFlow:
		return "binary"
	default:
		return "none"
	}
}

// FlowFunction is a transfer function on the facts of one supergraph edge. It is either unary or binary; the
// solver selects which one it needs from the kind of edge and checks Kind before applying it.
//
// A flow function must be distributive and must only return facts of the problem's universe. Returning an
// empty slice kills the fact.
type FlowFunction struct {
	kind   FlowKind
	unary  func(Fact) []Fact
	binary func(Fact, Fact) []Fact
}

// Unary returns the unary flow function f.
func Unary(f func(d Fact) []Fact) FlowFunction {
	return FlowFunction{kind: UnaryFlow, unary: f}
}

// Binary returns the binary flow function f. callFact is the fact at the call site and exitFact the fact at
// the exit of the callee.
func Binary(f func(callFact, exitFact Fact) []Fact) FlowFunction {
	return FlowFunction{kind: BinaryFlow, binary: f}
}

// Kind returns the shape of the function.
func (f FlowFunction) Kind() FlowKind {
	return f.kind
}

// Targets applies a unary flow function. It panics if f is not unary.
func (f FlowFunction) Targets(d Fact) []Fact {
	if f.kind != UnaryFlow {
		panic(violation("apply", "%s flow function applied to a single fact", f.kind))
	}
	return f.unary(d)
}

// BinaryTargets applies a binary flow function. It panics if f is not binary.
func (f FlowFunction) BinaryTargets(callFact, exitFact Fact) []Fact {
	if f.kind != BinaryFlow {
		panic(violation("apply", "%s flow function applied to two facts", f.kind))
	}
	return f.binary(callFact, exitFact)
}

// Identity maps every fact to itself.
func Identity() FlowFunction {
	return Unary(func(d Fact) []Fact { return []Fact{d} })
}

// KillAll maps every fact, including Zero, to the empty set.
func KillAll() FlowFunction {
	return Unary(func(Fact) []Fact { return nil })
}

// Gen is the identity that also generates facts from Zero.
func Gen(facts ...Fact) FlowFunction {
	return GenKill(facts, nil)
}

// Kill is the identity except on facts, which it kills.
func Kill(facts ...Fact) FlowFunction {
	return GenKill(nil, facts)
}

// GenKill kills the facts in kill and generates the facts in gen from Zero. Zero itself is never killed.
func GenKill(gen []Fact, kill []Fact) FlowFunction {
	killed := make(map[Fact]bool, len(kill))
	for _, k := range kill {
		if k != Zero {
			killed[k] = true
		}
	}
	return Unary(func(d Fact) []Fact {
		if d == Zero {
			return append([]Fact{Zero}, gen...)
		}
		if killed[d] {
			return nil
		}
		return []Fact{d}
	})
}

// Mapping maps each fact to the facts in m. Facts missing from m are kept when keepUnmapped is true, and
// killed otherwise. Zero is mapped to itself unless m has an entry for it.
func Mapping(m map[Fact][]Fact, keepUnmapped bool) FlowFunction {
	return Unary(func(d Fact) []Fact {
		if targets, ok := m[d]; ok {
			return targets
		}
		if d == Zero || keepUnmapped {
			return []Fact{d}
		}
		return nil
	})
}

// Compose returns the unary function x -> g(f(x)). It panics if f or g is not unary.
func Compose(f FlowFunction, g FlowFunction) FlowFunction {
	if f.kind != UnaryFlow || g.kind != UnaryFlow {
		panic(violation("compose", "cannot compose %s and %s flow functions", f.kind, g.kind))
	}
	return Unary(func(d Fact) []Fact {
		var res []Fact
		for _, x := range f.unary(d) {
			res = append(res, g.unary(x)...)
		}
		return res
	})
}

// FlowFunctionMap gives the flow function of every kind of supergraph edge.
type FlowFunctionMap[N comparable] interface {
	// Normal is the unary function of the intra-procedural edge src -> dst.
	Normal(src N, dst N) FlowFunction

	// Call is the unary function mapping facts at call to facts at the entry of a callee.
	Call(call N, calleeEntry N) FlowFunction

	// Return maps facts at the exit of a callee to facts at retSite. If the function is binary, it
	// receives the fact at the call site that entered the callee together with the fact at the exit.
	Return(call N, exit N, retSite N) FlowFunction

	// CallToReturn is the unary function of the facts at call that bypass the callees to reach retSite.
	CallToReturn(call N, retSite N) FlowFunction

	// CallNoneToReturn replaces CallToReturn when call has no resolved callee.
	CallNoneToReturn(call N, retSite N) FlowFunction
}

// PartialFlowFunctionMap is the FlowFunctionMap of a partially balanced problem.
type PartialFlowFunctionMap[N comparable] interface {
	FlowFunctionMap[N]

	// UnbalancedReturn maps facts at exit to facts at retSite when the call that reached retSite has not been
	// analyzed. The function must be unary.
	UnbalancedReturn(exit N, retSite N) FlowFunction
}

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

// Supergraph is a read-only view of an inter-procedural control flow graph with nodes of type N belonging to
// procedures of type P.
//
// The successors of a call node are the entries of its callees, and the successors of an exit node are the
// return sites of all the calls to its procedure. The intra-procedural edge from a call node to its return
// sites is not a successor edge: the solver obtains return sites with ReturnSites.
//
// Implementations must not change once a solver uses them. Several solvers may read the same supergraph
// concurrently.
type Supergraph[N comparable, P comparable] interface {
	// Nodes returns all the nodes of the supergraph.
	Nodes() []N

	// Succs returns the successors of n.
	Succs(n N) []N

	// Preds returns the predecessors of n.
	Preds(n N) []N

	// ProcOf returns the procedure n belongs to.
	ProcOf(n N) P

	// IsEntry returns true if n is the entry of its procedure.
	IsEntry(n N) bool

	// IsExit returns true if n is an exit of its procedure.
	IsExit(n N) bool

	// IsCall returns true if n is a call site.
	IsCall(n N) bool

	// IsReturnSite returns true if n is the return site of some call.
	IsReturnSite(n N) bool

	// Callees returns the entry nodes of the procedures called at call. The result is empty if no callee has
	// been resolved.
	Callees(call N) []N

	// ReturnSites returns the return sites of call.
	ReturnSites(call N) []N

	// EntriesOf returns the entry nodes of procedure p.
	EntriesOf(p P) []N

	// ExitsOf returns the exit nodes of procedure p.
	ExitsOf(p P) []N
}

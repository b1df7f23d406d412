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

// Problem is an IFDS problem: a supergraph, the flow functions on its edges and the initial seeds.
type Problem[N comparable, P comparable] interface {
	// Supergraph returns the supergraph of the problem.
	Supergraph() Supergraph[N, P]

	// FlowFunctions returns the flow functions of the problem.
	FlowFunctions() FlowFunctionMap[N]

	// InitialSeeds returns the path edges that hold without justification.
	InitialSeeds() []PathEdge[N]
}

// PartiallyBalancedProblem is a Problem that can be seeded at any node. Facts that reach the exit of a
// procedure in which a seed was registered flow to the return sites of all the callers of that procedure.
type PartiallyBalancedProblem[N comparable, P comparable] interface {
	Problem[N, P]

	// PartialFlowFunctions returns the flow functions of the problem, including the unbalanced return
	// functions.
	PartialFlowFunctions() PartialFlowFunctionMap[N]

	// FakeEntry returns the node used as the source of the path edges of seeds registered at n. All the nodes
	// of a procedure should share the same fake entry.
	FakeEntry(n N) N
}

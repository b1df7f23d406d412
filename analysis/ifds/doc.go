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

/*
Package ifds implements the IFDS tabulation algorithm (Reps, Horwitz and Sagiv, POPL'95) over an exploded
inter-procedural supergraph, together with its partially balanced extension for demand-driven queries.

A client describes its analysis as a [Problem]: a [Supergraph], a [FlowFunctionMap] giving the transfer
function of every edge kind, and the initial seeds. The [Solver] computes the set of path edges reachable from
the seeds, and exposes the facts reaching each node through a [Result]:

	solver, err := ifds.NewSolver[N, P](problem, ifds.DefaultOptions())
	res, err := solver.Solve(ifds.NeverCancel)
	facts := res.FactsAt(node)

Exhaustive analyses seed facts at procedure entries only. Demand-driven analyses use the
[PartiallyBalancedSolver], which accepts seeds at any node ([PartiallyBalancedSolver.AddSeedAt]) and lets the
facts reaching the exit of a seeded procedure flow to every caller through the problem's unbalanced return
functions.

# Facts

Facts are small integers drawn from a finite universe; [Zero] is the fact that always holds. A [Domain] maps
client values to facts. The solver never treats [Zero] specially: flow functions decide what happens to it.

# Cancellation

[Solver.Solve] polls a [Monitor] every [Options.CheckEvery] iterations. A cancelled solve returns a [Result]
whose Complete field is false; the facts it reports are a sound subset of the fixed point and a subsequent call
to Solve resumes where the cancelled one stopped.

# Contract violations

A malformed problem (a missing flow function, a binary function where a unary one is required, a fact outside
the declared universe) aborts the solve with a [*ContractViolation]. The solver stays in that failed state.
*/
package ifds

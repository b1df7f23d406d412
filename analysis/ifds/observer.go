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

import "github.com/awslabs/ar-go-ifds/analysis/config"

// Observer receives the events of a solve. Observers must not modify the solver.
type Observer[N comparable] interface {
	// PathEdgeAdded is called once for every new path edge, seeds included.
	PathEdgeAdded(e PathEdge[N])

	// SummaryAdded is called when the solver learns that <entry, d1> reaches <exit, d2>.
	SummaryAdded(entry N, d1 Fact, exit N, d2 Fact)

	// UnbalancedSeed is called when the partially balanced solver creates a seed at a return site of a caller
	// of the procedure of exit.
	UnbalancedSeed(exit N, seed PathEdge[N])
}

// LoggingObserver prints the events of a solve at trace level.
type LoggingObserver[N comparable] struct {
	Logger *config.LogGroup
}

// PathEdgeAdded logs e.
func (o LoggingObserver[N]) PathEdgeAdded(e PathEdge[N]) {
	o.Logger.Tracef("path edge %s\n", e)
}

// SummaryAdded logs the summary edge.
func (o LoggingObserver[N]) SummaryAdded(entry N, d1 Fact, exit N, d2 Fact) {
	o.Logger.Tracef("summary <%v,%v> => <%v,%v>\n", entry, d1, exit, d2)
}

// UnbalancedSeed logs the seed.
func (o LoggingObserver[N]) UnbalancedSeed(exit N, seed PathEdge[N]) {
	o.Logger.Tracef("unbalanced return from %v: new seed %s\n", exit, seed)
}

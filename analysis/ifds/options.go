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

// UnbalancedExitPolicy decides which path edges reaching an exit trigger unbalanced returns in the partially
// balanced solver.
type UnbalancedExitPolicy string

const (
	// UnbalancedExitsAnchor triggers unbalanced returns only for the path edges whose source is the anchor of
	// a seed. Path edges that entered the procedure through an analyzed call return through summaries only.
	UnbalancedExitsAnchor UnbalancedExitPolicy = "anchor"

	// UnbalancedExitsProcedure triggers unbalanced returns for every path edge reaching an exit of a procedure
	// in which some seed was registered.
	UnbalancedExitsProcedure UnbalancedExitPolicy = "procedure"
)

// Options controls the solver.
type Options struct {
	// Worklist is the order in which path edges are processed
	Worklist WorklistKind

	// CheckEvery is the number of iterations between two queries to the monitor. Values <= 0 mean every
	// iteration.
	CheckEvery int

	// UnbalancedExits is the policy of the partially balanced solver
	UnbalancedExits UnbalancedExitPolicy

	// FactBound, if positive, is the size of the fact universe. Flow functions returning a fact outside
	// [0, FactBound) violate the contract of the problem.
	FactBound int
}

// DefaultOptions returns the default solver options.
func DefaultOptions() Options {
	return Options{
		Worklist:        FIFO,
		CheckEvery:      1,
		UnbalancedExits: UnbalancedExitsAnchor,
	}
}

// OptionsFromConfig returns the solver options set in the config. Unset values take their default.
func OptionsFromConfig(c *config.Config) Options {
	opts := DefaultOptions()
	if c == nil {
		return opts
	}
	if c.Worklist != "" {
		opts.Worklist = WorklistKind(c.Worklist)
	}
	if c.CheckEvery > 0 {
		opts.CheckEvery = c.CheckEvery
	}
	if c.UnbalancedExits != "" {
		opts.UnbalancedExits = UnbalancedExitPolicy(c.UnbalancedExits)
	}
	return opts
}

func (o Options) checkEvery() int {
	if o.CheckEvery <= 0 {
		return 1
	}
	return o.CheckEvery
}

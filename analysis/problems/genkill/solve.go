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
	"fmt"
	"io"
	"strings"

	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	sg "github.com/awslabs/ar-go-ifds/analysis/supergraph"
	"github.com/awslabs/ar-go-ifds/internal/formatutil"
)

// Result is the result of solving a gen/kill problem
type Result = ifds.Result[*sg.Node, *sg.Procedure]

// Solve solves the problem. Problems with interior seeds are solved with the partially balanced solver. The
// events of the solver are logged when the logger is at trace level.
func Solve(p *Problem, opts ifds.Options, monitor ifds.Monitor, logger *config.LogGroup) (*Result, error) {
	opts.FactBound = p.Facts.Size()
	var solver *ifds.Solver[*sg.Node, *sg.Procedure]
	var partial *ifds.PartiallyBalancedSolver[*sg.Node, *sg.Procedure]
	if p.PartiallyBalanced() {
		s, err := ifds.NewPartiallyBalancedSolver[*sg.Node, *sg.Procedure](p, opts)
		if err != nil {
			return nil, err
		}
		partial, solver = s, s.Solver
	} else {
		s, err := ifds.NewSolver[*sg.Node, *sg.Procedure](p, opts)
		if err != nil {
			return nil, err
		}
		solver = s
	}
	if logger != nil && logger.Level() >= config.TraceLevel {
		solver.SetObserver(ifds.LoggingObserver[*sg.Node]{Logger: logger})
	}
	if partial != nil {
		for _, s := range p.interior {
			if err := partial.AddSeedAt(s.node, s.fact); err != nil {
				return nil, err
			}
		}
	}
	res, err := solver.Solve(monitor)
	if err != nil {
		return nil, fmt.Errorf("failed to solve %s: %w", p.Name, err)
	}
	if logger != nil {
		st := res.Stats()
		logger.Infof("solved %s in %d iterations: %d path edges, %d summaries, %d seeds (%d unbalanced)\n",
			p.Name, st.Iterations, st.PathEdges, st.Summaries, st.Seeds, st.UnbalancedSeeds)
	}
	return res, nil
}

// FactsAt returns the names of the facts reaching the node designated by "procedure.node"
func (p *Problem) FactsAt(res *Result, qualified string) []string {
	n := p.graph.Lookup(qualified)
	if n == nil {
		return nil
	}
	return p.FactNames(res.FactsAt(n))
}

// Label returns the facts of res at n as "{a, b}", or "" if n is not reached
func (p *Problem) Label(res *Result, n *sg.Node) string {
	facts := res.FactsAt(n)
	if len(facts) == 0 {
		return ""
	}
	return "{" + strings.Join(p.FactNames(facts), ", ") + "}"
}

// WriteFacts prints the facts reaching every node, one node per line. Nodes that are not reached are omitted.
func (p *Problem) WriteFacts(w io.Writer, res *Result) error {
	for _, n := range res.ReachedNodes() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", formatutil.Bold(n), p.Label(res, n)); err != nil {
			return err
		}
	}
	if !res.Complete {
		if _, err := fmt.Fprintln(w, formatutil.Yellow("(incomplete: the solver was cancelled)")); err != nil {
			return err
		}
	}
	return nil
}

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
	"fmt"
	"runtime"

	"github.com/awslabs/ar-go-ifds/analysis"
	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	"github.com/awslabs/ar-go-ifds/analysis/ssagraph"
	"github.com/awslabs/ar-go-ifds/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// Result is the result of a taint analysis
type Result struct {
	// Alarms are sorted by the position of their sink, then of their source
	Alarms []Alarm

	// Stats adds up the statistics of the solvers of the analysis
	Stats ifds.Stats

	// Queries is the number of solvers used
	Queries int

	// Complete is false when some solver was cancelled
	Complete bool
}

// Analyze runs the exhaustive taint analysis of spec on g. The zero fact holds at the entries of the roots.
func Analyze(g *ssagraph.Graph, spec config.TaintSpec, roots []*ssa.Function, cfg *config.Config,
	monitor ifds.Monitor, logger *config.LogGroup) (*Result, error) {
	x := newIndex(g, spec)
	p := newProblem(x)
	for _, root := range roots {
		if entry := g.EntryOf(root); entry != nil {
			p.seeds = append(p.seeds, ifds.NewPathEdge(entry, ifds.Zero, entry, ifds.Zero))
		}
	}
	if len(p.seeds) == 0 {
		return nil, fmt.Errorf("none of the %d roots is in the supergraph", len(roots))
	}
	logger.Infof("taint analysis: %d sources, %d sinks, %d roots\n", len(x.sources), len(x.sinks), len(p.seeds))

	solver, err := ifds.NewSolver[*ssagraph.Node, *ssa.Function](p, ifds.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if logger.Level() >= config.TraceLevel {
		solver.SetObserver(ifds.LoggingObserver[*ssagraph.Node]{Logger: logger})
	}
	res, err := solver.Solve(monitor)
	if err != nil {
		return nil, fmt.Errorf("taint analysis failed: %w", err)
	}
	result := &Result{
		Alarms:   p.alarms(res),
		Stats:    res.Stats(),
		Queries:  1,
		Complete: res.Complete,
	}
	result.finish(cfg, logger)
	return result, nil
}

type queryResult struct {
	alarms   []Alarm
	stats    ifds.Stats
	complete bool
	err      error
}

// AnalyzeDemand runs one demand-driven query per source of spec in g. Each query seeds the value returned by
// its source at the return site of the source call, and lets the facts reaching the exit of a function flow to
// all its callers. Queries run in parallel.
func AnalyzeDemand(g *ssagraph.Graph, spec config.TaintSpec, cfg *config.Config, monitor ifds.Monitor,
	logger *config.LogGroup) (*Result, error) {
	x := newIndex(g, spec)
	logger.Infof("demand-driven taint analysis: %d sources, %d sinks\n", len(x.sources), len(x.sinks))
	opts := ifds.OptionsFromConfig(cfg)
	queries := funcutil.MapParallel(x.sources, func(source *ssagraph.Node) queryResult {
		return x.query(source, opts, monitor, logger)
	}, runtime.NumCPU())

	result := &Result{Complete: true}
	for _, q := range queries {
		if q.err != nil {
			return nil, q.err
		}
		result.Alarms = append(result.Alarms, q.alarms...)
		result.Stats = addStats(result.Stats, q.stats)
		result.Queries++
		result.Complete = result.Complete && q.complete
	}
	result.finish(cfg, logger)
	return result, nil
}

func (x *index) query(source *ssagraph.Node, opts ifds.Options, monitor ifds.Monitor,
	logger *config.LogGroup) queryResult {
	value := callValue(source)
	if value == nil {
		return queryResult{complete: true}
	}
	p := newProblem(x)
	solver, err := ifds.NewPartiallyBalancedSolver[*ssagraph.Node, *ssa.Function](p, opts)
	if err != nil {
		return queryResult{err: err}
	}
	if logger.Level() >= config.TraceLevel {
		solver.SetObserver(ifds.LoggingObserver[*ssagraph.Node]{Logger: logger})
	}
	if err := solver.AddSeedAt(x.graph.ReturnSiteOf(source), p.taint(source, value)); err != nil {
		return queryResult{err: err}
	}
	res, err := solver.Solve(monitor)
	if err != nil {
		return queryResult{err: fmt.Errorf("query from %s failed: %w", source.Position(), err)}
	}
	logger.Debugf("query from %s: %d path edges\n", source.Position(), res.Stats().PathEdges)
	return queryResult{alarms: p.alarms(res), stats: res.Stats(), complete: res.Complete}
}

// alarms returns the tainted arguments of the sinks in res
func (p *problem) alarms(res *ifds.Result[*ssagraph.Node, *ssa.Function]) []Alarm {
	var alarms []Alarm
	for _, sink := range p.sinks {
		args := actuals(sink.CallInstr().Common())
		for _, d := range res.FactsAt(sink) {
			f, ok := p.facts.Value(d)
			if ok && funcutil.Contains(args, f.value) {
				alarms = append(alarms, Alarm{Source: f.source, Sink: sink, Value: f.value})
			}
		}
	}
	return alarms
}

func (r *Result) finish(cfg *config.Config, logger *config.LogGroup) {
	sortAlarms(r.Alarms)
	if cfg != nil && cfg.MaxAlarms > 0 && len(r.Alarms) > cfg.MaxAlarms {
		logger.Warnf("%d alarms, only reporting the first %d\n", len(r.Alarms), cfg.MaxAlarms)
		r.Alarms = r.Alarms[:cfg.MaxAlarms]
	}
	if !r.Complete {
		logger.Warnf("taint analysis was cancelled, alarms may be missing\n")
	}
	logger.Infof("taint analysis: %d alarms, %d path edges in %d queries\n",
		len(r.Alarms), r.Stats.PathEdges, r.Queries)
}

func addStats(a, b ifds.Stats) ifds.Stats {
	return ifds.Stats{
		Iterations:      a.Iterations + b.Iterations,
		PathEdges:       a.PathEdges + b.PathEdges,
		Summaries:       a.Summaries + b.Summaries,
		Seeds:           a.Seeds + b.Seeds,
		UnbalancedSeeds: a.UnbalancedSeeds + b.UnbalancedSeeds,
	}
}

// Run builds the supergraph of prog and runs the taint analysis of every taint problem of the config. The
// call graph is computed with the algorithm of the config, and the supergraph is restricted to the functions
// reachable from the main packages that match the package filter.
func Run(prog *ssa.Program, cfg *config.Config, demand bool, monitor ifds.Monitor,
	logger *config.LogGroup) ([]*Result, error) {
	if len(cfg.TaintProblems) == 0 {
		return nil, fmt.Errorf("no taint problem in the config")
	}
	g, err := ssagraph.Build(prog, cfg, logger)
	if err != nil {
		return nil, err
	}
	var results []*Result
	for i, spec := range cfg.TaintProblems {
		var res *Result
		if demand {
			res, err = AnalyzeDemand(g, spec, cfg, monitor, logger)
		} else {
			res, err = Analyze(g, spec, analysis.Roots(prog), cfg, monitor, logger)
		}
		if err != nil {
			return nil, fmt.Errorf("taint problem %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

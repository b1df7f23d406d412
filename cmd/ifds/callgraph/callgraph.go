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

// Package callgraph implements the front-end of the ifds callgraph tool, which prints the functions of the
// supergraph built for a program in the order the analyses visit them.
package callgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/awslabs/ar-go-ifds/analysis"
	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ssagraph"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/tools"
	"github.com/awslabs/ar-go-ifds/internal/formatutil"
	"golang.org/x/tools/go/ssa"
)

const usage = ` Print the functions of the supergraph of your packages, callees first.
Usage:
  ifds callgraph [options] <package path(s)>
Examples:
  % ifds callgraph -config config.yaml package...
  % ifds callgraph -cycles package...
  % ifds callgraph -stats -config config.yaml package...
`

// Flags represents the parsed flags of the callgraph tool.
type Flags struct {
	tools.CommonFlags
	cycles bool
	stats  bool
}

// NewFlags returns the parsed flags of the callgraph tool with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("callgraph")
	cycles := flags.FlagSet.Bool("cycles", false, "only print the recursive components and their elementary cycles")
	stats := flags.FlagSet.Bool("stats", false, "print the statistics of the supergraph before the functions")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, cycles: *cycles, stats: *stats}, nil
}

// Run builds the supergraph of the program of the flags and prints its functions to w.
func Run(flags Flags, w io.Writer) error {
	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	program, _, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, flags.WithTest, flags.FlagSet.Args())
	if err != nil {
		return fmt.Errorf("could not load program: %v", err)
	}
	g, err := ssagraph.Build(program, cfg, logger)
	if err != nil {
		return err
	}
	if flags.stats {
		if err := WriteStatistics(w, g.Statistics()); err != nil {
			return err
		}
	}
	return Write(w, g, flags.cycles)
}

// WriteStatistics prints s to w, one statistic per line.
func WriteStatistics(w io.Writer, s ssagraph.Statistics) error {
	_, err := fmt.Fprintf(w, "# functions:    %d (%d recursive)\n"+
		"# blocks:       %d\n"+
		"# instructions: %d (%d defers)\n"+
		"# nodes:        %d\n"+
		"# calls:        %d (%d unresolved)\n",
		s.Functions, s.RecursiveFunctions, s.Blocks, s.Instructions, s.Defers, s.Nodes, s.Calls, s.UnresolvedCalls)
	return err
}

// Write prints the functions of g to w, one strongly connected component per line. If cycles is true, only the
// recursive components are printed, followed by the elementary cycles of the graph.
func Write(w io.Writer, g *ssagraph.Graph, cycles bool) error {
	for _, scc := range g.Components() {
		recursive := g.IsRecursive(scc[0])
		if cycles && !recursive {
			continue
		}
		line := names(scc)
		if recursive {
			line = formatutil.Yellow(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if !cycles {
		return nil
	}
	for _, cycle := range g.Cycles() {
		if _, err := fmt.Fprintf(w, "cycle: %s\n", names(cycle)); err != nil {
			return err
		}
	}
	return nil
}

func names(funcs []*ssa.Function) string {
	s := make([]string, len(funcs))
	for i, f := range funcs {
		s[i] = f.String()
	}
	return strings.Join(s, " ")
}

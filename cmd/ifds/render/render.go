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

// Package render implements the front-end of the ifds render tool, which prints the supergraph of a gen/kill
// problem in DOT format, labelling each node with the facts that reach it.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/supergraph"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/solve"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/tools"
)

const usage = ` Render the supergraph of a gen/kill problem with the facts of its solution.
Usage:
  ifds render [options] <problem.yaml>
Examples:
  % ifds render -o chain.dot problem.yaml
  % ifds render problem.yaml | dot -Tsvg > chain.svg
`

// Flags represents the parsed flags of the render tool.
type Flags struct {
	tools.CommonFlags
	output string
}

// NewFlags returns the parsed flags of the render tool with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	output := flags.FlagSet.String("o", "", "output file; standard output if empty")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	if common.FlagSet.NArg() != 1 {
		return Flags{}, fmt.Errorf("expected exactly one problem file, got %d", common.FlagSet.NArg())
	}
	return Flags{CommonFlags: common, output: *output}, nil
}

// Run solves the problem of the flags and writes its DOT rendering to the output file, or to w if no output
// file was given.
func Run(flags Flags, w io.Writer) error {
	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	monitor, stop := flags.Monitor()
	defer stop()

	p, res, err := solve.Load(flags.FlagSet.Arg(0), cfg, monitor, logger)
	if err != nil {
		return err
	}
	dot, err := supergraph.RenderDOT(p.Graph(), p.Name, func(n *supergraph.Node) string {
		return p.Label(res, n)
	})
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", p.Name, err)
	}
	if flags.output == "" {
		_, err = w.Write(dot)
		return err
	}
	if err := os.WriteFile(flags.output, dot, 0644); err != nil {
		return err
	}
	logger.Infof("wrote %s\n", flags.output)
	return nil
}

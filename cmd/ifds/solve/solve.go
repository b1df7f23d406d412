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

// Package solve implements the front-end of the ifds solve tool, which solves gen/kill problems described in
// YAML files and prints the facts reaching every node.
package solve

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	"github.com/awslabs/ar-go-ifds/analysis/problems/genkill"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/tools"
)

const usage = ` Solve gen/kill problems and print the facts reaching every node.
Usage:
  ifds solve [options] <problem.yaml>...
Examples:
  % ifds solve -worklist lifo problem.yaml
`

// Flags represents the parsed flags of the solve tool.
type Flags struct {
	tools.CommonFlags
	worklist string
}

// NewFlags returns the parsed flags of the solve tool with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("solve")
	worklist := flags.FlagSet.String("worklist", "", "override the worklist order of the config: fifo or lifo")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	if common.FlagSet.NArg() == 0 {
		return Flags{}, fmt.Errorf("expected at least one problem file")
	}
	return Flags{CommonFlags: common, worklist: *worklist}, nil
}

// Run solves the problems of the flags and prints their facts to w.
func Run(flags Flags, w io.Writer) error {
	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	if flags.worklist != "" {
		cfg.Worklist = flags.worklist
	}
	logger := config.NewLogGroup(cfg)
	monitor, stop := flags.Monitor()
	defer stop()

	for _, filename := range flags.FlagSet.Args() {
		p, res, err := Load(filename, cfg, monitor, logger)
		if err != nil {
			return err
		}
		if flags.FlagSet.NArg() > 1 {
			fmt.Fprintf(w, "# %s\n", p.Name)
		}
		if err := p.WriteFacts(w, res); err != nil {
			return err
		}
	}
	return nil
}

// Load reads, builds and solves the problem in filename.
func Load(filename string, cfg *config.Config, monitor ifds.Monitor,
	logger *config.LogGroup) (*genkill.Problem, *genkill.Result, error) {
	spec, err := genkill.LoadSpec(filename)
	if err != nil {
		return nil, nil, err
	}
	p, err := genkill.Build(spec, logger)
	if err != nil {
		return nil, nil, err
	}
	res, err := genkill.Solve(p, ifds.OptionsFromConfig(cfg), monitor, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

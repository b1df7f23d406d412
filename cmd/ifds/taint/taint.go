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

// Package taint implements the front-end of the ifds taint tool, which runs the IFDS taint analysis of the
// config on a program and prints the alarms.
package taint

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/awslabs/ar-go-ifds/analysis"
	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/problems/taint"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/tools"
	"github.com/awslabs/ar-go-ifds/internal/formatutil"
	"golang.org/x/tools/go/ssa"
)

const usage = ` Perform an IFDS taint analysis on your packages.
Usage:
  ifds taint [options] <package path(s)>
Examples:
  % ifds taint -config config.yaml package...
  % ifds taint -demand -timeout 30s -config config.yaml package...
`

// Flags represents the parsed flags of the taint tool.
type Flags struct {
	tools.CommonFlags
	demand bool
}

// NewFlags returns the parsed flags of the taint tool with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("taint")
	demand := flags.FlagSet.Bool("demand", false, "solve one partially balanced query per source instead of "+
		"one exhaustive problem from the main functions")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, demand: *demand}, nil
}

// Analyze loads the program of the flags and runs the taint problems of cfg on it.
func Analyze(flags tools.CommonFlags, cfg *config.Config, demand bool,
	logger *config.LogGroup) ([]*taint.Result, error) {
	logger.Infof("%s\n", formatutil.Faint("ifds taint tool - "+analysis.Version))
	logger.Infof("%s\n", formatutil.Faint("Reading sources"))
	program, _, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, flags.WithTest, flags.FlagSet.Args())
	if err != nil {
		return nil, fmt.Errorf("could not load program: %v", err)
	}

	monitor, stop := flags.Monitor()
	defer stop()

	start := time.Now()
	results, err := taint.Run(program, cfg, demand, monitor, logger)
	if err != nil {
		return nil, fmt.Errorf("taint analysis failed: %w", err)
	}
	logger.Infof("%s\n", strings.Repeat("*", 80))
	logger.Infof("Analysis took %3.4f s\n", time.Since(start).Seconds())
	return results, nil
}

// Run runs the taint analysis with flags and prints the alarms to w.
func Run(flags Flags, w io.Writer) error {
	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	results, err := Analyze(flags.CommonFlags, cfg, flags.demand, logger)
	if err != nil {
		return err
	}
	alarms := 0
	for _, res := range results {
		alarms += len(res.Alarms)
		if err := taint.WriteAlarms(w, res); err != nil {
			return err
		}
	}
	if alarms == 0 {
		logger.Infof("RESULT:\n\t\t%s\n", formatutil.Green("No taint flows detected"))
	} else {
		logger.Errorf("RESULT:\n\t\t%s\n", formatutil.Red(fmt.Sprintf("%d taint flows detected!", alarms)))
	}
	return nil
}

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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-ifds/analysis"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/annotate"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/callgraph"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/render"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/solve"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/taint"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/tools"
)

const usage = `ifds: IFDS dataflow analyses for Go
Usage:
  ifds [tool] [options] <file or package path(s)>
Tools:
  - solve: solves gen/kill problems described in YAML files and prints the facts at every node
  - render: prints the supergraph of a gen/kill problem in DOT format, labelled with its solution
  - taint: performs an IFDS taint analysis on a given program
  - annotate: inserts comments at the sources and sinks of the taint alarms of a program
  - callgraph: prints the functions of the supergraph of a program, callees first
Examples:
  Solve a problem: ifds solve problem.yaml
  Run the taint analysis: ifds taint --config=config.yaml main.go`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "solve":
		flags, err := solve.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := solve.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "taint":
		flags, err := taint.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := taint.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "annotate":
		flags, err := annotate.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := annotate.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "callgraph":
		flags, err := callgraph.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := callgraph.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}

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

// Package annotate implements the front-end of the ifds annotate tool, which runs the taint analysis and
// inserts a comment before every source and sink of an alarm.
package annotate

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-ifds/analysis/annotate"
	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/taint"
	"github.com/awslabs/ar-go-ifds/cmd/ifds/tools"
)

const usage = ` Annotate the sources and sinks of the taint alarms in your packages.
Usage:
  ifds annotate [options] <package path(s)>
Examples:
  % ifds annotate -config config.yaml package...
  % ifds annotate -write -config config.yaml package...
`

// Flags represents the parsed flags of the annotate tool.
type Flags struct {
	tools.CommonFlags
	demand bool
	write  bool
}

// NewFlags returns the parsed flags of the annotate tool with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("annotate")
	demand := flags.FlagSet.Bool("demand", false, "solve one partially balanced query per source")
	write := flags.FlagSet.Bool("write", false, "overwrite the annotated files instead of printing them")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, demand: *demand, write: *write}, nil
}

// Run runs the taint analysis with flags and annotates the files with alarms. The annotated files are
// printed to w, each preceded by its name, unless the write flag is set.
func Run(flags Flags, w io.Writer) error {
	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	results, err := taint.Analyze(flags.CommonFlags, cfg, flags.demand, logger)
	if err != nil {
		return err
	}
	notes := annotate.FromAlarms(results)
	for _, filename := range notes.Files() {
		src, err := annotate.File(filename, notes[filename])
		if err != nil {
			return err
		}
		if flags.write {
			info, err := os.Stat(filename)
			if err != nil {
				return err
			}
			if err := os.WriteFile(filename, src, info.Mode().Perm()); err != nil {
				return err
			}
			logger.Infof("annotated %s\n", filename)
			continue
		}
		if _, err := fmt.Fprintf(w, "// %s\n%s", filename, src); err != nil {
			return err
		}
	}
	if len(notes) == 0 {
		logger.Infof("no alarm to annotate\n")
	}
	return nil
}

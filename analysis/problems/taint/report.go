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
	"go/token"
	"io"

	"github.com/awslabs/ar-go-ifds/analysis/ssagraph"
	"github.com/awslabs/ar-go-ifds/internal/formatutil"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
)

// Alarm is a tainted value passed to a sink
type Alarm struct {
	// Source is the call node of the source that tainted the value
	Source *ssagraph.Node

	// Sink is the call node of the sink
	Sink *ssagraph.Node

	// Value is the argument of the sink that carries the taint
	Value ssa.Value
}

// SourcePosition returns the position of the source call
func (a Alarm) SourcePosition() token.Position { return a.Source.Position() }

// SinkPosition returns the position of the sink call
func (a Alarm) SinkPosition() token.Position { return a.Sink.Position() }

func (a Alarm) String() string {
	return fmt.Sprintf("%s -> %s", a.SourcePosition(), a.SinkPosition())
}

func positionLess(a, b token.Position) bool {
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

func sortAlarms(alarms []Alarm) {
	slices.SortStableFunc(alarms, func(a, b Alarm) bool {
		if a.SinkPosition() != b.SinkPosition() {
			return positionLess(a.SinkPosition(), b.SinkPosition())
		}
		return positionLess(a.SourcePosition(), b.SourcePosition())
	})
}

// WriteAlarms prints the alarms of res to w
func WriteAlarms(w io.Writer, res *Result) error {
	for _, a := range res.Alarms {
		_, err := fmt.Fprintf(w, "%s tainted data reaches %s\n\tsource: %s\n\tsink:   %s\n\tvalue:  %s\n",
			formatutil.Red("[TAINT]"), formatutil.Bold(a.Sink.CallInstr().Common()),
			a.SourcePosition(), a.SinkPosition(), formatutil.Sanitize(a.Value.String()))
		if err != nil {
			return err
		}
	}
	if !res.Complete {
		if _, err := fmt.Fprintln(w, formatutil.Yellow("(incomplete: the analysis was cancelled)")); err != nil {
			return err
		}
	}
	return nil
}

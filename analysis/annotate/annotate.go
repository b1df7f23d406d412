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

// Package annotate writes the findings of the analyses back into Go source files, as comments placed before
// the statements they concern.
package annotate

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"os"

	"github.com/awslabs/ar-go-ifds/analysis/problems/taint"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/dave/dst/dstutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Prefix starts every comment inserted in the source
const Prefix = "// ifds: "

// Notes are messages to attach to source lines, by file name and line number
type Notes map[string]map[int][]string

// Add attaches msg to the line of pos. Duplicate messages are ignored.
func (n Notes) Add(pos token.Position, msg string) {
	if n[pos.Filename] == nil {
		n[pos.Filename] = map[int][]string{}
	}
	if !slices.Contains(n[pos.Filename][pos.Line], msg) {
		n[pos.Filename][pos.Line] = append(n[pos.Filename][pos.Line], msg)
	}
}

// Files returns the names of the files with notes, sorted
func (n Notes) Files() []string {
	files := maps.Keys(n)
	slices.Sort(files)
	return files
}

// FromAlarms returns notes on the sources and sinks of the taint alarms
func FromAlarms(results []*taint.Result) Notes {
	notes := Notes{}
	for _, res := range results {
		for _, a := range res.Alarms {
			src, sink := a.SourcePosition(), a.SinkPosition()
			notes.Add(sink, fmt.Sprintf("tainted data from %s:%d reaches this sink", src.Filename, src.Line))
			notes.Add(src, fmt.Sprintf("source of tainted data reaching %s:%d", sink.Filename, sink.Line))
		}
	}
	return notes
}

// Source returns src, the content of the file named filename, with the messages of lines placed as comments
// before the first statement starting on each line. Messages on lines without statement are dropped.
func Source(filename string, src []byte, lines map[int][]string) ([]byte, error) {
	fset := token.NewFileSet()
	d := decorator.NewDecorator(fset)
	f, err := d.ParseFile(filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", filename, err)
	}
	done := map[int]bool{}
	dstutil.Apply(f, func(c *dstutil.Cursor) bool {
		stmt, ok := c.Node().(dst.Stmt)
		if !ok {
			return true
		}
		if _, block := stmt.(*dst.BlockStmt); block {
			return true
		}
		astNode, ok := d.Ast.Nodes[stmt]
		if !ok {
			return true
		}
		line := fset.Position(astNode.Pos()).Line
		if done[line] || len(lines[line]) == 0 {
			return true
		}
		done[line] = true
		msgs := slices.Clone(lines[line])
		slices.Sort(msgs)
		for _, msg := range msgs {
			stmt.Decorations().Start.Append(Prefix + msg)
		}
		return true
	}, nil)

	var b bytes.Buffer
	if err := decorator.Fprint(&b, f); err != nil {
		return nil, fmt.Errorf("could not print %s: %w", filename, err)
	}
	return b.Bytes(), nil
}

// File reads the file named filename and returns its annotated source
func File(filename string, lines map[int][]string) ([]byte, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", filename, err)
	}
	return Source(filename, src, lines)
}

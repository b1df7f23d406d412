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

package annotate_test

import (
	"bytes"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-ifds/analysis/annotate"
	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/analysis/ifds"
	"github.com/awslabs/ar-go-ifds/analysis/problems/taint"
	"github.com/awslabs/ar-go-ifds/internal/analysistest"
)

const program = `package main

func source() string {
	return "secret"
}

func sink(s string) {}

func main() {
	x := source()
	y := x + "!"
	if y != "" {
		sink(y)
	}
}
`

// lineAfter returns the trimmed line following the first line containing comment
func lineAfter(t *testing.T, out string, comment string) string {
	t.Helper()
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		if strings.Contains(l, comment) {
			for _, next := range lines[i+1:] {
				if next = strings.TrimSpace(next); next != "" && !strings.HasPrefix(next, "//") {
					return next
				}
			}
		}
	}
	t.Fatalf("no comment %q in\n%s", comment, out)
	return ""
}

func TestSource(t *testing.T) {
	out, err := annotate.Source("main.go", []byte(program), map[int][]string{
		7:  {"no statement"},
		11: {"second", "first"},
		13: {"in branch"},
	})
	if err != nil {
		t.Fatalf("failed to annotate: %v", err)
	}
	s := string(out)
	if _, err := parser.ParseFile(token.NewFileSet(), "main.go", out, parser.ParseComments); err != nil {
		t.Fatalf("annotated source does not parse: %v\n%s", err, s)
	}
	if n := strings.Count(s, annotate.Prefix); n != 3 {
		t.Errorf("expected 3 comments, got %d:\n%s", n, s)
	}
	if strings.Contains(s, "no statement") {
		t.Errorf("expected the message on a line without statement to be dropped:\n%s", s)
	}
	if strings.Index(s, annotate.Prefix+"first") > strings.Index(s, annotate.Prefix+"second") {
		t.Errorf("expected the messages of a line to be sorted:\n%s", s)
	}
	if l := lineAfter(t, s, annotate.Prefix+"second"); l != `y := x + "!"` {
		t.Errorf("expected the comment before the assignment of y, got %q", l)
	}
	if l := lineAfter(t, s, annotate.Prefix+"in branch"); l != "sink(y)" {
		t.Errorf("expected the comment before the sink, got %q", l)
	}
}

func TestSourceParseError(t *testing.T) {
	if _, err := annotate.Source("bad.go", []byte("package"), nil); err == nil {
		t.Errorf("expected a parse error")
	}
}

func TestFromAlarms(t *testing.T) {
	p := analysistest.BuildSSA(t, map[string]string{"main.go": program})
	cfg, err := config.LoadBytes("config.yaml", []byte(`
options:
  callgraph-analysis: static
taint-problems:
  - sources:
      - method: "^source$"
    sinks:
      - method: "^sink$"
`))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(&bytes.Buffer{})
	results, err := taint.Run(p.Prog, cfg, false, ifds.NeverCancel, logger)
	if err != nil {
		t.Fatalf("taint analysis failed: %v", err)
	}
	notes := annotate.FromAlarms(results)
	if files := notes.Files(); len(files) != 1 || files[0] != "main.go" {
		t.Fatalf("expected notes on main.go only, got %v", files)
	}
	out, err := annotate.Source("main.go", []byte(program), notes["main.go"])
	if err != nil {
		t.Fatalf("failed to annotate: %v", err)
	}
	s := string(out)
	if l := lineAfter(t, s, "tainted data from main.go:10 reaches this sink"); l != "sink(y)" {
		t.Errorf("expected the alarm on the sink, got %q", l)
	}
	if l := lineAfter(t, s, "source of tainted data reaching main.go:13"); l != "x := source()" {
		t.Errorf("expected the alarm on the source, got %q", l)
	}
}

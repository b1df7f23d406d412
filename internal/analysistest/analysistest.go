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

// Package analysistest builds small Go programs in SSA form for the tests of the analyses.
package analysistest

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Program is a program built from source strings
type Program struct {
	Prog  *ssa.Program
	Pkg   *ssa.Package
	Fset  *token.FileSet
	Files []*ast.File
}

// BuildSSA type-checks and builds the package main made of files, a map from file names to sources. The test
// fails if the sources do not compile.
func BuildSSA(t *testing.T, files map[string]string) Program {
	t.Helper()
	fset := token.NewFileSet()
	names := maps.Keys(files)
	slices.Sort(names)
	var parsed []*ast.File
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, files[name], parser.ParseComments)
		if err != nil {
			t.Fatalf("failed to parse %s: %v", name, err)
		}
		parsed = append(parsed, f)
	}
	tc := &types.Config{Importer: importer.Default()}
	pkg, _, err := ssautil.BuildPackage(tc, fset, types.NewPackage("main", ""), parsed, ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatalf("failed to build SSA: %v", err)
	}
	return Program{Prog: pkg.Prog, Pkg: pkg, Fset: fset, Files: parsed}
}

// Func returns the function of the package named name. The test fails if there is no such function.
func (p Program) Func(t *testing.T, name string) *ssa.Function {
	t.Helper()
	f := p.Pkg.Func(name)
	if f == nil {
		t.Fatalf("no function %s in the program", name)
	}
	return f
}

// Match annotations of the form "@Source(id1, id2, id3)"
var SourceRegex = regexp.MustCompile(`//.*@Source\(((?:\s*\w\s*,?)+)\)`)
var SinkRegex = regexp.MustCompile(`//.*@Sink\(((?:\s*\w\s*,?)+)\)`)

// LPos is a position without a column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn returns the position without its column
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: pos.Filename}
}

// ExpectedSourceToSink looks for comments @Source(id) and @Sink(id) in the files of the program to construct
// expected flows from sources to sink in the form of a map from sink positions to all the source positions that
// reach that sink.
func (p Program) ExpectedSourceToSink() map[LPos]map[LPos]bool {
	source2sink := map[LPos]map[LPos]bool{}
	sourceIds := map[string]LPos{}

	// Get all the source positions with their identifiers
	p.visitAnnotations(SourceRegex, func(pos LPos, ident string) {
		sourceIds[ident] = pos
	})
	p.visitAnnotations(SinkRegex, func(pos LPos, ident string) {
		if sourcePos, ok := sourceIds[ident]; ok {
			if _, ok := source2sink[pos]; !ok {
				source2sink[pos] = make(map[LPos]bool)
			}
			source2sink[pos][sourcePos] = true
		}
	})
	return source2sink
}

func (p Program) visitAnnotations(r *regexp.Regexp, f func(pos LPos, ident string)) {
	for _, file := range p.Files {
		for _, c := range file.Comments {
			for _, c1 := range c.List {
				a := r.FindStringSubmatch(c1.Text)
				if len(a) <= 1 {
					continue
				}
				pos := RemoveColumn(p.Fset.Position(c1.Pos()))
				for _, ident := range strings.Split(a[1], ",") {
					f(pos, strings.TrimSpace(ident))
				}
			}
		}
	}
}

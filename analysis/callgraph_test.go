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

package analysis_test

import (
	"strings"
	"testing"

	"github.com/awslabs/ar-go-ifds/analysis"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

func loadShapes(t *testing.T) *ssa.Program {
	t.Helper()
	prog, pkgs, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, false, []string{"./testdata/shapes"})
	if err != nil {
		t.Fatalf("error loading packages: %s", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "main" {
		t.Fatalf("expected to load the main package only, got %v", pkgs)
	}
	return prog
}

// calleesOf returns the names of the functions called by the function named name in package main
func calleesOf(t *testing.T, cg *callgraph.Graph, name string) []string {
	t.Helper()
	for f, node := range cg.Nodes {
		if f == nil || f.Name() != name || f.Pkg == nil || f.Pkg.Pkg.Name() != "main" {
			continue
		}
		var callees []string
		for _, e := range node.Out {
			callees = append(callees, e.Callee.Func.String())
		}
		return callees
	}
	t.Fatalf("no function %s in the callgraph", name)
	return nil
}

func calls(callees []string, sub string) bool {
	for _, c := range callees {
		if strings.Contains(c, sub) {
			return true
		}
	}
	return false
}

func TestRoots(t *testing.T) {
	prog := loadShapes(t)
	var names []string
	for _, f := range analysis.Roots(prog) {
		names = append(names, f.Name())
	}
	if strings.Join(names, " ") != "init main" {
		t.Errorf("expected roots init and main, got %v", names)
	}
}

func TestParseCallgraphAnalysisMode(t *testing.T) {
	for _, mode := range []analysis.CallgraphAnalysisMode{
		analysis.StaticAnalysis,
		analysis.ClassHierarchyAnalysis,
		analysis.RapidTypeAnalysis,
		analysis.VariableTypeAnalysis,
	} {
		parsed, err := analysis.ParseCallgraphAnalysisMode(strings.ToUpper(mode.String()))
		if err != nil || parsed != mode {
			t.Errorf("parsing %q: got %v, %v", mode.String(), parsed, err)
		}
	}
	if _, err := analysis.ParseCallgraphAnalysisMode("pointer"); err == nil {
		t.Errorf("expected pointer analysis to be unsupported")
	}
}

func TestComputeCallgraph(t *testing.T) {
	prog := loadShapes(t)
	for _, c := range []struct {
		mode   analysis.CallgraphAnalysisMode
		square bool
		circle bool
	}{
		// static callgraphs do not resolve interface calls
		{analysis.StaticAnalysis, false, false},
		{analysis.ClassHierarchyAnalysis, true, true},
		// circle never flows to an interface
		{analysis.RapidTypeAnalysis, true, false},
		{analysis.VariableTypeAnalysis, true, false},
	} {
		t.Run(c.mode.String(), func(t *testing.T) {
			cg, err := c.mode.ComputeCallgraph(prog)
			if err != nil {
				t.Fatalf("failed to compute callgraph: %v", err)
			}
			callees := calleesOf(t, cg, "measure")
			if calls(callees, "square") != c.square {
				t.Errorf("square.area in callees of measure: expected %v, got %v", c.square, callees)
			}
			if calls(callees, "circle") != c.circle {
				t.Errorf("circle.area in callees of measure: expected %v, got %v", c.circle, callees)
			}
		})
	}
}

func TestRapidTypeAnalysisNeedsRoots(t *testing.T) {
	prog := ssa.NewProgram(nil, 0)
	if _, err := analysis.RapidTypeAnalysis.ComputeCallgraph(prog); err == nil {
		t.Errorf("expected an error without main packages")
	}
}

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

// Package genkill defines gen/kill IFDS problems over an explicit supergraph. A problem is described in YAML:
//
//	facts: [a, b]
//	procedures:
//	  - name: main
//	    nodes:
//	      - name: entry
//	        gen: [a]
//	      - name: c1
//	        call: f
//	        return: r1
//	        params: {a: [p]}
//	        returns:
//	          - {from: p, to: b}
//	      - name: r1
//	  - name: f
//	seeds:
//	  - at: main.entry
//
// Every procedure has the nodes "entry" and "exit". When a procedure lists no edges, its nodes are chained in
// order from the entry to the exit, and a call node continues at its return site.
//
// The facts at a node are transformed by the gen and kill sets of that node on every outgoing edge. On a call
// node, the gen and kill sets apply to the facts that bypass the callee.
package genkill

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ZeroName is the name of the fact that always holds
const ZeroName = "0"

// Spec is the YAML description of a problem
type Spec struct {
	Name string `yaml:"name"`

	// Facts is the universe of facts. When empty, the universe is the set of facts that are used.
	Facts []string `yaml:"facts"`

	// PartiallyBalanced makes the problem use the partially balanced solver even without interior seeds
	PartiallyBalanced bool `yaml:"partially-balanced"`

	Procedures []ProcedureSpec `yaml:"procedures"`
	Seeds      []SeedSpec      `yaml:"seeds"`

	sourceFile string
}

// ProcedureSpec describes a procedure
type ProcedureSpec struct {
	Name  string     `yaml:"name"`
	Nodes []NodeSpec `yaml:"nodes"`

	// Edges are pairs [src, dst] of node names
	Edges [][]string `yaml:"edges"`

	// Unbalanced maps the facts at the exit to the facts at the return sites of callers that were not
	// analyzed. Facts that are not mapped are killed. A nil map is the identity.
	Unbalanced map[string][]string `yaml:"unbalanced"`
}

// NodeSpec describes a node
type NodeSpec struct {
	Name string `yaml:"name"`
	// Kind is one of "normal", "call" or "return". Nodes with a callee or a return site are calls.
	Kind    string   `yaml:"kind"`
	Gen     []string `yaml:"gen"`
	Kill    []string `yaml:"kill"`
	KillAll bool     `yaml:"kill-all"`

	// Call is the name of the called procedure. A call node with a return site but no callee is an
	// unresolved call.
	Call   string `yaml:"call"`
	Return string `yaml:"return"`

	// Params maps facts at the call to facts at the entry of the callee. Unmapped facts do not enter the
	// callee; a nil map passes every fact.
	Params map[string][]string `yaml:"params"`

	// Returns maps facts at the exit of the callee to facts at the return site. A nil list returns every fact.
	Returns []ReturnSpec `yaml:"returns"`
}

// ReturnSpec maps the fact From at the exit of a callee to the fact To at the return site. If Requires is set,
// the mapping only applies when Requires held at the call site for the context From was computed in.
type ReturnSpec struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Requires string `yaml:"requires"`
}

// SeedSpec is a seed at the node At ("procedure.node"). Seeds at an entry are ordinary initial seeds unless
// Interior is set; other seeds are always interior and need the partially balanced solver.
type SeedSpec struct {
	At       string `yaml:"at"`
	Fact     string `yaml:"fact"`
	Interior bool   `yaml:"interior"`
}

// LoadSpec reads the problem in filename
func LoadSpec(filename string) (*Spec, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read problem file: %w", err)
	}
	return ParseSpec(filename, b)
}

// ParseSpec parses the problem in b. filename is only used to name the problem when it has no name.
func ParseSpec(filename string, b []byte) (*Spec, error) {
	spec := &Spec{sourceFile: filename}
	if err := yaml.Unmarshal(b, spec); err != nil {
		return nil, fmt.Errorf("could not unmarshal problem %s: %w", filename, err)
	}
	if spec.Name == "" {
		spec.Name = filename
	}
	if len(spec.Procedures) == 0 {
		return nil, fmt.Errorf("problem %s has no procedures", spec.Name)
	}
	return spec, nil
}

// SourceFile returns the file the spec was read from
func (s *Spec) SourceFile() string {
	return s.sourceFile
}

func (n NodeSpec) isCall() bool {
	return n.Kind == "call" || n.Call != "" || n.Return != ""
}

// hasRequires returns true if some return mapping depends on the call-site fact
func (n NodeSpec) hasRequires() bool {
	for _, r := range n.Returns {
		if r.Requires != "" {
			return true
		}
	}
	return false
}

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

package ssagraph

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// NodeKind is the role of a node in the supergraph
type NodeKind int

const (
	// Instr nodes are the instructions that are not calls
	Instr NodeKind = iota
	// Entry is the synthetic entry of a function
	Entry
	// Exit is the synthetic exit of a function. Return and Panic instructions flow to it.
	Exit
	// Call nodes are call, go and defer instructions
	Call
	// ReturnSite is the node after a call node, where the call returns
	ReturnSite
	// FakeEntry is the entry of the path edges of demand-driven seeds. It is not part of the graph.
	FakeEntry
)

func (k NodeKind) String() string {
	switch k {
	case Entry:
		return "entry"
	case Exit:
		return "exit"
	case Call:
		return "call"
	case ReturnSite:
		return "return"
	case FakeEntry:
		return "fake-entry"
	default:
		return "instr"
	}
}

// Node is a node of the SSA supergraph. Call and return site nodes share the call instruction they stand for.
type Node struct {
	id    int
	Func  *ssa.Function
	Instr ssa.Instruction
	Kind  NodeKind
}

// ID returns the index of the node in the graph
func (n *Node) ID() int {
	return n.id
}

// CallInstr returns the call instruction of a call or return site node, or nil
func (n *Node) CallInstr() ssa.CallInstruction {
	if n.Kind != Call && n.Kind != ReturnSite {
		return nil
	}
	c, _ := n.Instr.(ssa.CallInstruction)
	return c
}

// Pos returns the position of the instruction of the node, or the position of the function for synthetic nodes
func (n *Node) Pos() token.Pos {
	if n.Instr != nil && n.Instr.Pos().IsValid() {
		return n.Instr.Pos()
	}
	return n.Func.Pos()
}

// Position returns the position of the node in the program's files
func (n *Node) Position() token.Position {
	return n.Func.Prog.Fset.Position(n.Pos())
}

func (n *Node) String() string {
	switch n.Kind {
	case Instr:
		if v, ok := n.Instr.(ssa.Value); ok {
			return fmt.Sprintf("%s: %s = %s", n.Func.Name(), v.Name(), n.Instr)
		}
		return fmt.Sprintf("%s: %s", n.Func.Name(), n.Instr)
	case Call:
		return fmt.Sprintf("%s: call %s", n.Func.Name(), n.Instr)
	case ReturnSite:
		return fmt.Sprintf("%s: return from %s", n.Func.Name(), n.Instr)
	default:
		return fmt.Sprintf("%s: %s", n.Func.Name(), n.Kind)
	}
}

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

// Package analysisutil contains helpers to identify the functions and types of SSA programs.
package analysisutil

import (
	"fmt"
	"go/types"

	"github.com/awslabs/ar-go-ifds/analysis/config"
	"github.com/awslabs/ar-go-ifds/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// FindTypePackage finds the package declaring t or returns an error.
// Returns the package path and the name of the type declared in that package.
func FindTypePackage(t types.Type) (string, string, error) {
	switch typ := t.(type) {
	case *types.Pointer:
		return FindTypePackage(typ.Elem()) // recursive call
	case *types.Named:
		obj := typ.Obj()
		if obj == nil {
			return "", "", fmt.Errorf("could not get name")
		}
		if obj.Pkg() == nil {
			// obj is in Universe
			return "", obj.Name(), nil
		}
		return obj.Pkg().Path(), obj.Name(), nil
	case *types.Array:
		return FindTypePackage(typ.Elem())
	case *types.Slice:
		return FindTypePackage(typ.Elem())
	case *types.Map:
		return FindTypePackage(typ.Elem())
	case *types.Chan:
		return FindTypePackage(typ.Elem())
	default:
		return "", "", fmt.Errorf("%s: not a type with a package and name", typ)
	}
}

// CalleePackage returns the path of the package of the function called by c. None is returned for calls of
// builtins, dynamic calls, synthetic functions and methods of the universe.
func CalleePackage(c *ssa.CallCommon) funcutil.Optional[string] {
	if c == nil {
		return funcutil.None[string]()
	}
	if c.IsInvoke() {
		if c.Method.Pkg() == nil {
			return funcutil.None[string]()
		}
		return funcutil.Some(c.Method.Pkg().Path())
	}
	callee := c.StaticCallee()
	if callee == nil {
		return funcutil.None[string]()
	}
	if callee.Pkg == nil {
		return funcutil.None[string]()
	}
	return funcutil.Some(callee.Pkg.Pkg.Path())
}

// CalleeIdentifier returns the code identifier of the function called by c: its package, its name and the
// name of its receiver type for methods. Interface method calls are identified by the interface type.
func CalleeIdentifier(c *ssa.CallCommon) funcutil.Optional[config.CodeIdentifier] {
	return funcutil.BindOption(CalleePackage(c), func(pkg string) funcutil.Optional[config.CodeIdentifier] {
		cid := config.CodeIdentifier{Package: pkg}
		var recv *types.Var
		if c.IsInvoke() {
			cid.Method = c.Method.Name()
			if _, name, err := FindTypePackage(c.Value.Type()); err == nil {
				cid.Receiver = name
			}
			return funcutil.Some(cid)
		}
		callee := c.StaticCallee()
		if callee.Parent() != nil {
			// anonymous functions are identified by their enclosing function
			return funcutil.None[config.CodeIdentifier]()
		}
		cid.Method = callee.Name()
		recv = callee.Signature.Recv()
		if recv != nil {
			if _, name, err := FindTypePackage(recv.Type()); err == nil {
				cid.Receiver = name
			}
		}
		return funcutil.Some(cid)
	})
}

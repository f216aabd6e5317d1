// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

import (
	"github.com/dina-fouad/pyccel/fmterr"
)

// Variable is a formal parameter, result or local of a translated
// function.
type Variable struct {
	Typing
	Position fmterr.Position
	Name     string
	// IsPointer is true if the callee receives the value by address.
	IsPointer bool
	// IsOptional is true if the caller may omit the value entirely.
	IsOptional bool
	// IsCallable is true if the value is itself a function. Functions
	// with callable parameters cannot cross the boundary.
	IsCallable bool
}

var _ Expr = (*Variable)(nil)

// Pos locates the variable in the translated source.
func (v *Variable) Pos() fmterr.Position { return v.Position }

// Precedence of the node.
func (v *Variable) Precedence() int { return AtomPrecedence }

// String returns the name of the variable.
func (v *Variable) String() string { return v.Name }

// Argument is a formal parameter together with its default value, if
// any. A parameter with a default or marked optional may be omitted by
// the caller.
type Argument struct {
	Var *Variable
	// Default value substituted when the caller omits the parameter,
	// nil for a compulsory parameter.
	Default Literal
}

// Compulsory returns true if the caller must supply the argument.
func (a *Argument) Compulsory() bool {
	return a.Default == nil && !a.Var.IsOptional
}

// FunctionDef is one typed signature of a translated function.
type FunctionDef struct {
	Position  fmterr.Position
	Name      string
	Arguments []*Argument
	Results   []*Variable
	// IsPrivate signatures are never exposed to the dynamic caller.
	IsPrivate bool
	// Doc is the docstring carried into the registration table.
	Doc string
}

// Pos locates the function in the translated source.
func (f *FunctionDef) Pos() fmterr.Position { return f.Position }

// String returns the name of the function.
func (f *FunctionDef) String() string { return f.Name }

// HasCallableArgs returns true if any parameter is itself a function.
func (f *FunctionDef) HasCallableArgs() bool {
	for _, arg := range f.Arguments {
		if arg.Var.IsCallable {
			return true
		}
	}
	return false
}

// Interface is an overload group: signatures sharing one external name
// and identical parameter arity and order, disambiguated at call time
// by the argument types.
type Interface struct {
	Position  fmterr.Position
	Name      string
	Functions []*FunctionDef
}

// Pos locates the interface in the translated source.
func (i *Interface) Pos() fmterr.Position { return i.Position }

// String returns the exposed name of the overload group.
func (i *Interface) String() string { return i.Name }

// Module is the set of functions and overload groups translated from
// one source module.
type Module struct {
	Name       string
	Funcs      []*FunctionDef
	Interfaces []*Interface
	// InitFunc is the translated module initialisation function, run
	// once when the extension module is imported. Nil if the module
	// has no initialisation code.
	InitFunc *FunctionDef
}

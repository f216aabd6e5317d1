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

// Package ast defines the typed tree consumed by the code generators:
// expressions decorated with dtype, precision, rank, shape and storage
// order, variables, function signatures, overload groups and modules.
//
// Nodes are produced by upstream semantic analysis and are immutable
// inputs to this package's consumers.
package ast

import (
	"fmt"
	"strings"

	"github.com/dina-fouad/pyccel/ast/datatypes"
	"github.com/dina-fouad/pyccel/fmterr"
)

// RankUnknown marks a node whose number of dimensions is not known.
const RankUnknown = -1

// AtomPrecedence is the precedence of nodes that are not operator
// applications: variables, literals and function call results.
const AtomPrecedence = 17

// Order is the memory layout of an array. It is only meaningful for
// nodes of rank greater than one.
type Order int

const (
	// RowMajor is C ordering, the default.
	RowMajor Order = iota
	// ColMajor is Fortran ordering.
	ColMajor
)

// String representation of the order.
func (o Order) String() string {
	if o == ColMajor {
		return "F"
	}
	return "C"
}

type (
	// Dim is a per-dimension extent: a compile-time literal or a
	// symbolic expression only the oracle can reason about.
	Dim interface {
		fmt.Stringer
		dim()
	}

	// DimInt is a literal extent.
	DimInt int64

	// DimSym is an extent given by a named symbol of the translated
	// source, such as the size of a formal array parameter.
	DimSym string
)

func (DimInt) dim() {}
func (DimSym) dim() {}

// String representation of the literal extent.
func (d DimInt) String() string { return fmt.Sprintf("%d", int64(d)) }

// String representation of the symbolic extent.
func (d DimSym) String() string { return string(d) }

// Shape is the ordered sequence of per-dimension extents of a node.
// A nil shape means the shape is unknown.
type Shape []Dim

// String representation of the shape.
func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = d.String()
	}
	return "(" + strings.Join(dims, ", ") + ")"
}

// Oracle proves properties of dimension expressions. It stands in for
// the symbolic engine of the full compiler: this package only relies on
// the three questions below.
type Oracle interface {
	// Equal returns true if the two extents are provably equal.
	Equal(a, b Dim) bool
	// Constant returns the value of an extent if it is provably a
	// compile-time constant.
	Constant(a Dim) (int64, bool)
	// DifferenceConstant returns true if a-b is provably a
	// compile-time constant.
	DifferenceConstant(a, b Dim) bool
}

// BasicOracle reasons about literal and identical symbolic extents. It
// proves nothing beyond that; the full compiler plugs in a symbolic
// engine instead.
type BasicOracle struct{}

var _ Oracle = BasicOracle{}

// Equal returns true for equal literals and for the same symbol name.
func (BasicOracle) Equal(a, b Dim) bool {
	switch aT := a.(type) {
	case DimInt:
		bT, ok := b.(DimInt)
		return ok && aT == bT
	case DimSym:
		bT, ok := b.(DimSym)
		return ok && aT == bT
	default:
		return false
	}
}

// Constant returns the value of a literal extent.
func (BasicOracle) Constant(a Dim) (int64, bool) {
	aT, ok := a.(DimInt)
	return int64(aT), ok
}

// DifferenceConstant returns true when a-b is provably constant: both
// extents are literals, or they are the same symbol.
func (o BasicOracle) DifferenceConstant(a, b Dim) bool {
	if _, aConst := o.Constant(a); aConst {
		_, bConst := o.Constant(b)
		return bConst
	}
	return o.Equal(a, b)
}

type (
	// Node is an element of the typed tree.
	Node interface {
		fmt.Stringer
		// Pos locates the node in the translated source.
		Pos() fmterr.Position
	}

	// Expr is a typed expression node.
	Expr interface {
		Node
		// Type returns the semantic type of the node's value.
		Type() datatypes.Type
		// Rank returns the number of dimensions, RankUnknown if not known.
		Rank() int
		// Shape returns the per-dimension extents, nil if not known.
		Shape() Shape
		// Order returns the memory layout, meaningful for Rank() > 1.
		Order() Order
		// Precedence of the node when laid out as source text.
		Precedence() int
	}
)

// Typing is the inference decoration of an expression node: its dtype
// and precision, rank, shape and storage order.
type Typing struct {
	DType  datatypes.Type
	NDim   int
	Dims   Shape
	Layout Order
}

// Type returns the semantic type of the node's value.
func (t *Typing) Type() datatypes.Type { return t.DType }

// Rank returns the number of dimensions, RankUnknown if not known.
func (t *Typing) Rank() int { return t.NDim }

// Shape returns the per-dimension extents, nil if not known.
func (t *Typing) Shape() Shape { return t.Dims }

// Order returns the memory layout.
func (t *Typing) Order() Order { return t.Layout }

// ScalarTyping is the decoration of a rank-0 node of a given type.
func ScalarTyping(typ datatypes.Type) Typing {
	return Typing{DType: typ, NDim: 0, Dims: Shape{}}
}

// ShapesEqual returns true if two known shapes have the same length and
// provably equal extents.
func ShapesEqual(oracle Oracle, a, b Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !oracle.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

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

package operators

import (
	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/ast/datatypes"
	"github.com/dina-fouad/pyccel/fmterr"
)

// inferTyping computes the result dtype, precision, rank, shape and
// storage order of an operator node from its already-typed operands.
func inferTyping(oracle ast.Oracle, pos fmterr.Position, kind Kind, args []ast.Expr) (ast.Typing, error) {
	switch {
	case kind == Paren, kind == UnaryPlus, kind == UnaryMinus:
		return copyTyping(args[0]), nil
	case kind == Ternary:
		return inferTernary(oracle, pos, args)
	case kind.IsBoolean():
		// Comparisons, and/or, is/is-not: always a scalar boolean.
		// Validity of the operand types is the caller's concern.
		return ast.ScalarTyping(datatypes.Default(datatypes.Bool)), nil
	case kind.IsArithmetic():
		return inferArithmetic(oracle, pos, kind, args)
	default:
		return ast.Typing{}, fmterr.Unsupportedf(pos, "operator %s is not supported", kind.String())
	}
}

func copyTyping(arg ast.Expr) ast.Typing {
	return ast.Typing{
		DType:  arg.Type(),
		NDim:   arg.Rank(),
		Dims:   arg.Shape(),
		Layout: arg.Order(),
	}
}

// inferArithmetic partitions the operands into kind buckets and picks
// the highest bucket present, complex > real > integer, where booleans
// count as integers. Strings only support concatenation.
func inferArithmetic(oracle ast.Oracle, pos fmterr.Position, kind Kind, args []ast.Expr) (ast.Typing, error) {
	typ, err := arithmeticType(pos, kind, args)
	if err != nil {
		return ast.Typing{}, err
	}
	typing := ast.Typing{DType: typ}
	if typ.Kind == datatypes.String {
		typing.NDim = 0
		typing.Dims = ast.Shape{}
		return typing, nil
	}
	typing.NDim, typing.Dims, err = arithmeticShape(oracle, pos, args)
	if err != nil {
		return ast.Typing{}, err
	}
	if typing.NDim > 1 {
		typing.Layout = commonOrder(args)
	}
	return typing, nil
}

func arithmeticType(pos fmterr.Position, kind Kind, args []ast.Expr) (datatypes.Type, error) {
	var integers, reals, complexes, strs []ast.Expr
	for _, a := range args {
		switch a.Type().Kind {
		case datatypes.Int, datatypes.Bool:
			integers = append(integers, a)
		case datatypes.Real:
			reals = append(reals, a)
		case datatypes.Complex:
			complexes = append(complexes, a)
		case datatypes.String:
			strs = append(strs, a)
		}
	}
	switch {
	case len(strs) > 0:
		if kind != Add {
			return datatypes.Type{}, fmterr.Unsupportedf(pos, "unsupported operand type(s) for %s: 'str' and 'str'", kind.symbol())
		}
		if len(strs) != len(args) {
			return datatypes.Type{}, fmterr.Semanticf(pos, "cannot mix string and numeric operands in %s", kind.symbol())
		}
		return datatypes.StringType, nil
	case len(complexes) > 0:
		return datatypes.Type{Kind: datatypes.Complex, Precision: maxPrecision(complexes)}, nil
	case len(reals) > 0:
		return datatypes.Type{Kind: datatypes.Real, Precision: maxPrecision(reals)}, nil
	case len(integers) > 0:
		// True division always promotes to the default real.
		if kind == Div {
			return datatypes.Default(datatypes.Real), nil
		}
		return datatypes.Type{Kind: datatypes.Int, Precision: maxPrecision(integers)}, nil
	default:
		return datatypes.Type{}, fmterr.Semanticf(pos, "cannot determine the type of %s %s %s", args[0].Type(), kind.symbol(), args[1].Type())
	}
}

func maxPrecision(args []ast.Expr) int {
	precision := 0
	for _, a := range args {
		if p := a.Type().Precision; p > precision {
			precision = p
		}
	}
	return precision
}

// arithmeticShape combines the operand shapes: unknown rank on either
// side makes the result rank unknown; known ranks with an unknown shape
// keep the widest rank; otherwise the shapes are broadcast.
func arithmeticShape(oracle ast.Oracle, pos fmterr.Position, args []ast.Expr) (int, ast.Shape, error) {
	maxRank := 0
	shapesKnown := true
	for _, a := range args {
		if a.Rank() == ast.RankUnknown {
			return ast.RankUnknown, nil, nil
		}
		if a.Rank() > maxRank {
			maxRank = a.Rank()
		}
		if a.Shape() == nil {
			shapesKnown = false
		}
	}
	if !shapesKnown {
		return maxRank, nil, nil
	}
	shape, err := Broadcast(oracle, pos, args[0].Shape(), args[1].Shape())
	if err != nil {
		return 0, nil, err
	}
	return len(shape), shape, nil
}

// commonOrder is the storage order of the operands if they all agree,
// row-major otherwise.
func commonOrder(args []ast.Expr) ast.Order {
	order := args[0].Order()
	for _, a := range args[1:] {
		if a.Order() != order {
			return ast.RowMajor
		}
	}
	return order
}

// inferTernary types a conditional expression. Both branches must have
// compatible dtypes and identical rank, shape and (for rank>1) order.
func inferTernary(oracle ast.Oracle, pos fmterr.Position, args []ast.Expr) (ast.Typing, error) {
	vTrue, vFalse := args[1], args[2]
	if isNil(vTrue) || isNil(vFalse) {
		return ast.Typing{}, fmterr.Unsupportedf(pos, "None is not implemented for ternary operator")
	}
	tTrue, tFalse := vTrue.Type(), vFalse.Type()
	if tTrue.Kind == datatypes.String || tFalse.Kind == datatypes.String {
		return ast.Typing{}, fmterr.Semanticf(pos, "string is not implemented for ternary operator")
	}
	var typing ast.Typing
	typing.DType = tTrue
	if tTrue.Kind != tFalse.Kind {
		if !tTrue.Kind.IsNumeric() || !tFalse.Kind.IsNumeric() {
			return ast.Typing{}, fmterr.Semanticf(pos, "types %s and %s are incompatible in ternary operator", tTrue, tFalse)
		}
		typing.DType.Kind = datatypes.Promote(tTrue.Kind, tFalse.Kind)
	}
	typing.DType.Precision = tTrue.Precision
	if tFalse.Precision > typing.DType.Precision {
		typing.DType.Precision = tFalse.Precision
	}
	if vTrue.Rank() != vFalse.Rank() {
		return ast.Typing{}, fmterr.Semanticf(pos, "ternary operator results should have the same rank")
	}
	if !ternaryShapesMatch(oracle, vTrue, vFalse) {
		return ast.Typing{}, fmterr.Semanticf(pos, "ternary operator results should have the same shape")
	}
	typing.NDim = vTrue.Rank()
	typing.Dims = vTrue.Shape()
	if typing.NDim != ast.RankUnknown && typing.NDim > 1 {
		if vTrue.Order() != vFalse.Order() {
			return ast.Typing{}, fmterr.Semanticf(pos, "ternary operator results should have the same order")
		}
		typing.Layout = vTrue.Order()
	}
	return typing, nil
}

func ternaryShapesMatch(oracle ast.Oracle, vTrue, vFalse ast.Expr) bool {
	sTrue, sFalse := vTrue.Shape(), vFalse.Shape()
	if sTrue == nil || sFalse == nil {
		return sTrue == nil && sFalse == nil
	}
	return ast.ShapesEqual(oracle, sTrue, sFalse)
}

func isNil(arg ast.Expr) bool {
	if op, ok := arg.(*Op); ok && op.Kind() == Paren {
		return isNil(op.Args()[0])
	}
	_, ok := arg.(*ast.NilLiteral)
	return ok
}

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
	"github.com/dina-fouad/pyccel/fmterr"
)

// Broadcast combines two shapes under the numpy broadcasting rules.
//
// The shorter shape is right-aligned and padded with leading ones. For
// each aligned pair of extents, the oracle is asked for a proof of
// equality or constancy; a symbolic extent wins over a constant one so
// that the generated code stays parametric in the symbolic size.
//
// When neither extent is provably constant, provably equal, nor has a
// provably constant difference, the left extent is kept. This is a
// heuristic without a correctness proof.
func Broadcast(oracle ast.Oracle, pos fmterr.Position, shape1, shape2 ast.Shape) (ast.Shape, error) {
	aligned1, aligned2 := alignShapes(shape1, shape2)
	shape := make(ast.Shape, len(aligned1))
	for i := range aligned1 {
		e1, e2 := aligned1[i], aligned2[i]
		c1, const1 := oracle.Constant(e1)
		c2, const2 := oracle.Constant(e2)
		switch {
		case oracle.Equal(e1, e2):
			shape[i] = e1
		case const1 && c1 == 1:
			shape[i] = e2
		case const2 && c2 == 1:
			shape[i] = e1
		case const1 && !const2:
			shape[i] = e2
		case const2 && !const1:
			shape[i] = e1
		case !const1 && !const2 && !oracle.DifferenceConstant(e1, e2):
			shape[i] = e1
		default:
			return nil, fmterr.Broadcastf(pos, "operands could not be broadcast together with shapes %s %s", shape1, shape2)
		}
	}
	return shape, nil
}

// alignShapes right-aligns the shorter shape, padding the missing
// leading dimensions with the literal 1.
func alignShapes(shape1, shape2 ast.Shape) (ast.Shape, ast.Shape) {
	pad := func(shape ast.Shape, n int) ast.Shape {
		padded := make(ast.Shape, n, n+len(shape))
		for i := range padded {
			padded[i] = ast.DimInt(1)
		}
		return append(padded, shape...)
	}
	switch {
	case len(shape1) > len(shape2):
		return shape1, pad(shape2, len(shape1)-len(shape2))
	case len(shape2) > len(shape1):
		return pad(shape1, len(shape2)-len(shape1)), shape2
	default:
		return shape1, shape2
	}
}

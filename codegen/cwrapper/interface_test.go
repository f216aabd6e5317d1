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

package cwrapper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/ast/datatypes"
)

// twoOverloads is an overload group taking either two 32 bit ints or
// two 64 bit reals.
func twoOverloads() *ast.Interface {
	return &ast.Interface{
		Name: "axpy",
		Functions: []*ast.FunctionDef{
			{
				Name: "axpy_int32",
				Arguments: compulsory(
					scalarVar("x", datatypes.Int32Type),
					scalarVar("y", datatypes.Int32Type),
				),
				Results: []*ast.Variable{scalarVar("r", datatypes.Int32Type)},
			},
			{
				Name: "axpy_real64",
				Arguments: compulsory(
					scalarVar("x", datatypes.Real64Type),
					scalarVar("y", datatypes.Real64Type),
				),
				Results: []*ast.Variable{scalarVar("r", datatypes.Real64Type)},
			},
		},
	}
}

func oneInterface(iface *ast.Interface) *ast.Module {
	return &ast.Module{Name: "mod", Interfaces: []*ast.Interface{iface}}
}

func TestDispatchKeys(t *testing.T) {
	keys, err := dispatchKeys(twoOverloads())
	if err != nil {
		t.Fatalf("dispatchKeys: %v", err)
	}
	want := []Key{0x55, 0xbb}
	for i, key := range keys {
		if key != want[i] {
			t.Errorf("key of overload %d = %s, want %s", i, key, want[i])
		}
	}
}

func TestGenerateDispatcher(t *testing.T) {
	src := mustGenerate(t, oneInterface(twoOverloads()), LanguageC)
	wantContains(t, src,
		"static PyObject *axpy_int32_mini_wrapper(PyObject *x_tmp, PyObject *y_tmp)",
		"static PyObject *axpy_real64_mini_wrapper(PyObject *x_tmp, PyObject *y_tmp)",
		"static uint64_t axpy_type_check(PyObject *x_tmp, PyObject *y_tmp)",
		"key = axpy_type_check(x_tmp, y_tmp);",
		"if (key == 0x55)",
		"result = axpy_int32_mini_wrapper(x_tmp, y_tmp);",
		"else if (key == 0xbb)",
		"result = axpy_real64_mini_wrapper(x_tmp, y_tmp);",
		"int32_t axpy_int32(int32_t x, int32_t y);",
		"double axpy_real64(double x, double y);",
	)
	// The exposed entry registers under the group name.
	wantContains(t, src,
		`"axpy",`,
		"(PyCFunction)axpy_wrapper,",
	)
}

// The probe tries each position's admissible types by ascending flag,
// so same-kind candidates go from narrow to wide.
func TestTypeProbeOrderAndKeyFolding(t *testing.T) {
	src := mustGenerate(t, oneInterface(twoOverloads()), LanguageC)
	wantContains(t, src,
		"if (PyIs_Int32(x_tmp))",
		"key |= 0x50;",
		"else if (PyIs_Double(x_tmp))",
		"key |= 0xb0;",
		"key |= 0x5;",
		"key |= 0xb;",
	)
	if strings.Index(src, "PyIs_Int32(x_tmp)") > strings.Index(src, "PyIs_Double(x_tmp)") {
		t.Errorf("probe does not try candidates in ascending order:\n%s", src)
	}
}

// A call mixing one int32 and one real64 passes the per-position
// checks but matches no overload key; the raised TypeError spells out
// both accepted signatures.
func TestDispatcherMismatchMessage(t *testing.T) {
	src := mustGenerate(t, oneInterface(twoOverloads()), LanguageC)
	wantContains(t, src,
		`PyErr_SetString(PyExc_TypeError, "unexpected argument types: expected (32 bit int, 32 bit int) or (64 bit real, 64 bit real)");`,
		`PyErr_SetString(PyExc_TypeError, "x must be 32 bit int or 64 bit real");`,
	)
}

func TestDispatcherArrayOverload(t *testing.T) {
	iface := &ast.Interface{
		Name: "norm",
		Functions: []*ast.FunctionDef{
			{
				Name:      "norm_real",
				Arguments: compulsory(arrayVar("x", datatypes.Real64Type, 1, ast.RowMajor)),
				Results:   []*ast.Variable{scalarVar("r", datatypes.Real64Type)},
			},
			{
				Name:      "norm_complex",
				Arguments: compulsory(arrayVar("x", datatypes.Complex128Type, 1, ast.RowMajor)),
				Results:   []*ast.Variable{scalarVar("r", datatypes.Real64Type)},
			},
		},
	}
	src := mustGenerate(t, oneInterface(iface), LanguageC)
	wantContains(t, src,
		"(PyArray_Check(x_tmp) && PyArray_TYPE((PyArrayObject *)x_tmp) == NPY_DOUBLE)",
		"(PyArray_Check(x_tmp) && PyArray_TYPE((PyArrayObject *)x_tmp) == NPY_CDOUBLE)",
		`"x must be a rank 1 numpy array of 64 bit real or a rank 1 numpy array of 128 bit complex"`,
	)
}

func TestDuplicateDispatchKey(t *testing.T) {
	iface := &ast.Interface{
		Name: "f",
		Functions: []*ast.FunctionDef{
			{
				Name:      "f_a",
				Arguments: compulsory(scalarVar("x", datatypes.Int32Type)),
			},
			{
				Name:      "f_b",
				Arguments: compulsory(scalarVar("x", datatypes.Int32Type)),
			},
		},
	}
	_, err := Generate(oneInterface(iface), LanguageC)
	if err == nil {
		t.Fatalf("Generate: want duplicate key error, got none")
	}
	if !strings.Contains(err.Error(), "share dispatch key") {
		t.Errorf("error does not name the collision: %v", err)
	}
}

func TestInterfaceArityMismatch(t *testing.T) {
	iface := &ast.Interface{
		Name: "f",
		Functions: []*ast.FunctionDef{
			{
				Name:      "f_a",
				Arguments: compulsory(scalarVar("x", datatypes.Int32Type)),
			},
			{
				Name: "f_b",
				Arguments: compulsory(
					scalarVar("x", datatypes.Int32Type),
					scalarVar("y", datatypes.Int32Type),
				),
			},
		},
	}
	if _, err := Generate(oneInterface(iface), LanguageC); err == nil {
		t.Errorf("Generate: want arity mismatch error, got none")
	}
}

func TestInterfaceRejectsOptional(t *testing.T) {
	opt := scalarVar("x", datatypes.Int32Type)
	opt.IsOptional = true
	iface := &ast.Interface{
		Name: "f",
		Functions: []*ast.FunctionDef{
			{Name: "f_a", Arguments: []*ast.Argument{{Var: opt}}},
		},
	}
	if _, err := Generate(oneInterface(iface), LanguageC); err == nil {
		t.Errorf("Generate: want error for optional parameter in overload group, got none")
	}
}

func TestInterfaceTooManyParameters(t *testing.T) {
	vars := make([]*ast.Variable, 17)
	for i := range vars {
		vars[i] = scalarVar(fmt.Sprintf("a%d", i), datatypes.Int64Type)
	}
	iface := &ast.Interface{
		Name: "wide",
		Functions: []*ast.FunctionDef{{
			Name:      "wide_int",
			Arguments: compulsory(vars...),
		}},
	}
	_, err := Generate(oneInterface(iface), LanguageC)
	if err == nil {
		t.Fatalf("Generate: want error for 17-parameter overload group, got none")
	}
	if !strings.Contains(err.Error(), "at most 16 parameters") {
		t.Errorf("Generate: error %v does not mention the parameter bound", err)
	}
}

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
	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func scalarVar(name string, typ datatypes.Type) *ast.Variable {
	return &ast.Variable{Typing: ast.ScalarTyping(typ), Name: name}
}

func arrayVar(name string, typ datatypes.Type, rank int, order ast.Order) *ast.Variable {
	return &ast.Variable{
		Typing: ast.Typing{DType: typ, NDim: rank, Layout: order},
		Name:   name,
	}
}

func compulsory(vars ...*ast.Variable) []*ast.Argument {
	args := make([]*ast.Argument, len(vars))
	for i, v := range vars {
		args[i] = &ast.Argument{Var: v}
	}
	return args
}

func oneFunc(fn *ast.FunctionDef) *ast.Module {
	return &ast.Module{Name: "mod", Funcs: []*ast.FunctionDef{fn}}
}

func mustGenerate(t *testing.T, mod *ast.Module, lang Language) string {
	t.Helper()
	src, err := Generate(mod, lang)
	if err != nil {
		t.Fatalf("Generate(%s, %s): %v", mod.Name, lang, err)
	}
	return src
}

func wantContains(t *testing.T, src string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(src, want) {
			t.Errorf("generated source does not contain %q:\n%s", want, src)
		}
	}
}

const incrModule = `#define PY_ARRAY_UNIQUE_SYMBOL CWRAPPER_ARRAY_API
#include "numpy_version.h"
#include "numpy/arrayobject.h"
#include "cwrapper.h"
#include <stdint.h>
#include "cwrapper_ndarrays.h"

double incr(int64_t n);

/*........................................*/

static PyObject *incr_wrapper(PyObject *self, PyObject *args, PyObject *kwargs)
{
	int64_t n;
	PyObject *result;
	double out;
	PyObject *out_tmp;
	PyObject *n_tmp;
	static char *kwlist[] = {
		"n",
		NULL
	};

	if (!PyArg_ParseTupleAndKeywords(args, kwargs, "O", kwlist, &n_tmp))
	{
		return NULL;
	}
	if (PyIs_Int64(n_tmp))
	{
		n = PyInt64_to_Int64(n_tmp);
	}
	else
	{
		PyErr_SetString(PyExc_TypeError, "n must be 64 bit int");
		return NULL;
	}
	out = incr(n);
	out_tmp = Double_to_PyDouble(&out);
	result = Py_BuildValue("O", out_tmp);
	Py_DECREF(out_tmp);
	return result;
}

/*........................................*/

static PyMethodDef mod_methods[] = {
	{
		"incr",
		(PyCFunction)incr_wrapper,
		METH_VARARGS | METH_KEYWORDS,
		NULL
	},
	{ NULL, NULL, 0, NULL }
};

/*........................................*/

static struct PyModuleDef mod_module = {
	PyModuleDef_HEAD_INIT,
	"mod",
	NULL,
	0,
	mod_methods
};

/*........................................*/

PyMODINIT_FUNC PyInit_mod(void)
{
	PyObject *mod;

	import_array();
	mod = PyModule_Create(&mod_module);
	if (mod == NULL)
	{
		return NULL;
	}
	return mod;
}
`

func TestGenerateScalarFunction(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:      "incr",
		Arguments: compulsory(scalarVar("n", datatypes.Int64Type)),
		Results:   []*ast.Variable{scalarVar("out", datatypes.Real64Type)},
	})
	got := mustGenerate(t, mod, LanguageC)
	if diff := cmp.Diff(incrModule, got); diff != "" {
		t.Errorf("generated module mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	mod := &ast.Module{Name: "mod", Funcs: []*ast.FunctionDef{
		{
			Name: "f",
			Arguments: compulsory(
				scalarVar("a", datatypes.Real80Type),
				arrayVar("x", datatypes.Real64Type, 2, ast.RowMajor),
			),
			Results: []*ast.Variable{scalarVar("r", datatypes.Complex160Type)},
		},
		{
			Name:      "g",
			Arguments: compulsory(scalarVar("b", datatypes.Int32Type)),
		},
	}}
	first := mustGenerate(t, mod, LanguageC)
	second := mustGenerate(t, mod, LanguageC)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two runs on the same module differ (-first +second):\n%s", diff)
	}
}

func TestGenerateArrayChecks(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name: "total",
		Arguments: compulsory(
			arrayVar("x", datatypes.Real64Type, 2, ast.ColMajor),
			arrayVar("y", datatypes.Int32Type, 1, ast.RowMajor),
		),
		Results: []*ast.Variable{scalarVar("out", datatypes.Real64Type)},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		"pyarray_check(x_tmp, NPY_DOUBLE, 2, NPY_ARRAY_F_CONTIGUOUS)",
		"pyarray_check(y_tmp, NPY_INT32, 1, NO_ORDER_CHECK)",
		"x = pyarray_to_c_ndarray((PyArrayObject *)x_tmp);",
		"double total(t_ndarray x, t_ndarray y);",
	)
}

// Every exit reached after an array view is converted must release it:
// once on the success path and once on the failure path of each later
// parameter.
func TestGenerateReleasesViewsOnEveryPath(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name: "total",
		Arguments: compulsory(
			arrayVar("x", datatypes.Real64Type, 1, ast.RowMajor),
			arrayVar("y", datatypes.Real64Type, 1, ast.RowMajor),
			scalarVar("n", datatypes.Int64Type),
		),
		Results: []*ast.Variable{scalarVar("out", datatypes.Real64Type)},
	})
	src := mustGenerate(t, mod, LanguageC)
	// x converts first: released on y's failure, n's failure and success.
	if got := strings.Count(src, "free_pointer(x);"); got != 3 {
		t.Errorf("free_pointer(x) appears %d times, want 3:\n%s", got, src)
	}
	// y converts second: released on n's failure and success.
	if got := strings.Count(src, "free_pointer(y);"); got != 2 {
		t.Errorf("free_pointer(y) appears %d times, want 2:\n%s", got, src)
	}
}

func TestGenerateKeywordListOrder(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name: "f",
		Arguments: compulsory(
			scalarVar("alpha", datatypes.Real64Type),
			scalarVar("beta", datatypes.Real64Type),
			scalarVar("gamma", datatypes.Int64Type),
		),
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src, `static char *kwlist[] = {
		"alpha",
		"beta",
		"gamma",
		NULL
	};`)
}

func TestGenerateDefaultValue(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name: "f",
		Arguments: []*ast.Argument{
			{Var: scalarVar("a", datatypes.Real64Type)},
			{Var: scalarVar("d", datatypes.Int64Type), Default: ast.NewLiteralInteger(5)},
		},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		`"O|O"`,
		"d_tmp = Py_None;",
		"if (d_tmp == Py_None)",
		"d = 5;",
		"else if (PyIs_Int64(d_tmp))",
	)
}

func TestGenerateOptionalScalar(t *testing.T) {
	opt := scalarVar("opt", datatypes.Real64Type)
	opt.IsOptional = true
	mod := oneFunc(&ast.FunctionDef{
		Name:      "f",
		Arguments: []*ast.Argument{{Var: opt}},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		"double *opt;",
		"double opt_tmp1;",
		"opt = NULL;",
		"opt_tmp1 = PyDouble_to_Double(opt_tmp);",
		"opt = &opt_tmp1;",
		"void f(double *opt);",
	)
}

func TestGenerateOptionalArray(t *testing.T) {
	x := arrayVar("x", datatypes.Real64Type, 1, ast.RowMajor)
	x.IsOptional = true
	mod := oneFunc(&ast.FunctionDef{
		Name:      "f",
		Arguments: []*ast.Argument{{Var: x}},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		"if (x_tmp == Py_None)",
		"x.shape = NULL;",
		"x = pyarray_to_c_ndarray((PyArrayObject *)x_tmp);",
	)
}

func TestGeneratePrivateStub(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:      "helper",
		IsPrivate: true,
		Arguments: compulsory(scalarVar("n", datatypes.Int64Type)),
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		`PyErr_SetString(PyExc_NotImplementedError, "Private functions are not accessible from python");`,
		`"helper",`,
		"(PyCFunction)helper_wrapper,",
	)
	if strings.Contains(src, "PyArg_ParseTupleAndKeywords") {
		t.Errorf("stub adapter parses arguments:\n%s", src)
	}
}

func TestGenerateCallableStub(t *testing.T) {
	cb := scalarVar("cb", datatypes.Int64Type)
	cb.IsCallable = true
	mod := oneFunc(&ast.FunctionDef{
		Name:      "apply",
		Arguments: compulsory(cb),
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		`PyErr_SetString(PyExc_NotImplementedError, "Cannot pass a function as an argument");`,
	)
}

func TestGenerateFortranCall(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name: "total",
		Arguments: compulsory(
			arrayVar("x", datatypes.Real64Type, 2, ast.RowMajor),
			scalarVar("n", datatypes.Int64Type),
		),
		Results: []*ast.Variable{scalarVar("out", datatypes.Real64Type)},
	})
	src := mustGenerate(t, mod, LanguageFortran)
	wantContains(t, src,
		"x_dim0 = PyArray_DIM((PyArrayObject *)x_tmp, 0);",
		"x_dim1 = PyArray_DIM((PyArrayObject *)x_tmp, 1);",
		"x = PyArray_DATA((PyArrayObject *)x_tmp);",
		"mod_total(x_dim0, x_dim1, x, n, &out);",
		"void mod_total(int64_t x_dim0, int64_t x_dim1, void *x, int64_t n, double *out);",
	)
	if strings.Contains(src, "cwrapper_ndarrays.h") {
		t.Errorf("bind(c) target includes the C array runtime:\n%s", src)
	}
	if strings.Contains(src, "free_pointer") {
		t.Errorf("bind(c) target releases views it never allocated:\n%s", src)
	}
}

func TestGenerateMultipleResults(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:      "divmod_",
		Arguments: compulsory(scalarVar("a", datatypes.Int64Type), scalarVar("b", datatypes.Int64Type)),
		Results: []*ast.Variable{
			scalarVar("q", datatypes.Int64Type),
			scalarVar("r", datatypes.Int64Type),
		},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		"divmod_(a, b, &q, &r);",
		`result = Py_BuildValue("OO", q_tmp, r_tmp);`,
		"Py_DECREF(q_tmp);",
		"Py_DECREF(r_tmp);",
		"void divmod_(int64_t a, int64_t b, int64_t *q, int64_t *r);",
	)
}

func TestGenerateSynthesizedHelpers(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:      "f",
		Arguments: compulsory(scalarVar("a", datatypes.Real80Type)),
		Results:   []*ast.Variable{scalarVar("r", datatypes.Complex160Type)},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		"static bool PyIs_LongDouble(PyObject *o)",
		"static long double PyLongDouble_to_LongDouble(PyObject *o)",
		"static PyObject *Complex160_to_PyComplex(long double complex *v)",
	)
	// Helpers land before the adapters, in name order.
	if strings.Index(src, "Complex160_to_PyComplex(long double complex *v)") > strings.Index(src, "PyIs_LongDouble(PyObject *o)") {
		t.Errorf("synthesized helpers are not in name order:\n%s", src)
	}
}

func TestGenerateNoArguments(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:    "now",
		Results: []*ast.Variable{scalarVar("t", datatypes.Real64Type)},
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		`PyArg_ParseTupleAndKeywords(args, kwargs, "", kwlist)`,
		"t = now();",
	)
}

func TestGenerateInitFunc(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:      "f",
		Arguments: compulsory(scalarVar("n", datatypes.Int64Type)),
	})
	mod.InitFunc = &ast.FunctionDef{Name: "mod__init"}
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src,
		"void mod__init(void);",
		"mod__init();",
	)
}

func TestGenerateDocstring(t *testing.T) {
	mod := oneFunc(&ast.FunctionDef{
		Name:      "f",
		Arguments: compulsory(scalarVar("n", datatypes.Int64Type)),
		Doc:       "Add one.\nReturns the successor.",
	})
	src := mustGenerate(t, mod, LanguageC)
	wantContains(t, src, `"Add one.\nReturns the successor."`)
}

// Validation failures in distinct functions are all reported, and a
// failing module produces no output at all.
func TestGenerateAggregatesErrors(t *testing.T) {
	mod := &ast.Module{Name: "mod", Funcs: []*ast.FunctionDef{
		{
			Name:      "f",
			Arguments: compulsory(scalarVar("s", datatypes.StringType)),
		},
		{
			Name:    "g",
			Results: []*ast.Variable{arrayVar("out", datatypes.Real64Type, 1, ast.RowMajor)},
		},
	}}
	src, err := Generate(mod, LanguageC)
	if err == nil {
		t.Fatalf("Generate: want error, got none")
	}
	if src != "" {
		t.Errorf("failing module still produced output:\n%s", src)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Errorf("got %d errors, want 2: %v", got, err)
	}
}

func TestGenerateCompulsoryAfterOptional(t *testing.T) {
	opt := scalarVar("a", datatypes.Real64Type)
	opt.IsOptional = true
	mod := oneFunc(&ast.FunctionDef{
		Name: "f",
		Arguments: []*ast.Argument{
			{Var: opt},
			{Var: scalarVar("b", datatypes.Real64Type)},
		},
	})
	if _, err := Generate(mod, LanguageC); err == nil {
		t.Errorf("Generate: want error for compulsory parameter after optional, got none")
	}
}

func TestGenerateManyParameters(t *testing.T) {
	vars := make([]*ast.Variable, 17)
	for i := range vars {
		vars[i] = scalarVar(fmt.Sprintf("a%d", i), datatypes.Int64Type)
	}
	src := mustGenerate(t, oneFunc(&ast.FunctionDef{
		Name:      "many",
		Arguments: compulsory(vars...),
		Results:   []*ast.Variable{scalarVar("out", datatypes.Int64Type)},
	}), LanguageC)
	wantContains(t, src,
		`"OOOOOOOOOOOOOOOOO"`,
		"a16 = PyInt64_to_Int64(a16_tmp);",
	)
}

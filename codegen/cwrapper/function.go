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

	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/base/uname"
	"github.com/dina-fouad/pyccel/fmterr"
	"github.com/pkg/errors"
)

// Messages of the adapters generated for functions that cannot be
// exposed to the dynamic caller.
const (
	privateMessage  = "Private functions are not accessible from python"
	callableMessage = "Cannot pass a function as an argument"
)

// adapter is one generated boundary function together with its
// registration data and the prototypes of the translated functions it
// delegates to.
type adapter struct {
	// pyName is the name the adapter is registered under.
	pyName string
	// cName is the symbol of the generated entry point.
	cName string
	doc   string
	// protos declares the translated functions the adapter calls.
	protos []string
	source string
}

// wrapFunction generates the boundary adapter of one translated
// function: parse the dynamic call, check and convert every argument,
// delegate to the translated function and convert the results back.
func wrapFunction(ctx *context, fn *ast.FunctionDef) (*adapter, error) {
	cName := ctx.names.Name(fn.Name + "_wrapper")
	if fn.IsPrivate {
		return stubAdapter(fn, cName, privateMessage), nil
	}
	if fn.HasCallableArgs() {
		return stubAdapter(fn, cName, callableMessage), nil
	}
	names := funcNames(fn)
	parse, err := newParsePlan(fn, names)
	if err != nil {
		return nil, err
	}
	parts, err := adapterBody(ctx, fn, names, parse.collects)
	if err != nil {
		return nil, err
	}
	self, argsName, kwargsName := names.Name("self"), names.Name("args"), names.Name("kwargs")
	decls := append(append([]string{}, parts.decls...), parse.decls...)
	decls = append(decls, parse.kwlist...)
	var body []string
	body = append(body, parse.preParse...)
	body = append(body, ifBlock(
		fmt.Sprintf("!PyArg_ParseTupleAndKeywords(%s, %s, \"%s\", %s%s)",
			argsName, kwargsName, parse.format, parse.kwName, prefixJoin(", ", addresses(parse.collects))),
		"return NULL;")...)
	body = append(body, parts.body...)
	sig := fmt.Sprintf("static PyObject *%s(PyObject *%s, PyObject *%s, PyObject *%s)", cName, self, argsName, kwargsName)
	return &adapter{
		pyName: fn.Name,
		cName:  cName,
		doc:    fn.Doc,
		protos: []string{parts.proto},
		source: renderFunc(sig, decls, body),
	}, nil
}

// stubAdapter generates an adapter that always raises
// NotImplementedError. Private functions and functions taking callable
// arguments stay callable from the translated code but are sealed off
// from the dynamic caller.
func stubAdapter(fn *ast.FunctionDef, cName, message string) *adapter {
	sig := fmt.Sprintf("static PyObject *%s(PyObject *self, PyObject *args, PyObject *kwargs)", cName)
	body := []string{
		fmt.Sprintf("PyErr_SetString(PyExc_NotImplementedError, \"%s\");", message),
		"return NULL;",
	}
	return &adapter{
		pyName: fn.Name,
		cName:  cName,
		doc:    fn.Doc,
		source: renderFunc(sig, nil, body),
	}
}

// parsePlan holds the boundary placeholders of one adapter and the
// PyArg_ParseTupleAndKeywords fragments that fill them.
type parsePlan struct {
	collects []string
	decls    []string
	preParse []string
	format   string
	kwName   string
	kwlist   []string
}

// newParsePlan allocates one boundary placeholder per parameter, in
// declaration order. Parameters that may be omitted parse after the
// '|' separator and are preset to None so the adapter can tell an
// omitted value apart from a supplied one.
func newParsePlan(fn *ast.FunctionDef, names *uname.Unique) (*parsePlan, error) {
	p := &parsePlan{kwName: names.Name("kwlist")}
	optional := false
	for _, arg := range fn.Arguments {
		collect := names.Name(arg.Var.Name + "_tmp")
		p.collects = append(p.collects, collect)
		p.decls = append(p.decls, fmt.Sprintf("PyObject *%s;", collect))
		if arg.Compulsory() {
			if optional {
				return nil, fmterr.Semanticf(arg.Var.Pos(), "%s: compulsory parameter %s follows an optional parameter", fn.Name, arg.Var.Name)
			}
		} else {
			if !optional {
				p.format += "|"
				optional = true
			}
			p.preParse = append(p.preParse, fmt.Sprintf("%s = Py_None;", collect))
		}
		p.format += "O"
	}
	p.kwlist = append(p.kwlist, fmt.Sprintf("static char *%s[] = {", p.kwName))
	for _, arg := range fn.Arguments {
		p.kwlist = append(p.kwlist, fmt.Sprintf("\t\"%s\",", arg.Var.Name))
	}
	p.kwlist = append(p.kwlist, "\tNULL", "};")
	return p, nil
}

// bodyParts is the adapter code shared between plain adapters and the
// per-overload helpers of a dispatcher: everything after argument
// parsing, up to and including the final return.
type bodyParts struct {
	decls []string
	body  []string
	proto string
}

// adapterBody generates the argument collection, the delegated call,
// the result conversion and the release of every native array view the
// adapter allocated. collects names the boundary placeholder of each
// parameter, in declaration order.
func adapterBody(ctx *context, fn *ast.FunctionDef, names *uname.Unique, collects []string) (*bodyParts, error) {
	parts := &bodyParts{}
	var callArgs, protoParams, frees []string
	for i, arg := range fn.Arguments {
		plan, err := planArg(ctx, fn, names, arg, collects[i])
		if err != nil {
			return nil, err
		}
		parts.decls = append(parts.decls, plan.decls...)
		parts.body = append(parts.body, plan.collect(frees)...)
		callArgs = append(callArgs, plan.callArgs...)
		protoParams = append(protoParams, plan.protoParams...)
		frees = append(frees, plan.frees...)
	}
	results, err := planResults(ctx, fn, names, callArgs, protoParams)
	if err != nil {
		return nil, err
	}
	parts.decls = append(parts.decls, results.decls...)
	parts.body = append(parts.body, results.call...)
	parts.body = append(parts.body, results.build...)
	parts.body = append(parts.body, frees...)
	parts.body = append(parts.body, fmt.Sprintf("return %s;", results.resultName))
	parts.proto = results.proto
	return parts, nil
}

// argPlan holds the generated fragments of one parameter.
type argPlan struct {
	decls []string
	// collect checks and converts the boundary placeholder. onErr is
	// prepended to every error exit so that array views converted by
	// earlier parameters are released on this path too.
	collect func(onErr []string) []string
	// callArgs are the expressions handed to the translated function.
	callArgs []string
	// protoParams are the matching prototype parameters.
	protoParams []string
	// frees releases the array views this parameter allocated.
	frees []string
}

func planArg(ctx *context, fn *ast.FunctionDef, names *uname.Unique, arg *ast.Argument, collect string) (*argPlan, error) {
	if arg.Var.Rank() > 0 {
		return planArrayArg(ctx, fn, names, arg, collect)
	}
	return planScalarArg(ctx, fn, names, arg, collect)
}

func planScalarArg(ctx *context, fn *ast.FunctionDef, names *uname.Unique, arg *ast.Argument, collect string) (*argPlan, error) {
	v := arg.Var
	entry, err := boundaryEntry(ctx, fn, v)
	if err != nil {
		return nil, err
	}
	plan := &argPlan{
		callArgs: []string{v.Name},
	}
	convert := fmt.Sprintf("%s = %s(%s);", v.Name, entry.pythonToC, collect)
	check := fmt.Sprintf("%s(%s)", entry.scalarCheck, collect)
	raise := fmt.Sprintf("PyErr_SetString(PyExc_TypeError, \"%s must be %s\");", v.Name, v.Type().Describe())
	_, defaultsNone := arg.Default.(*ast.NilLiteral)
	switch {
	case v.IsOptional || defaultsNone:
		// An omitted optional crosses the boundary as a null pointer.
		tmp := names.Name(v.Name + "_tmp")
		plan.decls = []string{
			fmt.Sprintf("%s *%s;", entry.cDecl, v.Name),
			fmt.Sprintf("%s %s;", entry.cDecl, tmp),
		}
		plan.protoParams = []string{fmt.Sprintf("%s *%s", entry.cDecl, v.Name)}
		plan.collect = func(onErr []string) []string {
			lines := ifBlock(fmt.Sprintf("%s == Py_None", collect),
				fmt.Sprintf("%s = NULL;", v.Name))
			lines = append(lines, elseIfBlock(check,
				fmt.Sprintf("%s = %s(%s);", tmp, entry.pythonToC, collect),
				fmt.Sprintf("%s = &%s;", v.Name, tmp))...)
			return append(lines, elseBlock(append([]string{raise}, exitNull(onErr)...)...)...)
		}
	case arg.Default != nil:
		value, err := cLiteral(arg.Default)
		if err != nil {
			return nil, fmterr.Unsupportedf(v.Pos(), "%s: default value of %s: %v", fn.Name, v.Name, err)
		}
		plan.decls = []string{fmt.Sprintf("%s %s;", entry.cDecl, v.Name)}
		plan.protoParams = []string{fmt.Sprintf("%s %s", entry.cDecl, v.Name)}
		plan.collect = func(onErr []string) []string {
			lines := ifBlock(fmt.Sprintf("%s == Py_None", collect),
				fmt.Sprintf("%s = %s;", v.Name, value))
			lines = append(lines, elseIfBlock(check, convert)...)
			return append(lines, elseBlock(append([]string{raise}, exitNull(onErr)...)...)...)
		}
	default:
		plan.decls = []string{fmt.Sprintf("%s %s;", entry.cDecl, v.Name)}
		plan.protoParams = []string{fmt.Sprintf("%s %s", entry.cDecl, v.Name)}
		plan.collect = func(onErr []string) []string {
			lines := ifBlock(check, convert)
			return append(lines, elseBlock(append([]string{raise}, exitNull(onErr)...)...)...)
		}
	}
	return plan, nil
}

func planArrayArg(ctx *context, fn *ast.FunctionDef, names *uname.Unique, arg *ast.Argument, collect string) (*argPlan, error) {
	v := arg.Var
	entry, err := boundaryEntry(ctx, fn, v)
	if err != nil {
		return nil, err
	}
	check := fmt.Sprintf("!pyarray_check(%s, %s, %d, %s)", collect, entry.numpyEnum, v.Rank(), orderFlag(v))
	_, defaultsNone := arg.Default.(*ast.NilLiteral)
	omittable := v.IsOptional || defaultsNone
	if arg.Default != nil && !defaultsNone {
		return nil, fmterr.Unsupportedf(v.Pos(), "%s: array parameter %s cannot take a default value", fn.Name, v.Name)
	}
	if ctx.lang == LanguageFortran {
		return planFortranArray(fn, names, v, collect, check, omittable), nil
	}
	plan := &argPlan{
		decls:    []string{fmt.Sprintf("t_ndarray %s = {.shape = NULL};", v.Name)},
		callArgs: []string{v.Name},
		// The adapter owns the converted view and releases it on every
		// exit reached after the conversion.
		frees:       []string{fmt.Sprintf("free_pointer(%s);", v.Name)},
		protoParams: []string{fmt.Sprintf("t_ndarray %s", v.Name)},
	}
	convert := fmt.Sprintf("%s = pyarray_to_c_ndarray((PyArrayObject *)%s);", v.Name, collect)
	plan.collect = func(onErr []string) []string {
		if !omittable {
			lines := ifBlock(check, exitNull(onErr)...)
			return append(lines, convert)
		}
		lines := ifBlock(fmt.Sprintf("%s == Py_None", collect),
			fmt.Sprintf("%s.shape = NULL;", v.Name))
		lines = append(lines, elseIfBlock(check, exitNull(onErr)...)...)
		return append(lines, elseBlock(convert)...)
	}
	return plan, nil
}

// planFortranArray binds an array parameter for a bind(c) entry point:
// one extent per dimension followed by the raw data pointer, all read
// straight off the boundary object.
func planFortranArray(fn *ast.FunctionDef, names *uname.Unique, v *ast.Variable, collect, check string, omittable bool) *argPlan {
	plan := &argPlan{
		decls: []string{fmt.Sprintf("void *%s;", v.Name)},
	}
	var dims []string
	for i := 0; i < v.Rank(); i++ {
		dim := names.Name(fmt.Sprintf("%s_dim%d", v.Name, i))
		dims = append(dims, dim)
		plan.decls = append(plan.decls, fmt.Sprintf("int64_t %s;", dim))
		plan.callArgs = append(plan.callArgs, dim)
		plan.protoParams = append(plan.protoParams, fmt.Sprintf("int64_t %s", dim))
	}
	plan.callArgs = append(plan.callArgs, v.Name)
	plan.protoParams = append(plan.protoParams, fmt.Sprintf("void *%s", v.Name))
	var bind, unset []string
	for i, dim := range dims {
		bind = append(bind, fmt.Sprintf("%s = PyArray_DIM((PyArrayObject *)%s, %d);", dim, collect, i))
		unset = append(unset, fmt.Sprintf("%s = 0;", dim))
	}
	bind = append(bind, fmt.Sprintf("%s = PyArray_DATA((PyArrayObject *)%s);", v.Name, collect))
	unset = append(unset, fmt.Sprintf("%s = NULL;", v.Name))
	plan.collect = func(onErr []string) []string {
		if !omittable {
			lines := ifBlock(check, exitNull(onErr)...)
			return append(lines, bind...)
		}
		lines := ifBlock(fmt.Sprintf("%s == Py_None", collect), unset...)
		lines = append(lines, elseIfBlock(check, exitNull(onErr)...)...)
		return append(lines, elseBlock(bind...)...)
	}
	return plan
}

// resultPlan holds the delegated call and the conversion of its
// results back into boundary objects.
type resultPlan struct {
	decls      []string
	call       []string
	build      []string
	resultName string
	proto      string
}

// planResults lays out the call to the translated function. A C
// function returns a single result by value; several results, and
// every bind(c) entry point, return through trailing out pointers.
func planResults(ctx *context, fn *ast.FunctionDef, names *uname.Unique, callArgs, protoParams []string) (*resultPlan, error) {
	plan := &resultPlan{resultName: names.Name("result")}
	plan.decls = append(plan.decls, fmt.Sprintf("PyObject *%s;", plan.resultName))
	static := ctx.staticName(fn)
	byValue := ctx.lang == LanguageC && len(fn.Results) == 1
	var entries []typeEntry
	for _, res := range fn.Results {
		if res.Rank() > 0 {
			return nil, fmterr.Unsupportedf(res.Pos(), "%s: array result %s cannot cross the python boundary", fn.Name, res.Name)
		}
		entry, err := boundaryEntry(ctx, fn, res)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		plan.decls = append(plan.decls, fmt.Sprintf("%s %s;", entry.cDecl, res.Name))
		if !byValue {
			callArgs = append(callArgs, "&"+res.Name)
			protoParams = append(protoParams, fmt.Sprintf("%s *%s", entry.cDecl, res.Name))
		}
	}
	retType := "void"
	if byValue {
		retType = entries[0].cDecl
		plan.call = []string{fmt.Sprintf("%s = %s(%s);", fn.Results[0].Name, static, strings.Join(callArgs, ", "))}
	} else {
		plan.call = []string{fmt.Sprintf("%s(%s);", static, strings.Join(callArgs, ", "))}
	}
	plan.proto = fmt.Sprintf("%s %s(%s);", retType, static, strings.Join(protoParams, ", "))
	var buildArgs []string
	for i, res := range fn.Results {
		tmp := names.Name(res.Name + "_tmp")
		plan.decls = append(plan.decls, fmt.Sprintf("PyObject *%s;", tmp))
		plan.build = append(plan.build, fmt.Sprintf("%s = %s(&%s);", tmp, entries[i].cToPython, res.Name))
		buildArgs = append(buildArgs, tmp)
	}
	plan.build = append(plan.build, fmt.Sprintf("%s = Py_BuildValue(\"%s\"%s);",
		plan.resultName, strings.Repeat("O", len(buildArgs)), prefixJoin(", ", buildArgs)))
	// Py_BuildValue takes its own references; drop ours exactly once.
	for _, tmp := range buildArgs {
		plan.build = append(plan.build, fmt.Sprintf("Py_DECREF(%s);", tmp))
	}
	return plan, nil
}

func boundaryEntry(ctx *context, fn *ast.FunctionDef, v *ast.Variable) (typeEntry, error) {
	entry, err := ctx.entry(v.Type())
	if err != nil {
		return typeEntry{}, fmterr.Unsupportedf(v.Pos(), "%s: %s: %v", fn.Name, v.Name, err)
	}
	return entry, nil
}

// orderFlag returns the contiguity requirement of an array parameter.
// Rank one arrays are contiguous either way.
func orderFlag(v *ast.Variable) string {
	if v.Rank() <= 1 {
		return "NO_ORDER_CHECK"
	}
	if v.Order() == ast.ColMajor {
		return "NPY_ARRAY_F_CONTIGUOUS"
	}
	return "NPY_ARRAY_C_CONTIGUOUS"
}

// cLiteral prints a default value as a C expression.
func cLiteral(lit ast.Literal) (string, error) {
	switch l := lit.(type) {
	case *ast.LiteralInteger:
		return fmt.Sprintf("%d", l.Value), nil
	case *ast.LiteralFloat:
		return fmt.Sprintf("%g", l.Value), nil
	case *ast.LiteralBool:
		if l.Value {
			return "true", nil
		}
		return "false", nil
	default:
		return "", errors.Errorf("%s literal cannot be printed as a C expression", lit.Type())
	}
}

func exitNull(onErr []string) []string {
	return append(append([]string{}, onErr...), "return NULL;")
}

func addresses(names []string) []string {
	addrs := make([]string, len(names))
	for i, name := range names {
		addrs[i] = "&" + name
	}
	return addrs
}

func prefixJoin(sep string, parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return sep + strings.Join(parts, sep)
}

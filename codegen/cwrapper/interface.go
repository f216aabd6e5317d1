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
	"sort"
	"strings"

	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/fmterr"
	"github.com/pkg/errors"
)

// checkArity bounds the parameter count of an overload group: the
// packed dispatch key spends four bits per parameter and must fit in
// 64 bits. Plain functions never compute a key and carry no such
// bound.
func checkArity(fn *ast.FunctionDef) error {
	if len(fn.Arguments) > maxKeyArity {
		return errors.Errorf("%s: dispatch keys support at most %d parameters, got %d", fn.Name, maxKeyArity, len(fn.Arguments))
	}
	return nil
}

// wrapInterface generates the boundary adapter of an overload group:
// one helper per overload, a type probe computing the packed dispatch
// key of the incoming arguments, and a dispatcher routing the call on
// that key.
func wrapInterface(ctx *context, iface *ast.Interface) (*adapter, error) {
	if len(iface.Functions) == 0 {
		return nil, errors.Errorf("%s: overload group has no signatures", iface.Name)
	}
	first := iface.Functions[0]
	if err := checkArity(first); err != nil {
		return nil, err
	}
	for _, fn := range iface.Functions {
		if len(fn.Arguments) != len(first.Arguments) {
			return nil, fmterr.Semanticf(iface.Pos(), "%s: overloads %s and %s disagree on arity", iface.Name, first.Name, fn.Name)
		}
		for _, arg := range fn.Arguments {
			if !arg.Compulsory() {
				return nil, fmterr.Unsupportedf(arg.Var.Pos(), "%s: overload %s: parameter %s: overload dispatch requires every argument", iface.Name, fn.Name, arg.Var.Name)
			}
		}
	}
	keys, err := dispatchKeys(iface)
	if err != nil {
		return nil, err
	}
	var srcs, protos, minis []string
	for _, fn := range iface.Functions {
		mini, err := wrapMini(ctx, fn)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, mini.source)
		protos = append(protos, mini.protos...)
		minis = append(minis, mini.cName)
	}
	probe, probeName, err := typeProbe(ctx, iface)
	if err != nil {
		return nil, err
	}
	srcs = append(srcs, probe)
	dispatcher, cName, err := dispatcherFunc(ctx, iface, probeName, keys, minis)
	if err != nil {
		return nil, err
	}
	srcs = append(srcs, dispatcher)
	return &adapter{
		pyName: iface.Name,
		cName:  cName,
		doc:    first.Doc,
		protos: protos,
		source: strings.Join(srcs, "\n"),
	}, nil
}

// dispatchKeys folds the parameter flags of every overload into its
// packed key, left to right, four bits per parameter. Two overloads
// resolving to the same key can never be told apart at call time, so
// the collision surfaces here rather than in the generated code.
func dispatchKeys(iface *ast.Interface) ([]Key, error) {
	keys := make([]Key, len(iface.Functions))
	seen := map[Key]*ast.FunctionDef{}
	for i, fn := range iface.Functions {
		var key Key
		for _, arg := range fn.Arguments {
			flag, err := DispatchFlag(arg.Var.Type())
			if err != nil {
				return nil, fmterr.Unsupportedf(arg.Var.Pos(), "%s: overload %s: parameter %s: %v", iface.Name, fn.Name, arg.Var.Name, err)
			}
			key = key.Fold(flag)
		}
		if prev, ok := seen[key]; ok {
			return nil, fmterr.Semanticf(fn.Pos(), "%s: overloads %s and %s share dispatch key %s", iface.Name, prev.Name, fn.Name, key)
		}
		seen[key] = fn
		keys[i] = key
	}
	return keys, nil
}

// wrapMini generates the helper serving one overload. It takes the
// already parsed boundary placeholders from the dispatcher and runs
// the same collect-call-convert body as a plain adapter.
func wrapMini(ctx *context, fn *ast.FunctionDef) (*adapter, error) {
	cName := ctx.names.Name(fn.Name + "_mini_wrapper")
	names := funcNames(fn)
	collects := make([]string, len(fn.Arguments))
	params := make([]string, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		collects[i] = names.Name(arg.Var.Name + "_tmp")
		params[i] = "PyObject *" + collects[i]
	}
	parts, err := adapterBody(ctx, fn, names, collects)
	if err != nil {
		return nil, err
	}
	sig := fmt.Sprintf("static PyObject *%s(%s)", cName, strings.Join(params, ", "))
	return &adapter{
		cName:  cName,
		protos: []string{parts.proto},
		source: renderFunc(sig, parts.decls, parts.body),
	}, nil
}

// probeCandidate is one type admissible at one parameter position.
type probeCandidate struct {
	flag     Flag
	check    string
	describe string
}

// typeProbe generates the function computing the packed dispatch key
// of the incoming arguments. Each position tries its admissible types
// in ascending flag order, which orders same-kind candidates by
// precision; a position matching nothing raises TypeError and yields
// key zero.
func typeProbe(ctx *context, iface *ast.Interface) (string, string, error) {
	first := iface.Functions[0]
	probeName := ctx.names.Name(iface.Name + "_type_check")
	names := funcNames(first)
	nargs := len(first.Arguments)
	params := make([]string, nargs)
	collects := make([]string, nargs)
	for i, arg := range first.Arguments {
		collects[i] = names.Name(arg.Var.Name + "_tmp")
		params[i] = "PyObject *" + collects[i]
	}
	keyName := names.Name("key")
	var body []string
	for i, arg := range first.Arguments {
		candidates, err := positionCandidates(ctx, iface, i)
		if err != nil {
			return "", "", err
		}
		shift := 4 * (nargs - 1 - i)
		var chain []string
		var expected []string
		for j, cand := range candidates {
			set := fmt.Sprintf("%s |= %#x;", keyName, uint64(cand.flag)<<shift)
			if j == 0 {
				chain = append(chain, ifBlock(fmt.Sprintf(cand.check, collects[i]), set)...)
			} else {
				chain = append(chain, elseIfBlock(fmt.Sprintf(cand.check, collects[i]), set)...)
			}
			expected = append(expected, cand.describe)
		}
		raise := fmt.Sprintf("PyErr_SetString(PyExc_TypeError, \"%s must be %s\");",
			arg.Var.Name, strings.Join(expected, " or "))
		chain = append(chain, elseBlock(raise, "return 0;")...)
		body = append(body, chain...)
	}
	body = append(body, fmt.Sprintf("return %s;", keyName))
	sig := fmt.Sprintf("static uint64_t %s(%s)", probeName, strings.Join(params, ", "))
	decls := []string{fmt.Sprintf("uint64_t %s = 0;", keyName)}
	return renderFunc(sig, decls, body), probeName, nil
}

// positionCandidates gathers the types admissible at one parameter
// position across every overload, deduplicated and sorted by flag.
func positionCandidates(ctx *context, iface *ast.Interface, pos int) ([]probeCandidate, error) {
	byFlag := map[Flag]probeCandidate{}
	for _, fn := range iface.Functions {
		v := fn.Arguments[pos].Var
		entry, err := boundaryEntry(ctx, fn, v)
		if err != nil {
			return nil, err
		}
		check := entry.scalarCheck + "(%[1]s)"
		describe := v.Type().Describe()
		if v.Rank() > 0 {
			check = fmt.Sprintf("(PyArray_Check(%%[1]s) && PyArray_TYPE((PyArrayObject *)%%[1]s) == %s)", entry.numpyEnum)
			describe = fmt.Sprintf("a rank %d numpy array of %s", v.Rank(), describe)
		}
		byFlag[entry.flag] = probeCandidate{
			flag:     entry.flag,
			check:    check,
			describe: describe,
		}
	}
	candidates := make([]probeCandidate, 0, len(byFlag))
	for _, cand := range byFlag {
		candidates = append(candidates, cand)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].flag < candidates[j].flag })
	return candidates, nil
}

// dispatcherFunc generates the exposed entry point: parse the call,
// probe the argument types and route to the overload whose key
// matches.
func dispatcherFunc(ctx *context, iface *ast.Interface, probeName string, keys []Key, minis []string) (string, string, error) {
	first := iface.Functions[0]
	cName := ctx.names.Name(iface.Name + "_wrapper")
	names := funcNames(first)
	parse, err := newParsePlan(first, names)
	if err != nil {
		return "", "", err
	}
	self, argsName, kwargsName := names.Name("self"), names.Name("args"), names.Name("kwargs")
	keyName := names.Name("key")
	resultName := names.Name("result")
	decls := append([]string{
		fmt.Sprintf("PyObject *%s;", resultName),
		fmt.Sprintf("uint64_t %s;", keyName),
	}, parse.decls...)
	decls = append(decls, parse.kwlist...)
	var body []string
	body = append(body, parse.preParse...)
	body = append(body, ifBlock(
		fmt.Sprintf("!PyArg_ParseTupleAndKeywords(%s, %s, \"%s\", %s%s)",
			argsName, kwargsName, parse.format, parse.kwName, prefixJoin(", ", addresses(parse.collects))),
		"return NULL;")...)
	body = append(body, fmt.Sprintf("%s = %s(%s);", keyName, probeName, strings.Join(parse.collects, ", ")))
	body = append(body, ifBlock(keyName+" == 0", "return NULL;")...)
	for i, key := range keys {
		route := fmt.Sprintf("%s = %s(%s);", resultName, minis[i], strings.Join(parse.collects, ", "))
		cond := fmt.Sprintf("%s == %#x", keyName, uint64(key))
		if i == 0 {
			body = append(body, ifBlock(cond, route)...)
		} else {
			body = append(body, elseIfBlock(cond, route)...)
		}
	}
	raise := fmt.Sprintf("PyErr_SetString(PyExc_TypeError, \"unexpected argument types: expected %s\");",
		expectedSignatures(iface))
	body = append(body, elseBlock(raise, "return NULL;")...)
	body = append(body, fmt.Sprintf("return %s;", resultName))
	sig := fmt.Sprintf("static PyObject *%s(PyObject *%s, PyObject *%s, PyObject *%s)", cName, self, argsName, kwargsName)
	return renderFunc(sig, decls, body), cName, nil
}

// expectedSignatures spells out every overload's parameter types for
// the no-match TypeError.
func expectedSignatures(iface *ast.Interface) string {
	sigs := make([]string, len(iface.Functions))
	for i, fn := range iface.Functions {
		types := make([]string, len(fn.Arguments))
		for j, arg := range fn.Arguments {
			types[j] = arg.Var.Type().Describe()
		}
		sigs[i] = "(" + strings.Join(types, ", ") + ")"
	}
	return strings.Join(sigs, " or ")
}

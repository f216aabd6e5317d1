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

// Package cwrapper generates the CPython boundary layer of a translated
// module: one C adapter per exposed function or overload group, the
// cast helpers they rely on and the registration tables, emitted as a
// single C source file.
package cwrapper

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/base/tmpl"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const separator = "/*........................................*/"

type methodData struct {
	PyName string
	CName  string
	Doc    string
}

type moduleData struct {
	Name      string
	Top       string
	Blocks    []string
	Methods   []methodData
	InitCall  string
	Separator string
}

var moduleTmpl = template.Must(template.New("module").Parse(
	`{{.Top}}

{{.Separator}}

{{range .Blocks}}{{.}}
{{$.Separator}}

{{end}}static PyMethodDef {{.Name}}_methods[] = {
{{range .Methods}}	{
		"{{.PyName}}",
		(PyCFunction){{.CName}},
		METH_VARARGS | METH_KEYWORDS,
		{{if .Doc}}"{{.Doc}}"{{else}}NULL{{end}}
	},
{{end}}	{ NULL, NULL, 0, NULL }
};

{{.Separator}}

static struct PyModuleDef {{.Name}}_module = {
	PyModuleDef_HEAD_INIT,
	"{{.Name}}",
	NULL,
	0,
	{{.Name}}_methods
};

{{.Separator}}

PyMODINIT_FUNC PyInit_{{.Name}}(void)
{
	PyObject *mod;

	import_array();
	mod = PyModule_Create(&{{.Name}}_module);
	if (mod == NULL)
	{
		return NULL;
	}
{{if .InitCall}}	{{.InitCall}}
{{end}}	return mod;
}
`))

// Generate renders the boundary module of mod for the given target
// language. Generation validates every exposed signature; if any of
// them cannot cross the boundary, Generate reports every failure at
// once and emits nothing.
func Generate(mod *ast.Module, lang Language) (string, error) {
	ctx := newContext(mod.Name, lang)
	ctx.names.Reserve(mod.Name)
	for _, fn := range allFunctions(mod) {
		ctx.names.Reserve(fn.Name, ctx.staticName(fn))
	}
	var errs error
	var adapters []*adapter
	for _, fn := range mod.Funcs {
		a, err := wrapFunction(ctx, fn)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		adapters = append(adapters, a)
	}
	for _, iface := range mod.Interfaces {
		a, err := wrapInterface(ctx, iface)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		adapters = append(adapters, a)
	}
	initCall, initProto, err := initFragments(ctx, mod)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return "", errs
	}
	var protos, blocks []string
	methods := make([]methodData, 0, len(adapters))
	for _, a := range adapters {
		protos = append(protos, a.protos...)
		blocks = append(blocks, a.source)
		methods = append(methods, methodData{
			PyName: a.pyName,
			CName:  a.cName,
			Doc:    cString(a.doc),
		})
	}
	if initProto != "" {
		protos = append(protos, initProto)
	}
	return tmpl.Exec(moduleTmpl, moduleData{
		Name:      mod.Name,
		Top:       moduleTop(ctx, protos),
		Blocks:    blocks,
		Methods:   methods,
		InitCall:  initCall,
		Separator: separator,
	})
}

// moduleTop lays out the includes, the prototypes of the translated
// functions and the synthesized cast helpers.
func moduleTop(ctx *context, protos []string) string {
	lines := []string{
		"#define PY_ARRAY_UNIQUE_SYMBOL CWRAPPER_ARRAY_API",
		`#include "numpy_version.h"`,
		`#include "numpy/arrayobject.h"`,
		`#include "cwrapper.h"`,
		"#include <stdint.h>",
	}
	if ctx.lang == LanguageC {
		lines = append(lines, `#include "cwrapper_ndarrays.h"`)
	}
	lines = append(lines, "")
	lines = append(lines, protos...)
	for _, src := range ctx.helperSources() {
		lines = append(lines, "", src)
	}
	return strings.Join(lines, "\n")
}

// initFragments lays out the call to the translated module
// initialisation function, run once at import.
func initFragments(ctx *context, mod *ast.Module) (string, string, error) {
	fn := mod.InitFunc
	if fn == nil {
		return "", "", nil
	}
	if len(fn.Arguments) > 0 || len(fn.Results) > 0 {
		return "", "", errors.Errorf("%s: initialisation function %s must take and return nothing", mod.Name, fn.Name)
	}
	static := ctx.staticName(fn)
	return fmt.Sprintf("%s();", static), fmt.Sprintf("void %s(void);", static), nil
}

func allFunctions(mod *ast.Module) []*ast.FunctionDef {
	fns := append([]*ast.FunctionDef{}, mod.Funcs...)
	for _, iface := range mod.Interfaces {
		fns = append(fns, iface.Functions...)
	}
	if mod.InitFunc != nil {
		fns = append(fns, mod.InitFunc)
	}
	return fns
}

// cString escapes a docstring for inclusion in C source.
func cString(s string) string {
	return strings.NewReplacer("\\", `\\`, "\"", `\"`, "\n", `\n`).Replace(s)
}

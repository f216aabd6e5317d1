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
	"sort"

	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/ast/datatypes"
	"github.com/dina-fouad/pyccel/base/uname"
	"golang.org/x/exp/maps"
)

// Language selects the calling convention of the translated functions
// the adapters delegate to.
type Language int

const (
	// LanguageC calls functions that exchange arrays as descriptor
	// structures owned by the adapter.
	LanguageC Language = iota
	// LanguageFortran calls bind(c) entry points that take raw extents
	// and data pointers.
	LanguageFortran
)

// String representation of the target language.
func (l Language) String() string {
	switch l {
	case LanguageC:
		return "c"
	case LanguageFortran:
		return "fortran"
	}
	return "invalid"
}

// context carries the module-wide generation state: the target
// language, the module-level name uniquifier and the table of cast
// helpers requested so far. One context serves one Generate call; no
// state outlives it, so repeated invocations on equal inputs produce
// byte-identical output.
type context struct {
	lang Language
	// mod is the name of the module under generation; bind(c) entry
	// points are prefixed with it.
	mod string
	// names uniquifies the module-level identifiers: adapter names,
	// dispatchers and the method and module tables.
	names *uname.Unique
	// helpers maps the name of each synthesized cast helper requested
	// by an adapter to its source.
	helpers map[string]string
}

func newContext(mod string, lang Language) *context {
	return &context{
		lang:    lang,
		mod:     mod,
		names:   uname.New(),
		helpers: make(map[string]string),
	}
}

// entry returns the registry record of a marshalled type and records
// any synthesized helpers it relies on.
func (ctx *context) entry(typ datatypes.Type) (typeEntry, error) {
	entry, err := marshalEntry(typ)
	if err != nil {
		return typeEntry{}, err
	}
	if entry.synthesized {
		for _, name := range []string{entry.scalarCheck, entry.pythonToC, entry.cToPython} {
			ctx.helpers[name] = synthesizedHelpers[name]
		}
	}
	return entry, nil
}

// helperSources returns the source of every synthesized helper, in
// name order.
func (ctx *context) helperSources() []string {
	names := maps.Keys(ctx.helpers)
	sort.Strings(names)
	srcs := make([]string, len(names))
	for i, name := range names {
		srcs[i] = ctx.helpers[name]
	}
	return srcs
}

// funcNames returns a fresh uniquifier for identifiers local to one
// adapter, seeded with the parameter names so that temporaries never
// shadow them.
func funcNames(fn *ast.FunctionDef) *uname.Unique {
	names := uname.New()
	names.Reserve(fn.Name)
	for _, arg := range fn.Arguments {
		names.Reserve(arg.Var.Name)
	}
	for _, res := range fn.Results {
		names.Reserve(res.Name)
	}
	return names
}

// staticName returns the symbol of the translated function an adapter
// delegates to. The bind(c) companions of translated Fortran functions
// carry the module name as a prefix.
func (ctx *context) staticName(fn *ast.FunctionDef) string {
	if ctx.lang == LanguageFortran {
		return ctx.mod + "_" + fn.Name
	}
	return fn.Name
}

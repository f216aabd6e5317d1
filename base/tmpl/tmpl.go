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

// Package tmpl provides helper functions for code generation templates.
package tmpl

import (
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// Exec runs a template on an object and returns the result as a string.
func Exec(tmpl *template.Template, obj any) (string, error) {
	buf := strings.Builder{}
	if err := tmpl.Execute(&buf, obj); err != nil {
		return "", errors.Errorf("cannot generate code for %#v: %v", obj, err)
	}
	return buf.String(), nil
}

// Indent shifts every non-blank line of a string right by one
// tabulation.
func Indent(x string) string {
	var y strings.Builder
	for _, line := range strings.SplitAfter(x, "\n") {
		if strings.TrimSpace(line) != "" {
			y.WriteString("\t")
		}
		y.WriteString(line)
	}
	return y.String()
}

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
	"strings"

	"github.com/dina-fouad/pyccel/base/tmpl"
)

// Layout helpers for the generated C source. Statements are kept as
// line slices carrying their indentation relative to the function
// body; renderFunc adds the body level.

func ifBlock(cond string, body ...string) []string {
	return block("if ("+cond+")", body)
}

func elseIfBlock(cond string, body ...string) []string {
	return block("else if ("+cond+")", body)
}

func elseBlock(body ...string) []string {
	return block("else", body)
}

func block(head string, body []string) []string {
	lines := []string{head, "{"}
	for _, stmt := range body {
		lines = append(lines, "\t"+stmt)
	}
	return append(lines, "}")
}

// renderFunc lays out one C function: signature, declarations, a blank
// separator, then the body.
func renderFunc(sig string, decls, body []string) string {
	var sb strings.Builder
	sb.WriteString(sig)
	sb.WriteString("\n{\n")
	if len(decls) > 0 {
		sb.WriteString(tmpl.Indent(strings.Join(decls, "\n")))
		sb.WriteString("\n\n")
	}
	sb.WriteString(tmpl.Indent(strings.Join(body, "\n")))
	sb.WriteString("\n}\n")
	return sb.String()
}

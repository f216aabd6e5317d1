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

package datatypes_test

import (
	"testing"

	"github.com/dina-fouad/pyccel/ast/datatypes"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		a, b, want datatypes.Kind
	}{
		{a: datatypes.Bool, b: datatypes.Int, want: datatypes.Int},
		{a: datatypes.Int, b: datatypes.Real, want: datatypes.Real},
		{a: datatypes.Real, b: datatypes.Int, want: datatypes.Real},
		{a: datatypes.Complex, b: datatypes.Real, want: datatypes.Complex},
		{a: datatypes.Bool, b: datatypes.Bool, want: datatypes.Bool},
	}
	for _, test := range tests {
		if got := datatypes.Promote(test.a, test.b); got != test.want {
			t.Errorf("Promote(%s, %s) = %s but want %s", test.a, test.b, got, test.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  datatypes.Type
		want string
	}{
		{typ: datatypes.Int32Type, want: "int32"},
		{typ: datatypes.Real64Type, want: "real64"},
		{typ: datatypes.StringType, want: "str"},
		{typ: datatypes.Default(datatypes.Real), want: "real64"},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("%v.String() = %q but want %q", test.typ, got, test.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		typ  datatypes.Type
		want string
	}{
		{typ: datatypes.Int32Type, want: "32 bit int"},
		{typ: datatypes.Real64Type, want: "64 bit real"},
		{typ: datatypes.BoolType, want: "bool"},
	}
	for _, test := range tests {
		if got := test.typ.Describe(); got != test.want {
			t.Errorf("%v.Describe() = %q but want %q", test.typ, got, test.want)
		}
	}
}

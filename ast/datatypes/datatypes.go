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

// Package datatypes defines the semantic scalar types of the translated
// language: a kind (bool, integer, real, complex, string, generic) plus
// a precision in bits, and the numeric promotion order between kinds.
package datatypes

import "fmt"

// Kind is the family of a semantic type.
//
// The declaration order of the numeric kinds defines the promotion
// order: Bool < Int < Real < Complex. String and Generic do not order
// against the numeric kinds.
type Kind int

const (
	// Invalid is the zero kind.
	Invalid Kind = iota
	// Bool is the boolean kind.
	Bool
	// Int is the integer kind.
	Int
	// Real is the floating point kind.
	Real
	// Complex is the complex floating point kind.
	Complex
	// String is the character string kind.
	String
	// Generic is an opaque kind the type system does not inspect.
	Generic
)

// String representation of the kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Real:
		return "real"
	case Complex:
		return "complex"
	case String:
		return "str"
	case Generic:
		return "generic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsNumeric returns true if the kind participates in numeric promotion.
func (k Kind) IsNumeric() bool {
	return k == Bool || k == Int || k == Real || k == Complex
}

// Promote returns the higher of two numeric kinds in the
// Bool < Int < Real < Complex order.
func Promote(a, b Kind) Kind {
	if b > a {
		return b
	}
	return a
}

// DefaultPrecision returns the precision in bits used when the
// translated source does not request an explicit width.
func DefaultPrecision(k Kind) int {
	switch k {
	case Bool:
		return 8
	case Int:
		return 64
	case Real:
		return 64
	case Complex:
		return 128
	default:
		return 0
	}
}

// Type is an immutable semantic scalar type: a kind and a precision in
// bits. String and Generic types carry no precision.
type Type struct {
	Kind      Kind
	Precision int
}

// Predefined types for every width the boundary layer supports.
var (
	BoolType       = Type{Kind: Bool, Precision: 8}
	Int8Type       = Type{Kind: Int, Precision: 8}
	Int16Type      = Type{Kind: Int, Precision: 16}
	Int32Type      = Type{Kind: Int, Precision: 32}
	Int64Type      = Type{Kind: Int, Precision: 64}
	Real32Type     = Type{Kind: Real, Precision: 32}
	Real64Type     = Type{Kind: Real, Precision: 64}
	Real80Type     = Type{Kind: Real, Precision: 80}
	Complex64Type  = Type{Kind: Complex, Precision: 64}
	Complex128Type = Type{Kind: Complex, Precision: 128}
	Complex160Type = Type{Kind: Complex, Precision: 160}
	StringType     = Type{Kind: String}
	GenericType    = Type{Kind: Generic}
)

// Default returns the type of a kind at its default precision.
func Default(k Kind) Type {
	return Type{Kind: k, Precision: DefaultPrecision(k)}
}

// String representation of the type.
func (t Type) String() string {
	if t.Precision == 0 {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s%d", t.Kind.String(), t.Precision)
}

// Describe returns the type the way a Python caller reads it in a
// TypeError message, for example "64 bit real".
func (t Type) Describe() string {
	if t.Kind == Bool {
		return "bool"
	}
	if t.Precision == 0 {
		return t.Kind.String()
	}
	return fmt.Sprintf("%d bit %s", t.Precision, t.Kind.String())
}

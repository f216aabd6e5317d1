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

package ast

import (
	"fmt"

	"github.com/dina-fouad/pyccel/ast/datatypes"
	"github.com/dina-fouad/pyccel/fmterr"
)

type (
	// Literal is a compile-time scalar constant. Literals are the only
	// expressions the wrapper generator prints itself (as default
	// values of omitted parameters); everything else goes through the
	// external backend printers.
	Literal interface {
		Expr
		literal()
	}

	// LiteralInteger is an integer constant.
	LiteralInteger struct {
		Typing
		Position fmterr.Position
		Value    int64
	}

	// LiteralFloat is a floating point constant.
	LiteralFloat struct {
		Typing
		Position fmterr.Position
		Value    float64
	}

	// LiteralBool is a boolean constant.
	LiteralBool struct {
		Typing
		Position fmterr.Position
		Value    bool
	}

	// LiteralString is a character string constant.
	LiteralString struct {
		Typing
		Position fmterr.Position
		Value    string
	}

	// NilLiteral is the null literal of the translated source (None).
	NilLiteral struct {
		Typing
		Position fmterr.Position
	}
)

var (
	_ Literal = (*LiteralInteger)(nil)
	_ Literal = (*LiteralFloat)(nil)
	_ Literal = (*LiteralBool)(nil)
	_ Literal = (*LiteralString)(nil)
	_ Literal = (*NilLiteral)(nil)
)

func (*LiteralInteger) literal() {}
func (*LiteralFloat) literal()   {}
func (*LiteralBool) literal()    {}
func (*LiteralString) literal()  {}
func (*NilLiteral) literal()     {}

// NewLiteralInteger returns an integer constant at the default integer
// precision.
func NewLiteralInteger(value int64) *LiteralInteger {
	return &LiteralInteger{
		Typing: ScalarTyping(datatypes.Default(datatypes.Int)),
		Value:  value,
	}
}

// NewLiteralFloat returns a floating point constant at the default real
// precision.
func NewLiteralFloat(value float64) *LiteralFloat {
	return &LiteralFloat{
		Typing: ScalarTyping(datatypes.Default(datatypes.Real)),
		Value:  value,
	}
}

// NewLiteralBool returns a boolean constant.
func NewLiteralBool(value bool) *LiteralBool {
	return &LiteralBool{
		Typing: ScalarTyping(datatypes.Default(datatypes.Bool)),
		Value:  value,
	}
}

// NewLiteralString returns a string constant.
func NewLiteralString(value string) *LiteralString {
	return &LiteralString{
		Typing: ScalarTyping(datatypes.StringType),
		Value:  value,
	}
}

// NewNil returns the null literal.
func NewNil() *NilLiteral {
	return &NilLiteral{Typing: ScalarTyping(datatypes.GenericType)}
}

// Pos locates the literal in the translated source.
func (l *LiteralInteger) Pos() fmterr.Position { return l.Position }

// Pos locates the literal in the translated source.
func (l *LiteralFloat) Pos() fmterr.Position { return l.Position }

// Pos locates the literal in the translated source.
func (l *LiteralBool) Pos() fmterr.Position { return l.Position }

// Pos locates the literal in the translated source.
func (l *LiteralString) Pos() fmterr.Position { return l.Position }

// Pos locates the literal in the translated source.
func (l *NilLiteral) Pos() fmterr.Position { return l.Position }

// Precedence of the node.
func (l *LiteralInteger) Precedence() int { return AtomPrecedence }

// Precedence of the node.
func (l *LiteralFloat) Precedence() int { return AtomPrecedence }

// Precedence of the node.
func (l *LiteralBool) Precedence() int { return AtomPrecedence }

// Precedence of the node.
func (l *LiteralString) Precedence() int { return AtomPrecedence }

// Precedence of the node.
func (l *NilLiteral) Precedence() int { return AtomPrecedence }

// String representation of the literal.
func (l *LiteralInteger) String() string { return fmt.Sprintf("%d", l.Value) }

// String representation of the literal.
func (l *LiteralFloat) String() string { return fmt.Sprintf("%g", l.Value) }

// String representation of the literal.
func (l *LiteralBool) String() string {
	if l.Value {
		return "True"
	}
	return "False"
}

// String representation of the literal.
func (l *LiteralString) String() string { return fmt.Sprintf("%q", l.Value) }

// String representation of the literal.
func (l *NilLiteral) String() string { return "None" }

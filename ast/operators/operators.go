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

// Package operators builds typed operator nodes.
//
// Each operator kind carries a fixed precedence mirroring the operator
// precedence of the translated language. Constructing a node lays out
// its operands (inserting explicit parentheses where required), then
// infers the result dtype, precision, rank, shape and storage order
// from the operands.
package operators

import (
	"fmt"
	"strings"

	"github.com/dina-fouad/pyccel/ast"
	"github.com/dina-fouad/pyccel/fmterr"
	"github.com/pkg/errors"
)

// Kind tags an operator node. The set is closed: every consumer
// dispatches over it exhaustively instead of over a class hierarchy.
type Kind int

const (
	// UnaryPlus is the unary + operator.
	UnaryPlus Kind = iota + 1
	// UnaryMinus is the unary - operator.
	UnaryMinus
	// Not is the boolean negation operator.
	Not
	// Paren is an explicit grouping. Parenthesis nodes are atoms and
	// are never re-wrapped.
	Paren
	// Pow is the exponentiation operator.
	Pow
	// Add is the addition operator, also string concatenation.
	Add
	// Sub is the subtraction operator.
	Sub
	// Mul is the multiplication operator.
	Mul
	// Div is the true division operator.
	Div
	// FloorDiv is the integer division operator.
	FloorDiv
	// Mod is the modulo operator.
	Mod
	// Eq is the == comparison.
	Eq
	// Ne is the != comparison.
	Ne
	// Lt is the < comparison.
	Lt
	// Le is the <= comparison.
	Le
	// Gt is the > comparison.
	Gt
	// Ge is the >= comparison.
	Ge
	// And is the boolean conjunction.
	And
	// Or is the boolean disjunction.
	Or
	// Is is the identity test.
	Is
	// IsNot is the negated identity test.
	IsNot
	// Ternary is the conditional expression (x if cond else y).
	Ternary
)

const parenPrecedence = 18

// Precedence of the operator. Higher binds tighter.
func (k Kind) Precedence() int {
	switch k {
	case Paren:
		return parenPrecedence
	case Pow:
		return 15
	case UnaryPlus, UnaryMinus:
		return 14
	case Mul, Div, FloorDiv, Mod:
		return 13
	case Add, Sub:
		return 12
	case Eq, Ne, Lt, Le, Gt, Ge, Is, IsNot:
		return 7
	case Not:
		return 6
	case And:
		return 5
	case Or:
		return 4
	case Ternary:
		return 3
	default:
		return ast.AtomPrecedence
	}
}

// NumArgs returns the arity of the operator.
func (k Kind) NumArgs() int {
	switch k {
	case UnaryPlus, UnaryMinus, Not, Paren:
		return 1
	case Ternary:
		return 3
	default:
		return 2
	}
}

// IsArithmetic returns true for operators following the numeric
// promotion rules.
func (k Kind) IsArithmetic() bool {
	switch k {
	case Pow, Add, Sub, Mul, Div, FloorDiv, Mod:
		return true
	default:
		return false
	}
}

// IsComparison returns true for the six comparisons.
func (k Kind) IsComparison() bool {
	switch k {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	default:
		return false
	}
}

// IsBoolean returns true for operators whose result is always boolean
// with rank zero.
func (k Kind) IsBoolean() bool {
	switch k {
	case And, Or, Is, IsNot, Not:
		return true
	default:
		return k.IsComparison()
	}
}

func (k Kind) symbol() string {
	switch k {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case Not:
		return "not"
	case Pow:
		return "**"
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case FloorDiv:
		return "//"
	case Mod:
		return "%"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case And:
		return "and"
	case Or:
		return "or"
	case Is:
		return "is"
	case IsNot:
		return "is not"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// String representation of the operator kind.
func (k Kind) String() string {
	if k == Paren {
		return "()"
	}
	if k == Ternary {
		return "if-else"
	}
	return k.symbol()
}

// Op is a typed operator application.
type Op struct {
	ast.Typing
	Position fmterr.Position
	kind     Kind
	args     []ast.Expr
}

var _ ast.Expr = (*Op)(nil)

// New builds a typed operator node from already-typed operands.
//
// The operands are first laid out by the precedence engine, then the
// result dtype, precision, rank, shape and order are inferred. The
// oracle is consulted when two operand shapes need broadcasting.
func New(oracle ast.Oracle, pos fmterr.Position, kind Kind, args ...ast.Expr) (*Op, error) {
	if len(args) != kind.NumArgs() {
		return nil, errors.Errorf("operator %s expects %d operand(s), got %d", kind.String(), kind.NumArgs(), len(args))
	}
	n := &Op{
		Position: pos,
		kind:     kind,
		args:     layoutOperands(kind, args),
	}
	typing, err := inferTyping(oracle, pos, kind, n.args)
	if err != nil {
		return nil, err
	}
	n.Typing = typing
	return n, nil
}

// NewParen wraps an expression in an explicit grouping. The typing
// and position are copied from the wrapped expression.
func NewParen(arg ast.Expr) *Op {
	return &Op{
		Position: arg.Pos(),
		Typing: ast.Typing{
			DType:  arg.Type(),
			NDim:   arg.Rank(),
			Dims:   arg.Shape(),
			Layout: arg.Order(),
		},
		kind: Paren,
		args: []ast.Expr{arg},
	}
}

// layoutOperands wraps operands in explicit parentheses where the
// precedence of the operand does not bind tight enough, and where the
// translated language demands parentheses for clarity.
func layoutOperands(kind Kind, args []ast.Expr) []ast.Expr {
	if kind == Paren {
		return args
	}
	p := kind.Precedence()
	out := make([]ast.Expr, len(args))
	for i, arg := range args {
		q := arg.Precedence()
		wrap := q < p || (q == p && i != 0)
		if !wrap {
			wrap = clarityParen(kind, arg)
		}
		if wrap {
			out[i] = NewParen(arg)
		} else {
			out[i] = arg
		}
	}
	return out
}

// clarityParen reports operands that must be parenthesized regardless
// of numeric precedence: a unary sign directly under an arithmetic
// operator or another unary sign, and mixed and/or nesting.
func clarityParen(kind Kind, arg ast.Expr) bool {
	op, ok := arg.(*Op)
	if !ok {
		return false
	}
	switch {
	case kind.IsArithmetic() || kind == UnaryPlus || kind == UnaryMinus:
		return op.kind == UnaryPlus || op.kind == UnaryMinus
	case kind == And:
		return op.kind == Or
	case kind == Or:
		return op.kind == And
	default:
		return false
	}
}

// Kind returns the operator tag.
func (n *Op) Kind() Kind { return n.kind }

// Args returns the operand nodes after layout.
func (n *Op) Args() []ast.Expr { return n.args }

// Pos locates the node in the translated source.
func (n *Op) Pos() fmterr.Position { return n.Position }

// Precedence of the node.
func (n *Op) Precedence() int { return n.kind.Precedence() }

// String representation of the node.
func (n *Op) String() string {
	switch n.kind {
	case Paren:
		return fmt.Sprintf("(%s)", n.args[0].String())
	case UnaryPlus, UnaryMinus:
		return n.kind.symbol() + n.args[0].String()
	case Not:
		return "not " + n.args[0].String()
	case Ternary:
		return fmt.Sprintf("%s if %s else %s", n.args[1].String(), n.args[0].String(), n.args[2].String())
	default:
		ss := make([]string, len(n.args))
		for i, arg := range n.args {
			ss[i] = arg.String()
		}
		return strings.Join(ss, " "+n.kind.symbol()+" ")
	}
}

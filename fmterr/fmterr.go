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

// Package fmterr formats compile-time errors given a position in the
// translated source, and classifies them so that callers can tell a
// type-system failure from a broadcasting failure or from a construct
// that is not supported yet.
package fmterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Position locates an error in the translated source.
type Position struct {
	File   string
	Line   int
	Column int
}

// String representation of the position, in file:line:column form.
func (p Position) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Class of a compile-time error.
type Class int

const (
	// Semantic marks a type-system violation (incompatible ternary
	// branches, mixed string/numeric arithmetic, order mismatch).
	Semantic Class = iota + 1
	// Broadcast marks two shapes that cannot be aligned.
	Broadcast
	// Unsupported marks a construct the generator does not handle yet.
	Unsupported
)

// String representation of the class.
func (c Class) String() string {
	switch c {
	case Semantic:
		return "semantic error"
	case Broadcast:
		return "broadcast error"
	case Unsupported:
		return "unsupported feature"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

type (
	// Error is a compile-time error attached to a position in the
	// translated source. All errors of this type are fatal: generation
	// aborts and no output is produced.
	Error interface {
		error
		Class() Class
		Pos() Position
		Err() error
	}

	classedError struct {
		class Class
		pos   Position
		err   error
	}
)

var _ Error = (*classedError)(nil)

// New attaches a class and a position to an error.
func New(class Class, pos Position, err error) Error {
	return classedError{class: class, pos: pos, err: err}
}

// Semanticf returns a formatted semantic error at a position.
func Semanticf(pos Position, format string, a ...any) Error {
	return New(Semantic, pos, errors.Errorf(format, a...))
}

// Broadcastf returns a formatted broadcast error at a position.
func Broadcastf(pos Position, format string, a ...any) Error {
	return New(Broadcast, pos, errors.Errorf(format, a...))
}

// Unsupportedf returns a formatted unsupported-feature error at a position.
func Unsupportedf(pos Position, format string, a ...any) Error {
	return New(Unsupported, pos, errors.Errorf(format, a...))
}

// IsClass returns true if err or any error it wraps carries the class.
func IsClass(err error, class Class) bool {
	for err != nil {
		if classed, ok := err.(Error); ok && classed.Class() == class {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Error returns a string description of the error.
func (err classedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", err.pos.String(), err.class.String(), err.err.Error())
}

// Unwrap the error.
func (err classedError) Unwrap() error {
	return err.err
}

// Class of the error.
func (err classedError) Class() Class {
	return err.class
}

// Pos returns the position of the error in the translated source.
func (err classedError) Pos() Position {
	return err.pos
}

// Err returns the underlying error.
func (err classedError) Err() error {
	return err.err
}

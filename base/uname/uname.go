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

// Package uname provides unique names.
//
// Name assignment is deterministic given an identical sequence of calls,
// so that two generation runs over the same input produce identical code.
package uname

import "fmt"

// Unique generates unique names.
type Unique struct {
	names map[string]int
	taken map[string]bool
}

// New name generator.
func New() *Unique {
	return &Unique{
		names: make(map[string]int),
		taken: make(map[string]bool),
	}
}

// Reserve marks names as taken without deriving new ones.
// Names of translated functions are reserved up front so that
// generated helpers never shadow them.
func (n *Unique) Reserve(names ...string) {
	for _, name := range names {
		n.taken[name] = true
	}
}

// Taken returns true if a name has already been handed out or reserved.
func (n *Unique) Taken(name string) bool {
	return n.taken[name]
}

// Name returns a unique name given a desired base name.
// If the base name is available, it is returned directly.
// Else, the smallest numeric suffix avoiding a collision is appended.
func (n *Unique) Name(root string) string {
	if !n.taken[root] {
		n.taken[root] = true
		return root
	}
	nextIndex := n.names[root]
	if nextIndex == 0 {
		nextIndex = 1
	}
	name := fmt.Sprintf("%s%d", root, nextIndex)
	for n.taken[name] {
		nextIndex++
		name = fmt.Sprintf("%s%d", root, nextIndex)
	}
	n.names[root] = nextIndex + 1
	n.taken[name] = true
	return name
}

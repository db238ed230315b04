// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package mapper

import (
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
)

// Immutable marks value types whose repeats are written in full
type Immutable struct {
	Wrapper
	types mapset.Set[reflect.Type]
}

// NewImmutable creates an Immutable link wrapping wrapped
func NewImmutable(wrapped Mapper) *Immutable {
	return &Immutable{
		Wrapper: Wrapper{Mapper: wrapped},
		types:   mapset.NewSet[reflect.Type](),
	}
}

// AddImmutableType marks t as an immutable value type
func (m *Immutable) AddImmutableType(t reflect.Type) {
	m.types.Add(t)
}

// IsImmutableValueType reports whether t was marked immutable
func (m *Immutable) IsImmutableValueType(t reflect.Type) bool {
	if m.types.Contains(t) {
		return true
	}
	return m.Mapper.IsImmutableValueType(t)
}

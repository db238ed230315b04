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

	"github.com/tochemey/arbor/internal/xsync"
)

// ClassAlias names exact types with caller-chosen aliases
type ClassAlias struct {
	Wrapper
	nameToType *xsync.Map[string, reflect.Type]
	typeToName *xsync.Map[reflect.Type, string]
}

// NewClassAlias creates a ClassAlias link wrapping wrapped
func NewClassAlias(wrapped Mapper) *ClassAlias {
	return &ClassAlias{
		Wrapper:    Wrapper{Mapper: wrapped},
		nameToType: xsync.NewMap[string, reflect.Type](),
		typeToName: xsync.NewMap[reflect.Type, string](),
	}
}

// Alias writes t as name. A later alias for the same type replaces the earlier one
// for writing; both keep resolving to t.
func (m *ClassAlias) Alias(name string, t reflect.Type) {
	m.nameToType.Set(name, t)
	m.typeToName.Set(t, name)
}

// AliasFor returns the alias registered for t
func (m *ClassAlias) AliasFor(t reflect.Type) (string, bool) {
	return m.typeToName.Get(t)
}

// SerializedType returns the alias of t if any
func (m *ClassAlias) SerializedType(t reflect.Type) string {
	if name, ok := m.typeToName.Get(t); ok {
		return name
	}
	return m.Mapper.SerializedType(t)
}

// ResolveType returns the type aliased as name if any
func (m *ClassAlias) ResolveType(name string) (reflect.Type, error) {
	if t, ok := m.nameToType.Get(name); ok {
		return t, nil
	}
	return m.Mapper.ResolveType(name)
}

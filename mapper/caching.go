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

// Caching memoizes type names and successful type resolutions.
// It must be flushed whenever an inner link is reconfigured.
type Caching struct {
	Wrapper
	names *xsync.Map[reflect.Type, string]
	types *xsync.Map[string, reflect.Type]
}

// NewCaching creates a Caching link wrapping wrapped
func NewCaching(wrapped Mapper) *Caching {
	return &Caching{
		Wrapper: Wrapper{Mapper: wrapped},
		names:   xsync.NewMap[reflect.Type, string](),
		types:   xsync.NewMap[string, reflect.Type](),
	}
}

func (m *Caching) SerializedType(t reflect.Type) string {
	if name, ok := m.names.Get(t); ok {
		return name
	}
	name := m.Mapper.SerializedType(t)
	m.names.Set(t, name)
	return name
}

func (m *Caching) ResolveType(name string) (reflect.Type, error) {
	if t, ok := m.types.Get(name); ok {
		return t, nil
	}

	t, err := m.Mapper.ResolveType(name)
	if err != nil {
		return nil, err
	}
	m.types.Set(name, t)
	return t, nil
}

// Flush drops every memoized entry
func (m *Caching) Flush() {
	m.names.Reset()
	m.types.Reset()
}

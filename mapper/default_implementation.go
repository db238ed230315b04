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

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/internal/xsync"
)

// DefaultImplementation picks the concrete type used for slots declared with an
// interface or another type when the document does not name one
type DefaultImplementation struct {
	Wrapper
	implementations *xsync.Map[reflect.Type, reflect.Type]
}

// NewDefaultImplementation creates a DefaultImplementation link wrapping wrapped
func NewDefaultImplementation(wrapped Mapper) *DefaultImplementation {
	return &DefaultImplementation{
		Wrapper:         Wrapper{Mapper: wrapped},
		implementations: xsync.NewMap[reflect.Type, reflect.Type](),
	}
}

// AddDefaultImplementation uses implementation for slots declared as declared
func (m *DefaultImplementation) AddDefaultImplementation(implementation, declared reflect.Type) error {
	if implementation.Kind() == reflect.Interface {
		return errors.New(errors.ErrInvalidConfig, "default implementation %s is an interface", types.Name(implementation))
	}
	if !implementation.AssignableTo(declared) {
		return errors.New(errors.ErrInvalidConfig, "%s is not assignable to %s", types.Name(implementation), types.Name(declared))
	}
	m.implementations.Set(declared, implementation)
	return nil
}

// DefaultImplementationOf returns the implementation registered for t
func (m *DefaultImplementation) DefaultImplementationOf(t reflect.Type) reflect.Type {
	if implementation, ok := m.implementations.Get(t); ok {
		return implementation
	}
	return m.Mapper.DefaultImplementationOf(t)
}

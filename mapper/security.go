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
	"github.com/tochemey/arbor/security"
)

// Security checks every resolved type against the gate.
// It is the outermost semantic link: no name reaches a live type without
// passing through it.
type Security struct {
	Wrapper
	gate *security.Gate
}

// NewSecurity creates a Security link wrapping wrapped
func NewSecurity(wrapped Mapper, gate *security.Gate) *Security {
	return &Security{
		Wrapper: Wrapper{Mapper: wrapped},
		gate:    gate,
	}
}

// Gate returns the rules the link enforces
func (m *Security) Gate() *security.Gate {
	return m.gate
}

// ResolveType resolves name and fails with errors.ErrForbiddenType when the
// gate refuses the result
func (m *Security) ResolveType(name string) (reflect.Type, error) {
	t, err := m.Mapper.ResolveType(name)
	if err != nil {
		return nil, err
	}

	if err := m.gate.Check(t); err != nil {
		return nil, errors.Annotate(err, "name", name)
	}
	return t, nil
}

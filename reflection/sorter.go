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

package reflection

import (
	"cmp"
	"reflect"
	"slices"
	"strings"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/internal/xsync"
)

// FieldSorter orders the members of a struct type.
// Sort receives the members in declaration order, each embedded struct
// expanded where it is declared, and must not modify the slice it is given.
type FieldSorter interface {
	Sort(t reflect.Type, fields []*Field) ([]*Field, error)
}

// FieldSorterFunc is an adapter to use a function as a FieldSorter
type FieldSorterFunc func(t reflect.Type, fields []*Field) ([]*Field, error)

// Sort calls f(t, fields)
func (f FieldSorterFunc) Sort(t reflect.Type, fields []*Field) ([]*Field, error) {
	return f(t, fields)
}

// DerivedFirst keeps declaration order with the members of the described type
// first, then those of the types it embeds, shallowest first
func DerivedFirst() FieldSorter {
	return FieldSorterFunc(func(_ reflect.Type, fields []*Field) ([]*Field, error) {
		sorted := slices.Clone(fields)
		slices.SortStableFunc(sorted, func(a, b *Field) int {
			return cmp.Compare(a.Depth, b.Depth)
		})
		return sorted, nil
	})
}

// DerivedLast keeps declaration order with the members of the deepest embedded
// types first and those of the described type last
func DerivedLast() FieldSorter {
	return FieldSorterFunc(func(_ reflect.Type, fields []*Field) ([]*Field, error) {
		sorted := slices.Clone(fields)
		slices.SortStableFunc(sorted, func(a, b *Field) int {
			return cmp.Compare(b.Depth, a.Depth)
		})
		return sorted, nil
	})
}

// Alphabetical orders members by name, then by declaring type name
func Alphabetical() FieldSorter {
	return FieldSorterFunc(func(_ reflect.Type, fields []*Field) ([]*Field, error) {
		sorted := slices.Clone(fields)
		slices.SortStableFunc(sorted, func(a, b *Field) int {
			if c := strings.Compare(a.Name, b.Name); c != 0 {
				return c
			}
			return strings.Compare(types.Name(a.DeclaringType), types.Name(b.DeclaringType))
		})
		return sorted, nil
	})
}

// ExplicitSorter orders the members of selected types as listed by the caller.
// Other types are ordered by the fallback sorter.
type ExplicitSorter struct {
	fallback FieldSorter
	orders   *xsync.Map[reflect.Type, []string]
}

var _ FieldSorter = (*ExplicitSorter)(nil)

// Explicit creates an ExplicitSorter with the given fallback.
// A nil fallback means DerivedFirst.
func Explicit(fallback FieldSorter) *ExplicitSorter {
	if fallback == nil {
		fallback = DerivedFirst()
	}
	return &ExplicitSorter{
		fallback: fallback,
		orders:   xsync.NewMap[reflect.Type, []string](),
	}
}

// SetOrder lists the member names of t in the order they must be written.
// Names t does not have are ignored; every member t has must be listed.
func (s *ExplicitSorter) SetOrder(t reflect.Type, names ...string) {
	s.orders.Set(t, slices.Clone(names))
}

// Sort orders fields as listed for t. Shadowed members sharing a name keep
// their relative fallback order.
func (s *ExplicitSorter) Sort(t reflect.Type, fields []*Field) ([]*Field, error) {
	base, err := s.fallback.Sort(t, fields)
	if err != nil {
		return nil, err
	}

	names, ok := s.orders.Get(t)
	if !ok {
		return base, nil
	}

	sorted := make([]*Field, 0, len(base))
	for _, name := range names {
		for _, field := range base {
			if field.Name == name && !slices.Contains(sorted, field) {
				sorted = append(sorted, field)
			}
		}
	}

	if len(sorted) != len(base) {
		missing := make([]string, 0, len(base)-len(sorted))
		for _, field := range base {
			if !slices.Contains(sorted, field) {
				missing = append(missing, field.Name)
			}
		}
		name := types.Name(t)
		return nil, errors.New(errors.ErrIncompleteFieldOrder, "order of %s does not list %s", name, strings.Join(missing, ", ")).
			Add("type", name).
			Add("missing", strings.Join(missing, ","))
	}
	return sorted, nil
}

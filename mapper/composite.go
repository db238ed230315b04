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
	"strconv"
	"strings"

	"go.uber.org/atomic"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
)

// DefaultMaxArraySize is the largest array, in bytes, a name may spell
const DefaultMaxArraySize int64 = 1 << 20

// Composite spells pointer, slice, array and map types from the names of their
// components so that aliases apply inside them: a []*Point whose *Point is
// aliased "point" is written "[]point".
//
// Array types spelled by names are bounded in size since reading one
// allocates it whole.
type Composite struct {
	Wrapper
	maxArraySize *atomic.Int64
}

// NewComposite creates a Composite link wrapping wrapped
func NewComposite(wrapped Mapper) *Composite {
	return &Composite{
		Wrapper:      Wrapper{Mapper: wrapped},
		maxArraySize: atomic.NewInt64(DefaultMaxArraySize),
	}
}

// SetMaxArraySize bounds the size in bytes of the array types names resolve to.
// A negative size restores DefaultMaxArraySize.
func (m *Composite) SetMaxArraySize(size int64) {
	if size < 0 {
		size = DefaultMaxArraySize
	}
	m.maxArraySize.Store(size)
}

// MaxArraySize returns the size in bytes of the largest array a name may spell
func (m *Composite) MaxArraySize() int64 {
	return m.maxArraySize.Load()
}

// SerializedType returns the name of t built from its component names,
// unless the wrapped links know t under a name of its own
func (m *Composite) SerializedType(t reflect.Type) string {
	name := m.Mapper.SerializedType(t)
	if t == nil || t.Name() != "" || name != types.Name(t) {
		return name
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + m.SerializedType(t.Elem())
	case reflect.Slice:
		return "[]" + m.SerializedType(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + m.SerializedType(t.Elem())
	case reflect.Map:
		return "map[" + m.SerializedType(t.Key()) + "]" + m.SerializedType(t.Elem())
	default:
		return name
	}
}

// ResolveType resolves name through the wrapped links and decomposes it
// when they do not know it
func (m *Composite) ResolveType(name string) (reflect.Type, error) {
	t, err := m.Mapper.ResolveType(name)
	if err == nil || !errors.Is(err, errors.ErrCannotResolveType) {
		return t, err
	}

	switch {
	case strings.HasPrefix(name, "*"):
		elem, elemErr := m.resolveComponent(name[1:])
		if elemErr != nil {
			return nil, elemErr
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(name, "[]"):
		elem, elemErr := m.resolveComponent(name[2:])
		if elemErr != nil {
			return nil, elemErr
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end < 0 {
			return nil, err
		}
		length, convErr := strconv.Atoi(name[1:end])
		if convErr != nil || length < 0 {
			return nil, err
		}
		elem, elemErr := m.resolveComponent(name[end+1:])
		if elemErr != nil {
			return nil, elemErr
		}
		if sizeErr := m.checkArray(name, length, elem); sizeErr != nil {
			return nil, sizeErr
		}
		return reflect.ArrayOf(length, elem), nil
	case strings.HasPrefix(name, "map["):
		return m.resolveMap(name, err)
	default:
		return nil, err
	}
}

func (m *Composite) checkArray(name string, length int, elem reflect.Type) error {
	limit := m.maxArraySize.Load()
	size := uint64(elem.Size())
	if uint64(length) <= uint64(limit) && (size == 0 || uint64(length) <= uint64(limit)/size) {
		return nil
	}
	return errors.New(errors.ErrForbiddenType, "%s exceeds the array size limit of %d bytes", name, limit).
		Add("name", name).
		Add("limit", strconv.FormatInt(limit, 10))
}

func (m *Composite) resolveMap(name string, notFound error) (reflect.Type, error) {
	depth := 1
	for i := len("map["); i < len(name); i++ {
		switch name[i] {
		case '[':
			depth++
		case ']':
			depth--
		}

		if depth > 0 {
			continue
		}

		key, err := m.resolveComponent(name[len("map["):i])
		if err != nil {
			return nil, err
		}
		elem, err := m.resolveComponent(name[i+1:])
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, errors.New(errors.ErrCannotResolveType, "%s: map key is not comparable", name).Add("name", name)
		}
		return reflect.MapOf(key, elem), nil
	}
	return nil, notFound
}

func (m *Composite) resolveComponent(name string) (reflect.Type, error) {
	t, err := m.ResolveType(name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.New(errors.ErrCannotResolveType, "%s cannot be a component", types.NullName).Add("name", name)
	}
	return t, nil
}

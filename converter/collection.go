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

package converter

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/tree"
)

// SliceConverter writes slices and arrays as one child node per item
//
//	<list><int>1</int><null/><int>3</int></list>
type SliceConverter struct {
	mapper mapper.Mapper
}

// NewSliceConverter creates a SliceConverter naming items through m
func NewSliceConverter(m mapper.Mapper) *SliceConverter {
	return &SliceConverter{mapper: m}
}

func (c *SliceConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func (c *SliceConverter) Marshal(source any, w tree.Writer, ctx MarshallingContext) error {
	value := reflect.ValueOf(source)
	for i := range value.Len() {
		if err := WriteItem(w, c.mapper, ctx, value.Index(i)); err != nil {
			return errors.Annotate(err, "index", fmt.Sprint(i))
		}
	}
	return nil
}

func (c *SliceConverter) Unmarshal(r tree.Reader, ctx UnmarshallingContext) (any, error) {
	required := ctx.RequiredType()
	elem := required.Elem()

	var result reflect.Value
	if required.Kind() == reflect.Array {
		result = reflect.New(required).Elem()
	} else {
		result = reflect.MakeSlice(required, 0, 4)
	}

	count := 0
	for r.HasMoreChildren() {
		r.MoveDown()
		item, err := ReadItem(r, c.mapper, ctx, elem)
		r.MoveUp()
		if err != nil {
			return nil, errors.Annotate(err, "index", fmt.Sprint(count))
		}

		if required.Kind() == reflect.Array {
			if count >= required.Len() {
				name := types.Name(required)
				return nil, errors.New(errors.ErrIncompatibleType, "%s holds at most %d items", name, required.Len()).Add("type", name)
			}
			result.Index(count).Set(item)
		} else {
			result = reflect.Append(result, item)
		}
		count++
	}
	return result.Interface(), nil
}

// MapConverter writes maps as entry nodes holding the key and the value.
// Entries are sorted by key so the output does not depend on map iteration order.
//
//	<map><entry><string>a</string><int>1</int></entry></map>
type MapConverter struct {
	mapper mapper.Mapper
}

// NewMapConverter creates a MapConverter naming keys and values through m
func NewMapConverter(m mapper.Mapper) *MapConverter {
	return &MapConverter{mapper: m}
}

func (c *MapConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Map
}

func (c *MapConverter) Marshal(source any, w tree.Writer, ctx MarshallingContext) error {
	value := reflect.ValueOf(source)
	for _, key := range SortedKeys(value) {
		w.StartNode(mapper.EntryName, nil)
		err := WriteItem(w, c.mapper, ctx, key)
		if err == nil {
			err = WriteItem(w, c.mapper, ctx, value.MapIndex(key))
		}
		w.EndNode()
		if err != nil {
			return errors.Annotate(err, "key", fmt.Sprint(key.Interface()))
		}
	}
	return nil
}

func (c *MapConverter) Unmarshal(r tree.Reader, ctx UnmarshallingContext) (any, error) {
	required := ctx.RequiredType()
	result := reflect.MakeMap(required)
	ctx.Constructed(result.Interface())

	for r.HasMoreChildren() {
		r.MoveDown()
		key, value, err := ReadEntry(r, c.mapper, ctx, required)
		r.MoveUp()
		if err != nil {
			return nil, err
		}
		result.SetMapIndex(key, value)
	}
	return result.Interface(), nil
}

// ReadEntry reads the entry node the reader is positioned on as a key and a
// value of the map type required
func ReadEntry(r tree.Reader, m mapper.Mapper, ctx UnmarshallingContext, required reflect.Type) (key, value reflect.Value, err error) {
	key, value = reflect.Zero(required.Key()), reflect.Zero(required.Elem())
	for index := 0; r.HasMoreChildren(); index++ {
		r.MoveDown()
		switch index {
		case 0:
			key, err = ReadItem(r, m, ctx, required.Key())
		case 1:
			value, err = ReadItem(r, m, ctx, required.Elem())
		default:
			err = errors.New(errors.ErrIncompatibleType, "%s holds more than a key and a value", mapper.EntryName).Add("path", ctx.Path())
		}
		r.MoveUp()
		if err != nil {
			return key, value, err
		}
	}
	return key, value, nil
}

// SortedKeys returns the keys of the map m in a deterministic order
func SortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortStableFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b reflect.Value) int {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}

	if !a.IsValid() || !b.IsValid() || a.Kind() != b.Kind() {
		return cmp.Compare(keyString(a), keyString(b))
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case a.Bool():
			return 1
		default:
			return -1
		}
	default:
		return cmp.Compare(keyString(a), keyString(b))
	}
}

func keyString(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	return types.Name(v.Type()) + ":" + fmt.Sprint(v.Interface())
}

// PointerConverter writes the value a pointer points to into the pointer's node.
// The fresh pointer is registered before its value is read so that cycles
// through it resolve. A pointer to an interface writes its value as a child node.
type PointerConverter struct {
	mapper mapper.Mapper
}

// NewPointerConverter creates a PointerConverter
func NewPointerConverter(m mapper.Mapper) *PointerConverter {
	return &PointerConverter{mapper: m}
}

func (c *PointerConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer
}

func (c *PointerConverter) Marshal(source any, w tree.Writer, ctx MarshallingContext) error {
	elem := reflect.ValueOf(source).Elem()
	if elem.Kind() == reflect.Interface {
		return WriteItem(w, c.mapper, ctx, elem)
	}
	return ctx.ConvertAnother(elem.Interface())
}

func (c *PointerConverter) Unmarshal(r tree.Reader, ctx UnmarshallingContext) (any, error) {
	required := ctx.RequiredType()
	pointer := reflect.New(required.Elem())
	ctx.Constructed(pointer.Interface())

	var (
		value reflect.Value
		err   error
	)

	if required.Elem().Kind() == reflect.Interface {
		if !r.HasMoreChildren() {
			return pointer.Interface(), nil
		}
		r.MoveDown()
		value, err = ReadItem(r, c.mapper, ctx, required.Elem())
		r.MoveUp()
	} else {
		var elem any
		if elem, err = ctx.ConvertAnother(required.Elem()); err == nil {
			value, err = Value(elem, required.Elem())
		}
	}

	if err != nil {
		return nil, err
	}
	pointer.Elem().Set(value)
	return pointer.Interface(), nil
}

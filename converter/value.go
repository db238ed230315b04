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
	"reflect"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/tree"
)

// Value returns v as a value storable in a slot of type t.
// A nil v yields the zero value of t. Values of a different named type with
// the same kind are converted.
func Value(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	value := reflect.ValueOf(v)
	if value.Type().AssignableTo(t) {
		return value, nil
	}

	if value.Kind() == t.Kind() && value.Type().ConvertibleTo(t) {
		return value.Convert(t), nil
	}

	actual := types.Name(value.Type())
	required := types.Name(t)
	return reflect.Value{}, errors.New(errors.ErrIncompatibleType, "%s is not assignable to %s", actual, required).
		Add("type", actual).
		Add("required-type", required)
}

// IsNil reports whether v holds no value
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}

// WriteItem writes item as a child node named after its type.
// A nil item is written as an empty null node.
func WriteItem(w tree.Writer, m mapper.Mapper, ctx MarshallingContext, item reflect.Value) error {
	if IsNil(item) {
		w.StartNode(m.SerializedType(nil), nil)
		w.EndNode()
		return nil
	}

	if item.Kind() == reflect.Interface {
		item = item.Elem()
	}

	itemType := item.Type()
	w.StartNode(m.SerializedType(itemType), itemType)
	err := ctx.ConvertAnother(item.Interface())
	w.EndNode()
	return err
}

// ReadItem reads the child node the reader is positioned on as a value of
// type elem. The node name selects the type when elem is an interface.
func ReadItem(r tree.Reader, m mapper.Mapper, ctx UnmarshallingContext, elem reflect.Type) (reflect.Value, error) {
	if r.NodeName() == m.SerializedType(nil) {
		if _, ok := r.Attribute(m.AliasForAttribute(mapper.AttributeClass)); !ok {
			return reflect.Zero(elem), nil
		}
	}

	item, err := ctx.ConvertAnother(elem)
	if err != nil {
		return reflect.Value{}, err
	}
	return Value(item, elem)
}

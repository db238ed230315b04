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

package types

import (
	"reflect"
	"strconv"
)

// NullName is the name given to the nil type
const NullName = "null"

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// builtins holds the predeclared types addressable by name
var builtins = map[string]reflect.Type{
	"bool":         reflect.TypeOf(false),
	"int":          reflect.TypeOf(int(0)),
	"int8":         reflect.TypeOf(int8(0)),
	"int16":        reflect.TypeOf(int16(0)),
	"int32":        reflect.TypeOf(int32(0)),
	"int64":        reflect.TypeOf(int64(0)),
	"uint":         reflect.TypeOf(uint(0)),
	"uint8":        reflect.TypeOf(uint8(0)),
	"uint16":       reflect.TypeOf(uint16(0)),
	"uint32":       reflect.TypeOf(uint32(0)),
	"uint64":       reflect.TypeOf(uint64(0)),
	"uintptr":      reflect.TypeOf(uintptr(0)),
	"float32":      reflect.TypeOf(float32(0)),
	"float64":      reflect.TypeOf(float64(0)),
	"complex64":    reflect.TypeOf(complex64(0)),
	"complex128":   reflect.TypeOf(complex128(0)),
	"string":       reflect.TypeOf(""),
	"error":        errorType,
	"interface {}": anyType,
}

// Builtin returns the predeclared type with the given name
func Builtin(name string) (reflect.Type, bool) {
	t, ok := builtins[name]
	return t, ok
}

// IsBuiltin reports whether t is a predeclared type
func IsBuiltin(t reflect.Type) bool {
	if t == nil {
		return false
	}
	builtin, ok := builtins[t.String()]
	return ok && builtin == t
}

// Name returns the fully qualified name of t.
// Named types are written pkgpath.Name, predeclared types keep their
// identifier and composites are spelled the way Go spells them:
// *X, []X, [N]X and map[K]V.
func Name(t reflect.Type) string {
	if t == nil {
		return NullName
	}

	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + Name(t.Elem())
	case reflect.Slice:
		return "[]" + Name(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + Name(t.Elem())
	case reflect.Map:
		return "map[" + Name(t.Key()) + "]" + Name(t.Elem())
	default:
		return t.String()
	}
}

// Leaves returns the named, non predeclared types t is built from.
// A named type is its own single leaf.
func Leaves(t reflect.Type) []reflect.Type {
	if t == nil {
		return nil
	}

	if t.Name() != "" {
		if t.PkgPath() == "" {
			return nil
		}
		return []reflect.Type{t}
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return Leaves(t.Elem())
	case reflect.Map:
		return append(Leaves(t.Key()), Leaves(t.Elem())...)
	default:
		return nil
	}
}

// Components returns every named or predeclared type t is built from,
// including unnamed ones such as any
func Components(t reflect.Type) []reflect.Type {
	if t == nil {
		return nil
	}

	if t.Name() != "" {
		return []reflect.Type{t}
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return Components(t.Elem())
	case reflect.Map:
		return append(Components(t.Key()), Components(t.Elem())...)
	default:
		return []reflect.Type{t}
	}
}

// Indirect strips every pointer level from t
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

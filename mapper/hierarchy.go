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

	"github.com/tochemey/arbor/internal/types"
)

// Hierarchy returns the struct type behind t followed by the struct types it
// embeds, shallowest first. Non-struct types yield themselves.
func Hierarchy(t reflect.Type) []reflect.Type {
	t = types.Indirect(t)
	if t == nil {
		return nil
	}

	if t.Kind() != reflect.Struct {
		return []reflect.Type{t}
	}

	out := make([]reflect.Type, 0, 4)
	seen := make(map[reflect.Type]struct{})
	queue := []reflect.Type{t}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		out = append(out, current)

		for i := range current.NumField() {
			field := current.Field(i)
			if !field.Anonymous {
				continue
			}
			if embedded := types.Indirect(field.Type); embedded.Kind() == reflect.Struct {
				queue = append(queue, embedded)
			}
		}
	}
	return out
}

// DeclaringType returns the struct type that declares the member reachable as
// field from owner, following Go's promotion rule
func DeclaringType(owner reflect.Type, field string) (reflect.Type, bool) {
	owner = types.Indirect(owner)
	if owner == nil || owner.Kind() != reflect.Struct {
		return nil, false
	}

	structField, ok := owner.FieldByName(field)
	if !ok {
		return nil, false
	}

	current := owner
	for _, index := range structField.Index[:len(structField.Index)-1] {
		current = types.Indirect(current.Field(index).Type)
	}
	return current, true
}

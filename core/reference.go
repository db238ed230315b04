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

// Package core drives a single marshal or unmarshal call: it walks the
// value graph or the document, dispatches every value to its converter and
// keeps track of object identity so that shared and cyclic values are
// written once and read back as the same instance.
package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tochemey/arbor/errors"
)

// ReferenceMode selects how repeated values are written
type ReferenceMode int

const (
	// ByPath writes a repeated value as the absolute path of its first node
	ByPath ReferenceMode = iota
	// ByID tags every tracked node with an id and writes a repeated value as that id
	ByID
	// None writes repeated values in full and fails on cycles
	None
)

// String returns the mode name
func (m ReferenceMode) String() string {
	switch m {
	case ByPath:
		return "path"
	case ByID:
		return "id"
	case None:
		return "none"
	default:
		return fmt.Sprintf("ReferenceMode(%d)", int(m))
	}
}

// ParseReferenceMode returns the mode named name
func ParseReferenceMode(name string) (ReferenceMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "path":
		return ByPath, nil
	case "id":
		return ByID, nil
	case "none":
		return None, nil
	default:
		return ByPath, errors.New(errors.ErrInvalidConfig, "unknown reference mode %q", name).Add("mode", name)
	}
}

// identity is the key of a tracked value: its exact type and the address it points to
type identity struct {
	rtype   reflect.Type
	pointer uintptr
}

// identityOf returns the identity of v when v is a non nil pointer or map
func identityOf(v reflect.Value) (identity, bool) {
	if !v.IsValid() {
		return identity{}, false
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{rtype: v.Type(), pointer: v.Pointer()}, true
	default:
		return identity{}, false
	}
}

type reference struct {
	key  string
	path string
}

// ReferenceTracker maps the values already written to their reference key.
// Values are compared by identity, never by equality.
// Only pointers and maps have an identity. Slices are not tracked: two slices
// sharing a backing array are written twice and read back as independent copies.
// A tracker belongs to a single call.
type ReferenceTracker struct {
	references map[identity]reference
}

// NewReferenceTracker creates an empty ReferenceTracker
func NewReferenceTracker() *ReferenceTracker {
	return &ReferenceTracker{references: make(map[identity]reference)}
}

// IDFor returns the key v was associated with
func (t *ReferenceTracker) IDFor(v any) (string, bool) {
	id, ok := identityOf(reflect.ValueOf(v))
	if !ok {
		return "", false
	}
	ref, ok := t.references[id]
	return ref.key, ok
}

// Associate records key as the reference of v, written at path.
// Values that are neither pointers nor maps are ignored.
func (t *ReferenceTracker) Associate(v any, key, path string) {
	if id, ok := identityOf(reflect.ValueOf(v)); ok {
		t.references[id] = reference{key: key, path: path}
	}
}

// Len returns the number of tracked values
func (t *ReferenceTracker) Len() int {
	return len(t.references)
}

func (t *ReferenceTracker) lookup(id identity) (reference, bool) {
	ref, ok := t.references[id]
	return ref, ok
}

func (t *ReferenceTracker) associate(id identity, ref reference) {
	t.references[id] = ref
}

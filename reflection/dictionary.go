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

// Package reflection walks the members of struct types.
//
// FieldDictionary reflects over a struct type once and caches its ordered
// members. Provider builds instances and reads and writes their members,
// unexported ones included. Converter is the catch-all converter that writes a
// struct member by member.
package reflection

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/internal/xsync"
)

// Field describes a member of a struct type.
// Members of value-embedded structs are promoted into the embedding type.
type Field struct {
	// Name is the Go name of the member
	Name string
	// Type is the declared type of the member
	Type reflect.Type
	// DeclaringType is the struct type that declares the member
	DeclaringType reflect.Type
	// Index is the index sequence reaching the member from the described type
	Index []int
	// Depth is the embedding depth of the declaring type, zero for the described type
	Depth int
	// Hidden is true when a shallower member of the same name shadows this one
	Hidden bool
	// Occurrence numbers, from 1, the members sharing a name and a declaring
	// type. It exceeds 1 when a struct is embedded through several paths.
	Occurrence int
}

type fieldKey struct {
	name       string
	declaring  reflect.Type
	occurrence int
}

// Descriptor is the ordered list of members of a struct type
type Descriptor struct {
	rtype       reflect.Type
	fields      []*Field
	byKey       map[fieldKey]*Field
	byName      map[string]*Field
	fingerprint uint64
}

// Type returns the described type
func (d *Descriptor) Type() reflect.Type {
	return d.rtype
}

// Fields returns the members in serialization order
func (d *Descriptor) Fields() []*Field {
	return d.fields
}

// Field returns the first member named name declared by declaring.
// A nil declaring type returns the most derived member of that name.
func (d *Descriptor) Field(name string, declaring reflect.Type) (*Field, bool) {
	return d.FieldAt(name, declaring, 1)
}

// FieldAt returns the given occurrence of the member named name declared by declaring
func (d *Descriptor) FieldAt(name string, declaring reflect.Type, occurrence int) (*Field, bool) {
	if declaring == nil {
		field, ok := d.byName[name]
		return field, ok
	}
	field, ok := d.byKey[fieldKey{name: name, declaring: declaring, occurrence: occurrence}]
	return field, ok
}

// Fingerprint hashes the ordered (declaring type, name) list.
// It only depends on the shape of the type and the sort policy.
func (d *Descriptor) Fingerprint() uint64 {
	return d.fingerprint
}

// FieldDictionary caches the descriptors of struct types.
// It is safe for concurrent use: racing first lookups of a type share one reflection.
type FieldDictionary struct {
	sorter      FieldSorter
	descriptors *xsync.Map[reflect.Type, *Descriptor]
	group       singleflight.Group
	discovered  func(t reflect.Type)
}

// NewFieldDictionary creates a FieldDictionary ordering members with sorter.
// discovered, when not nil, is called with every struct type met while describing.
func NewFieldDictionary(sorter FieldSorter, discovered func(t reflect.Type)) *FieldDictionary {
	if sorter == nil {
		sorter = DerivedFirst()
	}
	return &FieldDictionary{
		sorter:      sorter,
		descriptors: xsync.NewMap[reflect.Type, *Descriptor](),
		discovered:  discovered,
	}
}

// Sorter returns the sort policy
func (d *FieldDictionary) Sorter() FieldSorter {
	return d.sorter
}

// Descriptor returns the descriptor of the struct type t
func (d *FieldDictionary) Descriptor(t reflect.Type) (*Descriptor, error) {
	if descriptor, ok := d.descriptors.Get(t); ok {
		return descriptor, nil
	}

	if t == nil || t.Kind() != reflect.Struct {
		name := types.Name(t)
		return nil, errors.New(errors.ErrObjectAccess, "%s is not a struct", name).Add("type", name)
	}

	result, err, _ := d.group.Do(flightKey(t), func() (any, error) {
		if descriptor, ok := d.descriptors.Get(t); ok {
			return descriptor, nil
		}

		descriptor, err := d.describe(t)
		if err != nil {
			return nil, err
		}
		actual, _ := d.descriptors.LoadOrStore(t, descriptor)
		return actual, nil
	})

	if err != nil {
		return nil, err
	}
	return result.(*Descriptor), nil
}

// Flush drops every cached descriptor
func (d *FieldDictionary) Flush() {
	d.descriptors.Reset()
}

func (d *FieldDictionary) describe(t reflect.Type) (*Descriptor, error) {
	fields := make([]*Field, 0, t.NumField())
	d.collect(t, nil, 0, map[reflect.Type]struct{}{}, &fields)

	occurrences := make(map[fieldKey]int, len(fields))
	shallowest := make(map[string]*Field, len(fields))
	for _, field := range fields {
		key := fieldKey{name: field.Name, declaring: field.DeclaringType}
		occurrences[key]++
		field.Occurrence = occurrences[key]
		if current, ok := shallowest[field.Name]; !ok || field.Depth < current.Depth {
			shallowest[field.Name] = field
		}
	}

	for _, field := range fields {
		field.Hidden = shallowest[field.Name] != field
	}

	sorted, err := d.sorter.Sort(t, fields)
	if err != nil {
		return nil, err
	}

	descriptor := &Descriptor{
		rtype:  t,
		fields: sorted,
		byKey:  make(map[fieldKey]*Field, len(sorted)),
		byName: shallowest,
	}

	var shape strings.Builder
	for _, field := range sorted {
		descriptor.byKey[fieldKey{name: field.Name, declaring: field.DeclaringType, occurrence: field.Occurrence}] = field
		shape.WriteString(types.Name(field.DeclaringType))
		shape.WriteByte('.')
		shape.WriteString(field.Name)
		shape.WriteByte('#')
		shape.WriteString(strconv.Itoa(field.Occurrence))
		shape.WriteByte('\n')
	}
	descriptor.fingerprint = xxh3.HashString(shape.String())
	return descriptor, nil
}

// collect appends the members of t in declaration order, each value-embedded
// struct expanded in place
func (d *FieldDictionary) collect(t reflect.Type, index []int, depth int, seen map[reflect.Type]struct{}, fields *[]*Field) {
	if _, ok := seen[t]; ok {
		return
	}
	seen[t] = struct{}{}
	defer delete(seen, t)

	if d.discovered != nil {
		d.discovered(t)
	}

	for i := range t.NumField() {
		structField := t.Field(i)
		if !serializable(structField) {
			continue
		}

		path := make([]int, len(index)+1)
		copy(path, index)
		path[len(index)] = i

		if structField.Anonymous && structField.Type.Kind() == reflect.Struct {
			d.collect(structField.Type, path, depth+1, seen, fields)
			continue
		}

		*fields = append(*fields, &Field{
			Name:          structField.Name,
			Type:          structField.Type,
			DeclaringType: t,
			Index:         path,
			Depth:         depth,
		})
	}
}

func serializable(field reflect.StructField) bool {
	if field.Name == "_" {
		return false
	}

	switch field.Type.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	default:
		return true
	}
}

func flightKey(t reflect.Type) string {
	var sb strings.Builder
	sb.WriteString(types.Name(t))
	sb.WriteByte('@')
	sb.WriteString(strconv.FormatUint(uint64(reflect.ValueOf(t).Pointer()), 16))
	return sb.String()
}

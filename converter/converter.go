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

// Package converter defines the pluggable handlers that turn values into
// document nodes and back, the contexts they are called with and the
// Registry that picks one for a type.
package converter

import (
	"reflect"

	"github.com/tochemey/arbor/tree"
)

// Priorities of the built-in converters.
// A converter registered with a higher priority is consulted first.
const (
	PriorityVeryHigh = 10000
	PriorityHigh     = 1000
	PriorityNormal   = 0
	PriorityLow      = -10
	PriorityVeryLow  = -20
)

// Converter marshals and unmarshals one family of types.
//
// Marshal writes source into the node the writer is positioned on: the caller
// has already opened it and closes it afterwards. Unmarshal reads the node the
// reader is positioned on and returns a value of ctx.RequiredType().
type Converter interface {
	// CanConvert reports whether the converter handles values of type t
	CanConvert(t reflect.Type) bool
	// Marshal writes source
	Marshal(source any, w tree.Writer, ctx MarshallingContext) error
	// Unmarshal reads a value
	Unmarshal(r tree.Reader, ctx UnmarshallingContext) (any, error)
}

// SingleValueConverter turns values into a single text and back.
// Only types handled by a SingleValueConverter can be written as attributes.
type SingleValueConverter interface {
	// CanConvert reports whether the converter handles values of type t
	CanConvert(t reflect.Type) bool
	// ToString returns the text of v
	ToString(v any) (string, error)
	// FromString parses s into a value of type t
	FromString(s string, t reflect.Type) (any, error)
}

type singleValue struct {
	SingleValueConverter
}

// SingleValue adapts a SingleValueConverter into a Converter writing
// the text as the node value
func SingleValue(svc SingleValueConverter) Converter {
	return &singleValue{SingleValueConverter: svc}
}

func (s *singleValue) Marshal(source any, w tree.Writer, _ MarshallingContext) error {
	text, err := s.ToString(source)
	if err != nil {
		return err
	}
	w.SetValue(text)
	return nil
}

func (s *singleValue) Unmarshal(r tree.Reader, ctx UnmarshallingContext) (any, error) {
	return s.FromString(r.Value(), ctx.RequiredType())
}

// DataHolder is a side channel cooperating converters use to exchange data
// during a single call
type DataHolder interface {
	// Get returns the value stored under key
	Get(key any) (any, bool)
	// Put stores value under key
	Put(key, value any)
	// Keys returns the keys in insertion order
	Keys() []any
}

type dataHolder struct {
	values map[any]any
	keys   []any
}

// NewDataHolder creates an empty DataHolder.
// It is not safe for concurrent use.
func NewDataHolder() DataHolder {
	return &dataHolder{values: make(map[any]any)}
}

func (d *dataHolder) Get(key any) (any, bool) {
	value, ok := d.values[key]
	return value, ok
}

func (d *dataHolder) Put(key, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *dataHolder) Keys() []any {
	out := make([]any, len(d.keys))
	copy(out, d.keys)
	return out
}

// MarshallingContext is the per-call state handed to converters while writing
type MarshallingContext interface {
	DataHolder
	// ConvertAnother writes item into the current node with the converter
	// registered for its type, or a back-reference when item was already written
	ConvertAnother(item any) error
	// ConvertWith writes item into the current node with the given converter
	ConvertWith(item any, c Converter) error
	// Replace makes references to original resolve to the node substitute is written to
	Replace(original, substitute any)
	// Ancestors returns the values being written, outermost first
	Ancestors() []any
	// Path returns the path of the current node
	Path() string
}

// UnmarshallingContext is the per-call state handed to converters while reading
type UnmarshallingContext interface {
	DataHolder
	// ConvertAnother reads the current node as a value of the required type,
	// or of the type the node names when it overrides it
	ConvertAnother(required reflect.Type) (any, error)
	// ConvertWith reads the current node with the given converter
	ConvertWith(required reflect.Type, c Converter) (any, error)
	// RequiredType returns the type the current converter must return
	RequiredType() reflect.Type
	// CurrentObject returns the innermost value under construction
	CurrentObject() any
	// Constructed registers instance as the value of the current node before it
	// is populated, so that references inside it can resolve to it
	Constructed(instance any)
	// AddCompletionCallback runs fn once the whole document is read.
	// Callbacks with a higher priority run first.
	AddCompletionCallback(fn func() error, priority int)
	// Path returns the path of the current node
	Path() string
}

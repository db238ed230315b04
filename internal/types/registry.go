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
	"sort"

	"github.com/tochemey/arbor/internal/xsync"
)

// Registry maps fully qualified names to named types.
// Only named, package-level types are stored: composite types are
// derived from their named components.
type Registry interface {
	// Register records every named component of t
	Register(t reflect.Type)
	// Deregister removes the named components of t
	Deregister(t reflect.Type)
	// Exists return true when every named component of t is registered
	Exists(t reflect.Type) bool
	// TypeOf returns the named type registered under name
	TypeOf(name string) (reflect.Type, bool)
	// Names returns the sorted list of registered names
	Names() []string
}

type registry struct {
	types *xsync.Map[string, reflect.Type]
}

var _ Registry = (*registry)(nil)

// NewRegistry creates a new types registry
func NewRegistry() Registry {
	return &registry{types: xsync.NewMap[string, reflect.Type]()}
}

// Register records every named component of t
func (r *registry) Register(t reflect.Type) {
	for _, leaf := range Leaves(t) {
		r.types.Set(Name(leaf), leaf)
	}
}

// Deregister removes the named components of t
func (r *registry) Deregister(t reflect.Type) {
	for _, leaf := range Leaves(t) {
		r.types.Delete(Name(leaf))
	}
}

// Exists return true when every named component of t is registered
func (r *registry) Exists(t reflect.Type) bool {
	leaves := Leaves(t)
	if len(leaves) == 0 {
		return false
	}

	for _, leaf := range leaves {
		if _, ok := r.types.Get(Name(leaf)); !ok {
			return false
		}
	}
	return true
}

// TypeOf returns the named type registered under name
func (r *registry) TypeOf(name string) (reflect.Type, bool) {
	return r.types.Get(name)
}

// Names returns the sorted list of registered names
func (r *registry) Names() []string {
	names := r.types.Keys()
	sort.Strings(names)
	return names
}

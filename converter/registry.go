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
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/internal/xsync"
)

type registration struct {
	converter Converter
	priority  int
}

// generation is an immutable converter list with the lookups memoized from it
type generation struct {
	registrations []registration
	converters    *xsync.Map[reflect.Type, Converter]
	singles       *xsync.Map[reflect.Type, SingleValueConverter]
}

func newGeneration(registrations []registration) *generation {
	return &generation{
		registrations: registrations,
		converters:    xsync.NewMap[reflect.Type, Converter](),
		singles:       xsync.NewMap[reflect.Type, SingleValueConverter](),
	}
}

// Registry is the ordered list of converters.
// Converters are consulted by descending priority; among equal priorities the
// most recently registered one comes first. The first converter that can
// convert a type is used for it.
//
// Lookups are memoized per type. Registering a converter or flushing starts a
// new generation with an empty memo, so a lookup racing with a registration
// never memoizes a converter from the previous list.
type Registry struct {
	mu      sync.Mutex
	current *atomic.Pointer[generation]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{current: atomic.NewPointer(newGeneration(nil))}
}

// Register adds c with the given priority
func (r *Registry) Register(c Converter, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.current.Load().registrations
	next := make([]registration, 0, len(current)+1)
	inserted := false
	for _, existing := range current {
		if !inserted && existing.priority <= priority {
			next = append(next, registration{converter: c, priority: priority})
			inserted = true
		}
		next = append(next, existing)
	}

	if !inserted {
		next = append(next, registration{converter: c, priority: priority})
	}

	r.current.Store(newGeneration(next))
}

// RegisterSingleValue adds svc with the given priority
func (r *Registry) RegisterSingleValue(svc SingleValueConverter, priority int) {
	r.Register(SingleValue(svc), priority)
}

// Lookup returns the converter for t
func (r *Registry) Lookup(t reflect.Type) (Converter, error) {
	return r.current.Load().lookup(t)
}

// LookupSingleValue returns the single value converter for t.
// It reports false when the converter Lookup picks for t does not write a single text.
func (r *Registry) LookupSingleValue(t reflect.Type) (SingleValueConverter, bool) {
	gen := r.current.Load()
	if svc, ok := gen.singles.Get(t); ok {
		return svc, svc != nil
	}

	c, err := gen.lookup(t)
	if err != nil {
		return nil, false
	}

	svc, _ := c.(SingleValueConverter)
	gen.singles.Set(t, svc)
	return svc, svc != nil
}

// Flush drops the memoized lookups
func (r *Registry) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Store(newGeneration(r.current.Load().registrations))
}

func (g *generation) lookup(t reflect.Type) (Converter, error) {
	if c, ok := g.converters.Get(t); ok {
		return c, nil
	}

	if t != nil {
		for _, registered := range g.registrations {
			if registered.converter.CanConvert(t) {
				c, _ := g.converters.LoadOrStore(t, registered.converter)
				return c, nil
			}
		}
	}

	name := types.Name(t)
	return nil, errors.New(errors.ErrNoConverter, "%s", name).Add("type", name)
}

// Len returns the number of registered converters
func (r *Registry) Len() int {
	return len(r.current.Load().registrations)
}

// Name returns a printable name for c
func Name(c Converter) string {
	if s, ok := c.(*singleValue); ok {
		return fmt.Sprintf("%T", s.SingleValueConverter)
	}
	return fmt.Sprintf("%T", c)
}

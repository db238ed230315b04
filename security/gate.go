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

package security

import (
	"reflect"
	"sync"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
)

type rule struct {
	permission Permission
	deny       bool
}

// Gate is an ordered list of allow and deny rules.
// The most recently added rule is consulted first; the first rule covering a
// type decides. A type no rule covers is forbidden.
type Gate struct {
	mu    sync.RWMutex
	rules []rule
}

// NewGate creates a Gate that forbids every type
func NewGate() *Gate {
	return &Gate{}
}

// Allow adds an allow rule. Allowing AnyType or NoType first drops every existing rule.
func (g *Gate) Allow(permission Permission) {
	g.add(rule{permission: permission})
}

// Deny adds a deny rule
func (g *Gate) Deny(permission Permission) {
	g.add(rule{permission: permission, deny: true})
}

// Len returns the number of rules
func (g *Gate) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rules)
}

// Allows reports whether every component of t is permitted
func (g *Gate) Allows(t reflect.Type) bool {
	return g.Check(t) == nil
}

// Check returns an ErrForbiddenType error naming the first component of t that is
// not permitted. The nil type is always permitted.
func (g *Gate) Check(t reflect.Type) error {
	if t == nil {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, component := range types.Components(t) {
		if !g.decide(component) {
			name := types.Name(component)
			return errors.New(errors.ErrForbiddenType, "%s", name).Add("type", name)
		}
	}
	return nil
}

func (g *Gate) decide(t reflect.Type) bool {
	for _, rule := range g.rules {
		if rule.permission.Allows(t) {
			return !rule.deny
		}
	}
	return false
}

func (g *Gate) add(r rule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !r.deny && (r.permission == AnyType || r.permission == NoType) {
		g.rules = g.rules[:0]
	}
	g.rules = append([]rule{r}, g.rules...)
}

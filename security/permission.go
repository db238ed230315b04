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

// Package security holds the type permissions consulted before a type name
// read from a document is turned into a live type.
package security

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/arbor/internal/types"
)

// Permission decides whether a type may be resolved
type Permission interface {
	// Allows reports whether the permission covers t
	Allows(t reflect.Type) bool
}

// PermissionFunc is an adapter to use a function as a Permission
type PermissionFunc func(t reflect.Type) bool

// Allows calls f(t)
func (f PermissionFunc) Allows(t reflect.Type) bool {
	return f(t)
}

type anyType struct{}

func (anyType) Allows(reflect.Type) bool { return true }

type noType struct{}

func (noType) Allows(reflect.Type) bool { return false }

var (
	// AnyType covers every type. Allowing it disables the gate.
	AnyType Permission = anyType{}
	// NoType covers no type. Allowing it resets the gate to deny everything.
	NoType Permission = noType{}
)

// Primitives covers the predeclared types
var Primitives Permission = PermissionFunc(func(t reflect.Type) bool {
	return types.IsBuiltin(t) && t.Kind() != reflect.Interface
})

// Interfaces covers interface types, which can name a slot but never be instantiated
var Interfaces Permission = PermissionFunc(func(t reflect.Type) bool {
	return t.Kind() == reflect.Interface
})

// Standard covers the standard library value types with built-in converters
var Standard Permission = Explicit(reflect.TypeOf(time.Time{}), reflect.TypeOf(time.Duration(0)))

type explicit struct {
	types mapset.Set[reflect.Type]
}

// Explicit covers exactly the given types
func Explicit(rtypes ...reflect.Type) Permission {
	return &explicit{types: mapset.NewSet(rtypes...)}
}

func (e *explicit) Allows(t reflect.Type) bool {
	return e.types.Contains(t)
}

type explicitNames struct {
	names mapset.Set[string]
}

// ExplicitNames covers the types whose fully qualified name is listed
func ExplicitNames(names ...string) Permission {
	return &explicitNames{names: mapset.NewSet(names...)}
}

func (e *explicitNames) Allows(t reflect.Type) bool {
	return e.names.Contains(types.Name(t))
}

type regexpPermission struct {
	patterns []*regexp.Regexp
}

// RegExp covers the types whose fully qualified name matches one of the expressions
func RegExp(expressions ...string) (Permission, error) {
	patterns := make([]*regexp.Regexp, 0, len(expressions))
	for _, expression := range expressions {
		pattern, err := regexp.Compile(expression)
		if err != nil {
			return nil, fmt.Errorf("security: invalid type expression %q: %w", expression, err)
		}
		patterns = append(patterns, pattern)
	}
	return &regexpPermission{patterns: patterns}, nil
}

func (r *regexpPermission) Allows(t reflect.Type) bool {
	name := types.Name(t)
	for _, pattern := range r.patterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Wildcard covers the types whose fully qualified name matches one of the patterns.
// '?' matches one character and '*' any run of characters, neither crossing a
// '.' or '/'; '**' matches any run of characters.
//
//	github.com/acme/model.*   every type of package model
//	github.com/acme/**        every type below github.com/acme
func Wildcard(patterns ...string) Permission {
	expressions := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		expressions = append(expressions, regexp.MustCompile(wildcardToRegexp(pattern)))
	}
	return &regexpPermission{patterns: expressions}
}

func wildcardToRegexp(pattern string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				sb.WriteString(".*")
				i++
				continue
			}
			sb.WriteString(`[^./]*`)
		case '?':
			sb.WriteString(`[^./]`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteByte('$')
	return sb.String()
}

// TypeHierarchy covers the types assignable to base, such as the implementations of an interface
func TypeHierarchy(base reflect.Type) Permission {
	return PermissionFunc(func(t reflect.Type) bool {
		return t.AssignableTo(base) || reflect.PointerTo(t).AssignableTo(base)
	})
}

// Registered covers the types known to the given registry
func Registered(registry types.Registry) Permission {
	return PermissionFunc(registry.Exists)
}

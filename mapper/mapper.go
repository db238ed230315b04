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

// Package mapper translates between in-memory types and members and the
// names used in a document.
//
// A Mapper is a chain of links. Each link embeds Wrapper, overrides the
// few operations it cares about and lets every other call fall through to
// the link it wraps. The innermost link is Default.
package mapper

import (
	"reflect"

	"github.com/tochemey/arbor/internal/types"
)

// Reserved attribute names written by the engine
const (
	// AttributeClass holds the concrete type of a value that differs from the declared one
	AttributeClass = "class"
	// AttributeResolvesTo marks a value replaced by a substitute of another type
	AttributeResolvesTo = "resolves-to"
	// AttributeDefinedIn names the declaring type of a shadowed member
	AttributeDefinedIn = "defined-in"
	// AttributeReference holds a back-reference to an already written value
	AttributeReference = "reference"
	// AttributeID holds the identifier of a value when references are written by id
	AttributeID = "id"
)

// NullName is the node name written for a nil value
const NullName = types.NullName

// SystemAttributes lists the reserved attribute names
var SystemAttributes = []string{
	AttributeClass,
	AttributeResolvesTo,
	AttributeDefinedIn,
	AttributeReference,
	AttributeID,
}

// Mapper translates types and members to document names and back
type Mapper interface {
	// SerializedType returns the name written for t
	SerializedType(t reflect.Type) string
	// ResolveType returns the type named name
	ResolveType(name string) (reflect.Type, error)
	// SerializedMember returns the name written for the member of owner
	SerializedMember(owner reflect.Type, member string) string
	// ResolveMember returns the member of owner written as serialized
	ResolveMember(owner reflect.Type, serialized string) string
	// AliasForAttribute returns the name written for the attribute
	AliasForAttribute(attribute string) string
	// AttributeForAlias returns the attribute written as alias
	AttributeForAlias(alias string) string
	// DefaultImplementationOf returns the type used for a slot declared as t
	// when the document does not name one
	DefaultImplementationOf(t reflect.Type) reflect.Type
	// ShouldSerializeMember reports whether the member of owner is written and read
	ShouldSerializeMember(owner reflect.Type, member string) bool
	// IsIgnoredElement reports whether an unknown node with this name is skipped
	IsIgnoredElement(name string) bool
	// IsAttribute reports whether the member of owner is written as an attribute
	IsAttribute(owner reflect.Type, member string, memberType reflect.Type) bool
	// IsImmutableValueType reports whether values of t bypass reference tracking
	IsImmutableValueType(t reflect.Type) bool
	// ImplicitCollectionForField returns the implicit collection backed by the member of owner
	ImplicitCollectionForField(owner reflect.Type, field string) *ImplicitCollection
	// ImplicitCollectionForItem returns the implicit collection of owner, or of a type
	// owner embeds, that accepts an item named itemName or of type itemType
	ImplicitCollectionForItem(owner reflect.Type, itemType reflect.Type, itemName string) *ImplicitCollection
}

// Wrapper is embedded by every link of the chain.
// Operations a link does not override are answered by the wrapped Mapper.
type Wrapper struct {
	Mapper
}

// Unwrap returns the wrapped Mapper
func (w Wrapper) Unwrap() Mapper {
	return w.Mapper
}

type unwrapper interface {
	Unwrap() Mapper
}

// Find walks the chain from m inward and returns the first link of type T
func Find[T Mapper](m Mapper) (T, bool) {
	for m != nil {
		if link, ok := m.(T); ok {
			return link, true
		}
		u, ok := m.(unwrapper)
		if !ok {
			break
		}
		m = u.Unwrap()
	}
	var zero T
	return zero, false
}

// memberKey identifies a member by its declaring type
type memberKey struct {
	owner reflect.Type
	name  string
}

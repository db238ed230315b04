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

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
)

// Default is the innermost link of the chain.
// Types are named after their fully qualified name and resolved through the
// predeclared types and the given registry. Members keep their Go names.
type Default struct {
	registry types.Registry
}

var _ Mapper = (*Default)(nil)

// NewDefault creates a Default resolving named types through registry
func NewDefault(registry types.Registry) *Default {
	return &Default{registry: registry}
}

// SerializedType returns the fully qualified name of t
func (d *Default) SerializedType(t reflect.Type) string {
	return types.Name(t)
}

// ResolveType returns the predeclared or registered type named name.
// The null name resolves to the nil type.
func (d *Default) ResolveType(name string) (reflect.Type, error) {
	if name == types.NullName {
		return nil, nil
	}

	if t, ok := types.Builtin(name); ok {
		return t, nil
	}

	if t, ok := d.registry.TypeOf(name); ok {
		return t, nil
	}

	return nil, errors.New(errors.ErrCannotResolveType, "%s", name).Add("name", name)
}

func (d *Default) SerializedMember(_ reflect.Type, member string) string {
	return member
}

func (d *Default) ResolveMember(_ reflect.Type, serialized string) string {
	return serialized
}

func (d *Default) AliasForAttribute(attribute string) string {
	return attribute
}

func (d *Default) AttributeForAlias(alias string) string {
	return alias
}

func (d *Default) DefaultImplementationOf(t reflect.Type) reflect.Type {
	return t
}

func (d *Default) ShouldSerializeMember(reflect.Type, string) bool {
	return true
}

func (d *Default) IsIgnoredElement(string) bool {
	return false
}

func (d *Default) IsAttribute(reflect.Type, string, reflect.Type) bool {
	return false
}

func (d *Default) IsImmutableValueType(reflect.Type) bool {
	return false
}

func (d *Default) ImplicitCollectionForField(reflect.Type, string) *ImplicitCollection {
	return nil
}

func (d *Default) ImplicitCollectionForItem(reflect.Type, reflect.Type, string) *ImplicitCollection {
	return nil
}

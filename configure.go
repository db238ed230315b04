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

package arbor

import (
	"reflect"

	"github.com/tochemey/arbor/converter"
	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/security"
)

// RegisterConverter adds c with the given priority. Converters with a higher
// priority are asked first; among equal priorities the latest wins.
func (e *Engine) RegisterConverter(c converter.Converter, priority int) {
	e.converters.Register(c, priority)
	e.Flush()
}

// RegisterSingleValueConverter adds svc with the given priority
func (e *Engine) RegisterSingleValueConverter(svc converter.SingleValueConverter, priority int) {
	e.converters.RegisterSingleValue(svc, priority)
	e.Flush()
}

// RegisterTypes registers the types of values so that their names resolve
// and the security gate allows them. A reflect.Type is registered as is.
func (e *Engine) RegisterTypes(values ...any) {
	e.registerTypes(values...)
	e.Flush()
}

// Alias writes the type of value as name
func (e *Engine) Alias(name string, value any) {
	e.AliasType(name, typeOf(value))
}

// AliasType writes t as name. t is registered along the way.
func (e *Engine) AliasType(name string, t reflect.Type) {
	if t == nil {
		return
	}
	e.types.Register(t)
	e.aliases.Alias(name, t)
	e.Flush()
}

// AliasField writes the member field of owner as alias. The alias belongs to
// the type declaring the member, so it applies to every type embedding it.
func (e *Engine) AliasField(alias string, owner reflect.Type, field string) error {
	declaring, err := declaringType(owner, field)
	if err != nil {
		return err
	}
	e.fieldAliases.AliasField(alias, declaring, field)
	e.Flush()
	return nil
}

// AliasAttribute writes the system attribute name as alias
func (e *Engine) AliasAttribute(alias, name string) {
	e.attributeAliases.AliasAttribute(alias, name)
	e.Flush()
}

// OmitField neither writes nor reads the member field of owner
func (e *Engine) OmitField(owner reflect.Type, field string) error {
	declaring, err := declaringType(owner, field)
	if err != nil {
		return err
	}
	e.ignoring.OmitField(declaring, field)
	e.Flush()
	return nil
}

// IgnoreUnknownElements skips the unknown nodes matching the regular expression pattern
func (e *Engine) IgnoreUnknownElements(pattern string) error {
	patterns, err := compile(pattern)
	if err != nil {
		return err
	}
	e.ignoring.IgnoreUnknownElements(patterns[0])
	e.Flush()
	return nil
}

// UseAttributeFor writes the member field of owner as an attribute.
// The member must have a single value converter.
func (e *Engine) UseAttributeFor(owner reflect.Type, field string) error {
	declaring, err := declaringType(owner, field)
	if err != nil {
		return err
	}
	e.attributes.UseAttributeFor(declaring, field)
	e.Flush()
	return nil
}

// UseAttributeForName writes every member named field as an attribute
func (e *Engine) UseAttributeForName(field string) {
	e.attributes.UseAttributeForName(field)
	e.Flush()
}

// UseAttributeForType writes every member declared as t as an attribute
func (e *Engine) UseAttributeForType(t reflect.Type) {
	e.attributes.UseAttributeForType(t)
	e.Flush()
}

// AddImplicitCollection writes the items of the slice or array member field
// of owner directly under the owner node, each named itemName. An empty
// itemName names every item after its type.
func (e *Engine) AddImplicitCollection(owner reflect.Type, field, itemName string, itemType reflect.Type) error {
	return e.AddImplicitMap(owner, field, itemName, itemType, "")
}

// AddImplicitMap is AddImplicitCollection for map members. The item member
// keyField holds the key of each value; without it every item is an entry
// node holding the key and the value.
func (e *Engine) AddImplicitMap(owner reflect.Type, field, itemName string, itemType reflect.Type, keyField string) error {
	collection, err := mapper.NewImplicitCollection(owner, field, itemName, itemType, keyField)
	if err != nil {
		return err
	}

	if collection.ItemType.Kind() != reflect.Interface {
		e.types.Register(collection.ItemType)
	}
	e.collections.Add(collection)
	e.Flush()
	return nil
}

// AddImmutableType writes every value of t in full, never as a reference
func (e *Engine) AddImmutableType(t reflect.Type) {
	e.immutables.AddImmutableType(t)
	e.Flush()
}

// AddDefaultImplementation reads slots declared as declared as implementation
// when the document does not name a type, and omits the type name when
// writing a value of implementation into such a slot
func (e *Engine) AddDefaultImplementation(implementation, declared reflect.Type) error {
	if err := e.implementations.AddDefaultImplementation(implementation, declared); err != nil {
		return err
	}
	e.types.Register(implementation)
	e.Flush()
	return nil
}

// SetFieldOrder writes the members of t in the given order.
// The order must name every member t declares.
func (e *Engine) SetFieldOrder(t reflect.Type, fields ...string) {
	e.sorter.SetOrder(t, fields...)
	e.Flush()
}

// AddPermission allows the types covered by permission
func (e *Engine) AddPermission(permission security.Permission) {
	if permission == security.AnyType {
		e.anyType.Store(true)
		e.logger.Warn("arbor: the security gate allows any type, only read trusted documents")
	} else if permission == security.NoType {
		e.anyType.Store(false)
	}
	e.gate.Allow(permission)
	e.Flush()
}

// DenyPermission forbids the types covered by permission.
// Denials are checked before every allowance added earlier.
func (e *Engine) DenyPermission(permission security.Permission) {
	e.gate.Deny(permission)
	e.Flush()
}

// AllowTypes allows the types of values
func (e *Engine) AllowTypes(values ...any) {
	rtypes := make([]reflect.Type, 0, len(values))
	for _, value := range values {
		if t := typeOf(value); t != nil {
			rtypes = append(rtypes, t)
		}
	}
	e.AddPermission(security.Explicit(rtypes...))
}

// AllowTypesByWildcard allows the type names matching the patterns,
// where * matches within a package and ** across packages
func (e *Engine) AllowTypesByWildcard(patterns ...string) {
	e.AddPermission(security.Wildcard(patterns...))
}

// AllowTypesByRegExp allows the type names matching the regular expressions
func (e *Engine) AllowTypesByRegExp(expressions ...string) error {
	permission, err := security.RegExp(expressions...)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err, "invalid type expression")
	}
	e.AddPermission(permission)
	return nil
}

// AllowTypeHierarchy allows base and every type assignable to it
func (e *Engine) AllowTypeHierarchy(base reflect.Type) {
	e.AddPermission(security.TypeHierarchy(base))
}

// AllowAnyType disables the security gate
func (e *Engine) AllowAnyType() {
	e.AddPermission(security.AnyType)
}

// DenyAllTypes removes every allowance and denial.
// Nothing but a nil value can be read until types are allowed again.
func (e *Engine) DenyAllTypes() {
	e.AddPermission(security.NoType)
}

// DenyTypes forbids the types of values
func (e *Engine) DenyTypes(values ...any) {
	rtypes := make([]reflect.Type, 0, len(values))
	for _, value := range values {
		if t := typeOf(value); t != nil {
			rtypes = append(rtypes, t)
		}
	}
	e.DenyPermission(security.Explicit(rtypes...))
}

// DenyTypesByWildcard forbids the type names matching the patterns
func (e *Engine) DenyTypesByWildcard(patterns ...string) {
	e.DenyPermission(security.Wildcard(patterns...))
}

// DenyTypesByRegExp forbids the type names matching the regular expressions
func (e *Engine) DenyTypesByRegExp(expressions ...string) error {
	permission, err := security.RegExp(expressions...)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err, "invalid type expression")
	}
	e.DenyPermission(permission)
	return nil
}

// AnyTypeAllowed reports whether the security gate is disabled
func (e *Engine) AnyTypeAllowed() bool {
	return e.anyType.Load()
}

// SetMaxArraySize bounds, in bytes, the array types a document may name.
// A negative size restores mapper.DefaultMaxArraySize.
func (e *Engine) SetMaxArraySize(size int64) {
	e.composite.SetMaxArraySize(size)
	e.caching.Flush()
}

// Flush drops every cached lookup. Configuration methods flush on their own;
// call it after changing a component handed to the engine.
func (e *Engine) Flush() {
	e.converters.Flush()
	e.caching.Flush()
	e.dictionary.Flush()
}

func (e *Engine) registerTypes(values ...any) {
	for _, value := range values {
		if t := typeOf(value); t != nil {
			e.types.Register(t)
		}
	}
}

// typeOf returns value itself when it is a reflect.Type and its type otherwise
func typeOf(value any) reflect.Type {
	if t, ok := value.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(value)
}

func declaringType(owner reflect.Type, field string) (reflect.Type, error) {
	declaring, ok := mapper.DeclaringType(owner, field)
	if !ok {
		name := types.Name(owner)
		return nil, errors.New(errors.ErrUnknownField, "%s has no field %s", name, field).
			Add("type", name).
			Add("field", field)
	}
	return declaring, nil
}

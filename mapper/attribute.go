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

	mapset "github.com/deckarep/golang-set/v2"
)

// AttributeMapper selects the members written as attributes.
// Only members whose type has a single value converter can be attributes.
type AttributeMapper struct {
	Wrapper
	members mapset.Set[memberKey]
	names   mapset.Set[string]
	types   mapset.Set[reflect.Type]
}

// NewAttributeMapper creates an AttributeMapper link wrapping wrapped
func NewAttributeMapper(wrapped Mapper) *AttributeMapper {
	return &AttributeMapper{
		Wrapper: Wrapper{Mapper: wrapped},
		members: mapset.NewSet[memberKey](),
		names:   mapset.NewSet[string](),
		types:   mapset.NewSet[reflect.Type](),
	}
}

// UseAttributeFor writes the member field declared by owner as an attribute
func (m *AttributeMapper) UseAttributeFor(owner reflect.Type, field string) {
	m.members.Add(memberKey{owner: owner, name: field})
}

// UseAttributeForName writes every member named field as an attribute
func (m *AttributeMapper) UseAttributeForName(field string) {
	m.names.Add(field)
}

// UseAttributeForType writes every member declared as t as an attribute
func (m *AttributeMapper) UseAttributeForType(t reflect.Type) {
	m.types.Add(t)
}

// IsAttribute reports whether the member is selected by owner and name, by name or by type
func (m *AttributeMapper) IsAttribute(owner reflect.Type, member string, memberType reflect.Type) bool {
	if m.members.Contains(memberKey{owner: owner, name: member}) ||
		m.names.Contains(member) ||
		m.types.Contains(memberType) {
		return true
	}
	return m.Mapper.IsAttribute(owner, member, memberType)
}

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

	"github.com/tochemey/arbor/internal/xsync"
)

// FieldAlias renames members
type FieldAlias struct {
	Wrapper
	toAlias *xsync.Map[memberKey, string]
	toField *xsync.Map[memberKey, string]
}

// NewFieldAlias creates a FieldAlias link wrapping wrapped
func NewFieldAlias(wrapped Mapper) *FieldAlias {
	return &FieldAlias{
		Wrapper: Wrapper{Mapper: wrapped},
		toAlias: xsync.NewMap[memberKey, string](),
		toField: xsync.NewMap[memberKey, string](),
	}
}

// AliasField writes the member field declared by owner as alias
func (m *FieldAlias) AliasField(alias string, owner reflect.Type, field string) {
	m.toAlias.Set(memberKey{owner: owner, name: field}, alias)
	m.toField.Set(memberKey{owner: owner, name: alias}, field)
}

// SerializedMember returns the alias of the member declared by owner
func (m *FieldAlias) SerializedMember(owner reflect.Type, member string) string {
	if alias, ok := m.toAlias.Get(memberKey{owner: owner, name: member}); ok {
		return alias
	}
	return m.Mapper.SerializedMember(owner, member)
}

// ResolveMember returns the member aliased as serialized by owner or,
// failing that, by the closest type owner embeds
func (m *FieldAlias) ResolveMember(owner reflect.Type, serialized string) string {
	for _, t := range Hierarchy(owner) {
		if field, ok := m.toField.Get(memberKey{owner: t, name: serialized}); ok {
			return field
		}
	}
	return m.Mapper.ResolveMember(owner, serialized)
}

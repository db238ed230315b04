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

import "github.com/tochemey/arbor/internal/xsync"

// AttributeAlias renames attributes, the reserved ones included
type AttributeAlias struct {
	Wrapper
	toAlias *xsync.Map[string, string]
	toName  *xsync.Map[string, string]
}

// NewAttributeAlias creates an AttributeAlias link wrapping wrapped
func NewAttributeAlias(wrapped Mapper) *AttributeAlias {
	return &AttributeAlias{
		Wrapper: Wrapper{Mapper: wrapped},
		toAlias: xsync.NewMap[string, string](),
		toName:  xsync.NewMap[string, string](),
	}
}

// AliasAttribute writes the attribute name as alias
func (m *AttributeAlias) AliasAttribute(alias, name string) {
	m.toAlias.Set(name, alias)
	m.toName.Set(alias, name)
}

// AliasForAttribute returns the alias of attribute
func (m *AttributeAlias) AliasForAttribute(attribute string) string {
	if alias, ok := m.toAlias.Get(attribute); ok {
		return alias
	}
	return m.Mapper.AliasForAttribute(attribute)
}

// AttributeForAlias returns the attribute written as alias
func (m *AttributeAlias) AttributeForAlias(alias string) string {
	if name, ok := m.toName.Get(alias); ok {
		return name
	}
	return m.Mapper.AttributeForAlias(alias)
}

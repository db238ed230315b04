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
	"regexp"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// ElementIgnoring omits members and skips unknown nodes whose name matches a pattern
type ElementIgnoring struct {
	Wrapper
	omitted  mapset.Set[memberKey]
	mu       sync.RWMutex
	patterns []*regexp.Regexp
}

// NewElementIgnoring creates an ElementIgnoring link wrapping wrapped
func NewElementIgnoring(wrapped Mapper) *ElementIgnoring {
	return &ElementIgnoring{
		Wrapper: Wrapper{Mapper: wrapped},
		omitted: mapset.NewSet[memberKey](),
	}
}

// OmitField excludes the member of owner from writing and reading
func (m *ElementIgnoring) OmitField(owner reflect.Type, field string) {
	m.omitted.Add(memberKey{owner: owner, name: field})
}

// IgnoreUnknownElements skips unknown nodes whose name matches pattern
func (m *ElementIgnoring) IgnoreUnknownElements(pattern *regexp.Regexp) {
	m.mu.Lock()
	m.patterns = append(m.patterns, pattern)
	m.mu.Unlock()
}

// ShouldSerializeMember reports false for omitted members
func (m *ElementIgnoring) ShouldSerializeMember(owner reflect.Type, member string) bool {
	if m.omitted.Contains(memberKey{owner: owner, name: member}) {
		return false
	}
	return m.Mapper.ShouldSerializeMember(owner, member)
}

// IsIgnoredElement reports true for names matching one of the patterns
func (m *ElementIgnoring) IsIgnoredElement(name string) bool {
	m.mu.RLock()
	for _, pattern := range m.patterns {
		if pattern.MatchString(name) {
			m.mu.RUnlock()
			return true
		}
	}
	m.mu.RUnlock()
	return m.Mapper.IsIgnoredElement(name)
}

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
	"strconv"
	"strings"
	"unicode"
)

// Escaping codes names so that every name written is a valid XML name.
// Letters, digits, '.' and '-' are kept. '_' becomes "__", '/' becomes "_-",
// '*' becomes "_." and any other rune r becomes "_x<hex r>_".
//
//	[]*github.com/acme/model.Point -> _x5b__x5d__.github.com_-acme_-model.Point
type Escaping struct {
	Wrapper
}

// NewEscaping creates an Escaping link wrapping wrapped
func NewEscaping(wrapped Mapper) *Escaping {
	return &Escaping{Wrapper: Wrapper{Mapper: wrapped}}
}

func (m *Escaping) SerializedType(t reflect.Type) string {
	return EncodeName(m.Mapper.SerializedType(t))
}

func (m *Escaping) ResolveType(name string) (reflect.Type, error) {
	return m.Mapper.ResolveType(DecodeName(name))
}

func (m *Escaping) SerializedMember(owner reflect.Type, member string) string {
	return EncodeName(m.Mapper.SerializedMember(owner, member))
}

func (m *Escaping) ResolveMember(owner reflect.Type, serialized string) string {
	return m.Mapper.ResolveMember(owner, DecodeName(serialized))
}

func (m *Escaping) AliasForAttribute(attribute string) string {
	return EncodeName(m.Mapper.AliasForAttribute(attribute))
}

func (m *Escaping) AttributeForAlias(alias string) string {
	return m.Mapper.AttributeForAlias(DecodeName(alias))
}

func (m *Escaping) IsIgnoredElement(name string) bool {
	return m.Mapper.IsIgnoredElement(DecodeName(name))
}

func (m *Escaping) ImplicitCollectionForField(owner reflect.Type, field string) *ImplicitCollection {
	return encodeItemName(m.Mapper.ImplicitCollectionForField(owner, field))
}

func (m *Escaping) ImplicitCollectionForItem(owner reflect.Type, itemType reflect.Type, itemName string) *ImplicitCollection {
	return encodeItemName(m.Mapper.ImplicitCollectionForItem(owner, itemType, DecodeName(itemName)))
}

func encodeItemName(collection *ImplicitCollection) *ImplicitCollection {
	if collection == nil || collection.ItemName == "" {
		return collection
	}

	encoded := EncodeName(collection.ItemName)
	if encoded == collection.ItemName {
		return collection
	}

	clone := *collection
	clone.ItemName = encoded
	return &clone
}

// EncodeName escapes the runes of name that are not allowed in a document name
func EncodeName(name string) string {
	if isSafeName(name) {
		return name
	}

	var sb strings.Builder
	sb.Grow(len(name) + 8)
	for _, r := range name {
		switch {
		case r == '_':
			sb.WriteString("__")
		case r == '/':
			sb.WriteString("_-")
		case r == '*':
			sb.WriteString("_.")
		case isSafeRune(r):
			sb.WriteRune(r)
		default:
			sb.WriteString("_x")
			sb.WriteString(strconv.FormatInt(int64(r), 16))
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// DecodeName reverses EncodeName. Malformed escapes are kept verbatim.
func DecodeName(name string) string {
	if !strings.Contains(name, "_") {
		return name
	}

	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '_' || i+1 >= len(name) {
			sb.WriteByte(c)
			continue
		}

		switch name[i+1] {
		case '_':
			sb.WriteByte('_')
			i++
		case '-':
			sb.WriteByte('/')
			i++
		case '.':
			sb.WriteByte('*')
			i++
		case 'x':
			end := strings.IndexByte(name[i+2:], '_')
			if end <= 0 {
				sb.WriteByte(c)
				continue
			}
			code, err := strconv.ParseInt(name[i+2:i+2+end], 16, 32)
			if err != nil {
				sb.WriteByte(c)
				continue
			}
			sb.WriteRune(rune(code))
			i += 2 + end
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isSafeName(name string) bool {
	for _, r := range name {
		if r == '_' || !isSafeRune(r) {
			return false
		}
	}
	return true
}

func isSafeRune(r rune) bool {
	return r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

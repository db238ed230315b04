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
	"github.com/tochemey/arbor/internal/xsync"
)

// EntryName is the node name of a key/value pair of an implicit map without key field
const EntryName = "entry"

// ImplicitCollection describes a slice, array or map member written without
// a wrapping node: each item becomes a direct child of the owner's node.
type ImplicitCollection struct {
	// Owner is the struct type declaring the member
	Owner reflect.Type
	// Field is the member name
	Field string
	// FieldType is the declared type of the member
	FieldType reflect.Type
	// ItemName names every item node. Empty means items are named after their type.
	ItemName string
	// ItemType is the default type of the items
	ItemType reflect.Type
	// KeyField is the member of a map item holding its key. Empty means
	// items are written as entry nodes holding a key and a value.
	KeyField string
}

// NewImplicitCollection validates and normalizes the mapping of the member field
// reachable from owner. A nil itemType defaults to the element type of the member.
func NewImplicitCollection(owner reflect.Type, field, itemName string, itemType reflect.Type, keyField string) (*ImplicitCollection, error) {
	declaring, ok := DeclaringType(owner, field)
	if !ok {
		return nil, errors.New(errors.ErrInvalidConfig, "%s has no field %s", types.Name(owner), field)
	}

	structField, _ := types.Indirect(owner).FieldByName(field)
	fieldType := structField.Type
	switch fieldType.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
	default:
		return nil, errors.New(errors.ErrInvalidConfig, "field %s of %s is not a slice, array or map", field, types.Name(owner))
	}

	elem := fieldType.Elem()
	if itemType == nil {
		itemType = elem
	}

	if !itemType.AssignableTo(elem) {
		return nil, errors.New(errors.ErrInvalidConfig, "item type %s is not assignable to %s", types.Name(itemType), types.Name(elem))
	}

	if fieldType.Kind() != reflect.Map && keyField != "" {
		return nil, errors.New(errors.ErrInvalidConfig, "key field %s requires a map member", keyField)
	}

	if fieldType.Kind() == reflect.Map {
		if keyField == "" && itemName == "" {
			itemName = EntryName
		}

		if keyField != "" {
			itemStruct := types.Indirect(itemType)
			if itemStruct.Kind() != reflect.Struct {
				return nil, errors.New(errors.ErrInvalidConfig, "item type %s has no field %s", types.Name(itemType), keyField)
			}
			keyMember, ok := itemStruct.FieldByName(keyField)
			if !ok {
				return nil, errors.New(errors.ErrInvalidConfig, "item type %s has no field %s", types.Name(itemType), keyField)
			}
			if !keyMember.Type.AssignableTo(fieldType.Key()) {
				return nil, errors.New(errors.ErrInvalidConfig, "key field %s is not assignable to %s", keyField, types.Name(fieldType.Key()))
			}
		}
	}

	return &ImplicitCollection{
		Owner:     declaring,
		Field:     field,
		FieldType: fieldType,
		ItemName:  itemName,
		ItemType:  itemType,
		KeyField:  keyField,
	}, nil
}

// IsMap reports whether the member is a map
func (c *ImplicitCollection) IsMap() bool {
	return c.FieldType.Kind() == reflect.Map
}

// IsEntry reports whether map items are written as key/value entry nodes
func (c *ImplicitCollection) IsEntry() bool {
	return c.IsMap() && c.KeyField == ""
}

// ImplicitCollections holds the implicit collection mappings
type ImplicitCollections struct {
	Wrapper
	byOwner *xsync.Map[reflect.Type, []*ImplicitCollection]
}

// NewImplicitCollections creates an ImplicitCollections link wrapping wrapped
func NewImplicitCollections(wrapped Mapper) *ImplicitCollections {
	return &ImplicitCollections{
		Wrapper: Wrapper{Mapper: wrapped},
		byOwner: xsync.NewMap[reflect.Type, []*ImplicitCollection](),
	}
}

// Add registers a mapping, replacing any earlier one for the same member
func (m *ImplicitCollections) Add(collection *ImplicitCollection) {
	existing, _ := m.byOwner.Get(collection.Owner)
	updated := make([]*ImplicitCollection, 0, len(existing)+1)
	for _, current := range existing {
		if current.Field != collection.Field {
			updated = append(updated, current)
		}
	}
	m.byOwner.Set(collection.Owner, append(updated, collection))
}

// ImplicitCollectionForField returns the mapping of the member declared by owner
func (m *ImplicitCollections) ImplicitCollectionForField(owner reflect.Type, field string) *ImplicitCollection {
	collections, _ := m.byOwner.Get(owner)
	for _, collection := range collections {
		if collection.Field == field {
			return collection
		}
	}
	return m.Mapper.ImplicitCollectionForField(owner, field)
}

// ImplicitCollectionForItem returns the mapping of owner, or of the closest type
// it embeds, whose item name is itemName or, for unnamed mappings, whose item
// type accepts itemType. An exact item type wins over an assignable one.
func (m *ImplicitCollections) ImplicitCollectionForItem(owner reflect.Type, itemType reflect.Type, itemName string) *ImplicitCollection {
	for _, t := range Hierarchy(owner) {
		collections, _ := m.byOwner.Get(t)
		var candidate *ImplicitCollection
		for _, collection := range collections {
			if itemName != "" && collection.ItemName == itemName {
				return collection
			}

			if collection.ItemName != "" || itemType == nil {
				continue
			}

			if collection.ItemType == itemType {
				return collection
			}

			if candidate == nil && itemType.AssignableTo(collection.ItemType) {
				candidate = collection
			}
		}

		if candidate != nil {
			return candidate
		}
	}
	return m.Mapper.ImplicitCollectionForItem(owner, itemType, itemName)
}

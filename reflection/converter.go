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

package reflection

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/arbor/converter"
	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/tree"
)

// Replacer is implemented by types that write a substitute in their place.
// When the substitute has another type, the node records it in the
// resolves-to attribute and the substitute is read back instead.
type Replacer interface {
	WriteReplace() any
}

// Resolver is implemented by types that return another value once read.
// It is the counterpart of Replacer.
type Resolver interface {
	ReadResolve() any
}

// Converter writes structs member by member.
//
// Members selected as attributes and handled by a single value converter are
// written first, as attributes. Every other non nil member becomes a child
// node named after the member, or a run of item nodes when the member is an
// implicit collection.
type Converter struct {
	mapper     mapper.Mapper
	registry   *converter.Registry
	dictionary *FieldDictionary
	provider   *Provider
}

var _ converter.Converter = (*Converter)(nil)

// NewConverter creates a Converter
func NewConverter(m mapper.Mapper, registry *converter.Registry, dictionary *FieldDictionary, provider *Provider) *Converter {
	return &Converter{
		mapper:     m,
		registry:   registry,
		dictionary: dictionary,
		provider:   provider,
	}
}

// CanConvert reports true for struct types
func (c *Converter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Struct
}

// Marshal writes the members of source
func (c *Converter) Marshal(source any, w tree.Writer, ctx converter.MarshallingContext) error {
	value := Addressable(reflect.ValueOf(source))
	if substitute, ok := replacement(value); ok {
		if converter.IsNil(reflect.ValueOf(substitute)) {
			return nil
		}

		if substituteType := reflect.TypeOf(substitute); substituteType != value.Type() {
			w.AddAttribute(c.mapper.AliasForAttribute(mapper.AttributeResolvesTo), c.mapper.SerializedType(substituteType))
			ctx.Replace(source, substitute)
			return ctx.ConvertAnother(substitute)
		}
		value = Addressable(reflect.ValueOf(substitute))
	}

	descriptor, err := c.dictionary.Descriptor(value.Type())
	if err != nil {
		return err
	}

	attributes, err := c.marshalAttributes(value, descriptor, w)
	if err != nil {
		return err
	}

	for _, field := range descriptor.Fields() {
		if attributes.Contains(field) || !c.mapper.ShouldSerializeMember(field.DeclaringType, field.Name) {
			continue
		}

		member, err := c.provider.Read(value, field)
		if err != nil {
			return err
		}

		if converter.IsNil(member) {
			continue
		}

		if collection := c.mapper.ImplicitCollectionForField(field.DeclaringType, field.Name); collection != nil {
			if field.Occurrence > 1 {
				return errors.New(errors.ErrDuplicateField, "implicit collection %s is embedded more than once", fieldName(field)).
					Add("field", fieldName(field))
			}
			err = c.marshalImplicit(member, collection, w, ctx)
		} else {
			err = c.marshalMember(member, field, w, ctx)
		}

		if err != nil {
			return errors.Annotate(err, "field", fieldName(field))
		}
	}
	return nil
}

func (c *Converter) marshalAttributes(value reflect.Value, descriptor *Descriptor, w tree.Writer) (mapset.Set[*Field], error) {
	written := mapset.NewThreadUnsafeSet[*Field]()
	names := mapset.NewThreadUnsafeSet[string]()
	for _, field := range descriptor.Fields() {
		if !c.mapper.ShouldSerializeMember(field.DeclaringType, field.Name) ||
			!c.mapper.IsAttribute(field.DeclaringType, field.Name, field.Type) ||
			c.mapper.ImplicitCollectionForField(field.DeclaringType, field.Name) != nil {
			continue
		}

		svc, ok := c.registry.LookupSingleValue(field.Type)
		if !ok {
			continue
		}

		member, err := c.provider.Read(value, field)
		if err != nil {
			return nil, err
		}

		if converter.IsNil(member) {
			continue
		}

		name := c.mapper.AliasForAttribute(c.mapper.SerializedMember(field.DeclaringType, field.Name))
		if c.isSystemAttribute(name) {
			return nil, reservedAttribute(field, name)
		}

		if !names.Add(name) {
			return nil, errors.New(errors.ErrDuplicateField, "attribute %s is written twice", name).
				Add("field", fieldName(field)).
				Add("attribute", name)
		}

		text, err := svc.ToString(member.Interface())
		if err != nil {
			return nil, errors.Annotate(err, "field", fieldName(field))
		}

		w.AddAttribute(name, text)
		written.Add(field)
	}
	return written, nil
}

func (c *Converter) marshalMember(member reflect.Value, field *Field, w tree.Writer, ctx converter.MarshallingContext) error {
	if member.Kind() == reflect.Interface {
		member = member.Elem()
	}

	actual := member.Type()
	w.StartNode(c.mapper.SerializedMember(field.DeclaringType, field.Name), actual)
	if actual != c.mapper.DefaultImplementationOf(field.Type) {
		w.AddAttribute(c.mapper.AliasForAttribute(mapper.AttributeClass), c.mapper.SerializedType(actual))
	}

	if field.Hidden {
		w.AddAttribute(c.mapper.AliasForAttribute(mapper.AttributeDefinedIn), c.definedIn(field))
	}

	err := ctx.ConvertAnother(member.Interface())
	w.EndNode()
	return err
}

func (c *Converter) marshalImplicit(member reflect.Value, collection *mapper.ImplicitCollection, w tree.Writer, ctx converter.MarshallingContext) error {
	switch member.Kind() {
	case reflect.Map:
		for _, key := range converter.SortedKeys(member) {
			if !collection.IsEntry() {
				if err := c.marshalItem(member.MapIndex(key), collection, w, ctx); err != nil {
					return err
				}
				continue
			}

			w.StartNode(collection.ItemName, nil)
			err := converter.WriteItem(w, c.mapper, ctx, key)
			if err == nil {
				err = converter.WriteItem(w, c.mapper, ctx, member.MapIndex(key))
			}
			w.EndNode()
			if err != nil {
				return err
			}
		}
	default:
		for i := range member.Len() {
			if err := c.marshalItem(member.Index(i), collection, w, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// marshalItem writes an implicit item. Nil items are not written: an implicit
// collection has no node to carry them.
func (c *Converter) marshalItem(item reflect.Value, collection *mapper.ImplicitCollection, w tree.Writer, ctx converter.MarshallingContext) error {
	if converter.IsNil(item) {
		return nil
	}

	if item.Kind() == reflect.Interface {
		item = item.Elem()
	}

	actual := item.Type()
	name := collection.ItemName
	if name == "" {
		name = c.mapper.SerializedType(actual)
	}

	w.StartNode(name, actual)
	if collection.ItemName != "" && actual != c.mapper.DefaultImplementationOf(collection.ItemType) {
		w.AddAttribute(c.mapper.AliasForAttribute(mapper.AttributeClass), c.mapper.SerializedType(actual))
	}
	err := ctx.ConvertAnother(item.Interface())
	w.EndNode()
	return err
}

// accumulator collects the items of an implicit collection until the whole
// node is read
type accumulator struct {
	field      *Field
	collection *mapper.ImplicitCollection
	keys       []reflect.Value
	items      []reflect.Value
}

type unmarshalState struct {
	instance     reflect.Value
	descriptor   *Descriptor
	seen         mapset.Set[*Field]
	accumulators []*accumulator
}

// Unmarshal reads a struct of the required type
func (c *Converter) Unmarshal(r tree.Reader, ctx converter.UnmarshallingContext) (any, error) {
	required := ctx.RequiredType()
	if name, ok := r.Attribute(c.mapper.AliasForAttribute(mapper.AttributeResolvesTo)); ok {
		substituteType, err := c.mapper.ResolveType(name)
		if err != nil {
			return nil, err
		}

		// the substitute is read from the same node and resolves itself
		if substituteType = types.Indirect(substituteType); substituteType != nil && substituteType != required {
			return ctx.ConvertAnother(substituteType)
		}
	}

	instance, err := c.provider.NewInstance(required)
	if err != nil {
		return nil, err
	}

	descriptor, err := c.dictionary.Descriptor(required)
	if err != nil {
		return nil, err
	}

	state := &unmarshalState{
		instance:   instance,
		descriptor: descriptor,
		seen:       mapset.NewThreadUnsafeSet[*Field](),
	}

	if err := c.unmarshalAttributes(r, state); err != nil {
		return nil, err
	}

	for r.HasMoreChildren() {
		r.MoveDown()
		err := c.unmarshalChild(r, ctx, state)
		r.MoveUp()
		if err != nil {
			return nil, err
		}
	}

	if err := c.materialize(state); err != nil {
		return nil, err
	}

	return resolution(instance), nil
}

func (c *Converter) unmarshalAttributes(r tree.Reader, state *unmarshalState) error {
	required := state.descriptor.Type()
	for _, alias := range r.AttributeNames() {
		attribute := c.mapper.AttributeForAlias(alias)
		if slices.Contains(mapper.SystemAttributes, attribute) {
			// a member written under a reserved name cannot be told apart from the system attribute
			if field, ok := state.descriptor.Field(c.mapper.ResolveMember(required, attribute), nil); ok && c.isAttributeMember(field) {
				return reservedAttribute(field, alias)
			}
			continue
		}

		field, ok := state.descriptor.Field(c.mapper.ResolveMember(required, attribute), nil)
		if !ok || !c.mapper.ShouldSerializeMember(field.DeclaringType, field.Name) {
			continue
		}

		svc, ok := c.registry.LookupSingleValue(field.Type)
		if !ok {
			continue
		}

		if !state.seen.Add(field) {
			return errors.New(errors.ErrDuplicateField, "%s", fieldName(field)).Add("field", fieldName(field))
		}

		text, _ := r.Attribute(alias)
		parsed, err := svc.FromString(text, field.Type)
		if err != nil {
			return errors.Annotate(err, "field", fieldName(field))
		}

		value, err := converter.Value(parsed, field.Type)
		if err != nil {
			return errors.Annotate(err, "field", fieldName(field))
		}

		if err := c.provider.Write(state.instance, field, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) unmarshalChild(r tree.Reader, ctx converter.UnmarshallingContext, state *unmarshalState) error {
	required := state.descriptor.Type()
	name := r.NodeName()

	owner, declaring, occurrence := required, reflect.Type(nil), 1
	if definedIn, ok := r.Attribute(c.mapper.AliasForAttribute(mapper.AttributeDefinedIn)); ok {
		typeName, n := splitOccurrence(definedIn)
		resolved, err := c.mapper.ResolveType(typeName)
		if err != nil {
			return err
		}
		owner, declaring, occurrence = resolved, resolved, n
	}

	field, found := state.descriptor.FieldAt(c.mapper.ResolveMember(owner, name), declaring, occurrence)
	if found && !c.mapper.ShouldSerializeMember(field.DeclaringType, field.Name) {
		return nil
	}

	if found && c.mapper.ImplicitCollectionForField(field.DeclaringType, field.Name) == nil {
		return c.unmarshalMember(ctx, state, field)
	}

	collection, itemType, err := c.implicitCollectionFor(required, name)
	if err != nil {
		return err
	}

	if collection == nil {
		if c.mapper.IsIgnoredElement(name) {
			return nil
		}
		typeName := types.Name(required)
		return errors.New(errors.ErrUnknownField, "%s has no field %s", typeName, name).
			Add("field", name).
			Add("type", typeName)
	}
	return c.unmarshalItem(r, ctx, state, collection, itemType)
}

func (c *Converter) unmarshalMember(ctx converter.UnmarshallingContext, state *unmarshalState, field *Field) error {
	if !state.seen.Add(field) {
		return errors.New(errors.ErrDuplicateField, "%s", fieldName(field)).Add("field", fieldName(field))
	}

	item, err := ctx.ConvertAnother(field.Type)
	if err != nil {
		return errors.Annotate(err, "field", fieldName(field))
	}

	value, err := converter.Value(item, field.Type)
	if err != nil {
		return errors.Annotate(err, "field", fieldName(field))
	}
	return c.provider.Write(state.instance, field, value)
}

// implicitCollectionFor finds the implicit collection of owner whose items are
// named name, then the one whose item type is named name. The item type returned
// is the type to read the node as.
func (c *Converter) implicitCollectionFor(owner reflect.Type, name string) (*mapper.ImplicitCollection, reflect.Type, error) {
	if collection := c.mapper.ImplicitCollectionForItem(owner, nil, name); collection != nil {
		return collection, collection.ItemType, nil
	}

	if c.mapper.IsIgnoredElement(name) {
		return nil, nil, nil
	}

	itemType, err := c.mapper.ResolveType(name)
	if err != nil {
		if errors.Is(err, errors.ErrCannotResolveType) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if itemType == nil {
		return nil, nil, nil
	}
	return c.mapper.ImplicitCollectionForItem(owner, itemType, ""), itemType, nil
}

func (c *Converter) unmarshalItem(r tree.Reader, ctx converter.UnmarshallingContext, state *unmarshalState, collection *mapper.ImplicitCollection, itemType reflect.Type) error {
	acc, err := c.accumulatorFor(state, collection)
	if err != nil {
		return err
	}

	if collection.IsEntry() {
		key, value, err := converter.ReadEntry(r, c.mapper, ctx, collection.FieldType)
		if err != nil {
			return errors.Annotate(err, "field", fieldName(acc.field))
		}
		acc.keys = append(acc.keys, key)
		acc.items = append(acc.items, value)
		return nil
	}

	item, err := ctx.ConvertAnother(itemType)
	if err != nil {
		return errors.Annotate(err, "field", fieldName(acc.field))
	}

	value, err := converter.Value(item, collection.FieldType.Elem())
	if err != nil {
		return errors.Annotate(err, "field", fieldName(acc.field))
	}
	acc.items = append(acc.items, value)
	return nil
}

func (c *Converter) accumulatorFor(state *unmarshalState, collection *mapper.ImplicitCollection) (*accumulator, error) {
	for _, acc := range state.accumulators {
		if acc.collection.Owner == collection.Owner && acc.collection.Field == collection.Field {
			return acc, nil
		}
	}

	field, ok := state.descriptor.Field(collection.Field, collection.Owner)
	if !ok {
		typeName := types.Name(state.descriptor.Type())
		return nil, errors.New(errors.ErrUnknownField, "%s has no field %s", typeName, collection.Field).
			Add("field", collection.Field).
			Add("type", typeName)
	}

	if !state.seen.Add(field) {
		return nil, errors.New(errors.ErrDuplicateField, "%s", fieldName(field)).Add("field", fieldName(field))
	}

	acc := &accumulator{field: field, collection: collection}
	state.accumulators = append(state.accumulators, acc)
	return acc, nil
}

// materialize builds every implicit collection from its accumulated items and
// stores it in its member
func (c *Converter) materialize(state *unmarshalState) error {
	for _, acc := range state.accumulators {
		fieldType := acc.collection.FieldType
		var value reflect.Value
		switch fieldType.Kind() {
		case reflect.Slice:
			value = reflect.MakeSlice(fieldType, 0, len(acc.items))
			value = reflect.Append(value, acc.items...)
		case reflect.Array:
			if len(acc.items) > fieldType.Len() {
				name := types.Name(fieldType)
				return errors.New(errors.ErrIncompatibleType, "%s holds at most %d items, got %d", name, fieldType.Len(), len(acc.items)).
					Add("type", name).
					Add("field", fieldName(acc.field))
			}
			value = reflect.New(fieldType).Elem()
			for i, item := range acc.items {
				value.Index(i).Set(item)
			}
		case reflect.Map:
			value = reflect.MakeMapWithSize(fieldType, len(acc.items))
			for i, item := range acc.items {
				key, err := c.keyOf(acc, i, item)
				if err != nil {
					return err
				}
				value.SetMapIndex(key, item)
			}
		default:
		}

		if err := c.provider.Write(state.instance, acc.field, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) keyOf(acc *accumulator, index int, item reflect.Value) (reflect.Value, error) {
	if acc.collection.IsEntry() {
		return acc.keys[index], nil
	}

	holder := item
	for holder.Kind() == reflect.Pointer || holder.Kind() == reflect.Interface {
		if holder.IsNil() {
			return reflect.Value{}, errors.New(errors.ErrIncompatibleType, "nil item has no key field %s", acc.collection.KeyField).
				Add("field", fieldName(acc.field))
		}
		holder = holder.Elem()
	}

	keyField, ok := holder.Type().FieldByName(acc.collection.KeyField)
	if !ok {
		return reflect.Value{}, errors.New(errors.ErrIncompatibleType, "%s has no key field %s", types.Name(holder.Type()), acc.collection.KeyField).
			Add("field", fieldName(acc.field))
	}

	key, err := c.provider.Read(Addressable(holder), &Field{Name: keyField.Name, Index: keyField.Index})
	if err != nil {
		return reflect.Value{}, err
	}
	return converter.Value(key.Interface(), acc.collection.FieldType.Key())
}

func replacement(value reflect.Value) (any, bool) {
	if replacer, ok := value.Interface().(Replacer); ok {
		return replacer.WriteReplace(), true
	}
	if value.CanAddr() {
		if replacer, ok := value.Addr().Interface().(Replacer); ok {
			return replacer.WriteReplace(), true
		}
	}
	return nil, false
}

func resolution(instance reflect.Value) any {
	if resolver, ok := instance.Interface().(Resolver); ok {
		return resolver.ReadResolve()
	}
	if resolver, ok := instance.Addr().Interface().(Resolver); ok {
		return resolver.ReadResolve()
	}
	return instance.Interface()
}

// definedIn names the type declaring a hidden member. Later occurrences of a
// struct embedded through several paths carry their number, as in T[2].
func (c *Converter) definedIn(field *Field) string {
	name := c.mapper.SerializedType(field.DeclaringType)
	if field.Occurrence > 1 {
		name += "[" + strconv.Itoa(field.Occurrence) + "]"
	}
	return name
}

// splitOccurrence reverses definedIn. Escaped type names never end with ']'.
func splitOccurrence(definedIn string) (string, int) {
	if !strings.HasSuffix(definedIn, "]") {
		return definedIn, 1
	}

	open := strings.LastIndexByte(definedIn, '[')
	if open <= 0 {
		return definedIn, 1
	}

	occurrence, err := strconv.Atoi(definedIn[open+1 : len(definedIn)-1])
	if err != nil || occurrence < 1 {
		return definedIn, 1
	}
	return definedIn[:open], occurrence
}

func (c *Converter) isSystemAttribute(name string) bool {
	return slices.ContainsFunc(mapper.SystemAttributes, func(attribute string) bool {
		return c.mapper.AliasForAttribute(attribute) == name
	})
}

func (c *Converter) isAttributeMember(field *Field) bool {
	if !c.mapper.ShouldSerializeMember(field.DeclaringType, field.Name) ||
		!c.mapper.IsAttribute(field.DeclaringType, field.Name, field.Type) {
		return false
	}
	_, ok := c.registry.LookupSingleValue(field.Type)
	return ok
}

func reservedAttribute(field *Field, name string) error {
	return errors.New(errors.ErrDuplicateField, "%s is written as the reserved attribute %s", fieldName(field), name).
		Add("field", fieldName(field)).
		Add("attribute", name)
}

func fieldName(field *Field) string {
	if field.DeclaringType == nil {
		return field.Name
	}
	return types.Name(field.DeclaringType) + "." + field.Name
}

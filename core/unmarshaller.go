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

package core

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/tochemey/arbor/converter"
	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/stack"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/tree"
)

type unmarshalFrame struct {
	required reflect.Type
	key      string
	depth    int
	object   any
}

type completion struct {
	fn       func() error
	priority int
}

// Unmarshaller reads a single document.
// It is the UnmarshallingContext handed to every converter of the call and
// must not be shared between calls.
type Unmarshaller struct {
	converter.DataHolder

	reader      *tree.PathTrackingReader
	registry    *converter.Registry
	mapper      mapper.Mapper
	mode        ReferenceMode
	references  map[string][]any
	frames      *stack.Stack[*unmarshalFrame]
	completions []completion
}

var _ converter.UnmarshallingContext = (*Unmarshaller)(nil)

// NewUnmarshaller creates an Unmarshaller reading from r, which must be
// positioned on the root node. A nil data holder is replaced by an empty one.
func NewUnmarshaller(r tree.Reader, registry *converter.Registry, m mapper.Mapper, mode ReferenceMode, data converter.DataHolder) *Unmarshaller {
	if data == nil {
		data = converter.NewDataHolder()
	}

	return &Unmarshaller{
		DataHolder: data,
		reader:     tree.NewPathTrackingReader(r),
		registry:   registry,
		mapper:     m,
		mode:       mode,
		references: make(map[string][]any),
		frames:     stack.New[*unmarshalFrame](),
	}
}

// Start reads the root node as a value of the required type, or of the type
// the root node names when required is nil or an interface, then runs the
// completion callbacks
func (u *Unmarshaller) Start(required reflect.Type) (result any, err error) {
	defer recoverPanic(&err, u.reader.Path)

	if u.reader.NodeName() == u.mapper.SerializedType(nil) && !u.hasAttribute(mapper.AttributeClass) {
		return nil, nil
	}

	if result, err = u.ConvertAnother(required); err != nil {
		return nil, err
	}

	if err = u.complete(); err != nil {
		return nil, err
	}
	return result, nil
}

// ConvertAnother reads the current node
func (u *Unmarshaller) ConvertAnother(required reflect.Type) (any, error) {
	return u.convert(required, nil)
}

// ConvertWith reads the current node with c
func (u *Unmarshaller) ConvertWith(required reflect.Type, c converter.Converter) (any, error) {
	return u.convert(required, c)
}

// RequiredType returns the type the current converter must return
func (u *Unmarshaller) RequiredType() reflect.Type {
	if frame, ok := u.frames.Peek(); ok {
		return frame.required
	}
	return nil
}

// CurrentObject returns the innermost value registered with Constructed
func (u *Unmarshaller) CurrentObject() any {
	var current any
	u.frames.Any(func(f *unmarshalFrame) bool {
		current = f.object
		return current != nil
	})
	return current
}

// Constructed registers instance as the value of the current node
func (u *Unmarshaller) Constructed(instance any) {
	frame, ok := u.frames.Peek()
	if !ok {
		return
	}
	frame.object = instance
	u.register(frame.key, instance)
}

// AddCompletionCallback runs fn once the whole document is read
func (u *Unmarshaller) AddCompletionCallback(fn func() error, priority int) {
	u.completions = append(u.completions, completion{fn: fn, priority: priority})
}

// Path returns the path of the current node
func (u *Unmarshaller) Path() string {
	return u.reader.Path()
}

func (u *Unmarshaller) convert(required reflect.Type, forced converter.Converter) (any, error) {
	path := u.reader.Path()
	depth := u.reader.Depth()
	parent, ok := u.frames.Peek()
	sameNode := ok && parent.depth == depth

	actual := required
	if !sameNode {
		if ref, ok := u.attribute(mapper.AttributeReference); ok {
			result, err := u.dereference(ref, required)
			if err != nil {
				return nil, annotate(err, nil, required, nil, path)
			}
			return result, nil
		}

		resolved, err := u.resolveType(required)
		if err != nil {
			return nil, annotate(err, nil, required, nil, path)
		}

		if resolved == nil {
			return nil, nil
		}
		actual = resolved
	}

	c := forced
	if c == nil {
		var err error
		if c, err = u.registry.Lookup(actual); err != nil {
			return nil, annotate(err, actual, required, nil, path)
		}
	}

	frame := &unmarshalFrame{required: actual, key: u.referenceKey(path), depth: depth}
	u.frames.Push(frame)
	result, err := c.Unmarshal(u.reader, u)
	u.frames.Pop()
	if err != nil {
		return nil, annotate(err, actual, required, c, path)
	}

	u.register(frame.key, result)
	return result, nil
}

// resolveType returns the type to read the current node as: the type named by
// the class attribute, the default implementation of required, or the type the
// node name resolves to when no concrete type is known
func (u *Unmarshaller) resolveType(required reflect.Type) (reflect.Type, error) {
	if name, ok := u.attribute(mapper.AttributeClass); ok {
		resolved, err := u.mapper.ResolveType(name)
		if err != nil {
			return nil, err
		}
		return resolved, compatible(resolved, required)
	}

	if required != nil {
		if actual := u.mapper.DefaultImplementationOf(required); actual != nil && actual.Kind() != reflect.Interface {
			return actual, nil
		}
	}

	resolved, err := u.mapper.ResolveType(u.reader.NodeName())
	if err != nil {
		return nil, err
	}
	return resolved, compatible(resolved, required)
}

func (u *Unmarshaller) referenceKey(path string) string {
	switch u.mode {
	case ByPath:
		return path
	case ByID:
		id, _ := u.attribute(mapper.AttributeID)
		return id
	default:
		return ""
	}
}

func (u *Unmarshaller) register(key string, instance any) {
	if key == "" {
		return
	}

	id, ok := identityOf(reflect.ValueOf(instance))
	if !ok {
		return
	}

	for _, existing := range u.references[key] {
		if existingID, _ := identityOf(reflect.ValueOf(existing)); existingID == id {
			return
		}
	}
	u.references[key] = append(u.references[key], instance)
}

// dereference returns the instance registered under key that fits required
func (u *Unmarshaller) dereference(key string, required reflect.Type) (any, error) {
	if u.mode == None {
		return nil, errors.New(errors.ErrInvalidReference, "references are disabled").Add("reference", key)
	}

	for _, candidate := range u.references[key] {
		if required == nil || reflect.TypeOf(candidate).AssignableTo(required) {
			return candidate, nil
		}
	}
	return nil, errors.New(errors.ErrInvalidReference, "%s does not reference a known value", key).Add("reference", key)
}

// complete runs the completion callbacks, highest priority first
func (u *Unmarshaller) complete() error {
	callbacks := slices.Clone(u.completions)
	u.completions = nil
	slices.SortStableFunc(callbacks, func(a, b completion) int {
		return cmp.Compare(b.priority, a.priority)
	})

	for _, callback := range callbacks {
		if err := callback.fn(); err != nil {
			return errors.Annotate(err, "stage", "completion")
		}
	}
	return nil
}

func (u *Unmarshaller) attribute(name string) (string, bool) {
	return u.reader.Attribute(u.mapper.AliasForAttribute(name))
}

func (u *Unmarshaller) hasAttribute(name string) bool {
	_, ok := u.attribute(name)
	return ok
}

func compatible(actual, required reflect.Type) error {
	if actual == nil || required == nil || actual.AssignableTo(required) ||
		(actual.Kind() == required.Kind() && actual.ConvertibleTo(required)) {
		return nil
	}

	actualName, requiredName := types.Name(actual), types.Name(required)
	return errors.New(errors.ErrIncompatibleType, "%s is not assignable to %s", actualName, requiredName).
		Add("type", actualName).
		Add("required-type", requiredName)
}

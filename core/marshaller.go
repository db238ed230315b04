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
	"fmt"
	"reflect"
	"strconv"

	"github.com/tochemey/arbor/converter"
	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/stack"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/tree"
)

type marshalFrame struct {
	item     any
	identity identity
	tracked  bool
	key      string
	depth    int
}

// Marshaller writes a single value graph.
// It is the MarshallingContext handed to every converter of the call and
// must not be shared between calls.
type Marshaller struct {
	converter.DataHolder

	writer   *tree.PathTrackingWriter
	registry *converter.Registry
	mapper   mapper.Mapper
	mode     ReferenceMode
	tracker  *ReferenceTracker
	frames   *stack.Stack[*marshalFrame]
	nextID   int
}

var _ converter.MarshallingContext = (*Marshaller)(nil)

// NewMarshaller creates a Marshaller writing to w.
// A nil data holder is replaced by an empty one.
func NewMarshaller(w tree.Writer, registry *converter.Registry, m mapper.Mapper, mode ReferenceMode, data converter.DataHolder) *Marshaller {
	if data == nil {
		data = converter.NewDataHolder()
	}

	return &Marshaller{
		DataHolder: data,
		writer:     tree.NewPathTrackingWriter(w),
		registry:   registry,
		mapper:     m,
		mode:       mode,
		tracker:    NewReferenceTracker(),
		frames:     stack.New[*marshalFrame](),
	}
}

// Start writes item as the root node, named after its type
func (m *Marshaller) Start(item any) (err error) {
	defer recoverPanic(&err, m.writer.Path)

	value := reflect.ValueOf(item)
	if converter.IsNil(value) {
		m.writer.StartNode(m.mapper.SerializedType(nil), nil)
		m.writer.EndNode()
		return nil
	}

	m.writer.StartNode(m.mapper.SerializedType(value.Type()), value.Type())
	err = m.ConvertAnother(item)
	m.writer.EndNode()
	return err
}

// ConvertAnother writes item into the current node
func (m *Marshaller) ConvertAnother(item any) error {
	return m.convert(item, nil)
}

// ConvertWith writes item into the current node with c
func (m *Marshaller) ConvertWith(item any, c converter.Converter) error {
	return m.convert(item, c)
}

// Replace makes references to original resolve to the node substitute is written to
func (m *Marshaller) Replace(original, substitute any) {
	originalID, ok := identityOf(reflect.ValueOf(original))
	if !ok {
		return
	}

	substituteID, ok := identityOf(reflect.ValueOf(substitute))
	if !ok {
		return
	}

	if ref, ok := m.tracker.lookup(originalID); ok {
		m.tracker.associate(substituteID, ref)
	}
}

// Ancestors returns the values being written, outermost first
func (m *Marshaller) Ancestors() []any {
	frames := m.frames.Items()
	items := make([]any, len(frames))
	for i, frame := range frames {
		items[i] = frame.item
	}
	return items
}

// Path returns the path of the current node
func (m *Marshaller) Path() string {
	return m.writer.Path()
}

// Tracker returns the references recorded so far
func (m *Marshaller) Tracker() *ReferenceTracker {
	return m.tracker
}

func (m *Marshaller) convert(item any, forced converter.Converter) error {
	value := reflect.ValueOf(item)
	if converter.IsNil(value) {
		return nil
	}

	rtype := value.Type()
	path := m.writer.Path()
	frame := &marshalFrame{item: item, depth: m.writer.Depth()}

	if id, ok := identityOf(value); ok && !m.mapper.IsImmutableValueType(rtype) {
		frame.identity, frame.tracked = id, true
		switch m.mode {
		case None:
			if m.frames.Any(func(f *marshalFrame) bool { return f.tracked && f.identity == id }) {
				name := types.Name(rtype)
				return errors.New(errors.ErrCircularReference, "%s contains itself", name).
					Add("type", name).
					Add("path", path)
			}
		default:
			if ref, ok := m.tracker.lookup(id); ok {
				if ref.path != path {
					m.writer.AddAttribute(m.mapper.AliasForAttribute(mapper.AttributeReference), ref.key)
					return nil
				}
				frame.key = ref.key
			} else {
				frame.key = m.newKey(path, frame.depth)
				m.tracker.associate(id, reference{key: frame.key, path: path})
			}
		}
	}

	c := forced
	if c == nil {
		var err error
		if c, err = m.registry.Lookup(rtype); err != nil {
			return annotate(err, rtype, nil, nil, path)
		}
	}

	m.frames.Push(frame)
	err := c.Marshal(item, m.writer, m)
	m.frames.Pop()
	if err != nil {
		return annotate(err, rtype, nil, c, path)
	}
	return nil
}

// newKey returns the reference key of the current node. Values written into
// a node that already has a key share it.
func (m *Marshaller) newKey(path string, depth int) string {
	var shared string
	m.frames.Any(func(f *marshalFrame) bool {
		if f.depth != depth {
			return true
		}
		shared = f.key
		return shared != ""
	})

	if shared != "" {
		return shared
	}

	if m.mode == ByID {
		m.nextID++
		key := strconv.Itoa(m.nextID)
		m.writer.AddAttribute(m.mapper.AliasForAttribute(mapper.AttributeID), key)
		return key
	}
	return path
}

// annotate appends the conversion context to err
func annotate(err error, actual, required reflect.Type, c converter.Converter, path string) error {
	if actual != nil {
		err = errors.Annotate(err, "type", types.Name(actual))
	}
	if required != nil {
		err = errors.Annotate(err, "required-type", types.Name(required))
	}
	if c != nil {
		err = errors.Annotate(err, "converter-type", converter.Name(c))
	}
	return errors.Annotate(err, "path", path)
}

func recoverPanic(err *error, path func() string) {
	if r := recover(); r != nil {
		*err = errors.New(errors.ErrObjectAccess, "%s", fmt.Sprint(r)).Add("path", path())
	}
}

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

package tree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(w Writer) {
	w.StartNode("order", nil)
	w.AddAttribute("id", "1")
	w.StartNode("item", nil)
	w.SetValue("apple")
	w.EndNode()
	w.StartNode("item", nil)
	w.AddAttribute("class", "fruit")
	w.SetValue("pear & plum")
	w.EndNode()
	w.StartNode("note", nil)
	w.EndNode()
	w.EndNode()
}

func TestNodeWriter(t *testing.T) {
	writer := NewNodeWriter()
	writeSample(writer)

	expected := (&Node{Name: "order"}).
		SetAttribute("id", "1").
		Append(
			NewNode("item", "apple"),
			NewNode("item", "pear & plum").SetAttribute("class", "fruit"),
			&Node{Name: "note"},
		)
	assert.Equal(t, expected, writer.Root())
	assert.Equal(t, `<order id="1"><item>apple</item><item class="fruit">pear &amp; plum</item><note></note></order>`, writer.Root().String())

	t.Run("With unbalanced calls", func(t *testing.T) {
		assert.Panics(t, func() { NewNodeWriter().EndNode() })
		assert.Panics(t, func() { NewNodeWriter().SetValue("x") })
	})
}

func TestNodeReader(t *testing.T) {
	writer := NewNodeWriter()
	writeSample(writer)
	reader := NewNodeReader(writer.Root())

	assert.Equal(t, "order", reader.NodeName())
	assert.Equal(t, []string{"id"}, reader.AttributeNames())
	id, ok := reader.Attribute("id")
	require.True(t, ok)
	assert.Equal(t, "1", id)

	var values []string
	for reader.HasMoreChildren() {
		reader.MoveDown()
		values = append(values, reader.NodeName()+"="+reader.Value())
		reader.MoveUp()
	}
	assert.Equal(t, []string{"item=apple", "item=pear & plum", "note="}, values)
	assert.Panics(t, reader.MoveDown)
	assert.Panics(t, reader.MoveUp)

	t.Run("With unread children skipped", func(t *testing.T) {
		reader := NewNodeReader(writer.Root())
		reader.MoveDown()
		reader.MoveUp()
		reader.MoveDown()
		_, ok := reader.Attribute("class")
		assert.True(t, ok)
	})
}

func TestPathTracking(t *testing.T) {
	t.Run("With writer", func(t *testing.T) {
		var paths []string
		writer := NewPathTrackingWriter(NewNodeWriter())
		writer.StartNode("order", nil)
		paths = append(paths, writer.Path())
		for range 2 {
			writer.StartNode("item", nil)
			writer.StartNode("sku", nil)
			paths = append(paths, writer.Path())
			writer.EndNode()
			writer.EndNode()
		}
		writer.EndNode()
		assert.Equal(t, []string{"/order", "/order/item/sku", "/order/item[2]/sku"}, paths)
	})

	t.Run("With reader", func(t *testing.T) {
		writer := NewNodeWriter()
		writeSample(writer)
		reader := NewPathTrackingReader(NewNodeReader(writer.Root()))
		paths := []string{reader.Path()}
		for reader.HasMoreChildren() {
			reader.MoveDown()
			paths = append(paths, reader.Path())
			reader.MoveUp()
		}
		assert.Equal(t, []string{"/order", "/order/item", "/order/item[2]", "/order/note"}, paths)
	})

	t.Run("With empty tracker", func(t *testing.T) {
		tracker := NewPathTracker()
		assert.Equal(t, "/", tracker.Path())
		tracker.PopElement()
		assert.Zero(t, tracker.Depth())
	})
}

func TestXML(t *testing.T) {
	t.Run("With round trip", func(t *testing.T) {
		writer := NewNodeWriter()
		writeSample(writer)

		var buf bytes.Buffer
		require.NoError(t, WriteXML(&buf, writer.Root(), "  "))
		parsed, err := ParseXML(&buf)
		require.NoError(t, err)
		assert.Equal(t, writer.Root(), parsed)

		data, err := MarshalXML(parsed)
		require.NoError(t, err)
		again, err := UnmarshalXML(data)
		require.NoError(t, err)
		assert.Equal(t, parsed, again)
	})

	t.Run("With invalid documents", func(t *testing.T) {
		_, err := ParseXML(strings.NewReader(""))
		require.Error(t, err)
		_, err = ParseXML(strings.NewReader("<a><b></a>"))
		require.Error(t, err)
		_, err = ParseXML(strings.NewReader("<a></a><b></b>"))
		require.Error(t, err)
		require.Error(t, WriteXML(&bytes.Buffer{}, nil, ""))
	})

	t.Run("With lookups", func(t *testing.T) {
		root, err := UnmarshalXML([]byte(`<a x="1"><b>2</b></a>`))
		require.NoError(t, err)
		assert.Equal(t, "2", root.Child("b").Value)
		assert.Nil(t, root.Child("c"))
		_, ok := root.Attribute("y")
		assert.False(t, ok)
	})
}

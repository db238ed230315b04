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
	"reflect"
	"strconv"
	"strings"
)

// PathTracker follows the position of a walk through a document.
// The path of a node is absolute: every element is named after its node
// with a one-based index among same-named siblings, omitted when it is 1.
//
//	/order/items/item[2]/sku
type PathTracker struct {
	names   []string
	indices []int
	counts  []map[string]int
}

// NewPathTracker creates an empty PathTracker
func NewPathTracker() *PathTracker {
	return &PathTracker{
		names:   make([]string, 0, 16),
		indices: make([]int, 0, 16),
		counts:  make([]map[string]int, 0, 16),
	}
}

// PushElement records entering a child named name
func (p *PathTracker) PushElement(name string) {
	index := 1
	if depth := len(p.counts); depth > 0 {
		siblings := p.counts[depth-1]
		siblings[name]++
		index = siblings[name]
	}
	p.names = append(p.names, name)
	p.indices = append(p.indices, index)
	p.counts = append(p.counts, make(map[string]int))
}

// PopElement records leaving the current node
func (p *PathTracker) PopElement() {
	last := len(p.names) - 1
	if last < 0 {
		return
	}
	p.names = p.names[:last]
	p.indices = p.indices[:last]
	p.counts = p.counts[:last]
}

// Depth returns the number of nodes on the current path
func (p *PathTracker) Depth() int {
	return len(p.names)
}

// Path returns the absolute path of the current node
func (p *PathTracker) Path() string {
	var sb strings.Builder
	for i, name := range p.names {
		sb.WriteByte('/')
		sb.WriteString(name)
		if p.indices[i] > 1 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(p.indices[i]))
			sb.WriteByte(']')
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// PathTrackingWriter is a Writer that keeps track of the current path
type PathTrackingWriter struct {
	Writer
	tracker *PathTracker
}

var _ Writer = (*PathTrackingWriter)(nil)

// NewPathTrackingWriter wraps w
func NewPathTrackingWriter(w Writer) *PathTrackingWriter {
	return &PathTrackingWriter{Writer: w, tracker: NewPathTracker()}
}

// StartNode opens a child of the current node
func (w *PathTrackingWriter) StartNode(name string, typeHint reflect.Type) {
	w.tracker.PushElement(name)
	w.Writer.StartNode(name, typeHint)
}

// EndNode closes the current node
func (w *PathTrackingWriter) EndNode() {
	w.Writer.EndNode()
	w.tracker.PopElement()
}

// Path returns the path of the current node
func (w *PathTrackingWriter) Path() string {
	return w.tracker.Path()
}

// Depth returns the number of open nodes
func (w *PathTrackingWriter) Depth() int {
	return w.tracker.Depth()
}

// PathTrackingReader is a Reader that keeps track of the current path
type PathTrackingReader struct {
	Reader
	tracker *PathTracker
}

var _ Reader = (*PathTrackingReader)(nil)

// NewPathTrackingReader wraps r, which must be positioned on the root node
func NewPathTrackingReader(r Reader) *PathTrackingReader {
	tracker := NewPathTracker()
	tracker.PushElement(r.NodeName())
	return &PathTrackingReader{Reader: r, tracker: tracker}
}

// MoveDown positions the reader on the next unread child
func (r *PathTrackingReader) MoveDown() {
	r.Reader.MoveDown()
	r.tracker.PushElement(r.Reader.NodeName())
}

// MoveUp positions the reader back on the parent node
func (r *PathTrackingReader) MoveUp() {
	r.Reader.MoveUp()
	r.tracker.PopElement()
}

// Path returns the path of the current node
func (r *PathTrackingReader) Path() string {
	return r.tracker.Path()
}

// Depth returns the depth of the current node, the root being 1
func (r *PathTrackingReader) Depth() int {
	return r.tracker.Depth()
}

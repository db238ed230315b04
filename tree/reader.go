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

// Reader walks a document one node at a time.
// The reader starts positioned on the root node.
type Reader interface {
	// NodeName returns the name of the current node
	NodeName() string
	// AttributeNames returns the attribute names of the current node in document order
	AttributeNames() []string
	// Attribute returns the value of an attribute of the current node
	Attribute(name string) (string, bool)
	// HasMoreChildren reports whether the current node has unread children
	HasMoreChildren() bool
	// MoveDown positions the reader on the next unread child.
	// It must only be called when HasMoreChildren returns true.
	MoveDown()
	// MoveUp positions the reader back on the parent node
	MoveUp()
	// Value returns the text of the current node
	Value() string
}

type cursor struct {
	node *Node
	next int
}

// NodeReader is a Reader over an in-memory Node tree
type NodeReader struct {
	cursors []*cursor
}

var _ Reader = (*NodeReader)(nil)

// NewNodeReader creates a NodeReader positioned on root
func NewNodeReader(root *Node) *NodeReader {
	return &NodeReader{cursors: []*cursor{{node: root}}}
}

// NodeName returns the name of the current node
func (r *NodeReader) NodeName() string {
	return r.top().node.Name
}

// AttributeNames returns the attribute names of the current node in document order
func (r *NodeReader) AttributeNames() []string {
	attributes := r.top().node.Attributes
	names := make([]string, len(attributes))
	for i, attr := range attributes {
		names[i] = attr.Name
	}
	return names
}

// Attribute returns the value of an attribute of the current node
func (r *NodeReader) Attribute(name string) (string, bool) {
	return r.top().node.Attribute(name)
}

// HasMoreChildren reports whether the current node has unread children
func (r *NodeReader) HasMoreChildren() bool {
	top := r.top()
	return top.next < len(top.node.Children)
}

// MoveDown positions the reader on the next unread child
func (r *NodeReader) MoveDown() {
	top := r.top()
	if top.next >= len(top.node.Children) {
		panic("tree: MoveDown called without remaining children on " + top.node.Name)
	}
	child := top.node.Children[top.next]
	top.next++
	r.cursors = append(r.cursors, &cursor{node: child})
}

// MoveUp positions the reader back on the parent node.
// Unread children of the current node are skipped.
func (r *NodeReader) MoveUp() {
	if len(r.cursors) <= 1 {
		panic("tree: MoveUp called on the root node")
	}
	r.cursors = r.cursors[:len(r.cursors)-1]
}

// Value returns the text of the current node
func (r *NodeReader) Value() string {
	return r.top().node.Value
}

func (r *NodeReader) top() *cursor {
	return r.cursors[len(r.cursors)-1]
}

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

import "reflect"

// Writer is the sink converters write the document to.
// Calls must be balanced: every StartNode is closed by an EndNode.
// Attributes must be added before any child node or value.
type Writer interface {
	// StartNode opens a child of the current node. typeHint is the type
	// of the value about to be written, nil when unknown.
	StartNode(name string, typeHint reflect.Type)
	// AddAttribute sets an attribute on the current node
	AddAttribute(name, value string)
	// SetValue sets the text of the current node
	SetValue(text string)
	// EndNode closes the current node
	EndNode()
}

// NodeWriter is a Writer that builds an in-memory Node tree
type NodeWriter struct {
	root  *Node
	nodes []*Node
}

var _ Writer = (*NodeWriter)(nil)

// NewNodeWriter creates an instance of NodeWriter
func NewNodeWriter() *NodeWriter {
	return &NodeWriter{nodes: make([]*Node, 0, 8)}
}

// StartNode opens a child of the current node, or the root when none is open.
// Opening a second root replaces the first one.
func (w *NodeWriter) StartNode(name string, _ reflect.Type) {
	node := &Node{Name: name}
	if len(w.nodes) == 0 {
		w.root = node
	} else {
		parent := w.nodes[len(w.nodes)-1]
		parent.Children = append(parent.Children, node)
	}
	w.nodes = append(w.nodes, node)
}

// AddAttribute sets an attribute on the current node
func (w *NodeWriter) AddAttribute(name, value string) {
	w.current().SetAttribute(name, value)
}

// SetValue sets the text of the current node
func (w *NodeWriter) SetValue(text string) {
	w.current().Value = text
}

// EndNode closes the current node
func (w *NodeWriter) EndNode() {
	if len(w.nodes) == 0 {
		panic("tree: EndNode called without an open node")
	}
	w.nodes[len(w.nodes)-1] = nil
	w.nodes = w.nodes[:len(w.nodes)-1]
}

// Root returns the document written so far
func (w *NodeWriter) Root() *Node {
	return w.root
}

func (w *NodeWriter) current() *Node {
	if len(w.nodes) == 0 {
		panic("tree: no open node")
	}
	return w.nodes[len(w.nodes)-1]
}

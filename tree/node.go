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

// Package tree holds the hierarchical document the engine reads and writes:
// the in-memory Node model, the Writer and Reader contracts consumed by
// converters, an in-memory driver for both, path tracking and an XML rendering.
package tree

import "strings"

// Attribute is a named text value attached to a Node
type Attribute struct {
	Name  string `json:"name" cbor:"1,keyasint" msgpack:"name"`
	Value string `json:"value" cbor:"2,keyasint" msgpack:"value"`
}

// Node is an element of the document.
// Attributes keep their insertion order. A node either holds a text Value or Children.
type Node struct {
	Name       string      `json:"name" cbor:"1,keyasint" msgpack:"name"`
	Attributes []Attribute `json:"attributes,omitempty" cbor:"2,keyasint,omitempty" msgpack:"attributes,omitempty"`
	Value      string      `json:"value,omitempty" cbor:"3,keyasint,omitempty" msgpack:"value,omitempty"`
	Children   []*Node     `json:"children,omitempty" cbor:"4,keyasint,omitempty" msgpack:"children,omitempty"`
}

// NewNode creates a leaf node
func NewNode(name, value string) *Node {
	return &Node{Name: name, Value: value}
}

// Attribute returns the value of the named attribute
func (n *Node) Attribute(name string) (string, bool) {
	for _, attr := range n.Attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttribute adds the attribute or replaces its value
func (n *Node) SetAttribute(name, value string) *Node {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			n.Attributes[i].Value = value
			return n
		}
	}
	n.Attributes = append(n.Attributes, Attribute{Name: name, Value: value})
	return n
}

// Append adds children to the node and returns it
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Child returns the first child with the given name
func (n *Node) Child(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// String returns the compact XML rendering of the node
func (n *Node) String() string {
	var sb strings.Builder
	if err := WriteXML(&sb, n, ""); err != nil {
		return "<!-- " + err.Error() + " -->"
	}
	return sb.String()
}

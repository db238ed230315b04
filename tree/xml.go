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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WriteXML renders n as XML. An empty indent produces a compact document.
func WriteXML(w io.Writer, n *Node, indent string) error {
	if n == nil {
		return errors.New("tree: nil node")
	}

	encoder := xml.NewEncoder(w)
	if indent != "" {
		encoder.Indent("", indent)
	}

	if err := encodeNode(encoder, n); err != nil {
		return err
	}
	return encoder.Flush()
}

// MarshalXML returns the compact XML rendering of n
func MarshalXML(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXML(&buf, n, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(encoder *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, attr := range n.Attributes {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attr.Name}, Value: attr.Value})
	}

	if err := encoder.EncodeToken(start); err != nil {
		return fmt.Errorf("tree: cannot encode <%s>: %w", n.Name, err)
	}

	if len(n.Children) == 0 && n.Value != "" {
		if err := encoder.EncodeToken(xml.CharData(n.Value)); err != nil {
			return err
		}
	}

	for _, child := range n.Children {
		if err := encodeNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}

// ParseXML reads one XML document into a Node tree.
// Text found in a node that also has children is dropped.
func ParseXML(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	var (
		root  *Node
		nodes []*Node
		texts []*strings.Builder
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tree: cannot parse document: %w", err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			node := &Node{Name: tok.Name.Local}
			for _, attr := range tok.Attr {
				node.Attributes = append(node.Attributes, Attribute{Name: attr.Name.Local, Value: attr.Value})
			}
			if len(nodes) == 0 {
				if root != nil {
					return nil, errors.New("tree: document has more than one root")
				}
				root = node
			} else {
				parent := nodes[len(nodes)-1]
				parent.Children = append(parent.Children, node)
			}
			nodes = append(nodes, node)
			texts = append(texts, new(strings.Builder))
		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(tok)
			}
		case xml.EndElement:
			last := len(nodes) - 1
			if len(nodes[last].Children) == 0 {
				nodes[last].Value = texts[last].String()
			}
			nodes = nodes[:last]
			texts = texts[:last]
		}
	}

	if root == nil {
		return nil, errors.New("tree: empty document")
	}
	return root, nil
}

// UnmarshalXML parses a document held in memory
func UnmarshalXML(data []byte) (*Node, error) {
	return ParseXML(bytes.NewReader(data))
}

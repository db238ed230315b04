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

// Package document turns document trees into bytes and back.
//
// A Codec encodes a whole tree.Node. CBOR, MessagePack and JSON codecs write
// the node structure itself; the XML codec writes the tree as elements and
// attributes. Any codec can be wrapped with a Compression.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tochemey/arbor/tree"
)

var (
	// ErrNilDocument is returned when a nil node is encoded or an empty
	// payload is decoded
	ErrNilDocument = errors.New("document: nil document")
	// ErrEncodeFailed wraps the failures of the underlying encoder
	ErrEncodeFailed = errors.New("document: failed to encode")
	// ErrDecodeFailed wraps the failures of the underlying decoder
	ErrDecodeFailed = errors.New("document: failed to decode")

	cborEncOpts = cbor.EncOptions{
		Sort:        cbor.SortNone,
		IndefLength: cbor.IndefLengthForbidden,
	}
	cborDecOpts = cbor.DecOptions{
		MaxNestedLevels: 1024,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8RejectInvalid,
	}
)

// Codec encodes a document tree into bytes and back.
// Implementations are stateless and safe for concurrent use.
type Codec interface {
	// Name identifies the codec
	Name() string
	// Encode returns the bytes of the tree rooted at n
	Encode(n *tree.Node) ([]byte, error)
	// Decode returns the tree held in data
	Decode(data []byte) (*tree.Node, error)
}

// CBOR writes trees as Concise Binary Object Representation
type CBOR struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

var _ Codec = (*CBOR)(nil)

// NewCBOR creates a CBOR codec
func NewCBOR() *CBOR {
	encMode, _ := cborEncOpts.EncMode()
	decMode, _ := cborDecOpts.DecMode()
	return &CBOR{encMode: encMode, decMode: decMode}
}

func (c *CBOR) Name() string { return "cbor" }

func (c *CBOR) Encode(n *tree.Node) ([]byte, error) {
	if n == nil {
		return nil, ErrNilDocument
	}
	data, err := c.encMode.Marshal(n)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return data, nil
}

func (c *CBOR) Decode(data []byte) (*tree.Node, error) {
	return decode(data, c.decMode.Unmarshal)
}

// MsgPack writes trees as MessagePack
type MsgPack struct{}

var _ Codec = MsgPack{}

// NewMsgPack creates a MessagePack codec
func NewMsgPack() MsgPack {
	return MsgPack{}
}

func (MsgPack) Name() string { return "msgpack" }

func (MsgPack) Encode(n *tree.Node) ([]byte, error) {
	if n == nil {
		return nil, ErrNilDocument
	}
	data, err := msgpack.Marshal(n)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return data, nil
}

func (MsgPack) Decode(data []byte) (*tree.Node, error) {
	return decode(data, msgpack.Unmarshal)
}

// JSON writes trees as JSON objects
type JSON struct {
	api    jsoniter.API
	indent string
}

var _ Codec = (*JSON)(nil)

// NewJSON creates a JSON codec. A non empty indent pretty prints the output.
func NewJSON(indent string) *JSON {
	return &JSON{
		api:    jsoniter.ConfigCompatibleWithStandardLibrary,
		indent: indent,
	}
}

func (c *JSON) Name() string { return "json" }

func (c *JSON) Encode(n *tree.Node) ([]byte, error) {
	if n == nil {
		return nil, ErrNilDocument
	}

	var (
		data []byte
		err  error
	)
	if c.indent != "" {
		data, err = c.api.MarshalIndent(n, "", c.indent)
	} else {
		data, err = c.api.Marshal(n)
	}

	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return data, nil
}

func (c *JSON) Decode(data []byte) (*tree.Node, error) {
	return decode(data, c.api.Unmarshal)
}

// XML writes trees as XML elements
type XML struct {
	indent string
}

var _ Codec = (*XML)(nil)

// NewXML creates an XML codec. A non empty indent pretty prints the output.
func NewXML(indent string) *XML {
	return &XML{indent: indent}
}

func (c *XML) Name() string { return "xml" }

func (c *XML) Encode(n *tree.Node) ([]byte, error) {
	if n == nil {
		return nil, ErrNilDocument
	}

	var buf bytes.Buffer
	if err := tree.WriteXML(&buf, n, c.indent); err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}

func (c *XML) Decode(data []byte) (*tree.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNilDocument
	}

	n, err := tree.UnmarshalXML(data)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}
	return n, nil
}

func decode(data []byte, unmarshal func([]byte, any) error) (*tree.Node, error) {
	if len(data) == 0 {
		return nil, ErrNilDocument
	}

	n := new(tree.Node)
	if err := unmarshal(data, n); err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}

	if n.Name == "" {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("root node has no name"))
	}
	return n, nil
}

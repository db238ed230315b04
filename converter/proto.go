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

package converter

import (
	"reflect"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
)

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// ProtoConverter writes protocol buffer messages as their canonical JSON text
type ProtoConverter struct {
	marshal   protojson.MarshalOptions
	unmarshal protojson.UnmarshalOptions
}

// NewProtoConverter creates a ProtoConverter.
// Unknown JSON fields are rejected when reading.
func NewProtoConverter() *ProtoConverter {
	return &ProtoConverter{
		marshal:   protojson.MarshalOptions{UseProtoNames: true},
		unmarshal: protojson.UnmarshalOptions{DiscardUnknown: false},
	}
}

func (p *ProtoConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Implements(protoMessageType)
}

func (p *ProtoConverter) ToString(v any) (string, error) {
	bytea, err := p.marshal.Marshal(v.(proto.Message))
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidValue, err, "cannot marshal %T", v)
	}
	return string(bytea), nil
}

func (p *ProtoConverter) FromString(s string, t reflect.Type) (any, error) {
	message := reflect.New(t.Elem()).Interface().(proto.Message)
	if err := p.unmarshal.Unmarshal([]byte(s), message); err != nil {
		name := types.Name(t)
		return nil, errors.Wrap(errors.ErrInvalidValue, err, "invalid %s", name).Add("type", name)
	}
	return message, nil
}

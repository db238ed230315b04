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
	"encoding"
	"encoding/base64"
	"reflect"
	"strconv"
	"time"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

func invalidValue(err error, s string, t reflect.Type) error {
	name := types.Name(t)
	return errors.Wrap(errors.ErrInvalidValue, err, "%q is not a valid %s", s, name).Add("type", name)
}

// StringConverter handles every string kind
type StringConverter struct{}

func (StringConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.String
}

func (StringConverter) ToString(v any) (string, error) {
	return reflect.ValueOf(v).String(), nil
}

func (StringConverter) FromString(s string, t reflect.Type) (any, error) {
	value := reflect.New(t).Elem()
	value.SetString(s)
	return value.Interface(), nil
}

// BoolConverter handles every bool kind
type BoolConverter struct{}

func (BoolConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Bool
}

func (BoolConverter) ToString(v any) (string, error) {
	return strconv.FormatBool(reflect.ValueOf(v).Bool()), nil
}

func (BoolConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := strconv.ParseBool(s)
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	value := reflect.New(t).Elem()
	value.SetBool(parsed)
	return value.Interface(), nil
}

// IntConverter handles every signed integer kind
type IntConverter struct{}

func (IntConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func (IntConverter) ToString(v any) (string, error) {
	return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
}

func (IntConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := strconv.ParseInt(s, 10, t.Bits())
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	value := reflect.New(t).Elem()
	value.SetInt(parsed)
	return value.Interface(), nil
}

// UintConverter handles every unsigned integer kind
type UintConverter struct{}

func (UintConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func (UintConverter) ToString(v any) (string, error) {
	return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
}

func (UintConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := strconv.ParseUint(s, 10, t.Bits())
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	value := reflect.New(t).Elem()
	value.SetUint(parsed)
	return value.Interface(), nil
}

// FloatConverter handles every floating point kind.
// Values are written with the fewest digits that read back to the same value.
type FloatConverter struct{}

func (FloatConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (FloatConverter) ToString(v any) (string, error) {
	value := reflect.ValueOf(v)
	return strconv.FormatFloat(value.Float(), 'g', -1, value.Type().Bits()), nil
}

func (FloatConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := strconv.ParseFloat(s, t.Bits())
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	value := reflect.New(t).Elem()
	value.SetFloat(parsed)
	return value.Interface(), nil
}

// ComplexConverter handles every complex kind
type ComplexConverter struct{}

func (ComplexConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Complex64 || t.Kind() == reflect.Complex128
}

func (ComplexConverter) ToString(v any) (string, error) {
	value := reflect.ValueOf(v)
	return strconv.FormatComplex(value.Complex(), 'g', -1, value.Type().Bits()), nil
}

func (ComplexConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := strconv.ParseComplex(s, t.Bits())
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	value := reflect.New(t).Elem()
	value.SetComplex(parsed)
	return value.Interface(), nil
}

// BytesConverter writes byte slices as standard base64
type BytesConverter struct{}

func (BytesConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (BytesConverter) ToString(v any) (string, error) {
	return base64.StdEncoding.EncodeToString(reflect.ValueOf(v).Bytes()), nil
}

func (BytesConverter) FromString(s string, t reflect.Type) (any, error) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	return reflect.ValueOf(decoded).Convert(t).Interface(), nil
}

// TimeConverter writes time.Time as RFC 3339 with nanoseconds
type TimeConverter struct{}

func (TimeConverter) CanConvert(t reflect.Type) bool {
	return t == timeType
}

func (TimeConverter) ToString(v any) (string, error) {
	return v.(time.Time).Format(time.RFC3339Nano), nil
}

func (TimeConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	return parsed, nil
}

// DurationConverter writes time.Duration the way time.Duration.String does
type DurationConverter struct{}

func (DurationConverter) CanConvert(t reflect.Type) bool {
	return t == durationType
}

func (DurationConverter) ToString(v any) (string, error) {
	return v.(time.Duration).String(), nil
}

func (DurationConverter) FromString(s string, t reflect.Type) (any, error) {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return nil, invalidValue(err, s, t)
	}
	return parsed, nil
}

// TextConverter handles the non pointer types implementing encoding.TextMarshaler
// whose pointer implements encoding.TextUnmarshaler
type TextConverter struct{}

func (TextConverter) CanConvert(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return false
	}
	pointer := reflect.PointerTo(t)
	return (t.Implements(textMarshalerType) || pointer.Implements(textMarshalerType)) &&
		pointer.Implements(textUnmarshalerType)
}

func (TextConverter) ToString(v any) (string, error) {
	marshaler, ok := v.(encoding.TextMarshaler)
	if !ok {
		value := reflect.ValueOf(v)
		addressable := reflect.New(value.Type())
		addressable.Elem().Set(value)
		marshaler = addressable.Interface().(encoding.TextMarshaler)
	}

	text, err := marshaler.MarshalText()
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidValue, err, "cannot marshal %T", v)
	}
	return string(text), nil
}

func (TextConverter) FromString(s string, t reflect.Type) (any, error) {
	value := reflect.New(t)
	if err := value.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return nil, invalidValue(err, s, t)
	}
	return value.Elem().Interface(), nil
}

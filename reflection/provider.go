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

package reflection

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/internal/xsync"
)

// Factory returns a fresh value of the type it is registered for
type Factory func() any

// Provider constructs instances and accesses their members.
// Unexported members are reached through their address, which is why
// Read and Write require an addressable struct value.
type Provider struct {
	factories *xsync.Map[reflect.Type, Factory]
}

// NewProvider creates a Provider
func NewProvider() *Provider {
	return &Provider{factories: xsync.NewMap[reflect.Type, Factory]()}
}

// RegisterFactory builds the values of type t with factory instead of the zero value
func (p *Provider) RegisterFactory(t reflect.Type, factory Factory) {
	p.factories.Set(t, factory)
}

// NewInstance returns a fresh addressable value of type t
func (p *Provider) NewInstance(t reflect.Type) (value reflect.Value, err error) {
	name := types.Name(t)
	if t == nil {
		return reflect.Value{}, errors.New(errors.ErrObjectAccess, "cannot instantiate %s", name).Add("type", name)
	}

	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return reflect.Value{}, errors.New(errors.ErrObjectAccess, "cannot instantiate %s", name).Add("type", name)
	default:
	}

	instance := reflect.New(t).Elem()
	factory, ok := p.factories.Get(t)
	if !ok {
		return instance, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = objectAccess(r, t, "")
		}
	}()

	produced := reflect.ValueOf(factory())
	if !produced.IsValid() {
		return reflect.Value{}, errors.New(errors.ErrObjectAccess, "factory of %s returned nil", name).Add("type", name)
	}

	if !produced.Type().AssignableTo(t) {
		return reflect.Value{}, errors.New(errors.ErrObjectAccess, "factory of %s returned %s", name, types.Name(produced.Type())).Add("type", name)
	}
	instance.Set(produced)
	return instance, nil
}

// Read returns the member field of the addressable struct value obj
func (p *Provider) Read(obj reflect.Value, field *Field) (value reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = objectAccess(r, obj.Type(), field.Name)
		}
	}()
	return accessible(obj.FieldByIndex(field.Index)), nil
}

// Write stores value in the member field of the addressable struct value obj
func (p *Provider) Write(obj reflect.Value, field *Field, value reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = objectAccess(r, obj.Type(), field.Name)
		}
	}()
	accessible(obj.FieldByIndex(field.Index)).Set(value)
	return nil
}

// Addressable returns v when it is addressable, or an addressable copy of it
func Addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	clone := reflect.New(v.Type()).Elem()
	clone.Set(v)
	return clone
}

func accessible(v reflect.Value) reflect.Value {
	if v.CanInterface() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func objectAccess(recovered any, t reflect.Type, field string) error {
	name := types.Name(t)
	err := errors.New(errors.ErrObjectAccess, "%s", fmt.Sprint(recovered)).Add("type", name)
	if field != "" {
		err.Add("field", field)
	}
	return err
}

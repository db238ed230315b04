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

// Package errors defines the failures raised while marshalling and
// unmarshalling object graphs.
//
// Every failure is an *Error whose kind is one of the sentinels below.
// Kinds are grouped by category: resolution, conversion and object access.
// Use errors.Is against either the kind or its category:
//
//	errors.Is(err, ErrForbiddenType) // the security gate refused a type
//	errors.Is(err, ErrResolution)    // any type resolution failure
//
// An *Error also carries an ordered diagnostic trail that every layer of
// the recursive descent appends to while the error travels to the caller.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrResolution is the category of failures raised while turning a name into a type.
	ErrResolution = errors.New("type resolution failed")
	// ErrConversion is the category of structural failures.
	ErrConversion = errors.New("conversion failed")
	// ErrObjectAccess is the category of failures raised while constructing an
	// instance or reading and writing one of its members.
	ErrObjectAccess = errors.New("object access failed")
	// ErrInvalidConfig is returned when a configuration call is given inconsistent input.
	ErrInvalidConfig = errors.New("invalid configuration")
)

var (
	// ErrCannotResolveType is returned when a name does not map to any known type.
	ErrCannotResolveType = newKind("cannot resolve type", ErrResolution)
	// ErrForbiddenType is returned when the security gate refuses a resolved type.
	ErrForbiddenType = newKind("type is forbidden", ErrResolution)

	// ErrNoConverter is returned when no registered converter handles a type.
	ErrNoConverter = newKind("no converter available", ErrConversion)
	// ErrUnknownField is returned when a node does not map to any member.
	ErrUnknownField = newKind("unknown field", ErrConversion)
	// ErrDuplicateField is returned when two nodes or attributes map to the same member.
	ErrDuplicateField = newKind("duplicate field", ErrConversion)
	// ErrIncompatibleType is returned when a value cannot be stored in its member.
	ErrIncompatibleType = newKind("incompatible type", ErrConversion)
	// ErrIncompleteFieldOrder is returned when an explicit field order omits a member.
	ErrIncompleteFieldOrder = newKind("incomplete field order", ErrConversion)
	// ErrInvalidReference is returned when a back-reference does not point to a known object.
	ErrInvalidReference = newKind("invalid reference", ErrConversion)
	// ErrCircularReference is returned when a cycle is found with reference tracking disabled.
	ErrCircularReference = newKind("circular reference", ErrConversion)
	// ErrInvalidTarget is returned when the unmarshal target is not a non-nil pointer.
	ErrInvalidTarget = newKind("invalid unmarshal target", ErrConversion)
	// ErrInvalidValue is returned when a text value cannot be parsed for its type.
	ErrInvalidValue = newKind("invalid value", ErrConversion)
)

// kind is a sentinel that belongs to a category
type kind struct {
	msg    string
	parent error
}

func newKind(msg string, parent error) error {
	return &kind{msg: msg, parent: parent}
}

func (k *kind) Error() string {
	return k.msg
}

func (k *kind) Unwrap() error {
	return k.parent
}

// Entry is a single diagnostic key/value pair
type Entry struct {
	Key   string
	Value string
}

// Error is the failure returned by the engine.
// It is not safe for concurrent use; an Error belongs to the call that raised it.
type Error struct {
	kind    error
	message string
	cause   error
	entries []Entry
}

// enforce compilation error
var _ error = (*Error)(nil)

// New creates an Error of the given kind
func New(kind error, format string, args ...any) *Error {
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error of the given kind caused by err
func Wrap(kind error, err error, format string, args ...any) *Error {
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Kind returns the sentinel describing the failure
func (e *Error) Kind() error {
	return e.kind
}

// Message returns the failure message without the diagnostic trail
func (e *Error) Message() string {
	return e.message
}

// Cause returns the underlying error, if any
func (e *Error) Cause() error {
	return e.cause
}

// Add appends a diagnostic entry and returns the receiver.
// Adding a value already recorded under the same key is a no-op;
// a different value under an existing key is stored as key[1], key[2], ...
func (e *Error) Add(key, value string) *Error {
	name := key
	for i := 1; ; i++ {
		existing, ok := e.Get(name)
		if !ok {
			break
		}
		if existing == value {
			return e
		}
		name = key + "[" + strconv.Itoa(i) + "]"
	}
	e.entries = append(e.entries, Entry{Key: name, Value: value})
	return e
}

// Get returns the value recorded under key
func (e *Error) Get(key string) (string, bool) {
	for _, entry := range e.entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Entries returns a copy of the diagnostic trail in insertion order
func (e *Error) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	if e.kind != nil {
		sb.WriteString(e.kind.Error())
	}

	if e.message != "" {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}
		sb.WriteString(e.message)
	}

	if e.cause != nil && e.cause.Error() != e.message {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}

	if len(e.entries) > 0 {
		sb.WriteString(" (")
		for i, entry := range e.entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(entry.Key)
			sb.WriteString("=")
			sb.WriteString(entry.Value)
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.cause != nil {
		out = append(out, e.cause)
	}
	return out
}

// Annotate appends a diagnostic entry to the *Error found in err's chain.
// Any other error is first wrapped into an ErrConversion.
func Annotate(err error, key, value string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		e.Add(key, value)
		return err
	}
	return Wrap(ErrConversion, err, "%s", err.Error()).Add(key, value)
}

// Trail returns the diagnostic trail carried by err, if any
func Trail(err error) []Entry {
	var e *Error
	if errors.As(err, &e) {
		return e.Entries()
	}
	return nil
}

// Is reports whether any error in err's tree matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

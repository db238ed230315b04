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

package stack

// Stack is a last-in-first-out data structure.
// It is owned by a single marshal or unmarshal call and is not safe for concurrent use.
type Stack[T any] struct {
	items []T
}

// New creates a new stack
func New[T any]() *Stack[T] {
	return &Stack[T]{
		items: make([]T, 0, 16),
	}
}

// Peek helps view the top item on the stack
func (s *Stack[T]) Peek() (item T, ok bool) {
	if len(s.items) == 0 {
		return item, false
	}
	return s.items[len(s.items)-1], true
}

// Pop removes and return top element of stack. Return false if stack is empty.
func (s *Stack[T]) Pop() (item T, ok bool) {
	length := len(s.items)
	if length == 0 {
		return item, false
	}

	length--
	item = s.items[length]
	var zero T
	s.items[length] = zero
	s.items = s.items[:length]
	return item, true
}

// Push a new value onto the stack
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Len returns the length of the stack.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// IsEmpty checks if stack is empty
func (s *Stack[T]) IsEmpty() bool {
	return s.Len() == 0
}

// Items returns the stack content from the bottom to the top
func (s *Stack[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Any reports whether at least one item satisfies fn, scanning from the top
func (s *Stack[T]) Any(fn func(T) bool) bool {
	for i := len(s.items) - 1; i >= 0; i-- {
		if fn(s.items[i]) {
			return true
		}
	}
	return false
}

// Clear empty the stack
func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

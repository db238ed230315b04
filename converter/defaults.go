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

import "github.com/tochemey/arbor/mapper"

// RegisterDefaults registers the built-in converters with r.
// Collection converters name their items through m.
func RegisterDefaults(r *Registry, m mapper.Mapper) {
	r.RegisterSingleValue(StringConverter{}, PriorityNormal)
	r.RegisterSingleValue(BoolConverter{}, PriorityNormal)
	r.RegisterSingleValue(IntConverter{}, PriorityNormal)
	r.RegisterSingleValue(UintConverter{}, PriorityNormal)
	r.RegisterSingleValue(FloatConverter{}, PriorityNormal)
	r.RegisterSingleValue(ComplexConverter{}, PriorityNormal)

	r.Register(NewSliceConverter(m), PriorityNormal)
	r.Register(NewMapConverter(m), PriorityNormal)
	r.Register(NewPointerConverter(m), PriorityNormal)

	r.RegisterSingleValue(BytesConverter{}, PriorityHigh)
	r.RegisterSingleValue(TextConverter{}, PriorityHigh)
	r.RegisterSingleValue(TimeConverter{}, PriorityHigh)
	r.RegisterSingleValue(DurationConverter{}, PriorityHigh)
	r.RegisterSingleValue(NewProtoConverter(), PriorityHigh)
}

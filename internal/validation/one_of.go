/*
 * MIT License
 *
 * Copyright (c) 2022-2024  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package validation

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// oneOfValidator fails when a value is not part of a closed set
type oneOfValidator struct {
	fieldName  string
	fieldValue string
	allowed    []string
}

var _ Validator = (*oneOfValidator)(nil)

// NewOneOfValidator creates a validator that fails when value is not one of allowed.
// The comparison ignores case.
func NewOneOfValidator(fieldName, fieldValue string, allowed ...string) Validator {
	return &oneOfValidator{fieldName: fieldName, fieldValue: fieldValue, allowed: allowed}
}

// Validate executes the validation
func (x *oneOfValidator) Validate() error {
	value := strings.ToLower(strings.TrimSpace(x.fieldValue))
	if lo.ContainsBy(x.allowed, func(allowed string) bool { return strings.ToLower(allowed) == value }) {
		return nil
	}
	return fmt.Errorf("the [%s] must be one of %s, got %q", x.fieldName, strings.Join(x.allowed, ", "), x.fieldValue)
}

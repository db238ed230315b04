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
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"
)

type validationTestSuite struct {
	suite.Suite
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain without option", func() {
		chain := New()
		s.Assert().NotNil(chain)
	})
	s.Run("new chain with options", func() {
		chain := New(FailFast())
		s.Assert().NotNil(chain)
		s.Assert().True(chain.failFast)
		chain2 := New(AllErrors())
		s.Assert().NotNil(chain2)
		s.Assert().False(chain2.failFast)
	})
}

func (s *validationTestSuite) TestAddValidator() {
	chain := New()
	s.Assert().Zero(chain.Len())
	chain.AddValidator(NewBooleanValidator(true, ""))
	s.Assert().Equal(1, chain.Len())
	chain.AddValidators(NewEmptyStringValidator("a", "a"), NewRegexpValidator("b", "b"))
	s.Assert().Equal(3, chain.Len())
	chain.AddAssertion(true, "")
	s.Assert().Equal(4, chain.Len())
}

func (s *validationTestSuite) TestValidate() {
	s.Run("with single validator", func() {
		chain := New()
		chain.AddValidator(NewEmptyStringValidator("field", ""))
		s.Assert().Nil(chain.violations)
		err := chain.Validate()
		s.Assert().NotNil(chain.violations)
		s.Assert().EqualError(err, "the [field] is required")
	})
	s.Run("with multiple validators and FailFast option", func() {
		chain := New(FailFast())
		chain.
			AddValidator(NewEmptyStringValidator("field", "")).
			AddAssertion(false, "%s is false", "this")
		err := chain.Validate()
		s.Assert().Nil(chain.violations)
		s.Assert().EqualError(err, "the [field] is required")
	})
	s.Run("with multiple validators and AllErrors option", func() {
		chain := New(AllErrors())
		chain.
			AddValidator(NewEmptyStringValidator("field", "")).
			AddAssertion(false, "%s is false", "this")
		err := chain.Validate()
		s.Assert().NotNil(chain.violations)
		s.Assert().EqualError(err, "the [field] is required; this is false")
	})
	s.Run("running twice does not accumulate", func() {
		chain := New().AddAssertion(false, "failed")
		s.Assert().EqualError(chain.Validate(), "failed")
		s.Assert().EqualError(chain.Validate(), "failed")
	})
}

func (s *validationTestSuite) TestBooleanValidator() {
	s.Run("when condition is true", func() {
		s.Assert().NoError(NewBooleanValidator(true, "error message").Validate())
	})
	s.Run("when condition is false", func() {
		err := NewBooleanValidator(false, "field %s is invalid", "name").Validate()
		s.Assert().EqualError(err, "field name is invalid")
	})
}

func (s *validationTestSuite) TestEmptyStringValidator() {
	s.Assert().NoError(NewEmptyStringValidator("field", "value").Validate())
	s.Assert().Error(NewEmptyStringValidator("field", "  ").Validate())
}

func (s *validationTestSuite) TestOneOfValidator() {
	s.Assert().NoError(NewOneOfValidator("mode", "ID", "path", "id", "none").Validate())
	err := NewOneOfValidator("mode", "relative", "path", "id", "none").Validate()
	s.Assert().EqualError(err, `the [mode] must be one of path, id, none, got "relative"`)
}

func (s *validationTestSuite) TestRegexpValidator() {
	s.Assert().NoError(NewRegexpValidator("pattern", "^item-[0-9]+$").Validate())
	s.Assert().Error(NewRegexpValidator("pattern", "([a-z").Validate())
}

func (s *validationTestSuite) TestPatternValidator() {
	identifier := regexp.MustCompile(`^[A-Za-z_]\w*$`)
	custom := errors.New("not an identifier")
	s.Assert().NoError(NewPatternValidator("name", "Name", identifier, custom).Validate())
	s.Assert().ErrorIs(NewPatternValidator("name", "1Name", identifier, custom).Validate(), custom)
	s.Assert().EqualError(NewPatternValidator("name", "ABC", regexp.MustCompile(`^[a-z]+$`), nil).Validate(),
		`the [name] "ABC" does not match ^[a-z]+$`)
}

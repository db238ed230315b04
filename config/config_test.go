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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/arbor/errors"
)

const sample = `
reference_mode: id
field_sorter: alphabetical
ignore_unknown_elements:
  - "^legacy-.*$"
aliases:
  - name: point
    type: github.com/acme/geo.Point
field_aliases:
  - type: github.com/acme/geo.Point
    field: X
    alias: x
attribute_aliases:
  - attribute: class
    alias: kind
omitted_fields:
  - type: github.com/acme/geo.Point
    field: cache
attribute_fields:
  - type: github.com/acme/geo.Point
    field: Label
attribute_types:
  - github.com/acme/geo.Unit
implicit_collections:
  - type: github.com/acme/geo.Path
    field: Points
    item_name: point
    item_type: github.com/acme/geo.Point
immutable_types:
  - github.com/acme/geo.Unit
default_implementations:
  - declared: github.com/acme/geo.Shape
    implementation: github.com/acme/geo.Circle
field_orders:
  - type: github.com/acme/geo.Point
    fields: ["Y", "X"]
security:
  allow:
    - github.com/acme/geo.*
  deny_regexp:
    - ".*Secret$"
  max_array_size: 4096
`

func TestParse(t *testing.T) {
	t.Run("With yaml", func(t *testing.T) {
		settings, err := Parse([]byte(sample), "yaml")
		require.NoError(t, err)

		assert.Equal(t, ReferenceByID, settings.ReferenceMode)
		assert.Equal(t, SorterAlphabetical, settings.FieldSorter)
		assert.Equal(t, []string{"^legacy-.*$"}, settings.IgnoreUnknownElements)
		assert.Equal(t, []TypeAlias{{Name: "point", Type: "github.com/acme/geo.Point"}}, settings.Aliases)
		assert.Equal(t, []FieldAlias{{Member: Member{Type: "github.com/acme/geo.Point", Field: "X"}, Alias: "x"}}, settings.FieldAliases)
		assert.Equal(t, []AttributeAlias{{Attribute: "class", Alias: "kind"}}, settings.AttributeAliases)
		assert.Equal(t, []Member{{Type: "github.com/acme/geo.Point", Field: "cache"}}, settings.OmittedFields)
		assert.Equal(t, []Member{{Type: "github.com/acme/geo.Point", Field: "Label"}}, settings.AttributeFields)
		assert.Equal(t, []string{"github.com/acme/geo.Unit"}, settings.AttributeTypes)
		require.Len(t, settings.ImplicitCollections, 1)
		assert.Equal(t, "Points", settings.ImplicitCollections[0].Field)
		assert.Equal(t, "point", settings.ImplicitCollections[0].ItemName)
		assert.Equal(t, "github.com/acme/geo.Point", settings.ImplicitCollections[0].ItemType)
		assert.Equal(t, []string{"github.com/acme/geo.Unit"}, settings.ImmutableTypes)
		assert.Equal(t, []DefaultImplementation{{Declared: "github.com/acme/geo.Shape", Implementation: "github.com/acme/geo.Circle"}}, settings.DefaultImplementations)
		assert.Equal(t, []FieldOrder{{Type: "github.com/acme/geo.Point", Fields: []string{"Y", "X"}}}, settings.FieldOrders)
		assert.Equal(t, []string{"github.com/acme/geo.*"}, settings.Security.Allow)
		assert.Equal(t, []string{".*Secret$"}, settings.Security.DenyRegExp)
		assert.False(t, settings.Security.AllowAnyType)
		assert.EqualValues(t, 4096, settings.Security.MaxArraySize)
	})
	t.Run("With json and defaults", func(t *testing.T) {
		settings, err := Parse([]byte(`{"security": {"allow_any_type": true}}`), "json")
		require.NoError(t, err)
		assert.Equal(t, ReferenceByPath, settings.ReferenceMode)
		assert.Equal(t, SorterDerivedFirst, settings.FieldSorter)
		assert.True(t, settings.Security.AllowAnyType)
	})
	t.Run("With malformed document", func(t *testing.T) {
		_, err := Parse([]byte(`{"reference_mode":`), "json")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With invalid settings", func(t *testing.T) {
		document := `
reference_mode: relative
ignore_unknown_elements: ["([a-z"]
field_aliases:
  - type: ""
    field: "1X"
    alias: x
security:
  max_array_size: -1
`
		_, err := Parse([]byte(document), "yaml")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "reference_mode")
		assert.Contains(t, err.Error(), "ignore_unknown_elements")
		assert.Contains(t, err.Error(), "field_aliases.type")
		assert.Contains(t, err.Error(), "field_aliases.field")
		assert.Contains(t, err.Error(), "security.max_array_size")
	})
}

func TestLoad(t *testing.T) {
	t.Run("With yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arbor.yml")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

		settings, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ReferenceByID, settings.ReferenceMode)
	})
	t.Run("With json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arbor.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"reference_mode": "none"}`), 0o600))

		settings, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ReferenceNone, settings.ReferenceMode)
	})
	t.Run("With unsupported extension", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "arbor.toml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func TestDefault(t *testing.T) {
	require.NoError(t, Default().Validate())
}

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

// Package config loads engine settings from YAML or JSON documents.
//
// Types are referred to by the names the engine writes for them, so every
// type named in a settings file must be registered with the engine before
// the settings are applied.
package config

import (
	"bytes"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/validation"
)

// Reference modes accepted by Settings.ReferenceMode
const (
	ReferenceByPath = "path"
	ReferenceByID   = "id"
	ReferenceNone   = "none"
)

// Field sorters accepted by Settings.FieldSorter
const (
	SorterDerivedFirst = "derived-first"
	SorterDerivedLast  = "derived-last"
	SorterAlphabetical = "alphabetical"
)

// TypeAlias writes the type registered as Type under Name
type TypeAlias struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	Type string `mapstructure:"type" json:"type" yaml:"type"`
}

// Member designates the member Field of the type registered as Type
type Member struct {
	Type  string `mapstructure:"type" json:"type" yaml:"type"`
	Field string `mapstructure:"field" json:"field" yaml:"field"`
}

// FieldAlias writes a member under Alias
type FieldAlias struct {
	Member `mapstructure:",squash" yaml:",inline"`
	Alias  string `mapstructure:"alias" json:"alias" yaml:"alias"`
}

// AttributeAlias writes a reserved attribute under Alias
type AttributeAlias struct {
	Attribute string `mapstructure:"attribute" json:"attribute" yaml:"attribute"`
	Alias     string `mapstructure:"alias" json:"alias" yaml:"alias"`
}

// ImplicitCollection writes the items of a slice, array or map member
// directly under the owner node
type ImplicitCollection struct {
	Member   `mapstructure:",squash" yaml:",inline"`
	ItemName string `mapstructure:"item_name" json:"item_name" yaml:"item_name"`
	ItemType string `mapstructure:"item_type" json:"item_type" yaml:"item_type"`
	KeyField string `mapstructure:"key_field" json:"key_field" yaml:"key_field"`
}

// DefaultImplementation reads slots declared as Declared as Implementation
// when the document does not name a type
type DefaultImplementation struct {
	Declared       string `mapstructure:"declared" json:"declared" yaml:"declared"`
	Implementation string `mapstructure:"implementation" json:"implementation" yaml:"implementation"`
}

// FieldOrder lists the members of Type in the order they are written
type FieldOrder struct {
	Type   string   `mapstructure:"type" json:"type" yaml:"type"`
	Fields []string `mapstructure:"fields" json:"fields" yaml:"fields"`
}

// Security lists the permissions added to the type gate, in order
type Security struct {
	AllowAnyType bool     `mapstructure:"allow_any_type" json:"allow_any_type" yaml:"allow_any_type"`
	Allow        []string `mapstructure:"allow" json:"allow" yaml:"allow"`
	AllowRegExp  []string `mapstructure:"allow_regexp" json:"allow_regexp" yaml:"allow_regexp"`
	Deny         []string `mapstructure:"deny" json:"deny" yaml:"deny"`
	DenyRegExp   []string `mapstructure:"deny_regexp" json:"deny_regexp" yaml:"deny_regexp"`
	// MaxArraySize bounds, in bytes, the array types documents may name. Zero keeps the default.
	MaxArraySize int64 `mapstructure:"max_array_size" json:"max_array_size" yaml:"max_array_size"`
}

// Settings is the file form of the engine configuration
type Settings struct {
	ReferenceMode          string                  `mapstructure:"reference_mode" json:"reference_mode" yaml:"reference_mode"`
	FieldSorter            string                  `mapstructure:"field_sorter" json:"field_sorter" yaml:"field_sorter"`
	IgnoreUnknownElements  []string                `mapstructure:"ignore_unknown_elements" json:"ignore_unknown_elements" yaml:"ignore_unknown_elements"`
	Aliases                []TypeAlias             `mapstructure:"aliases" json:"aliases" yaml:"aliases"`
	FieldAliases           []FieldAlias            `mapstructure:"field_aliases" json:"field_aliases" yaml:"field_aliases"`
	AttributeAliases       []AttributeAlias        `mapstructure:"attribute_aliases" json:"attribute_aliases" yaml:"attribute_aliases"`
	OmittedFields          []Member                `mapstructure:"omitted_fields" json:"omitted_fields" yaml:"omitted_fields"`
	AttributeFields        []Member                `mapstructure:"attribute_fields" json:"attribute_fields" yaml:"attribute_fields"`
	AttributeTypes         []string                `mapstructure:"attribute_types" json:"attribute_types" yaml:"attribute_types"`
	ImplicitCollections    []ImplicitCollection    `mapstructure:"implicit_collections" json:"implicit_collections" yaml:"implicit_collections"`
	ImmutableTypes         []string                `mapstructure:"immutable_types" json:"immutable_types" yaml:"immutable_types"`
	DefaultImplementations []DefaultImplementation `mapstructure:"default_implementations" json:"default_implementations" yaml:"default_implementations"`
	FieldOrders            []FieldOrder            `mapstructure:"field_orders" json:"field_orders" yaml:"field_orders"`
	Security               Security                `mapstructure:"security" json:"security" yaml:"security"`
}

// Default returns the settings the engine starts with
func Default() *Settings {
	return &Settings{
		ReferenceMode: ReferenceByPath,
		FieldSorter:   SorterDerivedFirst,
	}
}

// Load reads and validates the settings file at path.
// The format follows the extension: .yaml, .yml or .json.
func Load(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	default:
		return nil, errors.New(errors.ErrInvalidConfig, "unsupported settings file %s", path).Add("path", path)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err, "failed to read %s", path).Add("path", path)
	}
	return decode(v)
}

// Parse reads and validates settings held in data, written in format
// ("yaml" or "json")
func Parse(data []byte, format string) (*Settings, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err, "failed to parse %s settings", format).Add("format", format)
	}
	return decode(v)
}

// Validate checks every entry and reports all the violations found
func (s *Settings) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewOneOfValidator("reference_mode", s.ReferenceMode, ReferenceByPath, ReferenceByID, ReferenceNone)).
		AddValidator(validation.NewOneOfValidator("field_sorter", s.FieldSorter, SorterDerivedFirst, SorterDerivedLast, SorterAlphabetical))

	for _, pattern := range s.IgnoreUnknownElements {
		chain.AddValidator(validation.NewRegexpValidator("ignore_unknown_elements", pattern))
	}

	for _, alias := range s.Aliases {
		chain.AddValidators(
			validation.NewEmptyStringValidator("aliases.name", alias.Name),
			validation.NewEmptyStringValidator("aliases.type", alias.Type),
		)
	}

	for _, alias := range s.FieldAliases {
		chain.AddValidators(memberValidators("field_aliases", alias.Member)...).
			AddValidator(validation.NewEmptyStringValidator("field_aliases.alias", alias.Alias))
	}

	for _, alias := range s.AttributeAliases {
		chain.AddValidators(
			validation.NewEmptyStringValidator("attribute_aliases.attribute", alias.Attribute),
			validation.NewEmptyStringValidator("attribute_aliases.alias", alias.Alias),
		)
	}

	for _, member := range s.OmittedFields {
		chain.AddValidators(memberValidators("omitted_fields", member)...)
	}

	for _, member := range s.AttributeFields {
		chain.AddValidators(memberValidators("attribute_fields", member)...)
	}

	for _, name := range s.AttributeTypes {
		chain.AddValidator(validation.NewEmptyStringValidator("attribute_types", name))
	}

	for _, collection := range s.ImplicitCollections {
		chain.AddValidators(memberValidators("implicit_collections", collection.Member)...)
		if collection.KeyField != "" {
			chain.AddValidator(identifier("implicit_collections.key_field", collection.KeyField))
		}
	}

	for _, name := range s.ImmutableTypes {
		chain.AddValidator(validation.NewEmptyStringValidator("immutable_types", name))
	}

	for _, implementation := range s.DefaultImplementations {
		chain.AddValidators(
			validation.NewEmptyStringValidator("default_implementations.declared", implementation.Declared),
			validation.NewEmptyStringValidator("default_implementations.implementation", implementation.Implementation),
		)
	}

	for _, order := range s.FieldOrders {
		chain.AddValidator(validation.NewEmptyStringValidator("field_orders.type", order.Type)).
			AddAssertion(len(order.Fields) > 0, "the [field_orders.fields] of %s is required", order.Type)
	}

	for _, pattern := range slices.Concat(s.Security.AllowRegExp, s.Security.DenyRegExp) {
		chain.AddValidator(validation.NewRegexpValidator("security", pattern))
	}
	chain.AddAssertion(s.Security.MaxArraySize >= 0, "the [security.max_array_size] must not be negative")

	if err := chain.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err, "invalid settings")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := Default()
	v.SetDefault("reference_mode", defaults.ReferenceMode)
	v.SetDefault("field_sorter", defaults.FieldSorter)
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	settings := new(Settings)
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err, "failed to decode settings")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func memberValidators(name string, member Member) []validation.Validator {
	return []validation.Validator{
		validation.NewEmptyStringValidator(name+".type", member.Type),
		identifier(name+".field", member.Field),
	}
}

var identifierPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

func identifier(name, value string) validation.Validator {
	return validation.NewPatternValidator(name, value, identifierPattern,
		errors.New(errors.ErrInvalidConfig, "the [%s] must be a Go identifier, got %q", name, value))
}

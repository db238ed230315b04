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

// Package arbor converts Go object graphs to document trees and back.
//
// An Engine walks a value by reflection and writes it as a tree.Node: every
// struct becomes a node named after its type, every member a child node
// named after the member. Shared and cyclic pointers are written once and
// read back as the same instance. The names written are driven by a chain of
// mappers configured through the Engine, and every type named by a document
// must pass a security gate before it is instantiated.
//
//	engine, _ := arbor.New(arbor.WithTypes(Point{}))
//	engine.Alias("Point", Point{})
//	node, _ := engine.Marshal(Point{X: 1, Y: 2}) // <Point><X>1</X><Y>2</Y></Point>
package arbor

import (
	"context"
	"reflect"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/arbor/config"
	"github.com/tochemey/arbor/converter"
	"github.com/tochemey/arbor/core"
	"github.com/tochemey/arbor/document"
	"github.com/tochemey/arbor/errors"
	ametric "github.com/tochemey/arbor/internal/metric"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/log"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/reflection"
	"github.com/tochemey/arbor/security"
	"github.com/tochemey/arbor/tree"
)

// Engine marshals and unmarshals values.
//
// Configure an Engine before sharing it: configuration methods are safe to
// call concurrently with conversions, but a conversion running while the
// configuration changes may observe either state.
type Engine struct {
	logger         log.Logger
	mode           core.ReferenceMode
	fallbackSorter reflection.FieldSorter
	wrappers       []func(mapper.Mapper) mapper.Mapper
	settings       *config.Settings
	configFile     string
	metricsEnabled bool
	meterProvider  metric.MeterProvider
	maxArraySize   int64

	types    types.Registry
	gate     *security.Gate
	anyType  *atomic.Bool
	provider *reflection.Provider

	aliases          *mapper.ClassAlias
	composite        *mapper.Composite
	ignoring         *mapper.ElementIgnoring
	fieldAliases     *mapper.FieldAlias
	attributeAliases *mapper.AttributeAlias
	collections      *mapper.ImplicitCollections
	implementations  *mapper.DefaultImplementation
	attributes       *mapper.AttributeMapper
	immutables       *mapper.Immutable
	caching          *mapper.Caching
	mapper           mapper.Mapper

	sorter     *reflection.ExplicitSorter
	dictionary *reflection.FieldDictionary
	converters *converter.Registry
	metric     *ametric.EngineMetric
}

// New creates an Engine.
//
// The security gate of a new Engine allows the predeclared types, time.Time,
// time.Duration, interface types and every registered type. Registration
// happens through WithTypes, RegisterTypes, the aliasing methods and, for
// struct types, the first time a value of the type is converted.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{
		logger:         log.DiscardLogger,
		mode:           core.ByPath,
		fallbackSorter: reflection.DerivedFirst(),
		types:          types.NewRegistry(),
		gate:           security.NewGate(),
		anyType:        atomic.NewBool(false),
		provider:       reflection.NewProvider(),
		maxArraySize:   mapper.DefaultMaxArraySize,
	}

	for _, opt := range opts {
		opt.Apply(engine)
	}

	if engine.configFile != "" {
		settings, err := config.Load(engine.configFile)
		if err != nil {
			return nil, err
		}
		engine.settings = settings
	}

	if engine.settings != nil {
		// settings leave the options in place for what they do not name
		settings := *engine.settings
		if settings.ReferenceMode == "" {
			settings.ReferenceMode = engine.mode.String()
		}
		if settings.FieldSorter == "" {
			settings.FieldSorter = config.SorterDerivedFirst
		} else {
			engine.fallbackSorter = sorterNamed(settings.FieldSorter)
		}

		if err := settings.Validate(); err != nil {
			return nil, err
		}

		mode, err := core.ParseReferenceMode(settings.ReferenceMode)
		if err != nil {
			return nil, err
		}
		engine.mode = mode
		engine.settings = &settings
	}

	engine.build()

	if engine.metricsEnabled {
		provider := ametric.New(ametric.WithMeterProvider(engine.meterProvider))
		engineMetric, err := ametric.NewEngineMetric(provider.Meter())
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidConfig, err, "failed to create the engine metrics")
		}
		engine.metric = engineMetric
	}

	if engine.settings != nil {
		if err := engine.applySettings(engine.settings); err != nil {
			return nil, err
		}
	}

	engine.logger.Debugf("arbor engine ready (references=%s)", engine.mode)
	return engine, nil
}

// build assembles the mapper chain, the gate and the converters
func (e *Engine) build() {
	e.gate.Allow(security.NoType)
	e.gate.Allow(security.Primitives)
	e.gate.Allow(security.Standard)
	e.gate.Allow(security.Interfaces)
	e.gate.Allow(security.Registered(e.types))

	e.aliases = mapper.NewClassAlias(mapper.NewDefault(e.types))
	e.composite = mapper.NewComposite(e.aliases)
	e.composite.SetMaxArraySize(e.maxArraySize)
	e.ignoring = mapper.NewElementIgnoring(e.composite)
	e.fieldAliases = mapper.NewFieldAlias(e.ignoring)
	e.attributeAliases = mapper.NewAttributeAlias(e.fieldAliases)
	e.collections = mapper.NewImplicitCollections(e.attributeAliases)
	e.implementations = mapper.NewDefaultImplementation(e.collections)
	e.attributes = mapper.NewAttributeMapper(e.implementations)
	e.immutables = mapper.NewImmutable(e.attributes)

	var chain mapper.Mapper = e.immutables
	for _, wrap := range e.wrappers {
		chain = wrap(chain)
	}
	e.caching = mapper.NewCaching(mapper.NewSecurity(mapper.NewEscaping(chain), e.gate))
	e.mapper = e.caching

	e.aliases.Alias("time", reflect.TypeOf(time.Time{}))
	e.aliases.Alias("duration", reflect.TypeOf(time.Duration(0)))
	e.aliases.Alias("bytes", reflect.TypeOf([]byte(nil)))
	e.aliases.Alias("list", reflect.TypeOf([]any(nil)))
	e.aliases.Alias("map", reflect.TypeOf(map[string]any(nil)))

	e.sorter = reflection.Explicit(e.fallbackSorter)
	e.dictionary = reflection.NewFieldDictionary(e.sorter, e.types.Register)
	e.converters = converter.NewRegistry()
	converter.RegisterDefaults(e.converters, e.mapper)
	e.converters.Register(reflection.NewConverter(e.mapper, e.converters, e.dictionary, e.provider), converter.PriorityVeryLow)
}

// Marshal writes v as a document tree
func (e *Engine) Marshal(v any) (*tree.Node, error) {
	w := tree.NewNodeWriter()
	if err := e.MarshalTo(v, w, nil); err != nil {
		return nil, err
	}
	return w.Root(), nil
}

// MarshalTo writes v to w. data is handed to every converter and may be nil.
func (e *Engine) MarshalTo(v any, w tree.Writer, data converter.DataHolder) (err error) {
	defer e.observe(ametric.MarshalOperation, time.Now(), &err)
	return core.NewMarshaller(w, e.converters, e.mapper, e.mode, data).Start(v)
}

// MarshalBytes writes v with codec
func (e *Engine) MarshalBytes(v any, codec document.Codec) ([]byte, error) {
	node, err := e.Marshal(v)
	if err != nil {
		return nil, err
	}
	return codec.Encode(node)
}

// Unmarshal reads n into target, which must be a non nil pointer.
// The root is read as the type target points to; when that is an interface
// type, the root node name selects the type.
func (e *Engine) Unmarshal(n *tree.Node, target any) error {
	if n == nil {
		return errors.New(errors.ErrInvalidValue, "nil document")
	}
	return e.UnmarshalFrom(tree.NewNodeReader(n), target, nil)
}

// UnmarshalFrom reads the document of r into target. data is handed to every
// converter and may be nil.
func (e *Engine) UnmarshalFrom(r tree.Reader, target any, data converter.DataHolder) (err error) {
	defer e.observe(ametric.UnmarshalOperation, time.Now(), &err)

	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		name := types.Name(reflect.TypeOf(target))
		return errors.New(errors.ErrInvalidTarget, "%s is not a non nil pointer", name).Add("type", name)
	}

	required := value.Type().Elem()
	result, err := core.NewUnmarshaller(r, e.converters, e.mapper, e.mode, data).Start(required)
	if err != nil {
		return err
	}

	resolved, err := converter.Value(result, required)
	if err != nil {
		return err
	}
	value.Elem().Set(resolved)
	return nil
}

// UnmarshalBytes reads data with codec into target
func (e *Engine) UnmarshalBytes(data []byte, codec document.Codec, target any) error {
	node, err := codec.Decode(data)
	if err != nil {
		return err
	}
	return e.Unmarshal(node, target)
}

// Decode reads n as the type its root node names
func (e *Engine) Decode(n *tree.Node) (result any, err error) {
	if n == nil {
		return nil, errors.New(errors.ErrInvalidValue, "nil document")
	}

	defer e.observe(ametric.UnmarshalOperation, time.Now(), &err)
	return core.NewUnmarshaller(tree.NewNodeReader(n), e.converters, e.mapper, e.mode, nil).Start(nil)
}

// Mapper returns the head of the mapper chain
func (e *Engine) Mapper() mapper.Mapper {
	return e.mapper
}

// Gate returns the security gate
func (e *Engine) Gate() *security.Gate {
	return e.gate
}

// ReferenceMode returns how repeated values are written
func (e *Engine) ReferenceMode() core.ReferenceMode {
	return e.mode
}

func (e *Engine) observe(operation ametric.Operation, start time.Time, err *error) {
	if *err != nil {
		if errors.Is(*err, errors.ErrForbiddenType) {
			e.logger.Warnf("arbor: %s refused a type: %v", operation, *err)
		} else {
			e.logger.Debugf("arbor: %s failed: %v", operation, *err)
		}
	}

	if e.metric != nil {
		e.metric.Record(context.Background(), operation, start, *err)
	}
}

// applySettings applies everything but the reference mode and the sort policy,
// which are needed to build the engine
func (e *Engine) applySettings(settings *config.Settings) error {
	var err error
	for _, pattern := range settings.IgnoreUnknownElements {
		err = multierr.Append(err, e.IgnoreUnknownElements(pattern))
	}

	for _, alias := range settings.Aliases {
		t, rerr := e.typeNamed(alias.Type)
		if rerr == nil {
			e.AliasType(alias.Name, t)
		}
		err = multierr.Append(err, rerr)
	}

	for _, alias := range settings.FieldAliases {
		err = multierr.Append(err, e.withType(alias.Type, func(t reflect.Type) error {
			return e.AliasField(alias.Alias, t, alias.Field)
		}))
	}

	for _, alias := range settings.AttributeAliases {
		e.AliasAttribute(alias.Alias, alias.Attribute)
	}

	for _, member := range settings.OmittedFields {
		err = multierr.Append(err, e.withType(member.Type, func(t reflect.Type) error {
			return e.OmitField(t, member.Field)
		}))
	}

	for _, member := range settings.AttributeFields {
		err = multierr.Append(err, e.withType(member.Type, func(t reflect.Type) error {
			return e.UseAttributeFor(t, member.Field)
		}))
	}

	for _, name := range settings.AttributeTypes {
		err = multierr.Append(err, e.withType(name, func(t reflect.Type) error {
			e.UseAttributeForType(t)
			return nil
		}))
	}

	for _, collection := range settings.ImplicitCollections {
		err = multierr.Append(err, e.withType(collection.Type, func(owner reflect.Type) error {
			var itemType reflect.Type
			if collection.ItemType != "" {
				t, err := e.typeNamed(collection.ItemType)
				if err != nil {
					return err
				}
				itemType = t
			}
			return e.AddImplicitMap(owner, collection.Field, collection.ItemName, itemType, collection.KeyField)
		}))
	}

	for _, name := range settings.ImmutableTypes {
		err = multierr.Append(err, e.withType(name, func(t reflect.Type) error {
			e.AddImmutableType(t)
			return nil
		}))
	}

	for _, implementation := range settings.DefaultImplementations {
		err = multierr.Append(err, e.withType(implementation.Declared, func(declared reflect.Type) error {
			t, err := e.typeNamed(implementation.Implementation)
			if err != nil {
				return err
			}
			return e.AddDefaultImplementation(t, declared)
		}))
	}

	for _, order := range settings.FieldOrders {
		err = multierr.Append(err, e.withType(order.Type, func(t reflect.Type) error {
			e.SetFieldOrder(t, order.Fields...)
			return nil
		}))
	}

	rules := settings.Security
	if rules.AllowAnyType {
		e.AllowAnyType()
	}
	if len(rules.Allow) > 0 {
		e.AllowTypesByWildcard(rules.Allow...)
	}
	if len(rules.AllowRegExp) > 0 {
		err = multierr.Append(err, e.AllowTypesByRegExp(rules.AllowRegExp...))
	}
	if len(rules.Deny) > 0 {
		e.DenyTypesByWildcard(rules.Deny...)
	}
	if len(rules.DenyRegExp) > 0 {
		err = multierr.Append(err, e.DenyTypesByRegExp(rules.DenyRegExp...))
	}
	if rules.MaxArraySize > 0 {
		e.SetMaxArraySize(rules.MaxArraySize)
	}

	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err, "failed to apply settings")
	}
	return nil
}

// typeNamed resolves a Go type name without going through the security gate
func (e *Engine) typeNamed(name string) (reflect.Type, error) {
	t, err := e.composite.ResolveType(name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.New(errors.ErrInvalidConfig, "%s does not name a type", name).Add("name", name)
	}
	return t, nil
}

func (e *Engine) withType(name string, fn func(t reflect.Type) error) error {
	t, err := e.typeNamed(name)
	if err != nil {
		return err
	}
	return fn(t)
}

func sorterNamed(name string) reflection.FieldSorter {
	switch name {
	case config.SorterDerivedLast:
		return reflection.DerivedLast()
	case config.SorterAlphabetical:
		return reflection.Alphabetical()
	default:
		return reflection.DerivedFirst()
	}
}

// compile compiles the given expressions
func compile(expressions ...string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(expressions))
	for _, expression := range expressions {
		pattern, err := regexp.Compile(expression)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidConfig, err, "invalid expression %q", expression).Add("expression", expression)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

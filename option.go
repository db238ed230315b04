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

package arbor

import (
	"reflect"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/arbor/config"
	"github.com/tochemey/arbor/core"
	"github.com/tochemey/arbor/log"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/reflection"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of an Engine.
	Apply(engine *Engine)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(engine *Engine)

// Apply applies the Engine's option
func (f OptionFunc) Apply(engine *Engine) {
	f(engine)
}

// WithLogger sets the logger. The default discards every message.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(engine *Engine) {
		if logger != nil {
			engine.logger = logger
		}
	})
}

// WithReferenceMode sets how repeated values are written. The default is core.ByPath.
func WithReferenceMode(mode core.ReferenceMode) Option {
	return OptionFunc(func(engine *Engine) {
		engine.mode = mode
	})
}

// WithFieldSorter sets the order members are written in for the types without
// an explicit field order. The default is reflection.DerivedFirst.
func WithFieldSorter(sorter reflection.FieldSorter) Option {
	return OptionFunc(func(engine *Engine) {
		if sorter != nil {
			engine.fallbackSorter = sorter
		}
	})
}

// WithMapperWrapper inserts a custom link in the mapper chain, above the
// configurable links and below name escaping and the security gate.
// Wrappers are applied in the order they are given.
func WithMapperWrapper(wrap func(mapper.Mapper) mapper.Mapper) Option {
	return OptionFunc(func(engine *Engine) {
		if wrap != nil {
			engine.wrappers = append(engine.wrappers, wrap)
		}
	})
}

// WithMaxArraySize bounds, in bytes, the array types a document may name.
// The default is mapper.DefaultMaxArraySize.
func WithMaxArraySize(size int64) Option {
	return OptionFunc(func(engine *Engine) {
		engine.maxArraySize = size
	})
}

// WithMetrics records the engine metrics with the global meter provider
func WithMetrics() Option {
	return OptionFunc(func(engine *Engine) {
		engine.metricsEnabled = true
	})
}

// WithMeterProvider records the engine metrics with provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(engine *Engine) {
		engine.metricsEnabled = true
		engine.meterProvider = provider
	})
}

// WithSettings applies file-form settings once the engine is built.
// Types the settings name must be registered, see WithTypes.
func WithSettings(settings *config.Settings) Option {
	return OptionFunc(func(engine *Engine) {
		engine.settings = settings
	})
}

// WithConfigFile loads the settings from a YAML or JSON file when the engine is built
func WithConfigFile(path string) Option {
	return OptionFunc(func(engine *Engine) {
		engine.configFile = path
	})
}

// WithFactory builds the values of type t with factory instead of the zero value
func WithFactory(t reflect.Type, factory reflection.Factory) Option {
	return OptionFunc(func(engine *Engine) {
		engine.provider.RegisterFactory(t, factory)
	})
}

// WithTypes registers the types of values so that their names resolve.
// A reflect.Type is registered as is.
func WithTypes(values ...any) Option {
	return OptionFunc(func(engine *Engine) {
		engine.registerTypes(values...)
	})
}

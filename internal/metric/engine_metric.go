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

package metric

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation names the engine call being measured
type Operation string

const (
	// MarshalOperation is a graph to tree conversion
	MarshalOperation Operation = "marshal"
	// UnmarshalOperation is a tree to graph conversion
	UnmarshalOperation Operation = "unmarshal"
)

var operationKey = attribute.Key("arbor.operation")

// EngineMetric defines the engine instrumentation
type EngineMetric struct {
	// Specifies the total number of marshal calls
	marshalCount metric.Int64Counter
	// Specifies the total number of unmarshal calls
	unmarshalCount metric.Int64Counter
	// Specifies the total number of failed calls
	failureCount metric.Int64Counter
	// Specifies the duration of a call in milliseconds
	duration metric.Float64Histogram
}

// NewEngineMetric creates an instance of EngineMetric
func NewEngineMetric(meter metric.Meter) (*EngineMetric, error) {
	engineMetric := new(EngineMetric)
	var err error

	if engineMetric.marshalCount, err = meter.Int64Counter(
		"arbor_marshal_count",
		metric.WithDescription("Total number of marshal calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create marshalCount instrument, %w", err)
	}

	if engineMetric.unmarshalCount, err = meter.Int64Counter(
		"arbor_unmarshal_count",
		metric.WithDescription("Total number of unmarshal calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create unmarshalCount instrument, %w", err)
	}

	if engineMetric.failureCount, err = meter.Int64Counter(
		"arbor_failure_count",
		metric.WithDescription("Total number of failed marshal and unmarshal calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failureCount instrument, %w", err)
	}

	if engineMetric.duration, err = meter.Float64Histogram(
		"arbor_operation_duration",
		metric.WithDescription("The latency of marshal and unmarshal calls in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration instrument, %w", err)
	}

	return engineMetric, nil
}

// Record measures a call of operation that began at start and ended with err
func (x *EngineMetric) Record(ctx context.Context, operation Operation, start time.Time, err error) {
	attrs := metric.WithAttributes(operationKey.String(string(operation)))
	switch operation {
	case MarshalOperation:
		x.marshalCount.Add(ctx, 1)
	case UnmarshalOperation:
		x.unmarshalCount.Add(ctx, 1)
	}

	if err != nil {
		x.failureCount.Add(ctx, 1, attrs)
	}
	x.duration.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), attrs)
}

// MarshalCount returns the total number of marshal calls
func (x *EngineMetric) MarshalCount() metric.Int64Counter {
	return x.marshalCount
}

// UnmarshalCount returns the total number of unmarshal calls
func (x *EngineMetric) UnmarshalCount() metric.Int64Counter {
	return x.unmarshalCount
}

// FailureCount returns the total number of failed calls
func (x *EngineMetric) FailureCount() metric.Int64Counter {
	return x.failureCount
}

// Duration returns the call latency in milliseconds
func (x *EngineMetric) Duration() metric.Float64Histogram {
	return x.duration
}

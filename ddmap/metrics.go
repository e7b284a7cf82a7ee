// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ddmap

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
)

const meterName = "ddmap"

const (
	resultSuccess   = "success"
	resultFailure   = "failure"
	resultUnchanged = "unchanged"
)

type metrics struct {
	name attribute.KeyValue

	operations   metric.Int64Counter
	dispatched   metric.Int64Counter
	dispatchTime metric.Float64Histogram
	watchDropped metric.Int64Counter
	entries      metric.Int64ObservableGauge
	registration metric.Registration
}

func newMetrics(provider metric.MeterProvider, name string, size func() int64) (*metrics, error) {
	meter := provider.Meter(meterName)
	m := &metrics{
		name: attribute.String("ddmap_name", name),
	}

	var err, errs error
	m.operations, err = meter.Int64Counter("ddmap_operations",
		metric.WithDescription("The number of mutating operations performed on the map"))
	errs = multierr.Append(errs, err)

	m.dispatched, err = meter.Int64Counter("ddmap_events_dispatched",
		metric.WithDescription("The number of change events delivered to listeners"))
	errs = multierr.Append(errs, err)

	m.dispatchTime, err = meter.Float64Histogram("ddmap_dispatch_latency",
		metric.WithUnit("ms"),
		metric.WithDescription("The time spent delivering one change event to all the listeners"))
	errs = multierr.Append(errs, err)

	m.watchDropped, err = meter.Int64Counter("ddmap_watch_dropped_events",
		metric.WithDescription("The number of change events dropped because a watcher buffer was full"))
	errs = multierr.Append(errs, err)

	m.entries, err = meter.Int64ObservableGauge("ddmap_entries",
		metric.WithDescription("The number of entries stored in the map"))
	errs = multierr.Append(errs, err)

	if errs != nil {
		return nil, errs
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.entries, size(), metric.WithAttributes(m.name))
		return nil
	}, m.entries)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) operation(operation Operation, result string) {
	m.operations.Add(context.Background(), 1, metric.WithAttributes(
		m.name,
		attribute.String("operation", operation.String()),
		attribute.String("result", result),
	))
}

func (m *metrics) dispatch(operation Operation, listeners int, elapsed time.Duration) {
	ctx := context.Background()
	m.dispatched.Add(ctx, int64(listeners), metric.WithAttributes(
		m.name,
		attribute.String("operation", operation.String()),
	))
	m.dispatchTime.Record(ctx, float64(elapsed.Microseconds())/1000.0, metric.WithAttributes(m.name))
}

func (m *metrics) dropped() {
	m.watchDropped.Add(context.Background(), 1, metric.WithAttributes(m.name))
}

func (m *metrics) close() error {
	return m.registration.Unregister()
}

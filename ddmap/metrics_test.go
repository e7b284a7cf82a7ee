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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetrics(t *testing.T) (*Map[string, string], metric.Reader) {
	t.Helper()
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	m, err := New[string, string](unknown, WithName("test"), WithMeterProvider(provider))
	require.NoError(t, err)
	return m, reader
}

func TestMetrics_Operations(t *testing.T) {
	m, reader := setupMetrics(t)
	defer m.Close()

	m.OnChange(func(*Map[string, string], ChangeEvent[string, string]) {})
	m.OnChange(func(*Map[string, string], ChangeEvent[string, string]) {})

	m.Set("a", "1")     // add success
	m.Set("a", "1")     // set unchanged
	m.Set("a", "2")     // set success
	m.Set("b", unknown) // set unchanged
	assert.Error(t, m.Add("a", "3"))
	assert.NoError(t, m.Add("c", "3"))
	m.Remove("missing") // remove failure

	rm := collect(t, reader)

	points := sumPoints(t, rm, "ddmap_operations")
	assert.EqualValues(t, 2, pointValue(points, "add", "success"))
	assert.EqualValues(t, 1, pointValue(points, "add", "failure"))
	assert.EqualValues(t, 1, pointValue(points, "set", "success"))
	assert.EqualValues(t, 2, pointValue(points, "set", "unchanged"))
	assert.EqualValues(t, 1, pointValue(points, "remove", "failure"))

	// 4 events, each delivered to 2 listeners
	dispatched := sumPoints(t, rm, "ddmap_events_dispatched")
	total := int64(0)
	for _, p := range dispatched {
		total += p.Value
		name, _ := p.Attributes.Value("ddmap_name")
		assert.Equal(t, "test", name.AsString())
	}
	assert.EqualValues(t, 8, total)

	entries := gaugePoints(t, rm, "ddmap_entries")
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].Value)

	latency := histogramPoints(t, rm, "ddmap_dispatch_latency")
	require.Len(t, latency, 1)
	assert.EqualValues(t, 4, latency[0].Count)
}

func TestMetrics_NoListenersNoDispatch(t *testing.T) {
	m, reader := setupMetrics(t)
	defer m.Close()

	m.Set("a", "1")
	rm := collect(t, reader)
	assert.Empty(t, sumPoints(t, rm, "ddmap_events_dispatched"))
	assert.EqualValues(t, 1, pointValue(sumPoints(t, rm, "ddmap_operations"), "add", "success"))
}

func TestMetrics_WatchDropped(t *testing.T) {
	m, reader := setupMetrics(t)
	defer m.Close()

	w := m.Watch(1)
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")
	assert.EqualValues(t, 2, w.Dropped())

	points := sumPoints(t, collect(t, reader), "ddmap_watch_dropped_events")
	require.Len(t, points, 1)
	assert.EqualValues(t, 2, points[0].Value)
}

func collect(t *testing.T, reader metric.Reader) metricdata.ResourceMetrics {
	t.Helper()
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func find(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumPoints(t *testing.T, rm metricdata.ResourceMetrics, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	m, found := find(rm, name)
	if !found {
		return nil
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)
	return sum.DataPoints
}

func gaugePoints(t *testing.T, rm metricdata.ResourceMetrics, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	m, found := find(rm, name)
	require.True(t, found, "%s not found", name)
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "%s is not an int64 gauge", name)
	return gauge.DataPoints
}

func histogramPoints(t *testing.T, rm metricdata.ResourceMetrics, name string) []metricdata.HistogramDataPoint[float64] {
	t.Helper()
	m, found := find(rm, name)
	require.True(t, found, "%s not found", name)
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "%s is not a float64 histogram", name)
	return histogram.DataPoints
}

func pointValue(points []metricdata.DataPoint[int64], operation, result string) int64 {
	expected := attribute.NewSet(
		attribute.String("ddmap_name", "test"),
		attribute.String("operation", operation),
		attribute.String("result", result),
	)
	for _, p := range points {
		if p.Attributes.Equals(&expected) {
			return p.Value
		}
	}
	return 0
}

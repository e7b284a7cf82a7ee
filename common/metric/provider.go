// Copyright 2023 StreamNative, Inc.
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

package metric

import (
	"sync"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Unit string

const Milliseconds Unit = "ms"

var latencyBucketsMillis = []float64{
	0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1_000,
}

var (
	providerOnce sync.Once
	provider     metric.MeterProvider
	providerErr  error
)

// MeterProvider returns the process-wide meter provider, exporting to the
// default Prometheus registry. It is also installed as the global
// OpenTelemetry provider.
func MeterProvider() (metric.MeterProvider, error) {
	providerOnce.Do(func() {
		exporter, err := prometheus.New()
		if err != nil {
			providerErr = errors.Wrap(err, "failed to initialize Prometheus metrics exporter")
			return
		}

		// Change events are dispatched in-process: use sub-millisecond buckets
		latencyHistogramView := sdkmetric.NewView(
			sdkmetric.Instrument{
				Kind: sdkmetric.InstrumentKindHistogram,
				Unit: string(Milliseconds),
			},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: latencyBucketsMillis,
				},
			},
		)

		// Default view to keep all instruments
		defaultView := sdkmetric.NewView(sdkmetric.Instrument{Name: "*"}, sdkmetric.Stream{})

		p := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter),
			sdkmetric.WithView(latencyHistogramView, defaultView))
		otel.SetMeterProvider(p)
		provider = p
	})
	return provider, providerErr
}

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
	"math"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"
)

const DefaultName = "default"

type options struct {
	name            string
	meterProvider   metric.MeterProvider
	equal           func(a, b any) bool
	tryGetAlwaysHit bool
}

type Option interface {
	// apply is used to set an Option value of an options.
	apply(option options) (options, error)
}

func newOptions(opts ...Option) (options, error) {
	o := options{
		name:          DefaultName,
		meterProvider: noop.NewMeterProvider(),
		equal:         defaultEqual,
	}
	var errs error
	var err error
	for _, opt := range opts {
		o, err = opt.apply(o)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return o, errs
}

type optionFunc func(options) (options, error)

func (f optionFunc) apply(o options) (options, error) {
	return f(o)
}

// WithName sets the name used to tag the map's logs and metrics.
func WithName(name string) Option {
	return optionFunc(func(o options) (options, error) {
		if name == "" {
			return o, ErrInvalidOptionName
		}
		o.name = name
		return o, nil
	})
}

func WithMeterProvider(meterProvider metric.MeterProvider) Option {
	return optionFunc(func(o options) (options, error) {
		if meterProvider == nil {
			o.meterProvider = noop.NewMeterProvider()
		} else {
			o.meterProvider = meterProvider
		}
		return o, nil
	})
}

func WithGlobalMeterProvider() Option {
	return WithMeterProvider(otel.GetMeterProvider())
}

// WithEqual replaces the value equality used by Set, ContainsEntry and
// RemoveEntry. The default is reflect.DeepEqual, except that a float NaN
// value equals itself. NaN nested inside a composite value is still unequal.
func WithEqual(equal func(a, b any) bool) Option {
	return optionFunc(func(o options) (options, error) {
		if equal == nil {
			return o, ErrInvalidOptionEqual
		}
		o.equal = equal
		return o, nil
	})
}

// WithTryGetAlwaysFound makes TryGet report the key as found even when the
// default value is substituted for an absent key.
//
// This only exists for callers that depend on that older contract; the
// default behavior reports absence explicitly.
func WithTryGetAlwaysFound() Option {
	return optionFunc(func(o options) (options, error) {
		o.tryGetAlwaysHit = true
		return o, nil
	})
}

func defaultEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && math.IsNaN(x) && math.IsNaN(y)
	case float32:
		y, ok := b.(float32)
		return ok && math.IsNaN(float64(x)) && math.IsNaN(float64(y))
	}
	return false
}

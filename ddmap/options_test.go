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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestOptions_Defaults(t *testing.T) {
	o, err := newOptions()
	assert.NoError(t, err)
	assert.Equal(t, DefaultName, o.name)
	assert.NotNil(t, o.meterProvider)
	assert.NotNil(t, o.equal)
	assert.False(t, o.tryGetAlwaysHit)
}

func TestOptions_Invalid(t *testing.T) {
	for _, item := range []struct {
		opt         Option
		expectedErr error
	}{
		{WithName(""), ErrInvalidOptionName},
		{WithEqual(nil), ErrInvalidOptionEqual},
	} {
		_, err := newOptions(item.opt)
		assert.ErrorIs(t, err, item.expectedErr)
	}
}

func TestOptions_ErrorsAreAggregated(t *testing.T) {
	m, err := New[string, string](unknown, WithName(""), WithEqual(nil))
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrInvalidOptionName)
	assert.ErrorIs(t, err, ErrInvalidOptionEqual)
}

func TestOptions_MeterProvider(t *testing.T) {
	o, err := newOptions(WithMeterProvider(nil))
	require.NoError(t, err)
	assert.IsType(t, noop.NewMeterProvider(), o.meterProvider)

	o, err = newOptions(WithGlobalMeterProvider())
	require.NoError(t, err)
	assert.NotNil(t, o.meterProvider)
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "add", OperationAdd.String())
	assert.Equal(t, "remove", OperationRemove.String())
	assert.Equal(t, "set", OperationSet.String())
	assert.Equal(t, "clear", OperationClear.String())
	assert.Equal(t, "unknown(9)", Operation(9).String())
}

func TestDefaultEqual(t *testing.T) {
	for _, test := range []struct {
		name     string
		a, b     any
		expected bool
	}{
		{"equal-strings", "a", "a", true},
		{"different-strings", "a", "b", false},
		{"equal-slices", []int{1, 2}, []int{1, 2}, true},
		{"nan-float64", math.NaN(), math.NaN(), true},
		{"nan-float32", float32(math.NaN()), float32(math.NaN()), true},
		{"nan-number", math.NaN(), 1.0, false},
		{"nan-mixed-widths", math.NaN(), float32(math.NaN()), false},
		{"nested-nan", []float64{math.NaN()}, []float64{math.NaN()}, false},
		{"nil", nil, nil, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, defaultEqual(test.a, test.b))
		})
	}
}

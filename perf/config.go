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

package perf

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	ErrInvalidRequestRate     = errors.New("rate must be greater than zero")
	ErrInvalidReadPercentage  = errors.New("read-write-percent must be between 0 and 100")
	ErrInvalidKeysCardinality = errors.New("keys-cardinality must be greater than zero")
	ErrInvalidValues          = errors.New("value-cardinality must be greater than zero")
	ErrInvalidWorkers         = errors.New("writers and readers cannot be negative, nor both zero")
	ErrInvalidReportInterval  = errors.New("report-interval must be greater than zero")
)

type Config struct {
	RequestRate      float64       `mapstructure:"rate" yaml:"rate"`
	ReadPercentage   float64       `mapstructure:"read-write-percent" yaml:"read-write-percent"`
	KeysCardinality  uint32        `mapstructure:"keys-cardinality" yaml:"keys-cardinality"`
	ValueCardinality uint32        `mapstructure:"value-cardinality" yaml:"value-cardinality"`
	Writers          int           `mapstructure:"writers" yaml:"writers"`
	Readers          int           `mapstructure:"readers" yaml:"readers"`
	Listeners        int           `mapstructure:"listeners" yaml:"listeners"`
	DefaultValue     string        `mapstructure:"default-value" yaml:"default-value"`
	ReportInterval   time.Duration `mapstructure:"report-interval" yaml:"report-interval"`
}

func NewDefaultConfig() Config {
	return Config{
		RequestRate:      1000.0,
		ReadPercentage:   80.0,
		KeysCardinality:  1000,
		ValueCardinality: 10,
		Writers:          4,
		Readers:          4,
		Listeners:        2,
		DefaultValue:     "unknown",
		ReportInterval:   10 * time.Second,
	}
}

func (c Config) Validate() error {
	var err error
	if c.RequestRate <= 0 {
		err = multierr.Append(err, ErrInvalidRequestRate)
	}
	if c.ReadPercentage < 0 || c.ReadPercentage > 100 {
		err = multierr.Append(err, ErrInvalidReadPercentage)
	}
	if c.KeysCardinality == 0 {
		err = multierr.Append(err, ErrInvalidKeysCardinality)
	}
	if c.ValueCardinality == 0 {
		err = multierr.Append(err, ErrInvalidValues)
	}
	if c.Writers < 0 || c.Readers < 0 || c.Writers+c.Readers == 0 {
		err = multierr.Append(err, ErrInvalidWorkers)
	}
	if c.ReportInterval <= 0 {
		err = multierr.Append(err, ErrInvalidReportInterval)
	}
	return err
}

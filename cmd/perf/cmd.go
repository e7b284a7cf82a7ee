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
	"context"
	"io"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/ddmap/cmd/flag"
	"github.com/streamnative/ddmap/common/metric"
	"github.com/streamnative/ddmap/common/process"
	"github.com/streamnative/ddmap/ddmap"
	"github.com/streamnative/ddmap/perf"
)

var (
	configFile  string
	metricsAddr string
	printConfig bool

	Cmd = &cobra.Command{
		Use:   "perf",
		Short: "ddmap perf client",
		Long:  `Tool for basic performance tests of a ddmap under concurrent load`,
		RunE:  exec,
	}
)

func init() {
	defaults := perf.NewDefaultConfig()

	flag.ConfigFile(Cmd, &configFile)
	flag.MetricsAddr(Cmd, &metricsAddr)
	Cmd.Flags().BoolVar(&printConfig, "print-config", false, "Print the effective configuration and exit")

	Cmd.Flags().Float64P("rate", "r", defaults.RequestRate, "Request rate, ops/s")
	Cmd.Flags().Float64P("read-write-percent", "p", defaults.ReadPercentage, "Percentage of read requests, compared to total requests")
	Cmd.Flags().Uint32("keys-cardinality", defaults.KeysCardinality, "Number of distinct keys")
	Cmd.Flags().Uint32("value-cardinality", defaults.ValueCardinality, "Number of distinct values")
	Cmd.Flags().Int("writers", defaults.Writers, "Number of concurrent writers")
	Cmd.Flags().Int("readers", defaults.Readers, "Number of concurrent readers")
	Cmd.Flags().Int("listeners", defaults.Listeners, "Number of change listeners registered on the map")
	Cmd.Flags().String("default-value", defaults.DefaultValue, "Default value of the map")
	Cmd.Flags().Duration("report-interval", defaults.ReportInterval, "Interval between stats reports")
}

// newViper binds the command flags and, if given, the config file. Explicit
// flags take precedence over the file.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (perf.Config, error) {
	config := perf.Config{}
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return config, errors.Wrap(err, "failed to load perf config")
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func exec(cmd *cobra.Command, _ []string) error {
	v, err := newViper(cmd)
	if err != nil {
		return err
	}

	config, err := loadConfig(v)
	if err != nil {
		return err
	}

	if printConfig {
		bytes, err := yaml.Marshal(&config)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(bytes)
		return err
	}

	process.RunProcess(func() (io.Closer, error) {
		return runPerf(v, config)
	})
	return nil
}

type closer struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	metrics *metric.PrometheusMetrics
}

func newCloser(ctx context.Context) *closer {
	c := &closer{
		done: make(chan struct{}),
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	return c
}

func (c *closer) Close() error {
	c.cancel()
	<-c.done

	var err error
	if c.metrics != nil {
		err = multierr.Append(err, c.metrics.Close())
	}
	return err
}

func runPerf(v *viper.Viper, config perf.Config) (io.Closer, error) {
	c := newCloser(context.Background())

	opts := []ddmap.Option{ddmap.WithName("perf")}
	if metricsAddr != "" {
		var err error
		if c.metrics, err = metric.Start(metricsAddr); err != nil {
			return nil, err
		}
		opts = append(opts, ddmap.WithGlobalMeterProvider())
	}

	p, err := perf.New(config, opts...)
	if err != nil {
		c.cancel()
		if c.metrics != nil {
			err = multierr.Append(err, c.metrics.Close())
		}
		return nil, err
	}

	if configFile != "" {
		v.OnConfigChange(func(_ fsnotify.Event) {
			updated, err := loadConfig(v)
			if err != nil {
				slog.Warn(
					"Failed to reload perf config",
					slog.Any("error", err),
				)
				return
			}
			p.SetRequestRate(updated.RequestRate)
		})
		v.WatchConfig()
	}

	go process.DoWithLabels(c.ctx, map[string]string{
		"ddmap": "perf",
	}, func() {
		defer close(c.done)
		p.Run(c.ctx)
	})
	return c, nil
}

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
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmizerany/perks/quantile"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/streamnative/ddmap/common/channel"
	"github.com/streamnative/ddmap/common/process"
	"github.com/streamnative/ddmap/ddmap"
)

const latencyBuffer = 1000

// Stats are the cumulative counters of a perf run.
type Stats struct {
	WriteOps      int64
	ReadOps       int64
	Events        int64
	DuplicateAdds int64
}

type Perf interface {
	// Run drives the load until ctx is done, then closes the map.
	Run(ctx context.Context)

	SetRequestRate(requestRate float64)

	Stats() Stats
}

func New(config Config, opts ...ddmap.Option) (Perf, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid perf config")
	}

	m, err := ddmap.New[string](config.DefaultValue, opts...)
	if err != nil {
		return nil, err
	}

	p := &perf{
		config: config,
		m:      m,
		keys:   make([]string, config.KeysCardinality),
		values: make([]string, config.ValueCardinality),
		log: slog.With(
			slog.String("component", "perf"),
		),
	}
	for i := range p.keys {
		p.keys[i] = fmt.Sprintf("key-%d", i)
	}
	for i := range p.values {
		p.values[i] = fmt.Sprintf("value-%d", i)
	}

	writeRate, readRate := p.rates(config.RequestRate)
	p.writeLimiter = rate.NewLimiter(rate.Limit(writeRate), burst(writeRate))
	p.readLimiter = rate.NewLimiter(rate.Limit(readRate), burst(readRate))
	return p, nil
}

type perf struct {
	config Config
	m      *ddmap.Map[string, string]
	keys   []string
	values []string

	writeLimiter *rate.Limiter
	readLimiter  *rate.Limiter

	writeOps      atomic.Int64
	readOps       atomic.Int64
	events        atomic.Int64
	duplicateAdds atomic.Int64

	log *slog.Logger
}

func (p *perf) rates(requestRate float64) (writeRate, readRate float64) {
	readRate = requestRate * p.config.ReadPercentage / 100
	return requestRate - readRate, readRate
}

func burst(r float64) int {
	return max(1, int(r))
}

func (p *perf) SetRequestRate(requestRate float64) {
	if requestRate <= 0 {
		p.log.Warn(
			"Ignoring invalid request rate",
			slog.Float64("rate", requestRate),
		)
		return
	}

	writeRate, readRate := p.rates(requestRate)
	p.writeLimiter.SetLimit(rate.Limit(writeRate))
	p.writeLimiter.SetBurst(burst(writeRate))
	p.readLimiter.SetLimit(rate.Limit(readRate))
	p.readLimiter.SetBurst(burst(readRate))

	p.log.Info(
		"Updated request rate",
		slog.Float64("rate", requestRate),
	)
}

func (p *perf) Stats() Stats {
	return Stats{
		WriteOps:      p.writeOps.Load(),
		ReadOps:       p.readOps.Load(),
		Events:        p.events.Load(),
		DuplicateAdds: p.duplicateAdds.Load(),
	}
}

func (p *perf) Run(ctx context.Context) {
	p.log.Info(
		"Starting ddmap perf client",
		slog.Any("config", p.config),
	)

	for i := 0; i < p.config.Listeners; i++ {
		p.m.OnChange(func(*ddmap.Map[string, string], ddmap.ChangeEvent[string, string]) {
			p.events.Add(1)
		})
	}

	writeLatencyCh := make(chan time.Duration, latencyBuffer)
	readLatencyCh := make(chan time.Duration, latencyBuffer)

	wg := &sync.WaitGroup{}
	writeRate, readRate := p.rates(p.config.RequestRate)
	if writeRate > 0 {
		p.spawn(ctx, wg, "writer", p.config.Writers, func() { p.write(ctx, writeLatencyCh) })
	}
	if readRate > 0 {
		p.spawn(ctx, wg, "reader", p.config.Readers, func() { p.read(ctx, readLatencyCh) })
	}

	p.report(ctx, writeLatencyCh, readLatencyCh)

	wg.Wait()
	p.log.Debug(
		"Discarded latency samples not yet reported",
		slog.Int("write", channel.Drain(writeLatencyCh)),
		slog.Int("read", channel.Drain(readLatencyCh)),
	)

	if err := p.m.Close(); err != nil {
		p.log.Warn(
			"Failed to close the map",
			slog.Any("error", err),
		)
	}
	p.log.Info("Stopped ddmap perf client")
}

func (p *perf) spawn(ctx context.Context, wg *sync.WaitGroup, role string, n int, f func()) {
	for i := 0; i < n; i++ {
		wg.Add(1)
		go process.DoWithLabels(ctx, map[string]string{
			"ddmap": "perf-" + role,
		}, func() {
			defer wg.Done()
			f()
		})
	}
}

func (p *perf) write(ctx context.Context, latencyCh chan time.Duration) {
	for {
		if err := p.writeLimiter.Wait(ctx); err != nil {
			return
		}

		key := p.keys[rand.IntN(len(p.keys))]
		value := p.values[rand.IntN(len(p.values))]

		start := time.Now()
		switch n := rand.IntN(10); {
		case n < 6:
			p.m.Set(key, value)
		case n < 8:
			p.m.Remove(key)
		default:
			if err := p.m.Add(key, value); err != nil {
				p.duplicateAdds.Add(1)
			}
		}
		p.writeOps.Add(1)
		channel.PushNoBlock(latencyCh, time.Since(start))
	}
}

func (p *perf) read(ctx context.Context, latencyCh chan time.Duration) {
	for {
		if err := p.readLimiter.Wait(ctx); err != nil {
			return
		}

		key := p.keys[rand.IntN(len(p.keys))]

		start := time.Now()
		if rand.IntN(2) == 0 {
			p.m.Get(key)
		} else {
			p.m.TryGet(key)
		}
		p.readOps.Add(1)
		channel.PushNoBlock(latencyCh, time.Since(start))
	}
}

func (p *perf) report(ctx context.Context, writeLatencyCh, readLatencyCh chan time.Duration) {
	ticker := time.NewTicker(p.config.ReportInterval)
	defer ticker.Stop()

	wq := quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	rq := quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	last := p.Stats()
	lastTime := time.Now()

	for {
		select {
		case <-ticker.C:
			now := p.Stats()
			elapsed := time.Since(lastTime).Seconds()
			writeRate := float64(now.WriteOps-last.WriteOps) / elapsed
			readRate := float64(now.ReadOps-last.ReadOps) / elapsed
			eventRate := float64(now.Events-last.Events) / elapsed

			p.log.Info(fmt.Sprintf(`Stats - Total ops: %s - Events: %s - Duplicate adds: %s - Entries: %s
	Write ops %s  Latency ms: 50%% %5.3f - 95%% %5.3f - 99%% %5.3f - 99.9%% %5.3f - max %6.3f
	Read  ops %s  Latency ms: 50%% %5.3f - 95%% %5.3f - 99%% %5.3f - 99.9%% %5.3f - max %6.3f`,
				humanize.SIWithDigits(writeRate+readRate, 1, "ops/s"),
				humanize.SIWithDigits(eventRate, 1, "ev/s"),
				humanize.Comma(now.DuplicateAdds-last.DuplicateAdds),
				humanize.Comma(int64(p.m.Count())),
				humanize.SIWithDigits(writeRate, 1, "w/s"),
				wq.Query(0.5),
				wq.Query(0.95),
				wq.Query(0.99),
				wq.Query(0.999),
				wq.Query(1.0),
				humanize.SIWithDigits(readRate, 1, "r/s"),
				rq.Query(0.5),
				rq.Query(0.95),
				rq.Query(0.99),
				rq.Query(0.999),
				rq.Query(1.0),
			))

			wq.Reset()
			rq.Reset()
			last = now
			lastTime = time.Now()

		case wl := <-writeLatencyCh:
			wq.Insert(float64(wl.Microseconds()) / 1000.0) // Convert to millis

		case rl := <-readLatencyCh:
			rq.Insert(float64(rl.Microseconds()) / 1000.0) // Convert to millis

		case <-ctx.Done():
			return
		}
	}
}

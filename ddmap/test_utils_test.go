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
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const unknown = "unknown"

type recorder[K comparable, V any] struct {
	sync.Mutex
	events []ChangeEvent[K, V]
}

func (r *recorder[K, V]) listener(_ *Map[K, V], event ChangeEvent[K, V]) {
	r.Lock()
	defer r.Unlock()
	r.events = append(r.events, event)
}

// take returns the events recorded so far and resets the recorder.
func (r *recorder[K, V]) take() []ChangeEvent[K, V] {
	r.Lock()
	defer r.Unlock()
	events := r.events
	r.events = nil
	return events
}

func newStringMap(t *testing.T, opts ...Option) (*Map[string, string], *recorder[string, string]) {
	t.Helper()
	m, err := New[string, string](unknown, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close()
	})

	r := &recorder[string, string]{}
	m.OnChange(r.listener)
	return m, r
}

// readEvents receives exactly n events from ch, failing if the context is
// done or the channel is closed first.
func readEvents[K comparable, V any](ctx context.Context, ch <-chan ChangeEvent[K, V], n int) ([]ChangeEvent[K, V], error) {
	events := make([]ChangeEvent[K, V], 0, n)
	for len(events) < n {
		select {
		case event, more := <-ch:
			if !more {
				return events, errors.New("channel closed before all events were received")
			}
			events = append(events, event)
		case <-ctx.Done():
			return events, ctx.Err()
		}
	}
	return events, nil
}

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
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/streamnative/ddmap/common/channel"
)

const DefaultWatchBuffer = 100

// Watcher delivers the change events of a Map on a channel.
//
// Events are pushed without blocking the mutating goroutine: when the buffer
// is full the event is dropped and counted. Events still buffered when the
// watcher is closed remain readable until the channel is drained.
type Watcher[K comparable, V any] struct {
	sync.Mutex
	id      uuid.UUID
	source  *Map[K, V]
	ch      chan ChangeEvent[K, V]
	dropped atomic.Int64
	closed  bool
}

// Watch subscribes a new Watcher with the given buffer size. A non-positive
// size selects DefaultWatchBuffer.
func (m *Map[K, V]) Watch(buffer int) *Watcher[K, V] {
	if buffer <= 0 {
		buffer = DefaultWatchBuffer
	}

	w := &Watcher[K, V]{
		source: m,
		ch:     make(chan ChangeEvent[K, V], buffer),
	}

	// The listener can fire as soon as it is registered
	w.Lock()
	w.id = m.OnChange(w.onChange)
	w.Unlock()

	m.watchersLock.Lock()
	m.watchers[w.id] = w
	m.watchersLock.Unlock()
	return w
}

func (w *Watcher[K, V]) ID() uuid.UUID {
	return w.id
}

func (w *Watcher[K, V]) Ch() <-chan ChangeEvent[K, V] {
	return w.ch
}

// Dropped returns the number of events lost because the buffer was full.
func (w *Watcher[K, V]) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher[K, V]) onChange(_ *Map[K, V], event ChangeEvent[K, V]) {
	w.Lock()
	defer w.Unlock()

	if w.closed {
		return
	}

	if !channel.PushNoBlock(w.ch, event) {
		w.dropped.Add(1)
		w.source.metrics.dropped()
		w.source.log.Warn(
			"Watcher buffer is full, dropping change event",
			slog.Any("watcher", w.id),
			slog.String("event", event.String()),
		)
	}
}

// Close unsubscribes the watcher and closes its channel.
func (w *Watcher[K, V]) Close() error {
	w.source.RemoveListener(w.id)

	w.source.watchersLock.Lock()
	delete(w.source.watchers, w.id)
	w.source.watchersLock.Unlock()

	w.Lock()
	defer w.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
	return nil
}

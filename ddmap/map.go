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

// Package ddmap provides Map, a thread-safe key/value container that returns
// a default value for absent keys and synchronously notifies listeners of
// every mutation.
package ddmap

import (
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/streamnative/ddmap/common/collection"
)

// Map is a key/value container with a default value and change
// notifications.
//
// Reads of an absent key return the default value; the default is never
// stored as an entry and is not counted. Every mutating call emits exactly one
// ChangeEvent, except Set calls that leave the map unchanged and Add calls
// that fail with ErrDuplicateKey.
//
// All accesses to the entries are guarded by a private lock. Events are
// dispatched after the lock is released, on the caller's goroutine, to each
// listener in registration order. Because of that, with concurrent writers
// the order in which events are delivered can differ from the order in which
// the mutations were applied, and a concurrent reader can observe a new state
// before the corresponding event has been delivered.
type Map[K comparable, V any] struct {
	lock         sync.RWMutex
	container    collection.Map[K, V]
	defaultValue V
	options      options

	listeners *listeners[K, V]

	watchersLock sync.Mutex
	watchers     map[uuid.UUID]*Watcher[K, V]

	metrics   *metrics
	closeOnce sync.Once
	log       *slog.Logger
}

// New creates an empty map that reads absent keys as defaultValue, configured
// with the given options.
func New[K comparable, V any](defaultValue V, opts ...Option) (*Map[K, V], error) {
	return newMap(collection.NewVisibleMap[K, V](), defaultValue, opts...)
}

// NewFrom creates a map holding a copy of the given entries. Entries equal to
// the default value are kept as regular entries.
func NewFrom[K comparable, V any](entries map[K]V, defaultValue V, opts ...Option) (*Map[K, V], error) {
	return newMap(collection.NewVisibleMapFrom(entries), defaultValue, opts...)
}

func newMap[K comparable, V any](container collection.Map[K, V], defaultValue V, opts ...Option) (*Map[K, V], error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	m := &Map[K, V]{
		container:    container,
		defaultValue: defaultValue,
		options:      o,
		listeners:    newListeners[K, V](),
		watchers:     make(map[uuid.UUID]*Watcher[K, V]),
		log: slog.With(
			slog.String("component", "ddmap"),
			slog.String("name", o.name),
		),
	}

	if m.metrics, err = newMetrics(o.meterProvider, o.name, func() int64 {
		return int64(m.Count())
	}); err != nil {
		return nil, errors.Wrap(err, "failed to create ddmap metrics")
	}
	return m, nil
}

func (m *Map[K, V]) Name() string {
	return m.options.name
}

func (m *Map[K, V]) Default() V {
	return m.defaultValue
}

// Get returns the value stored for key, or the default value if the key is
// absent.
func (m *Map[K, V]) Get(key K) V {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if value, found := m.container.Get(key); found {
		return value
	}
	return m.defaultValue
}

// TryGet returns the stored value and true, or the default value and false if
// the key is absent.
func (m *Map[K, V]) TryGet(key K) (V, bool) {
	value, found := m.lookup(key)
	if !found {
		return m.defaultValue, m.options.tryGetAlwaysHit
	}
	return value, true
}

func (m *Map[K, V]) ContainsKey(key K) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	_, found := m.container.Get(key)
	return found
}

// ContainsEntry reports whether key is present with a value equal to value.
func (m *Map[K, V]) ContainsEntry(key K, value V) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	current, found := m.container.Get(key)
	return found && m.options.equal(current, value)
}

// Count returns the number of entries. Absent keys read as the default value
// are never counted.
func (m *Map[K, V]) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.container.Size()
}

// Keys returns a copy of the current keys.
func (m *Map[K, V]) Keys() collection.Set[K] {
	m.lock.RLock()
	keys := m.container.Keys()
	m.lock.RUnlock()

	return collection.NewSetFrom(keys)
}

// Values returns a copy of the stored values, in no particular order.
func (m *Map[K, V]) Values() []V {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.container.Values()
}

// Snapshot returns a copy of all the entries.
func (m *Map[K, V]) Snapshot() map[K]V {
	m.lock.RLock()
	defer m.lock.RUnlock()

	snapshot := make(map[K]V, m.container.Size())
	m.container.Range(func(key K, value V) bool {
		snapshot[key] = value
		return true
	})
	return snapshot
}

// All returns a sequence over the entries. The entries are copied when the
// iteration starts; mutations made while iterating are not visible.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries() {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Enumerate returns a single-pass cursor over the entries.
func (m *Map[K, V]) Enumerate() *Enumerator[K, V] {
	return &Enumerator[K, V]{source: m}
}

func (m *Map[K, V]) entries() []entry[K, V] {
	m.lock.RLock()
	defer m.lock.RUnlock()

	entries := make([]entry[K, V], 0, m.container.Size())
	m.container.Range(func(key K, value V) bool {
		entries = append(entries, entry[K, V]{key, value})
		return true
	})
	return entries
}

// IsLocked reports whether the map's lock was held, for reading or writing,
// at the moment of the call. It never blocks.
//
// This is a diagnostic probe only: the answer can be stale as soon as the
// method returns and must not be used for synchronization.
func (m *Map[K, V]) IsLocked() bool {
	if m.lock.TryLock() {
		m.lock.Unlock()
		return false
	}
	return true
}

func (m *Map[K, V]) String() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.container.String()
}

// Add inserts a new entry. It fails with ErrDuplicateKey, without modifying
// the map or emitting an event, if the key is already present.
func (m *Map[K, V]) Add(key K, value V) error {
	if !m.add(key, value) {
		m.metrics.operation(OperationAdd, resultFailure)
		return errors.Wrapf(ErrDuplicateKey, "key %v", key)
	}

	m.metrics.operation(OperationAdd, resultSuccess)
	m.dispatch(addEvent(key, value))
	return nil
}

// Set assigns value to key.
//
// Assigning the value a key already holds is a no-op, and so is assigning
// the default value to an absent key: in both cases no event is emitted.
// Otherwise an existing key is overwritten (OperationSet) or a new entry is
// created (OperationAdd).
func (m *Map[K, V]) Set(key K, value V) {
	event, changed := m.set(key, value)
	if !changed {
		m.metrics.operation(OperationSet, resultUnchanged)
		return
	}

	m.metrics.operation(event.operation, resultSuccess)
	m.dispatch(event)
}

// Remove deletes key and reports whether it was present. An event is emitted
// in both cases.
func (m *Map[K, V]) Remove(key K) bool {
	removed := m.remove(key)

	m.metrics.operation(OperationRemove, result(removed))
	m.dispatch(removeEvent[K, V](key, removed))
	return removed
}

// RemoveEntry deletes key only if it is present with a value equal to value.
func (m *Map[K, V]) RemoveEntry(key K, value V) bool {
	removed := m.removeEntry(key, value)

	m.metrics.operation(OperationRemove, result(removed))
	m.dispatch(removeEntryEvent(key, value, removed))
	return removed
}

// Clear removes all the entries. It always emits a successful event, even if
// the map was already empty.
func (m *Map[K, V]) Clear() {
	m.clear()

	m.metrics.operation(OperationClear, resultSuccess)
	m.dispatch(clearEvent[K, V]())
}

// The helpers below are the only places that mutate the container. The lock
// is released with defer so that a panic in the equality function or in key
// hashing cannot leave the map locked.

func (m *Map[K, V]) lookup(key K) (V, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.container.Get(key)
}

func (m *Map[K, V]) add(key K, value V) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, exists := m.container.Get(key); exists {
		return false
	}
	m.container.Put(key, value)
	return true
}

func (m *Map[K, V]) set(key K, value V) (ChangeEvent[K, V], bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if current, exists := m.container.Get(key); exists {
		if m.options.equal(current, value) {
			return ChangeEvent[K, V]{}, false
		}
		m.container.Put(key, value)
		return setEvent(key, value), true
	}

	if m.options.equal(m.defaultValue, value) {
		return ChangeEvent[K, V]{}, false
	}
	m.container.Put(key, value)
	return addEvent(key, value), true
}

func (m *Map[K, V]) remove(key K) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.container.Remove(key)
}

func (m *Map[K, V]) removeEntry(key K, value V) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if current, found := m.container.Get(key); found && m.options.equal(current, value) {
		return m.container.Remove(key)
	}
	return false
}

func (m *Map[K, V]) clear() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.container.Clear()
}

// OnChange registers a listener and returns the id to unregister it with.
func (m *Map[K, V]) OnChange(listener Listener[K, V]) uuid.UUID {
	if listener == nil {
		return uuid.Nil
	}
	id := m.listeners.add(listener)
	m.log.Debug("Registered change listener", slog.Any("listener", id))
	return id
}

// RemoveListener unregisters a listener and reports whether it was
// registered. A dispatch already in progress may still invoke it.
func (m *Map[K, V]) RemoveListener(id uuid.UUID) bool {
	removed := m.listeners.remove(id)
	if removed {
		m.log.Debug("Removed change listener", slog.Any("listener", id))
	}
	return removed
}

func (m *Map[K, V]) Listeners() int {
	return m.listeners.size()
}

// Close removes all the listeners, closes the open watchers and releases the
// metrics registered for the map. The map stays usable afterward.
func (m *Map[K, V]) Close() error {
	m.watchersLock.Lock()
	watchers := make([]*Watcher[K, V], 0, len(m.watchers))
	for _, w := range m.watchers {
		watchers = append(watchers, w)
	}
	m.watchersLock.Unlock()

	var err error
	for _, w := range watchers {
		err = multierr.Append(err, w.Close())
	}

	m.listeners.clear()
	m.closeOnce.Do(func() {
		err = multierr.Append(err, m.metrics.close())
	})
	return err
}

func (m *Map[K, V]) dispatch(event ChangeEvent[K, V]) {
	listeners := m.listeners.snapshot()
	if len(listeners) == 0 {
		return
	}

	start := time.Now()
	for _, listener := range listeners {
		listener(m, event)
	}
	m.metrics.dispatch(event.operation, len(listeners), time.Since(start))
}

func result(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}

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
	"sync"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
	"github.com/google/uuid"
)

// Listener is notified of every mutation of a Map. It runs synchronously on
// the goroutine that performed the mutation, after the map's lock has been
// released, so it may freely read or write the sender.
//
// A panicking listener is not recovered: the panic reaches the caller of the
// mutating method and the listeners registered after it are not notified of
// that event. Listeners that can fail must handle their own errors.
type Listener[K comparable, V any] func(sender *Map[K, V], event ChangeEvent[K, V])

// listeners keeps the registered callbacks in registration order.
type listeners[K comparable, V any] struct {
	sync.Mutex
	registered *linkedhashmap.Map[uuid.UUID, Listener[K, V]]
}

func newListeners[K comparable, V any]() *listeners[K, V] {
	return &listeners[K, V]{
		registered: linkedhashmap.New[uuid.UUID, Listener[K, V]](),
	}
}

func (l *listeners[K, V]) add(listener Listener[K, V]) uuid.UUID {
	id := uuid.New()

	l.Lock()
	defer l.Unlock()
	l.registered.Put(id, listener)
	return id
}

func (l *listeners[K, V]) remove(id uuid.UUID) bool {
	l.Lock()
	defer l.Unlock()
	if _, found := l.registered.Get(id); !found {
		return false
	}
	l.registered.Remove(id)
	return true
}

// snapshot returns the current listeners, in registration order. The
// returned slice is not affected by later registrations or removals.
func (l *listeners[K, V]) snapshot() []Listener[K, V] {
	l.Lock()
	defer l.Unlock()
	if l.registered.Empty() {
		return nil
	}
	return l.registered.Values()
}

func (l *listeners[K, V]) size() int {
	l.Lock()
	defer l.Unlock()
	return l.registered.Size()
}

func (l *listeners[K, V]) clear() {
	l.Lock()
	defer l.Unlock()
	l.registered.Clear()
}

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

package collection

import "golang.org/x/exp/maps"

// Map is an unsynchronized key/value container. Callers are responsible
// for guarding it when it is shared between goroutines.
type Map[K comparable, V any] interface {
	// Put stores the value and reports whether the key was newly created.
	Put(key K, value V) (created bool)
	Get(key K) (value V, found bool)
	// Remove deletes the key and reports whether it was present.
	Remove(key K) (removed bool)
	Keys() []K
	Values() []V
	// Range calls f for each entry until f returns false.
	Range(f func(key K, value V) bool)
	Empty() bool
	Size() int
	Clear()
	String() string
}

func NewVisibleMap[K comparable, V any]() Map[K, V] {
	return &visibleMap[K, V]{
		container: make(map[K]V),
	}
}

// NewVisibleMapFrom returns a map holding a copy of the given entries.
func NewVisibleMapFrom[K comparable, V any](entries map[K]V) Map[K, V] {
	if entries == nil {
		return NewVisibleMap[K, V]()
	}
	m := &visibleMap[K, V]{
		container: maps.Clone(entries),
	}
	m.size.Store(int32(len(entries)))
	return m
}

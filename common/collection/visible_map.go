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

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// visibleMap is a plain Go map whose size is kept in an atomic counter,
// so that Size and Empty can be observed without holding the lock that
// guards the container itself.
//
// K: The type of the key, which must be comparable.
// V: The type of the value, which can be any type (any).
//
// Writes (Put, Remove, Clear) and reads of the container are not
// synchronized; the owner must serialize them.
type visibleMap[K comparable, V any] struct {
	container map[K]V
	size      atomic.Int32
}

func (v *visibleMap[K, V]) Put(key K, value V) (created bool) {
	if _, exist := v.container[key]; !exist {
		v.size.Add(1)
		created = true
	}
	v.container[key] = value
	return created
}

func (v *visibleMap[K, V]) Get(key K) (value V, found bool) {
	value, found = v.container[key]
	return value, found
}

func (v *visibleMap[K, V]) Remove(key K) (removed bool) {
	if _, exist := v.container[key]; !exist {
		return false
	}
	delete(v.container, key)
	v.size.Add(-1)
	return true
}

func (v *visibleMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(v.container))
	for key := range v.container {
		keys = append(keys, key)
	}
	return keys
}

func (v *visibleMap[K, V]) Values() []V {
	values := make([]V, 0, len(v.container))
	for _, value := range v.container {
		values = append(values, value)
	}
	return values
}

func (v *visibleMap[K, V]) Range(f func(key K, value V) bool) {
	for key, value := range v.container {
		if !f(key, value) {
			return
		}
	}
}

func (v *visibleMap[K, V]) Empty() bool {
	return v.size.Load() == 0
}

func (v *visibleMap[K, V]) Size() int {
	return int(v.size.Load())
}

func (v *visibleMap[K, V]) Clear() {
	v.container = make(map[K]V)
	v.size.Store(0)
}

func (v *visibleMap[K, V]) String() string {
	var builder strings.Builder
	builder.WriteString("{")

	first := true
	for k, val := range v.container {
		if !first {
			builder.WriteString(", ")
		}
		builder.WriteString(fmt.Sprintf("%v: %v", k, val))
		first = false
	}
	builder.WriteString("}")
	return builder.String()
}

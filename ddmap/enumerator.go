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

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Enumerator is a single-pass cursor over the entries of a Map.
//
// The entries are copied on the first call to Next, so the enumeration is not
// affected by later mutations. Once exhausted, an Enumerator stays exhausted:
// create a new one with Map.Enumerate to start over.
type Enumerator[K comparable, V any] struct {
	source  *Map[K, V]
	entries []entry[K, V]
	started bool
	index   int
}

// Next advances the cursor and reports whether an entry is available.
func (e *Enumerator[K, V]) Next() bool {
	if !e.started {
		e.entries = e.source.entries()
		e.started = true
		e.index = -1
	}

	if e.index+1 >= len(e.entries) {
		e.index = len(e.entries)
		return false
	}
	e.index++
	return true
}

// Key returns the key at the cursor. It is the zero value if Next has not
// been called or has returned false.
func (e *Enumerator[K, V]) Key() K {
	if !e.valid() {
		var zero K
		return zero
	}
	return e.entries[e.index].key
}

// Value returns the value at the cursor. It is the zero value if Next has not
// been called or has returned false.
func (e *Enumerator[K, V]) Value() V {
	if !e.valid() {
		var zero V
		return zero
	}
	return e.entries[e.index].value
}

func (e *Enumerator[K, V]) valid() bool {
	return e.started && e.index >= 0 && e.index < len(e.entries)
}

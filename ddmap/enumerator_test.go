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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_All(t *testing.T) {
	m, _ := newStringMap(t)
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")

	seen := map[string]string{}
	for key, value := range m.All() {
		seen[key] = value
		// Mutations while iterating do not change the sequence
		m.Set("d", "4")
		m.Remove("a")
	}
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, seen)

	count := 0
	for range m.All() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestEnumerator(t *testing.T) {
	m, _ := newStringMap(t)
	m.Set("a", "1")

	e := m.Enumerate()
	assert.Equal(t, "", e.Key())
	assert.Equal(t, "", e.Value())

	// The snapshot is taken when the enumeration starts
	m.Set("b", "2")

	seen := map[string]string{}
	for e.Next() {
		seen[e.Key()] = e.Value()
		m.Set("c", "3")
	}
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, seen)

	// Exhausted enumerators are not restarted
	assert.False(t, e.Next())
	assert.Equal(t, "", e.Key())
	assert.Equal(t, "", e.Value())

	assert.Equal(t, 3, countEntries(m.Enumerate()))
}

func TestEnumerator_Empty(t *testing.T) {
	m, _ := newStringMap(t)

	e := m.Enumerate()
	assert.False(t, e.Next())
	assert.False(t, e.Next())
}

func countEntries[K comparable, V any](e *Enumerator[K, V]) int {
	n := 0
	for e.Next() {
		n++
	}
	return n
}

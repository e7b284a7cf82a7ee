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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleMap(t *testing.T) {
	vm := NewVisibleMap[string, int]()

	assert.Equal(t, 0, vm.Size())
	assert.True(t, vm.Empty())
	assert.True(t, vm.Put("one", 1))
	val, found := vm.Get("one")
	assert.Equal(t, 1, val)
	assert.True(t, found)

	// test repeat put
	assert.False(t, vm.Put("one", 10))
	val, found = vm.Get("one")
	assert.Equal(t, 10, val)
	assert.True(t, found)
	assert.Equal(t, 1, vm.Size())

	vm.Put("two", 2)
	vm.Put("three", 3)
	assert.Equal(t, 3, vm.Size())

	assert.ElementsMatch(t, []string{"one", "two", "three"}, vm.Keys())
	assert.ElementsMatch(t, []int{10, 2, 3}, vm.Values())

	assert.True(t, vm.Remove("two"))
	assert.False(t, vm.Remove("two"))
	_, found = vm.Get("two")
	assert.False(t, found)
	assert.Equal(t, 2, vm.Size())

	vm.Clear()
	assert.Equal(t, 0, vm.Size())
	assert.True(t, vm.Empty())

	vm.Put("four", 4)
	assert.Equal(t, "{four: 4}", vm.String())

	vm.Clear()
	assert.Equal(t, "{}", vm.String())
}

func TestVisibleMapFrom(t *testing.T) {
	source := map[string]int{"a": 1, "b": 2}
	vm := NewVisibleMapFrom(source)
	assert.Equal(t, 2, vm.Size())

	// The source is copied, not referenced
	source["c"] = 3
	assert.Equal(t, 2, vm.Size())
	_, found := vm.Get("c")
	assert.False(t, found)
}

func TestVisibleMapFromNil(t *testing.T) {
	vm := NewVisibleMapFrom[string, int](nil)
	assert.True(t, vm.Empty())
	assert.True(t, vm.Put("a", 1))
	assert.Equal(t, 1, vm.Size())
}

func TestVisibleMapRange(t *testing.T) {
	vm := NewVisibleMapFrom(map[int]int{1: 1, 2: 2, 3: 3})

	sum := 0
	vm.Range(func(k, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 6, sum)

	visited := 0
	vm.Range(func(int, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

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

import "fmt"

type Operation int

const (
	OperationAdd Operation = iota
	OperationRemove
	OperationSet
	OperationClear
)

func (o Operation) String() string {
	switch o {
	case OperationAdd:
		return "add"
	case OperationRemove:
		return "remove"
	case OperationSet:
		return "set"
	case OperationClear:
		return "clear"
	}
	return fmt.Sprintf("unknown(%d)", int(o))
}

// ChangeEvent describes one completed or attempted mutation of a Map.
// Events are passed by value and never modified after creation.
type ChangeEvent[K comparable, V any] struct {
	key       K
	value     V
	hasKey    bool
	hasValue  bool
	operation Operation
	success   bool
}

// Key returns the key involved in the mutation. It is absent for Clear.
func (e ChangeEvent[K, V]) Key() (K, bool) {
	return e.key, e.hasKey
}

// Value returns the value involved in the mutation. It is absent for
// Clear and for Remove by key.
func (e ChangeEvent[K, V]) Value() (V, bool) {
	return e.value, e.hasValue
}

func (e ChangeEvent[K, V]) Operation() Operation {
	return e.operation
}

// Success reports whether the underlying mapping actually changed.
func (e ChangeEvent[K, V]) Success() bool {
	return e.success
}

func (e ChangeEvent[K, V]) String() string {
	s := fmt.Sprintf("{operation:%s", e.operation)
	if e.hasKey {
		s += fmt.Sprintf(" key:%v", e.key)
	}
	if e.hasValue {
		s += fmt.Sprintf(" value:%v", e.value)
	}
	return s + fmt.Sprintf(" success:%t}", e.success)
}

func addEvent[K comparable, V any](key K, value V) ChangeEvent[K, V] {
	return ChangeEvent[K, V]{
		key:       key,
		value:     value,
		hasKey:    true,
		hasValue:  true,
		operation: OperationAdd,
		success:   true,
	}
}

func setEvent[K comparable, V any](key K, value V) ChangeEvent[K, V] {
	return ChangeEvent[K, V]{
		key:       key,
		value:     value,
		hasKey:    true,
		hasValue:  true,
		operation: OperationSet,
		success:   true,
	}
}

func removeEvent[K comparable, V any](key K, removed bool) ChangeEvent[K, V] {
	return ChangeEvent[K, V]{
		key:       key,
		hasKey:    true,
		operation: OperationRemove,
		success:   removed,
	}
}

func removeEntryEvent[K comparable, V any](key K, value V, removed bool) ChangeEvent[K, V] {
	return ChangeEvent[K, V]{
		key:       key,
		value:     value,
		hasKey:    true,
		hasValue:  true,
		operation: OperationRemove,
		success:   removed,
	}
}

func clearEvent[K comparable, V any]() ChangeEvent[K, V] {
	return ChangeEvent[K, V]{
		operation: OperationClear,
		success:   true,
	}
}

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

// Package legacy exposes a ddmap.Map through an untyped key/value contract,
// for callers that only handle keys and values as `any`.
//
// The adapter holds no state of its own: every call converts its arguments
// to the map's declared types and forwards to the wrapped map. Arguments of
// the wrong type are rejected with an *InvalidCastError.
package legacy

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/streamnative/ddmap/ddmap"
)

// Entry is an untyped key/value pair.
type Entry struct {
	Key   any
	Value any
}

// Event is the untyped form of a ddmap.ChangeEvent. Key and Value are nil
// when absent from the original event.
type Event struct {
	Key       any
	Value     any
	Operation ddmap.Operation
	Success   bool
}

type UntypedMap[K comparable, V any] struct {
	m *ddmap.Map[K, V]
}

func Wrap[K comparable, V any](m *ddmap.Map[K, V]) *UntypedMap[K, V] {
	return &UntypedMap[K, V]{m: m}
}

func (u *UntypedMap[K, V]) Unwrap() *ddmap.Map[K, V] {
	return u.m
}

func (u *UntypedMap[K, V]) Get(key any) (any, error) {
	k, err := castKey[K](key)
	if err != nil {
		return nil, err
	}
	return u.m.Get(k), nil
}

func (u *UntypedMap[K, V]) TryGet(key any) (any, bool, error) {
	k, err := castKey[K](key)
	if err != nil {
		return nil, false, err
	}
	value, found := u.m.TryGet(k)
	return value, found, nil
}

func (u *UntypedMap[K, V]) Set(key, value any) error {
	k, v, err := castEntry[K, V](key, value)
	if err != nil {
		return err
	}
	u.m.Set(k, v)
	return nil
}

func (u *UntypedMap[K, V]) Add(key, value any) error {
	k, v, err := castEntry[K, V](key, value)
	if err != nil {
		return err
	}
	return u.m.Add(k, v)
}

func (u *UntypedMap[K, V]) Remove(key any) (bool, error) {
	k, err := castKey[K](key)
	if err != nil {
		return false, err
	}
	return u.m.Remove(k), nil
}

// RemoveEntry removes the entry only if the key holds an equal value.
func (u *UntypedMap[K, V]) RemoveEntry(entry Entry) (bool, error) {
	k, v, err := castEntry[K, V](entry.Key, entry.Value)
	if err != nil {
		return false, err
	}
	return u.m.RemoveEntry(k, v), nil
}

func (u *UntypedMap[K, V]) ContainsKey(key any) (bool, error) {
	k, err := castKey[K](key)
	if err != nil {
		return false, err
	}
	return u.m.ContainsKey(k), nil
}

func (u *UntypedMap[K, V]) Contains(entry Entry) (bool, error) {
	k, v, err := castEntry[K, V](entry.Key, entry.Value)
	if err != nil {
		return false, err
	}
	return u.m.ContainsEntry(k, v), nil
}

func (u *UntypedMap[K, V]) Clear() {
	u.m.Clear()
}

func (u *UntypedMap[K, V]) Count() int {
	return u.m.Count()
}

func (u *UntypedMap[K, V]) Keys() []any {
	keys := u.m.Keys().ToSlice()
	res := make([]any, 0, len(keys))
	for _, k := range keys {
		res = append(res, k)
	}
	return res
}

func (u *UntypedMap[K, V]) Values() []any {
	values := u.m.Values()
	res := make([]any, 0, len(values))
	for _, v := range values {
		res = append(res, v)
	}
	return res
}

// CopyTo copies a snapshot of the entries into dst, starting at index.
func (u *UntypedMap[K, V]) CopyTo(dst []Entry, index int) error {
	if index < 0 || index > len(dst) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", index, len(dst))
	}

	snapshot := u.m.Snapshot()
	if len(dst)-index < len(snapshot) {
		return errors.Wrapf(ErrInsufficientRoom, "%d entries, %d available", len(snapshot), len(dst)-index)
	}
	for k, v := range snapshot {
		dst[index] = Entry{Key: k, Value: v}
		index++
	}
	return nil
}

func (*UntypedMap[K, V]) IsReadOnly() bool {
	return false
}

func (*UntypedMap[K, V]) IsFixedSize() bool {
	return false
}

func (*UntypedMap[K, V]) IsSynchronized() bool {
	return true
}

// SyncRoot always fails: the lock guarding the map is private and callers
// cannot synchronize on it.
func (*UntypedMap[K, V]) SyncRoot() (any, error) {
	return nil, errors.Wrap(ErrNotSupported, "SyncRoot: the map lock is not exposed")
}

func (u *UntypedMap[K, V]) Enumerate() *Enumerator[K, V] {
	return &Enumerator[K, V]{inner: u.m.Enumerate()}
}

// OnChange registers a listener receiving untyped events.
func (u *UntypedMap[K, V]) OnChange(listener func(event Event)) uuid.UUID {
	if listener == nil {
		return uuid.Nil
	}
	return u.m.OnChange(func(_ *ddmap.Map[K, V], event ddmap.ChangeEvent[K, V]) {
		listener(toEvent(event))
	})
}

func (u *UntypedMap[K, V]) RemoveListener(id uuid.UUID) bool {
	return u.m.RemoveListener(id)
}

func toEvent[K comparable, V any](event ddmap.ChangeEvent[K, V]) Event {
	e := Event{
		Operation: event.Operation(),
		Success:   event.Success(),
	}
	if key, ok := event.Key(); ok {
		e.Key = key
	}
	if value, ok := event.Value(); ok {
		e.Value = value
	}
	return e
}

func castEntry[K comparable, V any](key, value any) (K, V, error) {
	var v V
	k, err := castKey[K](key)
	if err != nil {
		return k, v, err
	}
	v, err = cast[V]("value", value)
	return k, v, err
}

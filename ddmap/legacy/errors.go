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

package legacy

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrNotSupported is returned by the members of the untyped contract
	// that would break the guarantees of the underlying map.
	ErrNotSupported = errors.New("ddmap: operation not supported")

	ErrIndexOutOfRange  = errors.New("ddmap: index out of range")
	ErrInsufficientRoom = errors.New("ddmap: destination is too small")
)

// InvalidCastError reports a key or value that does not have the type
// declared by the wrapped map.
type InvalidCastError struct {
	// What is either "key" or "value".
	What     string
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *InvalidCastError) Error() string {
	actual := "nil"
	if e.Actual != nil {
		actual = e.Actual.String()
	}
	return fmt.Sprintf("ddmap: cannot use %s of type %s as %s", e.What, actual, e.Expected)
}

// cast converts an untyped argument to T. A nil argument is accepted only
// when T can hold nil.
func cast[T any](what string, v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}

	var zero T
	expected := reflect.TypeOf(&zero).Elem()
	if v == nil && nilable(expected) {
		return zero, nil
	}
	return zero, &InvalidCastError{
		What:     what,
		Expected: expected,
		Actual:   reflect.TypeOf(v),
	}
}

// castKey is cast for keys. When K is an interface type, the dynamic type of
// the key must also be comparable, or it could not be hashed by the map.
func castKey[K comparable](key any) (K, error) {
	k, err := cast[K]("key", key)
	if err != nil {
		return k, err
	}
	if key != nil && !reflect.TypeOf(key).Comparable() {
		var zero K
		return zero, &InvalidCastError{
			What:     "key",
			Expected: reflect.TypeOf(&zero).Elem(),
			Actual:   reflect.TypeOf(key),
		}
	}
	return k, nil
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

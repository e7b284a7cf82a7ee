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
	"github.com/pkg/errors"

	"github.com/streamnative/ddmap/ddmap"
)

// Enumerator is a single-pass cursor yielding untyped entries.
type Enumerator[K comparable, V any] struct {
	inner *ddmap.Enumerator[K, V]
}

func (e *Enumerator[K, V]) Next() bool {
	return e.inner.Next()
}

func (e *Enumerator[K, V]) Key() any {
	return e.inner.Key()
}

func (e *Enumerator[K, V]) Value() any {
	return e.inner.Value()
}

func (e *Enumerator[K, V]) Entry() Entry {
	return Entry{Key: e.inner.Key(), Value: e.inner.Value()}
}

// Reset always fails: enumerations cannot be restarted. Use
// UntypedMap.Enumerate to start a new one.
func (*Enumerator[K, V]) Reset() error {
	return errors.Wrap(ErrNotSupported, "Reset: enumerators are single-pass")
}

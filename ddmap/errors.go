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

import "github.com/pkg/errors"

// ErrDuplicateKey is returned by Add when the key is already present.
// Add never overwrites an existing entry.
var ErrDuplicateKey = errors.New("ddmap: an entry with the same key already exists")

var (
	ErrInvalidOptionName  = errors.New("Name cannot be empty")
	ErrInvalidOptionEqual = errors.New("Equal function cannot be nil")
)

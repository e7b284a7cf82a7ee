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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnative/ddmap/common/channel"
)

func TestWatcher(t *testing.T) {
	m, _ := newStringMap(t)
	w := m.Watch(10)
	assert.Equal(t, 2, m.Listeners())

	m.Set("x", "A")
	m.Set("x", "A")
	m.Remove("x")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	events, err := readEvents(ctx, w.Ch(), 2)
	require.NoError(t, err)
	assert.Equal(t, []ChangeEvent[string, string]{
		addEvent("x", "A"),
		removeEvent[string, string]("x", true),
	}, events)
	assert.EqualValues(t, 0, w.Dropped())

	assert.NoError(t, w.Close())
	assert.Equal(t, 1, m.Listeners())
	_, more := <-w.Ch()
	assert.False(t, more)

	// Closing twice is harmless
	assert.NoError(t, w.Close())
}

func TestWatcher_DropsWhenFull(t *testing.T) {
	m, _ := newStringMap(t)
	w := m.Watch(1)
	defer w.Close()

	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")

	assert.EqualValues(t, 2, w.Dropped())
	event, ok := channel.Poll(w.Ch())
	assert.True(t, ok)
	assert.Equal(t, addEvent("a", "1"), event)
}

func TestWatcher_BufferedEventsSurviveClose(t *testing.T) {
	m, _ := newStringMap(t)
	w := m.Watch(0)

	m.Set("a", "1")
	m.Clear()
	assert.NoError(t, w.Close())

	// No further events after the close
	m.Set("b", "2")

	var events []ChangeEvent[string, string]
	for event := range w.Ch() {
		events = append(events, event)
	}
	assert.Equal(t, []ChangeEvent[string, string]{
		addEvent("a", "1"),
		clearEvent[string, string](),
	}, events)
	assert.Equal(t, DefaultWatchBuffer, cap(w.Ch()))
}

func TestWatcher_ClosedWithMap(t *testing.T) {
	m, err := New[string, int](0)
	require.NoError(t, err)

	w1 := m.Watch(1)
	w2 := m.Watch(1)
	assert.NotEqual(t, w1.ID(), w2.ID())

	assert.NoError(t, m.Close())
	assert.Equal(t, 0, m.Listeners())

	_, more := <-w1.Ch()
	assert.False(t, more)
	_, more = <-w2.Ch()
	assert.False(t, more)
}

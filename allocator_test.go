// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorNextReusesReleasedId(t *testing.T) {
	a := newAllocator(1, 4)

	first, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, 1, first)

	second, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, 2, second)

	a.release(first)

	third, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, 1, third, "released id should be reused before growing")
}

func TestAllocatorExhausted(t *testing.T) {
	a := newAllocator(1, 2)

	_, ok := a.next()
	require.True(t, ok)
	_, ok = a.next()
	require.True(t, ok)

	_, ok = a.next()
	assert.False(t, ok)
}

func TestAllocatorReleaseOutOfRangeIsNoop(t *testing.T) {
	a := newAllocator(1, 2)
	a.release(0)
	a.release(99)

	id, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

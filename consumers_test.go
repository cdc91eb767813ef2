// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumersAddAndSend(t *testing.T) {
	subs := makeConsumers(nopLogger{})
	ch := subs.add("tag-1", nil)

	ok := subs.send("tag-1", Delivery{ConsumerTag: "tag-1"})
	require.True(t, ok)

	d := <-ch
	assert.Equal(t, "tag-1", d.ConsumerTag)
}

func TestConsumersSendUnknownTagIsNoop(t *testing.T) {
	subs := makeConsumers(nopLogger{})
	ok := subs.send("missing", Delivery{})
	assert.False(t, ok)
}

func TestConsumersCancelClosesChannelAndReturnsCallback(t *testing.T) {
	subs := makeConsumers(nopLogger{})
	var cancelledWith string
	onCancel := func(tag string) { cancelledWith = tag }

	ch := subs.add("tag-1", onCancel)

	cb, found := subs.cancel("tag-1")
	require.True(t, found)
	require.NotNil(t, cb)
	cb("tag-1")
	assert.Equal(t, "tag-1", cancelledWith)

	_, open := <-ch
	assert.False(t, open)
}

func TestConsumersCancelUnknownTagNotFound(t *testing.T) {
	subs := makeConsumers(nopLogger{})
	_, found := subs.cancel("missing")
	assert.False(t, found)
}

func TestConsumersCloseClosesAllChannels(t *testing.T) {
	subs := makeConsumers(nopLogger{})
	a := subs.add("a", nil)
	b := subs.add("b", nil)

	subs.close()

	_, openA := <-a
	_, openB := <-b
	assert.False(t, openA)
	assert.False(t, openB)
}

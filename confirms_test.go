// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmsPublishAssignsSequentialTags(t *testing.T) {
	c := newConfirms()
	assert.Equal(t, uint64(1), c.publish())
	assert.Equal(t, uint64(2), c.publish())
	assert.Equal(t, uint64(3), c.publish())
}

func TestConfirmsWaiterResolvesOnAck(t *testing.T) {
	c := newConfirms()
	tag := c.publish()
	w := c.waiter(tag)

	c.confirm(tag, false, true)

	select {
	case r := <-w:
		require.Nil(t, r.Err)
		assert.Equal(t, tag, r.Confirmation.DeliveryTag)
		assert.True(t, r.Confirmation.Ack)
	default:
		t.Fatal("waiter did not resolve")
	}
}

func TestConfirmsMultipleResolvesAllOutstanding(t *testing.T) {
	c := newConfirms()
	t1 := c.publish()
	t2 := c.publish()
	t3 := c.publish()

	w1 := c.waiter(t1)
	w2 := c.waiter(t2)
	w3 := c.waiter(t3)

	c.confirm(t3, true, true)

	for _, w := range []<-chan confirmResult{w1, w2, w3} {
		select {
		case r := <-w:
			require.Nil(t, r.Err)
			assert.True(t, r.Confirmation.Ack)
		default:
			t.Fatal("expected waiter to resolve under multiple")
		}
	}
}

func TestConfirmsListenReceivesAckAndNack(t *testing.T) {
	c := newConfirms()
	ack := make(chan uint64, 1)
	nack := make(chan uint64, 1)
	c.listen(ack, nack)

	good := c.publish()
	bad := c.publish()

	c.confirm(good, false, true)
	c.confirm(bad, false, false)

	assert.Equal(t, good, <-ack)
	assert.Equal(t, bad, <-nack)
}

func TestConfirmsListenPublishReceivesConfirmation(t *testing.T) {
	c := newConfirms()
	pub := make(chan Confirmation, 1)
	c.listenPublish(pub)

	tag := c.publish()
	c.confirm(tag, false, true)

	conf := <-pub
	assert.Equal(t, tag, conf.DeliveryTag)
	assert.True(t, conf.Ack)
}

func TestConfirmsShutdownReleasesOutstandingWaitersWithCloseError(t *testing.T) {
	c := newConfirms()
	tag := c.publish()
	w := c.waiter(tag)

	closeErr := &Error{Code: ChannelError, Reason: "channel closed"}
	c.shutdown(closeErr)

	r, ok := <-w
	require.True(t, ok)
	require.NotNil(t, r.Err)
	assert.Equal(t, closeErr, r.Err)
}

func TestConfirmsShutdownWithNilErrorFallsBackToErrClosed(t *testing.T) {
	c := newConfirms()
	tag := c.publish()
	w := c.waiter(tag)

	c.shutdown(nil)

	r := <-w
	require.NotNil(t, r.Err)
	assert.Equal(t, ErrClosed, r.Err)
}

func TestConfirmsCloseClosesRegisteredChannels(t *testing.T) {
	c := newConfirms()
	ack := make(chan uint64, 1)
	nack := make(chan uint64, 1)
	pub := make(chan Confirmation, 1)
	c.listen(ack, nack)
	c.listenPublish(pub)

	c.close()

	_, ok := <-ack
	assert.False(t, ok)
	_, ok = <-nack
	assert.False(t, ok)
	_, ok = <-pub
	assert.False(t, ok)
}

// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openFakeChannel drives a full connection handshake plus a channel.open
// round trip over net.Pipe, returning the opened Channel and the server
// side of the pipe for further scripting.
func openFakeChannel(t *testing.T) (*Channel, net.Conn) {
	t.Helper()

	conn, server := dialFake(t)

	openDone := make(chan struct{})
	go func() {
		defer close(openDone)
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*channelOpen)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: f.ChannelId, Method: &channelOpenOk{}})
	}()

	ch, err := conn.Channel()
	require.NoError(t, err)
	<-openDone

	return ch, server
}

func TestChannelQueueDeclareReturnsQueue(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		decl, ok := f.Method.(*queueDeclare)
		require.True(t, ok)
		assert.Equal(t, "orders", decl.Queue)
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &queueDeclareOk{
			Queue:         "orders",
			MessageCount:  3,
			ConsumerCount: 1,
		}})
	}()

	q, err := ch.QueueDeclare("orders", true, false, false, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "orders", q.Name)
	assert.Equal(t, 3, q.Messages)
	assert.Equal(t, 1, q.Consumers)
}

func TestChannelQueueDeclareNoWaitSkipsReply(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	read := make(chan *queueDeclare, 1)
	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		read <- f.Method.(*queueDeclare)
	}()

	_, err := ch.QueueDeclare("orders", true, false, false, true, nil)
	require.NoError(t, err)

	decl := <-read
	assert.True(t, decl.NoWait)
}

func TestChannelConsumeDeliversMessages(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		consume, ok := f.Method.(*basicConsume)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &basicConsumeOk{
			ConsumerTag: consume.ConsumerTag,
		}})

		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &basicDeliver{
			ConsumerTag: consume.ConsumerTag,
			DeliveryTag: 1,
			Exchange:    "orders",
			RoutingKey:  "created",
		}})
		serverWriteFrame(t, server, &headerFrame{
			ChannelId:  ch.id,
			ClassId:    classBasic,
			Size:       5,
			Properties: properties{ContentType: "text/plain"},
		})
		serverWriteFrame(t, server, &bodyFrame{ChannelId: ch.id, Body: []byte("hello")})
	}()

	deliveries, err := ch.Consume("orders", "", false, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, uint64(1), d.DeliveryTag)
		assert.Equal(t, "orders", d.Exchange)
		assert.Equal(t, "created", d.RoutingKey)
		assert.Equal(t, []byte("hello"), d.Body)
		assert.Equal(t, "text/plain", d.ContentType)
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never arrived")
	}
}

func TestChannelPublishConfirmResolves(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*confirmSelect)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &confirmSelectOk{}})

		serverReadFrame(t, server) // basic.publish method
		serverReadFrame(t, server) // header
		serverReadFrame(t, server) // body

		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &basicAck{
			DeliveryTag: 1,
		}})
	}()

	require.NoError(t, ch.Confirm(false))

	conf, err := ch.PublishConfirm("orders", "created", false, false, Publishing{
		ContentType: "application/json",
		Body:        []byte(`{}`),
	}, time.Second)
	require.NoError(t, err)
	assert.True(t, conf.Ack)
	assert.Equal(t, uint64(1), conf.DeliveryTag)
}

func TestChannelPublishConfirmFailsWithCloseErrorOnShutdown(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*confirmSelect)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &confirmSelectOk{}})

		serverReadFrame(t, server) // basic.publish method
		serverReadFrame(t, server) // header
		serverReadFrame(t, server) // body

		// broker never acks; close the channel out from under the waiting
		// PublishConfirm instead.
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &channelClose{
			ReplyCode: ChannelError,
			ReplyText: "broker going away",
		}})
		f = serverReadFrame(t, server).(*methodFrame)
		_, ok = f.Method.(*channelCloseOk)
		require.True(t, ok)
	}()

	require.NoError(t, ch.Confirm(false))

	conf, err := ch.PublishConfirm("orders", "created", false, false, Publishing{
		ContentType: "application/json",
		Body:        []byte(`{}`),
	}, 2*time.Second)

	require.Error(t, err)
	amqpErr, ok := err.(*Error)
	require.True(t, ok, "expected a *Error carrying the channel's close reason")
	assert.Equal(t, ChannelError, amqpErr.Code)
	assert.Equal(t, "broker going away", amqpErr.Reason)
	assert.Equal(t, Confirmation{}, conf)
}

func TestChannelGetEmptyReturnsFalse(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*basicGet)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &basicGetEmpty{}})
	}()

	_, ok, err := ch.Get("orders", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChannelNotifyCloseFiresOnChannelLevelClose(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	notify := ch.NotifyClose(make(chan *Error, 1))

	go func() {
		serverWriteFrame(t, server, &methodFrame{ChannelId: ch.id, Method: &channelClose{
			ReplyCode: NotFound,
			ReplyText: "no queue",
		}})
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*channelCloseOk)
		require.True(t, ok)
	}()

	select {
	case err := <-notify:
		require.NotNil(t, err)
		assert.Equal(t, NotFound, err.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyClose never fired")
	}
}

func TestChannelAckNackRejectSendCorrectMethods(t *testing.T) {
	ch, server := openFakeChannel(t)
	defer server.Close()

	results := make(chan message, 3)
	go func() {
		for i := 0; i < 3; i++ {
			results <- serverReadFrame(t, server).(*methodFrame).Method
		}
	}()

	require.NoError(t, ch.Ack(1, false))
	require.NoError(t, ch.Nack(2, false, true))
	require.NoError(t, ch.Reject(3, true))

	ack := <-results
	nack := <-results
	reject := <-results

	assert.IsType(t, &basicAck{}, ack)
	assert.IsType(t, &basicNack{}, nack)
	assert.IsType(t, &basicReject{}, reject)
}

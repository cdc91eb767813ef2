// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeDeclareBitPacking(t *testing.T) {
	in := &exchangeDeclare{
		Exchange:   "orders",
		Type:       ExchangeTopic,
		Passive:    false,
		Durable:    true,
		AutoDelete: false,
		Internal:   true,
		NoWait:     false,
		Arguments:  Table{"x-ha-policy": "all"},
	}

	var buf bytes.Buffer
	require.NoError(t, in.write(&buf))

	out := &exchangeDeclare{}
	require.NoError(t, out.read(&buf))

	assert.Equal(t, in.Exchange, out.Exchange)
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, in.Passive, out.Passive)
	assert.Equal(t, in.Durable, out.Durable)
	assert.Equal(t, in.AutoDelete, out.AutoDelete)
	assert.Equal(t, in.Internal, out.Internal)
	assert.Equal(t, in.NoWait, out.NoWait)
	assert.Equal(t, "all", out.Arguments["x-ha-policy"])
}

func TestBasicNackMultipleRequeue(t *testing.T) {
	in := &basicNack{DeliveryTag: 42, Multiple: true, Requeue: false}

	var buf bytes.Buffer
	require.NoError(t, in.write(&buf))

	out := &basicNack{}
	require.NoError(t, out.read(&buf))

	assert.Equal(t, uint64(42), out.DeliveryTag)
	assert.True(t, out.Multiple)
	assert.False(t, out.Requeue)
}

func TestBasicPublishCarriesContent(t *testing.T) {
	var pub message = &basicPublish{
		Exchange:   "orders",
		RoutingKey: "created",
		Properties: properties{ContentType: "application/json"},
		Body:       []byte(`{"id":1}`),
	}

	wc, ok := pub.(messageWithContent)
	require.True(t, ok, "basicPublish must implement messageWithContent")

	props, body := wc.getContent()
	assert.Equal(t, "application/json", props.ContentType)
	assert.Equal(t, []byte(`{"id":1}`), body)
}

func TestNoWaitSuppressesWait(t *testing.T) {
	assert.True(t, (&queueDeclare{NoWait: false}).wait())
	assert.False(t, (&queueDeclare{NoWait: true}).wait())
}

func TestNewMethodKnownAndUnknown(t *testing.T) {
	msg, err := newMethod(classBasic, 40)
	require.NoError(t, err)
	assert.IsType(t, &basicPublish{}, msg)

	_, err = newMethod(classBasic, 9999)
	assert.Error(t, err)
}

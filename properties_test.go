// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesRoundTrip(t *testing.T) {
	in := properties{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		Headers:         Table{"x-retry": int32(3)},
		DeliveryMode:    Persistent,
		Priority:        5,
		CorrelationId:   "corr-1",
		ReplyTo:         "replies",
		Expiration:      "60000",
		MessageId:       "msg-1",
		Timestamp:       time.Unix(1700000000, 0),
		Type:            "order.created",
		UserId:          "guest",
		AppId:           "orders",
	}

	var buf bytes.Buffer
	require.NoError(t, writeProperties(&buf, in))

	out, err := readProperties(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, in.ContentType, out.ContentType)
	assert.Equal(t, in.ContentEncoding, out.ContentEncoding)
	assert.Equal(t, in.DeliveryMode, out.DeliveryMode)
	assert.Equal(t, in.Priority, out.Priority)
	assert.Equal(t, in.CorrelationId, out.CorrelationId)
	assert.Equal(t, in.ReplyTo, out.ReplyTo)
	assert.Equal(t, in.Expiration, out.Expiration)
	assert.Equal(t, in.MessageId, out.MessageId)
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, in.UserId, out.UserId)
	assert.Equal(t, in.AppId, out.AppId)
	assert.Equal(t, int32(3), out.Headers["x-retry"])
}

func TestPropertiesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeProperties(&buf, properties{}))

	// just the 16-bit flags word, all zero
	assert.Equal(t, []byte{0, 0}, buf.Bytes())

	out, err := readProperties(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, properties{}, out)
}

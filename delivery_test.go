// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAcker struct {
	acked    []uint64
	nacked   []uint64
	rejected []uint64
}

func (a *recordingAcker) Ack(tag uint64, multiple bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *recordingAcker) Reject(tag uint64, requeue bool) error {
	a.rejected = append(a.rejected, tag)
	return nil
}

func TestDeliveryAckNackRejectDelegate(t *testing.T) {
	acker := &recordingAcker{}
	d := Delivery{Acknowledger: acker, DeliveryTag: 7}

	require.NoError(t, d.Ack(false))
	require.NoError(t, d.Nack(false, true))
	require.NoError(t, d.Reject(true))

	assert.Equal(t, []uint64{7}, acker.acked)
	assert.Equal(t, []uint64{7}, acker.nacked)
	assert.Equal(t, []uint64{7}, acker.rejected)
}

func TestNewDeliveryCopiesProperties(t *testing.T) {
	p := properties{ContentType: "text/plain", MessageId: "m-1"}
	d := newDelivery(&recordingAcker{}, p, []byte("body"))

	assert.Equal(t, "text/plain", d.ContentType)
	assert.Equal(t, "m-1", d.MessageId)
	assert.Equal(t, []byte("body"), d.Body)
}

// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import "time"

// Acknowledger is implemented by Channel and lets a Delivery resolve itself
// without the caller having to keep the originating channel around.
type Acknowledger interface {
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple bool, requeue bool) error
	Reject(tag uint64, requeue bool) error
}

// Delivery captures everything a consumer or Channel.Get receives for one
// message: the decoded content properties, the delivery metadata, and the
// body. The zero value is not meaningful; Deliveries are only produced by
// the engine.
type Delivery struct {
	Acknowledger Acknowledger

	Headers         Table
	ContentType     string
	ContentEncoding string
	DeliveryMode    uint8
	Priority        uint8
	CorrelationId   string
	ReplyTo         string
	Expiration      string
	MessageId       string
	Timestamp       time.Time
	Type            string
	UserId          string
	AppId           string

	ConsumerTag string
	MessageCount uint32

	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string

	Body []byte
}

func newDelivery(ack Acknowledger, p properties, body []byte) Delivery {
	return Delivery{
		Acknowledger:    ack,
		Headers:         p.Headers,
		ContentType:     p.ContentType,
		ContentEncoding: p.ContentEncoding,
		DeliveryMode:    p.DeliveryMode,
		Priority:        p.Priority,
		CorrelationId:   p.CorrelationId,
		ReplyTo:         p.ReplyTo,
		Expiration:      p.Expiration,
		MessageId:       p.MessageId,
		Timestamp:       p.Timestamp,
		Type:            p.Type,
		UserId:          p.UserId,
		AppId:           p.AppId,
		Body:            body,
	}
}

// Ack delegates to Acknowledger.Ack using this delivery's tag.
func (d Delivery) Ack(multiple bool) error {
	return d.Acknowledger.Ack(d.DeliveryTag, multiple)
}

// Nack delegates to Acknowledger.Nack using this delivery's tag.
func (d Delivery) Nack(multiple, requeue bool) error {
	return d.Acknowledger.Nack(d.DeliveryTag, multiple, requeue)
}

// Reject delegates to Acknowledger.Reject using this delivery's tag.
func (d Delivery) Reject(requeue bool) error {
	return d.Acknowledger.Reject(d.DeliveryTag, requeue)
}

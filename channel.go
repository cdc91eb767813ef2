// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"reflect"
	"sync"
	"time"
)

// content reassembly substates: a channel is either waiting for a method
// frame, or (once a content-bearing method has arrived) waiting for the
// header frame that names the body size, or waiting for the body frames
// that carry it.
const (
	awaitMethod = iota
	awaitHeader
	awaitBody
)

// Channel represents an AMQP channel: a lightweight, independently
// multiplexed conversation over a single Connection. Most application code
// talks to the broker exclusively through a Channel.
type Channel struct {
	destructor sync.Once
	m          sync.Mutex

	connection *Connection
	id         uint16

	rpc    chan message
	errors chan *Error

	consumers *consumers
	confirms  *confirms
	confirming bool

	noNotify bool
	closes   []chan *Error
	flows    []chan bool
	cancels  []chan string
	returns  []chan Return

	awaiting int
	message  messageWithContent
	header   *headerFrame
	body     []byte

	log logger
}

func newChannel(c *Connection, id uint16) *Channel {
	return &Channel{
		connection: c,
		id:         id,
		rpc:        make(chan message),
		errors:     make(chan *Error, 1),
		consumers:  makeConsumers(c.log),
		log:        c.log,
	}
}

func (ch *Channel) open() error {
	return ch.call(&channelOpen{}, &channelOpenOk{})
}

// shutdown tears the channel down, waking every pending RPC, notification
// listener, and consumer with err (nil on a clean Close).
func (ch *Channel) shutdown(err *Error) {
	ch.destructor.Do(func() {
		ch.m.Lock()
		closes := ch.closes
		flows := ch.flows
		cancels := ch.cancels
		returns := ch.returns
		ch.noNotify = true
		ch.m.Unlock()

		if err != nil {
			for _, c := range closes {
				c <- err
			}
			select {
			case ch.errors <- err:
			default:
			}
		}

		ch.consumers.close()
		if ch.confirms != nil {
			ch.confirms.shutdown(err)
			ch.confirms.close()
		}

		for _, c := range closes {
			close(c)
		}
		for _, c := range flows {
			close(c)
		}
		for _, c := range cancels {
			close(c)
		}
		for _, c := range returns {
			close(c)
		}

		ch.connection.releaseChannel(ch.id)
	})
}

func (ch *Channel) isClosed() bool {
	ch.m.Lock()
	defer ch.m.Unlock()
	return ch.noNotify
}

func (ch *Channel) send(msg message) error {
	if ch.isClosed() {
		return ErrClosed
	}
	return ch.connection.send(&methodFrame{ChannelId: ch.id, Method: msg})
}

func (ch *Channel) sendContent(msg messageWithContent) error {
	if ch.isClosed() {
		return ErrClosed
	}
	return ch.connection.sendMethodWithContent(ch.id, msg, ch.connection.Config.FrameSize)
}

// call sends req (skipped when nil, for responses to server-initiated
// requests) and, when req expects a synchronous reply, blocks until a
// matching response of one of the res types arrives.
func (ch *Channel) call(req message, res ...message) error {
	if req != nil {
		if err := ch.send(req); err != nil {
			return err
		}
	}

	if req != nil && !req.wait() {
		return nil
	}

	select {
	case err := <-ch.errors:
		return err
	case msg := <-ch.rpc:
		for _, want := range res {
			if reflect.TypeOf(msg) == reflect.TypeOf(want) {
				reflect.ValueOf(want).Elem().Set(reflect.ValueOf(msg).Elem())
				return nil
			}
		}
		return ErrCommandInvalid
	}
}

// recv is invoked by Connection.dispatchN for every frame addressed to this
// channel, threading the method/header/body reassembly state machine.
func (ch *Channel) recv(f frame) error {
	switch ch.awaiting {
	case awaitHeader:
		return ch.recvHeader(f)
	case awaitBody:
		return ch.recvBody(f)
	default:
		return ch.recvMethod(f)
	}
}

func (ch *Channel) recvMethod(f frame) error {
	mf, ok := f.(*methodFrame)
	if !ok {
		return ErrUnexpectedFrame
	}

	switch m := mf.Method.(type) {
	case *channelClose:
		ch.send(&channelCloseOk{})
		ch.shutdown(newError(m.ReplyCode, m.ReplyText))
		return nil

	case *channelFlow:
		ch.m.Lock()
		flows := ch.flows
		ch.m.Unlock()
		for _, c := range flows {
			c <- m.Active
		}
		return ch.send(&channelFlowOk{Active: m.Active})

	case *basicCancel:
		onCancel, _ := ch.consumers.cancel(m.ConsumerTag)
		if onCancel != nil {
			onCancel(m.ConsumerTag)
		}
		ch.m.Lock()
		cancels := ch.cancels
		ch.m.Unlock()
		for _, c := range cancels {
			c <- m.ConsumerTag
		}
		if !m.NoWait {
			return ch.send(&basicCancelOk{ConsumerTag: m.ConsumerTag})
		}
		return nil

	case *basicAck:
		if ch.confirms != nil {
			ch.confirms.confirm(m.DeliveryTag, m.Multiple, true)
		}
		return nil

	case *basicNack:
		if ch.confirms != nil {
			ch.confirms.confirm(m.DeliveryTag, m.Multiple, false)
		}
		return nil

	case messageWithContent:
		ch.message = m
		ch.awaiting = awaitHeader
		return nil

	default:
		ch.rpc <- m
		return nil
	}
}

func (ch *Channel) recvHeader(f frame) error {
	hf, ok := f.(*headerFrame)
	if !ok {
		return ErrUnexpectedFrame
	}
	ch.header = hf

	if hf.Size == 0 {
		ch.message.setContent(hf.Properties, nil)
		return ch.dispatchContent()
	}

	ch.body = make([]byte, 0, hf.Size)
	ch.awaiting = awaitBody
	return nil
}

func (ch *Channel) recvBody(f frame) error {
	bf, ok := f.(*bodyFrame)
	if !ok {
		return ErrUnexpectedFrame
	}

	ch.body = append(ch.body, bf.Body...)
	if uint64(len(ch.body)) < ch.header.Size {
		return nil
	}

	ch.message.setContent(ch.header.Properties, ch.body)
	return ch.dispatchContent()
}

func (ch *Channel) dispatchContent() error {
	msg := ch.message
	ch.message = nil
	ch.header = nil
	ch.body = nil
	ch.awaiting = awaitMethod

	switch m := msg.(type) {
	case *basicDeliver:
		d := newDelivery(ch, m.Properties, m.Body)
		d.ConsumerTag = m.ConsumerTag
		d.DeliveryTag = m.DeliveryTag
		d.Redelivered = m.Redelivered
		d.Exchange = m.Exchange
		d.RoutingKey = m.RoutingKey
		ch.consumers.send(m.ConsumerTag, d)
		ch.connection.noteDelivery()

	case *basicReturn:
		ch.m.Lock()
		returns := ch.returns
		ch.m.Unlock()
		ret := Return{
			ReplyCode:       m.ReplyCode,
			ReplyText:       m.ReplyText,
			Exchange:        m.Exchange,
			RoutingKey:      m.RoutingKey,
			ContentType:     m.Properties.ContentType,
			ContentEncoding: m.Properties.ContentEncoding,
			Headers:         m.Properties.Headers,
			DeliveryMode:    m.Properties.DeliveryMode,
			Priority:        m.Properties.Priority,
			CorrelationId:   m.Properties.CorrelationId,
			ReplyTo:         m.Properties.ReplyTo,
			Expiration:      m.Properties.Expiration,
			MessageId:       m.Properties.MessageId,
			Timestamp:       m.Properties.Timestamp,
			Type:            m.Properties.Type,
			UserId:          m.Properties.UserId,
			AppId:           m.Properties.AppId,
			Body:            m.Body,
		}
		for _, c := range returns {
			c <- ret
		}
		ch.connection.noteDelivery()

	case *basicGetOk:
		ch.rpc <- m
	}

	return nil
}

// NotifyClose registers a listener for this channel's close, whether from a
// channel.close method (local or remote) or the owning connection closing.
func (ch *Channel) NotifyClose(c chan *Error) chan *Error {
	ch.m.Lock()
	defer ch.m.Unlock()
	if ch.noNotify {
		close(c)
	} else {
		ch.closes = append(ch.closes, c)
	}
	return c
}

// NotifyFlow registers a listener for channel.flow, the broker's per-channel
// throttling request.
func (ch *Channel) NotifyFlow(c chan bool) chan bool {
	ch.m.Lock()
	defer ch.m.Unlock()
	if ch.noNotify {
		close(c)
	} else {
		ch.flows = append(ch.flows, c)
	}
	return c
}

// NotifyCancel registers a listener for the RabbitMQ consumer-cancel
// notification extension: the server sends this when a consumer's queue is
// deleted out from under it.
func (ch *Channel) NotifyCancel(c chan string) chan string {
	ch.m.Lock()
	defer ch.m.Unlock()
	if ch.noNotify {
		close(c)
	} else {
		ch.cancels = append(ch.cancels, c)
	}
	return c
}

// NotifyReturn registers a listener for basic.return: messages published
// with the mandatory or immediate flag that the broker could not route.
func (ch *Channel) NotifyReturn(c chan Return) chan Return {
	ch.m.Lock()
	defer ch.m.Unlock()
	if ch.noNotify {
		close(c)
	} else {
		ch.returns = append(ch.returns, c)
	}
	return c
}

// NotifyConfirm registers a pair of legacy ack/nack delivery-tag channels;
// it implicitly enters confirm mode if the channel has not already done so.
func (ch *Channel) NotifyConfirm(ack, nack chan uint64) (chan uint64, chan uint64) {
	if err := ch.confirmOnce(); err != nil {
		close(ack)
		close(nack)
		return ack, nack
	}
	ch.confirms.listen(ack, nack)
	return ack, nack
}

// NotifyPublish registers a Confirmation listener; it implicitly enters
// confirm mode if the channel has not already done so.
func (ch *Channel) NotifyPublish(c chan Confirmation) chan Confirmation {
	if err := ch.confirmOnce(); err != nil {
		close(c)
		return c
	}
	ch.confirms.listenPublish(c)
	return c
}

func (ch *Channel) confirmOnce() error {
	ch.m.Lock()
	already := ch.confirming
	ch.m.Unlock()
	if already {
		return nil
	}
	return ch.Confirm(false)
}

// Confirm puts the channel into publisher-confirms mode (confirm.select).
func (ch *Channel) Confirm(noWait bool) error {
	ch.m.Lock()
	if ch.confirming {
		ch.m.Unlock()
		return nil
	}
	ch.m.Unlock()

	req := &confirmSelect{NoWait: noWait}
	var err error
	if noWait {
		err = ch.call(req)
	} else {
		err = ch.call(req, &confirmSelectOk{})
	}
	if err != nil {
		return err
	}

	ch.m.Lock()
	ch.confirming = true
	if ch.confirms == nil {
		ch.confirms = newConfirms()
	}
	ch.m.Unlock()
	return nil
}

// Qos controls how many unacknowledged deliveries the broker will dispatch
// at once, either per-consumer (global=false) or per-channel (global=true).
func (ch *Channel) Qos(prefetchCount, prefetchSize int, global bool) error {
	return ch.call(
		&basicQos{PrefetchCount: uint16(prefetchCount), PrefetchSize: uint32(prefetchSize), Global: global},
		&basicQosOk{},
	)
}

// Flow requests the broker start or stop delivering to this channel.
func (ch *Channel) Flow(active bool) error {
	return ch.call(&channelFlow{Active: active}, &channelFlowOk{})
}

// ExchangeDeclare declares an exchange, creating it if it does not exist.
func (ch *Channel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args Table) error {
	req := &exchangeDeclare{
		Exchange: name, Type: kind, Durable: durable, AutoDelete: autoDelete,
		Internal: internal, NoWait: noWait, Arguments: args,
	}
	if noWait {
		return ch.call(req)
	}
	return ch.call(req, &exchangeDeclareOk{})
}

// ExchangeDeclarePassive asserts that an exchange exists, failing if it does
// not, without creating it.
func (ch *Channel) ExchangeDeclarePassive(name, kind string, durable, autoDelete, internal, noWait bool, args Table) error {
	req := &exchangeDeclare{
		Exchange: name, Type: kind, Passive: true, Durable: durable, AutoDelete: autoDelete,
		Internal: internal, NoWait: noWait, Arguments: args,
	}
	if noWait {
		return ch.call(req)
	}
	return ch.call(req, &exchangeDeclareOk{})
}

// ExchangeDelete removes an exchange.
func (ch *Channel) ExchangeDelete(name string, ifUnused, noWait bool) error {
	req := &exchangeDelete{Exchange: name, IfUnused: ifUnused, NoWait: noWait}
	if noWait {
		return ch.call(req)
	}
	return ch.call(req, &exchangeDeleteOk{})
}

// ExchangeBind binds an exchange to an exchange (RabbitMQ extension).
func (ch *Channel) ExchangeBind(destination, key, source string, noWait bool, args Table) error {
	req := &exchangeBind{Destination: destination, Source: source, RoutingKey: key, NoWait: noWait, Arguments: args}
	if noWait {
		return ch.call(req)
	}
	return ch.call(req, &exchangeBindOk{})
}

// ExchangeUnbind removes an exchange-to-exchange binding.
func (ch *Channel) ExchangeUnbind(destination, key, source string, noWait bool, args Table) error {
	req := &exchangeUnbind{Destination: destination, Source: source, RoutingKey: key, NoWait: noWait, Arguments: args}
	if noWait {
		return ch.call(req)
	}
	return ch.call(req, &exchangeUnbindOk{})
}

// QueueDeclare declares a queue, creating it if it does not exist.
func (ch *Channel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args Table) (Queue, error) {
	req := &queueDeclare{Queue: name, Durable: durable, AutoDelete: autoDelete, Exclusive: exclusive, NoWait: noWait, Arguments: args}
	if noWait {
		return Queue{Name: name}, ch.call(req)
	}
	res := &queueDeclareOk{}
	if err := ch.call(req, res); err != nil {
		return Queue{}, err
	}
	return Queue{Name: res.Queue, Messages: int(res.MessageCount), Consumers: int(res.ConsumerCount)}, nil
}

// QueueDeclarePassive asserts that a queue exists, failing if it does not.
func (ch *Channel) QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args Table) (Queue, error) {
	req := &queueDeclare{Queue: name, Passive: true, Durable: durable, AutoDelete: autoDelete, Exclusive: exclusive, NoWait: noWait, Arguments: args}
	if noWait {
		return Queue{Name: name}, ch.call(req)
	}
	res := &queueDeclareOk{}
	if err := ch.call(req, res); err != nil {
		return Queue{}, err
	}
	return Queue{Name: res.Queue, Messages: int(res.MessageCount), Consumers: int(res.ConsumerCount)}, nil
}

// QueueBind binds a queue to an exchange.
func (ch *Channel) QueueBind(name, key, exchange string, noWait bool, args Table) error {
	req := &queueBind{Queue: name, Exchange: exchange, RoutingKey: key, NoWait: noWait, Arguments: args}
	if noWait {
		return ch.call(req)
	}
	return ch.call(req, &queueBindOk{})
}

// QueueUnbind removes a queue-to-exchange binding.
func (ch *Channel) QueueUnbind(name, key, exchange string, args Table) error {
	return ch.call(&queueUnbind{Queue: name, Exchange: exchange, RoutingKey: key, Arguments: args}, &queueUnbindOk{})
}

// QueuePurge removes all ready messages from a queue, returning the count
// purged.
func (ch *Channel) QueuePurge(name string, noWait bool) (int, error) {
	req := &queuePurge{Queue: name, NoWait: noWait}
	if noWait {
		return 0, ch.call(req)
	}
	res := &queuePurgeOk{}
	if err := ch.call(req, res); err != nil {
		return 0, err
	}
	return int(res.MessageCount), nil
}

// QueueDelete removes a queue, returning the count of messages it held.
func (ch *Channel) QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error) {
	req := &queueDelete{Queue: name, IfUnused: ifUnused, IfEmpty: ifEmpty, NoWait: noWait}
	if noWait {
		return 0, ch.call(req)
	}
	res := &queueDeleteOk{}
	if err := ch.call(req, res); err != nil {
		return 0, err
	}
	return int(res.MessageCount), nil
}

// Consume registers a consumer and returns the channel deliveries arrive on.
func (ch *Channel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args Table) (<-chan Delivery, error) {
	if consumer == "" {
		consumer = newConsumerTag()
	}

	deliveries := ch.consumers.add(consumer, nil)

	req := &basicConsume{
		Queue: queue, ConsumerTag: consumer, NoLocal: noLocal, NoAck: autoAck,
		Exclusive: exclusive, NoWait: noWait, Arguments: args,
	}

	if noWait {
		if err := ch.call(req); err != nil {
			ch.consumers.cancel(consumer)
			return nil, err
		}
		return deliveries, nil
	}

	res := &basicConsumeOk{}
	if err := ch.call(req, res); err != nil {
		ch.consumers.cancel(consumer)
		return nil, err
	}
	return deliveries, nil
}

// Cancel ends a consumer started with Consume.
func (ch *Channel) Cancel(consumer string, noWait bool) error {
	req := &basicCancel{ConsumerTag: consumer, NoWait: noWait}
	var err error
	if noWait {
		err = ch.call(req)
	} else {
		err = ch.call(req, &basicCancelOk{})
	}
	ch.consumers.cancel(consumer)
	return err
}

// Publish sends msg to exchange, routed by key. mandatory and immediate ask
// the broker to basic.return the message (via NotifyReturn) rather than
// silently dropping or queueing it when unroutable.
func (ch *Channel) Publish(exchange, key string, mandatory, immediate bool, msg Publishing) error {
	return ch.publish(exchange, key, mandatory, immediate, msg)
}

func (ch *Channel) publish(exchange, key string, mandatory, immediate bool, msg Publishing) error {
	ch.m.Lock()
	confirming := ch.confirming
	confirms := ch.confirms
	ch.m.Unlock()
	if confirming && confirms != nil {
		confirms.publish()
	}

	return ch.sendContent(&basicPublish{
		Exchange:   exchange,
		RoutingKey: key,
		Mandatory:  mandatory,
		Immediate:  immediate,
		Properties: properties{
			ContentType:     msg.ContentType,
			ContentEncoding: msg.ContentEncoding,
			Headers:         msg.Headers,
			DeliveryMode:    msg.DeliveryMode,
			Priority:        msg.Priority,
			CorrelationId:   msg.CorrelationId,
			ReplyTo:         msg.ReplyTo,
			Expiration:      msg.Expiration,
			MessageId:       msg.MessageId,
			Timestamp:       msg.Timestamp,
			Type:            msg.Type,
			UserId:          msg.UserId,
			AppId:           msg.AppId,
		},
		Body: msg.Body,
	})
}

// PublishConfirm is Publish for a channel already in confirm mode
// (Channel.Confirm): it blocks until the broker acks or nacks this specific
// delivery tag, or until timeout elapses (<=0 waits forever).
func (ch *Channel) PublishConfirm(exchange, key string, mandatory, immediate bool, msg Publishing, timeout time.Duration) (Confirmation, error) {
	ch.m.Lock()
	confirming := ch.confirming
	confirms := ch.confirms
	ch.m.Unlock()
	if !confirming || confirms == nil {
		return Confirmation{}, ErrCommandInvalid
	}

	tag := confirms.publish()
	waiter := confirms.waiter(tag)

	if err := ch.sendContent(&basicPublish{
		Exchange:   exchange,
		RoutingKey: key,
		Mandatory:  mandatory,
		Immediate:  immediate,
		Properties: properties{
			ContentType:     msg.ContentType,
			ContentEncoding: msg.ContentEncoding,
			Headers:         msg.Headers,
			DeliveryMode:    msg.DeliveryMode,
			Priority:        msg.Priority,
			CorrelationId:   msg.CorrelationId,
			ReplyTo:         msg.ReplyTo,
			Expiration:      msg.Expiration,
			MessageId:       msg.MessageId,
			Timestamp:       msg.Timestamp,
			Type:            msg.Type,
			UserId:          msg.UserId,
			AppId:           msg.AppId,
		},
		Body: msg.Body,
	}); err != nil {
		return Confirmation{}, err
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case r := <-waiter:
		if r.Err != nil {
			return Confirmation{}, r.Err
		}
		return r.Confirmation, nil
	case <-timeoutCh:
		return Confirmation{}, ErrTimeout
	}
}

// Get synchronously pulls a single message off queue (basic.get), reporting
// ok=false when the queue was empty.
func (ch *Channel) Get(queue string, autoAck bool) (d Delivery, ok bool, err error) {
	req := &basicGet{Queue: queue, NoAck: autoAck}

	if err = ch.send(req); err != nil {
		return
	}

	select {
	case e := <-ch.errors:
		err = e
		return
	case msg := <-ch.rpc:
		switch m := msg.(type) {
		case *basicGetOk:
			d = newDelivery(ch, m.Properties, m.Body)
			d.DeliveryTag = m.DeliveryTag
			d.Redelivered = m.Redelivered
			d.Exchange = m.Exchange
			d.RoutingKey = m.RoutingKey
			d.MessageCount = m.MessageCount
			ok = true
			return
		case *basicGetEmpty:
			return
		default:
			err = ErrCommandInvalid
			return
		}
	}
}

// Ack implements Acknowledger for deliveries received on this channel.
func (ch *Channel) Ack(tag uint64, multiple bool) error {
	return ch.send(&basicAck{DeliveryTag: tag, Multiple: multiple})
}

// Nack implements Acknowledger for deliveries received on this channel.
func (ch *Channel) Nack(tag uint64, multiple, requeue bool) error {
	return ch.send(&basicNack{DeliveryTag: tag, Multiple: multiple, Requeue: requeue})
}

// Reject implements Acknowledger for deliveries received on this channel.
func (ch *Channel) Reject(tag uint64, requeue bool) error {
	return ch.send(&basicReject{DeliveryTag: tag, Requeue: requeue})
}

// Recover asks the broker to redeliver unacknowledged messages on this
// channel, optionally to a different consumer (requeue=true).
func (ch *Channel) Recover(requeue bool) error {
	return ch.call(&basicRecover{Requeue: requeue}, &basicRecoverOk{})
}

// TxSelect puts the channel into transactional mode.
func (ch *Channel) TxSelect() error {
	return ch.call(&txSelect{}, &txSelectOk{})
}

// TxCommit commits the current transaction.
func (ch *Channel) TxCommit() error {
	return ch.call(&txCommit{}, &txCommitOk{})
}

// TxRollback rolls back the current transaction.
func (ch *Channel) TxRollback() error {
	return ch.call(&txRollback{}, &txRollbackOk{})
}

// Close requests a graceful channel.close / channel.close-ok and releases
// the channel id back to the connection's allocator.
func (ch *Channel) Close() error {
	if ch.isClosed() {
		return nil
	}
	defer ch.shutdown(nil)
	return ch.call(
		&channelClose{ReplyCode: ReplySuccess, ReplyText: "normal shutdown"},
		&channelCloseOk{},
	)
}

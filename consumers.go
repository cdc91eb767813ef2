// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import "sync"

// consumerBuffer is the depth of the channel handed back from
// Channel.Consume; deliveries queue here when the consumer's goroutine is
// momentarily behind the reader.
const consumerBuffer = 64

// consumers maps consumer tags to the delivery channel a Channel.Consume
// caller is draining, plus the optional on-cancel callback invoked when the
// broker sends a server-initiated basic.cancel (RabbitMQ consumer-cancel
// notification).
type consumers struct {
	mu       sync.Mutex
	chans    map[string]chan Delivery
	onCancel map[string]func(string)
	log      logger
}

func makeConsumers(log logger) *consumers {
	return &consumers{
		chans:    make(map[string]chan Delivery),
		onCancel: make(map[string]func(string)),
		log:      log,
	}
}

// add registers tag and returns the receive side of its delivery channel.
func (subs *consumers) add(tag string, onCancel func(string)) <-chan Delivery {
	subs.mu.Lock()
	defer subs.mu.Unlock()

	ch := make(chan Delivery, consumerBuffer)
	subs.chans[tag] = ch
	if onCancel != nil {
		subs.onCancel[tag] = onCancel
	}
	return ch
}

// send delivers msg to tag's channel, blocking until the consumer drains it.
// subs.mu is held for the whole send, so cancel and close cannot close the
// channel underneath it. Returns false (and logs) if tag is unknown, per
// AMQP 0.9.1 section 1.8.3.9: an unroutable consumer_tag on a basic.deliver
// is discarded, not a protocol error.
func (subs *consumers) send(tag string, msg Delivery) bool {
	subs.mu.Lock()
	defer subs.mu.Unlock()

	ch, ok := subs.chans[tag]
	if !ok {
		subs.log.Warnw("discarding delivery for unknown consumer", "consumer_tag", tag)
		return false
	}

	ch <- msg
	return true
}

// cancel removes tag's registration and closes its channel, returning the
// on-cancel callback if one was registered.
func (subs *consumers) cancel(tag string) (onCancel func(string), found bool) {
	subs.mu.Lock()
	defer subs.mu.Unlock()

	if ch, ok := subs.chans[tag]; ok {
		close(ch)
		delete(subs.chans, tag)
		found = true
	}
	onCancel = subs.onCancel[tag]
	delete(subs.onCancel, tag)
	return
}

// close tears down every registered consumer, used when the owning channel
// closes (cleanly or abruptly).
func (subs *consumers) close() {
	subs.mu.Lock()
	defer subs.mu.Unlock()

	for tag, ch := range subs.chans {
		close(ch)
		delete(subs.chans, tag)
	}
	subs.onCancel = make(map[string]func(string))
}

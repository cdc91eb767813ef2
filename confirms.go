// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import "sync"

// confirmResult is what a Channel.PublishConfirm waiter receives: either a
// resolved Confirmation from the broker, or the error that closed the
// channel/connection while the publish was still outstanding.
type confirmResult struct {
	Confirmation Confirmation
	Err          *Error
}

// confirms tracks the delivery-tag bookkeeping a channel needs once
// confirm.select-ok has been received: the monotonic tag sequence, the
// legacy ack/nack notification channels, the newer unified Confirmation
// channel, and per-tag waiters for Channel.PublishConfirm.
type confirms struct {
	mu sync.Mutex

	tag         uint64
	outstanding map[uint64]struct{}
	waiters     map[uint64]chan confirmResult

	acks  []chan uint64
	nacks []chan uint64
	pubs  []chan Confirmation
}

func newConfirms() *confirms {
	return &confirms{
		outstanding: make(map[uint64]struct{}),
		waiters:     make(map[uint64]chan confirmResult),
	}
}

// publish assigns and returns the next delivery tag, starting at 1.
func (c *confirms) publish() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tag++
	c.outstanding[c.tag] = struct{}{}
	return c.tag
}

// listen registers a pair of legacy ack/nack notification channels
// (Channel.NotifyConfirm).
func (c *confirms) listen(ack, nack chan uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acks = append(c.acks, ack)
	c.nacks = append(c.nacks, nack)
}

// listenPublish registers a Confirmation notification channel
// (Channel.NotifyPublish).
func (c *confirms) listenPublish(ch chan Confirmation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pubs = append(c.pubs, ch)
}

// waiter returns a channel that receives exactly one confirmResult once tag
// resolves (or the channel closes), used by Channel.PublishConfirm's
// blocking wait.
func (c *confirms) waiter(tag uint64) <-chan confirmResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan confirmResult, 1)
	c.waiters[tag] = ch
	return ch
}

// confirm resolves tag (or, when multiple is set, every outstanding tag up
// to and including it) as acked or nacked, firing every registered
// notification channel and waiter.
func (c *confirms) confirm(tag uint64, multiple, ack bool) {
	c.mu.Lock()
	var resolved []uint64
	if multiple {
		for t := range c.outstanding {
			if t <= tag {
				resolved = append(resolved, t)
			}
		}
	} else if _, ok := c.outstanding[tag]; ok {
		resolved = []uint64{tag}
	}
	for _, t := range resolved {
		delete(c.outstanding, t)
	}
	acks, nacks, pubs := c.acks, c.nacks, c.pubs
	waiters := make(map[uint64]chan confirmResult, len(resolved))
	for _, t := range resolved {
		if w, ok := c.waiters[t]; ok {
			waiters[t] = w
			delete(c.waiters, t)
		}
	}
	c.mu.Unlock()

	for _, t := range resolved {
		for _, a := range acks {
			if ack && a != nil {
				a <- t
			}
		}
		for _, n := range nacks {
			if !ack && n != nil {
				n <- t
			}
		}
		for _, p := range pubs {
			if p != nil {
				p <- Confirmation{DeliveryTag: t, Ack: ack}
			}
		}
		if w, ok := waiters[t]; ok {
			w <- confirmResult{Confirmation: Confirmation{DeliveryTag: t, Ack: ack}}
		}
	}
}

// shutdown releases every outstanding waiter with the error that closed the
// channel (ErrClosed for a clean shutdown), used when the channel closes
// with messages still unconfirmed.
func (c *confirms) shutdown(err *Error) {
	if err == nil {
		err = ErrClosed
	}

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = make(map[uint64]chan confirmResult)
	outstanding := c.outstanding
	c.outstanding = make(map[uint64]struct{})
	c.mu.Unlock()

	for t := range outstanding {
		if w, ok := waiters[t]; ok {
			w <- confirmResult{Err: err}
		}
	}
}

func (c *confirms) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.acks {
		if a != nil {
			close(a)
		}
	}
	for _, n := range c.nacks {
		if n != nil {
			close(n)
		}
	}
	for _, p := range c.pubs {
		if p != nil {
			close(p)
		}
	}
	c.acks, c.nacks, c.pubs = nil, nil, nil
}

// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// reader parses frames off a buffered transport. At most one goroutine may
// call ReadFrame on a given reader at a time; a Connection only ever calls
// it from its single reader goroutine.
type reader struct {
	r *bufio.Reader
}

func (r *reader) ReadFrame() (frame, error) {
	var head [7]byte
	if _, err := io.ReadFull(r.r, head[:]); err != nil {
		return nil, err
	}

	typ := head[0]
	channel := binary.BigEndian.Uint16(head[1:3])
	size := binary.BigEndian.Uint32(head[3:7])

	payload := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(r.r, payload); err != nil {
			return nil, err
		}
	}

	var end [1]byte
	if _, err := io.ReadFull(r.r, end[:]); err != nil {
		return nil, err
	}
	if end[0] != frameEnd {
		return nil, fmt.Errorf("amqp: %w: expected frame end 0x%02x, got 0x%02x", ErrFrame, frameEnd, end[0])
	}

	switch typ {
	case frameMethod:
		return r.parseMethodFrame(channel, payload)
	case frameHeader:
		return r.parseHeaderFrame(channel, payload)
	case frameBody:
		return &bodyFrame{ChannelId: channel, Body: payload}, nil
	case frameHeartbeat:
		return &heartbeatFrame{ChannelId: channel}, nil
	default:
		return nil, fmt.Errorf("amqp: %w: unknown frame type %d", ErrFrame, typ)
	}
}

func (r *reader) parseMethodFrame(channel uint16, payload []byte) (frame, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("amqp: %w: truncated method frame", ErrFrame)
	}
	class := binary.BigEndian.Uint16(payload[0:2])
	methodID := binary.BigEndian.Uint16(payload[2:4])

	msg, err := newMethod(class, methodID)
	if err != nil {
		return nil, err
	}
	if err := msg.read(bytes.NewReader(payload[4:])); err != nil {
		return nil, err
	}

	return &methodFrame{ChannelId: channel, Method: msg}, nil
}

func (r *reader) parseHeaderFrame(channel uint16, payload []byte) (frame, error) {
	if len(payload) < 12 {
		return nil, fmt.Errorf("amqp: %w: truncated header frame", ErrFrame)
	}
	br := bytes.NewReader(payload)

	var class, weight uint16
	var size uint64
	binary.Read(br, binary.BigEndian, &class)
	binary.Read(br, binary.BigEndian, &weight)
	binary.Read(br, binary.BigEndian, &size)

	props, err := readProperties(br)
	if err != nil {
		return nil, err
	}

	return &headerFrame{
		ChannelId:  channel,
		ClassId:    class,
		weight:     weight,
		Size:       size,
		Properties: props,
	}, nil
}

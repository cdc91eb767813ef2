// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// message is implemented by every generated method argument struct in
// spec091.go: a closed tagged union over (class id, method id), each
// variant knowing its own argument layout.
type message interface {
	id() (uint16, uint16)
	// wait reports whether this method expects a synchronous reply before
	// the sender may proceed (the method registry's is_synchronous bit).
	wait() bool
	read(r io.Reader) error
	write(w io.Writer) error
}

// messageWithContent is implemented by methods whose invocation is
// immediately followed by a header frame and zero or more body frames
// (the method registry's has_content bit).
type messageWithContent interface {
	message
	getContent() (properties, []byte)
	setContent(properties, []byte)
}

// frame is the union of the four frame types that can appear on the wire:
// methodFrame, headerFrame, bodyFrame, heartbeatFrame.
type frame interface {
	write(w io.Writer) error
	channel() uint16
}

type methodFrame struct {
	ChannelId uint16
	Method    message
}

func (f *methodFrame) channel() uint16 { return f.ChannelId }

func (f *methodFrame) write(w io.Writer) error {
	if f.Method == nil {
		return fmt.Errorf("amqp: malformed frame: missing method on channel %d", f.ChannelId)
	}

	var payload bytes.Buffer
	class, method := f.Method.id()
	binary.Write(&payload, binary.BigEndian, class)
	binary.Write(&payload, binary.BigEndian, method)
	if err := f.Method.write(&payload); err != nil {
		return err
	}

	return writeFrame(w, frameMethod, f.ChannelId, payload.Bytes())
}

type headerFrame struct {
	ChannelId  uint16
	ClassId    uint16
	weight     uint16
	Size       uint64
	Properties properties
}

func (f *headerFrame) channel() uint16 { return f.ChannelId }

func (f *headerFrame) write(w io.Writer) error {
	var payload bytes.Buffer
	binary.Write(&payload, binary.BigEndian, f.ClassId)
	binary.Write(&payload, binary.BigEndian, uint16(0)) // weight, always 0
	binary.Write(&payload, binary.BigEndian, f.Size)
	if err := writeProperties(&payload, f.Properties); err != nil {
		return err
	}
	return writeFrame(w, frameHeader, f.ChannelId, payload.Bytes())
}

type bodyFrame struct {
	ChannelId uint16
	Body      []byte
}

func (f *bodyFrame) channel() uint16 { return f.ChannelId }

func (f *bodyFrame) write(w io.Writer) error {
	return writeFrame(w, frameBody, f.ChannelId, f.Body)
}

type heartbeatFrame struct {
	ChannelId uint16
}

func (f *heartbeatFrame) channel() uint16 { return f.ChannelId }

func (f *heartbeatFrame) write(w io.Writer) error {
	return writeFrame(w, frameHeartbeat, f.ChannelId, nil)
}

// writeFrame serializes the common envelope: type(1) channel(2) size(4)
// payload(size) 0xCE.
func writeFrame(w io.Writer, typ byte, channel uint16, payload []byte) error {
	var head [7]byte
	head[0] = typ
	binary.BigEndian.PutUint16(head[1:3], channel)
	binary.BigEndian.PutUint32(head[3:7], uint32(len(payload)))

	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{frameEnd})
	return err
}

// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
)

// properties is the basic-class content-header property list, in the order
// the flag bits (from bit 15 down to bit 2) are declared by the spec.
type properties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
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
	ClusterId       string
}

const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationId   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageId       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserId          = 1 << 4
	flagAppId           = 1 << 3
	flagClusterId       = 1 << 2
	flagContinuation    = 1 << 0
)

func writeProperties(w *bytes.Buffer, p properties) error {
	var flags uint16

	if len(p.ContentType) > 0 {
		flags |= flagContentType
	}
	if len(p.ContentEncoding) > 0 {
		flags |= flagContentEncoding
	}
	if p.Headers != nil {
		flags |= flagHeaders
	}
	if p.DeliveryMode > 0 {
		flags |= flagDeliveryMode
	}
	if p.Priority > 0 {
		flags |= flagPriority
	}
	if len(p.CorrelationId) > 0 {
		flags |= flagCorrelationId
	}
	if len(p.ReplyTo) > 0 {
		flags |= flagReplyTo
	}
	if len(p.Expiration) > 0 {
		flags |= flagExpiration
	}
	if len(p.MessageId) > 0 {
		flags |= flagMessageId
	}
	if !p.Timestamp.IsZero() {
		flags |= flagTimestamp
	}
	if len(p.Type) > 0 {
		flags |= flagType
	}
	if len(p.UserId) > 0 {
		flags |= flagUserId
	}
	if len(p.AppId) > 0 {
		flags |= flagAppId
	}
	if len(p.ClusterId) > 0 {
		flags |= flagClusterId
	}

	binary.Write(w, binary.BigEndian, flags)

	if flags&flagContentType != 0 {
		writeShortstrTo(w, p.ContentType)
	}
	if flags&flagContentEncoding != 0 {
		writeShortstrTo(w, p.ContentEncoding)
	}
	if flags&flagHeaders != 0 {
		inner, err := encodeTable(p.Headers)
		if err != nil {
			return err
		}
		binary.Write(w, binary.BigEndian, uint32(len(inner)))
		w.Write(inner)
	}
	if flags&flagDeliveryMode != 0 {
		w.WriteByte(p.DeliveryMode)
	}
	if flags&flagPriority != 0 {
		w.WriteByte(p.Priority)
	}
	if flags&flagCorrelationId != 0 {
		writeShortstrTo(w, p.CorrelationId)
	}
	if flags&flagReplyTo != 0 {
		writeShortstrTo(w, p.ReplyTo)
	}
	if flags&flagExpiration != 0 {
		writeShortstrTo(w, p.Expiration)
	}
	if flags&flagMessageId != 0 {
		writeShortstrTo(w, p.MessageId)
	}
	if flags&flagTimestamp != 0 {
		binary.Write(w, binary.BigEndian, uint64(p.Timestamp.Unix()))
	}
	if flags&flagType != 0 {
		writeShortstrTo(w, p.Type)
	}
	if flags&flagUserId != 0 {
		writeShortstrTo(w, p.UserId)
	}
	if flags&flagAppId != 0 {
		writeShortstrTo(w, p.AppId)
	}
	if flags&flagClusterId != 0 {
		writeShortstrTo(w, p.ClusterId)
	}

	return nil
}

func readProperties(r *bytes.Reader) (p properties, err error) {
	var flags uint16
	if err = binary.Read(r, binary.BigEndian, &flags); err != nil {
		return
	}

	// A set continuation bit (bit 0) would introduce another 16-bit flags
	// word before the property values; AMQP 0.9.1's 14 basic properties
	// never need one, but honor it rather than silently truncating.
	for more := flags; more&flagContinuation != 0; {
		if err = binary.Read(r, binary.BigEndian, &more); err != nil {
			return
		}
	}

	if flags&flagContentType != 0 {
		if p.ContentType, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagContentEncoding != 0 {
		if p.ContentEncoding, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagHeaders != 0 {
		var n uint32
		if err = binary.Read(r, binary.BigEndian, &n); err != nil {
			return
		}
		buf := make([]byte, n)
		if _, err = io.ReadFull(r, buf); err != nil {
			return
		}
		if p.Headers, err = decodeTable(buf); err != nil {
			return
		}
	}
	if flags&flagDeliveryMode != 0 {
		if p.DeliveryMode, err = r.ReadByte(); err != nil {
			return
		}
	}
	if flags&flagPriority != 0 {
		if p.Priority, err = r.ReadByte(); err != nil {
			return
		}
	}
	if flags&flagCorrelationId != 0 {
		if p.CorrelationId, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagReplyTo != 0 {
		if p.ReplyTo, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagExpiration != 0 {
		if p.Expiration, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagMessageId != 0 {
		if p.MessageId, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagTimestamp != 0 {
		var sec uint64
		if err = binary.Read(r, binary.BigEndian, &sec); err != nil {
			return
		}
		p.Timestamp = time.Unix(int64(sec), 0)
	}
	if flags&flagType != 0 {
		if p.Type, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagUserId != 0 {
		if p.UserId, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagAppId != 0 {
		if p.AppId, err = readShortstrFrom(r); err != nil {
			return
		}
	}
	if flags&flagClusterId != 0 {
		if p.ClusterId, err = readShortstrFrom(r); err != nil {
			return
		}
	}

	return p, nil
}


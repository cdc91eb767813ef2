// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"encoding/binary"
	"errors"
	"io"
)

var errShortstrTooLong = errors.New("amqp: shortstr exceeds 255 bytes")

func writeOctet(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func writeShort(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeLong(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeLonglong(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeShortstr(w io.Writer, s string) error {
	if len(s) > 255 {
		return errShortstrTooLong
	}
	if err := writeOctet(w, uint8(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeLongstr(w io.Writer, s string) error {
	if err := writeLong(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeTableArg(w io.Writer, t Table) error {
	buf, err := encodeTable(t)
	if err != nil {
		return err
	}
	if err := writeLong(w, uint32(len(buf))); err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func readOctet(r io.Reader) (uint8, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

func readShort(r io.Reader) (uint16, error) {
	var b [2]byte
	_, err := io.ReadFull(r, b[:])
	return binary.BigEndian.Uint16(b[:]), err
}

func readLong(r io.Reader) (uint32, error) {
	var b [4]byte
	_, err := io.ReadFull(r, b[:])
	return binary.BigEndian.Uint32(b[:]), err
}

func readLonglong(r io.Reader) (uint64, error) {
	var b [8]byte
	_, err := io.ReadFull(r, b[:])
	return binary.BigEndian.Uint64(b[:]), err
}

func readShortstrArg(r io.Reader) (string, error) {
	n, err := readOctet(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readLongstrArg(r io.Reader) (string, error) {
	n, err := readLong(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readTableArg(r io.Reader) (Table, error) {
	n, err := readLong(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return decodeTable(buf)
}

// bitWriter coalesces consecutive "bit" arguments into octets, LSB first,
// per AMQP 0.9.1's packed argument encoding. Call flush before writing any
// non-bit argument or at the end of the argument list.
type bitWriter struct {
	w   io.Writer
	cur byte
	pos uint
}

func (b *bitWriter) writeBit(v bool) error {
	if v {
		b.cur |= 1 << b.pos
	}
	b.pos++
	if b.pos == 8 {
		return b.flush()
	}
	return nil
}

func (b *bitWriter) flush() error {
	if b.pos == 0 {
		return nil
	}
	_, err := b.w.Write([]byte{b.cur})
	b.cur, b.pos = 0, 0
	return err
}

// bitReader is the read-side counterpart of bitWriter.
type bitReader struct {
	r   io.Reader
	cur byte
	pos uint
}

func (b *bitReader) readBit() (bool, error) {
	if b.pos == 0 {
		var buf [1]byte
		if _, err := io.ReadFull(b.r, buf[:]); err != nil {
			return false, err
		}
		b.cur = buf[0]
	}
	v := b.cur&(1<<b.pos) != 0
	b.pos = (b.pos + 1) % 8
	return v, nil
}

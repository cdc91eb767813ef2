// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Field table type tags, AMQP 0.9.1 §4.2.5.5 plus the RabbitMQ 'x' byte
// array extension.
const (
	tagBoolean     = 't'
	tagShortShort  = 'b'
	tagByte        = 'B'
	tagShort       = 'u'
	tagSignedShort = 'U'
	tagLong        = 'i'
	tagSignedLong  = 'I'
	tagLonglong    = 'l'
	tagFloat       = 'f'
	tagDouble      = 'd'
	tagDecimal     = 'D'
	tagShortstr    = 's'
	tagLongstr     = 'S'
	tagArray       = 'A'
	tagTimestamp   = 'T'
	tagTable       = 'F'
	tagVoid        = 'V'
	tagByteArray   = 'x'
)

// encodeTable serializes a Table to its wire form, NOT including the
// leading u32 length prefix a caller embeds it under (callers that need the
// length-prefixed form use writeTableArg). A Table holding a value
// of an unsupported type is a usage error, not a protocol error: it is
// reported back to the caller rather than panicking mid-encode.
func encodeTable(table Table) ([]byte, error) {
	var buf bytes.Buffer
	for key, val := range table {
		writeShortstrTo(&buf, key)
		if err := writeField(&buf, val); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeShortstrTo(w *bytes.Buffer, s string) {
	if len(s) > 255 {
		panic("amqp: shortstr exceeds 255 bytes: " + s)
	}
	w.WriteByte(byte(len(s)))
	w.WriteString(s)
}

func writeField(w *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case nil:
		w.WriteByte(tagVoid)
	case bool:
		w.WriteByte(tagBoolean)
		if v {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
	case int8:
		w.WriteByte(tagShortShort)
		w.WriteByte(byte(v))
	case uint8:
		w.WriteByte(tagByte)
		w.WriteByte(v)
	case int16:
		w.WriteByte(tagSignedShort)
		binary.Write(w, binary.BigEndian, v)
	case uint16:
		w.WriteByte(tagShort)
		binary.Write(w, binary.BigEndian, v)
	case int32:
		w.WriteByte(tagSignedLong)
		binary.Write(w, binary.BigEndian, v)
	case uint32:
		w.WriteByte(tagLong)
		binary.Write(w, binary.BigEndian, v)
	case int64:
		w.WriteByte(tagLonglong)
		binary.Write(w, binary.BigEndian, v)
	case uint64:
		w.WriteByte(tagLonglong)
		binary.Write(w, binary.BigEndian, v)
	case int:
		w.WriteByte(tagLonglong)
		binary.Write(w, binary.BigEndian, int64(v))
	case float32:
		w.WriteByte(tagFloat)
		binary.Write(w, binary.BigEndian, v)
	case float64:
		w.WriteByte(tagDouble)
		binary.Write(w, binary.BigEndian, v)
	case Decimal:
		w.WriteByte(tagDecimal)
		w.WriteByte(v.Scale)
		binary.Write(w, binary.BigEndian, v.Value)
	case string:
		w.WriteByte(tagLongstr)
		binary.Write(w, binary.BigEndian, uint32(len(v)))
		w.WriteString(v)
	case []byte:
		w.WriteByte(tagByteArray)
		binary.Write(w, binary.BigEndian, uint32(len(v)))
		w.Write(v)
	case time.Time:
		w.WriteByte(tagTimestamp)
		binary.Write(w, binary.BigEndian, uint64(v.Unix()))
	case Table:
		w.WriteByte(tagTable)
		inner, err := encodeTable(v)
		if err != nil {
			return err
		}
		binary.Write(w, binary.BigEndian, uint32(len(inner)))
		w.Write(inner)
	case []interface{}:
		w.WriteByte(tagArray)
		var inner bytes.Buffer
		for _, item := range v {
			if err := writeField(&inner, item); err != nil {
				return err
			}
		}
		binary.Write(w, binary.BigEndian, uint32(inner.Len()))
		w.Write(inner.Bytes())
	default:
		return fmt.Errorf("amqp: %w: %T", ErrFieldType, value)
	}
	return nil
}

// decodeTable parses the wire form produced by encodeTable (no outer length
// prefix: the slice is exactly the table's body).
func decodeTable(data []byte) (Table, error) {
	r := bytes.NewReader(data)
	table := Table{}
	for r.Len() > 0 {
		key, err := readShortstrFrom(r)
		if err != nil {
			return nil, err
		}
		val, err := readField(r)
		if err != nil {
			return nil, err
		}
		table[key] = val
	}
	return table, nil
}

func readShortstrFrom(r *bytes.Reader) (string, error) {
	l, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readField(r *bytes.Reader) (interface{}, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBoolean:
		b, err := r.ReadByte()
		return b != 0, err
	case tagShortShort:
		b, err := r.ReadByte()
		return int8(b), err
	case tagByte:
		return r.ReadByte()
	case tagSignedShort:
		var v int16
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagShort:
		var v uint16
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagSignedLong:
		var v int32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagLong:
		var v uint32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagLonglong:
		var v int64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagFloat:
		var v float32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagDouble:
		var v float64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagDecimal:
		scale, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		var value int32
		if err := binary.Read(r, binary.BigEndian, &value); err != nil {
			return nil, err
		}
		return Decimal{Scale: scale, Value: value}, nil
	case tagShortstr:
		return readShortstrFrom(r)
	case tagLongstr:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return string(buf), nil
	case tagByteArray:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case tagTimestamp:
		var sec uint64
		if err := binary.Read(r, binary.BigEndian, &sec); err != nil {
			return nil, err
		}
		return time.Unix(int64(sec), 0), nil
	case tagTable:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return decodeTable(buf)
	case tagArray:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		sub := bytes.NewReader(buf)
		var arr []interface{}
		for sub.Len() > 0 {
			item, err := readField(sub)
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
		return arr, nil
	case tagVoid:
		return nil, nil
	default:
		return nil, fmt.Errorf("amqp: %w: tag %q", ErrFieldType, tag)
	}
}

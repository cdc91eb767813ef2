// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRoundTrip(t *testing.T) {
	in := Table{
		"str":    "hello",
		"bool":   true,
		"i32":    int32(-42),
		"u32":    uint32(42),
		"i64":    int64(-1 << 40),
		"f64":    float64(3.25),
		"bytes":  []byte{1, 2, 3},
		"nested": Table{"inner": "value"},
		"list":   []interface{}{int32(1), "two"},
		"dec":    Decimal{Scale: 2, Value: 12345},
	}

	encoded, err := encodeTable(in)
	require.NoError(t, err)

	out, err := decodeTable(encoded)
	require.NoError(t, err)

	assert.Equal(t, in["str"], out["str"])
	assert.Equal(t, in["bool"], out["bool"])
	assert.Equal(t, in["i32"], out["i32"])
	assert.Equal(t, in["u32"], out["u32"])
	assert.Equal(t, in["i64"], out["i64"])
	assert.Equal(t, in["f64"], out["f64"])
	assert.Equal(t, in["bytes"], out["bytes"])
	assert.Equal(t, in["dec"], out["dec"])

	nested, ok := out["nested"].(Table)
	require.True(t, ok)
	assert.Equal(t, "value", nested["inner"])

	list, ok := out["list"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, int32(1), list[0])
	assert.Equal(t, "two", list[1])
}

func TestTableRoundTripTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	encoded, err := encodeTable(Table{"at": ts})
	require.NoError(t, err)

	out, err := decodeTable(encoded)
	require.NoError(t, err)
	assert.True(t, ts.Equal(out["at"].(time.Time)))
}

func TestTableUnsupportedFieldTypeReturnsUsageError(t *testing.T) {
	_, err := encodeTable(Table{"bad": struct{ X int }{1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldType)
}

func TestDecodeTableTruncated(t *testing.T) {
	_, err := decodeTable([]byte{0x01, 'a'})
	assert.Error(t, err)
}

package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
)

func TestLeb128(t *testing.T) {
	e := New(nil, 8)
	e.WriteUnsignedLeb128(300)
	require.Equal(t, []byte{0xac, 0x02}, e.Bytes())
}

func TestStringPrefix(t *testing.T) {
	e := New(nil, 8)
	e.WriteString("hi")
	require.Equal(t, []byte{2, 'h', 'i'}, e.Bytes())
}

func TestNullableByte(t *testing.T) {
	e := New(nil, 8)
	e.WriteNull()
	require.Equal(t, []byte{1}, e.Bytes())

	e.Reset()
	e.WriteNonNull()
	require.Equal(t, []byte{0}, e.Bytes())
}

func TestIntRoundTripSigned(t *testing.T) {
	e := New(nil, 8)
	_, err := e.WriteInt32(-1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, e.Bytes())
}

func TestUInt8OutOfRange(t *testing.T) {
	e := New(nil, 8)
	_, err := e.WriteUInt8(-1)
	require.Error(t, err)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestDecimal32(t *testing.T) {
	e := New(nil, 8)
	_, err := e.WriteDecimal32("1.23", 2)
	require.NoError(t, err)
	require.Equal(t, []byte{123, 0, 0, 0}, e.Bytes())
}

func TestDecimal128ZeroPad(t *testing.T) {
	e := New(nil, 32)
	_, err := e.WriteDecimal128("1", 0)
	require.NoError(t, err)
	require.Len(t, e.Bytes(), 16)
	require.Equal(t, byte(1), e.Bytes()[0])
	for _, b := range e.Bytes()[1:] {
		require.Equal(t, byte(0), b)
	}
}

func TestDecimal128Negative(t *testing.T) {
	e := New(nil, 32)
	_, err := e.WriteDecimal128("-1", 0)
	require.NoError(t, err)
	require.Len(t, e.Bytes(), 16)
	for _, b := range e.Bytes() {
		require.Equal(t, byte(0xff), b)
	}
}

func TestDateTimeClamping(t *testing.T) {
	e := New(nil, 8)
	future := time.Unix(1<<40, 0).UTC()
	e.WriteDateTime(future)
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, e.Bytes())

	e.Reset()
	past := time.Unix(-100, 0).UTC()
	e.WriteDateTime(past)
	require.Equal(t, []byte{0, 0, 0, 0}, e.Bytes())
}

func TestWriteDefaultValueDateTime64(t *testing.T) {
	e := New(nil, 8)
	col := column.New("ts", chtype.DateTime64, false)
	require.NoError(t, e.WriteDefaultValue(col))
	require.Len(t, e.Bytes(), 8)
	require.Equal(t, byte(0xe8), e.Bytes()[0]) // 1000 little-endian first byte
}

func TestWriteDefaultValueString(t *testing.T) {
	e := New(nil, 8)
	col := column.New("s", chtype.String, false)
	require.NoError(t, e.WriteDefaultValue(col))
	require.Equal(t, []byte{0}, e.Bytes())
}

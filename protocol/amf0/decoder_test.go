package amf0

import (
	"bytes"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

func TestDecodeString(t *testing.T) {
	data := unhex(t, "02 00 05 68 65 6C 6C 6F")

	var s string
	require.NoError(t, Unmarshal(data, &s))
	assert.Equal(t, "hello", s)

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, String("hello"), v)
}

func TestDecodeBoolean(t *testing.T) {
	var b bool
	require.NoError(t, Unmarshal(unhex(t, "01 01"), &b))
	assert.True(t, b)

	require.NoError(t, Unmarshal(unhex(t, "01 00"), &b))
	assert.False(t, b)
}

func TestDecodeNumber(t *testing.T) {
	data := unhex(t, "00 3F F0 00 00 00 00 00 00")

	var f float64
	require.NoError(t, Unmarshal(data, &f))
	assert.Equal(t, 1.0, f)

	var i8 int8
	require.NoError(t, Unmarshal(data, &i8))
	assert.Equal(t, int8(1), i8)

	var u64 uint64
	require.NoError(t, Unmarshal(data, &u64))
	assert.Equal(t, uint64(1), u64)

	var i int
	require.NoError(t, Unmarshal(data, &i))
	assert.Equal(t, 1, i)
}

func TestDecodeObject(t *testing.T) {
	data := unhex(t, "03 00 01 61 01 01 00 00 09")

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, Object{{Key: "a", Value: Boolean(true)}}, v)

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	var m map[string]bool
	require.NoError(t, Unmarshal(data, &m))
	assert.Equal(t, map[string]bool{"a": true}, m)

	var s struct {
		A bool `amf0:"a"`
	}
	require.NoError(t, Unmarshal(data, &s))
	assert.True(t, s.A)
}

func TestDecodeEcmaArrayWithoutEnd(t *testing.T) {
	data := unhex(t, "08 00 00 00 02 00 01 6B 02 00 01 76 00 01 78 00 3F F0 00 00 00 00 00 00")

	d := NewBytesDecoder(data)
	v, err := d.DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, ECMAArray{
		{Key: "k", Value: String("v")},
		{Key: "x", Value: Number(1)},
	}, v)

	ok, err := d.HasRemaining()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeEcmaArrayWithEnd(t *testing.T) {
	data := unhex(t, "08 00 00 00 01 00 01 6B 02 00 01 76 00 00 09 01 01")

	d := NewBytesDecoder(data)
	var m map[string]string
	require.NoError(t, d.Decode(&m))
	assert.Equal(t, map[string]string{"k": "v"}, m)

	var b bool
	require.NoError(t, d.Decode(&b))
	assert.True(t, b)
}

func TestDecodeEcmaArrayEarlyEnd(t *testing.T) {
	// declares three pairs and closes after one
	data := unhex(t, "08 00 00 00 03 00 01 6B 02 00 01 76 00 00 09")

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, ECMAArray{{Key: "k", Value: String("v")}}, v)
}

func TestDecodeStrictArray(t *testing.T) {
	data := unhex(t, "0A 00 00 00 02 01 01 02 00 05 68 65 6C 6C 6F")

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, StrictArray{Boolean(true), String("hello")}, v)

	var pair [2]interface{}
	require.NoError(t, Unmarshal(data, &pair))
	assert.Equal(t, Boolean(true), pair[0])
	assert.Equal(t, String("hello"), pair[1])

	var triple [3]interface{}
	err = Unmarshal(data, &triple)
	var wrong *WrongArrayLengthError
	require.ErrorAs(t, err, &wrong)
	assert.Equal(t, 3, wrong.Expected)
	assert.Equal(t, 2, wrong.Got)
}

func TestDecodeEmptyContainers(t *testing.T) {
	v, err := NewBytesDecoder(unhex(t, "0A 00 00 00 00")).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, StrictArray{}, v)

	v, err = NewBytesDecoder(unhex(t, "03 00 00 09")).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, Object{}, v)

	var s []int
	require.NoError(t, Unmarshal(unhex(t, "0A 00 00 00 00"), &s))
	assert.NotNil(t, s)
	assert.Empty(t, s)
}

func TestDecodeTypedObject(t *testing.T) {
	data := unhex(t, "10 00 03 46 6F 6F 00 01 61 00 40 00 00 00 00 00 00 00 00 00 09")

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, TypedObject{
		ClassName:  "Foo",
		Properties: Object{{Key: "a", Value: Number(2)}},
	}, v)

	var s struct{ A int }
	require.NoError(t, Unmarshal(data, &s))
	assert.Equal(t, 2, s.A)
}

func TestDecodeDate(t *testing.T) {
	data := unhex(t, "0B 42 71 F7 1F B0 45 00 00 00 00")

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, Date(1234567890000), v)

	var f float64
	require.NoError(t, Unmarshal(data, &f))
	assert.Equal(t, 1234567890000.0, f)
}

func TestDecodeAll(t *testing.T) {
	data := unhex(t, "02 00 01 61 05 06 00 00 00 00 00 00 00 00 00")

	values, err := UnmarshalAll(data)
	require.NoError(t, err)
	assert.Equal(t, []Value{String("a"), Null{}, Undefined{}, Number(0)}, values)

	values, err = UnmarshalAll(nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDecodeReference(t *testing.T) {
	data := unhex(t, "07 00 01")

	v, err := NewBytesDecoder(data).DecodeValue()
	require.NoError(t, err)
	assert.Equal(t, Reference(1), v)

	var i int
	err = Unmarshal(data, &i)
	var unsupported *UnsupportedMarkerError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, MarkerReference, unsupported.Marker)

	_, err = Marshal(Reference(1))
	assert.ErrorAs(t, err, &unsupported)
}

func TestDecodeReservedMarkers(t *testing.T) {
	for _, m := range []Marker{MarkerMovieClip, MarkerUnsupported, MarkerRecordset, MarkerAVMPlusObject, MarkerObjectEnd} {
		_, err := NewBytesDecoder([]byte{byte(m)}).DecodeValue()
		var unsupported *UnsupportedMarkerError
		if assert.ErrorAs(t, err, &unsupported, m.String()) {
			assert.Equal(t, m, unsupported.Marker)
		}
	}
}

func TestDecodeUnknownMarker(t *testing.T) {
	_, err := NewBytesDecoder([]byte{0x12}).DecodeValue()
	var unknown *UnknownMarkerError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, byte(0x12), unknown.Byte)
}

func TestDecodeUnexpectedType(t *testing.T) {
	var s string
	err := Unmarshal(unhex(t, "01 01"), &s)
	var unexpected *UnexpectedTypeError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, MarkerBoolean, unexpected.Got)
	assert.Equal(t, stringMarkers, unexpected.Expected)

	var list []int
	err = Unmarshal(unhex(t, "03 00 00 09"), &list)
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, MarkerObject, unexpected.Got)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	var s string
	err := Unmarshal(unhex(t, "02 00 01 FF"), &s)
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = NewBytesDecoder(unhex(t, "03 00 01 FE 05 00 00 09")).DecodeValue()
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestDecodeIOErrors(t *testing.T) {
	var s string
	err := Unmarshal(nil, &s)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, io.EOF)

	err = Unmarshal(unhex(t, "02 00 05 68"), &s)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = NewDecoder(bytes.NewReader(unhex(t, "02 00 05 68"))).Decode(&s)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// object missing its terminator
	_, err = NewBytesDecoder(unhex(t, "03 00 01 61 01 01")).DecodeValue()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeInvalidTarget(t *testing.T) {
	data := unhex(t, "01 01")
	var b bool

	var invalid *InvalidUnmarshalError
	assert.ErrorAs(t, Unmarshal(data, b), &invalid)
	assert.ErrorAs(t, Unmarshal(data, nil), &invalid)
	assert.ErrorAs(t, Unmarshal(data, (*bool)(nil)), &invalid)

	var ch chan int
	var unsupported *UnsupportedTypeError
	assert.ErrorAs(t, Unmarshal(data, &ch), &unsupported)

	var stringer interface{ String() string }
	assert.ErrorAs(t, Unmarshal(data, &stringer), &unsupported)
}

func TestPeekMarker(t *testing.T) {
	d := NewBytesDecoder(unhex(t, "01 01"))
	m, err := d.PeekMarker()
	require.NoError(t, err)
	assert.Equal(t, MarkerBoolean, m)

	m, err = d.PeekMarker()
	require.NoError(t, err)
	assert.Equal(t, MarkerBoolean, m)

	b, err := d.DecodeBoolean()
	require.NoError(t, err)
	assert.True(t, b)

	ok, err := d.HasRemaining()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeObjectKeyPending(t *testing.T) {
	d := NewBytesDecoder(unhex(t, "03 00 00 09"))
	_, err := d.PeekMarker()
	require.NoError(t, err)

	_, _, err = d.DecodeObjectKey()
	assert.Equal(t, errPendingMarker, err)
}

func TestZeroCopy(t *testing.T) {
	data := unhex(t, "02 00 05 68 65 6C 6C 6F")

	d := NewBytesDecoder(data)
	assert.True(t, d.ZeroCopy())
	b, err := d.DecodeStringBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
	assert.Same(t, &data[3], &b[0])

	d = NewDecoder(bytes.NewReader(data))
	assert.False(t, d.ZeroCopy())
	b, err = d.DecodeStringBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
	assert.NotSame(t, &data[3], &b[0])
}

func TestReaderSourceMatchesBytesSource(t *testing.T) {
	long := strings.Repeat("ab", maxPrealloc)
	data, err := Marshal(Object{
		{Key: "long", Value: String(long)},
		{Key: "list", Value: StrictArray{Number(1), Null{}, Boolean(false)}},
		{Key: "ecma", Value: ECMAArray{{Key: "x", Value: Undefined{}}}},
	})
	require.NoError(t, err)

	fromBytes, err := NewBytesDecoder(data).DecodeAll()
	require.NoError(t, err)
	fromReader, err := NewDecoder(bytes.NewReader(data)).DecodeAll()
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromReader)

	obj := fromReader[0].(Object)
	v, ok := obj.Get("long")
	require.True(t, ok)
	assert.Equal(t, LongString(long), v)
}

func TestReaderSourceShortLongString(t *testing.T) {
	// declares 70000 bytes of payload and carries four
	data := unhex(t, "0C 00 01 11 70 61 62 63 64")

	var s string
	err := NewDecoder(bytes.NewReader(data)).Decode(&s)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

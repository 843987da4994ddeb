package amf0

import (
	"encoding/binary"
	"io"
	"math"
)

// Encoder writes AMF0 values to an io.Writer
type Encoder struct {
	w   io.Writer
	buf [9]byte
}

// NewEncoder returns an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) write(b []byte) error {
	if _, err := e.w.Write(b); err != nil {
		return &IOError{Err: err}
	}
	return nil
}

// WriteMarker writes a bare marker byte
func (e *Encoder) WriteMarker(m Marker) error {
	e.buf[0] = byte(m)
	return e.write(e.buf[:1])
}

func (e *Encoder) writeMarkerU16(m Marker, v uint16) error {
	e.buf[0] = byte(m)
	binary.BigEndian.PutUint16(e.buf[1:], v)
	return e.write(e.buf[:3])
}

func (e *Encoder) writeMarkerU32(m Marker, v uint32) error {
	e.buf[0] = byte(m)
	binary.BigEndian.PutUint32(e.buf[1:], v)
	return e.write(e.buf[:5])
}

func (e *Encoder) writeMarkerF64(m Marker, v float64) error {
	e.buf[0] = byte(m)
	binary.BigEndian.PutUint64(e.buf[1:], math.Float64bits(v))
	return e.write(e.buf[:9])
}

// EncodeNumber encodes amf0 number
// marker: 1 byte 0x00
// format: 8 byte big endian float64
func (e *Encoder) EncodeNumber(v float64) error {
	return e.writeMarkerF64(MarkerNumber, v)
}

// EncodeBoolean encodes amf0 boolean
// marker: 1 byte 0x01
// format: 1 byte, 0x00 = false, 0x01 = true
func (e *Encoder) EncodeBoolean(v bool) error {
	e.buf[0] = byte(MarkerBoolean)
	e.buf[1] = BooleanFalse
	if v {
		e.buf[1] = BooleanTrue
	}
	return e.write(e.buf[:2])
}

// EncodeString encodes amf0 string, switching to a long string when
// the value does not fit a u16 length
// marker: 1 byte 0x02
// format:
// - 2 byte big endian uint16 header to determine size
// - n (size) byte utf8 string
func (e *Encoder) EncodeString(v string) error {
	if len(v) > StringMax {
		return e.EncodeLongString(v)
	}
	if err := e.writeMarkerU16(MarkerString, uint16(len(v))); err != nil {
		return err
	}
	return e.write([]byte(v))
}

// EncodeLongString encodes amf0 long string
// marker: 1 byte 0x0c
// format:
// - 4 byte big endian uint32 header to determine size
// - n (size) byte utf8 string
func (e *Encoder) EncodeLongString(v string) error {
	return e.encodeLong(MarkerLongString, v)
}

// EncodeXMLDocument encodes amf0 XML document, laid out as a long string
// marker: 1 byte 0x0f
func (e *Encoder) EncodeXMLDocument(v string) error {
	return e.encodeLong(MarkerXMLDocument, v)
}

func (e *Encoder) encodeLong(m Marker, v string) error {
	if uint64(len(v)) > LongStringMax {
		return ErrTooLong
	}
	if err := e.writeMarkerU32(m, uint32(len(v))); err != nil {
		return err
	}
	return e.write([]byte(v))
}

// EncodeNull encodes amf0 null
// marker: 1 byte 0x05
// no additional data
func (e *Encoder) EncodeNull() error {
	return e.WriteMarker(MarkerNull)
}

// EncodeUndefined encodes amf0 undefined
// marker: 1 byte 0x06
// no additional data
func (e *Encoder) EncodeUndefined() error {
	return e.WriteMarker(MarkerUndefined)
}

// EncodeDate encodes amf0 date
// marker: 1 byte 0x0b
// format:
// - 8 byte big endian float64 milliseconds since epoch
// - 2 byte timezone, always zero
func (e *Encoder) EncodeDate(ms float64) error {
	if err := e.writeMarkerF64(MarkerDate, ms); err != nil {
		return err
	}
	e.buf[0], e.buf[1] = 0, 0
	return e.write(e.buf[:2])
}

// EncodeStrictArrayHeader encodes the header of amf0 strict array,
// exactly n values must follow
// marker: 1 byte 0x0a
// format: 4 byte big endian uint32 element count
func (e *Encoder) EncodeStrictArrayHeader(n int) error {
	if uint64(n) > math.MaxUint32 {
		return ErrTooLong
	}
	return e.writeMarkerU32(MarkerStrictArray, uint32(n))
}

// EncodeObjectHeader encodes the opening of amf0 object
// marker: 1 byte 0x03
func (e *Encoder) EncodeObjectHeader() error {
	return e.WriteMarker(MarkerObject)
}

// EncodeTypedObjectHeader encodes the opening of amf0 typed object
// marker: 1 byte 0x10
// format: u16 prefixed class name, then an object body
func (e *Encoder) EncodeTypedObjectHeader(className string) error {
	if err := e.WriteMarker(MarkerTypedObject); err != nil {
		return err
	}
	return e.EncodeNormalString(className)
}

// EncodeEcmaArrayHeader encodes the opening of amf0 ECMA array
// marker: 1 byte 0x08
// format: 4 byte big endian uint32 with length of associative array,
// then an object body
func (e *Encoder) EncodeEcmaArrayHeader(n int) error {
	if uint64(n) > math.MaxUint32 {
		return ErrTooLong
	}
	return e.writeMarkerU32(MarkerEcmaArray, uint32(n))
}

// EncodeNormalString encodes a bare u16 prefixed string without marker
func (e *Encoder) EncodeNormalString(v string) error {
	if len(v) > StringMax {
		return ErrTooLong
	}
	binary.BigEndian.PutUint16(e.buf[:2], uint16(len(v)))
	if err := e.write(e.buf[:2]); err != nil {
		return err
	}
	return e.write([]byte(v))
}

// EncodeObjectKey encodes an object key, the value must follow
func (e *Encoder) EncodeObjectKey(key string) error {
	return e.EncodeNormalString(key)
}

// EncodeObjectEnd terminates an object, typed object or ECMA array body
// with an empty string followed by 1 byte 0x09
func (e *Encoder) EncodeObjectEnd() error {
	return e.write(objectEnd[:])
}

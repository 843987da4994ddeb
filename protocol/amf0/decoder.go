package amf0

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"unicode/utf8"
)

var errPendingMarker = errors.New("amf0: object key requested while a marker is pending")

// Decoder reads AMF0 values from a Source.
//
// It holds at most one marker of look-ahead. A Decoder is not safe for
// concurrent use and should be dropped after any error other than a
// clean end of input.
type Decoder struct {
	src     Source
	next    Marker
	hasNext bool
}

// ObjectHeader describes the opening of an Object, TypedObject or EcmaArray
type ObjectHeader struct {
	Marker Marker
	// ClassName is set for TypedObject
	ClassName string
	// Size is the declared length of an EcmaArray
	Size uint32
}

// NewDecoder returns a decoder reading from a stream
func NewDecoder(r io.Reader) *Decoder {
	return NewSourceDecoder(NewReaderSource(r))
}

// NewBytesDecoder returns a zero-copy decoder over b
func NewBytesDecoder(b []byte) *Decoder {
	return NewSourceDecoder(NewBytesSource(b))
}

// NewSourceDecoder returns a decoder reading from src
func NewSourceDecoder(src Source) *Decoder {
	return &Decoder{src: src}
}

// ZeroCopy reports whether decoded byte slices alias the source buffer
func (d *Decoder) ZeroCopy() bool {
	zc, ok := d.src.(ZeroCopy)
	return ok && zc.ZeroCopy()
}

func (d *Decoder) read(n int) ([]byte, error) {
	b, err := d.src.ReadExact(n)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	return b, nil
}

func (d *Decoder) readU16() (uint16, error) {
	b, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) readU32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) readF64() (float64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (d *Decoder) readUTF8(n int) ([]byte, error) {
	b, err := d.read(n)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, ErrInvalidUTF8
	}
	return b, nil
}

// HasRemaining reports whether another value can be read
func (d *Decoder) HasRemaining() (bool, error) {
	if d.hasNext {
		return true, nil
	}
	b, err := d.src.Peek(1)
	if len(b) > 0 {
		return true, nil
	}
	if err == nil || err == io.EOF {
		return false, nil
	}
	return false, &IOError{Err: err}
}

// PeekMarker returns the next marker without consuming it.
// Repeated peeks return the same marker.
func (d *Decoder) PeekMarker() (Marker, error) {
	if d.hasNext {
		return d.next, nil
	}
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	m, err := ParseMarker(b[0])
	if err != nil {
		return 0, err
	}
	d.next, d.hasNext = m, true
	return m, nil
}

// ConsumeMarker returns the next marker and clears the look-ahead
func (d *Decoder) ConsumeMarker() (Marker, error) {
	m, err := d.PeekMarker()
	if err != nil {
		return 0, err
	}
	d.hasNext = false
	return m, nil
}

// ExpectMarker consumes the next marker and requires it to be one of allowed
func (d *Decoder) ExpectMarker(allowed ...Marker) (Marker, error) {
	m, err := d.ConsumeMarker()
	if err != nil {
		return 0, err
	}
	if !m.in(allowed) {
		return 0, unexpected(allowed, m)
	}
	return m, nil
}

// DecodeNumber decodes amf0 number, a date decodes to its milliseconds
// marker: 1 byte 0x00 (or 0x0b)
// format: 8 byte big endian float64 (date: followed by 2 byte timezone)
func (d *Decoder) DecodeNumber() (float64, error) {
	m, err := d.ExpectMarker(numberMarkers...)
	if err != nil {
		return 0, err
	}
	n, err := d.readF64()
	if err != nil {
		return 0, err
	}
	if m == MarkerDate {
		// timezone is reserved and ignored
		if _, err = d.read(2); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// DecodeBoolean decodes amf0 boolean
// marker: 1 byte 0x01
// format: 1 byte, nonzero = true
func (d *Decoder) DecodeBoolean() (bool, error) {
	if _, err := d.ExpectMarker(booleanMarkers...); err != nil {
		return false, err
	}
	b, err := d.read(1)
	if err != nil {
		return false, err
	}
	return b[0] != BooleanFalse, nil
}

// DecodeStringBytes decodes a string, long string or XML document and
// returns its validated UTF-8 bytes. The slice aliases the source
// buffer when the source is zero-copy.
func (d *Decoder) DecodeStringBytes() ([]byte, error) {
	m, err := d.ExpectMarker(stringMarkers...)
	if err != nil {
		return nil, err
	}
	var n int
	if m == MarkerString {
		l, err := d.readU16()
		if err != nil {
			return nil, err
		}
		n = int(l)
	} else {
		l, err := d.readU32()
		if err != nil {
			return nil, err
		}
		n = int(l)
	}
	return d.readUTF8(n)
}

// DecodeString decodes amf0 string
// marker: 1 byte 0x02 (long string 0x0c, XML document 0x0f)
// format:
// - 2 byte big endian uint16 size (4 byte uint32 for long forms)
// - n (size) byte utf8 string
func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeStringBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeNormalString decodes a bare u16 prefixed string without any
// marker, as used for object keys and class names
func (d *Decoder) DecodeNormalString() (string, error) {
	n, err := d.readU16()
	if err != nil {
		return "", err
	}
	b, err := d.readUTF8(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeNull decodes amf0 null or undefined
// marker: 1 byte 0x05 (or 0x06)
// no additional data
func (d *Decoder) DecodeNull() error {
	_, err := d.ExpectMarker(nullMarkers...)
	return err
}

// DecodeReference decodes amf0 reference and returns the table index
// marker: 1 byte 0x07
// format: 2 byte big endian uint16
func (d *Decoder) DecodeReference() (uint16, error) {
	if _, err := d.ExpectMarker(referenceMarkers...); err != nil {
		return 0, err
	}
	return d.readU16()
}

// DecodeStrictArrayHeader decodes the header of amf0 strict array
// marker: 1 byte 0x0a
// format: 4 byte big endian uint32 element count
func (d *Decoder) DecodeStrictArrayHeader() (uint32, error) {
	if _, err := d.ExpectMarker(strictArrayMarkers...); err != nil {
		return 0, err
	}
	return d.readU32()
}

// DecodeObjectHeader decodes the opening of an object, typed object or
// ECMA array
// - object: marker 0x03
// - typed object: marker 0x10, u16 prefixed class name
// - ECMA array: marker 0x08, 4 byte big endian uint32 size
func (d *Decoder) DecodeObjectHeader() (ObjectHeader, error) {
	m, err := d.ExpectMarker(objectMarkers...)
	if err != nil {
		return ObjectHeader{}, err
	}
	h := ObjectHeader{Marker: m}
	switch m {
	case MarkerTypedObject:
		h.ClassName, err = d.DecodeNormalString()
	case MarkerEcmaArray:
		h.Size, err = d.readU32()
	}
	if err != nil {
		return ObjectHeader{}, err
	}
	return h, nil
}

// DecodeObjectKey decodes the next key of an object body. ok is false
// once the 00 00 09 terminator has been consumed.
func (d *Decoder) DecodeObjectKey() (key string, ok bool, err error) {
	if d.hasNext {
		return "", false, errPendingMarker
	}
	end, err := d.consumeObjectEnd()
	if err != nil || end {
		return "", false, err
	}
	key, err = d.DecodeNormalString()
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// consumeObjectEnd consumes the terminator if it is next in the source
// and leaves the position untouched otherwise
func (d *Decoder) consumeObjectEnd() (bool, error) {
	b, err := d.src.Peek(len(objectEnd))
	if len(b) < len(objectEnd) {
		if err != nil && err != io.EOF {
			return false, &IOError{Err: err}
		}
		return false, nil
	}
	if b[0] != objectEnd[0] || b[1] != objectEnd[1] || b[2] != objectEnd[2] {
		return false, nil
	}
	_, err = d.read(len(objectEnd))
	return err == nil, err
}

// entries walks the body of an object whose header was just decoded,
// calling fn once per key with the decoder positioned on the value.
// fn must consume exactly one value.
func (d *Decoder) entries(h ObjectHeader, fn func(key string) error) error {
	if h.Marker != MarkerEcmaArray {
		for {
			key, ok, err := d.DecodeObjectKey()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err = fn(key); err != nil {
				return err
			}
		}
	}

	// the declared size is authoritative, the terminator is optional
	for i := uint32(0); i < h.Size; i++ {
		key, ok, err := d.DecodeObjectKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err = fn(key); err != nil {
			return err
		}
	}
	_, err := d.consumeObjectEnd()
	return err
}

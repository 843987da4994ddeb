package amf0

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrInvalidUTF8 means string contents failed UTF-8 validation
	ErrInvalidUTF8 = errors.New("amf0: invalid utf-8 string")
	// ErrTooLong means a string, key or array does not fit its length prefix
	ErrTooLong = errors.New("amf0: element is too long")
	// ErrMapKeyNotString means a map with non-string keys was encoded
	ErrMapKeyNotString = errors.New("amf0: cannot encode map with non-string key")
)

// IOError wraps a failure of the underlying byte source or sink.
// End of input unwraps to io.EOF or io.ErrUnexpectedEOF.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return "amf0: io error: " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// UnknownMarkerError is returned for a marker byte outside the marker table
type UnknownMarkerError struct {
	Byte byte
}

func (e *UnknownMarkerError) Error() string {
	return fmt.Sprintf("amf0: unknown marker: 0x%02x", e.Byte)
}

// UnexpectedTypeError is returned when a typed context reads the wrong marker
type UnexpectedTypeError struct {
	Expected []Marker
	Got      Marker
}

func (e *UnexpectedTypeError) Error() string {
	names := make([]string, len(e.Expected))
	for i, m := range e.Expected {
		names[i] = m.String()
	}
	return fmt.Sprintf("amf0: unexpected type: expected one of [%s], got %s", strings.Join(names, ", "), e.Got)
}

// UnsupportedMarkerError is returned for a marker the current path cannot handle
type UnsupportedMarkerError struct {
	Marker Marker
}

func (e *UnsupportedMarkerError) Error() string {
	return "amf0: this marker cannot be decoded: " + e.Marker.String()
}

// UnsupportedTypeError is returned for a Go type the wire cannot represent
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return "amf0: this type is not supported: " + e.Type
}

// WrongArrayLengthError is returned when a strict array or a multi value
// disagrees with a fixed-arity destination
type WrongArrayLengthError struct {
	Expected int
	Got      int
}

func (e *WrongArrayLengthError) Error() string {
	return fmt.Sprintf("amf0: wrong array length: expected %d, got %d", e.Expected, e.Got)
}

// UnknownVariantError is returned when a variant tag names no arm of a union
type UnknownVariantError struct {
	Name string
	Type reflect.Type
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("amf0: unknown variant %q for %s", e.Name, e.Type)
}

// InvalidUnmarshalError describes an invalid argument passed to Decode.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "amf0: Decode(nil)"
	}
	if e.Type.Kind() != reflect.Ptr {
		return "amf0: Decode(non-pointer " + e.Type.String() + ")"
	}
	return "amf0: Decode(nil " + e.Type.String() + ")"
}

func unexpected(expected []Marker, got Marker) error {
	return &UnexpectedTypeError{Expected: expected, Got: got}
}

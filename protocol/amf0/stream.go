package amf0

import (
	"io"
	"reflect"
)

// Stream decodes consecutive top-level values of type T.
//
//	s := amf0.NewStream[string](amf0.NewDecoder(r))
//	for s.Next() {
//		fmt.Println(s.Value())
//	}
//	if err := s.Err(); err != nil {
//		...
//	}
type Stream[T any] struct {
	d   *Decoder
	cur T
	err error
}

// NewStream returns a stream over d
func NewStream[T any](d *Decoder) *Stream[T] {
	return &Stream[T]{d: d}
}

// NewReaderStream returns a stream over r
func NewReaderStream[T any](r io.Reader) *Stream[T] {
	return NewStream[T](NewDecoder(r))
}

// Next decodes the next value. It returns false at a clean end of input
// or on the first error, Next never resumes after an error.
func (s *Stream[T]) Next() bool {
	if s.err != nil {
		return false
	}
	ok, err := s.d.HasRemaining()
	if err != nil {
		s.err = err
		return false
	}
	if !ok {
		return false
	}
	var v T
	if err := s.d.Decode(&v); err != nil {
		s.err = err
		return false
	}
	s.cur = v
	return true
}

// Value returns the value decoded by the last successful Next
func (s *Stream[T]) Value() T { return s.cur }

// Err returns the error that stopped the stream, nil at a clean end
func (s *Stream[T]) Err() error { return s.err }

// MultiValue reads and writes its content as a sequence of top-level
// values rather than one container. A struct takes one value per
// field, an array exactly one per element and a slice every value up
// to the end of input. Trailing pointer fields of a struct stay nil
// when input runs out.
//
// Decoding a MultiValue consumes the remainder of its source.
type MultiValue[T any] struct {
	Values T
}

// UnmarshalAMF0 implements Unmarshaler
func (m *MultiValue[T]) UnmarshalAMF0(d *Decoder) error {
	return d.decodeMulti(reflect.ValueOf(&m.Values).Elem())
}

// MarshalAMF0 implements Marshaler
func (m MultiValue[T]) MarshalAMF0(e *Encoder) error {
	return e.encodeMulti(reflect.ValueOf(&m.Values).Elem())
}

func (d *Decoder) decodeMulti(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice:
		elem := rv.Type().Elem()
		s := reflect.MakeSlice(rv.Type(), 0, 0)
		for i := 0; ; i++ {
			ok, err := d.HasRemaining()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			s = reflect.Append(s, reflect.Zero(elem))
			if err := d.decodeReflect(s.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(s)
		return nil
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			ok, err := d.HasRemaining()
			if err != nil {
				return err
			}
			if !ok {
				return &WrongArrayLengthError{Expected: rv.Len(), Got: i}
			}
			if err := d.decodeReflect(rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		if rv.Type() == timeType {
			break
		}
		info, err := cachedStructInfo(rv.Type())
		if err != nil {
			return err
		}
		if info.union() {
			break
		}
		for i := range info.fields {
			f := &info.fields[i]
			ok, err := d.HasRemaining()
			if err != nil {
				return err
			}
			if !ok {
				if f.typ.Kind() == reflect.Ptr {
					continue
				}
				return &WrongArrayLengthError{Expected: len(info.fields), Got: i}
			}
			if err := d.decodeReflect(rv.FieldByIndex(f.index)); err != nil {
				return err
			}
		}
		return nil
	}
	return d.decodeReflect(rv)
}

func (e *Encoder) encodeMulti(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeReflect(rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		if rv.Type() == timeType {
			break
		}
		info, err := cachedStructInfo(rv.Type())
		if err != nil {
			return err
		}
		if info.union() {
			break
		}
		for i := range info.fields {
			f := &info.fields[i]
			fv := rv.FieldByIndex(f.index)
			if f.omitEmpty && isEmptyValue(fv) {
				continue
			}
			if err := e.encodeReflect(fv); err != nil {
				return err
			}
		}
		return nil
	}
	return e.encodeReflect(rv)
}

package amf0

import (
	"bytes"
	"errors"
	"reflect"
	"sort"
	"time"
)

// Marshaler is implemented by types that encode themselves.
// MarshalAMF0 writes one complete value, or a complete sequence of
// values for types standing in for several arguments.
type Marshaler interface {
	MarshalAMF0(e *Encoder) error
}

// ClassNamer is implemented by structs encoded as typed objects
type ClassNamer interface {
	AMF0ClassName() string
}

var (
	marshalerType  = reflect.TypeOf((*Marshaler)(nil)).Elem()
	classNamerType = reflect.TypeOf((*ClassNamer)(nil)).Elem()
)

var errVariantCount = errors.New("amf0: a union must have exactly one active variant")

// Marshal returns the AMF0 encoding of v
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v as exactly one top-level value.
//
// Integers and floats encode as numbers, string kinds as strings,
// slices and arrays as strict arrays, maps with string keys as objects
// with sorted keys, and structs as objects in field order. Nil pointers,
// interfaces and Values encode as null.
func (e *Encoder) Encode(v interface{}) error {
	return e.encodeReflect(reflect.ValueOf(v))
}

func (e *Encoder) encodeReflect(rv reflect.Value) error {
	if !rv.IsValid() {
		return e.EncodeNull()
	}
	t := rv.Type()
	if t.Implements(marshalerType) {
		if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return e.EncodeNull()
		}
		return rv.Interface().(Marshaler).MarshalAMF0(e)
	}
	if rv.Kind() != reflect.Ptr && rv.CanAddr() && reflect.PtrTo(t).Implements(marshalerType) {
		return rv.Addr().Interface().(Marshaler).MarshalAMF0(e)
	}
	if t == timeType {
		return e.EncodeDate(timeToMs(rv.Interface().(time.Time)))
	}

	switch rv.Kind() {
	case reflect.Bool:
		return e.EncodeBoolean(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.EncodeNumber(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.EncodeNumber(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return e.EncodeNumber(rv.Float())
	case reflect.String:
		return e.EncodeString(rv.String())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return e.EncodeNull()
		}
		return e.encodeReflect(rv.Elem())
	case reflect.Slice, reflect.Array:
		if err := e.EncodeStrictArrayHeader(rv.Len()); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeReflect(rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		return e.encodeMap(rv)
	case reflect.Struct:
		return e.encodeStruct(rv)
	}
	return &UnsupportedTypeError{Type: t.String()}
}

func (e *Encoder) encodeMap(rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return ErrMapKeyNotString
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	if err := e.EncodeObjectHeader(); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.EncodeObjectKey(k.String()); err != nil {
			return err
		}
		if err := e.encodeReflect(rv.MapIndex(k)); err != nil {
			return err
		}
	}
	return e.EncodeObjectEnd()
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	info, err := cachedStructInfo(rv.Type())
	if err != nil {
		return err
	}
	if info.union() {
		return e.encodeUnion(rv, info)
	}

	if name, ok := className(rv); ok {
		err = e.EncodeTypedObjectHeader(name)
	} else {
		err = e.EncodeObjectHeader()
	}
	if err != nil {
		return err
	}
	for i := range info.fields {
		f := &info.fields[i]
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := e.EncodeObjectKey(f.name); err != nil {
			return err
		}
		if err := e.encodeReflect(fv); err != nil {
			return err
		}
	}
	if info.rest != nil {
		return e.encodeProperties(rv.FieldByIndex(info.rest).Interface().(Object))
	}
	return e.EncodeObjectEnd()
}

func className(rv reflect.Value) (string, bool) {
	if rv.Type().Implements(classNamerType) {
		return rv.Interface().(ClassNamer).AMF0ClassName(), true
	}
	if rv.CanAddr() && reflect.PtrTo(rv.Type()).Implements(classNamerType) {
		return rv.Addr().Interface().(ClassNamer).AMF0ClassName(), true
	}
	return "", false
}

// encodeUnion writes a unit arm as a bare string and a payload arm as a
// single-key object
func (e *Encoder) encodeUnion(rv reflect.Value, info *structInfo) error {
	var active *field
	for i := range info.arms {
		arm := &info.arms[i]
		fv := rv.FieldByIndex(arm.index)
		set := fv.Kind() == reflect.Bool && fv.Bool() || fv.Kind() == reflect.Ptr && !fv.IsNil()
		if !set {
			continue
		}
		if active != nil {
			return errVariantCount
		}
		active = arm
	}
	if active == nil {
		return errVariantCount
	}
	if active.unit {
		return e.EncodeString(active.name)
	}

	if err := e.EncodeObjectHeader(); err != nil {
		return err
	}
	if err := e.EncodeObjectKey(active.name); err != nil {
		return err
	}
	if err := e.encodeReflect(rv.FieldByIndex(active.index).Elem()); err != nil {
		return err
	}
	return e.EncodeObjectEnd()
}

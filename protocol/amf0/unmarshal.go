package amf0

import (
	"errors"
	"math"
	"reflect"
	"time"
)

// Unmarshaler is implemented by types that decode themselves.
// UnmarshalAMF0 must consume whole values, exactly one unless the type
// stands in for a sequence like MultiValue.
type Unmarshaler interface {
	UnmarshalAMF0(d *Decoder) error
}

var (
	valueType  = reflect.TypeOf((*Value)(nil)).Elem()
	objectType = reflect.TypeOf(Object(nil))
	timeType   = reflect.TypeOf(time.Time{})
)

var variantMarkers = []Marker{
	MarkerString, MarkerLongString, MarkerXMLDocument,
	MarkerObject, MarkerTypedObject, MarkerEcmaArray,
}

var errVariantObject = errors.New("amf0: a variant object must hold exactly one key")

// Unmarshal decodes the first value in data into v
func Unmarshal(data []byte, v interface{}) error {
	return NewBytesDecoder(data).Decode(v)
}

// UnmarshalAll decodes every value in data
func UnmarshalAll(data []byte) ([]Value, error) {
	return NewBytesDecoder(data).DecodeAll()
}

// Decode decodes exactly one top-level value into the value pointed to by v.
//
// Numbers decode into any integer type truncated toward zero, strings
// into string kinds, strict arrays into slices and arrays, objects,
// typed objects and ECMA arrays into maps and structs. A pointer is an
// option: null and undefined leave it nil. Interface destinations
// receive a dynamic Value.
func (d *Decoder) Decode(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(v)}
	}
	return d.decodeReflect(rv.Elem())
}

func (d *Decoder) decodeReflect(rv reflect.Value) error {
	if rv.Kind() == reflect.Ptr {
		return d.decodeOption(rv)
	}
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalAMF0(d)
		}
	}
	if rv.Kind() == reflect.Interface {
		return d.decodeInterface(rv)
	}

	m, err := d.PeekMarker()
	if err != nil {
		return err
	}
	switch m {
	case MarkerReference, MarkerUnsupported, MarkerMovieClip, MarkerRecordset,
		MarkerAVMPlusObject, MarkerObjectEnd:
		return &UnsupportedMarkerError{Marker: m}
	}

	if rv.Type() == timeType {
		ms, err := d.DecodeNumber()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(msToTime(ms)))
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, err := d.DecodeBoolean()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := d.DecodeNumber()
		if err != nil {
			return err
		}
		rv.SetInt(int64(truncate(n)))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := d.DecodeNumber()
		if err != nil {
			return err
		}
		rv.SetUint(truncate(n))
		return nil
	case reflect.Float32, reflect.Float64:
		n, err := d.DecodeNumber()
		if err != nil {
			return err
		}
		rv.SetFloat(n)
		return nil
	case reflect.String:
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Slice:
		return d.decodeSlice(rv)
	case reflect.Array:
		return d.decodeArray(rv)
	case reflect.Map:
		return d.decodeMap(rv)
	case reflect.Struct:
		return d.decodeStruct(rv)
	}
	return &UnsupportedTypeError{Type: rv.Type().String()}
}

// decodeOption leaves rv nil on null or undefined and otherwise decodes
// into its element with the marker still pending
func (d *Decoder) decodeOption(rv reflect.Value) error {
	m, err := d.PeekMarker()
	if err != nil {
		return err
	}
	if m == MarkerNull || m == MarkerUndefined {
		d.hasNext = false
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	if rv.IsNil() {
		rv.Set(reflect.New(rv.Type().Elem()))
	}
	return d.decodeReflect(rv.Elem())
}

func (d *Decoder) decodeInterface(rv reflect.Value) error {
	if rv.NumMethod() != 0 && rv.Type() != valueType {
		return &UnsupportedTypeError{Type: rv.Type().String()}
	}
	v, err := d.DecodeValue()
	if err != nil {
		return err
	}
	rv.Set(reflect.ValueOf(v))
	return nil
}

func (d *Decoder) decodeSlice(rv reflect.Value) error {
	n, err := d.DecodeStrictArrayHeader()
	if err != nil {
		return err
	}
	elem := rv.Type().Elem()
	s := reflect.MakeSlice(rv.Type(), 0, capHint(n))
	for i := 0; i < int(n); i++ {
		s = reflect.Append(s, reflect.Zero(elem))
		if err := d.decodeReflect(s.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(s)
	return nil
}

// decodeArray treats a Go array as a tuple of fixed arity
func (d *Decoder) decodeArray(rv reflect.Value) error {
	n, err := d.DecodeStrictArrayHeader()
	if err != nil {
		return err
	}
	if int(n) != rv.Len() {
		return &WrongArrayLengthError{Expected: rv.Len(), Got: int(n)}
	}
	for i := 0; i < rv.Len(); i++ {
		if err := d.decodeReflect(rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeMap(rv reflect.Value) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return &UnsupportedTypeError{Type: t.String()}
	}
	h, err := d.DecodeObjectHeader()
	if err != nil {
		return err
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}
	return d.entries(h, func(key string) error {
		elem := reflect.New(t.Elem()).Elem()
		if err := d.decodeReflect(elem); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
		return nil
	})
}

// decodeStruct fills the fields of rv from an object body. A typed
// object's class name is dropped; unknown keys land in the rest field
// or are skipped.
func (d *Decoder) decodeStruct(rv reflect.Value) error {
	info, err := cachedStructInfo(rv.Type())
	if err != nil {
		return err
	}
	if info.union() {
		return d.decodeUnion(rv, info)
	}

	h, err := d.DecodeObjectHeader()
	if err != nil {
		return err
	}
	return d.entries(h, func(key string) error {
		if f, ok := info.lookup(key); ok {
			return d.decodeReflect(rv.FieldByIndex(f.index))
		}
		v, err := d.DecodeValue()
		if err != nil {
			return err
		}
		if info.rest != nil {
			rest := rv.FieldByIndex(info.rest).Addr().Interface().(*Object)
			*rest = append(*rest, Property{Key: key, Value: v})
		}
		return nil
	})
}

// decodeUnion accepts a bare string naming a unit arm, or an object with
// a single key naming any arm and holding its payload
func (d *Decoder) decodeUnion(rv reflect.Value, info *structInfo) error {
	m, err := d.PeekMarker()
	if err != nil {
		return err
	}

	if m.in(stringMarkers) {
		name, err := d.DecodeString()
		if err != nil {
			return err
		}
		arm, ok := info.arm(name)
		if !ok {
			return &UnknownVariantError{Name: name, Type: rv.Type()}
		}
		if !arm.unit {
			return unexpected([]Marker{MarkerObject}, m)
		}
		rv.Set(reflect.Zero(rv.Type()))
		rv.FieldByIndex(arm.index).SetBool(true)
		return nil
	}

	if !m.in(objectMarkers) {
		d.hasNext = false
		return unexpected(variantMarkers, m)
	}
	h, err := d.DecodeObjectHeader()
	if err != nil {
		return err
	}
	count := 0
	err = d.entries(h, func(key string) error {
		if count++; count > 1 {
			return errVariantObject
		}
		arm, ok := info.arm(key)
		if !ok {
			return &UnknownVariantError{Name: key, Type: rv.Type()}
		}
		rv.Set(reflect.Zero(rv.Type()))
		fv := rv.FieldByIndex(arm.index)
		if arm.unit {
			fv.SetBool(true)
			_, err := d.DecodeValue()
			return err
		}
		fv.Set(reflect.New(fv.Type().Elem()))
		return d.decodeReflect(fv.Elem())
	})
	if err == nil && count == 0 {
		err = errVariantObject
	}
	return err
}

// truncate converts x toward zero and wraps it into 64 bits, NaN and
// infinities become zero
func truncate(x float64) uint64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	t := math.Trunc(x)
	if t >= -(1<<63) && t < 1<<63 {
		return uint64(int64(t))
	}
	m := math.Mod(t, 1<<64)
	if m < 0 {
		m += 1 << 64
	}
	return uint64(m)
}

func msToTime(ms float64) time.Time {
	sec := math.Floor(ms / 1000)
	nsec := (ms - sec*1000) * float64(time.Millisecond)
	return time.Unix(int64(sec), int64(nsec)).UTC()
}

func timeToMs(t time.Time) float64 {
	return float64(t.Unix())*1000 + float64(t.Nanosecond())/float64(time.Millisecond)
}

package amf0

// Value is any decoded AMF0 tree. The set of implementations is closed:
// Number, Boolean, String, LongString, XMLDocument, Date, Null,
// Undefined, Reference, Object, TypedObject, ECMAArray and StrictArray.
type Value interface {
	Marshaler
	// Marker returns the wire tag the value is written with
	Marker() Marker
	amf0Value()
}

// Number is an AMF0 number
type Number float64

// Boolean is an AMF0 boolean
type Boolean bool

// String is an AMF0 string, written as a long string past 65535 bytes
type String string

// LongString is an AMF0 long string
type LongString string

// XMLDocument is an AMF0 XML document
type XMLDocument string

// Date is an AMF0 date in milliseconds since epoch, the timezone is dropped
type Date float64

// Null is the AMF0 null
type Null struct{}

// Undefined is the AMF0 undefined
type Undefined struct{}

// Reference is the index of an AMF0 reference, it is decode only
type Reference uint16

// Property is one key/value pair of an object body
type Property struct {
	Key   string
	Value Value
}

// Object is an AMF0 anonymous object, insertion order is preserved
type Object []Property

// ECMAArray is an AMF0 ECMA array, insertion order is preserved
type ECMAArray []Property

// TypedObject is an AMF0 object carrying a class name
type TypedObject struct {
	ClassName  string
	Properties Object
}

// StrictArray is an AMF0 strict array
type StrictArray []Value

func (Number) Marker() Marker      { return MarkerNumber }
func (Boolean) Marker() Marker     { return MarkerBoolean }
func (String) Marker() Marker      { return MarkerString }
func (LongString) Marker() Marker  { return MarkerLongString }
func (XMLDocument) Marker() Marker { return MarkerXMLDocument }
func (Date) Marker() Marker        { return MarkerDate }
func (Null) Marker() Marker        { return MarkerNull }
func (Undefined) Marker() Marker   { return MarkerUndefined }
func (Reference) Marker() Marker   { return MarkerReference }
func (Object) Marker() Marker      { return MarkerObject }
func (ECMAArray) Marker() Marker   { return MarkerEcmaArray }
func (TypedObject) Marker() Marker { return MarkerTypedObject }
func (StrictArray) Marker() Marker { return MarkerStrictArray }

func (Number) amf0Value()      {}
func (Boolean) amf0Value()     {}
func (String) amf0Value()      {}
func (LongString) amf0Value()  {}
func (XMLDocument) amf0Value() {}
func (Date) amf0Value()        {}
func (Null) amf0Value()        {}
func (Undefined) amf0Value()   {}
func (Reference) amf0Value()   {}
func (Object) amf0Value()      {}
func (ECMAArray) amf0Value()   {}
func (TypedObject) amf0Value() {}
func (StrictArray) amf0Value() {}

// Get returns the value stored under key
func (o Object) Get(key string) (Value, bool) {
	return getProperty(o, key)
}

// Set replaces the value under key or appends it
func (o *Object) Set(key string, v Value) {
	*o = setProperty(*o, key, v)
}

// Get returns the value stored under key
func (a ECMAArray) Get(key string) (Value, bool) {
	return getProperty(a, key)
}

// Set replaces the value under key or appends it
func (a *ECMAArray) Set(key string, v Value) {
	*a = setProperty(*a, key, v)
}

func getProperty(props []Property, key string) (Value, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

func setProperty(props []Property, key string, v Value) []Property {
	for i := range props {
		if props[i].Key == key {
			props[i].Value = v
			return props
		}
	}
	return append(props, Property{Key: key, Value: v})
}

// Interface converts v into plain Go values: float64, bool, string,
// map[string]interface{}, []interface{} and nil. Dates become their
// milliseconds and references their index.
func Interface(v Value) interface{} {
	switch v := v.(type) {
	case Number:
		return float64(v)
	case Boolean:
		return bool(v)
	case String:
		return string(v)
	case LongString:
		return string(v)
	case XMLDocument:
		return string(v)
	case Date:
		return float64(v)
	case Reference:
		return uint16(v)
	case Object:
		return propertiesMap(v)
	case ECMAArray:
		return propertiesMap(v)
	case TypedObject:
		return propertiesMap(v.Properties)
	case StrictArray:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = Interface(e)
		}
		return out
	}
	return nil
}

func propertiesMap(props []Property) map[string]interface{} {
	m := make(map[string]interface{}, len(props))
	for _, p := range props {
		m[p.Key] = Interface(p.Value)
	}
	return m
}

// DecodeValue decodes exactly one top-level value of any kind
func (d *Decoder) DecodeValue() (Value, error) {
	m, err := d.PeekMarker()
	if err != nil {
		return nil, err
	}

	switch m {
	case MarkerNumber:
		n, err := d.DecodeNumber()
		return Number(n), err
	case MarkerDate:
		n, err := d.DecodeNumber()
		return Date(n), err
	case MarkerBoolean:
		b, err := d.DecodeBoolean()
		return Boolean(b), err
	case MarkerString:
		s, err := d.DecodeString()
		return String(s), err
	case MarkerLongString:
		s, err := d.DecodeString()
		return LongString(s), err
	case MarkerXMLDocument:
		s, err := d.DecodeString()
		return XMLDocument(s), err
	case MarkerNull:
		return Null{}, d.DecodeNull()
	case MarkerUndefined:
		return Undefined{}, d.DecodeNull()
	case MarkerReference:
		r, err := d.DecodeReference()
		return Reference(r), err
	case MarkerObject, MarkerTypedObject, MarkerEcmaArray:
		return d.decodeObjectValue()
	case MarkerStrictArray:
		var a StrictArray
		err := a.UnmarshalAMF0(d)
		return a, err
	}
	return nil, &UnsupportedMarkerError{Marker: m}
}

// DecodeAll decodes values until the source is exhausted
func (d *Decoder) DecodeAll() ([]Value, error) {
	var values []Value
	for {
		ok, err := d.HasRemaining()
		if err != nil {
			return values, err
		}
		if !ok {
			return values, nil
		}
		v, err := d.DecodeValue()
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
}

func (d *Decoder) decodeObjectValue() (Value, error) {
	h, err := d.DecodeObjectHeader()
	if err != nil {
		return nil, err
	}
	props, err := d.decodeProperties(h)
	if err != nil {
		return nil, err
	}
	switch h.Marker {
	case MarkerTypedObject:
		return TypedObject{ClassName: h.ClassName, Properties: Object(props)}, nil
	case MarkerEcmaArray:
		return ECMAArray(props), nil
	}
	return Object(props), nil
}

func (d *Decoder) decodeProperties(h ObjectHeader) ([]Property, error) {
	props := make([]Property, 0, capHint(h.Size))
	err := d.entries(h, func(key string) error {
		v, err := d.DecodeValue()
		if err != nil {
			return err
		}
		props = append(props, Property{Key: key, Value: v})
		return nil
	})
	return props, err
}

// MarshalAMF0 implements Marshaler
func (v Number) MarshalAMF0(e *Encoder) error { return e.EncodeNumber(float64(v)) }

// MarshalAMF0 implements Marshaler
func (v Boolean) MarshalAMF0(e *Encoder) error { return e.EncodeBoolean(bool(v)) }

// MarshalAMF0 implements Marshaler
func (v String) MarshalAMF0(e *Encoder) error { return e.EncodeString(string(v)) }

// MarshalAMF0 implements Marshaler
func (v LongString) MarshalAMF0(e *Encoder) error { return e.EncodeLongString(string(v)) }

// MarshalAMF0 implements Marshaler
func (v XMLDocument) MarshalAMF0(e *Encoder) error { return e.EncodeXMLDocument(string(v)) }

// MarshalAMF0 implements Marshaler
func (v Date) MarshalAMF0(e *Encoder) error { return e.EncodeDate(float64(v)) }

// MarshalAMF0 implements Marshaler
func (Null) MarshalAMF0(e *Encoder) error { return e.EncodeNull() }

// MarshalAMF0 implements Marshaler
func (Undefined) MarshalAMF0(e *Encoder) error { return e.EncodeUndefined() }

// MarshalAMF0 always fails, references are never emitted
func (Reference) MarshalAMF0(e *Encoder) error {
	return &UnsupportedMarkerError{Marker: MarkerReference}
}

// MarshalAMF0 implements Marshaler
func (v Object) MarshalAMF0(e *Encoder) error {
	if err := e.EncodeObjectHeader(); err != nil {
		return err
	}
	return e.encodeProperties(v)
}

// MarshalAMF0 implements Marshaler
func (v TypedObject) MarshalAMF0(e *Encoder) error {
	if err := e.EncodeTypedObjectHeader(v.ClassName); err != nil {
		return err
	}
	return e.encodeProperties(v.Properties)
}

// MarshalAMF0 writes the declared size, the pairs and the terminator
func (v ECMAArray) MarshalAMF0(e *Encoder) error {
	if err := e.EncodeEcmaArrayHeader(len(v)); err != nil {
		return err
	}
	return e.encodeProperties(v)
}

// MarshalAMF0 implements Marshaler
func (v StrictArray) MarshalAMF0(e *Encoder) error {
	if err := e.EncodeStrictArrayHeader(len(v)); err != nil {
		return err
	}
	for _, elem := range v {
		if err := e.encodeValue(elem); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeProperties(props []Property) error {
	for _, p := range props {
		if err := e.EncodeObjectKey(p.Key); err != nil {
			return err
		}
		if err := e.encodeValue(p.Value); err != nil {
			return err
		}
	}
	return e.EncodeObjectEnd()
}

// encodeValue writes v, a nil Value is written as null
func (e *Encoder) encodeValue(v Value) error {
	if v == nil {
		return e.EncodeNull()
	}
	return v.MarshalAMF0(e)
}

// UnmarshalAMF0 implements Unmarshaler
func (v *Number) UnmarshalAMF0(d *Decoder) error {
	n, err := d.DecodeNumber()
	*v = Number(n)
	return err
}

// UnmarshalAMF0 implements Unmarshaler
func (v *Boolean) UnmarshalAMF0(d *Decoder) error {
	b, err := d.DecodeBoolean()
	*v = Boolean(b)
	return err
}

// UnmarshalAMF0 accepts any of the three string markers
func (v *String) UnmarshalAMF0(d *Decoder) error {
	s, err := d.DecodeString()
	*v = String(s)
	return err
}

// UnmarshalAMF0 accepts any of the three string markers
func (v *LongString) UnmarshalAMF0(d *Decoder) error {
	s, err := d.DecodeString()
	*v = LongString(s)
	return err
}

// UnmarshalAMF0 accepts any of the three string markers
func (v *XMLDocument) UnmarshalAMF0(d *Decoder) error {
	s, err := d.DecodeString()
	*v = XMLDocument(s)
	return err
}

// UnmarshalAMF0 accepts a date or a number
func (v *Date) UnmarshalAMF0(d *Decoder) error {
	n, err := d.DecodeNumber()
	*v = Date(n)
	return err
}

// UnmarshalAMF0 accepts null or undefined
func (v *Null) UnmarshalAMF0(d *Decoder) error { return d.DecodeNull() }

// UnmarshalAMF0 accepts null or undefined
func (v *Undefined) UnmarshalAMF0(d *Decoder) error { return d.DecodeNull() }

// UnmarshalAMF0 implements Unmarshaler
func (v *Reference) UnmarshalAMF0(d *Decoder) error {
	r, err := d.DecodeReference()
	*v = Reference(r)
	return err
}

// UnmarshalAMF0 accepts an object, a typed object or an ECMA array
func (v *Object) UnmarshalAMF0(d *Decoder) error {
	h, err := d.DecodeObjectHeader()
	if err != nil {
		return err
	}
	props, err := d.decodeProperties(h)
	*v = Object(props)
	return err
}

// UnmarshalAMF0 accepts an object, a typed object or an ECMA array
func (v *ECMAArray) UnmarshalAMF0(d *Decoder) error {
	h, err := d.DecodeObjectHeader()
	if err != nil {
		return err
	}
	props, err := d.decodeProperties(h)
	*v = ECMAArray(props)
	return err
}

// UnmarshalAMF0 accepts an object, a typed object or an ECMA array,
// the class name is empty unless the wire carried one
func (v *TypedObject) UnmarshalAMF0(d *Decoder) error {
	h, err := d.DecodeObjectHeader()
	if err != nil {
		return err
	}
	props, err := d.decodeProperties(h)
	*v = TypedObject{ClassName: h.ClassName, Properties: Object(props)}
	return err
}

// UnmarshalAMF0 implements Unmarshaler
func (v *StrictArray) UnmarshalAMF0(d *Decoder) error {
	n, err := d.DecodeStrictArrayHeader()
	if err != nil {
		return err
	}
	arr := make(StrictArray, 0, capHint(n))
	for i := uint32(0); i < n; i++ {
		elem, err := d.DecodeValue()
		if err != nil {
			return err
		}
		arr = append(arr, elem)
	}
	*v = arr
	return nil
}

func capHint(n uint32) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return int(n)
}

package amf0

import "fmt"

// Marker is the one byte type tag preceding every AMF0 value
type Marker uint8

// AMF0 Marker
const (
	// MarkerNumber is the number marker for AMF0
	MarkerNumber Marker = 0x00
	// MarkerBoolean is the boolean marker for AMF0
	MarkerBoolean Marker = 0x01
	// MarkerString is the string marker for AMF0
	MarkerString Marker = 0x02
	// MarkerObject is the object marker for AMF0
	MarkerObject Marker = 0x03
	// MarkerMovieClip is reserved and not supported
	MarkerMovieClip Marker = 0x04
	// MarkerNull is the null marker for AMF0
	MarkerNull Marker = 0x05
	// MarkerUndefined is the undefined marker for AMF0
	MarkerUndefined Marker = 0x06
	// MarkerReference is the reference marker for AMF0
	MarkerReference Marker = 0x07
	// MarkerEcmaArray is the ECMA array marker for AMF0
	MarkerEcmaArray Marker = 0x08
	// MarkerObjectEnd is the object end marker for AMF0
	MarkerObjectEnd Marker = 0x09
	// MarkerStrictArray is the strict array marker for AMF0
	MarkerStrictArray Marker = 0x0a
	// MarkerDate is the date marker for AMF0
	MarkerDate Marker = 0x0b
	// MarkerLongString is the long string marker for AMF0
	MarkerLongString Marker = 0x0c
	// MarkerUnsupported is the unsupported marker for AMF0
	MarkerUnsupported Marker = 0x0d
	// MarkerRecordset is reserved and not supported
	MarkerRecordset Marker = 0x0e
	// MarkerXMLDocument is the XML document marker for AMF0
	MarkerXMLDocument Marker = 0x0f
	// MarkerTypedObject is the typed object marker for AMF0
	MarkerTypedObject Marker = 0x10
	// MarkerAVMPlusObject switches to AMF3, not supported
	MarkerAVMPlusObject Marker = 0x11
)

// AMF0 constants
const (
	// BooleanFalse denotes false in AMF0
	BooleanFalse = 0x00
	// BooleanTrue denotes true in AMF0
	BooleanTrue = 0x01
	// StringMax denotes max string length
	StringMax = 65535
	// LongStringMax denotes max long string length
	LongStringMax = 1<<32 - 1
)

// objectEnd is the sentinel closing an object body: an empty key
// followed by the object end marker.
var objectEnd = [3]byte{0x00, 0x00, byte(MarkerObjectEnd)}

var markerNames = [...]string{
	MarkerNumber:        "Number",
	MarkerBoolean:       "Boolean",
	MarkerString:        "String",
	MarkerObject:        "Object",
	MarkerMovieClip:     "MovieClip",
	MarkerNull:          "Null",
	MarkerUndefined:     "Undefined",
	MarkerReference:     "Reference",
	MarkerEcmaArray:     "EcmaArray",
	MarkerObjectEnd:     "ObjectEnd",
	MarkerStrictArray:   "StrictArray",
	MarkerDate:          "Date",
	MarkerLongString:    "LongString",
	MarkerUnsupported:   "Unsupported",
	MarkerRecordset:     "Recordset",
	MarkerXMLDocument:   "XmlDocument",
	MarkerTypedObject:   "TypedObject",
	MarkerAVMPlusObject: "AVMPlusObject",
}

// ParseMarker validates b against the marker table
func ParseMarker(b byte) (Marker, error) {
	if int(b) >= len(markerNames) {
		return 0, &UnknownMarkerError{Byte: b}
	}
	return Marker(b), nil
}

func (m Marker) String() string {
	if int(m) < len(markerNames) {
		return markerNames[m]
	}
	return fmt.Sprintf("Marker(0x%02x)", uint8(m))
}

func (m Marker) in(set []Marker) bool {
	for _, s := range set {
		if s == m {
			return true
		}
	}
	return false
}

var (
	numberMarkers      = []Marker{MarkerNumber, MarkerDate}
	booleanMarkers     = []Marker{MarkerBoolean}
	stringMarkers      = []Marker{MarkerString, MarkerLongString, MarkerXMLDocument}
	nullMarkers        = []Marker{MarkerNull, MarkerUndefined}
	objectMarkers      = []Marker{MarkerObject, MarkerTypedObject, MarkerEcmaArray}
	strictArrayMarkers = []Marker{MarkerStrictArray}
	referenceMarkers   = []Marker{MarkerReference}
)

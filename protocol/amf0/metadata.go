package amf0

import (
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	// ADD prepends the @setDataFrame name to a script body
	ADD = 0x0
	// DEL strips the @setDataFrame name from a script body
	DEL = 0x3
)

const (
	// SetDataFrame is the frame for `@setDataFrame`
	SetDataFrame string = "@setDataFrame"
	// OnMetaData is frame for `onMetaData`
	OnMetaData string = "onMetaData"
	// OnXMPData is frame for `onXMPData`
	OnXMPData string = "onXMPData"
)

var setDataFrame []byte

func init() {
	b, err := Marshal(SetDataFrame)
	if err != nil {
		log.Fatal(err)
	}
	setDataFrame = b
}

// MetaDataReform adds or removes the leading @setDataFrame string of a
// script data body. The body must start with a string value.
func MetaDataReform(p []byte, flag uint8) ([]byte, error) {
	if flag != ADD && flag != DEL {
		return nil, fmt.Errorf("invalid flag:%d", flag)
	}
	name, err := NewBytesDecoder(p).DecodeString()
	if err != nil {
		return nil, fmt.Errorf("metadata error: %w", err)
	}

	switch flag {
	case ADD:
		if name != SetDataFrame {
			b := make([]byte, len(setDataFrame)+len(p))
			copy(b, setDataFrame)
			copy(b[len(setDataFrame):], p)
			p = b
		}
	case DEL:
		if name == SetDataFrame && bytes.HasPrefix(p, setDataFrame) {
			p = p[len(setDataFrame):]
		}
	}
	log.WithField("name", name).Debugf("metadata reformed, flag %d, %d bytes", flag, len(p))
	return p, nil
}

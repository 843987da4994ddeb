package flv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature means the input does not start with "FLV"
	ErrInvalidSignature = errors.New("flv: invalid signature")
	// ErrShortHeader means the input ended inside the file header
	ErrShortHeader = errors.New("flv: short header")
)

// Header is the FLV file header
type Header struct {
	Version  uint8
	HasAudio bool
	HasVideo bool
	// Extra holds the bytes between the fixed header and its data offset
	Extra []byte
}

// ParseHeader parses the file header at the start of b and returns the
// number of bytes it takes up, data offset included
func ParseHeader(b []byte) (Header, int, error) {
	if len(b) < headerLen {
		return Header{}, 0, ErrShortHeader
	}
	if b[0] != 'F' || b[1] != 'L' || b[2] != 'V' {
		return Header{}, 0, ErrInvalidSignature
	}
	offset := binary.BigEndian.Uint32(b[5:9])
	if offset < headerLen {
		return Header{}, 0, fmt.Errorf("flv: invalid data offset %d", offset)
	}
	if uint64(offset) > uint64(len(b)) {
		return Header{}, 0, ErrShortHeader
	}
	h := Header{
		Version:  b[3],
		HasAudio: b[4]&0x04 != 0,
		HasVideo: b[4]&0x01 != 0,
	}
	if offset > headerLen {
		h.Extra = append([]byte(nil), b[headerLen:offset]...)
	}
	return h, int(offset), nil
}

// Bytes returns the encoded header
func (h Header) Bytes() []byte {
	b := make([]byte, headerLen+len(h.Extra))
	copy(b, "FLV")
	b[3] = h.Version
	if h.HasAudio {
		b[4] |= 0x04
	}
	if h.HasVideo {
		b[4] |= 0x01
	}
	binary.BigEndian.PutUint32(b[5:9], uint32(len(b)))
	copy(b[headerLen:], h.Extra)
	return b
}

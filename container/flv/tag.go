package flv

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gwuhaolin/amf0kit/protocol/amf0"
	"github.com/gwuhaolin/amf0kit/utils/pool"

	log "github.com/sirupsen/logrus"
)

// Tag is one tag of an FLV file body
type Tag struct {
	Type      uint8
	Timestamp uint32
	StreamID  uint32
	Data      []byte
}

// IsScript reports whether the tag carries AMF0 script data
func (t *Tag) IsScript() bool { return t.Type == TagScriptDataAMF0 }

func put24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func get24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// Reader reads the header and tags of an FLV stream
type Reader struct {
	r      io.Reader
	header *Header
	buf    [tagHeaderLen]byte
	pool   *pool.Pool
	tags   int
}

// NewReader returns a reader over r
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, pool: pool.NewPool()}
}

// Header reads the file header on first use and returns it
func (r *Reader) Header() (Header, error) {
	if r.header != nil {
		return *r.header, nil
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.r, headerLen); err != nil {
		return Header{}, ErrShortHeader
	}
	offset := binary.BigEndian.Uint32(buf.Bytes()[5:9])
	if offset > headerLen {
		if _, err := io.CopyN(&buf, r.r, int64(offset-headerLen)); err != nil {
			return Header{}, ErrShortHeader
		}
	}
	h, _, err := ParseHeader(buf.Bytes())
	if err != nil {
		return Header{}, err
	}
	r.header = &h
	log.WithFields(log.Fields{
		"version": h.Version,
		"audio":   h.HasAudio,
		"video":   h.HasVideo,
	}).Debug("flv header")
	return h, nil
}

// ReadTag returns the next tag, io.EOF once the body is exhausted.
// The previous tag size preceding every tag is not checked.
func (r *Reader) ReadTag() (*Tag, error) {
	if _, err := r.Header(); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r.r, r.buf[:prevSizeLen]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("flv: read previous tag size: %w", err)
	}
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("flv: read tag header: %w", err)
	}

	h := r.buf[:]
	tag := &Tag{
		Type:      h[0] & 0x1f,
		Timestamp: get24(h[4:7]) | uint32(h[7])<<24,
		StreamID:  get24(h[8:11]),
	}
	size := int(get24(h[1:4]))
	tag.Data = r.pool.Get(size)
	if _, err := io.ReadFull(r.r, tag.Data); err != nil {
		return nil, fmt.Errorf("flv: read tag data: %w", io.ErrUnexpectedEOF)
	}
	r.tags++

	log.WithFields(log.Fields{
		"index":     r.tags,
		"type":      tag.Type,
		"timestamp": tag.Timestamp,
		"size":      size,
	}).Debug("flv tag")
	return tag, nil
}

// Writer writes an FLV stream
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter writes the file header to w and returns a writer for the tags
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	ret := &Writer{
		w:   w,
		buf: make([]byte, tagHeaderLen),
	}
	if _, err := w.Write(h.Bytes()); err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint32(ret.buf[:prevSizeLen], 0)
	if _, err := w.Write(ret.buf[:prevSizeLen]); err != nil {
		return nil, err
	}
	return ret, nil
}

// WriteTag writes t followed by its tag size. Script data loses its
// @setDataFrame prefix, as stored files carry none.
func (writer *Writer) WriteTag(t *Tag) error {
	data := t.Data
	if t.IsScript() {
		var err error
		data, err = amf0.MetaDataReform(data, amf0.DEL)
		if err != nil {
			return err
		}
	}
	if len(data) > 0xffffff {
		return fmt.Errorf("flv: tag data too long: %d", len(data))
	}

	h := writer.buf[:tagHeaderLen]
	h[0] = t.Type
	put24(h[1:4], uint32(len(data)))
	put24(h[4:7], t.Timestamp&0xffffff)
	h[7] = uint8(t.Timestamp >> 24)
	put24(h[8:11], t.StreamID)

	if _, err := writer.w.Write(h); err != nil {
		return err
	}
	if _, err := writer.w.Write(data); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(h[:prevSizeLen], uint32(len(data)+tagHeaderLen))
	if _, err := writer.w.Write(h[:prevSizeLen]); err != nil {
		return err
	}
	return nil
}

package amf0

import (
	"bufio"
	"bytes"
	"io"
)

// Source is the byte source a Decoder reads from.
//
// ReadExact returns exactly n bytes or an error: io.EOF when no byte
// was left, io.ErrUnexpectedEOF when the input ended early. Peek
// returns up to n bytes without consuming them and reports a short
// result with an error.
type Source interface {
	ReadExact(n int) ([]byte, error)
	Peek(n int) ([]byte, error)
}

// ZeroCopy is implemented by sources whose returned slices alias
// their own buffer instead of being fresh copies.
type ZeroCopy interface {
	ZeroCopy() bool
}

// BytesSource reads from an in-memory buffer without copying
type BytesSource struct {
	buf []byte
	off int
}

// NewBytesSource returns a zero-copy source over b
func NewBytesSource(b []byte) *BytesSource {
	return &BytesSource{buf: b}
}

// ReadExact returns the next n bytes of the buffer
func (s *BytesSource) ReadExact(n int) ([]byte, error) {
	rest := len(s.buf) - s.off
	if rest == 0 && n > 0 {
		return nil, io.EOF
	}
	if rest < n {
		s.off = len(s.buf)
		return nil, io.ErrUnexpectedEOF
	}
	b := s.buf[s.off : s.off+n : s.off+n]
	s.off += n
	return b, nil
}

// Peek returns up to n bytes without advancing
func (s *BytesSource) Peek(n int) ([]byte, error) {
	rest := s.buf[s.off:]
	if len(rest) < n {
		return rest, io.EOF
	}
	return rest[:n:n], nil
}

// Len returns the number of unread bytes
func (s *BytesSource) Len() int {
	return len(s.buf) - s.off
}

// ZeroCopy reports true, slices alias the input buffer
func (s *BytesSource) ZeroCopy() bool { return true }

// ReaderSource adapts a stream, every read is copied out of the
// internal buffer
type ReaderSource struct {
	r *bufio.Reader
}

// NewReaderSource returns a source reading from r
func NewReaderSource(r io.Reader) *ReaderSource {
	if br, ok := r.(*bufio.Reader); ok {
		return &ReaderSource{r: br}
	}
	return &ReaderSource{r: bufio.NewReader(r)}
}

// maxPrealloc bounds the allocation made up front for a length prefix
// read off the wire, larger payloads grow as bytes actually arrive.
const maxPrealloc = 1 << 16

// ReadExact reads exactly n bytes into a fresh slice
func (s *ReaderSource) ReadExact(n int) ([]byte, error) {
	if n <= maxPrealloc {
		b := make([]byte, n)
		if _, err := io.ReadFull(s.r, b); err != nil {
			return nil, err
		}
		return b, nil
	}

	var buf bytes.Buffer
	m, err := io.CopyN(&buf, s.r, int64(n))
	if err != nil {
		if err == io.EOF && m > 0 {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// Peek returns up to n buffered bytes without advancing
func (s *ReaderSource) Peek(n int) ([]byte, error) {
	return s.r.Peek(n)
}

// ZeroCopy reports false, every slice is a copy
func (s *ReaderSource) ZeroCopy() bool { return false }

package encoding

import (
	"bufio"
	"errors"
	"io"
)

// minReadSize is the smallest chunk Stream asks its source for on a
// buffer refill, matching the Python JournalStream's default chunk_size.
const minReadSize = 64 << 10

// Stream turns an arbitrary pull-based byte source into the primitives
// the opcode dispatcher needs: exact-length reads, non-consuming
// lookahead, discard, absolute position tracking, and the three varint
// codecs. It is built directly on *bufio.Reader, adding only
// absolute-offset tracking on top of Peek/Discard/ReadByte.
type Stream struct {
	r   *bufio.Reader
	pos int64
}

// NewStream returns a Stream reading from r. If r is already a
// *bufio.Reader it is reused directly rather than wrapped again.
func NewStream(r io.Reader) *Stream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, minReadSize)
	}
	return &Stream{r: br}
}

// Tell returns the absolute position in the source consumed so far.
func (s *Stream) Tell() int64 { return s.pos }

// Read returns exactly n bytes, advancing the absolute position by n. It
// fails with ErrUnexpectedEOF if fewer than n bytes remain.
func (s *Stream) Read(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(s.r, buf)
	s.pos += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, newError(`read`, KindUnexpectedEOF, nil)
		}
		return nil, newError(`read`, KindIO, err)
	}
	return buf, nil
}

// ReadByte returns a single byte, advancing position by one.
func (s *Stream) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, newError(`read byte`, KindUnexpectedEOF, nil)
		}
		return 0, newError(`read byte`, KindIO, err)
	}
	s.pos++
	return b, nil
}

// ReadByteEOF is like ReadByte but returns io.EOF unwrapped when the
// stream ends cleanly between records. The dispatcher uses this only at
// opcode boundaries, where a clean EOF is not an error.
func (s *Stream) ReadByteEOF() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.pos++
	return b, nil
}

// Peek returns up to n bytes without advancing position. Unlike Read, it
// tolerates EOF silently and may return fewer than n bytes; callers that
// require an exact length must validate themselves. This is what lets the
// dispatcher decode variable-width prefixes before knowing how many bytes
// the record actually consumes.
func (s *Stream) Peek(n int) []byte {
	if n <= 0 {
		return nil
	}
	b, err := s.r.Peek(n)
	if err != nil {
		// Peek returns the short slice alongside the error; that's all we
		// want here. A nil slice only happens if n bytes never arrive
		// and none did either, bufio still hands back what it has.
		return b
	}
	return b
}

// Skip advances position by n, discarding bytes from the internal
// buffer (refilling as needed). It never rewinds the underlying source.
func (s *Stream) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	got, err := s.r.Discard(n)
	s.pos += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return newError(`skip`, KindUnexpectedEOF, nil)
		}
		return newError(`skip`, KindIO, err)
	}
	return nil
}

// ReadUvarint reads a base-128 little-endian unsigned varint.
func (s *Stream) ReadUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := s.ReadByte()
		if err != nil {
			if i > 0 && asKind(err, KindUnexpectedEOF) {
				return 0, newError(`read uvarint`, KindTruncatedVarint, nil)
			}
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, newError(`read uvarint`, KindTruncatedVarint, nil)
}

// ReadVarint reads a zigzag-encoded signed varint.
func (s *Stream) ReadVarint() (int64, error) {
	u, err := s.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

// ReadShiftedVarint reads the shifted-varint encoding used for
// time_sub_seconds: the low bit is a reserved flag this decoder
// currently discards, the remaining bits are the value.
func (s *Stream) ReadShiftedVarint() (int64, error) {
	u, err := s.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return int64(u >> 1), nil
}

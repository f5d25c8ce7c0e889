package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder writes journal opcodes to an output stream. It exists
// primarily so this package's own tests can round-trip a hand-built
// journal through Encoder -> Decoder without depending on fixture
// files.
//
// Encoder operates below symbol resolution: callers supply table
// indices and representation codes directly rather than strings, since
// those are exactly the quantities Decoder recovers and verifies.
type Encoder struct {
	w   *offsetWriter
	err error
}

// NewEncoder returns a new Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: &offsetWriter{w: w}}
}

// Err returns the first error encountered by any Emit* method. Once set,
// every Emit* method becomes a no-op returning the same error.
func (e *Encoder) Err() error { return e.err }

// Reset reconfigures the Encoder to write to w, clearing any error.
func (e *Encoder) Reset(w io.Writer) {
	e.err, e.w.off, e.w.w = nil, 0, w
}

type writer interface {
	io.Writer
	io.ByteWriter
}

type offsetWriter struct {
	w   io.Writer
	off int
	buf [1]byte
}

func (r *offsetWriter) Off() int { return r.off }

func (r *offsetWriter) Write(p []byte) (n int, err error) {
	n, err = r.w.Write(p)
	r.off += n
	return
}

func (r *offsetWriter) WriteByte(b byte) error {
	r.buf[0] = b
	n, err := r.w.Write(r.buf[:])
	r.off += n
	return err
}

func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// EmitHeader writes the journal HEADER opcode.
func (e *Encoder) EmitHeader(version, alignBits byte, baseIndexTime int32) error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.WriteByte(opHeader); err != nil {
		return e.fail(err)
	}
	var buf [6]byte
	buf[0], buf[1] = version, alignBits
	binary.LittleEndian.PutUint32(buf[2:], uint32(baseIndexTime))
	if _, err := e.w.Write(buf[:]); err != nil {
		return e.fail(err)
	}
	return nil
}

// EmitNOP writes a single no-op opcode.
func (e *Encoder) EmitNOP() error {
	if e.err != nil {
		return e.err
	}
	return e.fail(e.w.WriteByte(opNOP))
}

// EmitSplunkPrivate writes a SPLUNK_PRIVATE opcode carrying data as an
// opaque, length-prefixed block.
func (e *Encoder) EmitSplunkPrivate(data []byte) error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.WriteByte(opSplunkPrivate); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, uint64(len(data))); err != nil {
		return e.fail(err)
	}
	if _, err := e.w.Write(data); err != nil {
		return e.fail(err)
	}
	return nil
}

// emitSymbol writes a length-prefixed string to the named table's
// append opcode.
func (e *Encoder) emitSymbol(op byte, s string) error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.WriteByte(op); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, uint64(len(s))); err != nil {
		return e.fail(err)
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		return e.fail(err)
	}
	return nil
}

// EmitNewHost, EmitNewSource, EmitNewSourceType, and EmitNewString
// append one entry to the corresponding symbol table.
func (e *Encoder) EmitNewHost(s string) error       { return e.emitSymbol(opNewHost, s) }
func (e *Encoder) EmitNewSource(s string) error     { return e.emitSymbol(opNewSource, s) }
func (e *Encoder) EmitNewSourceType(s string) error { return e.emitSymbol(opNewSourceType, s) }
func (e *Encoder) EmitNewString(s string) error     { return e.emitSymbol(opNewString, s) }

// StateUpdate describes one state-update opcode: a nil field is left untouched, a non-nil one selects the
// corresponding opcode bit and supplies its value.
type StateUpdate struct {
	Host          *uint64
	Source        *uint64
	SourceType    *uint64
	BaseEventTime *int32
}

// EmitStateUpdate writes a state-update opcode with exactly the fields
// present in u.
func (e *Encoder) EmitStateUpdate(u StateUpdate) error {
	if e.err != nil {
		return e.err
	}
	var flags byte
	if u.Host != nil {
		flags |= 0x8
	}
	if u.Source != nil {
		flags |= 0x4
	}
	if u.SourceType != nil {
		flags |= 0x2
	}
	if u.BaseEventTime != nil {
		flags |= 0x1
	}
	if err := e.w.WriteByte(stateUpdateLo&0xf0 | flags); err != nil {
		return e.fail(err)
	}
	if u.Host != nil {
		if err := writeUvarint(e.w, *u.Host); err != nil {
			return e.fail(err)
		}
	}
	if u.Source != nil {
		if err := writeUvarint(e.w, *u.Source); err != nil {
			return e.fail(err)
		}
	}
	if u.SourceType != nil {
		if err := writeUvarint(e.w, *u.SourceType); err != nil {
			return e.fail(err)
		}
	}
	if u.BaseEventTime != nil {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(*u.BaseEventTime))
		if _, err := e.w.Write(buf[:]); err != nil {
			return e.fail(err)
		}
	}
	return nil
}

// MetadataEntry is one (field, rep, values) entry to encode into an
// event's metadata table; Rep is ignored for legacy opcodes (<= 2),
// which always carry exactly one value.
type MetadataEntry struct {
	FieldIndex uint64
	Rep        uint64
	Values     []int64
}

// EventParams describes one event record to encode. Opcode selects the
// exact wire shape (OLDSTYLE_EVENT(_WITH_HASH) or one of the
// 0x20-0x2B current-format variants); its bits determine which of Hash
// and ExtendedStorage are written, matching Decoder.decodeEvent's
// interpretation exactly.
type EventParams struct {
	Opcode          byte
	Hash            [hashSize]byte
	ExtendedStorage []byte
	StreamID        uint64
	StreamOffset    uint64
	StreamSubOffset uint64
	IndexTimeDiff   uint64
	TimeSubSeconds  int64
	Metadata        []MetadataEntry
	Message         []byte
}

// EmitEvent writes one complete event record, computing message_length
// (and, when present, extended_storage_len) from the supplied payloads
// so the result satisfies the P = M + position invariant by construction.
func (e *Encoder) EmitEvent(p EventParams) error {
	if e.err != nil {
		return e.err
	}
	hasExtStorage := p.Opcode&0x4 != 0
	hasHash := p.Opcode&0x01 == 0

	var meta bytes.Buffer
	for _, m := range p.Metadata {
		if err := encodeMetadataEntry(&meta, p.Opcode, m); err != nil {
			return e.fail(err)
		}
	}

	// message_length counts every byte from its own end through the end
	// of the message: the intermediate fields plus the message itself.
	msgLen := uint64(8 + meta.Len() + len(p.Message))
	varints := []uint64{p.StreamOffset, p.StreamSubOffset, p.IndexTimeDiff, uint64(p.TimeSubSeconds) << 1, uint64(len(p.Metadata))}
	if hasExtStorage {
		msgLen += uint64(len(p.ExtendedStorage))
		varints = append(varints, uint64(len(p.ExtendedStorage)))
	}
	if hasHash {
		msgLen += hashSize
	}
	for _, v := range varints {
		for msgLen++; v >= 0x80; v >>= 7 {
			msgLen++
		}
	}

	if err := e.w.WriteByte(p.Opcode); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, msgLen); err != nil {
		return e.fail(err)
	}
	if hasExtStorage {
		if err := writeUvarint(e.w, uint64(len(p.ExtendedStorage))); err != nil {
			return e.fail(err)
		}
	}
	if hasHash {
		if _, err := e.w.Write(p.Hash[:]); err != nil {
			return e.fail(err)
		}
	}
	var streamIDBuf [8]byte
	binary.LittleEndian.PutUint64(streamIDBuf[:], p.StreamID)
	if _, err := e.w.Write(streamIDBuf[:]); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, p.StreamOffset); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, p.StreamSubOffset); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, p.IndexTimeDiff); err != nil {
		return e.fail(err)
	}
	if err := writeShiftedVarint(e.w, p.TimeSubSeconds); err != nil {
		return e.fail(err)
	}
	if err := writeUvarint(e.w, uint64(len(p.Metadata))); err != nil {
		return e.fail(err)
	}
	if _, err := io.Copy(e.w, &meta); err != nil {
		return e.fail(err)
	}
	if hasExtStorage {
		if _, err := e.w.Write(p.ExtendedStorage); err != nil {
			return e.fail(err)
		}
	}
	if _, err := e.w.Write(p.Message); err != nil {
		return e.fail(err)
	}
	return nil
}

// encodeMetadataEntry is the exact inverse of decodeMetadataEntry: given
// a target field index and representation code, it reconstructs the raw
// metadata key that decodes back to them.
func encodeMetadataEntry(w writer, opcode byte, m MetadataEntry) error {
	legacy := opcode <= 2

	var raw uint64
	if legacy {
		if len(m.Values) != 1 {
			return fmt.Errorf(`encode metadata: legacy opcode requires exactly 1 value, got %d`, len(m.Values))
		}
		raw = m.FieldIndex << 1
	} else {
		shifted := (m.FieldIndex << 4) | (m.Rep & 0xf)
		if opcode < 36 {
			if shifted&0x3 != 0 {
				return fmt.Errorf(`encode metadata: rep %d not representable for opcode 0x%02x`, m.Rep, opcode)
			}
			raw = shifted >> 2
		} else {
			raw = shifted
		}
		desc, _ := repFor(m.Rep)
		if len(m.Values) != desc.extraIntsNeeded {
			return fmt.Errorf(`encode metadata: rep %d needs %d values, got %d`, m.Rep, desc.extraIntsNeeded, len(m.Values))
		}
	}

	if err := writeUvarint(w, raw); err != nil {
		return err
	}
	for _, v := range m.Values {
		if err := writeVarint(w, v); err != nil {
			return err
		}
	}
	return nil
}

// writeUvarint writes a base-128 little-endian unsigned varint.
func writeUvarint(w io.ByteWriter, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(0x80 | byte(v)); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}

// writeVarint writes a zigzag-encoded signed varint.
func writeVarint(w io.ByteWriter, v int64) error {
	return writeUvarint(w, zigzagEncode(v))
}

// writeShiftedVarint writes the shifted-varint encoding used for
// time_sub_seconds, leaving the reserved low bit clear.
func writeShiftedVarint(w io.ByteWriter, v int64) error {
	return writeUvarint(w, uint64(v)<<1)
}

package encoding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode families for the journal wire format.
const (
	opNOP                   byte = 0x00
	opOldstyleEvent         byte = 0x01
	opOldstyleEventWithHash byte = 0x02
	opNewHost               byte = 0x03
	opNewSource             byte = 0x04
	opNewSourceType         byte = 0x05
	opNewString             byte = 0x06
	opDelete                byte = 0x08
	opSplunkPrivate         byte = 0x09
	opHeader                byte = 0x0A
	opHashSlice             byte = 0x0B

	stateUpdateLo byte = 0x11
	stateUpdateHi byte = 0x1F

	eventLo byte = 0x20
	eventHi byte = 0x2B
)

// isEventOpcode reports whether op introduces an event record rather
// than mutating symbol/state tables.
func isEventOpcode(op byte) bool {
	return op == opOldstyleEvent || op == opOldstyleEventWithHash ||
		(op >= eventLo && op <= eventHi)
}

// eventInfoPeekSize bounds the lookahead needed to discover an event's
// fixed-shape header fields: message_length, an optional
// extended_storage_len, an optional 20-byte hash, stream_id, and five
// more varints, bounded by 8*10 + 8 + hashSize.
const eventInfoPeekSize = 8*10 + 8 + hashSize

// metadataEntryMaxBytes bounds the per-entry peek width used when
// scanning the metadata table, matching the Python decoder's
// `4 * 10 * metadata_count` budget.
const metadataEntryMaxBytes = 4 * 10

// Stats reports decoder-lifetime counters, a data-oriented replacement
// for the Python extractor's periodic `logger.debug("Processed %d
// events")` progress logging.
type Stats struct {
	EventsDecoded         uint64
	BytesConsumed         int64
	ReservedMetadataCodes uint64
}

// Decoder reads events encoded in the Splunk DDSS journal wire format
// from an input stream. It is single-threaded and synchronous with
// respect to its byte source: Scan runs to completion,
// producing one event or terminating the stream, per call.
type Decoder struct {
	stream *Stream
	sym    *symtab
	evt    Event
	err    error
	stats  Stats
}

// NewDecoder returns a new Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		stream: NewStream(r),
		sym:    newSymtab(),
		evt:    Event{Fields: make(map[string]MetadataValue)},
	}
}

// SetMaxSymbols imposes an upper bound on how many strings any one of
// the four symbol tables may hold; further appends fail with
// ErrSymbolTableOverflow. Zero (the default) means unbounded.
func (d *Decoder) SetMaxSymbols(n int) {
	d.sym.maxSymbols = n
}

// Stats returns the decoder's lifetime counters.
func (d *Decoder) Stats() Stats { return d.stats }

// Err returns the error that stopped the most recent Scan, or nil if the
// stream ended cleanly between opcodes.
func (d *Decoder) Err() error { return d.err }

// Event returns the most recently decoded event. The returned value is
// owned by the Decoder and is only valid until the next Scan call;
// callers needing to retain it should call Event().Copy().
func (d *Decoder) Event() *Event { return &d.evt }

// Host, Source, and SourceType return the decoder's currently active
// symbol for each table, independent of whether an event has been
// decoded yet, matching original_source/.../decoder.py's
// JournalDecoder.host/source/source_type accessors.
func (d *Decoder) Host() string {
	s, _ := d.sym.host()
	return s
}

func (d *Decoder) Source() string {
	s, _ := d.sym.source()
	return s
}

func (d *Decoder) SourceType() string {
	s, _ := d.sym.sourceType()
	return s
}

// Scan advances to the next event, returning true when one is available
// via Event. It loops internally, consuming non-event opcodes silently,
// and returns false either on a clean EOF between opcodes (Err is then
// nil) or on the first decode error (Err then reports it).
func (d *Decoder) Scan() bool {
	return d.scan(context.Background())
}

// ScanContext is Scan with cancellation observed between opcodes -- the
// Go-idiomatic analogue of original_source/.../async_decoder.py's
// AsyncJournalDecoder, which awaits at exactly the same boundary. It
// introduces no goroutines; cancellation is checked, not raced.
func (d *Decoder) ScanContext(ctx context.Context) bool {
	return d.scan(ctx)
}

func (d *Decoder) scan(ctx context.Context) bool {
	if d.err != nil {
		return false
	}
	for {
		select {
		case <-ctx.Done():
			d.err = newError(`scan`, KindIO, ctx.Err())
			return false
		default:
		}

		opcode, err := d.stream.ReadByteEOF()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.err = nil
				return false
			}
			d.err = newError(`scan`, KindIO, err)
			return false
		}

		if isEventOpcode(opcode) {
			d.evt.reset()
		}

		if err := d.decodeNext(opcode); err != nil {
			d.err = err
			return false
		}

		d.stats.BytesConsumed = d.stream.Tell()
		if isEventOpcode(opcode) {
			d.stats.EventsDecoded++
			return true
		}
	}
}

func (d *Decoder) decodeNext(opcode byte) error {
	switch {
	case opcode == opNOP:
		return nil
	case opcode == opHeader:
		return d.decodeHeader()
	case opcode == opSplunkPrivate:
		return d.decodeSkipBlock()
	case opcode == opNewHost:
		return d.decodeSymbol(tableHost)
	case opcode == opNewSource:
		return d.decodeSymbol(tableSource)
	case opcode == opNewSourceType:
		return d.decodeSymbol(tableSourceType)
	case opcode == opNewString:
		return d.decodeSymbol(tableString)
	case opcode >= stateUpdateLo && opcode <= stateUpdateHi:
		return d.decodeStateUpdate(opcode)
	case isEventOpcode(opcode):
		return d.decodeEvent(opcode)
	default:
		return unknownOpcode(`decode opcode`, opcode)
	}
}

// decodeHeader reads the 6-byte journal header: 1 version byte, 1
// align-bits byte, and a 4-byte LE i32 base_index_time. The version and
// align-bits bytes are read but currently unused; every opcode family
// is accepted regardless of the declared version.
func (d *Decoder) decodeHeader() error {
	data, err := d.stream.Read(6)
	if err != nil {
		return err
	}
	d.sym.baseIndexTime = int32(binary.LittleEndian.Uint32(data[2:6]))
	return nil
}

// decodeSkipBlock discards a SPLUNK_PRIVATE block: a uvarint length
// followed by that many opaque bytes.
func (d *Decoder) decodeSkipBlock() error {
	n, err := d.stream.ReadUvarint()
	if err != nil {
		return err
	}
	return d.stream.Skip(int(n))
}

// decodeSymbol reads a uvarint-length-prefixed UTF-8 string and appends
// it to the given table.
func (d *Decoder) decodeSymbol(t table) error {
	n, err := d.stream.ReadUvarint()
	if err != nil {
		return err
	}
	data, err := d.stream.Read(int(n))
	if err != nil {
		return err
	}
	return d.sym.append(t, decodeUTF8Lenient(data))
}

// decodeStateUpdate applies opcodes 0x11-0x1F: each set bit in the
// low nibble introduces one more field, read in this fixed order --
// host, source, sourcetype, base_event_time.
func (d *Decoder) decodeStateUpdate(opcode byte) error {
	flags := opcode & 0x0f

	if flags&0x8 != 0 {
		v, err := d.stream.ReadUvarint()
		if err != nil {
			return err
		}
		d.sym.activeHost = v
	}
	if flags&0x4 != 0 {
		v, err := d.stream.ReadUvarint()
		if err != nil {
			return err
		}
		d.sym.activeSource = v
	}
	if flags&0x2 != 0 {
		v, err := d.stream.ReadUvarint()
		if err != nil {
			return err
		}
		d.sym.activeSourceType = v
	}
	if flags&0x1 != 0 {
		data, err := d.stream.Read(4)
		if err != nil {
			return err
		}
		d.sym.baseEventTime = int32(binary.LittleEndian.Uint32(data))
	}
	return nil
}

// decodeEvent reconstructs a full event record. It peeks ahead to learn
// the record's shape before committing consumption with Skip, the
// lookahead-then-commit pattern; it never rewinds the stream.
func (d *Decoder) decodeEvent(opcode byte) error {
	hasExtStorage := opcode&0x4 != 0
	hasHash := opcode&0x01 == 0

	peek := d.stream.Peek(eventInfoPeekSize)
	off := 0

	msgLenField, n := uvarintFromBytes(peek, off)
	if n == -1 {
		return newError(`decode event: message_length`, KindTruncatedVarint, nil)
	}
	off += n

	// P is the absolute byte position the message must end at once all
	// intermediate fields and the message itself are consumed.
	absoluteP := int64(msgLenField) + d.stream.Tell() + int64(off)

	var extStorageLen uint64
	if hasExtStorage {
		v, n2 := uvarintFromBytes(peek, off)
		if n2 == -1 {
			return newError(`decode event: extended_storage_len`, KindTruncatedVarint, nil)
		}
		extStorageLen = v
		off += n2
	}

	var hash [hashSize]byte
	if hasHash {
		if off+hashSize > len(peek) {
			return newError(`decode event: hash`, KindUnexpectedEOF, nil)
		}
		copy(hash[:], peek[off:off+hashSize])
		off += hashSize
	}

	if off+8 > len(peek) {
		return newError(`decode event: stream_id`, KindUnexpectedEOF, nil)
	}
	streamID := binary.LittleEndian.Uint64(peek[off : off+8])
	off += 8

	streamOffset, n3 := uvarintFromBytes(peek, off)
	if n3 == -1 {
		return newError(`decode event: stream_offset`, KindTruncatedVarint, nil)
	}
	off += n3

	streamSubOffset, n4 := uvarintFromBytes(peek, off)
	if n4 == -1 {
		return newError(`decode event: stream_sub_offset`, KindTruncatedVarint, nil)
	}
	off += n4

	indexTimeDiff, n5 := uvarintFromBytes(peek, off)
	if n5 == -1 {
		return newError(`decode event: index_time_diff`, KindTruncatedVarint, nil)
	}
	off += n5

	timeSubSeconds, n6 := shiftedVarintFromBytes(peek, off)
	if n6 == -1 {
		return newError(`decode event: time_sub_seconds`, KindTruncatedVarint, nil)
	}
	off += n6

	metadataCount, n7 := uvarintFromBytes(peek, off)
	if n7 == -1 {
		return newError(`decode event: metadata_count`, KindTruncatedVarint, nil)
	}
	off += n7

	if err := d.stream.Skip(off); err != nil {
		return err
	}

	fields := d.evt.Fields
	if metadataCount > 0 {
		if err := d.decodeMetadataTable(opcode, int(metadataCount), fields); err != nil {
			return err
		}
	}

	var extStorage []byte
	if hasExtStorage {
		data, err := d.stream.Read(int(extStorageLen))
		if err != nil {
			return err
		}
		extStorage = data
	}

	messageLen := absoluteP - d.stream.Tell()
	if messageLen < 0 {
		return newError(`decode event: message`, KindUnexpectedEOF,
			fmt.Errorf(`message_length implies %d bytes`, messageLen))
	}
	message, err := d.stream.Read(int(messageLen))
	if err != nil {
		return err
	}

	host, err := d.sym.host()
	if err != nil {
		return fmt.Errorf(`decode event: host: %w`, err)
	}
	source, err := d.sym.source()
	if err != nil {
		return fmt.Errorf(`decode event: source: %w`, err)
	}
	sourceType, err := d.sym.sourceType()
	if err != nil {
		return fmt.Errorf(`decode event: sourcetype: %w`, err)
	}

	evt := &d.evt
	evt.IndexTime = int64(d.sym.baseIndexTime) + int64(indexTimeDiff)
	evt.EventTime = int64(d.sym.baseEventTime)*1000 + timeSubSeconds
	evt.Host, evt.Source, evt.SourceType = host, source, sourceType
	evt.StreamID = streamID
	evt.StreamOffset = streamOffset
	evt.StreamSubOffset = streamSubOffset
	evt.HasHash = hasHash
	evt.Hash = hash
	evt.HasExtendedStorage = hasExtStorage
	evt.ExtendedStorage = extStorage
	evt.Message = append(evt.Message[:0], message...)
	evt.IncludePunctuation = opcode&0x22 == 0x22
	evt.Fields = fields
	return nil
}

// decodeMetadataTable decodes metadataCount metadata entries, resolving
// each (field_index, value_index) pair against the STRINGS table and
// inserting the result into fields per the scalar-then-list promotion
// rule. Index failures are non-fatal: the pair is recorded under a
// sentinel key rather than aborting the event.
func (d *Decoder) decodeMetadataTable(opcode byte, metadataCount int, fields map[string]MetadataValue) error {
	peek := d.stream.Peek(metadataEntryMaxBytes * metadataCount)
	off := 0
	for i := 0; i < metadataCount; i++ {
		pairs, n, reserved, err := decodeMetadataEntry(peek, off, opcode)
		if err != nil {
			return err
		}
		off += n
		if reserved {
			d.stats.ReservedMetadataCodes++
		}
		for _, p := range pairs {
			fieldName, fieldOK := d.sym.lookupString(p.fieldIndex)
			value, valueOK := d.sym.lookupString(p.valueIndex)
			if !fieldOK || !valueOK {
				insertMetadata(fields, unresolvedKey(p.fieldIndex), unresolvedKey(p.valueIndex))
				continue
			}
			insertMetadata(fields, fieldName, value)
		}
	}
	return d.stream.Skip(off)
}

// unresolvedKey formats the sentinel used in place of a STRINGS index
// that fell outside the table's bounds.
func unresolvedKey(index uint64) string {
	return fmt.Sprintf(`<out-of-range:%d>`, index)
}

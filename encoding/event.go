package encoding

// hashSize is the length in bytes of an event's optional hash field.
const hashSize = 20

// Event is a single fully-decoded journal record. It is owned by the
// Decoder that produced it: the struct is reset at the start of the
// next event opcode, so callers must copy out any fields they need
// before calling Scan again.
type Event struct {
	IndexTime  int64
	EventTime  int64
	Host       string
	Source     string
	SourceType string

	StreamID        uint64
	StreamOffset    uint64
	StreamSubOffset uint64

	HasHash bool
	Hash    [hashSize]byte

	// ExtendedStorage holds the opaque extended_storage payload when the
	// opcode's bit 2 is set. Its internal structure is an open question
	//; this decoder preserves the bytes instead of
	// discarding them.
	HasExtendedStorage bool
	ExtendedStorage    []byte

	Message []byte

	IncludePunctuation bool

	// Fields holds the decoded metadata table, keyed by the resolved
	// field name. A value that fails STRINGS resolution
	// is recorded under the sentinel key produced by unresolvedKey
	// rather than dropped.
	Fields map[string]MetadataValue
}

// reset clears evt for reuse at the start of the next event opcode.
func (evt *Event) reset() {
	msg := evt.Message[:0]
	fields := evt.Fields
	for k := range fields {
		delete(fields, k)
	}
	if fields == nil {
		fields = make(map[string]MetadataValue)
	}
	*evt = Event{Message: msg, Fields: fields}
}

// MessageString returns Message decoded as UTF-8, replacing ill-formed
// bytes with U+FFFD rather than erroring.
func (evt *Event) MessageString() string {
	return decodeUTF8Lenient(evt.Message)
}

// Copy returns a deep copy of evt, safe to retain past the next Scan.
func (evt *Event) Copy() *Event {
	out := &Event{}
	*out = *evt
	out.Message = append([]byte(nil), evt.Message...)
	if evt.ExtendedStorage != nil {
		out.ExtendedStorage = append([]byte(nil), evt.ExtendedStorage...)
	}
	out.Fields = make(map[string]MetadataValue, len(evt.Fields))
	for k, v := range evt.Fields {
		out.Fields[k] = v
	}
	return out
}

package encoding

import (
	"bytes"
	"testing"
)

func TestEncoderHeaderWireBytes(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.EmitHeader(3, 1, -500); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	got := buf.Bytes()
	if got[0] != opHeader {
		t.Fatalf(`exp opcode 0x%02x; got 0x%02x`, opHeader, got[0])
	}
	if len(got) != 7 {
		t.Fatalf(`exp 7 bytes (opcode + 6-byte header); got %v`, len(got))
	}

	d := NewDecoder(&buf)
	if d.Scan() {
		t.Fatal(`exp no event from a lone HEADER`)
	}
	if d.sym.baseIndexTime != -500 {
		t.Fatalf(`exp baseIndexTime -500; got %v`, d.sym.baseIndexTime)
	}
}

func TestEncoderSplunkPrivateRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.EmitSplunkPrivate([]byte(`opaque payload`)); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if err := enc.EmitEvent(EventParams{Opcode: opOldstyleEvent, Message: []byte(`after`)}); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	d := NewDecoder(&buf)
	if !d.Scan() {
		t.Fatalf(`exp the event after SPLUNK_PRIVATE to still decode; Err() = %v`, d.Err())
	}
	if string(d.Event().Message) != `after` {
		t.Fatalf(`exp "after"; got %q`, d.Event().Message)
	}
}

func TestEncoderErrSticks(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	bad := MetadataEntry{FieldIndex: 1, Rep: 0, Values: nil} // rep 0 needs 1 value, supplies 0
	if err := enc.EmitEvent(EventParams{Opcode: 0x24, Metadata: []MetadataEntry{bad}}); err == nil {
		t.Fatal(`exp an error for a rep/value-count mismatch`)
	}
	first := enc.Err()
	if first == nil {
		t.Fatal(`exp Err() to be set`)
	}
	if err := enc.EmitNOP(); err != first {
		t.Fatalf(`exp encoder to keep returning the first error; got %v`, err)
	}
}

func TestEncoderEventHashRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	var hash [hashSize]byte
	for i := range hash {
		hash[i] = byte(i)
	}
	if err := enc.EmitEvent(EventParams{
		Opcode:  opOldstyleEventWithHash,
		Hash:    hash,
		Message: []byte(`hashed`),
	}); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	d := NewDecoder(&buf)
	if !d.Scan() {
		t.Fatalf(`exp event to decode; Err() = %v`, d.Err())
	}
	evt := d.Event()
	if !evt.HasHash {
		t.Fatal(`exp HasHash == true for OLDSTYLE_EVENT_WITH_HASH`)
	}
	if evt.Hash != hash {
		t.Fatalf(`exp hash %v; got %v`, hash, evt.Hash)
	}
}

func TestEncoderExtendedStorageRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	const op = 0x25 // bit2 set: extended storage present; bit0 set: no hash
	if err := enc.EmitEvent(EventParams{
		Opcode:          op,
		ExtendedStorage: []byte(`blob`),
		Message:         []byte(`m`),
	}); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	d := NewDecoder(&buf)
	if !d.Scan() {
		t.Fatalf(`exp event to decode; Err() = %v`, d.Err())
	}
	evt := d.Event()
	if !evt.HasExtendedStorage {
		t.Fatal(`exp HasExtendedStorage == true`)
	}
	if string(evt.ExtendedStorage) != `blob` {
		t.Fatalf(`exp "blob"; got %q`, evt.ExtendedStorage)
	}
	if string(evt.Message) != `m` {
		t.Fatalf(`exp "m"; got %q`, evt.Message)
	}
}

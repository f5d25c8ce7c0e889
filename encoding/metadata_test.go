package encoding

import (
	"bytes"
	"reflect"
	"testing"
)

func TestInsertMetadataPromotion(t *testing.T) {
	fields := make(map[string]MetadataValue)
	insertMetadata(fields, `tag`, `a`)

	v := fields[`tag`]
	if v.IsList() {
		t.Fatal(`exp scalar after first insert`)
	}
	if got, ok := v.Scalar(); !ok || got != `a` {
		t.Fatalf(`exp ("a", true); got (%q, %v)`, got, ok)
	}

	insertMetadata(fields, `tag`, `b`)
	v = fields[`tag`]
	if !v.IsList() {
		t.Fatal(`exp promotion to list after second insert`)
	}
	if !reflect.DeepEqual(v.List(), []string{`a`, `b`}) {
		t.Fatalf(`exp [a b]; got %v`, v.List())
	}

	insertMetadata(fields, `tag`, `c`)
	v = fields[`tag`]
	if !reflect.DeepEqual(v.List(), []string{`a`, `b`, `c`}) {
		t.Fatalf(`exp [a b c]; got %v`, v.List())
	}
}

func TestMetadataValueScalarOnList(t *testing.T) {
	v := MetadataValue{list: []string{`a`, `b`}}
	if _, ok := v.Scalar(); ok {
		t.Fatal(`exp Scalar() to fail on a list value`)
	}
}

func TestDecodeMetadataEntryLegacy(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeMetadataEntry(&buf, opOldstyleEvent, MetadataEntry{
		FieldIndex: 7,
		Values:     []int64{42},
	}); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	pairs, n, reserved, err := decodeMetadataEntry(buf.Bytes(), 0, opOldstyleEvent)
	if err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if reserved {
		t.Fatal(`exp legacy entries to never be marked reserved`)
	}
	if n != buf.Len() {
		t.Fatalf(`exp %v bytes consumed; got %v`, buf.Len(), n)
	}
	if len(pairs) != 1 || pairs[0].fieldIndex != 7 || pairs[0].valueIndex != 42 {
		t.Fatalf(`exp [{7 42}]; got %v`, pairs)
	}
}

func TestDecodeMetadataEntryCurrent(t *testing.T) {
	const opcode = 0x24 // >= 36, so no extra <<2 normalization

	entry := MetadataEntry{FieldIndex: 9, Rep: 7, Values: []int64{1, -2, 3}}
	var buf bytes.Buffer
	if err := encodeMetadataEntry(&buf, opcode, entry); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	pairs, n, reserved, err := decodeMetadataEntry(buf.Bytes(), 0, opcode)
	if err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if reserved {
		t.Fatal(`exp rep 7 to be a defined code`)
	}
	if n != buf.Len() {
		t.Fatalf(`exp %v bytes consumed; got %v`, buf.Len(), n)
	}
	if len(pairs) != 3 {
		t.Fatalf(`exp 3 pairs; got %v`, pairs)
	}
	for _, p := range pairs {
		if p.fieldIndex != 9 {
			t.Fatalf(`exp fieldIndex 9 on every pair; got %v`, p)
		}
	}
	if int64(pairs[0].valueIndex) != 1 {
		t.Fatalf(`exp first value 1; got %v`, pairs[0].valueIndex)
	}
}

func TestDecodeMetadataEntryReservedCode(t *testing.T) {
	const opcode = 0x24
	// rep 5 is in the explicitly reserved set; fieldIndex=3, rep=5.
	metaKey := (uint64(3) << 4) | 5
	var tmp bytes.Buffer
	if err := writeUvarint(&tmp, metaKey); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	data := tmp.Bytes()

	pairs, n, reserved, err := decodeMetadataEntry(data, 0, opcode)
	if err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if !reserved {
		t.Fatal(`exp rep 5 to be marked reserved`)
	}
	if n != len(data) {
		t.Fatalf(`exp %v bytes consumed; got %v`, len(data), n)
	}
	if len(pairs) != 0 {
		t.Fatalf(`exp no extra ints for a reserved rep code; got %v`, pairs)
	}
}

func TestDecodeMetadataEntryTruncated(t *testing.T) {
	_, _, _, err := decodeMetadataEntry([]byte{0x80, 0x80, 0x80}, 0, 0x24)
	if !asKind(err, KindTruncatedVarint) {
		t.Fatalf(`exp KindTruncatedVarint; got %v`, err)
	}
}

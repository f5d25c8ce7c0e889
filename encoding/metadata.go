package encoding

// repDescriptor describes how many extra varints follow a metadata key
// of a given representation code.
type repDescriptor struct {
	extraIntsNeeded int
}

// repTypes mirrors original_source/.../decoder.py's RMKI_TYPES table.
// Codes absent here (1, 5, 13 -- reserved/undefined) are treated as
// extraIntsNeeded == 0 by repFor rather than rejected outright.
var repTypes = map[uint64]repDescriptor{
	0:  {1},
	2:  {1},
	3:  {2},
	4:  {2},
	6:  {2},
	7:  {3},
	8:  {1},
	9:  {1},
	10: {1},
	11: {2},
	12: {3},
	14: {2},
	15: {0},
}

// repFor looks up a representation code, returning its descriptor and
// whether the code is absent from repTypes (for a 4-bit code, one of the
// reserved set {1, 5, 13}) -- tracked so Decoder.Stats can surface how
// often the undefined path was taken.
func repFor(rep uint64) (desc repDescriptor, reserved bool) {
	if d, ok := repTypes[rep]; ok {
		return d, false
	}
	switch rep {
	case 1, 5, 13:
		return repDescriptor{0}, true
	default:
		return repDescriptor{0}, true
	}
}

// MetadataValue is a field's value in Event.Fields: either a single
// scalar, or an ordered list accumulated from repeated keys.
type MetadataValue struct {
	scalar string
	list   []string
}

// IsList reports whether this value holds more than one entry.
func (v MetadataValue) IsList() bool { return v.list != nil }

// Scalar returns the single value and true, or "" and false if this
// value is a list.
func (v MetadataValue) Scalar() (string, bool) {
	if v.list != nil {
		return ``, false
	}
	return v.scalar, true
}

// List returns every value accumulated for this field in decode order.
// For a scalar value it returns a single-element slice.
func (v MetadataValue) List() []string {
	if v.list != nil {
		return v.list
	}
	return []string{v.scalar}
}

// insertMetadata applies the scalar-then-list promotion rule: a first
// occurrence is a scalar, a second promotes to a two-element list, and
// later ones append.
func insertMetadata(fields map[string]MetadataValue, field, value string) {
	existing, ok := fields[field]
	if !ok {
		fields[field] = MetadataValue{scalar: value}
		return
	}
	if existing.list != nil {
		existing.list = append(existing.list, value)
		fields[field] = existing
		return
	}
	fields[field] = MetadataValue{list: []string{existing.scalar, value}}
}

// metaPair is one decoded (field_index, value_index) entry prior to
// STRINGS resolution.
type metaPair struct {
	fieldIndex uint64
	valueIndex uint64
}

// decodeMetadataEntry reads one metadata table entry starting at
// data[off] for the given event opcode, returning the decoded pairs (a
// legacy entry yields exactly one pair; current-format entries yield one
// pair per extra int) and the number of bytes consumed.
func decodeMetadataEntry(data []byte, off int, opcode byte) (pairs []metaPair, n int, reserved bool, err error) {
	metaKey, consumed := uvarintFromBytes(data, off)
	if consumed == -1 {
		return nil, 0, false, newError(`decode metadata key`, KindTruncatedVarint, nil)
	}
	n = consumed

	legacy := opcode <= 2
	var fieldIndex uint64
	var numToRead int

	if legacy {
		metaKey <<= 3
		fieldIndex = metaKey >> 4
		numToRead = 1
	} else {
		if opcode < 36 {
			metaKey <<= 2
		}
		rep := metaKey & 0xf
		fieldIndex = metaKey >> 4
		desc, isReserved := repFor(rep)
		reserved = isReserved
		numToRead = desc.extraIntsNeeded
	}

	pairs = make([]metaPair, 0, numToRead)
	for i := 0; i < numToRead; i++ {
		extra, c := varintFromBytes(data, off+n)
		if c == -1 {
			return nil, 0, false, newError(`decode metadata value`, KindTruncatedVarint, nil)
		}
		n += c
		pairs = append(pairs, metaPair{fieldIndex: fieldIndex, valueIndex: uint64(extra)})
	}
	return pairs, n, reserved, nil
}

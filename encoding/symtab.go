package encoding

// table identifies which of the four append-only symbol tables an
// opcode or active-state field refers to. The values are plain indices
// (0-3), in the order of the NEW_HOST, NEW_SOURCE, NEW_SOURCE_TYPE and
// NEW_STRING opcodes; they are not the opcode bytes themselves.
type table int

const (
	tableHost table = iota
	tableSource
	tableSourceType
	tableString
)

// defaultMaxSymbols is the default per-table size bound: zero means
// unbounded. Decoder.SetMaxSymbols sets this per-instance.
const defaultMaxSymbols = 0

// symtab holds the four ordered, append-only string tables plus the
// four scalar state variables tracked alongside them.
type symtab struct {
	hosts       []string
	sources     []string
	sourceTypes []string
	strings     []string

	activeHost       uint64
	activeSource     uint64
	activeSourceType uint64
	baseEventTime    int32
	baseIndexTime    int32

	maxSymbols int // 0 means unbounded
}

func newSymtab() *symtab {
	return &symtab{maxSymbols: defaultMaxSymbols}
}

func (s *symtab) tableFor(t table) *[]string {
	switch t {
	case tableHost:
		return &s.hosts
	case tableSource:
		return &s.sources
	case tableSourceType:
		return &s.sourceTypes
	default:
		return &s.strings
	}
}

// append adds str to the given table, returning an error if a
// configured maxSymbols bound would be exceeded.
func (s *symtab) append(t table, str string) error {
	slice := s.tableFor(t)
	if s.maxSymbols > 0 && len(*slice) >= s.maxSymbols {
		return newError(`append symbol`, KindSymbolTableOverflow, nil)
	}
	*slice = append(*slice, str)
	return nil
}

// resolve looks up the 1-based index in the given table. index == 0
// means "unset" and resolves to "" with no error.
func (s *symtab) resolve(t table, index uint64) (string, error) {
	if index == 0 {
		return ``, nil
	}
	slice := *s.tableFor(t)
	if index > uint64(len(slice)) {
		return ``, newError(`resolve symbol`, KindIndexOutOfRange, nil)
	}
	return slice[index-1], nil
}

// host, source, sourceType resolve the currently active selection for
// each table, fatal-erroring if the active index outran the table --
// this can only happen on a malformed journal since state-update
// opcodes may only reference indices that already exist.
func (s *symtab) host() (string, error)       { return s.resolve(tableHost, s.activeHost) }
func (s *symtab) source() (string, error)     { return s.resolve(tableSource, s.activeSource) }
func (s *symtab) sourceType() (string, error) { return s.resolve(tableSourceType, s.activeSourceType) }

// lookupString resolves a 1-based STRINGS index for metadata-field
// resolution. Unlike host/source/sourceType this is explicitly
// non-fatal: callers record a sentinel on failure rather
// than aborting the event.
func (s *symtab) lookupString(index uint64) (string, bool) {
	if index == 0 || index > uint64(len(s.strings)) {
		return ``, false
	}
	return s.strings[index-1], true
}

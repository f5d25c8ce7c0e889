// Package encoding implements a streaming Decoder (and a companion
// Encoder used by its own round-trip tests) for the Splunk DDSS journal
// wire format.
//
// Overview
//
// A journal is a flat stream of opcodes: symbol declarations that append
// to one of four interned string tables (hosts, sources, sourcetypes,
// generic strings), state updates that change which interned values are
// "active", and event opcodes that reconstruct a self-describing record
// referencing the active symbols plus a typed metadata table. Decoder
// consumes that stream one opcode at a time and exposes it as an
// imperative iterator: call Scan until it returns false, read Event
// after each true return, and check Err once Scan stops.
//
// Unlike a tree-shaped format there is no framing that lets a reader skip
// ahead; every event must be reached by decoding everything before it.
// Decoder never rewinds its underlying source -- it reads, sometimes
// peeks to discover a record's shape, then commits with a single Skip
// (see Stream.Peek).
//
// Versions and compatibility
//
// The journal format has no version negotiation visible to this
// decoder beyond the HEADER opcode's version byte, which this
// implementation does not currently branch on -- every opcode family is
// accepted regardless of the declared version.
package encoding

import "unicode/utf8"

// decodeUTF8Lenient decodes b as UTF-8, substituting the replacement
// character for ill-formed sequences instead of failing, matching
// original_source/.../decoder.py's
// `data.decode("utf-8", errors="replace")`.
func decodeUTF8Lenient(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r)
		b = b[size:]
	}
	return string(out)
}

// Package compress detects and unwraps the compression framing a DDSS
// journal file may be stored under, grounded on
// original_source/.../compression.py and main.py's extension handling.
package compress

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Hint identifies a journal's compression framing.
type Hint int

const (
	// HintNone means the bytes are an uncompressed journal.
	HintNone Hint = iota
	// HintGzip means the bytes are gzip-framed.
	HintGzip
	// HintZstd means the bytes are zstd-framed.
	HintZstd
)

func (h Hint) String() string {
	switch h {
	case HintGzip:
		return `gzip`
	case HintZstd:
		return `zstd`
	default:
		return `none`
	}
}

// DetectHint infers a Hint from a file name's suffix, matching
// compression.py's filename_lower.endswith(...) checks.
func DetectHint(name string) Hint {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, `.zst`):
		return HintZstd
	case strings.HasSuffix(lower, `.gz`):
		return HintGzip
	default:
		return HintNone
	}
}

// Open wraps r with a decompressing reader per hint. The caller is
// responsible for closing the returned io.Reader's Close method when it
// implements io.Closer (the zstd decoder does; gzip.Reader does too).
func Open(r io.Reader, hint Hint) (io.Reader, error) {
	switch hint {
	case HintGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf(`compress: open gzip: %w`, err)
		}
		return gr, nil
	case HintZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf(`compress: open zstd: %w`, err)
		}
		return zr.IOReadCloser(), nil
	case HintNone:
		return r, nil
	default:
		return nil, fmt.Errorf(`compress: unknown hint %v`, hint)
	}
}

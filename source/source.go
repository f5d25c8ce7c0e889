// Package source opens the local byte sources this module's CLI and
// extractor accept: a file path, or "-" for stdin. Object-store URIs
// (original_source/.../main.py supports s3://) are out of scope.
package source

import (
	"fmt"
	"io"
	"os"
)

// Open returns a reader for arg, which is either "-" (stdin) or a local
// file path, in the same shape as a typical readerFromArg/readerFromStdin
// helper pair -- generalized here to return an error instead of calling
// os.Exit so callers (CLI or library) can handle it themselves.
//
// The returned io.ReadCloser's Close is a no-op for stdin.
func Open(arg string) (io.ReadCloser, error) {
	if arg == `-` {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf(`source: open %s: %w`, arg, err)
	}
	return f, nil
}

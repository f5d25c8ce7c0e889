package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

// formatFlag is a pflag.Value validating --format against the output
// formats extractor.NewWriter understands, so an invalid value is
// rejected at flag-parse time rather than surfacing later as a
// generic extraction error.
type formatFlag string

var _ pflag.Value = (*formatFlag)(nil)

func (f *formatFlag) String() string { return string(*f) }

func (f *formatFlag) Type() string { return `format` }

func (f *formatFlag) Set(v string) error {
	switch v {
	case `ndjson`, `csv`, `parquet`:
		*f = formatFlag(v)
		return nil
	default:
		return fmt.Errorf(`must be one of ndjson, csv, parquet; got %q`, v)
	}
}

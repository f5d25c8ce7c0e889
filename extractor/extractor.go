// Package extractor implements the high-level convenience API
// original_source/.../extractor.py wraps around the raw decoder:
// ExtractAll, ExtractToWriter, and ExtractBatch mirror
// extract_journal, extract_to_file, and extract_batch respectively.
// It composes encoding.Decoder, compress, source, and format rather
// than any one of them owning the pipeline.
package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ponquersohn/splunk-ddss-extractor/compress"
	"github.com/ponquersohn/splunk-ddss-extractor/encoding"
	"github.com/ponquersohn/splunk-ddss-extractor/format"
	"github.com/ponquersohn/splunk-ddss-extractor/source"
)

// openJournal opens path (or "-" for stdin), detecting and applying
// compression framing from its name.
func openJournal(path string) (*encoding.Decoder, func() error, error) {
	rc, err := source.Open(path)
	if err != nil {
		return nil, nil, err
	}
	hint := compress.DetectHint(path)
	r, err := compress.Open(rc, hint)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	return encoding.NewDecoder(r), rc.Close, nil
}

// eventToRecord converts the Decoder's current event into the
// canonical dictionary shape.
func eventToRecord(dec *encoding.Decoder) format.Record {
	evt := dec.Event()
	fields := make(map[string]string, len(evt.Fields))
	for k, v := range evt.Fields {
		if v.IsList() {
			fields[k] = strings.Join(v.List(), `, `)
		} else {
			s, _ := v.Scalar()
			fields[k] = s
		}
	}
	return format.Record{
		IndexTime:  evt.IndexTime,
		Time:       evt.EventTime,
		Event:      evt.MessageString(),
		Host:       evt.Host,
		SourceType: evt.SourceType,
		Source:     evt.Source,
		Fields:     fields,
	}
}

// ExtractAll decodes every event in the journal at path and returns the
// canonical records in order, mirroring extractor.py's extract_journal.
func ExtractAll(path string) ([]format.Record, error) {
	dec, closeFn, err := openJournal(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var records []format.Record
	for dec.Scan() {
		records = append(records, eventToRecord(dec))
	}
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf(`extractor: extract all: %w`, err)
	}
	return records, nil
}

// ExtractToWriter decodes every event in the journal at path and writes
// each as a Record to w, returning the number of events written. It
// mirrors extractor.py's extract_to_file, generalized to accept any
// format.Writer instead of hard-coding the output's compression and
// serialization.
func ExtractToWriter(path string, w format.Writer) (int, error) {
	return ExtractToWriterContext(context.Background(), path, w)
}

// ExtractToWriterContext is ExtractToWriter with cancellation observed
// between events via encoding.Decoder.ScanContext, the entry point for
// callers (such as the CLI handling SIGINT) that need to stop a
// long-running extraction early.
func ExtractToWriterContext(ctx context.Context, path string, w format.Writer) (int, error) {
	dec, closeFn, err := openJournal(path)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	count := 0
	for dec.ScanContext(ctx) {
		if err := w.Write(eventToRecord(dec)); err != nil {
			return count, fmt.Errorf(`extractor: write record: %w`, err)
		}
		count++
	}
	if err := dec.Err(); err != nil {
		return count, fmt.Errorf(`extractor: extract to writer: %w`, err)
	}
	return count, nil
}

// NewWriter constructs the format.Writer named by formatName ("ndjson",
// "csv", or "parquet") over w, matching
// output_formatters.py's get_formatter.
func NewWriter(formatName string, w io.Writer) (format.Writer, error) {
	switch formatName {
	case `ndjson`:
		return format.NewNDJSONWriter(w), nil
	case `csv`:
		return format.NewCSVWriter(w)
	case `parquet`:
		return format.NewParquetWriter(w), nil
	default:
		return nil, fmt.Errorf(`extractor: unsupported output format %q`, formatName)
	}
}

// ExtractBatch extracts every journal in paths into outputDir, one
// output file per input named "<stem>.<formatName>", mirroring
// extractor.py's extract_batch. The returned map holds the event count
// per input path, or -1 for inputs that failed, matching the Python
// version's sentinel-on-failure behavior rather than aborting the whole
// batch.
func ExtractBatch(paths []string, outputDir, formatName string) (map[string]int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf(`extractor: extract batch: %w`, err)
	}

	results := make(map[string]int, len(paths))
	for _, p := range paths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		outPath := filepath.Join(outputDir, stem+`.`+formatName)

		count, err := extractOneToFile(p, outPath, formatName)
		if err != nil {
			results[p] = -1
			continue
		}
		results[p] = count
	}
	return results, nil
}

func extractOneToFile(path, outPath, formatName string) (int, error) {
	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf(`extractor: create %s: %w`, outPath, err)
	}
	defer f.Close()

	w, err := NewWriter(formatName, f)
	if err != nil {
		return 0, err
	}
	defer w.Close()

	return ExtractToWriter(path, w)
}

package format

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
)

// csvHeader mirrors output_formatters.py's CSVFormatter fieldnames,
// extended with index_time and sourcetype's sibling scalars from the
// canonical Record shape; a trailing "fields" column carries the
// flattened metadata map.
var csvHeader = []string{`index_time`, `time`, `event`, `host`, `sourcetype`, `source`, `fields`}

// CSVWriter writes events as CSV, matching
// output_formatters.py's CSVFormatter.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter returns a writer appending CSV rows to w, writing the
// header immediately.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.w.Write(csvHeader); err != nil {
		return nil, err
	}
	return cw, nil
}

func (c *CSVWriter) Write(rec Record) error {
	row := []string{
		strconv.FormatInt(rec.IndexTime, 10),
		strconv.FormatInt(rec.Time, 10),
		rec.Event,
		rec.Host,
		rec.SourceType,
		rec.Source,
		flattenFields(rec.Fields),
	}
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// Close flushes any buffered CSV output.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

// flattenFields renders a fields map as "k=v, k=v" in sorted key order
// for deterministic output.
func flattenFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ``
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(`, `)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	return b.String()
}

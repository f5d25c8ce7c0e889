// Package format implements the three downstream serializations present
// in original_source/.../output_formatters.py (JSONLinesFormatter,
// CSVFormatter, and the disabled ParquetFormatter, here implemented
// rather than stubbed out).
package format

// Record is the canonical event serialization: a dictionary with keys
// index_time, time, event, host, sourcetype, source, fields. Fields is
// flattened to string values here -- a
// metadata entry that decoded as a list is joined with ", ", matching
// the lossy-but-readable treatment original_source/.../extractor.py's
// dict-based event_data gives to anything beyond its five scalar keys.
type Record struct {
	IndexTime  int64             `json:"index_time" parquet:"index_time"`
	Time       int64             `json:"time" parquet:"time"`
	Event      string            `json:"event" parquet:"event"`
	Host       string            `json:"host" parquet:"host"`
	SourceType string            `json:"sourcetype" parquet:"sourcetype"`
	Source     string            `json:"source" parquet:"source"`
	Fields     map[string]string `json:"fields" parquet:"fields,optional"`
}

// Writer is implemented by each of NDJSONWriter, CSVWriter, and
// ParquetWriter.
type Writer interface {
	Write(rec Record) error
	Close() error
}

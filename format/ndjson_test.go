package format

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNDJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	recs := []Record{
		{IndexTime: 1, Time: 2, Event: `hello`, Host: `a`, Source: `b`, SourceType: `c`},
		{IndexTime: 3, Time: 4, Event: `world`, Fields: map[string]string{`k`: `v`}},
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			t.Fatalf(`exp nil err; got %v`, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf(`exp 2 lines; got %v`, len(lines))
	}
	var got Record
	if err := json.Unmarshal(lines[1], &got); err != nil {
		t.Fatalf(`exp valid JSON line; got err %v`, err)
	}
	if got.Event != `world` || got.Fields[`k`] != `v` {
		t.Fatalf(`exp round-tripped record; got %+v`, got)
	}
}

package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer. Records are always an
// array, never null, for record results.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := *r
	var v any = out
	if r.Kind == KindRecords || r.Kind == "" {
		recs := r.Records
		if recs == nil {
			recs = []types.LogRecord{}
		}
		v = struct {
			Result
			Records []types.LogRecord `json:"records"`
		}{Result: out, Records: recs}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON, one compact
// object per record or folder. It suits streaming tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch r.Kind {
	case KindAnalysis:
		return writeLine(w, r.Analysis)
	case KindFolders:
		for _, fi := range r.Folders {
			if err := writeLine(w, fi); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, rec := range r.Records {
			if err := f.FormatRecord(w, rec); err != nil {
				return err
			}
		}
		return nil
	}
}

// FormatRecord writes one record as a JSON line.
func (f *JSONLFormatter) FormatRecord(w *bytes.Buffer, rec types.LogRecord) error {
	return writeLine(w, rec)
}

func writeLine(w *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Write(data)
	w.WriteByte('\n')
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

var (
	_ Formatter       = (*JSONLFormatter)(nil)
	_ RecordFormatter = (*JSONLFormatter)(nil)
)

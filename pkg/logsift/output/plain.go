package output

import (
	"bytes"
	"strings"
	"text/tabwriter"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// PlainFormatter formats output as an aligned table without colors. It is
// meant for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	header, rows := table(r)
	if _, err := tw.Write([]byte(strings.Join(header, "\t") + "\n")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tw.Write([]byte(strings.Join(row, "\t") + "\n")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// FormatRecord writes one tab-separated record line.
func (f *PlainFormatter) FormatRecord(w *bytes.Buffer, rec types.LogRecord) error {
	w.WriteString(strings.Join(recordRow(rec), "\t"))
	w.WriteByte('\n')
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var (
	_ Formatter       = (*PlainFormatter)(nil)
	_ RecordFormatter = (*PlainFormatter)(nil)
)

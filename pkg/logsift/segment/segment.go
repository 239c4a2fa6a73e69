// Package segment reconstructs multi-line log records from text.
//
// A record opens on an anchor line (a timestamp followed by a severity
// marker) and absorbs the following undated lines. Another anchor, or any
// other line that starts with a date, closes it; such a dated non-anchor
// line is an entry of its own and is discarded. Lines outside a record are
// discarded. Records whose anchor date cannot be parsed are dropped, and the
// date range gates what is returned.
package segment

import (
	"strings"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Options configures a Segmenter.
type Options struct {
	Pattern Pattern
	Range   daterange.Range
}

// Segmenter splits text into records. It holds no per-call state and is
// safe for concurrent use.
type Segmenter struct {
	pattern Pattern
	rng     daterange.Range
}

func New(opts Options) *Segmenter {
	return &Segmenter{pattern: opts.Pattern, rng: opts.Range}
}

// Pattern returns the anchor pattern in use.
func (s *Segmenter) Pattern() Pattern { return s.pattern }

// SplitLines splits on "\n" and drops a trailing "\r" from each line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Segment splits a whole file.
func (s *Segmenter) Segment(content, folder, file string) []types.LogRecord {
	return s.SegmentLines(SplitLines(content), 0, folder, file)
}

// SegmentLines splits lines that start at 0-based line offset within the
// source file, so LineNumber stays correct for a suffix of the file.
func (s *Segmenter) SegmentLines(lines []string, offset int, folder, file string) []types.LogRecord {
	m := &machine{seg: s, folder: folder, file: file}
	for i, line := range lines {
		m.step(offset+i, line)
	}
	m.flush()
	return m.out
}

type state int

const (
	stateIdle state = iota
	stateInRecord
)

// machine is the per-call state of one segmentation pass.
type machine struct {
	seg    *Segmenter
	folder string
	file   string

	state  state
	index  int
	date   time.Time
	dated  bool
	buffer []string

	out []types.LogRecord
}

func (m *machine) step(index int, line string) {
	if m.seg.pattern.Matches(line) {
		m.flush()
		m.state = stateInRecord
		m.index = index
		m.date, m.dated = ParseTimestamp(line)
		m.buffer = append(m.buffer[:0], strings.TrimSpace(line))
		return
	}

	if startsWithDate(line) {
		m.flush()
		return
	}

	switch m.state {
	case stateIdle:
	case stateInRecord:
		m.buffer = append(m.buffer, strings.TrimSpace(line))
	}
}

func (m *machine) flush() {
	if m.state != stateInRecord {
		return
	}
	m.state = stateIdle
	if !m.dated || !m.seg.rng.Contains(m.date) {
		return
	}
	m.out = append(m.out, types.LogRecord{
		Folder:     m.folder,
		File:       m.file,
		LineNumber: m.index + 1,
		Content:    strings.TrimSpace(strings.Join(m.buffer, "\n")),
		Date:       m.date,
	})
}

// Package tailer follows growing log files under selected local folders and
// emits the records appended since the previous poll.
//
// A Session owns the per-file watermarks. The first sighting of a file only
// records its size and complete-line count, so existing content is never
// replayed. Later polls segment just the complete lines past the watermark.
// A trailing line without a newline is held back until it is terminated.
package tailer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/local"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

const (
	DefaultInterval  = time.Second
	DefaultHeartbeat = 15 * time.Second
)

// Options configures a Session.
type Options struct {
	// Pattern recognises anchors in appended text.
	Pattern segment.Pattern

	// Interval between polls. Zero means DefaultInterval.
	Interval time.Duration

	// Heartbeat interval. Zero means DefaultHeartbeat; negative disables.
	Heartbeat time.Duration

	// Notify wakes the poll loop early on filesystem events.
	Notify bool
}

// DefaultOptions uses the strict anchor with filesystem notifications.
func DefaultOptions() Options {
	return Options{
		Pattern:   segment.Strict,
		Interval:  DefaultInterval,
		Heartbeat: DefaultHeartbeat,
		Notify:    true,
	}
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Heartbeat == 0 {
		o.Heartbeat = DefaultHeartbeat
	}
	return o
}

// Watermark is the last observed state of one file.
type Watermark struct {
	Path   string
	Folder string
	Rel    string
	Size   int64
	// Lines counts newline-terminated lines already consumed.
	Lines int
}

// Session tails one set of folders. It is not safe for concurrent use; Run
// is its only driver once started.
type Session struct {
	root    string
	folders []local.Folder
	seg     *segment.Segmenter
	opts    Options
	marks   map[string]*Watermark
}

// NewSession validates folders beneath root. Rejected names are skipped with
// a warning; local.ErrNoFolders is returned when none remain.
func NewSession(root string, folders []string, opts Options) (*Session, error) {
	sel, err := local.Select(root, folders)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Session{
		root:    sel.Root,
		folders: sel.Folders,
		seg:     segment.New(segment.Options{Pattern: opts.Pattern}),
		opts:    opts,
		marks:   make(map[string]*Watermark),
	}, nil
}

// Folders returns the validated folder names.
func (s *Session) Folders() []string {
	out := make([]string, len(s.folders))
	for i, f := range s.folders {
		out[i] = f.Name
	}
	return out
}

// Watermarks returns a snapshot of the tracked files, sorted by path.
func (s *Session) Watermarks() []Watermark {
	out := make([]Watermark, 0, len(s.marks))
	for _, wm := range s.marks {
		out = append(out, *wm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// RecordID identifies a tailed record by folder, file, anchor line and
// anchor time. Identical records always get the same id.
func RecordID(r types.LogRecord) string {
	return fmt.Sprintf("%s|%s|%d|%d", r.Folder, r.File, r.LineNumber, r.Date.Unix())
}

// Poll re-enumerates the folders and returns records appended since the
// previous poll, ordered by folder, file and line.
func (s *Session) Poll(ctx context.Context) ([]types.LogRecord, error) {
	log := logging.Get("tailer")
	var out []types.LogRecord

	for _, f := range s.folders {
		listing, err := local.Scan(ctx, f.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("skipping unreadable folder", "folder", f.Name, "error", err)
			continue
		}
		for _, file := range listing.Files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			wm, seen := s.marks[file.Path]
			if !seen {
				s.baseline(f, file)
				continue
			}
			out = append(out, s.advance(wm, file)...)
		}
	}
	return out, nil
}

// completeLines returns the newline-terminated lines of text.
func completeLines(text string) []string {
	end := strings.LastIndexByte(text, '\n')
	if end < 0 {
		return nil
	}
	return segment.SplitLines(text[:end])
}

func (s *Session) read(path string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logging.Get("tailer").Warn("skipping unreadable file", "path", path, "error", err)
		return "", false
	}
	return segment.Decode(raw), true
}

func (s *Session) baseline(f local.Folder, file local.File) {
	text, ok := s.read(file.Path)
	if !ok {
		return
	}
	s.marks[file.Path] = &Watermark{
		Path:   file.Path,
		Folder: f.Name,
		Rel:    file.Rel,
		Size:   file.Size,
		Lines:  len(completeLines(text)),
	}
}

func (s *Session) advance(wm *Watermark, file local.File) []types.LogRecord {
	if file.Size == wm.Size {
		return nil
	}
	if file.Size < wm.Size {
		logging.Get("tailer").Debug("file shrank, rereading from start", "path", wm.Path)
		wm.Size, wm.Lines = 0, 0
	}

	text, ok := s.read(wm.Path)
	if !ok {
		return nil
	}
	lines := completeLines(text)
	if len(lines) < wm.Lines {
		wm.Lines = 0
	}
	fresh := lines[wm.Lines:]
	recs := s.seg.SegmentLines(fresh, wm.Lines, wm.Folder, wm.Rel)
	for i := range recs {
		recs[i].ID = RecordID(recs[i])
	}
	wm.Size = file.Size
	wm.Lines = len(lines)
	return recs
}

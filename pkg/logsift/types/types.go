// Package types holds the data shared across the logsift pipeline: extracted
// records, archive previews, local folder listings, and the helpers for
// classifying and summarising them.
package types

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// Severity is the downstream category of a record. It is derived from the
// record text, never from the marker that opened the record.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityOther   Severity = "other"
)

// ErrInvalidSeverity is returned by ParseSeverity.
var ErrInvalidSeverity = errors.New("invalid severity")

// ParseSeverity accepts error, warning (or warn) and other.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "err":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "other":
		return SeverityOther, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
}

// Classify searches content case-insensitively for "error", then "warn".
// A [Critical] record that mentions an error in its body is an error.
func Classify(content string) Severity {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "error"):
		return SeverityError
	case strings.Contains(lower, "warn"):
		return SeverityWarning
	default:
		return SeverityOther
	}
}

// LogRecord is one reconstructed multi-line log entry.
type LogRecord struct {
	// ID is only set on records emitted by a tail session.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Folder is the normalized service identifier for archive input, or the
	// selected top-level folder for local input.
	Folder string `json:"folder" yaml:"folder"`

	// File is the source path relative to Folder's root.
	File string `json:"file" yaml:"file"`

	// LineNumber is the 1-based line of the anchor line.
	LineNumber int `json:"lineNumber" yaml:"lineNumber"`

	Content string    `json:"content" yaml:"content"`
	Date    time.Time `json:"date" yaml:"date"`
}

// Severity classifies the record content.
func (r LogRecord) Severity() Severity {
	return Classify(r.Content)
}

// Headline is the first line of Content.
func (r LogRecord) Headline() string {
	if i := strings.IndexByte(r.Content, '\n'); i >= 0 {
		return r.Content[:i]
	}
	return r.Content
}

// DateSpan is an inclusive pair of ISO calendar dates.
type DateSpan struct {
	Earliest string `json:"earliest" yaml:"earliest"`
	Latest   string `json:"latest" yaml:"latest"`
}

// ArchiveAnalysis is the cheap preview of an archive. LogFiles never exceeds
// TotalFiles, and DateRange is nil when no dated line was sampled.
type ArchiveAnalysis struct {
	TotalFiles int `json:"totalFiles" yaml:"totalFiles"`
	LogFiles   int `json:"logFiles" yaml:"logFiles"`

	// TotalSize is the decoded text length of the log files, not the
	// compressed size.
	TotalSize int64 `json:"totalSize" yaml:"totalSize"`

	Folders             []string  `json:"folders" yaml:"folders"`
	DateRange           *DateSpan `json:"dateRange,omitempty" yaml:"dateRange,omitempty"`
	EstimatedLogEntries int       `json:"estimatedLogEntries" yaml:"estimatedLogEntries"`
}

// FolderInfo describes one top-level folder under a local root.
type FolderInfo struct {
	Name      string `json:"name" yaml:"name"`
	FileCount int    `json:"fileCount" yaml:"fileCount"`
	TotalSize int64  `json:"totalSize" yaml:"totalSize"`
}

// IsLogFile reports whether name qualifies for extraction: a .log or .txt
// extension, or none at all.
func IsLogFile(name string) bool {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return false
	}
	switch strings.ToLower(path.Ext(base)) {
	case ".log", ".txt", "":
		return true
	default:
		return false
	}
}

// Summary buckets records by folder, calendar date (UTC) and severity.
type Summary struct {
	Total      int              `json:"total" yaml:"total"`
	ByFolder   map[string]int   `json:"byFolder" yaml:"byFolder"`
	ByDate     map[string]int   `json:"byDate" yaml:"byDate"`
	BySeverity map[Severity]int `json:"bySeverity" yaml:"bySeverity"`
}

// Summarize builds a Summary over records.
func Summarize(records []LogRecord) Summary {
	s := Summary{
		Total:      len(records),
		ByFolder:   make(map[string]int),
		ByDate:     make(map[string]int),
		BySeverity: make(map[Severity]int),
	}
	for _, r := range records {
		s.ByFolder[r.Folder]++
		s.ByDate[r.Date.UTC().Format(time.DateOnly)]++
		s.BySeverity[r.Severity()]++
	}
	return s
}

// Folders returns the summary's folder keys in sorted order.
func (s Summary) Folders() []string {
	return sortedKeys(s.ByFolder)
}

// Dates returns the summary's date keys in ascending order.
func (s Summary) Dates() []string {
	return sortedKeys(s.ByDate)
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

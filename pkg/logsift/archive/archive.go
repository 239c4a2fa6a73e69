// Package archive reads ZIP and gzip-compressed tar archives of log files.
// Both formats are exposed through the same pull iterator; the Extractor and
// Analyzer drive it entry by entry, in archive order.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned before any decoding for a filename
	// that is not .zip, .tar.gz or .tgz.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrCorruptArchive covers an unreadable ZIP central directory, a bad
	// gzip header, and a broken tar stream.
	ErrCorruptArchive = errors.New("archive appears corrupted")

	// ErrArchiveTooLarge is returned when the payload exceeds
	// Limits.MaxArchiveSize.
	ErrArchiveTooLarge = errors.New("archive exceeds maximum size")

	errEntryTooLarge = errors.New("entry exceeds maximum size")
)

// Format is a supported container format.
type Format int

const (
	FormatZip Format = iota + 1
	FormatTarGz
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	default:
		return "unknown"
	}
}

// DetectFormat dispatches on the filename extension, case-insensitively.
func DetectFormat(filename string) (Format, error) {
	name := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, nil
	}
	ext := path.Ext(name)
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension (want .zip, .tar.gz or .tgz)", ErrUnsupportedFormat, filename)
	}
	return 0, fmt.Errorf("%w: %q (want .zip, .tar.gz or .tgz)", ErrUnsupportedFormat, ext)
}

// Limits are caller policy; zero means unlimited.
type Limits struct {
	// MaxArchiveSize bounds the compressed payload.
	MaxArchiveSize int64

	// MaxEntrySize bounds a single decompressed entry. Larger entries are
	// skipped with a warning.
	MaxEntrySize int64
}

// Check rejects a payload larger than MaxArchiveSize.
func (l Limits) Check(size int64) error {
	if l.MaxArchiveSize > 0 && size > l.MaxArchiveSize {
		return fmt.Errorf("%w: %d bytes > %d", ErrArchiveTooLarge, size, l.MaxArchiveSize)
	}
	return nil
}

// Entry is one member of an archive. Its reader is only valid until the
// iterator advances.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool

	open func() (io.ReadCloser, error)
}

// Open returns the entry content.
func (e *Entry) Open() (io.ReadCloser, error) {
	if e.open == nil {
		return nil, fmt.Errorf("entry %s has no content", e.Name)
	}
	return e.open()
}

// Iterator yields archive entries in order. Next returns io.EOF after the
// last entry.
type Iterator interface {
	Next(ctx context.Context) (*Entry, error)
	Close() error
}

// Open returns an iterator over data in the given format.
func Open(data []byte, format Format) (Iterator, error) {
	switch format {
	case FormatZip:
		return newZipIterator(data)
	case FormatTarGz:
		return newTarIterator(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func readEntry(e *Entry, limit int64) ([]byte, error) {
	if limit > 0 && e.Size > limit {
		return nil, errEntryTooLarge
	}
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, errEntryTooLarge
	}
	return b, nil
}

package archive

import (
	"context"
	"errors"
	"io"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/pathsafe"
)

// member is a file entry whose path has passed the sanitizer.
type member struct {
	*Entry
	Path string
}

// walk iterates every file entry of data. Directories are skipped, and so
// are entries whose paths the sanitizer rejects, each with a warning.
// Iteration stops at the first error fn returns.
func walk(ctx context.Context, data []byte, filename string, limits Limits, fn func(member) error) error {
	format, err := DetectFormat(filename)
	if err != nil {
		return err
	}
	if err := limits.Check(int64(len(data))); err != nil {
		return err
	}

	it, err := Open(data, format)
	if err != nil {
		return err
	}
	defer it.Close()

	log := logging.Get("archive")
	for {
		e, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if e.IsDir {
			continue
		}
		clean, err := pathsafe.Sanitize(e.Name)
		if err != nil {
			log.Warn("skipping archive entry", "archive", filename, "entry", e.Name, "error", err)
			continue
		}
		if err := fn(member{Entry: e, Path: clean}); err != nil {
			return err
		}
	}
}

// load reads a member. Per-entry failures are logged and reported as
// skip=true; a broken stream is returned as an error.
func load(m member, filename string, limits Limits) (data []byte, skip bool, err error) {
	b, err := readEntry(m.Entry, limits.MaxEntrySize)
	switch {
	case err == nil:
		return b, false, nil
	case errors.Is(err, ErrCorruptArchive):
		return nil, false, err
	case errors.Is(err, errEntryTooLarge):
		logging.Get("archive").Warn("skipping oversized entry",
			"archive", filename, "entry", m.Path, "size", m.Size, "limit", limits.MaxEntrySize)
		return nil, true, nil
	default:
		logging.Get("archive").Warn("skipping unreadable entry", "archive", filename, "entry", m.Path, "error", err)
		return nil, true, nil
	}
}

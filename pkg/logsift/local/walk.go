package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// File is a qualifying log file found beneath a folder.
type File struct {
	// Path is absolute.
	Path string
	// Rel is slash-separated and relative to the scanned folder.
	Rel  string
	Size int64
}

// Listing is the result of scanning one folder.
type Listing struct {
	Files     []File
	TotalSize int64
	// Skipped counts entries that could not be read.
	Skipped int64
}

// Scan finds every .log, .txt or extensionless regular file under dir,
// sorted by relative path. Symlinks are not followed. Unreadable entries are
// logged and counted rather than failing the scan.
func Scan(ctx context.Context, dir string) (*Listing, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	conf := fastwalk.Config{Follow: false}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	var (
		mu      sync.Mutex
		files   []File
		bytes   atomic.Int64
		skipped atomic.Int64
	)
	log := logging.Get("local")

	err = fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}
		if err != nil {
			skipped.Add(1)
			log.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !types.IsLogFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			skipped.Add(1)
			log.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		bytes.Add(info.Size())
		mu.Lock()
		files = append(files, File{Path: path, Rel: filepath.ToSlash(rel), Size: info.Size()})
		mu.Unlock()
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return &Listing{Files: files, TotalSize: bytes.Load(), Skipped: skipped.Load()}, nil
}

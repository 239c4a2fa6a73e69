package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type zipIterator struct {
	files []*zip.File
	next  int
}

func newZipIterator(data []byte) (*zipIterator, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	// Insecure names are left to the path sanitizer.
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return &zipIterator{files: zr.File}, nil
}

func (it *zipIterator) Next(ctx context.Context) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for it.next < len(it.files) {
		f := it.files[it.next]
		it.next++

		mode := f.Mode()
		if mode.IsDir() || strings.HasSuffix(f.Name, "/") {
			return &Entry{Name: f.Name, IsDir: true}, nil
		}
		if !mode.IsRegular() {
			// Symlinks and other special entries carry no log text.
			continue
		}
		return &Entry{
			Name: f.Name,
			Size: int64(f.UncompressedSize64), //nolint:gosec // sizes fit in int64
			open: f.Open,
		}, nil
	}
	return nil, io.EOF
}

func (it *zipIterator) Close() error { return nil }

package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
)

// tarIterator streams a gzip-compressed tar. Entry content must be consumed
// before the next call to Next.
type tarIterator struct {
	gz *gzip.Reader
	tr *tar.Reader
}

func newTarIterator(data []byte) (*tarIterator, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return &tarIterator{gz: gz, tr: tar.NewReader(gz)}, nil
}

func (it *tarIterator) Next(ctx context.Context) (*Entry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := it.tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil && !(errors.Is(err, tar.ErrInsecurePath) && hdr != nil) {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			return &Entry{Name: hdr.Name, IsDir: true}, nil
		case tar.TypeReg:
			return &Entry{
				Name: hdr.Name,
				Size: hdr.Size,
				open: func() (io.ReadCloser, error) {
					return io.NopCloser(streamReader{it.tr}), nil
				},
			}, nil
		}
		// Links, devices and metadata records carry no log text.
	}
}

func (it *tarIterator) Close() error {
	return it.gz.Close()
}

// streamReader marks failures inside the compressed stream as corruption;
// a tar cannot be resynchronised after one.
type streamReader struct {
	r io.Reader
}

func (s streamReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return n, err
}

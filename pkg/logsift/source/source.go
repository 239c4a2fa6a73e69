// Package source loads archive payloads from a local path or from object
// storage, enforcing the size limit while reading.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

var (
	// ErrTooLarge is returned when the payload exceeds Options.MaxSize.
	ErrTooLarge = errors.New("archive exceeds maximum size")

	// ErrInvalidURI is returned for a malformed s3:// reference.
	ErrInvalidURI = errors.New("invalid object URI")
)

const s3Scheme = "s3://"

// Archive is a loaded payload. Name is the base name used for format
// detection.
type Archive struct {
	Name string
	Ref  string
	Data []byte
}

// Options configures loading. Zero MaxSize means unlimited.
type Options struct {
	MaxSize int64
	S3      S3Options
}

// IsRemote reports whether ref names an object rather than a file.
func IsRemote(ref string) bool {
	return strings.HasPrefix(strings.ToLower(ref), s3Scheme)
}

// Load reads ref, which is either a filesystem path or s3://bucket/key.
func Load(ctx context.Context, ref string, opts Options) (*Archive, error) {
	if IsRemote(ref) {
		bucket, key, err := ParseS3URI(ref)
		if err != nil {
			return nil, err
		}
		client, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return client.Load(ctx, bucket, key, opts.MaxSize)
	}
	return LoadFile(ref, opts.MaxSize)
}

// LoadFile reads a local archive.
func LoadFile(p string, maxSize int64) (*Archive, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open archive: %s is a directory", p)
	}
	if err := checkSize(info.Size(), maxSize); err != nil {
		return nil, err
	}

	data, err := readLimited(f, maxSize)
	if err != nil {
		return nil, err
	}
	logging.Get("source").Debug("loaded archive", "path", p, "size", types.FormatSize(int64(len(data))))
	return &Archive{Name: info.Name(), Ref: p, Data: data}, nil
}

func checkSize(size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %s > %s", ErrTooLarge, types.FormatSize(size), types.FormatSize(maxSize))
	}
	return nil
}

// readLimited reads r fully, failing once more than maxSize bytes arrive.
func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if err := checkSize(int64(len(data)), maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(ref string) (bucket, key string, err error) {
	if !IsRemote(ref) {
		return "", "", fmt.Errorf("%w: %q lacks the s3:// scheme", ErrInvalidURI, ref)
	}
	rest := ref[len(s3Scheme):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q must be s3://bucket/key", ErrInvalidURI, ref)
	}
	return bucket, key, nil
}

func baseName(key string) string {
	return path.Base(key)
}

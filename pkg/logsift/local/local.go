// Package local lists and extracts log folders on the local filesystem. A
// root directory holds one folder per service; callers select whole
// top-level folders by name.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/pathsafe"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

var (
	// ErrRootUnavailable is returned when the root is missing, unreadable,
	// or not a directory.
	ErrRootUnavailable = errors.New("log root unavailable")

	// ErrNoFolders is returned when no usable folder was selected.
	ErrNoFolders = errors.New("no folders selected")
)

// ResolveRoot returns the absolute root to use. A non-empty override wins
// over the configured root; either way the result must be a directory.
func ResolveRoot(configured, override string) (string, error) {
	root := strings.TrimSpace(override)
	if root == "" {
		root = strings.TrimSpace(configured)
	}
	if root == "" {
		return "", fmt.Errorf("%w: no root configured", ErrRootUnavailable)
	}
	if strings.HasPrefix(root, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRootUnavailable, err)
		}
		root = filepath.Join(home, root[1:])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootUnavailable, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootUnavailable, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrRootUnavailable, abs)
	}
	return abs, nil
}

// ListFolders describes each top-level folder under root. A missing or
// unreadable root yields an empty list together with ErrRootUnavailable.
func ListFolders(ctx context.Context, root string) ([]types.FolderInfo, error) {
	out := []types.FolderInfo{}
	entries, err := os.ReadDir(root)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrRootUnavailable, err)
	}

	log := logging.Get("local")
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		listing, err := Scan(ctx, filepath.Join(root, e.Name()))
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn("skipping unreadable folder", "folder", e.Name(), "error", err)
			continue
		}
		out = append(out, types.FolderInfo{
			Name:      e.Name(),
			FileCount: len(listing.Files),
			TotalSize: listing.TotalSize,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Selection is a validated set of folders beneath a root.
type Selection struct {
	Root    string
	Folders []Folder
}

// Folder is one validated top-level folder.
type Folder struct {
	Name string
	Path string
}

// Select validates names against root. Invalid names are skipped with a
// warning; ErrNoFolders is returned when nothing usable remains.
func Select(root string, names []string) (*Selection, error) {
	if len(names) == 0 {
		return nil, ErrNoFolders
	}
	log := logging.Get("local")
	sel := &Selection{Root: root}
	seen := make(map[string]bool)
	for _, n := range names {
		full, err := pathsafe.Within(root, n)
		if err != nil {
			log.Warn("rejecting folder", "folder", n, "error", err)
			continue
		}
		name := filepath.Base(full)
		if seen[name] {
			continue
		}
		seen[name] = true
		sel.Folders = append(sel.Folders, Folder{Name: name, Path: full})
	}
	if len(sel.Folders) == 0 {
		return nil, fmt.Errorf("%w: every requested folder was rejected", ErrNoFolders)
	}
	return sel, nil
}

// Extractor segments every qualifying file of the selected folders.
type Extractor struct {
	pattern segment.Pattern
}

func NewExtractor(pattern segment.Pattern) *Extractor {
	return &Extractor{pattern: pattern}
}

// Extract reads folders in the order given and files in path order. Records
// carry the folder name and the file path relative to that folder.
// Unreadable folders and files are skipped.
func (x *Extractor) Extract(ctx context.Context, root string, names []string, rng daterange.Range) ([]types.LogRecord, error) {
	sel, err := Select(root, names)
	if err != nil {
		return nil, err
	}
	seg := segment.New(segment.Options{Pattern: x.pattern, Range: rng})
	log := logging.Get("local")

	records := []types.LogRecord{}
	for _, f := range sel.Folders {
		listing, err := Scan(ctx, f.Path)
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
			raw, err := os.ReadFile(file.Path)
			if err != nil {
				log.Warn("skipping unreadable file", "path", file.Path, "error", err)
				continue
			}
			records = append(records, seg.Segment(segment.Decode(raw), f.Name, file.Rel)...)
		}
	}
	return records, nil
}

// Package pathsafe validates paths taken from archive metadata and request
// parameters before anything is built from them.
package pathsafe

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrRejectedPath marks a path that attempts traversal or is otherwise
// unusable. Callers skip the entry and carry on.
var ErrRejectedPath = errors.New("rejected path")

func traverses(p string) bool {
	if strings.Contains(p, "~") {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// Sanitize returns a clean relative slash path for raw, or ErrRejectedPath.
// Backslashes are treated as separators and leading separators are stripped.
// Paths containing a ".." segment or "~" are rejected both before and after
// cleaning.
func Sanitize(raw string) (string, error) {
	p := strings.ReplaceAll(raw, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrRejectedPath)
	}
	if traverses(p) {
		return "", fmt.Errorf("%w: %q", ErrRejectedPath, raw)
	}

	clean := path.Clean(p)
	if clean == "." || strings.HasPrefix(clean, "/") || traverses(clean) {
		return "", fmt.Errorf("%w: %q", ErrRejectedPath, raw)
	}
	if strings.ContainsRune(clean, 0) {
		return "", fmt.Errorf("%w: NUL byte in %q", ErrRejectedPath, raw)
	}
	return clean, nil
}

// ValidateFolderName accepts a single top-level folder name. Anything that
// would select a subpath or leave the root is rejected.
func ValidateFolderName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" || n == "." {
		return "", fmt.Errorf("%w: empty folder name", ErrRejectedPath)
	}
	if strings.ContainsAny(n, `/\`) {
		return "", fmt.Errorf("%w: folder %q contains a path separator", ErrRejectedPath, name)
	}
	if _, err := Sanitize(n); err != nil {
		return "", err
	}
	return n, nil
}

// Within joins a validated folder name under root and confirms the result
// stays inside root.
func Within(root, name string) (string, error) {
	folder, err := ValidateFolderName(name)
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	full := filepath.Join(absRoot, folder)
	rel, err := filepath.Rel(absRoot, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q escapes root", ErrRejectedPath, name)
	}
	return full, nil
}

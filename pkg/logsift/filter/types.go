// Package filter narrows, orders, and limits extracted records on the
// caller's side. Extraction itself never sorts or filters beyond the date
// range; everything here is presentation policy.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// SortField specifies the field to sort records by.
type SortField int

const (
	// SortNone keeps extraction order.
	SortNone SortField = iota
	// SortDate sorts by record timestamp.
	SortDate
	// SortFolder sorts by folder, then file and line.
	SortFolder
	// SortFile sorts by file, then line.
	SortFile
	// SortSeverity puts errors before warnings before everything else.
	SortSeverity
)

// Sort field string constants.
const (
	sortFieldNone     = "none"
	sortFieldDate     = "date"
	sortFieldFolder   = "folder"
	sortFieldFile     = "file"
	sortFieldSeverity = "severity"
)

// String returns the string representation of the sort field.
func (s SortField) String() string {
	switch s {
	case SortDate:
		return sortFieldDate
	case SortFolder:
		return sortFieldFolder
	case SortFile:
		return sortFieldFile
	case SortSeverity:
		return sortFieldSeverity
	default:
		return sortFieldNone
	}
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField parses a string into a SortField.
// Valid values are "none", "date", "folder", "file" and "severity"
// (case-insensitive). The empty string means SortNone.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", sortFieldNone:
		return SortNone, nil
	case sortFieldDate:
		return SortDate, nil
	case sortFieldFolder:
		return SortFolder, nil
	case sortFieldFile:
		return SortFile, nil
	case sortFieldSeverity:
		return SortSeverity, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
	}
}

package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Filter defines criteria for filtering, sorting, and limiting records.
type Filter struct {
	// Include contains folder glob patterns. If non-empty, a record's folder
	// must match at least one.
	Include []string

	// Exclude contains folder glob patterns. Matching folders are excluded.
	Exclude []string

	// Files contains glob patterns matched against the record's file path.
	Files []string

	// Severities restricts records to these derived severities.
	Severities []types.Severity

	// Contains is a case-insensitive substring the content must carry.
	Contains string

	// SortBy specifies the field to sort results by.
	SortBy SortField

	// SortDescending specifies whether to sort in descending order.
	SortDescending bool

	// Limit is the maximum number of records to return. 0 means unlimited.
	Limit int

	include, exclude, files []glob.Glob
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// New creates a new Filter with the given options. By default nothing is
// excluded, extraction order is kept, and there is no limit.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		opt(f)
	}
	f.include = compile(f.Include)
	f.exclude = compile(f.Exclude)
	f.files = compile(f.Files)
	return f
}

// compile skips invalid patterns with a warning.
func compile(patterns []string) []glob.Glob {
	var out []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			logging.Get("filter").Warn("ignoring invalid pattern", "pattern", p, "error", err)
			continue
		}
		out = append(out, g)
	}
	return out
}

// WithLimit sets the maximum number of records to return.
// If limit <= 0, it is set to 0 (unlimited).
func WithLimit(limit int) Option {
	return func(f *Filter) {
		if limit < 0 {
			limit = 0
		}
		f.Limit = limit
	}
}

// WithInclude sets the folder include patterns.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Include = patterns
	}
}

// WithExclude sets the folder exclude patterns.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Exclude = patterns
	}
}

// WithFiles sets the file path patterns.
func WithFiles(patterns ...string) Option {
	return func(f *Filter) {
		f.Files = patterns
	}
}

// WithSeverities restricts the severities kept.
func WithSeverities(sev ...types.Severity) Option {
	return func(f *Filter) {
		f.Severities = sev
	}
}

// WithContains keeps records whose content contains s, ignoring case.
func WithContains(s string) Option {
	return func(f *Filter) {
		f.Contains = s
	}
}

// WithSortBy sets the field to sort results by.
func WithSortBy(field SortField) Option {
	return func(f *Filter) {
		f.SortBy = field
	}
}

// WithSortDescending sets whether to sort in descending order.
func WithSortDescending(desc bool) Option {
	return func(f *Filter) {
		f.SortDescending = desc
	}
}

// Match returns true if the record passes every criterion.
func (f *Filter) Match(r types.LogRecord) bool {
	if anyMatch(f.exclude, r.Folder) {
		return false
	}
	if len(f.include) > 0 && !anyMatch(f.include, r.Folder) {
		return false
	}
	if len(f.files) > 0 && !anyMatch(f.files, r.File) {
		return false
	}
	if len(f.Severities) > 0 && !slices.Contains(f.Severities, r.Severity()) {
		return false
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(r.Content), strings.ToLower(f.Contains)) {
		return false
	}
	return true
}

func anyMatch(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

func severityRank(s types.Severity) int {
	switch s {
	case types.SeverityError:
		return 0
	case types.SeverityWarning:
		return 1
	default:
		return 2
	}
}

func compareLocation(a, b types.LogRecord) int {
	return cmp.Or(
		cmp.Compare(a.Folder, b.Folder),
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.LineNumber, b.LineNumber),
	)
}

// Sort returns a sorted copy of records. The original slice is not modified
// and ties keep their extraction order.
func (f *Filter) Sort(records []types.LogRecord) []types.LogRecord {
	sorted := make([]types.LogRecord, len(records))
	copy(sorted, records)
	if f.SortBy == SortNone {
		if f.SortDescending {
			slices.Reverse(sorted)
		}
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b types.LogRecord) int {
		var result int
		switch f.SortBy {
		case SortDate:
			result = a.Date.Compare(b.Date)
		case SortFolder:
			result = compareLocation(a, b)
		case SortFile:
			result = cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.LineNumber, b.LineNumber))
		case SortSeverity:
			result = cmp.Compare(severityRank(a.Severity()), severityRank(b.Severity()))
		}

		if f.SortDescending {
			return -result
		}
		return result
	})

	return sorted
}

// Apply runs the complete pipeline: Match, Sort, and Limit.
func (f *Filter) Apply(records []types.LogRecord) []types.LogRecord {
	matched := []types.LogRecord{}
	for _, r := range records {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}

	sorted := f.Sort(matched)

	if f.Limit > 0 && len(sorted) > f.Limit {
		return sorted[:f.Limit]
	}
	return sorted
}

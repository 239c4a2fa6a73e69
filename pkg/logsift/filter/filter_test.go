package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC)
}

func sample() []types.LogRecord {
	return []types.LogRecord{
		{Folder: "api", File: "app.log", LineNumber: 10, Content: "2024-01-03 [Warning] slow", Date: day(3)},
		{Folder: "db", File: "pg.log", LineNumber: 2, Content: "2024-01-01 [Error] deadlock", Date: day(1)},
		{Folder: "api-gw", File: "nested/gw.log", LineNumber: 5, Content: "2024-01-02 FATAL crash", Date: day(2)},
		{Folder: "api", File: "app.log", LineNumber: 3, Content: "2024-01-04 ERROR boom", Date: day(4)},
	}
}

func lines(recs []types.LogRecord) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.LineNumber
	}
	return out
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew(t *testing.T) {
	f := New()

	if f.Limit != 0 {
		t.Errorf("Limit = %d, want 0", f.Limit)
	}
	if f.SortBy != SortNone {
		t.Errorf("SortBy = %v, want SortNone", f.SortBy)
	}
	if got := f.Apply(sample()); len(got) != 4 {
		t.Errorf("default filter kept %d records, want 4", len(got))
	}
}

func TestWithLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "positive limit", limit: 2, want: 2},
		{name: "zero limit (unlimited)", limit: 0, want: 0},
		{name: "negative becomes zero", limit: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(WithLimit(tt.limit))
			if f.Limit != tt.want {
				t.Errorf("Limit = %d, want %d", f.Limit, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want []int
	}{
		{name: "include glob", opts: []Option{WithInclude("api*")}, want: []int{10, 5, 3}},
		{name: "exact include", opts: []Option{WithInclude("api")}, want: []int{10, 3}},
		{name: "exclude wins", opts: []Option{WithInclude("api*"), WithExclude("api-gw")}, want: []int{10, 3}},
		{name: "file glob", opts: []Option{WithFiles("nested/*")}, want: []int{5}},
		{name: "severity error", opts: []Option{WithSeverities(types.SeverityError)}, want: []int{2, 3}},
		{name: "severity other", opts: []Option{WithSeverities(types.SeverityOther)}, want: []int{5}},
		{name: "contains ignores case", opts: []Option{WithContains("DEADLOCK")}, want: []int{2}},
		{name: "invalid pattern ignored", opts: []Option{WithInclude("[", "db")}, want: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lines(New(tt.opts...).Apply(sample()))
			if !equal(got, tt.want) {
				t.Errorf("Apply() lines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		by   SortField
		desc bool
		want []int
	}{
		{name: "none", by: SortNone, want: []int{10, 2, 5, 3}},
		{name: "none reversed", by: SortNone, desc: true, want: []int{3, 5, 2, 10}},
		{name: "date", by: SortDate, want: []int{2, 5, 10, 3}},
		{name: "date descending", by: SortDate, desc: true, want: []int{3, 10, 5, 2}},
		{name: "folder", by: SortFolder, want: []int{3, 10, 5, 2}},
		{name: "file", by: SortFile, want: []int{3, 10, 5, 2}},
		{name: "severity is stable", by: SortSeverity, want: []int{2, 3, 10, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sample()
			got := lines(New(WithSortBy(tt.by), WithSortDescending(tt.desc)).Sort(in))
			if !equal(got, tt.want) {
				t.Errorf("Sort() lines = %v, want %v", got, tt.want)
			}
			if in[0].LineNumber != 10 {
				t.Error("Sort modified its input")
			}
		})
	}
}

func TestApplyLimit(t *testing.T) {
	got := New(WithSortBy(SortDate), WithLimit(2)).Apply(sample())
	if !equal(lines(got), []int{2, 5}) {
		t.Errorf("Apply() lines = %v, want [2 5]", lines(got))
	}

	empty := New(WithInclude("nothing")).Apply(sample())
	if empty == nil || len(empty) != 0 {
		t.Errorf("Apply() = %v, want empty non-nil slice", empty)
	}
}

func TestParseSortField(t *testing.T) {
	for in, want := range map[string]SortField{
		"":         SortNone,
		"date":     SortDate,
		"FOLDER":   SortFolder,
		"file":     SortFile,
		"severity": SortSeverity,
	} {
		got, err := ParseSortField(in)
		if err != nil || got != want {
			t.Errorf("ParseSortField(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseSortField("size"); !errors.Is(err, ErrInvalidSortField) {
		t.Errorf("expected ErrInvalidSortField, got %v", err)
	}
}

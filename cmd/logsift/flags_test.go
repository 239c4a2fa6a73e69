package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/filter"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

func newFlagCmd(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRangeFlags(cmd)
	addFilterFlags(cmd)
	for k, v := range set {
		if err := cmd.Flags().Set(k, v); err != nil {
			t.Fatalf("Set(%q, %q): %v", k, v, err)
		}
	}
	return cmd
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name     string
		flags    map[string]string
		wantSort filter.SortField
		wantDesc bool
		wantLim  int
		wantSev  []types.Severity
	}{
		{
			name:     "defaults",
			flags:    nil,
			wantSort: filter.SortNone,
		},
		{
			name:     "date sorts newest first",
			flags:    map[string]string{"sort": "date"},
			wantSort: filter.SortDate,
			wantDesc: true,
		},
		{
			name:     "reverse date",
			flags:    map[string]string{"sort": "date", "reverse": "true"},
			wantSort: filter.SortDate,
		},
		{
			name:     "folder sorts A-Z",
			flags:    map[string]string{"sort": "folder"},
			wantSort: filter.SortFolder,
		},
		{
			name:     "severity and limit",
			flags:    map[string]string{"severity": "error,warn", "limit": "5"},
			wantSort: filter.SortNone,
			wantLim:  5,
			wantSev:  []types.Severity{types.SeverityError, types.SeverityWarning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFilter(newFlagCmd(t, tt.flags))
			if err != nil {
				t.Fatalf("buildFilter() error = %v", err)
			}
			if f.SortBy != tt.wantSort {
				t.Errorf("SortBy = %v, want %v", f.SortBy, tt.wantSort)
			}
			if f.SortDescending != tt.wantDesc {
				t.Errorf("SortDescending = %t, want %t", f.SortDescending, tt.wantDesc)
			}
			if f.Limit != tt.wantLim {
				t.Errorf("Limit = %d, want %d", f.Limit, tt.wantLim)
			}
			if len(f.Severities) != len(tt.wantSev) {
				t.Fatalf("Severities = %v, want %v", f.Severities, tt.wantSev)
			}
			for i := range tt.wantSev {
				if f.Severities[i] != tt.wantSev[i] {
					t.Errorf("Severities[%d] = %v, want %v", i, f.Severities[i], tt.wantSev[i])
				}
			}
		})
	}
}

func TestBuildFilterErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
	}{
		{"bad sort", map[string]string{"sort": "size"}},
		{"bad severity", map[string]string{"severity": "fatal"}},
		{"negative limit", map[string]string{"limit": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildFilter(newFlagCmd(t, tt.flags)); err == nil {
				t.Error("buildFilter() error = nil, want error")
			}
		})
	}
}

func TestBuildFilterFolders(t *testing.T) {
	f, err := buildFilter(newFlagCmd(t, map[string]string{
		"folder":         "api*",
		"exclude-folder": "api-canary",
		"contains":       "timeout",
	}))
	if err != nil {
		t.Fatalf("buildFilter() error = %v", err)
	}

	keep := types.LogRecord{Folder: "api", Content: "request Timeout"}
	if !f.Match(keep) {
		t.Error("expected api record with timeout to match")
	}
	if f.Match(types.LogRecord{Folder: "api-canary", Content: "timeout"}) {
		t.Error("excluded folder matched")
	}
	if f.Match(types.LogRecord{Folder: "worker", Content: "timeout"}) {
		t.Error("folder outside include matched")
	}
	if f.Match(types.LogRecord{Folder: "api", Content: "ok"}) {
		t.Error("record without text matched")
	}
}

func TestRangeRequest(t *testing.T) {
	cmd := newFlagCmd(t, map[string]string{"start": "2024-01-01", "end": "2024-01-31", "days": "3"})
	got := rangeRequest(cmd)
	want := engine.RangeRequest{StartDate: "2024-01-01", EndDate: "2024-01-31", Days: 3}
	if got != want {
		t.Errorf("rangeRequest() = %+v, want %+v", got, want)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"api", []string{"api"}},
		{"api, worker ,,db", []string{"api", "worker", "db"}},
	}
	for _, tt := range tests {
		got := parseCommaSeparated(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseCommaSeparated(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseCommaSeparated(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFolderArgs(t *testing.T) {
	got := folderArgs([]string{"api,worker", "db"})
	want := []string{"api", "worker", "db"}
	if len(got) != len(want) {
		t.Fatalf("folderArgs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("folderArgs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

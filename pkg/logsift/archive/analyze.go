package archive

import (
	"context"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/folder"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// DefaultSampleLines is how many leading lines of each file the Analyzer
// inspects.
const DefaultSampleLines = 100

var (
	bareDate = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	marker   = regexp.MustCompile(
		`(?i:\[(?:error|warning|warn|critical|err|wrn|crit|ftl|fat|fatal)\])|\b(?:ERROR|WARN(?:ING)?|CRITICAL|FATAL)\b`)
)

// Analyzer produces a cheap preview of an archive without segmenting it.
type Analyzer struct {
	limits      Limits
	sampleLines int
}

func NewAnalyzer(limits Limits) *Analyzer {
	return &Analyzer{limits: limits, sampleLines: DefaultSampleLines}
}

// WithSampleLines overrides the per-file sample size.
func (a *Analyzer) WithSampleLines(n int) *Analyzer {
	if n > 0 {
		a.sampleLines = n
	}
	return a
}

// tally accumulates analysis totals across entries.
type tally struct {
	out      types.ArchiveAnalysis
	folders  map[string]struct{}
	earliest string
	latest   string
}

func (t *tally) observeDate(d string) {
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return
	}
	if t.earliest == "" || d < t.earliest {
		t.earliest = d
	}
	if t.latest == "" || d > t.latest {
		t.latest = d
	}
}

// Analyze counts files, discovers folders, and estimates the record count
// from a per-file sample of leading lines. Rejected paths are not counted.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, filename string) (*types.ArchiveAnalysis, error) {
	t := &tally{folders: make(map[string]struct{})}

	err := walk(ctx, data, filename, a.limits, func(m member) error {
		t.out.TotalFiles++
		if !types.IsLogFile(m.Path) {
			return nil
		}
		t.out.LogFiles++

		raw, skip, err := load(m, filename, a.limits)
		if err != nil || skip {
			return err
		}
		text := segment.Decode(raw)
		t.out.TotalSize += int64(len(text))
		t.folders[folder.FromFile(m.Path)] = struct{}{}
		t.out.EstimatedLogEntries += a.sample(t, text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.out.Folders = make([]string, 0, len(t.folders))
	for f := range t.folders {
		t.out.Folders = append(t.out.Folders, f)
	}
	sort.Strings(t.out.Folders)
	if t.earliest != "" {
		t.out.DateRange = &types.DateSpan{Earliest: t.earliest, Latest: t.latest}
	}
	return &t.out, nil
}

// sample scans the leading lines of one file and returns its extrapolated
// record count.
func (a *Analyzer) sample(t *tally, text string) int {
	lines := segment.SplitLines(text)
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) == 0 {
		return 0
	}

	head := lines
	if len(head) > a.sampleLines {
		head = head[:a.sampleLines]
	}
	matches := 0
	for _, line := range head {
		if d := bareDate.FindString(line); d != "" {
			t.observeDate(d)
		}
		if marker.MatchString(line) {
			matches++
		}
	}
	rate := float64(matches) / float64(len(head))
	return int(math.Round(rate * float64(len(lines))))
}

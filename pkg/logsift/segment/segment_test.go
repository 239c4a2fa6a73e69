package segment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
)

const scenario = `2024-01-15 10:00:00 [Error] disk full
stack trace line 1
2024-01-15 10:05:00 INFO ok
2024-01-15 10:06:00 WARN queue backing up
`

func TestSegmentScenario(t *testing.T) {
	seg := New(Options{Pattern: Permissive})
	recs := seg.Segment(scenario, "svc1", "app-2024-01-15.log")

	require.Len(t, recs, 2)

	assert.Equal(t, "svc1", recs[0].Folder)
	assert.Equal(t, "app-2024-01-15.log", recs[0].File)
	assert.Equal(t, 1, recs[0].LineNumber)
	assert.Equal(t, "2024-01-15 10:00:00 [Error] disk full\nstack trace line 1", recs[0].Content,
		"the dated INFO line closes the record and is discarded")

	assert.Equal(t, 4, recs[1].LineNumber)
	assert.Equal(t, "2024-01-15 10:06:00 WARN queue backing up", recs[1].Content)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 6, 0, 0, time.UTC), recs[1].Date)
}

func TestSegmentRoundTrip(t *testing.T) {
	content := "  2024-02-01 08:00:00 [ERR] boom  \r\n\tat frame one\r\n   at frame two   \r\n"
	// Leading whitespace keeps the first line from anchoring.
	assert.Empty(t, New(Options{}).Segment(content, "f", "a.log"))

	content = strings.TrimLeft(content, " ")
	recs := New(Options{}).Segment(content, "f", "a.log")
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].LineNumber)
	assert.Equal(t, "2024-02-01 08:00:00 [ERR] boom\nat frame one\nat frame two", recs[0].Content)
}

func TestSegmentPreambleDiscarded(t *testing.T) {
	content := "starting up\nconfig loaded\n2024-01-15 [Warning] low memory\n"
	recs := New(Options{}).Segment(content, "f", "a.log")
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].LineNumber)
	assert.Equal(t, "2024-01-15 [Warning] low memory", recs[0].Content)
}

func TestSegmentAdjacentAnchors(t *testing.T) {
	content := "2024-01-15 10:00:00 ERROR a\n2024-01-15 10:00:01 ERROR b\n2024-01-15 10:00:02 FATAL c"
	recs := New(Options{}).Segment(content, "f", "a.log")
	require.Len(t, recs, 3)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, want, recs[i].LineNumber)
	}
}

func TestSegmentDatedContinuationEndsRecord(t *testing.T) {
	content := "2024-01-15 10:00:00 ERROR x failed\n" +
		"2024-01-15 10:00:00.5 caused by y\n" +
		"  at z\n" +
		"2024-01-15 10:00:01 WARN next\n"
	recs := New(Options{}).Segment(content, "f", "a.log")
	require.Len(t, recs, 2)
	assert.Equal(t, "2024-01-15 10:00:00 ERROR x failed", recs[0].Content)
	assert.Equal(t, 4, recs[1].LineNumber)
	assert.Equal(t, "2024-01-15 10:00:01 WARN next", recs[1].Content)
}

func TestSegmentDropsUndatedRecords(t *testing.T) {
	content := "2024-13-45 10:00:00 [Error] impossible date\ncontinuation\n2024-01-15 10:00:00 [Error] fine\n"
	recs := New(Options{}).Segment(content, "f", "a.log")
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].LineNumber)
}

func TestSegmentDateRangeBoundaries(t *testing.T) {
	rng, err := daterange.Parse("2024-01-15", "2024-01-15")
	require.NoError(t, err)
	content := strings.Join([]string{
		"2024-01-14 23:59:59 [Error] before",
		"2024-01-15 00:00:00 [Error] midnight",
		"2024-01-15 23:59:59 [Error] last second",
		"2024-01-16 00:00:00 [Error] after",
	}, "\n")

	recs := New(Options{Range: rng}).Segment(content, "f", "a.log")
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0].Content, "midnight")
	assert.Contains(t, recs[1].Content, "last second")
}

func TestSegmentLinesOffset(t *testing.T) {
	lines := []string{"2024-01-15T10:00:00Z [Error] appended", "detail"}
	recs := New(Options{Pattern: Strict}).SegmentLines(lines, 41, "svc", "x.log")
	require.Len(t, recs, 1)
	assert.Equal(t, 42, recs[0].LineNumber)
}

func TestSegmentIdempotent(t *testing.T) {
	seg := New(Options{})
	assert.Equal(t, seg.Segment(scenario, "svc1", "a.log"), seg.Segment(scenario, "svc1", "a.log"))
}

func TestSegmentStrictIgnoresUnbracketed(t *testing.T) {
	recs := New(Options{Pattern: Strict}).Segment(scenario, "svc1", "a.log")
	require.Len(t, recs, 1)
	assert.Equal(t, "2024-01-15 10:00:00 [Error] disk full\nstack trace line 1", recs[0].Content)
}

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

func openCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRecordsRoundTrip(t *testing.T) {
	c := openCache(t, 0)
	key := Key{Digest: Digest([]byte("archive")), Filename: "bundle.zip", Scope: "|"}

	_, ok := c.Records(key)
	assert.False(t, ok)

	recs := []types.LogRecord{{
		Folder:     "api",
		File:       "api/app.log",
		LineNumber: 3,
		Content:    "2024-01-15 10:00:00 [Error] boom",
		Date:       time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, c.PutRecords(key, recs))

	got, ok := c.Records(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, recs[0].Content, got[0].Content)
	assert.True(t, recs[0].Date.Equal(got[0].Date))

	_, ok = c.Analysis(key)
	assert.False(t, ok, "kinds do not collide")
}

func TestEmptyRecordsAreAHit(t *testing.T) {
	c := openCache(t, 0)
	key := Key{Digest: "d", Filename: "empty.zip"}
	require.NoError(t, c.PutRecords(key, nil))

	got, ok := c.Records(key)
	assert.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAnalysisRoundTrip(t *testing.T) {
	c := openCache(t, time.Hour)
	key := Key{Digest: "d", Filename: "bundle.tgz"}
	a := &types.ArchiveAnalysis{
		TotalFiles:          3,
		LogFiles:            2,
		TotalSize:           1024,
		Folders:             []string{"api", "db"},
		DateRange:           &types.DateSpan{Earliest: "2024-01-01", Latest: "2024-01-02"},
		EstimatedLogEntries: 10,
	}
	require.NoError(t, c.PutAnalysis(key, a))

	got, ok := c.Analysis(key)
	require.True(t, ok)
	assert.Equal(t, a, got)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Analyses: 1}, stats)
}

func TestClear(t *testing.T) {
	c := openCache(t, 0)
	require.NoError(t, c.PutRecords(Key{Digest: "a"}, nil))
	require.NoError(t, c.PutAnalysis(Key{Digest: "a"}, &types.ArchiveAnalysis{}))

	require.NoError(t, c.Clear())
	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Extractions)
	assert.Zero(t, stats.Analyses)
}

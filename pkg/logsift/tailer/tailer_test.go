package tailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/logsift/pkg/logsift/local"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func appendTo(t *testing.T, path, body string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(body)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func quiet() Options {
	return Options{Pattern: segment.Strict, Interval: 10 * time.Millisecond, Heartbeat: -1}
}

func TestPollDoesNotBackfill(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "2024-01-15 10:00:00 [Error] old failure\n")

	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)

	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	marks := s.Watermarks()
	require.Len(t, marks, 1)
	assert.Equal(t, "svc", marks[0].Folder)
	assert.Equal(t, "app.log", marks[0].Rel)
	assert.Equal(t, 1, marks[0].Lines)
}

func TestPollEmitsEachAppendOnce(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "2024-01-15 10:00:00 [Info] boot\n")

	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	var lines []int
	for i := 0; i < 3; i++ {
		appendTo(t, logPath, fmt.Sprintf("2024-01-15 10:0%d:00 [Error] failure %d\n", i+1, i))
		recs, err := s.Poll(context.Background())
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, fmt.Sprintf("2024-01-15 10:0%d:00 [Error] failure %d", i+1, i), recs[0].Content)
		assert.Equal(t, "svc", recs[0].Folder)
		assert.Equal(t, "app.log", recs[0].File)
		assert.Equal(t, RecordID(recs[0]), recs[0].ID)
		lines = append(lines, recs[0].LineNumber)
	}
	assert.Equal(t, []int{2, 3, 4}, lines)

	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs, "nothing new, nothing emitted")
}

func TestPollHoldsBackPartialLine(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "")

	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	appendTo(t, logPath, "2024-01-15 10:00:00 [Error] half")
	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	appendTo(t, logPath, " written\n")
	recs, err = s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2024-01-15 10:00:00 [Error] half written", recs[0].Content)
	assert.Equal(t, 1, recs[0].LineNumber)
}

func TestPollContinuationLines(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "")

	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	appendTo(t, logPath, "2024-01-15T10:00:00Z [Critical] crash\n  at main.go:10\n  at run.go:4\n")
	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2024-01-15T10:00:00Z [Critical] crash\nat main.go:10\nat run.go:4", recs[0].Content)
}

func TestPollTruncationResets(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "2024-01-15 10:00:00 [Info] a\n2024-01-15 10:00:01 [Info] b\n2024-01-15 10:00:02 [Info] c\n")

	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	write(t, logPath, "2024-01-16 08:00:00 [Error] new\n")
	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].LineNumber)
	assert.Equal(t, "2024-01-16 08:00:00 [Error] new", recs[0].Content)
}

func TestPollBaselinesNewFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "svc"), 0o755))

	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	logPath := filepath.Join(root, "svc", "late.log")
	write(t, logPath, "2024-01-15 10:00:00 [Error] present at discovery\n")
	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	appendTo(t, logPath, "2024-01-15 10:00:05 [Error] after discovery\n")
	recs, err = s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].LineNumber)
}

func TestNewSessionRejectsInvalidFolders(t *testing.T) {
	root := t.TempDir()
	_, err := NewSession(root, []string{"../etc", "a/b"}, quiet())
	assert.ErrorIs(t, err, local.ErrNoFolders)

	s, err := NewSession(root, []string{"../etc", "ok"}, quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, s.Folders())
}

func TestRecordID(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "")
	s, err := NewSession(root, []string{"svc"}, quiet())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	appendTo(t, logPath, "2024-01-15 10:00:00 [Error] x\n")
	recs, err := s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, fmt.Sprintf("svc|app.log|1|%d", want), recs[0].ID)
}

func TestTailStreamsAndCloses(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(root, "svc", "app.log")
	write(t, logPath, "2024-01-15 10:00:00 [Error] before\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := quiet()
	opts.Heartbeat = 20 * time.Millisecond
	ch, err := Tail(ctx, root, []string{"svc"}, opts)
	require.NoError(t, err)

	var sawBeat bool
	deadline := time.After(5 * time.Second)
	for !sawBeat {
		select {
		case ev := <-ch:
			require.Equal(t, EventHeartbeat, ev.Type, "baseline must not be replayed")
			sawBeat = true
		case <-deadline:
			t.Fatal("no heartbeat")
		}
	}

	appendTo(t, logPath, "2024-01-15 10:00:01 [Error] after\n")

	var got string
	for got == "" {
		select {
		case ev := <-ch:
			if ev.Type == EventRecord {
				got = ev.Record.Content
			}
		case <-deadline:
			t.Fatal("no record")
		}
	}
	assert.Equal(t, "2024-01-15 10:00:01 [Error] after", got)

	cancel()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestTailInvalidFolders(t *testing.T) {
	_, err := Tail(context.Background(), t.TempDir(), []string{".."}, quiet())
	assert.ErrorIs(t, err, local.ErrNoFolders)
}

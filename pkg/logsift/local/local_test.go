package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/pathsafe"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "svc1", "app.log"), "2024-01-15 10:00:00 [Error] disk full\nstack\n")
	writeFile(t, filepath.Join(root, "svc1", "nested", "worker.txt"), "2024-01-16 09:00:00 WARN slow\n")
	writeFile(t, filepath.Join(root, "svc1", "dump.bin"), "binary")
	writeFile(t, filepath.Join(root, "svc2", "messages"), "2024-01-17 08:00:00 [Critical] gone\n")
	writeFile(t, filepath.Join(root, "stray.log"), "not in a folder")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	return root
}

func TestResolveRoot(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveRoot(root, "")
	require.NoError(t, err)
	assert.Equal(t, root, got)

	other := t.TempDir()
	got, err = ResolveRoot(root, other)
	require.NoError(t, err)
	assert.Equal(t, other, got, "override wins")

	_, err = ResolveRoot("", "")
	assert.ErrorIs(t, err, ErrRootUnavailable)

	_, err = ResolveRoot(filepath.Join(root, "missing"), "")
	assert.ErrorIs(t, err, ErrRootUnavailable)

	file := filepath.Join(root, "f.log")
	writeFile(t, file, "x")
	_, err = ResolveRoot(file, "")
	assert.ErrorIs(t, err, ErrRootUnavailable)
}

func TestListFolders(t *testing.T) {
	root := fixture(t)

	got, err := ListFolders(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "empty", got[0].Name)
	assert.Zero(t, got[0].FileCount)

	assert.Equal(t, "svc1", got[1].Name)
	assert.Equal(t, 2, got[1].FileCount)
	assert.Equal(t, int64(len("2024-01-15 10:00:00 [Error] disk full\nstack\n")+len("2024-01-16 09:00:00 WARN slow\n")), got[1].TotalSize)

	assert.Equal(t, "svc2", got[2].Name)
	assert.Equal(t, 1, got[2].FileCount)
}

func TestListFoldersMissingRoot(t *testing.T) {
	got, err := ListFolders(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrRootUnavailable)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelect(t *testing.T) {
	root := fixture(t)

	sel, err := Select(root, []string{"svc1", "../etc", "svc1", "svc/sub", "svc2"})
	require.NoError(t, err)
	require.Len(t, sel.Folders, 2)
	assert.Equal(t, "svc1", sel.Folders[0].Name)
	assert.Equal(t, filepath.Join(root, "svc2"), sel.Folders[1].Path)

	_, err = Select(root, nil)
	assert.ErrorIs(t, err, ErrNoFolders)

	_, err = Select(root, []string{"..", "~"})
	assert.ErrorIs(t, err, ErrNoFolders)
}

func TestExtract(t *testing.T) {
	root := fixture(t)
	x := NewExtractor(segment.Permissive)

	recs, err := x.Extract(context.Background(), root, []string{"svc1", "svc2", "missing"}, daterange.Open)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "svc1", recs[0].Folder)
	assert.Equal(t, "app.log", recs[0].File)
	assert.Equal(t, "2024-01-15 10:00:00 [Error] disk full\nstack", recs[0].Content)

	assert.Equal(t, "nested/worker.txt", recs[1].File)
	assert.Equal(t, "svc2", recs[2].Folder)
	assert.Equal(t, "messages", recs[2].File)
}

func TestExtractDateRange(t *testing.T) {
	root := fixture(t)
	rng, err := daterange.Parse("2024-01-16", "2024-01-16")
	require.NoError(t, err)

	recs, err := NewExtractor(segment.Permissive).Extract(context.Background(), root, []string{"svc1", "svc2"}, rng)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "nested/worker.txt", recs[0].File)
}

func TestExtractRejectsTraversalOnly(t *testing.T) {
	_, err := NewExtractor(segment.Permissive).Extract(context.Background(), fixture(t), []string{"../../etc"}, daterange.Open)
	assert.ErrorIs(t, err, ErrNoFolders)
	assert.NotErrorIs(t, err, pathsafe.ErrRejectedPath)
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, fixture(t))
	assert.ErrorIs(t, err, context.Canceled)
}

package daemon

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	logsiftv1 "github.com/jamesainslie/logsift/pkg/api/v1"
	"github.com/jamesainslie/logsift/pkg/logsift/archive"
	"github.com/jamesainslie/logsift/pkg/logsift/cache"
	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestService(t *testing.T, root string, withCache bool) *Service {
	t.Helper()
	opts := ServiceOptions{
		Engine:  engine.New(engine.DefaultOptions()),
		Root:    root,
		Version: "test",
	}
	if withCache {
		c, err := cache.Open(filepath.Join(t.TempDir(), "results"), time.Hour)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		opts.Cache = c
	}
	return NewService(opts)
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{fmt.Errorf("x: %w", engine.ErrMissingParameter), codes.InvalidArgument},
		{engine.ErrNoFolders, codes.InvalidArgument},
		{daterange.ErrInvalidDate, codes.InvalidArgument},
		{daterange.ErrInvalidLookback, codes.InvalidArgument},
		{fmt.Errorf("%w: .rar", archive.ErrUnsupportedFormat), codes.InvalidArgument},
		{archive.ErrCorruptArchive, codes.DataLoss},
		{engine.ErrRootUnavailable, codes.FailedPrecondition},
		{archive.ErrArchiveTooLarge, codes.ResourceExhausted},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), "%v", tt.err)
	}
}

func TestService_ExtractCaches(t *testing.T) {
	svc := newTestService(t, "", true)
	data := zipOf(t, map[string]string{
		"logs/api/app.log": "2024-01-15 10:00:00 [Error] boom\n",
	})
	req := &logsiftv1.ExtractRequest{Data: data, Filename: "bundle.zip"}

	first, err := svc.Extract(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Records, 1)
	assert.False(t, first.Cached)

	second, err := svc.Extract(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Records[0].Content, second.Records[0].Content)

	req.NoCache = true
	third, err := svc.Extract(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.Cached)

	// A different range is a different cache entry.
	ranged := &logsiftv1.ExtractRequest{Data: data, Filename: "bundle.zip", Range: engine.RangeRequest{StartDate: "2024-02-01"}}
	out, err := svc.Extract(context.Background(), ranged)
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Empty(t, out.Records)
}

func TestService_AnalyzeCaches(t *testing.T) {
	svc := newTestService(t, "", true)
	data := zipOf(t, map[string]string{"svc/app.log": "2024-01-15 10:00:00 ERROR a\n"})
	req := &logsiftv1.AnalyzeRequest{Data: data, Filename: "bundle.zip"}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, first.Analysis.LogFiles)

	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Analysis.TotalFiles, second.Analysis.TotalFiles)

	st, err := svc.GetStatus(context.Background(), &logsiftv1.GetStatusRequest{})
	require.NoError(t, err)
	assert.True(t, st.Cache.Enabled)
	assert.Equal(t, 1, st.Cache.Analyses)
}

func TestService_ErrorsCarryCodes(t *testing.T) {
	svc := newTestService(t, "", false)

	_, err := svc.Extract(context.Background(), &logsiftv1.ExtractRequest{Data: []byte("nope"), Filename: "bundle.zip"})
	assert.Equal(t, codes.DataLoss, status.Code(err))

	_, err = svc.Extract(context.Background(), &logsiftv1.ExtractRequest{Data: []byte("x"), Filename: "bundle.rar"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Analyze(context.Background(), &logsiftv1.AnalyzeRequest{Data: []byte("x")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.ListFolders(context.Background(), &logsiftv1.ListFoldersRequest{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestService_LocalUsesDefaultRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "svc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "svc", "app.log"),
		[]byte("2024-01-15 10:00:00 WARN slow\n"), 0o644))

	svc := newTestService(t, root, false)

	folders, err := svc.ListFolders(context.Background(), &logsiftv1.ListFoldersRequest{})
	require.NoError(t, err)
	require.Len(t, folders.Folders, 1)
	assert.Equal(t, "svc", folders.Folders[0].Name)

	recs, err := svc.ExtractLocal(context.Background(), &logsiftv1.ExtractLocalRequest{Folders: []string{"svc"}})
	require.NoError(t, err)
	require.Len(t, recs.Records, 1)
	assert.Equal(t, "svc", recs.Records[0].Folder)

	_, err = svc.ExtractLocal(context.Background(), &logsiftv1.ExtractLocalRequest{Folders: []string{"../etc"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestService_RootOverrideMustExist(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "svc"), 0o755))
	svc := newTestService(t, root, false)

	missing := filepath.Join(root, "nope")
	file := filepath.Join(root, "svc", "app.log")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0o644))

	for _, bad := range []string{missing, file} {
		_, err := svc.ExtractLocal(context.Background(), &logsiftv1.ExtractLocalRequest{Root: bad, Folders: []string{"svc"}})
		assert.Equal(t, codes.FailedPrecondition, status.Code(err), "root %s", bad)

		_, err = svc.ListFolders(context.Background(), &logsiftv1.ListFoldersRequest{Root: bad})
		assert.Equal(t, codes.FailedPrecondition, status.Code(err), "root %s", bad)
	}

	unset := newTestService(t, filepath.Join(root, "gone"), false)
	_, err := unset.ExtractLocal(context.Background(), &logsiftv1.ExtractLocalRequest{Folders: []string{"svc"}})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestService_GetStatus(t *testing.T) {
	svc := newTestService(t, "/srv/logs", false)

	st, err := svc.GetStatus(context.Background(), &logsiftv1.GetStatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), st.PID)
	assert.Equal(t, "test", st.Version)
	assert.Equal(t, "/srv/logs", st.Root)
	assert.NotNil(t, st.Sessions)
	assert.False(t, st.Cache.Enabled)
}

func TestService_Shutdown(t *testing.T) {
	svc := newTestService(t, "", false)
	_, ctx := svc.Sessions().Open(context.Background(), "/r", nil)

	resp, err := svc.Shutdown(context.Background(), &logsiftv1.ShutdownRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	select {
	case <-svc.Done():
	default:
		t.Fatal("Done not closed after Shutdown")
	}
	assert.Error(t, ctx.Err(), "sessions are cancelled")

	// A second request is harmless.
	_, err = svc.Shutdown(context.Background(), &logsiftv1.ShutdownRequest{})
	require.NoError(t, err)
}

package main

import (
	"context"

	logsiftv1 "github.com/jamesainslie/logsift/pkg/api/v1"
	"github.com/jamesainslie/logsift/pkg/client"
	"github.com/jamesainslie/logsift/pkg/daemon"
	"github.com/jamesainslie/logsift/pkg/logsift/cache"
	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/tailer"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// backend is what the record commands need. *client.Client serves it over
// the daemon socket; inProcess serves it directly.
type backend interface {
	Extract(ctx context.Context, data []byte, filename string, rng engine.RangeRequest, noCache bool) ([]types.LogRecord, bool, error)
	Analyze(ctx context.Context, data []byte, filename string, noCache bool) (*types.ArchiveAnalysis, bool, error)
	ListFolders(ctx context.Context, root string) ([]types.FolderInfo, error)
	ExtractLocal(ctx context.Context, root string, folders []string, rng engine.RangeRequest) ([]types.LogRecord, error)
	Tail(ctx context.Context, root string, folders []string) (<-chan tailer.Event, error)
	Close() error
}

var (
	_ backend = (*client.Client)(nil)
	_ backend = (*inProcess)(nil)
)

// inProcess runs the daemon service inside the CLI process so results and
// errors match what the daemon would return.
type inProcess struct {
	svc    *daemon.Service
	engine *engine.Engine
	cache  *cache.Cache
}

func newInProcess(eng *engine.Engine, c *cache.Cache, root string) *inProcess {
	return &inProcess{
		svc: daemon.NewService(daemon.ServiceOptions{
			Engine:  eng,
			Cache:   c,
			Root:    root,
			Version: version,
		}),
		engine: eng,
		cache:  c,
	}
}

func (p *inProcess) Extract(ctx context.Context, data []byte, filename string, rng engine.RangeRequest, noCache bool) ([]types.LogRecord, bool, error) {
	resp, err := p.svc.Extract(ctx, &logsiftv1.ExtractRequest{Data: data, Filename: filename, Range: rng, NoCache: noCache})
	if err != nil {
		return nil, false, client.FromStatus(err)
	}
	return resp.Records, resp.Cached, nil
}

func (p *inProcess) Analyze(ctx context.Context, data []byte, filename string, noCache bool) (*types.ArchiveAnalysis, bool, error) {
	resp, err := p.svc.Analyze(ctx, &logsiftv1.AnalyzeRequest{Data: data, Filename: filename, NoCache: noCache})
	if err != nil {
		return nil, false, client.FromStatus(err)
	}
	return resp.Analysis, resp.Cached, nil
}

func (p *inProcess) ListFolders(ctx context.Context, root string) ([]types.FolderInfo, error) {
	resp, err := p.svc.ListFolders(ctx, &logsiftv1.ListFoldersRequest{Root: root})
	if err != nil {
		return []types.FolderInfo{}, client.FromStatus(err)
	}
	return resp.Folders, nil
}

func (p *inProcess) ExtractLocal(ctx context.Context, root string, folders []string, rng engine.RangeRequest) ([]types.LogRecord, error) {
	resp, err := p.svc.ExtractLocal(ctx, &logsiftv1.ExtractLocalRequest{Root: root, Folders: folders, Range: rng})
	if err != nil {
		return nil, client.FromStatus(err)
	}
	return resp.Records, nil
}

// Tail bypasses the session registry; the CLI process owns the one session.
func (p *inProcess) Tail(ctx context.Context, root string, folders []string) (<-chan tailer.Event, error) {
	return p.engine.TailLocal(ctx, root, folders)
}

func (p *inProcess) Close() error {
	if p.cache != nil {
		return p.cache.Close()
	}
	return nil
}

// openBackend prefers the daemon and falls back to in-process work. The
// bool reports whether the daemon is serving.
func openBackend(ctx context.Context, cfg *config.Config) (backend, bool, error) {
	if c := connectDaemon(ctx, cfg); c != nil {
		return c, true, nil
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, false, err
	}
	return newInProcess(eng, openCache(cfg), cfg.Local.Root), false, nil
}

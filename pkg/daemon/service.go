package daemon

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	logsiftv1 "github.com/jamesainslie/logsift/pkg/api/v1"
	"github.com/jamesainslie/logsift/pkg/daemon/sessions"
	"github.com/jamesainslie/logsift/pkg/logsift/cache"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/local"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/tailer"
)

// recentWarnings bounds the warnings reported in status.
const recentWarnings = 10

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Engine *engine.Engine

	// Cache is optional. Nil disables result caching.
	Cache *cache.Cache

	// Root is used when a request leaves the local root empty.
	Root string

	Version string
}

// Service implements the LogSift gRPC service on top of an engine.
type Service struct {
	logsiftv1.UnimplementedLogSiftServer

	engine    *engine.Engine
	cache     *cache.Cache
	sessions  *sessions.Registry
	root      string
	version   string
	startTime time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewService creates a new gRPC service.
func NewService(opts ServiceOptions) *Service {
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(engine.DefaultOptions())
	}
	return &Service{
		engine:    eng,
		cache:     opts.Cache,
		sessions:  sessions.New(),
		root:      opts.Root,
		version:   opts.Version,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// Done is closed once a Shutdown request has been accepted.
func (s *Service) Done() <-chan struct{} { return s.done }

// Sessions exposes the tail session registry.
func (s *Service) Sessions() *sessions.Registry { return s.sessions }

// rootFor picks the request's root override, else the configured root, and
// checks it is a directory. With neither set it returns "" and the engine
// reports the missing parameter.
func (s *Service) rootFor(requested string) (string, error) {
	if strings.TrimSpace(requested) == "" && strings.TrimSpace(s.root) == "" {
		return "", nil
	}
	return local.ResolveRoot(s.root, requested)
}

func (s *Service) caching(noCache bool) bool {
	return s.cache != nil && !noCache
}

// Extract segments an uploaded archive, consulting the cache first.
func (s *Service) Extract(ctx context.Context, req *logsiftv1.ExtractRequest) (*logsiftv1.ExtractResponse, error) {
	log := logging.Get("daemon")

	var key cache.Key
	if s.caching(req.NoCache) && req.Filename != "" {
		rng, err := s.engine.Range(req.Range)
		if err != nil {
			return nil, toStatus(err)
		}
		key = cache.Key{
			Kind:     cache.KindExtract,
			Digest:   cache.Digest(req.Data),
			Filename: req.Filename,
			Scope:    fmt.Sprintf("%s|%s", rng.Key(), s.engine.Options().Anchors.Archive),
		}
		if recs, ok := s.cache.Records(key); ok {
			log.Debug("extract served from cache", "archive", req.Filename, "records", len(recs))
			return &logsiftv1.ExtractResponse{Records: recs, Cached: true}, nil
		}
	}

	recs, err := s.engine.Extract(ctx, req.Data, req.Filename, req.Range)
	if err != nil {
		log.Warn("extract failed", "archive", req.Filename, "error", err)
		return nil, toStatus(err)
	}

	if key.Digest != "" {
		if err := s.cache.PutRecords(key, recs); err != nil {
			log.Warn("failed to cache records", "archive", req.Filename, "error", err)
		}
	}
	return &logsiftv1.ExtractResponse{Records: recs}, nil
}

// Analyze previews an uploaded archive, consulting the cache first.
func (s *Service) Analyze(ctx context.Context, req *logsiftv1.AnalyzeRequest) (*logsiftv1.AnalyzeResponse, error) {
	log := logging.Get("daemon")

	var key cache.Key
	if s.caching(req.NoCache) && req.Filename != "" {
		key = cache.Key{
			Kind:     cache.KindAnalyze,
			Digest:   cache.Digest(req.Data),
			Filename: req.Filename,
		}
		if a, ok := s.cache.Analysis(key); ok {
			return &logsiftv1.AnalyzeResponse{Analysis: a, Cached: true}, nil
		}
	}

	a, err := s.engine.Analyze(ctx, req.Data, req.Filename)
	if err != nil {
		log.Warn("analyze failed", "archive", req.Filename, "error", err)
		return nil, toStatus(err)
	}

	if key.Digest != "" {
		if err := s.cache.PutAnalysis(key, a); err != nil {
			log.Warn("failed to cache analysis", "archive", req.Filename, "error", err)
		}
	}
	return &logsiftv1.AnalyzeResponse{Analysis: a}, nil
}

// ListFolders lists the folders under the requested or default root.
func (s *Service) ListFolders(ctx context.Context, req *logsiftv1.ListFoldersRequest) (*logsiftv1.ListFoldersResponse, error) {
	root, err := s.rootFor(req.Root)
	if err != nil {
		return nil, toStatus(err)
	}
	folders, err := s.engine.ListLocalFolders(ctx, root)
	if err != nil {
		return nil, toStatus(err)
	}
	return &logsiftv1.ListFoldersResponse{Folders: folders}, nil
}

// ExtractLocal segments the selected local folders.
func (s *Service) ExtractLocal(ctx context.Context, req *logsiftv1.ExtractLocalRequest) (*logsiftv1.ExtractResponse, error) {
	root, err := s.rootFor(req.Root)
	if err != nil {
		return nil, toStatus(err)
	}
	recs, err := s.engine.ExtractLocal(ctx, root, req.Folders, req.Range)
	if err != nil {
		return nil, toStatus(err)
	}
	return &logsiftv1.ExtractResponse{Records: recs}, nil
}

// Tail streams appended records until the client goes away or the daemon
// shuts down. The first message names the session.
func (s *Service) Tail(req *logsiftv1.TailRequest, stream logsiftv1.TailServerStream) error {
	log := logging.Get("daemon")
	root, err := s.rootFor(req.Root)
	if err != nil {
		return toStatus(err)
	}

	sess, ctx := s.sessions.Open(stream.Context(), root, req.Folders)
	if sess == nil {
		return status.Error(codes.Unavailable, "daemon is shutting down")
	}
	defer s.sessions.Close(sess.ID)

	events, err := s.engine.TailLocal(ctx, root, req.Folders)
	if err != nil {
		return toStatus(err)
	}

	log.Info("tail session opened", "session", sess.ID, "root", root, "folders", req.Folders)
	defer log.Info("tail session closed", "session", sess.ID, "records", sess.Records())

	if err := stream.Send(&logsiftv1.TailEvent{Type: logsiftv1.EventOpened, Time: time.Now(), Session: sess.ID}); err != nil {
		return err
	}

	for ev := range events {
		msg := &logsiftv1.TailEvent{Type: string(ev.Type), Record: ev.Record, Time: ev.Time}
		if ev.Type == tailer.EventRecord {
			sess.Count(1)
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// GetStatus returns daemon health information.
func (s *Service) GetStatus(_ context.Context, _ *logsiftv1.GetStatusRequest) (*logsiftv1.Status, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := &logsiftv1.Status{
		PID:           os.Getpid(),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		MemoryBytes:   mem.Alloc,
		Root:          s.root,
		Sessions:      []logsiftv1.Session{},
	}

	for _, info := range s.sessions.List() {
		st.Sessions = append(st.Sessions, logsiftv1.Session{
			ID:      info.ID,
			Root:    info.Root,
			Folders: info.Folders,
			Started: info.Started,
			Records: info.Records,
		})
	}

	if s.cache != nil {
		st.Cache.Enabled = true
		if stats, err := s.cache.Stats(); err == nil {
			st.Cache.Extractions = stats.Extractions
			st.Cache.Analyses = stats.Analyses
		}
	}

	for _, e := range logging.Recent(recentWarnings, logging.LevelWarn) {
		st.RecentWarnings = append(st.RecentWarnings,
			fmt.Sprintf("%s %s: %s", e.Time.Format(time.RFC3339), e.Component, e.Message))
	}
	return st, nil
}

// Shutdown ends every tail session and signals Done.
func (s *Service) Shutdown(_ context.Context, _ *logsiftv1.ShutdownRequest) (*logsiftv1.ShutdownResponse, error) {
	logging.Get("daemon").Info("shutdown requested")
	s.sessions.Shutdown()
	s.doneOnce.Do(func() { close(s.done) })
	return &logsiftv1.ShutdownResponse{Success: true}, nil
}

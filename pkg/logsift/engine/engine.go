// Package engine is the narrow entry point shared by the CLI and the daemon.
// It binds the extraction pipeline to explicit limits and anchor choices;
// nothing here reads the environment or configuration files.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/archive"
	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/local"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
	"github.com/jamesainslie/logsift/pkg/logsift/tailer"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

var (
	// ErrMissingParameter is returned when a required argument is empty.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrNoFolders and ErrRootUnavailable are the local package sentinels,
	// re-exported so callers need only this package.
	ErrNoFolders       = local.ErrNoFolders
	ErrRootUnavailable = local.ErrRootUnavailable
)

// DefaultMaxLookbackDays caps the legacy days parameter.
const DefaultMaxLookbackDays = 365

// Anchors selects the anchor pattern per source.
type Anchors struct {
	Archive segment.Pattern
	Local   segment.Pattern
	Tail    segment.Pattern
}

// DefaultAnchors is permissive for batch extraction and strict for tailing.
func DefaultAnchors() Anchors {
	return Anchors{Archive: segment.Permissive, Local: segment.Permissive, Tail: segment.Strict}
}

// Options are injected by the caller.
type Options struct {
	Limits            archive.Limits
	Anchors           Anchors
	MaxLookbackDays   int
	TailInterval      time.Duration
	HeartbeatInterval time.Duration

	// Now is used to resolve lookback ranges. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the built-in limits.
func DefaultOptions() Options {
	return Options{
		Limits: archive.Limits{
			MaxArchiveSize: 100 << 20,
			MaxEntrySize:   50 << 20,
		},
		Anchors:           DefaultAnchors(),
		MaxLookbackDays:   DefaultMaxLookbackDays,
		TailInterval:      tailer.DefaultInterval,
		HeartbeatInterval: tailer.DefaultHeartbeat,
	}
}

// RangeRequest is the caller's date selection. Explicit dates take
// precedence over Days.
type RangeRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Days      int    `json:"days,omitempty"`
}

// Engine runs extraction, analysis and tailing. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts}
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Range resolves req against the configured lookback limit.
func (e *Engine) Range(req RangeRequest) (daterange.Range, error) {
	return daterange.Resolve(req.StartDate, req.EndDate, req.Days, e.opts.MaxLookbackDays, e.opts.Now())
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return nil
}

// Extract segments every log file in the archive.
func (e *Engine) Extract(ctx context.Context, data []byte, filename string, req RangeRequest) ([]types.LogRecord, error) {
	if err := required("filename", filename); err != nil {
		return nil, err
	}
	rng, err := e.Range(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	recs, err := archive.NewExtractor(e.opts.Limits, e.opts.Anchors.Archive).Extract(ctx, data, filename, rng)
	if err != nil {
		return nil, err
	}
	logging.Get("engine").Info("extraction complete",
		"archive", filename, "records", len(recs), "range", rng.String(), "elapsed", time.Since(start))
	return recs, nil
}

// Analyze previews the archive.
func (e *Engine) Analyze(ctx context.Context, data []byte, filename string) (*types.ArchiveAnalysis, error) {
	if err := required("filename", filename); err != nil {
		return nil, err
	}
	return archive.NewAnalyzer(e.opts.Limits).Analyze(ctx, data, filename)
}

// ListLocalFolders describes the top-level folders under root. A missing
// root yields an empty list and ErrRootUnavailable.
func (e *Engine) ListLocalFolders(ctx context.Context, root string) ([]types.FolderInfo, error) {
	if err := required("root", root); err != nil {
		return []types.FolderInfo{}, fmt.Errorf("%w: %w", ErrRootUnavailable, err)
	}
	return local.ListFolders(ctx, root)
}

// localRoot checks that root names an existing directory.
func localRoot(root string) (string, error) {
	if err := required("root", root); err != nil {
		return "", err
	}
	return local.ResolveRoot(root, "")
}

// ExtractLocal segments the selected folders beneath root. A missing or
// non-directory root fails with ErrRootUnavailable.
func (e *Engine) ExtractLocal(ctx context.Context, root string, folders []string, req RangeRequest) ([]types.LogRecord, error) {
	root, err := localRoot(root)
	if err != nil {
		return nil, err
	}
	rng, err := e.Range(req)
	if err != nil {
		return nil, err
	}
	return local.NewExtractor(e.opts.Anchors.Local).Extract(ctx, root, folders, rng)
}

// TailLocal streams records appended to the selected folders until ctx is
// done, interleaved with heartbeats.
func (e *Engine) TailLocal(ctx context.Context, root string, folders []string) (<-chan tailer.Event, error) {
	root, err := localRoot(root)
	if err != nil {
		return nil, err
	}
	return tailer.Tail(ctx, root, folders, tailer.Options{
		Pattern:   e.opts.Anchors.Tail,
		Interval:  e.opts.TailInterval,
		Heartbeat: e.opts.HeartbeatInterval,
		Notify:    true,
	})
}

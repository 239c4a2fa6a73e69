// Package logsiftv1 defines the logsift daemon RPC surface. Messages are
// plain Go structs carried by a JSON codec over gRPC.
package logsiftv1

import (
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// ExtractRequest carries an archive payload.
type ExtractRequest struct {
	Data     []byte              `json:"data"`
	Filename string              `json:"filename"`
	Range    engine.RangeRequest `json:"range"`
	NoCache  bool                `json:"no_cache,omitempty"`
}

// ExtractResponse holds the records of an archive or local extraction.
type ExtractResponse struct {
	Records []types.LogRecord `json:"records"`
	Cached  bool              `json:"cached,omitempty"`
}

// AnalyzeRequest carries an archive payload to preview.
type AnalyzeRequest struct {
	Data     []byte `json:"data"`
	Filename string `json:"filename"`
	NoCache  bool   `json:"no_cache,omitempty"`
}

// AnalyzeResponse holds the preview.
type AnalyzeResponse struct {
	Analysis *types.ArchiveAnalysis `json:"analysis"`
	Cached   bool                   `json:"cached,omitempty"`
}

// ListFoldersRequest names the local root. Empty uses the daemon's root.
type ListFoldersRequest struct {
	Root string `json:"root,omitempty"`
}

// ListFoldersResponse lists the top-level folders.
type ListFoldersResponse struct {
	Folders []types.FolderInfo `json:"folders"`
}

// ExtractLocalRequest selects folders under a local root.
type ExtractLocalRequest struct {
	Root    string              `json:"root,omitempty"`
	Folders []string            `json:"folders"`
	Range   engine.RangeRequest `json:"range"`
}

// TailRequest opens a tail session.
type TailRequest struct {
	Root    string   `json:"root,omitempty"`
	Folders []string `json:"folders"`
}

// TailEvent is one message on a tail stream. Record is nil for heartbeats.
type TailEvent struct {
	Type    string           `json:"type"`
	Record  *types.LogRecord `json:"record,omitempty"`
	Time    time.Time        `json:"time"`
	Session string           `json:"session,omitempty"`
}

// Event types carried in TailEvent.Type.
const (
	EventRecord    = "record"
	EventHeartbeat = "heartbeat"
	EventOpened    = "opened"
)

// GetStatusRequest is empty.
type GetStatusRequest struct{}

// Session describes a live tail session.
type Session struct {
	ID      string    `json:"id"`
	Root    string    `json:"root"`
	Folders []string  `json:"folders"`
	Started time.Time `json:"started"`
	Records int64     `json:"records"`
}

// CacheStats counts cached results.
type CacheStats struct {
	Enabled     bool `json:"enabled"`
	Extractions int  `json:"extractions"`
	Analyses    int  `json:"analyses"`
}

// Status reports daemon health.
type Status struct {
	PID            int        `json:"pid"`
	Version        string     `json:"version"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	MemoryBytes    uint64     `json:"memory_bytes"`
	Root           string     `json:"root,omitempty"`
	Sessions       []Session  `json:"sessions"`
	Cache          CacheStats `json:"cache"`
	RecentWarnings []string   `json:"recent_warnings,omitempty"`
}

// ShutdownRequest is empty.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown.
type ShutdownResponse struct {
	Success bool `json:"success"`
}

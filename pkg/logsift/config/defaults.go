// Package config provides configuration management for logsift.
package config

import "time"

// Default configuration values for logsift.
const (
	// DefaultMaxArchiveSize bounds an archive payload.
	DefaultMaxArchiveSize = "100MB"

	// DefaultMaxEntrySize bounds one decompressed archive entry.
	DefaultMaxEntrySize = "50MB"

	// DefaultMaxLookbackDays caps the days parameter.
	DefaultMaxLookbackDays = 365

	// DefaultTailInterval is the tail poll period.
	DefaultTailInterval = time.Second

	// DefaultHeartbeat is the tail heartbeat period.
	DefaultHeartbeat = 15 * time.Second

	// DefaultCacheTTL expires cached results.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// DefaultOutputFormat "auto" selects pretty on a terminal and plain otherwise.
	DefaultOutputFormat = "auto"
)

// Default anchor patterns per source.
const (
	DefaultArchiveAnchor = "permissive"
	DefaultLocalAnchor   = "permissive"
	DefaultTailAnchor    = "strict"
)

package daemon

import (
	"os"
	"path/filepath"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

// RecoverFromStaleDaemon checks for and cleans up stale daemon artifacts.
// Returns nil if cleanup succeeded or wasn't needed.
// Returns ErrDaemonAlreadyRunning if a daemon is actually running.
// cachePath may be empty when caching is disabled.
func RecoverFromStaleDaemon(pidPath, socketPath, cachePath string) error {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		return nil //nolint:nilerr // missing or invalid PID file means nothing to recover
	}

	if IsProcessRunning(pid) {
		return ErrDaemonAlreadyRunning
	}

	log := logging.Get("daemon")
	log.Warn("cleaning up stale daemon files", "stale_pid", pid)

	// Remove stale files (ignore errors - files may not exist)
	_ = os.Remove(pidPath)
	_ = os.Remove(socketPath)
	_ = os.Remove(StatusPath(socketPath))
	if cachePath != "" {
		_ = os.Remove(filepath.Join(cachePath, "LOCK"))
	}

	return nil
}

package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Startup states reported through the status file.
const (
	StatusReady = "ready"
	StatusError = "error"
)

// StatusFile is what a starting daemon reports to the client that launched
// it. PID is set when ready, Error when startup failed.
type StatusFile struct {
	Status string `json:"status"`
	PID    int    `json:"pid,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StatusPath returns the status file that accompanies a socket: the socket
// path with ".sock" replaced by ".status".
func StatusPath(socketPath string) string {
	return strings.TrimSuffix(socketPath, ".sock") + ".status"
}

// WriteStatusReady records that the daemon is serving.
func WriteStatusReady(path string) error {
	return writeStatus(path, StatusFile{Status: StatusReady, PID: os.Getpid()})
}

// WriteStatusError records why startup failed.
func WriteStatusError(path string, err error) error {
	return writeStatus(path, StatusFile{Status: StatusError, Error: err.Error()})
}

// writeStatus replaces the file atomically; the launching client polls it
// and must never see a partial write.
func writeStatus(path string, st StatusFile) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadStatus reads a status file.
func ReadStatus(path string) (*StatusFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st StatusFile
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// RemoveStatus removes the status file.
func RemoveStatus(path string) error {
	return os.Remove(path)
}

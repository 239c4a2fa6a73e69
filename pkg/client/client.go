// Package client provides a client for connecting to the logsiftd daemon.
// It wraps the gRPC client with convenience methods and maps status codes
// back to the engine's sentinel errors.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	logsiftv1 "github.com/jamesainslie/logsift/pkg/api/v1"
	"github.com/jamesainslie/logsift/pkg/daemon"
	"github.com/jamesainslie/logsift/pkg/logsift/archive"
	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/tailer"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Client connects to the logsiftd daemon via gRPC.
type Client struct {
	conn   *grpc.ClientConn
	client *logsiftv1.LogSiftClient
}

// DefaultSocketPath returns the default Unix socket path for logsiftd.
func DefaultSocketPath() string {
	return config.DefaultSocketPath()
}

// DefaultPIDPath returns the default PID file path for logsiftd.
func DefaultPIDPath() string {
	return config.DefaultPIDPath()
}

// DaemonPaths configures paths for daemon operations.
// Empty fields use defaults.
type DaemonPaths struct {
	Binary string // Path to logsiftd binary (auto-discovered if empty)
	Socket string // Unix socket path
	PID    string // PID file path

	// Config is passed to logsiftd as --config when set.
	Config string
}

// withDefaults returns a copy with empty fields filled with defaults.
func (p DaemonPaths) withDefaults() DaemonPaths {
	if p.Socket == "" {
		p.Socket = DefaultSocketPath()
	}
	if p.PID == "" {
		p.PID = DefaultPIDPath()
	}
	return p
}

// Connect establishes a connection to the logsiftd daemon.
// Uses a default timeout of 5 seconds.
func Connect(socketPath string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ConnectWithContext(ctx, socketPath)
}

// ConnectWithContext establishes a connection to the logsiftd daemon with a custom context.
func ConnectWithContext(ctx context.Context, socketPath string) (*Client, error) {
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("daemon socket not found at %s", socketPath)
	}

	target := "unix://" + socketPath

	//nolint:staticcheck // grpc.DialContext is deprecated but NewClient doesn't support blocking
	conn, err := grpc.DialContext(
		ctx,
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(daemon.DefaultMaxMessageSize),
			grpc.MaxCallSendMsgSize(daemon.DefaultMaxMessageSize),
		),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	return &Client{
		conn:   conn,
		client: logsiftv1.NewLogSiftClient(conn),
	}, nil
}

// Close closes the connection to the daemon.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Extract sends an archive to the daemon. The bool reports a cache hit.
func (c *Client) Extract(ctx context.Context, data []byte, filename string, rng engine.RangeRequest, noCache bool) ([]types.LogRecord, bool, error) {
	resp, err := c.client.Extract(ctx, &logsiftv1.ExtractRequest{
		Data:     data,
		Filename: filename,
		Range:    rng,
		NoCache:  noCache,
	})
	if err != nil {
		return nil, false, FromStatus(err)
	}
	return nonNil(resp.Records), resp.Cached, nil
}

// Analyze previews an archive through the daemon.
func (c *Client) Analyze(ctx context.Context, data []byte, filename string, noCache bool) (*types.ArchiveAnalysis, bool, error) {
	resp, err := c.client.Analyze(ctx, &logsiftv1.AnalyzeRequest{
		Data:     data,
		Filename: filename,
		NoCache:  noCache,
	})
	if err != nil {
		return nil, false, FromStatus(err)
	}
	return resp.Analysis, resp.Cached, nil
}

// ListFolders lists folders under root, or the daemon's root when empty.
// On error the list is empty, never nil.
func (c *Client) ListFolders(ctx context.Context, root string) ([]types.FolderInfo, error) {
	resp, err := c.client.ListFolders(ctx, &logsiftv1.ListFoldersRequest{Root: root})
	if err != nil {
		return []types.FolderInfo{}, FromStatus(err)
	}
	if resp.Folders == nil {
		return []types.FolderInfo{}, nil
	}
	return resp.Folders, nil
}

// ExtractLocal segments folders on the daemon's host.
func (c *Client) ExtractLocal(ctx context.Context, root string, folders []string, rng engine.RangeRequest) ([]types.LogRecord, error) {
	resp, err := c.client.ExtractLocal(ctx, &logsiftv1.ExtractLocalRequest{
		Root:    root,
		Folders: folders,
		Range:   rng,
	})
	if err != nil {
		return nil, FromStatus(err)
	}
	return nonNil(resp.Records), nil
}

// Tail opens a daemon tail session. Validation errors are returned before
// any event; the channel closes when ctx is done or the stream ends.
func (c *Client) Tail(ctx context.Context, root string, folders []string) (<-chan tailer.Event, error) {
	stream, err := c.client.Tail(ctx, &logsiftv1.TailRequest{Root: root, Folders: folders})
	if err != nil {
		return nil, FromStatus(err)
	}

	first, err := stream.Recv()
	if err != nil {
		return nil, FromStatus(err)
	}

	log := logging.Get("client")
	log.Debug("tail session opened", "session", first.Session)

	out := make(chan tailer.Event, 64)
	go func() {
		defer close(out)
		for {
			ev, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled && ctx.Err() == nil {
					log.Warn("tail stream ended", "session", first.Session, "error", err)
				}
				return
			}
			if ev.Type == logsiftv1.EventOpened {
				continue
			}
			select {
			case out <- tailer.Event{Type: tailer.EventType(ev.Type), Record: ev.Record, Time: ev.Time}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// GetStatus returns the current status of the daemon.
func (c *Client) GetStatus(ctx context.Context) (*logsiftv1.Status, error) {
	st, err := c.client.GetStatus(ctx, &logsiftv1.GetStatusRequest{})
	if err != nil {
		return nil, FromStatus(err)
	}
	return st, nil
}

// Shutdown requests the daemon to shut down gracefully.
func (c *Client) Shutdown(ctx context.Context) error {
	resp, err := c.client.Shutdown(ctx, &logsiftv1.ShutdownRequest{})
	if err != nil {
		return FromStatus(err)
	}
	if !resp.Success {
		return errors.New("daemon refused shutdown")
	}
	return nil
}

func nonNil(recs []types.LogRecord) []types.LogRecord {
	if recs == nil {
		return []types.LogRecord{}
	}
	return recs
}

// remoteError keeps the daemon's message while matching a local sentinel.
type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.sentinel }

var invalidArgumentSentinels = []error{
	archive.ErrUnsupportedFormat,
	daterange.ErrInvalidDate,
	daterange.ErrInvalidLookback,
	engine.ErrNoFolders,
	engine.ErrMissingParameter,
}

// FromStatus maps a daemon status error back to the sentinel it was built
// from, so callers can use errors.Is regardless of backend.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}
	msg := st.Message()

	var sentinel error
	switch st.Code() {
	case codes.InvalidArgument:
		for _, s := range invalidArgumentSentinels {
			if strings.Contains(msg, s.Error()) {
				sentinel = s
				break
			}
		}
	case codes.DataLoss:
		sentinel = archive.ErrCorruptArchive
	case codes.FailedPrecondition:
		sentinel = engine.ErrRootUnavailable
	case codes.ResourceExhausted:
		sentinel = archive.ErrArchiveTooLarge
	case codes.Canceled:
		sentinel = context.Canceled
	case codes.DeadlineExceeded:
		sentinel = context.DeadlineExceeded
	}
	if sentinel == nil {
		return err
	}
	return &remoteError{sentinel: sentinel, msg: msg}
}

// EnsureDaemon ensures the daemon is running, starting it if necessary.
// Idempotent: returns nil if daemon is already running.
func EnsureDaemon(paths DaemonPaths) error {
	return StartDaemon(paths)
}

// StartDaemon starts the logsiftd daemon in the background.
// Idempotent: returns nil if daemon is already running.
func StartDaemon(paths DaemonPaths) error {
	paths = paths.withDefaults()

	if daemon.IsDaemonRunning(paths.PID) {
		return nil
	}

	binary, err := resolveBinary(paths.Binary)
	if err != nil {
		return fmt.Errorf("find logsiftd: %w", err)
	}

	statusPath := daemon.StatusPath(paths.Socket)
	_ = os.Remove(statusPath)

	args := []string{"--socket", paths.Socket, "--pid", paths.PID}
	if paths.Config != "" {
		args = append(args, "--config", paths.Config)
	}

	// Use exec.Command (not CommandContext) intentionally: daemon must outlive caller
	cmd := exec.Command(binary, args...) //nolint:gosec // binary path is validated
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}

	for range 50 {
		time.Sleep(100 * time.Millisecond)

		if st, err := daemon.ReadStatus(statusPath); err == nil {
			switch st.Status {
			case daemon.StatusReady:
				return nil
			case daemon.StatusError:
				return fmt.Errorf("daemon failed to start: %s", st.Error)
			}
		}

		if _, err := os.Stat(paths.Socket); err == nil && daemon.IsDaemonRunning(paths.PID) {
			return nil
		}
	}

	return errors.New("daemon did not become ready within timeout")
}

// StopDaemon stops the daemon gracefully via RPC.
// Idempotent: returns nil if daemon is not running.
func StopDaemon(paths DaemonPaths) error {
	paths = paths.withDefaults()

	if !daemon.IsDaemonRunning(paths.PID) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ConnectWithContext(ctx, paths.Socket)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer client.Close()

	if err := client.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown daemon: %w", err)
	}

	for range 20 {
		time.Sleep(250 * time.Millisecond)
		if !daemon.IsDaemonRunning(paths.PID) {
			return nil
		}
	}

	return errors.New("daemon did not stop within timeout")
}

// RestartDaemon stops and starts the daemon.
func RestartDaemon(paths DaemonPaths) error {
	if err := StopDaemon(paths); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if err := StartDaemon(paths); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return nil
}

// resolveBinary finds the logsiftd binary path.
// Priority: configured path > same directory as executable > GOBIN/GOPATH > PATH.
func resolveBinary(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("configured binary not found: %s", configured)
		}
		return configured, nil
	}

	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "logsiftd")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if goBinPath := config.DefaultBinaryPath(); goBinPath != "" {
		return goBinPath, nil
	}

	if path, err := exec.LookPath("logsiftd"); err == nil {
		return path, nil
	}

	return "", errors.New("logsiftd not found")
}

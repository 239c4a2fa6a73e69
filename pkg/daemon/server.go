// Package daemon serves the logsift engine over gRPC on a Unix socket so
// that tail sessions and the result cache outlive a single CLI call.
package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"

	"google.golang.org/grpc"

	logsiftv1 "github.com/jamesainslie/logsift/pkg/api/v1"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

// DefaultMaxMessageSize admits a default-limit archive plus framing.
const DefaultMaxMessageSize = 128 << 20

// Config holds daemon configuration.
type Config struct {
	SocketPath string
	DataDir    string

	// MaxMessageSize bounds request and response size. Zero uses
	// DefaultMaxMessageSize.
	MaxMessageSize int
}

// Server is the logsiftd gRPC server.
type Server struct {
	cfg      Config
	grpc     *grpc.Server
	listener net.Listener
	service  *Service
}

// NewServer creates a new daemon server bound to cfg.SocketPath.
func NewServer(cfg Config, svc *Service) (*Server, error) {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	if svc == nil {
		svc = NewService(ServiceOptions{})
	}

	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
	}

	// Remove stale socket if exists
	if err := os.RemoveAll(cfg.SocketPath); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SocketPath), 0o755); err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "unix", cfg.SocketPath)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg: cfg,
		grpc: grpc.NewServer(
			grpc.MaxRecvMsgSize(cfg.MaxMessageSize),
			grpc.MaxSendMsgSize(cfg.MaxMessageSize),
		),
		listener: listener,
		service:  svc,
	}

	logsiftv1.RegisterLogSiftServer(srv.grpc, svc)
	return srv, nil
}

// Service returns the registered service.
func (s *Server) Service() *Service { return s.service }

// Serve starts the gRPC server. Blocks until stopped.
func (s *Server) Serve() error {
	logging.Get("daemon").Info("serving", "socket", s.cfg.SocketPath)
	return s.grpc.Serve(s.listener)
}

// Close ends tail sessions, stops the server and removes the socket.
func (s *Server) Close() error {
	s.service.sessions.Shutdown()
	s.grpc.GracefulStop()
	return os.RemoveAll(s.cfg.SocketPath)
}

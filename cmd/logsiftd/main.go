// Package main provides logsiftd, the daemon that serves the logsift engine
// over a Unix socket.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/daemon"
	"github.com/jamesainslie/logsift/pkg/logsift/cache"
	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

// Build-time variables set by go build -ldflags.
var version = "dev"

// retainedEntries is how many log entries the daemon keeps for status.
const retainedEntries = 200

var (
	cfgFile    string
	socketPath string
	pidPath    string
)

var rootCmd = &cobra.Command{
	Use:           "logsiftd",
	Short:         "Serve the logsift engine over a Unix socket",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/logsift/config.yaml)")
	rootCmd.Flags().StringVar(&socketPath, "socket", "", "Unix socket path (default from config)")
	rootCmd.Flags().StringVar(&pidPath, "pid", "", "PID file path (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logsiftd: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the same configuration the CLI uses.
func loadConfig() (*config.Config, error) {
	v, err := config.New()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if err := config.Read(v); err != nil {
		return nil, err
	}
	return config.Decode(v)
}

func run(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	if pidPath == "" {
		pidPath = cfg.PIDPath()
	}
	statusPath := daemon.StatusPath(socketPath)

	// The starting client polls the status file, so every early failure is
	// reported there as well.
	fail := func(err error) error {
		_ = daemon.WriteStatusError(statusPath, err)
		return err
	}

	if err := daemon.RecoverFromStaleDaemon(pidPath, socketPath, cfg.CachePath()); err != nil {
		if errors.Is(err, daemon.ErrDaemonAlreadyRunning) {
			return fmt.Errorf("logsiftd is already running: %w", err)
		}
		return fail(fmt.Errorf("failed to recover from stale daemon: %w", err))
	}

	logOpts, err := cfg.LoggingOptions()
	if err != nil {
		return fail(err)
	}
	logOpts.Retain = retainedEntries
	if err := logging.Init(logOpts); err != nil {
		return fail(fmt.Errorf("failed to initialize logging: %w", err))
	}
	defer func() { _ = logging.Close() }()
	log := logging.Get("daemon")

	engOpts, err := cfg.EngineOptions()
	if err != nil {
		return fail(err)
	}

	var resultCache *cache.Cache
	if cfg.Cache.Enabled {
		resultCache, err = cache.Open(cfg.CachePath(), cfg.Cache.TTL)
		if err != nil {
			log.Warn("cache disabled", "path", cfg.CachePath(), "error", err)
			resultCache = nil
		} else {
			defer func() {
				if err := resultCache.Close(); err != nil {
					log.Warn("failed to close cache", "error", err)
				}
			}()
		}
	}

	svc := daemon.NewService(daemon.ServiceOptions{
		Engine:  engine.New(engOpts),
		Cache:   resultCache,
		Root:    cfg.Local.Root,
		Version: version,
	})

	srv, err := daemon.NewServer(daemon.Config{
		SocketPath: socketPath,
		DataDir:    filepath.Dir(socketPath),
	}, svc)
	if err != nil {
		return fail(fmt.Errorf("failed to create server: %w", err))
	}

	if err := daemon.WritePIDFile(pidPath); err != nil {
		_ = srv.Close()
		return fail(fmt.Errorf("failed to write PID file: %w", err))
	}
	defer func() {
		if err := daemon.RemovePIDFile(pidPath); err != nil {
			log.Warn("failed to remove PID file", "error", err)
		}
	}()

	if err := daemon.WriteStatusReady(statusPath); err != nil {
		log.Warn("failed to write status file", "error", err)
	}
	defer func() { _ = daemon.RemoveStatus(statusPath) }()

	// Handle shutdown signals and Shutdown requests
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("shutting down", "signal", sig.String())
		case <-svc.Done():
			log.Info("shutting down", "reason", "request")
		}
		if err := srv.Close(); err != nil {
			log.Warn("error during shutdown", "error", err)
		}
	}()

	log.Info("logsiftd starting", "socket", socketPath, "pid", os.Getpid(), "version", version)

	if err := srv.Serve(); err != nil {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}

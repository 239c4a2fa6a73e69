package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jamesainslie/logsift/pkg/client"
	"github.com/jamesainslie/logsift/pkg/daemon"
	"github.com/jamesainslie/logsift/pkg/logsift/cache"
	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

// connectTimeout bounds how long a command waits for the daemon before
// falling back to in-process work.
const connectTimeout = 2 * time.Second

// initializeLogging configures the logging system from cfg. Verbose mode
// mirrors debug entries to stderr.
func initializeLogging(cfg *config.Config, verbose bool) error {
	opts, err := cfg.LoggingOptions()
	if err != nil {
		return err
	}
	if verbose {
		opts.ConsoleLevel = "debug"
	}
	if err := logging.Init(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// daemonPaths returns the daemon locations configured in cfg.
func daemonPaths(cfg *config.Config) client.DaemonPaths {
	return client.DaemonPaths{
		Binary: cfg.Daemon.BinaryPath,
		Socket: cfg.SocketPath(),
		PID:    cfg.PIDPath(),
		Config: viper.ConfigFileUsed(),
	}
}

// maybeStartDaemon starts the daemon when auto_start is configured. Failure
// is logged and otherwise ignored; callers fall back to in-process work.
func maybeStartDaemon(cfg *config.Config) bool {
	if !cfg.Daemon.AutoStart {
		return false
	}
	if daemon.IsDaemonRunning(cfg.PIDPath()) {
		return true
	}
	printVerbose("auto-starting daemon...")
	if err := client.StartDaemon(daemonPaths(cfg)); err != nil {
		logging.Get("cli").Warn("daemon auto-start failed", "error", err)
		printVerbose("auto-start failed: %v", err)
		return false
	}
	return true
}

// connectDaemon returns a daemon client, or nil when the daemon is bypassed
// or unreachable.
func connectDaemon(ctx context.Context, cfg *config.Config) *client.Client {
	if viper.GetBool("no_daemon") {
		return nil
	}
	maybeStartDaemon(cfg)
	if !daemon.IsDaemonRunning(cfg.PIDPath()) {
		printVerbose("daemon not running, working in-process")
		return nil
	}

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	c, err := client.ConnectWithContext(connCtx, cfg.SocketPath())
	if err != nil {
		printVerbose("daemon unreachable, working in-process: %v", err)
		return nil
	}
	printVerbose("connected to daemon at %s", cfg.SocketPath())
	return c
}

// newEngine builds an in-process engine from cfg.
func newEngine(cfg *config.Config) (*engine.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	return engine.New(opts), nil
}

// openCache opens the result cache unless it is disabled or bypassed. The
// daemon holds the cache lock while it runs, so in-process callers treat an
// open failure as a cache miss.
func openCache(cfg *config.Config) *cache.Cache {
	if !cfg.Cache.Enabled || viper.GetBool("no_cache") {
		return nil
	}
	c, err := cache.Open(cfg.CachePath(), cfg.Cache.TTL)
	if err != nil {
		printVerbose("cache unavailable: %v", err)
		return nil
	}
	return c
}

// signalContext returns a context canceled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// outputFormat resolves the format name: the flag or config value, else
// pretty on a terminal and plain when piped.
func outputFormat(cfg *config.Config) string {
	if f := cfg.Output.Format; f != "" && f != "auto" {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // fd fits in int
		return "pretty"
	}
	return "plain"
}

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/client"
	"github.com/jamesainslie/logsift/pkg/daemon"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the logsiftd daemon",
	Long: `Manage the logsiftd daemon.

The daemon keeps the result cache open and hosts tail sessions. Commands use
it automatically when it is running.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the logsiftd daemon",
	Long:  `Start the logsiftd daemon in the background.`,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the logsiftd daemon",
	Long:  `Stop the logsiftd daemon gracefully, ending any tail sessions.`,
	RunE:  runDaemonStop,
}

var daemonRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the logsiftd daemon",
	Long:  `Stop and start the logsiftd daemon.`,
	RunE:  runDaemonRestart,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long:  `Show the current status of the logsiftd daemon and its tail sessions.`,
	RunE:  runDaemonStatus,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonRestartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

func runDaemonStart(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printVerbose("starting daemon...")
	if err := client.StartDaemon(daemonPaths(cfg)); err != nil {
		printVerbose("start failed: %v", err)
		return err
	}
	printInfo("Daemon started")
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := daemonPaths(cfg)
	printVerbose("checking PID file: %s", paths.PID)

	if !daemon.IsDaemonRunning(paths.PID) {
		printInfo("Daemon is not running")
		return nil
	}
	if err := client.StopDaemon(paths); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	printInfo("Daemon stopped")
	return nil
}

func runDaemonRestart(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := client.RestartDaemon(daemonPaths(cfg)); err != nil {
		return fmt.Errorf("failed to restart daemon: %w", err)
	}
	printInfo("Daemon restarted")
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !daemon.IsDaemonRunning(cfg.PIDPath()) {
		printInfo("Daemon status: not running")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	daemonClient, err := client.ConnectWithContext(ctx, cfg.SocketPath())
	if err != nil {
		printInfo("Daemon status: running (but not responding)")
		return nil
	}
	defer daemonClient.Close()

	status, err := daemonClient.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get daemon status: %w", err)
	}

	printInfo("Daemon status: running")
	printInfo("  PID: %d", status.PID)
	printInfo("  Version: %s", status.Version)
	printInfo("  Uptime: %s", formatDuration(time.Duration(status.UptimeSeconds)*time.Second))
	printInfo("  Memory: %s", types.FormatSize(int64(status.MemoryBytes))) //nolint:gosec // heap size fits in int64
	if status.Root != "" {
		printInfo("  Local root: %s", status.Root)
	}
	if status.Cache.Enabled {
		printInfo("  Cache: %d extractions, %d analyses", status.Cache.Extractions, status.Cache.Analyses)
	} else {
		printInfo("  Cache: disabled")
	}

	if len(status.Sessions) > 0 {
		printInfo("  Tail sessions:")
		for _, s := range status.Sessions {
			printInfo("    - %s %s [%s] %d records, up %s",
				s.ID, s.Root, strings.Join(s.Folders, ","), s.Records,
				formatDuration(time.Since(s.Started)))
		}
	}

	if len(status.RecentWarnings) > 0 {
		printInfo("  Recent warnings:")
		for _, w := range status.RecentWarnings {
			printInfo("    %s", w)
		}
	}

	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

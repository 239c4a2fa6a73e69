package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/output"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List local service folders",
	Long: `List the service folders under the local root, with their log file
counts and sizes. Set the root with --root or local.root in the config.`,
	Args: cobra.NoArgs,
	RunE: runFolders,
}

var localCmd = &cobra.Command{
	Use:   "local <folder>...",
	Short: "Extract dated records from local service folders",
	Long: `Local reads the log files of the named service folders under the local
root and returns their records inside the date window.

Folders may be given as separate arguments or comma-separated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLocal,
}

func init() {
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(localCmd)

	addRangeFlags(localCmd)
	addFilterFlags(localCmd)
}

func runFolders(cmd *cobra.Command, _ []string) error {
	started := time.Now()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := localRoot(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	be, daemonUp, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	folders, err := be.ListFolders(ctx, root)
	if err != nil {
		if errors.Is(err, engine.ErrRootUnavailable) {
			return fmt.Errorf("%w (set --root or local.root)", err)
		}
		return err
	}

	return render(cmd, cfg, &output.Result{
		Kind:     output.KindFolders,
		Source:   root,
		Folders:  folders,
		DaemonUp: daemonUp,
	}, started)
}

func runLocal(cmd *cobra.Command, args []string) error {
	started := time.Now()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := buildFilter(cmd)
	if err != nil {
		return fmt.Errorf("failed to build filter: %w", err)
	}
	root, err := localRoot(cfg)
	if err != nil {
		return err
	}
	rng := rangeRequest(cmd)
	rangeDesc, err := describeRange(cfg, rng)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	be, daemonUp, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	recs, err := be.ExtractLocal(ctx, root, folderArgs(args), rng)
	if err != nil {
		return err
	}

	res := recordResult(cmd, f, root, rangeDesc, recs)
	res.DaemonUp = daemonUp
	return render(cmd, cfg, res, started)
}

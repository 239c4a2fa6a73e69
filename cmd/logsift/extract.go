package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/output"
	"github.com/jamesainslie/logsift/pkg/logsift/source"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive|s3://bucket/key>",
	Short: "Extract dated records from an archive",
	Long: `Extract splits every log file in a .zip or .tar.gz archive into
timestamped records and keeps those inside the date window.

Without --start, --end or --days every dated record is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive|s3://bucket/key>",
	Short: "Describe the structure of an archive",
	Long: `Analyze lists the folders and log files inside an archive and reports
the overall date span of their records.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)

	addRangeFlags(extractCmd)
	addFilterFlags(extractCmd)
}

// loadArchive reads ref from disk or object storage.
func loadArchive(ctx context.Context, cfg *config.Config, ref string) (*source.Archive, error) {
	opts, err := cfg.SourceOptions()
	if err != nil {
		return nil, err
	}
	printVerbose("loading %s", ref)
	arc, err := source.Load(ctx, ref, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}
	printVerbose("loaded %s (%s)", arc.Name, types.FormatSize(int64(len(arc.Data))))
	return arc, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	started := time.Now()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := buildFilter(cmd)
	if err != nil {
		return fmt.Errorf("failed to build filter: %w", err)
	}
	rng := rangeRequest(cmd)
	rangeDesc, err := describeRange(cfg, rng)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	arc, err := loadArchive(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	be, daemonUp, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	recs, cached, err := be.Extract(ctx, arc.Data, arc.Name, rng, noCache())
	if err != nil {
		logging.Get("cli").Warn("extract failed", "archive", arc.Ref, "error", err)
		return err
	}

	res := recordResult(cmd, f, arc.Ref, rangeDesc, recs)
	res.Cached = cached
	res.DaemonUp = daemonUp
	return render(cmd, cfg, res, started)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	started := time.Now()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	arc, err := loadArchive(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	be, daemonUp, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	analysis, cached, err := be.Analyze(ctx, arc.Data, arc.Name, noCache())
	if err != nil {
		return err
	}

	return render(cmd, cfg, &output.Result{
		Kind:     output.KindAnalysis,
		Source:   arc.Ref,
		Analysis: analysis,
		Cached:   cached,
		DaemonUp: daemonUp,
	}, started)
}

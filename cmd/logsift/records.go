package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/filter"
	"github.com/jamesainslie/logsift/pkg/logsift/output"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// describeRange validates rng locally and renders it for output headers.
// Validating here fails fast, before an archive is read or uploaded.
func describeRange(cfg *config.Config, rng engine.RangeRequest) (string, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return "", err
	}
	r, err := eng.Range(rng)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// narrow applies f to recs. It returns the records to show and every
// matching record before the limit.
func narrow(f *filter.Filter, recs []types.LogRecord) (shown, matched []types.LogRecord) {
	matched = []types.LogRecord{}
	for _, r := range recs {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}
	return f.Apply(matched), matched
}

// recordResult builds the output for a record listing.
func recordResult(cmd *cobra.Command, f *filter.Filter, src, rng string, recs []types.LogRecord) *output.Result {
	shown, matched := narrow(f, recs)
	res := &output.Result{
		Kind:    output.KindRecords,
		Source:  src,
		Range:   rng,
		Records: shown,
		Matched: len(matched),
	}
	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		s := types.Summarize(matched)
		res.Summary = &s
	}
	if len(shown) < len(matched) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("showing %d of %d matching records", len(shown), len(matched)))
	}
	return res
}

// render formats res and writes it to stdout.
func render(cmd *cobra.Command, cfg *config.Config, res *output.Result, started time.Time) error {
	formatter, err := getFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	res.Duration = time.Since(started)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return nil
}

// localRoot resolves the configured local root. The daemon may run in
// another directory, so relative roots are made absolute.
func localRoot(cfg *config.Config) (string, error) {
	root := cfg.Local.Root
	if root == "" {
		return "", nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	return abs, nil
}

// folderArgs accepts folders as separate arguments or comma-separated.
func folderArgs(args []string) []string {
	var out []string
	for _, a := range args {
		out = append(out, parseCommaSeparated(a)...)
	}
	return out
}

func noCache() bool {
	return viper.GetBool("no_cache")
}

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/logsift/output"
	"github.com/jamesainslie/logsift/pkg/logsift/tailer"
)

var tailCmd = &cobra.Command{
	Use:   "tail <folder>...",
	Short: "Follow new records in local service folders",
	Long: `Tail prints records as they are appended to the log files of the named
service folders. Existing content is skipped; only new complete lines are
reported. Stop with Ctrl-C.

Through the daemon the session is listed by "logsift daemon status".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().StringSlice("severity", nil, "only these severities (error, warning, other)")
	tailCmd.Flags().StringSlice("folder", nil, "folder glob patterns to include")
	tailCmd.Flags().StringSlice("exclude-folder", nil, "folder glob patterns to exclude")
	tailCmd.Flags().StringSlice("file", nil, "file path glob patterns to include")
	tailCmd.Flags().String("contains", "", "case-insensitive text the record must contain")
}

func runTail(cmd *cobra.Command, args []string) error {
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
	formatter, err := output.Streaming(outputFormat(cfg))
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", outputFormat(cfg), output.Available())
	}

	ctx, cancel := signalContext()
	defer cancel()

	be, daemonUp, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	events, err := be.Tail(ctx, root, folderArgs(args))
	if err != nil {
		return err
	}
	printVerbose("tailing %v (daemon: %t)", folderArgs(args), daemonUp)

	out := cmd.OutOrStdout()
	var buf bytes.Buffer
	for ev := range events {
		switch ev.Type {
		case tailer.EventHeartbeat:
			printVerbose("heartbeat %s", ev.Time.Format("15:04:05"))
		case tailer.EventRecord:
			if ev.Record == nil || !f.Match(*ev.Record) {
				continue
			}
			buf.Reset()
			if err := formatter.FormatRecord(&buf, *ev.Record); err != nil {
				return fmt.Errorf("failed to format record: %w", err)
			}
			fmt.Fprint(out, buf.String())
		}
	}
	return nil
}

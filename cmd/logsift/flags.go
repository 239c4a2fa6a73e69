package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/filter"
	"github.com/jamesainslie/logsift/pkg/logsift/output"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// addRangeFlags registers the date window flags.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().Int("days", 0, "include the last N days (ignored when --start or --end is set)")
}

// addFilterFlags registers the record filtering and presentation flags.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("severity", nil, "only these severities (error, warning, other)")
	cmd.Flags().StringSlice("folder", nil, "folder glob patterns to include")
	cmd.Flags().StringSlice("exclude-folder", nil, "folder glob patterns to exclude")
	cmd.Flags().StringSlice("file", nil, "file path glob patterns to include")
	cmd.Flags().String("contains", "", "case-insensitive text the record must contain")
	cmd.Flags().String("sort", "", "sort by none, date, folder, file or severity")
	cmd.Flags().Bool("reverse", false, "reverse the sort order")
	cmd.Flags().Int("limit", 0, "maximum records to show (0 = unlimited)")
	cmd.Flags().Bool("summary", false, "add counts per folder, date and severity")
	cmd.Flags().String("template", "", "Go template for -o template")
}

// rangeRequest reads the date window flags.
func rangeRequest(cmd *cobra.Command) engine.RangeRequest {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	days, _ := cmd.Flags().GetInt("days")
	return engine.RangeRequest{StartDate: start, EndDate: end, Days: days}
}

// buildFilter creates a filter.Filter from the CLI flags.
func buildFilter(cmd *cobra.Command) (*filter.Filter, error) {
	var opts []filter.Option

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return nil, fmt.Errorf("invalid limit %d", limit)
	}
	opts = append(opts, filter.WithLimit(limit))

	severities, _ := cmd.Flags().GetStringSlice("severity")
	if len(severities) > 0 {
		parsed := make([]types.Severity, 0, len(severities))
		for _, s := range severities {
			sev, err := types.ParseSeverity(s)
			if err != nil {
				return nil, fmt.Errorf("invalid severity %q: %w", s, err)
			}
			parsed = append(parsed, sev)
		}
		opts = append(opts, filter.WithSeverities(parsed...))
	}

	if include, _ := cmd.Flags().GetStringSlice("folder"); len(include) > 0 {
		opts = append(opts, filter.WithInclude(include...))
	}
	if exclude, _ := cmd.Flags().GetStringSlice("exclude-folder"); len(exclude) > 0 {
		opts = append(opts, filter.WithExclude(exclude...))
	}
	if files, _ := cmd.Flags().GetStringSlice("file"); len(files) > 0 {
		opts = append(opts, filter.WithFiles(files...))
	}
	if contains, _ := cmd.Flags().GetString("contains"); contains != "" {
		opts = append(opts, filter.WithContains(contains))
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	sortField, err := filter.ParseSortField(sortBy)
	if err != nil {
		return nil, fmt.Errorf("invalid sort field %q: %w", sortBy, err)
	}
	opts = append(opts, filter.WithSortBy(sortField))

	// Dates read newest first; every other field reads in its natural
	// order. --reverse flips either.
	reverse, _ := cmd.Flags().GetBool("reverse")
	descending := reverse
	if sortField == filter.SortDate {
		descending = !reverse
	}
	opts = append(opts, filter.WithSortDescending(descending))

	return filter.New(opts...), nil
}

// getFormatter resolves the output formatter from flags and config.
func getFormatter(cmd *cobra.Command, cfg *config.Config) (output.Formatter, error) {
	name := outputFormat(cfg)
	if name == "template" {
		if tmpl, _ := cmd.Flags().GetString("template"); tmpl != "" {
			return output.NewTemplateFormatter(tmpl), nil
		}
	}
	f, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}
	return f, nil
}

// formatNames lists the formats accepted by --output.
func formatNames() []string {
	return append([]string{"auto"}, output.Available()...)
}

// parseCommaSeparated splits a comma-separated string and trims whitespace.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

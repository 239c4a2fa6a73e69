package output

import (
	"strconv"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// table is the flat rendering shared by plain, csv, tsv and markdown.
func table(r *Result) (header []string, rows [][]string) {
	switch r.Kind {
	case KindAnalysis:
		return []string{"FIELD", "VALUE"}, analysisRows(r.Analysis)
	case KindFolders:
		header = []string{"FOLDER", "FILES", "SIZE"}
		for _, f := range r.Folders {
			rows = append(rows, []string{f.Name, strconv.Itoa(f.FileCount), types.FormatSize(f.TotalSize)})
		}
		return header, rows
	default:
		header = []string{"DATE", "SEVERITY", "FOLDER", "FILE", "LINE", "MESSAGE"}
		for _, rec := range r.Records {
			rows = append(rows, recordRow(rec))
		}
		return header, rows
	}
}

func recordRow(rec types.LogRecord) []string {
	return []string{
		rec.Date.UTC().Format(time.RFC3339),
		string(rec.Severity()),
		rec.Folder,
		rec.File,
		strconv.Itoa(rec.LineNumber),
		rec.Headline(),
	}
}

func analysisRows(a *types.ArchiveAnalysis) [][]string {
	if a == nil {
		return nil
	}
	earliest, latest := "-", "-"
	if a.DateRange != nil {
		earliest, latest = a.DateRange.Earliest, a.DateRange.Latest
	}
	return [][]string{
		{"total_files", strconv.Itoa(a.TotalFiles)},
		{"log_files", strconv.Itoa(a.LogFiles)},
		{"total_size", types.FormatSize(a.TotalSize)},
		{"folders", strconv.Itoa(len(a.Folders))},
		{"earliest", earliest},
		{"latest", latest},
		{"estimated_entries", strconv.Itoa(a.EstimatedLogEntries)},
	}
}

package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	switch r.Kind {
	case KindAnalysis:
		w.WriteString(f.formatAnalysis(r.Analysis))
	case KindFolders:
		w.WriteString(f.formatFolders(r.Folders))
	default:
		if len(r.Records) == 0 {
			w.WriteString(MutedStyle.Render("  No records found matching criteria"))
			w.WriteString("\n")
		}
		for _, rec := range r.Records {
			if err := f.FormatRecord(w, rec); err != nil {
				return err
			}
		}
		if r.Summary != nil {
			w.WriteString(f.formatSummary(r.Summary))
		}
	}

	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}
	return nil
}

// FormatRecord writes one record: a badge line, then indented continuation.
func (f *PrettyFormatter) FormatRecord(w *bytes.Buffer, rec types.LogRecord) error {
	sev := rec.Severity()
	badge := SeverityStyle(sev).Render(fmt.Sprintf("%-7s", strings.ToUpper(string(sev))))
	when := MutedStyle.Render(rec.Date.UTC().Format("2006-01-02 15:04:05"))
	loc := LocationStyle.Render(fmt.Sprintf("%s/%s:%d", rec.Folder, rec.File, rec.LineNumber))
	fmt.Fprintf(w, "%s %s %s\n", badge, when, loc)

	lines := strings.Split(rec.Content, "\n")
	w.WriteString("    " + ValueStyle.Render(lines[0]) + "\n")
	if len(lines) > 1 {
		w.WriteString(BodyStyle.Render(strings.Join(lines[1:], "\n")))
		w.WriteString("\n")
	}
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	lines = append(lines, LabelStyle.Render("Source:")+" "+ValueStyle.Render(r.Source))

	var info []string
	if r.Range != "" {
		info = append(info, LabelStyle.Render("Range:")+" "+ValueStyle.Render(r.Range))
	}
	if r.Duration > 0 {
		info = append(info, LabelStyle.Render("Took:")+" "+ValueStyle.Render(formatDuration(r.Duration)))
	}
	info = append(info, f.formatBackend(r))
	lines = append(lines, strings.Join(info, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatBackend(r *Result) string {
	parts := []string{}
	if r.DaemonUp {
		parts = append(parts, SuccessStyle.Render("daemon"))
	} else {
		parts = append(parts, MutedStyle.Render("in-process"))
	}
	if r.Cached {
		parts = append(parts, SuccessStyle.Render("cached"))
	}
	return strings.Join(parts, MutedStyle.Render(", "))
}

func (f *PrettyFormatter) formatAnalysis(a *types.ArchiveAnalysis) string {
	if a == nil {
		return MutedStyle.Render("  No analysis available") + "\n"
	}
	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-18s", label)), ValueStyle.Render(value)))
	}
	row("Files:", fmt.Sprintf("%d (%d log files)", a.TotalFiles, a.LogFiles))
	row("Text size:", types.FormatSize(a.TotalSize))
	if a.DateRange != nil {
		row("Dates:", a.DateRange.Earliest+" .. "+a.DateRange.Latest)
	} else {
		row("Dates:", "none found")
	}
	row("Estimated entries:", humanize.Comma(int64(a.EstimatedLogEntries)))
	row("Folders:", fmt.Sprintf("%d", len(a.Folders)))
	for _, name := range a.Folders {
		sb.WriteString("    " + LocationStyle.Render(name) + "\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFolders(folders []types.FolderInfo) string {
	if len(folders) == 0 {
		return MutedStyle.Render("  No folders found") + "\n"
	}
	width := len("FOLDER")
	for _, fi := range folders {
		width = max(width, len(fi.Name))
	}
	var sb strings.Builder
	sb.WriteString("  " + TableHeaderStyle.Render(padRight("FOLDER", width)) +
		TableHeaderStyle.Render(padLeft("FILES", 6)) + TableHeaderStyle.Render("SIZE") + "\n")
	for _, fi := range folders {
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			LocationStyle.Render(padRight(fi.Name, width)),
			ValueStyle.Render(padLeft(fmt.Sprintf("%d", fi.FileCount), 6)),
			ValueStyle.Render(humanize.IBytes(uint64(fi.TotalSize)))))
	}
	return sb.String()
}

func (f *PrettyFormatter) formatSummary(s *types.Summary) string {
	var sb strings.Builder
	sb.WriteString("\n" + TitleStyle.Render("Summary") + "\n")
	for _, sev := range []types.Severity{types.SeverityError, types.SeverityWarning, types.SeverityOther} {
		if n := s.BySeverity[sev]; n > 0 {
			sb.WriteString(fmt.Sprintf("  %s %d\n", SeverityStyle(sev).Render(fmt.Sprintf("%-8s", sev)), n))
		}
	}
	for _, name := range s.Folders() {
		sb.WriteString(fmt.Sprintf("  %s %d\n", LocationStyle.Render(name), s.ByFolder[name]))
	}
	for _, d := range s.Dates() {
		sb.WriteString(fmt.Sprintf("  %s %d\n", MutedStyle.Render(d), s.ByDate[d]))
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string
	switch r.Kind {
	case KindAnalysis:
		parts = append(parts, LabelStyle.Render("Analysis only; run extract for records"))
	case KindFolders:
		parts = append(parts, LabelStyle.Render("Folders:")+" "+ValueStyle.Render(fmt.Sprintf("%d", len(r.Folders))))
	default:
		shown := fmt.Sprintf("%d", len(r.Records))
		if r.Matched > len(r.Records) {
			shown = fmt.Sprintf("%d of %d", len(r.Records), r.Matched)
		}
		parts = append(parts, LabelStyle.Render("Records:")+" "+ValueStyle.Render(shown))
	}
	parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))
	return FooterBox.Render(strings.Join(parts, "  "))
}

func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder
	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")
	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}
	return sb.String()
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var (
	_ Formatter       = (*PrettyFormatter)(nil)
	_ RecordFormatter = (*PrettyFormatter)(nil)
)

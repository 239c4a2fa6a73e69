package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Color constants using ANSI 256-color palette.
const (
	// ColorPrimary is used for primary elements like headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for positive status indicators (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for warning records and messages (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for error records (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for less important or secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

// Box styles for containing grouped content.
var (
	// HeaderBox is the style for the header section containing run info.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox is the style for the footer section containing summary info.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

// Text styles for various content types.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// LocationStyle renders folder/file:line.
	LocationStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	// BodyStyle indents continuation lines under a record headline.
	BodyStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			PaddingLeft(4)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMuted).
				PaddingRight(2)
)

// SeverityStyle returns the badge style for s.
func SeverityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SeverityError:
		return ErrorStyle.Bold(true)
	case types.SeverityWarning:
		return WarningStyle.Bold(true)
	default:
		return MutedStyle
	}
}

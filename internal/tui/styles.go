// Package tui renders the lounge terminal views: the access-log table, the
// live log watcher and the scanner panel.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#38BDF8") // Sky
	Granted = lipgloss.Color("#10B981") // Green
	Denied  = lipgloss.Color("#EF4444") // Red
	Pending = lipgloss.Color("#F59E0B") // Amber
	Muted   = lipgloss.Color("#6B7280") // Gray
	White   = lipgloss.Color("#FFFFFF")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Padding(0, 1)

	Cell = lipgloss.NewStyle().Padding(0, 1)

	GrantedText = lipgloss.NewStyle().Foreground(Granted).Bold(true)
	DeniedText  = lipgloss.NewStyle().Foreground(Denied).Bold(true)
	MutedText   = lipgloss.NewStyle().Foreground(Muted)

	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Padding(0, 1).
			MarginRight(1)

	ErrorText = lipgloss.NewStyle().Foreground(Denied)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 4).
		Width(50).
		Align(lipgloss.Center)
)

// StatusStyle colors a log status or verification outcome.
func StatusStyle(status string) lipgloss.Style {
	switch {
	case containsFold(status, "granted"):
		return GrantedText
	case containsFold(status, "denied"):
		return DeniedText
	}
	return MutedText
}

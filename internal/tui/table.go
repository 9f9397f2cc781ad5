package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"aerogate/internal/accesslog"
)

var logHeaders = []string{"ID", "NAME", "TIMESTAMP", "STATUS", "TERMINAL", "CONFIDENCE"}

// LogTable renders entries as a bordered table. An empty list renders a
// single "no entries" line instead.
func LogTable(entries []accesslog.Entry) string {
	if len(entries) == 0 {
		return MutedText.Render("No access log entries.")
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			e.Name,
			e.Timestamp,
			StatusStyle(e.Status).Render(strings.ToUpper(e.Status)),
			e.Terminal,
			fmt.Sprintf("%.2f%%", e.Confidence),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedText).
		Headers(logHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Header
			}
			return Cell
		}).
		String()
}

// SummaryLine renders counts as "total 5 · granted 3 · denied 2".
func SummaryLine(s accesslog.Summary) string {
	return strings.Join([]string{
		fmt.Sprintf("total %d", s.Total),
		GrantedText.Render(fmt.Sprintf("granted %d", s.Granted)),
		DeniedText.Render(fmt.Sprintf("denied %d", s.Denied)),
	}, MutedText.Render(" · "))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aerogate/internal/access"
	"aerogate/internal/models"
)

// ScanPanel renders the scanner screen for d. When res is non-nil its member
// name, confidence and reason are shown under the hint.
func ScanPanel(d models.ScanDisplay, res *access.VerifyResult) string {
	color := Primary
	switch d.State {
	case models.ScanVerifying:
		color = Pending
	case models.ScanGranted:
		color = Granted
	case models.ScanDenied:
		color = Denied
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(d.Label),
		MutedText.Render(d.Hint),
	}
	if res != nil {
		var details []string
		if res.Name != "" {
			details = append(details, res.Name)
		}
		details = append(details, fmt.Sprintf("confidence %.2f%%", res.Confidence))
		if res.Reason != "" {
			details = append(details, res.Reason)
		}
		lines = append(lines, "", strings.Join(details, "\n"))
	}
	return Panel.BorderForeground(color).Render(strings.Join(lines, "\n"))
}

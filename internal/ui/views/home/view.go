package home

import (
	"fmt"
	"strings"

	"hairly/internal/modules/workflow/dto"
	"hairly/internal/ui/components"
	"hairly/internal/ui/theme"
)

// View renders the dashboard: service health, the current analysis and
// progress at a glance. It holds no state of its own.
func View(snap dto.Snapshot, width int) string {
	var sb strings.Builder
	name := snap.User
	if name == "" {
		name = "there"
	}
	sb.WriteString(theme.Title.Render("Hello, "+name) + "\n")
	sb.WriteString(theme.Muted.Render("Your personalized hair care journey") + "\n\n")

	health := theme.Bad.Render("● " + snap.Health.Label)
	if snap.Health.Online {
		health = theme.Good.Render("● " + snap.Health.Label)
	}
	sb.WriteString(theme.Heading.Render("Service") + "  " + health + "\n")

	session := theme.Muted.Render("none yet, start with an analysis")
	if snap.SessionPresent {
		session = snap.SessionID
	}
	if snap.SessionDegraded {
		session += theme.Hot.Render("  (not saved to disk)")
	}
	sb.WriteString(theme.Heading.Render("Session") + "  " + session + "\n\n")

	if snap.Analysis != nil {
		sb.WriteString(theme.Heading.Render("Hair type") + "  " + snap.Analysis.HairType +
			theme.Muted.Render("  "+snap.Analysis.ConfidenceLabel+" confidence") + "\n")
	}
	barWidth := 30
	if width > 0 && width/3 < barWidth {
		barWidth = width / 3
	}
	sb.WriteString(theme.Heading.Render("Progress") + "   " + components.ProgressBar(snap.ProgressPercent, barWidth) +
		fmt.Sprintf(" %d%%", snap.ProgressPercent) + "\n")
	sb.WriteString(theme.Heading.Render("Active") + "     " + fmt.Sprintf("%d days, %d entries", snap.DaysActive, len(snap.History)) + "\n\n")

	sb.WriteString(theme.Muted.Render("a: analyze hair  p: care plan  t: track progress  L: log out"))
	return theme.Pane.Render(sb.String())
}

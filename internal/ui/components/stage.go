package components

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hairly/internal/modules/workflow/dto"
	apperrors "hairly/internal/platform/errors"
	"hairly/internal/ui/theme"
)

// ResultMsg reports the end of one async orchestrator call. Note is shown in
// the status bar on success.
type ResultMsg struct {
	Op   string
	Note string
	Err  error
}

// Superseded reports whether the result was discarded by the orchestrator
// and must not be surfaced.
func (r ResultMsg) Superseded() bool {
	return errors.Is(r.Err, apperrors.ErrSuperseded)
}

// StageText holds the fixed strings of one stage view.
type StageText struct {
	Loading string
	Empty   string
	Retry   string
}

// Stage renders exactly one of loading, error or content for a stage.
func Stage(status dto.StatusOutput, hasContent bool, spin string, text StageText, content func() string) string {
	switch {
	case status.Loading():
		return spin + " " + text.Loading
	case status.Failed():
		msg := status.Message
		if text.Retry != "" {
			msg += "\n" + theme.Muted.Render(text.Retry)
		}
		return theme.ErrorBanner.Render(msg)
	case !hasContent:
		return theme.Muted.Render(text.Empty)
	}
	return content()
}

// Stars renders a 1..5 rating.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return theme.Hot.Render(strings.Repeat("★", rating)) + theme.Muted.Render(strings.Repeat("☆", 5-rating))
}

// ProgressBar renders pct as a fixed-width bar.
func ProgressBar(pct, width int) string {
	if width < 4 {
		width = 4
	}
	filled := pct * width / 100
	if filled > width {
		filled = width
	}
	return lipgloss.NewStyle().Foreground(theme.Green).Render(strings.Repeat("█", filled)) +
		theme.Muted.Render(strings.Repeat("░", width-filled))
}

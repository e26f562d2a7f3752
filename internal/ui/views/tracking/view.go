package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hairly/internal/modules/workflow/dto"
	"hairly/internal/ui/components"
	"hairly/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	UpdateDraft(input dto.DraftInput)
	SubmitDraft(ctx context.Context, photoURL string) (dto.LogReceiptOutput, error)
	LoadHistory(ctx context.Context) ([]dto.LogOutput, error)
}

const (
	OpHistory = "history"
	OpSubmit  = "submit"
)

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the progress journal: the new-entry form, the history list and
// the local reminders. The draft itself lives in the orchestrator.
type Model struct {
	port  Port
	notes textinput.Model
	width int
}

func New(port Port) Model {
	ti := textinput.New()
	ti.Placeholder = "How does your hair feel today?"
	ti.CharLimit = 500
	return Model{port: port, notes: ti}
}

func (m *Model) SetWidth(w int) {
	m.width = w
	m.notes.Width = w - 12
}

func (m Model) Typing() bool { return m.notes.Focused() }

// Sync mirrors the orchestrator's draft into the field while it is not being
// edited, so a successful submit empties it.
func (m Model) Sync(snap dto.Snapshot) Model {
	if !m.notes.Focused() && m.notes.Value() != snap.Draft.Notes {
		m.notes.SetValue(snap.Draft.Notes)
	}
	return m
}

// LoadCmd refreshes history; the navigator must already be on this stage.
func (m Model) LoadCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		logs, err := port.LoadHistory(context.Background())
		if err != nil {
			return components.ResultMsg{Op: OpHistory, Err: err}
		}
		return components.ResultMsg{Op: OpHistory, Note: fmt.Sprintf("%d journal entries", len(logs))}
	}
}

func (m Model) Update(msg tea.Msg, snap dto.Snapshot) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.notes.Focused() {
		switch key.String() {
		case "esc", "enter":
			m.notes.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		m.port.UpdateDraft(dto.DraftInput{Notes: m.notes.Value(), Rating: snap.Draft.Rating})
		return m, cmd
	}
	switch key.String() {
	case "n", "i":
		cmd := m.notes.Focus()
		return m, cmd
	case "1", "2", "3", "4", "5":
		m.port.UpdateDraft(dto.DraftInput{Notes: snap.Draft.Notes, Rating: int(key.String()[0] - '0')})
		return m, nil
	case "s", "enter":
		if snap.SubmitStatus.Loading() {
			return m, nil
		}
		return m, m.submitCmd()
	case "r":
		if !snap.HistoryStatus.Loading() {
			return m, m.LoadCmd()
		}
	}
	return m, nil
}

func (m Model) submitCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.SubmitDraft(context.Background(), "")
		if err != nil {
			return components.ResultMsg{Op: OpSubmit, Err: err}
		}
		return components.ResultMsg{Op: OpSubmit, Note: out.Message}
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View(snap dto.Snapshot, spin string) string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderProgress(snap),
		"",
		m.renderForm(snap, spin),
		"",
		renderReminders(snap.Reminders),
	)
	right := renderHistory(snap, spin)
	if m.width < 100 {
		return theme.Title.Render("Progress Tracking") + "\n\n" + lipgloss.JoinVertical(lipgloss.Left, left, "", right)
	}
	half := m.width/2 - 2
	return theme.Title.Render("Progress Tracking") + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(left),
		lipgloss.NewStyle().Width(half).PaddingLeft(2).Render(right),
	)
}

func (m Model) renderProgress(snap dto.Snapshot) string {
	return theme.Heading.Render("Overall progress") + "\n" +
		components.ProgressBar(snap.ProgressPercent, 30) + fmt.Sprintf(" %d%%", snap.ProgressPercent) + "\n" +
		theme.Muted.Render(fmt.Sprintf("%d steps done  %d days active", len(snap.CompletedSteps), snap.DaysActive))
}

func (m Model) renderForm(snap dto.Snapshot, spin string) string {
	var sb strings.Builder
	sb.WriteString(theme.Heading.Render("New journal entry") + "\n")
	sb.WriteString(m.notes.View() + "\n")
	sb.WriteString("Rating " + components.Stars(snap.Draft.Rating) + "\n")
	switch {
	case snap.SubmitStatus.Loading():
		sb.WriteString(spin + " Saving…")
	case snap.SubmitStatus.Failed():
		sb.WriteString(theme.ErrorBanner.Render(snap.SubmitStatus.Message + "\n" + theme.Muted.Render("s: try again")))
	case snap.SubmitStatus.Succeeded():
		sb.WriteString(theme.Good.Render("Saved"))
	default:
		sb.WriteString(theme.Muted.Render("n: write notes  1-5: rate  s: save"))
	}
	return theme.Pane.Render(sb.String())
}

func renderReminders(reminders []dto.ReminderOutput) string {
	var sb strings.Builder
	sb.WriteString(theme.Heading.Render("Reminders") + "\n")
	if len(reminders) == 0 {
		sb.WriteString(theme.Muted.Render("none, add one with :reminder:add <time> <title>"))
		return sb.String()
	}
	for _, r := range reminders {
		fmt.Fprintf(&sb, "%s  %s %s\n", theme.Muted.Render(fmt.Sprint(r.ID)), r.Title, theme.Muted.Render(r.Time))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderHistory(snap dto.Snapshot, spin string) string {
	text := components.StageText{
		Loading: "Loading your journal…",
		Empty:   "No journal entries yet.",
		Retry:   "r: retry  d: dismiss",
	}
	hasContent := snap.HistoryLoaded && len(snap.History) > 0
	body := components.Stage(snap.HistoryStatus, hasContent, spin, text, func() string {
		var sb strings.Builder
		for _, entry := range snap.History {
			sb.WriteString(theme.Muted.Render(entry.Date) + "  " + components.Stars(entry.Rating) + "\n")
			sb.WriteString(entry.Notes + "\n")
			if entry.PhotoURL != "" {
				sb.WriteString(theme.Muted.Render(entry.PhotoURL) + "\n")
			}
			sb.WriteString("\n")
		}
		return strings.TrimRight(sb.String(), "\n")
	})
	return theme.Heading.Render("Journal") + "\n" + body
}

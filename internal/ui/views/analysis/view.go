package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hairly/internal/modules/workflow/dto"
	"hairly/internal/ui/components"
	"hairly/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Capture(ctx context.Context, path string) (dto.AnalysisOutput, error)
	Retry()
}

const OpCapture = "analysis"

const previewChars = 48

// ─── model ───────────────────────────────────────────────────────────────────

// Model asks for an image path, then shows the optimistic preview while the
// upload runs and the result once it lands.
type Model struct {
	port  Port
	input textinput.Model
}

func New(port Port) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/hair-photo.jpg"
	ti.CharLimit = 1024
	return Model{port: port, input: ti}
}

// Typing reports whether the path field owns the keyboard.
func (m Model) Typing() bool { return m.input.Focused() }

// Enter focuses the path field when the stage is waiting for an image.
func (m Model) Enter(snap dto.Snapshot) (Model, tea.Cmd) {
	if snap.Analysis == nil && snap.Capture == nil && !snap.Analyze.Loading() && !snap.Analyze.Failed() {
		cmd := m.input.Focus()
		return m, cmd
	}
	m.input.Blur()
	return m, nil
}

func (m Model) Update(msg tea.Msg, snap dto.Snapshot) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.input.Focused() {
		switch key.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.input.Blur()
			return m, m.captureCmd(path)
		case "esc":
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	switch key.String() {
	case "n", "r":
		if snap.Analyze.Loading() {
			return m, nil
		}
		m.port.Retry()
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "i":
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) captureCmd(path string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Capture(context.Background(), path)
		if err != nil {
			return components.ResultMsg{Op: OpCapture, Err: err}
		}
		return components.ResultMsg{Op: OpCapture, Note: "analysis complete: " + out.HairType}
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View(snap dto.Snapshot, spin string) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Hair Analysis") + "\n")
	sb.WriteString(theme.Muted.Render("Upload a clear photo of your hair to get personalized care recommendations") + "\n\n")

	if snap.Capture != nil {
		sb.WriteString(renderCapture(*snap.Capture) + "\n\n")
	}
	text := components.StageText{
		Loading: "Analyzing your hair…",
		Retry:   "r: try another image",
	}
	hasContent := snap.Analysis != nil
	if !hasContent && !snap.Analyze.Loading() && !snap.Analyze.Failed() {
		sb.WriteString(theme.Heading.Render("Image path") + "\n" + m.input.View() + "\n\n")
		sb.WriteString(theme.Muted.Render("For best results, take a clear photo in natural light"))
		return theme.Pane.Render(sb.String())
	}
	sb.WriteString(components.Stage(snap.Analyze, hasContent, spin, text, func() string {
		return renderResult(*snap.Analysis)
	}))
	return theme.Pane.Render(sb.String())
}

func renderCapture(c dto.CaptureOutput) string {
	preview := c.Preview
	if len(preview) > previewChars {
		preview = preview[:previewChars] + "…"
	}
	return theme.Heading.Render("Photo") + "  " + c.FileName +
		theme.Muted.Render(fmt.Sprintf("  %s, %d bytes", c.MIMEType, c.Size)) + "\n" +
		theme.Muted.Render(preview)
}

func renderResult(a dto.AnalysisOutput) string {
	var sb strings.Builder
	sb.WriteString(theme.Heading.Render("Hair type") + "    " + theme.Hot.Render(a.HairType) + "\n")
	sb.WriteString(theme.Heading.Render("Confidence") + "   " + a.ConfidenceLabel + "\n")
	if len(a.Characteristics) > 0 {
		sb.WriteString(theme.Heading.Render("Characteristics") + "\n")
		for _, c := range a.Characteristics {
			sb.WriteString("  • " + c + "\n")
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("p: view care plan  n: new analysis"))
	return sb.String()
}

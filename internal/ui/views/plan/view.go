package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"hairly/internal/modules/workflow/dto"
	"hairly/internal/ui/components"
	"hairly/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	LoadPlan(ctx context.Context) (dto.PlanOutput, error)
	ToggleStep(id int) (bool, error)
	ExportPlan(ctx context.Context) (dto.ExportOutput, error)
}

const (
	OpLoad   = "plan"
	OpToggle = "plan:toggle"
	OpExport = "plan:export"
)

// ─── model ───────────────────────────────────────────────────────────────────

// Model shows the care plan as glamour-rendered markdown with a step cursor.
type Model struct {
	port     Port
	viewport viewport.Model
	renderer *glamour.TermRenderer
	source   string
	cursor   int
	width    int
	height   int
}

func New(port Port) Model {
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{port: port, viewport: viewport.New(0, 0), renderer: r}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 6
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width-4),
	); err == nil {
		m.renderer = r
		m.source = ""
	}
}

// Sync re-renders the markdown when the plan or its checkmarks changed.
func (m Model) Sync(snap dto.Snapshot) Model {
	if snap.Plan == nil {
		m.source = ""
		m.viewport.SetContent("")
		return m
	}
	if m.cursor >= len(snap.Plan.Steps) {
		m.cursor = 0
	}
	source := Markdown(*snap.Plan, m.cursor)
	if source == m.source {
		return m
	}
	m.source = source
	content := source
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(source); err == nil {
			content = rendered
		}
	}
	m.viewport.SetContent(content)
	return m
}

// LoadCmd fetches the plan; the navigator must already be on the plan stage.
func (m Model) LoadCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.LoadPlan(context.Background())
		if err != nil {
			return components.ResultMsg{Op: OpLoad, Err: err}
		}
		return components.ResultMsg{Op: OpLoad, Note: "plan loaded: " + out.Title}
	}
}

func (m Model) Update(msg tea.Msg, snap dto.Snapshot) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	steps := 0
	if snap.Plan != nil {
		steps = len(snap.Plan.Steps)
	}
	switch key.String() {
	case "j", "down":
		if steps > 0 {
			m.cursor = (m.cursor + 1) % steps
			return m.Sync(snap), nil
		}
	case "k", "up":
		if steps > 0 {
			m.cursor = (m.cursor + steps - 1) % steps
			return m.Sync(snap), nil
		}
	case " ", "x":
		if steps > 0 {
			return m, m.toggleCmd(snap.Plan.Steps[m.cursor].ID)
		}
	case "r":
		if !snap.PlanStatus.Loading() {
			return m, m.LoadCmd()
		}
	case "e":
		if snap.Plan != nil {
			return m, m.exportCmd()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) toggleCmd(id int) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		done, err := port.ToggleStep(id)
		note := fmt.Sprintf("step %d reopened", id)
		if done {
			note = fmt.Sprintf("step %d completed", id)
		}
		return components.ResultMsg{Op: OpToggle, Note: note, Err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.ExportPlan(context.Background())
		if err != nil {
			return components.ResultMsg{Op: OpExport, Err: err}
		}
		return components.ResultMsg{Op: OpExport, Note: "plan exported to " + out.Path}
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View(snap dto.Snapshot, spin string) string {
	text := components.StageText{
		Loading: "Loading your care plan…",
		Empty:   "No plan loaded. Press r to load it.",
		Retry:   "r: retry  d: dismiss",
	}
	body := components.Stage(snap.PlanStatus, snap.Plan != nil, spin, text, func() string {
		header := theme.Title.Render(snap.Plan.Title) + theme.Muted.Render("  "+snap.Plan.Duration) + "\n" +
			components.ProgressBar(snap.ProgressPercent, 30) + fmt.Sprintf(" %d%% complete", snap.ProgressPercent)
		footer := theme.Muted.Render(fmt.Sprintf("j/k: select step  space: mark done  e: export  r: reload  %.0f%%", m.viewport.ScrollPercent()*100))
		return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
	})
	if snap.Plan != nil && !snap.PlanStatus.Loading() && !snap.PlanStatus.Failed() {
		return body
	}
	return theme.Title.Render("Care Plan") + "\n\n" + body
}

// Markdown renders the plan as a checklist; the step under cursor is marked.
func Markdown(p dto.PlanOutput, cursor int) string {
	var sb strings.Builder
	for i, step := range p.Steps {
		box := "[ ]"
		if step.Completed {
			box = "[x]"
		}
		pointer := ""
		if i == cursor {
			pointer = " ◀"
		}
		fmt.Fprintf(&sb, "## %s %d. %s%s\n\n", box, step.ID, step.Title, pointer)
		fmt.Fprintf(&sb, "*%s*\n\n%s\n\n", step.Frequency, step.Description)
		if len(step.Products) > 0 {
			sb.WriteString("**Products**\n\n")
			for _, product := range step.Products {
				sb.WriteString("- " + product + "\n")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hairly/internal/modules/workflow/dto"
	apperrors "hairly/internal/platform/errors"
	"hairly/internal/ui/components"
	"hairly/internal/ui/theme"
	analysisview "hairly/internal/ui/views/analysis"
	authview "hairly/internal/ui/views/auth"
	homeview "hairly/internal/ui/views/home"
	planview "hairly/internal/ui/views/plan"
	trackingview "hairly/internal/ui/views/tracking"
)

// ─── port ────────────────────────────────────────────────────────────────────
// Port is everything the root model needs from the orchestrator. Sub-view
// ports are defined in their own packages and narrowed further.

type Port interface {
	authview.Port
	analysisview.Port
	planview.Port
	trackingview.Port

	Navigate(stage string) error
	Logout(ctx context.Context) error
	Health(ctx context.Context) dto.HealthOutput
	AddReminder(input dto.ReminderInput) (dto.ReminderOutput, error)
	RemoveReminder(id int64) error
	DismissError(operation string) error
	Snapshot() dto.Snapshot
}

const (
	screenLogin    = "login"
	screenSignup   = "signup"
	screenHome     = "home"
	screenAnalysis = "analysis"
	screenPlan     = "plan"
	screenTracking = "tracking"
)

var (
	tabScreens = []string{screenHome, screenAnalysis, screenPlan, screenTracking}
	tabLabels  = map[string]string{
		screenHome:     "Home",
		screenAnalysis: "Analysis",
		screenPlan:     "Care Plan",
		screenTracking: "Tracking",
	}
)

// Result ops owned by the root.
const (
	opHealth   = "health"
	opLogout   = "logout"
	opReminder = "reminder"
)

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Home     key.Binding
	Analysis key.Binding
	Plan     key.Binding
	Tracking key.Binding
	Dismiss  key.Binding
	Logout   key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next stage")),
		Home:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Analysis: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analysis")),
		Plan:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "care plan")),
		Tracking: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tracking")),
		Dismiss:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss error")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.Analysis, k.Plan, k.Tracking, k.Tab},
		{k.Dismiss, k.Logout},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes keys to the current stage,
// runs orchestrator calls as commands and re-reads the snapshot after every
// message. Stage state lives in the orchestrator, never here.
type Model struct {
	port Port
	snap dto.Snapshot

	authView     authview.Model
	analysisView analysisview.Model
	planView     planview.Model
	trackView    trackingview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	spinner  spinner.Model
	status   string
	width    int
	height   int
}

func NewModel(port Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Pink)
	m := Model{
		port:         port,
		authView:     authview.New(port),
		analysisView: analysisview.New(port),
		planView:     planview.New(port),
		trackView:    trackingview.New(port),
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(paletteCommands...),
		spinner:      sp,
		status:       "ready",
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.snap.Authenticated {
		cmds = append(cmds, m.healthCmd())
	}
	return tea.Batch(cmds...)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.authView.SetWidth(m.width)
		m.planView.SetSize(m.width-2, m.height-6)
		m.trackView.SetWidth(m.width - 2)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ResultMsg:
		return m.handleResult(msg)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleResult(msg components.ResultMsg) (Model, tea.Cmd) {
	if msg.Superseded() {
		return m, nil
	}
	switch msg.Op {
	case authview.OpLogin, authview.OpSignup:
		if msg.Err != nil {
			m.authView.SetError(msg.Err)
			return m, nil
		}
		m.status = "signed in"
		return m, m.healthCmd()
	case authview.OpSwitch:
		if msg.Err != nil {
			m.authView.SetError(msg.Err)
		}
		return m, nil
	case opLogout:
		if msg.Err != nil {
			m.status = "logout: " + msg.Err.Error()
			return m, nil
		}
		m.authView = authview.New(m.port)
		m.authView.SetWidth(m.width)
		m.status = "signed out"
		return m, nil
	}
	if msg.Err != nil {
		m.status = msg.Op + ": " + apperrors.UserMessage(msg.Err, msg.Err.Error())
		return m, nil
	}
	if msg.Note != "" {
		m.status = msg.Note
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	if !m.snap.Authenticated {
		var cmd tea.Cmd
		m.authView, cmd = m.authView.Update(msg, m.snap.Screen == screenSignup)
		return m, cmd
	}

	// Yield to the stage while one of its fields owns the keyboard.
	if m.typing() {
		return m.routeToStage(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Palette):
		cmd := m.palette.Open()
		return m, cmd
	case msg.String() == "tab":
		return m.goTo(m.cycleScreen(1))
	case msg.String() == "shift+tab":
		return m.goTo(m.cycleScreen(-1))
	case key.Matches(msg, m.keys.Home):
		return m.goTo(screenHome)
	case key.Matches(msg, m.keys.Analysis):
		return m.goTo(screenAnalysis)
	case key.Matches(msg, m.keys.Plan):
		return m.goTo(screenPlan)
	case key.Matches(msg, m.keys.Tracking):
		return m.goTo(screenTracking)
	case key.Matches(msg, m.keys.Logout):
		return m, m.logoutCmd()
	case key.Matches(msg, m.keys.Dismiss):
		if op := m.dismissTarget(); op != "" {
			if err := m.port.DismissError(op); err != nil {
				m.status = "dismiss: " + err.Error()
			}
		}
		return m, nil
	}
	return m.routeToStage(msg)
}

func (m Model) routeToStage(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.snap.Screen {
	case screenAnalysis:
		m.analysisView, cmd = m.analysisView.Update(msg, m.snap)
	case screenPlan:
		m.planView, cmd = m.planView.Update(msg, m.snap)
	case screenTracking:
		m.trackView, cmd = m.trackView.Update(msg, m.snap)
	}
	return m, cmd
}

// goTo moves the navigator and fires the stage's entry load.
func (m Model) goTo(stage string) (Model, tea.Cmd) {
	if err := m.port.Navigate(stage); err != nil {
		m.status = "navigate: " + err.Error()
		return m, nil
	}
	m.refresh()
	switch stage {
	case screenHome:
		return m, m.healthCmd()
	case screenAnalysis:
		var cmd tea.Cmd
		m.analysisView, cmd = m.analysisView.Enter(m.snap)
		return m, cmd
	case screenPlan:
		return m, m.planView.LoadCmd()
	case screenTracking:
		return m, m.trackView.LoadCmd()
	}
	return m, nil
}

func (m Model) cycleScreen(delta int) string {
	idx := 0
	for i, s := range tabScreens {
		if s == m.snap.Screen {
			idx = i
		}
	}
	return tabScreens[(idx+delta+len(tabScreens))%len(tabScreens)]
}

func (m Model) typing() bool {
	switch m.snap.Screen {
	case screenAnalysis:
		return m.analysisView.Typing()
	case screenTracking:
		return m.trackView.Typing()
	}
	return false
}

// dismissTarget names the failed operation shown on the current stage.
func (m Model) dismissTarget() string {
	switch m.snap.Screen {
	case screenAnalysis:
		if m.snap.Analyze.Failed() {
			return "analysis"
		}
	case screenPlan:
		if m.snap.PlanStatus.Failed() {
			return "plan"
		}
	case screenTracking:
		if m.snap.SubmitStatus.Failed() {
			return "submit"
		}
		if m.snap.HistoryStatus.Failed() {
			return "history"
		}
	}
	return ""
}

func (m *Model) refresh() {
	m.snap = m.port.Snapshot()
	m.planView = m.planView.Sync(m.snap)
	m.trackView = m.trackView.Sync(m.snap)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if !m.snap.Authenticated {
		return authview.Center(m.width, m.height, m.authView.View(m.snap.Screen == screenSignup))
	}

	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.NewStyle().Padding(0, 1).Render(m.activeView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	spin := m.spinner.View()
	switch m.snap.Screen {
	case screenHome:
		return homeview.View(m.snap, m.width-2)
	case screenAnalysis:
		return m.analysisView.View(m.snap, spin)
	case screenPlan:
		return m.planView.View(m.snap, spin)
	case screenTracking:
		return m.trackView.View(m.snap, spin)
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, len(tabScreens))
	for i, s := range tabScreens {
		label := tabLabels[s]
		if s == m.snap.Screen {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := theme.Title.Render("hairly") + "  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.snap.User != "" {
		left = theme.Muted.Render(m.snap.User) + "  " + left
	}
	if m.snap.SessionDegraded {
		left = theme.Bad.Render("● storage unavailable") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

var paletteCommands = []components.Command{
	{Name: "go", Args: "<home|analysis|plan|tracking>"},
	{Name: "analyze", Args: "<image path>"},
	{Name: "retry"},
	{Name: "plan:export"},
	{Name: "reminder:add", Args: "<time> <title>"},
	{Name: "reminder:rm", Args: "<id>"},
	{Name: "dismiss", Args: "<analysis|plan|history|submit>"},
	{Name: "health"},
	{Name: "logout"},
}

func usage(name string) string {
	for _, c := range paletteCommands {
		if c.Name == name {
			return "usage: " + c.Usage()
		}
	}
	return "unknown command: " + name
}

func (m Model) executePalette(input string) (Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	if !m.snap.Authenticated {
		m.status = "sign in first"
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "go":
		if len(parts) < 2 {
			m.status = usage(parts[0])
			return m, nil
		}
		return m.goTo(parts[1])

	case "analyze":
		path := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		if path == "" {
			m.status = usage(parts[0])
			return m, nil
		}
		if err := m.port.Navigate(screenAnalysis); err != nil {
			m.status = "navigate: " + err.Error()
			return m, nil
		}
		return m, m.captureCmd(path)

	case "retry":
		m.port.Retry()
		m.status = "ready for a new photo"
		return m.goTo(screenAnalysis)

	case "plan:export":
		if m.snap.Plan == nil {
			m.status = "no plan loaded, open the care plan first"
			return m, nil
		}
		return m, m.exportCmd()

	case "reminder:add":
		if len(parts) < 3 {
			m.status = usage(parts[0])
			return m, nil
		}
		title := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		out, err := m.port.AddReminder(dto.ReminderInput{Title: title, Time: parts[1]})
		if err != nil {
			m.status = opReminder + ": " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("reminder %d set for %s", out.ID, out.Time)
		return m, nil

	case "reminder:rm":
		if len(parts) < 2 {
			m.status = usage(parts[0])
			return m, nil
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			m.status = "invalid reminder id"
			return m, nil
		}
		if err := m.port.RemoveReminder(id); err != nil {
			m.status = opReminder + ": " + err.Error()
			return m, nil
		}
		m.status = "reminder removed"
		return m, nil

	case "dismiss":
		if len(parts) < 2 {
			m.status = usage(parts[0])
			return m, nil
		}
		if err := m.port.DismissError(parts[1]); err != nil {
			m.status = "dismiss: " + err.Error()
		}
		return m, nil

	case "health":
		return m, m.healthCmd()

	case "logout":
		return m, m.logoutCmd()

	default:
		m.status = usage(parts[0])
	}
	return m, nil
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) healthCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		h := port.Health(context.Background())
		return components.ResultMsg{Op: opHealth, Note: "backend " + h.Label}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		return components.ResultMsg{Op: opLogout, Err: port.Logout(context.Background())}
	}
}

func (m Model) captureCmd(path string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Capture(context.Background(), path)
		if err != nil {
			return components.ResultMsg{Op: analysisview.OpCapture, Err: err}
		}
		return components.ResultMsg{Op: analysisview.OpCapture, Note: "analysis complete: " + out.HairType}
	}
}

func (m Model) exportCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.ExportPlan(context.Background())
		if err != nil {
			return components.ResultMsg{Op: planview.OpExport, Err: err}
		}
		return components.ResultMsg{Op: planview.OpExport, Note: "exported " + out.Path}
	}
}

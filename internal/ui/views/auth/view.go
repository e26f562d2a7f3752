package auth

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hairly/internal/modules/workflow/dto"
	apperrors "hairly/internal/platform/errors"
	"hairly/internal/ui/components"
	"hairly/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the orchestrator.
type Port interface {
	Login(input dto.LoginInput) error
	Signup(input dto.SignupInput) error
	ShowSignup() error
	ShowLogin() error
}

// Result ops emitted by this view.
const (
	OpLogin  = "login"
	OpSignup = "signup"
	OpSwitch = "auth:switch"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders both the login and the signup form; which one is decided by
// the navigator's current screen.
type Model struct {
	port   Port
	inputs [3]textinput.Model
	focus  int
	err    string
	width  int
}

func New(port Port) Model {
	var inputs [3]textinput.Model
	for i, placeholder := range []string{"Your name", "you@example.com", "password"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		inputs[i] = ti
	}
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'
	m := Model{port: port, inputs: inputs, focus: fieldEmail}
	m.inputs[fieldEmail].Focus()
	return m
}

func (m *Model) SetWidth(w int) { m.width = w }

// SetError shows a rejected login or signup under the form.
func (m *Model) SetError(err error) {
	m.err = apperrors.UserMessage(err, err.Error())
}

func (m Model) fields(signup bool) []int {
	if signup {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m Model) Update(msg tea.Msg, signup bool) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	fields := m.fields(signup)
	switch key.String() {
	case "tab", "down":
		m.cycle(fields, 1)
		return m, nil
	case "shift+tab", "up":
		m.cycle(fields, -1)
		return m, nil
	case "ctrl+t":
		m.err = ""
		return m, m.switchCmd(signup)
	case "enter":
		m.err = ""
		return m, m.submitCmd(signup)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) cycle(fields []int, delta int) {
	idx := 0
	for i, f := range fields {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	m.inputs[m.focus].Blur()
	m.focus = fields[idx]
	m.inputs[m.focus].Focus()
}

func (m Model) submitCmd(signup bool) tea.Cmd {
	name := m.inputs[fieldName].Value()
	email := m.inputs[fieldEmail].Value()
	password := m.inputs[fieldPassword].Value()
	port := m.port
	if signup {
		return func() tea.Msg {
			return components.ResultMsg{Op: OpSignup, Err: port.Signup(dto.SignupInput{Name: name, Email: email, Password: password})}
		}
	}
	return func() tea.Msg {
		return components.ResultMsg{Op: OpLogin, Err: port.Login(dto.LoginInput{Email: email, Password: password})}
	}
}

func (m Model) switchCmd(signup bool) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if signup {
			return components.ResultMsg{Op: OpSwitch, Err: port.ShowLogin()}
		}
		return components.ResultMsg{Op: OpSwitch, Err: port.ShowSignup()}
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View(signup bool) string {
	var sb strings.Builder
	title := "Welcome back"
	subtitle := "Sign in to continue your hair journey"
	if signup {
		title = "Create your account"
		subtitle = "Start your hair revival journey"
	}
	sb.WriteString(theme.Title.Render(title) + "\n")
	sb.WriteString(theme.Muted.Render(subtitle) + "\n\n")
	labels := map[int]string{fieldName: "Name", fieldEmail: "Email", fieldPassword: "Password"}
	for _, f := range m.fields(signup) {
		label := theme.Muted.Render(labels[f])
		if f == m.focus {
			label = theme.Heading.Render(labels[f])
		}
		sb.WriteString(label + "\n" + m.inputs[f].View() + "\n\n")
	}
	if m.err != "" {
		sb.WriteString(theme.Bad.Render(m.err) + "\n\n")
	}
	hint := "enter: sign in  tab: next field  ctrl+t: create account"
	if signup {
		hint = "enter: sign up  tab: next field  ctrl+t: back to sign in"
	}
	sb.WriteString(theme.Muted.Render(hint))

	w := m.width
	if w < 40 || w > 60 {
		w = 60
	}
	return theme.PaneActive.Width(w).Render(sb.String())
}

// Center places the form in the middle of the screen.
func Center(width, height int, form string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}

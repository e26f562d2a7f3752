package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hairly/internal/modules/workflow/dto"
	apperrors "hairly/internal/platform/errors"
	"hairly/internal/ui/components"
	planview "hairly/internal/ui/views/plan"
)

type fakePort struct {
	mu        sync.Mutex
	snap      dto.Snapshot
	calls     []string
	loginErr  error
	planErr   error
	reminders []dto.ReminderInput
	dismissed []string
}

func newFakePort(screen string) *fakePort {
	return &fakePort{snap: dto.Snapshot{Screen: screen, Authenticated: screen != "login" && screen != "signup"}}
}

func (f *fakePort) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakePort) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakePort) Login(dto.LoginInput) error {
	f.record("login")
	if f.loginErr != nil {
		return f.loginErr
	}
	f.snap.Screen = "home"
	f.snap.Authenticated = true
	return nil
}

func (f *fakePort) Signup(dto.SignupInput) error { f.record("signup"); return nil }
func (f *fakePort) ShowSignup() error            { f.snap.Screen = "signup"; return nil }
func (f *fakePort) ShowLogin() error             { f.snap.Screen = "login"; return nil }

func (f *fakePort) Capture(context.Context, string) (dto.AnalysisOutput, error) {
	f.record("capture")
	return dto.AnalysisOutput{HairType: "4B Coily"}, nil
}

func (f *fakePort) Retry() { f.record("retry") }

func (f *fakePort) LoadPlan(context.Context) (dto.PlanOutput, error) {
	f.record("plan")
	if f.planErr != nil {
		return dto.PlanOutput{}, f.planErr
	}
	return dto.PlanOutput{Title: "Your Routine"}, nil
}

func (f *fakePort) ToggleStep(int) (bool, error) { return true, nil }

func (f *fakePort) ExportPlan(context.Context) (dto.ExportOutput, error) {
	f.record("export")
	return dto.ExportOutput{Path: "/tmp/plan.md"}, nil
}

func (f *fakePort) UpdateDraft(input dto.DraftInput) {
	f.snap.Draft = dto.DraftOutput{Notes: input.Notes, Rating: input.Rating}
}

func (f *fakePort) SubmitDraft(context.Context, string) (dto.LogReceiptOutput, error) {
	f.record("submit")
	return dto.LogReceiptOutput{LogID: "1"}, nil
}

func (f *fakePort) LoadHistory(context.Context) ([]dto.LogOutput, error) {
	f.record("history")
	return nil, nil
}

func (f *fakePort) Navigate(stage string) error {
	switch stage {
	case "home", "analysis", "plan", "tracking":
		f.snap.Screen = stage
		return nil
	}
	return apperrors.ErrInvalidInput
}

func (f *fakePort) Logout(context.Context) error {
	f.record("logout")
	f.snap.Screen = "login"
	f.snap.Authenticated = false
	return nil
}

func (f *fakePort) Health(context.Context) dto.HealthOutput {
	f.record("health")
	return dto.HealthOutput{Online: true, Label: "online"}
}

func (f *fakePort) AddReminder(input dto.ReminderInput) (dto.ReminderOutput, error) {
	f.reminders = append(f.reminders, input)
	return dto.ReminderOutput{ID: 7, Title: input.Title, Time: input.Time, Active: true}, nil
}

func (f *fakePort) RemoveReminder(id int64) error {
	if id != 7 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (f *fakePort) DismissError(op string) error {
	f.dismissed = append(f.dismissed, op)
	return nil
}

func (f *fakePort) Snapshot() dto.Snapshot { return f.snap }

func press(t *testing.T, m tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestLoginSuccessChecksHealth(t *testing.T) {
	t.Parallel()
	port := newFakePort("login")
	var m tea.Model = NewModel(port)

	m, cmd := press(t, m, "enter")
	msg := run(cmd)
	res, ok := msg.(components.ResultMsg)
	if !ok || res.Op != "login" {
		t.Fatalf("enter produced %#v", msg)
	}
	m, cmd = m.Update(res)
	if got := m.(Model).snap.Screen; got != "home" {
		t.Fatalf("screen after login = %q", got)
	}
	health, ok := run(cmd).(components.ResultMsg)
	if !ok || health.Op != opHealth {
		t.Fatalf("expected health result, got %#v", health)
	}
	m, _ = m.Update(health)
	if got := m.(Model).status; got != "backend online" {
		t.Fatalf("status = %q", got)
	}
}

func TestLoginErrorStaysOnForm(t *testing.T) {
	t.Parallel()
	port := newFakePort("login")
	port.loginErr = apperrors.ErrInvalidInput
	var m tea.Model = NewModel(port)

	m, cmd := press(t, m, "enter")
	m, _ = m.Update(run(cmd))
	if m.(Model).snap.Authenticated {
		t.Fatal("expected to remain unauthenticated")
	}
	if !strings.Contains(m.View(), "invalid input") {
		t.Fatalf("login error not rendered:\n%s", m.View())
	}
}

func TestStageKeysNavigateAndLoad(t *testing.T) {
	t.Parallel()
	port := newFakePort("home")
	var m tea.Model = NewModel(port)

	m, cmd := press(t, m, "p")
	if got := m.(Model).snap.Screen; got != "plan" {
		t.Fatalf("screen = %q, want plan", got)
	}
	res := run(cmd).(components.ResultMsg)
	if res.Op != planview.OpLoad || !port.called("plan") {
		t.Fatalf("plan entry load not fired: %#v", res)
	}

	m, cmd = press(t, m, "t")
	run(cmd)
	if !port.called("history") {
		t.Fatal("tracking entry load not fired")
	}

	m, _ = press(t, m, "tab")
	if got := m.(Model).snap.Screen; got != "home" {
		t.Fatalf("tab from tracking = %q, want home", got)
	}
}

func TestSupersededResultIsDropped(t *testing.T) {
	t.Parallel()
	port := newFakePort("home")
	var m tea.Model = NewModel(port)

	m, _ = m.Update(components.ResultMsg{Op: "plan", Err: apperrors.ErrSuperseded})
	if got := m.(Model).status; got != "ready" {
		t.Fatalf("superseded result changed status to %q", got)
	}

	m, _ = m.Update(components.ResultMsg{Op: "plan", Err: &apperrors.ServiceError{Status: 500, Detail: "Plan unavailable"}})
	if got := m.(Model).status; got != "plan: Plan unavailable" {
		t.Fatalf("status = %q", got)
	}
}

func TestDismissTargetsFailedOperation(t *testing.T) {
	t.Parallel()
	port := newFakePort("tracking")
	port.snap.HistoryStatus = dto.StatusOutput{Phase: "error", Message: "boom"}
	var m tea.Model = NewModel(port)

	press(t, m, "d")
	if len(port.dismissed) != 1 || port.dismissed[0] != "history" {
		t.Fatalf("dismissed = %v", port.dismissed)
	}
}

func TestPaletteCommands(t *testing.T) {
	t.Parallel()
	port := newFakePort("home")
	var m tea.Model = NewModel(port)

	m, _ = m.Update(components.PaletteSubmitMsg{Input: "reminder:add 08:00 Deep condition"})
	if len(port.reminders) != 1 || port.reminders[0].Title != "Deep condition" || port.reminders[0].Time != "08:00" {
		t.Fatalf("reminders = %+v", port.reminders)
	}

	m, _ = m.Update(components.PaletteSubmitMsg{Input: "reminder:rm 9"})
	if got := m.(Model).status; !strings.Contains(got, "not found") {
		t.Fatalf("status = %q", got)
	}

	m, cmd := m.Update(components.PaletteSubmitMsg{Input: "analyze /tmp/curls.jpg"})
	if got := m.(Model).snap.Screen; got != "analysis" {
		t.Fatalf("screen = %q", got)
	}
	res := run(cmd).(components.ResultMsg)
	if res.Err != nil || !port.called("capture") {
		t.Fatalf("capture not run: %#v", res)
	}

	m, _ = m.Update(components.PaletteSubmitMsg{Input: "warp 9"})
	if got := m.(Model).status; got != "unknown command: warp" {
		t.Fatalf("status = %q", got)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	t.Parallel()
	port := newFakePort("home")
	var m tea.Model = NewModel(port)

	m, cmd := press(t, m, "L")
	m, _ = m.Update(run(cmd))
	if m.(Model).snap.Authenticated {
		t.Fatal("still authenticated after logout")
	}
	if !strings.Contains(m.View(), "Welcome back") {
		t.Fatal("login form not shown after logout")
	}
}

func TestQuitKeys(t *testing.T) {
	t.Parallel()
	var m tea.Model = NewModel(newFakePort("home"))
	_, cmd := press(t, m, "q")
	if _, ok := run(cmd).(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
	_, cmd = press(t, m, "ctrl+c")
	if _, ok := run(cmd).(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c did not quit")
	}
}

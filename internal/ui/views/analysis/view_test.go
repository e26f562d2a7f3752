package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hairly/internal/modules/workflow/dto"
	"hairly/internal/ui/components"
)

type fakePort struct {
	paths   []string
	retries int
	err     error
}

func (f *fakePort) Capture(_ context.Context, path string) (dto.AnalysisOutput, error) {
	f.paths = append(f.paths, path)
	return dto.AnalysisOutput{HairType: "3C Curly"}, f.err
}

func (f *fakePort) Retry() { f.retries++ }

func TestEnterThenSubmitPathCaptures(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m, _ := New(port).Enter(dto.Snapshot{})
	if !m.Typing() {
		t.Fatal("path field not focused on a fresh stage")
	}
	for _, r := range "curls.png" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, dto.Snapshot{})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}, dto.Snapshot{})
	if m.Typing() {
		t.Fatal("field still focused after submit")
	}
	res := cmd().(components.ResultMsg)
	if res.Op != OpCapture || res.Note != "analysis complete: 3C Curly" {
		t.Fatalf("result = %#v", res)
	}
	if len(port.paths) != 1 || port.paths[0] != "curls.png" {
		t.Fatalf("captured paths = %v", port.paths)
	}
}

func TestEnterKeepsFocusOffWhenResultShown(t *testing.T) {
	t.Parallel()
	m, _ := New(&fakePort{}).Enter(dto.Snapshot{Analysis: &dto.AnalysisOutput{HairType: "4B Coily"}})
	if m.Typing() {
		t.Fatal("path field focused over an existing result")
	}
}

func TestRetryClearsAndRefocuses(t *testing.T) {
	t.Parallel()
	port := &fakePort{err: errors.New("boom")}
	snap := dto.Snapshot{Analyze: dto.StatusOutput{Phase: "error", Message: "Failed to analyze image"}}
	m, _ := New(port).Enter(snap)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, snap)
	if port.retries != 1 || !m.Typing() {
		t.Fatalf("retries=%d typing=%v", port.retries, m.Typing())
	}

	loading := dto.Snapshot{Analyze: dto.StatusOutput{Phase: "loading"}}
	m.input.Blur()
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, loading); cmd != nil || port.retries != 1 {
		t.Fatal("retry allowed while analyzing")
	}
}

func TestViewStates(t *testing.T) {
	t.Parallel()
	m := New(&fakePort{})
	capture := &dto.CaptureOutput{FileName: "curls.png", MIMEType: "image/png", Size: 10, Preview: "data:image/png;base64,AAAA"}

	loading := m.View(dto.Snapshot{Capture: capture, Analyze: dto.StatusOutput{Phase: "loading"}}, "*")
	if !strings.Contains(loading, "curls.png") || !strings.Contains(loading, "Analyzing your hair") {
		t.Fatalf("loading view:\n%s", loading)
	}

	failed := m.View(dto.Snapshot{Analyze: dto.StatusOutput{Phase: "error", Message: "Failed to analyze image"}}, "*")
	if !strings.Contains(failed, "Failed to analyze image") || strings.Contains(failed, "Analyzing") {
		t.Fatalf("error view:\n%s", failed)
	}

	done := m.View(dto.Snapshot{
		Analysis: &dto.AnalysisOutput{HairType: "4B Coily", ConfidenceLabel: "87.0%", Characteristics: []string{"high porosity"}},
		Analyze:  dto.StatusOutput{Phase: "success"},
	}, "*")
	for _, want := range []string{"4B Coily", "87.0%", "high porosity"} {
		if !strings.Contains(done, want) {
			t.Fatalf("result view missing %q:\n%s", want, done)
		}
	}
}

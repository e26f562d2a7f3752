package domain_test

import (
	"reflect"
	"testing"
	"time"

	"hairly/internal/modules/workflow/domain"
)

func TestToggleStepTwiceRestoresSet(t *testing.T) {
	t.Parallel()
	s := domain.NewState()
	s.ToggleStep(2)
	before := s.CompletedSteps()
	for _, id := range []int{1, 2, 3, 4} {
		s.ToggleStep(id)
		s.ToggleStep(id)
		if got := s.CompletedSteps(); !reflect.DeepEqual(got, before) {
			t.Fatalf("toggle twice on %d changed set: %v -> %v", id, before, got)
		}
	}
	if !s.ToggleStep(3) || !s.IsCompleted(3) {
		t.Fatalf("expected step 3 completed after single toggle")
	}
}

func TestReminderIDsStrictlyIncrease(t *testing.T) {
	t.Parallel()
	s := domain.NewState()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	a := s.AddReminder("Deep Conditioning", "Daily at 9:00 AM", now)
	b := s.AddReminder("Cleansing", "Daily at 9:00 AM", now)
	c := s.AddReminder("Moisturize", "Daily at 9:00 AM", now.Add(-time.Second))
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Fatalf("expected increasing ids, got %d %d %d", a.ID, b.ID, c.ID)
	}
	if a.ID != now.UnixMilli() || !a.Active {
		t.Fatalf("expected timestamp id and active reminder, got %+v", a)
	}
	if !s.RemoveReminder(b.ID) || s.RemoveReminder(b.ID) {
		t.Fatalf("expected remove once")
	}
	got := s.Reminders()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Fatalf("unexpected reminders after remove: %+v", got)
	}
}

func TestProgressPercentAndDaysActive(t *testing.T) {
	t.Parallel()
	s := domain.NewState()
	s.ToggleStep(1)
	if got := s.ProgressPercent(); got != 25 {
		t.Fatalf("expected 25%% of default four steps, got %d", got)
	}
	s.SetPlan(domain.PlanResult{Steps: []domain.Step{{ID: 1}, {ID: 2}, {ID: 3}}})
	if got := s.ProgressPercent(); got != 33 {
		t.Fatalf("expected 33%% of three steps, got %d", got)
	}
	s.ReplaceHistory([]domain.ProgressLogEntry{
		{ID: "1", Date: "2026-10-01T08:00:00"},
		{ID: "2", Date: "2026-10-01T20:00:00"},
		{ID: "3", Date: "2026-10-03"},
		{ID: "4"},
	})
	if got := s.DaysActive(); got != 2 {
		t.Fatalf("expected 2 distinct days, got %d", got)
	}
}

func TestStateCopiesDoNotAlias(t *testing.T) {
	t.Parallel()
	s := domain.NewState()
	s.ReplaceHistory([]domain.ProgressLogEntry{{ID: "1", Notes: "soft"}})
	h, loaded := s.History()
	if !loaded {
		t.Fatalf("expected loaded history")
	}
	h[0].Notes = "mutated"
	again, _ := s.History()
	if again[0].Notes != "soft" {
		t.Fatalf("history copy aliased internal state")
	}
	s.SetPlan(domain.PlanResult{Steps: []domain.Step{{ID: 1, Products: []string{"a"}}}})
	p, _ := s.Plan()
	p.Steps[0].Products[0] = "b"
	p2, _ := s.Plan()
	if p2.Steps[0].Products[0] != "a" {
		t.Fatalf("plan copy aliased internal state")
	}
}

func TestStatusLifecycleAndReset(t *testing.T) {
	t.Parallel()
	s := domain.NewState()
	if s.Status(domain.OpPlan).Phase != domain.PhaseIdle {
		t.Fatalf("unknown status must be idle")
	}
	s.SetStatus(domain.OpPlan, domain.Failed("boom"))
	s.DismissError(domain.OpPlan)
	if s.Status(domain.OpPlan).Phase != domain.PhaseIdle {
		t.Fatalf("dismiss must return to idle")
	}
	s.SetStatus(domain.OpPlan, domain.Succeeded())
	s.DismissError(domain.OpPlan)
	if !s.Status(domain.OpPlan).Succeeded() {
		t.Fatalf("dismiss must not touch success")
	}
	s.SetDraft(domain.JournalDraft{Notes: "n", Rating: 3})
	s.ToggleStep(1)
	s.Reset()
	if s.Draft() != (domain.JournalDraft{}) || len(s.CompletedSteps()) != 0 {
		t.Fatalf("reset must clear ephemeral state")
	}
	if _, loaded := s.History(); loaded {
		t.Fatalf("reset must forget history")
	}
}

func TestConfidenceLabelAndHealthLabel(t *testing.T) {
	t.Parallel()
	if got := (domain.AnalysisResult{Confidence: 0.87}).ConfidenceLabel(); got != "87.0%" {
		t.Fatalf("expected 87.0%%, got %s", got)
	}
	if got := (domain.Health{Online: true, Message: "Hello from API"}).Label(); got != "online: Hello from API" {
		t.Fatalf("unexpected label %s", got)
	}
	if got := (domain.Health{Online: true}).Label(); got != "online: ok" {
		t.Fatalf("unexpected label %s", got)
	}
	if got := (domain.Health{}).Label(); got != "offline" {
		t.Fatalf("unexpected label %s", got)
	}
}

func TestClearDraftIfOnlyClearsMatchingDraft(t *testing.T) {
	t.Parallel()
	s := domain.NewState()
	sent := domain.JournalDraft{Notes: "sent", Rating: 3}
	s.SetDraft(domain.JournalDraft{Notes: "sent, then more", Rating: 3})
	if s.ClearDraftIf(sent) {
		t.Fatal("cleared a draft that changed after submit")
	}
	s.SetDraft(sent)
	if !s.ClearDraftIf(sent) || s.Draft() != (domain.JournalDraft{}) {
		t.Fatalf("matching draft not cleared: %+v", s.Draft())
	}
}

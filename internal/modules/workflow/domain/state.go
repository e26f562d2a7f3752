package domain

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultStepCount is used for progress before a plan has been loaded.
const DefaultStepCount = 4

// State is the in-memory workflow aggregate. Server-confirmed results
// (analysis, plan, history) sit next to UI-only bookkeeping (completed steps,
// reminders, the journal draft) that never reaches the server. Each field has
// a single writing controller; the mutex only serialises access across
// goroutines.
type State struct {
	mu sync.RWMutex

	capture  *CaptureImage
	analysis *AnalysisResult
	plan     *PlanResult
	history  []ProgressLogEntry
	loaded   bool

	completed    map[int]struct{}
	reminders    []Reminder
	lastReminder int64
	draft        JournalDraft

	statuses map[Operation]StageStatus
	health   Health
}

func NewState() *State {
	return &State{
		completed: map[int]struct{}{},
		statuses:  map[Operation]StageStatus{},
	}
}

func (s *State) SetCapture(img CaptureImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture = &img
}

func (s *State) ClearCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture = nil
}

func (s *State) Capture() (CaptureImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.capture == nil {
		return CaptureImage{}, false
	}
	return *s.capture, true
}

func (s *State) SetAnalysis(result AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.Characteristics = append([]string(nil), result.Characteristics...)
	s.analysis = &result
}

func (s *State) ClearAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = nil
}

func (s *State) Analysis() (AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analysis == nil {
		return AnalysisResult{}, false
	}
	out := *s.analysis
	out.Characteristics = append([]string(nil), out.Characteristics...)
	return out, true
}

func (s *State) SetPlan(plan PlanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = &plan
}

func (s *State) ClearPlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
}

func (s *State) Plan() (PlanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.plan == nil {
		return PlanResult{}, false
	}
	return clonePlan(*s.plan), true
}

// ReplaceHistory swaps the whole list; history is never merged client-side.
func (s *State) ReplaceHistory(entries []ProgressLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]ProgressLogEntry{}, entries...)
	s.loaded = true
}

func (s *State) History() ([]ProgressLogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ProgressLogEntry{}, s.history...), s.loaded
}

// ToggleStep flips membership of id and reports whether it is now completed.
func (s *State) ToggleStep(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.completed[id]; ok {
		delete(s.completed, id)
		return false
	}
	s.completed[id] = struct{}{}
	return true
}

func (s *State) CompletedSteps() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *State) IsCompleted(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.completed[id]
	return ok
}

// AddReminder ids come from the creation time in milliseconds, bumped when
// needed so they stay strictly increasing.
func (s *State) AddReminder(title, at string, now time.Time) Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := now.UnixMilli()
	if id <= s.lastReminder {
		id = s.lastReminder + 1
	}
	s.lastReminder = id
	r := Reminder{ID: id, Title: title, Time: at, Active: true}
	s.reminders = append(s.reminders, r)
	return r
}

func (s *State) RemoveReminder(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reminders {
		if r.ID == id {
			s.reminders = append(s.reminders[:i:i], s.reminders[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) Reminders() []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Reminder{}, s.reminders...)
}

func (s *State) SetDraft(d JournalDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// ClearDraftIf resets the draft only while it still equals submitted, so
// edits made during a save survive it. It reports whether it cleared.
func (s *State) ClearDraftIf(submitted JournalDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft != submitted {
		return false
	}
	s.draft = JournalDraft{}
	return true
}

func (s *State) Draft() JournalDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *State) SetStatus(op Operation, status StageStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[op] = status
}

func (s *State) Status(op Operation) StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[op]
	if !ok {
		return StageStatus{Phase: PhaseIdle}
	}
	return status
}

// DismissError returns an errored operation to idle.
func (s *State) DismissError(op Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[op].Phase == PhaseError {
		s.statuses[op] = StageStatus{Phase: PhaseIdle}
	}
}

func (s *State) SetHealth(h Health) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = h
}

func (s *State) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// ProgressPercent is the rounded share of plan steps marked complete.
func (s *State) ProgressPercent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := DefaultStepCount
	if s.plan != nil && len(s.plan.Steps) > 0 {
		total = len(s.plan.Steps)
	}
	pct := int(math.Round(float64(len(s.completed)) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// DaysActive counts distinct dates in the loaded history.
func (s *State) DaysActive() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := map[string]struct{}{}
	for _, e := range s.history {
		if e.Date == "" {
			continue
		}
		day := e.Date
		if len(day) >= 10 {
			day = day[:10]
		}
		days[day] = struct{}{}
	}
	return len(days)
}

// Reset drops everything, used when logout is configured to end the journey.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture = nil
	s.analysis = nil
	s.plan = nil
	s.history = nil
	s.loaded = false
	s.completed = map[int]struct{}{}
	s.reminders = nil
	s.draft = JournalDraft{}
	s.statuses = map[Operation]StageStatus{}
}

func clonePlan(p PlanResult) PlanResult {
	steps := make([]Step, len(p.Steps))
	for i, st := range p.Steps {
		st.Products = append([]string{}, st.Products...)
		steps[i] = st
	}
	p.Steps = steps
	return p
}

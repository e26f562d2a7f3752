package dto

import "time"

type LoginInput struct {
	Email    string
	Password string
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type SubmitInput struct {
	Notes    string
	Rating   int
	PhotoURL string
}

type DraftInput struct {
	Notes  string
	Rating int
}

type ReminderInput struct {
	Title string
	Time  string
}

type CaptureOutput struct {
	FileName string
	MIMEType string
	Size     int
	Preview  string
}

type AnalysisOutput struct {
	HairType        string
	Confidence      float64
	ConfidenceLabel string
	Characteristics []string
}

type StepOutput struct {
	ID          int
	Title       string
	Description string
	Frequency   string
	Products    []string
	Completed   bool
}

type PlanOutput struct {
	Title    string
	Duration string
	Steps    []StepOutput
}

type LogOutput struct {
	ID       string
	Date     string
	Notes    string
	Rating   int
	PhotoURL string
}

type LogReceiptOutput struct {
	LogID   string
	Message string
}

type ReminderOutput struct {
	ID     int64
	Title  string
	Time   string
	Active bool
}

type DraftOutput struct {
	Notes  string
	Rating int
}

type HealthOutput struct {
	Online    bool
	Label     string
	CheckedAt time.Time
}

// StatusOutput mirrors one stage status; Phase is idle, loading, error or
// success.
type StatusOutput struct {
	Phase   string
	Message string
}

func (s StatusOutput) Loading() bool   { return s.Phase == "loading" }
func (s StatusOutput) Failed() bool    { return s.Phase == "error" }
func (s StatusOutput) Succeeded() bool { return s.Phase == "success" }

type ExportOutput struct {
	Path  string
	Title string
}

// Snapshot is a read-only copy of everything the presentation renders.
type Snapshot struct {
	Screen          string
	Authenticated   bool
	User            string
	SessionID       string
	SessionPresent  bool
	SessionDegraded bool

	Capture  *CaptureOutput
	Analysis *AnalysisOutput
	Plan     *PlanOutput

	History         []LogOutput
	HistoryLoaded   bool
	Reminders       []ReminderOutput
	Draft           DraftOutput
	CompletedSteps  []int
	ProgressPercent int
	DaysActive      int

	Analyze       StatusOutput
	PlanStatus    StatusOutput
	HistoryStatus StatusOutput
	SubmitStatus  StatusOutput

	Health HealthOutput
}

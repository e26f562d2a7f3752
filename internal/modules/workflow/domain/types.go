package domain

import (
	"fmt"
	"time"
)

// CaptureImage is a locally encoded image. It lives only in memory.
type CaptureImage struct {
	FileName string
	MIMEType string
	Data     []byte
	Preview  string
}

type AnalysisResult struct {
	HairType        string
	Confidence      float64
	Characteristics []string
}

// ConfidenceLabel renders confidence in [0,1] as a one-decimal percentage.
func (a AnalysisResult) ConfidenceLabel() string {
	return fmt.Sprintf("%.1f%%", a.Confidence*100)
}

type Step struct {
	ID          int
	Title       string
	Description string
	Frequency   string
	Products    []string
}

type PlanResult struct {
	Title    string
	Duration string
	Steps    []Step
}

type ProgressLogEntry struct {
	ID       string
	Date     string
	Notes    string
	Rating   int
	PhotoURL string
}

type Reminder struct {
	ID     int64
	Title  string
	Time   string
	Active bool
}

// JournalDraft is the unsaved new-entry form of the tracking screen.
type JournalDraft struct {
	Notes  string
	Rating int
}

// Gateway payloads, already decoded from the wire.

type UploadReceipt struct {
	SessionID string
	Analysis  AnalysisResult
	Message   string
}

type CarePlanPayload struct {
	Routine  map[string]any
	Products []string
	HairType string
}

type LogRequest struct {
	Notes    string
	Rating   int
	PhotoURL string
}

type LogReceipt struct {
	LogID   string
	Message string
}

type HistoryPayload struct {
	Logs      []ProgressLogEntry
	TotalLogs int
	HairType  string
}

type Health struct {
	Online    bool
	Message   string
	CheckedAt time.Time
}

// Label matches the home screen banner: "online: <message>" or "offline".
func (h Health) Label() string {
	if !h.Online {
		return "offline"
	}
	if h.Message == "" {
		return "online: ok"
	}
	return "online: " + h.Message
}

// PlanExport is what gets written when a plan is saved as a note.
type PlanExport struct {
	Plan       PlanResult
	SessionID  string
	HairType   string
	Completed  []int
	ExportedAt time.Time
}

package domain

// Operation names one request/response cycle with its own visible status.
type Operation string

const (
	OpAnalysis Operation = "analysis"
	OpPlan     Operation = "plan"
	OpHistory  Operation = "history"
	OpSubmit   Operation = "submit"
)

var Operations = []Operation{OpAnalysis, OpPlan, OpHistory, OpSubmit}

// FallbackMessage is shown when a failure carries no service detail.
func (o Operation) FallbackMessage() string {
	switch o {
	case OpAnalysis:
		return "Failed to analyze image"
	case OpPlan:
		return "Failed to load care plan"
	case OpHistory:
		return "Failed to load progress history"
	case OpSubmit:
		return "Failed to save progress log"
	}
	return "Request failed"
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseSuccess Phase = "success"
)

// StageStatus is exactly one of idle, loading, error or success; Message is
// only meaningful for errors.
type StageStatus struct {
	Phase   Phase
	Message string
}

func Loading() StageStatus            { return StageStatus{Phase: PhaseLoading} }
func Succeeded() StageStatus          { return StageStatus{Phase: PhaseSuccess} }
func Failed(msg string) StageStatus   { return StageStatus{Phase: PhaseError, Message: msg} }
func (s StageStatus) Loading() bool   { return s.Phase == PhaseLoading }
func (s StageStatus) Failed() bool    { return s.Phase == PhaseError }
func (s StageStatus) Succeeded() bool { return s.Phase == PhaseSuccess }

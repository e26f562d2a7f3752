package in

import (
	"context"

	"hairly/internal/modules/workflow/dto"
)

// Usecase is the orchestrator surface used by the TUI and the CLI. Stage
// names are login, signup, home, analysis, plan and tracking; operation names
// for DismissError are analysis, plan, history and submit.
type Usecase interface {
	Login(input dto.LoginInput) error
	Signup(input dto.SignupInput) error
	ShowSignup() error
	ShowLogin() error
	Logout(ctx context.Context) error
	Navigate(stage string) error
	Enter(ctx context.Context, stage string) error

	Capture(ctx context.Context, path string) (dto.AnalysisOutput, error)
	Retry()
	LoadPlan(ctx context.Context) (dto.PlanOutput, error)
	ToggleStep(id int) (bool, error)
	ExportPlan(ctx context.Context) (dto.ExportOutput, error)

	UpdateDraft(input dto.DraftInput)
	Submit(ctx context.Context, input dto.SubmitInput) (dto.LogReceiptOutput, error)
	SubmitDraft(ctx context.Context, photoURL string) (dto.LogReceiptOutput, error)
	LoadHistory(ctx context.Context) ([]dto.LogOutput, error)
	AddReminder(input dto.ReminderInput) (dto.ReminderOutput, error)
	RemoveReminder(id int64) error

	Health(ctx context.Context) dto.HealthOutput
	DismissError(operation string) error
	Snapshot() dto.Snapshot
}

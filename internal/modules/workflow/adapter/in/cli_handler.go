package in

import (
	"context"

	"hairly/internal/modules/workflow/dto"
	workflowin "hairly/internal/modules/workflow/port/in"
)

// CLIHandler runs one stage at a time for headless commands. Each method
// enters the stage first so stage-active checks hold.
type CLIHandler struct {
	usecase workflowin.Usecase
}

func NewCLIHandler(usecase workflowin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) dto.Snapshot {
	h.usecase.Health(ctx)
	return h.usecase.Snapshot()
}

func (h CLIHandler) Analyze(ctx context.Context, path string) (dto.AnalysisOutput, error) {
	if err := h.usecase.Navigate("analysis"); err != nil {
		return dto.AnalysisOutput{}, err
	}
	return h.usecase.Capture(ctx, path)
}

func (h CLIHandler) ShowPlan(ctx context.Context) (dto.PlanOutput, error) {
	if err := h.usecase.Navigate("plan"); err != nil {
		return dto.PlanOutput{}, err
	}
	return h.usecase.LoadPlan(ctx)
}

func (h CLIHandler) ExportPlan(ctx context.Context) (dto.ExportOutput, error) {
	if err := h.usecase.Navigate("plan"); err != nil {
		return dto.ExportOutput{}, err
	}
	return h.usecase.ExportPlan(ctx)
}

func (h CLIHandler) LogProgress(ctx context.Context, notes string, rating int, photoURL string) (dto.LogReceiptOutput, []dto.LogOutput, error) {
	if err := h.usecase.Navigate("tracking"); err != nil {
		return dto.LogReceiptOutput{}, nil, err
	}
	receipt, err := h.usecase.Submit(ctx, dto.SubmitInput{Notes: notes, Rating: rating, PhotoURL: photoURL})
	if err != nil {
		return dto.LogReceiptOutput{}, nil, err
	}
	return receipt, h.usecase.Snapshot().History, nil
}

func (h CLIHandler) History(ctx context.Context) ([]dto.LogOutput, error) {
	if err := h.usecase.Navigate("tracking"); err != nil {
		return nil, err
	}
	return h.usecase.LoadHistory(ctx)
}

func (h CLIHandler) Snapshot() dto.Snapshot {
	return h.usecase.Snapshot()
}

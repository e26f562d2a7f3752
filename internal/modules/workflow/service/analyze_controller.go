package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sessionin "hairly/internal/modules/session/port/in"
	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
	apperrors "hairly/internal/platform/errors"
)

// AnalyzeController uploads a capture and owns SessionId creation.
type AnalyzeController struct {
	gateway workflowout.Gateway
	session sessionin.Store
	state   *domain.State
	logger  *slog.Logger
	seq     *sequencer
}

func NewAnalyzeController(gateway workflowout.Gateway, session sessionin.Store, state *domain.State, logger *slog.Logger) *AnalyzeController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AnalyzeController{gateway: gateway, session: session, state: state, logger: logger, seq: newSequencer(nil)}
}

func (a *AnalyzeController) Analyze(ctx context.Context, image domain.CaptureImage) (domain.AnalysisResult, error) {
	return a.run(ctx, image, nil)
}

// Reset clears the capture and analysis and orphans any upload in flight.
func (a *AnalyzeController) Reset() {
	a.seq.begin(func() {
		a.state.ClearCapture()
		a.state.ClearAnalysis()
		a.state.SetStatus(domain.OpAnalysis, domain.StageStatus{Phase: domain.PhaseIdle})
	})
}

func (a *AnalyzeController) run(ctx context.Context, image domain.CaptureImage, onBegin func()) (domain.AnalysisResult, error) {
	token := a.seq.begin(func() {
		if onBegin != nil {
			onBegin()
		}
		a.state.SetStatus(domain.OpAnalysis, domain.Loading())
	})
	receipt, err := a.gateway.Upload(ctx, image)
	if err == nil && strings.TrimSpace(receipt.SessionID) == "" {
		err = errors.New("upload response carried no session id")
	}
	if err != nil {
		if applyErr := a.seq.complete(token, func() {
			a.state.ClearAnalysis()
			a.state.ClearCapture()
			a.state.SetStatus(domain.OpAnalysis, domain.Failed(apperrors.UserMessage(err, domain.OpAnalysis.FallbackMessage())))
		}); applyErr != nil {
			return domain.AnalysisResult{}, applyErr
		}
		a.logger.Warn("analysis failed", "file", image.FileName, "err", err)
		return domain.AnalysisResult{}, fmt.Errorf("analyze %s: %w", image.FileName, err)
	}
	if applyErr := a.seq.complete(token, func() {
		a.session.Set(ctx, receipt.SessionID)
		a.state.SetAnalysis(receipt.Analysis)
		a.state.SetStatus(domain.OpAnalysis, domain.Succeeded())
	}); applyErr != nil {
		a.logger.Debug("analysis result discarded", "session_id", receipt.SessionID)
		return domain.AnalysisResult{}, applyErr
	}
	a.logger.Info("analysis complete", "session_id", receipt.SessionID, "hair_type", receipt.Analysis.HairType)
	return receipt.Analysis, nil
}

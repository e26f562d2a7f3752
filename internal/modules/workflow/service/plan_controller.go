package service

import (
	"context"
	"fmt"
	"log/slog"

	sessionin "hairly/internal/modules/session/port/in"
	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
	apperrors "hairly/internal/platform/errors"
)

// PlanController fetches the care plan for the current session. There is no
// cache: every stage entry refetches.
type PlanController struct {
	gateway workflowout.Gateway
	session sessionin.Store
	state   *domain.State
	logger  *slog.Logger
	seq     *sequencer
}

// NewPlanController takes active, which reports whether the plan stage is
// still on screen when a response arrives. A nil active accepts always.
func NewPlanController(gateway workflowout.Gateway, session sessionin.Store, state *domain.State, active func() bool, logger *slog.Logger) *PlanController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PlanController{gateway: gateway, session: session, state: state, logger: logger, seq: newSequencer(active)}
}

func (p *PlanController) LoadPlan(ctx context.Context) (domain.PlanResult, error) {
	token := p.seq.begin(func() { p.state.SetStatus(domain.OpPlan, domain.Loading()) })
	sessionID, ok := p.session.Current()
	if !ok {
		err := apperrors.ErrNoSession
		_ = p.seq.complete(token, func() {
			p.state.SetStatus(domain.OpPlan, domain.Failed(apperrors.UserMessage(err, domain.OpPlan.FallbackMessage())))
		})
		return domain.PlanResult{}, err
	}
	payload, err := p.gateway.CarePlan(ctx, sessionID)
	if err != nil {
		if applyErr := p.seq.complete(token, func() {
			p.state.SetStatus(domain.OpPlan, domain.Failed(apperrors.UserMessage(err, domain.OpPlan.FallbackMessage())))
		}); applyErr != nil {
			return domain.PlanResult{}, applyErr
		}
		p.logger.Warn("care plan failed", "session_id", sessionID, "err", err)
		return domain.PlanResult{}, fmt.Errorf("load plan: %w", err)
	}
	var held *domain.AnalysisResult
	if analysis, ok := p.state.Analysis(); ok {
		held = &analysis
	}
	plan := BuildPlan(payload, held)
	if applyErr := p.seq.complete(token, func() {
		p.state.SetPlan(plan)
		p.state.SetStatus(domain.OpPlan, domain.Succeeded())
	}); applyErr != nil {
		p.logger.Debug("care plan discarded", "session_id", sessionID)
		return domain.PlanResult{}, applyErr
	}
	return plan, nil
}

func (p *PlanController) ToggleStep(id int) bool {
	return p.state.ToggleStep(id)
}

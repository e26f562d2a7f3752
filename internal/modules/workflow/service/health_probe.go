package service

import (
	"context"
	"log/slog"

	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
	"hairly/internal/platform/clock"
)

// HealthProbe pings the service root. It never fails: any error reads as
// offline.
type HealthProbe struct {
	gateway workflowout.Gateway
	state   *domain.State
	clock   clock.Clock
	logger  *slog.Logger
}

func NewHealthProbe(gateway workflowout.Gateway, state *domain.State, clk clock.Clock, logger *slog.Logger) *HealthProbe {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &HealthProbe{gateway: gateway, state: state, clock: clk, logger: logger}
}

func (h *HealthProbe) Check(ctx context.Context) domain.Health {
	health, err := h.gateway.Health(ctx)
	if err != nil {
		h.logger.Debug("service offline", "err", err)
		health = domain.Health{}
	}
	health.CheckedAt = h.clock.Now()
	h.state.SetHealth(health)
	return health
}

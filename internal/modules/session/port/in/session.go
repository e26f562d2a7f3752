package in

import (
	"context"

	"hairly/internal/modules/session/dto"
)

// Store is the process-wide holder of the current session id. Writes never
// fail: when durable storage is unavailable the store keeps the id in memory.
type Store interface {
	Current() (string, bool)
	Set(ctx context.Context, sessionID string)
	Clear(ctx context.Context)
	Degraded() bool
}

type Usecase interface {
	Show(ctx context.Context) (dto.SessionOutput, error)
	Clear(ctx context.Context) (dto.SessionOutput, error)
}

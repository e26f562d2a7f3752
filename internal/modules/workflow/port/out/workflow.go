package out

import (
	"context"

	"hairly/internal/modules/workflow/domain"
)

// Gateway is the remote analysis service. Non-2xx answers are returned as
// *apperrors.ServiceError.
type Gateway interface {
	Upload(ctx context.Context, image domain.CaptureImage) (domain.UploadReceipt, error)
	CarePlan(ctx context.Context, sessionID string) (domain.CarePlanPayload, error)
	LogProgress(ctx context.Context, sessionID string, req domain.LogRequest) (domain.LogReceipt, error)
	History(ctx context.Context, sessionID string) (domain.HistoryPayload, error)
	Health(ctx context.Context) (domain.Health, error)
}

type ImageLoader interface {
	Load(ctx context.Context, path string) (domain.CaptureImage, error)
}

// PlanExporter writes a plan somewhere durable and returns its location.
type PlanExporter interface {
	Export(ctx context.Context, export domain.PlanExport) (string, error)
}

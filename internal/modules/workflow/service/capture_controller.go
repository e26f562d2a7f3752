package service

import (
	"context"
	"fmt"

	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
)

// CaptureController reads an image, shows it immediately and hands it to
// analysis. A failed analysis rolls the preview back.
type CaptureController struct {
	loader  workflowout.ImageLoader
	analyze *AnalyzeController
	state   *domain.State
}

func NewCaptureController(loader workflowout.ImageLoader, analyze *AnalyzeController, state *domain.State) *CaptureController {
	return &CaptureController{loader: loader, analyze: analyze, state: state}
}

func (c *CaptureController) Capture(ctx context.Context, path string) (domain.AnalysisResult, error) {
	image, err := c.loader.Load(ctx, path)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("load image: %w", err)
	}
	return c.analyze.run(ctx, image, func() { c.state.SetCapture(image) })
}

func (c *CaptureController) Retry() {
	c.analyze.Reset()
}

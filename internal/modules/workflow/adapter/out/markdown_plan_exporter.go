package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
	"hairly/internal/platform/markdown"
	"hairly/internal/platform/slug"
)

var stepsBlock = markdown.NewBlock("steps")

const defaultPlanBody = "## Notes\n\n"

type planFrontmatter struct {
	Title      string `yaml:"title"`
	Duration   string `yaml:"duration"`
	HairType   string `yaml:"hair_type,omitempty"`
	SessionID  string `yaml:"session_id,omitempty"`
	Steps      int    `yaml:"steps"`
	Completed  []int  `yaml:"completed"`
	ExportedAt string `yaml:"exported_at"`
}

// MarkdownPlanExporter writes plans as notes under <dir>/<slug>.md. Only the
// managed steps block is regenerated on re-export.
type MarkdownPlanExporter struct {
	dir string
}

func NewMarkdownPlanExporter(dir string) workflowout.PlanExporter {
	return &MarkdownPlanExporter{dir: dir}
}

func (e *MarkdownPlanExporter) Export(_ context.Context, export domain.PlanExport) (string, error) {
	path := filepath.Join(e.dir, slug.Make(export.Plan.Title)+".md")
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create plans directory: %w", err)
	}

	body := defaultPlanBody
	if existing, err := os.ReadFile(path); err == nil {
		if _, existingBody, splitErr := markdown.SplitFrontmatter(string(existing)); splitErr == nil {
			body = existingBody
		}
	}
	body = stepsBlock.Replace(body, RenderSteps(export.Plan, export.Completed))

	meta := planFrontmatter{
		Title:      export.Plan.Title,
		Duration:   export.Plan.Duration,
		HairType:   export.HairType,
		SessionID:  export.SessionID,
		Steps:      len(export.Plan.Steps),
		Completed:  append([]int{}, export.Completed...),
		ExportedAt: export.ExportedAt.UTC().Format(time.RFC3339),
	}
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write plan markdown: %w", err)
	}
	return path, nil
}

// RenderSteps renders plan steps as a markdown checklist.
func RenderSteps(plan domain.PlanResult, completed []int) string {
	done := map[int]bool{}
	for _, id := range completed {
		done[id] = true
	}
	var b strings.Builder
	for _, step := range plan.Steps {
		mark := " "
		if done[step.ID] {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] **%d. %s** (%s)\n", mark, step.ID, step.Title, step.Frequency)
		fmt.Fprintf(&b, "  %s\n", step.Description)
		if len(step.Products) > 0 {
			fmt.Fprintf(&b, "  Products: %s\n", strings.Join(step.Products, ", "))
		}
	}
	return b.String()
}

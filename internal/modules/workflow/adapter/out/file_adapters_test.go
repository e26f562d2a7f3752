package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	workflowadapter "hairly/internal/modules/workflow/adapter/out"
	"hairly/internal/modules/workflow/domain"
	apperrors "hairly/internal/platform/errors"
)

func TestFileImageLoaderBuildsPreview(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hair.png")
	if err := os.WriteFile(path, pngBytes, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	img, err := workflowadapter.NewFileImageLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.FileName != "hair.png" || img.MIMEType != "image/png" {
		t.Fatalf("unexpected image %+v", img)
	}
	if !strings.HasPrefix(img.Preview, "data:image/png;base64,") {
		t.Fatalf("unexpected preview %q", img.Preview)
	}
	empty := filepath.Join(t.TempDir(), "empty.png")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := workflowadapter.NewFileImageLoader().Load(context.Background(), empty); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty file, got %v", err)
	}
}

func TestMarkdownPlanExporterKeepsUserNotes(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "plans")
	exporter := workflowadapter.NewMarkdownPlanExporter(dir)
	export := domain.PlanExport{
		Plan: domain.PlanResult{
			Title:    "4B Coily Hair Revival Plan",
			Duration: "8 weeks",
			Steps: []domain.Step{
				{ID: 1, Title: "Weekly Deep Conditioning", Description: "Mask", Frequency: "2x per week", Products: []string{"A"}},
				{ID: 2, Title: "Gentle Cleansing", Description: "Co-wash", Frequency: "1x per week"},
			},
		},
		SessionID:  "s1",
		HairType:   "4B Coily",
		ExportedAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}
	path, err := exporter.Export(context.Background(), export)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "4b-coily-hair-revival-plan.md" {
		t.Fatalf("unexpected path %s", path)
	}
	raw, _ := os.ReadFile(path)
	edited := strings.Replace(string(raw), "## Notes\n", "## Notes\nscalp felt itchy in week 2\n", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit: %v", err)
	}

	export.Completed = []int{2}
	if _, err := exporter.Export(context.Background(), export); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	raw, _ = os.ReadFile(path)
	content := string(raw)
	for _, want := range []string{"scalp felt itchy in week 2", "- [x] **2. Gentle Cleansing**", "- [ ] **1. Weekly Deep Conditioning**", "session_id: s1", "completed:\n    - 2"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in export:\n%s", want, content)
		}
	}
}

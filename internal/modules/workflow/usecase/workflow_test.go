package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"hairly/internal/modules/workflow/domain"
	"hairly/internal/modules/workflow/dto"
	workflowin "hairly/internal/modules/workflow/port/in"
	"hairly/internal/modules/workflow/usecase"
	"hairly/internal/platform/clock"
	apperrors "hairly/internal/platform/errors"
)

type memorySession struct {
	mu sync.Mutex
	id string
}

func (m *memorySession) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.id != ""
}
func (m *memorySession) Set(_ context.Context, id string) { m.mu.Lock(); m.id = id; m.mu.Unlock() }
func (m *memorySession) Clear(context.Context)            { m.mu.Lock(); m.id = ""; m.mu.Unlock() }
func (m *memorySession) Degraded() bool                   { return false }

// scriptedGateway answers like the real service for one session. planGate,
// when set, blocks CarePlan until it is closed.
type scriptedGateway struct {
	mu       sync.Mutex
	logs     []domain.ProgressLogEntry
	calls    map[string]int
	planGate chan struct{}
	planHit  chan struct{}
	failLog  error
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{calls: map[string]int{}}
}

func (g *scriptedGateway) hit(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[name]++
}

func (g *scriptedGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *scriptedGateway) Upload(context.Context, domain.CaptureImage) (domain.UploadReceipt, error) {
	g.hit("upload")
	return domain.UploadReceipt{
		SessionID: "s1",
		Analysis:  domain.AnalysisResult{HairType: "4B Coily", Confidence: 0.87, Characteristics: []string{"high porosity"}},
	}, nil
}

func (g *scriptedGateway) CarePlan(context.Context, string) (domain.CarePlanPayload, error) {
	g.hit("plan")
	if g.planHit != nil {
		close(g.planHit)
	}
	if g.planGate != nil {
		<-g.planGate
	}
	return domain.CarePlanPayload{Products: []string{"A", "B", "C", "D"}, HairType: "4B Coily"}, nil
}

func (g *scriptedGateway) LogProgress(_ context.Context, _ string, req domain.LogRequest) (domain.LogReceipt, error) {
	g.hit("log")
	if g.failLog != nil {
		return domain.LogReceipt{}, g.failLog
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	id := "log-" + strconv.Itoa(len(g.logs)+1)
	g.logs = append(g.logs, domain.ProgressLogEntry{ID: id, Date: "2026-10-17", Notes: req.Notes, Rating: req.Rating})
	return domain.LogReceipt{LogID: id, Message: "Progress logged successfully"}, nil
}

func (g *scriptedGateway) History(context.Context, string) (domain.HistoryPayload, error) {
	g.hit("history")
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.HistoryPayload{Logs: append([]domain.ProgressLogEntry{}, g.logs...), TotalLogs: len(g.logs)}, nil
}

func (g *scriptedGateway) Health(context.Context) (domain.Health, error) {
	g.hit("health")
	return domain.Health{Online: true, Message: "Hair Analysis API"}, nil
}

type stubLoader struct{}

func (stubLoader) Load(_ context.Context, path string) (domain.CaptureImage, error) {
	return domain.CaptureImage{FileName: path, MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}, Preview: "data:image/jpeg;base64,/9g="}, nil
}

type recordingExporter struct {
	got []domain.PlanExport
}

func (r *recordingExporter) Export(_ context.Context, export domain.PlanExport) (string, error) {
	r.got = append(r.got, export)
	return "/tmp/plans/plan.md", nil
}

func newInteractor(t *testing.T, gw *scriptedGateway, session *memorySession, clearOnLogout bool) (workflowin.Usecase, *recordingExporter) {
	t.Helper()
	exporter := &recordingExporter{}
	uc := usecase.NewInteractor(usecase.Dependencies{
		Session:             session,
		Gateway:             gw,
		Loader:              stubLoader{},
		Exporter:            exporter,
		Clock:               clock.Fixed{At: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)},
		LogoutClearsSession: clearOnLogout,
	})
	return uc, exporter
}

func TestJourneyFromLoginToTracking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newScriptedGateway()
	session := &memorySession{}
	uc, exporter := newInteractor(t, gw, session, false)

	if err := uc.Enter(ctx, "plan"); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
	if err := uc.Login(dto.LoginInput{Email: "amara@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := uc.Enter(ctx, "home"); err != nil {
		t.Fatalf("enter home: %v", err)
	}
	if got := uc.Snapshot().Health.Label; got != "online: Hair Analysis API" {
		t.Fatalf("unexpected health label %q", got)
	}
	if err := uc.Enter(ctx, "analysis"); err != nil {
		t.Fatalf("enter analysis: %v", err)
	}
	analysis, err := uc.Capture(ctx, "hair.jpg")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if analysis.ConfidenceLabel != "87.0%" {
		t.Fatalf("unexpected confidence %s", analysis.ConfidenceLabel)
	}
	if err := uc.Enter(ctx, "plan"); err != nil {
		t.Fatalf("enter plan: %v", err)
	}
	if on, err := uc.ToggleStep(2); err != nil || !on {
		t.Fatalf("toggle: %v %v", on, err)
	}
	if _, err := uc.ToggleStep(9); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown step, got %v", err)
	}
	out, err := uc.ExportPlan(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Title != "4B Coily Hair Revival Plan" || len(exporter.got) != 1 || exporter.got[0].SessionID != "s1" {
		t.Fatalf("unexpected export %+v %+v", out, exporter.got)
	}
	if err := uc.Enter(ctx, "tracking"); err != nil {
		t.Fatalf("enter tracking: %v", err)
	}
	uc.UpdateDraft(dto.DraftInput{Notes: "less breakage", Rating: 4})
	if _, err := uc.SubmitDraft(ctx, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := uc.Snapshot()
	if snap.Screen != "tracking" || snap.SessionID != "s1" {
		t.Fatalf("unexpected snapshot header %+v", snap)
	}
	if snap.Plan == nil || !snap.Plan.Steps[1].Completed || snap.ProgressPercent != 25 {
		t.Fatalf("unexpected plan progress %+v %d", snap.Plan, snap.ProgressPercent)
	}
	if len(snap.History) != 1 || snap.History[0].Notes != "less breakage" || snap.DaysActive != 1 {
		t.Fatalf("unexpected history %+v", snap.History)
	}
	if snap.Draft != (dto.DraftOutput{}) || !snap.SubmitStatus.Succeeded() {
		t.Fatalf("expected cleared draft and success, got %+v %+v", snap.Draft, snap.SubmitStatus)
	}
	if gw.count("history") != 2 {
		t.Fatalf("expected entry load plus one reload, got %d", gw.count("history"))
	}
}

func TestPlanDiscardedAfterLeavingStage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newScriptedGateway()
	gw.planGate = make(chan struct{})
	gw.planHit = make(chan struct{})
	uc, _ := newInteractor(t, gw, &memorySession{id: "s1"}, false)
	if err := uc.Login(dto.LoginInput{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- uc.Enter(ctx, "plan") }()
	<-gw.planHit
	if err := uc.Navigate("home"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	close(gw.planGate)
	if err := <-done; !errors.Is(err, apperrors.ErrSuperseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
	if uc.Snapshot().Plan != nil {
		t.Fatalf("plan must not be applied after leaving the stage")
	}
}

func TestLogoutPolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for _, clearOnLogout := range []bool{false, true} {
		gw := newScriptedGateway()
		session := &memorySession{}
		uc, _ := newInteractor(t, gw, session, clearOnLogout)
		if err := uc.Login(dto.LoginInput{Email: "a@b.c", Password: "pw"}); err != nil {
			t.Fatalf("login: %v", err)
		}
		if _, err := uc.Capture(ctx, "hair.jpg"); err != nil {
			t.Fatalf("capture: %v", err)
		}
		if err := uc.Logout(ctx); err != nil {
			t.Fatalf("logout: %v", err)
		}
		snap := uc.Snapshot()
		if snap.Screen != "login" || snap.Authenticated {
			t.Fatalf("expected login screen after logout, got %+v", snap)
		}
		if clearOnLogout && (snap.SessionPresent || snap.Analysis != nil) {
			t.Fatalf("clearing logout must drop session and state")
		}
		if !clearOnLogout && (!snap.SessionPresent || snap.Analysis == nil) {
			t.Fatalf("keeping logout must retain session and state")
		}
		if err := uc.Logout(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Fatalf("second logout must be rejected, got %v", err)
		}
	}
}

func TestLoginRequiresCredentialsAndSignupFlow(t *testing.T) {
	t.Parallel()
	uc, _ := newInteractor(t, newScriptedGateway(), &memorySession{}, false)
	if err := uc.Login(dto.LoginInput{Email: "", Password: "pw"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := uc.ShowLogin(); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("show login from login must be rejected, got %v", err)
	}
	if err := uc.ShowSignup(); err != nil {
		t.Fatalf("show signup: %v", err)
	}
	if err := uc.Signup(dto.SignupInput{Name: "Amara", Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	snap := uc.Snapshot()
	if snap.Screen != "home" || snap.User != "a@b.c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if err := uc.Navigate("signup"); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("authenticated user cannot go to signup, got %v", err)
	}
	if err := uc.Navigate("profile"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown stage must be invalid input, got %v", err)
	}
}

func TestSubmitFailureSurfacesDetailAndDismisses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newScriptedGateway()
	gw.failLog = &apperrors.ServiceError{Status: 404, Detail: "session expired"}
	uc, _ := newInteractor(t, gw, &memorySession{id: "s1"}, false)
	uc.UpdateDraft(dto.DraftInput{Notes: "frizz", Rating: 3})
	if _, err := uc.SubmitDraft(ctx, ""); err == nil {
		t.Fatalf("expected failure")
	}
	snap := uc.Snapshot()
	if snap.SubmitStatus.Message != "session expired" || snap.Draft.Notes != "frizz" {
		t.Fatalf("unexpected state %+v %+v", snap.SubmitStatus, snap.Draft)
	}
	if err := uc.DismissError("submit"); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if uc.Snapshot().SubmitStatus.Phase != "idle" {
		t.Fatalf("expected idle after dismiss")
	}
	if err := uc.DismissError("bogus"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

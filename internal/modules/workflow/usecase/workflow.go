package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sessionin "hairly/internal/modules/session/port/in"
	"hairly/internal/modules/workflow/domain"
	"hairly/internal/modules/workflow/dto"
	workflowin "hairly/internal/modules/workflow/port/in"
	workflowout "hairly/internal/modules/workflow/port/out"
	"hairly/internal/modules/workflow/service"
	"hairly/internal/platform/clock"
	apperrors "hairly/internal/platform/errors"
)

type Dependencies struct {
	Navigator *domain.Navigator
	Session   sessionin.Store
	Gateway   workflowout.Gateway
	Loader    workflowout.ImageLoader
	Exporter  workflowout.PlanExporter
	Clock     clock.Clock
	Logger    *slog.Logger
	// LogoutClearsSession ends the journey on logout: the session id and all
	// workflow state are dropped.
	LogoutClearsSession bool
}

// Interactor is the orchestrator. It owns the navigator and the workflow
// state and routes every presentation request to the stage controllers.
type Interactor struct {
	navMu sync.RWMutex
	nav   *domain.Navigator

	state   *domain.State
	session sessionin.Store
	capture *service.CaptureController
	analyze *service.AnalyzeController
	plan    *service.PlanController
	track   *service.TrackController
	health  *service.HealthProbe

	exporter      workflowout.PlanExporter
	clock         clock.Clock
	logger        *slog.Logger
	clearOnLogout bool
}

func NewInteractor(deps Dependencies) workflowin.Usecase {
	if deps.Navigator == nil {
		deps.Navigator = domain.NewNavigator()
	}
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	i := &Interactor{
		nav:           deps.Navigator,
		state:         domain.NewState(),
		session:       deps.Session,
		exporter:      deps.Exporter,
		clock:         deps.Clock,
		logger:        deps.Logger,
		clearOnLogout: deps.LogoutClearsSession,
	}
	i.analyze = service.NewAnalyzeController(deps.Gateway, deps.Session, i.state, deps.Logger)
	i.capture = service.NewCaptureController(deps.Loader, i.analyze, i.state)
	i.plan = service.NewPlanController(deps.Gateway, deps.Session, i.state, i.onScreen(domain.ScreenPlan), deps.Logger)
	i.track = service.NewTrackController(deps.Gateway, deps.Session, i.state, deps.Clock, i.onScreen(domain.ScreenTracking), deps.Logger)
	i.health = service.NewHealthProbe(deps.Gateway, i.state, deps.Clock, deps.Logger)
	return i
}

func (i *Interactor) onScreen(screen domain.Screen) func() bool {
	return func() bool {
		i.navMu.RLock()
		defer i.navMu.RUnlock()
		return i.nav.Current() == screen
	}
}

func (i *Interactor) Login(input dto.LoginInput) error {
	i.navMu.Lock()
	defer i.navMu.Unlock()
	return i.nav.Login(input.Email, input.Password)
}

func (i *Interactor) Signup(input dto.SignupInput) error {
	i.navMu.Lock()
	defer i.navMu.Unlock()
	return i.nav.Signup(input.Name, input.Email, input.Password)
}

func (i *Interactor) ShowSignup() error {
	i.navMu.Lock()
	defer i.navMu.Unlock()
	return i.nav.ShowSignup()
}

func (i *Interactor) ShowLogin() error {
	i.navMu.Lock()
	defer i.navMu.Unlock()
	return i.nav.ShowLogin()
}

func (i *Interactor) Logout(ctx context.Context) error {
	i.navMu.Lock()
	err := i.nav.Logout()
	i.navMu.Unlock()
	if err != nil {
		return err
	}
	if i.clearOnLogout {
		i.capture.Retry()
		i.session.Clear(ctx)
		i.state.Reset()
		i.logger.Info("logged out, session cleared")
		return nil
	}
	i.logger.Info("logged out, session kept")
	return nil
}

func (i *Interactor) Navigate(stage string) error {
	screen, err := domain.ParseScreen(stage)
	if err != nil {
		return err
	}
	i.navMu.Lock()
	defer i.navMu.Unlock()
	return i.nav.Go(screen)
}

// Enter navigates and then runs the stage's entry loads.
func (i *Interactor) Enter(ctx context.Context, stage string) error {
	screen, err := domain.ParseScreen(stage)
	if err != nil {
		return err
	}
	i.navMu.Lock()
	err = i.nav.Go(screen)
	i.navMu.Unlock()
	if err != nil {
		return err
	}
	switch screen {
	case domain.ScreenHome:
		i.health.Check(ctx)
	case domain.ScreenPlan:
		_, err := i.plan.LoadPlan(ctx)
		return err
	case domain.ScreenTracking:
		_, err := i.track.LoadHistory(ctx)
		return err
	}
	return nil
}

func (i *Interactor) Capture(ctx context.Context, path string) (dto.AnalysisOutput, error) {
	result, err := i.capture.Capture(ctx, path)
	if err != nil {
		return dto.AnalysisOutput{}, err
	}
	return toAnalysisOutput(result), nil
}

func (i *Interactor) Retry() {
	i.capture.Retry()
}

func (i *Interactor) LoadPlan(ctx context.Context) (dto.PlanOutput, error) {
	plan, err := i.plan.LoadPlan(ctx)
	if err != nil {
		return dto.PlanOutput{}, err
	}
	return i.toPlanOutput(plan), nil
}

// ToggleStep accepts ids of the loaded plan, or the default step range when
// no plan has been loaded yet.
func (i *Interactor) ToggleStep(id int) (bool, error) {
	if plan, ok := i.state.Plan(); ok {
		found := false
		for _, step := range plan.Steps {
			if step.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Errorf("%w: step %d", apperrors.ErrNotFound, id)
		}
	} else if id < 1 || id > domain.DefaultStepCount {
		return false, fmt.Errorf("%w: step %d", apperrors.ErrNotFound, id)
	}
	return i.plan.ToggleStep(id), nil
}

func (i *Interactor) ExportPlan(ctx context.Context) (dto.ExportOutput, error) {
	if i.exporter == nil {
		return dto.ExportOutput{}, fmt.Errorf("%w: plan export is not configured", apperrors.ErrInvalidInput)
	}
	plan, ok := i.state.Plan()
	if !ok {
		loaded, err := i.plan.LoadPlan(ctx)
		if err != nil {
			return dto.ExportOutput{}, err
		}
		plan = loaded
	}
	export := domain.PlanExport{
		Plan:       plan,
		Completed:  i.state.CompletedSteps(),
		ExportedAt: i.clock.Now(),
	}
	export.SessionID, _ = i.session.Current()
	if analysis, ok := i.state.Analysis(); ok {
		export.HairType = analysis.HairType
	}
	path, err := i.exporter.Export(ctx, export)
	if err != nil {
		return dto.ExportOutput{}, fmt.Errorf("export plan: %w", err)
	}
	i.logger.Info("plan exported", "path", path)
	return dto.ExportOutput{Path: path, Title: plan.Title}, nil
}

func (i *Interactor) UpdateDraft(input dto.DraftInput) {
	i.track.UpdateDraft(domain.JournalDraft{Notes: input.Notes, Rating: input.Rating})
}

func (i *Interactor) Submit(ctx context.Context, input dto.SubmitInput) (dto.LogReceiptOutput, error) {
	receipt, err := i.track.Submit(ctx, domain.LogRequest{Notes: input.Notes, Rating: input.Rating, PhotoURL: input.PhotoURL})
	if err != nil {
		return dto.LogReceiptOutput{}, err
	}
	return dto.LogReceiptOutput{LogID: receipt.LogID, Message: receipt.Message}, nil
}

func (i *Interactor) SubmitDraft(ctx context.Context, photoURL string) (dto.LogReceiptOutput, error) {
	receipt, err := i.track.SubmitDraft(ctx, photoURL)
	if err != nil {
		return dto.LogReceiptOutput{}, err
	}
	return dto.LogReceiptOutput{LogID: receipt.LogID, Message: receipt.Message}, nil
}

func (i *Interactor) LoadHistory(ctx context.Context) ([]dto.LogOutput, error) {
	logs, err := i.track.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	return toLogOutputs(logs), nil
}

func (i *Interactor) AddReminder(input dto.ReminderInput) (dto.ReminderOutput, error) {
	r, err := i.track.AddReminder(input.Title, input.Time)
	if err != nil {
		return dto.ReminderOutput{}, err
	}
	return dto.ReminderOutput{ID: r.ID, Title: r.Title, Time: r.Time, Active: r.Active}, nil
}

func (i *Interactor) RemoveReminder(id int64) error {
	return i.track.RemoveReminder(id)
}

func (i *Interactor) Health(ctx context.Context) dto.HealthOutput {
	return toHealthOutput(i.health.Check(ctx))
}

func (i *Interactor) DismissError(operation string) error {
	for _, op := range domain.Operations {
		if string(op) == operation {
			i.state.DismissError(op)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown operation %q", apperrors.ErrInvalidInput, operation)
}

func (i *Interactor) Snapshot() dto.Snapshot {
	i.navMu.RLock()
	snap := dto.Snapshot{
		Screen:        string(i.nav.Current()),
		Authenticated: i.nav.Authenticated(),
		User:          i.nav.User(),
	}
	i.navMu.RUnlock()

	snap.SessionID, snap.SessionPresent = i.session.Current()
	snap.SessionDegraded = i.session.Degraded()
	if img, ok := i.state.Capture(); ok {
		snap.Capture = &dto.CaptureOutput{FileName: img.FileName, MIMEType: img.MIMEType, Size: len(img.Data), Preview: img.Preview}
	}
	if analysis, ok := i.state.Analysis(); ok {
		out := toAnalysisOutput(analysis)
		snap.Analysis = &out
	}
	if plan, ok := i.state.Plan(); ok {
		out := i.toPlanOutput(plan)
		snap.Plan = &out
	}
	history, loaded := i.state.History()
	snap.History = toLogOutputs(history)
	snap.HistoryLoaded = loaded
	for _, r := range i.state.Reminders() {
		snap.Reminders = append(snap.Reminders, dto.ReminderOutput{ID: r.ID, Title: r.Title, Time: r.Time, Active: r.Active})
	}
	draft := i.state.Draft()
	snap.Draft = dto.DraftOutput{Notes: draft.Notes, Rating: draft.Rating}
	snap.CompletedSteps = i.state.CompletedSteps()
	snap.ProgressPercent = i.state.ProgressPercent()
	snap.DaysActive = i.state.DaysActive()
	snap.Analyze = toStatusOutput(i.state.Status(domain.OpAnalysis))
	snap.PlanStatus = toStatusOutput(i.state.Status(domain.OpPlan))
	snap.HistoryStatus = toStatusOutput(i.state.Status(domain.OpHistory))
	snap.SubmitStatus = toStatusOutput(i.state.Status(domain.OpSubmit))
	snap.Health = toHealthOutput(i.state.Health())
	return snap
}

func (i *Interactor) toPlanOutput(plan domain.PlanResult) dto.PlanOutput {
	out := dto.PlanOutput{Title: plan.Title, Duration: plan.Duration}
	for _, step := range plan.Steps {
		out.Steps = append(out.Steps, dto.StepOutput{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			Frequency:   step.Frequency,
			Products:    step.Products,
			Completed:   i.state.IsCompleted(step.ID),
		})
	}
	return out
}

func toAnalysisOutput(a domain.AnalysisResult) dto.AnalysisOutput {
	return dto.AnalysisOutput{
		HairType:        a.HairType,
		Confidence:      a.Confidence,
		ConfidenceLabel: a.ConfidenceLabel(),
		Characteristics: a.Characteristics,
	}
}

func toLogOutputs(entries []domain.ProgressLogEntry) []dto.LogOutput {
	out := make([]dto.LogOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LogOutput{ID: e.ID, Date: e.Date, Notes: e.Notes, Rating: e.Rating, PhotoURL: e.PhotoURL})
	}
	return out
}

func toStatusOutput(s domain.StageStatus) dto.StatusOutput {
	return dto.StatusOutput{Phase: string(s.Phase), Message: s.Message}
}

func toHealthOutput(h domain.Health) dto.HealthOutput {
	return dto.HealthOutput{Online: h.Online, Label: h.Label(), CheckedAt: h.CheckedAt}
}

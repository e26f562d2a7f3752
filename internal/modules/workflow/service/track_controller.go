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
	"hairly/internal/platform/clock"
	apperrors "hairly/internal/platform/errors"
)

const (
	MinRating = 1
	MaxRating = 5
)

// TrackController owns the progress journal: submitting entries, loading
// history, the unsaved draft and local reminders.
type TrackController struct {
	gateway workflowout.Gateway
	session sessionin.Store
	state   *domain.State
	clock   clock.Clock
	logger  *slog.Logger
	history *sequencer
	submit  *sequencer
}

// NewTrackController takes active, which reports whether the tracking stage
// is still on screen when a history response arrives.
func NewTrackController(gateway workflowout.Gateway, session sessionin.Store, state *domain.State, clk clock.Clock, active func() bool, logger *slog.Logger) *TrackController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &TrackController{
		gateway: gateway,
		session: session,
		state:   state,
		clock:   clk,
		logger:  logger,
		history: newSequencer(active),
		submit:  newSequencer(nil),
	}
}

// ValidateLog checks a log request locally, before any network call.
func ValidateLog(req domain.LogRequest) error {
	if strings.TrimSpace(req.Notes) == "" {
		return fmt.Errorf("%w: notes are required", apperrors.ErrInvalidInput)
	}
	if req.Rating < MinRating || req.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", apperrors.ErrInvalidInput, MinRating, MaxRating)
	}
	return nil
}

// Submit posts one journal entry. A success clears the draft, unless it was
// edited while the request was in flight, and reloads history exactly once;
// a failure leaves both untouched. The submit result
// itself is never discarded, only its status write can be superseded.
func (t *TrackController) Submit(ctx context.Context, req domain.LogRequest) (domain.LogReceipt, error) {
	sessionID, ok := t.session.Current()
	if !ok {
		return domain.LogReceipt{}, t.rejectSubmit(apperrors.ErrNoSession)
	}
	if err := ValidateLog(req); err != nil {
		return domain.LogReceipt{}, t.rejectSubmit(err)
	}
	submitted := domain.JournalDraft{Notes: req.Notes, Rating: req.Rating}
	req.Notes = strings.TrimSpace(req.Notes)
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)

	token := t.submit.begin(func() { t.state.SetStatus(domain.OpSubmit, domain.Loading()) })
	receipt, err := t.gateway.LogProgress(ctx, sessionID, req)
	if err != nil {
		_ = t.submit.complete(token, func() {
			t.state.SetStatus(domain.OpSubmit, domain.Failed(apperrors.UserMessage(err, domain.OpSubmit.FallbackMessage())))
		})
		t.logger.Warn("progress log failed", "session_id", sessionID, "err", err)
		return domain.LogReceipt{}, fmt.Errorf("submit progress: %w", err)
	}
	t.state.ClearDraftIf(submitted)
	_ = t.submit.complete(token, func() { t.state.SetStatus(domain.OpSubmit, domain.Succeeded()) })
	t.logger.Info("progress logged", "session_id", sessionID, "log_id", receipt.LogID)

	if _, err := t.LoadHistory(ctx); err != nil && !errors.Is(err, apperrors.ErrSuperseded) {
		t.logger.Warn("history reload after submit failed", "err", err)
	}
	return receipt, nil
}

// SubmitDraft submits the current draft with an optional photo URL.
func (t *TrackController) SubmitDraft(ctx context.Context, photoURL string) (domain.LogReceipt, error) {
	draft := t.state.Draft()
	return t.Submit(ctx, domain.LogRequest{Notes: draft.Notes, Rating: draft.Rating, PhotoURL: photoURL})
}

func (t *TrackController) rejectSubmit(err error) error {
	token := t.submit.begin(nil)
	_ = t.submit.complete(token, func() {
		t.state.SetStatus(domain.OpSubmit, domain.Failed(apperrors.UserMessage(err, domain.OpSubmit.FallbackMessage())))
	})
	return err
}

// LoadHistory replaces the displayed history with the service's list.
// Failures keep whatever was loaded before.
func (t *TrackController) LoadHistory(ctx context.Context) ([]domain.ProgressLogEntry, error) {
	token := t.history.begin(func() { t.state.SetStatus(domain.OpHistory, domain.Loading()) })
	sessionID, ok := t.session.Current()
	if !ok {
		err := apperrors.ErrNoSession
		_ = t.history.complete(token, func() {
			t.state.SetStatus(domain.OpHistory, domain.Failed(apperrors.UserMessage(err, domain.OpHistory.FallbackMessage())))
		})
		return nil, err
	}
	payload, err := t.gateway.History(ctx, sessionID)
	if err != nil {
		if applyErr := t.history.complete(token, func() {
			t.state.SetStatus(domain.OpHistory, domain.Failed(apperrors.UserMessage(err, domain.OpHistory.FallbackMessage())))
		}); applyErr != nil {
			return nil, applyErr
		}
		t.logger.Warn("history failed", "session_id", sessionID, "err", err)
		return nil, fmt.Errorf("load history: %w", err)
	}
	if applyErr := t.history.complete(token, func() {
		t.state.ReplaceHistory(payload.Logs)
		t.state.SetStatus(domain.OpHistory, domain.Succeeded())
	}); applyErr != nil {
		t.logger.Debug("history discarded", "session_id", sessionID)
		return nil, applyErr
	}
	return append([]domain.ProgressLogEntry{}, payload.Logs...), nil
}

func (t *TrackController) UpdateDraft(draft domain.JournalDraft) {
	t.state.SetDraft(draft)
}

func (t *TrackController) AddReminder(title, at string) (domain.Reminder, error) {
	title = strings.TrimSpace(title)
	at = strings.TrimSpace(at)
	if title == "" || at == "" {
		return domain.Reminder{}, fmt.Errorf("%w: reminder title and time are required", apperrors.ErrInvalidInput)
	}
	return t.state.AddReminder(title, at, t.clock.Now()), nil
}

func (t *TrackController) RemoveReminder(id int64) error {
	if !t.state.RemoveReminder(id) {
		return fmt.Errorf("%w: reminder %d", apperrors.ErrNotFound, id)
	}
	return nil
}

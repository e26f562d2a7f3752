package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"hairly/internal/modules/session/domain"
	sessionout "hairly/internal/modules/session/port/out"
	apperrors "hairly/internal/platform/errors"
)

type SessionStore struct {
	mu       sync.RWMutex
	kv       sessionout.KeyValueStore
	logger   *slog.Logger
	current  string
	degraded bool
}

// NewSessionStore rehydrates the current session id from kv. A nil kv or a
// failing read leaves the store in memory-only mode.
func NewSessionStore(ctx context.Context, kv sessionout.KeyValueStore, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &SessionStore{kv: kv, logger: logger}
	if kv == nil {
		s.degraded = true
		logger.Warn("session store has no durable backend, session will not survive restart")
		return s
	}
	value, err := kv.Get(ctx, domain.SessionKey)
	switch {
	case err == nil:
		s.current = value
		logger.Debug("session rehydrated", "session_id", value)
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		s.degrade("rehydrate", err)
	}
	return s
}

func (s *SessionStore) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

func (s *SessionStore) Set(ctx context.Context, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sessionID
	if s.degraded {
		return
	}
	if err := s.kv.Set(ctx, domain.SessionKey, sessionID); err != nil {
		s.degrade("persist", err)
	}
}

func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ""
	if s.degraded {
		return
	}
	if err := s.kv.Delete(ctx, domain.SessionKey); err != nil {
		s.degrade("clear", err)
	}
}

func (s *SessionStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *SessionStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{SessionID: s.current, Present: s.current != "", Degraded: s.degraded}
}

// degrade must be called with mu held or before the store is shared.
func (s *SessionStore) degrade(op string, err error) {
	s.degraded = true
	s.logger.Warn("session storage unavailable, continuing in memory", "op", op, "err", err)
}

package service

import (
	"sync"

	apperrors "hairly/internal/platform/errors"
)

// sequencer hands out monotonic tokens for one stage operation. Only the
// completion holding the latest token may apply its result, and only while
// the stage is still active.
type sequencer struct {
	mu      sync.Mutex
	current uint64
	active  func() bool
}

func newSequencer(active func() bool) *sequencer {
	return &sequencer{active: active}
}

// begin issues a new token. onBegin runs under the same lock so the writes
// it makes cannot interleave with an older completion.
func (s *sequencer) begin(onBegin func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current++
	if onBegin != nil {
		onBegin()
	}
	return s.current
}

// complete runs apply when token is still current and the stage active.
func (s *sequencer) complete(token uint64, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.current {
		return apperrors.ErrSuperseded
	}
	if s.active != nil && !s.active() {
		return apperrors.ErrSuperseded
	}
	apply()
	return nil
}

package domain

// SessionKey is the single durable key holding the current session id.
const SessionKey = "session_id"

// Snapshot describes the session store without exposing its internals.
type Snapshot struct {
	SessionID string
	Present   bool
	Degraded  bool
}

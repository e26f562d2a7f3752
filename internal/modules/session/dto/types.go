package dto

type SessionOutput struct {
	SessionID string
	Present   bool
	Degraded  bool
}

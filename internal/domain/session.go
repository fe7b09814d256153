package domain

type SessionID string

type SessionState string

const (
	SessionPending SessionState = "pending"
	SessionActive  SessionState = "active"
	SessionClosed  SessionState = "closed"
)

// CanTransition reports whether a session may move from s to next. Closed is
// terminal and Active is only reachable from Pending.
func (s SessionState) CanTransition(next SessionState) bool {
	switch s {
	case SessionPending:
		return next == SessionActive || next == SessionClosed
	case SessionActive:
		return next == SessionClosed
	default:
		return false
	}
}

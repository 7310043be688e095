package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus represents the state of the cash-drawer session gate
type SessionStatus string

const (
	SessionStatusNone   SessionStatus = "NONE"
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusNone, SessionStatusOpen, SessionStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the gate may move from s to target by operator action.
// Closing is owned by the backend and is only ever observed.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	switch s {
	case SessionStatusNone, SessionStatusClosed:
		return target == SessionStatusOpen
	case SessionStatusOpen:
		return target == SessionStatusClosed
	}
	return false
}

// Session is a cashier's open cash-drawer period
type Session struct {
	ID          uuid.UUID
	CashierID   uuid.UUID
	OpeningCash decimal.Decimal
	Status      SessionStatus
	OpenedAt    time.Time
}

// ValidateOpeningCash checks the amount supplied by the operator
func ValidateOpeningCash(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidOpeningCash
	}
	return nil
}

// SessionGate tracks whether checkout may proceed.
// It holds no lock; the orchestrator serializes access.
type SessionGate struct {
	current *Session
}

// NewSessionGate creates a gate in the NoSession state
func NewSessionGate() *SessionGate {
	return &SessionGate{}
}

// Observe adopts the session reported by the backend. nil means no session exists.
func (g *SessionGate) Observe(session *Session) {
	if session == nil {
		g.current = nil
		return
	}
	s := *session
	if !s.Status.IsValid() || s.Status == SessionStatusNone {
		s.Status = SessionStatusClosed
	}
	g.current = &s
}

// CanOpen checks that a new session may be opened from the current state
func (g *SessionGate) CanOpen() error {
	if !g.Status().CanTransitionTo(SessionStatusOpen) {
		return ErrSessionAlreadyOpen
	}
	return nil
}

// Status returns the current gate state
func (g *SessionGate) Status() SessionStatus {
	if g.current == nil {
		return SessionStatusNone
	}
	return g.current.Status
}

// Current returns a copy of the observed session, if any
func (g *SessionGate) Current() *Session {
	if g.current == nil {
		return nil
	}
	s := *g.current
	return &s
}

// RequireOpen fails with ErrSessionRequired unless a session is open
func (g *SessionGate) RequireOpen() error {
	if g.Status() != SessionStatusOpen {
		return ErrSessionRequired
	}
	return nil
}

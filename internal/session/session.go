package session

import (
	"context"
	"time"

	"github.com/jsdevtools/client1/internal/auth"
)

// Session is the shared record every client application resolves for a
// browser. Identity is nil for anonymous sessions (first contact, or a
// federated handshake that has not completed yet).
type Session struct {
	SessionID  string         `json:"session_id"`
	Identity   *auth.Identity `json:"identity,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	LastSeenAt time.Time      `json:"last_seen_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// Authenticated reports whether an identity has been bound to the session.
func (s *Session) Authenticated() bool {
	return s != nil && s.Identity != nil
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store defines how session records are stored and retrieved. The store
// is the only shared mutable resource in the system; implementations
// must write whole records atomically (last write wins, never a torn
// record) and be reachable from independent application processes.
//
// Get returns (nil, nil) when no record exists for the id.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}

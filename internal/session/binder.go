package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jsdevtools/client1/internal/auth"
)

// Binder turns a verified identity into a session record. It is the
// only writer of identity-bearing records; handlers and middleware go
// through it rather than touching the Store directly.
type Binder struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewBinder(store Store, ttl time.Duration) *Binder {
	return &Binder{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Bind attaches an identity to the session named by sessionID, minting
// a fresh id when none is presented. Rebinding an existing session
// overwrites the whole record; a session holds at most one identity.
// The returned id is what the caller issues as the session cookie.
func (b *Binder) Bind(
	ctx context.Context,
	sessionID string,
	identity *auth.Identity,
) (Session, error) {

	if identity == nil {
		return Session{}, fmt.Errorf("session: cannot bind nil identity")
	}

	if sessionID == "" {
		id, err := GenerateID()
		if err != nil {
			return Session{}, err
		}
		sessionID = id
	}

	now := b.now()
	s := Session{
		SessionID:  sessionID,
		Identity:   identity,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(b.ttl),
	}

	if err := b.store.Set(ctx, s); err != nil {
		return Session{}, fmt.Errorf("session: bind failed: %w", err)
	}

	return s, nil
}

// Unbind destroys the session record outright, so a destroyed session
// cannot be resurrected by replaying an old cookie. Unbinding an
// unknown id is a no-op, which makes logout idempotent.
func (b *Binder) Unbind(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return b.store.Delete(ctx, sessionID)
}

// Touch advances the session's sliding expiry: LastSeenAt moves to now
// and the deadline extends by the configured TTL. The updated record is
// written back whole; the caller re-issues the cookie with the returned
// expiry so cookie TTL and store TTL stay consistent.
func (b *Binder) Touch(ctx context.Context, s *Session) error {
	now := b.now()
	if now.After(s.LastSeenAt) {
		s.LastSeenAt = now
	}
	s.ExpiresAt = now.Add(b.ttl)
	return b.store.Set(ctx, *s)
}

// TTL returns the configured session lifetime.
func (b *Binder) TTL() time.Duration {
	return b.ttl
}

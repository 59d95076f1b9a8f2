package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoSession means the session does not exist, expired, or was signed out
	ErrNoSession = errors.New("no session")
	// ErrInvalidToken means the session token failed verification
	ErrInvalidToken = errors.New("invalid session token")
)

// Session is a signed-in user
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionEvent reports a change to a user's session. A nil Session is the
// terminal "signed out" event.
type SessionEvent struct {
	Session *Session `json:"session"`
}

// Store holds sessions and fans out their changes
type Store interface {
	Save(ctx context.Context, sess Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Remove(ctx context.Context, sess Session) error
	Subscribe(ctx context.Context, email string) (<-chan SessionEvent, error)
}

// Manager issues and verifies session tokens backed by a Store
type Manager struct {
	store  Store
	key    string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, key, issuer string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		key:    key,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SignIn starts a session for a verified email and returns its token
func (m *Manager) SignIn(ctx context.Context, email string) (string, *Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil, fmt.Errorf("email is required")
	}

	now := m.now().UTC().Truncate(time.Second)
	sess := Session{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := IssueToken(sess, m.key, m.issuer)
	if err != nil {
		return "", nil, err
	}
	return token, &sess, nil
}

// Authenticate resolves a token to its live session
func (m *Manager) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := ParseToken(token, m.key, m.issuer)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.Load(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Email != claims.Email {
		return nil, ErrNoSession
	}
	return sess, nil
}

// SignOut revokes the token's session. Signing out an already-ended session
// is not an error.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	sess, err := m.Authenticate(ctx, token)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.store.Remove(ctx, *sess); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// Watch streams session changes for email until ctx is cancelled
func (m *Manager) Watch(ctx context.Context, email string) (<-chan SessionEvent, error) {
	events, err := m.store.Subscribe(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to session changes: %w", err)
	}
	return events, nil
}

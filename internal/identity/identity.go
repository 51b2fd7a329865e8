// Package identity supplies the current-user context the scheduling core
// consumes, and the session plumbing the delivery layer uses to resolve it.
// The core itself only ever reads a User out of the context.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/store"
)

var (
	// ErrSessionExpired is returned when a session token is past its TTL.
	ErrSessionExpired = errors.New("identity: session expired")
	// ErrNoSession is returned when a token resolves to no session.
	ErrNoSession = errors.New("identity: session not found")
	// ErrAccountInactive is returned when the account behind a session or
	// login has been deactivated.
	ErrAccountInactive = errors.New("identity: account inactive")
)

// User identifies the acting user of a scheduling session.
type User struct {
	ID        string
	Name      string
	AvatarURL string
	Admin     bool
}

type contextKey struct{}

// ContextWithUser returns a derived context carrying the acting user.
func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext extracts the acting user from the context if present.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}

// Session is an issued login session.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Manager authenticates against the users collection and keeps opaque
// session tokens in the sessions collection.
type Manager struct {
	store    store.Store
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

// NewManager wires a session manager. A nil now defaults to time.Now; a nil
// token source defaults to random UUIDs.
func NewManager(s store.Store, ttl time.Duration, now func() time.Time, newToken func() string) *Manager {
	if now == nil {
		now = time.Now
	}
	if newToken == nil {
		newToken = uuid.NewString
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: s, ttl: ttl, now: now, newToken: newToken}
}

// Login verifies the email/password pair and issues a session.
func (m *Manager) Login(ctx context.Context, email, password string) (User, Session, error) {
	snapshot, err := m.store.Query(ctx, records.CollectionUsers,
		[]store.Filter{{Field: "email", Op: store.OpEq, Value: email}}, nil)
	if err != nil {
		return User{}, Session{}, fmt.Errorf("look up account: %w", err)
	}
	if len(snapshot) == 0 {
		return User{}, Session{}, ErrInvalidCredentials
	}
	account := records.DecodeUser(snapshot[0])
	if account.PasswordHash == "" {
		return User{}, Session{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return User{}, Session{}, ErrInvalidCredentials
		}
		return User{}, Session{}, err
	}
	if !account.Active {
		return User{}, Session{}, ErrAccountInactive
	}

	session := Session{
		Token:     m.newToken(),
		UserID:    account.ID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	_, err = m.store.Create(ctx, records.CollectionSessions, store.Fields{
		"token":      session.Token,
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return User{}, Session{}, fmt.Errorf("persist session: %w", err)
	}

	return userOf(account), session, nil
}

// Resolve maps a session token to the acting user.
func (m *Manager) Resolve(ctx context.Context, token string) (User, error) {
	doc, err := m.findSession(ctx, token)
	if err != nil {
		return User{}, err
	}

	expiresRaw, _ := doc.Fields["expires_at"].(string)
	expires, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil || !m.now().Before(expires) {
		return User{}, ErrSessionExpired
	}

	userID, _ := doc.Fields["user_id"].(string)
	snapshot, err := m.store.Query(ctx, records.CollectionUsers, nil, nil)
	if err != nil {
		return User{}, fmt.Errorf("load account: %w", err)
	}
	for _, userDoc := range snapshot {
		if userDoc.ID != userID {
			continue
		}
		account := records.DecodeUser(userDoc)
		if !account.Active {
			return User{}, ErrAccountInactive
		}
		return userOf(account), nil
	}
	return User{}, ErrNoSession
}

// Logout revokes a session token. Unknown tokens are not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	doc, err := m.findSession(ctx, token)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, records.CollectionSessions, doc.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) findSession(ctx context.Context, token string) (store.Doc, error) {
	snapshot, err := m.store.Query(ctx, records.CollectionSessions,
		[]store.Filter{{Field: "token", Op: store.OpEq, Value: token}}, nil)
	if err != nil {
		return store.Doc{}, fmt.Errorf("look up session: %w", err)
	}
	if len(snapshot) == 0 {
		return store.Doc{}, ErrNoSession
	}
	return snapshot[0], nil
}

func userOf(account records.User) User {
	return User{
		ID:        account.ID,
		Name:      account.Name,
		AvatarURL: account.AvatarURL,
		Admin:     account.Admin,
	}
}

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// Manager issues, refreshes and revokes token bundles.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the access token validity window.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a session manager backed by the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		ttl:    time.Hour,
		logger: logger.NewDiscard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create mints and persists a new session for the user.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (*Session, error) {
	session, err := NewSession(userID, m.ttl)
	if err != nil {
		return nil, err
	}

	if err := m.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.logger.Info("session created",
		logger.UserID(session.UserID.String()),
		logger.Component("session"),
	)
	return session, nil
}

// Refresh redeems a refresh token for a brand new session. Every secret in
// the bundle rotates: access token, refresh token and IKM. The old session is
// deleted before the replacement is persisted; if the delete fails the
// rotation is aborted, so a spent refresh token can never stay redeemable
// next to a live replacement. The caller may retry with the same token.
//
// Passing anything that is not a live refresh token — including a valid
// access token — fails with ErrInvalidRefreshToken.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	old, err := m.store.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	fresh, err := NewSession(old.UserID, m.ttl)
	if err != nil {
		return nil, err
	}

	if err := m.store.Delete(ctx, old); err != nil {
		return nil, fmt.Errorf("failed to invalidate rotated session: %w", err)
	}

	if err := m.store.Create(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed session: %w", err)
	}

	return fresh, nil
}

// Get returns the live session for an access token, rejecting expired ones.
func (m *Manager) Get(ctx context.Context, accessToken string) (*Session, error) {
	session, err := m.store.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Revoke deletes the session identified by its access token.
func (m *Manager) Revoke(ctx context.Context, accessToken string) error {
	session, err := m.store.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, session)
}

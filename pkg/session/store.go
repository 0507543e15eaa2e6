package session

import "context"

// Store defines the interface for session persistence. Lookups by either
// token must never return expired-and-purged rows; purging strategy is the
// implementation's concern (TTLs in Redis, sweeps in memory).
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByAccessToken retrieves a session by its access token.
	GetByAccessToken(ctx context.Context, accessToken string) (*Session, error)

	// GetByRefreshToken retrieves a session by its refresh token.
	GetByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)

	// Delete removes a session and both of its token indexes.
	Delete(ctx context.Context, session *Session) error
}

package session

import "errors"

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionExpired        = errors.New("session expired")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrFailedToGenerateToken = errors.New("failed to generate session token")
	ErrFailedToStoreSession  = errors.New("failed to store session")
)

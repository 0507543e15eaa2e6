package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	tokenBytes = 32
	// IKMSize is the length of the per-session input key material shared
	// with the client for request signing.
	IKMSize = 32
)

// Session is the authenticated token bundle issued at login and rotated on
// every refresh: an opaque access token, an opaque refresh token and the
// input key material the HMAC signing protocol derives per-request keys from.
type Session struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	IKM          []byte    `json:"ikm"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSession mints a session for the user with fresh random tokens and IKM.
func NewSession(userID uuid.UUID, ttl time.Duration) (*Session, error) {
	accessToken, err := generateToken()
	if err != nil {
		return nil, err
	}
	refreshToken, err := generateToken()
	if err != nil {
		return nil, err
	}

	ikm := make([]byte, IKMSize)
	if _, err := rand.Read(ikm); err != nil {
		return nil, errors.Join(ErrFailedToGenerateToken, err)
	}

	now := time.Now()
	return &Session{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IKM:          ikm,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
	}, nil
}

// IsExpired returns true if the access token validity window has passed.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// EncodedIKM returns the base64 form of the key material, the representation
// handed to clients on the wire.
func (s *Session) EncodedIKM() string {
	return base64.StdEncoding.EncodeToString(s.IKM)
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrFailedToGenerateToken, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

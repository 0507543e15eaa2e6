package hmacsig

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header names used by the HMAC authentication scheme.
const (
	AuthorizationHeader = "Authorization"
	DateHeader          = "X-Date"
	authScheme          = "HMAC "
)

// Credentials carries the session material resolved from an access token.
type Credentials struct {
	UserID uuid.UUID
	IKM    []byte
}

// CredentialResolver resolves an access token to the session's key material.
// Implementations return an error for unknown or expired tokens.
type CredentialResolver interface {
	ResolveAccessToken(ctx context.Context, accessToken string) (*Credentials, error)
}

// MiddlewareConfig configures HMAC middleware behavior.
type MiddlewareConfig struct {
	Resolver     CredentialResolver
	DateWindow   time.Duration                              // Zero disables date freshness checks
	Unauthorized func(w http.ResponseWriter, r *http.Request) // Custom 401 writer
	MaxBodySize  int64                                      // Zero means 1 MiB
}

const defaultMaxBodySize = 1 << 20

// Middleware authenticates every request with the HMAC signature scheme:
//
//	Authorization: HMAC <access_token>,<base64 mac>,<base64 salt>
//	X-Date: <timestamp covered by the signature>
//
// All failures are rejected uniformly with 401: a missing header, an unknown
// access token and a wrong signature are indistinguishable to the client.
func Middleware(resolver CredentialResolver) func(next http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Resolver: resolver})
}

// MiddlewareWithConfig creates HMAC middleware with custom configuration.
func MiddlewareWithConfig(config MiddlewareConfig) func(next http.Handler) http.Handler {
	if config.Unauthorized == nil {
		config.Unauthorized = defaultUnauthorized
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = defaultMaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken, signature, err := parseAuthorizationHeader(r.Header.Get(AuthorizationHeader))
			if err != nil {
				config.Unauthorized(w, r)
				return
			}

			date := r.Header.Get(DateHeader)
			if date == "" {
				config.Unauthorized(w, r)
				return
			}
			if config.DateWindow > 0 {
				if err := checkDateWindow(date, config.DateWindow); err != nil {
					config.Unauthorized(w, r)
					return
				}
			}

			creds, err := config.Resolver.ResolveAccessToken(r.Context(), accessToken)
			if err != nil {
				config.Unauthorized(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, config.MaxBodySize))
			if err != nil {
				config.Unauthorized(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if err := VerifyRaw(creds.IKM, r.Method, r.URL.RequestURI(), date, body, signature); err != nil {
				config.Unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetCredentials(r.Context(), creds)))
		})
	}
}

// parseAuthorizationHeader splits "HMAC token,mac,salt" into the access token
// and the "mac,salt" signature string.
func parseAuthorizationHeader(header string) (accessToken, signature string, err error) {
	if !strings.HasPrefix(header, authScheme) {
		return "", "", ErrMissingAuthentication
	}

	parts := strings.Split(strings.TrimPrefix(header, authScheme), ",")
	if len(parts) != 3 {
		return "", "", ErrMissingAuthentication
	}

	accessToken = strings.TrimSpace(parts[0])
	if accessToken == "" {
		return "", "", ErrMissingAuthentication
	}

	return accessToken, parts[1] + "," + parts[2], nil
}

func checkDateWindow(date string, window time.Duration) error {
	t, err := http.ParseTime(date)
	if err != nil {
		return ErrDateOutOfWindow
	}

	drift := time.Since(t)
	if drift < 0 {
		drift = -drift
	}
	if drift > window {
		return ErrDateOutOfWindow
	}
	return nil
}

func defaultUnauthorized(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"status":401,"data":null}`))
}

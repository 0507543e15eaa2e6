package user

import (
	"context"

	"github.com/dmitrymomot/authkit/pkg/hmacsig"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// sessionResolver adapts the session manager to the credential lookup the
// HMAC middleware needs: access token in, user and key material out.
type sessionResolver struct {
	sessions *session.Manager
}

// NewSessionResolver creates a hmacsig.CredentialResolver backed by the
// session manager. Expired and unknown tokens resolve to an error, which the
// middleware turns into a uniform 401.
func NewSessionResolver(sessions *session.Manager) hmacsig.CredentialResolver {
	return &sessionResolver{sessions: sessions}
}

func (r *sessionResolver) ResolveAccessToken(ctx context.Context, accessToken string) (*hmacsig.Credentials, error) {
	sess, err := r.sessions.Get(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &hmacsig.Credentials{UserID: sess.UserID, IKM: sess.IKM}, nil
}

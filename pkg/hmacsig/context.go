package hmacsig

import "context"

type contextKey struct{ name string }

var credentialsKey = contextKey{"hmacsig:credentials"}

// SetCredentials stores resolved session credentials in the context.
func SetCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey, creds)
}

// GetCredentials retrieves credentials placed in the context by the
// middleware. The second return is false for unauthenticated requests.
func GetCredentials(ctx context.Context) (*Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey).(*Credentials)
	return creds, ok && creds != nil
}

// Package user exposes the account API over HTTP: token refresh behind HMAC
// request authentication, and the public two-phase password reset endpoints.
//
// Every response uses the same envelope:
//
//	{"status": <http status>, "data": <payload>}
//
// Successful operations put their result in data; operations rejected on user
// input return data:false with an errors map keyed by field. Requests that
// fail HMAC authentication are answered with a uniform 401 envelope that does
// not reveal which check failed.
//
// The module wires the pieces together but owns none of them: sessions come
// from a session.Manager, the reset flow from a passreset.Service, and the
// signature checks from the hmacsig middleware.
package user

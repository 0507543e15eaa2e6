// Package redis connects the Redis-backed session and reset code stores:
// env-driven configuration, Connect with retries and a readiness probe for
// the health endpoint.
package redis

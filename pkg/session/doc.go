// Package session issues and rotates the token bundle authenticated API
// clients hold: an opaque access token, an opaque refresh token and the
// per-session input key material (IKM) the request-signing protocol derives
// its per-request keys from.
//
// Refresh is a full rotation: redeeming a refresh token invalidates the old
// bundle and returns a new one with all three secrets regenerated, so a
// leaked IKM has a bounded lifetime. A refresh token can only be redeemed
// while its session row still exists in the store; rotation deletes the row,
// making redemption single-use.
//
// Persistence is pluggable through the Store interface; MemoryStore serves
// tests and single-process use, RedisStore serves real deployments with
// TTL-based retention.
package session

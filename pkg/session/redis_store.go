package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	accessKeyPrefix  = "session:access:"
	refreshKeyPrefix = "session:refresh:"
)

// RedisStore persists sessions in Redis under both token indexes. Rows expire
// automatically after the configured retention, which bounds how long a
// refresh token stays redeemable.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore creates a Redis-backed session store. Retention is the
// lifetime of the stored row, i.e. the refresh window; it must exceed the
// access token TTL.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrFailedToStoreSession, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accessKeyPrefix+session.AccessToken, data, s.retention)
	pipe.Set(ctx, refreshKeyPrefix+session.RefreshToken, data, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrFailedToStoreSession, err)
	}
	return nil
}

func (s *RedisStore) GetByAccessToken(ctx context.Context, accessToken string) (*Session, error) {
	return s.get(ctx, accessKeyPrefix+accessToken)
}

func (s *RedisStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	return s.get(ctx, refreshKeyPrefix+refreshToken)
}

func (s *RedisStore) get(ctx context.Context, key string) (*Session, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, session *Session) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, accessKeyPrefix+session.AccessToken)
	pipe.Del(ctx, refreshKeyPrefix+session.RefreshToken)
	_, err := pipe.Exec(ctx)
	return err
}

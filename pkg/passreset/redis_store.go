package passreset

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "passreset:code:"

// RedisCodeStore keeps reset codes in Redis. Keys carry a TTL so expired
// codes vanish on their own, and consumption relies on GETDEL so only one
// concurrent redemption can win.
type RedisCodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCodeStore creates a Redis-backed code store. Codes expire after
// ttl; pair it with a service configured WithCodeTTL(0) to avoid double
// bookkeeping.
func NewRedisCodeStore(client *redis.Client, ttl time.Duration) *RedisCodeStore {
	return &RedisCodeStore{client: client, ttl: ttl}
}

func (s *RedisCodeStore) SaveCode(ctx context.Context, code *ResetCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, codeKeyPrefix+code.Hash, data, s.ttl).Err()
}

func (s *RedisCodeStore) GetCodeByHash(ctx context.Context, hash string) (*ResetCode, error) {
	return decodeCode(s.client.Get(ctx, codeKeyPrefix+hash))
}

// ConsumeCode atomically removes and returns the code. GETDEL guarantees a
// token is redeemable at most once even under concurrent attempts.
func (s *RedisCodeStore) ConsumeCode(ctx context.Context, hash string) (*ResetCode, error) {
	return decodeCode(s.client.GetDel(ctx, codeKeyPrefix+hash))
}

func decodeCode(cmd *redis.StringCmd) (*ResetCode, error) {
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	var code ResetCode
	if err := json.Unmarshal(data, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "grc:revoked:"

// RedisRevoker keeps logged-out token IDs in Redis until they would have
// expired anyway.
type RedisRevoker struct {
	rdb *redis.Client
}

func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb}
}

func (r *RedisRevoker) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+claims.ID, 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID == "" {
		return false, nil
	}
	err := r.rdb.Get(ctx, revokedKeyPrefix+claims.ID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

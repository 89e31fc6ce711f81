package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CredentialStore caches broker-issued access tokens in Redis, keyed by
// connection handle. Staleness is still discovered via call failure; the TTL
// only bounds how long a token can be reused across requests without another
// broker round trip.
type CredentialStore struct {
	Client *redis.Client
}

// InitRedis connects to Redis and returns a CredentialStore.
func InitRedis(addr string) (*CredentialStore, error) {
	cs := &CredentialStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}

	if err := redisotel.InstrumentTracing(cs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := cs.Client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return cs, nil
}

func credentialKey(handle string) string {
	return "cred:" + handle
}

// GetAccessToken returns the cached token for a handle, or "" when none is
// cached. Redis errors other than a missing key are returned to the caller.
func (c *CredentialStore) GetAccessToken(ctx context.Context, handle string) (string, error) {
	if c == nil || c.Client == nil {
		return "", nil
	}
	val, err := c.Client.Get(ctx, credentialKey(handle)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// PutAccessToken caches a token for a handle with the given TTL.
func (c *CredentialStore) PutAccessToken(ctx context.Context, handle, token string, ttl time.Duration) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Set(ctx, credentialKey(handle), token, ttl).Err()
}

// DeleteAccessToken drops the cached token, forcing the next EnsureClient to
// go back to the broker. Called before a forced refresh.
func (c *CredentialStore) DeleteAccessToken(ctx context.Context, handle string) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, credentialKey(handle)).Err()
}

// IncrementExchange counts broker exchanges per handle per day. A 24h TTL is
// applied on first set. Best-effort; failures are ignored by callers.
func (c *CredentialStore) IncrementExchange(ctx context.Context, handle string) (int64, error) {
	if c == nil || c.Client == nil {
		return 0, nil
	}
	key := fmt.Sprintf("exchanges:%s:%s", handle, time.Now().Format("2006-01-02"))
	val, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		c.Client.Expire(ctx, key, 24*time.Hour)
	}
	return val, nil
}

// Close shuts down the Redis client.
func (c *CredentialStore) Close() {
	if c != nil && c.Client != nil {
		if err := c.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}

package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// keyPrefix namespaces user snapshots inside a shared Redis instance.
const keyPrefix = "userdata:"

// Redis is the optional remote cache tier. All command errors are logged and
// swallowed so a degraded Redis never affects request correctness, only the
// latency of the fallthrough to persistence.
type Redis struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedis constructs the remote tier and verifies connectivity with a short
// ping so misconfiguration surfaces at startup rather than on first request.
func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, ttl: ttl}, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, userID string) ([]byte, bool) {
	data, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			log.Warn().Err(err).Str("user_id", userID).Msg("redis cache get failed")
		}
		return nil, false
	}
	return data, true
}

// Put implements Store.
func (r *Redis) Put(ctx context.Context, userID string, data []byte) {
	if err := r.client.Set(ctx, keyPrefix+userID, data, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("redis cache put failed")
	}
}

// Invalidate implements Store.
func (r *Redis) Invalidate(ctx context.Context, userID string) {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("redis cache invalidate failed")
	}
}

// Close releases the underlying client connection pool.
func (r *Redis) Close() error { return r.client.Close() }

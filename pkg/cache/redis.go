package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNetwork wraps the last error of a Redis call that kept failing at the
// connection level.
var ErrNetwork = errors.New("redis unreachable")

// Backoff is how a RedisCache retries connection failures. Delay doubles
// after every failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff tries three times, waiting 100ms then 200ms.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond}

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	Addr     string // host:port, default localhost:6379
	Password string
	DB       int
	Retry    Backoff // zero means DefaultBackoff
}

// RedisCache is a Cache shared by every server instance.
type RedisCache struct {
	client redis.UniversalClient
	retry  Backoff
}

// NewRedisCache connects to Redis and checks the connection with a PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return newRedisCache(client, cfg.Retry), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient) *RedisCache {
	return newRedisCache(client, Backoff{})
}

func newRedisCache(client redis.UniversalClient, b Backoff) *RedisCache {
	if b.Attempts <= 0 {
		b = DefaultBackoff
	}
	return &RedisCache{client: client, retry: b}
}

// Get implements Cache. redis.Nil is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.do(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		return err
	})
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.do(ctx, func() error {
		return c.client.Set(ctx, key, data, ttl).Err()
	})
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, func() error {
		return c.client.Del(ctx, key).Err()
	})
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// do runs call, retrying with backoff while it fails at the connection
// level. Replies from the server, redis.Nil included, return at once.
func (c *RedisCache) do(ctx context.Context, call func() error) error {
	return c.retry.run(ctx, call)
}

func (b Backoff) run(ctx context.Context, call func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = call(); err == nil || !transient(err) {
			return err
		}
		if attempt >= b.Attempts {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}

// transient reports whether err is a connection failure worth retrying.
func transient(err error) bool {
	if errors.Is(err, redis.Nil) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}

var _ Cache = (*RedisCache)(nil)

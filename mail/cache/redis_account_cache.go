package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mail:accounts:"

var _ AccountCache = (*RedisAccountCache)(nil)

// RedisAccountCache stores summaries as JSON with a TTL.
type RedisAccountCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisAccountCache(client redis.UniversalClient, ttl time.Duration) *RedisAccountCache {
	return &RedisAccountCache{client: client, ttl: ttl}
}

// Connect parses a redis URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("[cache Connect] parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[cache Connect] ping: %w", err)
	}
	return client, nil
}

func accountsKey(userID string) string {
	return keyPrefix + userID
}

func (c *RedisAccountCache) Get(ctx context.Context, userID string) ([]mail.AccountSummary, bool, error) {
	payload, err := c.client.Get(ctx, accountsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load accounts: %w", err)
	}

	var summaries []mail.AccountSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode accounts: %w", err)
	}
	return summaries, true, nil
}

func (c *RedisAccountCache) Set(ctx context.Context, userID string, summaries []mail.AccountSummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}
	if err := c.client.Set(ctx, accountsKey(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("persist accounts: %w", err)
	}
	return nil
}

func (c *RedisAccountCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, accountsKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete accounts: %w", err)
	}
	return nil
}

package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript performs the whole check-and-increment on the server so that
// concurrent instances see a consistent count. Times are unix milliseconds
// supplied by the caller.
//
// KEYS[1] client hash; ARGV: now, window, limit, ttl slack
// Returns {allowed, count, resetAt}.
var admitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local slack = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'count', 'reset')
local count = tonumber(state[1])
local reset = tonumber(state[2])

if count == nil or reset == nil or now > reset then
	reset = now + window
	redis.call('HSET', KEYS[1], 'count', 1, 'reset', reset)
	redis.call('PEXPIRE', KEYS[1], window + slack)
	return {1, 1, reset}
end

if count >= limit then
	return {0, count, reset}
end

count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {1, count, reset}
`)

const (
	defaultRedisPrefix = "contact:ratelimit"
	// keys outlive their window slightly so clock skew between the app and
	// redis never resets a window early
	redisTTLSlack = time.Second
)

// RedisStore is a Limiter shared by every instance pointing at the same
// Redis. Keys expire on their own once the window has passed.
type RedisStore struct {
	rdb    redis.Scripter
	policy Policy
	prefix string
}

// RedisOption configures the Redis store.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the namespace for client keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// NewRedisStore creates a Redis-backed limiter.
func NewRedisStore(rdb redis.Scripter, policy Policy, opts ...RedisOption) (*RedisStore, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	s := &RedisStore{
		rdb:    rdb,
		policy: policy,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Admit implements Limiter.
func (s *RedisStore) Admit(ctx context.Context, clientID string, now time.Time) (Decision, error) {
	res, err := admitScript.Run(ctx, s.rdb,
		[]string{s.key(clientID)},
		now.UnixMilli(),
		s.policy.Window.Milliseconds(),
		s.policy.Limit,
		redisTTLSlack.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected redis reply %v", res)
	}

	count := int(res[1])
	remaining := s.policy.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   res[0] == 1,
		Limit:     s.policy.Limit,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(res[2]).UTC(),
	}, nil
}

func (s *RedisStore) key(clientID string) string {
	return s.prefix + ":" + clientID
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ratelimit: redis ping: %w", err)
	}

	return client, nil
}

var _ Limiter = (*RedisStore)(nil)

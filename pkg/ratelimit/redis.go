package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using one Redis sorted set per key.
//
// Entry timestamps are ZSET scores in microseconds. The prune, count,
// and conditional-append steps run as a single Lua script, so the
// compound operation is atomic per key and the limit holds across all
// service processes sharing the Redis instance.
type RedisStore struct {
	client redis.UniversalClient
}

// RedisConfig configures the Redis connection for the store.
type RedisConfig struct {
	// Addr is the Redis server address ("host:port").
	Addr string `yaml:"addr"`

	// Password authenticates the connection. Empty for no auth.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db"`
}

// slideScript performs the sliding-window compound operation.
//
// KEYS[1] window key
// ARGV[1] now (microseconds)
// ARGV[2] window (microseconds)
// ARGV[3] max requests
// ARGV[4] key TTL (milliseconds)
// ARGV[5] member (unique per call)
//
// Returns {count, oldest} where count is the surviving entry count
// before any append and oldest is the oldest surviving score as a
// string ("0" when the window is empty).
var slideScript = redis.NewScript(`
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', cutoff)
local count = redis.call('ZCARD', KEYS[1])
local oldest = '0'
if count > 0 then
    local head = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
    oldest = head[2]
end
if count < tonumber(ARGV[3]) then
    redis.call('ZADD', KEYS[1], tonumber(ARGV[1]), ARGV[5])
    redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[4]))
end
return {count, oldest}
`)

// NewRedisStore creates a RedisStore and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client. The caller retains
// ownership of the client's lifecycle when constructed this way.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Slide implements Store.
func (s *RedisStore) Slide(ctx context.Context, key string, now time.Time, window time.Duration, max int) (int, time.Time, error) {
	nowMicros := now.UnixMicro()
	member := strconv.FormatInt(nowMicros, 10) + "-" + uuid.NewString()

	res, err := slideScript.Run(ctx, s.client, []string{key},
		nowMicros,
		window.Microseconds(),
		max,
		window.Milliseconds(),
		member,
	).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("sliding window script: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected script result %T", res)
	}

	count, ok := vals[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unexpected count type %T", vals[0])
	}

	oldestStr, ok := vals[1].(string)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unexpected oldest type %T", vals[1])
	}

	var oldest time.Time
	if oldestMicros, err := strconv.ParseInt(oldestStr, 10, 64); err == nil && oldestMicros > 0 {
		oldest = time.UnixMicro(oldestMicros)
	}

	return int(count), oldest, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a string key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache implements Cache on a Redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// DefaultCacheTTL is used when CachedSource.TTL is zero.
const DefaultCacheTTL = 10 * time.Minute

// CachedSource keeps fetched phases in a Cache. Cache failures are logged
// and fall through to the inner source.
type CachedSource struct {
	Inner  Source
	Cache  Cache
	TTL    time.Duration
	Logger *slog.Logger
}

func (s *CachedSource) FetchPhases(ctx context.Context, levelID string) ([]curriculum.Phase, error) {
	key := cacheKey(levelID)

	raw, err := s.Cache.Get(ctx, key)
	switch {
	case err == nil:
		phases, derr := decodePhases(raw)
		if derr == nil {
			return phases, nil
		}
		s.logger().Warn("discarding cached bank", "level_id", levelID, "error", derr)
	case !errors.Is(err, ErrCacheMiss):
		s.logger().Warn("bank cache read failed", "level_id", levelID, "error", err)
	}

	phases, err := s.Inner.FetchPhases(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return phases, nil
	}

	enc, err := encodePhases(phases)
	if err != nil {
		s.logger().Warn("bank cache encode failed", "level_id", levelID, "error", err)
		return phases, nil
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if err := s.Cache.Set(ctx, key, enc, ttl); err != nil {
		s.logger().Warn("bank cache write failed", "level_id", levelID, "error", err)
	}
	return phases, nil
}

func (s *CachedSource) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func cacheKey(levelID string) string {
	return "chemquest.bank." + levelID
}

func encodePhases(phases []curriculum.Phase) (string, error) {
	docs := make([]curriculum.PhaseDoc, len(phases))
	for i, p := range phases {
		docs[i] = curriculum.DocFromPhase(p)
	}
	b, err := json.Marshal(docs)
	return string(b), err
}

func decodePhases(raw string) ([]curriculum.Phase, error) {
	var docs []curriculum.PhaseDoc
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("decode cached bank: %w", err)
	}
	phases := make([]curriculum.Phase, 0, len(docs))
	for _, d := range docs {
		p, err := d.ToPhase()
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, nil
}

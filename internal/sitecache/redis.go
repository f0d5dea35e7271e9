package sitecache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "polyseo:sitemap:"

// RedisStore keeps documents in Redis; expiry is delegated to the key TTL.
type RedisStore struct {
	rdb *redis.Client
	log *logrus.Entry
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client, log *logrus.Entry) *RedisStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisStore{rdb: rdb, log: log.WithField("component", "sitemap-cache-redis")}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) redisKey(key Key) string {
	return redisKeyPrefix + key.storageName()
}

func (s *RedisStore) Get(ctx context.Context, key Key, _ time.Duration) ([]byte, bool) {
	data, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).WithField("key", key.String()).Warn("Failed to read cache entry")
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Put(ctx context.Context, key Key, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := s.rdb.Set(ctx, s.redisKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry in Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, t ArtifactType, language string) error {
	if t != ArtifactAll && language != AllLanguages {
		return s.rdb.Del(ctx, s.redisKey(Key{Type: t, Language: language})).Err()
	}

	typeTok := "*"
	if t != ArtifactAll {
		typeTok = escapeToken(string(t))
	}
	langTok := "*"
	if language != AllLanguages {
		langTok = Key{Language: language}.langToken()
	}
	pattern := redisKeyPrefix + typeTok + "." + langTok

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// SweepExpired is a no-op: Redis expires keys on its own.
func (s *RedisStore) SweepExpired(context.Context, time.Duration) (int, error) {
	return 0, nil
}

var _ Store = (*RedisStore)(nil)

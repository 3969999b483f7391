package denylist

import (
	"context"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

var redisDenylistKey = "denylist/fingerprints"

// RedisStore keeps the denylist as a redis set. Intended for deployments
// already carrying redis for counters; the canonical sorted export is
// produced client-side.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, err
	}
	return &RedisStore{Client: rdb}, nil
}

func (s *RedisStore) Contains(ctx context.Context, fp string) (bool, error) {
	return s.Client.SIsMember(ctx, redisDenylistKey, Normalize(fp)).Result()
}

func (s *RedisStore) Add(ctx context.Context, fp string) (bool, error) {
	fp = Normalize(fp)
	if err := Validate(fp); err != nil {
		return false, err
	}
	n, err := s.Client.SAdd(ctx, redisDenylistKey, fp).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Remove(ctx context.Context, fp string) (bool, error) {
	n, err := s.Client.SRem(ctx, redisDenylistKey, Normalize(fp)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) ExportAll(ctx context.Context) ([]byte, error) {
	vals, err := s.Client.SMembers(ctx, redisDenylistKey).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return []byte{}, nil
	}
	sort.Strings(vals)
	return []byte(strings.Join(vals, "\n") + "\n"), nil
}

var _ Store = (*RedisStore)(nil)

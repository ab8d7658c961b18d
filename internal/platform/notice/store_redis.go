package notice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "clinic:notice:"

// RedisStore keeps each notice under its own key with a TTL, so expiry is
// handled by redis and every server instance sees the same banners.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func noticeKey(actor, id string) string {
	return keyPrefix + actor + ":" + id
}

func (s *RedisStore) Put(ctx context.Context, n Notice) error {
	ttl := n.ExpiresAt.Sub(n.CreatedAt)
	if ttl <= 0 {
		return nil
	}
	// Actor is not serialized; it lives in the key.
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	if err := s.client.Set(ctx, noticeKey(n.Actor, n.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store notice: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, actor string, now time.Time) ([]Notice, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, noticeKey(actor, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan notices: %w", err)
	}

	out := []Notice{}
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load notices: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		var n Notice
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("decode notice: %w", err)
		}
		n.Actor = actor
		if !n.Expired(now) {
			out = append(out, n)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, actor, id string) error {
	n, err := s.client.Del(ctx, noticeKey(actor, id)).Result()
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "cache:"

// CachedResponse is one stored asset response.
type CachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// CacheStore holds versioned asset caches. Exactly one version is current;
// install writes a whole version at once and activate prunes the rest.
type CacheStore interface {
	Put(ctx context.Context, version string, entries map[string]CachedResponse) error
	Match(ctx context.Context, version, url string) (*CachedResponse, error)
	Versions(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, version string) error
}

type redisCacheStore struct {
	client *redis.Client
}

func NewRedisCacheStore(client *redis.Client) CacheStore {
	return &redisCacheStore{client: client}
}

// Put commits every entry of a version in a single HSET so a version is
// never observable half-written.
func (s *redisCacheStore) Put(ctx context.Context, version string, entries map[string]CachedResponse) error {
	fields := make(map[string]interface{}, len(entries))
	for url, resp := range entries {
		data, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("failed to encode cached response for %s: %w", url, err)
		}
		fields[url] = data
	}
	return s.client.HSet(ctx, cacheKeyPrefix+version, fields).Err()
}

func (s *redisCacheStore) Match(ctx context.Context, version, url string) (*CachedResponse, error) {
	data, err := s.client.HGet(ctx, cacheKeyPrefix+version, url).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp CachedResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached response for %s: %w", url, err)
	}
	return &resp, nil
}

func (s *redisCacheStore) Versions(ctx context.Context) ([]string, error) {
	var versions []string
	iter := s.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		versions = append(versions, strings.TrimPrefix(iter.Val(), cacheKeyPrefix))
	}
	return versions, iter.Err()
}

func (s *redisCacheStore) Delete(ctx context.Context, version string) error {
	return s.client.Del(ctx, cacheKeyPrefix+version).Err()
}

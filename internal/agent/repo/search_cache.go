package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/healthbot/server/internal/agent/model"
	errx "github.com/healthbot/server/internal/core/error"
	logx "github.com/healthbot/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "healthbot:search:"

// RedisSearchCache keeps provider search responses so repeating a topic
// does not spend another search call. It never stores session state.
type RedisSearchCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSearchCache(rdb redis.Cmdable, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{rdb: rdb, ttl: ttl}
}

func (r *RedisSearchCache) searchKey(query string) string {
	return searchKeyPrefix + NormalizeQuery(query)
}

// NormalizeQuery lower-cases the query and collapses whitespace so that
// "Type 2  Diabetes" and "type 2 diabetes" share a cache entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (r *RedisSearchCache) Load(ctx context.Context, query string) ([]model.Document, bool, error) {
	key := r.searchKey(query)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load search results from redis")
		return nil, false, errx.WrapRedis(err)
	}

	var docs []model.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal cached search results")
		return nil, false, fmt.Errorf("unmarshal cached search results: %w", err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, true, nil
}

func (r *RedisSearchCache) Store(ctx context.Context, query string, docs []model.Document) error {
	if docs == nil {
		docs = []model.Document{}
	}
	b, err := json.Marshal(docs)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("failed to marshal search results")
		return fmt.Errorf("marshal search results: %w", err)
	}
	key := r.searchKey(query)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store search results in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SearchCache = (*RedisSearchCache)(nil)

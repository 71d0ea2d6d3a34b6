package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"cardeals/internal/listing"
)

const (
	ResultsTTL     = 10 * time.Minute
	CreatedDateTTL = 30 * 24 * time.Hour
	ScrapeCooldown = 5 * time.Minute
)

type RedisCache struct {
	client *redis.Client
	log    logrus.FieldLogger
	prefix string
}

func NewRedisCache(addr, password string, db int, log logrus.FieldLogger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCache{
		client: client,
		log:    log.WithField("component", "cache"),
		prefix: "cardeals:",
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) key(kind, id string) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, kind, id)
}

func (r *RedisCache) CacheResults(ctx context.Context, searchURL string, records []listing.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key("results", searchURL), data, ResultsTTL).Err()
}

func (r *RedisCache) GetCachedResults(ctx context.Context, searchURL string) ([]listing.Record, bool) {
	data, err := r.client.Get(ctx, r.key("results", searchURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.log.WithError(err).Warn("Reading cached results failed")
		return nil, false
	}

	var records []listing.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}

	return records, true
}

// GetCreatedDate returns a created date resolved by an earlier crawl.
func (r *RedisCache) GetCreatedDate(ctx context.Context, listingURL string) (string, bool) {
	date, err := r.client.Get(ctx, r.key("created", listingURL)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.log.WithError(err).Debug("Reading cached created date failed")
		return "", false
	}
	return date, date != ""
}

func (r *RedisCache) SetCreatedDate(ctx context.Context, listingURL, date string) {
	if err := r.client.Set(ctx, r.key("created", listingURL), date, CreatedDateTTL).Err(); err != nil {
		r.log.WithError(err).Debug("Caching created date failed")
	}
}

// CanScrape allows one on-demand crawl per key per cooldown window.
func (r *RedisCache) CanScrape(ctx context.Context, key string) bool {
	k := r.key("rate_limit", key)
	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		r.log.WithError(err).Warn("Rate limit check failed")
		return true
	}
	if count == 1 {
		r.client.Expire(ctx, k, ScrapeCooldown)
	}
	return count == 1
}

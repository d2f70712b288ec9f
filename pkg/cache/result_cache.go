package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when no entry exists for the requested key.
var ErrCacheMiss = errors.New("result not found in cache")

// ResultCache stores assembled team selections keyed by a hash of the
// request, so identical pools and lock sets are answered without re-solving.
type ResultCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewResultCache creates a new result cache backed by redis.
func NewResultCache(client *redis.Client, logger *logrus.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		logger: logger,
	}
}

// Key derives a deterministic cache key from the canonical JSON encoding of
// the request.
func Key(prefix string, request interface{}) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request for cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, sum[:16]), nil
}

// Set stores a result under the given key.
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached result: %w", err)
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set result in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  key,
		"expiration": expiration,
	}).Debug("Cached optimization result")

	return nil
}

// Get loads a result into dest. Returns ErrCacheMiss when absent.
func (c *ResultCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get result from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	c.logger.WithField("cache_key", key).Debug("Retrieved optimization result from cache")
	return nil
}

// Delete removes a result from cache.
func (c *ResultCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete result from cache: %w", err)
	}
	c.logger.WithField("cache_key", key).Debug("Deleted optimization result from cache")
	return nil
}

// GetStatus returns cache statistics for the health endpoints.
func (c *ResultCache) GetStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service":   "optimization-cache",
		"timestamp": time.Now(),
		"connected": true,
	}

	if dbSize := c.client.DBSize(ctx); dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}

	keys, err := c.scanKeys(ctx, "pickteam:*")
	if err == nil {
		status["pickteam_keys"] = len(keys)
	}

	return status
}

// Flush clears all cached pick-team results.
func (c *ResultCache) Flush(ctx context.Context) error {
	keys, err := c.scanKeys(ctx, "pickteam:*")
	if err != nil {
		return fmt.Errorf("failed to scan pickteam keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete pickteam keys: %w", err)
		}
	}

	c.logger.WithField("deleted_keys", len(keys)).Info("Flushed optimization cache")
	return nil
}

func (c *ResultCache) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

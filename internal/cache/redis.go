package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
)

// ResultCache is a Redis-backed cache of processing results. Identical uploads
// with the same processing options skip extraction, cleanup, and redaction.
type ResultCache struct {
	client *redis.Client
	config config.CacheConfig
	logger *logger.Logger
	stats  *cacheStats
}

type cacheStats struct {
	hits   int64
	misses int64
}

// New creates a Redis-backed result cache and verifies connectivity.
func New(cfg config.CacheConfig, log *logger.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.MaxConnections
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	cache := &ResultCache{
		client: client,
		config: cfg,
		logger: log,
		stats:  &cacheStats{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Result cache initialized successfully",
		zap.String("redis_url", maskRedisURL(cfg.RedisURL)),
		zap.Int("max_connections", cfg.MaxConnections),
		zap.Duration("default_ttl", cfg.DefaultTTL))

	return cache, nil
}

func (rc *ResultCache) ping(ctx context.Context) error {
	_, err := rc.client.Ping(ctx).Result()
	return err
}

// Lookup returns the cached result for a document, or nil on a miss. Cache
// failures degrade to a miss so processing never depends on Redis health.
func (rc *ResultCache) Lookup(ctx context.Context, document []byte, useAI bool, language string) *CachedResult {
	key := rc.documentKey(document, useAI, language)

	data, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		rc.stats.misses++
		rc.logger.Debug("Cache miss", zap.String("key", key))
		return nil
	} else if err != nil {
		rc.logger.Error("Cache lookup failed", zap.Error(err))
		return nil
	}

	var result CachedResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		rc.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		rc.client.Del(ctx, key)
		return nil
	}

	rc.stats.hits++
	rc.logger.Debug("Cache hit",
		zap.String("key", key),
		zap.Int("findings", len(result.Findings)))

	return &result
}

// Store caches a processing result under the document's content key.
func (rc *ResultCache) Store(ctx context.Context, document []byte, useAI bool, language string, result *CachedResult) error {
	key := rc.documentKey(document, useAI, language)

	result.CachedAt = time.Now()
	result.TTL = int64(rc.config.DefaultTTL.Seconds())

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}

	if err := rc.client.Set(ctx, key, data, rc.config.DefaultTTL).Err(); err != nil {
		rc.logger.Error("Failed to cache result", zap.Error(err))
		return fmt.Errorf("failed to cache result: %w", err)
	}

	rc.logger.Debug("Result cached successfully",
		zap.String("key", key),
		zap.Int("findings", len(result.Findings)))

	return nil
}

// GetStats returns cache performance statistics.
func (rc *ResultCache) GetStats(ctx context.Context) (*Stats, error) {
	info, err := rc.client.Info(ctx, "memory", "stats").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis info: %w", err)
	}

	stats := &Stats{
		Hits:   rc.stats.hits,
		Misses: rc.stats.misses,
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, "used_memory:") {
			if memStr := strings.TrimPrefix(line, "used_memory:"); memStr != "" {
				if mem, err := strconv.ParseInt(memStr, 10, 64); err == nil {
					stats.MemoryUsage = mem
				}
			}
		}
	}

	if keys, err := rc.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}

	return stats, nil
}

// Clear removes all cached results under the configured key prefix.
func (rc *ResultCache) Clear(ctx context.Context) error {
	pattern := rc.config.KeyPrefix + ":doc:*"

	iter := rc.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	batchSize := 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		if err := rc.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			rc.logger.Error("Failed to delete cache keys", zap.Error(err))
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	rc.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection.
func (rc *ResultCache) Close() error {
	if rc.client != nil {
		return rc.client.Close()
	}
	return nil
}

// documentKey derives a stable cache key from the document bytes and the
// processing options that affect the output.
func (rc *ResultCache) documentKey(document []byte, useAI bool, language string) string {
	hasher := sha256.New()
	hasher.Write(document)
	hasher.Write([]byte(fmt.Sprintf("|ai=%t|lang=%s", useAI, language)))

	hash := hex.EncodeToString(hasher.Sum(nil))
	return fmt.Sprintf("%s:doc:%s", rc.config.KeyPrefix, hash[:16])
}

// maskRedisURL masks credentials in a Redis URL for logging.
func maskRedisURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}

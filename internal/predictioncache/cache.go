// internal/predictioncache/cache.go
package predictioncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/common/metrics"
	"medadmit-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const DefaultNamespace = "medadmit"

// Cache stores computed predictions in Redis keyed by a hash of the
// normalized applicant. Predictions are deterministic for a given reference
// snapshot, so the dataset version is part of every key.
//
// A nil *Cache is valid and never hits.
type Cache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
	logger    logger.Logger
}

// New returns a cache scoped to namespace and dataset version.
func New(client *redis.Client, ttl time.Duration, namespace, datasetVersion string, log logger.Logger) *Cache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if datasetVersion != "" {
		namespace = namespace + ":" + datasetVersion
	}
	return &Cache{
		client:    client,
		ttl:       ttl,
		namespace: namespace,
		logger:    log.WithFields(map[string]interface{}{"component": "prediction-cache"}),
	}
}

// Key builds the cache key for an operation on an applicant. scope narrows
// the key further, e.g. to a school id.
func (c *Cache) Key(operation string, applicant models.ApplicantInput, scope string) (string, error) {
	data, err := json.Marshal(applicant)
	if err != nil {
		return "", fmt.Errorf("marshal applicant: %w", err)
	}
	sum := sha256.Sum256(data)

	key := fmt.Sprintf("%s:%s:%s", c.prefix(), operation, hex.EncodeToString(sum[:]))
	if scope != "" {
		key += ":" + scope
	}
	return key, nil
}

func (c *Cache) prefix() string {
	if c == nil {
		return DefaultNamespace
	}
	return c.namespace
}

// Get decodes the cached value into dest. Any failure is a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.unavailable("read", key, err)
			metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
			return false
		}
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn("cache entry corrupt", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return false
	}

	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return true
}

// Set stores value under key with the configured TTL. Write failures are
// logged and otherwise ignored.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.unavailable("write", key, err)
	}
}

// unavailable logs a Redis failure. The caller falls back to computing.
func (c *Cache) unavailable(operation, key string, err error) {
	stdErr := errors.NewCacheUnavailableError(err).
		WithMetadata("operation", operation).
		WithMetadata("key", key)

	c.logger.Warn("cache "+operation+" failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
		"metadata":  stdErr.Metadata,
	})
}

package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/models"
)

// highRiskCacheKey holds the serialized high-risk project list.
const highRiskCacheKey = "risk:high_risk_projects"

// RiskCache caches the high-risk dashboard list in Redis. All methods are
// nil-receiver safe so callers can hold a nil cache when Redis is not
// configured. Cache failures degrade to a database read, never to an error.
type RiskCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRiskCache creates a RiskCache. Returns nil when the client is nil or the
// TTL is zero, which disables caching entirely.
func NewRiskCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RiskCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &RiskCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("risk-cache"),
	}
}

// GetHighRisk returns the cached list and true on a hit.
func (c *RiskCache) GetHighRisk(ctx context.Context) ([]*models.Project, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, highRiskCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Failed to read high-risk cache", zap.Error(err))
		}
		return nil, false
	}

	var projects []*models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		c.logger.Warn("Failed to decode high-risk cache", zap.Error(err))
		return nil, false
	}

	return projects, true
}

// SetHighRisk stores the list with the configured TTL.
func (c *RiskCache) SetHighRisk(ctx context.Context, projects []*models.Project) {
	if c == nil {
		return
	}

	data, err := json.Marshal(projects)
	if err != nil {
		c.logger.Warn("Failed to encode high-risk cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, highRiskCacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write high-risk cache", zap.Error(err))
	}
}

// Invalidate drops the cached list. Called after every recomputation since
// any score change can move a project across the HIGH threshold.
func (c *RiskCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, highRiskCacheKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate high-risk cache", zap.Error(err))
	}
}

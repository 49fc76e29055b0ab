package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/domain"
)

type cachedFeatureFlags struct {
	next   FeatureFlagRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFeatureFlagRepository wraps next with a Redis read-through cache.
// Cache failures are logged and fall through to next.
func NewCachedFeatureFlagRepository(next FeatureFlagRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) FeatureFlagRepository {
	if client == nil || ttl <= 0 {
		return next
	}
	return &cachedFeatureFlags{next: next, client: client, ttl: ttl, logger: logger}
}

type flagsCacheEntry struct {
	EnableStaffSelection bool      `json:"enable_staff_selection"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func flagsCacheKey(tenant domain.TenantID) string {
	return fmt.Sprintf("booking:flags:%s", tenant)
}

func (c *cachedFeatureFlags) Get(ctx context.Context, tenant domain.TenantID) (domain.FeatureFlags, error) {
	key := flagsCacheKey(tenant)
	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var entry flagsCacheEntry
		if err := json.Unmarshal([]byte(val), &entry); err == nil {
			return domain.FeatureFlags{EnableStaffSelection: entry.EnableStaffSelection, UpdatedAt: entry.UpdatedAt}, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("feature flag cache read failed", zap.String("tenant", string(tenant)), zap.Error(err))
	}

	flags, err := c.next.Get(ctx, tenant)
	if err != nil {
		return domain.FeatureFlags{}, err
	}

	data, err := json.Marshal(flagsCacheEntry{EnableStaffSelection: flags.EnableStaffSelection, UpdatedAt: flags.UpdatedAt})
	if err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("feature flag cache write failed", zap.String("tenant", string(tenant)), zap.Error(err))
		}
	}
	return flags, nil
}

func (c *cachedFeatureFlags) Upsert(ctx context.Context, tenant domain.TenantID, flags *domain.FeatureFlags) error {
	if err := c.next.Upsert(ctx, tenant, flags); err != nil {
		return err
	}
	if err := c.client.Del(ctx, flagsCacheKey(tenant)).Err(); err != nil {
		c.logger.Warn("feature flag cache invalidation failed", zap.String("tenant", string(tenant)), zap.Error(err))
	}
	return nil
}

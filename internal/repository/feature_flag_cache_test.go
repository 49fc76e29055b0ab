package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/domain"
)

type countingFlags struct {
	gets  int
	flags map[domain.TenantID]domain.FeatureFlags
}

func (c *countingFlags) Get(_ context.Context, tenant domain.TenantID) (domain.FeatureFlags, error) {
	c.gets++
	if f, ok := c.flags[tenant]; ok {
		return f, nil
	}
	return domain.DefaultFeatureFlags(), nil
}

func (c *countingFlags) Upsert(_ context.Context, tenant domain.TenantID, flags *domain.FeatureFlags) error {
	c.flags[tenant] = *flags
	return nil
}

func newCache(t *testing.T) (*miniredis.Miniredis, *countingFlags, FeatureFlagRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	next := &countingFlags{flags: map[domain.TenantID]domain.FeatureFlags{}}
	return mr, next, NewCachedFeatureFlagRepository(next, client, time.Minute, zap.NewNop())
}

func TestCachedFeatureFlags_ReadThrough(t *testing.T) {
	mr, next, repo := newCache(t)
	ctx := context.Background()

	flags, err := repo.Get(ctx, "salon-a")
	require.NoError(t, err)
	assert.True(t, flags.EnableStaffSelection)

	_, err = repo.Get(ctx, "salon-a")
	require.NoError(t, err)
	assert.Equal(t, 1, next.gets)
	assert.True(t, mr.Exists("booking:flags:salon-a"))

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "salon-a")
	require.NoError(t, err)
	assert.Equal(t, 2, next.gets)
}

func TestCachedFeatureFlags_UpsertInvalidates(t *testing.T) {
	mr, next, repo := newCache(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "salon-a")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, "salon-a", &domain.FeatureFlags{EnableStaffSelection: false}))
	assert.False(t, mr.Exists("booking:flags:salon-a"))

	flags, err := repo.Get(ctx, "salon-a")
	require.NoError(t, err)
	assert.False(t, flags.EnableStaffSelection)
	assert.Equal(t, 2, next.gets)
}

func TestCachedFeatureFlags_FallsBackWhenRedisDown(t *testing.T) {
	mr, next, repo := newCache(t)
	mr.Close()

	flags, err := repo.Get(context.Background(), "salon-a")
	require.NoError(t, err)
	assert.True(t, flags.EnableStaffSelection)
	assert.Equal(t, 1, next.gets)
}

func TestNewCachedFeatureFlagRepository_DisabledWithoutTTL(t *testing.T) {
	next := &countingFlags{flags: map[domain.TenantID]domain.FeatureFlags{}}
	repo := NewCachedFeatureFlagRepository(next, nil, time.Minute, zap.NewNop())
	assert.Same(t, next, repo)
}

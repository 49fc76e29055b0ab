package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/repository"
)

// FeatureFlagService reads and updates per-tenant feature flags.
type FeatureFlagService struct {
	flags  repository.FeatureFlagRepository
	logger *zap.Logger
}

// NewFeatureFlagService creates the service.
func NewFeatureFlagService(flags repository.FeatureFlagRepository, logger *zap.Logger) *FeatureFlagService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureFlagService{flags: flags, logger: logger}
}

// Get returns the tenant's flags.
func (s *FeatureFlagService) Get(ctx context.Context, tenant domain.TenantID) (domain.FeatureFlags, error) {
	flags, err := s.flags.Get(ctx, tenant)
	if err != nil {
		return domain.FeatureFlags{}, translateError(err)
	}
	return flags, nil
}

// Set stores the tenant's flags.
func (s *FeatureFlagService) Set(ctx context.Context, tenant domain.TenantID, actorID string, flags domain.FeatureFlags) (domain.FeatureFlags, error) {
	if err := s.flags.Upsert(ctx, tenant, &flags); err != nil {
		return domain.FeatureFlags{}, translateError(err)
	}
	s.logger.Info("feature flags updated",
		zap.String("tenant", string(tenant)),
		zap.String("actor", actorID),
		zap.Bool("enable_staff_selection", flags.EnableStaffSelection))
	return flags, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/booking-service/internal/domain"
)

// FeatureFlagRepository reads and writes per-tenant feature flags.
type FeatureFlagRepository interface {
	// Get returns the tenant's flags, or the defaults when none are stored.
	Get(ctx context.Context, tenant domain.TenantID) (domain.FeatureFlags, error)
	Upsert(ctx context.Context, tenant domain.TenantID, flags *domain.FeatureFlags) error
}

type featureFlagRepository struct {
	db DBTX
}

// NewFeatureFlagRepository instantiates the repository.
func NewFeatureFlagRepository(db DBTX) FeatureFlagRepository {
	return &featureFlagRepository{db: db}
}

func (r *featureFlagRepository) Get(ctx context.Context, tenant domain.TenantID) (domain.FeatureFlags, error) {
	const query = `SELECT enable_staff_selection, updated_at FROM feature_flags WHERE tenant_id=$1`

	var flags domain.FeatureFlags
	err := translate(r.db.QueryRow(ctx, query, tenant).Scan(&flags.EnableStaffSelection, &flags.UpdatedAt))
	if errors.Is(err, ErrNotFound) {
		return domain.DefaultFeatureFlags(), nil
	}
	if err != nil {
		return domain.FeatureFlags{}, err
	}
	return flags, nil
}

func (r *featureFlagRepository) Upsert(ctx context.Context, tenant domain.TenantID, flags *domain.FeatureFlags) error {
	const query = `
        INSERT INTO feature_flags (tenant_id, enable_staff_selection)
        VALUES ($1,$2)
        ON CONFLICT (tenant_id) DO UPDATE SET enable_staff_selection=EXCLUDED.enable_staff_selection, updated_at=NOW()
        RETURNING updated_at`
	return translate(r.db.QueryRow(ctx, query, tenant, flags.EnableStaffSelection).Scan(&flags.UpdatedAt))
}

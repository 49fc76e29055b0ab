package repository

import (
	"context"

	"github.com/spec-kit/booking-service/internal/domain"
)

// MenuRepository handles persistence for bookable menus.
type MenuRepository interface {
	Create(ctx context.Context, menu *domain.Menu) error
	GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.Menu, error)
}

type menuRepository struct {
	db DBTX
}

// NewMenuRepository instantiates the repository.
func NewMenuRepository(db DBTX) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, menu *domain.Menu) error {
	const query = `
        INSERT INTO booking_menus (id, tenant_id, name, price, duration, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		menu.ID,
		menu.TenantID,
		menu.Name,
		menu.Price,
		menu.DurationMinutes,
		menu.Active,
	).Scan(&menu.CreatedAt, &menu.UpdatedAt)
	return translate(err)
}

func (r *menuRepository) GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.Menu, error) {
	const query = `
        SELECT id, tenant_id, name, price, duration, active_flag, created_at, updated_at
        FROM booking_menus WHERE tenant_id=$1 AND id=$2`

	var menu domain.Menu
	if err := r.db.QueryRow(ctx, query, tenant, id).Scan(
		&menu.ID,
		&menu.TenantID,
		&menu.Name,
		&menu.Price,
		&menu.DurationMinutes,
		&menu.Active,
		&menu.CreatedAt,
		&menu.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &menu, nil
}

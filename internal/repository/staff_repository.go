package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/booking-service/internal/domain"
)

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.StaffMember, error)
	// List returns the tenant's staff ordered by creation time, then id.
	List(ctx context.Context, tenant domain.TenantID, filter StaffFilter) ([]domain.StaffMember, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Active *bool
	Role   *string
}

type staffRepository struct {
	db DBTX
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db DBTX) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO booking_staff (id, tenant_id, name, email, role, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		staff.ID,
		staff.TenantID,
		staff.Name,
		staff.Email,
		staff.Role,
		staff.Active,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
	return translate(err)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE booking_staff
        SET name=$1, email=$2, role=$3, active_flag=$4, updated_at=NOW()
        WHERE tenant_id=$5 AND id=$6`

	cmd, err := r.db.Exec(ctx, query,
		staff.Name,
		staff.Email,
		staff.Role,
		staff.Active,
		staff.TenantID,
		staff.ID,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows)
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, tenant_id, name, email, role, active_flag, created_at, updated_at
        FROM booking_staff WHERE tenant_id=$1 AND id=$2`

	var staff domain.StaffMember
	if err := r.db.QueryRow(ctx, query, tenant, id).Scan(
		&staff.ID,
		&staff.TenantID,
		&staff.Name,
		&staff.Email,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, tenant domain.TenantID, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `
        SELECT id, tenant_id, name, email, role, active_flag, created_at, updated_at
        FROM booking_staff`
	args := []any{tenant}
	clauses := []string{"tenant_id=$1"}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	query += " WHERE " + strings.Join(clauses, " AND ")
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(
			&staff.ID,
			&staff.TenantID,
			&staff.Name,
			&staff.Email,
			&staff.Role,
			&staff.Active,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

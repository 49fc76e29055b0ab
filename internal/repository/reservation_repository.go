package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/booking-service/internal/domain"
)

// ReservationFilter narrows FindActive. Nil fields do not filter.
type ReservationFilter struct {
	StaffID *string
	UserID  *string
	// Unassigned keeps only reservations without a staff member.
	Unassigned bool
}

// ReservationRepository encapsulates reservation persistence.
type ReservationRepository interface {
	// FindActive returns the PENDING/CONFIRMED reservations of a tenant on
	// date, with menu durations resolved, ordered by start time.
	FindActive(ctx context.Context, tenant domain.TenantID, date time.Time, filter ReservationFilter) ([]domain.ActiveReservation, error)
	Insert(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, tenant domain.TenantID, id string, status domain.ReservationStatus) error
}

type reservationRepository struct {
	db DBTX
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(db DBTX) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) FindActive(ctx context.Context, tenant domain.TenantID, date time.Time, filter ReservationFilter) ([]domain.ActiveReservation, error) {
	base := `SELECT r.id, r.user_id, r.staff_id, r.reserved_time, m.duration, r.status
             FROM booking_reservations r
             JOIN booking_menus m ON m.id = r.menu_id`
	args := []any{tenant, date}
	clauses := []string{"r.tenant_id=$1", "r.reserved_date=$2"}

	placeholders := make([]string, len(domain.ActiveStatuses))
	for i, status := range domain.ActiveStatuses {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	clauses = append(clauses, fmt.Sprintf("r.status IN (%s)", strings.Join(placeholders, ",")))

	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		clauses = append(clauses, fmt.Sprintf("r.staff_id=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("r.user_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "r.staff_id IS NULL")
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.reserved_time, r.id`, base, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActiveReservation
	for rows.Next() {
		var res domain.ActiveReservation
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.StaffID,
			&res.StartTime,
			&res.DurationMinutes,
			&res.Status,
		); err != nil {
			return nil, err
		}
		result = append(result, res)
	}
	return result, rows.Err()
}

func (r *reservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	const query = `
        INSERT INTO booking_reservations (id, tenant_id, user_id, menu_id, staff_id, reserved_date, reserved_time, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		res.ID,
		res.TenantID,
		res.UserID,
		res.MenuID,
		res.StaffID,
		res.ReservedDate,
		res.ReservedTime,
		res.Status,
		res.Notes,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	return translate(err)
}

func (r *reservationRepository) GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.Reservation, error) {
	const query = `
        SELECT id, tenant_id, user_id, menu_id, staff_id, reserved_date, reserved_time, status, notes, created_at, updated_at
        FROM booking_reservations WHERE tenant_id=$1 AND id=$2`

	var res domain.Reservation
	if err := r.db.QueryRow(ctx, query, tenant, id).Scan(
		&res.ID,
		&res.TenantID,
		&res.UserID,
		&res.MenuID,
		&res.StaffID,
		&res.ReservedDate,
		&res.ReservedTime,
		&res.Status,
		&res.Notes,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, tenant domain.TenantID, id string, status domain.ReservationStatus) error {
	const query = `
        UPDATE booking_reservations SET status=$1, updated_at=NOW()
        WHERE tenant_id=$2 AND id=$3`
	cmd, err := r.db.Exec(ctx, query, status, tenant, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows)
	}
	return nil
}

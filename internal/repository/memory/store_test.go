package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/repository"
)

const tenant = domain.TenantID("salon-a")

func strPtr(s string) *string { return &s }

func day(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", "2030-06-03")
	require.NoError(t, err)
	return d
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Menus().Create(ctx, &domain.Menu{ID: "cut", TenantID: tenant, Name: "Cut", DurationMinutes: 60, Active: true}))
	require.NoError(t, s.Menus().Create(ctx, &domain.Menu{ID: "other-cut", TenantID: "salon-b", Name: "Cut", DurationMinutes: 30, Active: true}))
}

func reservation(t *testing.T, id, user string, staff *string, at string) *domain.Reservation {
	return &domain.Reservation{
		ID:           id,
		TenantID:     tenant,
		UserID:       user,
		MenuID:       "cut",
		StaffID:      staff,
		ReservedDate: day(t),
		ReservedTime: at,
		Status:       domain.ReservationStatusPending,
	}
}

func TestReservations_FindActiveFilters(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	repo := s.Reservations()

	require.NoError(t, repo.Insert(ctx, reservation(t, "r2", "u1", strPtr("staff-a"), "11:00")))
	require.NoError(t, repo.Insert(ctx, reservation(t, "r1", "u2", nil, "10:00")))
	cancelled := reservation(t, "r3", "u3", strPtr("staff-a"), "12:00")
	cancelled.Status = domain.ReservationStatusCancelled
	require.NoError(t, repo.Insert(ctx, cancelled))

	all, err := repo.FindActive(ctx, tenant, day(t), repository.ReservationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r1", all[0].ID)
	assert.Equal(t, "r2", all[1].ID)
	assert.Equal(t, 60, all[0].DurationMinutes)

	byStaff, err := repo.FindActive(ctx, tenant, day(t), repository.ReservationFilter{StaffID: strPtr("staff-a")})
	require.NoError(t, err)
	require.Len(t, byStaff, 1)
	assert.Equal(t, "r2", byStaff[0].ID)

	unassigned, err := repo.FindActive(ctx, tenant, day(t), repository.ReservationFilter{Unassigned: true})
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, "r1", unassigned[0].ID)

	byUser, err := repo.FindActive(ctx, tenant, day(t), repository.ReservationFilter{UserID: strPtr("u1")})
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	otherTenant, err := repo.FindActive(ctx, "salon-b", day(t), repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, otherTenant)
}

func TestReservations_DuplicateStaffSlot(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	repo := s.Reservations()

	require.NoError(t, repo.Insert(ctx, reservation(t, "r1", "u1", strPtr("staff-a"), "10:00")))
	err := repo.Insert(ctx, reservation(t, "r2", "u2", strPtr("staff-a"), "10:00"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// unassigned reservations are not covered by the uniqueness rule
	require.NoError(t, repo.Insert(ctx, reservation(t, "r3", "u3", nil, "10:00")))
	require.NoError(t, repo.Insert(ctx, reservation(t, "r4", "u4", nil, "10:00")))

	require.NoError(t, repo.UpdateStatus(ctx, tenant, "r1", domain.ReservationStatusCancelled))
	require.NoError(t, repo.Insert(ctx, reservation(t, "r5", "u5", strPtr("staff-a"), "10:00")))
}

func TestReservations_GetAndUpdateAreTenantScoped(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	repo := s.Reservations()
	require.NoError(t, repo.Insert(ctx, reservation(t, "r1", "u1", nil, "10:00")))

	_, err := repo.GetByID(ctx, "salon-b", "r1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "salon-b", "r1", domain.ReservationStatusCancelled), repository.ErrNotFound)

	got, err := repo.GetByID(ctx, tenant, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStaff_ListOrdering(t *testing.T) {
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore()
	ctx := context.Background()
	repo := s.Staff()

	require.NoError(t, repo.Create(ctx, &domain.StaffMember{ID: "b", TenantID: tenant, Active: true, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.StaffMember{ID: "a", TenantID: tenant, Active: true, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.StaffMember{ID: "c", TenantID: tenant, Active: false, CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.StaffMember{ID: "z", TenantID: "salon-b", Active: true, CreatedAt: base}))

	active := true
	list, err := repo.List(ctx, tenant, repository.StaffFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	all, err := repo.List(ctx, tenant, repository.StaffFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, repository.LockKey{Tenant: tenant, Date: day(t)}, func(ctx context.Context, store repository.Store) error {
		require.NoError(t, store.Reservations().Insert(ctx, reservation(t, "r1", "u1", nil, "10:00")))
		found, err := store.Reservations().FindActive(ctx, tenant, day(t), repository.ReservationFilter{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Reservations().GetByID(ctx, tenant, "r1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithinTx_Commits(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, repository.LockKey{Tenant: tenant, Date: day(t)}, func(ctx context.Context, store repository.Store) error {
		return store.Reservations().Insert(ctx, reservation(t, "r1", "u1", nil, "10:00"))
	})
	require.NoError(t, err)

	_, err = s.Reservations().GetByID(ctx, tenant, "r1")
	assert.NoError(t, err)
}

func TestFeatureFlags_DefaultsAndUpsert(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.FeatureFlags()

	flags, err := repo.Get(ctx, tenant)
	require.NoError(t, err)
	assert.True(t, flags.EnableStaffSelection)

	require.NoError(t, repo.Upsert(ctx, tenant, &domain.FeatureFlags{EnableStaffSelection: false}))
	flags, err = repo.Get(ctx, tenant)
	require.NoError(t, err)
	assert.False(t, flags.EnableStaffSelection)
	assert.False(t, flags.UpdatedAt.IsZero())

	other, err := repo.Get(ctx, "salon-b")
	require.NoError(t, err)
	assert.True(t, other.EnableStaffSelection)
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/timeslot"
)

func sameDay(a, b time.Time) bool {
	return timeslot.FormatDate(a) == timeslot.FormatDate(b)
}

type reservationRepository struct {
	a access
}

func (r *reservationRepository) FindActive(ctx context.Context, tenant domain.TenantID, date time.Time, filter repository.ReservationFilter) ([]domain.ActiveReservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []domain.ActiveReservation
	r.a.read(func(st *state) {
		for _, res := range st.reservations {
			if res.TenantID != tenant || !sameDay(res.ReservedDate, date) || !res.Status.Occupies() {
				continue
			}
			if filter.StaffID != nil && (res.StaffID == nil || *res.StaffID != *filter.StaffID) {
				continue
			}
			if filter.UserID != nil && res.UserID != *filter.UserID {
				continue
			}
			if filter.Unassigned && res.StaffID != nil {
				continue
			}
			menu, ok := st.menus[res.MenuID]
			if !ok || menu.TenantID != tenant {
				continue
			}
			result = append(result, domain.ActiveReservation{
				ID:              res.ID,
				UserID:          res.UserID,
				StaffID:         cloneString(res.StaffID),
				StartTime:       res.ReservedTime,
				DurationMinutes: menu.DurationMinutes,
				Status:          res.Status,
			})
		}
	})

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *reservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.a.write(func(st *state) error {
		if _, exists := st.reservations[res.ID]; exists {
			return repository.ErrDuplicate
		}
		if res.StaffID != nil && res.Status.Occupies() {
			for _, other := range st.reservations {
				if other.TenantID == res.TenantID &&
					other.StaffID != nil && *other.StaffID == *res.StaffID &&
					sameDay(other.ReservedDate, res.ReservedDate) &&
					other.ReservedTime == res.ReservedTime &&
					other.Status.Occupies() {
					return repository.ErrDuplicate
				}
			}
		}
		now := r.a.now()
		res.CreatedAt = now
		res.UpdatedAt = now
		stored := *res
		stored.StaffID = cloneString(res.StaffID)
		st.reservations[res.ID] = stored
		return nil
	})
}

func (r *reservationRepository) GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		found domain.Reservation
		ok    bool
	)
	r.a.read(func(st *state) {
		found, ok = st.reservations[id]
	})
	if !ok || found.TenantID != tenant {
		return nil, repository.ErrNotFound
	}
	found.StaffID = cloneString(found.StaffID)
	return &found, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, tenant domain.TenantID, id string, status domain.ReservationStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.a.write(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok || res.TenantID != tenant {
			return repository.ErrNotFound
		}
		res.Status = status
		res.UpdatedAt = r.a.now()
		st.reservations[id] = res
		return nil
	})
}

type staffRepository struct {
	a access
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.a.write(func(st *state) error {
		if _, exists := st.staff[staff.ID]; exists {
			return repository.ErrDuplicate
		}
		now := r.a.now()
		if staff.CreatedAt.IsZero() {
			staff.CreatedAt = now
		}
		staff.UpdatedAt = now
		st.staff[staff.ID] = *staff
		return nil
	})
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.a.write(func(st *state) error {
		existing, ok := st.staff[staff.ID]
		if !ok || existing.TenantID != staff.TenantID {
			return repository.ErrNotFound
		}
		staff.CreatedAt = existing.CreatedAt
		staff.UpdatedAt = r.a.now()
		st.staff[staff.ID] = *staff
		return nil
	})
}

func (r *staffRepository) GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.StaffMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		found domain.StaffMember
		ok    bool
	)
	r.a.read(func(st *state) {
		found, ok = st.staff[id]
	})
	if !ok || found.TenantID != tenant {
		return nil, repository.ErrNotFound
	}
	return &found, nil
}

func (r *staffRepository) List(ctx context.Context, tenant domain.TenantID, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []domain.StaffMember
	r.a.read(func(st *state) {
		for _, staff := range st.staff {
			if staff.TenantID != tenant {
				continue
			}
			if filter.Active != nil && staff.Active != *filter.Active {
				continue
			}
			if filter.Role != nil && staff.Role != *filter.Role {
				continue
			}
			result = append(result, staff)
		}
	})
	sort.Slice(result, func(i, j int) bool { return domain.StaffLess(result[i], result[j]) })
	return result, nil
}

type menuRepository struct {
	a access
}

func (r *menuRepository) Create(ctx context.Context, menu *domain.Menu) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.a.write(func(st *state) error {
		if _, exists := st.menus[menu.ID]; exists {
			return repository.ErrDuplicate
		}
		now := r.a.now()
		menu.CreatedAt = now
		menu.UpdatedAt = now
		st.menus[menu.ID] = *menu
		return nil
	})
}

func (r *menuRepository) GetByID(ctx context.Context, tenant domain.TenantID, id string) (*domain.Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		found domain.Menu
		ok    bool
	)
	r.a.read(func(st *state) {
		found, ok = st.menus[id]
	})
	if !ok || found.TenantID != tenant {
		return nil, repository.ErrNotFound
	}
	return &found, nil
}

type featureFlagRepository struct {
	a access
}

func (r *featureFlagRepository) Get(ctx context.Context, tenant domain.TenantID) (domain.FeatureFlags, error) {
	if err := ctx.Err(); err != nil {
		return domain.FeatureFlags{}, err
	}
	var (
		flags domain.FeatureFlags
		ok    bool
	)
	r.a.read(func(st *state) {
		flags, ok = st.flags[tenant]
	})
	if !ok {
		return domain.DefaultFeatureFlags(), nil
	}
	return flags, nil
}

func (r *featureFlagRepository) Upsert(ctx context.Context, tenant domain.TenantID, flags *domain.FeatureFlags) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.a.write(func(st *state) error {
		flags.UpdatedAt = r.a.now()
		st.flags[tenant] = *flags
		return nil
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

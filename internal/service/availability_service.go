package service

import (
	"context"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/observability"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/timeslot"
)

// HoursProvider resolves a tenant's business hours.
type HoursProvider interface {
	HoursFor(tenant domain.TenantID) domain.BusinessHours
}

// AvailabilityQuery asks for the slots of one date and menu.
type AvailabilityQuery struct {
	Tenant  domain.TenantID
	Date    string
	MenuID  string
	StaffID *string
}

// AvailabilityResult is the resolved day.
type AvailabilityResult struct {
	Date            string
	MenuID          string
	StaffID         *string
	DurationMinutes int
	StaffSelection  bool
	Slots           []domain.Slot
}

// AvailabilityService computes bookable slots. Reads are not locked; the
// result is advisory and re-checked when a booking is committed.
type AvailabilityService struct {
	store    repository.Store
	flags    repository.FeatureFlagRepository
	schedule HoursProvider
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// AvailabilityDependencies bundles collaborators.
type AvailabilityDependencies struct {
	Store    repository.Store
	Flags    repository.FeatureFlagRepository
	Schedule HoursProvider
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	Clock    func() time.Time
}

// NewAvailabilityService creates the service.
func NewAvailabilityService(deps AvailabilityDependencies) *AvailabilityService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		store:    deps.Store,
		flags:    deps.Flags,
		schedule: deps.Schedule,
		metrics:  deps.Metrics,
		logger:   logger,
		now:      clock,
	}
}

// ResolveSlots returns every candidate slot of the day with its availability.
//
// With staff selection enabled and a StaffID given, a slot is available when
// that staff member is active and free. Otherwise all active staff form one
// pool: a slot is available when no unassigned reservation overlaps it and
// at least one staff member is free, and the first free one in creation
// order is reported on the slot.
func (s *AvailabilityService) ResolveSlots(ctx context.Context, q AvailabilityQuery) (*AvailabilityResult, error) {
	date, err := timeslot.ParseDate(q.Date)
	if err != nil {
		return nil, translateError(err)
	}

	menu, err := s.store.Menus().GetByID(ctx, q.Tenant, q.MenuID)
	if err != nil {
		return nil, lookupError(err, "menu", map[string]any{"menu_id": q.MenuID})
	}
	if !menu.Active {
		return nil, lookupError(repository.ErrNotFound, "menu", map[string]any{"menu_id": q.MenuID})
	}

	flags, err := s.flags.Get(ctx, q.Tenant)
	if err != nil {
		return nil, translateError(err)
	}

	day, err := NewBusinessDay(s.schedule.HoursFor(q.Tenant), date, s.now())
	if err != nil {
		return nil, translateError(err)
	}
	candidates, err := day.Slots()
	if err != nil {
		return nil, translateError(err)
	}

	result := &AvailabilityResult{
		Date:            timeslot.FormatDate(date),
		MenuID:          menu.ID,
		DurationMinutes: menu.DurationMinutes,
		StaffSelection:  flags.EnableStaffSelection,
		Slots:           []domain.Slot{},
	}

	if q.StaffID != nil && flags.EnableStaffSelection {
		result.StaffID = q.StaffID
		result.Slots, err = s.resolveForStaff(ctx, q.Tenant, date, *q.StaffID, menu.DurationMinutes, day, candidates)
		s.metrics.AvailabilityQueried("staff")
	} else {
		result.Slots, err = s.resolvePooled(ctx, q.Tenant, date, menu.DurationMinutes, day, candidates)
		s.metrics.AvailabilityQueried("pooled")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("availability resolved",
		zap.String("tenant", string(q.Tenant)),
		zap.String("date", result.Date),
		zap.String("menu_id", menu.ID),
		zap.Int("slots", len(result.Slots)))
	return result, nil
}

func (s *AvailabilityService) resolveForStaff(ctx context.Context, tenant domain.TenantID, date time.Time, staffID string, duration int, day *BusinessDay, candidates iter.Seq[string]) ([]domain.Slot, error) {
	staff, err := s.store.Staff().GetByID(ctx, tenant, staffID)
	if err != nil {
		return nil, lookupError(err, "staff", map[string]any{"staff_id": staffID})
	}

	reservations, err := s.store.Reservations().FindActive(ctx, tenant, date, repository.ReservationFilter{StaffID: &staffID})
	if err != nil {
		return nil, translateError(err)
	}
	occ, err := newOccupancy(reservations)
	if err != nil {
		return nil, translateError(err)
	}

	slots := []domain.Slot{}
	for start := range candidates {
		iv, err := timeslot.NewInterval(start, duration)
		if err != nil {
			return nil, translateError(err)
		}
		slots = append(slots, domain.Slot{
			Time:      start,
			Available: staff.Active && day.Check(iv) == SlotOpen && !occ.staffBusy(staffID, iv),
		})
	}
	return slots, nil
}

func (s *AvailabilityService) resolvePooled(ctx context.Context, tenant domain.TenantID, date time.Time, duration int, day *BusinessDay, candidates iter.Seq[string]) ([]domain.Slot, error) {
	staff, err := activeStaff(ctx, s.store, tenant)
	if err != nil {
		return nil, translateError(err)
	}
	reservations, err := s.store.Reservations().FindActive(ctx, tenant, date, repository.ReservationFilter{})
	if err != nil {
		return nil, translateError(err)
	}
	occ, err := newOccupancy(reservations)
	if err != nil {
		return nil, translateError(err)
	}

	slots := []domain.Slot{}
	for start := range candidates {
		iv, err := timeslot.NewInterval(start, duration)
		if err != nil {
			return nil, translateError(err)
		}
		slot := domain.Slot{Time: start}
		if day.Check(iv) == SlotOpen && !occ.poolBusy(iv) {
			if id := occ.firstFreeStaff(staff, iv); id != nil {
				slot.Available = true
				slot.StaffID = id
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

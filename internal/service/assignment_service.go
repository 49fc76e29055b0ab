package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/timeslot"
)

// AssignmentService picks a staff member for bookings without a preference.
type AssignmentService struct{}

// NewAssignmentService creates the service.
func NewAssignmentService() *AssignmentService {
	return &AssignmentService{}
}

// FindAvailableStaff returns the first active staff member, in creation
// order, with no active reservation overlapping [start, start+duration) on
// date. It returns nil without error when everyone is busy.
//
// It reads through store so that, called inside a unit of work, the choice is
// made against the same data the commit will see.
func (s *AssignmentService) FindAvailableStaff(ctx context.Context, store repository.Store, tenant domain.TenantID, date time.Time, start string, duration int) (*string, error) {
	iv, err := timeslot.NewInterval(start, duration)
	if err != nil {
		return nil, err
	}

	staff, err := activeStaff(ctx, store, tenant)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return nil, nil
	}

	reservations, err := store.Reservations().FindActive(ctx, tenant, date, repository.ReservationFilter{})
	if err != nil {
		return nil, err
	}
	occ, err := newOccupancy(reservations)
	if err != nil {
		return nil, err
	}
	return occ.firstFreeStaff(staff, iv), nil
}

func activeStaff(ctx context.Context, store repository.Store, tenant domain.TenantID) ([]domain.StaffMember, error) {
	staff, err := store.Staff().List(ctx, tenant, repository.StaffFilter{Active: ptrBool(true)})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(staff, func(i, j int) bool {
		return domain.StaffLess(staff[i], staff[j])
	})
	return staff, nil
}

// occupancy indexes a day's active reservations by staff member.
type occupancy struct {
	byStaff    map[string][]timeslot.Interval
	unassigned []timeslot.Interval
}

func newOccupancy(reservations []domain.ActiveReservation) (*occupancy, error) {
	occ := &occupancy{byStaff: make(map[string][]timeslot.Interval)}
	for _, r := range reservations {
		if !r.Status.Occupies() {
			continue
		}
		iv, err := timeslot.NewInterval(r.StartTime, r.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if r.StaffID == nil {
			occ.unassigned = append(occ.unassigned, iv)
			continue
		}
		occ.byStaff[*r.StaffID] = append(occ.byStaff[*r.StaffID], iv)
	}
	return occ, nil
}

func (o *occupancy) staffBusy(staffID string, iv timeslot.Interval) bool {
	return overlapsAny(o.byStaff[staffID], iv)
}

func (o *occupancy) poolBusy(iv timeslot.Interval) bool {
	return overlapsAny(o.unassigned, iv)
}

func (o *occupancy) firstFreeStaff(staff []domain.StaffMember, iv timeslot.Interval) *string {
	for _, member := range staff {
		if !o.staffBusy(member.ID, iv) {
			id := member.ID
			return &id
		}
	}
	return nil
}

func overlapsAny(busy []timeslot.Interval, iv timeslot.Interval) bool {
	for _, b := range busy {
		if b.Overlaps(iv) {
			return true
		}
	}
	return false
}

func ptrBool(v bool) *bool {
	return &v
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/events"
	"github.com/spec-kit/booking-service/internal/observability"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/timeslot"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

// BookingService commits reservations and drives their status machine.
type BookingService struct {
	store      repository.Store
	tx         repository.TxManager
	flags      repository.FeatureFlagRepository
	schedule   HoursProvider
	assigner   *AssignmentService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	Store      repository.Store
	TxManager  repository.TxManager
	Flags      repository.FeatureFlagRepository
	Schedule   HoursProvider
	Assigner   *AssignmentService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      func() time.Time
	IDs        func() string
}

// CreateReservationInput describes a booking command.
type CreateReservationInput struct {
	Tenant  domain.TenantID
	UserID  string
	MenuID  string
	Date    string
	Time    string
	StaffID *string
	Notes   string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	s := &BookingService{
		store:      deps.Store,
		tx:         deps.TxManager,
		flags:      deps.Flags,
		schedule:   deps.Schedule,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
		newID:      deps.IDs,
	}
	if s.assigner == nil {
		s.assigner = NewAssignmentService()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreateReservation validates the request, then re-checks every conflict
// and inserts the row inside one unit of work locked on the tenant-day.
//
// Without a staff preference the unassigned pool is checked and a staff
// member is auto-assigned in the same unit of work; if nobody is free the
// command fails with FULLY_BOOKED rather than CONFLICT.
func (s *BookingService) CreateReservation(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	res, err := s.createReservation(ctx, in)
	if err != nil {
		code := apperrors.ToDomainError(err).Code
		s.metrics.BookingRejected(code)
		s.logger.Info("reservation rejected",
			zap.String("tenant", string(in.Tenant)),
			zap.String("user_id", in.UserID),
			zap.String("date", in.Date),
			zap.String("time", in.Time),
			zap.String("code", code))
		return nil, err
	}
	return res, nil
}

func (s *BookingService) createReservation(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperrors.NewUnauthorized("user required")
	}
	tod, err := timeslot.ParseTimeString(in.Time)
	if err != nil {
		return nil, translateError(err)
	}
	date, err := timeslot.ParseDate(in.Date)
	if err != nil {
		return nil, translateError(err)
	}
	if utf8.RuneCountInString(in.Notes) > domain.MaxNotesLength {
		return nil, apperrors.NewValidationError("notes too long", map[string]any{"max_length": domain.MaxNotesLength})
	}
	startTime := tod.String()

	menu, err := s.store.Menus().GetByID(ctx, in.Tenant, in.MenuID)
	if err != nil {
		return nil, lookupError(err, "menu", map[string]any{"menu_id": in.MenuID})
	}
	if !menu.Active {
		return nil, apperrors.NewNotFound("menu", map[string]any{"menu_id": in.MenuID})
	}
	iv, err := timeslot.NewInterval(startTime, menu.DurationMinutes)
	if err != nil {
		return nil, translateError(err)
	}

	day, err := NewBusinessDay(s.schedule.HoursFor(in.Tenant), date, s.now())
	if err != nil {
		return nil, translateError(err)
	}
	if state := day.Check(iv); state != SlotOpen {
		return nil, slotStateError(state, in.Date, startTime)
	}

	flags, err := s.flags.Get(ctx, in.Tenant)
	if err != nil {
		return nil, translateError(err)
	}

	var chosenStaff *string
	if in.StaffID != nil && *in.StaffID != "" {
		if !flags.EnableStaffSelection {
			return nil, apperrors.NewValidationError("staff selection is disabled", map[string]any{"staff_id": *in.StaffID})
		}
		staff, err := s.store.Staff().GetByID(ctx, in.Tenant, *in.StaffID)
		if err != nil {
			return nil, lookupError(err, "staff", map[string]any{"staff_id": *in.StaffID})
		}
		if !staff.Active {
			return nil, apperrors.NewValidationError("staff member is not active", map[string]any{"staff_id": staff.ID})
		}
		chosenStaff = &staff.ID
	}

	reservation := &domain.Reservation{
		ID:           s.newID(),
		TenantID:     in.Tenant,
		UserID:       in.UserID,
		MenuID:       menu.ID,
		StaffID:      chosenStaff,
		ReservedDate: date,
		ReservedTime: startTime,
		Status:       domain.ReservationStatusPending,
		Notes:        in.Notes,
	}

	key := repository.LockKey{Tenant: in.Tenant, Date: date}
	err = s.tx.WithinTx(ctx, key, func(ctx context.Context, store repository.Store) error {
		return s.guardAndInsert(ctx, store, reservation, menu.DurationMinutes, iv)
	})
	if err != nil {
		return nil, translateError(err)
	}

	mode := "staff"
	if chosenStaff == nil {
		mode = "auto"
	}
	s.metrics.ReservationCreated(mode)
	s.logger.Info("reservation created",
		zap.String("tenant", string(reservation.TenantID)),
		zap.String("reservation_id", reservation.ID),
		zap.String("user_id", reservation.UserID),
		zap.Stringp("staff_id", reservation.StaffID),
		zap.String("date", in.Date),
		zap.String("time", startTime),
		zap.String("mode", mode))

	s.publish(ctx, events.EventReservationCreated, reservation, domain.SubjectRoleUser, reservation.UserID, events.ReservationCreatedPayload{
		UserID:       reservation.UserID,
		MenuID:       reservation.MenuID,
		StaffID:      reservation.StaffID,
		Date:         timeslot.FormatDate(reservation.ReservedDate),
		Time:         reservation.ReservedTime,
		AutoAssigned: chosenStaff == nil,
	})
	return reservation, nil
}

// guardAndInsert runs inside the unit of work. Every read here sees the
// commits that finished before the tenant-day lock was granted.
func (s *BookingService) guardAndInsert(ctx context.Context, store repository.Store, res *domain.Reservation, duration int, iv timeslot.Interval) error {
	reservations := store.Reservations()

	userID := res.UserID
	mine, err := reservations.FindActive(ctx, res.TenantID, res.ReservedDate, repository.ReservationFilter{UserID: &userID})
	if err != nil {
		return err
	}
	if busy, err := anyActiveOverlap(mine, iv); err != nil {
		return err
	} else if busy {
		return apperrors.NewConflict("user already booked this time", map[string]any{"time": res.ReservedTime})
	}

	if res.StaffID != nil {
		theirs, err := reservations.FindActive(ctx, res.TenantID, res.ReservedDate, repository.ReservationFilter{StaffID: res.StaffID})
		if err != nil {
			return err
		}
		if busy, err := anyActiveOverlap(theirs, iv); err != nil {
			return err
		} else if busy {
			return apperrors.NewConflict("staff unavailable at this time", map[string]any{"staff_id": *res.StaffID, "time": res.ReservedTime})
		}
	} else {
		pool, err := reservations.FindActive(ctx, res.TenantID, res.ReservedDate, repository.ReservationFilter{Unassigned: true})
		if err != nil {
			return err
		}
		if busy, err := anyActiveOverlap(pool, iv); err != nil {
			return err
		} else if busy {
			return apperrors.NewConflict("this time is already booked", map[string]any{"time": res.ReservedTime})
		}

		staffID, err := s.assigner.FindAvailableStaff(ctx, store, res.TenantID, res.ReservedDate, res.ReservedTime, duration)
		if err != nil {
			return err
		}
		if staffID == nil {
			return apperrors.NewCapacity("fully booked", map[string]any{"time": res.ReservedTime})
		}
		res.StaffID = staffID
	}

	if err := reservations.Insert(ctx, res); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("staff unavailable at this time", map[string]any{"staff_id": *res.StaffID, "time": res.ReservedTime})
		}
		return err
	}
	return nil
}

// UpdateStatus moves a reservation along its status machine on behalf of a
// tenant administrator.
func (s *BookingService) UpdateStatus(ctx context.Context, tenant domain.TenantID, actorID, id string, next domain.ReservationStatus) (*domain.Reservation, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": next})
	}
	return s.transition(ctx, tenant, id, next, domain.SubjectRoleAdmin, actorID, nil)
}

// CancelReservation cancels a reservation owned by userID.
func (s *BookingService) CancelReservation(ctx context.Context, tenant domain.TenantID, userID, id string) (*domain.Reservation, error) {
	return s.transition(ctx, tenant, id, domain.ReservationStatusCancelled, domain.SubjectRoleUser, userID, func(res *domain.Reservation) error {
		if res.UserID != userID {
			return apperrors.NewForbidden("reservation belongs to another user")
		}
		return nil
	})
}

func (s *BookingService) transition(ctx context.Context, tenant domain.TenantID, id string, next domain.ReservationStatus, role domain.SubjectRole, actorID string, authorize func(*domain.Reservation) error) (*domain.Reservation, error) {
	current, err := s.store.Reservations().GetByID(ctx, tenant, id)
	if err != nil {
		return nil, lookupError(err, "reservation", map[string]any{"reservation_id": id})
	}
	if authorize != nil {
		if err := authorize(current); err != nil {
			return nil, err
		}
	}

	var (
		updated   *domain.Reservation
		oldStatus domain.ReservationStatus
	)
	key := repository.LockKey{Tenant: tenant, Date: current.ReservedDate}
	err = s.tx.WithinTx(ctx, key, func(ctx context.Context, store repository.Store) error {
		res, err := store.Reservations().GetByID(ctx, tenant, id)
		if err != nil {
			return lookupError(err, "reservation", map[string]any{"reservation_id": id})
		}
		if !domain.CanTransition(res.Status, next) {
			return apperrors.NewConflict("invalid status transition", map[string]any{
				"from": res.Status,
				"to":   next,
			})
		}
		if err := store.Reservations().UpdateStatus(ctx, tenant, id, next); err != nil {
			return err
		}
		oldStatus = res.Status
		res.Status = next
		res.UpdatedAt = s.now()
		updated = res
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.metrics.StatusChanged(string(next))
	s.logger.Info("reservation status changed",
		zap.String("tenant", string(tenant)),
		zap.String("reservation_id", id),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(next)))
	s.publish(ctx, events.EventReservationStatusChanged, updated, role, actorID, events.ReservationStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: next,
	})
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, eventType events.EventType, res *domain.Reservation, role domain.SubjectRole, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		TenantID:      res.TenantID,
		ReservationID: res.ID,
		Actor:         events.Actor{Role: role, UserID: actorID},
		Timestamp:     s.now(),
		Payload:       payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func anyActiveOverlap(reservations []domain.ActiveReservation, iv timeslot.Interval) (bool, error) {
	for _, r := range reservations {
		if !r.Status.Occupies() {
			continue
		}
		other, err := timeslot.NewInterval(r.StartTime, r.DurationMinutes)
		if err != nil {
			return false, err
		}
		if other.Overlaps(iv) {
			return true, nil
		}
	}
	return false, nil
}

func slotStateError(state SlotState, date, start string) error {
	details := map[string]any{"date": date, "time": start, "reason": state}
	switch state {
	case SlotInPast:
		return apperrors.NewValidationError("requested time is in the past", details)
	case SlotClosedDay:
		return apperrors.NewValidationError("closed on the requested date", details)
	case SlotInBreak:
		return apperrors.NewValidationError("requested time falls in a break", details)
	default:
		return apperrors.NewValidationError("outside business hours", details)
	}
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/events"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/repository/memory"
)

const (
	tenant   = domain.TenantID("salon-a")
	bookDate = "2030-06-03" // a Monday
)

var (
	staffA = "staff-a"
	staffB = "staff-b"
)

type fixedHours domain.BusinessHours

func (h fixedHours) HoursFor(domain.TenantID) domain.BusinessHours {
	return domain.BusinessHours(h)
}

func defaultHours() fixedHours {
	return fixedHours{
		Open:                "09:00",
		Close:               "18:00",
		Breaks:              []domain.BreakWindow{{Start: "12:00", End: "13:00"}},
		SlotIntervalMinutes: 30,
		Location:            time.UTC,
	}
}

type fixture struct {
	t            *testing.T
	store        *memory.Store
	hours        fixedHours
	now          time.Time
	mu           sync.Mutex
	published    []events.Event
	dispatcher   events.Dispatcher
	availability *AvailabilityService
	booking      *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: memory.NewStore(),
		hours: defaultHours(),
		now:   time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	ctx := context.Background()
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Staff().Create(ctx, &domain.StaffMember{ID: staffB, TenantID: tenant, Name: "B", Active: true, CreatedAt: created.Add(time.Minute)}))
	require.NoError(t, f.store.Staff().Create(ctx, &domain.StaffMember{ID: staffA, TenantID: tenant, Name: "A", Active: true, CreatedAt: created}))
	require.NoError(t, f.store.Menus().Create(ctx, &domain.Menu{ID: "cut", TenantID: tenant, Name: "Cut", DurationMinutes: 60, Active: true}))
	require.NoError(t, f.store.Menus().Create(ctx, &domain.Menu{ID: "trim", TenantID: tenant, Name: "Trim", DurationMinutes: 30, Active: true}))
	require.NoError(t, f.store.Menus().Create(ctx, &domain.Menu{ID: "retired", TenantID: tenant, Name: "Old", DurationMinutes: 30, Active: false}))

	f.dispatcher = events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{events.EventReservationCreated, events.EventReservationStatusChanged} {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, e)
			return nil
		})
	}
	f.build()
	return f
}

// build (re)creates the services after fixture fields changed.
func (f *fixture) build() {
	clock := func() time.Time { return f.now }
	f.availability = NewAvailabilityService(AvailabilityDependencies{
		Store:    f.store,
		Flags:    f.store.FeatureFlags(),
		Schedule: f.hours,
		Clock:    clock,
	})
	f.booking = NewBookingService(BookingDependencies{
		Store:      f.store,
		TxManager:  f.store,
		Flags:      f.store.FeatureFlags(),
		Schedule:   f.hours,
		Dispatcher: f.dispatcher,
		Clock:      clock,
	})
}

func (f *fixture) setStaffSelection(enabled bool) {
	f.t.Helper()
	require.NoError(f.t, f.store.FeatureFlags().Upsert(context.Background(), tenant, &domain.FeatureFlags{EnableStaffSelection: enabled}))
}

// reserve inserts a reservation directly, bypassing the guard.
func (f *fixture) reserve(id, user, menu string, staff *string, at string, status domain.ReservationStatus) {
	f.t.Helper()
	require.NoError(f.t, f.store.Reservations().Insert(context.Background(), &domain.Reservation{
		ID:           id,
		TenantID:     tenant,
		UserID:       user,
		MenuID:       menu,
		StaffID:      staff,
		ReservedDate: mustDate(f.t),
		ReservedTime: at,
		Status:       status,
	}))
}

func (f *fixture) book(user, menu, at string, staff *string) (*domain.Reservation, error) {
	return f.booking.CreateReservation(context.Background(), CreateReservationInput{
		Tenant:  tenant,
		UserID:  user,
		MenuID:  menu,
		Date:    bookDate,
		Time:    at,
		StaffID: staff,
	})
}

func slotAt(t *testing.T, slots []domain.Slot, at string) domain.Slot {
	t.Helper()
	for _, s := range slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("slot %s not found", at)
	return domain.Slot{}
}

type mockFlags struct {
	mock.Mock
}

func (m *mockFlags) Get(ctx context.Context, tenant domain.TenantID) (domain.FeatureFlags, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(domain.FeatureFlags), args.Error(1)
}

func (m *mockFlags) Upsert(ctx context.Context, tenant domain.TenantID, flags *domain.FeatureFlags) error {
	return m.Called(ctx, tenant, flags).Error(0)
}

// failingTx fails every unit of work before running it.
type failingTx struct {
	err error
}

func (f failingTx) WithinTx(context.Context, repository.LockKey, func(context.Context, repository.Store) error) error {
	return f.err
}

func mustDate(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", bookDate)
	require.NoError(t, err)
	return d
}

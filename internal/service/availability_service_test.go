package service

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/booking-service/internal/domain"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

func resolve(t *testing.T, f *fixture, menu string, staff *string) *AvailabilityResult {
	t.Helper()
	res, err := f.availability.ResolveSlots(context.Background(), AvailabilityQuery{
		Tenant:  tenant,
		Date:    bookDate,
		MenuID:  menu,
		StaffID: staff,
	})
	require.NoError(t, err)
	return res
}

func TestResolveSlots_Grid(t *testing.T) {
	f := newFixture(t)
	res := resolve(t, f, "trim", nil)

	require.Len(t, res.Slots, 18)
	assert.Equal(t, "09:00", res.Slots[0].Time)
	assert.Equal(t, "17:30", res.Slots[17].Time)
	assert.Equal(t, 30, res.DurationMinutes)
	assert.True(t, res.StaffSelection)

	// breaks mark slots unavailable instead of dropping them
	assert.False(t, slotAt(t, res.Slots, "12:00").Available)
	assert.False(t, slotAt(t, res.Slots, "12:30").Available)
	assert.True(t, slotAt(t, res.Slots, "13:00").Available)
	assert.True(t, slotAt(t, res.Slots, "17:30").Available)
}

func TestResolveSlots_PooledReportsFirstFreeStaff(t *testing.T) {
	f := newFixture(t)
	f.setStaffSelection(false)
	f.reserve("r1", "u1", "cut", &staffA, "10:00", domain.ReservationStatusConfirmed)

	res := resolve(t, f, "trim", nil)

	at10 := slotAt(t, res.Slots, "10:00")
	assert.True(t, at10.Available)
	require.NotNil(t, at10.StaffID)
	assert.Equal(t, staffB, *at10.StaffID)

	at9 := slotAt(t, res.Slots, "09:00")
	require.NotNil(t, at9.StaffID)
	assert.Equal(t, staffA, *at9.StaffID)
}

func TestResolveSlots_PooledFullyBookedSlot(t *testing.T) {
	f := newFixture(t)
	f.reserve("r1", "u1", "cut", &staffA, "10:00", domain.ReservationStatusPending)
	f.reserve("r2", "u2", "cut", &staffB, "10:00", domain.ReservationStatusConfirmed)

	res := resolve(t, f, "trim", nil)
	assert.False(t, slotAt(t, res.Slots, "10:00").Available)
	assert.Nil(t, slotAt(t, res.Slots, "10:00").StaffID)
	assert.False(t, slotAt(t, res.Slots, "10:30").Available)
	assert.True(t, slotAt(t, res.Slots, "11:00").Available)
}

func TestResolveSlots_UnassignedReservationBlocksPool(t *testing.T) {
	f := newFixture(t)
	f.reserve("r1", "u1", "trim", nil, "14:00", domain.ReservationStatusPending)

	res := resolve(t, f, "trim", nil)
	assert.False(t, slotAt(t, res.Slots, "14:00").Available)
	assert.True(t, slotAt(t, res.Slots, "14:30").Available)
}

func TestResolveSlots_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.reserve("r1", "u1", "cut", &staffA, "10:00", domain.ReservationStatusCancelled)
	f.reserve("r2", "u2", "cut", &staffA, "14:00", domain.ReservationStatusNoShow)

	res := resolve(t, f, "trim", &staffA)
	assert.True(t, slotAt(t, res.Slots, "10:00").Available)
	assert.True(t, slotAt(t, res.Slots, "14:00").Available)
}

func TestResolveSlots_SpecificStaff(t *testing.T) {
	f := newFixture(t)
	f.reserve("r1", "u1", "cut", &staffB, "10:00", domain.ReservationStatusPending)

	res := resolve(t, f, "cut", &staffB)
	require.NotNil(t, res.StaffID)
	assert.Equal(t, staffB, *res.StaffID)

	assert.True(t, slotAt(t, res.Slots, "09:00").Available, "touching intervals do not overlap")
	assert.False(t, slotAt(t, res.Slots, "09:30").Available)
	assert.False(t, slotAt(t, res.Slots, "10:00").Available)
	assert.False(t, slotAt(t, res.Slots, "10:30").Available)
	assert.True(t, slotAt(t, res.Slots, "11:00").Available)
	assert.False(t, slotAt(t, res.Slots, "17:30").Available, "would end after close")
	for _, s := range res.Slots {
		assert.Nil(t, s.StaffID)
	}

	// staff A is untouched
	resA := resolve(t, f, "cut", &staffA)
	assert.True(t, slotAt(t, resA.Slots, "10:00").Available)
}

func TestResolveSlots_InactiveStaffHasNoSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Staff().Create(ctx, &domain.StaffMember{ID: "staff-c", TenantID: tenant, Active: false}))

	staffC := "staff-c"
	res := resolve(t, f, "trim", &staffC)
	for _, s := range res.Slots {
		assert.False(t, s.Available, s.Time)
	}
}

func TestResolveSlots_StaffIgnoredWhenSelectionDisabled(t *testing.T) {
	f := newFixture(t)
	f.setStaffSelection(false)
	f.reserve("r1", "u1", "cut", &staffB, "10:00", domain.ReservationStatusPending)

	res := resolve(t, f, "trim", &staffB)
	assert.Nil(t, res.StaffID)
	at10 := slotAt(t, res.Slots, "10:00")
	assert.True(t, at10.Available)
	require.NotNil(t, at10.StaffID)
	assert.Equal(t, staffA, *at10.StaffID)
}

func TestResolveSlots_PastAndClosedDay(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2030, 6, 3, 10, 15, 0, 0, time.UTC)
	f.build()

	res := resolve(t, f, "trim", nil)
	assert.False(t, slotAt(t, res.Slots, "09:00").Available)
	assert.False(t, slotAt(t, res.Slots, "10:00").Available)
	assert.True(t, slotAt(t, res.Slots, "10:30").Available)

	monday := time.Monday
	f.hours.ClosedWeekday = &monday
	f.build()
	res = resolve(t, f, "trim", nil)
	for _, s := range res.Slots {
		assert.False(t, s.Available, s.Time)
	}
}

func TestResolveSlots_PastUsesTenantTimezone(t *testing.T) {
	f := newFixture(t)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	f.hours.Location = tokyo
	// 01:15 UTC is 10:15 in Tokyo
	f.now = time.Date(2030, 6, 3, 1, 15, 0, 0, time.UTC)
	f.build()

	res := resolve(t, f, "trim", nil)
	assert.False(t, slotAt(t, res.Slots, "10:00").Available)
	assert.True(t, slotAt(t, res.Slots, "10:30").Available)
}

func TestResolveSlots_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.availability.ResolveSlots(ctx, AvailabilityQuery{Tenant: tenant, Date: "2030-13-01", MenuID: "trim"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.availability.ResolveSlots(ctx, AvailabilityQuery{Tenant: tenant, Date: bookDate, MenuID: "nope"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.availability.ResolveSlots(ctx, AvailabilityQuery{Tenant: tenant, Date: bookDate, MenuID: "retired"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	ghost := "ghost"
	_, err = f.availability.ResolveSlots(ctx, AvailabilityQuery{Tenant: tenant, Date: bookDate, MenuID: "trim", StaffID: &ghost})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.availability.ResolveSlots(ctx, AvailabilityQuery{Tenant: "salon-b", Date: bookDate, MenuID: "trim"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "menus are tenant scoped")
}

func TestResolveSlots_FlagStoreFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	flags := &mockFlags{}
	flags.On("Get", mock.Anything, tenant).Return(domain.FeatureFlags{}, errors.New("connection refused"))

	svc := NewAvailabilityService(AvailabilityDependencies{Store: f.store, Flags: flags, Schedule: f.hours})
	_, err := svc.ResolveSlots(context.Background(), AvailabilityQuery{Tenant: tenant, Date: bookDate, MenuID: "trim"})

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeUnavailable, domainErr.Code)
	assert.True(t, domainErr.Retryable())
	flags.AssertExpectations(t)
}

func TestResolveSlots_Deterministic(t *testing.T) {
	f := newFixture(t)
	f.reserve("r1", "u1", "cut", &staffA, "15:00", domain.ReservationStatusPending)

	first := resolve(t, f, "cut", nil)
	second := resolve(t, f, "cut", nil)
	assert.Equal(t, first, second)
}

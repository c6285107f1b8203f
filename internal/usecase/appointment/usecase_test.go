package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

const (
	shopID  uint = 1
	staffID uint = 7
)

// 2025-03-03 is a Monday.
func mon(h, m int) time.Time {
	return time.Date(2025, time.March, 3, h, m, 0, 0, time.UTC)
}

func uptr(v uint) *uint { return &v }

var (
	owner  = policy.Actor{UserID: 2, BarbershopID: shopID, Role: policy.RoleOwner}
	barber = policy.Actor{UserID: staffID, BarbershopID: shopID, Role: policy.RoleBarber}
	client = policy.Actor{UserID: 42, Role: policy.RoleClient}
)

type fixture struct {
	repo  *mockRepo
	cache *fakeCache
	deps  Deps
}

func newFixture(now time.Time) *fixture {
	repo := &mockRepo{}
	cache := newFakeCache()

	shop := &models.Barbershop{ID: shopID, Timezone: "UTC"}
	repo.On("GetBarbershopByID", mock.Anything, shopID).Return(shop, nil).Maybe()
	repo.On("GetStaff", mock.Anything, shopID, staffID).
		Return(&models.User{ID: staffID, BarbershopID: uptr(shopID), Role: "BARBER"}, nil).Maybe()
	repo.On("FindSchedule", mock.Anything, staffID, shopID, time.Monday).
		Return(&models.WeeklySchedule{
			StaffID: staffID, BarbershopID: shopID, Weekday: 1,
			StartTime: "09:00", EndTime: "17:00", Enabled: true,
		}, nil).Maybe()
	repo.On("FindSchedule", mock.Anything, staffID, shopID, mock.Anything).
		Return(nil, nil).Maybe()
	repo.On("WithinTx", mock.Anything).Return(nil).Maybe()

	return &fixture{
		repo:  repo,
		cache: cache,
		deps: Deps{
			Repo:   repo,
			Cache:  cache,
			Clock:  func() time.Time { return now },
			Limits: availability.DefaultLimits(),
		},
	}
}

func (f *fixture) withBookings(aps ...models.Appointment) {
	if aps == nil {
		aps = []models.Appointment{}
	}
	f.repo.On("ListActiveBookings", mock.Anything, mock.Anything).Return(aps, nil)
}

func (f *fixture) withService() {
	f.repo.On("GetService", mock.Anything, shopID, uint(4)).
		Return(&models.Service{ID: 4, BarbershopID: shopID, Name: "Cut", DurationMin: 45, Price: 50}, nil)
}

// ======================================================
// CREATE
// ======================================================

func TestCreateAppointment_Success(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withService()
	f.withBookings()
	f.repo.On("GetOrCreateCustomer", mock.Anything, domain.CustomerInput{
		BarbershopID: shopID, Name: "Ana", Phone: "11999990000",
	}).Return(&models.Customer{ID: 3, BarbershopID: shopID, Name: "Ana"}, nil)
	f.repo.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*models.Appointment")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Appointment).ID = 10 }).
		Return(nil)

	ap, err := NewCreateAppointment(f.deps).Execute(context.Background(), CreateAppointmentInput{
		Actor:         owner,
		BarbershopID:  shopID,
		StaffID:       staffID,
		ServiceID:     4,
		CustomerName:  "Ana",
		CustomerPhone: "11999990000",
		Date:          "2025-03-03",
		Time:          "10:00",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(10), ap.ID)
	assert.Equal(t, "PENDING", ap.Status)
	assert.Equal(t, mon(10, 0), ap.StartTime)
	assert.Equal(t, mon(10, 45), ap.EndTime)
	assert.Equal(t, 50.0, ap.FinalPrice)
	assert.Equal(t, []cacheCall{{staffID: staffID, dates: []string{"2025-03-03"}}}, f.cache.invalidated)
	f.repo.AssertCalled(t, "WithinTx", mock.Anything)
	assert.True(t, f.repo.customerInTx, "customer upsert must share the booking transaction")
}

func TestCreateAppointment_ForeignOwnerCreatesNoCustomer(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withService()
	f.withBookings()

	other := policy.Actor{UserID: 90, BarbershopID: 2, Role: policy.RoleOwner}
	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), CreateAppointmentInput{
		Actor:         other,
		BarbershopID:  shopID,
		StaffID:       staffID,
		ServiceID:     4,
		CustomerName:  "Ana",
		CustomerPhone: "11999990000",
		Date:          "2025-03-03",
		Time:          "10:00",
	})

	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	f.repo.AssertNotCalled(t, "GetOrCreateCustomer", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestCreateAppointment_PriceOverrideAndClientCustomer(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withService()
	f.withBookings()
	f.repo.On("GetOrCreateCustomer", mock.Anything, domain.CustomerInput{
		BarbershopID: shopID, UserID: uptr(42), Name: "Bia", Phone: "1188",
	}).Return(&models.Customer{ID: 5, UserID: uptr(42)}, nil)
	f.repo.On("CreateAppointment", mock.Anything, mock.Anything).Return(nil)

	price := 35.0
	ap, err := NewCreateAppointment(f.deps).Execute(context.Background(), CreateAppointmentInput{
		Actor:         client,
		BarbershopID:  shopID,
		StaffID:       staffID,
		ServiceID:     4,
		CustomerName:  "Bia",
		CustomerPhone: "1188",
		Date:          "2025-03-03",
		Time:          "11:00",
		FinalPrice:    &price,
	})

	require.NoError(t, err)
	assert.Equal(t, 35.0, ap.FinalPrice)
	assert.Equal(t, uint(5), ap.CustomerID)
}

func TestCreateAppointment_Conflict(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withService()
	f.withBookings(models.Appointment{
		ID: 1, BarbershopID: shopID, StaffID: staffID,
		StartTime: mon(10, 0), EndTime: mon(10, 45), Status: "CONFIRMED",
	})
	f.repo.On("GetOrCreateCustomer", mock.Anything, mock.Anything).Return(&models.Customer{ID: 3}, nil)

	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), CreateAppointmentInput{
		Actor:        owner,
		BarbershopID: shopID,
		StaffID:      staffID,
		ServiceID:    4,
		Date:         "2025-03-03",
		Time:         "10:30",
	})

	var ce *httperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint(1), ce.BookingID)
	f.repo.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
	assert.Empty(t, f.cache.invalidated)
}

func TestCreateAppointment_Rejections(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		date string
		time string
		code string
	}{
		{"malformed", mon(8, 0), "03/03/2025", "10:00", "invalid_date_or_time"},
		{"past", mon(12, 0), "2025-03-03", "10:00", "date_in_past"},
		{"outside hours", mon(8, 0), "2025-03-03", "16:30", "outside_working_hours"},
		{"day off", mon(8, 0), "2025-03-04", "10:00", "outside_working_hours"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.now)
			f.withService()
			f.withBookings()
			f.repo.On("GetOrCreateCustomer", mock.Anything, mock.Anything).Return(&models.Customer{ID: 3}, nil)

			_, err := NewCreateAppointment(f.deps).Execute(context.Background(), CreateAppointmentInput{
				Actor:        owner,
				BarbershopID: shopID,
				StaffID:      staffID,
				ServiceID:    4,
				Date:         tc.date,
				Time:         tc.time,
			})

			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
		})
	}
}

func TestCreateAppointment_TooSoon(t *testing.T) {
	f := newFixture(mon(9, 0))
	f.repo.ExpectedCalls = nil
	f.repo.On("GetBarbershopByID", mock.Anything, shopID).
		Return(&models.Barbershop{ID: shopID, Timezone: "UTC", MinAdvanceMinutes: 120}, nil)
	f.repo.On("GetStaff", mock.Anything, shopID, staffID).Return(&models.User{ID: staffID}, nil)

	_, err := NewCreateAppointment(f.deps).Execute(context.Background(), CreateAppointmentInput{
		Actor:        owner,
		BarbershopID: shopID,
		StaffID:      staffID,
		ServiceID:    4,
		Date:         "2025-03-03",
		Time:         "10:00",
	})

	assert.True(t, httperr.IsBusiness(err, "too_soon"))
}

// ======================================================
// STATUS CHANGES
// ======================================================

func pendingAt(start time.Time) *models.Appointment {
	return &models.Appointment{
		ID:           10,
		BarbershopID: shopID,
		StaffID:      staffID,
		CustomerID:   3,
		Customer:     models.Customer{ID: 3, UserID: uptr(42)},
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		Status:       "PENDING",
	}
}

func TestCancelAppointment_ByOwnClient(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("GetAppointment", mock.Anything, shopID, uint(10)).Return(pendingAt(mon(10, 0)), nil)
	f.repo.On("UpdateAppointment", mock.Anything, mock.Anything).Return(nil)

	ap, err := NewCancelAppointment(f.deps).Execute(context.Background(), StatusChangeInput{
		Actor:         client,
		BarbershopID:  shopID,
		AppointmentID: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", ap.Status)
	assert.Len(t, f.cache.invalidated, 1)
}

func TestConfirmAppointment_ClientForbidden(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("GetAppointment", mock.Anything, shopID, uint(10)).Return(pendingAt(mon(10, 0)), nil)

	_, err := NewConfirmAppointment(f.deps).Execute(context.Background(), StatusChangeInput{
		Actor:         client,
		BarbershopID:  shopID,
		AppointmentID: 10,
	})

	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	f.repo.AssertNotCalled(t, "UpdateAppointment", mock.Anything, mock.Anything)
}

func TestConfirmAppointment_DoesNotTouchCache(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("GetAppointment", mock.Anything, shopID, uint(10)).Return(pendingAt(mon(10, 0)), nil)
	f.repo.On("UpdateAppointment", mock.Anything, mock.Anything).Return(nil)

	ap, err := NewConfirmAppointment(f.deps).Execute(context.Background(), StatusChangeInput{
		Actor:         barber,
		BarbershopID:  shopID,
		AppointmentID: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", ap.Status)
	assert.Empty(t, f.cache.invalidated)
}

func TestCompleteAppointment_TouchesCustomerVisit(t *testing.T) {
	f := newFixture(mon(10, 15))
	ap := pendingAt(mon(10, 0))
	ap.Status = "CONFIRMED"
	f.repo.On("GetAppointment", mock.Anything, shopID, uint(10)).Return(ap, nil)
	f.repo.On("UpdateAppointment", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("TouchCustomerVisit", mock.Anything, uint(3), mon(10, 15)).Return(nil)

	got, err := NewCompleteAppointment(f.deps).Execute(context.Background(), StatusChangeInput{
		Actor:         owner,
		BarbershopID:  shopID,
		AppointmentID: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)
	f.repo.AssertExpectations(t)
}

// ======================================================
// RESCHEDULE
// ======================================================

func TestRescheduleAppointment_SameSlotExcludesSelf(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("GetAppointment", mock.Anything, shopID, uint(10)).Return(pendingAt(mon(14, 0)), nil)
	f.repo.On("ListActiveBookings", mock.Anything, mock.MatchedBy(func(q availability.BookingFilter) bool {
		return q.ExcludeID == 10
	})).Return([]models.Appointment{}, nil)
	f.repo.On("UpdateAppointment", mock.Anything, mock.Anything).Return(nil)

	ap, err := NewRescheduleAppointment(f.deps).Execute(context.Background(), RescheduleAppointmentInput{
		Actor:         owner,
		BarbershopID:  shopID,
		AppointmentID: 10,
		Date:          "2025-03-03",
		Time:          "14:00",
	})

	require.NoError(t, err)
	assert.Equal(t, mon(14, 0), ap.StartTime)
	assert.Equal(t, mon(14, 30), ap.EndTime)
}

func TestRescheduleAppointment_Conflict(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("GetAppointment", mock.Anything, shopID, uint(10)).Return(pendingAt(mon(14, 0)), nil)
	f.withBookings(models.Appointment{
		ID: 11, BarbershopID: shopID, StaffID: staffID,
		StartTime: mon(15, 0), EndTime: mon(16, 0), Status: "PENDING",
	})

	_, err := NewRescheduleAppointment(f.deps).Execute(context.Background(), RescheduleAppointmentInput{
		Actor:         owner,
		BarbershopID:  shopID,
		AppointmentID: 10,
		Date:          "2025-03-03",
		Time:          "15:15",
	})

	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	f.repo.AssertNotCalled(t, "UpdateAppointment", mock.Anything, mock.Anything)
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestGetAvailability_ComputesThenCaches(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withBookings(models.Appointment{
		ID: 1, StartTime: mon(10, 0), EndTime: mon(10, 45), Status: "CONFIRMED",
	})
	uc := NewGetAvailability(f.deps)
	in := AvailabilityInput{BarbershopID: shopID, StaffID: staffID, Date: "2025-03-03", DurationMin: 30}

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:45", "11:15"}, first.Slots[:4])
	assert.Equal(t, 30, first.DurationMin)

	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.Slots, second.Slots)

	assert.Equal(t, 1, f.cache.sets)
	f.repo.AssertNumberOfCalls(t, "ListActiveBookings", 1)
}

func TestGetAvailability_StaleListIsNotCached(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withBookings()
	f.cache.beforeSet = func() {
		f.cache.beforeSet = nil
		_ = f.cache.Invalidate(context.Background(), shopID, staffID, "2025-03-03")
	}
	uc := NewGetAvailability(f.deps)
	in := AvailabilityInput{BarbershopID: shopID, StaffID: staffID, Date: "2025-03-03", DurationMin: 30}

	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, f.cache.sets)

	_, err = uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
	f.repo.AssertNumberOfCalls(t, "ListActiveBookings", 2)
}

func TestGetAvailability_ExcludeBypassesCache(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withBookings()

	_, err := NewGetAvailability(f.deps).Execute(context.Background(), AvailabilityInput{
		BarbershopID: shopID, StaffID: staffID, Date: "2025-03-03", ExcludeBookingID: 10,
	})

	require.NoError(t, err)
	assert.Zero(t, f.cache.sets)
}

func TestGetAvailability_TodayDropsStartedSlots(t *testing.T) {
	f := newFixture(mon(16, 10))
	f.withBookings()

	got, err := NewGetAvailability(f.deps).Execute(context.Background(), AvailabilityInput{
		BarbershopID: shopID, StaffID: staffID, Date: "2025-03-03",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"16:30"}, got.Slots)
}

func TestGetAvailability_InvalidInput(t *testing.T) {
	f := newFixture(mon(8, 0))
	uc := NewGetAvailability(f.deps)

	_, err := uc.Execute(context.Background(), AvailabilityInput{BarbershopID: shopID, StaffID: staffID, Date: "2025-13-40"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = uc.Execute(context.Background(), AvailabilityInput{BarbershopID: shopID, StaffID: staffID, Date: "2025-03-02"})
	assert.True(t, httperr.IsBusiness(err, "date_in_past"))

	_, err = uc.Execute(context.Background(), AvailabilityInput{BarbershopID: shopID, StaffID: staffID, Date: "2025-03-03", DurationMin: 600})
	assert.True(t, httperr.IsBusiness(err, "invalid_slot_duration"))
}

func TestGetNextAvailableSlot(t *testing.T) {
	f := newFixture(mon(16, 40))
	f.withBookings()

	got, err := NewGetNextAvailableSlot(f.deps).Execute(context.Background(), NextSlotInput{
		BarbershopID: shopID, StaffID: staffID, DurationMin: 30,
	})

	require.NoError(t, err)
	require.True(t, got.Available)
	assert.Equal(t, "2025-03-10", got.Date)
	assert.Equal(t, "09:00", got.Time)
}

// ======================================================
// LISTING
// ======================================================

func TestListAppointmentsByDate_BarberSeesOnlyOwnCalendar(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("ListAppointmentsForPeriod", mock.Anything, domain.PeriodFilter{
		BarbershopID: shopID,
		StaffID:      staffID,
		From:         mon(0, 0),
		To:           mon(0, 0).AddDate(0, 0, 1),
	}).Return([]models.Appointment{{
		ID: 1, StaffID: staffID, Status: "PENDING",
		Customer: models.Customer{Name: "Ana"}, Service: models.Service{Name: "Cut"},
	}}, nil)
	uc := NewListAppointmentsByDate(f.deps)

	got, err := uc.Execute(context.Background(), ListInput{Actor: barber, BarbershopID: shopID}, "2025-03-03")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].CustomerName)
	assert.Equal(t, "Cut", got[0].ServiceName)

	_, err = uc.Execute(context.Background(), ListInput{Actor: barber, BarbershopID: shopID, StaffID: 8}, "2025-03-03")
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

	_, err = uc.Execute(context.Background(), ListInput{Actor: client, BarbershopID: shopID}, "2025-03-03")
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
}

func TestListAppointmentsByMonth_InvalidMonth(t *testing.T) {
	f := newFixture(mon(8, 0))

	_, err := NewListAppointmentsByMonth(f.deps).Execute(context.Background(), ListInput{Actor: owner, BarbershopID: shopID}, 2025, 13)
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}

// ======================================================
// SHOP-WIDE AVAILABILITY
// ======================================================

const (
	shortStaff uint = 8
	busyStaff  uint = 9
)

func forStaff(id uint) any {
	return mock.MatchedBy(func(f availability.BookingFilter) bool { return f.StaffID == id })
}

// withTeam adds two more Monday staff members: one working 09:00-10:00 and
// fully booked, one working all day with a 10:00-10:45 booking.
func (f *fixture) withTeam() {
	for _, id := range []uint{shortStaff, busyStaff} {
		f.repo.On("GetStaff", mock.Anything, shopID, id).
			Return(&models.User{ID: id, BarbershopID: uptr(shopID), Role: "BARBER"}, nil).Maybe()
	}
	f.repo.On("FindSchedule", mock.Anything, shortStaff, shopID, time.Monday).
		Return(&models.WeeklySchedule{StaffID: shortStaff, BarbershopID: shopID, Weekday: 1,
			StartTime: "09:00", EndTime: "10:00", Enabled: true}, nil).Maybe()
	f.repo.On("FindSchedule", mock.Anything, busyStaff, shopID, time.Monday).
		Return(&models.WeeklySchedule{StaffID: busyStaff, BarbershopID: shopID, Weekday: 1,
			StartTime: "09:00", EndTime: "17:00", Enabled: true}, nil).Maybe()

	f.repo.On("ListScheduledStaff", mock.Anything, shopID, time.Monday).Return([]models.User{
		{ID: staffID, Name: "Ana"},
		{ID: shortStaff, Name: "Bruno"},
		{ID: busyStaff, Name: "Caio"},
	}, nil)

	f.repo.On("ListActiveBookings", mock.Anything, forStaff(shortStaff)).Return([]models.Appointment{
		{ID: 20, StaffID: shortStaff, StartTime: mon(9, 0), EndTime: mon(10, 0), Status: "CONFIRMED"},
	}, nil)
	f.repo.On("ListActiveBookings", mock.Anything, forStaff(busyStaff)).Return([]models.Appointment{
		{ID: 21, StaffID: busyStaff, StartTime: mon(10, 0), EndTime: mon(10, 45), Status: "PENDING"},
	}, nil)
	f.withBookings()
}

func TestGetShopAvailability_GroupsByStaffAndSkipsFullDays(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withTeam()

	got, err := NewGetShopAvailability(f.deps).Execute(context.Background(), ShopAvailabilityInput{
		BarbershopID: shopID, Date: "2025-03-03", DurationMin: 60,
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", got.Date)
	assert.Equal(t, 60, got.DurationMin)
	require.Len(t, got.Staff, 2)

	assert.Equal(t, staffID, got.Staff[0].StaffID)
	assert.Equal(t, "Ana", got.Staff[0].StaffName)
	assert.Len(t, got.Staff[0].Slots, 8)

	assert.Equal(t, busyStaff, got.Staff[1].StaffID)
	assert.Equal(t, []string{"09:00", "10:45", "11:45"}, got.Staff[1].Slots[:3])

	// the empty day is cached too
	assert.Equal(t, 3, f.cache.sets)
}

func TestGetShopAvailability_NobodyScheduled(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.repo.On("ListScheduledStaff", mock.Anything, shopID, time.Tuesday).Return([]models.User{}, nil)

	got, err := NewGetShopAvailability(f.deps).Execute(context.Background(), ShopAvailabilityInput{
		BarbershopID: shopID, Date: "2025-03-04",
	})

	require.NoError(t, err)
	assert.NotNil(t, got.Staff)
	assert.Empty(t, got.Staff)
}

func TestGetShopAvailability_InvalidInput(t *testing.T) {
	f := newFixture(mon(8, 0))
	uc := NewGetShopAvailability(f.deps)

	_, err := uc.Execute(context.Background(), ShopAvailabilityInput{BarbershopID: shopID, Date: "2025-03-02"})
	assert.True(t, httperr.IsBusiness(err, "date_in_past"))

	_, err = uc.Execute(context.Background(), ShopAvailabilityInput{BarbershopID: shopID, Date: "2025-03-03", DurationMin: -5})
	assert.True(t, httperr.IsBusiness(err, "invalid_slot_duration"))
}

func TestGetAvailableStaff_AtTime(t *testing.T) {
	f := newFixture(mon(8, 0))
	f.withTeam()

	got, err := NewGetAvailableStaff(f.deps).Execute(context.Background(), AvailableStaffInput{
		BarbershopID: shopID, Date: "2025-03-03", Time: "10:00", DurationMin: 30,
	})

	require.NoError(t, err)
	assert.Equal(t, []dto.StaffDTO{{ID: staffID, Name: "Ana"}}, got)
}

func TestGetAvailableStaff_Rejections(t *testing.T) {
	f := newFixture(mon(12, 0))
	uc := NewGetAvailableStaff(f.deps)

	_, err := uc.Execute(context.Background(), AvailableStaffInput{BarbershopID: shopID, Date: "2025-03-03", Time: "25:00"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date_or_time"))

	_, err = uc.Execute(context.Background(), AvailableStaffInput{BarbershopID: shopID, Date: "2025-03-03", Time: "10:00"})
	assert.True(t, httperr.IsBusiness(err, "date_in_past"))
}

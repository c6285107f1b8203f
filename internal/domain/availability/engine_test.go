package availability

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

const (
	shopID  uint = 1
	staffID uint = 7
)

type fakeStore struct {
	shop      *models.Barbershop
	staff     map[uint]bool
	schedules []models.WeeklySchedule
	bookings  []models.Appointment
}

func newFakeStore(tz string) *fakeStore {
	return &fakeStore{
		shop:  &models.Barbershop{ID: shopID, Timezone: tz},
		staff: map[uint]bool{staffID: true},
	}
}

func (f *fakeStore) FindSchedule(_ context.Context, staff, shop uint, wd time.Weekday) (*models.WeeklySchedule, error) {
	for i := range f.schedules {
		s := f.schedules[i]
		if s.StaffID == staff && s.BarbershopID == shop && s.Weekday == int(wd) {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListActiveBookings(_ context.Context, q BookingFilter) ([]models.Appointment, error) {
	out := []models.Appointment{}
	for _, ap := range f.bookings {
		if ap.StaffID != q.StaffID || ap.BarbershopID != q.BarbershopID {
			continue
		}
		if ap.Status != "PENDING" && ap.Status != "CONFIRMED" {
			continue
		}
		if ap.StartTime.Before(q.To) && q.From.Before(ap.EndTime) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) GetBarbershopByID(_ context.Context, id uint) (*models.Barbershop, error) {
	if f.shop == nil || f.shop.ID != id {
		return nil, httperr.ErrNotFound("barbershop_not_found")
	}
	return f.shop, nil
}

func (f *fakeStore) GetStaff(_ context.Context, shop, staff uint) (*models.User, error) {
	if shop != shopID || !f.staff[staff] {
		return nil, httperr.ErrNotFound("staff_not_found")
	}
	bid := shop
	return &models.User{ID: staff, BarbershopID: &bid, Role: "BARBER"}, nil
}

func (f *fakeStore) work(wd time.Weekday, start, end string, enabled bool) {
	f.schedules = append(f.schedules, models.WeeklySchedule{
		StaffID:      staffID,
		BarbershopID: shopID,
		Weekday:      int(wd),
		StartTime:    start,
		EndTime:      end,
		Enabled:      enabled,
	})
}

func (f *fakeStore) book(id uint, start, end time.Time, status string) {
	f.bookings = append(f.bookings, models.Appointment{
		ID:           id,
		BarbershopID: shopID,
		StaffID:      staffID,
		StartTime:    start,
		EndTime:      end,
		Status:       status,
	})
}

func newTestEngine(f *fakeStore) *Engine {
	return NewEngine(f, f, f, DefaultLimits())
}

// 2025-03-03 is a Monday.
var monday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

func mon(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestComputeFreeSlots_FullDay(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "17:00", true)

	slots, err := newTestEngine(f).ComputeFreeSlots(context.Background(), SlotQuery{
		BarbershopID: shopID,
		StaffID:      staffID,
		Date:         monday,
		SlotDuration: 30 * time.Minute,
	})

	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.Equal(t, mon(9, 0), slots[0])
	assert.Equal(t, mon(16, 30), slots[15])
}

func TestComputeFreeSlots_SkipsActiveBooking(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "17:00", true)
	f.book(1, mon(10, 0), mon(10, 45), "CONFIRMED")
	f.book(2, mon(13, 0), mon(14, 0), "CANCELLED")

	slots, err := newTestEngine(f).ComputeFreeSlots(context.Background(), SlotQuery{
		BarbershopID: shopID,
		StaffID:      staffID,
		Date:         monday,
	})

	require.NoError(t, err)
	got := hhmm(slots)
	assert.Equal(t, []string{"09:00", "09:30", "10:45", "11:15"}, got[:4])
	assert.Contains(t, got, "13:15")
	assert.NotContains(t, got, "10:00")

	for _, s := range slots {
		assert.False(t, Overlaps(s, s.Add(30*time.Minute), mon(10, 0), mon(10, 45)))
	}
}

func TestComputeFreeSlots_ClosedDay(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "17:00", false)
	e := newTestEngine(f)

	sunday := monday.AddDate(0, 0, -1)
	for _, d := range []time.Time{sunday, monday} {
		slots, err := e.ComputeFreeSlots(context.Background(), SlotQuery{
			BarbershopID: shopID,
			StaffID:      staffID,
			Date:         d,
		})
		require.NoError(t, err)
		assert.NotNil(t, slots)
		assert.Empty(t, slots)
	}
}

func TestComputeFreeSlots_Idempotent(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "08:00", "12:00", true)
	f.book(1, mon(9, 10), mon(9, 40), "PENDING")
	e := newTestEngine(f)
	q := SlotQuery{BarbershopID: shopID, StaffID: staffID, Date: monday, SlotDuration: 20 * time.Minute}

	first, err := e.ComputeFreeSlots(context.Background(), q)
	require.NoError(t, err)
	second, err := e.ComputeFreeSlots(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeFreeSlots_UsesShopTimezone(t *testing.T) {
	f := newFakeStore("America/Sao_Paulo")
	f.work(time.Monday, "09:00", "10:00", true)

	// The date is read as a calendar date, so a UTC instant late on Monday
	// still selects Monday in Sao Paulo.
	date := time.Date(2025, time.March, 3, 23, 30, 0, 0, time.UTC)

	slots, err := newTestEngine(f).ComputeFreeSlots(context.Background(), SlotQuery{
		BarbershopID: shopID,
		StaffID:      staffID,
		Date:         date,
	})

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Format("15:04"))
	assert.Equal(t, time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC), slots[0].UTC())
}

func TestComputeFreeSlots_InvalidDuration(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "17:00", true)
	e := newTestEngine(f)

	for _, d := range []time.Duration{-time.Minute, 5 * time.Hour} {
		_, err := e.ComputeFreeSlots(context.Background(), SlotQuery{
			BarbershopID: shopID,
			StaffID:      staffID,
			Date:         monday,
			SlotDuration: d,
		})
		assert.True(t, httperr.IsBusiness(err, "invalid_slot_duration"))
	}
}

func TestComputeFreeSlots_UnknownReferences(t *testing.T) {
	f := newFakeStore("UTC")
	e := newTestEngine(f)

	_, err := e.ComputeFreeSlots(context.Background(), SlotQuery{BarbershopID: 99, StaffID: staffID, Date: monday})
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	_, err = e.ComputeFreeSlots(context.Background(), SlotQuery{BarbershopID: shopID, StaffID: 99, Date: monday})
	assert.True(t, httperr.IsBusiness(err, "staff_not_found"))
}

func TestComputeFreeSlots_ExcludesBooking(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "11:00", true)
	f.book(5, mon(9, 0), mon(11, 0), "CONFIRMED")
	e := newTestEngine(f)

	slots, err := e.ComputeFreeSlots(context.Background(), SlotQuery{
		BarbershopID:     shopID,
		StaffID:          staffID,
		Date:             monday,
		ExcludeBookingID: 5,
	})

	require.NoError(t, err)
	assert.Len(t, slots, 4)
}

func TestHasConflict(t *testing.T) {
	f := newFakeStore("UTC")
	f.book(1, mon(10, 0), mon(10, 45), "CONFIRMED")
	f.book(2, mon(14, 0), mon(14, 30), "PENDING")
	f.book(3, mon(16, 0), mon(17, 0), "COMPLETED")
	e := newTestEngine(f)

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		exclude uint
		want    bool
	}{
		{"overlapping tail", mon(10, 30), mon(11, 0), 0, true},
		{"touching end", mon(10, 45), mon(11, 15), 0, false},
		{"touching start", mon(9, 30), mon(10, 0), 0, false},
		{"enclosing", mon(9, 0), mon(12, 0), 0, true},
		{"inside", mon(10, 10), mon(10, 20), 0, true},
		{"excluded self", mon(14, 0), mon(14, 30), 2, false},
		{"exclude other", mon(14, 0), mon(14, 30), 1, true},
		{"completed does not block", mon(16, 0), mon(17, 0), 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.HasConflict(context.Background(), ConflictQuery{
				BarbershopID:     shopID,
				StaffID:          staffID,
				Start:            tc.start,
				End:              tc.end,
				ExcludeBookingID: tc.exclude,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasConflict_InvalidInterval(t *testing.T) {
	e := newTestEngine(newFakeStore("UTC"))

	_, err := e.HasConflict(context.Background(), ConflictQuery{
		BarbershopID: shopID,
		StaffID:      staffID,
		Start:        mon(10, 0),
		End:          mon(10, 0),
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_interval"))
}

func TestCheckBookable(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "17:00", true)
	f.book(1, mon(10, 0), mon(10, 45), "CONFIRMED")
	e := newTestEngine(f)
	ctx := context.Background()

	q := func(start, end time.Time) ConflictQuery {
		return ConflictQuery{BarbershopID: shopID, StaffID: staffID, Start: start, End: end}
	}

	assert.NoError(t, e.CheckBookable(ctx, q(mon(10, 45), mon(11, 15))))
	assert.NoError(t, e.CheckBookable(ctx, q(mon(16, 30), mon(17, 0))))

	err := e.CheckBookable(ctx, q(mon(16, 45), mon(17, 15)))
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))

	err = e.CheckBookable(ctx, q(mon(8, 30), mon(9, 0)))
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))

	err = e.CheckBookable(ctx, q(mon(12, 0).AddDate(0, 0, 1), mon(12, 30).AddDate(0, 0, 1)))
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))

	err = e.CheckBookable(ctx, q(mon(10, 30), mon(11, 0)))
	var ce *httperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint(1), ce.BookingID)
	assert.Equal(t, mon(10, 0), ce.Start)
	assert.Equal(t, mon(10, 45), ce.End)
}

func TestCheckBookable_DisabledSchedule(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "17:00", false)

	err := newTestEngine(f).CheckBookable(context.Background(), ConflictQuery{
		BarbershopID: shopID,
		StaffID:      staffID,
		Start:        mon(10, 0),
		End:          mon(10, 30),
	})
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))
}

func TestFindNextAvailableSlot(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "12:00", true)
	f.work(time.Wednesday, "14:00", "18:00", true)
	e := newTestEngine(f)

	t.Run("later today", func(t *testing.T) {
		got, err := e.FindNextAvailableSlot(context.Background(), NextSlotQuery{
			BarbershopID: shopID,
			StaffID:      staffID,
			Now:          mon(10, 10),
		})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, mon(10, 30), got.Start)
		assert.Equal(t, mon(11, 0), got.End)
	})

	t.Run("rolls to next working day", func(t *testing.T) {
		got, err := e.FindNextAvailableSlot(context.Background(), NextSlotQuery{
			BarbershopID: shopID,
			StaffID:      staffID,
			SlotDuration: time.Hour,
			Now:          mon(11, 30),
		})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2025, time.March, 5, 14, 0, 0, 0, time.UTC), got.Start)
	})

	t.Run("horizon exhausted", func(t *testing.T) {
		got, err := e.FindNextAvailableSlot(context.Background(), NextSlotQuery{
			BarbershopID: shopID,
			StaffID:      staffID,
			HorizonDays:  1,
			Now:          mon(12, 0),
		})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalid horizon", func(t *testing.T) {
		_, err := e.FindNextAvailableSlot(context.Background(), NextSlotQuery{
			BarbershopID: shopID,
			StaffID:      staffID,
			HorizonDays:  91,
			Now:          mon(9, 0),
		})
		assert.True(t, httperr.IsBusiness(err, "invalid_horizon"))
	})
}

func TestFindNextAvailableSlot_SkipsBookedDay(t *testing.T) {
	f := newFakeStore("UTC")
	f.work(time.Monday, "09:00", "10:00", true)
	f.work(time.Tuesday, "09:00", "10:00", true)
	f.book(1, mon(9, 0), mon(10, 0), "CONFIRMED")

	got, err := newTestEngine(f).FindNextAvailableSlot(context.Background(), NextSlotQuery{
		BarbershopID: shopID,
		StaffID:      staffID,
		Now:          mon(8, 0),
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mon(9, 0).AddDate(0, 0, 1), got.Start)
}

package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// ===============================
// Ports
// ===============================

type ScheduleReader interface {
	// FindSchedule returns nil, nil when the staff member has no row for
	// the weekday.
	FindSchedule(
		ctx context.Context,
		staffID uint,
		barbershopID uint,
		weekday time.Weekday,
	) (*models.WeeklySchedule, error)
}

// BookingFilter selects PENDING/CONFIRMED bookings of one staff member at one
// barbershop that overlap [From, To). ExcludeID, when non-zero, is skipped.
type BookingFilter struct {
	StaffID      uint
	BarbershopID uint
	From         time.Time
	To           time.Time
	ExcludeID    uint
}

type BookingReader interface {
	// ListActiveBookings returns matching bookings ordered by start time.
	ListActiveBookings(ctx context.Context, f BookingFilter) ([]models.Appointment, error)
}

type DirectoryReader interface {
	GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error)
	GetStaff(ctx context.Context, barbershopID uint, staffID uint) (*models.User, error)
}

// ===============================
// Engine
// ===============================

type Limits struct {
	DefaultSlot        time.Duration
	MaxSlot            time.Duration
	DefaultHorizonDays int
	MaxHorizonDays     int
}

func DefaultLimits() Limits {
	return Limits{
		DefaultSlot:        30 * time.Minute,
		MaxSlot:            4 * time.Hour,
		DefaultHorizonDays: 30,
		MaxHorizonDays:     90,
	}
}

// Engine computes free slots and detects booking conflicts. It holds no
// state between calls; every call reads through its ports.
type Engine struct {
	schedules ScheduleReader
	bookings  BookingReader
	directory DirectoryReader
	limits    Limits
}

func NewEngine(
	schedules ScheduleReader,
	bookings BookingReader,
	directory DirectoryReader,
	limits Limits,
) *Engine {
	def := DefaultLimits()
	if limits.DefaultSlot <= 0 {
		limits.DefaultSlot = def.DefaultSlot
	}
	if limits.MaxSlot <= 0 {
		limits.MaxSlot = def.MaxSlot
	}
	if limits.DefaultHorizonDays <= 0 {
		limits.DefaultHorizonDays = def.DefaultHorizonDays
	}
	if limits.MaxHorizonDays <= 0 {
		limits.MaxHorizonDays = def.MaxHorizonDays
	}

	return &Engine{
		schedules: schedules,
		bookings:  bookings,
		directory: directory,
		limits:    limits,
	}
}

func (e *Engine) Limits() Limits {
	return e.limits
}

type SlotQuery struct {
	BarbershopID uint
	StaffID      uint
	// Date is a calendar date; only its year, month and day are used and
	// they are interpreted in the barbershop's time zone.
	Date time.Time
	// SlotDuration zero means the default slot.
	SlotDuration     time.Duration
	ExcludeBookingID uint
}

// ComputeFreeSlots returns the free slot starts for the staff member on
// q.Date, in ascending order, as instants in the barbershop's time zone.
// A day off yields an empty list, not an error.
func (e *Engine) ComputeFreeSlots(ctx context.Context, q SlotQuery) ([]time.Time, error) {
	slot, err := e.SlotDuration(q.SlotDuration)
	if err != nil {
		return nil, err
	}

	shop, err := e.resolve(ctx, q.BarbershopID, q.StaffID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(shop.Timezone)
	day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, loc)

	return e.freeSlotsOn(ctx, shop.ID, q.StaffID, day, slot, q.ExcludeBookingID)
}

func (e *Engine) freeSlotsOn(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	day time.Time,
	slot time.Duration,
	excludeID uint,
) ([]time.Time, error) {

	window, ok, err := e.workingWindow(ctx, barbershopID, staffID, day)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []time.Time{}, nil
	}

	rows, err := e.bookings.ListActiveBookings(ctx, BookingFilter{
		StaffID:      staffID,
		BarbershopID: barbershopID,
		From:         day,
		To:           day.AddDate(0, 0, 1),
		ExcludeID:    excludeID,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	busy := make([]Interval, 0, len(rows))
	for _, ap := range rows {
		if excludeID != 0 && ap.ID == excludeID {
			continue
		}
		busy = append(busy, Interval{Start: ap.StartTime, End: ap.EndTime})
	}
	sortByStart(busy)

	return FreeSlots(window, busy, slot), nil
}

// workingWindow returns the schedule window for day. ok is false when the
// staff member does not work that weekday.
func (e *Engine) workingWindow(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	day time.Time,
) (Interval, bool, error) {

	sched, err := e.schedules.FindSchedule(ctx, staffID, barbershopID, day.Weekday())
	if err != nil {
		return Interval{}, false, fmt.Errorf("find schedule: %w", err)
	}
	if sched == nil || !sched.Enabled || sched.Weekday != int(day.Weekday()) {
		return Interval{}, false, nil
	}

	start, err := ParseClock(sched.StartTime)
	if err != nil {
		return Interval{}, false, err
	}
	end, err := ParseClock(sched.EndTime)
	if err != nil {
		return Interval{}, false, err
	}
	if !start.Before(end) {
		return Interval{}, false, nil
	}

	return Interval{Start: start.On(day), End: end.On(day)}, true, nil
}

// ===============================
// Conflicts
// ===============================

type ConflictQuery struct {
	BarbershopID     uint
	StaffID          uint
	Start            time.Time
	End              time.Time
	ExcludeBookingID uint
}

// HasConflict reports whether [q.Start, q.End) overlaps an active booking.
func (e *Engine) HasConflict(ctx context.Context, q ConflictQuery) (bool, error) {
	found, err := e.FindConflict(ctx, q)
	if err != nil {
		return false, err
	}
	return found != nil, nil
}

// FindConflict returns the earliest active booking overlapping the
// candidate interval, or nil.
func (e *Engine) FindConflict(ctx context.Context, q ConflictQuery) (*models.Appointment, error) {
	if !q.Start.Before(q.End) {
		return nil, httperr.ErrBusiness("invalid_interval")
	}
	if _, err := e.resolve(ctx, q.BarbershopID, q.StaffID); err != nil {
		return nil, err
	}
	return e.findConflict(ctx, q)
}

func (e *Engine) findConflict(ctx context.Context, q ConflictQuery) (*models.Appointment, error) {
	rows, err := e.bookings.ListActiveBookings(ctx, BookingFilter{
		StaffID:      q.StaffID,
		BarbershopID: q.BarbershopID,
		From:         q.Start,
		To:           q.End,
		ExcludeID:    q.ExcludeBookingID,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	for i := range rows {
		ap := rows[i]
		if q.ExcludeBookingID != 0 && ap.ID == q.ExcludeBookingID {
			continue
		}
		if Overlaps(q.Start, q.End, ap.StartTime, ap.EndTime) {
			return &ap, nil
		}
	}
	return nil, nil
}

// CheckBookable validates a candidate booking: it must sit inside an
// enabled schedule window of its local day and must not overlap an active
// booking. Overlaps are reported as *httperr.ConflictError.
func (e *Engine) CheckBookable(ctx context.Context, q ConflictQuery) error {
	if !q.Start.Before(q.End) {
		return httperr.ErrBusiness("invalid_interval")
	}

	shop, err := e.resolve(ctx, q.BarbershopID, q.StaffID)
	if err != nil {
		return err
	}

	loc := timezone.Location(shop.Timezone)
	localStart := q.Start.In(loc)
	localEnd := q.End.In(loc)
	day := timezone.StartOfDay(localStart)

	window, ok, err := e.workingWindow(ctx, shop.ID, q.StaffID, day)
	if err != nil {
		return err
	}
	if !ok || localStart.Before(window.Start) || localEnd.After(window.End) {
		return httperr.ErrBusiness("outside_working_hours")
	}

	conflict, err := e.findConflict(ctx, q)
	if err != nil {
		return err
	}
	if conflict != nil {
		return &httperr.ConflictError{
			BookingID: conflict.ID,
			Start:     conflict.StartTime,
			End:       conflict.EndTime,
		}
	}
	return nil
}

// ===============================
// Next slot
// ===============================

type NextSlotQuery struct {
	BarbershopID uint
	StaffID      uint
	SlotDuration time.Duration
	HorizonDays  int
	// Now anchors the search: it starts on Now's local date and skips
	// slots that begin before Now.
	Now time.Time
}

// FindNextAvailableSlot scans forward day by day and returns the first free
// slot, or nil when the horizon holds none.
func (e *Engine) FindNextAvailableSlot(ctx context.Context, q NextSlotQuery) (*Interval, error) {
	horizon := q.HorizonDays
	if horizon == 0 {
		horizon = e.limits.DefaultHorizonDays
	}
	if horizon < 0 || horizon > e.limits.MaxHorizonDays {
		return nil, httperr.ErrBusiness("invalid_horizon")
	}

	slot, err := e.SlotDuration(q.SlotDuration)
	if err != nil {
		return nil, err
	}

	shop, err := e.resolve(ctx, q.BarbershopID, q.StaffID)
	if err != nil {
		return nil, err
	}

	now := q.Now.In(timezone.Location(shop.Timezone))
	today := timezone.StartOfDay(now)

	for i := 0; i < horizon; i++ {
		day := today.AddDate(0, 0, i)

		slots, err := e.freeSlotsOn(ctx, shop.ID, q.StaffID, day, slot, 0)
		if err != nil {
			return nil, err
		}

		for _, s := range slots {
			if s.Before(now) {
				continue
			}
			return &Interval{Start: s, End: s.Add(slot)}, nil
		}
	}

	return nil, nil
}

// ===============================
// Helpers
// ===============================

// SlotDuration resolves a requested slot length; zero means the default.
func (e *Engine) SlotDuration(d time.Duration) (time.Duration, error) {
	if d == 0 {
		return e.limits.DefaultSlot, nil
	}
	if d < 0 || d > e.limits.MaxSlot {
		return 0, httperr.ErrBusiness("invalid_slot_duration")
	}
	return d, nil
}

func (e *Engine) resolve(ctx context.Context, barbershopID, staffID uint) (*models.Barbershop, error) {
	shop, err := e.directory.GetBarbershopByID(ctx, barbershopID)
	if err != nil {
		return nil, err
	}
	if _, err := e.directory.GetStaff(ctx, barbershopID, staffID); err != nil {
		return nil, err
	}
	return shop, nil
}

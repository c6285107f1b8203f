package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

type AvailabilityInput struct {
	BarbershopID uint
	StaffID      uint
	Date         string
	// DurationMin zero falls back to the service duration, then to the
	// default slot.
	DurationMin      int
	ServiceID        uint
	ExcludeBookingID uint
}

// ======================================================
// FREE SLOTS
// ======================================================

type GetAvailability struct {
	Deps
}

func NewGetAvailability(d Deps) *GetAvailability {
	return &GetAvailability{Deps: d}
}

// Execute returns the day's free slot starts as HH:MM in the barbershop's
// zone. Lists are cached per staff day and duration; requests that exclude
// a booking bypass the cache.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*dto.AvailabilityDTO, error) {

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	day, err := timezone.ParseDate(shop.Timezone, in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	now := uc.now().In(day.Location())
	today := timezone.StartOfDay(now)
	if day.Before(today) {
		return nil, httperr.ErrBusiness("date_in_past")
	}

	slot, err := uc.slotFor(ctx, shop.ID, in)
	if err != nil {
		return nil, err
	}

	slots, err := uc.staffSlots(ctx, shop.ID, in.StaffID, day, now, slot, in.ExcludeBookingID)
	if err != nil {
		return nil, err
	}

	return &dto.AvailabilityDTO{
		Date:        day.Format(timezone.DateLayout),
		StaffID:     in.StaffID,
		DurationMin: int(slot / time.Minute),
		Slots:       slots,
	}, nil
}

// staffSlots renders one staff member's free slots for day, reading and
// filling the cache unless a booking is excluded. The cache generation is
// read before computing so a concurrent invalidation discards the write.
func (d Deps) staffSlots(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	day time.Time,
	now time.Time,
	slot time.Duration,
	exclude uint,
) ([]string, error) {

	date := day.Format(timezone.DateLayout)
	useCache := d.Cache != nil && exclude == 0

	var (
		slots []string
		hit   bool
		gen   int64
	)

	if useCache {
		cached, ok, err := d.Cache.Get(ctx, barbershopID, staffID, date, slot)
		if err != nil {
			log.Warn().Err(err).Msg("slot cache read failed")
		}
		if ok {
			slots, hit = cached, true
			metrics.IncCacheHit()
		} else {
			metrics.IncCacheMiss()
			if gen, err = d.Cache.Generation(ctx, barbershopID, staffID); err != nil {
				log.Warn().Err(err).Msg("slot cache generation read failed")
				useCache = false
			}
		}
	}

	if !hit {
		started := time.Now()
		starts, err := d.engine(d.Repo).ComputeFreeSlots(ctx, availability.SlotQuery{
			BarbershopID:     barbershopID,
			StaffID:          staffID,
			Date:             day,
			SlotDuration:     slot,
			ExcludeBookingID: exclude,
		})
		if err != nil {
			return nil, err
		}
		metrics.ObserveSlotComputation(time.Since(started))

		slots = make([]string, 0, len(starts))
		for _, s := range starts {
			slots = append(slots, s.Format(timezone.TimeLayout))
		}

		if useCache {
			if err := d.Cache.Set(ctx, barbershopID, staffID, date, slot, gen, slots); err != nil {
				log.Warn().Err(err).Msg("slot cache write failed")
			}
		}
	}

	if day.Equal(timezone.StartOfDay(now)) {
		slots = dropPast(slots, day, now)
	}
	return slots, nil
}

// ======================================================
// SHOP-WIDE FREE SLOTS
// ======================================================

type ShopAvailabilityInput struct {
	BarbershopID uint
	Date         string
	DurationMin  int
	ServiceID    uint
}

type GetShopAvailability struct {
	Deps
}

func NewGetShopAvailability(d Deps) *GetShopAvailability {
	return &GetShopAvailability{Deps: d}
}

// Execute lists free slots for every staff member scheduled on the date's
// weekday. Staff without a free slot are left out.
func (uc *GetShopAvailability) Execute(
	ctx context.Context,
	in ShopAvailabilityInput,
) (*dto.ShopAvailabilityDTO, error) {

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	day, err := timezone.ParseDate(shop.Timezone, in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	now := uc.now().In(day.Location())
	if day.Before(timezone.StartOfDay(now)) {
		return nil, httperr.ErrBusiness("date_in_past")
	}

	slot, err := uc.slotFor(ctx, shop.ID, AvailabilityInput{
		DurationMin: in.DurationMin,
		ServiceID:   in.ServiceID,
	})
	if err != nil {
		return nil, err
	}
	if slot, err = uc.engine(uc.Repo).SlotDuration(slot); err != nil {
		return nil, err
	}

	staff, err := uc.Repo.ListScheduledStaff(ctx, shop.ID, day.Weekday())
	if err != nil {
		return nil, err
	}

	out := &dto.ShopAvailabilityDTO{
		Date:        day.Format(timezone.DateLayout),
		DurationMin: int(slot / time.Minute),
		Staff:       []dto.StaffSlotsDTO{},
	}

	for _, member := range staff {
		slots, err := uc.staffSlots(ctx, shop.ID, member.ID, day, now, slot, 0)
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			continue
		}
		out.Staff = append(out.Staff, dto.StaffSlotsDTO{
			StaffID:   member.ID,
			StaffName: member.Name,
			Slots:     slots,
		})
	}

	return out, nil
}

// ======================================================
// STAFF FREE AT A TIME
// ======================================================

type AvailableStaffInput struct {
	BarbershopID uint
	Date         string
	Time         string
	DurationMin  int
	ServiceID    uint
}

type GetAvailableStaff struct {
	Deps
}

func NewGetAvailableStaff(d Deps) *GetAvailableStaff {
	return &GetAvailableStaff{Deps: d}
}

// Execute returns the staff members who could take a booking starting at
// the given local date and time.
func (uc *GetAvailableStaff) Execute(
	ctx context.Context,
	in AvailableStaffInput,
) ([]dto.StaffDTO, error) {

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDateTime(shop.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	if start.Before(uc.now()) {
		return nil, httperr.ErrBusiness("date_in_past")
	}

	slot, err := uc.slotFor(ctx, shop.ID, AvailabilityInput{
		DurationMin: in.DurationMin,
		ServiceID:   in.ServiceID,
	})
	if err != nil {
		return nil, err
	}

	engine := uc.engine(uc.Repo)
	if slot, err = engine.SlotDuration(slot); err != nil {
		return nil, err
	}

	staff, err := uc.Repo.ListScheduledStaff(ctx, shop.ID, start.Weekday())
	if err != nil {
		return nil, err
	}
	out := []dto.StaffDTO{}

	for _, member := range staff {
		err := engine.CheckBookable(ctx, availability.ConflictQuery{
			BarbershopID: shop.ID,
			StaffID:      member.ID,
			Start:        start,
			End:          start.Add(slot),
		})
		if err == nil {
			out = append(out, dto.StaffDTO{ID: member.ID, Name: member.Name})
			continue
		}
		if httperr.IsBusiness(err, "outside_working_hours") || httperr.IsKind(err, httperr.KindConflict) {
			continue
		}
		return nil, err
	}

	return out, nil
}

func (d Deps) slotFor(ctx context.Context, barbershopID uint, in AvailabilityInput) (time.Duration, error) {
	if in.DurationMin != 0 {
		return time.Duration(in.DurationMin) * time.Minute, nil
	}
	if in.ServiceID != 0 {
		svc, err := d.Repo.GetService(ctx, barbershopID, in.ServiceID)
		if err != nil {
			return 0, err
		}
		return svc.Duration(), nil
	}
	return d.Limits.DefaultSlot, nil
}

// dropPast removes today's slots that already started.
func dropPast(slots []string, day time.Time, now time.Time) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		c, err := availability.ParseClock(s)
		if err != nil || c.On(day).Before(now) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ======================================================
// NEXT SLOT
// ======================================================

type NextSlotInput struct {
	BarbershopID uint
	StaffID      uint
	DurationMin  int
	ServiceID    uint
	HorizonDays  int
}

type GetNextAvailableSlot struct {
	Deps
}

func NewGetNextAvailableSlot(d Deps) *GetNextAvailableSlot {
	return &GetNextAvailableSlot{Deps: d}
}

func (uc *GetNextAvailableSlot) Execute(
	ctx context.Context,
	in NextSlotInput,
) (*dto.NextSlotDTO, error) {

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	slot, err := uc.slotFor(ctx, shop.ID, AvailabilityInput{
		DurationMin: in.DurationMin,
		ServiceID:   in.ServiceID,
	})
	if err != nil {
		return nil, err
	}

	next, err := uc.engine(uc.Repo).FindNextAvailableSlot(ctx, availability.NextSlotQuery{
		BarbershopID: shop.ID,
		StaffID:      in.StaffID,
		SlotDuration: slot,
		HorizonDays:  in.HorizonDays,
		Now:          uc.now(),
	})
	if err != nil {
		return nil, err
	}
	if next == nil {
		return &dto.NextSlotDTO{Available: false}, nil
	}

	return &dto.NextSlotDTO{
		Available: true,
		Start:     &next.Start,
		End:       &next.End,
		Date:      next.Start.Format(timezone.DateLayout),
		Time:      next.Start.Format(timezone.TimeLayout),
	}, nil
}

package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

type RescheduleAppointmentInput struct {
	Actor         policy.Actor
	BarbershopID  uint
	AppointmentID uint
	Date          string
	Time          string
}

type RescheduleAppointment struct {
	Deps
}

func NewRescheduleAppointment(d Deps) *RescheduleAppointment {
	return &RescheduleAppointment{Deps: d}
}

// Execute moves an active appointment keeping its duration. The booking
// itself is excluded from the conflict check, so moving it onto an
// interval it already covers is allowed.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.Repo.GetAppointment(ctx, shop.ID, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if !policy.CanManageAppointment(in.Actor, policy.ActionReschedule, ap, &ap.Customer) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	start, err := timezone.ParseDateTime(shop.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	before := *ap
	if err := domain.Reschedule(ap, start, uc.now()); err != nil {
		return nil, err
	}

	err = uc.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		if err := uc.engine(tx).CheckBookable(ctx, availability.ConflictQuery{
			BarbershopID:     shop.ID,
			StaffID:          ap.StaffID,
			Start:            ap.StartTime,
			End:              ap.EndTime,
			ExcludeBookingID: ap.ID,
		}); err != nil {
			return err
		}
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		var ce *httperr.ConflictError
		if errors.As(err, &ce) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	uc.invalidate(ctx, shop, &before, ap)
	metrics.IncAppointmentEvent("appointment_rescheduled")

	actorID := in.Actor.UserID
	uc.dispatch(audit.Event{
		BarbershopID: shop.ID,
		UserID:       &actorID,
		Action:       "appointment_rescheduled",
		Entity:       "appointment",
		EntityID:     &ap.ID,
		Metadata: map[string]any{
			"from": before.StartTime,
			"to":   ap.StartTime,
		},
	})

	return ap, nil
}

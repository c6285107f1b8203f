package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type StatusChangeInput struct {
	Actor         policy.Actor
	BarbershopID  uint
	AppointmentID uint
}

type transition struct {
	action policy.AppointmentAction
	event  string
	apply  func(ap *models.Appointment, now time.Time) error
	// frees reports whether the new status releases the staff member's time.
	frees bool
}

func (d Deps) changeStatus(
	ctx context.Context,
	in StatusChangeInput,
	t transition,
) (*models.Appointment, error) {

	shop, err := d.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	ap, err := d.Repo.GetAppointment(ctx, shop.ID, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if !policy.CanManageAppointment(in.Actor, t.action, ap, &ap.Customer) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	now := d.now()
	if err := t.apply(ap, now); err != nil {
		return nil, err
	}

	if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if t.frees {
		d.invalidate(ctx, shop, ap)
	}
	metrics.IncAppointmentEvent(t.event)

	actorID := in.Actor.UserID
	d.dispatch(audit.Event{
		BarbershopID: shop.ID,
		UserID:       &actorID,
		Action:       t.event,
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return ap, nil
}

// ======================================================
// CONFIRM
// ======================================================

type ConfirmAppointment struct {
	Deps
}

func NewConfirmAppointment(d Deps) *ConfirmAppointment {
	return &ConfirmAppointment{Deps: d}
}

func (uc *ConfirmAppointment) Execute(ctx context.Context, in StatusChangeInput) (*models.Appointment, error) {
	return uc.changeStatus(ctx, in, transition{
		action: policy.ActionConfirm,
		event:  "appointment_confirmed",
		apply:  domain.Confirm,
	})
}

// ======================================================
// CANCEL
// ======================================================

type CancelAppointment struct {
	Deps
}

func NewCancelAppointment(d Deps) *CancelAppointment {
	return &CancelAppointment{Deps: d}
}

func (uc *CancelAppointment) Execute(ctx context.Context, in StatusChangeInput) (*models.Appointment, error) {
	return uc.changeStatus(ctx, in, transition{
		action: policy.ActionCancel,
		event:  "appointment_cancelled",
		apply:  domain.Cancel,
		frees:  true,
	})
}

// ======================================================
// COMPLETE
// ======================================================

type CompleteAppointment struct {
	Deps
}

func NewCompleteAppointment(d Deps) *CompleteAppointment {
	return &CompleteAppointment{Deps: d}
}

func (uc *CompleteAppointment) Execute(ctx context.Context, in StatusChangeInput) (*models.Appointment, error) {
	ap, err := uc.changeStatus(ctx, in, transition{
		action: policy.ActionComplete,
		event:  "appointment_completed",
		apply:  domain.Complete,
		frees:  true,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.Repo.TouchCustomerVisit(ctx, ap.CustomerID, *ap.CompletedAt); err != nil {
		return nil, err
	}
	return ap, nil
}

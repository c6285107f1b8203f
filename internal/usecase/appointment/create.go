package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor policy.Actor

	BarbershopID uint
	StaffID      uint
	ServiceID    uint

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Date string
	Time string

	// FinalPrice overrides the service price when set.
	FinalPrice *float64
	Notes      string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	Deps
}

func NewCreateAppointment(d Deps) *CreateAppointment {
	return &CreateAppointment{Deps: d}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Barbershop + staff
	// --------------------------------------------------
	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.Repo.GetStaff(ctx, shop.ID, in.StaffID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Date / time in the barbershop's zone
	// --------------------------------------------------
	start, err := timezone.ParseDateTime(shop.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	now := uc.now()
	if start.Before(now) {
		return nil, httperr.ErrBusiness("date_in_past")
	}
	if shop.MinAdvanceMinutes > 0 &&
		start.Before(now.Add(time.Duration(shop.MinAdvanceMinutes)*time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// Service
	// --------------------------------------------------
	svc, err := uc.Repo.GetService(ctx, shop.ID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Customer (get or create)
	// --------------------------------------------------
	cin := domain.CustomerInput{
		BarbershopID: shop.ID,
		Name:         in.CustomerName,
		Phone:        in.CustomerPhone,
		Email:        in.CustomerEmail,
	}
	if in.Actor.Role == policy.RoleClient {
		uid := in.Actor.UserID
		cin.UserID = &uid
	}

	price := svc.Price
	if in.FinalPrice != nil {
		if *in.FinalPrice < 0 {
			return nil, httperr.ErrBusiness("invalid_price")
		}
		price = *in.FinalPrice
	}

	ap := &models.Appointment{
		BarbershopID: shop.ID,
		StaffID:      in.StaffID,
		ServiceID:    svc.ID,
		StartTime:    start,
		EndTime:      start.Add(svc.Duration()),
		Status:       string(domain.InitialStatus()),
		FinalPrice:   price,
		Notes:        in.Notes,
	}

	// Staff rights do not depend on the customer; clients are checked
	// against the customer record inside the transaction.
	if in.Actor.Role != policy.RoleClient &&
		!policy.CanManageAppointment(in.Actor, policy.ActionCreate, ap, nil) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	// --------------------------------------------------
	// Customer, policy, working hours, conflict and insert in one
	// transaction; a rejected request leaves no customer row behind.
	// --------------------------------------------------
	var customer *models.Customer
	err = uc.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		c, err := tx.GetOrCreateCustomer(ctx, cin)
		if err != nil {
			return err
		}
		customer = c
		ap.CustomerID = c.ID

		if !policy.CanManageAppointment(in.Actor, policy.ActionCreate, ap, c) {
			return httperr.ErrForbidden("forbidden")
		}

		if err := uc.engine(tx).CheckBookable(ctx, availability.ConflictQuery{
			BarbershopID: shop.ID,
			StaffID:      ap.StaffID,
			Start:        ap.StartTime,
			End:          ap.EndTime,
		}); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		var ce *httperr.ConflictError
		if errors.As(err, &ce) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	uc.invalidate(ctx, shop, ap)
	metrics.IncAppointmentEvent("appointment_created")

	actorID := in.Actor.UserID
	uc.dispatch(audit.Event{
		BarbershopID: shop.ID,
		UserID:       &actorID,
		Action:       "appointment_created",
		Entity:       "appointment",
		EntityID:     &ap.ID,
		Metadata: map[string]any{
			"staff_id":   ap.StaffID,
			"service_id": ap.ServiceID,
			"start_time": ap.StartTime,
		},
	})

	ap.Customer = *customer
	ap.Service = *svc
	return ap, nil
}

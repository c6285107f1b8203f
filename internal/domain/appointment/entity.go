package appointment

import (
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}
	if ap.StartTime.Before(now) {
		return httperr.ErrInvalidState("appointment_in_past")
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}
	if ap.StartTime.Before(now) {
		return httperr.ErrInvalidState("appointment_in_past")
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

// Complete is allowed once the appointment has started.
func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}
	if now.Before(ap.StartTime) {
		return httperr.ErrInvalidState("appointment_not_started")
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// Reschedule moves an active appointment, keeping its duration. Working
// hours and conflicts are checked by the caller.
func Reschedule(ap *models.Appointment, start time.Time, now time.Time) error {
	if err := CanReschedule(Status(ap.Status)); err != nil {
		return err
	}
	if start.Before(now) {
		return httperr.ErrBusiness("date_in_past")
	}

	d := ap.EndTime.Sub(ap.StartTime)
	ap.StartTime = start
	ap.EndTime = start.Add(d)
	return nil
}

// ===============================
// Payment
// ===============================

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	MethodPix        PaymentMethod = "PIX"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodCash       PaymentMethod = "CASH"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodPix, MethodCreditCard, MethodDebitCard, MethodCash:
		return true
	}
	return false
}

func MarkPaid(p *models.Payment, now time.Time) error {
	if PaymentStatus(p.Status) != PaymentPending {
		return httperr.ErrInvalidState("invalid_state")
	}
	p.Status = string(PaymentPaid)
	p.PaidAt = &now
	return nil
}

func Refund(p *models.Payment, now time.Time) error {
	if PaymentStatus(p.Status) != PaymentPaid {
		return httperr.ErrInvalidState("invalid_state")
	}
	p.Status = string(PaymentRefunded)
	p.RefundedAt = &now
	return nil
}

package appointment

import "github.com/BruksfildServices01/barbershop-booking/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the statuses that occupy the staff member's time.
var ActiveStatuses = []string{
	string(StatusPending),
	string(StatusConfirmed),
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Transitions
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrInvalidState("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.IsActive() {
		return httperr.ErrInvalidState("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrInvalidState("invalid_state")
	}
	return nil
}

func CanReschedule(current Status) error {
	if !current.IsActive() {
		return httperr.ErrInvalidState("invalid_state")
	}
	return nil
}

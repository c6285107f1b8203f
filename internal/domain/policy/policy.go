package policy

import (
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleBarber Role = "BARBER"
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleClient, RoleBarber, RoleOwner, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) IsStaff() bool {
	return r == RoleBarber || r == RoleOwner
}

// Actor is the authenticated caller as read from the access token.
type Actor struct {
	UserID       uint
	BarbershopID uint
	Role         Role
}

func (a Actor) worksAt(barbershopID uint) bool {
	return a.Role.IsStaff() && barbershopID != 0 && a.BarbershopID == barbershopID
}

type AppointmentAction string

const (
	ActionView       AppointmentAction = "view"
	ActionCreate     AppointmentAction = "create"
	ActionConfirm    AppointmentAction = "confirm"
	ActionCancel     AppointmentAction = "cancel"
	ActionComplete   AppointmentAction = "complete"
	ActionReschedule AppointmentAction = "reschedule"
)

// CanManageAppointment decides whether a may perform action on ap.
// customer is the booking's customer and may be nil for staff-only checks.
func CanManageAppointment(
	a Actor,
	action AppointmentAction,
	ap *models.Appointment,
	customer *models.Customer,
) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleOwner:
		return a.worksAt(ap.BarbershopID)
	case RoleBarber:
		return a.worksAt(ap.BarbershopID) && (ap.StaffID == a.UserID || action == ActionCreate)
	case RoleClient:
		if customer == nil || customer.UserID == nil || *customer.UserID != a.UserID {
			return false
		}
		switch action {
		case ActionView, ActionCreate, ActionCancel:
			return true
		}
	}
	return false
}

func CanManageBarbershop(a Actor, barbershopID uint) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleOwner && a.worksAt(barbershopID)
}

// CanManageSchedule allows owners to edit any schedule of their shop and
// barbers to edit their own.
func CanManageSchedule(a Actor, barbershopID uint, staffID uint) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleOwner:
		return a.worksAt(barbershopID)
	case RoleBarber:
		return a.worksAt(barbershopID) && staffID == a.UserID
	}
	return false
}

// CanViewAnalytics with barbershopID zero asks for platform-wide figures.
func CanViewAnalytics(a Actor, barbershopID uint) bool {
	if a.Role == RoleAdmin {
		return true
	}
	if barbershopID == 0 {
		return false
	}
	return a.Role == RoleOwner && a.worksAt(barbershopID)
}

func CanManagePayment(a Actor, barbershopID uint) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.worksAt(barbershopID)
}

// CanReview allows the booking's own client to review it once completed.
func CanReview(a Actor, ap *models.Appointment, customer *models.Customer) bool {
	if a.Role != RoleClient || customer == nil || customer.UserID == nil {
		return false
	}
	return *customer.UserID == a.UserID &&
		ap.CustomerID == customer.ID &&
		ap.Status == "COMPLETED"
}

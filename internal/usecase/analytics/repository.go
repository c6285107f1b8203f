package analytics

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Scope narrows an aggregate. Zero IDs mean every barbershop or staff
// member; zero times leave that side of the range open.
type Scope struct {
	BarbershopID uint
	StaffID      uint
	From         time.Time
	To           time.Time
}

type PlatformTotals struct {
	Barbershops   int64
	Users         int64
	ActiveBarbers int64
}

type Repository interface {
	GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error)
	GetStaff(ctx context.Context, barbershopID uint, staffID uint) (*models.User, error)

	CountCustomers(ctx context.Context, barbershopID uint) (int64, error)
	// CountAppointments counts by start time; empty status counts all.
	CountAppointments(ctx context.Context, s Scope, status string) (int64, error)
	// CompletedRevenue sums final prices of COMPLETED appointments.
	CompletedRevenue(ctx context.Context, s Scope) (float64, error)
	// PaidAmount sums PAID payments by payment time.
	PaidAmount(ctx context.Context, s Scope) (float64, error)
	AverageRating(ctx context.Context, s Scope) (float64, error)
	TopService(ctx context.Context, barbershopID uint) (string, error)
	TopStaff(ctx context.Context, barbershopID uint) (string, error)
	PlatformTotals(ctx context.Context) (PlatformTotals, error)

	ListAppointments(ctx context.Context, s Scope) ([]models.Appointment, error)
}

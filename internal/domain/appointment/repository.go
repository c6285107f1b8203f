package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type CustomerInput struct {
	BarbershopID uint
	UserID       *uint
	Name         string
	Phone        string
	Email        string
}

// PeriodFilter selects appointments starting in [From, To). Zero IDs and an
// empty Status match everything.
type PeriodFilter struct {
	BarbershopID uint
	StaffID      uint
	CustomerID   uint
	Status       string
	From         time.Time
	To           time.Time
}

type Repository interface {
	// Engine ports. Inside WithinTx, ListActiveBookings locks the rows it
	// returns.
	availability.ScheduleReader
	availability.BookingReader
	availability.DirectoryReader

	// -------- Directory --------
	ListScheduledStaff(
		ctx context.Context,
		barbershopID uint,
		weekday time.Weekday,
	) ([]models.User, error)

	// -------- Catalog --------
	GetService(
		ctx context.Context,
		barbershopID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Customer --------
	GetOrCreateCustomer(
		ctx context.Context,
		in CustomerInput,
	) (*models.Customer, error)

	GetCustomerByUser(
		ctx context.Context,
		barbershopID uint,
		userID uint,
	) (*models.Customer, error)

	TouchCustomerVisit(
		ctx context.Context,
		customerID uint,
		at time.Time,
	) error

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		barbershopID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsForPeriod(
		ctx context.Context,
		f PeriodFilter,
	) ([]models.Appointment, error)

	// -------- Transaction --------
	WithinTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
	// lock is set on the transaction-bound copy handed out by WithinTx.
	lock bool
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {

	if r.lock {
		return fn(r)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx, lock: true})
	})
}

// --------------------------------------------------
// Directory
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarbershopByID(
	ctx context.Context,
	id uint,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, notFound(err, "barbershop_not_found")
	}
	return &shop, nil
}

func (r *AppointmentGormRepository) GetStaff(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Where(
			"id = ? AND barbershop_id = ? AND role IN ? AND active = ?",
			staffID,
			barbershopID,
			[]string{"BARBER", "OWNER"},
			true,
		).
		First(&user).Error; err != nil {
		return nil, notFound(err, "staff_not_found")
	}
	return &user, nil
}

// ListScheduledStaff returns the active staff members with an enabled
// schedule row for weekday, ordered by name.
func (r *AppointmentGormRepository) ListScheduledStaff(
	ctx context.Context,
	barbershopID uint,
	weekday time.Weekday,
) ([]models.User, error) {

	var staff []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN weekly_schedules ws ON ws.staff_id = users.id AND ws.barbershop_id = users.barbershop_id").
		Where(
			"users.barbershop_id = ? AND users.role IN ? AND users.active = ? AND ws.weekday = ? AND ws.enabled = ?",
			barbershopID,
			[]string{"BARBER", "OWNER"},
			true,
			int(weekday),
			true,
		).
		Order("users.name ASC").
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) FindSchedule(
	ctx context.Context,
	staffID uint,
	barbershopID uint,
	weekday time.Weekday,
) (*models.WeeklySchedule, error) {

	var s models.WeeklySchedule
	err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND barbershop_id = ? AND weekday = ?",
			staffID,
			barbershopID,
			int(weekday),
		).
		First(&s).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AppointmentGormRepository) ListActiveBookings(
	ctx context.Context,
	f availability.BookingFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"staff_id = ? AND barbershop_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			f.StaffID,
			f.BarbershopID,
			domain.ActiveStatuses,
			f.To,
			f.From,
		)

	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	barbershopID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ? AND active = ?", serviceID, barbershopID, true).
		First(&svc).Error; err != nil {
		return nil, notFound(err, "service_not_found")
	}
	return &svc, nil
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *AppointmentGormRepository) GetCustomerByUser(
	ctx context.Context,
	barbershopID uint,
	userID uint,
) (*models.Customer, error) {

	var c models.Customer
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND user_id = ?", barbershopID, userID).
		First(&c).Error; err != nil {
		return nil, notFound(err, "customer_not_found")
	}
	return &c, nil
}

func (r *AppointmentGormRepository) GetOrCreateCustomer(
	ctx context.Context,
	in domain.CustomerInput,
) (*models.Customer, error) {

	if in.UserID != nil {
		c, err := r.GetCustomerByUser(ctx, in.BarbershopID, *in.UserID)
		if err == nil {
			return c, nil
		}
		if !httperr.IsKind(err, httperr.KindNotFound) {
			return nil, err
		}
	}

	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", in.BarbershopID, in.Phone).
		First(&c).Error

	if err == nil {
		if c.UserID == nil && in.UserID != nil {
			c.UserID = in.UserID
			if err := r.db.WithContext(ctx).
				Model(&c).
				Update("user_id", in.UserID).Error; err != nil {
				return nil, err
			}
		}
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = models.Customer{
		BarbershopID: in.BarbershopID,
		UserID:       in.UserID,
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
	}

	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AppointmentGormRepository) TouchCustomerVisit(
	ctx context.Context,
	customerID uint,
	at time.Time,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("last_visit", at).Error
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
	return overlapAsConflict(err)
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	barbershopID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Preload("Staff").
		Where("id = ? AND barbershop_id = ?", appointmentID, barbershopID).
		First(&ap).Error; err != nil {
		return nil, notFound(err, "appointment_not_found")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
	return overlapAsConflict(err)
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	f domain.PeriodFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Preload("Staff").
		Where("start_time >= ? AND start_time < ?", f.From, f.To)

	if f.BarbershopID != 0 {
		q = q.Where("barbershop_id = ?", f.BarbershopID)
	}
	if f.StaffID != 0 {
		q = q.Where("staff_id = ?", f.StaffID)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return fmt.Errorf("%s: %w", code, err)
}

// overlapAsConflict maps a violation of the booking exclusion constraint to
// a ConflictError without the competing row.
func overlapAsConflict(err error) error {
	if err != nil && httperr.IsExclusionConflict(err) {
		return &httperr.ConflictError{}
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/analytics"
)

type AnalyticsGormRepository struct {
	db  *gorm.DB
	dir *AppointmentGormRepository
}

func NewAnalyticsGormRepository(db *gorm.DB) *AnalyticsGormRepository {
	return &AnalyticsGormRepository{db: db, dir: NewAppointmentGormRepository(db)}
}

func (r *AnalyticsGormRepository) GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error) {
	return r.dir.GetBarbershopByID(ctx, id)
}

func (r *AnalyticsGormRepository) GetStaff(ctx context.Context, barbershopID, staffID uint) (*models.User, error) {
	return r.dir.GetStaff(ctx, barbershopID, staffID)
}

// appointments applies s to a query over appointments, ranged by start.
func (r *AnalyticsGormRepository) appointments(ctx context.Context, s analytics.Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if s.BarbershopID != 0 {
		q = q.Where("barbershop_id = ?", s.BarbershopID)
	}
	if s.StaffID != 0 {
		q = q.Where("staff_id = ?", s.StaffID)
	}
	if !s.From.IsZero() {
		q = q.Where("start_time >= ?", s.From)
	}
	if !s.To.IsZero() {
		q = q.Where("start_time < ?", s.To)
	}
	return q
}

func (r *AnalyticsGormRepository) CountCustomers(ctx context.Context, barbershopID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("barbershop_id = ?", barbershopID).
		Count(&n).Error
	return n, err
}

func (r *AnalyticsGormRepository) CountAppointments(
	ctx context.Context,
	s analytics.Scope,
	status string,
) (int64, error) {

	q := r.appointments(ctx, s)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *AnalyticsGormRepository) CompletedRevenue(ctx context.Context, s analytics.Scope) (float64, error) {
	var total float64
	err := r.appointments(ctx, s).
		Where("status = ?", "COMPLETED").
		Select("COALESCE(SUM(final_price), 0)").
		Scan(&total).Error
	return total, err
}

func (r *AnalyticsGormRepository) PaidAmount(ctx context.Context, s analytics.Scope) (float64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("payments.status = ?", "PAID")

	if s.BarbershopID != 0 {
		q = q.Where("payments.barbershop_id = ?", s.BarbershopID)
	}
	if s.StaffID != 0 {
		q = q.Joins("JOIN appointments ON appointments.id = payments.appointment_id").
			Where("appointments.staff_id = ?", s.StaffID)
	}
	if !s.From.IsZero() {
		q = q.Where("payments.paid_at >= ?", s.From)
	}
	if !s.To.IsZero() {
		q = q.Where("payments.paid_at < ?", s.To)
	}

	var total float64
	err := q.Select("COALESCE(SUM(payments.amount), 0)").Scan(&total).Error
	return total, err
}

func (r *AnalyticsGormRepository) AverageRating(ctx context.Context, s analytics.Scope) (float64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{})
	if s.BarbershopID != 0 {
		q = q.Where("barbershop_id = ?", s.BarbershopID)
	}
	if s.StaffID != 0 {
		q = q.Where("staff_id = ?", s.StaffID)
	}

	var avg float64
	err := q.Select("COALESCE(AVG(rating), 0)").Scan(&avg).Error
	return avg, err
}

type rankedName struct {
	Name  string
	Total int64
}

func (r *AnalyticsGormRepository) TopService(ctx context.Context, barbershopID uint) (string, error) {
	var top rankedName
	err := r.db.WithContext(ctx).
		Table("appointments").
		Select("services.name AS name, COUNT(*) AS total").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.barbershop_id = ?", barbershopID).
		Group("services.name").
		Order("total DESC").
		Limit(1).
		Scan(&top).Error
	return top.Name, err
}

func (r *AnalyticsGormRepository) TopStaff(ctx context.Context, barbershopID uint) (string, error) {
	var top rankedName
	err := r.db.WithContext(ctx).
		Table("appointments").
		Select("users.name AS name, COUNT(*) AS total").
		Joins("JOIN users ON users.id = appointments.staff_id").
		Where("appointments.barbershop_id = ?", barbershopID).
		Group("users.name").
		Order("total DESC").
		Limit(1).
		Scan(&top).Error
	return top.Name, err
}

func (r *AnalyticsGormRepository) PlatformTotals(ctx context.Context) (analytics.PlatformTotals, error) {
	var out analytics.PlatformTotals
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Barbershop{}).Count(&out.Barbershops).Error; err != nil {
		return out, err
	}
	if err := db.Model(&models.User{}).Count(&out.Users).Error; err != nil {
		return out, err
	}
	err := db.Model(&models.User{}).
		Where("role IN ? AND active = ?", []string{"BARBER", "OWNER"}, true).
		Count(&out.ActiveBarbers).Error
	return out, err
}

func (r *AnalyticsGormRepository) ListAppointments(
	ctx context.Context,
	s analytics.Scope,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	err := r.appointments(ctx, s).
		Preload("Customer").
		Preload("Service").
		Preload("Staff").
		Order("start_time ASC").
		Find(&aps).Error
	return aps, err
}

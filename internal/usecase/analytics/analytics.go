package analytics

import (
	"context"
	"math"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

const (
	defaultStatsDays = 30
	maxStatsDays     = 365
)

type BarbershopOverview struct {
	BarbershopID          uint    `json:"barbershop_id"`
	BarbershopName        string  `json:"barbershop_name"`
	TotalCustomers        int64   `json:"total_customers"`
	TotalAppointments     int64   `json:"total_appointments"`
	TotalRevenue          float64 `json:"total_revenue"`
	AverageRating         float64 `json:"average_rating"`
	AppointmentsThisMonth int64   `json:"appointments_this_month"`
	RevenueThisMonth      float64 `json:"revenue_this_month"`
	TopService            string  `json:"top_service,omitempty"`
	MostPopularStaff      string  `json:"most_popular_staff,omitempty"`
}

type StaffStats struct {
	StaffID               uint    `json:"staff_id"`
	StaffName             string  `json:"staff_name"`
	PeriodDays            int     `json:"period_days"`
	TotalAppointments     int64   `json:"total_appointments"`
	CompletedAppointments int64   `json:"completed_appointments"`
	CancelledAppointments int64   `json:"cancelled_appointments"`
	Revenue               float64 `json:"revenue"`
	AverageRating         float64 `json:"average_rating"`
	CompletionRate        float64 `json:"completion_rate"`
}

type PlatformDashboard struct {
	TotalBarbershops      int64   `json:"total_barbershops"`
	TotalUsers            int64   `json:"total_users"`
	ActiveBarbers         int64   `json:"active_barbers"`
	AppointmentsToday     int64   `json:"total_appointments_today"`
	RevenueToday          float64 `json:"total_revenue_today"`
	AppointmentsThisMonth int64   `json:"total_appointments_this_month"`
	RevenueThisMonth      float64 `json:"total_revenue_this_month"`
	PendingAppointments   int64   `json:"pending_appointments"`
}

type Service struct {
	repo  Repository
	clock timezone.Clock
}

func NewService(repo Repository, clock timezone.Clock) *Service {
	if clock == nil {
		clock = timezone.SystemClock()
	}
	return &Service{repo: repo, clock: clock}
}

// ======================================================
// BARBERSHOP OVERVIEW
// ======================================================

func (s *Service) Overview(
	ctx context.Context,
	actor policy.Actor,
	barbershopID uint,
) (*BarbershopOverview, error) {

	if !policy.CanViewAnalytics(actor, barbershopID) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	shop, err := s.repo.GetBarbershopByID(ctx, barbershopID)
	if err != nil {
		return nil, err
	}

	now := s.clock().In(timezone.Location(shop.Timezone))
	month := Scope{
		BarbershopID: shop.ID,
		From:         time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}
	all := Scope{BarbershopID: shop.ID}

	out := &BarbershopOverview{
		BarbershopID:   shop.ID,
		BarbershopName: shop.Name,
	}

	if out.TotalCustomers, err = s.repo.CountCustomers(ctx, shop.ID); err != nil {
		return nil, err
	}
	if out.TotalAppointments, err = s.repo.CountAppointments(ctx, all, ""); err != nil {
		return nil, err
	}
	if out.TotalRevenue, err = s.repo.CompletedRevenue(ctx, all); err != nil {
		return nil, err
	}
	if out.AverageRating, err = s.repo.AverageRating(ctx, all); err != nil {
		return nil, err
	}
	if out.AppointmentsThisMonth, err = s.repo.CountAppointments(ctx, month, ""); err != nil {
		return nil, err
	}
	if out.RevenueThisMonth, err = s.repo.PaidAmount(ctx, month); err != nil {
		return nil, err
	}
	if out.TopService, err = s.repo.TopService(ctx, shop.ID); err != nil {
		return nil, err
	}
	if out.MostPopularStaff, err = s.repo.TopStaff(ctx, shop.ID); err != nil {
		return nil, err
	}

	out.TotalRevenue = round2(out.TotalRevenue)
	out.RevenueThisMonth = round2(out.RevenueThisMonth)
	out.AverageRating = round2(out.AverageRating)
	return out, nil
}

// ======================================================
// STAFF STATS
// ======================================================

// StaffStats covers the last days days, today included. Owners see any
// staff member of their shop, barbers only themselves.
func (s *Service) StaffStats(
	ctx context.Context,
	actor policy.Actor,
	barbershopID uint,
	staffID uint,
	days int,
) (*StaffStats, error) {

	if !policy.CanManageSchedule(actor, barbershopID, staffID) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	if days == 0 {
		days = defaultStatsDays
	}
	if days < 0 || days > maxStatsDays {
		return nil, httperr.ErrBusiness("invalid_period")
	}

	shop, err := s.repo.GetBarbershopByID(ctx, barbershopID)
	if err != nil {
		return nil, err
	}
	staff, err := s.repo.GetStaff(ctx, shop.ID, staffID)
	if err != nil {
		return nil, err
	}

	today := timezone.StartOfDay(s.clock().In(timezone.Location(shop.Timezone)))
	scope := Scope{
		BarbershopID: shop.ID,
		StaffID:      staff.ID,
		From:         today.AddDate(0, 0, -(days - 1)),
		To:           today.AddDate(0, 0, 1),
	}

	out := &StaffStats{
		StaffID:    staff.ID,
		StaffName:  staff.Name,
		PeriodDays: days,
	}

	if out.TotalAppointments, err = s.repo.CountAppointments(ctx, scope, ""); err != nil {
		return nil, err
	}
	if out.CompletedAppointments, err = s.repo.CountAppointments(ctx, scope, "COMPLETED"); err != nil {
		return nil, err
	}
	if out.CancelledAppointments, err = s.repo.CountAppointments(ctx, scope, "CANCELLED"); err != nil {
		return nil, err
	}
	if out.Revenue, err = s.repo.CompletedRevenue(ctx, scope); err != nil {
		return nil, err
	}
	if out.AverageRating, err = s.repo.AverageRating(ctx, Scope{BarbershopID: shop.ID, StaffID: staff.ID}); err != nil {
		return nil, err
	}

	if out.TotalAppointments > 0 {
		out.CompletionRate = round2(float64(out.CompletedAppointments) / float64(out.TotalAppointments) * 100)
	}
	out.Revenue = round2(out.Revenue)
	out.AverageRating = round2(out.AverageRating)
	return out, nil
}

// ======================================================
// PLATFORM DASHBOARD
// ======================================================

func (s *Service) Dashboard(ctx context.Context, actor policy.Actor) (*PlatformDashboard, error) {
	if !policy.CanViewAnalytics(actor, 0) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	totals, err := s.repo.PlatformTotals(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock().In(timezone.Location(timezone.DefaultTimezone))
	today := Scope{From: timezone.StartOfDay(now), To: timezone.StartOfDay(now).AddDate(0, 0, 1)}
	month := Scope{From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())}

	out := &PlatformDashboard{
		TotalBarbershops: totals.Barbershops,
		TotalUsers:       totals.Users,
		ActiveBarbers:    totals.ActiveBarbers,
	}

	if out.AppointmentsToday, err = s.repo.CountAppointments(ctx, today, ""); err != nil {
		return nil, err
	}
	if out.RevenueToday, err = s.repo.PaidAmount(ctx, today); err != nil {
		return nil, err
	}
	if out.AppointmentsThisMonth, err = s.repo.CountAppointments(ctx, month, ""); err != nil {
		return nil, err
	}
	if out.RevenueThisMonth, err = s.repo.PaidAmount(ctx, month); err != nil {
		return nil, err
	}
	if out.PendingAppointments, err = s.repo.CountAppointments(ctx, Scope{}, "PENDING"); err != nil {
		return nil, err
	}

	out.RevenueToday = round2(out.RevenueToday)
	out.RevenueThisMonth = round2(out.RevenueThisMonth)
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

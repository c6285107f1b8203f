package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

type ListInput struct {
	Actor        policy.Actor
	BarbershopID uint
	// StaffID zero lists every staff member; only owners and admins may
	// do that or look at another staff member's calendar.
	StaffID uint
	Status  string
}

type ListAppointmentsByDate struct {
	Deps
}

func NewListAppointmentsByDate(d Deps) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{Deps: d}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	in ListInput,
	date string,
) ([]dto.AppointmentListDTO, error) {

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseDate(shop.Timezone, date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	return uc.list(ctx, shop, in, start, start.AddDate(0, 0, 1))
}

func (d Deps) list(
	ctx context.Context,
	shop *models.Barbershop,
	in ListInput,
	from time.Time,
	to time.Time,
) ([]dto.AppointmentListDTO, error) {

	staffID := in.StaffID
	if in.Actor.Role == policy.RoleBarber {
		if staffID != 0 && staffID != in.Actor.UserID {
			return nil, httperr.ErrForbidden("forbidden")
		}
		staffID = in.Actor.UserID
	}
	if !policy.CanManageSchedule(in.Actor, shop.ID, staffID) && !policy.CanManageBarbershop(in.Actor, shop.ID) {
		return nil, httperr.ErrForbidden("forbidden")
	}

	appointments, err := d.Repo.ListAppointmentsForPeriod(ctx, domain.PeriodFilter{
		BarbershopID: shop.ID,
		StaffID:      staffID,
		Status:       in.Status,
		From:         from,
		To:           to,
	})
	if err != nil {
		return nil, err
	}

	return toListDTO(appointments), nil
}

func toListDTO(appointments []models.Appointment) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:            ap.ID,
			StartTime:     ap.StartTime,
			EndTime:       ap.EndTime,
			Status:        ap.Status,
			CustomerName:  ap.Customer.Name,
			CustomerPhone: ap.Customer.Phone,
			ServiceName:   ap.Service.Name,
			StaffID:       ap.StaffID,
			StaffName:     ap.Staff.Name,
			FinalPrice:    ap.FinalPrice,
		})
	}
	return out
}

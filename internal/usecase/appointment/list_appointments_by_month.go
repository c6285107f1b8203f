package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

type ListAppointmentsByMonth struct {
	Deps
}

func NewListAppointmentsByMonth(d Deps) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{Deps: d}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	in ListInput,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(shop.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)

	return uc.list(ctx, shop, in, start, start.AddDate(0, 1, 0))
}

package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// SlotCache holds rendered free-slot lists per staff day. A nil cache
// disables caching. Set must drop the write when the staff member's
// generation moved past gen.
type SlotCache interface {
	Get(ctx context.Context, barbershopID, staffID uint, date string, slot time.Duration) ([]string, bool, error)
	Generation(ctx context.Context, barbershopID, staffID uint) (int64, error)
	Set(ctx context.Context, barbershopID, staffID uint, date string, slot time.Duration, gen int64, slots []string) error
	Invalidate(ctx context.Context, barbershopID, staffID uint, dates ...string) error
}

type Deps struct {
	Repo   domain.Repository
	Audit  *audit.Dispatcher
	Cache  SlotCache
	Clock  timezone.Clock
	Limits availability.Limits
}

func (d Deps) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

func (d Deps) engine(repo domain.Repository) *availability.Engine {
	return availability.NewEngine(repo, repo, repo, d.Limits)
}

// invalidate drops cached slots for the local dates the appointments touch.
// Cache failures are logged; the TTL bounds any staleness.
func (d Deps) invalidate(ctx context.Context, shop *models.Barbershop, aps ...*models.Appointment) {
	if d.Cache == nil {
		return
	}

	loc := timezone.Location(shop.Timezone)
	for _, ap := range aps {
		dates := []string{ap.StartTime.In(loc).Format(timezone.DateLayout)}
		if end := ap.EndTime.In(loc).Format(timezone.DateLayout); end != dates[0] {
			dates = append(dates, end)
		}

		if err := d.Cache.Invalidate(ctx, shop.ID, ap.StaffID, dates...); err != nil {
			log.Warn().Err(err).Uint("staff_id", ap.StaffID).Msg("slot cache invalidation failed")
		}
	}
}

func (d Deps) dispatch(ev audit.Event) {
	if d.Audit == nil {
		return
	}
	d.Audit.Dispatch(ev)
}

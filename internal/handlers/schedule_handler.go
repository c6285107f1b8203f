package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// StaffCacheInvalidator drops every cached free-slot list of one staff
// member.
type StaffCacheInvalidator interface {
	InvalidateStaff(ctx context.Context, barbershopID, staffID uint) error
}

type ScheduleHandler struct {
	db    *gorm.DB
	cache StaffCacheInvalidator
	audit *audit.Dispatcher
}

func NewScheduleHandler(db *gorm.DB, cache StaffCacheInvalidator, dispatcher *audit.Dispatcher) *ScheduleHandler {
	return &ScheduleHandler{db: db, cache: cache, audit: dispatcher}
}

type ScheduleDay struct {
	Weekday   *int   `json:"weekday" binding:"required,min=0,max=6"`
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type ScheduleUpdateRequest struct {
	Days []ScheduleDay `json:"days" binding:"required,dive"`
}

// validateDays checks one row per weekday with start < end on the same
// day and rewrites the hours as zero-padded HH:MM, the form the
// weekly_schedules_time_order check compares. Disabled rows keep their
// hours so they can be re-enabled.
func validateDays(days []ScheduleDay) error {
	seen := make(map[int]bool, len(days))

	for i := range days {
		d := &days[i]
		wd := *d.Weekday
		if seen[wd] {
			return httperr.ErrBusiness("duplicate_weekday")
		}
		seen[wd] = true

		start, err := availability.ParseClock(d.StartTime)
		if err != nil {
			return httperr.ErrBusiness("invalid_time")
		}
		end, err := availability.ParseClock(d.EndTime)
		if err != nil {
			return httperr.ErrBusiness("invalid_time")
		}
		if !start.Before(end) {
			return httperr.ErrBusiness("invalid_interval")
		}

		d.StartTime = start.String()
		d.EndTime = end.String()
	}
	return nil
}

// staffTarget resolves whose schedule is addressed: the staff_id query
// parameter, defaulting to the caller.
func (h *ScheduleHandler) staffTarget(c *gin.Context, actor policy.Actor) (uint, bool) {
	staffID, ok := uintQuery(c, "staff_id")
	if !ok {
		return 0, false
	}
	if staffID == 0 {
		staffID = actor.UserID
	}

	if !policy.CanManageSchedule(actor, actor.BarbershopID, staffID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return 0, false
	}

	var n int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ? AND barbershop_id = ? AND role IN ?", staffID, actor.BarbershopID, staffRoles).
		Count(&n).Error; err != nil {
		httperr.Respond(c, err, "failed_to_get_staff")
		return 0, false
	}
	if n == 0 {
		httperr.Respond(c, httperr.ErrNotFound("staff_not_found"), "")
		return 0, false
	}

	return staffID, true
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	staffID, ok := h.staffTarget(c, actor)
	if !ok {
		return
	}

	var rows []models.WeeklySchedule
	if err := h.db.WithContext(c.Request.Context()).
		Where("staff_id = ? AND barbershop_id = ?", staffID, actor.BarbershopID).
		Order("weekday ASC").
		Find(&rows).Error; err != nil {
		httperr.Respond(c, err, "failed_to_get_schedule")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Put replaces the whole weekly template. Existing bookings are left as
// they are, even when they now fall outside working hours.
func (h *ScheduleHandler) Put(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	staffID, ok := h.staffTarget(c, actor)
	if !ok {
		return
	}

	var req ScheduleUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateDays(req.Days); err != nil {
		httperr.Respond(c, err, "")
		return
	}

	rows := make([]models.WeeklySchedule, 0, len(req.Days))
	for _, d := range req.Days {
		rows = append(rows, models.WeeklySchedule{
			StaffID:      staffID,
			BarbershopID: actor.BarbershopID,
			Weekday:      *d.Weekday,
			StartTime:    d.StartTime,
			EndTime:      d.EndTime,
			Enabled:      d.Enabled,
		})
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("staff_id = ? AND barbershop_id = ?", staffID, actor.BarbershopID).
			Delete(&models.WeeklySchedule{}).Error; err != nil {
			return fmt.Errorf("clear schedule: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_save_schedule")
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateStaff(ctx, actor.BarbershopID, staffID); err != nil {
			log.Warn().Err(err).Uint("staff_id", staffID).Msg("slot cache invalidation failed")
		}
	}

	writeAudit(h.audit, actor, actor.BarbershopID, "schedule_updated", "user", &staffID, gin.H{"days": len(rows)})

	c.JSON(http.StatusOK, rows)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// List filters by action, entity and an inclusive from/to date range read
// in the barbershop's time zone.
func (h *AuditLogsHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManageBarbershop(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	page, ok := httpresp.PageFrom(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	var shop models.Barbershop
	if err := h.db.WithContext(ctx).First(&shop, actor.BarbershopID).Error; err != nil {
		httperr.Respond(c, err, "failed_to_get_barbershop")
		return
	}

	q := h.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("barbershop_id = ?", shop.ID)

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}

	if raw := c.Query("from"); raw != "" {
		from, err := timezone.ParseDate(shop.Timezone, raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Invalid date.")
			return
		}
		q = q.Where("created_at >= ?", from)
	}
	if raw := c.Query("to"); raw != "" {
		to, err := timezone.ParseDate(shop.Timezone, raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Invalid date.")
			return
		}
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "audit_count_failed")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&logs).Error; err != nil {
		httperr.Respond(c, err, "audit_list_failed")
		return
	}

	httpresp.Paged(c, logs, page, total)
}

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// List searches the barbershop's customers by name, phone or e-mail.
func (h *CustomerHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.IsStaff() {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	page, ok := httpresp.PageFrom(c)
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Customer{}).
		Where("barbershop_id = ?", actor.BarbershopID)

	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err, "failed_to_count_customers")
		return
	}

	var customers []models.Customer
	if err := q.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&customers).Error; err != nil {
		httperr.Respond(c, err, "failed_to_list_customers")
		return
	}

	httpresp.Paged(c, customers, page, total)
}

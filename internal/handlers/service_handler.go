package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// maxServiceMinutes caps one service at a working day.
const maxServiceMinutes = 8 * 60

type ServiceHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min" binding:"required,min=1"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	DurationMin *int     `json:"duration_min,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) filtered(c *gin.Context, barbershopID uint, onlyActive bool) ([]models.Service, bool) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Where("barbershop_id = ?", barbershopID)

	if onlyActive {
		q = q.Where("active = ?", true)
	} else {
		switch strings.TrimSpace(c.Query("active")) {
		case "true":
			q = q.Where("active = ?", true)
		case "false":
			q = q.Where("active = ?", false)
		}
	}

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Respond(c, err, "failed_to_list_services")
		return nil, false
	}
	return services, true
}

func (h *ServiceHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	services, ok := h.filtered(c, actor.BarbershopID, false)
	if !ok {
		return
	}
	httpresp.List(c, services)
}

func (h *ServiceHandler) Public(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}

	services, ok := h.filtered(c, shop.ID, true)
	if !ok {
		return
	}
	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManageBarbershop(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DurationMin > maxServiceMinutes {
		httperr.BadRequest(c, "invalid_duration", "Duration is too long.")
		return
	}

	service := models.Service{
		BarbershopID: actor.BarbershopID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		DurationMin:  req.DurationMin,
		Price:        req.Price,
		Active:       true,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		httperr.Respond(c, err, "failed_to_create_service")
		return
	}

	writeAudit(h.audit, actor, actor.BarbershopID, "service_created", "service", &service.ID, nil)

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManageBarbershop(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND barbershop_id = ?", id, actor.BarbershopID).
		First(&service).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("service_not_found"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_get_service")
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		service.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.DurationMin != nil {
		if *req.DurationMin <= 0 || *req.DurationMin > maxServiceMinutes {
			httperr.BadRequest(c, "invalid_duration", "Duration must be positive.")
			return
		}
		service.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		if *req.Price < 0 {
			httperr.BadRequest(c, "invalid_price", "Price must not be negative.")
			return
		}
		service.Price = *req.Price
	}
	if req.Category != nil {
		service.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&service).Error; err != nil {
		httperr.Respond(c, err, "failed_to_update_service")
		return
	}

	writeAudit(h.audit, actor, actor.BarbershopID, "service_updated", "service", &service.ID, req)

	c.JSON(http.StatusOK, service)
}

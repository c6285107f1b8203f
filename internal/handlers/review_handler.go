package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type ReviewHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewReviewHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *ReviewHandler {
	return &ReviewHandler{db: db, audit: dispatcher}
}

type CreateReviewRequest struct {
	AppointmentID uint   `json:"appointment_id" binding:"required"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	Comment       string `json:"comment" binding:"max=1000"`
}

// Create lets a client review one of their completed appointments. A
// customer reviews each staff/service pair at a barbershop once.
func (h *ReviewHandler) Create(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	var ap models.Appointment
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Customer").
		First(&ap, req.AppointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("appointment_not_found"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_get_appointment")
		return
	}

	if !policy.CanReview(actor, &ap, &ap.Customer) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	review := models.Review{
		BarbershopID:  ap.BarbershopID,
		CustomerID:    ap.CustomerID,
		StaffID:       ap.StaffID,
		ServiceID:     ap.ServiceID,
		AppointmentID: ap.ID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}

	if err := h.db.WithContext(c.Request.Context()).Omit(clause.Associations).Create(&review).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Respond(c, httperr.ErrConflictCode("review_exists"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_create_review")
		return
	}

	writeAudit(h.audit, actor, ap.BarbershopID, "review_created", "review", &review.ID, gin.H{"rating": req.Rating})

	c.JSON(http.StatusCreated, review)
}

// Public lists a barbershop's reviews, optionally for one staff member,
// with the average rating.
func (h *ReviewHandler) Public(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}

	staffID, ok := uintQuery(c, "staff_id")
	if !ok {
		return
	}
	page, ok := httpresp.PageFrom(c)
	if !ok {
		return
	}

	scope := func() *gorm.DB {
		q := h.db.WithContext(c.Request.Context()).
			Model(&models.Review{}).
			Where("barbershop_id = ?", shop.ID)
		if staffID != 0 {
			q = q.Where("staff_id = ?", staffID)
		}
		return q
	}

	var stats struct {
		Total   int64
		Average float64
	}
	if err := scope().
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average").
		Scan(&stats).Error; err != nil {
		httperr.Respond(c, err, "failed_to_list_reviews")
		return
	}

	var reviews []models.Review
	if err := scope().
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&reviews).Error; err != nil {
		httperr.Respond(c, err, "failed_to_list_reviews")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	c.JSON(http.StatusOK, gin.H{
		"average_rating": math.Round(stats.Average*10) / 10,
		"total":          stats.Total,
		"page":           page.Page,
		"limit":          page.Limit,
		"data":           reviews,
	})
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// ClientHandler serves CLIENT accounts across every barbershop they have
// booked at.
type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientAppointmentView struct {
	ID             uint      `json:"id"`
	BarbershopID   uint      `json:"barbershop_id"`
	BarbershopName string    `json:"barbershop_name"`
	BarbershopSlug string    `json:"barbershop_slug"`
	StaffName      string    `json:"staff_name"`
	ServiceName    string    `json:"service_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
	FinalPrice     float64   `json:"final_price"`
}

// MyAppointments lists the caller's bookings, newest first. ?upcoming=true
// keeps only active bookings.
func (h *ClientHandler) MyAppointments(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Role != policy.RoleClient {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Preload("Barbershop").
		Preload("Staff").
		Preload("Service").
		Joins("JOIN customers ON customers.id = appointments.customer_id").
		Where("customers.user_id = ?", actor.UserID)

	if c.Query("upcoming") == "true" {
		q = q.Where("appointments.status IN ?", appointment.ActiveStatuses)
	}

	var aps []models.Appointment
	if err := q.Order("appointments.start_time DESC").Limit(200).Find(&aps).Error; err != nil {
		httperr.Respond(c, err, "failed_to_list_appointments")
		return
	}

	out := make([]clientAppointmentView, 0, len(aps))
	for _, ap := range aps {
		loc := timezone.Location(ap.Barbershop.Timezone)
		out = append(out, clientAppointmentView{
			ID:             ap.ID,
			BarbershopID:   ap.BarbershopID,
			BarbershopName: ap.Barbershop.Name,
			BarbershopSlug: ap.Barbershop.Slug,
			StaffName:      ap.Staff.Name,
			ServiceName:    ap.Service.Name,
			StartTime:      ap.StartTime.In(loc),
			EndTime:        ap.EndTime.In(loc),
			Status:         ap.Status,
			FinalPrice:     ap.FinalPrice,
		})
	}

	httpresp.List(c, out)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db *gorm.DB

	create           *ucAppointment.CreateAppointment
	confirm          *ucAppointment.ConfirmAppointment
	cancel           *ucAppointment.CancelAppointment
	complete         *ucAppointment.CompleteAppointment
	reschedule       *ucAppointment.RescheduleAppointment
	listByDate       *ucAppointment.ListAppointmentsByDate
	listByMonth      *ucAppointment.ListAppointmentsByMonth
	availability     *ucAppointment.GetAvailability
	shopAvailability *ucAppointment.GetShopAvailability
	availableStaff   *ucAppointment.GetAvailableStaff
	nextSlot         *ucAppointment.GetNextAvailableSlot
}

// NewAppointmentHandler builds every booking use case over the same
// dependencies. db is only used to resolve barbershop slugs.
func NewAppointmentHandler(db *gorm.DB, deps ucAppointment.Deps) *AppointmentHandler {
	return &AppointmentHandler{
		db:               db,
		create:           ucAppointment.NewCreateAppointment(deps),
		confirm:          ucAppointment.NewConfirmAppointment(deps),
		cancel:           ucAppointment.NewCancelAppointment(deps),
		complete:         ucAppointment.NewCompleteAppointment(deps),
		reschedule:       ucAppointment.NewRescheduleAppointment(deps),
		listByDate:       ucAppointment.NewListAppointmentsByDate(deps),
		listByMonth:      ucAppointment.NewListAppointmentsByMonth(deps),
		availability:     ucAppointment.NewGetAvailability(deps),
		shopAvailability: ucAppointment.NewGetShopAvailability(deps),
		availableStaff:   ucAppointment.NewGetAvailableStaff(deps),
		nextSlot:         ucAppointment.NewGetNextAvailableSlot(deps),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	StaffID       uint     `json:"staff_id" binding:"required"`
	ServiceID     uint     `json:"service_id" binding:"required"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	CustomerEmail string   `json:"customer_email"`
	Date          string   `json:"date" binding:"required"`
	Time          string   `json:"time" binding:"required"`
	FinalPrice    *float64 `json:"final_price"`
	Notes         string   `json:"notes" binding:"max=255"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) createIn(c *gin.Context, barbershopID uint) {
	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.ActorFrom(c)

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:         actor,
		BarbershopID:  barbershopID,
		StaffID:       req.StaffID,
		ServiceID:     req.ServiceID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Date:          req.Date,
		Time:          req.Time,
		FinalPrice:    req.FinalPrice,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_create_appointment")
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// Create books on behalf of a customer at the caller's barbershop.
func (h *AppointmentHandler) Create(c *gin.Context) {
	h.createIn(c, middleware.ActorFrom(c).BarbershopID)
}

// CreatePublic lets an authenticated client book at the barbershop named
// by the slug.
func (h *AppointmentHandler) CreatePublic(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}
	h.createIn(c, shop.ID)
}

// ======================================================
// STATUS CHANGES
// ======================================================

func (h *AppointmentHandler) statusChange(
	c *gin.Context,
	barbershopID uint,
	run func(in ucAppointment.StatusChangeInput) (*models.Appointment, error),
) {

	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := run(ucAppointment.StatusChangeInput{
		Actor:         middleware.ActorFrom(c),
		BarbershopID:  barbershopID,
		AppointmentID: id,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_appointment")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.statusChange(c, middleware.ActorFrom(c).BarbershopID, func(in ucAppointment.StatusChangeInput) (*models.Appointment, error) {
		return h.confirm.Execute(c.Request.Context(), in)
	})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.statusChange(c, middleware.ActorFrom(c).BarbershopID, func(in ucAppointment.StatusChangeInput) (*models.Appointment, error) {
		return h.cancel.Execute(c.Request.Context(), in)
	})
}

// CancelPublic lets a client cancel their own booking at a barbershop.
func (h *AppointmentHandler) CancelPublic(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}
	h.statusChange(c, shop.ID, func(in ucAppointment.StatusChangeInput) (*models.Appointment, error) {
		return h.cancel.Execute(c.Request.Context(), in)
	})
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.statusChange(c, middleware.ActorFrom(c).BarbershopID, func(in ucAppointment.StatusChangeInput) (*models.Appointment, error) {
		return h.complete.Execute(c.Request.Context(), in)
	})
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.ActorFrom(c)

	ap, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleAppointmentInput{
		Actor:         actor,
		BarbershopID:  actor.BarbershopID,
		AppointmentID: id,
		Date:          req.Date,
		Time:          req.Time,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_reschedule_appointment")
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) listInput(c *gin.Context) (ucAppointment.ListInput, bool) {
	actor := middleware.ActorFrom(c)

	staffID, ok := uintQuery(c, "staff_id")
	if !ok {
		return ucAppointment.ListInput{}, false
	}

	return ucAppointment.ListInput{
		Actor:        actor,
		BarbershopID: actor.BarbershopID,
		StaffID:      staffID,
		Status:       c.Query("status"),
	}, true
}

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	in, ok := h.listInput(c)
	if !ok {
		return
	}

	items, err := h.listByDate.Execute(c.Request.Context(), in, date)
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, items)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	in, ok := h.listInput(c)
	if !ok {
		return
	}

	items, err := h.listByMonth.Execute(c.Request.Context(), in, year, month)
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": items,
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

// availabilityIn answers one staff member's free slots, or every scheduled
// staff member's when staff_id is absent. Only staff callers may exclude a
// booking.
func (h *AppointmentHandler) availabilityIn(c *gin.Context, barbershopID uint, allowExclude bool) {
	staffID, ok := uintQuery(c, "staff_id")
	if !ok {
		return
	}
	serviceID, ok := uintQuery(c, "service_id")
	if !ok {
		return
	}
	duration, ok := intQuery(c, "duration")
	if !ok {
		return
	}

	var exclude uint
	if allowExclude {
		if exclude, ok = uintQuery(c, "exclude_booking_id"); !ok {
			return
		}
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_params", "date is required.")
		return
	}

	if staffID == 0 {
		if exclude != 0 {
			httperr.BadRequest(c, "missing_params", "staff_id is required with exclude_booking_id.")
			return
		}

		out, err := h.shopAvailability.Execute(c.Request.Context(), ucAppointment.ShopAvailabilityInput{
			BarbershopID: barbershopID,
			Date:         date,
			DurationMin:  duration,
			ServiceID:    serviceID,
		})
		if err != nil {
			httperr.Respond(c, err, "availability_failed")
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), ucAppointment.AvailabilityInput{
		BarbershopID:     barbershopID,
		StaffID:          staffID,
		Date:             date,
		DurationMin:      duration,
		ServiceID:        serviceID,
		ExcludeBookingID: exclude,
	})
	if err != nil {
		httperr.Respond(c, err, "availability_failed")
		return
	}

	c.JSON(http.StatusOK, out)
}

// Availability serves staff calendars; it may exclude a booking being
// rescheduled.
func (h *AppointmentHandler) Availability(c *gin.Context) {
	h.availabilityIn(c, middleware.ActorFrom(c).BarbershopID, true)
}

func (h *AppointmentHandler) PublicAvailability(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}
	h.availabilityIn(c, shop.ID, false)
}

// PublicAvailableStaff lists who can take a booking at ?date and ?time.
func (h *AppointmentHandler) PublicAvailableStaff(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}

	serviceID, ok := uintQuery(c, "service_id")
	if !ok {
		return
	}
	duration, ok := intQuery(c, "duration")
	if !ok {
		return
	}

	date, clock := c.Query("date"), c.Query("time")
	if date == "" || clock == "" {
		httperr.BadRequest(c, "missing_params", "date and time are required.")
		return
	}

	staff, err := h.availableStaff.Execute(c.Request.Context(), ucAppointment.AvailableStaffInput{
		BarbershopID: shop.ID,
		Date:         date,
		Time:         clock,
		DurationMin:  duration,
		ServiceID:    serviceID,
	})
	if err != nil {
		httperr.Respond(c, err, "available_staff_failed")
		return
	}

	httpresp.List(c, staff)
}

func (h *AppointmentHandler) PublicNextSlot(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}

	staffID, ok := uintQuery(c, "staff_id")
	if !ok {
		return
	}
	serviceID, ok := uintQuery(c, "service_id")
	if !ok {
		return
	}
	duration, ok := intQuery(c, "duration")
	if !ok {
		return
	}
	horizon, ok := intQuery(c, "horizon_days")
	if !ok {
		return
	}
	if staffID == 0 {
		httperr.BadRequest(c, "missing_params", "staff_id is required.")
		return
	}

	out, err := h.nextSlot.Execute(c.Request.Context(), ucAppointment.NextSlotInput{
		BarbershopID: shop.ID,
		StaffID:      staffID,
		DurationMin:  duration,
		ServiceID:    serviceID,
		HorizonDays:  horizon,
	})
	if err != nil {
		httperr.Respond(c, err, "next_slot_failed")
		return
	}

	c.JSON(http.StatusOK, out)
}

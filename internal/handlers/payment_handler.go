package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// PaymentHandler records how an appointment was paid. There is no gateway:
// a payment is a status flag the barbershop moves by hand.
type PaymentHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewPaymentHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *PaymentHandler {
	return &PaymentHandler{db: db, audit: dispatcher, now: time.Now}
}

type CreatePaymentRequest struct {
	Method string   `json:"method" binding:"required"`
	Amount *float64 `json:"amount"`
	Notes  string   `json:"notes"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManagePayment(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	apID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	if !appointment.PaymentMethod(req.Method).Valid() {
		httperr.BadRequest(c, "invalid_payment_method", "Unknown payment method.")
		return
	}

	var ap models.Appointment
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND barbershop_id = ?", apID, actor.BarbershopID).
		First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("appointment_not_found"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_get_appointment")
		return
	}
	if ap.Status == string(appointment.StatusCancelled) {
		httperr.Respond(c, httperr.ErrInvalidState("invalid_state"), "")
		return
	}

	amount := ap.FinalPrice
	if req.Amount != nil {
		if *req.Amount < 0 {
			httperr.BadRequest(c, "invalid_amount", "Amount must not be negative.")
			return
		}
		amount = *req.Amount
	}

	payment := models.Payment{
		AppointmentID: ap.ID,
		BarbershopID:  ap.BarbershopID,
		Amount:        amount,
		Method:        req.Method,
		Status:        string(appointment.PaymentPending),
		TransactionID: uuid.NewString(),
		Notes:         req.Notes,
	}

	if err := h.db.WithContext(c.Request.Context()).Omit(clause.Associations).Create(&payment).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Respond(c, httperr.ErrConflictCode("payment_exists"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_create_payment")
		return
	}

	writeAudit(h.audit, actor, ap.BarbershopID, "payment_created", "payment", &payment.ID,
		gin.H{"appointment_id": ap.ID, "amount": amount, "method": req.Method})

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetForAppointment(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManagePayment(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	apID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var payment models.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Where("appointment_id = ? AND barbershop_id = ?", apID, actor.BarbershopID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("payment_not_found"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_get_payment")
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) transition(
	c *gin.Context,
	event string,
	apply func(p *models.Payment, now time.Time) error,
) {

	actor := middleware.ActorFrom(c)
	if !policy.CanManagePayment(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var payment models.Payment
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND barbershop_id = ?", id, actor.BarbershopID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("payment_not_found")
			}
			return err
		}

		if err := apply(&payment, h.now()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&payment).Error
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_payment")
		return
	}

	metrics.IncAppointmentEvent(event)
	writeAudit(h.audit, actor, payment.BarbershopID, event, "payment", &payment.ID, nil)

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	h.transition(c, "payment_paid", appointment.MarkPaid)
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	h.transition(c, "payment_refunded", appointment.Refund)
}

package httperr

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HTTPError struct {
	Code     string         `json:"error_code"`
	Message  string         `json:"message"`
	Conflict *ConflictRange `json:"conflict,omitempty"`
}

type ConflictRange struct {
	BookingID uint      `json:"booking_id,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond maps a use-case error to a status code and message. Unknown
// errors are logged and reported as 500 with fallbackCode.
func Respond(c *gin.Context, err error, fallbackCode string) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		body := HTTPError{Code: CodeTimeConflict, Message: messageFor(CodeTimeConflict)}
		if ce.BookingID != 0 {
			body.Conflict = &ConflictRange{BookingID: ce.BookingID, Start: ce.Start, End: ce.End}
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	var be BusinessError
	if errors.As(err, &be) {
		Write(c, statusFor(be.Kind), be.Code, messageFor(be.Code))
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg(fallbackCode)
	Internal(c, fallbackCode, "Internal error.")
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

var messages = map[string]string{
	CodeTimeConflict:        "The requested time overlaps an existing booking.",
	"outside_working_hours": "The requested time is outside working hours.",
	"invalid_interval":      "Start must be before end.",
	"invalid_slot_duration": "Slot duration must be positive and within the allowed maximum.",
	"invalid_horizon":       "Search horizon is out of range.",
	"invalid_date":          "Invalid date.",
	"invalid_date_or_time":  "Invalid date or time.",
	"date_in_past":          "Date is in the past.",
	"too_soon":              "Booking is too close to the current time.",
	"barbershop_not_found":  "Barbershop not found.",
	"staff_not_found":       "Staff member not found.",
	"service_not_found":     "Service not found.",
	"appointment_not_found": "Appointment not found.",
	"payment_not_found":     "Payment not found.",
	"invalid_state":         "Operation not allowed in the current state.",
	"forbidden":             "Not allowed.",
}

func messageFor(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}

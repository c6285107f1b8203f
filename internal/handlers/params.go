package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// uintParam reads a positive numeric path parameter, writing a 400 when it
// is malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

// uintQuery reads an optional numeric query parameter; absent means 0.
func uintQuery(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return v, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.HTTPError{Code: "invalid_request", Message: err.Error()})
		return false
	}
	return true
}

func shopBySlug(db *gorm.DB, c *gin.Context) (*models.Barbershop, bool) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))

	var shop models.Barbershop
	if err := db.WithContext(c.Request.Context()).Where("slug = ?", slug).First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("barbershop_not_found"), "")
			return nil, false
		}
		httperr.Respond(c, err, "failed_to_get_barbershop")
		return nil, false
	}
	return &shop, true
}

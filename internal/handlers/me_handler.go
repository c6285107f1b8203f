package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "user_not_found", "User not found.")
			return
		}
		httperr.Respond(c, err, "failed_to_get_user")
		return
	}

	resp := gin.H{"user": userView(&user)}

	if id := user.ShopID(); id != 0 {
		var shop models.Barbershop
		if err := h.db.WithContext(c.Request.Context()).First(&shop, id).Error; err == nil {
			resp["barbershop"] = shopView(&shop)
		}
	}

	c.JSON(http.StatusOK, resp)
}

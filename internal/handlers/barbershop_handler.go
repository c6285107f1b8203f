package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/storage"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// LogoUploader stores a normalised logo and resolves its public URL.
type LogoUploader interface {
	Upload(ctx context.Context, barbershopID uint, r io.Reader) (string, error)
	URL(key string) string
}

type BarbershopHandler struct {
	db    *gorm.DB
	logos LogoUploader
	audit *audit.Dispatcher
}

// NewBarbershopHandler accepts a nil logos when object storage is not
// configured; uploads then answer 503.
func NewBarbershopHandler(db *gorm.DB, logos LogoUploader, dispatcher *audit.Dispatcher) *BarbershopHandler {
	return &BarbershopHandler{db: db, logos: logos, audit: dispatcher}
}

type UpdateBarbershopRequest struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	Address           *string `json:"address"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *BarbershopHandler) load(c *gin.Context, id uint) (*models.Barbershop, bool) {
	var shop models.Barbershop
	if err := h.db.WithContext(c.Request.Context()).First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("barbershop_not_found"), "")
			return nil, false
		}
		httperr.Respond(c, err, "failed_to_get_barbershop")
		return nil, false
	}
	return &shop, true
}

func (h *BarbershopHandler) view(shop *models.Barbershop) gin.H {
	v := shopView(shop)
	v["description"] = shop.Description
	v["email"] = shop.Email
	if shop.LogoKey != "" && h.logos != nil {
		v["logo_url"] = h.logos.URL(shop.LogoKey)
	}
	return v
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	shop, ok := h.load(c, actor.BarbershopID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.view(shop))
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManageBarbershop(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	shop, ok := h.load(c, actor.BarbershopID)
	if !ok {
		return
	}

	var req UpdateBarbershopRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Name is required.")
			return
		}
		shop.Name = name
	}
	if req.Description != nil {
		shop.Description = *req.Description
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Email != nil {
		shop.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown time zone.")
			return
		}
		shop.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must be zero or positive (minutes).")
			return
		}
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.WithContext(c.Request.Context()).Save(shop).Error; err != nil {
		httperr.Respond(c, err, "failed_to_update_barbershop")
		return
	}

	writeAudit(h.audit, actor, shop.ID, "barbershop_updated", "barbershop", &shop.ID, req)

	c.JSON(http.StatusOK, h.view(shop))
}

// UploadLogo expects a multipart "logo" file.
func (h *BarbershopHandler) UploadLogo(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManageBarbershop(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}
	if h.logos == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "storage_unavailable", "Logo storage is not configured.")
		return
	}

	shop, ok := h.load(c, actor.BarbershopID)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxLogoBytes+1<<20)
	fh, err := c.FormFile("logo")
	if err != nil {
		httperr.BadRequest(c, "missing_logo", "A logo file is required.")
		return
	}
	if fh.Size > storage.MaxLogoBytes {
		httperr.BadRequest(c, "logo_too_large", "Logo must be at most 5 MB.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "missing_logo", "A logo file is required.")
		return
	}
	defer f.Close()

	key, err := h.logos.Upload(c.Request.Context(), shop.ID, f)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			httperr.BadRequest(c, "invalid_image", "The file is not a supported image.")
			return
		}
		httperr.Respond(c, err, "failed_to_store_logo")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(shop).
		Update("logo_key", key).Error; err != nil {
		httperr.Respond(c, err, "failed_to_update_barbershop")
		return
	}

	writeAudit(h.audit, actor, shop.ID, "barbershop_logo_updated", "barbershop", &shop.ID, gin.H{"key": key})

	c.JSON(http.StatusOK, gin.H{"logo_key": key, "logo_url": h.logos.URL(key)})
}

// Public returns the profile shown on the booking page.
func (h *BarbershopHandler) Public(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}

	v := h.view(shop)
	delete(v, "min_advance_minutes")
	c.JSON(http.StatusOK, v)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  *audit.Dispatcher

	emailOK func(email string) bool
	now     func() time.Time
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, dispatcher *audit.Dispatcher) *AuthHandler {
	return &AuthHandler{
		db:      db,
		config:  cfg,
		audit:   dispatcher,
		emailOK: validators.IsEmailDomainValid,
		now:     time.Now,
	}
}

// --------- Requests ---------

type RegisterOwnerRequest struct {
	BarbershopName    string `json:"barbershop_name" binding:"required"`
	BarbershopSlug    string `json:"barbershop_slug" binding:"required"`
	BarbershopPhone   string `json:"barbershop_phone"`
	BarbershopAddress string `json:"barbershop_address"`
	Timezone          string `json:"timezone"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

// RegisterOwner creates a barbershop together with its OWNER account.
func (h *AuthHandler) RegisterOwner(c *gin.Context) {
	var req RegisterOwnerRequest
	if !bindJSON(c, &req) {
		return
	}

	email, ok := h.normalizeEmail(c, req.Email)
	if !ok {
		return
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = timezone.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown time zone.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Internal error.")
		return
	}

	shop := models.Barbershop{
		Name:              req.BarbershopName,
		Slug:              strings.ToLower(strings.TrimSpace(req.BarbershopSlug)),
		Phone:             req.BarbershopPhone,
		Address:           req.BarbershopAddress,
		Timezone:          tz,
		MinAdvanceMinutes: h.config.MinAdvanceMinutes,
	}
	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         string(policy.RoleOwner),
		Active:       true,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shop).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrConflictCode("slug_already_exists")
			}
			return err
		}

		user.BarbershopID = &shop.ID
		if err := tx.Omit("Barbershop").Create(&user).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrConflictCode("email_already_exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_register")
		return
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, &user, h.now())
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Internal error.")
		return
	}

	writeAudit(h.audit, policy.Actor{UserID: user.ID}, shop.ID, "barbershop_registered", "barbershop", &shop.ID, nil)

	c.JSON(http.StatusCreated, gin.H{
		"user":       userView(&user),
		"barbershop": shopView(&shop),
		"token":      token,
	})
}

func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req RegisterClientRequest
	if !bindJSON(c, &req) {
		return
	}

	email, ok := h.normalizeEmail(c, req.Email)
	if !ok {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Internal error.")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         string(policy.RoleClient),
		Active:       true,
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Barbershop").Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Respond(c, httperr.ErrConflictCode("email_already_exists"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_create_user")
		return
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, &user, h.now())
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Internal error.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  userView(&user),
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid e-mail or password.")
			return
		}
		httperr.Respond(c, err, "internal_error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid e-mail or password.")
		return
	}
	if !user.Active {
		httperr.Forbidden(c, "user_inactive", "Account disabled.")
		return
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, &user, h.now())
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Internal error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userView(&user),
		"token": token,
	})
}

func (h *AuthHandler) normalizeEmail(c *gin.Context, raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if h.emailOK != nil && !h.emailOK(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The e-mail domain does not accept mail.")
		return "", false
	}
	return email, true
}

// --------- Views ---------

func userView(u *models.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"phone":         u.Phone,
		"role":          u.Role,
		"barbershop_id": u.BarbershopID,
	}
}

func shopView(s *models.Barbershop) gin.H {
	return gin.H{
		"id":                  s.ID,
		"name":                s.Name,
		"slug":                s.Slug,
		"phone":               s.Phone,
		"address":             s.Address,
		"timezone":            s.Timezone,
		"min_advance_minutes": s.MinAdvanceMinutes,
	}
}

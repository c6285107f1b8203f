package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

var staffRoles = []string{string(policy.RoleBarber), string(policy.RoleOwner)}

type StaffHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewStaffHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *StaffHandler {
	return &StaffHandler{db: db, audit: dispatcher}
}

type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type staffView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

func (h *StaffHandler) list(c *gin.Context, barbershopID uint) ([]staffView, bool) {
	var users []models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("barbershop_id = ? AND role IN ? AND active = ?", barbershopID, staffRoles, true).
		Order("name ASC").
		Find(&users).Error; err != nil {
		httperr.Respond(c, err, "failed_to_list_staff")
		return nil, false
	}

	out := make([]staffView, 0, len(users))
	for _, u := range users {
		out = append(out, staffView{ID: u.ID, Name: u.Name, Phone: u.Phone, Role: u.Role})
	}
	return out, true
}

func (h *StaffHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	staff, ok := h.list(c, actor.BarbershopID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, staff)
}

// Create adds a BARBER account to the owner's barbershop.
func (h *StaffHandler) Create(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !policy.CanManageBarbershop(actor, actor.BarbershopID) {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"), "")
		return
	}

	var req CreateStaffRequest
	if !bindJSON(c, &req) {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Internal error.")
		return
	}

	shopID := actor.BarbershopID
	user := models.User{
		BarbershopID: &shopID,
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         string(policy.RoleBarber),
		Active:       true,
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Barbershop").Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Respond(c, httperr.ErrConflictCode("email_already_exists"), "")
			return
		}
		httperr.Respond(c, err, "failed_to_create_staff")
		return
	}

	writeAudit(h.audit, actor, shopID, "staff_created", "user", &user.ID, nil)

	c.JSON(http.StatusCreated, userView(&user))
}

func (h *StaffHandler) Public(c *gin.Context) {
	shop, ok := shopBySlug(h.db, c)
	if !ok {
		return
	}

	staff, ok := h.list(c, shop.ID)
	if !ok {
		return
	}
	for i := range staff {
		staff[i].Phone = ""
	}
	c.JSON(http.StatusOK, staff)
}

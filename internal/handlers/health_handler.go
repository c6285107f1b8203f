package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReadyCheck is a named dependency check run by /ready.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// DBCheck pings the database behind db.
func DBCheck(db *gorm.DB) ReadyCheck {
	return ReadyCheck{
		Name: "db",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

type HealthHandler struct {
	checks []ReadyCheck
}

func NewHealthHandler(checks ...ReadyCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready runs every check with a short timeout and reports the failing ones.
func (h *HealthHandler) Ready(c *gin.Context) {
	failures := gin.H{}

	for _, chk := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := chk.Check(ctx)
		cancel()
		if err != nil {
			failures[chk.Name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failures": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

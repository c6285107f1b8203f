package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/analytics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsHandler struct {
	svc *analytics.Service
}

func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	out, err := h.svc.Overview(c.Request.Context(), actor, actor.BarbershopID)
	if err != nil {
		httperr.Respond(c, err, "analytics_failed")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) StaffStats(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}

	out, err := h.svc.StaffStats(c.Request.Context(), actor, actor.BarbershopID, staffID, days)
	if err != nil {
		httperr.Respond(c, err, "analytics_failed")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	out, err := h.svc.Dashboard(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		httperr.Respond(c, err, "analytics_failed")
		return
	}
	c.JSON(http.StatusOK, out)
}

// Export streams ?from..?to (inclusive dates) as an xlsx attachment. The
// workbook is built in memory so errors still produce a JSON body.
func (h *AnalyticsHandler) Export(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var buf bytes.Buffer
	err := h.svc.ExportAppointments(c.Request.Context(), analytics.ExportInput{
		Actor:        actor,
		BarbershopID: actor.BarbershopID,
		From:         c.Query("from"),
		To:           c.Query("to"),
	}, &buf)
	if err != nil {
		httperr.Respond(c, err, "export_failed")
		return
	}

	filename := fmt.Sprintf("appointments_%s_%s.xlsx", c.Query("from"), c.Query("to"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

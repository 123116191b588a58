package handler

import (
	"net/http"
	"strconv"
	"time"

	"rewards/internal/config"
	"rewards/internal/middleware"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/reports と /admin/audit-logs
type AdminReportHandler struct {
	uc *usecase.AdminUsecase
}

func NewAdminReportHandler(uc *usecase.AdminUsecase) *AdminReportHandler {
	return &AdminReportHandler{uc: uc}
}

func (h *AdminReportHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin", append(authed(cfg, userRepo), middleware.AdminRoleGuard())...)

	admin.GET("/reports", h.reports)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminReportHandler) reports(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Reports(c.Request().Context(), actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminReportHandler) auditLogs(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	in := usecase.AuditLogListInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	}

	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actor_user_id")
		}
		in.ActorUserID = &id
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		in.ResourceID = &id
	}

	// from/to は RFC3339
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		in.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		in.To = &t
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}
	in.Limit, in.Offset = limit, offset

	logs, err := h.uc.AuditLogs(c.Request().Context(), actorID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

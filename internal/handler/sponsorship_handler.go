package handler

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/middleware"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 申請・承認・却下・削除
type SponsorshipHandler struct {
	uc *usecase.SponsorshipUsecase
}

func NewSponsorshipHandler(uc *usecase.SponsorshipUsecase) *SponsorshipHandler {
	return &SponsorshipHandler{uc: uc}
}

func (h *SponsorshipHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	mw := authed(cfg, userRepo)

	e.POST("/sponsors/:id/apply", h.apply, append(mw, middleware.RoleGuard(model.RoleDriver))...)
	e.GET("/sponsorships", h.listMine, mw...)
	e.DELETE("/sponsorships/:id", h.remove, mw...)

	m := e.Group("/manager", append(mw, middleware.RoleGuard(model.RoleStoreManager))...)
	m.GET("/applications", h.listApplications)
	m.GET("/drivers", h.listDrivers)
	m.POST("/applications/:driver_id/approve", h.approve)
	m.POST("/applications/:driver_id/reject", h.reject)
}

func (h *SponsorshipHandler) apply(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	out, err := h.uc.Apply(c.Request().Context(), actorID, sponsorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SponsorshipHandler) listMine(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListMine(c.Request().Context(), actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SponsorshipHandler) remove(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsorship_id")
	}

	if err := h.uc.Remove(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "sponsorship removed"})
}

func (h *SponsorshipHandler) listApplications(c echo.Context) error {
	return h.listByState(c, false)
}

func (h *SponsorshipHandler) listDrivers(c echo.Context) error {
	return h.listByState(c, true)
}

func (h *SponsorshipHandler) listByState(c echo.Context, active bool) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListDrivers(c.Request().Context(), actorID, active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SponsorshipHandler) approve(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	driverID, ok := pathID(c, "driver_id")
	if !ok {
		return badRequest(c, "invalid driver_id")
	}

	out, err := h.uc.Approve(c.Request().Context(), actorID, driverID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SponsorshipHandler) reject(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	driverID, ok := pathID(c, "driver_id")
	if !ok {
		return badRequest(c, "invalid driver_id")
	}

	if err := h.uc.Reject(c.Request().Context(), actorID, driverID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "application rejected"})
}

package handler

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /sponsorships/:id/points
type LedgerHandler struct {
	uc *usecase.LedgerUsecase
}

func NewLedgerHandler(uc *usecase.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// deltaは負数も可（0は不可）
type awardRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=255"`
}

func (h *LedgerHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/sponsorships/:id/points", authed(cfg, userRepo)...)
	g.GET("", h.history)
	g.POST("", h.award)
}

func (h *LedgerHandler) award(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsorship_id")
	}

	var req awardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Award(c.Request().Context(), actorID, usecase.AwardInput{
		SponsorshipID: id,
		Delta:         req.Delta,
		Reason:        req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) history(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsorship_id")
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}

	out, err := h.uc.History(c.Request().Context(), actorID, id, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

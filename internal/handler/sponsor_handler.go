package handler

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /sponsors（公開の申請・一覧と削除）
type SponsorHandler struct {
	uc      *usecase.SponsorUsecase
	adminUC *usecase.AdminUsecase
}

func NewSponsorHandler(uc *usecase.SponsorUsecase, adminUC *usecase.AdminUsecase) *SponsorHandler {
	return &SponsorHandler{uc: uc, adminUC: adminUC}
}

type createSponsorRequest struct {
	Name string `json:"name" validate:"required,max=40"`
}

func (h *SponsorHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/sponsors", h.list)
	e.POST("/sponsors", h.create)

	//管理者か、そのスポンサーのマネージャー
	e.PATCH("/sponsors/:id", h.rename, authed(cfg, userRepo)...)
	e.DELETE("/sponsors/:id", h.remove, authed(cfg, userRepo)...)
}

func (h *SponsorHandler) rename(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	var req createSponsorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Rename(c.Request().Context(), actorID, sponsorID, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SponsorHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SponsorHandler) create(c echo.Context) error {
	var req createSponsorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Create(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SponsorHandler) remove(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	if err := h.adminUC.RemoveSponsor(c.Request().Context(), actorID, sponsorID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "sponsor removed"})
}

package handler

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /users/:id（名前と通知設定）
type AccountHandler struct {
	uc *usecase.AccountUsecase
}

func NewAccountHandler(uc *usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

// 省略したキーは変更しない
type updateAccountRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1,max=20"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=20"`
	IssueAlert  *bool   `json:"issue_alert"`
	OrderAlert  *bool   `json:"order_alert"`
	PointsAlert *bool   `json:"points_alert"`
}

func (h *AccountHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/users", authed(cfg, userRepo)...)
	g.GET("/me", h.me)
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.update)
}

func (h *AccountHandler) me(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.uc.Get(c.Request().Context(), actorID, actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) get(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	u, err := h.uc.Get(c.Request().Context(), actorID, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) update(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.uc.Update(c.Request().Context(), actorID, userID, usecase.UpdateAccountInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IssueAlert:  req.IssueAlert,
		OrderAlert:  req.OrderAlert,
		PointsAlert: req.PointsAlert,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

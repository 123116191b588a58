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

// /sponsorships/:id/cart のHTTP（数量なし）
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ExternalID string `json:"external_id" validate:"required,max=64"`
}

// /sponsorships/:id/cart, /sponsorships/:id/cart/:external_id を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	mw := authed(cfg, userRepo)

	g := e.Group("/sponsorships/:id/cart", mw...)
	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("/:external_id", h.deleteItem)

	e.GET("/manager/carts", h.openCarts, append(mw, middleware.RoleGuard(model.RoleStoreManager))...)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorshipID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsorship_id")
	}

	out, err := h.uc.Get(c.Request().Context(), userID, sponsorshipID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 追加後のカートを返す
func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorshipID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsorship_id")
	}

	var req AddCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.uc.Add(ctx, userID, sponsorshipID, req.ExternalID); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Get(ctx, userID, sponsorshipID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorshipID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsorship_id")
	}

	ctx := c.Request().Context()
	if err := h.uc.Remove(ctx, userID, sponsorshipID, c.Param("external_id")); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Get(ctx, userID, sponsorshipID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) openCarts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListOpenCarts(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

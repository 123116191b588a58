package handler

import (
	"context"
	"net/http"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /sponsors/:id/catalog
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

type catalogSettingsRequest struct {
	CatalogType string `json:"catalog_type" validate:"required,catalog_type"`
	PointValue  int64  `json:"point_value" validate:"required,gt=0"`
}

type catalogItemRequest struct {
	ExternalID string `json:"external_id" validate:"required,max=64"`
}

type categoriesRequest struct {
	Categories []string `json:"categories" validate:"dive,category"`
}

type ruleRequest struct {
	Rule string `json:"rule" validate:"required,max=50"`
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/sponsors/:id", authed(cfg, userRepo)...)

	g.GET("/catalog/browse", h.browse)
	g.GET("/market", h.searchMarket)

	g.GET("/catalog", h.get)
	g.PUT("/catalog", h.updateSettings)
	g.POST("/catalog/items", h.addItem)
	g.DELETE("/catalog/items/:external_id", h.removeItem)
	g.PUT("/catalog/categories", h.setCategories)
	g.POST("/catalog/rules", h.addRule)
	g.DELETE("/catalog/rules/:rule_id", h.removeRule)
}

func (h *CatalogHandler) browse(c echo.Context) error {
	return h.search(c, h.uc.Browse)
}

func (h *CatalogHandler) searchMarket(c echo.Context) error {
	return h.search(c, h.uc.SearchMarket)
}

// Browse / SearchMarket
type searchFunc func(ctx context.Context, actorID int64, in usecase.BrowseInput) (usecase.BrowseOutput, error)

func (h *CatalogHandler) search(c echo.Context, fn searchFunc) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	page, ok := queryInt(c, "page", 1)
	if !ok || page < 1 {
		return badRequest(c, "invalid page")
	}

	out, err := fn(c.Request().Context(), actorID, usecase.BrowseInput{
		SponsorID: sponsorID,
		Keywords:  c.QueryParam("q"),
		Page:      page,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) get(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	out, err := h.uc.Get(c.Request().Context(), actorID, sponsorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) updateSettings(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	var req catalogSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.uc.UpdateSettings(c.Request().Context(), actorID, sponsorID, usecase.CatalogSettingsInput{
		CatalogType: model.CatalogType(req.CatalogType),
		PointValue:  req.PointValue,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) addItem(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	var req catalogItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.uc.AddItem(c.Request().Context(), actorID, sponsorID, req.ExternalID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) removeItem(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	if err := h.uc.RemoveItem(c.Request().Context(), actorID, sponsorID, c.Param("external_id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "item removed"})
}

func (h *CatalogHandler) setCategories(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	var req categoriesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cats := make([]model.Category, 0, len(req.Categories))
	for _, s := range req.Categories {
		cats = append(cats, model.Category(s))
	}

	out, err := h.uc.SetCategories(c.Request().Context(), actorID, sponsorID, cats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) addRule(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}

	var req ruleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rule, err := h.uc.AddRule(c.Request().Context(), actorID, sponsorID, req.Rule)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *CatalogHandler) removeRule(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	sponsorID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sponsor_id")
	}
	ruleID, ok := pathID(c, "rule_id")
	if !ok {
		return badRequest(c, "invalid rule_id")
	}

	if err := h.uc.RemoveRule(c.Request().Context(), actorID, sponsorID, ruleID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "rule removed"})
}

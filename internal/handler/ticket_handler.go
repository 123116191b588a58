package handler

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	uc *usecase.TicketUsecase
}

func NewTicketHandler(uc *usecase.TicketUsecase) *TicketHandler {
	return &TicketHandler{uc: uc}
}

type createTicketRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}

func (h *TicketHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/tickets", authed(cfg, userRepo)...)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
}

// 起票者本人か管理者
func (h *TicketHandler) get(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket_id")
	}

	t, err := h.uc.Get(c.Request().Context(), actorID, ticketID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) create(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req createTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	t, err := h.uc.Create(c.Request().Context(), actorID, req.Title, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// 管理者は全件
func (h *TicketHandler) list(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}

	out, err := h.uc.List(c.Request().Context(), actorID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

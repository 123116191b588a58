package server

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/handler"
	"rewards/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTが要るルートを持つhandler
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository)
}

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	userRepo repository.UserRepository,
	authH *handler.AuthHandler,
	routes []RouteRegistrar,
) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})

	authH.RegisterRoutes(e)
	for _, r := range routes {
		r.RegisterRoutes(e, cfg, userRepo)
	}
}

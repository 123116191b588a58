package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"rewards/internal/config"
	"rewards/internal/handler"
	"rewards/internal/repository"
	"rewards/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const shutdownTimeout = 10 * time.Second

type Params struct {
	fx.In
	fx.Lifecycle

	Config   config.Config
	Logger   *slog.Logger
	UserRepo repository.UserRepository
	Auth     *handler.AuthHandler
	Routes   []RouteRegistrar `group:"routes"`
}

// ミドルウェアとValidatorを設定したecho
func NewEcho(cfg config.Config, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Env.Debug
	e.Validator = validator.New()

	e.Use(middleware.Recover())
	//X-Request-IDが無ければ採番
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRequestID: true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
				logger.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
				return nil
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))

	return e
}

// ルートを登録し、fxのライフサイクルで起動・停止する
func New(p Params) *echo.Echo {
	e := NewEcho(p.Config, p.Logger)
	RegisterRoutes(e, p.Config, p.UserRepo, p.Auth, p.Routes)

	srv := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(p.Config.HTTP.Port)),
		Handler:      e,
		ReadTimeout:  p.Config.HTTP.ReadTimeout,
		WriteTimeout: p.Config.HTTP.WriteTimeout,
	}

	p.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrap(err, "listen")
			}
			p.Logger.Info("starting HTTP server", slog.String("addr", srv.Addr))

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("HTTP server stopped", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			p.Logger.Info("shutting down HTTP server")
			return errors.WithStack(srv.Shutdown(ctx))
		},
	})

	return e
}

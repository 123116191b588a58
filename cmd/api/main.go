package main

import (
	"context"
	"log/slog"

	"rewards/internal/config"
	"rewards/internal/handler"
	"rewards/internal/infra/db"
	logs "rewards/internal/infra/log"
	"rewards/internal/infra/notify"
	"rewards/internal/infra/oracle"
	infraRepo "rewards/internal/infra/repository"
	"rewards/internal/pricing"
	"rewards/internal/repository"
	"rewards/internal/server"
	"rewards/internal/usecase"
	auth "rewards/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectAuth(),
		injectUsecase(),
		injectHandler(),
		fx.Provide(server.New),
		fx.Invoke(func(*echo.Echo) {}),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Load,
			logs.New,
			newDB,
			newNotifier,
			fx.Annotate(oracle.New, fx.As(new(pricing.Oracle))),
			pricing.NewAdapter,
		),
	)
}

// DB接続 + マイグレーション。停止時に閉じる
func newDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	gormDB, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return gormDB, nil
}

// 送信中のメールを待ってから終了
func newNotifier(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) notify.Notifier {
	n := notify.New(cfg, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			n.Close()
			return nil
		},
	})
	return n
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			infraRepo.NewRepos,
			fx.Annotate(infraRepo.NewTxManagerGorm, fx.As(new(repository.TransactionManager))),
			func(r repository.TxRepos) repository.UserRepository { return r.Users() },
			func(r repository.TxRepos) repository.SponsorRepository { return r.Sponsors() },
		),
	)
}

func injectAuth() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg config.Config) *auth.Bcrypt { return auth.NewBcrypt(cfg.Auth.BcryptCost) },
				fx.As(new(auth.PasswordHasher)),
				fx.As(new(auth.PasswordVerifier)),
			),
			fx.Annotate(auth.NewJWTIssuer, fx.As(new(auth.AccessTokenIssuer))),
			func() auth.Clock { return auth.SystemClock{} },
			auth.NewRegisterUserUsecase,
			auth.NewLoginUsecase,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			usecase.NewNotifications,
			usecase.NewSponsorUsecase,
			usecase.NewSponsorshipUsecase,
			usecase.NewLedgerUsecase,
			usecase.NewCatalogUsecase,
			usecase.NewCartUsecase,
			usecase.NewOrderUsecase,
			usecase.NewAdminUsecase,
			usecase.NewAccountUsecase,
			usecase.NewTicketUsecase,
		),
	)
}

// JWTが要るhandlerは"routes"グループにまとめる
func asRoutes(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(server.RouteRegistrar)),
		fx.ResultTags(`group:"routes"`),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			asRoutes(handler.NewSponsorHandler),
			asRoutes(handler.NewSponsorshipHandler),
			asRoutes(handler.NewLedgerHandler),
			asRoutes(handler.NewCatalogHandler),
			asRoutes(handler.NewCartHandler),
			asRoutes(handler.NewOrderHandler),
			asRoutes(handler.NewAccountHandler),
			asRoutes(handler.NewTicketHandler),
			asRoutes(handler.NewAdminUserHandler),
			asRoutes(handler.NewAdminReportHandler),
		),
	)
}

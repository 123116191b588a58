package db

import (
	"fmt"
	"log/slog"

	"rewards/internal/config"
	"rewards/internal/domain/model"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormSlogLogger(logger, cfg.Env.Debug),
		//一意制約違反をgorm.ErrDuplicatedKeyにする
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return db, nil
}

func dialectorFor(c config.Database) (gorm.Dialector, error) {
	switch c.Driver {
	case "sqlite":
		return sqlite.Open(c.DSN), nil
	case "postgres", "":
		// DSN があれば最優先で使う
		if c.DSN != "" {
			return postgres.Open(c.DSN), nil
		}
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
		)
		return postgres.Open(dsn), nil
	}
	return nil, errors.Errorf("unknown database driver: %s", c.Driver)
}

// テーブル作成
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Sponsor{},
		&model.User{},
		&model.Sponsorship{},
		&model.Catalog{},
		&model.Rule{},
		&model.Item{},
		&model.CatalogCategory{},
		&model.CatalogItem{},
		&model.CatalogRule{},
		&model.CartItem{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.PointLedgerEntry{},
		&model.AuditLog{},
		&model.SupportTicket{},
	)
	return errors.Wrap(err, "auto migrate")
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"rewards/internal/domain/model"
	"rewards/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// テストごとにインメモリDB
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedSponsorship(t *testing.T, gdb *gorm.DB, userID, sponsorID int64, active bool, points int64) model.Sponsorship {
	t.Helper()
	s := model.Sponsorship{UserID: userID, SponsorID: sponsorID, Active: active, Points: points}
	require.NoError(t, NewSponsorshipGormRepository(gdb).Create(context.Background(), &s))
	return s
}

package repository

import (
	"context"

	"rewards/internal/domain/model"
)

// ポイント履歴（追記のみ）
type PointLedgerRepository interface {
	Append(ctx context.Context, entry *model.PointLedgerEntry) error
	ListBySponsorshipID(ctx context.Context, sponsorshipID int64, limit, offset int) ([]model.PointLedgerEntry, error)
	DeleteBySponsorshipID(ctx context.Context, sponsorshipID int64) error
}

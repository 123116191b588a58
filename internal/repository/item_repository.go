package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type ItemRepository interface {
	//外部IDで取得、無ければ作る
	GetOrCreate(ctx context.Context, externalID string) (model.Item, error)
	FindByExternalID(ctx context.Context, externalID string) (model.Item, error)
	//カタログ・カート・注文のどこからも参照されていなければ削除
	DeleteIfOrphaned(ctx context.Context, itemID int64) (bool, error)
}

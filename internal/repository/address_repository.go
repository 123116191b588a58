package repository

import (
	"context"

	"rewards/internal/domain/model"
)

// 配送先はチェックアウトごとに1件作り、注文が参照する
// ユーザーの最後の住所はUser.AddressIDで指す
type AddressRepository interface {
	Create(ctx context.Context, a *model.Address) error
	FindByID(ctx context.Context, addressID int64) (*model.Address, error)
	//ユーザー削除時（注文も先に消える）
	DeleteByUserID(ctx context.Context, userID int64) error
	//ids のうち注文にもUser.AddressIDにも使われていないものを消す
	DeleteOrphaned(ctx context.Context, ids []int64) error
}

package repository

import "gorm.io/gorm"

// 履歴系の一覧（監査ログ・ポイント履歴・問い合わせ）
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// limitが範囲外ならdefaultListLimit
func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset = max(offset, 0)
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("id desc")
}

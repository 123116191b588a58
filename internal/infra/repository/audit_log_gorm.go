package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

// 監査ログは追記のみ（ユーザー・スポンサー削除後も残す）
type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

// 期間はfrom <= created_at < to
func auditFilter(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		cond := map[string]any{}
		if f.ActorUserID != nil {
			cond["actor_user_id"] = *f.ActorUserID
		}
		if f.Action != nil {
			cond["action"] = *f.Action
		}
		if f.ResourceType != nil {
			cond["resource_type"] = *f.ResourceType
		}
		if f.ResourceID != nil {
			cond["resource_id"] = *f.ResourceID
		}
		if len(cond) > 0 {
			q = q.Where(cond)
		}
		if f.From != nil {
			q = q.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("created_at < ?", *f.To)
		}
		return q
	}
}

func (r *AuditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(auditFilter(filter), newestFirst, paginate(filter.Limit, filter.Offset)).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

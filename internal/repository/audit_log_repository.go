package repository

import (
	"context"
	"time"

	"rewards/internal/domain/model"
)

// nilの条件は絞り込まない
// 期間はFrom <= created_at < To
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// 追記と検索だけ（更新・削除はしない）
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	//新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}

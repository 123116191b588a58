package usecase

import (
	"context"
	"encoding/json"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/datatypes"
)

func writeAudit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, rt model.AuditResourceType, id int64, before, after any) error {
	b, err := snapshot(before)
	if err != nil {
		return err
	}
	a, err := snapshot(after)
	if err != nil {
		return err
	}
	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		Before:       b,
		After:        a,
	})
}

// nilはNULLで保存
func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

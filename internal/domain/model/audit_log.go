package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionApproveSponsorship AuditAction = "APPROVE_SPONSORSHIP"
	AuditActionRejectSponsorship  AuditAction = "REJECT_SPONSORSHIP"
	AuditActionRemoveSponsorship  AuditAction = "REMOVE_SPONSORSHIP"
	AuditActionAwardPoints        AuditAction = "AWARD_POINTS"
	AuditActionUpdateOrderStatus  AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateCatalog      AuditAction = "UPDATE_CATALOG"
	AuditActionRemoveUser         AuditAction = "REMOVE_USER"
	AuditActionRemoveSponsor      AuditAction = "REMOVE_SPONSOR"
)

type AuditResourceType string

const (
	AuditResourceSponsorship AuditResourceType = "sponsorship"
	AuditResourceOrder       AuditResourceType = "order"
	AuditResourceCatalog     AuditResourceType = "catalog"
	AuditResourceUser        AuditResourceType = "user"
	AuditResourceSponsor     AuditResourceType = "sponsor"
)

// 管理者・マネージャー操作の記録
// Before/Afterは対象のスナップショット（無ければnull）
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index:idx_audit_resource" json:"resource_id"`
	Before       datatypes.JSON    `json:"before"`
	After        datatypes.JSON    `json:"after"`
	CreatedAt    time.Time         `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

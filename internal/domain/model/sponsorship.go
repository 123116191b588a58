package model

import "time"

type SponsorshipState string

const (
	SponsorshipStateNone    SponsorshipState = "NONE"
	SponsorshipStateApplied SponsorshipState = "APPLIED"
	SponsorshipStateActive  SponsorshipState = "ACTIVE"
)

// ドライバーとスポンサーの関係（ポイント残高を持つ）
// (user_id, sponsor_id) ごとに1行
type Sponsorship struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_sponsorship_pair" json:"user_id"`
	SponsorID int64     `gorm:"not null;uniqueIndex:idx_sponsorship_pair;index" json:"sponsor_id"`
	Points    int64     `gorm:"not null;default:0" json:"points"`
	Active    bool      `gorm:"not null;default:false;index" json:"active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (s Sponsorship) State() SponsorshipState {
	if s.ID == 0 {
		return SponsorshipStateNone
	}
	if s.Active {
		return SponsorshipStateActive
	}
	return SponsorshipStateApplied
}

package model

import "time"

type Role string

const (
	RoleDriver       Role = "DRIVER"
	RoleStoreManager Role = "STORE_MANAGER"
	RoleAdmin        Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDriver, RoleStoreManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Role         Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	FirstName    string `gorm:"type:varchar(20);not null" json:"first_name"`
	LastName     string `gorm:"type:varchar(20);not null" json:"last_name"`
	Email        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	//店舗マネージャーの所属スポンサー（最大1つ）
	EmployerID *int64 `gorm:"index" json:"employer_id,omitempty"`

	//最後に使った配送先（チェックアウト時のプリフィル用）
	AddressID *int64 `json:"address_id,omitempty"`

	//通知設定
	IssueAlert  bool `gorm:"not null;default:true" json:"issue_alert"`
	OrderAlert  bool `gorm:"not null;default:true" json:"order_alert"`
	PointsAlert bool `gorm:"not null;default:true" json:"points_alert"`

	TokenVersion int       `gorm:"not null;default:0" json:"token_version"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// マネージャーが指定スポンサーの所属か
func (u User) WorksFor(sponsorID int64) bool {
	return u.Role == RoleStoreManager && u.EmployerID != nil && *u.EmployerID == sponsorID
}

package point

import (
	"time"

	"gorm.io/datatypes"
)

// Account is the per-user point summary. Balance equals TotalEarned minus
// TotalSpent and never goes negative.
type Account struct {
	UserID      string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	Balance     int64     `gorm:"column:balance" json:"balance"`
	TotalEarned int64     `gorm:"column:total_earned" json:"total_earned"`
	TotalSpent  int64     `gorm:"column:total_spent" json:"total_spent"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// History is an append-only snapshot of the account taken immediately after
// each mutation, one row per mutating operation.
type History struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;index:idx_point_history_user,priority:1" json:"user_id"`
	Balance     int64          `gorm:"column:balance" json:"balance"`
	TotalEarned int64          `gorm:"column:total_earned" json:"total_earned"`
	TotalSpent  int64          `gorm:"column:total_spent" json:"total_spent"`
	Reason      datatypes.JSON `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime;index:idx_point_history_user,priority:2" json:"created_at"`
}

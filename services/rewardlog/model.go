package rewardlog

import (
	"time"

	"gorm.io/datatypes"
)

// RewardLog is one immutable audit row per claim attempt, successful or not.
type RewardLog struct {
	ID        string         `gorm:"column:id;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;index:idx_reward_log_user" json:"user_id"`
	Success   bool           `gorm:"column:success" json:"success"`
	Message   string         `gorm:"column:message" json:"message"`
	Data      datatypes.JSON `gorm:"column:data" json:"data,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

package userdata

import (
	"time"

	"gorm.io/datatypes"
)

// UserDataSet holds the metric key/value snapshot used to evaluate event
// conditions for one user. It simulates the external metric collector this
// engine would query in production.
type UserDataSet struct {
	UserID    string            `gorm:"column:user_id;primaryKey" json:"user_id"`
	Data      datatypes.JSONMap `gorm:"column:data" json:"data"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

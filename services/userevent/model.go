package userevent

import "time"

type Status string

const (
	StatusAccepted  Status = "ACCEPTED"
	StatusCompleted Status = "COMPLETED"
)

// UserEvent tracks one user's participation in one event. The (user, event)
// pair is unique; acceptance is exactly-once and status only moves forward.
type UserEvent struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;uniqueIndex:idx_user_event,priority:1" json:"user_id"`
	EventID   string    `gorm:"column:event_id;uniqueIndex:idx_user_event,priority:2" json:"event_id"`
	Status    Status    `gorm:"column:status" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Rewards []UserEventReward `gorm:"-" json:"rewards,omitempty"`
}

// UserEventReward is the per-user claim budget for one reward of one event,
// snapshotted from the event definition at acceptance. Remaining is only ever
// decremented through a conditional update that refuses to go negative.
type UserEventReward struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;uniqueIndex:idx_user_event_reward,priority:1" json:"user_id"`
	EventID   string    `gorm:"column:event_id;uniqueIndex:idx_user_event_reward,priority:2" json:"event_id"`
	RewardKey string    `gorm:"column:reward_key;uniqueIndex:idx_user_event_reward,priority:3" json:"reward_key"`
	Remaining int64     `gorm:"column:remaining" json:"remaining"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

package event

import (
	"time"

	"gorm.io/datatypes"
)

// RewardKind discriminates the reward variants. The dispatcher switches
// exhaustively over this tag; adding a kind requires touching that switch.
type RewardKind string

const (
	RewardPoint RewardKind = "POINT"
	RewardItem  RewardKind = "ITEM"
)

// Reward is one claimable entry in an event's reward catalogue.
// Point carries the grant amount for POINT rewards; ItemCode identifies the
// catalog item for ITEM rewards. Quantity is the claimable pool size.
type Reward struct {
	Key      string     `json:"key"`
	Kind     RewardKind `json:"kind"`
	Point    int64      `json:"point,omitempty"`
	ItemCode int64      `json:"item_code,omitempty"`
	Quantity int64      `json:"quantity"`
}

// Event is a time-bounded reward opportunity.
type Event struct {
	EventID     string                        `gorm:"column:event_id;primaryKey" json:"event_id"`
	Title       string                        `gorm:"column:title" json:"title"`
	Description string                        `gorm:"column:description" json:"description"`
	Condition   datatypes.JSONType[Condition] `gorm:"column:condition" json:"condition"`
	Rewards     datatypes.JSONSlice[Reward]   `gorm:"column:rewards" json:"rewards"`
	Enabled     bool                          `gorm:"column:enabled" json:"enabled"`
	StartAt     time.Time                     `gorm:"column:start_at" json:"start_at"`
	EndAt       time.Time                     `gorm:"column:end_at" json:"end_at"`
	Issuer      string                        `gorm:"column:issuer" json:"issuer"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Available reports whether the event can be progressed at now. Recomputed
// on every access, never cached.
func (e *Event) Available(now time.Time) bool {
	return e.Enabled && !now.Before(e.StartAt) && !now.After(e.EndAt)
}

// FindReward returns the reward entry with the given key.
func (e *Event) FindReward(key string) (Reward, bool) {
	for _, rw := range e.Rewards {
		if rw.Key == key {
			return rw, true
		}
	}
	return Reward{}, false
}

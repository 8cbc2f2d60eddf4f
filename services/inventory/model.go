package inventory

import "time"

// InventoryItem is one user's holding of one catalog item. A (user, item)
// pair has at most one row; grants increment Quantity in place.
type InventoryItem struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;uniqueIndex:idx_inventory_user_item,priority:1" json:"user_id"`
	ItemCode  int64     `gorm:"column:item_code;uniqueIndex:idx_inventory_user_item,priority:2" json:"item_code"`
	Quantity  int64     `gorm:"column:quantity" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

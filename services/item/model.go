package item

// Item is a rewardable item known to the catalog.
type Item struct {
	Code        int64  `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

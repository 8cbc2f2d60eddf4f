package item

import (
	"promo-eventserver/pkg/errutil"

	"go.uber.org/fx"
)

const ReasonItemNotFound = "ITEM_NOT_FOUND"

// Service is a static item catalog. It stands in for the external catalog
// service that owns item definitions; the engine only ever needs lookup and
// existence checks.
type Service struct {
	items []Item
}

var Module = fx.Module("item.service", fx.Provide(NewService))

func NewService() *Service {
	return &Service{
		items: []Item{
			{Code: 10100, Name: "Power Elixir", Description: "Restores HP and MP to full."},
			{Code: 15100, Name: "Symbol Selector Coupon", Description: "Exchange for a symbol bundle of your choice."},
			{Code: 15200, Name: "Burning Gear Box", Description: "Grants a challenger equipment set for your class."},
			{Code: 50200, Name: "Black Cube", Description: "Rerolls the potential of an equipment item."},
			{Code: 50400, Name: "White Additional Cube", Description: "Rerolls the additional potential of an equipment item."},
		},
	}
}

// Get returns the catalog entry for code.
func (s *Service) Get(code int64) (*Item, error) {
	for i := range s.items {
		if s.items[i].Code == code {
			return &s.items[i], nil
		}
	}
	return nil, errutil.NotFound(ReasonItemNotFound, "item not found")
}

// Exists reports whether code is a known rewardable item.
func (s *Service) Exists(code int64) bool {
	_, err := s.Get(code)
	return err == nil
}

// List returns the full catalog.
func (s *Service) List() []Item {
	return s.items
}

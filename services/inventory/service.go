package inventory

import (
	"context"
	"errors"

	"promo-eventserver/pkg/db/option"
	"promo-eventserver/pkg/errutil"
	"promo-eventserver/pkg/repository"
	"promo-eventserver/services/item"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const ReasonInventoryQuantityInvalid = "INVENTORY_QUANTITY_INVALID"

// Service is the per-user item ledger.
type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	item  *item.Service
	items repository.Repository[InventoryItem]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
	Item *item.Service
}

var Module = fx.Module("inventory.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		item:  p.Item,
		items: repository.ProvideStore[InventoryItem](p.DB),
	}
}

// WithTrx rebinds the ledger to an open transaction.
func (s *Service) WithTrx(tx *gorm.DB) *Service {
	if tx == nil {
		return s
	}
	return &Service{
		db:    tx,
		node:  s.node,
		item:  s.item,
		items: s.items.WithTrx(tx),
	}
}

// AddItem grants quantity units of a catalog item to the user, incrementing
// the existing line or creating it. The item code must exist in the catalog.
func (s *Service) AddItem(ctx context.Context, userID string, itemCode, quantity int64) (*InventoryItem, error) {
	if quantity <= 0 {
		return nil, errutil.ValidationFailed(ReasonInventoryQuantityInvalid, "grant quantity must be positive")
	}
	if _, err := s.item.Get(itemCode); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		items := s.items.WithTrx(tx)

		affected, err := items.Update(ctx, &InventoryItem{UserID: userID, ItemCode: itemCode}, map[string]any{
			"quantity": gorm.Expr("quantity + ?", quantity),
		})
		if err != nil {
			return err
		}
		if affected > 0 {
			return nil
		}

		err = items.Create(ctx, &InventoryItem{
			ID:       s.node.Generate().String(),
			UserID:   userID,
			ItemCode: itemCode,
			Quantity: quantity,
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			_, err = items.Update(ctx, &InventoryItem{UserID: userID, ItemCode: itemCode}, map[string]any{
				"quantity": gorm.Expr("quantity + ?", quantity),
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.items.FindOne(ctx, &InventoryItem{UserID: userID, ItemCode: itemCode})
}

// Get returns every inventory line the user holds.
func (s *Service) Get(ctx context.Context, userID string) ([]*InventoryItem, error) {
	return s.items.Find(ctx, &InventoryItem{UserID: userID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "item_code",
		OrderBy: "asc",
		Allow:   map[string]bool{"item_code": true},
	}))
}

package reward

import (
	"context"

	"promo-eventserver/pkg/errutil"
	"promo-eventserver/services/event"
	"promo-eventserver/services/inventory"
	"promo-eventserver/services/point"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

const ReasonRewardTypeUnsupported = "REWARD_TYPE_UNSUPPORTED"

// Service dispatches a reward definition to the ledger that fulfills it.
// It owns no storage; every write lands in the point or inventory ledger.
type Service struct {
	point     *point.Service
	inventory *inventory.Service
}

type ServiceParams struct {
	fx.In
	Point     *point.Service
	Inventory *inventory.Service
}

var Module = fx.Module("reward.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		point:     p.Point,
		inventory: p.Inventory,
	}
}

// WithTrx rebinds both ledgers to an open transaction so a dispatch joins
// the caller's atomic scope.
func (s *Service) WithTrx(tx *gorm.DB) *Service {
	if tx == nil {
		return s
	}
	return &Service{
		point:     s.point.WithTrx(tx),
		inventory: s.inventory.WithTrx(tx),
	}
}

// Provide fulfills one reward for the user. A POINT reward credits the
// defined point value once per claim regardless of quantity; an ITEM reward
// grants quantity units of the item.
func (s *Service) Provide(ctx context.Context, userID string, rw event.Reward, quantity int64) error {
	switch rw.Kind {
	case event.RewardPoint:
		_, err := s.point.Accumulate(ctx, userID, rw.Point, map[string]any{
			"source":     "reward",
			"reward_key": rw.Key,
		})
		return err
	case event.RewardItem:
		_, err := s.inventory.AddItem(ctx, userID, rw.ItemCode, quantity)
		return err
	default:
		return errutil.Internal(ReasonRewardTypeUnsupported, "unsupported reward kind: "+string(rw.Kind))
	}
}

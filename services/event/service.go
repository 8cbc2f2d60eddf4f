package event

import (
	"context"
	"time"

	"promo-eventserver/pkg/db/option"
	"promo-eventserver/pkg/errutil"
	"promo-eventserver/pkg/repository"
	"promo-eventserver/services/item"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReasonEventNotFound     = "EVENT_NOT_FOUND"
	ReasonEventUnavailable  = "EVENT_UNAVAILABLE"
	ReasonRewardItemUnknown = "REWARD_ITEM_UNKNOWN"
)

// Service owns event definitions. Other services read events through it and
// never mutate them.
type Service struct {
	node   *snowflake.Node
	item   *item.Service
	events repository.Repository[Event]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
	Item *item.Service
}

var Module = fx.Module("event.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		node:   p.Node,
		item:   p.Item,
		events: repository.ProvideStore[Event](p.DB),
	}
}

type CreateParams struct {
	Title       string
	Description string
	Condition   Condition
	Rewards     []Reward
	StartAt     time.Time
	EndAt       time.Time
	Issuer      string
}

// Create validates and persists a new event definition. Every ITEM reward
// must reference an item known to the catalog, and reward keys must be
// unique within the event.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Event, error) {
	if p.Title == "" {
		return nil, errutil.ValidationFailed("EVENT_TITLE_REQUIRED", "title is required")
	}
	if p.EndAt.Before(p.StartAt) {
		return nil, errutil.ValidationFailed("EVENT_WINDOW_INVALID", "end date precedes start date")
	}
	if err := p.Condition.Validate(); err != nil {
		return nil, err
	}

	rewards := make([]Reward, 0, len(p.Rewards))
	keys := make(map[string]bool, len(p.Rewards))
	for _, rw := range p.Rewards {
		if rw.Key == "" {
			rw.Key = s.node.Generate().String()
		}
		if keys[rw.Key] {
			return nil, errutil.ValidationFailed("EVENT_REWARD_KEY_DUPLICATED", "reward key duplicated: "+rw.Key)
		}
		keys[rw.Key] = true

		if rw.Quantity <= 0 {
			return nil, errutil.ValidationFailed("EVENT_REWARD_QUANTITY_INVALID", "reward quantity must be positive")
		}

		switch rw.Kind {
		case RewardPoint:
			if rw.Point <= 0 {
				return nil, errutil.ValidationFailed("EVENT_REWARD_POINT_INVALID", "point value must be positive")
			}
		case RewardItem:
			if !s.item.Exists(rw.ItemCode) {
				return nil, errutil.PreconditionFailed(ReasonRewardItemUnknown, "reward item not found in the catalog")
			}
		default:
			return nil, errutil.ValidationFailed("EVENT_REWARD_KIND_INVALID", "unsupported reward kind: "+string(rw.Kind))
		}

		rewards = append(rewards, rw)
	}

	ev := &Event{
		EventID:     s.node.Generate().String(),
		Title:       p.Title,
		Description: p.Description,
		Condition:   datatypes.NewJSONType(p.Condition),
		Rewards:     datatypes.NewJSONSlice(rewards),
		Enabled:     true,
		StartAt:     p.StartAt,
		EndAt:       p.EndAt,
		Issuer:      p.Issuer,
	}

	if err := s.events.Create(ctx, ev); err != nil {
		zap.L().Error("failed to create event", zap.Error(err))
		return nil, err
	}

	return ev, nil
}

// Get returns the event with the given identifier.
func (s *Service) Get(ctx context.Context, eventID string) (*Event, error) {
	ev, err := s.events.FindOne(ctx, &Event{EventID: eventID})
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, errutil.NotFound(ReasonEventNotFound, "event not found")
	}
	return ev, nil
}

// List returns all event definitions, newest first.
func (s *Service) List(ctx context.Context) ([]*Event, error) {
	return s.events.Find(ctx, &Event{}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

// SetEnabled toggles the availability flag.
func (s *Service) SetEnabled(ctx context.Context, eventID string, enabled bool) (*Event, error) {
	affected, err := s.events.Update(ctx, &Event{EventID: eventID}, map[string]any{"enabled": enabled})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errutil.NotFound(ReasonEventNotFound, "event not found")
	}
	return s.Get(ctx, eventID)
}

package userevent

import (
	"context"
	"errors"
	"time"

	"promo-eventserver/pkg/db/option"
	"promo-eventserver/pkg/errutil"
	"promo-eventserver/pkg/repository"
	"promo-eventserver/services/event"
	"promo-eventserver/services/reward"
	"promo-eventserver/services/rewardlog"
	"promo-eventserver/services/userdata"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ReasonAlreadyAccepted          = "USER_EVENT_ALREADY_ACCEPTED"
	ReasonNotFound                 = "USER_EVENT_NOT_FOUND"
	ReasonNotCompleted             = "USER_EVENT_NOT_COMPLETED"
	ReasonPreconditionNotCompleted = "USER_EVENT_PRECONDITION_NOT_COMPLETED"
	ReasonRewardNotFound           = "USER_EVENT_REWARD_NOT_FOUND"
	ReasonRewardNotEnough          = "USER_EVENT_REWARD_NOT_ENOUGH"
	ReasonClaimQuantityInvalid     = "USER_EVENT_CLAIM_QUANTITY_INVALID"
)

// Service is the participation state machine. It coordinates the event
// registry, the metric source, the reward dispatcher and the audit log;
// every multi-row mutation runs in one database transaction.
type Service struct {
	db          *gorm.DB
	node        *snowflake.Node
	event       *event.Service
	userdata    *userdata.Service
	reward      *reward.Service
	rewardlog   *rewardlog.Service
	userEvents  repository.Repository[UserEvent]
	userRewards repository.Repository[UserEventReward]
}

type ServiceParams struct {
	fx.In
	DB        *gorm.DB
	Node      *snowflake.Node
	Event     *event.Service
	UserData  *userdata.Service
	Reward    *reward.Service
	RewardLog *rewardlog.Service
}

var Module = fx.Module("userevent.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		db:          p.DB,
		node:        p.Node,
		event:       p.Event,
		userdata:    p.UserData,
		reward:      p.Reward,
		rewardlog:   p.RewardLog,
		userEvents:  repository.ProvideStore[UserEvent](p.DB),
		userRewards: repository.ProvideStore[UserEventReward](p.DB),
	}
}

// Accept registers the user for an event exactly once. The event must be
// available and, when the event names a prerequisite, the user must have
// completed it. Acceptance snapshots the event's reward quantities into
// per-user claim budgets.
func (s *Service) Accept(ctx context.Context, userID, eventID string) (*UserEvent, error) {
	ev, err := s.event.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.Available(time.Now()) {
		return nil, errutil.PreconditionFailed(event.ReasonEventUnavailable, "event is not available")
	}

	ue := &UserEvent{
		ID:      s.node.Generate().String(),
		UserID:  userID,
		EventID: eventID,
		Status:  StatusAccepted,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		userEvents := s.userEvents.WithTrx(tx)

		existing, err := userEvents.FindOne(ctx, &UserEvent{UserID: userID, EventID: eventID})
		if err != nil {
			return err
		}
		if existing != nil {
			return errutil.Conflict(ReasonAlreadyAccepted, "event already accepted")
		}

		if prev := ev.Condition.Data().Prev; prev != "" {
			prevUE, err := userEvents.FindOne(ctx, &UserEvent{UserID: userID, EventID: prev})
			if err != nil {
				return err
			}
			if prevUE == nil || prevUE.Status != StatusCompleted {
				return errutil.PreconditionFailed(ReasonPreconditionNotCompleted, "prerequisite event not completed")
			}
		}

		if err := userEvents.Create(ctx, ue); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errutil.Conflict(ReasonAlreadyAccepted, "event already accepted")
			}
			return err
		}

		budgets := make([]*UserEventReward, 0, len(ev.Rewards))
		for _, rw := range ev.Rewards {
			budgets = append(budgets, &UserEventReward{
				ID:        s.node.Generate().String(),
				UserID:    userID,
				EventID:   eventID,
				RewardKey: rw.Key,
				Remaining: rw.Quantity,
			})
		}
		return s.userRewards.WithTrx(tx).BatchCreate(ctx, budgets)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, eventID)
}

// Refresh re-evaluates the event condition against the user's current
// metrics and promotes the participation to COMPLETED when it holds.
// Idempotent: a completed participation stays completed and refreshing
// without progress changes nothing.
func (s *Service) Refresh(ctx context.Context, userID, eventID string) (*UserEvent, error) {
	ev, err := s.event.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.Available(time.Now()) {
		return nil, errutil.PreconditionFailed(event.ReasonEventUnavailable, "event is not available")
	}

	ue, err := s.userEvents.FindOne(ctx, &UserEvent{UserID: userID, EventID: eventID})
	if err != nil {
		return nil, err
	}
	if ue == nil {
		return nil, errutil.NotFound(ReasonNotFound, "event not accepted")
	}
	if ue.Status == StatusCompleted {
		return s.attachRewards(ctx, ue)
	}

	snapshot, err := s.userdata.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := ev.Condition.Data().Satisfied(snapshot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.attachRewards(ctx, ue)
	}

	affected, err := s.userEvents.Update(ctx,
		&UserEvent{ID: ue.ID, Status: StatusAccepted},
		map[string]any{"status": StatusCompleted},
	)
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		zap.L().Info("user event completed",
			zap.String("user_id", userID),
			zap.String("event_id", eventID),
		)
	}
	ue.Status = StatusCompleted

	return s.attachRewards(ctx, ue)
}

// Claim pays out quantity units of one reward. The decrement of the claim
// budget is a single conditional update that only succeeds while enough
// remains, so concurrent claims can never pay out more than the budget.
// The decrement and the reward dispatch commit or roll back together, and
// every attempt leaves an audit row.
func (s *Service) Claim(ctx context.Context, userID, eventID, rewardKey string, quantity int64) (*UserEvent, error) {
	span := trace.SpanFromContext(ctx)
	fields := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.String("reward_key", rewardKey),
		zap.Int64("quantity", quantity),
	}

	err := s.claim(ctx, userID, eventID, rewardKey, quantity)

	payload := map[string]any{
		"event_id":   eventID,
		"reward_key": rewardKey,
		"quantity":   quantity,
	}
	if err != nil {
		zap.L().Warn("reward claim rejected", append(fields, zap.Error(err))...)
		s.rewardlog.Record(ctx, userID, false, err.Error(), payload)
		return nil, err
	}
	zap.L().Info("reward claimed", fields...)
	s.rewardlog.Record(ctx, userID, true, "reward claimed", payload)

	return s.Get(ctx, userID, eventID)
}

func (s *Service) claim(ctx context.Context, userID, eventID, rewardKey string, quantity int64) error {
	if quantity <= 0 {
		return errutil.ValidationFailed(ReasonClaimQuantityInvalid, "claim quantity must be positive")
	}

	ev, err := s.event.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if !ev.Available(time.Now()) {
		return errutil.PreconditionFailed(event.ReasonEventUnavailable, "event is not available")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ue, err := s.userEvents.WithTrx(tx).FindOne(ctx,
			&UserEvent{UserID: userID, EventID: eventID},
			option.WithLockingUpdate(),
		)
		if err != nil {
			return err
		}
		if ue == nil {
			return errutil.NotFound(ReasonNotFound, "event not accepted")
		}
		if ue.Status != StatusCompleted {
			return errutil.PreconditionFailed(ReasonNotCompleted, "event not completed")
		}

		rw, ok := ev.FindReward(rewardKey)
		if !ok {
			return errutil.NotFound(ReasonRewardNotFound, "reward not found")
		}

		affected, err := s.userRewards.WithTrx(tx).Update(ctx,
			&UserEventReward{UserID: userID, EventID: eventID, RewardKey: rewardKey},
			map[string]any{"remaining": gorm.Expr("remaining - ?", quantity)},
			option.ApplyOperator(option.Condition{Field: "remaining", Operator: option.GTE, Value: quantity}),
		)
		if err != nil {
			return err
		}
		if affected == 0 {
			budget, err := s.userRewards.WithTrx(tx).FindOne(ctx,
				&UserEventReward{UserID: userID, EventID: eventID, RewardKey: rewardKey})
			if err != nil {
				return err
			}
			if budget == nil {
				return errutil.NotFound(ReasonRewardNotFound, "reward not found")
			}
			return errutil.PreconditionFailed(ReasonRewardNotEnough, "not enough reward remaining")
		}

		return s.reward.WithTrx(tx).Provide(ctx, userID, rw, quantity)
	})
}

// Get returns one participation with its claim budgets attached.
func (s *Service) Get(ctx context.Context, userID, eventID string) (*UserEvent, error) {
	ue, err := s.userEvents.FindOne(ctx, &UserEvent{UserID: userID, EventID: eventID})
	if err != nil {
		return nil, err
	}
	if ue == nil {
		return nil, errutil.NotFound(ReasonNotFound, "event not accepted")
	}
	return s.attachRewards(ctx, ue)
}

// List returns every participation of the user, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*UserEvent, error) {
	return s.userEvents.Find(ctx, &UserEvent{UserID: userID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

func (s *Service) attachRewards(ctx context.Context, ue *UserEvent) (*UserEvent, error) {
	budgets, err := s.userRewards.Find(ctx, &UserEventReward{UserID: ue.UserID, EventID: ue.EventID})
	if err != nil {
		return nil, err
	}
	ue.Rewards = make([]UserEventReward, 0, len(budgets))
	for _, b := range budgets {
		ue.Rewards = append(ue.Rewards, *b)
	}
	return ue, nil
}

package rewardlog

import (
	"context"
	"encoding/json"

	"promo-eventserver/pkg/db/option"
	"promo-eventserver/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service records claim attempts. Recording is best-effort and never fails
// the claim that triggered it.
type Service struct {
	node *snowflake.Node
	logs repository.Repository[RewardLog]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

var Module = fx.Module("rewardlog.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		node: p.Node,
		logs: repository.ProvideStore[RewardLog](p.DB),
	}
}

// Record appends an audit row. Failures are logged and swallowed.
func (s *Service) Record(ctx context.Context, userID string, success bool, message string, data any) {
	var payload datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			zap.L().Warn("failed to marshal reward log payload", zap.Error(err))
		} else {
			payload = datatypes.JSON(raw)
		}
	}

	err := s.logs.Create(ctx, &RewardLog{
		ID:      s.node.Generate().String(),
		UserID:  userID,
		Success: success,
		Message: message,
		Data:    payload,
	})
	if err != nil {
		zap.L().Error("failed to record reward log",
			zap.String("user_id", userID),
			zap.Bool("success", success),
			zap.Error(err),
		)
	}
}

// List returns every audit row, newest first.
func (s *Service) List(ctx context.Context) ([]*RewardLog, error) {
	return s.logs.Find(ctx, &RewardLog{}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

// ListByUser returns one user's audit rows, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*RewardLog, error) {
	return s.logs.Find(ctx, &RewardLog{UserID: userID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

package userdata

import (
	"context"
	"encoding/json"
	"errors"

	"promo-eventserver/pkg/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the metric source collaborator. Snapshots never fail for an
// unknown user; they read as empty.
type Service struct {
	sets repository.Repository[UserDataSet]
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

var Module = fx.Module("userdata.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		sets: repository.ProvideStore[UserDataSet](p.DB),
	}
}

// Set replaces the user's data set.
func (s *Service) Set(ctx context.Context, userID string, data map[string]float64) (*UserDataSet, error) {
	payload := make(datatypes.JSONMap, len(data))
	for k, v := range data {
		payload[k] = v
	}

	affected, err := s.sets.Update(ctx, &UserDataSet{UserID: userID}, map[string]any{"data": payload})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		set := &UserDataSet{UserID: userID, Data: payload}
		if err := s.sets.Create(ctx, set); err != nil {
			return nil, err
		}
		return set, nil
	}

	return s.get(ctx, userID)
}

// Snapshot returns the user's metric values, empty for unknown users.
// Values written in-process arrive as float64; values scanned back from the
// JSON column arrive as json.Number, so both shapes convert here.
func (s *Service) Snapshot(ctx context.Context, userID string) (map[string]float64, error) {
	set, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]float64, len(set.Data))
	for key, value := range set.Data {
		switch v := value.(type) {
		case float64:
			snapshot[key] = v
		case json.Number:
			num, err := v.Float64()
			if err != nil {
				zap.L().Warn("skipping non-numeric metric value",
					zap.String("user_id", userID),
					zap.String("metric", key),
					zap.Error(err),
				)
				continue
			}
			snapshot[key] = num
		}
	}
	return snapshot, nil
}

// Get returns the stored data set, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, userID string) (*UserDataSet, error) {
	return s.get(ctx, userID)
}

// get returns the stored set, creating an empty one on first access. A
// concurrent first access can lose the insert race; the loser re-reads the
// winner's row instead of surfacing the duplicate-key error.
func (s *Service) get(ctx context.Context, userID string) (*UserDataSet, error) {
	set, err := s.sets.FindOne(ctx, &UserDataSet{UserID: userID})
	if err != nil {
		return nil, err
	}
	if set == nil {
		set = &UserDataSet{UserID: userID, Data: datatypes.JSONMap{}}
		if createErr := s.sets.Create(ctx, set); createErr != nil {
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return nil, createErr
			}
			set, err = s.sets.FindOne(ctx, &UserDataSet{UserID: userID})
			if err != nil {
				return nil, err
			}
			if set == nil {
				return nil, createErr
			}
		}
	}
	if set.Data == nil {
		set.Data = datatypes.JSONMap{}
	}
	return set, nil
}

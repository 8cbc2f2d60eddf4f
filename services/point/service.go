package point

import (
	"context"
	"encoding/json"
	"errors"

	"promo-eventserver/pkg/db/option"
	"promo-eventserver/pkg/errutil"
	"promo-eventserver/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ReasonPointAmountInvalid = "POINT_AMOUNT_INVALID"

// Service is the point ledger. All mutations go through atomic, audited
// operations; spend/revoke/refund are a deliberate extension surface and
// intentionally unimplemented.
type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	accounts repository.Repository[Account]
	history  repository.Repository[History]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

var Module = fx.Module("point.service", fx.Provide(NewService))

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		accounts: repository.ProvideStore[Account](p.DB),
		history:  repository.ProvideStore[History](p.DB),
	}
}

// WithTrx rebinds the ledger to an open transaction so its writes join the
// caller's atomic scope.
func (s *Service) WithTrx(tx *gorm.DB) *Service {
	if tx == nil {
		return s
	}
	return &Service{
		db:       tx,
		node:     s.node,
		accounts: s.accounts.WithTrx(tx),
		history:  s.history.WithTrx(tx),
	}
}

// Accumulate credits amount to the user's balance and appends a history row
// snapshotting the account after the change. Safe under arbitrary concurrent
// callers for the same user: the account row is locked for the duration of
// the transaction, so increments serialize without lost updates.
func (s *Service) Accumulate(ctx context.Context, userID string, amount int64, reason any) (*Account, error) {
	if amount <= 0 {
		return nil, errutil.ValidationFailed(ReasonPointAmountInvalid, "accumulate amount must be positive")
	}

	var out Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTrx(tx)

		acct, err := lockAccount(ctx, accounts, userID)
		if err != nil {
			return err
		}

		if _, err := accounts.Update(ctx, &Account{UserID: userID}, map[string]any{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		}); err != nil {
			return err
		}

		out = Account{
			UserID:      userID,
			Balance:     acct.Balance + amount,
			TotalEarned: acct.TotalEarned + amount,
			TotalSpent:  acct.TotalSpent,
		}

		var reasonJSON datatypes.JSON
		if reason != nil {
			raw, err := json.Marshal(reason)
			if err != nil {
				zap.L().Warn("failed to marshal point history reason", zap.Error(err))
			} else {
				reasonJSON = datatypes.JSON(raw)
			}
		}

		return s.history.WithTrx(tx).Create(ctx, &History{
			ID:          s.node.Generate().String(),
			UserID:      userID,
			Balance:     out.Balance,
			TotalEarned: out.TotalEarned,
			TotalSpent:  out.TotalSpent,
			Reason:      reasonJSON,
		})
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// lockAccount reads the account under a row lock, creating it on first
// touch. Two concurrent first touches both observe no row; the insert loser
// falls back to a locked read of the winner's row instead of surfacing the
// duplicate-key error.
func lockAccount(ctx context.Context, accounts repository.Repository[Account], userID string) (*Account, error) {
	acct, err := accounts.FindOne(ctx, &Account{UserID: userID}, option.WithLockingUpdate())
	if err != nil || acct != nil {
		return acct, err
	}

	acct = &Account{UserID: userID}
	createErr := accounts.Create(ctx, acct)
	if createErr == nil {
		return acct, nil
	}
	if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
		return nil, createErr
	}

	acct, err = accounts.FindOne(ctx, &Account{UserID: userID}, option.WithLockingUpdate())
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, createErr
	}
	return acct, nil
}

// Get returns the user's point summary, creating a zeroed account on first
// access.
func (s *Service) Get(ctx context.Context, userID string) (*Account, error) {
	acct, err := s.accounts.FindOne(ctx, &Account{UserID: userID})
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = &Account{UserID: userID}
		if createErr := s.accounts.Create(ctx, acct); createErr != nil {
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return nil, createErr
			}
			acct, err = s.accounts.FindOne(ctx, &Account{UserID: userID})
			if err != nil {
				return nil, err
			}
			if acct == nil {
				return nil, createErr
			}
		}
	}
	return acct, nil
}

// History returns the user's point mutation log in commit order.
func (s *Service) History(ctx context.Context, userID string) ([]*History, error) {
	return s.history.Find(ctx, &History{UserID: userID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "asc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

// Spend is an extension point; point consumption is not part of the engine
// yet and its semantics are unspecified.
func (s *Service) Spend(ctx context.Context, userID string, amount int64) error {
	return errutil.NotImplemented("POINT_SPEND_NOT_IMPLEMENTED", "spend is not implemented")
}

// Revoke is an extension point, see Spend.
func (s *Service) Revoke(ctx context.Context, userID string, amount int64) error {
	return errutil.NotImplemented("POINT_REVOKE_NOT_IMPLEMENTED", "revoke is not implemented")
}

// Refund is an extension point, see Spend.
func (s *Service) Refund(ctx context.Context, userID string, amount int64) error {
	return errutil.NotImplemented("POINT_REFUND_NOT_IMPLEMENTED", "refund is not implemented")
}

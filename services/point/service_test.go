package point

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"promo-eventserver/pkg/errutil"
	"promo-eventserver/services/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Account{}, &History{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestService_AccumulateCreatesAccountAndHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Accumulate(ctx, "user-1", 100, map[string]any{"source": "test"})
	require.NoError(t, err)
	require.EqualValues(t, 100, acct.Balance)
	require.EqualValues(t, 100, acct.TotalEarned)
	require.EqualValues(t, 0, acct.TotalSpent)

	acct, err = svc.Accumulate(ctx, "user-1", 50, nil)
	require.NoError(t, err)
	require.EqualValues(t, 150, acct.Balance)
	require.EqualValues(t, 150, acct.TotalEarned)

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.EqualValues(t, 100, history[0].Balance)
	require.EqualValues(t, 150, history[1].Balance)
}

func TestService_AccumulateRejectsNonPositive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Accumulate(ctx, "user-1", 0, nil)
	require.True(t, errutil.ReasonIs(err, ReasonPointAmountInvalid))

	_, err = svc.Accumulate(ctx, "user-1", -10, nil)
	require.True(t, errutil.ReasonIs(err, ReasonPointAmountInvalid))

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestService_GetCreatesZeroAccount(t *testing.T) {
	svc := newTestService(t)

	acct, err := svc.Get(context.Background(), "fresh-user")
	require.NoError(t, err)
	require.EqualValues(t, 0, acct.Balance)
	require.EqualValues(t, 0, acct.TotalEarned)
	require.EqualValues(t, 0, acct.TotalSpent)
}

func TestService_AccumulateConcurrent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const workers = 10
	const amount = 7

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := svc.Accumulate(ctx, "user-1", amount, nil)
			return err
		})
	}
	require.NoError(t, g.Wait())

	acct, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.EqualValues(t, workers*amount, acct.Balance)
	require.EqualValues(t, workers*amount, acct.TotalEarned)

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, workers)

	balances := make(map[int64]bool, len(history))
	for _, h := range history {
		balances[h.Balance] = true
	}
	for i := 1; i <= workers; i++ {
		require.True(t, balances[int64(i*amount)], "missing snapshot for balance %d", i*amount)
	}
}

func TestService_AccumulateRecoversFromInsertRace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Accumulate(ctx, "user-1", 40, nil)
	require.NoError(t, err)

	svc.accounts = testutil.LoseFirstReads(svc.accounts, 1)

	acct, err := svc.Accumulate(ctx, "user-1", 10, nil)
	require.NoError(t, err)
	require.EqualValues(t, 50, acct.Balance)
	require.EqualValues(t, 50, acct.TotalEarned)

	history, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestService_GetRecoversFromInsertRace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Accumulate(ctx, "user-1", 25, nil)
	require.NoError(t, err)

	svc.accounts = testutil.LoseFirstReads(svc.accounts, 1)

	acct, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.EqualValues(t, 25, acct.Balance)
}

func TestService_SpendFamilyNotImplemented(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.True(t, errutil.ReasonIs(svc.Spend(ctx, "user-1", 10), "POINT_SPEND_NOT_IMPLEMENTED"))
	require.True(t, errutil.ReasonIs(svc.Revoke(ctx, "user-1", 10), "POINT_REVOKE_NOT_IMPLEMENTED"))
	require.True(t, errutil.ReasonIs(svc.Refund(ctx, "user-1", 10), "POINT_REFUND_NOT_IMPLEMENTED"))
}

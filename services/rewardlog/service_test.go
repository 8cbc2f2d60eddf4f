package rewardlog

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"promo-eventserver/services/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &RewardLog{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestService_RecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Record(ctx, "user-1", true, "reward claimed", map[string]any{"event_id": "ev-1"})
	svc.Record(ctx, "user-1", false, "not enough reward remaining", map[string]any{"event_id": "ev-1"})
	svc.Record(ctx, "user-2", true, "reward claimed", nil)

	logs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	logs, err = svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		require.Equal(t, "user-1", l.UserID)
	}
}

func TestService_RecordFailureRowKeepsOutcome(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Record(ctx, "user-1", false, "event not completed", map[string]any{
		"event_id":   "ev-1",
		"reward_key": "rw-1",
	})

	logs, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.False(t, logs[0].Success)
	require.Equal(t, "event not completed", logs[0].Message)
	require.JSONEq(t, `{"event_id":"ev-1","reward_key":"rw-1"}`, string(logs[0].Data))
}

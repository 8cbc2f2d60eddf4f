package reward

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"promo-eventserver/pkg/errutil"
	"promo-eventserver/services/event"
	"promo-eventserver/services/inventory"
	"promo-eventserver/services/item"
	"promo-eventserver/services/point"
	"promo-eventserver/services/testutil"
)

func newTestService(t *testing.T) (*Service, *point.Service, *inventory.Service) {
	t.Helper()

	db := testutil.NewTestDB(t, &point.Account{}, &point.History{}, &inventory.InventoryItem{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	pointSvc := point.NewService(point.ServiceParams{DB: db, Node: node})
	inventorySvc := inventory.NewService(inventory.ServiceParams{DB: db, Node: node, Item: item.NewService()})

	svc := NewService(ServiceParams{Point: pointSvc, Inventory: inventorySvc})
	return svc, pointSvc, inventorySvc
}

func TestService_ProvidePointCreditsValueOnce(t *testing.T) {
	svc, pointSvc, _ := newTestService(t)
	ctx := context.Background()

	rw := event.Reward{Key: "rw-1", Kind: event.RewardPoint, Point: 100, Quantity: 10}

	require.NoError(t, svc.Provide(ctx, "user-1", rw, 3))

	acct, err := pointSvc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.EqualValues(t, 100, acct.Balance)

	history, err := pointSvc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.JSONEq(t, `{"source":"reward","reward_key":"rw-1"}`, string(history[0].Reason))
}

func TestService_ProvideItemGrantsQuantity(t *testing.T) {
	svc, _, inventorySvc := newTestService(t)
	ctx := context.Background()

	rw := event.Reward{Key: "rw-1", Kind: event.RewardItem, ItemCode: 10100, Quantity: 10}

	require.NoError(t, svc.Provide(ctx, "user-1", rw, 3))

	lines, err := inventorySvc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.EqualValues(t, 10100, lines[0].ItemCode)
	require.EqualValues(t, 3, lines[0].Quantity)
}

func TestService_ProvideUnknownKind(t *testing.T) {
	svc, _, _ := newTestService(t)

	rw := event.Reward{Key: "rw-1", Kind: "COUPON", Quantity: 1}

	err := svc.Provide(context.Background(), "user-1", rw, 1)
	require.True(t, errutil.ReasonIs(err, ReasonRewardTypeUnsupported))
}

package inventory

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"promo-eventserver/pkg/errutil"
	"promo-eventserver/services/item"
	"promo-eventserver/services/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &InventoryItem{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node, Item: item.NewService()})
}

func TestService_AddItemCreatesAndIncrements(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	line, err := svc.AddItem(ctx, "user-1", 10100, 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, line.Quantity)

	line, err = svc.AddItem(ctx, "user-1", 10100, 3)
	require.NoError(t, err)
	require.EqualValues(t, 5, line.Quantity)

	lines, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestService_AddItemSeparateLinesPerItem(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", 10100, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", 50200, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-2", 10100, 1)
	require.NoError(t, err)

	lines, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.EqualValues(t, 10100, lines[0].ItemCode)
	require.EqualValues(t, 50200, lines[1].ItemCode)

	lines, err = svc.Get(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestService_AddItemRejectsUnknownItem(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddItem(context.Background(), "user-1", 99999, 1)
	require.True(t, errutil.ReasonIs(err, item.ReasonItemNotFound))
}

func TestService_AddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", 10100, 0)
	require.True(t, errutil.ReasonIs(err, ReasonInventoryQuantityInvalid))

	_, err = svc.AddItem(ctx, "user-1", 10100, -1)
	require.True(t, errutil.ReasonIs(err, ReasonInventoryQuantityInvalid))
}

func TestService_AddItemConcurrent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const workers = 8

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, "user-1", 10100, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	lines, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.EqualValues(t, workers, lines[0].Quantity)
}

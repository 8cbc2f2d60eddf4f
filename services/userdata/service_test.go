package userdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"promo-eventserver/services/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(ServiceParams{DB: testutil.NewTestDB(t, &UserDataSet{})})
}

func TestService_SnapshotEmptyForUnknownUser(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Snapshot(context.Background(), "fresh-user")
	require.NoError(t, err)
	require.Empty(t, snapshot)
}

func TestService_SetAndSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "user-1", map[string]float64{"level": 30, "login_count": 7})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"level": 30, "login_count": 7}, snapshot)
}

func TestService_SetReplacesPrevious(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "user-1", map[string]float64{"level": 10, "login_count": 3})
	require.NoError(t, err)

	_, err = svc.Set(ctx, "user-1", map[string]float64{"level": 50})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"level": 50}, snapshot)
}

func TestService_SnapshotConvertsStoredNumbers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "user-1", map[string]float64{"level": 120})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"level": 120}, snapshot)

	_, err = svc.Set(ctx, "user-1", map[string]float64{"level": 120.5, "login_count": 7})
	require.NoError(t, err)

	snapshot, err = svc.Snapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"level": 120.5, "login_count": 7}, snapshot)
}

func TestService_SnapshotRecoversFromInsertRace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "user-1", map[string]float64{"level": 30})
	require.NoError(t, err)

	svc.sets = testutil.LoseFirstReads(svc.sets, 1)

	snapshot, err := svc.Snapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"level": 30}, snapshot)
}

func TestService_GetCreatesEmptySet(t *testing.T) {
	svc := newTestService(t)

	set, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", set.UserID)
	require.Empty(t, set.Data)
}

package center

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/toastcenter/internal/capture"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	"github.com/nhle/toastcenter/internal/store"
	"github.com/nhle/toastcenter/tests/testutil"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	s := testutil.NewTestStore(t)
	return NewService(s, testutil.TestUserID, priority.DND{}, nil), context.Background()
}

func TestSpaceStatistics(t *testing.T) {
	svc, ctx := newTestService(t)

	def, err := svc.store.EnsureDefaultSpace(ctx, svc.UserID(), "Work")
	require.NoError(t, err)
	empty, err := svc.store.CreateSpace(ctx, model.Space{SpaceName: "Empty"}, svc.UserID())
	require.NoError(t, err)

	testutil.SeedNotifications(t, svc.store, "slack", "Slack", 3)
	testutil.SeedNotifications(t, svc.store, "teams", "Teams", 5)
	require.NoError(t, svc.AddToSpace(ctx, def.SpaceID, "slack", "Slack"))
	require.NoError(t, svc.AddToSpace(ctx, def.SpaceID, "teams", "Teams"))

	stats, err := svc.SpaceStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, SpaceStats{AppCount: 2, NotificationCount: 8}, stats[def.SpaceID])
	assert.Equal(t, SpaceStats{}, stats[empty.SpaceID])
	assert.Contains(t, stats, empty.SpaceID)

	// Stats are recomputed on every call.
	require.NoError(t, svc.RemoveFromSpace(ctx, def.SpaceID, "teams"))
	stats, err = svc.SpaceStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, SpaceStats{AppCount: 1, NotificationCount: 3}, stats[def.SpaceID])
}

func TestSpacesWithCounts(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.store.CreateSpace(ctx, model.Space{SpaceName: "Alpha"}, svc.UserID())
	require.NoError(t, err)
	def, err := svc.store.EnsureDefaultSpace(ctx, svc.UserID(), "Work")
	require.NoError(t, err)
	testutil.SeedNotifications(t, svc.store, "zoom", "Zoom", 2)
	require.NoError(t, svc.AddToSpace(ctx, def.SpaceID, "zoom", "Zoom"))

	got, err := svc.SpacesWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Work", got[0].Space.SpaceName)
	assert.Equal(t, 2, got[0].NotificationCount)
	assert.Equal(t, "Alpha", got[1].Space.SpaceName)
	assert.Zero(t, got[1].AppCount)
}

func TestNotificationsNewestFirst(t *testing.T) {
	svc, ctx := newTestService(t)
	testutil.SeedNotifications(t, svc.store, "slack", "Slack", 3)
	testutil.SeedNotifications(t, svc.store, "solitaire", "Solitaire", 1)

	got, err := svc.NotificationsForPackage(ctx, "slack")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"3", "2", "1"}, ids(got))
	assert.Equal(t, model.PriorityMedium, got[0].Priority)

	all, err := svc.AllNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "slack/3", all[0].Key())
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedTime.After(all[i-1].CreatedTime))
	}
}

func TestNotificationsInSpace(t *testing.T) {
	svc, ctx := newTestService(t)
	testutil.SeedNotifications(t, svc.store, "slack", "Slack", 2)
	testutil.SeedNotifications(t, svc.store, "teams", "Teams", 1)
	testutil.SeedNotifications(t, svc.store, "games", "Games", 4)

	require.NoError(t, svc.AddToSpace(ctx, "chat", "slack", "Slack"))
	require.NoError(t, svc.AddToSpace(ctx, "chat", "teams", "Teams"))

	got, err := svc.NotificationsInSpace(ctx, "chat")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, n := range got {
		assert.NotEqual(t, "games", n.PackageID)
	}

	pkgs, err := svc.PackagesInSpace(ctx, "chat")
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)
}

func TestPriorityOverrides(t *testing.T) {
	svc, ctx := newTestService(t)
	testutil.SeedNotifications(t, svc.store, "solitaire", "Solitaire", 1)

	p, err := svc.EffectivePriority(ctx, "solitaire")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, p)

	stored, err := svc.SetPriority(ctx, "solitaire", model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "Solitaire", stored.DisplayName)

	p, err = svc.EffectivePriority(ctx, "solitaire")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, p)

	apps, err := svc.Apps(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.True(t, apps[0].Override)
	assert.Equal(t, 1, apps[0].NotificationCount)

	require.NoError(t, svc.ClearPriority(ctx, "solitaire"))
	p, err = svc.EffectivePriority(ctx, "solitaire")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, p)
}

func TestPublisherClassifiesStoredApps(t *testing.T) {
	svc, ctx := newTestService(t)
	p := capture.New(capture.Options{Store: svc.store, UserID: svc.UserID()})

	got, err := p.Capture(ctx, capture.RawNotification{
		ID:           1,
		App:          capture.AppInfo{DisplayName: "Widget", AppID: "widget.exe", Publisher: "Microsoft Corporation"},
		CreatedTime:  testutil.BaseTime,
		TextElements: []string{"Update ready"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, got.Priority)

	apps, err := svc.Apps(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Microsoft Corporation", apps[0].Package.AppPublisher)
	assert.Equal(t, got.Priority, apps[0].Priority)

	ns, err := svc.AllNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, got.Priority, ns[0].Priority)

	prio, err := svc.EffectivePriority(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, got.Priority, prio)

	stored, err := svc.SetPriority(ctx, "widget", model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "Microsoft Corporation", stored.Publisher)
}

func TestEffectivePriorityUnknownPackage(t *testing.T) {
	svc, ctx := newTestService(t)
	p, err := svc.EffectivePriority(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityNone, p)
}

func TestAppsSortedByName(t *testing.T) {
	svc, ctx := newTestService(t)
	testutil.SeedNotifications(t, svc.store, "z", "zoom", 1)
	testutil.SeedNotifications(t, svc.store, "a", "Authenticator", 2)
	require.NoError(t, svc.AddToSpace(ctx, "s", "m", "Mail"))

	apps, err := svc.Apps(ctx)
	require.NoError(t, err)
	var names []string
	for _, a := range apps {
		names = append(names, a.Package.Name())
	}
	assert.Equal(t, []string{"Authenticator", "Mail", "zoom"}, names)
	assert.Equal(t, model.PriorityHigh, apps[0].Priority)
	assert.Zero(t, apps[1].NotificationCount)
}

func TestSortNewestFirstTieBreak(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ns := []model.ToastNotification{
		{PackageID: "b", NotificationID: "1", CreatedTime: at},
		{PackageID: "a", NotificationID: "1", CreatedTime: at},
		{PackageID: "c", NotificationID: "1", CreatedTime: at.Add(time.Second)},
	}
	SortNewestFirst(ns)
	assert.Equal(t, []string{"c/1", "a/1", "b/1"}, keys(ns))
}

func TestAlertsFollowDND(t *testing.T) {
	svc, _ := newTestService(t)
	assert.True(t, svc.Alerts(model.PriorityLow))

	svc.SetDND(priority.DND{Enabled: true, Threshold: model.PriorityMedium})
	assert.False(t, svc.Alerts(model.PriorityLow))
	assert.True(t, svc.Alerts(model.PriorityHigh))
}

func TestSpaceLifecycle(t *testing.T) {
	svc, ctx := newTestService(t)

	def, err := svc.EnsureDefaultSpace(ctx, "Work")
	require.NoError(t, err)
	again, err := svc.EnsureDefaultSpace(ctx, "Ignored")
	require.NoError(t, err)
	assert.Equal(t, def.SpaceID, again.SpaceID)

	chat, err := svc.CreateSpace(ctx, "  Chat ", "")
	require.NoError(t, err)
	assert.Equal(t, "Chat", chat.SpaceName)

	require.NoError(t, svc.RenameSpace(ctx, chat.SpaceID, "Messaging", "im apps"))
	spaces, err := svc.Spaces(ctx)
	require.NoError(t, err)
	require.Len(t, spaces, 2)
	assert.Equal(t, "Work", spaces[0].SpaceName)
	assert.Equal(t, "Messaging", spaces[1].SpaceName)
	assert.Equal(t, "im apps", spaces[1].SpaceDescription)

	err = svc.RenameSpace(ctx, "missing", "x", "")
	assert.ErrorIs(t, err, store.ErrSpaceNotFound)

	err = svc.DeleteSpace(ctx, def.SpaceID)
	assert.ErrorIs(t, err, store.ErrDefaultSpace)

	require.NoError(t, svc.DeleteSpace(ctx, chat.SpaceID))
	spaces, err = svc.Spaces(ctx)
	require.NoError(t, err)
	assert.Len(t, spaces, 1)
}

func TestDismiss(t *testing.T) {
	svc, ctx := newTestService(t)
	testutil.SeedNotifications(t, svc.store, "slack", "Slack", 2)

	ns, err := svc.NotificationsForPackage(ctx, "slack")
	require.NoError(t, err)
	require.NoError(t, svc.Dismiss(ctx, ns[0]))

	ns, err = svc.NotificationsForPackage(ctx, "slack")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(ns))
}

func ids(ns []model.ToastNotification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.NotificationID
	}
	return out
}

func keys(ns []model.ToastNotification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Key()
	}
	return out
}

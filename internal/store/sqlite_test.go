package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/store"
	"github.com/nhle/toastcenter/tests/testutil"
)

const user = testutil.TestUserID

func notification(pkg, id, title string, at time.Time) model.ToastNotification {
	return model.ToastNotification{
		NotificationID:      id,
		PackageID:           pkg,
		CreatedTime:         at,
		NotificationTitle:   title,
		NotificationMessage: title,
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := store.OpenForUser(dir, user)
	require.NoError(t, err)
	v1, err := s1.SchemaVersion(context.Background())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := store.OpenForUser(dir, user)
	require.NoError(t, err)
	defer s2.Close()
	v2, err := s2.SchemaVersion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, v1)
	assert.Equal(t, v1, v2)
	assert.FileExists(t, filepath.Join(dir, user+".db"))
}

func TestOpenForUserRejectsEmptyUser(t *testing.T) {
	_, err := store.OpenForUser(t.TempDir(), "  ")
	assert.Error(t, err)
}

func TestUsersAreIsolated(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	n := notification("app", "1", "hello", testutil.BaseTime)
	require.NoError(t, s.UpsertNotification(ctx, n, model.PackageProfile{PackageID: "app"}, "alice"))

	got, err := s.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, got)

	p, err := s.GetPackage(ctx, "app", "bob")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpsertNotificationOverwrites(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	profile := model.PackageProfile{PackageID: "devtool", AppDisplayName: "DevTool"}

	first := notification("devtool", "7", "Build started", testutil.BaseTime)
	second := notification("devtool", "7", "Build finished", testutil.BaseTime.Add(time.Minute))

	require.NoError(t, s.UpsertNotification(ctx, first, profile, user))
	require.NoError(t, s.UpsertNotification(ctx, second, profile, user))

	got, err := s.ListNotificationsByPackage(ctx, "devtool", user)
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(second, got[0]); diff != "" {
		t.Errorf("stored notification mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertNotificationCreatesProfile(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	profile := model.PackageProfile{
		PackageID:         "Contoso.Mail_8wekyb",
		PackageFamilyName: "Contoso.Mail_8wekyb",
		AppDisplayName:    "Contoso Mail",
	}.WithLogo("/tmp/icons/Contoso Mail.png")
	n := notification(profile.PackageID, "1", "New mail", testutil.BaseTime)

	require.NoError(t, s.UpsertNotification(ctx, n, profile, user))

	got, err := s.GetPackage(ctx, profile.PackageID, user)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(profile, *got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	// A later sighting without a logo overwrites the stored one.
	require.NoError(t, s.UpsertNotification(ctx, n, profile.WithLogo(""), user))
	got, err = s.GetPackage(ctx, profile.PackageID, user)
	require.NoError(t, err)
	assert.Nil(t, got.LogoFilePath)
}

func TestUpsertNotificationIsAtomic(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`
		CREATE TRIGGER fail_notifications BEFORE INSERT ON toast_notifications
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	n := notification("ghost", "1", "boo", testutil.BaseTime)
	err = s.UpsertNotification(ctx, n, model.PackageProfile{PackageID: "ghost"}, user)
	require.Error(t, err)

	p, err := s.GetPackage(ctx, "ghost", user)
	require.NoError(t, err)
	assert.Nil(t, p, "profile must roll back with the failed notification")

	ns, err := s.ListNotifications(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestUpsertNotificationRequiresIDs(t *testing.T) {
	s := testutil.NewTestStore(t)
	n := notification("app", "", "no id", testutil.BaseTime)
	err := s.UpsertNotification(context.Background(), n, model.PackageProfile{PackageID: "app"}, user)
	assert.Error(t, err)
}

func TestUpsertNotificationsBatch(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	batch := []model.ToastNotification{
		notification("a", "1", "one", testutil.BaseTime),
		notification("a", "2", "two", testutil.BaseTime),
		notification("b", "1", "three", testutil.BaseTime),
	}
	require.NoError(t, s.UpsertNotifications(ctx, batch, user))
	require.NoError(t, s.UpsertNotifications(ctx, nil, user))

	counts, err := s.CountNotificationsByPackage(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}

func TestDeleteNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedNotifications(t, s, "app", "App", 2)

	require.NoError(t, s.DeleteNotification(ctx, "app", "1", user))
	require.NoError(t, s.DeleteNotification(ctx, "app", "missing", user))

	got, err := s.ListNotificationsByPackage(ctx, "app", user)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].NotificationID)
}

func TestGetPackageMiss(t *testing.T) {
	s := testutil.NewTestStore(t)
	p, err := s.GetPackage(context.Background(), "nope", user)
	require.NoError(t, err)
	assert.Nil(t, p)

	all, err := s.ListPackages(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, all)
}

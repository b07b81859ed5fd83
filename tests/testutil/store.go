package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/store"
)

// TestUserID is the user every helper scopes its rows to.
const TestUserID = "tester"

// BaseTime anchors seeded timestamps.
var BaseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryPath)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedNotifications stores count notifications for a package, numbered
// from 1, together with a profile named displayName.
func SeedNotifications(t *testing.T, s store.Store, packageID, displayName string, count int) {
	t.Helper()

	profile := model.PackageProfile{PackageID: packageID, AppDisplayName: displayName}
	for i := 1; i <= count; i++ {
		n := model.ToastNotification{
			NotificationID:      strconv.Itoa(i),
			PackageID:           packageID,
			CreatedTime:         BaseTime.Add(time.Duration(i) * time.Minute),
			NotificationTitle:   displayName + " #" + strconv.Itoa(i),
			NotificationMessage: displayName + " #" + strconv.Itoa(i),
		}
		if err := s.UpsertNotification(context.Background(), n, profile, TestUserID); err != nil {
			t.Fatalf("seeding notification %s: %v", n.Key(), err)
		}
	}
}

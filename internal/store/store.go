package store

import (
	"context"
	"errors"

	"github.com/nhle/toastcenter/internal/model"
)

var (
	// ErrDefaultSpace is returned when deleting the default space.
	ErrDefaultSpace = errors.New("the default space cannot be deleted")

	// ErrSpaceNotFound is returned when updating a space that does not exist.
	ErrSpaceNotFound = errors.New("space not found")
)

// Store defines the persistence interface for package profiles,
// notifications, spaces and custom priorities. Every operation is scoped
// to a user id. Lookup misses are never errors: point lookups return nil
// and list operations return an empty slice.
type Store interface {
	// === Package profiles ===

	GetPackage(ctx context.Context, packageID, userID string) (*model.PackageProfile, error)
	ListPackages(ctx context.Context, userID string) ([]model.PackageProfile, error)
	UpsertPackage(ctx context.Context, profile model.PackageProfile, userID string) error

	// === Notifications ===

	ListNotifications(ctx context.Context, userID string) ([]model.ToastNotification, error)
	ListNotificationsByPackage(ctx context.Context, packageID, userID string) ([]model.ToastNotification, error)
	UpsertNotification(ctx context.Context, n model.ToastNotification, profile model.PackageProfile, userID string) error
	UpsertNotifications(ctx context.Context, ns []model.ToastNotification, userID string) error
	CountNotificationsByPackage(ctx context.Context, userID string) (map[string]int, error)
	DeleteNotification(ctx context.Context, packageID, notificationID, userID string) error

	// === Spaces ===

	CreateSpace(ctx context.Context, space model.Space, userID string) (model.Space, error)
	UpdateSpace(ctx context.Context, space model.Space, userID string) error
	DeleteSpace(ctx context.Context, spaceID, userID string) error
	GetSpace(ctx context.Context, spaceID, userID string) (*model.Space, error)
	ListSpaces(ctx context.Context, userID string) ([]model.Space, error)
	EnsureDefaultSpace(ctx context.Context, userID, name string) (model.Space, error)

	AddToSpace(ctx context.Context, spaceID, packageID, displayName, userID string) error
	RemoveFromSpace(ctx context.Context, spaceID, packageID, userID string) error
	PackagesInSpace(ctx context.Context, spaceID, userID string) ([]model.PackageProfile, error)
	ListSpaceMappers(ctx context.Context, userID string) ([]model.SpaceMapper, error)

	// === Custom priorities ===

	GetCustomPriority(ctx context.Context, packageID, userID string) (*model.CustomPriorityApp, error)
	ListCustomPriorities(ctx context.Context, userID string) ([]model.CustomPriorityApp, error)
	UpsertCustomPriority(ctx context.Context, app model.CustomPriorityApp) (model.CustomPriorityApp, error)
	DeleteCustomPriority(ctx context.Context, packageID, userID string) error
}

var _ Store = (*SQLiteStore)(nil)

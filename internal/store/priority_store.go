package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/toastcenter/internal/model"
)

const customPriorityColumns = `id, package_id, user_id, display_name, publisher,
	priority, is_enabled, created_at, updated_at`

// GetCustomPriority returns the user's override for a package, or nil.
func (s *SQLiteStore) GetCustomPriority(
	ctx context.Context,
	packageID, userID string,
) (*model.CustomPriorityApp, error) {
	return getCustomPriority(ctx, s.db, packageID, userID)
}

// ListCustomPriorities returns every override for the user.
func (s *SQLiteStore) ListCustomPriorities(
	ctx context.Context,
	userID string,
) ([]model.CustomPriorityApp, error) {
	apps := []model.CustomPriorityApp{}
	err := s.db.SelectContext(ctx, &apps,
		"SELECT "+customPriorityColumns+` FROM custom_priority_apps
		WHERE user_id = ? ORDER BY display_name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying custom priorities: %w", err)
	}
	return apps, nil
}

// UpsertCustomPriority creates the override for (PackageID, UserID) or
// updates it in place. The stored row is returned; an existing row keeps
// its id and creation time.
func (s *SQLiteStore) UpsertCustomPriority(
	ctx context.Context,
	app model.CustomPriorityApp,
) (model.CustomPriorityApp, error) {
	if app.PackageID == "" || app.UserID == "" {
		return model.CustomPriorityApp{}, fmt.Errorf("package id and user id are required")
	}
	p, err := model.ParsePriority(string(app.Priority))
	if err != nil {
		return model.CustomPriorityApp{}, err
	}
	app.Priority = p
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	var stored *model.CustomPriorityApp
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO custom_priority_apps (
				id, package_id, user_id, display_name, publisher,
				priority, is_enabled, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(package_id, user_id) DO UPDATE SET
				display_name = excluded.display_name,
				publisher = excluded.publisher,
				priority = excluded.priority,
				is_enabled = excluded.is_enabled,
				updated_at = excluded.updated_at`,
			app.ID, app.PackageID, app.UserID, app.DisplayName, app.Publisher,
			string(app.Priority), boolToInt(app.IsEnabled), now, now,
		)
		if err != nil {
			return fmt.Errorf("upserting custom priority for %s: %w", app.PackageID, err)
		}

		stored, err = getCustomPriority(ctx, tx, app.PackageID, app.UserID)
		return err
	})
	if err != nil {
		return model.CustomPriorityApp{}, err
	}
	if stored == nil {
		return model.CustomPriorityApp{}, fmt.Errorf("custom priority for %s vanished after upsert", app.PackageID)
	}
	return *stored, nil
}

// DeleteCustomPriority removes the user's override for a package. A
// missing override is not an error.
func (s *SQLiteStore) DeleteCustomPriority(
	ctx context.Context,
	packageID, userID string,
) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM custom_priority_apps WHERE package_id = ? AND user_id = ?",
		packageID, userID)
	if err != nil {
		return fmt.Errorf("deleting custom priority for %s: %w", packageID, err)
	}
	return nil
}

func getCustomPriority(
	ctx context.Context,
	q sqlx.QueryerContext,
	packageID, userID string,
) (*model.CustomPriorityApp, error) {
	var app model.CustomPriorityApp
	err := sqlx.GetContext(ctx, q, &app,
		"SELECT "+customPriorityColumns+` FROM custom_priority_apps
		WHERE package_id = ? AND user_id = ?`, packageID, userID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting custom priority for %s: %w", packageID, err)
	}
	return &app, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/toastcenter/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// PathForUser returns the database file for a user: one database per user
// identifier, named after it, inside dataDir.
func PathForUser(dataDir, userID string) string {
	return filepath.Join(dataDir, userID+".db")
}

// OpenForUser creates dataDir if needed and opens the user's database.
func OpenForUser(dataDir, userID string) (*SQLiteStore, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id must not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}
	return NewSQLiteStore(PathForUser(dataDir, userID))
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection serialises writers and keeps ":memory:" databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const notificationColumns = `notification_id, package_id, created_time, title, message`

// ListNotifications returns every notification stored for the user.
// No ordering is guaranteed.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	userID string,
) ([]model.ToastNotification, error) {
	notifications := []model.ToastNotification{}
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT "+notificationColumns+" FROM toast_notifications WHERE user_id = ?",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return notifications, nil
}

// ListNotificationsByPackage returns the notifications owned by a package.
// No ordering is guaranteed.
func (s *SQLiteStore) ListNotificationsByPackage(
	ctx context.Context,
	packageID, userID string,
) ([]model.ToastNotification, error) {
	notifications := []model.ToastNotification{}
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT "+notificationColumns+
			" FROM toast_notifications WHERE user_id = ? AND package_id = ?",
		userID, packageID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for package %s: %w", packageID, err)
	}
	return notifications, nil
}

// UpsertNotification stores a notification together with its package
// profile in one transaction, so a notification never references a
// profile that failed to persist.
func (s *SQLiteStore) UpsertNotification(
	ctx context.Context,
	n model.ToastNotification,
	profile model.PackageProfile,
	userID string,
) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := upsertPackage(ctx, tx, profile, userID); err != nil {
			return err
		}
		return upsertNotification(ctx, tx, n, userID)
	})
}

// UpsertNotifications inserts or overwrites a batch of notifications.
func (s *SQLiteStore) UpsertNotifications(
	ctx context.Context,
	ns []model.ToastNotification,
	userID string,
) error {
	if len(ns) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, n := range ns {
			if err := upsertNotification(ctx, tx, n, userID); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountNotificationsByPackage returns the number of stored notifications
// per package id. Packages without notifications are absent.
func (s *SQLiteStore) CountNotificationsByPackage(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT package_id, COUNT(*) FROM toast_notifications
		WHERE user_id = ?
		GROUP BY package_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("counting notifications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			packageID string
			count     int
		)
		if err := rows.Scan(&packageID, &count); err != nil {
			return nil, fmt.Errorf("scanning notification count: %w", err)
		}
		counts[packageID] = count
	}
	return counts, rows.Err()
}

// DeleteNotification removes a single notification. Deleting a missing
// notification is not an error.
func (s *SQLiteStore) DeleteNotification(
	ctx context.Context,
	packageID, notificationID, userID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM toast_notifications
		WHERE user_id = ? AND package_id = ? AND notification_id = ?`,
		userID, packageID, notificationID)
	if err != nil {
		return fmt.Errorf("deleting notification %s/%s: %w", packageID, notificationID, err)
	}
	return nil
}

// upsertNotification writes one notification row, overwriting title,
// message and timestamp when the key already exists.
func upsertNotification(
	ctx context.Context,
	ex sqlx.ExecerContext,
	n model.ToastNotification,
	userID string,
) error {
	if n.PackageID == "" || n.NotificationID == "" {
		return fmt.Errorf("notification %q: package id and notification id are required", n.Key())
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO toast_notifications (
			user_id, package_id, notification_id, created_time, title, message
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, package_id, notification_id) DO UPDATE SET
			created_time = excluded.created_time,
			title = excluded.title,
			message = excluded.message`,
		userID, n.PackageID, n.NotificationID, n.CreatedTime.UTC(),
		n.NotificationTitle, n.NotificationMessage,
	)
	if err != nil {
		return fmt.Errorf("upserting notification %s: %w", n.Key(), err)
	}
	return nil
}

// isNoRows reports whether err means a point lookup found nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

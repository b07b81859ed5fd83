package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/toastcenter/internal/model"
)

const spaceColumns = `space_id, name, description, icon_path, is_default`

// CreateSpace inserts a new space. A missing id is generated.
func (s *SQLiteStore) CreateSpace(
	ctx context.Context,
	space model.Space,
	userID string,
) (model.Space, error) {
	if strings.TrimSpace(space.SpaceName) == "" {
		return model.Space{}, fmt.Errorf("space name must not be empty")
	}
	if space.SpaceID == "" {
		space.SpaceID = uuid.New().String()
	}
	if err := insertSpace(ctx, s.db, space, userID); err != nil {
		return model.Space{}, err
	}
	return space, nil
}

// UpdateSpace renames or re-describes an existing space. The default flag
// is left untouched.
func (s *SQLiteStore) UpdateSpace(
	ctx context.Context,
	space model.Space,
	userID string,
) error {
	if strings.TrimSpace(space.SpaceName) == "" {
		return fmt.Errorf("space name must not be empty")
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE spaces SET name = ?, description = ?, icon_path = ?
		WHERE user_id = ? AND space_id = ?`,
		space.SpaceName, space.SpaceDescription, space.SpaceIconLogoPath,
		userID, space.SpaceID,
	)
	if err != nil {
		return fmt.Errorf("updating space %s: %w", space.SpaceID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating space %s: %w", space.SpaceID, ErrSpaceNotFound)
	}
	return nil
}

// DeleteSpace removes a space and its package mappings. The default space
// is refused with ErrDefaultSpace; a missing space is a no-op.
func (s *SQLiteStore) DeleteSpace(ctx context.Context, spaceID, userID string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		space, err := getSpace(ctx, tx, spaceID, userID)
		if err != nil {
			return err
		}
		if space == nil {
			return nil
		}
		if space.IsDefaultWorkSpace {
			return fmt.Errorf("deleting space %s: %w", spaceID, ErrDefaultSpace)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM space_mappers WHERE user_id = ? AND space_id = ?",
			userID, spaceID); err != nil {
			return fmt.Errorf("clearing mappings of space %s: %w", spaceID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM spaces WHERE user_id = ? AND space_id = ?",
			userID, spaceID); err != nil {
			return fmt.Errorf("deleting space %s: %w", spaceID, err)
		}
		return nil
	})
}

// GetSpace retrieves a space by id. A miss returns nil without error.
func (s *SQLiteStore) GetSpace(
	ctx context.Context,
	spaceID, userID string,
) (*model.Space, error) {
	return getSpace(ctx, s.db, spaceID, userID)
}

// ListSpaces returns all spaces, default first, then by name.
func (s *SQLiteStore) ListSpaces(ctx context.Context, userID string) ([]model.Space, error) {
	spaces := []model.Space{}
	err := s.db.SelectContext(ctx, &spaces,
		"SELECT "+spaceColumns+` FROM spaces WHERE user_id = ?
		ORDER BY is_default DESC, name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying spaces: %w", err)
	}
	return spaces, nil
}

// EnsureDefaultSpace returns the user's default space, creating it with
// the given name when none exists yet.
func (s *SQLiteStore) EnsureDefaultSpace(
	ctx context.Context,
	userID, name string,
) (model.Space, error) {
	if strings.TrimSpace(name) == "" {
		return model.Space{}, fmt.Errorf("default space name must not be empty")
	}

	var space model.Space
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := sqlx.GetContext(ctx, tx, &space,
			"SELECT "+spaceColumns+` FROM spaces
			WHERE user_id = ? AND is_default = 1 LIMIT 1`, userID)
		if err == nil {
			return nil
		}
		if !isNoRows(err) {
			return fmt.Errorf("looking up default space: %w", err)
		}

		space = model.Space{
			SpaceID:            uuid.New().String(),
			SpaceName:          name,
			IsDefaultWorkSpace: true,
		}
		return insertSpace(ctx, tx, space, userID)
	})
	if err != nil {
		return model.Space{}, err
	}
	return space, nil
}

// AddToSpace maps a package into a space. Re-adding an existing pair is a
// no-op. An unknown package gets a minimal profile in the same transaction.
func (s *SQLiteStore) AddToSpace(
	ctx context.Context,
	spaceID, packageID, displayName, userID string,
) error {
	if spaceID == "" || packageID == "" {
		return fmt.Errorf("space id and package id are required")
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := getPackage(ctx, tx, packageID, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			profile := model.PackageProfile{
				PackageID:      packageID,
				AppDisplayName: displayName,
			}
			if err := upsertPackage(ctx, tx, profile, userID); err != nil {
				return err
			}
		}

		m := model.NewSpaceMapper(spaceID, packageID)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO space_mappers (user_id, id, space_id, package_id)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id, space_id, package_id) DO NOTHING`,
			userID, m.ID, m.SpaceID, m.PackageID)
		if err != nil {
			return fmt.Errorf("adding package %s to space %s: %w", packageID, spaceID, err)
		}
		return nil
	})
}

// RemoveFromSpace deletes the mapping of a package in a space. Removing a
// mapping that does not exist is not an error.
func (s *SQLiteStore) RemoveFromSpace(
	ctx context.Context,
	spaceID, packageID, userID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM space_mappers
		WHERE user_id = ? AND space_id = ? AND package_id = ?`,
		userID, spaceID, packageID)
	if err != nil {
		return fmt.Errorf("removing package %s from space %s: %w", packageID, spaceID, err)
	}
	return nil
}

// PackagesInSpace returns the profiles mapped into a space. Mappings whose
// package has no profile are dropped.
func (s *SQLiteStore) PackagesInSpace(
	ctx context.Context,
	spaceID, userID string,
) ([]model.PackageProfile, error) {
	profiles := []model.PackageProfile{}
	err := s.db.SelectContext(ctx, &profiles, `
		SELECT p.package_id, p.family_name, p.display_name, p.description, p.publisher, p.logo_path
		FROM space_mappers m
		INNER JOIN package_profiles p
			ON p.user_id = m.user_id AND p.package_id = m.package_id
		WHERE m.user_id = ? AND m.space_id = ?
		ORDER BY p.display_name COLLATE NOCASE`, userID, spaceID)
	if err != nil {
		return nil, fmt.Errorf("querying packages in space %s: %w", spaceID, err)
	}
	return profiles, nil
}

// ListSpaceMappers returns every space/package mapping for the user.
func (s *SQLiteStore) ListSpaceMappers(
	ctx context.Context,
	userID string,
) ([]model.SpaceMapper, error) {
	mappers := []model.SpaceMapper{}
	err := s.db.SelectContext(ctx, &mappers,
		"SELECT id, space_id, package_id FROM space_mappers WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("querying space mappings: %w", err)
	}
	return mappers, nil
}

func getSpace(
	ctx context.Context,
	q sqlx.QueryerContext,
	spaceID, userID string,
) (*model.Space, error) {
	var space model.Space
	err := sqlx.GetContext(ctx, q, &space,
		"SELECT "+spaceColumns+" FROM spaces WHERE user_id = ? AND space_id = ?",
		userID, spaceID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting space %s: %w", spaceID, err)
	}
	return &space, nil
}

func insertSpace(
	ctx context.Context,
	ex sqlx.ExecerContext,
	space model.Space,
	userID string,
) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO spaces (user_id, space_id, name, description, icon_path, is_default)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, space.SpaceID, space.SpaceName, space.SpaceDescription,
		space.SpaceIconLogoPath, boolToInt(space.IsDefaultWorkSpace),
	)
	if err != nil {
		return fmt.Errorf("creating space %q: %w", space.SpaceName, err)
	}
	return nil
}

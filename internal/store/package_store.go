package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/toastcenter/internal/model"
)

const packageColumns = `package_id, family_name, display_name, description, publisher, logo_path`

// GetPackage retrieves a package profile. A miss returns nil without error.
func (s *SQLiteStore) GetPackage(
	ctx context.Context,
	packageID, userID string,
) (*model.PackageProfile, error) {
	return getPackage(ctx, s.db, packageID, userID)
}

// ListPackages returns every package profile for the user, unordered.
func (s *SQLiteStore) ListPackages(
	ctx context.Context,
	userID string,
) ([]model.PackageProfile, error) {
	profiles := []model.PackageProfile{}
	err := s.db.SelectContext(ctx, &profiles,
		"SELECT "+packageColumns+" FROM package_profiles WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("querying package profiles: %w", err)
	}
	return profiles, nil
}

// UpsertPackage inserts a profile, or overwrites every field of an
// existing one.
func (s *SQLiteStore) UpsertPackage(
	ctx context.Context,
	profile model.PackageProfile,
	userID string,
) error {
	return upsertPackage(ctx, s.db, profile, userID)
}

func getPackage(
	ctx context.Context,
	q sqlx.QueryerContext,
	packageID, userID string,
) (*model.PackageProfile, error) {
	var profile model.PackageProfile
	err := sqlx.GetContext(ctx, q, &profile,
		"SELECT "+packageColumns+
			" FROM package_profiles WHERE user_id = ? AND package_id = ?",
		userID, packageID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting package %s: %w", packageID, err)
	}
	return &profile, nil
}

func upsertPackage(
	ctx context.Context,
	ex sqlx.ExecerContext,
	profile model.PackageProfile,
	userID string,
) error {
	if profile.PackageID == "" {
		return fmt.Errorf("package id is required")
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO package_profiles (
			user_id, package_id, family_name, display_name, description, publisher, logo_path
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, package_id) DO UPDATE SET
			family_name = excluded.family_name,
			display_name = excluded.display_name,
			description = excluded.description,
			publisher = excluded.publisher,
			logo_path = excluded.logo_path`,
		userID, profile.PackageID, profile.PackageFamilyName,
		profile.AppDisplayName, profile.AppDescription, profile.AppPublisher,
		profile.LogoFilePath,
	)
	if err != nil {
		return fmt.Errorf("upserting package %s: %w", profile.PackageID, err)
	}
	return nil
}

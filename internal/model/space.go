package model

// Space is a user-defined named grouping of packages.
type Space struct {
	SpaceID            string `json:"space_id" db:"space_id"`
	SpaceName          string `json:"space_name" db:"name"`
	SpaceDescription   string `json:"space_description" db:"description"`
	SpaceIconLogoPath  string `json:"space_icon_logo_path" db:"icon_path"`
	IsDefaultWorkSpace bool   `json:"is_default_workspace" db:"is_default"`
}

// SpaceMapper records that a package belongs to a space.
type SpaceMapper struct {
	ID        string `json:"id" db:"id"`
	SpaceID   string `json:"space_id" db:"space_id"`
	PackageID string `json:"package_id" db:"package_id"`
}

// NewSpaceMapper builds the join row for a (space, package) pair. The id
// is the concatenation of both ids; rows are keyed by the pair itself, since
// different pairs can concatenate to the same id.
func NewSpaceMapper(spaceID, packageID string) SpaceMapper {
	return SpaceMapper{
		ID:        spaceID + packageID,
		SpaceID:   spaceID,
		PackageID: packageID,
	}
}

package model

// PackageProfile describes an application that has produced notifications
// or has been added to a space.
type PackageProfile struct {
	PackageID         string `json:"package_id" db:"package_id"`
	PackageFamilyName string `json:"package_family_name" db:"family_name"`
	AppDisplayName    string `json:"app_display_name" db:"display_name"`
	AppDescription    string `json:"app_description" db:"description"`
	AppPublisher      string `json:"app_publisher,omitempty" db:"publisher"`

	// LogoFilePath is the local icon cache path, nil when no icon
	// could be extracted.
	LogoFilePath *string `json:"logo_file_path,omitempty" db:"logo_path"`
}

// Logo returns the icon path or an empty string.
func (p PackageProfile) Logo() string {
	if p.LogoFilePath == nil {
		return ""
	}
	return *p.LogoFilePath
}

// WithLogo returns a copy of the profile with the given icon path.
// An empty path clears it.
func (p PackageProfile) WithLogo(path string) PackageProfile {
	if path == "" {
		p.LogoFilePath = nil
		return p
	}
	p.LogoFilePath = &path
	return p
}

// Name returns the display name, falling back to the package id.
func (p PackageProfile) Name() string {
	if p.AppDisplayName != "" {
		return p.AppDisplayName
	}
	return p.PackageID
}

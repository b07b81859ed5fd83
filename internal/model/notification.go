package model

import "time"

// ToastNotification is a single notification captured from the platform
// listener. The pair (PackageID, NotificationID) identifies it.
type ToastNotification struct {
	// NotificationID is the platform-assigned id, unique within a package.
	NotificationID string `json:"notification_id" db:"notification_id"`

	// PackageID links this notification to its owning PackageProfile.
	PackageID string `json:"package_id" db:"package_id"`

	// CreatedTime is the platform timestamp of the notification.
	CreatedTime time.Time `json:"created_time" db:"created_time"`

	// NotificationTitle is the first text element of the toast binding.
	NotificationTitle string `json:"title" db:"title"`

	// NotificationMessage holds every text element joined by newlines.
	NotificationMessage string `json:"message" db:"message"`

	// Priority is the effective priority resolved at read time.
	// It is not persisted.
	Priority Priority `json:"priority,omitempty" db:"-"`
}

// Key returns the globally unique identity of the notification.
func (n ToastNotification) Key() string {
	return n.PackageID + "/" + n.NotificationID
}

// Package capture turns platform notification events into stored
// notifications and package profiles.
package capture

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_capture.go -package=mocks github.com/nhle/toastcenter/internal/capture Listener,IconSource,Store

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/nhle/toastcenter/internal/model"
)

var (
	// ErrAccessDenied means the user refused notification access.
	ErrAccessDenied = errors.New("notification access denied")

	// ErrAccessUnspecified means the access prompt was dismissed without
	// an answer.
	ErrAccessUnspecified = errors.New("notification access not granted")

	// ErrListenerUnsupported means the platform has no notification
	// listener.
	ErrListenerUnsupported = errors.New("notification listener not supported")
)

// AccessStatus is the outcome of a listener access request.
type AccessStatus int

const (
	AccessUnspecified AccessStatus = iota
	AccessAllowed
	AccessDenied
)

func (s AccessStatus) String() string {
	switch s {
	case AccessAllowed:
		return "allowed"
	case AccessDenied:
		return "denied"
	default:
		return "unspecified"
	}
}

// EventKind distinguishes new notifications from changed ones.
type EventKind int

const (
	EventAdded EventKind = iota
	EventChanged
)

func (k EventKind) String() string {
	if k == EventChanged {
		return "changed"
	}
	return "added"
}

// AppInfo is the identity of the app that raised a notification.
type AppInfo struct {
	DisplayName string `json:"display_name"`
	FamilyName  string `json:"family_name"`
	AppID       string `json:"app_id"`
	Publisher   string `json:"publisher,omitempty"`
}

// RawNotification is a notification as delivered by the platform.
type RawNotification struct {
	ID           uint32    `json:"id"`
	App          AppInfo   `json:"app"`
	CreatedTime  time.Time `json:"created_time"`
	TextElements []string  `json:"text"`
}

// Event is a single listener callback. Added events carry their payload;
// Changed events only carry the id and are re-fetched.
type Event struct {
	Kind           EventKind
	NotificationID uint32
	Payload        *RawNotification
}

// Listener is the platform notification source.
type Listener interface {
	// RequestAccess asks the user for permission to read notifications.
	RequestAccess(ctx context.Context) (AccessStatus, error)

	// Events delivers notification callbacks. The channel is closed when
	// the listener stops.
	Events() <-chan Event

	// Notification re-fetches the current payload of a notification.
	// A notification that no longer exists yields nil without error.
	Notification(ctx context.Context, id uint32) (*RawNotification, error)
}

// IconSource opens an app's logo stream at the requested edge size.
type IconSource interface {
	Logo(ctx context.Context, app AppInfo, size int) (io.ReadCloser, error)
}

// IconSaver persists icon streams and reports where they were written.
type IconSaver interface {
	Save(name string, r io.Reader) (string, error)
	Size() int
}

// Store is the persistence the pipeline needs.
type Store interface {
	UpsertNotification(ctx context.Context, n model.ToastNotification, profile model.PackageProfile, userID string) error
	GetCustomPriority(ctx context.Context, packageID, userID string) (*model.CustomPriorityApp, error)
}

// DerivePackageID picks a stable package id for an app: the package family
// name, else the executable stem of the app id, else the display name.
func DerivePackageID(app AppInfo) string {
	if id := strings.TrimSpace(app.FamilyName); id != "" {
		return id
	}
	if id := strings.TrimSpace(app.AppID); id != "" {
		if !strings.ContainsAny(id, `/\`) && !strings.HasSuffix(strings.ToLower(id), ".exe") {
			return id
		}
		base := id[strings.LastIndexAny(id, `/\`)+1:]
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
			return stem
		}
	}
	return strings.TrimSpace(app.DisplayName)
}

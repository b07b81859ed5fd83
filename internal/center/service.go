// Package center answers the grouped views of stored notifications: per
// app, per space, and across everything.
package center

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	"github.com/nhle/toastcenter/internal/store"
)

// SpaceStats is the aggregate of one space.
type SpaceStats struct {
	AppCount          int
	NotificationCount int
}

// SpaceSummary is a space together with its statistics.
type SpaceSummary struct {
	Space model.Space
	SpaceStats
}

// AppSummary is a package profile with its notification count and the
// priority its notifications are shown with.
type AppSummary struct {
	Package           model.PackageProfile
	NotificationCount int
	Priority          model.Priority
	Override          bool
}

// Service is the read and organise side of the notification center. It is
// scoped to a single user.
type Service struct {
	store  store.Store
	userID string
	logger *slog.Logger

	mu  sync.RWMutex
	dnd priority.DND
}

// NewService creates a Service for userID.
func NewService(s store.Store, userID string, dnd priority.DND, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		userID: userID,
		dnd:    dnd,
		logger: logger.With("component", "center"),
	}
}

// UserID returns the user the service is scoped to.
func (s *Service) UserID() string { return s.userID }

// DND returns the do-not-disturb policy.
func (s *Service) DND() priority.DND {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dnd
}

// SetDND replaces the do-not-disturb policy.
func (s *Service) SetDND(d priority.DND) {
	s.mu.Lock()
	s.dnd = d
	s.mu.Unlock()
	s.logger.Info("do-not-disturb changed", "enabled", d.Enabled, "threshold", d.Threshold)
}

// NotificationsForPackage returns a package's notifications newest first.
func (s *Service) NotificationsForPackage(ctx context.Context, packageID string) ([]model.ToastNotification, error) {
	ns, err := s.store.ListNotificationsByPackage(ctx, packageID, s.userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachPriorities(ctx, ns); err != nil {
		return nil, err
	}
	SortNewestFirst(ns)
	return ns, nil
}

// AllNotifications returns every stored notification newest first.
func (s *Service) AllNotifications(ctx context.Context) ([]model.ToastNotification, error) {
	ns, err := s.store.ListNotifications(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachPriorities(ctx, ns); err != nil {
		return nil, err
	}
	SortNewestFirst(ns)
	return ns, nil
}

// NotificationsInSpace returns the notifications of every package mapped
// into a space, newest first.
func (s *Service) NotificationsInSpace(ctx context.Context, spaceID string) ([]model.ToastNotification, error) {
	profiles, err := s.store.PackagesInSpace(ctx, spaceID, s.userID)
	if err != nil {
		return nil, err
	}
	var out []model.ToastNotification
	for _, p := range profiles {
		ns, err := s.store.ListNotificationsByPackage(ctx, p.PackageID, s.userID)
		if err != nil {
			return nil, err
		}
		out = append(out, ns...)
	}
	if err := s.attachPriorities(ctx, out); err != nil {
		return nil, err
	}
	SortNewestFirst(out)
	return out, nil
}

// PackagesInSpace returns the profiles mapped into a space.
func (s *Service) PackagesInSpace(ctx context.Context, spaceID string) ([]model.PackageProfile, error) {
	return s.store.PackagesInSpace(ctx, spaceID, s.userID)
}

// SpaceStatistics computes app and notification counts per space. Every
// known space is present; spaces without mappings report zeros.
func (s *Service) SpaceStatistics(ctx context.Context) (map[string]SpaceStats, error) {
	spaces, err := s.store.ListSpaces(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	mappers, err := s.store.ListSpaceMappers(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountNotificationsByPackage(ctx, s.userID)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]SpaceStats, len(spaces))
	for _, sp := range spaces {
		stats[sp.SpaceID] = SpaceStats{}
	}
	for _, m := range mappers {
		st := stats[m.SpaceID]
		st.AppCount++
		st.NotificationCount += counts[m.PackageID]
		stats[m.SpaceID] = st
	}
	return stats, nil
}

// SpacesWithCounts lists spaces, default first, each with its statistics.
func (s *Service) SpacesWithCounts(ctx context.Context) ([]SpaceSummary, error) {
	spaces, err := s.store.ListSpaces(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.SpaceStatistics(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SpaceSummary, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, SpaceSummary{Space: sp, SpaceStats: stats[sp.SpaceID]})
	}
	return out, nil
}

// Apps lists every known package with its notification count and
// effective priority, sorted by display name.
func (s *Service) Apps(ctx context.Context) ([]AppSummary, error) {
	profiles, err := s.store.ListPackages(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountNotificationsByPackage(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.overrides(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AppSummary, 0, len(profiles))
	for _, p := range profiles {
		o := overrides[p.PackageID]
		out = append(out, AppSummary{
			Package:           p,
			NotificationCount: counts[p.PackageID],
			Priority:          resolve(o, p),
			Override:          o != nil && o.IsEnabled,
		})
	}
	slices.SortStableFunc(out, func(a, b AppSummary) int {
		return cmp.Compare(strings.ToLower(a.Package.Name()), strings.ToLower(b.Package.Name()))
	})
	return out, nil
}

// EnsureDefaultSpace returns the default space, creating it with name on
// first use.
func (s *Service) EnsureDefaultSpace(ctx context.Context, name string) (model.Space, error) {
	return s.store.EnsureDefaultSpace(ctx, s.userID, name)
}

// Spaces lists the user's spaces, default first.
func (s *Service) Spaces(ctx context.Context) ([]model.Space, error) {
	return s.store.ListSpaces(ctx, s.userID)
}

// CreateSpace adds a non-default space.
func (s *Service) CreateSpace(ctx context.Context, name, description string) (model.Space, error) {
	sp, err := s.store.CreateSpace(ctx, model.Space{
		SpaceName:        strings.TrimSpace(name),
		SpaceDescription: description,
	}, s.userID)
	if err != nil {
		return model.Space{}, err
	}
	s.logger.Info("space created", "space_id", sp.SpaceID, "name", sp.SpaceName)
	return sp, nil
}

// RenameSpace changes the name and description of a space.
func (s *Service) RenameSpace(ctx context.Context, spaceID, name, description string) error {
	existing, err := s.store.GetSpace(ctx, spaceID, s.userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("renaming space %s: %w", spaceID, store.ErrSpaceNotFound)
	}
	existing.SpaceName = strings.TrimSpace(name)
	existing.SpaceDescription = description
	return s.store.UpdateSpace(ctx, *existing, s.userID)
}

// DeleteSpace removes a space and its mappings. The default space is
// refused with store.ErrDefaultSpace.
func (s *Service) DeleteSpace(ctx context.Context, spaceID string) error {
	if err := s.store.DeleteSpace(ctx, spaceID, s.userID); err != nil {
		return err
	}
	s.logger.Info("space deleted", "space_id", spaceID)
	return nil
}

// Dismiss deletes a stored notification.
func (s *Service) Dismiss(ctx context.Context, n model.ToastNotification) error {
	return s.store.DeleteNotification(ctx, n.PackageID, n.NotificationID, s.userID)
}

// AddToSpace maps a package into a space.
func (s *Service) AddToSpace(ctx context.Context, spaceID, packageID, displayName string) error {
	if err := s.store.AddToSpace(ctx, spaceID, packageID, displayName, s.userID); err != nil {
		return err
	}
	s.logger.Info("package added to space", "space_id", spaceID, "package_id", packageID)
	return nil
}

// RemoveFromSpace unmaps a package from a space.
func (s *Service) RemoveFromSpace(ctx context.Context, spaceID, packageID string) error {
	if err := s.store.RemoveFromSpace(ctx, spaceID, packageID, s.userID); err != nil {
		return err
	}
	s.logger.Info("package removed from space", "space_id", spaceID, "package_id", packageID)
	return nil
}

// SetPriority stores an enabled override for a package.
func (s *Service) SetPriority(ctx context.Context, packageID string, p model.Priority) (model.CustomPriorityApp, error) {
	profile, err := s.store.GetPackage(ctx, packageID, s.userID)
	if err != nil {
		return model.CustomPriorityApp{}, err
	}
	app := model.CustomPriorityApp{
		PackageID: packageID,
		UserID:    s.userID,
		Priority:  p,
		IsEnabled: true,
	}
	if profile != nil {
		app.DisplayName = profile.Name()
		app.Publisher = profile.AppPublisher
	}
	stored, err := s.store.UpsertCustomPriority(ctx, app)
	if err != nil {
		return model.CustomPriorityApp{}, err
	}
	s.logger.Info("priority override set", "package_id", packageID, "priority", stored.Priority)
	return stored, nil
}

// ClearPriority drops the override of a package so the heuristic applies
// again.
func (s *Service) ClearPriority(ctx context.Context, packageID string) error {
	return s.store.DeleteCustomPriority(ctx, packageID, s.userID)
}

// EffectivePriority returns the priority a package's notifications are
// shown with.
func (s *Service) EffectivePriority(ctx context.Context, packageID string) (model.Priority, error) {
	override, err := s.store.GetCustomPriority(ctx, packageID, s.userID)
	if err != nil {
		return model.PriorityNone, err
	}
	profile, err := s.store.GetPackage(ctx, packageID, s.userID)
	if err != nil {
		return model.PriorityNone, err
	}
	p := model.PackageProfile{PackageID: packageID}
	if profile != nil {
		p = *profile
	}
	return resolve(override, p), nil
}

// Alerts reports whether p breaks through the current DND policy.
func (s *Service) Alerts(p model.Priority) bool {
	return s.DND().BreaksThrough(p)
}

// SortNewestFirst orders notifications by creation time, newest first.
// Ties fall back to the notification key so the order is stable.
func SortNewestFirst(ns []model.ToastNotification) {
	slices.SortFunc(ns, func(a, b model.ToastNotification) int {
		if c := b.CreatedTime.Compare(a.CreatedTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
}

func (s *Service) attachPriorities(ctx context.Context, ns []model.ToastNotification) error {
	if len(ns) == 0 {
		return nil
	}
	overrides, err := s.overrides(ctx)
	if err != nil {
		return err
	}
	profiles, err := s.store.ListPackages(ctx, s.userID)
	if err != nil {
		return err
	}
	byID := make(map[string]model.PackageProfile, len(profiles))
	for _, p := range profiles {
		byID[p.PackageID] = p
	}

	cache := make(map[string]model.Priority)
	for i := range ns {
		id := ns[i].PackageID
		p, ok := cache[id]
		if !ok {
			profile, found := byID[id]
			if !found {
				profile = model.PackageProfile{PackageID: id}
			}
			p = resolve(overrides[id], profile)
			cache[id] = p
		}
		ns[i].Priority = p
	}
	return nil
}

func (s *Service) overrides(ctx context.Context) (map[string]*model.CustomPriorityApp, error) {
	apps, err := s.store.ListCustomPriorities(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("loading priority overrides: %w", err)
	}
	out := make(map[string]*model.CustomPriorityApp, len(apps))
	for i := range apps {
		out[apps[i].PackageID] = &apps[i]
	}
	return out, nil
}

// resolve applies an override or classifies a stored profile the same way
// capture does.
func resolve(override *model.CustomPriorityApp, p model.PackageProfile) model.Priority {
	publisher := p.AppPublisher
	if publisher == "" && override != nil {
		publisher = override.Publisher
	}
	return priority.Resolve(override, p.AppDisplayName, publisher)
}

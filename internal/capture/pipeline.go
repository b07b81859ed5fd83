package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
)

// PlaceholderTitle is used when a notification has no text elements.
const PlaceholderTitle = "New notification"

const (
	defaultMaxInFlight = 8
	defaultBuffer      = 64
)

// State is the lifecycle state of a pipeline.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDenied
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDenied:
		return "denied"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Captured is a notification that was stored successfully, handed to the
// UI for display.
type Captured struct {
	Notification model.ToastNotification
	Package      model.PackageProfile
	Priority     model.Priority

	// Alert reports whether the notification breaks through
	// do-not-disturb.
	Alert bool
}

// Options configures a Pipeline.
type Options struct {
	Store    Store
	Listener Listener
	UserID   string

	// Icons and Cache are optional. Without both, profiles are stored
	// without a logo.
	Icons IconSource
	Cache IconSaver

	DND priority.DND

	// MaxInFlight bounds concurrent captures. Further events wait for a
	// free slot.
	MaxInFlight int

	// Buffer sizes the channel returned by Captures.
	Buffer int

	Logger *slog.Logger
}

// Pipeline receives listener events and persists them. Failures are
// logged and the event dropped; nothing is retried.
type Pipeline struct {
	store       Store
	listener    Listener
	icons       IconSource
	cache       IconSaver
	userID      string
	dnd         priority.DND
	maxInFlight int
	captured    chan Captured
	logger      *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a Pipeline from opts.
func New(opts Options) *Pipeline {
	maxInFlight := opts.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:       opts.Store,
		listener:    opts.Listener,
		icons:       opts.Icons,
		cache:       opts.Cache,
		userID:      opts.UserID,
		dnd:         opts.DND,
		maxInFlight: maxInFlight,
		captured:    make(chan Captured, buffer),
		logger:      logger.With("component", "capture"),
	}
}

// Captures returns the channel successfully stored notifications are
// pushed to. Sends never block; when the buffer is full the newest item
// is dropped.
func (p *Pipeline) Captures() <-chan Captured {
	return p.captured
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

// Run requests listener access and then captures events until ctx is
// cancelled or the listener closes its event channel. A refused or
// unsupported listener ends the session before anything is captured.
// Run waits for in-flight captures before returning.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.listener == nil {
		p.setState(StateDenied)
		return ErrListenerUnsupported
	}

	status, err := p.listener.RequestAccess(ctx)
	if err != nil {
		p.setState(StateDenied)
		if errors.Is(err, ErrListenerUnsupported) {
			return err
		}
		return fmt.Errorf("requesting notification access: %w", err)
	}
	switch status {
	case AccessAllowed:
	case AccessDenied:
		p.setState(StateDenied)
		return ErrAccessDenied
	default:
		p.setState(StateDenied)
		return ErrAccessUnspecified
	}

	p.setState(StateRunning)
	defer p.setState(StateStopped)
	p.logger.Info("capture started", "user_id", p.userID, "max_in_flight", p.maxInFlight)

	var g errgroup.Group
	g.SetLimit(p.maxInFlight)
	defer g.Wait()

	events := p.listener.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				p.logger.Info("listener closed")
				return nil
			}
			// Blocks while maxInFlight captures run; the listener's
			// channel holds the backlog.
			g.Go(func() error {
				p.handle(ctx, ev)
				return nil
			})
		}
	}
}

// handle processes one event. Errors stop here.
func (p *Pipeline) handle(ctx context.Context, ev Event) {
	raw := ev.Payload
	if ev.Kind == EventChanged || raw == nil {
		fetched, err := p.listener.Notification(ctx, ev.NotificationID)
		if err != nil {
			p.logger.Warn("re-fetching notification failed",
				"notification_id", ev.NotificationID, "error", err)
			return
		}
		if fetched == nil {
			p.logger.Debug("notification gone before re-fetch",
				"notification_id", ev.NotificationID)
			return
		}
		raw = fetched
	}

	if _, err := p.Capture(ctx, *raw); err != nil {
		p.logger.Error("dropping notification",
			"notification_id", raw.ID, "app", raw.App.DisplayName, "kind", ev.Kind, "error", err)
	}
}

// Capture extracts, builds and persists one notification, then hands it
// to the UI channel. The storage write is not cancelled by ctx.
func (p *Pipeline) Capture(ctx context.Context, raw RawNotification) (Captured, error) {
	title, body := Extract(raw.TextElements)
	logo := p.saveIcon(ctx, raw.App)
	n, profile := Build(raw, title, body, logo)

	if n.PackageID == "" {
		return Captured{}, fmt.Errorf("notification %d has no app identity", raw.ID)
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := p.store.UpsertNotification(writeCtx, n, profile, p.userID); err != nil {
		return Captured{}, fmt.Errorf("persisting notification %s: %w", n.Key(), err)
	}

	prio := p.resolvePriority(writeCtx, profile.PackageID, raw.App)
	n.Priority = prio

	c := Captured{
		Notification: n,
		Package:      profile,
		Priority:     prio,
		Alert:        p.dnd.BreaksThrough(prio),
	}
	p.publish(c)
	return c, nil
}

// Extract derives the title and body from toast text elements. The title
// is the first element; the body joins every element, title included.
func Extract(texts []string) (title, body string) {
	if len(texts) == 0 {
		return PlaceholderTitle, ""
	}
	return texts[0], strings.Join(texts, "\n")
}

// Build constructs the notification and profile rows for a raw event.
func Build(raw RawNotification, title, body, logo string) (model.ToastNotification, model.PackageProfile) {
	packageID := DerivePackageID(raw.App)

	created := raw.CreatedTime
	if created.IsZero() {
		created = time.Now()
	}

	n := model.ToastNotification{
		NotificationID:      strconv.FormatUint(uint64(raw.ID), 10),
		PackageID:           packageID,
		CreatedTime:         created.UTC(),
		NotificationTitle:   title,
		NotificationMessage: body,
	}
	profile := model.PackageProfile{
		PackageID:         packageID,
		PackageFamilyName: raw.App.FamilyName,
		AppDisplayName:    raw.App.DisplayName,
		AppPublisher:      raw.App.Publisher,
	}.WithLogo(logo)

	return n, profile
}

// saveIcon fetches and caches the app logo. Any failure yields an empty
// path; icons never block capture.
func (p *Pipeline) saveIcon(ctx context.Context, app AppInfo) string {
	if p.icons == nil || p.cache == nil {
		return ""
	}

	rc, err := p.icons.Logo(ctx, app, p.cache.Size())
	if err != nil {
		p.logger.Debug("logo unavailable", "app", app.DisplayName, "error", err)
		return ""
	}
	if rc == nil {
		return ""
	}
	defer rc.Close()

	path, err := p.cache.Save(app.DisplayName, rc)
	if err != nil {
		p.logger.Debug("caching logo failed", "app", app.DisplayName, "error", err)
		return ""
	}
	return path
}

func (p *Pipeline) resolvePriority(ctx context.Context, packageID string, app AppInfo) model.Priority {
	override, err := p.store.GetCustomPriority(ctx, packageID, p.userID)
	if err != nil {
		p.logger.Warn("loading custom priority failed", "package_id", packageID, "error", err)
		override = nil
	}
	return priority.Resolve(override, app.DisplayName, app.Publisher)
}

// publish hands c to the UI without blocking.
func (p *Pipeline) publish(c Captured) {
	select {
	case p.captured <- c:
	default:
		p.logger.Debug("capture buffer full, UI will pick it up on reload",
			"notification", c.Notification.Key())
	}
}

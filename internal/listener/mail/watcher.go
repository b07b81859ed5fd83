// Package mail turns new messages in an IMAP mailbox into notifications.
// Each account is one app: its package id is "mail:<username>" and each
// message UID is a notification id.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/toastcenter/internal/capture"
	"github.com/nhle/toastcenter/internal/credential"
	"github.com/nhle/toastcenter/internal/listener"
)

const (
	snippetLen          = 200
	defaultPollInterval = 120 * time.Second

	// fetchTimeout is the maximum time allowed for a single poll.
	fetchTimeout = 30 * time.Second
)

// Config describes the mailbox to watch.
type Config struct {
	Host         string
	Port         string
	Username     string
	TLS          bool
	Mailbox      string
	PollInterval time.Duration
}

// Message is the part of a mail message shown as a notification.
type Message struct {
	UID     uint32
	From    string
	Subject string
	Date    time.Time
	Snippet string
}

// Mailbox is the IMAP access the watcher needs.
type Mailbox interface {
	// Check authenticates and returns the next UID to be assigned.
	Check(ctx context.Context) (uint32, error)
	MessagesAfter(ctx context.Context, after uint32) ([]Message, error)
	Message(ctx context.Context, uid uint32) (*Message, error)
}

// Watcher polls a Mailbox and emits an added event per new message.
// Messages present before access was granted are not announced.
type Watcher struct {
	mailbox  Mailbox
	app      capture.AppInfo
	interval time.Duration
	events   chan capture.Event
	logger   *slog.Logger

	start sync.Once
	stop  sync.Once
	done  chan struct{}

	mu      sync.Mutex
	lastUID uint32
}

var _ capture.Listener = (*Watcher)(nil)

// NewWatcher creates a Watcher for the account described by cfg.
func NewWatcher(mb Mailbox, cfg Config, logger *slog.Logger) *Watcher {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		mailbox:  mb,
		app:      AppInfo(cfg.Username),
		interval: interval,
		events:   make(chan capture.Event, 16),
		logger:   logger.With("listener", "mail", "account", cfg.Username),
		done:     make(chan struct{}),
	}
}

// Secrets is where the account password is kept.
type Secrets interface {
	Get(key string) (string, error)
}

var _ Secrets = (*credential.Vault)(nil)

// Open builds a Watcher over IMAP, reading the password of cfg.Username
// from secrets.
func Open(cfg Config, secrets Secrets, logger *slog.Logger) (*Watcher, error) {
	if cfg.Host == "" || cfg.Username == "" {
		return nil, fmt.Errorf("mail listener needs a host and a username")
	}
	password, err := secrets.Get(credential.MailKey(cfg.Username))
	if err != nil {
		return nil, fmt.Errorf("loading password for %s: %w", cfg.Username, err)
	}
	return NewWatcher(NewIMAPClient(cfg, password), cfg, logger), nil
}

// AppInfo is the app identity notifications of an account are filed under.
func AppInfo(username string) capture.AppInfo {
	return capture.AppInfo{
		DisplayName: "Mail (" + username + ")",
		FamilyName:  "mail:" + username,
		AppID:       "mail:" + username,
		Publisher:   "IMAP",
	}
}

// RequestAccess logs in once. Rejected credentials count as denied access;
// other failures are returned.
func (w *Watcher) RequestAccess(ctx context.Context) (capture.AccessStatus, error) {
	next, err := w.mailbox.Check(ctx)
	if listener.IsAuthError(err) {
		w.logger.Warn("mailbox refused credentials", "error", err)
		return capture.AccessDenied, nil
	}
	if err != nil {
		return capture.AccessUnspecified, fmt.Errorf("checking mailbox: %w", err)
	}

	w.mu.Lock()
	if next > 0 {
		w.lastUID = next - 1
	}
	w.mu.Unlock()
	return capture.AccessAllowed, nil
}

// Events starts polling and returns the event channel. The channel is
// closed after Close.
func (w *Watcher) Events() <-chan capture.Event {
	w.start.Do(func() { go w.poll() })
	return w.events
}

// Notification re-fetches a message by UID.
func (w *Watcher) Notification(ctx context.Context, id uint32) (*capture.RawNotification, error) {
	msg, err := w.mailbox.Message(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}
	raw := w.toRaw(*msg)
	return &raw, nil
}

// Close stops polling.
func (w *Watcher) Close() error {
	w.stop.Do(func() { close(w.done) })
	return nil
}

// poll runs the polling loop until Close.
func (w *Watcher) poll() {
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	if !w.fetch() {
		return
	}
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if !w.fetch() {
				return
			}
		}
	}
}

// fetch emits every message newer than the last seen UID. It returns
// false once the watcher is closed.
func (w *Watcher) fetch() bool {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	w.mu.Lock()
	after := w.lastUID
	w.mu.Unlock()

	msgs, err := w.mailbox.MessagesAfter(ctx, after)
	if err != nil {
		w.logger.Warn("polling mailbox failed", "error", err)
		return true
	}

	for _, msg := range msgs {
		raw := w.toRaw(msg)
		select {
		case w.events <- capture.Event{Kind: capture.EventAdded, NotificationID: raw.ID, Payload: &raw}:
		case <-w.done:
			return false
		}

		w.mu.Lock()
		if msg.UID > w.lastUID {
			w.lastUID = msg.UID
		}
		w.mu.Unlock()
	}
	if len(msgs) > 0 {
		w.logger.Debug("new mail", "count", len(msgs))
	}
	return true
}

func (w *Watcher) toRaw(msg Message) capture.RawNotification {
	title := msg.From
	if title == "" {
		title = "New mail"
	}
	texts := []string{title}
	if msg.Subject != "" {
		texts = append(texts, msg.Subject)
	}
	if msg.Snippet != "" {
		texts = append(texts, msg.Snippet)
	}
	return capture.RawNotification{
		ID:           msg.UID,
		App:          w.app,
		CreatedTime:  msg.Date,
		TextElements: texts,
	}
}

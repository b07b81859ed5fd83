// Package replay feeds recorded notifications to the capture pipeline. Each
// input line is one JSON record:
//
//	{"kind":"added","id":42,"app":{"display_name":"DevTool","app_id":"devtool.exe"},
//	 "created_time":"2024-05-01T09:00:00Z","text":["Build finished","Project X succeeded"]}
//
// Kind defaults to "added". A "changed" record replaces the stored payload
// and is announced without it, so consumers re-fetch through Notification.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nhle/toastcenter/internal/capture"
)

// maxLine bounds a single record.
const maxLine = 1 << 20

// Record is one line of a replay file.
type Record struct {
	Kind string `json:"kind,omitempty"`
	capture.RawNotification
}

// Options configures a Listener.
type Options struct {
	// Access is the answer given to RequestAccess. Zero means allowed.
	Access capture.AccessStatus

	// Buffer sizes the events channel.
	Buffer int

	Logger *slog.Logger
}

// Listener replays records read from an io.Reader.
type Listener struct {
	r      io.Reader
	access capture.AccessStatus
	events chan capture.Event
	logger *slog.Logger

	start sync.Once
	done  chan struct{}
	stop  sync.Once

	mu       sync.Mutex
	payloads map[uint32]capture.RawNotification
	err      error
}

var _ capture.Listener = (*Listener)(nil)

// New creates a Listener over r. Reading starts on the first call to
// Events.
func New(r io.Reader, opts Options) *Listener {
	access := opts.Access
	if access == capture.AccessUnspecified {
		access = capture.AccessAllowed
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 16
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		r:        r,
		access:   access,
		events:   make(chan capture.Event, buffer),
		logger:   logger.With("listener", "replay"),
		done:     make(chan struct{}),
		payloads: make(map[uint32]capture.RawNotification),
	}
}

// RequestAccess returns the configured access status.
func (l *Listener) RequestAccess(context.Context) (capture.AccessStatus, error) {
	return l.access, nil
}

// Events starts reading and returns the event channel. The channel is
// closed at end of input or after Close.
func (l *Listener) Events() <-chan capture.Event {
	l.start.Do(func() { go l.read() })
	return l.events
}

// Notification returns the latest payload recorded for id, or nil.
func (l *Listener) Notification(_ context.Context, id uint32) (*capture.RawNotification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok := l.payloads[id]
	if !ok {
		return nil, nil
	}
	return &raw, nil
}

// Err returns the error that ended reading early, if any.
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close stops reading. Pending records are discarded.
func (l *Listener) Close() error {
	l.stop.Do(func() { close(l.done) })
	return nil
}

func (l *Listener) read() {
	defer close(l.events)

	scanner := bufio.NewScanner(l.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ev, err := l.parse(text)
		if err != nil {
			l.logger.Warn("skipping record", "line", line, "error", err)
			continue
		}

		select {
		case l.events <- ev:
		case <-l.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		l.mu.Lock()
		l.err = fmt.Errorf("reading replay input: %w", err)
		l.mu.Unlock()
		l.logger.Error("replay input failed", "line", line, "error", err)
	}
}

// parse decodes a record and stores its payload for re-fetching.
func (l *Listener) parse(text string) (capture.Event, error) {
	var rec Record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return capture.Event{}, fmt.Errorf("decoding record: %w", err)
	}

	var kind capture.EventKind
	switch strings.ToLower(rec.Kind) {
	case "", "added":
		kind = capture.EventAdded
	case "changed":
		kind = capture.EventChanged
	default:
		return capture.Event{}, fmt.Errorf("unknown kind %q", rec.Kind)
	}

	raw := rec.RawNotification
	l.mu.Lock()
	l.payloads[raw.ID] = raw
	l.mu.Unlock()

	ev := capture.Event{Kind: kind, NotificationID: raw.ID}
	if kind == capture.EventAdded {
		ev.Payload = &raw
	}
	return ev, nil
}

package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/toastcenter/internal/capture"
	"github.com/nhle/toastcenter/internal/listener"
)

type fakeMailbox struct {
	mu       sync.Mutex
	checkErr error
	next     uint32
	messages []Message
	afters   []uint32
}

func (f *fakeMailbox) Check(context.Context) (uint32, error) {
	return f.next, f.checkErr
}

func (f *fakeMailbox) MessagesAfter(_ context.Context, after uint32) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afters = append(f.afters, after)
	var out []Message
	for _, m := range f.messages {
		if m.UID > after {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMailbox) Message(_ context.Context, uid uint32) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.UID == uid {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeMailbox) add(m Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
}

type fakeSecrets map[string]string

func (f fakeSecrets) Get(key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func next(t *testing.T, ch <-chan capture.Event) capture.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return capture.Event{}
	}
}

func TestWatcherAnnouncesOnlyNewMail(t *testing.T) {
	mb := &fakeMailbox{
		next:     11,
		messages: []Message{{UID: 10, From: "Old", Subject: "already there"}},
	}
	w := NewWatcher(mb, Config{Username: "me@example.com", PollInterval: 10 * time.Millisecond}, nil)
	defer w.Close()

	status, err := w.RequestAccess(context.Background())
	require.NoError(t, err)
	require.Equal(t, capture.AccessAllowed, status)

	date := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mb.add(Message{UID: 11, From: "Alice", Subject: "Lunch?", Date: date, Snippet: "Noon at the usual place"})

	ev := next(t, w.Events())
	assert.Equal(t, capture.EventAdded, ev.Kind)
	require.NotNil(t, ev.Payload)
	assert.Equal(t, uint32(11), ev.Payload.ID)
	assert.Equal(t, []string{"Alice", "Lunch?", "Noon at the usual place"}, ev.Payload.TextElements)
	assert.Equal(t, "mail:me@example.com", capture.DerivePackageID(ev.Payload.App))
	assert.True(t, ev.Payload.CreatedTime.Equal(date))

	mb.add(Message{UID: 12, Subject: "no sender"})
	ev = next(t, w.Events())
	assert.Equal(t, []string{"New mail", "no sender"}, ev.Payload.TextElements)
}

func TestWatcherDeniedOnAuthError(t *testing.T) {
	mb := &fakeMailbox{checkErr: &listener.AuthError{Listener: listener.KindMail, Message: "bad password"}}
	w := NewWatcher(mb, Config{Username: "me"}, nil)

	status, err := w.RequestAccess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, capture.AccessDenied, status)
}

func TestWatcherNetworkErrorIsReturned(t *testing.T) {
	mb := &fakeMailbox{checkErr: errors.New("connection refused")}
	w := NewWatcher(mb, Config{Username: "me"}, nil)

	_, err := w.RequestAccess(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestWatcherNotification(t *testing.T) {
	mb := &fakeMailbox{messages: []Message{{UID: 3, From: "Bob"}}}
	w := NewWatcher(mb, Config{Username: "me"}, nil)

	raw, err := w.Notification(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, []string{"Bob"}, raw.TextElements)

	raw, err = w.Notification(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestWatcherCloseEndsEvents(t *testing.T) {
	w := NewWatcher(&fakeMailbox{}, Config{Username: "me", PollInterval: time.Hour}, nil)
	ch := w.Events()
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestOpenReadsPassword(t *testing.T) {
	cfg := Config{Host: "imap.example.com", Port: "993", Username: "me", TLS: true}

	w, err := Open(cfg, fakeSecrets{"mail-me": "secret"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, w)

	_, err = Open(cfg, fakeSecrets{}, nil)
	assert.Error(t, err)

	_, err = Open(Config{Username: "me"}, fakeSecrets{"mail-me": "secret"}, nil)
	assert.Error(t, err)
}

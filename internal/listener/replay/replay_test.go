package replay

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/toastcenter/internal/capture"
)

const input = `
# build server
{"id":42,"app":{"display_name":"DevTool","app_id":"devtool.exe"},"created_time":"2024-05-01T09:00:00Z","text":["Build finished","Project X succeeded"]}
not json
{"kind":"changed","id":42,"app":{"display_name":"DevTool"},"text":["Build failed"]}
{"kind":"removed","id":1}
`

func drain(t *testing.T, ch <-chan capture.Event) []capture.Event {
	t.Helper()
	var out []capture.Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("events channel was not closed")
		}
	}
}

func TestReplayEvents(t *testing.T) {
	l := New(strings.NewReader(input), Options{})

	status, err := l.RequestAccess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, capture.AccessAllowed, status)

	evs := drain(t, l.Events())
	require.Len(t, evs, 2)

	added := evs[0]
	assert.Equal(t, capture.EventAdded, added.Kind)
	require.NotNil(t, added.Payload)
	assert.Equal(t, uint32(42), added.Payload.ID)
	assert.Equal(t, "DevTool", added.Payload.App.DisplayName)
	assert.Equal(t, []string{"Build finished", "Project X succeeded"}, added.Payload.TextElements)
	assert.True(t, added.Payload.CreatedTime.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))

	changed := evs[1]
	assert.Equal(t, capture.EventChanged, changed.Kind)
	assert.Nil(t, changed.Payload)

	raw, err := l.Notification(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, []string{"Build failed"}, raw.TextElements)

	missing, err := l.Notification(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.NoError(t, l.Err())
}

func TestReplayConfiguredAccess(t *testing.T) {
	l := New(strings.NewReader(""), Options{Access: capture.AccessDenied})
	status, err := l.RequestAccess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, capture.AccessDenied, status)
}

func TestReplayClose(t *testing.T) {
	pr, pw := io.Pipe()

	l := New(pr, Options{Buffer: 1})
	ch := l.Events()

	go func() {
		for i := 0; i < 3; i++ {
			_, _ = pw.Write([]byte(`{"id":1,"app":{"display_name":"A"}}` + "\n"))
		}
	}()

	<-ch
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	require.NoError(t, pw.Close())
	assert.LessOrEqual(t, len(drain(t, ch)), 2)
}

func TestIconDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DevTool.jpg"), []byte("jpeg"), 0o644))

	d := IconDir{Dir: dir}
	rc, err := d.Logo(context.Background(), capture.AppInfo{DisplayName: "DevTool"}, 64)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "jpeg", string(data))

	_, err = d.Logo(context.Background(), capture.AppInfo{DisplayName: "Other"}, 64)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

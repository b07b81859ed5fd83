package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/toastcenter/internal/keys"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/ui/notiflist"
)

func sample() notiflist.Item {
	return notiflist.Item{
		Notification: model.ToastNotification{
			PackageID:           "devtool.exe",
			NotificationID:      "42",
			CreatedTime:         time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			NotificationTitle:   "Build finished",
			NotificationMessage: "Build finished\nProject X succeeded",
			Priority:            model.PriorityLow,
		},
		AppName: "DevTool",
		Alert:   true,
	}
}

func TestViewShowsNotification(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	assert.Contains(t, m.View(), "No notification selected")

	m.SetItem(sample())
	view := m.View()
	assert.Contains(t, view, "Build finished")
	assert.Contains(t, view, "Project X succeeded")
	assert.Contains(t, view, "DevTool")
	assert.Contains(t, view, "devtool.exe")
	assert.Contains(t, view, "Low")
}

func TestEmptyMessage(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	it := sample()
	it.Notification.NotificationMessage = ""
	m.SetItem(it)
	assert.Contains(t, m.View(), "No message")
}

func TestKeys(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Nil(t, cmd, "nothing to dismiss")

	m.SetItem(sample())
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	dismiss, ok := cmd().(notiflist.DismissMsg)
	require.True(t, ok)
	assert.Equal(t, "devtool.exe/42", dismiss.Notification.Key())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, BackMsg{}, cmd())
}

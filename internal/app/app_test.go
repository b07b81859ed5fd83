package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/toastcenter/internal/capture"
	"github.com/nhle/toastcenter/internal/center"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	appsync "github.com/nhle/toastcenter/internal/sync"
	"github.com/nhle/toastcenter/internal/ui/notiflist"
	"github.com/nhle/toastcenter/internal/ui/settings"
	"github.com/nhle/toastcenter/internal/ui/sidebar"
	"github.com/nhle/toastcenter/tests/testutil"
)

func newTestModel(t *testing.T, opts Options) (Model, *center.Service) {
	t.Helper()
	s := testutil.NewTestStore(t)
	testutil.SeedNotifications(t, s, "slack", "Slack", 2)
	svc := center.NewService(s, testutil.TestUserID, priority.DND{Threshold: model.PriorityHigh}, nil)

	m := New(svc, appsync.New(make(chan capture.Captured), nil), opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), svc
}

func press(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch s {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestLoadGroupsAndNotifications(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	msg := m.loadGroups()()
	loaded, ok := msg.(groupsLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	require.Len(t, loaded.groups, 2)
	assert.Equal(t, 2, loaded.groups[0].Count)
	assert.Equal(t, "Slack", loaded.groups[1].Label)

	nmsg := m.loadNotifications(m.group)().(notificationsLoadedMsg)
	require.NoError(t, nmsg.err)
	require.Len(t, nmsg.items, 2)
	assert.Equal(t, "Slack", nmsg.items[0].AppName)
	assert.Equal(t, "2", nmsg.items[0].Notification.NotificationID)
}

func TestCaptureUpdatesHeaderAndStatus(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	next, cmd := m.Update(appsync.CaptureMsg{Captured: capture.Captured{
		Notification: model.ToastNotification{NotificationTitle: "Standup"},
		Package:      model.PackageProfile{PackageID: "teams", AppDisplayName: "Teams"},
		Priority:     model.PriorityMedium,
	}})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.newCount)
	assert.Equal(t, "Teams: Standup", m.statusMsg)
	assert.Contains(t, m.View(), "[1 new]")
}

func TestCaptureHeldBackByDND(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	svc.SetDND(priority.DND{Enabled: true, Threshold: model.PriorityHigh})

	next, _ := m.Update(appsync.CaptureMsg{Captured: capture.Captured{
		Notification: model.ToastNotification{NotificationTitle: "lol"},
		Package:      model.PackageProfile{PackageID: "games"},
		Priority:     model.PriorityLow,
	}})
	m = next.(Model)
	assert.Equal(t, 1, m.newCount)
	assert.Empty(t, m.statusMsg)
	assert.Contains(t, m.captureStatus(), "DND (High+)")
}

func TestToggleDNDPersists(t *testing.T) {
	var saved []priority.DND
	m, svc := newTestModel(t, Options{SaveDND: func(d priority.DND) error {
		saved = append(saved, d)
		return nil
	}})

	_, cmd := press(t, m, "z")
	require.NotNil(t, cmd)
	assert.True(t, svc.DND().Enabled)

	done := cmd().(actionDoneMsg)
	require.NoError(t, done.err)
	assert.Contains(t, done.status, "High and above")
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Enabled)
}

func TestToggleDNDSaveError(t *testing.T) {
	m, _ := newTestModel(t, Options{SaveDND: func(priority.DND) error {
		return errors.New("read-only")
	}})
	_, cmd := press(t, m, "z")
	done := cmd().(actionDoneMsg)
	assert.ErrorContains(t, done.err, "read-only")
}

func TestCyclePriorityOfSelectedNotification(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	ctx := context.Background()

	loaded := m.loadNotifications(m.group)()
	next, _ := m.Update(loaded)
	m = next.(Model)
	m, _ = press(t, m, "tab")
	require.Equal(t, paneList, m.focus)

	// Slack classifies as Medium, so the next step is High.
	_, cmd := press(t, m, "p")
	require.NotNil(t, cmd)
	done := cmd().(actionDoneMsg)
	require.NoError(t, done.err)
	p, err := svc.EffectivePriority(ctx, "slack")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, p)

	_, cmd = press(t, m, "P")
	require.NoError(t, cmd().(actionDoneMsg).err)
	p, err = svc.EffectivePriority(ctx, "slack")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, p)
}

func TestPriorityKeyIgnoredOnAllGroup(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	_, cmd := press(t, m, "p")
	assert.Nil(t, cmd)
}

func TestDismissSelected(t *testing.T) {
	m, svc := newTestModel(t, Options{})

	next, _ := m.Update(m.loadNotifications(m.group)())
	m = next.(Model)
	m, _ = press(t, m, "tab")

	_, cmd := press(t, m, "d")
	require.NotNil(t, cmd)
	dismiss, ok := cmd().(notiflist.DismissMsg)
	require.True(t, ok)

	_, cmd = m.Update(dismiss)
	require.NoError(t, cmd().(actionDoneMsg).err)

	ns, err := svc.AllNotifications(context.Background())
	require.NoError(t, err)
	assert.Len(t, ns, 1)
}

func TestOpenDetailAndBack(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	next, _ := m.Update(m.loadNotifications(m.group)())
	m = next.(Model)
	m, _ = press(t, m, "tab")

	m, _ = press(t, m, "enter")
	require.Equal(t, ViewDetail, m.currentView)
	it, ok := m.detailView.Item()
	require.True(t, ok)
	assert.Equal(t, "2", it.Notification.NotificationID)
	assert.Contains(t, m.View(), "Slack #2")

	_, cmd := press(t, m, "esc")
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	assert.Equal(t, ViewMain, next.(Model).currentView)
}

func TestDismissFromDetail(t *testing.T) {
	m, svc := newTestModel(t, Options{})

	next, _ := m.Update(m.loadNotifications(m.group)())
	m = next.(Model)
	m, _ = press(t, m, "tab")
	m, _ = press(t, m, "enter")

	_, cmd := press(t, m, "d")
	require.NotNil(t, cmd)
	next, cmd = m.Update(cmd())
	assert.Equal(t, ViewMain, next.(Model).currentView)
	require.NoError(t, cmd().(actionDoneMsg).err)

	ns, err := svc.AllNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "1", ns[0].NotificationID)
}

func TestApplySettings(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	m.currentView = ViewSettings

	cfg := m.cfg
	cfg.DND = model.DNDConfig{Enabled: true, Threshold: "medium"}
	cfg.Display.GroupBy = "space"
	cfg.Mail.Host = "imap.example.com"

	next, cmd := m.Update(settings.SavedMsg{Config: cfg})
	m = next.(Model)
	require.NotNil(t, cmd)

	assert.Equal(t, ViewMain, m.currentView)
	assert.Equal(t, priority.DND{Enabled: true, Threshold: model.PriorityMedium}, svc.DND())
	assert.Equal(t, sidebar.ModeSpaces, m.sidebar.Mode())
	assert.Contains(t, m.statusMsg, "apply on restart")
	assert.Equal(t, cfg, m.cfg)
}

func TestSettingsKeyOpensForm(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "c")
	assert.Equal(t, ViewSettings, m.currentView)
	assert.Contains(t, m.View(), "Settings")

	next, _ := m.Update(settings.CloseMsg{})
	assert.Equal(t, ViewMain, next.(Model).currentView)
}

func TestStaleLoadIgnored(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.group = sidebar.Group{Kind: sidebar.KindApp, ID: "slack"}

	next, cmd := m.Update(notificationsLoadedMsg{group: sidebar.Group{Kind: sidebar.KindAll}})
	assert.Nil(t, cmd)
	assert.Zero(t, next.(Model).list.Len())
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "?")
	assert.Equal(t, ViewHelp, m.currentView)
	m, _ = press(t, m, "?")
	assert.Equal(t, ViewMain, m.currentView)
}

func TestNextPriority(t *testing.T) {
	assert.Equal(t, model.PriorityMedium, nextPriority(model.PriorityLow))
	assert.Equal(t, model.PriorityHigh, nextPriority(model.PriorityMedium))
	assert.Equal(t, model.PriorityNone, nextPriority(model.PriorityHigh))
	assert.Equal(t, model.PriorityLow, nextPriority(model.PriorityNone))
}

func TestStoppedMessage(t *testing.T) {
	assert.Contains(t, stoppedMessage(capture.ErrAccessDenied), "denied")
	assert.Contains(t, stoppedMessage(capture.ErrListenerUnsupported), "not supported")
	assert.Contains(t, stoppedMessage(errors.New("boom")), "boom")
	assert.Equal(t, "Listener closed", stoppedMessage(nil))
}

// Package notiflist renders the notifications of the selected group,
// newest first, with a preview of the selected message.
package notiflist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/toastcenter/internal/keys"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	"github.com/nhle/toastcenter/internal/theme"
)

// previewHeight is the number of lines reserved for the message preview.
const previewHeight = 5

// DismissMsg asks the parent to delete a notification.
type DismissMsg struct {
	Notification model.ToastNotification
}

// Model is the notification list view component.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new notification list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, listHeight(height))
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Items builds list items, resolving app names from names and alerting
// against dnd.
func Items(ns []model.ToastNotification, names map[string]string, dnd priority.DND) []Item {
	out := make([]Item, len(ns))
	for i, n := range ns {
		name := names[n.PackageID]
		if name == "" {
			name = n.PackageID
		}
		out[i] = Item{
			Notification: n,
			AppName:      name,
			Alert:        dnd.BreaksThrough(n.Priority),
		}
	}
	return out
}

// SetItems replaces the list contents and title. The cursor stays on the
// same notification when it is still present.
func (m *Model) SetItems(title string, items []Item) tea.Cmd {
	var selectedKey string
	if it, ok := m.Selected(); ok {
		selectedKey = it.Notification.Key()
	}

	m.list.Title = title
	li := make([]list.Item, len(items))
	idx := 0
	for i, it := range items {
		li[i] = it
		if it.Notification.Key() == selectedKey {
			idx = i
		}
	}
	cmd := m.list.SetItems(li)
	m.list.Select(idx)
	return cmd
}

// Selected returns the focused item.
func (m Model) Selected() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

// Len returns the number of items shown.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Update handles messages for the list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Dismiss) {
		it, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return DismissMsg{Notification: it.Notification} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list and the preview of the selected message.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications here yet.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), m.preview())
}

func (m Model) preview() string {
	it, ok := m.Selected()
	if !ok {
		return ""
	}
	body := it.Notification.NotificationMessage
	if body == "" {
		body = it.Notification.NotificationTitle
	}
	// Two lines go to the border.
	maxLines := previewHeight - 2
	lines := strings.Split(body, "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], "…")
	}
	return theme.PanelStyle.
		Padding(0, 1).
		Width(max(m.width-2, 0)).
		Render(strings.Join(lines, "\n"))
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
}

func listHeight(height int) int {
	return max(height-previewHeight-1, 3)
}

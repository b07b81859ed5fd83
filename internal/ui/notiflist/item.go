package notiflist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/theme"
)

// now is replaced in tests.
var now = time.Now

// Item wraps a notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.ToastNotification
	AppName      string

	// Alert is false for notifications held back by do-not-disturb.
	Alert bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string {
	return i.AppName + " " + i.Notification.NotificationTitle
}

// Title returns the notification title for the list.
func (i Item) Title() string { return i.Notification.NotificationTitle }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	parts := []string{
		i.AppName,
		i.Notification.Priority.Label(),
		relativeTime(i.Notification.CreatedTime),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering notifications.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(it, index == m.Index()))
}

func renderLine(it Item, selected bool) string {
	marker := " "
	if it.Alert && it.Notification.Priority == model.PriorityHigh {
		marker = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("!")
	}

	app := theme.AppLabelStyle.Render(it.AppName)
	when := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(it.Notification.CreatedTime))

	line := fmt.Sprintf("%s %s %s %s  %s",
		marker,
		theme.PriorityBadge(it.Notification.Priority),
		app,
		it.Notification.NotificationTitle,
		when,
	)

	if !it.Alert {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("Jan 02")
	}
}

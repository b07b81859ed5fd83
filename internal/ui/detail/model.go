package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/toastcenter/internal/keys"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/theme"
	"github.com/nhle/toastcenter/internal/ui/notiflist"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model shows a single notification in full.
type Model struct {
	item     *notiflist.Item
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Dismiss):
			if m.item == nil {
				return m, nil
			}
			n := m.item.Notification
			return m, func() tea.Msg { return notiflist.DismissMsg{Notification: n} }
		}
	}

	// j/k, pgup/pgdn scroll
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.item == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notification selected")
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	if m.item == nil {
		return ""
	}
	it := m.item
	n := it.Notification

	var sections []string

	title := n.NotificationTitle
	if title == "" {
		title = "(no title)"
	}
	sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title))

	badges := []string{
		theme.AppLabelStyle.Render(it.AppName),
		theme.PriorityStyle(n.Priority).Render(n.Priority.Label()),
	}
	if it.Alert && n.Priority == model.PriorityHigh {
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorRed).Render("alert"))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-9s", label+":")), valStyle.Render(value)))
	}
	meta("Package", n.PackageID)
	meta("ID", n.NotificationID)
	if !n.CreatedTime.IsZero() {
		meta("Received", n.CreatedTime.Local().Format("2006-01-02 15:04"))
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", sep, "")

	body := n.NotificationMessage
	if strings.TrimSpace(body) == "" {
		body = lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("No message")
	}
	sections = append(sections, lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetItem updates the notification being displayed.
func (m *Model) SetItem(it notiflist.Item) {
	m.item = &it
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Item returns the notification being displayed.
func (m Model) Item() (notiflist.Item, bool) {
	if m.item == nil {
		return notiflist.Item{}, false
	}
	return *m.item, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.item != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

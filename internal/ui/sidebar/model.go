// Package sidebar lists the groups notifications can be browsed by: all
// of them, one app, or one space.
package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/toastcenter/internal/center"
	"github.com/nhle/toastcenter/internal/keys"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/theme"
)

// Kind is what a group selects.
type Kind int

const (
	KindAll Kind = iota
	KindApp
	KindSpace
)

// Mode is the grouping the sidebar shows below "All".
type Mode int

const (
	ModeApps Mode = iota
	ModeSpaces
)

// ParseMode maps the display.group_by config value to a Mode.
func ParseMode(s string) Mode {
	if s == "space" {
		return ModeSpaces
	}
	return ModeApps
}

func (m Mode) String() string {
	if m == ModeSpaces {
		return "spaces"
	}
	return "apps"
}

// Group is a sidebar entry.
type Group struct {
	Kind  Kind
	ID    string
	Label string
	Count int

	// Priority is set for app groups only.
	Priority model.Priority
}

// GroupSelectedMsg is sent when the user opens a group.
type GroupSelectedMsg struct {
	Group Group
}

// Model is the sidebar component.
type Model struct {
	keys        *keys.KeyMap
	mode        Mode
	groups      []Group
	selectedIdx int
	focused     bool
	width       int
	height      int
}

// New creates a sidebar in the given mode.
func New(k *keys.KeyMap, mode Mode, width, height int) Model {
	return Model{
		keys:    k,
		mode:    mode,
		groups:  []Group{{Kind: KindAll, Label: "All"}},
		focused: true,
		width:   width,
		height:  height,
	}
}

// AppGroups builds the app grouping.
func AppGroups(total int, apps []center.AppSummary) []Group {
	out := []Group{{Kind: KindAll, Label: "All", Count: total}}
	for _, a := range apps {
		out = append(out, Group{
			Kind:     KindApp,
			ID:       a.Package.PackageID,
			Label:    a.Package.Name(),
			Count:    a.NotificationCount,
			Priority: a.Priority,
		})
	}
	return out
}

// SpaceGroups builds the space grouping.
func SpaceGroups(total int, spaces []center.SpaceSummary) []Group {
	out := []Group{{Kind: KindAll, Label: "All", Count: total}}
	for _, s := range spaces {
		out = append(out, Group{
			Kind:  KindSpace,
			ID:    s.Space.SpaceID,
			Label: s.Space.SpaceName,
			Count: s.NotificationCount,
		})
	}
	return out
}

// Mode returns the current grouping.
func (m Model) Mode() Mode { return m.mode }

// ToggleMode switches between app and space grouping and moves the
// cursor back to "All".
func (m *Model) ToggleMode() {
	if m.mode == ModeApps {
		m.mode = ModeSpaces
	} else {
		m.mode = ModeApps
	}
	m.selectedIdx = 0
}

// SetGroups replaces the entries. The cursor stays on the same group when
// it still exists.
func (m *Model) SetGroups(groups []Group) {
	cur, hasCur := m.Selected()
	m.groups = groups
	m.selectedIdx = 0
	if !hasCur {
		return
	}
	for i, g := range groups {
		if g.Kind == cur.Kind && g.ID == cur.ID {
			m.selectedIdx = i
			return
		}
	}
}

// Groups returns the current entries.
func (m Model) Groups() []Group { return m.groups }

// Selected returns the group under the cursor.
func (m Model) Selected() (Group, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.groups) {
		return Group{}, false
	}
	return m.groups[m.selectedIdx], true
}

// SetFocused marks whether key input goes to the sidebar.
func (m *Model) SetFocused(f bool) { m.focused = f }

// Update handles cursor movement and selection.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.groups) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(m.groups)
	case key.Matches(keyMsg, m.keys.Up):
		m.selectedIdx--
		if m.selectedIdx < 0 {
			m.selectedIdx = len(m.groups) - 1
		}
	case key.Matches(keyMsg, m.keys.Select):
		g := m.groups[m.selectedIdx]
		return m, func() tea.Msg { return GroupSelectedMsg{Group: g} }
	}
	return m, nil
}

// View renders the group list.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(titleStyle.Render("By " + m.mode.String()))
	b.WriteString("\n\n")

	labelWidth := max(m.width-8, 4)
	for i, g := range m.groups {
		label := truncate(g.Label, labelWidth)
		if g.Kind == KindApp {
			label = theme.PriorityBadge(g.Priority) + " " + label
		}
		line := fmt.Sprintf("%s %s", label, theme.CountStyle.Render(fmt.Sprintf("(%d)", g.Count)))

		switch {
		case i == m.selectedIdx && m.focused:
			b.WriteString(theme.SelectedItemStyle.Render(line))
		case i == m.selectedIdx:
			b.WriteString(theme.ListItemStyle.Bold(true).Render(line))
		default:
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

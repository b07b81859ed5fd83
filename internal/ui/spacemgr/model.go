// Package spacemgr is the space management screen: create, rename and
// delete spaces, and move apps in and out of them.
package spacemgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/toastcenter/internal/center"
	"github.com/nhle/toastcenter/internal/keys"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/store"
	"github.com/nhle/toastcenter/internal/theme"
)

// CloseMsg signals the parent to close the space manager.
type CloseMsg struct{}

// ChangedMsg signals that spaces or their members were modified.
type ChangedMsg struct{}

type spaceMode int

const (
	modeList spaceMode = iota
	modeForm
	modeConfirmDelete
	modeAddApp
	modeRemoveApp
)

type formBindings struct {
	name        string
	description string
	packageID   string
	confirm     bool
}

type loadedMsg struct {
	spaces  []center.SpaceSummary
	members map[string][]model.PackageProfile
	apps    []center.AppSummary
	err     error
}

type doneMsg struct {
	status string
	err    error
}

// Model is the Bubble Tea model for space management.
type Model struct {
	mode        spaceMode
	svc         *center.Service
	keys        *keys.KeyMap
	spaces      []center.SpaceSummary
	members     map[string][]model.PackageProfile
	apps        []center.AppSummary
	selectedIdx int
	editingID   string
	isNew       bool
	form        *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new space manager model.
func New(svc *center.Service, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    modeList,
		svc:     svc,
		keys:    k,
		members: map[string][]model.PackageProfile{},
		fb:      &formBindings{},
		width:   width, height: height,
	}
}

// Init loads spaces from the service.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.spaces = msg.spaces
		m.members = msg.members
		m.apps = msg.apps
		if m.selectedIdx >= len(m.spaces) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.spaces) - 1
		}
		return m, nil

	case doneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = msg.status
		}
		m.mode = modeList
		return m, tea.Batch(m.load(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Spaces):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.spaces) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.spaces)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.spaces) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.spaces) - 1
			}
		}
		return m, nil

	case msg.String() == "n":
		m.isNew = true
		m.editingID = ""
		m.fb.name = ""
		m.fb.description = ""
		return m.openForm(modeForm, m.buildForm())

	case msg.String() == "e":
		sp, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.isNew = false
		m.editingID = sp.Space.SpaceID
		m.fb.name = sp.Space.SpaceName
		m.fb.description = sp.Space.SpaceDescription
		return m.openForm(modeForm, m.buildForm())

	case msg.String() == "d":
		sp, ok := m.selected()
		if !ok {
			return m, nil
		}
		if sp.Space.IsDefaultWorkSpace {
			m.statusMsg = "The default space cannot be deleted"
			return m, nil
		}
		m.fb.confirm = false
		return m.openForm(modeConfirmDelete, m.buildConfirmForm(sp.Space))

	case key.Matches(msg, m.keys.AddToSpace):
		sp, ok := m.selected()
		if !ok {
			return m, nil
		}
		opts := m.addOptions(sp.Space.SpaceID)
		if len(opts) == 0 {
			m.statusMsg = "Every known app is already in this space"
			return m, nil
		}
		m.fb.packageID = opts[0].Value
		return m.openForm(modeAddApp, m.buildSelectForm("Add app to "+sp.Space.SpaceName, opts))

	case key.Matches(msg, m.keys.RemoveFromSpace):
		sp, ok := m.selected()
		if !ok {
			return m, nil
		}
		opts := m.removeOptions(sp.Space.SpaceID)
		if len(opts) == 0 {
			m.statusMsg = "This space has no apps"
			return m, nil
		}
		m.fb.packageID = opts[0].Value
		return m.openForm(modeRemoveApp, m.buildSelectForm("Remove app from "+sp.Space.SpaceName, opts))
	}
	return m, nil
}

func (m Model) openForm(mode spaceMode, f *huh.Form) (Model, tea.Cmd) {
	m.form = f
	m.mode = mode
	m.statusMsg = ""
	return m, m.form.Init()
}

func (m Model) selected() (center.SpaceSummary, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.spaces) {
		return center.SpaceSummary{}, false
	}
	return m.spaces[m.selectedIdx], true
}

// addOptions lists known apps not yet mapped into spaceID.
func (m Model) addOptions(spaceID string) []huh.Option[string] {
	in := map[string]bool{}
	for _, p := range m.members[spaceID] {
		in[p.PackageID] = true
	}
	var opts []huh.Option[string]
	for _, a := range m.apps {
		if in[a.Package.PackageID] {
			continue
		}
		opts = append(opts, huh.NewOption(a.Package.Name(), a.Package.PackageID))
	}
	return opts
}

func (m Model) removeOptions(spaceID string) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, p := range m.members[spaceID] {
		opts = append(opts, huh.NewOption(p.Name(), p.PackageID))
	}
	return opts
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Space name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(sp model.Space) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete space %q?", sp.SpaceName)).
				Description("Apps stay; only their membership in this space is removed.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildSelectForm(title string, opts []huh.Option[string]) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(&m.fb.packageID),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.mode == modeList {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	case huh.StateCompleted:
		return m, m.submit()
	}
	return m, cmd
}

// submit runs the action of the completed form.
func (m Model) submit() tea.Cmd {
	sp, _ := m.selected()
	fb := *m.fb
	svc := m.svc

	switch m.mode {
	case modeForm:
		isNew, editID := m.isNew, m.editingID
		return func() tea.Msg {
			ctx := context.Background()
			if isNew {
				_, err := svc.CreateSpace(ctx, fb.name, fb.description)
				return doneMsg{status: "Space created", err: err}
			}
			err := svc.RenameSpace(ctx, editID, fb.name, fb.description)
			return doneMsg{status: "Space saved", err: err}
		}

	case modeConfirmDelete:
		if !fb.confirm {
			return func() tea.Msg { return doneMsg{} }
		}
		return func() tea.Msg {
			err := svc.DeleteSpace(context.Background(), sp.Space.SpaceID)
			if errors.Is(err, store.ErrDefaultSpace) {
				return doneMsg{err: errors.New("the default space cannot be deleted")}
			}
			return doneMsg{status: "Space deleted", err: err}
		}

	case modeAddApp:
		name := m.appName(fb.packageID)
		return func() tea.Msg {
			err := svc.AddToSpace(context.Background(), sp.Space.SpaceID, fb.packageID, name)
			return doneMsg{status: fmt.Sprintf("Added %s", name), err: err}
		}

	case modeRemoveApp:
		return func() tea.Msg {
			err := svc.RemoveFromSpace(context.Background(), sp.Space.SpaceID, fb.packageID)
			return doneMsg{status: "App removed", err: err}
		}
	}
	return nil
}

func (m Model) appName(packageID string) string {
	for _, a := range m.apps {
		if a.Package.PackageID == packageID {
			return a.Package.Name()
		}
	}
	return packageID
}

// View renders the space manager.
func (m Model) View() string {
	if m.mode != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Spaces"))
	b.WriteString("\n\n")

	if len(m.spaces) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No spaces yet. Press 'n' to create one."))
	}
	for i, sp := range m.spaces {
		label := sp.Space.SpaceName
		if sp.Space.IsDefaultWorkSpace {
			label += " (default)"
		}
		label += theme.CountStyle.Render(fmt.Sprintf("  %d apps, %d notifications", sp.AppCount, sp.NotificationCount))

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
			b.WriteString("\n")
			for _, p := range m.members[sp.Space.SpaceID] {
				b.WriteString(theme.ListItemStyle.PaddingLeft(6).Render("· " + p.Name()))
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString(theme.ListItemStyle.Render(label))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new | e rename | d delete | a add app | x remove app | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		spaces, err := svc.SpacesWithCounts(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		members := make(map[string][]model.PackageProfile, len(spaces))
		for _, sp := range spaces {
			pkgs, err := svc.PackagesInSpace(ctx, sp.Space.SpaceID)
			if err != nil {
				return loadedMsg{err: err}
			}
			members[sp.Space.SpaceID] = pkgs
		}
		apps, err := svc.Apps(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{spaces: spaces, members: members, apps: apps}
	}
}

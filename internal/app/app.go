package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/toastcenter/internal/capture"
	"github.com/nhle/toastcenter/internal/center"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	appsync "github.com/nhle/toastcenter/internal/sync"
	"github.com/nhle/toastcenter/internal/ui"
	"github.com/nhle/toastcenter/internal/ui/detail"
	helpview "github.com/nhle/toastcenter/internal/ui/help"
	"github.com/nhle/toastcenter/internal/ui/notiflist"
	"github.com/nhle/toastcenter/internal/ui/settings"
	"github.com/nhle/toastcenter/internal/ui/sidebar"
	"github.com/nhle/toastcenter/internal/ui/spacemgr"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
	ViewSpaces
	ViewDetail
	ViewSettings
)

type pane int

const (
	paneSidebar pane = iota
	paneList
)

// cycleOrder is the order the priority key steps through.
var cycleOrder = []model.Priority{
	model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityNone,
}

type groupsLoadedMsg struct {
	groups []sidebar.Group
	err    error
}

type notificationsLoadedMsg struct {
	group sidebar.Group
	items []notiflist.Item
	err   error
}

type actionDoneMsg struct {
	status string
	err    error
}

// Options configures the root model.
type Options struct {
	// GroupBy is "app" or "space".
	GroupBy string

	// SaveDND persists a do-not-disturb change. Optional.
	SaveDND func(priority.DND) error

	// Config seeds the settings screen.
	Config model.AppConfig

	// SaveSettings persists the settings screen. Optional.
	SaveSettings settings.SaveFunc
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the notification center.
type Model struct {
	currentView  ViewState
	previousView ViewState
	focus        pane
	layout       ui.Layout
	svc          *center.Service
	feed         *appsync.Feed
	keys         *KeyMap
	sidebar      sidebar.Model
	list         notiflist.Model
	helpView     helpview.Model
	detailView   detail.Model
	spaceView    spacemgr.Model
	settingsView settings.Model
	cfg          model.AppConfig
	saveSettings settings.SaveFunc
	group        sidebar.Group
	saveDND      func(priority.DND) error
	ready        bool
	newCount     int
	statusMsg    string
}

// New creates the root model. feed may be nil when no listener runs.
func New(svc *center.Service, feed *appsync.Feed, opts Options) Model {
	keys := DefaultKeyMap()
	return Model{
		currentView:  ViewMain,
		focus:        paneSidebar,
		svc:          svc,
		feed:         feed,
		keys:         keys,
		sidebar:      sidebar.New(keys, sidebar.ParseMode(opts.GroupBy), 24, 24),
		list:         notiflist.New(keys, 56, 24),
		helpView:     helpview.New(keys, 80, 24),
		detailView:   detail.New(keys, 80, 24),
		spaceView:    spacemgr.New(svc, keys, 80, 24),
		settingsView: settings.New(opts.Config, opts.SaveSettings, 80, 24),
		cfg:          opts.Config,
		saveSettings: opts.SaveSettings,
		group:        sidebar.Group{Kind: sidebar.KindAll, Label: "All"},
		saveDND:      opts.SaveDND,
	}
}

// Init loads the groups and the "All" list and starts listening for
// captures.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadGroups(),
		m.loadNotifications(m.group),
		m.feed.WaitForNext(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentHeight := m.layout.ContentHeight()
		m.sidebar.SetSize(m.layout.SidebarWidth(), contentHeight)
		m.list.SetSize(m.layout.MainWidth(), contentHeight)
		m.helpView.SetSize(m.layout.ContentWidth(), contentHeight)
		m.detailView.SetSize(m.layout.ContentWidth(), contentHeight)
		m.spaceView.SetSize(m.layout.ContentWidth(), contentHeight)
		m.settingsView.SetSize(m.layout.ContentWidth(), contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.CaptureMsg:
		c := msg.Captured
		m.newCount++
		if m.svc.Alerts(c.Priority) {
			m.statusMsg = fmt.Sprintf("%s: %s", c.Package.Name(), c.Notification.NotificationTitle)
		}
		return m, tea.Batch(m.reload(), m.feed.WaitForNext())

	case appsync.StoppedMsg:
		m.statusMsg = stoppedMessage(msg.Err)
		return m, nil

	case groupsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.sidebar.SetGroups(msg.groups)
		return m, nil

	case notificationsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		if msg.group.Kind != m.group.Kind || msg.group.ID != m.group.ID {
			// A newer selection superseded this load.
			return m, nil
		}
		return m, m.list.SetItems(listTitle(msg.group), msg.items)

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else if msg.status != "" {
			m.statusMsg = msg.status
		}
		return m, m.reload()

	case sidebar.GroupSelectedMsg:
		m.group = msg.Group
		m.focus = paneList
		m.sidebar.SetFocused(false)
		m.newCount = 0
		return m, m.loadNotifications(m.group)

	case notiflist.DismissMsg:
		if m.currentView == ViewDetail {
			m.currentView = ViewMain
		}
		return m, m.dismiss(msg.Notification)

	case detail.BackMsg:
		m.currentView = ViewMain
		return m, nil

	case spacemgr.CloseMsg:
		m.currentView = ViewMain
		return m, m.reload()

	case spacemgr.ChangedMsg:
		return m, m.loadGroups()

	case settings.CloseMsg:
		m.currentView = ViewMain
		return m, nil

	case settings.SavedMsg:
		return m.applySettings(msg.Config)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewMain {
			m.statusMsg = ""
			if next, cmd, handled := m.handleMainKey(msg); handled {
				return next, cmd
			}
		}
		if m.currentView == ViewHelp && (key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back)) {
			m.currentView = m.previousView
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// handleMainKey handles keys of the two-pane view. It reports whether the
// key was consumed.
func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Spaces), key.Matches(msg, m.keys.AddToSpace):
		m.previousView = m.currentView
		m.currentView = ViewSpaces
		return m, m.spaceView.Init(), true

	case key.Matches(msg, m.keys.NextPane):
		m.setFocus(1 - m.focus)
		return m, nil, true

	case key.Matches(msg, m.keys.Settings):
		m.previousView = m.currentView
		m.currentView = ViewSettings
		m.settingsView = settings.New(m.cfg, m.saveSettings, m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.settingsView.Init(), true

	case key.Matches(msg, m.keys.Select) && m.focus == paneList:
		it, ok := m.list.Selected()
		if !ok {
			return m, nil, true
		}
		m.detailView.SetItem(it)
		m.currentView = ViewDetail
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		m.setFocus(paneSidebar)
		return m, nil, true

	case key.Matches(msg, m.keys.GroupBy):
		m.sidebar.ToggleMode()
		m.group = sidebar.Group{Kind: sidebar.KindAll, Label: "All"}
		return m, tea.Batch(m.loadGroups(), m.loadNotifications(m.group)), true

	case key.Matches(msg, m.keys.Refresh):
		m.newCount = 0
		return m, m.reload(), true

	case key.Matches(msg, m.keys.ToggleDND):
		return m, m.toggleDND(), true

	case key.Matches(msg, m.keys.CyclePriority):
		pkg, ok := m.focusedPackage()
		if !ok {
			return m, nil, true
		}
		return m, m.cyclePriority(pkg), true

	case key.Matches(msg, m.keys.ClearPriority):
		pkg, ok := m.focusedPackage()
		if !ok {
			return m, nil, true
		}
		return m, m.clearPriority(pkg), true

	case key.Matches(msg, m.keys.RemoveFromSpace):
		if m.group.Kind != sidebar.KindSpace || m.focus != paneList {
			return m, nil, false
		}
		it, ok := m.list.Selected()
		if !ok {
			return m, nil, true
		}
		return m, m.removeFromSpace(m.group.ID, it.Notification.PackageID), true
	}
	return m, nil, false
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	m.sidebar.SetFocused(p == paneSidebar)
}

// focusedPackage returns the package the priority keys act on: the app
// group under the sidebar cursor, or the app of the selected notification.
func (m Model) focusedPackage() (string, bool) {
	if m.focus == paneSidebar {
		g, ok := m.sidebar.Selected()
		if ok && g.Kind == sidebar.KindApp {
			return g.ID, true
		}
		return "", false
	}
	it, ok := m.list.Selected()
	if !ok {
		return "", false
	}
	return it.Notification.PackageID, true
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewMain:
		if m.focus == paneSidebar {
			m.sidebar, cmd = m.sidebar.Update(msg)
		} else {
			m.list, cmd = m.list.Update(msg)
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewSpaces:
		m.spaceView, cmd = m.spaceView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Notifications"
	if m.newCount > 0 {
		headerTitle = fmt.Sprintf("Notifications [%d new]", m.newCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.captureStatus(), m.svc.DND().Enabled)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewSpaces:
		return m.spaceView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return m.layout.RenderColumns(m.sidebar.View(), m.list.View())
	}
}

// captureStatus returns the header status: capture state and DND.
func (m Model) captureStatus() string {
	status := m.feed.Status()
	if d := m.svc.DND(); d.Enabled {
		status = fmt.Sprintf("DND (%s+) | %s", d.Threshold.Label(), status)
	}
	return status
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewSpaces:
		return "n new | e rename | d delete | a add app | x remove app | esc back"
	case ViewDetail:
		return "j/k scroll | d dismiss | esc back"
	case ViewSettings:
		return "enter next | shift+tab previous | esc cancel"
	}
	if m.statusMsg != "" {
		return m.statusMsg
	}
	if m.focus == paneSidebar {
		return "q quit | ? help | enter open | g group by | s spaces | p priority | z dnd | c settings"
	}
	hints := "enter open | esc groups | d dismiss | p priority | P reset | z dnd"
	if m.group.Kind == sidebar.KindSpace {
		hints += " | x remove from space"
	}
	return hints
}

func listTitle(g sidebar.Group) string {
	switch g.Kind {
	case sidebar.KindApp:
		return g.Label
	case sidebar.KindSpace:
		return "Space: " + g.Label
	default:
		return "All notifications"
	}
}

func stoppedMessage(err error) string {
	switch {
	case err == nil:
		return "Listener closed"
	case errors.Is(err, capture.ErrAccessDenied):
		return "Notification access denied. Grant access and restart."
	case errors.Is(err, capture.ErrAccessUnspecified):
		return "Notification access was not decided. Restart to ask again."
	case errors.Is(err, capture.ErrListenerUnsupported):
		return "Notification listening is not supported here"
	default:
		return fmt.Sprintf("Capture stopped: %v", err)
	}
}

func (m Model) reload() tea.Cmd {
	return tea.Batch(m.loadGroups(), m.loadNotifications(m.group))
}

func (m Model) loadGroups() tea.Cmd {
	svc := m.svc
	mode := m.sidebar.Mode()
	return func() tea.Msg {
		ctx := context.Background()
		apps, err := svc.Apps(ctx)
		if err != nil {
			return groupsLoadedMsg{err: err}
		}
		total := 0
		for _, a := range apps {
			total += a.NotificationCount
		}

		if mode == sidebar.ModeApps {
			return groupsLoadedMsg{groups: sidebar.AppGroups(total, apps)}
		}
		spaces, err := svc.SpacesWithCounts(ctx)
		if err != nil {
			return groupsLoadedMsg{err: err}
		}
		return groupsLoadedMsg{groups: sidebar.SpaceGroups(total, spaces)}
	}
}

func (m Model) loadNotifications(g sidebar.Group) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		var (
			ns  []model.ToastNotification
			err error
		)
		switch g.Kind {
		case sidebar.KindApp:
			ns, err = svc.NotificationsForPackage(ctx, g.ID)
		case sidebar.KindSpace:
			ns, err = svc.NotificationsInSpace(ctx, g.ID)
		default:
			ns, err = svc.AllNotifications(ctx)
		}
		if err != nil {
			return notificationsLoadedMsg{group: g, err: err}
		}
		apps, err := svc.Apps(ctx)
		if err != nil {
			return notificationsLoadedMsg{group: g, err: err}
		}
		names := make(map[string]string, len(apps))
		for _, a := range apps {
			names[a.Package.PackageID] = a.Package.Name()
		}
		return notificationsLoadedMsg{group: g, items: notiflist.Items(ns, names, svc.DND())}
	}
}

func (m Model) dismiss(n model.ToastNotification) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.Dismiss(context.Background(), n)
		return actionDoneMsg{status: "Dismissed", err: err}
	}
}

func (m Model) cyclePriority(packageID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		cur, err := svc.EffectivePriority(ctx, packageID)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		next := nextPriority(cur)
		if _, err := svc.SetPriority(ctx, packageID, next); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Priority set to %s", next.Label())}
	}
}

func nextPriority(p model.Priority) model.Priority {
	for i, c := range cycleOrder {
		if c == p {
			return cycleOrder[(i+1)%len(cycleOrder)]
		}
	}
	return cycleOrder[0]
}

func (m Model) clearPriority(packageID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.ClearPriority(context.Background(), packageID)
		return actionDoneMsg{status: "Priority reset", err: err}
	}
}

func (m Model) removeFromSpace(spaceID, packageID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.RemoveFromSpace(context.Background(), spaceID, packageID)
		return actionDoneMsg{status: "Removed from space", err: err}
	}
}

// applySettings takes over a saved configuration: DND applies at once,
// grouping switches the sidebar, mail changes wait for a restart.
func (m Model) applySettings(cfg model.AppConfig) (tea.Model, tea.Cmd) {
	mailChanged := cfg.Mail != m.cfg.Mail
	m.cfg = cfg
	m.currentView = ViewMain
	m.svc.SetDND(priority.NewDND(cfg.DND.Enabled, cfg.DND.Threshold))

	m.statusMsg = "Settings saved"
	if mailChanged {
		m.statusMsg = "Settings saved; mail changes apply on restart"
	}
	if mode := sidebar.ParseMode(cfg.Display.GroupBy); mode != m.sidebar.Mode() {
		m.sidebar.ToggleMode()
		m.group = sidebar.Group{Kind: sidebar.KindAll, Label: "All"}
	}
	return m, m.reload()
}

// toggleDND flips do-not-disturb. The service is updated in place so the
// reload that follows already uses the new policy.
func (m *Model) toggleDND() tea.Cmd {
	d := m.svc.DND()
	d.Enabled = !d.Enabled
	m.svc.SetDND(d)
	m.cfg.DND.Enabled = d.Enabled
	m.cfg.DND.Threshold = string(d.Threshold)

	save := m.saveDND
	status := "Do-not-disturb off"
	if d.Enabled {
		status = fmt.Sprintf("Do-not-disturb on: %s and above only", d.Threshold.Label())
	}
	return func() tea.Msg {
		if save != nil {
			if err := save(d); err != nil {
				return actionDoneMsg{err: fmt.Errorf("saving do-not-disturb: %w", err)}
			}
		}
		return actionDoneMsg{status: status}
	}
}

// Package settings is the in-app editor for do-not-disturb, grouping and
// the mail listener account.
package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/theme"
)

// SaveFunc persists a configuration. password is empty when the user left
// the mail password unchanged.
type SaveFunc func(cfg model.AppConfig, password string) error

// SavedMsg carries the configuration that was stored.
type SavedMsg struct {
	Config model.AppConfig
}

// CloseMsg signals the parent to close settings without saving.
type CloseMsg struct{}

type savedInternalMsg struct {
	cfg model.AppConfig
	err error
}

type formBindings struct {
	dndEnabled   bool
	threshold    string
	groupBy      string
	mailEnabled  bool
	mailHost     string
	mailPort     string
	mailUsername string
	mailTLS      bool
	mailPassword string
}

// Model is the settings form.
type Model struct {
	cfg       model.AppConfig
	save      SaveFunc
	form      *huh.Form
	fb        *formBindings
	saving    bool
	statusMsg string
	width     int
	height    int
}

// New creates a settings model editing a copy of cfg. save may be nil, in
// which case changes only apply to the running session.
func New(cfg model.AppConfig, save SaveFunc, width, height int) Model {
	m := Model{
		cfg:    cfg,
		save:   save,
		width:  width,
		height: height,
	}
	m.fb = bindingsFrom(cfg)
	m.form = m.buildForm()
	return m
}

func bindingsFrom(cfg model.AppConfig) *formBindings {
	threshold, err := model.ParsePriority(cfg.DND.Threshold)
	if err != nil || threshold == model.PriorityNone {
		threshold = model.PriorityHigh
	}
	return &formBindings{
		dndEnabled:   cfg.DND.Enabled,
		threshold:    string(threshold),
		groupBy:      cfg.Display.GroupBy,
		mailEnabled:  cfg.Mail.Enabled,
		mailHost:     cfg.Mail.Host,
		mailPort:     cfg.Mail.Port,
		mailUsername: cfg.Mail.Username,
		mailTLS:      cfg.Mail.TLS,
	}
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case savedInternalMsg:
		m.saving = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }
	}

	if m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateAborted:
		return m, func() tea.Msg { return CloseMsg{} }
	case huh.StateCompleted:
		m.saving = true
		return m, m.submit()
	}
	return m, cmd
}

// apply returns cfg with the form values written over it.
func (fb formBindings) apply(cfg model.AppConfig) model.AppConfig {
	cfg.DND.Enabled = fb.dndEnabled
	cfg.DND.Threshold = fb.threshold
	cfg.Display.GroupBy = fb.groupBy
	cfg.Mail.Enabled = fb.mailEnabled
	cfg.Mail.Host = strings.TrimSpace(fb.mailHost)
	cfg.Mail.Port = strings.TrimSpace(fb.mailPort)
	cfg.Mail.Username = strings.TrimSpace(fb.mailUsername)
	cfg.Mail.TLS = fb.mailTLS
	return cfg
}

func (m Model) submit() tea.Cmd {
	fb := *m.fb
	cfg := fb.apply(m.cfg)
	save := m.save
	return func() tea.Msg {
		if fb.mailEnabled && (cfg.Mail.Host == "" || cfg.Mail.Username == "") {
			return savedInternalMsg{err: fmt.Errorf("mail needs a host and a username")}
		}
		if err := cfg.Validate(); err != nil {
			return savedInternalMsg{err: err}
		}
		if save != nil {
			if err := save(cfg, fb.mailPassword); err != nil {
				return savedInternalMsg{err: err}
			}
		}
		return savedInternalMsg{cfg: cfg}
	}
}

func (m Model) buildForm() *huh.Form {
	thresholds := []huh.Option[string]{
		huh.NewOption("High only", string(model.PriorityHigh)),
		huh.NewOption("Medium and above", string(model.PriorityMedium)),
		huh.NewOption("Low and above", string(model.PriorityLow)),
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Do not disturb").
				Description("Hold back notifications below the threshold").
				Affirmative("On").
				Negative("Off").
				Value(&m.fb.dndEnabled),
			huh.NewSelect[string]().
				Title("Breaks through do-not-disturb").
				Options(thresholds...).
				Value(&m.fb.threshold),
			huh.NewSelect[string]().
				Title("Default grouping").
				Options(
					huh.NewOption("App", "app"),
					huh.NewOption("Space", "space"),
				).
				Value(&m.fb.groupBy),
		).Title("Notifications"),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Watch a mailbox").
				Description("New messages arrive as notifications").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.mailEnabled),
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&m.fb.mailHost),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&m.fb.mailPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&m.fb.mailUsername),
			huh.NewInput().
				Title("Password").
				Description("Stored in the system keyring; leave empty to keep").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.mailPassword),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.mailTLS),
		).Title("Mail listener"),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// View renders the form and the last error.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Settings"))
	b.WriteString("\n\n")
	if m.saving {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("Saving..."))
	} else {
		b.WriteString(m.form.View())
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
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
	return max(m.height-6, 10)
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range strings.TrimSpace(s) {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
